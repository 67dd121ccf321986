package content

import (
	"errors"
	"testing"
)

func TestParseFormatAcceptsKnownTags(t *testing.T) {
	testCases := []struct {
		raw      string
		expected Format
	}{
		{raw: "markdown", expected: FormatMarkdown},
		{raw: "richtext", expected: FormatRichText},
		{raw: " RichText ", expected: FormatRichText},
		{raw: "", expected: FormatUnknown},
	}

	for _, testCase := range testCases {
		format, err := ParseFormat(testCase.raw)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", testCase.raw, err)
		}
		if format != testCase.expected {
			t.Fatalf("expected %q for %q, got %q", testCase.expected, testCase.raw, format)
		}
	}
}

func TestParseFormatRejectsUnknownTag(t *testing.T) {
	if _, err := ParseFormat("html"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestDetectFormatSniffsEncoding(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected Format
	}{
		{name: "markdown-marker", text: "hello ![Image](http://i) world", expected: FormatMarkdown},
		{name: "plain-text", text: "just words", expected: FormatMarkdown},
		{name: "bold-wrapper", text: "<b>hello</b>", expected: FormatRichText},
		{name: "styled-span", text: `<span style="color: #FF0000;">x</span>`, expected: FormatRichText},
		{name: "inline-image", text: `before<img src="http://i">after`, expected: FormatRichText},
		{name: "angle-but-not-markup", text: "a < b and b > c", expected: FormatMarkdown},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if format := DetectFormat(testCase.text); format != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, format)
			}
		})
	}
}

func TestEffectiveFormatPrefersExplicitTag(t *testing.T) {
	if format := EffectiveFormat(FormatMarkdown, "<b>looks rich</b>"); format != FormatMarkdown {
		t.Fatalf("explicit tag should win, got %q", format)
	}
	if format := EffectiveFormat(FormatUnknown, "<b>looks rich</b>"); format != FormatRichText {
		t.Fatalf("untagged text should be sniffed, got %q", format)
	}
}
