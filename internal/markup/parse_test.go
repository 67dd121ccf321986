package markup

import "testing"

func TestParseSerializeRoundTrip(t *testing.T) {
	testCases := []string{
		"plain text",
		"<b>hello</b>",
		"<b>hel<i>lo</i></b> world",
		`<span style="color: #FF0000;">red</span>`,
		`<img src="http://i" width="120">tail`,
		`<a href="http://x" target="_blank">link</a>`,
	}

	for _, text := range testCases {
		doc := Parse(text)
		if serialized := doc.Serialize(); serialized != text {
			t.Fatalf("round trip changed %q into %q", text, serialized)
		}
	}
}

func TestParseRepairsMalformedMarkup(t *testing.T) {
	doc := Parse("<b>never closed")
	if serialized := doc.Serialize(); serialized != "<b>never closed</b>" {
		t.Fatalf("expected repaired markup, got %q", serialized)
	}
}

func TestSerializeEscapesText(t *testing.T) {
	doc := &Document{root: &Node{Kind: KindElement}}
	doc.root.appendChild(NewText("a < b & c"))

	if serialized := doc.Serialize(); serialized != "a &lt; b &amp; c" {
		t.Fatalf("expected escaped text, got %q", serialized)
	}
}

func TestPlainTextDropsMarkup(t *testing.T) {
	doc := Parse(`<b>hel<i>lo</i></b> <img src="http://i">world`)
	if text := doc.PlainText(); text != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", text)
	}
}

func TestMutationsAdvanceRevision(t *testing.T) {
	doc := Parse("hello")
	before := doc.Revision()
	doc.AppendNode(NewElement("img", Attribute{Key: "src", Value: "http://i"}))
	if doc.Revision() == before {
		t.Fatal("expected revision to advance after mutation")
	}
}
