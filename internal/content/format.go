package content

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Format tags which of the two stored-text encodings an entry carries.
type Format string

const (
	// FormatMarkdown is plain text with `![alt](uri)` image markers and no
	// persisted inline style.
	FormatMarkdown Format = "markdown"
	// FormatRichText is inline markup with nested style elements; formatting
	// round-trips fully through the stored string.
	FormatRichText Format = "richtext"
	// FormatUnknown marks legacy rows persisted before the format tag
	// existed. Their encoding is sniffed on read.
	FormatUnknown Format = ""
)

// ErrInvalidFormat indicates a format tag outside the known set.
var ErrInvalidFormat = errors.New("content: invalid format")

// ParseFormat validates a raw format tag.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.TrimSpace(strings.ToLower(raw))) {
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatRichText:
		return FormatRichText, nil
	case FormatUnknown:
		return FormatUnknown, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
}

// richMarkupPattern recognizes the inline elements the rich-markup encoding
// emits. Matching any of them is taken as evidence the text was produced by
// the rich editor rather than the markdown one.
var richMarkupPattern = regexp.MustCompile(`(?i)<(b|i|u|s|a|span|img)[\s>/]`)

// DetectFormat sniffs the encoding of untagged legacy text. Tagged entries
// never go through detection; mixing formats across entries is accepted
// as-is and never rewritten.
func DetectFormat(text string) Format {
	if richMarkupPattern.MatchString(text) {
		return FormatRichText
	}
	return FormatMarkdown
}

// EffectiveFormat resolves the format used to interpret stored text:
// an explicit tag wins, otherwise the text is sniffed.
func EffectiveFormat(tag Format, text string) Format {
	if tag != FormatUnknown {
		return tag
	}
	return DetectFormat(text)
}
