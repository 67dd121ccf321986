package content

import (
	"fmt"
	"html"
	"strings"

	"github.com/folio-journal/backend/internal/markup"
)

// Codec converts between stored text and the segment sequence for one of the
// two encodings. Both strategies sit behind the same interface; callers pick
// one per entry via the persisted format tag (or sniffing, for legacy rows).
type Codec interface {
	Format() Format
	Decode(text string) []Segment
	Encode(segments []Segment) string
}

// CodecFor returns the strategy for the given format tag, sniffing the text
// when the tag is absent.
func CodecFor(tag Format, text string) Codec {
	if EffectiveFormat(tag, text) == FormatRichText {
		return richTextCodec{}
	}
	return markdownCodec{}
}

type markdownCodec struct{}

func (markdownCodec) Format() Format { return FormatMarkdown }

func (markdownCodec) Decode(text string) []Segment {
	return DecodeAll(text)
}

func (markdownCodec) Encode(segments []Segment) string {
	return Encode(segments)
}

// richTextCodec treats the stored text as inline markup. Decoding flattens
// the tree into segments in document order, dropping style wrappers; the
// segment view is what the shared presentation contract needs, the full
// tree lives in the markup package.
type richTextCodec struct{}

func (richTextCodec) Format() Format { return FormatRichText }

func (richTextCodec) Decode(text string) []Segment {
	doc := markup.Parse(text)
	var segments []Segment
	var pending strings.Builder
	flush := func() {
		if pending.Len() > 0 {
			segments = append(segments, TextSegment(pending.String()))
			pending.Reset()
		}
	}
	var walk func(node *markup.Node)
	walk = func(node *markup.Node) {
		if node.Kind == markup.KindText {
			pending.WriteString(node.Text)
			return
		}
		if strings.EqualFold(node.Tag, "img") {
			flush()
			segments = append(segments, ImageSegment(node.Attr("src"), node.Attr("alt")))
			return
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	for _, child := range doc.Root().Children {
		walk(child)
	}
	flush()
	return segments
}

func (richTextCodec) Encode(segments []Segment) string {
	var builder strings.Builder
	for _, segment := range segments {
		switch segment.Kind {
		case SegmentKindImage:
			fmt.Fprintf(&builder, `<img src="%s">`, html.EscapeString(segment.URI))
		default:
			builder.WriteString(html.EscapeString(segment.Text))
		}
	}
	return builder.String()
}
