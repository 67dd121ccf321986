package content

// SegmentKind discriminates the two segment variants of a content document.
type SegmentKind string

const (
	// SegmentKindText is a contiguous run of plain characters.
	SegmentKindText SegmentKind = "text"
	// SegmentKindImage is an inline image reference.
	SegmentKindImage SegmentKind = "image"
)

// Segment is one contiguous unit of a content document: either a text run or
// an image reference carrying a URI and display-only alt text.
type Segment struct {
	Kind SegmentKind
	Text string
	URI  string
	Alt  string
}

// TextSegment constructs a text-run segment.
func TextSegment(text string) Segment {
	return Segment{Kind: SegmentKindText, Text: text}
}

// ImageSegment constructs an image-reference segment.
func ImageSegment(uri, alt string) Segment {
	return Segment{Kind: SegmentKindImage, URI: uri, Alt: alt}
}
