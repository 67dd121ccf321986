package content

import (
	"iter"
	"regexp"
)

// imageMarkerPattern matches the markdown image marker `![alt](uri)`.
// Unbalanced brackets or parentheses do not match and fall through as
// literal text.
var imageMarkerPattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

// Decode scans stored text for image markers and yields the resulting
// segment sequence in document order. The sequence is finite and
// restartable: ranging over it twice produces identical segments.
// Empty input yields an empty sequence.
func Decode(text string) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		remaining := text
		for remaining != "" {
			match := imageMarkerPattern.FindStringSubmatchIndex(remaining)
			if match == nil {
				yield(TextSegment(remaining))
				return
			}
			if match[0] > 0 {
				if !yield(TextSegment(remaining[:match[0]])) {
					return
				}
			}
			alt := remaining[match[2]:match[3]]
			uri := remaining[match[4]:match[5]]
			if !yield(ImageSegment(uri, alt)) {
				return
			}
			remaining = remaining[match[1]:]
		}
	}
}

// DecodeAll materializes Decode into a slice.
func DecodeAll(text string) []Segment {
	var segments []Segment
	for segment := range Decode(text) {
		segments = append(segments, segment)
	}
	return segments
}
