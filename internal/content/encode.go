package content

import (
	"fmt"
	"strings"
)

// encodedImageAlt is the fixed alt text written when re-emitting image
// segments. User-authored alt text is display-only on the decode side and
// is not preserved through the markdown encoding.
const encodedImageAlt = "Image"

// Encode flattens a segment sequence back into the markdown-image stored
// form: text runs are concatenated literally and each image segment becomes
// `![Image](uri)`.
func Encode(segments []Segment) string {
	var builder strings.Builder
	for _, segment := range segments {
		switch segment.Kind {
		case SegmentKindImage:
			builder.WriteString(ImageMarker(segment.URI))
		default:
			builder.WriteString(segment.Text)
		}
	}
	return builder.String()
}

// ImageMarker renders a single image reference in the markdown stored form.
func ImageMarker(uri string) string {
	return fmt.Sprintf("![%s](%s)", encodedImageAlt, uri)
}
