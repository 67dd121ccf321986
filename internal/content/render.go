package content

import (
	"fmt"
	"html"
	"strings"
)

// RenderHTML produces the read-only display form of a segment sequence:
// text runs become escaped spans and image segments become img elements.
// This is the contract the presentation views consume.
func RenderHTML(segments []Segment) string {
	var builder strings.Builder
	for _, segment := range segments {
		switch segment.Kind {
		case SegmentKindImage:
			fmt.Fprintf(&builder, `<img src="%s" alt="%s">`,
				html.EscapeString(segment.URI), html.EscapeString(segment.Alt))
		default:
			fmt.Fprintf(&builder, "<span>%s</span>", html.EscapeString(segment.Text))
		}
	}
	return builder.String()
}
