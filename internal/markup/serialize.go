package markup

import (
	"fmt"
	"html"
	"strings"
)

// voidTags are serialized without a closing tag. Everything else closes, so
// the serialized markup re-parses into the same tree.
var voidTags = map[string]bool{
	"img": true,
	"br":  true,
}

// Serialize flattens the document tree back into its stored markup string.
// Text is entity-escaped; every opened element is closed.
func (d *Document) Serialize() string {
	var builder strings.Builder
	for _, child := range d.root.Children {
		writeNode(&builder, child)
	}
	return builder.String()
}

func writeNode(builder *strings.Builder, node *Node) {
	if node.Kind == KindText {
		builder.WriteString(html.EscapeString(node.Text))
		return
	}
	builder.WriteByte('<')
	builder.WriteString(node.Tag)
	for _, attr := range node.Attrs {
		fmt.Fprintf(builder, ` %s="%s"`, attr.Key, html.EscapeString(attr.Value))
	}
	builder.WriteByte('>')
	if voidTags[node.Tag] {
		return
	}
	for _, child := range node.Children {
		writeNode(builder, child)
	}
	fmt.Fprintf(builder, "</%s>", node.Tag)
}

// PlainText concatenates the document's text runs in order, dropping all
// markup.
func (d *Document) PlainText() string {
	var builder strings.Builder
	collectText(d.root, &builder)
	return builder.String()
}

func collectText(node *Node, builder *strings.Builder) {
	if node.Kind == KindText {
		builder.WriteString(node.Text)
		return
	}
	for _, child := range node.Children {
		collectText(child, builder)
	}
}
