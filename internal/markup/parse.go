package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a live editable tree plus a revision counter. Every mutation
// advances the revision; selection descriptors captured against an older
// revision are rejected as stale.
type Document struct {
	root     *Node
	revision uint64
}

// Parse builds a document tree from stored rich-markup text. The underlying
// parser is forgiving: malformed input never fails, it is repaired into a
// well-formed tree.
func Parse(text string) *Document {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	fragments, err := html.ParseFragment(strings.NewReader(text), context)
	root := &Node{Kind: KindElement}
	if err != nil {
		return &Document{root: root}
	}
	for _, fragment := range fragments {
		if converted := convertNode(fragment); converted != nil {
			root.appendChild(converted)
		}
	}
	return &Document{root: root}
}

func convertNode(source *html.Node) *Node {
	switch source.Type {
	case html.TextNode:
		return NewText(source.Data)
	case html.ElementNode:
		attrs := make([]Attribute, 0, len(source.Attr))
		for _, attr := range source.Attr {
			attrs = append(attrs, Attribute{Key: attr.Key, Value: attr.Val})
		}
		node := NewElement(source.Data, attrs...)
		for child := source.FirstChild; child != nil; child = child.NextSibling {
			if converted := convertNode(child); converted != nil {
				node.appendChild(converted)
			}
		}
		return node
	default:
		return nil
	}
}

// Root exposes the container element holding the document's content.
func (d *Document) Root() *Node {
	return d.root
}

// Revision reports the current mutation counter.
func (d *Document) Revision() uint64 {
	return d.revision
}

func (d *Document) bump() {
	d.revision++
}
