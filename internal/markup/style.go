package markup

import (
	"sort"
	"strings"
)

// StyleKind names one inline formatting concern.
type StyleKind string

const (
	StyleBold       StyleKind = "bold"
	StyleItalic     StyleKind = "italic"
	StyleUnderline  StyleKind = "underline"
	StyleStrike     StyleKind = "strike"
	StyleColor      StyleKind = "color"
	StyleFontFamily StyleKind = "font-family"
	StyleFontSize   StyleKind = "font-size"
	StyleLink       StyleKind = "link"
)

// stylePolicy makes the toggle-versus-additive split an explicit policy
// rather than a side effect of tree shape: boolean kinds toggle off when the
// selection already sits inside a wrapper of that exact kind, value kinds
// always add another wrapper.
type stylePolicy struct {
	tag        string
	toggleable bool
}

var stylePolicies = map[StyleKind]stylePolicy{
	StyleBold:       {tag: "b", toggleable: true},
	StyleItalic:     {tag: "i", toggleable: true},
	StyleUnderline:  {tag: "u", toggleable: true},
	StyleStrike:     {tag: "s", toggleable: true},
	StyleColor:      {tag: "span", toggleable: false},
	StyleFontFamily: {tag: "span", toggleable: false},
	StyleFontSize:   {tag: "span", toggleable: false},
	StyleLink:       {tag: "a", toggleable: false},
}

// Toggleable reports whether the kind participates in toggle-off semantics.
func (k StyleKind) Toggleable() bool {
	return stylePolicies[k].toggleable
}

// Tag returns the element tag a wrapper of this kind uses.
func (k StyleKind) Tag() string {
	return stylePolicies[k].tag
}

// EnclosingWrapper walks upward from the selection's common ancestor looking
// for the nearest enclosing element of the given tag. Each kind is checked
// independently, so mixed-kind nesting (bold inside italic) is untouched by
// the walk for the other kind.
func (d *Document) EnclosingWrapper(sel Selection, tag string) (*Node, error) {
	start, end, err := d.resolve(sel)
	if err != nil {
		return nil, err
	}
	ancestor := d.commonAncestor(start.node, end.node)
	for current := ancestor; current != nil && current != d.root; current = current.parent {
		if current.Kind == KindElement && strings.EqualFold(current.Tag, tag) {
			return current, nil
		}
	}
	return nil, nil
}

func (d *Document) commonAncestor(a, b *Node) *Node {
	seen := map[*Node]bool{}
	for current := a; current != nil; current = current.parent {
		seen[current] = true
	}
	for current := b; current != nil; current = current.parent {
		if seen[current] {
			return current
		}
	}
	return d.root
}

// Unwrap splices the wrapper's children into its parent in place and
// removes the wrapper.
func (d *Document) Unwrap(wrapper *Node) {
	parent := wrapper.parent
	if parent == nil {
		return
	}
	index := wrapper.indexIn(parent)
	children := wrapper.removeChildren(0, len(wrapper.Children))
	parent.removeChildren(index, index+1)
	parent.insertChildren(index, children...)
	d.bump()
}

// Wrap extracts the selected content, wraps it in a new element, inserts the
// wrapper at the selection point, and returns a fresh selection covering the
// wrapper's full contents so another style can be chained immediately.
func (d *Document) Wrap(sel Selection, wrapper *Node) (Selection, error) {
	start, end, err := d.resolve(sel)
	if err != nil {
		return Selection{}, err
	}
	insertAt, extracted := d.extractRange(start, end)
	for _, node := range extracted {
		wrapper.appendChild(node)
	}
	insertAt.parent.insertChildren(insertAt.index, wrapper)
	d.bump()
	return d.selectNodeContents(wrapper), nil
}

// ReplaceRange deletes the selected content and inserts replacement at the
// selection point.
func (d *Document) ReplaceRange(sel Selection, replacement *Node) error {
	start, end, err := d.resolve(sel)
	if err != nil {
		return err
	}
	insertAt, _ := d.extractRange(start, end)
	insertAt.parent.insertChildren(insertAt.index, replacement)
	d.bump()
	return nil
}

// AppendNode attaches a node at the end of the document, as a dropped image
// is appended to the editable container.
func (d *Document) AppendNode(node *Node) {
	d.root.appendChild(node)
	d.bump()
}

// selectNodeContents captures a selection spanning all children of node at
// the current revision.
func (d *Document) selectNodeContents(node *Node) Selection {
	path := d.pathOf(node)
	start := Anchor{Path: path, Offset: 0}
	end := Anchor{Path: path, Offset: len(node.Children)}
	if node.Kind == KindText {
		end.Offset = node.runeLen()
	}
	return d.Select(start, end)
}

// boundary addresses the gap before parent.Children[index].
type boundary struct {
	parent *Node
	index  int
}

// extractRange detaches the content between the two resolved positions and
// returns the insertion boundary plus the detached nodes in document order.
// Both positions are pinned with marker nodes before any splitting, so the
// splits one boundary performs cannot invalidate the other. Text nodes at
// the edges are split, and elements partially covered by the range are
// split along the boundary path so the markup stays well formed.
func (d *Document) extractRange(start, end position) (boundary, []*Node) {
	ancestor := d.commonAncestor(start.node, end.node)
	if ancestor.Kind == KindText {
		ancestor = ancestor.parent
	}

	endMarker := d.placeMarker(end)
	startMarker := d.placeMarker(start)
	d.liftMarker(startMarker, ancestor)
	d.liftMarker(endMarker, ancestor)

	from := startMarker.indexIn(ancestor)
	to := endMarker.indexIn(ancestor)
	if to < from {
		from, to = to, from
	}
	extracted := ancestor.removeChildren(from+1, to)
	ancestor.removeChildren(from, from+2)
	return boundary{parent: ancestor, index: from}, extracted
}

// placeMarker pins a position with an empty text node. A text-node position
// in the interior splits the node in place: the original keeps the left
// runes, so an earlier position inside the same node stays resolvable.
func (d *Document) placeMarker(pos position) *Node {
	marker := &Node{Kind: KindText}
	if pos.node.Kind == KindElement {
		pos.node.insertChildren(pos.offset, marker)
		return marker
	}
	node := pos.node
	parent := node.parent
	index := node.indexIn(parent)
	runes := []rune(node.Text)
	switch {
	case pos.offset <= 0:
		parent.insertChildren(index, marker)
	case pos.offset >= len(runes):
		parent.insertChildren(index+1, marker)
	default:
		right := NewText(string(runes[pos.offset:]))
		node.Text = string(runes[:pos.offset])
		parent.insertChildren(index+1, marker, right)
	}
	return marker
}

// liftMarker raises a marker until it sits directly under stop, splitting
// each intermediate element around it. The clone carries the tail children,
// so both halves remain well formed wrappers of their own content.
func (d *Document) liftMarker(marker *Node, stop *Node) {
	for marker.parent != stop {
		element := marker.parent
		grandparent := element.parent
		if grandparent == nil {
			return
		}
		index := marker.indexIn(element)
		elementIndex := element.indexIn(grandparent)
		element.removeChildren(index, index+1)
		switch {
		case index == 0:
			grandparent.insertChildren(elementIndex, marker)
		case index == len(element.Children):
			grandparent.insertChildren(elementIndex+1, marker)
		default:
			tail := element.removeChildren(index, len(element.Children))
			clone := element.cloneShallow()
			for _, node := range tail {
				clone.appendChild(node)
			}
			grandparent.insertChildren(elementIndex+1, marker, clone)
		}
	}
}

// StyleSpan is one tagged interval of the flattened style model: a rune
// range of the plain text plus the style kinds active over it.
type StyleSpan struct {
	Start  int
	End    int
	Styles []StyleKind
}

// StyleSpans flattens the nested tree into tagged intervals over the plain
// text, the inspection form used by previews and by tests asserting toggle
// policy.
func (d *Document) StyleSpans() []StyleSpan {
	var spans []StyleSpan
	offset := 0
	var walk func(node *Node, active []StyleKind)
	walk = func(node *Node, active []StyleKind) {
		if node.Kind == KindText {
			length := node.runeLen()
			if length > 0 {
				styles := make([]StyleKind, len(active))
				copy(styles, active)
				sort.Slice(styles, func(i, j int) bool { return styles[i] < styles[j] })
				spans = append(spans, StyleSpan{Start: offset, End: offset + length, Styles: styles})
			}
			offset += length
			return
		}
		next := active
		if kinds := kindsForElement(node); len(kinds) > 0 {
			next = append(append([]StyleKind{}, active...), kinds...)
		}
		for _, child := range node.Children {
			walk(child, next)
		}
	}
	walk(d.root, nil)
	return spans
}

func kindsForElement(node *Node) []StyleKind {
	switch strings.ToLower(node.Tag) {
	case "b":
		return []StyleKind{StyleBold}
	case "i":
		return []StyleKind{StyleItalic}
	case "u":
		return []StyleKind{StyleUnderline}
	case "s":
		return []StyleKind{StyleStrike}
	case "a":
		return []StyleKind{StyleLink}
	case "span":
		var kinds []StyleKind
		style := node.Attr("style")
		if strings.Contains(style, "color") {
			kinds = append(kinds, StyleColor)
		}
		if strings.Contains(style, "font-family") {
			kinds = append(kinds, StyleFontFamily)
		}
		if strings.Contains(style, "font-size") {
			kinds = append(kinds, StyleFontSize)
		}
		return kinds
	default:
		return nil
	}
}
