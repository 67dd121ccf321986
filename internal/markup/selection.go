package markup

import "errors"

var (
	// ErrStaleSelection indicates a descriptor captured against an earlier
	// tree revision; the range it described may no longer exist.
	ErrStaleSelection = errors.New("markup: selection captured against an earlier revision")
	// ErrInvalidSelection indicates a descriptor whose path or offsets do
	// not resolve inside the current tree.
	ErrInvalidSelection = errors.New("markup: selection does not resolve")
)

// Anchor addresses one end of a selection independently of any live node
// reference: a child-index path from the root plus an offset. When the path
// lands on a text node the offset counts runes; when it lands on an element
// the offset counts children.
type Anchor struct {
	Path   []int `json:"path"`
	Offset int   `json:"offset"`
}

// Selection is a serializable selection descriptor bound to the tree
// revision it was captured at.
type Selection struct {
	Start    Anchor `json:"start"`
	End      Anchor `json:"end"`
	Revision uint64 `json:"revision"`
}

// position is a resolved anchor: a live node plus an offset into it.
type position struct {
	node   *Node
	offset int
}

// Select captures a descriptor for the given anchors at the current
// revision.
func (d *Document) Select(start, end Anchor) Selection {
	return Selection{Start: start, End: end, Revision: d.revision}
}

// SelectTextRange builds a selection covering the global rune interval
// [startRune, endRune) of the document's plain text.
func (d *Document) SelectTextRange(startRune, endRune int) (Selection, error) {
	if startRune > endRune {
		startRune, endRune = endRune, startRune
	}
	startAnchor, ok := d.anchorAtTextOffset(startRune)
	if !ok {
		return Selection{}, ErrInvalidSelection
	}
	endAnchor, ok := d.anchorAtTextOffset(endRune)
	if !ok {
		return Selection{}, ErrInvalidSelection
	}
	return d.Select(startAnchor, endAnchor), nil
}

// anchorAtTextOffset locates the text node containing the global rune
// offset. The end of the document is addressed as an element anchor on the
// root.
func (d *Document) anchorAtTextOffset(target int) (Anchor, bool) {
	consumed := 0
	var found *Node
	var foundOffset int
	var walk func(node *Node) bool
	walk = func(node *Node) bool {
		if node.Kind == KindText {
			length := node.runeLen()
			if target <= consumed+length {
				found = node
				foundOffset = target - consumed
				return true
			}
			consumed += length
			return false
		}
		for _, child := range node.Children {
			if walk(child) {
				return true
			}
		}
		return false
	}
	if walk(d.root) {
		return Anchor{Path: d.pathOf(found), Offset: foundOffset}, true
	}
	if target == consumed {
		return Anchor{Path: nil, Offset: len(d.root.Children)}, true
	}
	return Anchor{}, false
}

// pathOf computes the child-index path from the root down to node.
func (d *Document) pathOf(node *Node) []int {
	var reversed []int
	for current := node; current != nil && current != d.root; current = current.parent {
		parent := current.parent
		if parent == nil {
			return nil
		}
		reversed = append(reversed, current.indexIn(parent))
	}
	path := make([]int, len(reversed))
	for i := range reversed {
		path[i] = reversed[len(reversed)-1-i]
	}
	return path
}

// resolveAnchor follows a path from the root and validates the offset.
func (d *Document) resolveAnchor(anchor Anchor) (position, error) {
	node := d.root
	for _, index := range anchor.Path {
		if node.Kind != KindElement || index < 0 || index >= len(node.Children) {
			return position{}, ErrInvalidSelection
		}
		node = node.Children[index]
	}
	limit := len(node.Children)
	if node.Kind == KindText {
		limit = node.runeLen()
	}
	if anchor.Offset < 0 || anchor.Offset > limit {
		return position{}, ErrInvalidSelection
	}
	return position{node: node, offset: anchor.Offset}, nil
}

// resolve validates a descriptor against the live tree, rejecting stale and
// unresolvable selections and ordering the endpoints.
func (d *Document) resolve(sel Selection) (position, position, error) {
	if sel.Revision != d.revision {
		return position{}, position{}, ErrStaleSelection
	}
	start, err := d.resolveAnchor(sel.Start)
	if err != nil {
		return position{}, position{}, err
	}
	end, err := d.resolveAnchor(sel.End)
	if err != nil {
		return position{}, position{}, err
	}
	if d.absoluteOffset(start) > d.absoluteOffset(end) {
		start, end = end, start
	}
	return start, end, nil
}

// Collapsed reports whether the descriptor resolves to a zero-width range.
// Stale or unresolvable descriptors count as collapsed: they select
// nothing actionable.
func (d *Document) Collapsed(sel Selection) bool {
	start, end, err := d.resolve(sel)
	if err != nil {
		return true
	}
	return start.node == end.node && start.offset == end.offset
}

// TextInRange returns the plain text covered by the selection.
func (d *Document) TextInRange(sel Selection) (string, error) {
	start, end, err := d.resolve(sel)
	if err != nil {
		return "", err
	}
	from := d.absoluteOffset(start)
	to := d.absoluteOffset(end)
	runes := []rune(d.PlainText())
	if from < 0 || to > len(runes) {
		return "", ErrInvalidSelection
	}
	return string(runes[from:to]), nil
}

// absoluteOffset maps a resolved position to a global rune offset over the
// document's plain text.
func (d *Document) absoluteOffset(pos position) int {
	total := 0
	done := false
	var walk func(node *Node)
	walk = func(node *Node) {
		if done {
			return
		}
		if node == pos.node {
			if node.Kind == KindText {
				total += pos.offset
			} else {
				for _, child := range node.Children[:pos.offset] {
					total += subtreeRuneLen(child)
				}
			}
			done = true
			return
		}
		if node.Kind == KindText {
			total += node.runeLen()
			return
		}
		for _, child := range node.Children {
			walk(child)
			if done {
				return
			}
		}
	}
	walk(d.root)
	return total
}

func subtreeRuneLen(node *Node) int {
	if node.Kind == KindText {
		return node.runeLen()
	}
	total := 0
	for _, child := range node.Children {
		total += subtreeRuneLen(child)
	}
	return total
}
