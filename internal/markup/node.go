package markup

// NodeKind discriminates tree node variants.
type NodeKind int

const (
	// KindText is a literal text run.
	KindText NodeKind = iota
	// KindElement is an inline markup element.
	KindElement
)

// Attribute is a single serialized element attribute. Order is preserved so
// serialization stays deterministic.
type Attribute struct {
	Key   string
	Value string
}

// Node is one node of the editable document tree. Text nodes carry Text and
// no children; element nodes carry Tag, Attrs, and Children. The parent
// pointer is maintained by the mutation helpers below.
type Node struct {
	Kind     NodeKind
	Tag      string
	Text     string
	Attrs    []Attribute
	Children []*Node
	parent   *Node
}

// NewText constructs a text node.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// NewElement constructs an element node with the given tag and attributes.
func NewElement(tag string, attrs ...Attribute) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: attrs}
}

// Attr returns the value of the named attribute, or "" when absent.
func (n *Node) Attr(key string) string {
	for _, attr := range n.Attrs {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

// SetAttr replaces the named attribute value, appending it when absent.
func (n *Node) SetAttr(key, value string) {
	for i, attr := range n.Attrs {
		if attr.Key == key {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attribute{Key: key, Value: value})
}

// Parent returns the node's parent, nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// AppendChild attaches child as the node's last child, maintaining the
// parent pointer the selection paths rely on.
func (n *Node) AppendChild(child *Node) {
	n.appendChild(child)
}

// indexIn returns the node's position among its parent's children, -1 when
// detached.
func (n *Node) indexIn(parent *Node) int {
	for i, child := range parent.Children {
		if child == n {
			return i
		}
	}
	return -1
}

// appendChild attaches child at the end of n's children.
func (n *Node) appendChild(child *Node) {
	child.parent = n
	n.Children = append(n.Children, child)
}

// insertChildren splices nodes into n's children at index.
func (n *Node) insertChildren(index int, nodes ...*Node) {
	for _, node := range nodes {
		node.parent = n
	}
	updated := make([]*Node, 0, len(n.Children)+len(nodes))
	updated = append(updated, n.Children[:index]...)
	updated = append(updated, nodes...)
	updated = append(updated, n.Children[index:]...)
	n.Children = updated
}

// removeChildren detaches and returns the children in [from, to).
func (n *Node) removeChildren(from, to int) []*Node {
	removed := make([]*Node, to-from)
	copy(removed, n.Children[from:to])
	for _, node := range removed {
		node.parent = nil
	}
	n.Children = append(n.Children[:from], n.Children[to:]...)
	return removed
}

// runeLen reports the length of a text node in runes. Selection offsets are
// rune offsets, not byte offsets.
func (n *Node) runeLen() int {
	return len([]rune(n.Text))
}

// cloneShallow copies an element node without its children.
func (n *Node) cloneShallow() *Node {
	attrs := make([]Attribute, len(n.Attrs))
	copy(attrs, n.Attrs)
	return &Node{Kind: n.Kind, Tag: n.Tag, Attrs: attrs}
}
