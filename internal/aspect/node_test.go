package aspect

// memNode is a minimal in-memory Node used by the package tests.
type memNode struct {
	name     string
	text     string
	charData bool
	attrs    map[string]string
	children []*memNode
}

func newMemNode(name string) *memNode {
	return &memNode{name: name, attrs: map[string]string{}}
}

func (n *memNode) AppendChild(name string) Node {
	c := newMemNode(name)
	n.children = append(n.children, c)
	return c
}

func (n *memNode) Child(name string) (Node, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func (n *memNode) SetText(s string)     { n.text, n.charData = s, false }
func (n *memNode) SetCharData(s string) { n.text, n.charData = s, true }
func (n *memNode) Text() string         { return n.text }

func (n *memNode) SetAttr(name, value string) { n.attrs[name] = value }

func (n *memNode) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *memNode) child(name string) *memNode {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (n *memNode) childNames() []string {
	names := make([]string, 0, len(n.children))
	for _, c := range n.children {
		names = append(names, c.name)
	}
	return names
}
