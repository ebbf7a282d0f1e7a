// Package dom is the element tree the style and layout passes operate on. It
// stores each element's matchable state (tag, id, classes, attributes,
// pseudo-classes, inline style) and the results written back by a pass.
package dom

import (
	"strings"

	"github.com/xkilldash9x/stylebox/internal/box"
	"github.com/xkilldash9x/stylebox/internal/property"
)

// NodeType distinguishes elements from text.
type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is an element or a text node. The tree owns children; parent links are
// non-owning back references.
type Node struct {
	Type NodeType

	tag         string
	id          string
	classes     []string
	attrs       map[string]string
	inlineStyle string
	pseudo      map[string]bool
	text        string

	parent   *Node
	children []*Node

	computed  *property.ComputedValues
	box       box.Box
	state     box.State
	fragments []box.Fragment

	styleDirty      bool
	layoutDirty     bool
	descendantDirty bool

	// StyleCache and LayoutCache are opaque slots owned by the style resolver
	// and the layout engine respectively.
	StyleCache  any
	LayoutCache any
}

// NewElement creates a detached element. New nodes start dirty.
func NewElement(tag string) *Node {
	return &Node{
		Type:        ElementNode,
		tag:         strings.ToLower(tag),
		attrs:       make(map[string]string),
		styleDirty:  true,
		layoutDirty: true,
	}
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, text: text, styleDirty: true, layoutDirty: true}
}

func (n *Node) IsElement() bool { return n.Type == ElementNode }
func (n *Node) IsText() bool    { return n.Type == TextNode }
func (n *Node) Tag() string     { return n.tag }
func (n *Node) ID() string      { return n.id }
func (n *Node) Text() string    { return n.text }

// Classes returns the class list. The slice must not be modified.
func (n *Node) Classes() []string { return n.classes }

// HasClass reports whether the class list contains name.
func (n *Node) HasClass(name string) bool {
	for _, c := range n.classes {
		if c == name {
			return true
		}
	}
	return false
}

// Attr returns an attribute value.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[strings.ToLower(name)]
	return v, ok
}

// Attributes returns a copy of the attribute map.
func (n *Node) Attributes() map[string]string {
	out := make(map[string]string, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

// InlineStyle returns the raw text of the element's style attribute.
func (n *Node) InlineStyle() string { return n.inlineStyle }

// PseudoClass reports whether a dynamic pseudo-class such as hover is set.
func (n *Node) PseudoClass(name string) bool { return n.pseudo[name] }

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

// ElementChildren returns the element children, skipping text.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.IsElement() {
			out = append(out, c)
		}
	}
	return out
}

// PreviousElementSibling returns the closest preceding element sibling.
func (n *Node) PreviousElementSibling() *Node {
	if n.parent == nil {
		return nil
	}
	var prev *Node
	for _, c := range n.parent.children {
		if c == n {
			return prev
		}
		if c.IsElement() {
			prev = c
		}
	}
	return nil
}

// ElementIndex returns the 1-based position among element siblings and the
// number of element siblings including n.
func (n *Node) ElementIndex() (index, count int) {
	if n.parent == nil {
		return 1, 1
	}
	for _, c := range n.parent.children {
		if !c.IsElement() {
			continue
		}
		count++
		if c == n {
			index = count
		}
	}
	return index, count
}

// IsEmpty reports whether the element has no element children and no text.
func (n *Node) IsEmpty() bool {
	for _, c := range n.children {
		if c.IsElement() || c.text != "" {
			return false
		}
	}
	return true
}

// Walk visits n and its descendants in document order. Returning false from fn
// skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Root returns the topmost ancestor.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Path renders a short selector-like description for logs.
func (n *Node) Path() string {
	if n.IsText() {
		return "#text"
	}
	var parts []string
	for e := n; e != nil; e = e.parent {
		p := e.tag
		if e.id != "" {
			p += "#" + e.id
		}
		parts = append(parts, p)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

// -- Results written by a pass --

func (n *Node) Computed() *property.ComputedValues      { return n.computed }
func (n *Node) SetComputed(cv *property.ComputedValues) { n.computed = cv }
func (n *Node) Box() box.Box                            { return n.box }
func (n *Node) SetBox(b box.Box)                        { n.box = b }
func (n *Node) State() box.State                        { return n.state }
func (n *Node) SetState(s box.State)                    { n.state = s }
func (n *Node) Fragments() []box.Fragment               { return n.fragments }
func (n *Node) SetFragments(f []box.Fragment)           { n.fragments = f }
