package dom

import "strings"

// AppendChild attaches child as the last child, detaching it from any previous parent.
func (n *Node) AppendChild(child *Node) {
	n.InsertBefore(child, nil)
}

// InsertBefore attaches child before ref, or at the end when ref is nil or not a child.
func (n *Node) InsertBefore(child, ref *Node) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	idx := len(n.children)
	for i, c := range n.children {
		if c == ref {
			idx = i
			break
		}
	}
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = child
	n.structureChanged()
}

// RemoveChild detaches child. It reports false when child is not a child of n.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			n.structureChanged()
			return true
		}
	}
	return false
}

// SetAttr sets an attribute. id, class and style are reflected into their
// dedicated fields.
func (n *Node) SetAttr(name, value string) {
	name = strings.ToLower(name)
	if old, ok := n.attrs[name]; ok && old == value {
		return
	}
	n.attrs[name] = value
	switch name {
	case "id":
		n.id = value
	case "class":
		n.classes = strings.Fields(value)
	case "style":
		n.inlineStyle = value
		n.MarkStyleDirty()
		return
	}
	n.matchStateChanged()
}

// RemoveAttr deletes an attribute.
func (n *Node) RemoveAttr(name string) {
	name = strings.ToLower(name)
	if _, ok := n.attrs[name]; !ok {
		return
	}
	delete(n.attrs, name)
	switch name {
	case "id":
		n.id = ""
	case "class":
		n.classes = nil
	case "style":
		n.inlineStyle = ""
		n.MarkStyleDirty()
		return
	}
	n.matchStateChanged()
}

func (n *Node) SetID(id string)           { n.SetAttr("id", id) }
func (n *Node) SetInlineStyle(css string) { n.SetAttr("style", css) }

// SetClass adds or removes a single class.
func (n *Node) SetClass(name string, on bool) {
	if n.HasClass(name) == on {
		return
	}
	classes := make([]string, 0, len(n.classes)+1)
	for _, c := range n.classes {
		if c != name {
			classes = append(classes, c)
		}
	}
	if on {
		classes = append(classes, name)
	}
	n.SetAttr("class", strings.Join(classes, " "))
}

// SetPseudoClass toggles a dynamic pseudo-class such as hover or focus.
func (n *Node) SetPseudoClass(name string, on bool) {
	if n.pseudo[name] == on {
		return
	}
	if n.pseudo == nil {
		n.pseudo = make(map[string]bool)
	}
	if on {
		n.pseudo[name] = true
	} else {
		delete(n.pseudo, name)
	}
	n.matchStateChanged()
}

// SetText replaces a text node's content.
func (n *Node) SetText(text string) {
	if n.text == text {
		return
	}
	n.text = text
	if n.parent != nil {
		// :empty on the parent may flip.
		n.parent.structureChanged()
		return
	}
	n.MarkLayoutDirty()
}

// -- Dirty tracking --

func (n *Node) StyleDirty() bool      { return n.styleDirty }
func (n *Node) LayoutDirty() bool     { return n.layoutDirty }
func (n *Node) DescendantDirty() bool { return n.descendantDirty }

// MarkStyleDirty schedules the node for re-resolution. Style changes imply layout changes.
func (n *Node) MarkStyleDirty() {
	n.styleDirty = true
	n.MarkLayoutDirty()
}

// MarkLayoutDirty schedules the node for re-layout and flags every ancestor.
func (n *Node) MarkLayoutDirty() {
	n.layoutDirty = true
	for p := n.parent; p != nil && !p.descendantDirty; p = p.parent {
		p.descendantDirty = true
	}
}

// MarkSubtreeStyleDirty marks n and every descendant for re-resolution.
func (n *Node) MarkSubtreeStyleDirty() {
	n.Walk(func(d *Node) bool {
		d.styleDirty = true
		d.layoutDirty = true
		if len(d.children) > 0 {
			d.descendantDirty = true
		}
		return true
	})
	n.MarkLayoutDirty()
}

// ClearStyleDirty is called by the style resolver once the node is resolved.
func (n *Node) ClearStyleDirty() { n.styleDirty = false }

// ClearLayoutDirty is called by the layout engine once the node has a final box.
func (n *Node) ClearLayoutDirty() {
	n.layoutDirty = false
	n.descendantDirty = false
}

// matchStateChanged handles changes to anything a selector can test. Descendants
// may match through descendant combinators and later siblings through sibling
// combinators, so all of them are restyled.
func (n *Node) matchStateChanged() {
	n.MarkSubtreeStyleDirty()
	if n.parent == nil {
		return
	}
	after := false
	for _, c := range n.parent.children {
		if after {
			c.MarkSubtreeStyleDirty()
		}
		if c == n {
			after = true
		}
	}
}

// structureChanged restyles every child: structural pseudo-classes and sibling
// combinators depend on child positions.
func (n *Node) structureChanged() {
	n.styleDirty = true
	for _, c := range n.children {
		c.MarkSubtreeStyleDirty()
	}
	n.MarkLayoutDirty()
}
