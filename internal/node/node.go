// Package node provides the retained UI tree the widget layer operates on.
//
// It plays the part a browser DOM plays for web widgets: nodes with kinds,
// attributes and class markers, a Document that owns real input focus,
// capture/bubble event dispatch, layout geometry with scroll offsets, and
// subtree mutation notifications. The renderer (internal/render) assigns
// geometry and paints; the interaction packages only read and mutate the tree.
//
// Everything here is single-threaded: it is driven from the Bubble Tea update
// loop and performs no locking.
package node

// Kind classifies a node for focus, default actions and painting.
type Kind int

const (
	KindBox Kind = iota
	KindText
	KindButton
	KindInput
	KindCheckbox
	KindList
	KindItem
	KindSpinner
	KindDetails
	KindSeparator
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindText:
		return "text"
	case KindButton:
		return "button"
	case KindInput:
		return "input"
	case KindCheckbox:
		return "checkbox"
	case KindList:
		return "list"
	case KindItem:
		return "item"
	case KindSpinner:
		return "spinner"
	case KindDetails:
		return "details"
	case KindSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// interactive reports whether nodes of this kind take focus by default.
func (k Kind) interactive() bool {
	switch k {
	case KindButton, KindInput, KindCheckbox, KindItem, KindDetails:
		return true
	}
	return false
}

// Node is a single element of the UI tree.
type Node struct {
	ID       string
	Kind     Kind
	Label    string
	Value    string
	Checked  bool
	Disabled bool
	Hidden   bool
	// Open is the disclosure state of a KindDetails node.
	Open bool
	// Focusable makes a non-interactive kind focusable.
	Focusable bool
	// TabIndex below zero keeps a focusable node out of Tab order.
	TabIndex int
	// Height fixes the node's height in rows; zero means content height.
	Height int
	// Width fixes the node's width in columns; zero means the parent's width.
	Width int
	// Anchor positions a portal layer absolutely; nil means flow layout.
	Anchor *Point

	Bounds             Rect
	ScrollTop          int
	LastScrollBehavior ScrollBehavior

	attrs         map[string]string
	classes       map[string]struct{}
	parent        *Node
	children      []*Node
	doc           *Document
	capture       map[EventType][]*listener
	bubble        map[EventType][]*listener
	defaultAction func(*Event)
}

// New creates a detached node.
func New(kind Kind, id, label string) *Node {
	n := &Node{ID: id, Kind: kind, Label: label}
	if kind == KindItem {
		n.TabIndex = -1
	}
	return n
}

// NewBox creates a detached container node.
func NewBox(id string, children ...*Node) *Node {
	n := New(KindBox, id, "")
	n.AppendChild(children...)
	return n
}

// NewText creates a static text node.
func NewText(label string) *Node { return New(KindText, "", label) }

// NewButton creates a button node.
func NewButton(id, label string) *Node { return New(KindButton, id, label) }

// NewInput creates a text input node.
func NewInput(id string) *Node { return New(KindInput, id, "") }

// NewCheckbox creates a checkbox node.
func NewCheckbox(id, label string) *Node { return New(KindCheckbox, id, label) }

// NewItem creates a list item node. Items are focusable but not tabbable.
func NewItem(id, label string) *Node { return New(KindItem, id, label) }

// Parent returns the node's parent or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the node's children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// Root returns the top-most ancestor (or n itself).
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Document returns the owning document when n is connected, else nil.
func (n *Node) Document() *Document {
	if n == nil {
		return nil
	}
	r := n.Root()
	if r.doc != nil && r.doc.Body == r {
		return r.doc
	}
	return nil
}

// IsConnected reports whether n is attached to a document body.
func (n *Node) IsConnected() bool { return n.Document() != nil }

// Contains reports whether o is n or one of its descendants.
func (n *Node) Contains(o *Node) bool {
	if n == nil || o == nil {
		return false
	}
	for c := o; c != nil; c = c.parent {
		if c == n {
			return true
		}
	}
	return false
}

// AppendChild attaches children at the end, detaching them from any previous
// parent first. It returns n for chaining.
func (n *Node) AppendChild(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.detach()
		c.parent = n
		n.children = append(n.children, c)
	}
	if len(children) > 0 {
		n.notifyMutation()
	}
	return n
}

// InsertBefore attaches c before ref. A nil or foreign ref appends.
func (n *Node) InsertBefore(c, ref *Node) {
	if c == nil {
		return
	}
	c.detach()
	idx := n.indexOf(ref)
	c.parent = n
	if idx < 0 {
		n.children = append(n.children, c)
	} else {
		n.children = append(n.children, nil)
		copy(n.children[idx+1:], n.children[idx:])
		n.children[idx] = c
	}
	n.notifyMutation()
}

// RemoveChild detaches c from n. It reports whether c was a child.
func (n *Node) RemoveChild(c *Node) bool {
	idx := n.indexOf(c)
	if idx < 0 {
		return false
	}
	doc := n.Document()
	n.children = append(n.children[:idx], n.children[idx+1:]...)
	c.parent = nil
	if doc != nil {
		doc.forgetSubtree(c)
	}
	n.notifyMutation()
	return true
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// ReplaceChildren swaps the full child list, notifying observers once.
func (n *Node) ReplaceChildren(children ...*Node) {
	doc := n.Document()
	keep := make(map[*Node]struct{}, len(children))
	for _, c := range children {
		if c != nil {
			keep[c] = struct{}{}
		}
	}
	for _, old := range n.children {
		if _, ok := keep[old]; ok {
			continue
		}
		old.parent = nil
		if doc != nil {
			doc.forgetSubtree(old)
		}
	}
	n.children = n.children[:0]
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.parent != nil && c.parent != n {
			c.detach()
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	n.notifyMutation()
}

func (n *Node) detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

func (n *Node) indexOf(c *Node) int {
	if c == nil {
		return -1
	}
	for i, child := range n.children {
		if child == c {
			return i
		}
	}
	return -1
}

func (n *Node) notifyMutation() {
	if doc := n.Document(); doc != nil {
		doc.notify(n)
	}
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the visited node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// ByID returns the first node in n's subtree with the given id.
func (n *Node) ByID(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// Attr returns an attribute value.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// SetAttr sets an attribute.
func (n *Node) SetAttr(name, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
}

// RemoveAttr deletes an attribute.
func (n *Node) RemoveAttr(name string) { delete(n.attrs, name) }

// Role returns the "role" attribute.
func (n *Node) Role() string { return n.attrs["role"] }

// AddClass sets a class marker. Adding twice is a no-op.
func (n *Node) AddClass(name string) {
	if n.classes == nil {
		n.classes = make(map[string]struct{})
	}
	n.classes[name] = struct{}{}
}

// RemoveClass clears a class marker. Removing an absent class is a no-op.
func (n *Node) RemoveClass(name string) { delete(n.classes, name) }

// HasClass reports whether the class marker is set.
func (n *Node) HasClass(name string) bool {
	_, ok := n.classes[name]
	return ok
}

// Rendered reports whether n and all its ancestors are shown. Children of a
// closed details node (other than the details node itself) are not rendered.
func (n *Node) Rendered() bool {
	for c := n; c != nil; c = c.parent {
		if c.Hidden {
			return false
		}
		if c != n && c.Kind == KindDetails && !c.Open {
			return false
		}
	}
	return true
}

// IsFocusable reports whether n can hold real focus.
func (n *Node) IsFocusable() bool {
	if n == nil || n.Disabled || !n.Rendered() {
		return false
	}
	return n.Kind.interactive() || n.Focusable
}

// IsTabbable reports whether n participates in Tab order.
func (n *Node) IsTabbable() bool {
	return n.IsFocusable() && n.TabIndex >= 0
}

// SetDefaultAction installs the action run after dispatch of an event
// targeted at n, unless a listener prevented the default.
func (n *Node) SetDefaultAction(fn func(*Event)) { n.defaultAction = fn }
