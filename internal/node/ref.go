package node

// Ref is a mutable holder of a node so callers can refer to nodes that are
// created or replaced later.
type Ref struct {
	Current *Node
}

// NewRef returns a ref pointing at n.
func NewRef(n *Node) *Ref { return &Ref{Current: n} }

// Node returns the referenced node. It is safe on a nil ref.
func (r *Ref) Node() *Node {
	if r == nil {
		return nil
	}
	return r.Current
}

// Attached reports whether the ref points at a connected node.
func (r *Ref) Attached() bool {
	return r.Node() != nil && r.Node().IsConnected()
}
