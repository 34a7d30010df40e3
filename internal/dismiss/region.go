package dismiss

import "overlaykit/internal/node"

// Region decides whether an event originated inside it.
type Region interface {
	Contains(ev *node.Event) bool
}

// RegionFunc adapts a predicate to Region.
type RegionFunc func(ev *node.Event) bool

// Contains implements Region.
func (f RegionFunc) Contains(ev *node.Event) bool { return f(ev) }

type nodeRegion struct{ n *node.Node }

// NodeRegion covers n and its descendants.
func NodeRegion(n *node.Node) Region { return nodeRegion{n: n} }

func (r nodeRegion) Contains(ev *node.Event) bool {
	return r.n != nil && r.n.Contains(ev.Target)
}

type refRegion struct{ ref *node.Ref }

// RefRegion covers the subtree of whatever ref points at when the event
// arrives. An empty ref contains nothing.
func RefRegion(ref *node.Ref) Region { return refRegion{ref: ref} }

func (r refRegion) Contains(ev *node.Event) bool {
	n := r.ref.Node()
	return n != nil && n.Contains(ev.Target)
}

type rectRegion struct{ r node.Rect }

// RectRegion covers a fixed screen rectangle.
func RectRegion(r node.Rect) Region { return rectRegion{r: r} }

func (r rectRegion) Contains(ev *node.Event) bool {
	return r.r.Contains(ev.X, ev.Y)
}

type boundsRegion struct{ n *node.Node }

// BoundsRegion covers n's on-screen rectangle as laid out at event time,
// regardless of which node the event targeted.
func BoundsRegion(n *node.Node) Region { return boundsRegion{n: n} }

func (r boundsRegion) Contains(ev *node.Event) bool {
	return r.n != nil && r.n.IsConnected() && !r.n.Hidden && r.n.BoundingRect().Contains(ev.X, ev.Y)
}
