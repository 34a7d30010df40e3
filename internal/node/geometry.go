package node

// Point is a cell position.
type Point struct {
	X, Y int
}

// Rect is a cell rectangle in layout coordinates.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) falls inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Bottom returns the first row below r.
func (r Rect) Bottom() int { return r.Y + r.H }

// Right returns the first column right of r.
func (r Rect) Right() int { return r.X + r.W }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// ScrollBehavior selects how a scroll is applied.
type ScrollBehavior int

const (
	// ScrollInstant jumps directly to the target offset.
	ScrollInstant ScrollBehavior = iota
	// ScrollSmooth asks the renderer to ease toward the target offset.
	ScrollSmooth
)

func (b ScrollBehavior) String() string {
	if b == ScrollSmooth {
		return "smooth"
	}
	return "instant"
}

// BoundingRect returns n's on-screen rectangle: its layout bounds shifted by
// the scroll offset of every ancestor.
func (n *Node) BoundingRect() Rect {
	r := n.Bounds
	for p := n.parent; p != nil; p = p.parent {
		r.Y -= p.ScrollTop
	}
	return r
}

// ScrollHeight is the full content height of n in rows.
func (n *Node) ScrollHeight() int {
	h := n.Bounds.H
	for _, c := range n.children {
		if !c.Rendered() {
			continue
		}
		if b := c.Bounds.Bottom() - n.Bounds.Y; b > h {
			h = b
		}
	}
	return h
}

// MaxScrollTop is the largest valid scroll offset for n.
func (n *Node) MaxScrollTop() int {
	m := n.ScrollHeight() - n.Bounds.H
	if m < 0 {
		return 0
	}
	return m
}

// ScrollTo sets the vertical scroll offset, clamped to the scrollable range.
func (n *Node) ScrollTo(top int, behavior ScrollBehavior) {
	if top > n.MaxScrollTop() {
		top = n.MaxScrollTop()
	}
	if top < 0 {
		top = 0
	}
	n.ScrollTop = top
	n.LastScrollBehavior = behavior
}

// ScrollBy shifts the scroll offset by delta rows.
func (n *Node) ScrollBy(delta int, behavior ScrollBehavior) {
	n.ScrollTo(n.ScrollTop+delta, behavior)
}
