// Package scroll keeps a child node visible inside a scrollable container.
package scroll

import "overlaykit/internal/node"

// DefaultMargin is the gap kept between a revealed child and the container
// edge when no margin is configured, measured in layout units.
const DefaultMargin = 8

// Reconcile scrolls container by the smallest amount that brings child within
// margin of the visible area. A child that is already inside the margin band,
// or that overflows both edges at once, causes no scroll. Nil arguments and
// a child outside container are ignored.
func Reconcile(child, container *node.Node, margin int, behavior node.ScrollBehavior) {
	if d := Delta(child, container, margin); d != 0 {
		container.ScrollTo(container.ScrollTop+d, behavior)
	}
}

// Delta reports the scroll change Reconcile would request, before clamping.
func Delta(child, container *node.Node, margin int) int {
	if child == nil || container == nil || child == container || !container.Contains(child) {
		return 0
	}
	c := child.BoundingRect()
	v := container.BoundingRect()

	above := c.Y < v.Y+margin
	below := c.Bottom() > v.Bottom()-margin
	switch {
	case above && below:
		return 0
	case above:
		// leading edge lands margin below the container top
		return c.Y - v.Y - margin
	case below:
		return c.Bottom() - v.Bottom() + margin
	}
	return 0
}
