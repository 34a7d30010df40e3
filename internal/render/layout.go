// Package render lays out a node tree as rows of terminal cells and paints
// it with Lip Gloss, compositing portal layers above the page.
package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"overlaykit/internal/node"
	"overlaykit/internal/overlay"
	"overlaykit/internal/portal"
)

// Overlay frame insets: border plus one column of padding.
const (
	frameX = 2
	frameY = 1

	inputMinWidth = 20
)

// Auto-sized overlays are clamped to these column counts.
var (
	minOverlayCols = overlay.MinWidthPixels / overlay.PixelsPerColumn
	maxOverlayCols = overlay.MaxWidthPixels / overlay.PixelsPerColumn
)

// Layout assigns bounds to every rendered node for a width by height screen
// and then runs the document's layout hooks. Page content stacks top to
// bottom; each portal layer is centred or placed at its anchor.
func Layout(doc *node.Document, width, height int) {
	body := doc.Body
	body.Bounds = node.Rect{W: width, H: height}
	y := 0
	for _, c := range body.Children() {
		if portal.IsLayer(c) {
			continue
		}
		y += block(c, 0, y, width)
	}
	for _, c := range body.Children() {
		if portal.IsLayer(c) {
			placeLayer(c, width, height)
		}
	}
	doc.LayoutDone()
}

// block lays out n with its top-left corner at (x, y) inside w columns and
// returns the rows it occupies.
func block(n *node.Node, x, y, w int) int {
	if n.Hidden {
		n.Bounds = node.Rect{X: x, Y: y}
		return 0
	}
	if n.Width > 0 && n.Width < w {
		w = n.Width
	}
	ix, iy := insets(n)
	cy := y + iy + ownRows(n)
	if showsChildren(n) {
		for _, c := range n.Children() {
			cy += block(c, x+ix, cy, max(w-2*ix, 0))
		}
	}
	h := cy - y + iy
	if n.Height > 0 {
		h = n.Height
	}
	n.Bounds = node.Rect{X: x, Y: y, W: w, H: h}
	if m := n.MaxScrollTop(); n.ScrollTop > m {
		n.ScrollTop = m
	}
	return h
}

func placeLayer(layer *node.Node, sw, sh int) {
	var bounds node.Rect
	for _, region := range layer.Children() {
		if region.Hidden {
			region.Bounds = node.Rect{}
			continue
		}
		w := region.Width
		if w == 0 {
			w = min(max(naturalWidth(region), minOverlayCols), maxOverlayCols)
		}
		w = min(w, sw)
		h := block(region, 0, 0, w)

		x, y := (sw-w)/2, (sh-h)/2
		if a := region.Anchor; a != nil {
			x, y = a.X, a.Y
		}
		x = min(max(x, 0), max(sw-w, 0))
		y = min(max(y, 0), max(sh-h, 0))
		block(region, x, y, w)
		bounds = union(bounds, region.Bounds)
	}
	layer.Bounds = bounds
}

func union(a, b node.Rect) node.Rect {
	if a.Empty() {
		return b
	}
	if b.Empty() {
		return a
	}
	x, y := min(a.X, b.X), min(a.Y, b.Y)
	return node.Rect{X: x, Y: y, W: max(a.Right(), b.Right()) - x, H: max(a.Bottom(), b.Bottom()) - y}
}

func framed(n *node.Node) bool {
	v, _ := n.Attr("data-overlay")
	return v == "true"
}

func insets(n *node.Node) (int, int) {
	if framed(n) {
		return frameX, frameY
	}
	return 0, 0
}

func showsChildren(n *node.Node) bool {
	return n.Kind != node.KindDetails || n.Open
}

// ownRows is the number of rows n draws itself before its children.
func ownRows(n *node.Node) int {
	switch n.Kind {
	case node.KindList:
		return 0
	case node.KindBox:
		if n.Label == "" {
			return 0
		}
		return 1
	case node.KindText:
		return strings.Count(n.Label, "\n") + 1
	}
	return 1
}

// naturalWidth is the width n would like, used to size auto overlays.
func naturalWidth(n *node.Node) int {
	if n.Hidden {
		return 0
	}
	if n.Width > 0 {
		return n.Width
	}
	w := 0
	switch n.Kind {
	case node.KindInput:
		ph, _ := n.Attr("placeholder")
		w = max(ansi.StringWidth(n.Value), ansi.StringWidth(ph), inputMinWidth) + 3
	case node.KindSeparator, node.KindList:
	default:
		for _, line := range strings.Split(plainLabel(n), "\n") {
			w = max(w, ansi.StringWidth(line))
		}
	}
	if showsChildren(n) {
		for _, c := range n.Children() {
			w = max(w, naturalWidth(c))
		}
	}
	ix, _ := insets(n)
	return w + 2*ix
}
