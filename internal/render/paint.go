package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"overlaykit/internal/focuszone"
	"overlaykit/internal/node"
	"overlaykit/internal/portal"
)

const cursor = "█"

// Paint draws a laid-out document as height lines of width cells. Portal
// layers are composited over the page in mount order; content beneath a
// visible modal layer is dimmed when the theme asks for it.
func Paint(doc *node.Document, width, height int, theme Theme) string {
	p := &painter{doc: doc, theme: theme, c: newCanvas(width, height)}
	screen := node.Rect{W: width, H: height}
	for _, n := range doc.Body.Children() {
		if !portal.IsLayer(n) {
			p.node(n, screen)
		}
	}
	for _, layer := range doc.Body.Children() {
		if !portal.IsLayer(layer) {
			continue
		}
		for _, region := range layer.Children() {
			if region.Hidden {
				continue
			}
			if theme.DimUnderModal && dims(region) {
				p.c.dim(theme.Scrim)
			}
			p.node(region, screen)
		}
	}
	return strings.Join(p.c.lines, "\n")
}

// dims reports whether region is a modal dialog. Menus and popovers leave
// the page undimmed.
func dims(region *node.Node) bool {
	modal, _ := region.Attr("aria-modal")
	role := region.Role()
	return modal == "true" && (role == "dialog" || role == "alertdialog")
}

type painter struct {
	doc   *node.Document
	theme Theme
	c     *canvas
}

func (p *painter) node(n *node.Node, clip node.Rect) {
	if n.Hidden {
		return
	}
	r := n.BoundingRect()
	if framed(n) {
		p.frame(r, clip)
	}
	ix, iy := insets(n)
	inner := node.Rect{X: r.X + ix, Y: r.Y + iy, W: max(r.W-2*ix, 0), H: max(r.H-2*iy, 0)}

	own := intersect(clip, inner)
	for i, row := range p.rows(n, inner.W) {
		p.c.put(inner.X, inner.Y+i, row, own)
	}

	if !showsChildren(n) {
		return
	}
	if n.Height > 0 || framed(n) {
		clip = intersect(clip, inner)
	}
	for _, c := range n.Children() {
		p.node(c, clip)
	}
}

func (p *painter) frame(r, clip node.Rect) {
	if r.W < 2 || r.H < 2 {
		return
	}
	box := p.theme.Border.Width(r.W - 2).Height(r.H - 2).Render("")
	for i, line := range strings.Split(box, "\n") {
		p.c.put(r.X, r.Y+i, line, clip)
	}
}

// rows returns the styled rows n draws for itself.
func (p *painter) rows(n *node.Node, w int) []string {
	t := p.theme
	focused := p.doc.ActiveElement() == n
	switch n.Kind {
	case node.KindList:
		return nil
	case node.KindBox:
		if n.Label == "" {
			return nil
		}
		return []string{t.Title.Render(n.Label)}
	case node.KindText:
		style := t.Normal
		if n.HasClass("group-header") {
			style = t.Section
		}
		lines := strings.Split(n.Label, "\n")
		for i, l := range lines {
			lines[i] = style.Render(l)
		}
		return lines
	case node.KindSeparator:
		return []string{t.Muted.Render(strings.Repeat("─", w))}
	case node.KindSpinner:
		return []string{t.Status.Render(n.Label) + t.Muted.Render(" Loading…")}
	case node.KindInput:
		return []string{p.input(n, focused)}
	case node.KindItem:
		active := focused || n.HasClass(focuszone.ActiveDescendantClass)
		style := t.Normal
		switch {
		case n.Disabled:
			style = t.Muted
		case active:
			style = t.Selected
		}
		row := style.Render(plainLabel(n))
		if d, ok := n.Attr("aria-description"); ok {
			row += t.Muted.Render("  " + d)
		}
		return []string{row}
	}
	style := t.Normal
	switch {
	case n.Disabled:
		style = t.Muted
	case focused:
		style = t.Selected
	}
	return []string{style.Render(plainLabel(n))}
}

func (p *painter) input(n *node.Node, focused bool) string {
	t := p.theme
	prompt := t.Muted.Render("› ")
	if n.Value == "" {
		ph, _ := n.Attr("placeholder")
		if focused {
			return prompt + t.Normal.Render(cursor) + t.Muted.Render(ph)
		}
		return prompt + t.Muted.Render(ph)
	}
	if focused {
		return prompt + t.Normal.Render(n.Value+cursor)
	}
	return prompt + t.Normal.Render(n.Value)
}

// plainLabel is the unstyled text of n's own row.
func plainLabel(n *node.Node) string {
	switch n.Kind {
	case node.KindButton:
		return "[ " + n.Label + " ]"
	case node.KindCheckbox:
		if n.Checked {
			return "[x] " + n.Label
		}
		return "[ ] " + n.Label
	case node.KindDetails:
		if n.Open {
			return "▾ " + n.Label
		}
		return "▸ " + n.Label
	case node.KindItem:
		if n.HasClass(focuszone.ActiveDescendantClass) {
			return "▸ " + n.Label
		}
		return "  " + n.Label
	case node.KindSpinner:
		return n.Label + " Loading…"
	}
	return n.Label
}

func intersect(a, b node.Rect) node.Rect {
	x, y := max(a.X, b.X), max(a.Y, b.Y)
	r := min(a.Right(), b.Right())
	bt := min(a.Bottom(), b.Bottom())
	if r <= x || bt <= y {
		return node.Rect{X: x, Y: y}
	}
	return node.Rect{X: x, Y: y, W: r - x, H: bt - y}
}

// canvas is a grid of styled lines, all exactly w cells wide.
type canvas struct {
	w, h  int
	lines []string
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, lines: make([]string, h)}
	blank := strings.Repeat(" ", w)
	for i := range c.lines {
		c.lines[i] = blank
	}
	return c
}

// put draws s at (x, y), cut to clip.
func (c *canvas) put(x, y int, s string, clip node.Rect) {
	if y < clip.Y || y >= clip.Bottom() || y < 0 || y >= c.h {
		return
	}
	left, right := max(clip.X, 0), min(clip.Right(), c.w)
	sw := ansi.StringWidth(s)
	if x < left {
		s = ansi.Cut(s, left-x, sw)
		sw -= left - x
		x = left
	}
	if x+sw > right {
		s = ansi.Cut(s, 0, right-x)
		sw = right - x
	}
	if sw <= 0 {
		return
	}
	line := c.lines[y]
	c.lines[y] = ansi.Cut(line, 0, x) + s + ansi.Cut(line, x+sw, c.w)
}

func (c *canvas) dim(style lipgloss.Style) {
	for i, line := range c.lines {
		c.lines[i] = style.Render(ansi.Strip(line))
	}
}
