package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"overlaykit/internal/dismiss"
	"overlaykit/internal/node"
	"overlaykit/internal/portal"
)

type page struct {
	doc    *node.Document
	portal *portal.DocumentPortal
	opener *node.Node
	other  *node.Node
}

func newPage(t *testing.T) *page {
	t.Helper()
	p := &page{
		doc:    node.NewDocument(),
		opener: node.NewButton("open", "Open overlay"),
		other:  node.NewButton("other", "Other"),
	}
	p.portal = portal.New(p.doc)
	p.doc.Body.AppendChild(p.opener, p.other)
	require.True(t, p.doc.Focus(p.opener))
	return p
}

func (p *page) pointerDown(n *node.Node) {
	p.doc.Dispatch(&node.Event{Type: node.EventPointerDown, Target: n})
}

// dialog is caller state driving one overlay, the way a screen would.
type dialog struct {
	ov      *Overlay
	outside int
	escapes int
}

func (d *dialog) close(*node.Event) {
	d.escapes++
	d.ov.SetVisibility(Unmounted)
}

func TestNewValidatesProps(t *testing.T) {
	p := newPage(t)
	noop := func(*node.Event) {}
	ref := node.NewRef(p.opener)

	tests := []struct {
		name  string
		props Props
		want  error
	}{
		{"missing return focus", Props{OnEscape: noop, OnClickOutside: noop}, ErrMissingReturnFocus},
		{"missing escape", Props{ReturnFocusRef: ref, OnClickOutside: noop}, ErrMissingCallback},
		{"missing outside", Props{ReturnFocusRef: ref, OnEscape: noop}, ErrMissingCallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(p.doc, p.portal, tt.props)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := New(nil, p.portal, Props{})
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = New(p.doc, nil, Props{})
	assert.ErrorIs(t, err, ErrNoPortal)
	_, err = New(p.doc, p.portal, Props{ReturnFocusRef: ref, OnEscape: noop, OnClickOutside: noop, Width: "huge"})
	assert.Error(t, err)
}

func TestDialogInitialFocusEscapeReturnsFocus(t *testing.T) {
	p := newPage(t)
	confirm := node.NewButton("confirm", "Confirm")
	cancel := node.NewButton("cancel", "Cancel")
	d := &dialog{}
	ov, err := New(p.doc, p.portal, Props{
		ID:              "dialog",
		InitialFocusRef: node.NewRef(confirm),
		ReturnFocusRef:  node.NewRef(p.opener),
		OnClickOutside:  func(*node.Event) { d.outside++ },
		OnEscape:        d.close,
		Content:         []*node.Node{node.NewText("Are you sure?"), cancel, confirm},
	})
	require.NoError(t, err)
	d.ov = ov
	assert.Equal(t, Unmounted, ov.Visibility())
	assert.False(t, ov.Region().IsConnected())

	require.NoError(t, ov.SetVisibility(Visible))
	assert.True(t, ov.Region().IsConnected())
	assert.Same(t, confirm, p.doc.ActiveElement())
	assert.Equal(t, "dialog", ov.Region().Role())
	modal, _ := ov.Region().Attr("aria-modal")
	assert.Equal(t, "true", modal)
	assert.True(t, ov.Watching())

	p.doc.KeyDown("esc", nil)
	assert.Equal(t, 1, d.escapes)
	assert.Equal(t, Unmounted, ov.Visibility())
	assert.Same(t, p.opener, p.doc.ActiveElement())
	assert.False(t, ov.Region().IsConnected())
	assert.False(t, ov.Watching())

	p.doc.KeyDown("esc", nil)
	assert.Equal(t, 1, d.escapes, "no callbacks after close")
}

func TestInitialFocusFallsBackToFirstTabbable(t *testing.T) {
	p := newPage(t)
	first := node.NewButton("first", "First")
	detached := node.NewButton("gone", "Gone")
	ov, err := New(p.doc, p.portal, Props{
		InitialFocusRef: node.NewRef(detached),
		ReturnFocusRef:  node.NewRef(p.opener),
		OnClickOutside:  func(*node.Event) {},
		OnEscape:        func(*node.Event) {},
		Content:         []*node.Node{node.NewText("x"), first, node.NewButton("second", "Second")},
	})
	require.NoError(t, err)
	require.NoError(t, ov.SetVisibility(Visible))
	assert.Same(t, first, p.doc.ActiveElement())
}

func TestNoFocusableContentLeavesFocus(t *testing.T) {
	p := newPage(t)
	ov, err := New(p.doc, p.portal, Props{
		ReturnFocusRef: node.NewRef(p.opener),
		OnClickOutside: func(*node.Event) {},
		OnEscape:       func(*node.Event) {},
		Content:        []*node.Node{node.NewText("just text")},
	})
	require.NoError(t, err)
	require.NoError(t, ov.SetVisibility(Visible))
	assert.Same(t, p.opener, p.doc.ActiveElement())
}

func TestOutsideClickIsForwardedNotActedOn(t *testing.T) {
	p := newPage(t)
	inside := node.NewButton("inside", "Inside")
	var got []*node.Event
	ov, err := New(p.doc, p.portal, Props{
		IgnoreClickRefs: []dismiss.Region{dismiss.NodeRegion(p.opener)},
		ReturnFocusRef:  node.NewRef(p.opener),
		OnClickOutside:  func(ev *node.Event) { got = append(got, ev) },
		OnEscape:        func(*node.Event) {},
		Content:         []*node.Node{inside},
	})
	require.NoError(t, err)
	require.NoError(t, ov.SetVisibility(Visible))

	p.pointerDown(inside)
	p.pointerDown(p.opener)
	assert.Empty(t, got, "inside and ignored clicks are not outside")

	p.pointerDown(p.other)
	require.Len(t, got, 1)
	assert.Same(t, p.other, got[0].Target)
	assert.Equal(t, Visible, ov.Visibility(), "the caller decides whether to close")
}

func TestHiddenKeepsPortalMounted(t *testing.T) {
	p := newPage(t)
	btn := node.NewButton("btn", "Btn")
	escapes := 0
	ov, err := New(p.doc, p.portal, Props{
		ReturnFocusRef: node.NewRef(p.opener),
		OnClickOutside: func(*node.Event) {},
		OnEscape:       func(*node.Event) { escapes++ },
		Content:        []*node.Node{btn},
	})
	require.NoError(t, err)

	require.NoError(t, ov.SetVisibility(Visible))
	require.Same(t, btn, p.doc.ActiveElement())
	require.NoError(t, ov.SetVisibility(Hidden))

	assert.True(t, ov.Region().IsConnected())
	assert.True(t, ov.Region().Hidden)
	vis, _ := ov.Region().Attr("visibility")
	assert.Equal(t, "hidden", vis)
	assert.False(t, ov.Watching())
	assert.Same(t, p.opener, p.doc.ActiveElement())
	p.doc.KeyDown("esc", nil)
	assert.Zero(t, escapes)

	require.NoError(t, ov.SetVisibility(Visible))
	assert.Same(t, btn, p.doc.ActiveElement())
	assert.Len(t, p.portal.Layers(), 1, "re-showing reuses the mounted layer")
}

func TestUnmountedToHiddenMountsWithoutFocus(t *testing.T) {
	p := newPage(t)
	ov, err := New(p.doc, p.portal, Props{
		ReturnFocusRef: node.NewRef(p.opener),
		OnClickOutside: func(*node.Event) {},
		OnEscape:       func(*node.Event) {},
		Content:        []*node.Node{node.NewButton("b", "B")},
	})
	require.NoError(t, err)
	require.NoError(t, ov.SetVisibility(Hidden))
	assert.True(t, ov.Region().IsConnected())
	assert.Same(t, p.opener, p.doc.ActiveElement())
	assert.False(t, ov.Watching())
}

func TestDetachedReturnFocusIsSkipped(t *testing.T) {
	p := newPage(t)
	btn := node.NewButton("btn", "Btn")
	ov, err := New(p.doc, p.portal, Props{
		ReturnFocusRef: node.NewRef(p.opener),
		OnClickOutside: func(*node.Event) {},
		OnEscape:       func(*node.Event) {},
		Content:        []*node.Node{btn},
	})
	require.NoError(t, err)
	require.NoError(t, ov.SetVisibility(Visible))

	p.opener.Remove()
	require.NoError(t, ov.SetVisibility(Unmounted))
	assert.Nil(t, p.doc.ActiveElement())

	require.NoError(t, ov.SetVisibility(Unmounted), "repeated close is a no-op")
}

func TestTabIsTrapped(t *testing.T) {
	p := newPage(t)
	a, b := node.NewButton("a", "A"), node.NewButton("b", "B")
	ov, err := New(p.doc, p.portal, Props{
		ReturnFocusRef: node.NewRef(p.opener),
		OnClickOutside: func(*node.Event) {},
		OnEscape:       func(*node.Event) {},
		Content:        []*node.Node{a, b},
	})
	require.NoError(t, err)
	require.NoError(t, ov.SetVisibility(Visible))
	require.Same(t, a, p.doc.ActiveElement())

	p.doc.KeyDown("tab", nil)
	assert.Same(t, b, p.doc.ActiveElement())
	p.doc.KeyDown("tab", nil)
	assert.Same(t, a, p.doc.ActiveElement(), "tab wraps inside the overlay")
	p.doc.KeyDown("shift+tab", nil)
	assert.Same(t, b, p.doc.ActiveElement())

	require.NoError(t, ov.SetVisibility(Unmounted))
	p.doc.KeyDown("tab", nil)
	assert.Same(t, p.other, p.doc.ActiveElement(), "trap released on close")
}

func TestPointerOnStaticContentKeepsFocus(t *testing.T) {
	p := newPage(t)
	text := node.NewText("Nothing here takes focus.")
	body := node.NewBox("body", text)
	ok := node.NewButton("ok", "OK")
	ov, err := New(p.doc, p.portal, Props{
		ReturnFocusRef: node.NewRef(p.opener),
		OnClickOutside: func(*node.Event) {},
		OnEscape:       func(*node.Event) {},
		Content:        []*node.Node{body, ok},
	})
	require.NoError(t, err)
	require.NoError(t, ov.SetVisibility(Visible))
	require.Same(t, ok, p.doc.ActiveElement())

	p.pointerDown(text)
	assert.Same(t, ok, p.doc.ActiveElement(), "static text does not blur")
	p.pointerDown(ov.Region())
	assert.Same(t, ok, p.doc.ActiveElement(), "region padding does not blur")

	p.pointerDown(p.other)
	assert.Same(t, p.other, p.doc.ActiveElement(), "focusable page nodes still take focus")

	require.NoError(t, ov.SetVisibility(Unmounted))
	p.pointerDown(text)
	p.pointerDown(p.doc.Body)
	assert.Nil(t, p.doc.ActiveElement(), "hold released on close")
}

func TestTabPullsFocusBackIn(t *testing.T) {
	p := newPage(t)
	a, b := node.NewButton("a", "A"), node.NewButton("b", "B")
	ov, err := New(p.doc, p.portal, Props{
		ReturnFocusRef: node.NewRef(p.opener),
		OnClickOutside: func(*node.Event) {},
		OnEscape:       func(*node.Event) {},
		Content:        []*node.Node{a, b},
	})
	require.NoError(t, err)
	require.NoError(t, ov.SetVisibility(Visible))

	p.doc.Blur()
	p.doc.KeyDown("tab", nil)
	assert.Same(t, a, p.doc.ActiveElement(), "tab from nowhere lands on the first tabbable")

	p.doc.Blur()
	p.doc.KeyDown("shift+tab", nil)
	assert.Same(t, b, p.doc.ActiveElement(), "shift+tab from nowhere lands on the last tabbable")

	require.True(t, p.doc.Focus(p.other))
	p.doc.KeyDown("tab", nil)
	assert.Same(t, a, p.doc.ActiveElement(), "tab from the page re-enters the overlay")
}

func TestOnlyTopmostOverlayPullsFocus(t *testing.T) {
	p := newPage(t)
	parentBtn := node.NewButton("parent-btn", "More")
	parent, err := New(p.doc, p.portal, Props{
		ID:             "parent",
		ReturnFocusRef: node.NewRef(p.opener),
		OnClickOutside: func(*node.Event) {},
		OnEscape:       func(*node.Event) {},
		Content:        []*node.Node{parentBtn},
	})
	require.NoError(t, err)
	require.NoError(t, parent.SetVisibility(Visible))

	first, last := node.NewButton("child-first", "First"), node.NewButton("child-last", "Last")
	child, err := New(p.doc, p.portal, Props{
		ID:             "child",
		ReturnFocusRef: node.NewRef(parentBtn),
		OnClickOutside: func(*node.Event) {},
		OnEscape:       func(*node.Event) {},
		Content:        []*node.Node{first, last},
	})
	require.NoError(t, err)
	require.NoError(t, child.SetVisibility(Visible))

	p.doc.Blur()
	p.doc.KeyDown("tab", nil)
	assert.Same(t, first, p.doc.ActiveElement())

	// Focus moved into the covered parent goes back to the child.
	p.pointerDown(parentBtn)
	require.Same(t, parentBtn, p.doc.ActiveElement())
	p.doc.KeyDown("shift+tab", nil)
	assert.Same(t, last, p.doc.ActiveElement())

	require.NoError(t, child.SetVisibility(Hidden))
	assert.Same(t, parentBtn, p.doc.ActiveElement())
	p.doc.Blur()
	p.doc.KeyDown("tab", nil)
	assert.Same(t, parentBtn, p.doc.ActiveElement(), "a hidden child no longer covers the parent")
}

func TestNestedOverlaysIgnoreEachOther(t *testing.T) {
	p := newPage(t)
	childRef := &node.Ref{}
	parentOutside, childOutside := 0, 0

	parentBtn := node.NewButton("parent-btn", "More")
	parent, err := New(p.doc, p.portal, Props{
		ID:              "parent",
		IgnoreClickRefs: []dismiss.Region{dismiss.RefRegion(childRef)},
		ReturnFocusRef:  node.NewRef(p.opener),
		OnClickOutside:  func(*node.Event) { parentOutside++ },
		OnEscape:        func(*node.Event) {},
		Content:         []*node.Node{parentBtn},
	})
	require.NoError(t, err)
	require.NoError(t, parent.SetVisibility(Visible))

	childBtn := node.NewButton("child-btn", "Child")
	child, err := New(p.doc, p.portal, Props{
		ID:              "child",
		IgnoreClickRefs: []dismiss.Region{parent.DismissRegion()},
		ReturnFocusRef:  node.NewRef(parentBtn),
		OnClickOutside:  func(*node.Event) { childOutside++ },
		OnEscape:        func(*node.Event) {},
		Content:         []*node.Node{childBtn},
	})
	require.NoError(t, err)
	childRef.Current = child.Region()
	require.NoError(t, child.SetVisibility(Visible))
	assert.Same(t, childBtn, p.doc.ActiveElement())

	p.pointerDown(childBtn)
	p.pointerDown(parentBtn)
	assert.Zero(t, parentOutside)
	assert.Zero(t, childOutside)

	p.pointerDown(p.other)
	assert.Equal(t, 1, parentOutside)
	assert.Equal(t, 1, childOutside)

	require.NoError(t, child.SetVisibility(Unmounted))
	assert.Same(t, parentBtn, p.doc.ActiveElement())
	assert.Equal(t, Visible, parent.Visibility())
}

func TestVisiblePeriodIsTraced(t *testing.T) {
	p := newPage(t)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { tp.Shutdown(t.Context()) })

	ov, err := New(p.doc, p.portal, Props{
		ReturnFocusRef: node.NewRef(p.opener),
		OnClickOutside: func(*node.Event) {},
		OnEscape:       func(*node.Event) {},
		Content:        []*node.Node{node.NewButton("b", "B")},
		Tracer:         tp.Tracer("test"),
	})
	require.NoError(t, err)
	require.NoError(t, ov.SetVisibility(Visible))
	p.doc.KeyDown("esc", nil)
	require.Empty(t, sr.Ended())
	require.NoError(t, ov.SetVisibility(Hidden))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "overlay.visible", spans[0].Name())
	var names []string
	for _, ev := range spans[0].Events() {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"focus.first-tabbable", "dismiss.escape", "focus.return"}, names)
}

func TestSizeBuckets(t *testing.T) {
	widths := map[Width]int{WidthSmall: 32, WidthMedium: 40, WidthLarge: 60, WidthXLarge: 80, WidthXXLarge: 120, WidthAuto: 0}
	for w, cells := range widths {
		if got := w.Cells(); got != cells {
			t.Errorf("Width(%s).Cells() = %d, want %d", w, got, cells)
		}
	}
	heights := map[Height]int{HeightXSmall: 12, HeightSmall: 16, HeightMedium: 20, HeightLarge: 27, HeightXLarge: 37, HeightAuto: 0}
	for h, cells := range heights {
		if got := h.Cells(); got != cells {
			t.Errorf("Height(%s).Cells() = %d, want %d", h, got, cells)
		}
	}
	px, ok := WidthLarge.Pixels()
	assert.True(t, ok)
	assert.Equal(t, 480, px)
	_, ok = HeightAuto.Pixels()
	assert.False(t, ok)
	assert.NoError(t, Width("").Validate())
	assert.Error(t, Height("tall").Validate())
}
