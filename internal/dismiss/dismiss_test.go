package dismiss

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overlaykit/internal/node"
)

type layout struct {
	doc     *node.Document
	toggle  *node.Node
	overlay *node.Node
	inside  *node.Node
	other   *node.Node
}

// newLayout places a toggle button, an unrelated button and an overlay with
// one button on a single row each.
func newLayout() *layout {
	l := &layout{
		doc:     node.NewDocument(),
		toggle:  node.NewButton("toggle", "Open"),
		other:   node.NewButton("other", "Other"),
		overlay: node.NewBox("overlay"),
		inside:  node.NewButton("inside", "Inside"),
	}
	l.toggle.Bounds = node.Rect{X: 0, Y: 0, W: 10, H: 1}
	l.other.Bounds = node.Rect{X: 0, Y: 1, W: 10, H: 1}
	l.overlay.Bounds = node.Rect{X: 0, Y: 5, W: 20, H: 3}
	l.inside.Bounds = node.Rect{X: 1, Y: 6, W: 8, H: 1}
	l.overlay.AppendChild(l.inside)
	l.doc.Body.AppendChild(l.toggle, l.other, l.overlay)
	return l
}

func TestOutsidePointerReported(t *testing.T) {
	l := newLayout()
	var outside []*node.Event
	w, err := Watch(l.doc, Options{
		Target:    NodeRegion(l.overlay),
		Ignore:    []Region{NodeRegion(l.toggle)},
		OnOutside: func(ev *node.Event) { outside = append(outside, ev) },
	})
	require.NoError(t, err)
	t.Cleanup(func() { w.Unwatch() })

	l.doc.PointerDown(2, 6, nil) // inside overlay
	assert.Empty(t, outside)

	l.doc.PointerDown(2, 0, nil) // ignored toggle
	assert.Empty(t, outside)

	l.doc.PointerDown(2, 1, nil) // unrelated button
	require.Len(t, outside, 1)
	assert.Same(t, l.other, outside[0].Target)

	l.doc.Dispatch(&node.Event{Type: node.EventTouchStart, Target: l.other})
	assert.Len(t, outside, 2)
}

func TestIgnoreRegionsAreCopied(t *testing.T) {
	l := newLayout()
	ignore := []Region{NodeRegion(l.toggle)}
	calls := 0
	w, err := Watch(l.doc, Options{
		Target:    NodeRegion(l.overlay),
		Ignore:    ignore,
		OnOutside: func(*node.Event) { calls++ },
	})
	require.NoError(t, err)
	defer w.Unwatch()

	ignore[0] = NodeRegion(l.other)
	l.doc.PointerDown(2, 0, nil)
	assert.Zero(t, calls)
}

func TestCaptureSeesStoppedEvents(t *testing.T) {
	l := newLayout()
	l.other.ListenCapture(node.EventPointerDown, func(ev *node.Event) { ev.StopImmediatePropagation() })
	calls := 0
	w, err := Watch(l.doc, Options{Target: NodeRegion(l.overlay), OnOutside: func(*node.Event) { calls++ }})
	require.NoError(t, err)
	defer w.Unwatch()

	l.doc.PointerDown(2, 1, nil)
	assert.Equal(t, 1, calls)
}

func TestEscapeOncePerKeydownRegardlessOfFocus(t *testing.T) {
	l := newLayout()
	escapes := 0
	w, err := Watch(l.doc, Options{Target: NodeRegion(l.overlay), OnEscape: func(*node.Event) { escapes++ }})
	require.NoError(t, err)
	defer w.Unwatch()

	for i, focus := range []*node.Node{nil, l.inside, l.toggle} {
		if focus == nil {
			l.doc.Blur()
		} else {
			require.True(t, l.doc.Focus(focus))
		}
		l.doc.KeyDown("esc", nil)
		assert.Equal(t, i+1, escapes)
	}
	l.doc.KeyDown("q", nil)
	assert.Equal(t, 3, escapes)
}

func TestEscapeDoesNotMoveFocus(t *testing.T) {
	l := newLayout()
	w, err := Watch(l.doc, Options{
		Target:    NodeRegion(l.overlay),
		OnEscape:  func(*node.Event) {},
		OnOutside: func(*node.Event) {},
	})
	require.NoError(t, err)
	defer w.Unwatch()

	require.True(t, l.doc.Focus(l.inside))
	l.doc.KeyDown("esc", nil)
	assert.Same(t, l.inside, l.doc.ActiveElement())
}

func TestCustomEscapeKey(t *testing.T) {
	l := newLayout()
	escapes := 0
	w, err := Watch(l.doc, Options{
		Target:    NodeRegion(l.overlay),
		OnEscape:  func(*node.Event) { escapes++ },
		EscapeKey: key.NewBinding(key.WithKeys("ctrl+g")),
	})
	require.NoError(t, err)
	defer w.Unwatch()

	l.doc.KeyDown("esc", nil)
	l.doc.KeyDown("ctrl+g", nil)
	assert.Equal(t, 1, escapes)
}

func TestUnwatchIdempotent(t *testing.T) {
	l := newLayout()
	calls := 0
	w, err := Watch(l.doc, Options{
		Target:    NodeRegion(l.overlay),
		OnOutside: func(*node.Event) { calls++ },
		OnEscape:  func(*node.Event) { calls++ },
	})
	require.NoError(t, err)

	require.NoError(t, w.Unwatch())
	assert.False(t, w.Active())
	assert.ErrorIs(t, w.Unwatch(), ErrNotWatching)

	l.doc.PointerDown(2, 1, nil)
	l.doc.KeyDown("esc", nil)
	assert.Zero(t, calls)
}

func TestUnwatchDuringDispatch(t *testing.T) {
	l := newLayout()
	calls := 0
	var w *Watcher
	// Registered first, so it runs before the watcher's own listener.
	l.doc.ListenCapture(node.EventKeyDown, func(*node.Event) { w.Unwatch() })
	w, err := Watch(l.doc, Options{Target: NodeRegion(l.overlay), OnEscape: func(*node.Event) { calls++ }})
	require.NoError(t, err)

	l.doc.KeyDown("esc", nil)
	assert.Zero(t, calls)
}

func TestWatchPreconditions(t *testing.T) {
	_, err := Watch(nil, Options{Target: RectRegion(node.Rect{})})
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = Watch(node.NewDocument(), Options{})
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestRegions(t *testing.T) {
	l := newLayout()
	ev := &node.Event{Type: node.EventPointerDown, Target: l.inside, X: 3, Y: 6}

	assert.True(t, NodeRegion(l.overlay).Contains(ev))
	assert.False(t, NodeRegion(l.toggle).Contains(ev))
	assert.False(t, NodeRegion(nil).Contains(ev))

	ref := &node.Ref{}
	r := RefRegion(ref)
	assert.False(t, r.Contains(ev))
	ref.Current = l.overlay
	assert.True(t, r.Contains(ev), "refs resolve when the event arrives")

	assert.True(t, RectRegion(node.Rect{X: 0, Y: 5, W: 5, H: 5}).Contains(ev))
	assert.False(t, RectRegion(node.Rect{X: 10, Y: 0, W: 5, H: 5}).Contains(ev))

	assert.True(t, BoundsRegion(l.overlay).Contains(ev))
	l.overlay.Hidden = true
	assert.False(t, BoundsRegion(l.overlay).Contains(ev))

	fn := RegionFunc(func(e *node.Event) bool { return e.X > 2 })
	assert.True(t, fn.Contains(ev))
}
