package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchOrder(t *testing.T) {
	doc := NewDocument()
	btn := NewButton("b", "B")
	box := NewBox("box", btn)
	doc.Body.AppendChild(box)

	var order []string
	rec := func(s string) Handler { return func(*Event) { order = append(order, s) } }
	doc.ListenCapture(EventClick, rec("doc-capture"))
	doc.Listen(EventClick, rec("doc-bubble"))
	box.ListenCapture(EventClick, rec("box-capture"))
	box.Listen(EventClick, rec("box-bubble"))
	btn.Listen(EventClick, rec("target-bubble"))
	btn.ListenCapture(EventClick, rec("target-capture"))

	doc.Dispatch(&Event{Type: EventClick, Target: btn})
	assert.Equal(t, []string{
		"doc-capture", "box-capture", "target-capture", "target-bubble", "box-bubble", "doc-bubble",
	}, order)
}

func TestStopPropagation(t *testing.T) {
	doc := NewDocument()
	btn := NewButton("b", "B")
	doc.Body.AppendChild(btn)

	var order []string
	doc.ListenCapture(EventKeyDown, func(ev *Event) {
		order = append(order, "first")
		ev.StopPropagation()
	})
	doc.ListenCapture(EventKeyDown, func(*Event) { order = append(order, "second") })
	btn.Listen(EventKeyDown, func(*Event) { order = append(order, "target") })

	doc.Dispatch(&Event{Type: EventKeyDown, Key: "x", Target: btn})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStopImmediatePropagation(t *testing.T) {
	doc := NewDocument()
	btn := NewButton("b", "B")
	doc.Body.AppendChild(btn)

	var order []string
	btn.Listen(EventKeyDown, func(ev *Event) {
		order = append(order, "first")
		ev.StopImmediatePropagation()
	})
	btn.Listen(EventKeyDown, func(*Event) { order = append(order, "second") })

	doc.Dispatch(&Event{Type: EventKeyDown, Key: "x", Target: btn})
	assert.Equal(t, []string{"first"}, order)
}

func TestRemovedListenerNeverFires(t *testing.T) {
	doc := NewDocument()
	calls := 0
	var removeSecond func()
	doc.ListenCapture(EventPointerDown, func(*Event) { removeSecond() })
	removeSecond = doc.ListenCapture(EventPointerDown, func(*Event) { calls++ })

	doc.Dispatch(&Event{Type: EventPointerDown})
	doc.Dispatch(&Event{Type: EventPointerDown})
	assert.Zero(t, calls)
}

func TestFocusEventsCarryRelated(t *testing.T) {
	doc := NewDocument()
	a, b := NewButton("a", "A"), NewButton("b", "B")
	doc.Body.AppendChild(a, b)

	var outRelated, inRelated *Node
	a.Listen(EventFocusOut, func(ev *Event) { outRelated = ev.Related })
	doc.Listen(EventFocusIn, func(ev *Event) { inRelated = ev.Related })

	require.True(t, doc.Focus(a))
	require.True(t, doc.Focus(b))
	assert.Same(t, b, outRelated)
	assert.Same(t, a, inRelated)
	assert.Same(t, b, doc.ActiveElement())
}

func TestFocusRejectsDetachedAndDisabled(t *testing.T) {
	doc := NewDocument()
	detached := NewButton("d", "D")
	assert.False(t, doc.Focus(detached))

	disabled := NewButton("x", "X")
	disabled.Disabled = true
	doc.Body.AppendChild(disabled)
	assert.False(t, doc.Focus(disabled))
	assert.Nil(t, doc.ActiveElement())
}

func TestTabDefaultActionWraps(t *testing.T) {
	doc := NewDocument()
	a, b := NewButton("a", "A"), NewButton("b", "B")
	doc.Body.AppendChild(a, NewItem("skip", "not tabbable"), b)

	doc.KeyDown("tab", nil)
	assert.Same(t, a, doc.ActiveElement())
	doc.KeyDown("tab", nil)
	assert.Same(t, b, doc.ActiveElement())
	doc.KeyDown("tab", nil)
	assert.Same(t, a, doc.ActiveElement())
	doc.KeyDown("shift+tab", nil)
	assert.Same(t, b, doc.ActiveElement())
}

func TestPreventDefaultSuppressesTab(t *testing.T) {
	doc := NewDocument()
	a, b := NewButton("a", "A"), NewButton("b", "B")
	doc.Body.AppendChild(a, b)
	require.True(t, doc.Focus(a))

	doc.ListenCapture(EventKeyDown, func(ev *Event) { ev.PreventDefault() })
	ev := doc.KeyDown("tab", nil)
	assert.True(t, ev.DefaultPrevented())
	assert.Same(t, a, doc.ActiveElement())
}

func TestPointerDownFocusesNearestFocusable(t *testing.T) {
	doc := NewDocument()
	label := NewText("label")
	label.Bounds = Rect{X: 0, Y: 0, W: 5, H: 1}
	btn := NewButton("b", "")
	btn.Bounds = Rect{X: 0, Y: 0, W: 10, H: 1}
	btn.AppendChild(label)
	doc.Body.AppendChild(btn)

	doc.PointerDown(1, 0, nil)
	assert.Same(t, btn, doc.ActiveElement())

	doc.PointerDown(40, 40, nil)
	assert.Nil(t, doc.ActiveElement())
}

func TestEnterOnButtonClicks(t *testing.T) {
	doc := NewDocument()
	btn := NewButton("b", "B")
	doc.Body.AppendChild(btn)
	require.True(t, doc.Focus(btn))

	clicks := 0
	btn.Listen(EventClick, func(ev *Event) {
		clicks++
		assert.True(t, ev.Synthetic)
	})
	doc.KeyDown("enter", nil)
	assert.Equal(t, 1, clicks)
}

func TestClickTogglesDetailsAndCheckbox(t *testing.T) {
	doc := NewDocument()
	details := New(KindDetails, "d", "More")
	box := NewCheckbox("c", "Check")
	doc.Body.AppendChild(details, box)

	mutations := 0
	doc.Observe(doc.Body, func(*Node) { mutations++ })

	doc.Dispatch(&Event{Type: EventClick, Target: details})
	assert.True(t, details.Open)
	assert.Equal(t, 1, mutations)

	inputs := 0
	box.Listen(EventInput, func(*Event) { inputs++ })
	doc.Dispatch(&Event{Type: EventClick, Target: box})
	assert.True(t, box.Checked)
	assert.Equal(t, 1, inputs)
}

func TestNodeDefaultActionRunsBeforeDocumentDefaults(t *testing.T) {
	doc := NewDocument()
	in := NewInput("in")
	other := NewButton("b", "B")
	doc.Body.AppendChild(in, other)
	require.True(t, doc.Focus(in))

	var typed []Key
	in.SetDefaultAction(func(ev *Event) {
		if ev.Type == EventKeyDown {
			typed = append(typed, ev.Key)
		}
	})
	doc.KeyDown("a", nil)
	assert.Equal(t, []Key{"a"}, typed)

	in.Listen(EventKeyDown, func(ev *Event) { ev.PreventDefault() })
	doc.KeyDown("b", nil)
	assert.Equal(t, []Key{"a"}, typed)
}

func TestRedirectIsSynthetic(t *testing.T) {
	n := NewItem("i", "I")
	ev := &Event{Type: EventKeyDown, Key: "enter", Msg: "m"}
	ev.PreventDefault()
	r := ev.Redirect(n)
	assert.True(t, r.Synthetic)
	assert.False(t, r.DefaultPrevented())
	assert.Same(t, n, r.Target)
	assert.Equal(t, Key("enter"), r.Key)
	assert.Equal(t, "m", r.Msg)
}
