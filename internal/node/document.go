package node

// Document owns a node tree rooted at Body, the node holding real input
// focus, document-level listeners and mutation observers.
type Document struct {
	Body *Node

	active    *Node
	capture   map[EventType][]*listener
	bubble    map[EventType][]*listener
	observers []*observer
	layout    []*layoutHook
}

type layoutHook struct {
	fn      func()
	removed bool
}

type observer struct {
	target  *Node
	fn      func(changed *Node)
	removed bool
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	d := &Document{}
	d.Body = New(KindBox, "body", "")
	d.Body.doc = d
	return d
}

// ActiveElement returns the focused node, or nil when focus is on the body.
func (d *Document) ActiveElement() *Node { return d.active }

// Focus moves real focus to n. Only connected, focusable nodes accept focus;
// the return value reports whether n holds focus afterwards.
func (d *Document) Focus(n *Node) bool {
	if n == nil || n.Document() != d || !n.IsFocusable() {
		return false
	}
	prev := d.active
	if prev == n {
		return true
	}
	d.active = n
	if prev != nil && prev.Document() == d {
		d.Dispatch(&Event{Type: EventFocusOut, Target: prev, Related: n})
		if d.active != n {
			// a focusout handler moved focus elsewhere
			return false
		}
	}
	d.Dispatch(&Event{Type: EventFocusIn, Target: n, Related: prev})
	return d.active == n
}

// Blur drops focus back to the body.
func (d *Document) Blur() {
	prev := d.active
	if prev == nil {
		return
	}
	d.active = nil
	if prev.Document() == d {
		d.Dispatch(&Event{Type: EventFocusOut, Target: prev})
	}
}

// Listen registers a bubble-phase handler on the document.
func (d *Document) Listen(t EventType, fn Handler) func() {
	return addListener(&d.bubble, t, fn)
}

// ListenCapture registers a capture-phase handler on the document. Capture
// handlers run before any node sees the event.
func (d *Document) ListenCapture(t EventType, fn Handler) func() {
	return addListener(&d.capture, t, fn)
}

// Observe calls fn whenever the child list of target or any of its
// descendants changes. The returned func cancels the observation.
func (d *Document) Observe(target *Node, fn func(changed *Node)) func() {
	o := &observer{target: target, fn: fn}
	d.observers = append(d.observers, o)
	return func() {
		if o.removed {
			return
		}
		o.removed = true
		for i, cur := range d.observers {
			if cur == o {
				d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
				break
			}
		}
	}
}

func (d *Document) notify(changed *Node) {
	if len(d.observers) == 0 {
		return
	}
	obs := make([]*observer, len(d.observers))
	copy(obs, d.observers)
	for _, o := range obs {
		if o.removed || !o.target.Contains(changed) {
			continue
		}
		o.fn(changed)
	}
}

// OnLayout registers fn to run each time the renderer finishes assigning
// bounds. The returned func removes the hook.
func (d *Document) OnLayout(fn func()) func() {
	h := &layoutHook{fn: fn}
	d.layout = append(d.layout, h)
	return func() {
		if h.removed {
			return
		}
		h.removed = true
		for i, cur := range d.layout {
			if cur == h {
				d.layout = append(d.layout[:i:i], d.layout[i+1:]...)
				break
			}
		}
	}
}

// LayoutDone runs the layout hooks. Renderers call it after assigning
// bounds so widgets can measure.
func (d *Document) LayoutDone() {
	hooks := make([]*layoutHook, len(d.layout))
	copy(hooks, d.layout)
	for _, h := range hooks {
		if !h.removed {
			h.fn()
		}
	}
}

// forgetSubtree drops focus held inside a subtree that left the document.
func (d *Document) forgetSubtree(removed *Node) {
	if d.active != nil && removed.Contains(d.active) {
		d.active = nil
	}
}

// Tabbables lists the tabbable nodes under root in document order.
func (d *Document) Tabbables(root *Node) []*Node {
	return collect(root, (*Node).IsTabbable)
}

// Focusables lists the focusable nodes under root in document order.
func (d *Document) Focusables(root *Node) []*Node {
	return collect(root, (*Node).IsFocusable)
}

func collect(root *Node, keep func(*Node) bool) []*Node {
	var out []*Node
	root.Walk(func(n *Node) bool {
		if n.Hidden {
			return false
		}
		if keep(n) {
			out = append(out, n)
		}
		return n.Kind != KindDetails || n.Open
	})
	return out
}

// HitTest returns the deepest rendered node under (x, y). Later siblings are
// tested first so portal layers win over the content beneath them.
func (d *Document) HitTest(x, y int) *Node {
	return hit(d.Body, x, y, true)
}

func hit(n *Node, x, y int, root bool) *Node {
	if n.Hidden {
		return nil
	}
	if !root && !n.BoundingRect().Contains(x, y) {
		return nil
	}
	if n.Kind != KindDetails || n.Open {
		for i := len(n.children) - 1; i >= 0; i-- {
			if h := hit(n.children[i], x, y, false); h != nil {
				return h
			}
		}
	}
	return n
}

type step struct {
	cur   *Node
	phase Phase
	list  []*listener
}

// Dispatch delivers ev through the capture and bubble phases and runs the
// default action unless a listener prevented it. It reports whether the
// default action ran.
func (d *Document) Dispatch(ev *Event) bool {
	if ev.Target == nil {
		ev.Target = d.Body
	}
	var path []*Node
	for c := ev.Target; c != nil; c = c.parent {
		path = append(path, c)
	}
	connected := path[len(path)-1] == d.Body

	// Listener lists are fixed here; registrations made during dispatch
	// take effect on the next event.
	var steps []step
	if connected {
		steps = append(steps, step{phase: PhaseCapture, list: snapshot(d.capture, ev.Type)})
	}
	for i := len(path) - 1; i > 0; i-- {
		steps = append(steps, step{cur: path[i], phase: PhaseCapture, list: snapshot(path[i].capture, ev.Type)})
	}
	steps = append(steps,
		step{cur: path[0], phase: PhaseTarget, list: snapshot(path[0].capture, ev.Type)},
		step{cur: path[0], phase: PhaseTarget, list: snapshot(path[0].bubble, ev.Type)},
	)
	for i := 1; i < len(path); i++ {
		steps = append(steps, step{cur: path[i], phase: PhaseBubble, list: snapshot(path[i].bubble, ev.Type)})
	}
	if connected {
		steps = append(steps, step{phase: PhaseBubble, list: snapshot(d.bubble, ev.Type)})
	}

	for i, s := range steps {
		ev.CurrentTarget = s.cur
		ev.Phase = s.phase
		if run(ev, s.list) {
			break
		}
		if ev.stopped && (i+1 == len(steps) || steps[i+1].cur != s.cur || steps[i+1].phase != s.phase) {
			break
		}
	}
	ev.CurrentTarget = nil
	ev.Phase = PhaseNone

	if ev.defaultPrevented {
		return false
	}
	if ev.Target.defaultAction != nil {
		ev.Target.defaultAction(ev)
		if ev.defaultPrevented {
			return false
		}
	}
	if connected {
		d.defaultAction(ev)
	}
	return true
}

func (d *Document) defaultAction(ev *Event) {
	t := ev.Target
	switch ev.Type {
	case EventKeyDown:
		switch ev.Key {
		case "tab":
			d.moveFocus(1)
		case "shift+tab":
			d.moveFocus(-1)
		case "enter", " ", "space":
			switch t.Kind {
			case KindButton, KindCheckbox, KindDetails:
				d.Dispatch(&Event{Type: EventClick, Target: t, Msg: ev.Msg, Synthetic: true})
			}
		}
	case EventPointerDown, EventTouchStart:
		for c := t; c != nil; c = c.parent {
			if c.IsFocusable() {
				d.Focus(c)
				return
			}
		}
		d.Blur()
	case EventClick:
		switch t.Kind {
		case KindCheckbox:
			t.Checked = !t.Checked
			d.Dispatch(&Event{Type: EventInput, Target: t, Synthetic: true})
		case KindDetails:
			t.Open = !t.Open
			d.notify(t)
		}
	}
}

// moveFocus advances focus through the document's Tab order with wrapping.
func (d *Document) moveFocus(dir int) {
	tabbables := d.Tabbables(d.Body)
	if len(tabbables) == 0 {
		return
	}
	idx := -1
	for i, n := range tabbables {
		if n == d.active {
			idx = i
			break
		}
	}
	var next int
	switch {
	case idx < 0 && dir > 0:
		next = 0
	case idx < 0:
		next = len(tabbables) - 1
	default:
		next = (idx + dir + len(tabbables)) % len(tabbables)
	}
	d.Focus(tabbables[next])
}

// KeyDown dispatches a keydown at the focused node (or the body).
func (d *Document) KeyDown(k Key, msg any) *Event {
	ev := &Event{Type: EventKeyDown, Key: k, Target: d.active, Msg: msg}
	d.Dispatch(ev)
	return ev
}

// PointerDown dispatches a pointerdown at the node under (x, y).
func (d *Document) PointerDown(x, y int, msg any) *Event {
	ev := &Event{Type: EventPointerDown, X: x, Y: y, Target: d.HitTest(x, y), Msg: msg}
	d.Dispatch(ev)
	return ev
}

// Click dispatches a click at the node under (x, y).
func (d *Document) Click(x, y int, msg any) *Event {
	ev := &Event{Type: EventClick, X: x, Y: y, Target: d.HitTest(x, y), Msg: msg}
	d.Dispatch(ev)
	return ev
}
