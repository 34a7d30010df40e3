package node

// EventType names an event.
type EventType string

const (
	EventPointerDown EventType = "pointerdown"
	EventTouchStart  EventType = "touchstart"
	EventClick       EventType = "click"
	EventKeyDown     EventType = "keydown"
	EventFocusIn     EventType = "focusin"
	EventFocusOut    EventType = "focusout"
	EventInput       EventType = "input"
)

// Key is a key name in Bubble Tea's notation ("up", "enter", "shift+tab",
// "a"). It implements fmt.Stringer so it can be matched with key.Matches.
type Key string

func (k Key) String() string { return string(k) }

// Phase is the dispatch phase an event is in.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseCapture
	PhaseTarget
	PhaseBubble
)

// Event is a single dispatched interaction.
type Event struct {
	Type EventType
	Key  Key
	X, Y int

	Target        *Node
	CurrentTarget *Node
	// Related is the node losing focus (focusin) or gaining it (focusout).
	Related *Node
	// Msg carries the originating terminal message, if any.
	Msg any
	// Synthetic marks events re-dispatched by widgets rather than input.
	Synthetic bool
	Phase     Phase

	defaultPrevented bool
	stopped          bool
	stoppedNow       bool
}

// PreventDefault suppresses the default action.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation ends dispatch after the current target's listeners.
func (e *Event) StopPropagation() { e.stopped = true }

// StopImmediatePropagation ends dispatch before the next listener.
func (e *Event) StopImmediatePropagation() {
	e.stopped = true
	e.stoppedNow = true
}

// PropagationStopped reports whether either stop method was called.
func (e *Event) PropagationStopped() bool { return e.stopped }

// Redirect returns a fresh synthetic copy of e aimed at target.
func (e *Event) Redirect(target *Node) *Event {
	return &Event{
		Type:      e.Type,
		Key:       e.Key,
		X:         e.X,
		Y:         e.Y,
		Target:    target,
		Msg:       e.Msg,
		Synthetic: true,
	}
}

// Handler receives dispatched events.
type Handler func(*Event)

type listener struct {
	fn      Handler
	removed bool
}

func addListener(m *map[EventType][]*listener, t EventType, fn Handler) func() {
	if *m == nil {
		*m = make(map[EventType][]*listener)
	}
	l := &listener{fn: fn}
	(*m)[t] = append((*m)[t], l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		list := (*m)[t]
		for i, cur := range list {
			if cur == l {
				(*m)[t] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
}

func snapshot(m map[EventType][]*listener, t EventType) []*listener {
	list := m[t]
	if len(list) == 0 {
		return nil
	}
	out := make([]*listener, len(list))
	copy(out, list)
	return out
}

// Listen registers a bubble-phase handler on n. The returned func removes it.
func (n *Node) Listen(t EventType, fn Handler) func() {
	return addListener(&n.bubble, t, fn)
}

// ListenCapture registers a capture-phase handler on n.
func (n *Node) ListenCapture(t EventType, fn Handler) func() {
	return addListener(&n.capture, t, fn)
}

// run invokes listeners in order and reports whether dispatch must end.
func run(ev *Event, list []*listener) bool {
	for _, l := range list {
		if l.removed {
			continue
		}
		l.fn(ev)
		if ev.stoppedNow {
			return true
		}
	}
	return false
}
