// Package focuszone tracks a single "virtual focus" position among the
// focusable descendants of a container.
//
// When an ActiveDescendantControl is configured, real focus stays on that
// control (typically a filter input) while navigation keys move the active
// descendant. The active descendant carries ActiveDescendantClass and its id
// is mirrored onto the control's aria-activedescendant attribute.
package focuszone

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"overlaykit/internal/logging"
	"overlaykit/internal/logging/events"
	"overlaykit/internal/node"
)

const (
	// ActiveDescendantClass marks the current active descendant.
	ActiveDescendantClass = "active-descendant"
	// AttrActiveDescendant is set on the control to the active node's id.
	AttrActiveDescendant = "aria-activedescendant"

	defaultPageSize = 5
)

var (
	ErrNoContainer            = errors.New("no container")
	ErrDetachedContainer      = errors.New("container is not attached to a document")
	ErrControlOutsideDocument = errors.New("active-descendant control is not in the container's document")
	ErrAlreadyDetached        = errors.New("zone already detached")
	ErrNotCandidate           = errors.New("node is not a candidate")
)

// FocusOutBehavior decides what happens when navigation runs past either end
// of the candidate list.
type FocusOutBehavior int

const (
	// Stop clamps at the first and last candidate.
	Stop FocusOutBehavior = iota
	// Wrap continues from the opposite end.
	Wrap
)

// State is the zone's coarse state.
type State int

const (
	StateInactive State = iota
	StateActiveDescendantSet
	StateActiveDescendantNone
)

func (s State) String() string {
	switch s {
	case StateActiveDescendantSet:
		return "active-descendant-set"
	case StateActiveDescendantNone:
		return "active-descendant-none"
	default:
		return "inactive"
	}
}

// Options configures a zone.
type Options struct {
	// Filter excludes nodes from the candidate set when it returns false.
	// Excluded nodes keep ordinary real focus.
	Filter func(*node.Node) bool
	// FocusOutBehavior is Stop or Wrap.
	FocusOutBehavior FocusOutBehavior
	// ActiveDescendantControl keeps real focus while the zone navigates.
	// Nil means navigation moves real focus between candidates.
	ActiveDescendantControl *node.Node
	// OnActiveDescendantChanged runs synchronously after each change.
	OnActiveDescendantChanged func(current, previous *node.Node)
	// KeyMap overrides DefaultKeyMap when set.
	KeyMap KeyMap
	// PageSize is the PageUp/PageDown step. Defaults to 5.
	PageSize int
}

// Zone is an attached focus zone.
type Zone struct {
	doc        *node.Document
	container  *node.Node
	control    *node.Node
	opts       Options
	keys       KeyMap
	candidates []*node.Node
	active     *node.Node
	focused    bool
	cancels    []func()
	detached   bool
}

// Attach starts managing container. The container must be connected to a
// document and the control, when given, must belong to the same document.
func Attach(container *node.Node, opts Options) (*Zone, error) {
	if container == nil {
		return nil, fmt.Errorf("focuszone: attach: %w", ErrNoContainer)
	}
	doc := container.Document()
	if doc == nil {
		logging.L().Warn("focus zone attach on detached container", "container", container.ID)
		return nil, fmt.Errorf("focuszone: attach %q: %w", container.ID, ErrDetachedContainer)
	}
	if c := opts.ActiveDescendantControl; c != nil && c.Document() != doc {
		return nil, fmt.Errorf("focuszone: attach %q: control %q: %w", container.ID, c.ID, ErrControlOutsideDocument)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}

	z := &Zone{
		doc:       doc,
		container: container,
		control:   opts.ActiveDescendantControl,
		opts:      opts,
		keys:      opts.KeyMap,
	}
	if z.keys.empty() {
		z.keys = DefaultKeyMap()
	}

	z.cancels = append(z.cancels,
		container.Listen(node.EventKeyDown, z.handleKey),
		container.Listen(node.EventFocusIn, z.handleFocusIn),
		container.Listen(node.EventFocusOut, z.handleFocusOut),
		doc.Observe(container, func(*node.Node) { z.Refresh() }),
	)
	if z.control != nil && !container.Contains(z.control) {
		z.cancels = append(z.cancels,
			z.control.Listen(node.EventKeyDown, z.handleKey),
			z.control.Listen(node.EventFocusIn, z.handleFocusIn),
			z.control.Listen(node.EventFocusOut, z.handleFocusOut),
		)
	}
	z.focused = z.ownsFocus(doc.ActiveElement())
	z.refreshCandidates()
	return z, nil
}

// Detach removes every listener and the observer and clears the marker. No
// callback fires afterwards. A second call changes nothing and returns
// ErrAlreadyDetached.
func (z *Zone) Detach() error {
	if z.detached {
		return fmt.Errorf("focuszone: detach %q: %w", z.container.ID, ErrAlreadyDetached)
	}
	z.detached = true
	for _, cancel := range z.cancels {
		cancel()
	}
	z.cancels = nil
	if z.active != nil {
		z.active.RemoveClass(ActiveDescendantClass)
		z.active = nil
	}
	if z.control != nil {
		z.control.RemoveAttr(AttrActiveDescendant)
	}
	z.focused = false
	z.candidates = nil
	return nil
}

// Container returns the managed container.
func (z *Zone) Container() *node.Node { return z.container }

// Active returns the active descendant or nil.
func (z *Zone) Active() *node.Node { return z.active }

// State reports the zone's state.
func (z *Zone) State() State {
	switch {
	case z.detached:
		return StateInactive
	case z.active != nil:
		return StateActiveDescendantSet
	case z.focused:
		return StateActiveDescendantNone
	default:
		return StateInactive
	}
}

// Candidates recomputes and returns the candidate set.
func (z *Zone) Candidates() []*node.Node {
	z.refreshCandidates()
	out := make([]*node.Node, len(z.candidates))
	copy(out, z.candidates)
	return out
}

// SetActive makes n the active descendant. Nil clears it.
func (z *Zone) SetActive(n *node.Node) error {
	if z.detached {
		return fmt.Errorf("focuszone: set active: %w", ErrAlreadyDetached)
	}
	if n == nil {
		z.setActive(nil)
		return nil
	}
	z.refreshCandidates()
	if z.indexOf(n) < 0 {
		return fmt.Errorf("focuszone: set active %q: %w", n.ID, ErrNotCandidate)
	}
	z.setActive(n)
	return nil
}

// Refresh recomputes the candidate set and clears an active descendant that
// is no longer part of it.
func (z *Zone) Refresh() {
	if z.detached {
		return
	}
	z.refreshCandidates()
	events.Zone.Refresh(z.container.ID, len(z.candidates))
	if z.active != nil && z.indexOf(z.active) < 0 {
		z.setActive(nil)
	}
}

func (z *Zone) refreshCandidates() {
	z.candidates = z.candidates[:0]
	for _, n := range z.doc.Focusables(z.container) {
		if n == z.control || n == z.container {
			continue
		}
		if z.opts.Filter != nil && !z.opts.Filter(n) {
			continue
		}
		z.candidates = append(z.candidates, n)
	}
}

func (z *Zone) indexOf(n *node.Node) int {
	for i, c := range z.candidates {
		if c == n {
			return i
		}
	}
	return -1
}

func (z *Zone) ownsFocus(n *node.Node) bool {
	if n == nil {
		return false
	}
	return n == z.control || z.container.Contains(n)
}

// setActive applies a change: old marker off, new marker on, control
// attribute, then the notification.
func (z *Zone) setActive(next *node.Node) {
	prev := z.active
	if prev == next {
		return
	}
	if prev != nil {
		prev.RemoveClass(ActiveDescendantClass)
	}
	if next != nil {
		next.AddClass(ActiveDescendantClass)
	}
	z.active = next
	if z.control != nil {
		if next != nil && next.ID != "" {
			z.control.SetAttr(AttrActiveDescendant, next.ID)
		} else {
			z.control.RemoveAttr(AttrActiveDescendant)
		}
	}
	events.Zone.Active(z.container.ID, nodeID(next), nodeID(prev))
	if z.opts.OnActiveDescendantChanged != nil {
		z.opts.OnActiveDescendantChanged(next, prev)
	}
}

func (z *Zone) handleKey(ev *node.Event) {
	if z.detached || ev.DefaultPrevented() {
		return
	}
	// Keys typed into filtered-out nodes (inputs nested in items) are theirs.
	if ev.Target != z.control && !z.isCandidate(ev.Target) {
		return
	}

	z.refreshCandidates()
	if z.active != nil && z.indexOf(z.active) < 0 {
		z.setActive(nil)
	}
	n := len(z.candidates)
	if n == 0 {
		return
	}
	cur := -1
	if z.active != nil {
		cur = z.indexOf(z.active)
	}

	var next int
	switch {
	case key.Matches(ev.Key, z.keys.Down):
		next = z.step(cur, 1)
	case key.Matches(ev.Key, z.keys.Up):
		next = z.step(cur, -1)
	case key.Matches(ev.Key, z.keys.Home):
		next = 0
	case key.Matches(ev.Key, z.keys.End):
		next = n - 1
	case key.Matches(ev.Key, z.keys.PageDown):
		next = clamp(max(cur, 0)+z.opts.PageSize, 0, n-1)
		if cur < 0 {
			next = 0
		}
	case key.Matches(ev.Key, z.keys.PageUp):
		next = clamp(cur-z.opts.PageSize, 0, n-1)
		if cur < 0 {
			next = n - 1
		}
	default:
		return
	}
	ev.PreventDefault()
	z.moveTo(z.candidates[next])
}

// step moves one position. From no active descendant, forward lands on the
// first candidate and backward on the last.
func (z *Zone) step(cur, dir int) int {
	n := len(z.candidates)
	if cur < 0 {
		if dir > 0 {
			return 0
		}
		return n - 1
	}
	next := cur + dir
	if next >= 0 && next < n {
		return next
	}
	if z.opts.FocusOutBehavior == Wrap {
		return (next + n) % n
	}
	return clamp(next, 0, n-1)
}

func (z *Zone) moveTo(n *node.Node) {
	if z.control != nil {
		z.setActive(n)
		return
	}
	// Without a control, real focus follows the active descendant.
	z.doc.Focus(n)
	z.setActive(n)
}

func (z *Zone) isCandidate(n *node.Node) bool {
	if n == nil || n == z.control || !z.container.Contains(n) || !n.IsFocusable() {
		return false
	}
	return z.opts.Filter == nil || z.opts.Filter(n)
}

func (z *Zone) handleFocusIn(ev *node.Event) {
	if z.detached {
		return
	}
	z.focused = true
	t := ev.Target
	if t == z.control || !z.isCandidate(t) {
		return
	}
	z.refreshCandidates()
	z.setActive(t)
	if z.control != nil && z.doc.ActiveElement() == t {
		events.Zone.Redirect(z.container.ID, nodeID(t))
		z.doc.Focus(z.control)
	}
}

func (z *Zone) handleFocusOut(ev *node.Event) {
	if z.detached || z.ownsFocus(ev.Related) {
		return
	}
	z.focused = false
	z.setActive(nil)
}

func nodeID(n *node.Node) string {
	if n == nil {
		return ""
	}
	return n.ID
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
