// Package dismiss reports pointer interaction outside a region and Escape
// key presses. It only notifies; moving focus or closing anything is up to
// the caller.
package dismiss

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"overlaykit/internal/logging/events"
	"overlaykit/internal/node"
)

var (
	ErrNoDocument  = errors.New("no document")
	ErrNoTarget    = errors.New("no target region")
	ErrNotWatching = errors.New("watcher is not active")
)

// DefaultEscapeKey matches the Escape key.
var DefaultEscapeKey = key.NewBinding(
	key.WithKeys("esc"),
	key.WithHelp("esc", "close"),
)

// Options configures a watcher.
type Options struct {
	// Target is the region interactions are measured against.
	Target Region
	// Ignore lists regions whose interactions are never reported as outside.
	// The slice is copied by Watch.
	Ignore []Region
	// OnOutside receives pointerdown and touchstart events that originate
	// outside Target and every Ignore region.
	OnOutside func(ev *node.Event)
	// OnEscape receives keydown events matching EscapeKey.
	OnEscape func(ev *node.Event)
	// EscapeKey defaults to DefaultEscapeKey.
	EscapeKey key.Binding
	// Name labels trace records.
	Name string
}

// Watcher holds the capture listeners installed by Watch.
type Watcher struct {
	target    Region
	ignore    []Region
	onOutside func(*node.Event)
	onEscape  func(*node.Event)
	escape    key.Binding
	name      string
	cancels   []func()
}

// Watch installs capture-phase document listeners for pointerdown,
// touchstart and keydown. Capture listeners see events before any node
// handler can stop them.
func Watch(doc *node.Document, opts Options) (*Watcher, error) {
	if doc == nil {
		return nil, fmt.Errorf("dismiss: watch: %w", ErrNoDocument)
	}
	if opts.Target == nil {
		return nil, fmt.Errorf("dismiss: watch %q: %w", opts.Name, ErrNoTarget)
	}
	w := &Watcher{
		target:    opts.Target,
		ignore:    append([]Region(nil), opts.Ignore...),
		onOutside: opts.OnOutside,
		onEscape:  opts.OnEscape,
		escape:    opts.EscapeKey,
		name:      opts.Name,
	}
	if len(w.escape.Keys()) == 0 {
		w.escape = DefaultEscapeKey
	}
	w.cancels = []func(){
		doc.ListenCapture(node.EventPointerDown, w.handlePointer),
		doc.ListenCapture(node.EventTouchStart, w.handlePointer),
		doc.ListenCapture(node.EventKeyDown, w.handleKey),
	}
	return w, nil
}

// Active reports whether the listeners are installed.
func (w *Watcher) Active() bool { return w.cancels != nil }

// Unwatch removes the listeners. Later calls change nothing and return
// ErrNotWatching.
func (w *Watcher) Unwatch() error {
	if w.cancels == nil {
		return fmt.Errorf("dismiss: unwatch %q: %w", w.name, ErrNotWatching)
	}
	for _, cancel := range w.cancels {
		cancel()
	}
	w.cancels = nil
	return nil
}

// IsOutside reports whether ev lies outside the target and every ignore
// region.
func (w *Watcher) IsOutside(ev *node.Event) bool {
	if w.target.Contains(ev) {
		return false
	}
	for _, r := range w.ignore {
		if r != nil && r.Contains(ev) {
			return false
		}
	}
	return true
}

func (w *Watcher) handlePointer(ev *node.Event) {
	if !w.Active() {
		return
	}
	if !w.IsOutside(ev) {
		if !w.target.Contains(ev) {
			events.Dismiss.Ignored(w.name, ev.X, ev.Y)
		}
		return
	}
	events.Dismiss.Outside(w.name, ev.X, ev.Y)
	if w.onOutside != nil {
		w.onOutside(ev)
	}
}

func (w *Watcher) handleKey(ev *node.Event) {
	if !w.Active() || !key.Matches(ev.Key, w.escape) {
		return
	}
	events.Dismiss.Escape(w.name)
	if w.onEscape != nil {
		w.onEscape(ev)
	}
}
