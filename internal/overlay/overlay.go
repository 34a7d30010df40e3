// Package overlay manages the lifetime of a floating surface: mounting it
// into a portal layer, moving focus in, trapping Tab inside, reporting
// outside clicks and Escape, and returning focus on close.
//
// Visibility belongs to the caller. The overlay never closes itself; it
// forwards dismissal events and waits for SetVisibility.
package overlay

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"overlaykit/internal/dismiss"
	"overlaykit/internal/logging"
	"overlaykit/internal/logging/events"
	"overlaykit/internal/node"
	"overlaykit/internal/portal"
)

const (
	DefaultRole = "dialog"

	tracerName = "overlaykit/overlay"
)

var (
	ErrNoDocument         = errors.New("no document")
	ErrNoPortal           = errors.New("no portal")
	ErrMissingReturnFocus = errors.New("return focus ref is required")
	ErrMissingCallback    = errors.New("dismiss callbacks are required")
)

// Visibility is the caller-owned display state.
type Visibility int

const (
	Unmounted Visibility = iota
	Hidden
	Visible
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	default:
		return "unmounted"
	}
}

// Props configures an overlay.
type Props struct {
	// ID names the region node. Defaults to a generated id.
	ID string
	// IgnoreClickRefs never count as outside, typically the toggle button.
	IgnoreClickRefs []dismiss.Region
	// InitialFocusRef is focused on open when attached and inside the
	// overlay. Otherwise the first tabbable descendant is focused.
	InitialFocusRef *node.Ref
	// ReturnFocusRef receives focus when the overlay closes.
	ReturnFocusRef *node.Ref
	OnClickOutside func(ev *node.Event)
	OnEscape       func(ev *node.Event)
	// Role defaults to "dialog".
	Role   string
	Width  Width
	Height Height
	// Anchor places the overlay at a screen position; nil centres it.
	Anchor  *node.Point
	Content []*node.Node
	// Tracer overrides the global tracer.
	Tracer trace.Tracer
}

// Overlay is a single overlay instance.
type Overlay struct {
	doc    *node.Document
	portal portal.Portal
	props  Props
	region *node.Node
	tracer trace.Tracer

	root       *portal.Root
	watcher    *dismiss.Watcher
	untrap     []func()
	visibility Visibility
	span       trace.Span
}

// New builds an unmounted overlay.
func New(doc *node.Document, p portal.Portal, props Props) (*Overlay, error) {
	switch {
	case doc == nil:
		return nil, fmt.Errorf("overlay: new: %w", ErrNoDocument)
	case p == nil:
		return nil, fmt.Errorf("overlay: new: %w", ErrNoPortal)
	case props.ReturnFocusRef == nil:
		return nil, fmt.Errorf("overlay: new %q: %w", props.ID, ErrMissingReturnFocus)
	case props.OnClickOutside == nil || props.OnEscape == nil:
		return nil, fmt.Errorf("overlay: new %q: %w", props.ID, ErrMissingCallback)
	}
	if err := props.Width.Validate(); err != nil {
		return nil, fmt.Errorf("overlay: new %q: %w", props.ID, err)
	}
	if err := props.Height.Validate(); err != nil {
		return nil, fmt.Errorf("overlay: new %q: %w", props.ID, err)
	}
	if props.ID == "" {
		props.ID = "overlay-" + uuid.NewString()[:8]
	}
	if props.Role == "" {
		props.Role = DefaultRole
	}
	if props.Tracer == nil {
		props.Tracer = otel.Tracer(tracerName)
	}
	o := &Overlay{
		doc:    doc,
		portal: p,
		props:  props,
		tracer: props.Tracer,
	}
	o.region = node.NewBox(props.ID, props.Content...)
	o.region.SetAttr("role", props.Role)
	o.region.SetAttr("data-overlay", "true")
	o.region.Width = props.Width.Cells()
	o.region.Height = props.Height.Cells()
	o.region.Anchor = props.Anchor
	o.region.Hidden = true
	return o, nil
}

// ID returns the region id.
func (o *Overlay) ID() string { return o.props.ID }

// Region returns the overlay's root node.
func (o *Overlay) Region() *node.Node { return o.region }

// DismissRegion covers the overlay, for use as an ignore region by nested
// overlays.
func (o *Overlay) DismissRegion() dismiss.Region { return dismiss.NodeRegion(o.region) }

// Visibility returns the last state passed to SetVisibility.
func (o *Overlay) Visibility() Visibility { return o.visibility }

// Watching reports whether dismissal listeners are installed.
func (o *Overlay) Watching() bool { return o.watcher != nil && o.watcher.Active() }

// SetVisibility applies a caller-driven state change.
func (o *Overlay) SetVisibility(v Visibility) error {
	prev := o.visibility
	if v == prev {
		return nil
	}
	events.Overlay.Visibility(o.props.ID, prev.String(), v.String())
	logging.L().Debug("overlay visibility", "overlay", o.props.ID, "from", prev, "to", v)

	if prev == Visible {
		o.deactivate()
	}
	switch v {
	case Visible:
		if err := o.mount(); err != nil {
			return err
		}
		o.region.Hidden = false
		o.region.SetAttr("aria-modal", "true")
		o.region.SetAttr("visibility", "visible")
		o.visibility = Visible
		return o.activate()
	case Hidden:
		if err := o.mount(); err != nil {
			return err
		}
		o.region.Hidden = true
		o.region.SetAttr("visibility", "hidden")
		o.visibility = Hidden
	case Unmounted:
		o.region.Hidden = true
		o.region.RemoveAttr("visibility")
		o.visibility = Unmounted
		if o.root != nil {
			err := o.portal.Unmount(o.root)
			o.root = nil
			if err != nil {
				return fmt.Errorf("overlay: unmount %q: %w", o.props.ID, err)
			}
		}
	default:
		return fmt.Errorf("overlay: unknown visibility %d", int(v))
	}
	return nil
}

// Close is shorthand for SetVisibility(Unmounted).
func (o *Overlay) Close() error { return o.SetVisibility(Unmounted) }

func (o *Overlay) mount() error {
	if o.root.Mounted() {
		return nil
	}
	root, err := o.portal.Mount(o.region)
	if err != nil {
		return fmt.Errorf("overlay: mount %q: %w", o.props.ID, err)
	}
	o.root = root
	return nil
}

// activate runs once the region is attached and shown: initial focus, then
// dismissal watching and the focus trap.
func (o *Overlay) activate() error {
	_, o.span = o.tracer.Start(context.Background(), "overlay.visible",
		trace.WithAttributes(
			attribute.String("overlay.id", o.props.ID),
			attribute.String("overlay.role", o.props.Role),
		))

	o.focusInitial()

	w, err := dismiss.Watch(o.doc, dismiss.Options{
		Name:   o.props.ID,
		Target: dismiss.NodeRegion(o.region),
		Ignore: o.props.IgnoreClickRefs,
		OnOutside: func(ev *node.Event) {
			o.span.AddEvent("dismiss.outside", trace.WithAttributes(attribute.String("target", nodeID(ev.Target))))
			o.props.OnClickOutside(ev)
		},
		OnEscape: func(ev *node.Event) {
			o.span.AddEvent("dismiss.escape")
			o.props.OnEscape(ev)
		},
	})
	if err != nil {
		return fmt.Errorf("overlay: watch %q: %w", o.props.ID, err)
	}
	o.watcher = w
	o.untrap = []func(){
		o.doc.ListenCapture(node.EventKeyDown, o.trapTab),
		o.doc.ListenCapture(node.EventPointerDown, o.holdFocus),
		o.doc.ListenCapture(node.EventTouchStart, o.holdFocus),
	}
	return nil
}

func (o *Overlay) focusInitial() {
	if n := o.props.InitialFocusRef.Node(); n != nil {
		if n.IsConnected() && o.region.Contains(n) && o.doc.Focus(n) {
			o.recordFocus(n, "initial")
			return
		}
		logging.L().Debug("initial focus target unusable", "overlay", o.props.ID, "node", n.ID)
	}
	if tabbables := o.doc.Tabbables(o.region); len(tabbables) > 0 {
		if o.doc.Focus(tabbables[0]) {
			o.recordFocus(tabbables[0], "first-tabbable")
		}
	}
}

// deactivate tears down watching and the trap, then returns focus.
func (o *Overlay) deactivate() {
	if o.watcher != nil {
		if err := o.watcher.Unwatch(); err != nil {
			logging.L().Debug("overlay unwatch", "overlay", o.props.ID, "error", err)
		}
		o.watcher = nil
	}
	for _, cancel := range o.untrap {
		cancel()
	}
	o.untrap = nil

	if target := o.props.ReturnFocusRef.Node(); target != nil && target.IsConnected() && o.doc.Focus(target) {
		o.recordFocus(target, "return")
	} else {
		logging.L().Debug("return focus skipped", "overlay", o.props.ID, "node", nodeID(target))
		if o.region.Contains(o.doc.ActiveElement()) {
			o.doc.Blur()
		}
	}
	if o.span != nil {
		o.span.End()
		o.span = nil
	}
}

func (o *Overlay) recordFocus(n *node.Node, reason string) {
	events.Overlay.Focus(o.props.ID, n.ID, reason)
	if o.span != nil {
		o.span.AddEvent("focus."+reason, trace.WithAttributes(attribute.String("node", n.ID)))
	}
}

// trapTab cycles Tab and Shift+Tab through the overlay's tabbable nodes.
// Focus that is missing or outside the overlay is pulled back in, unless a
// visible overlay mounted later covers this one.
func (o *Overlay) trapTab(ev *node.Event) {
	if ev.Key != "tab" && ev.Key != "shift+tab" {
		return
	}
	if o.covered() {
		return
	}
	ev.PreventDefault()
	tabbables := o.doc.Tabbables(o.region)
	if len(tabbables) == 0 {
		return
	}
	active := o.doc.ActiveElement()
	idx := -1
	for i, n := range tabbables {
		if n == active {
			idx = i
			break
		}
	}
	dir := 1
	if ev.Key == "shift+tab" {
		dir = -1
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
	if o.doc.Focus(tabbables[next]) {
		events.Overlay.Trap(o.props.ID, tabbables[next].ID)
	}
}

// holdFocus keeps focus where it is when the pointer lands on a part of the
// overlay that cannot take focus, instead of blurring to the page.
func (o *Overlay) holdFocus(ev *node.Event) {
	if ev.Target == nil || !o.region.Contains(ev.Target) {
		return
	}
	for n := ev.Target; n != nil && o.region.Contains(n); n = n.Parent() {
		if n.IsFocusable() {
			return
		}
	}
	ev.PreventDefault()
}

// covered reports whether a visible overlay sits in a portal layer mounted
// after this one.
func (o *Overlay) covered() bool {
	if o.root == nil {
		return false
	}
	after := false
	for _, layer := range o.doc.Body.Children() {
		if layer == o.root.Node {
			after = true
			continue
		}
		if after && portal.IsLayer(layer) && showsOverlay(layer) {
			return true
		}
	}
	return false
}

func showsOverlay(layer *node.Node) bool {
	found := false
	layer.Walk(func(n *node.Node) bool {
		if found || n.Hidden {
			return false
		}
		if v, _ := n.Attr("data-overlay"); v == "true" {
			found = true
			return false
		}
		return true
	})
	return found
}

func nodeID(n *node.Node) string {
	if n == nil {
		return ""
	}
	return n.ID
}
