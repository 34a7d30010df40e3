// Package events holds typed trace emitters for the interaction components.
package events

import "overlaykit/internal/logging"

type ZoneTracer struct{}

type DismissTracer struct{}

type OverlayTracer struct{}

type FilterTracer struct{}

var (
	Zone    = ZoneTracer{}
	Dismiss = DismissTracer{}
	Overlay = OverlayTracer{}
	Filter  = FilterTracer{}
)

func (ZoneTracer) Active(container, current, previous string) {
	logging.Trace("zone.active", "container", container, "current", current, "previous", previous)
}

func (ZoneTracer) Refresh(container string, candidates int) {
	logging.Trace("zone.refresh", "container", container, "candidates", candidates)
}

func (ZoneTracer) Redirect(container, from string) {
	logging.Trace("zone.redirect", "container", container, "from", from)
}

func (DismissTracer) Outside(target string, x, y int) {
	logging.Trace("dismiss.outside", "target", target, "x", x, "y", y)
}

func (DismissTracer) Ignored(target string, x, y int) {
	logging.Trace("dismiss.ignored", "target", target, "x", x, "y", y)
}

func (DismissTracer) Escape(target string) {
	logging.Trace("dismiss.escape", "target", target)
}

func (OverlayTracer) Visibility(id, from, to string) {
	logging.Trace("overlay.visibility", "overlay", id, "from", from, "to", to)
}

func (OverlayTracer) Focus(id, node, reason string) {
	logging.Trace("overlay.focus", "overlay", id, "node", node, "reason", reason)
}

func (OverlayTracer) Trap(id, node string) {
	logging.Trace("overlay.trap", "overlay", id, "node", node)
}

func (FilterTracer) Change(list, value string) {
	logging.Trace("filter.change", "list", list, "value", value)
}

func (FilterTracer) Items(list string, total, shown int) {
	logging.Trace("filter.items", "list", list, "total", total, "shown", shown)
}

func (FilterTracer) Activate(list, item string) {
	logging.Trace("filter.activate", "list", list, "item", item)
}
