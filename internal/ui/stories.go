package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"overlaykit/internal/config"
	"overlaykit/internal/dismiss"
	"overlaykit/internal/filterlist"
	"overlaykit/internal/logging"
	"overlaykit/internal/node"
	"overlaykit/internal/overlay"
)

// branchLoadDelay simulates fetching the branch list.
const branchLoadDelay = 700 * time.Millisecond

// branchesLoadedMsg delivers the branch list to the filter story.
type branchesLoadedMsg struct{}

// DemoStories returns the demo sections in page order.
func DemoStories() []Story {
	return []Story{
		&dropdownStory{},
		&dialogStory{},
		&filterStory{},
		&nestedStory{},
	}
}

// failed reports an overlay error on the status line.
func failed(h *Host, what string, err error) {
	logging.L().Error(what, "error", err)
	h.SetStatus("%s: %v", what, err)
}

// dropdownStory anchors a menu under its toggle button. The toggle is an
// ignored region, so clicking it toggles rather than dismissing and
// reopening.
type dropdownStory struct {
	h      *Host
	toggle *node.Node
	menu   *overlay.Overlay
}

func (s *dropdownStory) Name() string  { return config.StoryDropdown }
func (s *dropdownStory) Title() string { return "Dropdown" }

func (s *dropdownStory) Build(h *Host) []*node.Node {
	s.h = h
	s.toggle = node.NewButton("dropdown-toggle", "Actions ▾")
	s.toggle.SetAttr("aria-haspopup", "menu")
	s.toggle.Listen(node.EventClick, func(*node.Event) { s.onToggle() })
	return []*node.Node{
		node.NewText("A menu anchored below its button."),
		s.toggle,
	}
}

func (s *dropdownStory) Update(tea.Msg) tea.Cmd { return nil }

func (s *dropdownStory) onToggle() {
	if s.menu != nil {
		s.h.Close(s.menu)
		return
	}
	var content []*node.Node
	for _, label := range []string{"Copy link", "Rename", "Archive"} {
		b := node.NewButton("dropdown-"+label, label)
		b.Listen(node.EventClick, func(*node.Event) {
			s.h.SetStatus("Dropdown: %s", label)
			s.h.Close(s.menu)
		})
		content = append(content, b)
	}
	r := s.toggle.BoundingRect()
	menu, err := overlay.New(s.h.Document(), s.h.Portal(), s.h.OverlayProps(overlay.Props{
		ID:              "dropdown-menu",
		Role:            "menu",
		IgnoreClickRefs: []dismiss.Region{dismiss.NodeRegion(s.toggle)},
		ReturnFocusRef:  node.NewRef(s.toggle),
		OnClickOutside:  func(*node.Event) { s.h.Dismiss(s.menu) },
		OnEscape:        func(*node.Event) { s.h.Dismiss(s.menu) },
		Width:           overlay.WidthSmall,
		Anchor:          &node.Point{X: r.X, Y: r.Bottom()},
		Content:         content,
	}))
	if err != nil {
		failed(s.h, "dropdown", err)
		return
	}
	s.menu = menu
	s.toggle.SetAttr("aria-expanded", "true")
	if err := s.h.Open(menu, func() {
		s.menu = nil
		s.toggle.SetAttr("aria-expanded", "false")
	}); err != nil {
		s.menu = nil
		failed(s.h, "dropdown", err)
	}
}

// dialogStory opens a confirmation dialog with focus on its confirm button.
type dialogStory struct {
	h      *Host
	opener *node.Node
	dialog *overlay.Overlay
}

func (s *dialogStory) Name() string  { return config.StoryDialog }
func (s *dialogStory) Title() string { return "Dialog" }

func (s *dialogStory) Build(h *Host) []*node.Node {
	s.h = h
	s.opener = node.NewButton("dialog-open", "Delete branch…")
	s.opener.Listen(node.EventClick, func(*node.Event) { s.open() })
	return []*node.Node{
		node.NewText("A dialog that starts on its confirm button."),
		s.opener,
	}
}

func (s *dialogStory) Update(tea.Msg) tea.Cmd { return nil }

func (s *dialogStory) open() {
	if s.dialog != nil {
		return
	}
	body := NewConfirmDialog("dialog", "Delete branch?", "feature/overlays will be deleted.",
		func() {
			s.h.SetStatus("Dialog: deleted feature/overlays")
			s.h.Close(s.dialog)
		},
		func() {
			s.h.SetStatus("Dialog: cancelled")
			s.h.Close(s.dialog)
		},
	).WithDetails("This cannot be undone.")

	d, err := overlay.New(s.h.Document(), s.h.Portal(), s.h.OverlayProps(overlay.Props{
		ID:              "dialog",
		Role:            "alertdialog",
		InitialFocusRef: node.NewRef(body.Confirm),
		ReturnFocusRef:  node.NewRef(s.opener),
		OnClickOutside:  func(*node.Event) { s.h.Dismiss(s.dialog) },
		OnEscape:        func(*node.Event) { s.h.Dismiss(s.dialog) },
		Width:           overlay.WidthMedium,
		Content:         []*node.Node{body.Node()},
	}))
	if err != nil {
		failed(s.h, "dialog", err)
		return
	}
	s.dialog = d
	if err := s.h.Open(d, func() { s.dialog = nil }); err != nil {
		s.dialog = nil
		failed(s.h, "dialog", err)
	}
}

// filterStory shows a filterable branch list inside an overlay. The overlay
// is mounted hidden first so the list can attach to a connected parent,
// then made visible with focus on the filter input.
type filterStory struct {
	h      *Host
	opener *node.Node
	picker *overlay.Overlay
	list   *filterlist.List
}

func (s *filterStory) Name() string  { return config.StoryFilter }
func (s *filterStory) Title() string { return "Filtered list" }

func (s *filterStory) Build(h *Host) []*node.Node {
	s.h = h
	s.opener = node.NewButton("filter-open", "Switch branch…")
	s.opener.Listen(node.EventClick, func(*node.Event) { s.open() })
	return []*node.Node{
		node.NewText("Type to filter; arrows move, Enter picks. Branches load after a moment."),
		s.opener,
	}
}

func (s *filterStory) Update(msg tea.Msg) tea.Cmd {
	if s.list == nil {
		return nil
	}
	if _, ok := msg.(branchesLoadedMsg); ok {
		s.list.SetItems(s.branches())
		return s.list.SetLoading(false)
	}
	return s.list.Update(msg)
}

func (s *filterStory) branches() []filterlist.Item {
	pick := func(it filterlist.Item, _ *node.Event) {
		s.h.SetStatus("Filtered list: checked out %s", it.Text)
		s.h.Close(s.picker)
	}
	items := []filterlist.Item{
		{ID: "main", Text: "main", GroupID: "local", Description: "default"},
		{ID: "develop", Text: "develop", GroupID: "local"},
		{ID: "feature-overlays", Text: "feature/overlays", GroupID: "local"},
		{ID: "feature-focus-zone", Text: "feature/focus-zone", GroupID: "local"},
		{ID: "origin-main", Text: "origin/main", GroupID: "remote"},
		{ID: "origin-release", Text: "origin/release-1.2", GroupID: "remote"},
		{ID: "origin-gone", Text: "origin/gone", GroupID: "remote", Disabled: true, Description: "deleted upstream"},
	}
	for i := range items {
		items[i].OnAction = pick
	}
	return items
}

func (s *filterStory) open() {
	if s.picker != nil {
		return
	}
	body := node.NewBox("picker-body")
	body.Label = "Switch branch"
	inputRef := &node.Ref{}
	picker, err := overlay.New(s.h.Document(), s.h.Portal(), s.h.OverlayProps(overlay.Props{
		ID:              "picker",
		InitialFocusRef: inputRef,
		ReturnFocusRef:  node.NewRef(s.opener),
		OnClickOutside:  func(*node.Event) { s.h.Dismiss(s.picker) },
		OnEscape:        func(*node.Event) { s.h.Dismiss(s.picker) },
		Width:           overlay.WidthMedium,
		Content:         []*node.Node{body},
	}))
	if err != nil {
		failed(s.h, "filtered list", err)
		return
	}
	if err := picker.SetVisibility(overlay.Hidden); err != nil {
		failed(s.h, "filtered list", err)
		return
	}
	list, err := filterlist.New(s.h.Document(), body, filterlist.Props{
		ID:              "branches",
		Loading:         true,
		PlaceholderText: "Filter branches",
		Groups: []filterlist.Group{
			{ID: "local", Title: "Local"},
			{ID: "remote", Title: "Remote"},
		},
		Height: 8,
	})
	if err != nil {
		s.discard(picker)
		failed(s.h, "filtered list", err)
		return
	}
	inputRef.Current = list.Input()
	s.picker, s.list = picker, list

	if err := s.h.Open(picker, s.closed); err != nil {
		s.closed()
		s.discard(picker)
		failed(s.h, "filtered list", err)
		return
	}
	s.h.Queue(list.Init())
	s.h.Queue(tea.Tick(branchLoadDelay, func(time.Time) tea.Msg { return branchesLoadedMsg{} }))
}

// discard unmounts a picker that never made it onto the overlay stack.
func (s *filterStory) discard(picker *overlay.Overlay) {
	if err := picker.Close(); err != nil {
		logging.L().Debug("discard branch picker", "error", err)
	}
}

func (s *filterStory) closed() {
	if s.list != nil {
		if err := s.list.Close(); err != nil {
			logging.L().Debug("close branch list", "error", err)
		}
	}
	s.picker, s.list = nil, nil
}

// nestedStory opens a settings overlay that can open a confirmation above
// itself. The parent ignores clicks in the child and the child ignores
// clicks in the parent; Escape closes the innermost first.
type nestedStory struct {
	h        *Host
	opener   *node.Node
	settings *overlay.Overlay
	reset    *overlay.Overlay
	resetRef *node.Ref
	checks   []*node.Node
}

func (s *nestedStory) Name() string  { return config.StoryNested }
func (s *nestedStory) Title() string { return "Nested overlays" }

func (s *nestedStory) Build(h *Host) []*node.Node {
	s.h = h
	s.opener = node.NewButton("nested-open", "Settings…")
	s.opener.Listen(node.EventClick, func(*node.Event) { s.openSettings() })
	return []*node.Node{
		node.NewText("Overlays opened from overlays; Escape closes the innermost first."),
		s.opener,
	}
}

func (s *nestedStory) Update(tea.Msg) tea.Cmd { return nil }

func (s *nestedStory) openSettings() {
	if s.settings != nil {
		return
	}
	s.checks = nil
	for _, label := range []string{"Email notifications", "Compact mode"} {
		cb := node.NewCheckbox("settings-"+label, label)
		cb.Listen(node.EventInput, func(ev *node.Event) {
			state := "off"
			if ev.Target.Checked {
				state = "on"
			}
			s.h.SetStatus("Settings: %s %s", label, state)
		})
		s.checks = append(s.checks, cb)
	}
	resetBtn := node.NewButton("settings-reset", "Reset settings…")
	resetBtn.Listen(node.EventClick, func(*node.Event) { s.openReset(resetBtn) })
	danger := node.New(node.KindDetails, "settings-danger", "Danger zone")
	danger.AppendChild(resetBtn)
	done := node.NewButton("settings-done", "Done")
	done.Listen(node.EventClick, func(*node.Event) { s.h.Close(s.settings) })

	body := node.NewBox("settings-body", s.checks[0], s.checks[1], danger, done)
	body.Label = "Settings"

	resetRef := &node.Ref{}
	settings, err := overlay.New(s.h.Document(), s.h.Portal(), s.h.OverlayProps(overlay.Props{
		ID:              "settings",
		IgnoreClickRefs: []dismiss.Region{dismiss.RefRegion(resetRef)},
		ReturnFocusRef:  node.NewRef(s.opener),
		OnClickOutside:  func(*node.Event) { s.h.Dismiss(s.settings) },
		OnEscape:        func(*node.Event) { s.h.Dismiss(s.settings) },
		Width:           overlay.WidthMedium,
		Content:         []*node.Node{body},
	}))
	if err != nil {
		failed(s.h, "settings", err)
		return
	}
	s.settings = settings
	s.resetRef = resetRef
	if err := s.h.Open(settings, func() { s.settings = nil }); err != nil {
		s.settings = nil
		failed(s.h, "settings", err)
	}
}

func (s *nestedStory) openReset(from *node.Node) {
	if s.reset != nil || s.settings == nil {
		return
	}
	body := NewConfirmDialog("reset", "Reset all settings?", "Every option returns to its default.",
		func() {
			for _, cb := range s.checks {
				cb.Checked = false
			}
			s.h.SetStatus("Settings: reset")
			s.h.Close(s.reset)
		},
		func() { s.h.Close(s.reset) },
	)
	reset, err := overlay.New(s.h.Document(), s.h.Portal(), s.h.OverlayProps(overlay.Props{
		ID:              "reset",
		Role:            "alertdialog",
		IgnoreClickRefs: []dismiss.Region{s.settings.DismissRegion()},
		InitialFocusRef: node.NewRef(body.Cancel),
		ReturnFocusRef:  node.NewRef(from),
		OnClickOutside:  func(*node.Event) { s.h.Dismiss(s.reset) },
		OnEscape:        func(*node.Event) { s.h.Dismiss(s.reset) },
		Width:           overlay.WidthSmall,
		Content:         []*node.Node{body.Node()},
	}))
	if err != nil {
		failed(s.h, "reset", err)
		return
	}
	s.reset = reset
	s.resetRef.Current = reset.Region()
	if err := s.h.Open(reset, func() {
		s.reset = nil
		s.resetRef.Current = nil
	}); err != nil {
		s.reset = nil
		failed(s.h, "reset", err)
	}
}
