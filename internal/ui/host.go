package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.opentelemetry.io/otel/trace"

	"overlaykit/internal/config"
	"overlaykit/internal/focuszone"
	"overlaykit/internal/logging"
	"overlaykit/internal/node"
	"overlaykit/internal/overlay"
	"overlaykit/internal/portal"
	"overlaykit/internal/render"
)

const pageTitle = "overlaykit"

// toggleHelpMsg switches the help bar between short and full.
type toggleHelpMsg struct{}

// Options configures a Host.
type Options struct {
	// Width and Height fix the viewport; zero waits for the terminal size.
	Width  int
	Height int
	// Story names the section expanded at start.
	Story string
	// Theme defaults to render.DefaultTheme.
	Theme *render.Theme
	// Tracer is handed to every overlay; nil uses the global provider.
	Tracer trace.Tracer
	// Stories overrides the demo sections.
	Stories []Story
}

// Host is the root tea.Model. It owns the document and forwards terminal
// input into it as node events.
type Host struct {
	doc    *node.Document
	portal *portal.DocumentPortal
	theme  render.Theme
	tracer trace.Tracer

	width, height int

	keys     *KeybindRegistry
	help     help.Model
	fullHelp bool

	overlays OverlayStack
	stories  []Story
	sections map[string]*node.Node
	status   *node.Node

	pressed *node.Node
	pending []tea.Cmd
}

var _ tea.Model = (*Host)(nil)

// NewHost builds the demo page.
func NewHost(opts Options) (*Host, error) {
	if opts.Story == "" {
		opts.Story = config.StoryDropdown
	}
	if opts.Stories == nil {
		opts.Stories = DemoStories()
	}
	theme := render.DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	doc := node.NewDocument()
	h := &Host{
		doc:      doc,
		portal:   portal.New(doc),
		theme:    theme,
		tracer:   opts.Tracer,
		width:    opts.Width,
		height:   opts.Height,
		keys:     NewKeybindRegistry(),
		help:     newHelpModel(),
		stories:  opts.Stories,
		sections: make(map[string]*node.Node),
	}
	h.keys.BindWithDesc("ctrl+c", tea.Quit, "quit")
	h.keys.BindWithDesc("f1", func() tea.Msg { return toggleHelpMsg{} }, "more help")

	h.status = node.NewText("Ready")
	h.status.ID = "status"
	page := node.NewBox("page", h.status, node.New(node.KindSeparator, "", ""))
	page.Label = pageTitle

	var start *node.Node
	for _, s := range h.stories {
		section := node.New(node.KindDetails, "story-"+s.Name(), s.Title())
		section.AppendChild(s.Build(h)...)
		page.AppendChild(section)
		h.sections[s.Name()] = section
		if s.Name() == opts.Story {
			start = section
		}
	}
	if start == nil {
		return nil, fmt.Errorf("ui: unknown story %q", opts.Story)
	}
	doc.Body.AppendChild(page)

	start.Open = true
	for _, n := range doc.Tabbables(start) {
		if n != start {
			doc.Focus(n)
			break
		}
	}
	if doc.ActiveElement() == nil {
		doc.Focus(start)
	}
	return h, nil
}

// Document exposes the node tree.
func (h *Host) Document() *node.Document { return h.doc }

// Portal returns the portal overlays mount into.
func (h *Host) Portal() portal.Portal { return h.portal }

// Status returns the last status message.
func (h *Host) Status() string { return h.status.Label }

// SetStatus replaces the status line.
func (h *Host) SetStatus(format string, args ...any) {
	h.status.Label = fmt.Sprintf(format, args...)
}

// Queue schedules a command to run after the current event.
func (h *Host) Queue(cmd tea.Cmd) {
	if cmd != nil {
		h.pending = append(h.pending, cmd)
	}
}

// OverlayProps fills host defaults into props.
func (h *Host) OverlayProps(props overlay.Props) overlay.Props {
	if props.Tracer == nil {
		props.Tracer = h.tracer
	}
	return props
}

// Open shows o and pushes it on the overlay stack. onClose runs after o is
// closed through Close.
func (h *Host) Open(o *overlay.Overlay, onClose func()) error {
	if err := o.SetVisibility(overlay.Visible); err != nil {
		return err
	}
	h.overlays.Push(Layer{Overlay: o, OnClose: onClose})
	return nil
}

// Close unmounts o together with every overlay opened above it, innermost
// first.
func (h *Host) Close(o *overlay.Overlay) {
	if !h.overlays.Contains(o) {
		return
	}
	for {
		top, ok := h.overlays.Pop()
		if !ok {
			return
		}
		if err := top.Overlay.SetVisibility(overlay.Unmounted); err != nil {
			logging.L().Warn("close overlay", "overlay", top.Overlay.ID(), "error", err)
		}
		if top.OnClose != nil {
			top.OnClose()
		}
		if top.Overlay == o {
			return
		}
	}
}

// Dismiss closes o when it is the innermost open overlay, so one Escape or
// outside click closes one level.
func (h *Host) Dismiss(o *overlay.Overlay) {
	if h.overlays.IsTop(o) {
		h.Close(o)
	}
}

// Init implements tea.Model.
func (h *Host) Init() tea.Cmd {
	return tea.SetWindowTitle(pageTitle)
}

// Update implements tea.Model.
func (h *Host) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.width, h.height = msg.Width, msg.Height
		return h, nil
	case toggleHelpMsg:
		h.fullHelp = !h.fullHelp
		return h, nil
	case tea.KeyMsg:
		if cmd := h.keys.Lookup(msg.String()); cmd != nil {
			return h, cmd
		}
		h.doc.KeyDown(node.Key(msg.String()), msg)
		h.forward(msg)
		return h, h.flush()
	case tea.MouseMsg:
		h.handleMouse(msg)
		return h, h.flush()
	}
	h.forward(msg)
	return h, h.flush()
}

// forward hands msg to every story and queues what they return.
func (h *Host) forward(msg tea.Msg) {
	for _, s := range h.stories {
		h.Queue(s.Update(msg))
	}
}

func (h *Host) flush() tea.Cmd {
	if len(h.pending) == 0 {
		return nil
	}
	cmds := h.pending
	h.pending = nil
	return tea.Batch(cmds...)
}

// handleMouse maps a left press to pointerdown, a release over the pressed
// node to click, and the wheel to scrolling the container under the pointer.
func (h *Host) handleMouse(msg tea.MouseMsg) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		h.wheel(msg.X, msg.Y, -1)
	case msg.Button == tea.MouseButtonWheelDown:
		h.wheel(msg.X, msg.Y, 1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		h.doc.PointerDown(msg.X, msg.Y, msg)
		h.pressed = h.doc.HitTest(msg.X, msg.Y)
	case msg.Action == tea.MouseActionRelease:
		pressed := h.pressed
		h.pressed = nil
		if pressed != nil && h.doc.HitTest(msg.X, msg.Y) == pressed {
			h.doc.Click(msg.X, msg.Y, msg)
		}
	}
}

func (h *Host) wheel(x, y, dir int) {
	for n := h.doc.HitTest(x, y); n != nil; n = n.Parent() {
		if n.Height > 0 && n.MaxScrollTop() > 0 {
			n.ScrollBy(dir, node.ScrollInstant)
			return
		}
	}
}

// View implements tea.Model.
func (h *Host) View() string {
	if h.width <= 0 || h.height <= 0 {
		return ""
	}
	footer := RenderKeybindHelp(h.help, h.keyMap(), h.width, h.fullHelp)
	ph := max(h.height-lipgloss.Height(footer), 1)
	render.Layout(h.doc, h.width, ph)
	return render.Paint(h.doc, h.width, ph, h.theme) + "\n" + footer
}

func (h *Host) keyMap() help.KeyMap {
	var list *focuszone.KeyMap
	if a := h.doc.ActiveElement(); a != nil && a.Kind == node.KindInput {
		if _, ok := a.Attr("aria-controls"); ok {
			km := focuszone.DefaultKeyMap()
			list = &km
		}
	}
	return NewKeyMap(h.keys, h.overlays.Len() > 0, list)
}
