// Package filterlist provides a filter input driving a navigable list.
//
// Real focus stays in the filter input; arrow keys move a virtual active
// descendant over the visible items through a focus zone, and Enter is
// forwarded to the active item. The list filters itself unless the caller
// controls the filter value.
package filterlist

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"overlaykit/internal/focuszone"
	"overlaykit/internal/logging"
	"overlaykit/internal/logging/events"
	"overlaykit/internal/node"
	"overlaykit/internal/scroll"
)

// DefaultMargin is the row gap kept around the active item when scrolling.
const DefaultMargin = 1

var (
	ErrNoDocument     = errors.New("no document")
	ErrDetachedParent = errors.New("parent is not attached to the document")
)

// Item is one selectable entry.
type Item struct {
	ID          string
	Text        string
	Description string
	GroupID     string
	Disabled    bool
	// OnAction runs on Enter or click while the item is active.
	OnAction func(item Item, ev *node.Event)
}

// Group labels a run of items sharing GroupID.
type Group struct {
	ID    string
	Title string
}

// Props configures a list.
type Props struct {
	// ID prefixes node ids. Defaults to a generated id.
	ID              string
	Loading         bool
	PlaceholderText string
	// FilterValue, when non-nil, is the displayed filter and wins over the
	// list's own state.
	FilterValue *string
	// OnFilterChange runs on every edit, before internal state updates.
	OnFilterChange func(value string, ev *node.Event)
	Items          []Item
	Groups         []Group
	// Matcher defaults to FuzzyMatcher.
	Matcher Matcher
	// Height fixes the scroll area in rows; zero sizes it to the content.
	Height int
	// Margin defaults to DefaultMargin.
	Margin int
	KeyMap focuszone.KeyMap
}

// List is a mounted filterable list.
type List struct {
	doc   *node.Document
	props Props

	root     *node.Node
	header   *node.Node
	input    *node.Node
	scroller *node.Node
	listbox  *node.Node
	spinNode *node.Node

	zone    *focuszone.Zone
	text    textinput.Model
	spin    spinner.Model
	cancels []func()
	pending tea.Cmd

	internal      string
	visible       []Item
	nodes         map[string]*node.Node
	pendingScroll bool
}

// New builds the list's node tree, mounts it under parent and attaches its
// focus zone. The parent must be connected to doc.
func New(doc *node.Document, parent *node.Node, props Props) (*List, error) {
	if doc == nil {
		return nil, fmt.Errorf("filterlist: new: %w", ErrNoDocument)
	}
	if props.ID == "" {
		props.ID = "list-" + uuid.NewString()[:8]
	}
	if props.Matcher == nil {
		props.Matcher = FuzzyMatcher
	}
	if props.Margin <= 0 {
		props.Margin = DefaultMargin
	}

	l := &List{doc: doc, props: props, nodes: make(map[string]*node.Node)}

	l.text = textinput.New()
	l.text.Prompt = ""
	l.text.Placeholder = props.PlaceholderText
	l.text.Focus()

	l.spin = spinner.New()
	l.spin.Spinner = spinner.Dot

	l.input = node.NewInput(props.ID + "-input")
	l.input.SetAttr("aria-controls", props.ID+"-listbox")
	l.input.SetAttr("aria-label", props.PlaceholderText)
	l.input.SetAttr("placeholder", props.PlaceholderText)
	l.input.SetDefaultAction(l.handleTyping)

	l.header = node.NewBox(props.ID+"-header", l.input, node.New(node.KindSeparator, "", ""))
	l.listbox = node.New(node.KindList, props.ID+"-listbox", "")
	l.listbox.SetAttr("role", "listbox")
	l.spinNode = node.New(node.KindSpinner, props.ID+"-spinner", l.spin.View())
	l.scroller = node.NewBox(props.ID + "-scroll")
	l.scroller.Height = props.Height
	l.root = node.NewBox(props.ID, l.header, l.scroller)

	if props.FilterValue != nil {
		l.text.SetValue(*props.FilterValue)
	}
	l.input.Value = l.text.Value()
	l.renderItems()
	l.showLoading(props.Loading)

	if parent == nil {
		parent = doc.Body
	}
	if parent.Document() != doc {
		return nil, fmt.Errorf("filterlist: new %q: %w", props.ID, ErrDetachedParent)
	}
	parent.AppendChild(l.root)

	// Registered before the zone so Enter is claimed ahead of any other
	// keydown listener on the input.
	l.cancels = append(l.cancels, l.input.Listen(node.EventKeyDown, l.forwardEnter))

	zone, err := focuszone.Attach(l.scroller, focuszone.Options{
		ActiveDescendantControl: l.input,
		FocusOutBehavior:        focuszone.Wrap,
		Filter:                  notPlainInput,
		KeyMap:                  props.KeyMap,
		OnActiveDescendantChanged: func(current, _ *node.Node) {
			scroll.Reconcile(current, l.scroller, l.props.Margin, node.ScrollSmooth)
		},
	})
	if err != nil {
		l.root.Remove()
		return nil, fmt.Errorf("filterlist: new %q: %w", props.ID, err)
	}
	l.zone = zone
	l.cancels = append(l.cancels, doc.OnLayout(l.afterLayout))
	return l, nil
}

// notPlainInput keeps inputs and checkboxes nested in items on real focus.
func notPlainInput(n *node.Node) bool {
	return n.Kind != node.KindInput && n.Kind != node.KindCheckbox
}

// ID returns the listbox id the input references through aria-controls.
func (l *List) ID() string { return l.listbox.ID }

// Root returns the list's outermost node.
func (l *List) Root() *node.Node { return l.root }

// Input returns the filter input node.
func (l *List) Input() *node.Node { return l.input }

// ScrollContainer returns the scrolling node around the items.
func (l *List) ScrollContainer() *node.Node { return l.scroller }

// Zone exposes the focus zone.
func (l *List) Zone() *focuszone.Zone { return l.zone }

// Value is the effective filter: the caller's value when supplied, otherwise
// the list's own.
func (l *List) Value() string {
	if l.props.FilterValue != nil {
		return *l.props.FilterValue
	}
	return l.internal
}

// SetFilterValue switches the caller-controlled value. Nil hands control back
// to the list's own state.
func (l *List) SetFilterValue(v *string) {
	l.props.FilterValue = v
	l.syncInput()
	l.renderItems()
}

// Visible returns the items currently shown.
func (l *List) Visible() []Item {
	out := make([]Item, len(l.visible))
	copy(out, l.visible)
	return out
}

// ItemNode returns the node for an item id, if shown.
func (l *List) ItemNode(id string) *node.Node { return l.nodes[id] }

// Active returns the active item, if any.
func (l *List) Active() (Item, bool) {
	n := l.zone.Active()
	if n == nil {
		return Item{}, false
	}
	for _, it := range l.visible {
		if l.nodes[it.ID] == n {
			return it, true
		}
	}
	return Item{}, false
}

// Loading reports whether the spinner is shown.
func (l *List) Loading() bool { return l.props.Loading }

// SetItems replaces the item collection. Nodes are matched by item id, so an
// active item that survives keeps its place. The active item is scrolled
// into view without animation after the next layout.
func (l *List) SetItems(items []Item) {
	l.props.Items = items
	l.renderItems()
}

// SetLoading swaps the items for the spinner and back. It returns the
// spinner tick while loading.
func (l *List) SetLoading(loading bool) tea.Cmd {
	l.showLoading(loading)
	if loading {
		return l.spin.Tick
	}
	return nil
}

// Init starts the spinner when the list begins loading.
func (l *List) Init() tea.Cmd {
	if l.props.Loading {
		return l.spin.Tick
	}
	return textinput.Blink
}

// Update advances the spinner and input cursor. For a key message it returns
// the commands queued while that key was dispatched through the document.
func (l *List) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !l.props.Loading {
			return nil
		}
		var cmd tea.Cmd
		l.spin, cmd = l.spin.Update(msg)
		l.spinNode.Label = l.spin.View()
		return cmd
	case tea.KeyMsg:
		// The key already reached the text model through the input's
		// default action; hand back what that edit produced.
		cmd := l.pending
		l.pending = nil
		return cmd
	}
	var cmd tea.Cmd
	l.text, cmd = l.text.Update(msg)
	return cmd
}

// Close detaches the zone and removes the list from the tree.
func (l *List) Close() error {
	for _, cancel := range l.cancels {
		cancel()
	}
	l.cancels = nil
	err := l.zone.Detach()
	l.root.Remove()
	if err != nil {
		return fmt.Errorf("filterlist: close %q: %w", l.props.ID, err)
	}
	return nil
}

func (l *List) showLoading(loading bool) {
	l.props.Loading = loading
	if loading {
		l.spinNode.Label = l.spin.View()
		l.scroller.ReplaceChildren(l.spinNode)
		l.scroller.SetAttr("aria-busy", "true")
		return
	}
	l.scroller.RemoveAttr("aria-busy")
	l.scroller.ReplaceChildren(l.listbox)
	l.pendingScroll = true
}

// renderItems filters the collection and rebuilds the listbox children,
// reusing nodes by item id.
func (l *List) renderItems() {
	matched := l.props.Matcher(l.Value(), l.props.Items)

	fresh := make(map[string]*node.Node, len(matched))
	visible := make([]Item, 0, len(matched))
	var children []*node.Node
	grouped := make(map[string][]*node.Node)
	for _, it := range matched {
		if _, dup := fresh[it.ID]; dup {
			logging.L().Warn("duplicate item id skipped", "list", l.props.ID, "item", it.ID, "text", it.Text)
			continue
		}
		visible = append(visible, it)
		n := l.itemNode(it)
		fresh[it.ID] = n
		if it.GroupID == "" || !l.hasGroup(it.GroupID) {
			children = append(children, n)
			continue
		}
		grouped[it.GroupID] = append(grouped[it.GroupID], n)
	}
	for _, g := range l.props.Groups {
		members := grouped[g.ID]
		if len(members) == 0 {
			continue
		}
		header := node.NewText(g.Title)
		header.ID = l.props.ID + "-group-" + g.ID
		header.SetAttr("role", "presentation")
		header.AddClass("group-header")
		children = append(children, header)
		children = append(children, members...)
	}
	l.visible = visible
	events.Filter.Items(l.props.ID, len(l.props.Items), len(l.visible))
	l.nodes = fresh
	l.listbox.ReplaceChildren(children...)
	l.pendingScroll = true
}

func (l *List) hasGroup(id string) bool {
	for _, g := range l.props.Groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

func (l *List) itemNode(it Item) *node.Node {
	n, ok := l.nodes[it.ID]
	if !ok {
		n = node.NewItem(l.props.ID+"-item-"+it.ID, it.Text)
		n.SetAttr("role", "option")
		id := it.ID
		n.Listen(node.EventKeyDown, func(ev *node.Event) {
			if ev.Key == "enter" {
				l.activate(id, ev)
			}
		})
		n.Listen(node.EventClick, func(ev *node.Event) { l.activate(id, ev) })
	}
	n.Label = it.Text
	n.Disabled = it.Disabled
	if it.Description != "" {
		n.SetAttr("aria-description", it.Description)
	} else {
		n.RemoveAttr("aria-description")
	}
	return n
}

func (l *List) activate(id string, ev *node.Event) {
	for _, it := range l.visible {
		if it.ID != id {
			continue
		}
		events.Filter.Activate(l.props.ID, id)
		if it.OnAction != nil && !it.Disabled {
			it.OnAction(it, ev)
		}
		return
	}
}

// forwardEnter re-dispatches Enter on the active item so item handlers need
// not know about the virtual focus.
func (l *List) forwardEnter(ev *node.Event) {
	if ev.Key != "enter" {
		return
	}
	active := l.zone.Active()
	if active == nil {
		return
	}
	ev.PreventDefault()
	ev.StopImmediatePropagation()
	l.doc.Dispatch(ev.Redirect(active))
}

// handleTyping is the input's default action: the key edits the text model
// and a changed value is reported then applied.
func (l *List) handleTyping(ev *node.Event) {
	if ev.Type != node.EventKeyDown {
		return
	}
	msg, ok := ev.Msg.(tea.KeyMsg)
	if !ok {
		if msg, ok = keyMsg(ev.Key); !ok {
			return
		}
	}
	before := l.text.Value()
	var cmd tea.Cmd
	l.text, cmd = l.text.Update(msg)
	l.pending = tea.Batch(l.pending, cmd)
	value := l.text.Value()
	if value == before {
		return
	}

	events.Filter.Change(l.props.ID, value)
	if l.props.OnFilterChange != nil {
		l.props.OnFilterChange(value, ev)
	}
	l.internal = value
	l.syncInput()
	l.renderItems()
	l.doc.Dispatch(&node.Event{Type: node.EventInput, Target: l.input, Msg: ev.Msg, Synthetic: true})
}

// syncInput shows the effective value in the text model and node.
func (l *List) syncInput() {
	if v := l.Value(); l.text.Value() != v {
		l.text.SetValue(v)
	}
	l.input.Value = l.text.Value()
}

func (l *List) afterLayout() {
	if !l.pendingScroll {
		return
	}
	l.pendingScroll = false
	scroll.Reconcile(l.zone.Active(), l.scroller, l.props.Margin, node.ScrollInstant)
}

// keyMsg rebuilds a Bubble Tea key message for events that did not come
// from the terminal.
func keyMsg(k node.Key) (tea.KeyMsg, bool) {
	switch k {
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}, true
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}, true
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}, true
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}, true
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}, true
	case "ctrl+w":
		return tea.KeyMsg{Type: tea.KeyCtrlW}, true
	case " ", "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, true
	}
	if r := []rune(string(k)); len(r) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: r}, true
	}
	return tea.KeyMsg{}, false
}
