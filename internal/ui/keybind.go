package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"overlaykit/internal/focuszone"
)

// KeybindRegistry maps host-level keys to commands. Host keys are looked up
// before the key reaches the focused node, so only keys no widget types
// (ctrl+c, function keys) belong here.
type KeybindRegistry struct {
	bindings     map[string]tea.Cmd
	descriptions map[string]string
	order        []string
}

// NewKeybindRegistry creates an empty registry.
func NewKeybindRegistry() *KeybindRegistry {
	return &KeybindRegistry{
		bindings:     make(map[string]tea.Cmd),
		descriptions: make(map[string]string),
	}
}

// Bind registers a key to a command.
// Overwrites any existing binding for the key.
func (r *KeybindRegistry) Bind(k string, cmd tea.Cmd) {
	r.BindWithDesc(k, cmd, "")
}

// BindWithDesc registers a key with a description for the help view.
func (r *KeybindRegistry) BindWithDesc(k string, cmd tea.Cmd, desc string) {
	if _, ok := r.bindings[k]; !ok {
		r.order = append(r.order, k)
	}
	r.bindings[k] = cmd
	if desc != "" {
		r.descriptions[k] = desc
	}
}

// Lookup returns the command for a key, or nil if not bound.
func (r *KeybindRegistry) Lookup(k string) tea.Cmd {
	return r.bindings[k]
}

// Bindings returns the bound keys as help bindings, in registration order.
// Keys without a description show the key itself.
func (r *KeybindRegistry) Bindings() []key.Binding {
	out := make([]key.Binding, 0, len(r.order))
	for _, k := range r.order {
		if r.bindings[k] == nil {
			continue
		}
		desc := r.descriptions[k]
		if desc == "" {
			desc = k
		}
		out = append(out, key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc)))
	}
	return out
}

// Widget bindings handled by the node tree, shown in the help bar.
var (
	tabBinding = key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "focus"),
	)
	activateBinding = key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "activate"),
	)
	escBinding = key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	)
)

// KeyMap implements help.KeyMap for the host: its own bindings, the widget
// keys, and the list navigation keys while a list has focus.
type KeyMap struct {
	registry *KeybindRegistry
	overlays bool
	list     *focuszone.KeyMap
}

// NewKeyMap creates a KeyMap. list is nil unless a list input has focus.
func NewKeyMap(registry *KeybindRegistry, overlaysOpen bool, list *focuszone.KeyMap) help.KeyMap {
	return &KeyMap{registry: registry, overlays: overlaysOpen, list: list}
}

func (km *KeyMap) widgets() []key.Binding {
	out := []key.Binding{tabBinding, activateBinding}
	if km.overlays {
		out = append(out, escBinding)
	}
	return out
}

// ShortHelp returns bindings for the short help view.
func (km *KeyMap) ShortHelp() []key.Binding {
	var out []key.Binding
	if km.list != nil {
		out = append(out, km.list.ShortHelp()...)
	}
	out = append(out, km.widgets()...)
	if km.registry != nil {
		out = append(out, km.registry.Bindings()...)
	}
	return out
}

// FullHelp returns bindings grouped into columns.
func (km *KeyMap) FullHelp() [][]key.Binding {
	var out [][]key.Binding
	if km.list != nil {
		out = append(out, km.list.FullHelp()...)
	}
	out = append(out, km.widgets())
	if km.registry != nil {
		out = append(out, km.registry.Bindings())
	}
	return out
}
