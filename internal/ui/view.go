package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"overlaykit/internal/node"
)

// Story is one demo section. Build creates its page nodes once; Update sees
// every message the host does not consume itself. Key messages arrive after
// they were dispatched to the document.
type Story interface {
	Name() string
	Title() string
	Build(h *Host) []*node.Node
	Update(msg tea.Msg) tea.Cmd
}
