package ui

import "overlaykit/internal/node"

// ConfirmDialog is the content of a confirmation overlay. Activating
// Confirm runs onConfirm; Cancel runs onCancel.
type ConfirmDialog struct {
	Title   string
	Label   string
	Details string
	Cancel  *node.Node
	Confirm *node.Node

	root    *node.Node
	details *node.Node
}

// NewConfirmDialog creates the dialog body. Node ids are prefixed with id.
func NewConfirmDialog(id, title, label string, onConfirm, onCancel func()) *ConfirmDialog {
	d := &ConfirmDialog{
		Title:   title,
		Label:   label,
		Cancel:  node.NewButton(id+"-cancel", "Cancel"),
		Confirm: node.NewButton(id+"-confirm", "Confirm"),
	}
	d.details = node.NewText("")
	d.details.Hidden = true
	d.details.AddClass("details")
	d.root = node.NewBox(id+"-body",
		node.NewText(label),
		d.details,
		node.New(node.KindSeparator, "", ""),
		d.Cancel,
		d.Confirm,
	)
	d.root.Label = title
	d.Confirm.Listen(node.EventClick, func(*node.Event) {
		if onConfirm != nil {
			onConfirm()
		}
	})
	d.Cancel.Listen(node.EventClick, func(*node.Event) {
		if onCancel != nil {
			onCancel()
		}
	})
	return d
}

// WithDetails adds a warning line under the label.
func (d *ConfirmDialog) WithDetails(details string) *ConfirmDialog {
	d.Details = details
	d.details.Label = details
	d.details.Hidden = details == ""
	return d
}

// Node returns the dialog body.
func (d *ConfirmDialog) Node() *node.Node { return d.root }
