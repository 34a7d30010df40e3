// Package portal mounts content into layers attached directly under the
// document body, outside the layout of whatever opened them.
package portal

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"overlaykit/internal/node"
)

var (
	ErrNoContent  = errors.New("no content")
	ErrNotMounted = errors.New("portal root is not mounted")
)

// Portal is the mount/unmount contract the overlay manager consumes.
type Portal interface {
	Mount(content *node.Node) (*Root, error)
	Unmount(root *Root) error
}

// Root is a mounted layer.
type Root struct {
	ID      string
	Node    *node.Node
	mounted bool
}

// Mounted reports whether the layer is still attached.
func (r *Root) Mounted() bool { return r != nil && r.mounted }

// DocumentPortal appends each layer as the last child of the document body
// so layers mounted later paint and hit-test above earlier ones.
type DocumentPortal struct {
	doc *node.Document
}

// New returns a portal over doc.
func New(doc *node.Document) *DocumentPortal {
	return &DocumentPortal{doc: doc}
}

// Mount wraps content in a fresh layer node and attaches it.
func (p *DocumentPortal) Mount(content *node.Node) (*Root, error) {
	if content == nil {
		return nil, fmt.Errorf("portal: mount: %w", ErrNoContent)
	}
	id := "portal-" + uuid.NewString()
	layer := node.NewBox(id)
	layer.SetAttr("data-portal", "true")
	layer.AppendChild(content)
	p.doc.Body.AppendChild(layer)
	return &Root{ID: id, Node: layer, mounted: true}, nil
}

// Unmount detaches a layer. Unmounting twice returns ErrNotMounted.
func (p *DocumentPortal) Unmount(root *Root) error {
	if !root.Mounted() {
		return fmt.Errorf("portal: unmount: %w", ErrNotMounted)
	}
	root.Node.Remove()
	root.mounted = false
	return nil
}

// Layers returns the mounted layer nodes, bottom first.
func (p *DocumentPortal) Layers() []*node.Node {
	var out []*node.Node
	for _, c := range p.doc.Body.Children() {
		if IsLayer(c) {
			out = append(out, c)
		}
	}
	return out
}

// IsLayer reports whether n is a portal layer node.
func IsLayer(n *node.Node) bool {
	v, _ := n.Attr("data-portal")
	return v == "true"
}
