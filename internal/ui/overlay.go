package ui

import "overlaykit/internal/overlay"

// Layer is an open overlay and the cleanup its story runs after closing it.
type Layer struct {
	Overlay *overlay.Overlay
	OnClose func()
}

// OverlayStack tracks open overlays in opening order (topmost last). Only
// the topmost overlay acts on Escape and outside clicks.
type OverlayStack struct {
	Stack []Layer
}

// Push adds a layer to the top of the stack.
func (s *OverlayStack) Push(l Layer) {
	s.Stack = append(s.Stack, l)
}

// Pop removes and returns the top layer.
func (s *OverlayStack) Pop() (Layer, bool) {
	if len(s.Stack) == 0 {
		return Layer{}, false
	}
	top := s.Stack[len(s.Stack)-1]
	s.Stack = s.Stack[:len(s.Stack)-1]
	return top, true
}

// Peek returns the top layer without removing it.
func (s *OverlayStack) Peek() (Layer, bool) {
	if len(s.Stack) == 0 {
		return Layer{}, false
	}
	return s.Stack[len(s.Stack)-1], true
}

// Len returns the number of layers in the stack.
func (s *OverlayStack) Len() int {
	return len(s.Stack)
}

// IsTop reports whether o is the topmost open overlay.
func (s *OverlayStack) IsTop(o *overlay.Overlay) bool {
	top, ok := s.Peek()
	return ok && o != nil && top.Overlay == o
}

// Contains reports whether o is open.
func (s *OverlayStack) Contains(o *overlay.Overlay) bool {
	for _, l := range s.Stack {
		if l.Overlay == o {
			return true
		}
	}
	return false
}
