// Package ui hosts the node tree in a Bubble Tea program.
//
// Core pieces:
//   - Host: translates key and mouse messages into node events, then lays
//     out and paints the tree each frame
//   - Story: a demo section with its own nodes and message handling
//   - OverlayStack: open overlays, innermost last
//   - KeybindRegistry: host-level keys and the help bar
package ui
