package components

import "gonum.org/v1/gonum/spatial/r2"

// Boundary is the axis-aligned box particles are kept inside.
// Screen convention: y grows downward, so Top < Bottom.
type Boundary struct {
	Left, Right, Top, Bottom float64
}

// Width returns the horizontal extent of the box.
func (b Boundary) Width() float64 { return b.Right - b.Left }

// Height returns the vertical extent of the box.
func (b Boundary) Height() float64 { return b.Bottom - b.Top }

// Center returns the middle of the box.
func (b Boundary) Center() r2.Vec {
	return r2.Vec{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// Valid reports whether the box has positive area.
func (b Boundary) Valid() bool {
	return b.Left < b.Right && b.Top < b.Bottom
}

// Emitter is the disc new particles are spawned in.
type Emitter struct {
	Position r2.Vec
	Radius   float64
}
