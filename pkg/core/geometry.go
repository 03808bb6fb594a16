package core

import "fmt"

// Bounds represents element position and size
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains checks if a point is within the bounds
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// BottomRight returns the corner opposite to (X, Y).
func (b Bounds) BottomRight() (int, int) {
	return b.X + b.Width, b.Y + b.Height
}

// String formats bounds like "[10,20 100x50]".
func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", b.X, b.Y, b.Width, b.Height)
}

// Size is a width/height pair, used for viewports.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Bounds returns the size anchored at the origin.
func (s Size) Bounds() Bounds {
	return Bounds{Width: s.Width, Height: s.Height}
}

// PartiallyInside reports whether the top-left OR the bottom-right corner of b
// lies inside the viewport.
func (s Size) PartiallyInside(b Bounds) bool {
	screen := s.Bounds()
	ex, ey := b.BottomRight()
	return screen.Contains(b.X, b.Y) || screen.Contains(ex, ey)
}

// FullyInside reports whether both the top-left AND the bottom-right corner of
// b lie inside the viewport.
func (s Size) FullyInside(b Bounds) bool {
	screen := s.Bounds()
	ex, ey := b.BottomRight()
	return screen.Contains(b.X, b.Y) && screen.Contains(ex, ey)
}
