package main

// ShapeKind names one of the fixed fill primitives a cell element can draw.
type ShapeKind string

const (
	ShapeWholeSquare   ShapeKind = "whole-square"
	ShapeHalfSquare    ShapeKind = "half-square"
	ShapeThirdSquare   ShapeKind = "third-square"
	ShapeWholeTriangle ShapeKind = "whole-triangle"
	ShapeHalfTriangle  ShapeKind = "half-triangle"
	ShapeThirdTriangle ShapeKind = "third-triangle"
)

var shapeKinds = []ShapeKind{
	ShapeWholeSquare,
	ShapeHalfSquare,
	ShapeThirdSquare,
	ShapeWholeTriangle,
	ShapeHalfTriangle,
	ShapeThirdTriangle,
}

func (s ShapeKind) Valid() bool {
	for _, k := range shapeKinds {
		if s == k {
			return true
		}
	}
	return false
}

func (s ShapeKind) isTriangle() bool {
	return s == ShapeWholeTriangle || s == ShapeHalfTriangle || s == ShapeThirdTriangle
}

// Position is the sub-cell anchor a shape is offset to before drawing.
type Position string

const (
	PosTopLeft     Position = "top-left"
	PosTopRight    Position = "top-right"
	PosBottomLeft  Position = "bottom-left"
	PosBottomRight Position = "bottom-right"
	PosCenter      Position = "center"
)

var positions = []Position{PosTopLeft, PosTopRight, PosBottomLeft, PosBottomRight, PosCenter}

func (p Position) Valid() bool {
	for _, q := range positions {
		if p == q {
			return true
		}
	}
	return false
}

func validRotation(deg int) bool {
	return deg == 0 || deg == 90 || deg == 180 || deg == 270
}

// FillElement is one painted layer of a cell. Values are never mutated in
// place; transforms build new elements.
type FillElement struct {
	Color    string    `json:"color,omitempty"`
	Pattern  string    `json:"pattern,omitempty"`
	Shape    ShapeKind `json:"fillType"`
	Rotation int       `json:"rotation"`
	Position Position  `json:"position"`
}

// Rotated returns a copy of e turned a further deg degrees clockwise.
func (e FillElement) Rotated(deg int) FillElement {
	r := (e.Rotation + deg) % 360
	if r < 0 {
		r += 360
	}
	e.Rotation = r
	return e
}

// Cell holds the paint stack for one grid square. Elements are in stacking
// order, last on top.
type Cell struct {
	Elements []FillElement `json:"elements"`
	Selected bool          `json:"selected"`
}

func (c *Cell) Empty() bool {
	return len(c.Elements) == 0
}

// elementsCopy returns a slice that shares nothing with the cell.
func (c *Cell) elementsCopy() []FillElement {
	if len(c.Elements) == 0 {
		return nil
	}
	out := make([]FillElement, len(c.Elements))
	copy(out, c.Elements)
	return out
}

type point struct {
	X, Y int
}
