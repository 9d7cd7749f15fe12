package main

import (
	"iter"

	"github.com/lucasb-eyer/go-colorful"
)

// BuildElement assembles the element a paint action appends to a cell.
func BuildElement(shape ShapeKind, color, pattern string, rotation int, pos Position) FillElement {
	if pos == "" {
		pos = PosTopLeft
	}
	return FillElement{
		Color:    color,
		Pattern:  pattern,
		Shape:    shape,
		Rotation: rotation,
		Position: pos,
	}
}

type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// FillPaint is what a shape is filled with. A non-empty Pattern wins over Color;
// Color is kept so a renderer can fall back while the pattern is loading.
type FillPaint struct {
	Color   string
	Pattern string
}

func (p FillPaint) HasPattern() bool { return p.Pattern != "" }

// RGB parses the solid color, falling back to mid gray.
func (p FillPaint) RGB() colorful.Color {
	c, err := colorful.Hex(p.Color)
	if err != nil {
		return colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	}
	return c
}

// DrawCommand describes one element of a cell in cell-local coordinates.
// A renderer draws Shape translated by Offset, with the whole thing rotated
// Rotation degrees clockwise about Center.
type DrawCommand struct {
	Paint    FillPaint
	Shape    []Vec
	Offset   Vec
	Rotation int
	Center   Vec
	CellSize float64
}

// Polygon returns the final outline: offset first, then rotated.
func (d DrawCommand) Polygon() []Vec {
	out := make([]Vec, len(d.Shape))
	for i, p := range d.Shape {
		out[i] = rotateAbout(p.Add(d.Offset), d.Center, d.Rotation)
	}
	return out
}

// RenderCell yields one draw command per element, bottom of the stack first.
func RenderCell(cell *Cell, cellSize float64) iter.Seq[DrawCommand] {
	elems := cell.Elements
	return func(yield func(DrawCommand) bool) {
		for _, e := range elems {
			if !yield(drawCommandFor(e, cellSize)) {
				return
			}
		}
	}
}

func drawCommandFor(e FillElement, s float64) DrawCommand {
	return DrawCommand{
		Paint:    FillPaint{Color: e.Color, Pattern: e.Pattern},
		Shape:    shapeGeometry(e.Shape, s),
		Offset:   positionOffset(e.Position, s),
		Rotation: e.Rotation,
		Center:   Vec{s / 2, s / 2},
		CellSize: s,
	}
}

func shapeGeometry(shape ShapeKind, s float64) []Vec {
	switch shape {
	case ShapeWholeSquare:
		return rect(s, s)
	case ShapeHalfSquare:
		return rect(s/2, s)
	case ShapeThirdSquare:
		return rect(s/3, s)
	case ShapeWholeTriangle:
		return []Vec{{0, 0}, {s, 0}, {0, s}}
	case ShapeHalfTriangle:
		return []Vec{{0, 0}, {s / 2, 0}, {0, s}}
	case ShapeThirdTriangle:
		return []Vec{{0, 0}, {s / 3, 0}, {0, s}}
	}
	return nil
}

func rect(w, h float64) []Vec {
	return []Vec{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

func positionOffset(pos Position, s float64) Vec {
	switch pos {
	case PosTopRight:
		return Vec{s / 2, 0}
	case PosBottomLeft:
		return Vec{0, s / 2}
	case PosBottomRight:
		return Vec{s / 2, s / 2}
	case PosCenter:
		return Vec{s / 4, s / 4}
	}
	return Vec{}
}

// rotateAbout turns p clockwise (y grows downwards) by a multiple of 90°.
func rotateAbout(p, c Vec, deg int) Vec {
	d := p.Sub(c)
	switch ((deg % 360) + 360) % 360 {
	case 90:
		d = Vec{-d.Y, d.X}
	case 180:
		d = Vec{-d.X, -d.Y}
	case 270:
		d = Vec{d.Y, -d.X}
	}
	return c.Add(d)
}

// Contains reports whether the point lies inside the final polygon.
func (d DrawCommand) Contains(p Vec) bool {
	poly := d.Polygon()
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
