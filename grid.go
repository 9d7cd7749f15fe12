package main

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimension = errors.New("invalid grid dimension")
	ErrOutOfBounds      = errors.New("coordinate out of bounds")
)

// Grid is a fixed-size rectangle of cells, addressed as cells[y][x].
type Grid struct {
	width  int
	height int
	cells  [][]Cell
}

// NewGrid builds an empty, unselected grid.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
	}
	return &Grid{width: width, height: height, cells: cells}, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Get returns the live cell at (x, y).
func (g *Grid) Get(x, y int) (*Cell, error) {
	if !g.InBounds(x, y) {
		return nil, fmt.Errorf("%w: (%d,%d) in %dx%d grid", ErrOutOfBounds, x, y, g.width, g.height)
	}
	return &g.cells[y][x], nil
}

// AppendElement pushes e on top of the cell's stack.
func (g *Grid) AppendElement(x, y int, e FillElement) error {
	return g.AppendElements(x, y, e)
}

func (g *Grid) AppendElements(x, y int, elems ...FillElement) error {
	cell, err := g.Get(x, y)
	if err != nil {
		return err
	}
	cell.Elements = append(cell.Elements, elems...)
	return nil
}

// ClearCell empties the cell's stack. The selection flag is left alone.
func (g *Grid) ClearCell(x, y int) error {
	cell, err := g.Get(x, y)
	if err != nil {
		return err
	}
	cell.Elements = nil
	return nil
}

// Painted reports how many cells hold at least one element.
func (g *Grid) Painted() int {
	n := 0
	for y := range g.cells {
		for x := range g.cells[y] {
			if !g.cells[y][x].Empty() {
				n++
			}
		}
	}
	return n
}

// clone deep-copies the grid, including selection flags.
func (g *Grid) clone() *Grid {
	out := &Grid{width: g.width, height: g.height, cells: make([][]Cell, g.height)}
	for y := range g.cells {
		out.cells[y] = make([]Cell, g.width)
		for x := range g.cells[y] {
			out.cells[y][x] = Cell{
				Elements: g.cells[y][x].elementsCopy(),
				Selected: g.cells[y][x].Selected,
			}
		}
	}
	return out
}
