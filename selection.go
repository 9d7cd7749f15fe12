package main

import (
	"log"
	"math"
)

type SelectState int

const (
	SelectIdle SelectState = iota
	SelectSelecting
	SelectFrozen
)

func (s SelectState) String() string {
	switch s {
	case SelectSelecting:
		return "selecting"
	case SelectFrozen:
		return "frozen"
	default:
		return "idle"
	}
}

// Bounds is an inclusive rectangle of cell coordinates.
type Bounds struct {
	MinX int `json:"minX"`
	MaxX int `json:"maxX"`
	MinY int `json:"minY"`
	MaxY int `json:"maxY"`
}

func (b Bounds) Width() int  { return b.MaxX - b.MinX + 1 }
func (b Bounds) Height() int { return b.MaxY - b.MinY + 1 }

// Region is the rectangle spanned by a selection gesture. Start and End are
// unordered corners.
type Region struct {
	Start point
	End   point
}

func (r Region) Normalized() Bounds {
	return Bounds{
		MinX: min(r.Start.X, r.End.X),
		MaxX: max(r.Start.X, r.End.X),
		MinY: min(r.Start.Y, r.End.Y),
		MaxY: max(r.Start.Y, r.End.Y),
	}
}

// Selection tracks the active region of one grid and mirrors its membership
// into the cells' Selected flags. Membership is a bitmap indexed y*width+x.
type Selection struct {
	state   SelectState
	region  *Region
	members []bool
	count   int
	width   int
}

func newSelection(g *Grid) *Selection {
	return &Selection{
		members: make([]bool, g.Width()*g.Height()),
		width:   g.Width(),
	}
}

func (s *Selection) State() SelectState { return s.state }
func (s *Selection) Len() int           { return s.count }

// Region returns the rectangle being or last dragged. It is nil after a
// rotate, whose footprint need not be rectangular.
func (s *Selection) Region() *Region {
	if s.region == nil {
		return nil
	}
	r := *s.region
	return &r
}

func (s *Selection) Contains(x, y int) bool {
	if x < 0 || y < 0 || x >= s.width {
		return false
	}
	i := y*s.width + x
	return i < len(s.members) && s.members[i]
}

// Members lists member coordinates in row-major order.
func (s *Selection) Members() []point {
	out := make([]point, 0, s.count)
	for i, ok := range s.members {
		if ok {
			out = append(out, point{X: i % s.width, Y: i / s.width})
		}
	}
	return out
}

func (s *Selection) mark(g *Grid, x, y int) {
	i := y*s.width + x
	if !s.members[i] {
		s.members[i] = true
		s.count++
	}
	g.cells[y][x].Selected = true
}

func (s *Selection) unmarkAll(g *Grid) {
	for i, ok := range s.members {
		if !ok {
			continue
		}
		s.members[i] = false
		x, y := i%s.width, i/s.width
		if g.InBounds(x, y) {
			g.cells[y][x].Selected = false
		}
	}
	s.count = 0
}

func (s *Selection) recompute(g *Grid) {
	s.unmarkAll(g)
	if s.region == nil {
		return
	}
	b := s.region.Normalized()
	for y := max(b.MinY, 0); y <= min(b.MaxY, g.Height()-1); y++ {
		for x := max(b.MinX, 0); x <= min(b.MaxX, g.Width()-1); x++ {
			s.mark(g, x, y)
		}
	}
}

// Start begins a drag at c, dropping any previous selection.
func (s *Selection) Start(g *Grid, c point) {
	s.Clear(g)
	s.state = SelectSelecting
	s.region = &Region{Start: c, End: c}
	s.recompute(g)
}

// Extend moves the dragging corner. It does nothing unless a drag is active.
func (s *Selection) Extend(g *Grid, c point) {
	if s.state != SelectSelecting {
		return
	}
	s.region.End = c
	s.recompute(g)
}

// End freezes the dragged region. A drag that never touched the grid leaves
// nothing selected.
func (s *Selection) End(g *Grid) {
	if s.state != SelectSelecting {
		return
	}
	s.recompute(g)
	if s.count == 0 {
		s.Clear(g)
		return
	}
	s.state = SelectFrozen
}

// SelectSingle freezes a one-cell region at c without a drag.
func (s *Selection) SelectSingle(g *Grid, c point) {
	if !g.InBounds(c.X, c.Y) {
		return
	}
	s.Clear(g)
	s.region = &Region{Start: c, End: c}
	s.mark(g, c.X, c.Y)
	s.state = SelectFrozen
}

func (s *Selection) Clear(g *Grid) {
	s.unmarkAll(g)
	s.region = nil
	s.state = SelectIdle
}

// Snapshot is a detached copy of selected cell contents.
type Snapshot struct {
	Cells  []SnapshotCell `json:"cells"`
	Bounds Bounds         `json:"bounds"`
}

type SnapshotCell struct {
	X        int           `json:"x"`
	Y        int           `json:"y"`
	Elements []FillElement `json:"elements"`
}

func (s *Selection) snapshot(g *Grid) *Snapshot {
	snap := &Snapshot{
		Bounds: Bounds{MinX: math.MaxInt, MaxX: math.MinInt, MinY: math.MaxInt, MaxY: math.MinInt},
	}
	for _, p := range s.Members() {
		snap.Cells = append(snap.Cells, SnapshotCell{
			X:        p.X,
			Y:        p.Y,
			Elements: g.cells[p.Y][p.X].elementsCopy(),
		})
		snap.Bounds.MinX = min(snap.Bounds.MinX, p.X)
		snap.Bounds.MaxX = max(snap.Bounds.MaxX, p.X)
		snap.Bounds.MinY = min(snap.Bounds.MinY, p.Y)
		snap.Bounds.MaxY = max(snap.Bounds.MaxY, p.Y)
	}
	return snap
}

// Copy snapshots the current membership. It returns nil when nothing is
// selected.
func (s *Selection) Copy(g *Grid) *Snapshot {
	if s.count == 0 {
		return nil
	}
	snap := s.snapshot(g)
	log.Printf("copied %d cells, bounds %+v", len(snap.Cells), snap.Bounds)
	return snap
}

// Rotate turns the selected cells 90° clockwise about the centre of their
// bounding box. Both the cell positions and every element's own rotation
// advance. The original footprint is erased first, and cells whose new
// position falls outside the grid are lost.
func (s *Selection) Rotate(g *Grid) bool {
	if s.count == 0 {
		return false
	}
	snap := s.snapshot(g)
	for _, c := range snap.Cells {
		g.cells[c.Y][c.X].Elements = nil
	}
	s.Clear(g)

	cx := float64(snap.Bounds.MinX+snap.Bounds.MaxX) / 2
	cy := float64(snap.Bounds.MinY+snap.Bounds.MaxY) / 2

	dropped := 0
	for _, c := range snap.Cells {
		relX := float64(c.X) - cx
		relY := float64(c.Y) - cy
		nx := roundHalfUp(cx - relY)
		ny := roundHalfUp(cy + relX)
		if !g.InBounds(nx, ny) {
			dropped++
			continue
		}
		for _, e := range c.Elements {
			g.cells[ny][nx].Elements = append(g.cells[ny][nx].Elements, e.Rotated(90))
		}
		s.mark(g, nx, ny)
	}
	if s.count > 0 {
		s.state = SelectFrozen
	}
	log.Printf("rotated %d cells about (%.1f,%.1f), %d dropped", len(snap.Cells), cx, cy, dropped)
	return true
}

// PasteAt anchors the snapshot's top-left corner at target and appends each
// cell's elements on top of whatever the destination already holds. It
// returns the number of cells written.
func (snap *Snapshot) PasteAt(g *Grid, target point) int {
	dx := target.X - snap.Bounds.MinX
	dy := target.Y - snap.Bounds.MinY
	n := 0
	for _, c := range snap.Cells {
		nx, ny := c.X+dx, c.Y+dy
		if !g.InBounds(nx, ny) {
			continue
		}
		g.cells[ny][nx].Elements = append(g.cells[ny][nx].Elements, c.Elements...)
		n++
	}
	log.Printf("pasted %d of %d cells at (%d,%d)", n, len(snap.Cells), target.X, target.Y)
	return n
}

// roundHalfUp rounds .5 towards positive infinity, so -0.5 lands on 0.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
