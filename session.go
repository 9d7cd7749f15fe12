package main

import (
	"fmt"
	"log"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// Tool is what a primary action on a cell does: paint a shape, clear the
// cell, or drive the selection.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolClearCell Tool = "clear-cell"
)

func shapeTool(s ShapeKind) Tool { return Tool(s) }

func (t Tool) Shape() (ShapeKind, bool) {
	s := ShapeKind(t)
	return s, s.Valid()
}

func (t Tool) Valid() bool {
	_, ok := t.Shape()
	return ok || t == ToolSelect || t == ToolClearCell
}

// ToolSettings is the brush state carried between paint actions.
type ToolSettings struct {
	Tool       Tool
	Color      string
	Pattern    string
	Rotation   int
	Position   Position
	LastTool   Tool
	ColorIndex int
}

func defaultToolSettings() ToolSettings {
	return ToolSettings{
		Tool:       shapeTool(ShapeWholeSquare),
		Color:      defaultColor,
		Rotation:   0,
		Position:   PosTopLeft,
		LastTool:   shapeTool(ShapeWholeSquare),
		ColorIndex: 0,
	}
}

// Element builds the element the current settings would paint.
func (t ToolSettings) Element() (FillElement, bool) {
	shape, ok := t.Tool.Shape()
	if !ok {
		return FillElement{}, false
	}
	return BuildElement(shape, t.Color, t.Pattern, t.Rotation, t.Position), true
}

// Session is one editable design: its grid, the selection over it, the
// clipboard and the brush.
type Session struct {
	grid      *Grid
	sel       *Selection
	clipboard *Snapshot
	pasting   bool
	version   string

	Settings ToolSettings
}

func NewSession(width, height int) (*Session, error) {
	g, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	return &Session{
		grid:     g,
		sel:      newSelection(g),
		version:  documentVersion,
		Settings: defaultToolSettings(),
	}, nil
}

func (s *Session) Grid() *Grid { return s.grid }
func (s *Session) Selection() *Selection { return s.sel }
func (s *Session) Clipboard() *Snapshot { return s.clipboard }
func (s *Session) Pasting() bool { return s.pasting }
func (s *Session) HasSelection() bool { return s.sel.Len() > 0 }
func (s *Session) replaceGrid(g *Grid) { s.grid, s.sel = g, newSelection(g) }
func (s *Session) Dimensions() (int, int) { return s.grid.Width(), s.grid.Height() }

// Resize swaps in a fresh grid. Nothing is carried over.
func (s *Session) Resize(width, height int) error {
	g, err := NewGrid(width, height)
	if err != nil {
		return err
	}
	s.replaceGrid(g)
	log.Printf("grid resized to %dx%d", width, height)
	return nil
}

// ClearGrid empties every cell and keeps the dimensions.
func (s *Session) ClearGrid() error {
	g, err := NewGrid(s.grid.Width(), s.grid.Height())
	if err != nil {
		return err
	}
	s.replaceGrid(g)
	return nil
}

// Paint applies the current tool at c. Out of bounds is ignored.
func (s *Session) Paint(c point) bool {
	if !s.grid.InBounds(c.X, c.Y) {
		return false
	}
	if s.Settings.Tool == ToolClearCell {
		return s.ClearCellAt(c)
	}
	e, ok := s.Settings.Element()
	if !ok {
		return false
	}
	return s.grid.AppendElement(c.X, c.Y, e) == nil
}

func (s *Session) ClearCellAt(c point) bool {
	return s.grid.ClearCell(c.X, c.Y) == nil
}

func (s *Session) SelectStart(c point) { s.sel.Start(s.grid, c) }
func (s *Session) SelectExtend(c point) { s.sel.Extend(s.grid, c) }
func (s *Session) SelectEnd() { s.sel.End(s.grid) }
func (s *Session) SelectSingle(c point) { s.sel.SelectSingle(s.grid, c) }
func (s *Session) ClearSelection() { s.sel.Clear(s.grid) }

// Copy replaces the clipboard with the current selection.
func (s *Session) Copy() bool {
	snap := s.sel.Copy(s.grid)
	if snap == nil {
		return false
	}
	s.clipboard = snap
	return true
}

func (s *Session) RotateSelection() bool {
	return s.sel.Rotate(s.grid)
}

// StartPaste arms a single paste. It needs something on the clipboard.
func (s *Session) StartPaste() bool {
	if s.clipboard == nil {
		return false
	}
	s.pasting = true
	return true
}

func (s *Session) CancelPaste() { s.pasting = false }

// PasteAt places the clipboard with its top-left at c and disarms pasting.
// The selection is dropped afterwards.
func (s *Session) PasteAt(c point) int {
	if !s.pasting || s.clipboard == nil {
		return 0
	}
	n := s.clipboard.PasteAt(s.grid, c)
	s.pasting = false
	s.sel.Clear(s.grid)
	return n
}

func (s *Session) SetTool(t Tool) error {
	if !t.Valid() {
		return fmt.Errorf("unknown tool %q", t)
	}
	s.Settings.Tool = t
	if t != ToolSelect {
		s.Settings.LastTool = t
	}
	return nil
}

// ToggleSelectMode switches into the select tool, or back to the last
// painting tool.
func (s *Session) ToggleSelectMode() {
	if s.Settings.Tool == ToolSelect {
		s.Settings.Tool = s.Settings.LastTool
		return
	}
	s.Settings.LastTool = s.Settings.Tool
	s.Settings.Tool = ToolSelect
}

func (s *Session) CycleRotation() {
	s.Settings.Rotation = (s.Settings.Rotation + 90) % 360
}

var toolCycle = []Tool{
	shapeTool(ShapeWholeSquare),
	shapeTool(ShapeHalfSquare),
	shapeTool(ShapeThirdSquare),
	shapeTool(ShapeWholeTriangle),
	shapeTool(ShapeHalfTriangle),
	shapeTool(ShapeThirdTriangle),
	ToolClearCell,
}

// CycleShape steps through the shapes and the clear tool. From the select
// tool it starts over at the first shape.
func (s *Session) CycleShape() {
	i := slices.Index(toolCycle, s.Settings.Tool)
	next := toolCycle[(i+1)%len(toolCycle)]
	s.Settings.Tool = next
	s.Settings.LastTool = next
}

func (s *Session) CycleColor() {
	s.Settings.ColorIndex = (s.Settings.ColorIndex + 1) % len(colorPalette)
	if s.Settings.ColorIndex < 0 {
		s.Settings.ColorIndex = 0
	}
	s.Settings.Color = colorPalette[s.Settings.ColorIndex]
}

// SetColor takes a #rrggbb value. The palette index follows it, or is -1
// when the color is not in the palette.
func (s *Session) SetColor(hex string) error {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", hex, err)
	}
	s.Settings.Color = c.Hex()
	s.Settings.ColorIndex = slices.Index(colorPalette, s.Settings.Color)
	return nil
}

func (s *Session) SetPattern(ref string) { s.Settings.Pattern = ref }
func (s *Session) SetPosition(p Position) { s.Settings.Position = p }
func (s *Session) SetRotation(deg int) error {
	if !validRotation(deg) {
		return fmt.Errorf("rotation must be 0, 90, 180 or 270, got %d", deg)
	}
	s.Settings.Rotation = deg
	return nil
}

// Command is one semantic input event from the front end.
type Command interface {
	command()
}

type (
	SelectStart     struct{ At point }
	SelectExtend    struct{ At point }
	SelectEnd       struct{}
	SelectSingle    struct{ At point }
	Paint           struct{ At point }
	ClearCellAt     struct{ At point }
	Copy            struct{}
	RotateSelection struct{}
	StartPaste      struct{}
	PasteAt         struct{ At point }
	ClearSelection  struct{}
	ResizeGrid      struct{ Width, Height int }
	ClearGrid       struct{}
)

func (SelectStart) command()     {}
func (SelectExtend) command()    {}
func (SelectEnd) command()       {}
func (SelectSingle) command()    {}
func (Paint) command()           {}
func (ClearCellAt) command()     {}
func (Copy) command()            {}
func (RotateSelection) command() {}
func (StartPaste) command()      {}
func (PasteAt) command()         {}
func (ClearSelection) command()  {}
func (ResizeGrid) command()      {}
func (ClearGrid) command()       {}

// Apply runs cmd to completion and reports whether cell content changed.
func (s *Session) Apply(cmd Command) (bool, error) {
	switch c := cmd.(type) {
	case SelectStart:
		s.SelectStart(c.At)
	case SelectExtend:
		s.SelectExtend(c.At)
	case SelectEnd:
		s.SelectEnd()
	case SelectSingle:
		s.SelectSingle(c.At)
	case Paint:
		return s.Paint(c.At), nil
	case ClearCellAt:
		return s.ClearCellAt(c.At), nil
	case Copy:
		s.Copy()
	case RotateSelection:
		return s.RotateSelection(), nil
	case StartPaste:
		s.StartPaste()
	case PasteAt:
		return s.PasteAt(c.At) > 0, nil
	case ClearSelection:
		s.ClearSelection()
	case ResizeGrid:
		if err := s.Resize(c.Width, c.Height); err != nil {
			return false, err
		}
		return true, nil
	case ClearGrid:
		if err := s.ClearGrid(); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %T", cmd)
	}
	return false, nil
}
