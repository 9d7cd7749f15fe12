package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"
)

var ErrInvalidDocument = errors.New("invalid design document")

// Document is the persisted form of a session.
type Document struct {
	GridWidth  int      `json:"gridWidth"`
	GridHeight int      `json:"gridHeight"`
	Grid       [][]Cell `json:"grid"`

	Tool       Tool     `json:"currentTool,omitempty"`
	Color      string   `json:"currentColor,omitempty"`
	Pattern    string   `json:"currentPattern,omitempty"`
	Rotation   *int     `json:"currentRotation,omitempty"`
	Position   Position `json:"currentPosition,omitempty"`
	LastTool   Tool     `json:"lastTool,omitempty"`
	ColorIndex *int     `json:"currentColorIndex,omitempty"`

	Timestamp int64  `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// Serialize captures the grid and brush. Selection flags are written as
// false; they are not part of a design. The version tag of a loaded document
// is written back as it was, even when it was absent.
func (s *Session) Serialize() Document {
	g := s.grid.clone()
	for y := range g.cells {
		for x := range g.cells[y] {
			g.cells[y][x].Selected = false
			if g.cells[y][x].Elements == nil {
				g.cells[y][x].Elements = []FillElement{}
			}
		}
	}
	rot, idx := s.Settings.Rotation, s.Settings.ColorIndex
	return Document{
		GridWidth:  g.width,
		GridHeight: g.height,
		Grid:       g.cells,
		Tool:       s.Settings.Tool,
		Color:      s.Settings.Color,
		Pattern:    s.Settings.Pattern,
		Rotation:   &rot,
		Position:   s.Settings.Position,
		LastTool:   s.Settings.LastTool,
		ColorIndex: &idx,
		Timestamp:  time.Now().UnixMilli(),
		Version:    s.version,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDocument, fmt.Sprintf(format, args...))
}

// Decode validates the document and builds a grid from it. Settings that
// the document leaves out are taken from base.
func (d *Document) Decode(base ToolSettings) (*Grid, ToolSettings, error) {
	if d.Grid == nil {
		return nil, base, invalid("missing grid")
	}
	if d.GridWidth <= 0 || d.GridHeight <= 0 {
		return nil, base, invalid("bad dimensions %dx%d", d.GridWidth, d.GridHeight)
	}
	if len(d.Grid) != d.GridHeight {
		return nil, base, invalid("grid has %d rows, want %d", len(d.Grid), d.GridHeight)
	}
	// Rows are checked before allocating so the grid is bounded by the input.
	for y, row := range d.Grid {
		if len(row) != d.GridWidth {
			return nil, base, invalid("row %d has %d cells, want %d", y, len(row), d.GridWidth)
		}
	}
	g, err := NewGrid(d.GridWidth, d.GridHeight)
	if err != nil {
		return nil, base, invalid("%v", err)
	}
	for y, row := range d.Grid {
		for x, cell := range row {
			for i, e := range cell.Elements {
				if !e.Shape.Valid() {
					return nil, base, invalid("cell (%d,%d) element %d: unknown shape %q", x, y, i, e.Shape)
				}
				if !validRotation(e.Rotation) {
					return nil, base, invalid("cell (%d,%d) element %d: rotation %d", x, y, i, e.Rotation)
				}
				if e.Position == "" {
					e.Position = PosTopLeft
				} else if !e.Position.Valid() {
					return nil, base, invalid("cell (%d,%d) element %d: position %q", x, y, i, e.Position)
				}
				g.cells[y][x].Elements = append(g.cells[y][x].Elements, e)
			}
		}
	}

	settings := base
	if d.Tool != "" && d.Tool.Valid() {
		settings.Tool = d.Tool
	}
	if d.Color != "" {
		settings.Color = d.Color
	}
	if d.Pattern != "" {
		settings.Pattern = d.Pattern
	}
	if d.Rotation != nil && validRotation(*d.Rotation) {
		settings.Rotation = *d.Rotation
	}
	if d.Position.Valid() {
		settings.Position = d.Position
	}
	if d.LastTool != "" && d.LastTool.Valid() && d.LastTool != ToolSelect {
		settings.LastTool = d.LastTool
	}
	if d.ColorIndex != nil {
		settings.ColorIndex = *d.ColorIndex
	}
	return g, settings, nil
}

// ParseDocument decodes JSON bytes into a document without validating it.
func ParseDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &d, nil
}

func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Load replaces the session's grid and brush with the document's. On error
// the session is left as it was. The clipboard is kept.
func (s *Session) Load(d *Document) error {
	g, settings, err := d.Decode(s.Settings)
	if err != nil {
		return err
	}
	s.replaceGrid(g)
	s.Settings = settings
	s.pasting = false
	s.version = d.Version
	return nil
}

func (s *Session) LoadBytes(data []byte) error {
	d, err := ParseDocument(data)
	if err != nil {
		return err
	}
	return s.Load(d)
}

func (s *Session) MarshalDesign() ([]byte, error) {
	d := s.Serialize()
	return d.Marshal()
}

func (s *Session) SaveToFile(filename string) error {
	data, err := s.MarshalDesign()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return err
	}
	log.Printf("design saved to %s", filename)
	return nil
}

func (s *Session) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if err := s.LoadBytes(data); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	log.Printf("design loaded from %s", filename)
	return nil
}
