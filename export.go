package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var gridLineColor = color.RGBA{0xe2, 0xe8, 0xf0, 0xff}

type ExportOptions struct {
	CellSize float64
	Labels   bool
	Patterns *PatternCache
}

// RenderImage rasterises the grid. Each cell is drawn from its RenderCell
// commands, bottom element first.
func RenderImage(g *Grid, opts ExportOptions) (image.Image, error) {
	cs := opts.CellSize
	if cs <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %v", cs)
	}
	margin := 0.0
	if opts.Labels {
		margin = cs
	}

	imageWidth := int(margin + float64(g.Width())*cs)
	imageHeight := int(margin + float64(g.Height())*cs)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()

	if opts.Labels {
		if err := drawLabels(dc, g, cs); err != nil {
			return nil, err
		}
	}

	scaled := make(map[string]image.Image)
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			cell := &g.cells[y][x]
			ox := margin + float64(x)*cs
			oy := margin + float64(y)*cs
			for cmd := range RenderCell(cell, cs) {
				drawCommandPNG(dc, cmd, ox, oy, opts.Patterns, scaled)
			}
		}
	}

	dc.SetColor(gridLineColor)
	dc.SetLineWidth(1)
	for x := 0; x <= g.Width(); x++ {
		dc.DrawLine(margin+float64(x)*cs, margin, margin+float64(x)*cs, margin+float64(g.Height())*cs)
		dc.Stroke()
	}
	for y := 0; y <= g.Height(); y++ {
		dc.DrawLine(margin, margin+float64(y)*cs, margin+float64(g.Width())*cs, margin+float64(y)*cs)
		dc.Stroke()
	}

	return dc.Image(), nil
}

func drawCommandPNG(dc *gg.Context, cmd DrawCommand, ox, oy float64, patterns *PatternCache, scaled map[string]image.Image) {
	if len(cmd.Shape) == 0 {
		return
	}
	dc.Push()
	defer dc.Pop()

	dc.Translate(ox, oy)
	if cmd.Rotation != 0 {
		dc.RotateAbout(gg.Radians(float64(cmd.Rotation)), cmd.Center.X, cmd.Center.Y)
	}
	for i, p := range cmd.Shape {
		p = p.Add(cmd.Offset)
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
		} else {
			dc.LineTo(p.X, p.Y)
		}
	}
	dc.ClosePath()

	if img := patternTile(cmd, patterns, scaled); img != nil {
		dc.SetFillStyle(gg.NewSurfacePattern(img, gg.RepeatBoth))
	} else {
		dc.SetColor(cmd.Paint.RGB())
	}
	dc.Fill()
}

// patternTile returns the pattern scaled to one cell, loading it on first
// use. A pattern that cannot be loaded falls back to the solid color.
func patternTile(cmd DrawCommand, patterns *PatternCache, scaled map[string]image.Image) image.Image {
	if !cmd.Paint.HasPattern() || patterns == nil {
		return nil
	}
	ref := cmd.Paint.Pattern
	if img, ok := scaled[ref]; ok {
		return img
	}
	src, err := patterns.Load(ref)
	if err != nil || src == nil {
		scaled[ref] = nil
		return nil
	}
	size := max(1, int(cmd.CellSize))
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	scaled[ref] = dst
	return dst
}

func drawLabels(dc *gg.Context, g *Grid, cs float64) error {
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    max(6, cs*0.4),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)
	dc.SetColor(color.Black)
	for x := 0; x < g.Width(); x++ {
		dc.DrawStringAnchored(strconv.Itoa(x), cs+float64(x)*cs+cs/2, cs/2, 0.5, 0.5)
	}
	for y := 0; y < g.Height(); y++ {
		dc.DrawStringAnchored(strconv.Itoa(y), cs/2, cs+float64(y)*cs+cs/2, 0.5, 0.5)
	}
	return nil
}

// ExportPNG writes the session's grid as a PNG image.
func (s *Session) ExportPNG(filename string, opts ExportOptions) error {
	if s.grid.Painted() == 0 {
		return fmt.Errorf("nothing to export")
	}
	img, err := RenderImage(s.grid, opts)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(filename, img); err != nil {
		return err
	}
	log.Printf("exported %dx%d grid to %s", s.grid.Width(), s.grid.Height(), filename)
	return nil
}

// ExportVisualTXT writes one glyph per cell, the top element of each stack.
func (s *Session) ExportVisualTXT(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range s.textLines() {
		fmt.Fprintln(file, line)
	}
	return nil
}

func (s *Session) textLines() []string {
	lines := make([]string, 0, s.grid.Height())
	for y := 0; y < s.grid.Height(); y++ {
		var b strings.Builder
		for x := 0; x < s.grid.Width(); x++ {
			b.WriteRune(cellGlyph(&s.grid.cells[y][x]))
		}
		lines = append(lines, b.String())
	}
	return lines
}

func cellGlyph(c *Cell) rune {
	if c.Empty() {
		return '·'
	}
	top := c.Elements[len(c.Elements)-1]
	return shapeGlyph(top.Shape, top.Rotation)
}

// shapeGlyph picks a character that suggests the shape's orientation.
func shapeGlyph(shape ShapeKind, rotation int) rune {
	r := ((rotation % 360) + 360) % 360 / 90
	switch shape {
	case ShapeWholeSquare:
		return '█'
	case ShapeHalfSquare, ShapeThirdSquare:
		return []rune{'▌', '▀', '▐', '▄'}[r]
	case ShapeWholeTriangle, ShapeHalfTriangle, ShapeThirdTriangle:
		return []rune{'◤', '◥', '◢', '◣'}[r]
	}
	return '?'
}
