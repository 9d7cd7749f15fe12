package main

import (
	"math"
	"testing"
)

func bbox(poly []Vec) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range poly {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuildElement(t *testing.T) {
	e := BuildElement(ShapeHalfTriangle, "#00ff00", "tile.png", 270, PosCenter)
	want := FillElement{Color: "#00ff00", Pattern: "tile.png", Shape: ShapeHalfTriangle, Rotation: 270, Position: PosCenter}
	if e != want {
		t.Fatalf("expected %+v, got %+v", want, e)
	}
	if BuildElement(ShapeWholeSquare, "", "", 0, "").Position != PosTopLeft {
		t.Fatal("empty position should default to top-left")
	}
}

func TestShapeGeometry(t *testing.T) {
	const s = 30
	tests := []struct {
		shape    ShapeKind
		w, h     float64
		vertices int
	}{
		{ShapeWholeSquare, 30, 30, 4},
		{ShapeHalfSquare, 15, 30, 4},
		{ShapeThirdSquare, 10, 30, 4},
		{ShapeWholeTriangle, 30, 30, 3},
		{ShapeHalfTriangle, 15, 30, 3},
		{ShapeThirdTriangle, 10, 30, 3},
	}
	for _, tc := range tests {
		poly := shapeGeometry(tc.shape, s)
		if len(poly) != tc.vertices {
			t.Fatalf("%s: expected %d vertices, got %d", tc.shape, tc.vertices, len(poly))
		}
		minX, minY, maxX, maxY := bbox(poly)
		if !near(minX, 0) || !near(minY, 0) || !near(maxX, tc.w) || !near(maxY, tc.h) {
			t.Fatalf("%s: expected 0,0-%v,%v, got %v,%v-%v,%v", tc.shape, tc.w, tc.h, minX, minY, maxX, maxY)
		}
	}
	if shapeGeometry("hexagon", s) != nil {
		t.Fatal("unknown shapes have no geometry")
	}
}

func TestPositionOffset(t *testing.T) {
	const s = 40
	tests := map[Position]Vec{
		PosTopLeft:     {0, 0},
		PosTopRight:    {20, 0},
		PosBottomLeft:  {0, 20},
		PosBottomRight: {20, 20},
		PosCenter:      {10, 10},
	}
	for pos, want := range tests {
		if got := positionOffset(pos, s); got != want {
			t.Fatalf("%s: expected %v, got %v", pos, want, got)
		}
	}
}

func TestRotateAbout(t *testing.T) {
	c := Vec{15, 15}
	p := Vec{0, 0}
	tests := map[int]Vec{
		0:   {0, 0},
		90:  {30, 0},
		180: {30, 30},
		270: {0, 30},
		360: {0, 0},
		-90: {0, 30},
	}
	for deg, want := range tests {
		if got := rotateAbout(p, c, deg); got != want {
			t.Fatalf("%d°: expected %v, got %v", deg, want, got)
		}
	}
}

func TestHalfSquareRotatedCoversTopHalf(t *testing.T) {
	cell := &Cell{Elements: []FillElement{BuildElement(ShapeHalfSquare, "red", "", 90, PosTopLeft)}}
	for cmd := range RenderCell(cell, 30) {
		minX, minY, maxX, maxY := bbox(cmd.Polygon())
		if !near(minX, 0) || !near(minY, 0) || !near(maxX, 30) || !near(maxY, 15) {
			t.Fatalf("expected top half, got %v,%v-%v,%v", minX, minY, maxX, maxY)
		}
		if !cmd.Contains(Vec{15, 5}) || cmd.Contains(Vec{15, 25}) {
			t.Fatal("containment does not match the top half")
		}
	}
}

func TestWholeSquareIsRotationInvariant(t *testing.T) {
	for _, deg := range []int{0, 90, 180, 270} {
		cmd := drawCommandFor(BuildElement(ShapeWholeSquare, "red", "", deg, PosTopLeft), 12)
		minX, minY, maxX, maxY := bbox(cmd.Polygon())
		if !near(minX, 0) || !near(minY, 0) || !near(maxX, 12) || !near(maxY, 12) {
			t.Fatalf("%d°: square moved to %v,%v-%v,%v", deg, minX, minY, maxX, maxY)
		}
	}
}

func TestOffsetAppliesBeforeRotation(t *testing.T) {
	// A third square pushed right by half a cell, then turned 180° about the
	// centre, ends up against the left edge.
	cmd := drawCommandFor(BuildElement(ShapeThirdSquare, "red", "", 180, PosTopRight), 30)
	minX, _, maxX, _ := bbox(cmd.Polygon())
	if !near(minX, 5) || !near(maxX, 15) {
		t.Fatalf("expected x range 5-15, got %v-%v", minX, maxX)
	}
}

func TestTriangleContains(t *testing.T) {
	cmd := drawCommandFor(BuildElement(ShapeWholeTriangle, "red", "", 0, PosTopLeft), 1)
	if !cmd.Contains(Vec{0.2, 0.2}) {
		t.Fatal("expected the top-left corner inside")
	}
	if cmd.Contains(Vec{0.8, 0.8}) {
		t.Fatal("expected the bottom-right corner outside")
	}
	cmd = drawCommandFor(BuildElement(ShapeWholeTriangle, "red", "", 180, PosTopLeft), 1)
	if cmd.Contains(Vec{0.2, 0.2}) || !cmd.Contains(Vec{0.8, 0.8}) {
		t.Fatal("a half turn should move the triangle to the bottom-right")
	}
}

func TestRenderCellOrderAndPaint(t *testing.T) {
	cell := &Cell{Elements: []FillElement{
		BuildElement(ShapeWholeSquare, "#111111", "", 0, PosTopLeft),
		BuildElement(ShapeHalfSquare, "#222222", "stripes.png", 0, PosTopLeft),
		BuildElement(ShapeThirdSquare, "#333333", "", 0, PosTopLeft),
	}}
	var got []DrawCommand
	for cmd := range RenderCell(cell, 10) {
		got = append(got, cmd)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(got))
	}
	for i, cmd := range got {
		if cmd.Paint.Color != cell.Elements[i].Color {
			t.Fatalf("command %d out of order: %s", i, cmd.Paint.Color)
		}
		if cmd.CellSize != 10 || cmd.Center != (Vec{5, 5}) {
			t.Fatalf("command %d: bad frame %+v", i, cmd)
		}
	}
	if got[0].Paint.HasPattern() || !got[1].Paint.HasPattern() {
		t.Fatal("pattern flag mismatch")
	}
}

func TestRenderCellStopsEarly(t *testing.T) {
	cell := &Cell{}
	for i := 0; i < 5; i++ {
		cell.Elements = append(cell.Elements, colored(i))
	}
	n := 0
	for range RenderCell(cell, 10) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("expected iteration to stop at 2, got %d", n)
	}
}

func TestRenderEmptyCell(t *testing.T) {
	for range RenderCell(&Cell{}, 10) {
		t.Fatal("an empty cell yields nothing")
	}
}

func TestFillPaintRGB(t *testing.T) {
	c := FillPaint{Color: "#ff0000"}.RGB()
	if !near(c.R, 1) || !near(c.G, 0) || !near(c.B, 0) {
		t.Fatalf("expected red, got %+v", c)
	}
	c = FillPaint{Color: "not a color"}.RGB()
	if !near(c.R, 0.5) || !near(c.G, 0.5) || !near(c.B, 0.5) {
		t.Fatalf("expected gray fallback, got %+v", c)
	}
}
