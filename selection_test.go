package main

import (
	"fmt"
	"testing"
)

func newTestSession(t *testing.T, w, h int) *Session {
	t.Helper()
	s, err := NewSession(w, h)
	if err != nil {
		t.Fatalf("NewSession(%d,%d): %v", w, h, err)
	}
	return s
}

func colored(i int) FillElement {
	return BuildElement(ShapeWholeTriangle, fmt.Sprintf("#0000%02x", i), "", 0, PosTopLeft)
}

func cellAt(t *testing.T, s *Session, x, y int) *Cell {
	t.Helper()
	c, err := s.Grid().Get(x, y)
	if err != nil {
		t.Fatalf("Get(%d,%d): %v", x, y, err)
	}
	return c
}

// selectRect drags a selection from a to b.
func selectRect(s *Session, a, b point) {
	s.Apply(SelectStart{At: a})
	s.Apply(SelectExtend{At: b})
	s.Apply(SelectEnd{})
}

func checkFlags(t *testing.T, s *Session) {
	t.Helper()
	g := s.Grid()
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if got, want := cellAt(t, s, x, y).Selected, s.Selection().Contains(x, y); got != want {
				t.Fatalf("cell (%d,%d): Selected=%v but membership=%v", x, y, got, want)
			}
		}
	}
}

func TestMembershipMatchesClippedRectangle(t *testing.T) {
	const w, h = 5, 4
	tests := []struct {
		start, end point
	}{
		{point{0, 0}, point{0, 0}},
		{point{1, 1}, point{3, 2}},
		{point{3, 2}, point{1, 1}},
		{point{-2, -1}, point{1, 2}},
		{point{3, 1}, point{9, 9}},
		{point{-5, -5}, point{10, 10}},
		{point{7, 7}, point{9, 9}},
		{point{-3, 0}, point{-1, 3}},
	}
	for _, tc := range tests {
		s := newTestSession(t, w, h)
		s.Apply(SelectStart{At: tc.start})
		s.Apply(SelectExtend{At: tc.end})

		b := Region{Start: tc.start, End: tc.end}.Normalized()
		cols := min(b.MaxX, w-1) - max(b.MinX, 0) + 1
		rows := min(b.MaxY, h-1) - max(b.MinY, 0) + 1
		want := 0
		if cols > 0 && rows > 0 {
			want = cols * rows
		}
		if got := s.Selection().Len(); got != want {
			t.Fatalf("%v-%v: expected %d members, got %d", tc.start, tc.end, want, got)
		}
		checkFlags(t, s)
	}
}

func TestSelectionStateMachine(t *testing.T) {
	s := newTestSession(t, 4, 4)
	sel := s.Selection()

	s.Apply(SelectExtend{At: point{2, 2}})
	if sel.State() != SelectIdle || sel.Len() != 0 {
		t.Fatal("extend without a start must do nothing")
	}

	s.Apply(SelectStart{At: point{1, 1}})
	if sel.State() != SelectSelecting {
		t.Fatalf("expected selecting, got %v", sel.State())
	}
	s.Apply(SelectExtend{At: point{2, 3}})
	s.Apply(SelectEnd{})
	if sel.State() != SelectFrozen || sel.Len() != 6 {
		t.Fatalf("expected frozen with 6 members, got %v with %d", sel.State(), sel.Len())
	}

	s.Apply(SelectExtend{At: point{3, 3}})
	if sel.Len() != 6 {
		t.Fatal("a frozen selection must not follow drag updates")
	}

	s.Apply(ClearSelection{})
	if sel.State() != SelectIdle || sel.Len() != 0 || sel.Region() != nil {
		t.Fatal("expected clear to return to idle")
	}
	checkFlags(t, s)
}

func TestNewSelectionReplacesOld(t *testing.T) {
	s := newTestSession(t, 4, 4)
	selectRect(s, point{0, 0}, point{3, 3})
	s.Apply(SelectStart{At: point{2, 2}})

	if s.Selection().Len() != 1 {
		t.Fatalf("expected only the new start cell, got %d members", s.Selection().Len())
	}
	if cellAt(t, s, 0, 0).Selected {
		t.Fatal("old membership flag was not cleared")
	}
	checkFlags(t, s)
}

func TestDragEntirelyOutsideSelectsNothing(t *testing.T) {
	s := newTestSession(t, 3, 3)
	selectRect(s, point{5, 5}, point{8, 8})
	if s.Selection().State() != SelectIdle || s.HasSelection() {
		t.Fatal("a drag that never touches the grid should leave nothing selected")
	}
}

func TestSelectSingle(t *testing.T) {
	s := newTestSession(t, 3, 3)
	selectRect(s, point{0, 0}, point{2, 2})

	s.Apply(SelectSingle{At: point{5, 1}})
	if s.Selection().Len() != 9 {
		t.Fatal("out of bounds single select must be a no-op")
	}

	s.Apply(SelectSingle{At: point{2, 1}})
	sel := s.Selection()
	if sel.State() != SelectFrozen || sel.Len() != 1 || !sel.Contains(2, 1) {
		t.Fatalf("expected frozen single cell (2,1), got %v %v", sel.State(), sel.Members())
	}
	checkFlags(t, s)
}

func TestMembersAreRowMajor(t *testing.T) {
	s := newTestSession(t, 3, 3)
	selectRect(s, point{2, 1}, point{0, 0})
	want := []point{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}}
	got := s.Selection().Members()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCopyRequiresSelection(t *testing.T) {
	s := newTestSession(t, 2, 2)
	if s.Copy() {
		t.Fatal("copy with nothing selected should fail")
	}
	if s.Clipboard() != nil {
		t.Fatal("clipboard should stay empty")
	}
}

func TestCopyIsDetachedAndReplaces(t *testing.T) {
	s := newTestSession(t, 3, 3)
	s.Grid().AppendElement(1, 1, colored(1))
	selectRect(s, point{1, 1}, point{2, 2})
	s.Apply(Copy{})

	snap := s.Clipboard()
	if snap == nil || len(snap.Cells) != 4 {
		t.Fatalf("expected 4 snapshot cells, got %+v", snap)
	}
	if snap.Bounds != (Bounds{MinX: 1, MaxX: 2, MinY: 1, MaxY: 2}) {
		t.Fatalf("unexpected bounds %+v", snap.Bounds)
	}

	s.Grid().AppendElement(1, 1, colored(2))
	s.Grid().ClearCell(1, 1)
	if len(snap.Cells[0].Elements) != 1 || snap.Cells[0].Elements[0] != colored(1) {
		t.Fatalf("snapshot changed with the grid: %+v", snap.Cells[0])
	}

	s.Apply(SelectSingle{At: point{0, 0}})
	s.Apply(Copy{})
	if s.Clipboard() == snap || len(s.Clipboard().Cells) != 1 {
		t.Fatal("a second copy should replace the clipboard")
	}
}

func TestClipboardSurvivesSelectionChanges(t *testing.T) {
	s := newTestSession(t, 3, 3)
	selectRect(s, point{0, 0}, point{1, 1})
	s.Apply(Copy{})
	s.Apply(ClearSelection{})
	selectRect(s, point{2, 2}, point{2, 2})
	if s.Clipboard() == nil {
		t.Fatal("clipboard lost on selection change")
	}
}

func TestRotateCenterCellScenario(t *testing.T) {
	s := newTestSession(t, 3, 3)
	s.Grid().AppendElement(1, 1, BuildElement(ShapeWholeSquare, "red", "", 0, PosTopLeft))
	selectRect(s, point{0, 0}, point{2, 2})

	if !s.RotateSelection() {
		t.Fatal("rotate should run with a selection")
	}
	center := cellAt(t, s, 1, 1)
	if len(center.Elements) != 1 || center.Elements[0].Rotation != 90 {
		t.Fatalf("expected centre element rotated to 90, got %+v", center.Elements)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if (x != 1 || y != 1) && !cellAt(t, s, x, y).Empty() {
				t.Fatalf("cell (%d,%d) should still be empty", x, y)
			}
		}
	}
	if s.Selection().Len() != 9 {
		t.Fatalf("expected the rotated footprint selected, got %d", s.Selection().Len())
	}
	checkFlags(t, s)
}

func TestRotateTwiceReflectsThroughCenter(t *testing.T) {
	for _, region := range []Bounds{
		{MinX: 1, MaxX: 3, MinY: 1, MaxY: 3},
		{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1},
		{MinX: 2, MaxX: 5, MinY: 1, MaxY: 4},
	} {
		s := newTestSession(t, 7, 7)
		i := 0
		orig := map[point]FillElement{}
		for y := region.MinY; y <= region.MaxY; y++ {
			for x := region.MinX; x <= region.MaxX; x++ {
				e := colored(i)
				s.Grid().AppendElement(x, y, e)
				orig[point{x, y}] = e
				i++
			}
		}
		selectRect(s, point{region.MinX, region.MinY}, point{region.MaxX, region.MaxY})
		s.RotateSelection()
		s.RotateSelection()

		for p, e := range orig {
			rx := region.MinX + region.MaxX - p.X
			ry := region.MinY + region.MaxY - p.Y
			got := cellAt(t, s, rx, ry).Elements
			if len(got) != 1 || got[0] != e.Rotated(180) {
				t.Fatalf("region %+v: (%d,%d) should land on (%d,%d) rotated 180, got %+v", region, p.X, p.Y, rx, ry, got)
			}
			if got[0].Rotation != 180 {
				t.Fatalf("expected rotation 180, got %d", got[0].Rotation)
			}
		}
	}
}

func TestRotateFourTimesIsIdentity(t *testing.T) {
	s := newTestSession(t, 4, 4)
	s.Grid().AppendElement(0, 0, colored(7))
	selectRect(s, point{0, 0}, point{1, 1})
	for i := 0; i < 4; i++ {
		s.RotateSelection()
	}
	c := cellAt(t, s, 0, 0)
	if len(c.Elements) != 1 || c.Elements[0] != colored(7) {
		t.Fatalf("expected the original element back, got %+v", c.Elements)
	}
}

func TestRotateNonSquareDropsOutOfBounds(t *testing.T) {
	s := newTestSession(t, 5, 5)
	s.Grid().AppendElement(0, 0, colored(0))
	s.Grid().AppendElement(1, 0, colored(1))
	s.Grid().AppendElement(2, 0, colored(2))
	selectRect(s, point{0, 0}, point{2, 0})
	s.RotateSelection()

	// Centre (1,0): (0,0) -> (1,-1) is off the grid, (2,0) -> (1,1).
	if !cellAt(t, s, 0, 0).Empty() || !cellAt(t, s, 2, 0).Empty() {
		t.Fatal("the original footprint should have been erased")
	}
	if got := cellAt(t, s, 1, 0).Elements; len(got) != 1 || got[0] != colored(1).Rotated(90) {
		t.Fatalf("centre cell: got %+v", got)
	}
	if got := cellAt(t, s, 1, 1).Elements; len(got) != 1 || got[0] != colored(2).Rotated(90) {
		t.Fatalf("(1,1): got %+v", got)
	}
	if s.Grid().Painted() != 2 {
		t.Fatalf("expected (0,0)'s content to be lost, %d cells painted", s.Grid().Painted())
	}
	if s.Selection().Len() != 2 || !s.Selection().Contains(1, 0) || !s.Selection().Contains(1, 1) {
		t.Fatalf("unexpected membership %v", s.Selection().Members())
	}
	if s.Selection().Region() != nil {
		t.Fatal("a rotated selection has no drag rectangle")
	}
	checkFlags(t, s)
}

func TestRotateHalfIntegerCenterRoundsUp(t *testing.T) {
	s := newTestSession(t, 3, 3)
	s.Grid().AppendElement(0, 0, colored(0))
	s.Grid().AppendElement(1, 0, colored(1))
	selectRect(s, point{0, 0}, point{1, 0})
	s.RotateSelection()

	// Centre (0.5,0): (0,0) -> (round(0.5), round(-0.5)) = (1,0),
	// (1,0) -> (round(0.5), round(0.5)) = (1,1).
	if got := cellAt(t, s, 1, 0).Elements; len(got) != 1 || got[0] != colored(0).Rotated(90) {
		t.Fatalf("(1,0): got %+v", got)
	}
	if got := cellAt(t, s, 1, 1).Elements; len(got) != 1 || got[0] != colored(1).Rotated(90) {
		t.Fatalf("(1,1): got %+v", got)
	}
}

func TestRotateWithoutSelectionIsNoop(t *testing.T) {
	s := newTestSession(t, 2, 2)
	s.Grid().AppendElement(0, 0, colored(0))
	if changed, _ := s.Apply(RotateSelection{}); changed {
		t.Fatal("rotate without selection should report no change")
	}
	if cellAt(t, s, 0, 0).Elements[0].Rotation != 0 {
		t.Fatal("grid changed")
	}
}

func TestRoundHalfUp(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want int
	}{{0.5, 1}, {-0.5, 0}, {1.5, 2}, {-1.5, -1}, {2.4, 2}, {-2.6, -3}, {3, 3}} {
		if got := roundHalfUp(tc.in); got != tc.want {
			t.Fatalf("roundHalfUp(%v): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestPasteIsAdditive(t *testing.T) {
	s := newTestSession(t, 3, 3)
	s.Grid().AppendElement(0, 0, colored(1))
	s.Grid().AppendElement(2, 2, colored(9))
	s.Apply(SelectSingle{At: point{0, 0}})
	s.Apply(Copy{})
	s.Apply(StartPaste{})
	s.Apply(PasteAt{At: point{2, 2}})

	got := cellAt(t, s, 2, 2).Elements
	if len(got) != 2 || got[0] != colored(9) || got[1] != colored(1) {
		t.Fatalf("expected original then pasted element, got %+v", got)
	}
	if len(cellAt(t, s, 0, 0).Elements) != 1 {
		t.Fatal("source cell changed")
	}
}

func TestPasteClipsAtGridEdge(t *testing.T) {
	s := newTestSession(t, 2, 2)
	for i, p := range []point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		s.Grid().AppendElement(p.X, p.Y, colored(i))
	}
	selectRect(s, point{0, 0}, point{1, 1})
	s.Apply(Copy{})
	s.Apply(StartPaste{})
	if n := s.PasteAt(point{1, 1}); n != 1 {
		t.Fatalf("expected exactly one cell written, got %d", n)
	}

	got := cellAt(t, s, 1, 1).Elements
	if len(got) != 2 || got[1] != colored(0) {
		t.Fatalf("(1,1) should gain source (0,0)'s element, got %+v", got)
	}
	for i, p := range []point{{0, 0}, {1, 0}, {0, 1}} {
		if got := cellAt(t, s, p.X, p.Y).Elements; len(got) != 1 || got[0] != colored(i) {
			t.Fatalf("cell %v should be untouched, got %+v", p, got)
		}
	}
}

func TestPasteNegativeAnchor(t *testing.T) {
	s := newTestSession(t, 3, 3)
	s.Grid().AppendElement(1, 1, colored(5))
	selectRect(s, point{0, 0}, point{1, 1})
	s.Apply(Copy{})
	s.Apply(StartPaste{})
	s.Apply(PasteAt{At: point{-1, -1}})

	if got := cellAt(t, s, 0, 0).Elements; len(got) != 1 || got[0] != colored(5) {
		t.Fatalf("expected (1,1)'s element at (0,0), got %+v", got)
	}
}

func TestPasteIsSingleShot(t *testing.T) {
	s := newTestSession(t, 3, 3)
	s.Grid().AppendElement(0, 0, colored(1))
	s.Apply(SelectSingle{At: point{0, 0}})
	s.Apply(Copy{})

	if changed, _ := s.Apply(PasteAt{At: point{1, 1}}); changed {
		t.Fatal("paste without arming should do nothing")
	}
	s.Apply(StartPaste{})
	if !s.Pasting() {
		t.Fatal("expected paste to be armed")
	}
	s.Apply(PasteAt{At: point{1, 1}})
	if s.Pasting() {
		t.Fatal("paste should disarm after one placement")
	}
	if s.HasSelection() {
		t.Fatal("paste completion should clear the selection")
	}
	s.Apply(PasteAt{At: point{2, 2}})
	if !cellAt(t, s, 2, 2).Empty() {
		t.Fatal("second placement without re-arming should not paste")
	}
}

func TestStartPasteNeedsClipboard(t *testing.T) {
	s := newTestSession(t, 2, 2)
	if s.StartPaste() || s.Pasting() {
		t.Fatal("cannot arm paste with an empty clipboard")
	}
}
