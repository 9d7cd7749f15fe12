package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	modeStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")).Padding(0, 1)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeBufStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
)

var (
	emptyLight     = mustHex("#f7fafc")
	emptyDark      = mustHex("#e2e8f0")
	selectionTint  = mustHex("#667eea")
	clearTint      = mustHex("#ff0000")
	pasteTint      = mustHex("#38a169")
	cursorTint     = mustHex("#000000")
	previewOpacity = 0.6
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Sample points, in unit cell coordinates, for the two terminal columns of
// a cell: top and bottom half of the left column, then of the right.
var cellSamples = [2][2]Vec{
	{{0.25, 0.25}, {0.25, 0.75}},
	{{0.75, 0.25}, {0.75, 0.75}},
}

// sampleCell returns the color at p, topmost element first. ok is false
// when no element covers p.
func (m *model) sampleCell(cell *Cell, extra *FillElement, p Vec) (colorful.Color, bool) {
	elems := cell.Elements
	if extra != nil {
		elems = append(cell.elementsCopy(), *extra)
	}
	var cmds []DrawCommand
	for cmd := range RenderCell(&Cell{Elements: elems}, 1) {
		cmds = append(cmds, cmd)
	}
	for i := len(cmds) - 1; i >= 0; i-- {
		if !cmds[i].Contains(p) {
			continue
		}
		paint := cmds[i].Paint
		if paint.HasPattern() {
			if _, avg, ok := m.patterns.Get(paint.Pattern); ok {
				return avg, true
			}
		}
		c := paint.RGB()
		if extra != nil && i == len(cmds)-1 {
			base, ok := m.sampleCell(cell, nil, p)
			if !ok {
				base = emptyLight
			}
			c = base.BlendRgb(c, previewOpacity)
		}
		return c, true
	}
	return colorful.Color{}, false
}

func (m *model) renderCell(x, y int) string {
	s := m.getSession()
	cell := &s.grid.cells[y][x]
	isCursor := x == m.cursorX && y == m.cursorY

	var preview *FillElement
	if isCursor && m.mode == ModeNormal {
		if e, ok := s.Settings.Element(); ok {
			preview = &e
		}
	}

	bg := emptyLight
	if (x+y)%2 == 1 {
		bg = emptyDark
	}

	var b strings.Builder
	for col := 0; col < cellColumns; col++ {
		var half [2]colorful.Color
		for row := 0; row < 2; row++ {
			c, ok := m.sampleCell(cell, preview, cellSamples[col][row])
			if !ok {
				c = bg
			}
			if cell.Selected {
				c = c.BlendRgb(selectionTint, 0.4)
			}
			if m.inPasteFootprint(x, y) {
				c = c.BlendRgb(pasteTint, 0.4)
			}
			if isCursor {
				switch {
				case m.mode == ModeNormal && s.Settings.Tool == ToolClearCell:
					c = c.BlendRgb(clearTint, 0.3)
				case preview == nil:
					c = c.BlendRgb(cursorTint, 0.35)
				default:
					c = c.BlendRgb(cursorTint, 0.15)
				}
			}
			half[row] = c
		}
		style := lipgloss.NewStyle().
			Foreground(lipgloss.Color(half[0].Clamped().Hex())).
			Background(lipgloss.Color(half[1].Clamped().Hex()))
		b.WriteString(style.Render("▀"))
	}
	return b.String()
}

// inPasteFootprint reports whether a paste at the cursor would write (x, y).
func (m *model) inPasteFootprint(x, y int) bool {
	if m.mode != ModePaste {
		return false
	}
	snap := m.getSession().Clipboard()
	if snap == nil {
		return false
	}
	sx := x - m.cursorX + snap.Bounds.MinX
	sy := y - m.cursorY + snap.Bounds.MinY
	for _, c := range snap.Cells {
		if c.X == sx && c.Y == sy {
			return true
		}
	}
	return false
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	s := m.getSession()
	if s == nil {
		return ""
	}

	var result strings.Builder
	if m.showBufferBar() {
		result.WriteString(m.renderBufferBar(m.width))
		result.WriteString("\n")
	}

	if m.mode == ModeFileInput && m.fileOp == FileOpOpen {
		result.WriteString(m.fileListView())
	} else {
		result.WriteString(m.gridView())
	}

	result.WriteString(m.statusLine())
	result.WriteString("\n")
	result.WriteString(m.messageLine())
	return result.String()
}

func (m *model) gridView() string {
	s := m.getSession()
	buf := m.getCurrentBuffer()
	w, h := s.Dimensions()
	cols, rows := m.viewportSize()

	var b strings.Builder
	for vy := 0; vy < rows; vy++ {
		y := buf.panY + vy
		if y < h {
			for vx := 0; vx < cols && buf.panX+vx < w; vx++ {
				b.WriteString(m.renderCell(buf.panX+vx, y))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) fileListView() string {
	_, rows := m.viewportSize()
	var b strings.Builder
	b.WriteString("Select a saved design:\n")
	b.WriteString(strings.Repeat("─", max(1, m.width)))
	b.WriteString("\n")
	used := 2
	if len(m.fileList) == 0 {
		b.WriteString(dimStyle.Render("(No .json designs found)"))
		b.WriteString("\n")
		used++
	} else {
		maxFiles := max(1, rows-used)
		start := 0
		if m.selectedFileIndex >= maxFiles {
			start = m.selectedFileIndex - maxFiles + 1
		}
		for i := start; i < len(m.fileList) && i < start+maxFiles; i++ {
			line := "  " + m.fileList[i]
			if i == m.selectedFileIndex {
				line = activeBufStyle.Render("> " + m.fileList[i])
			}
			b.WriteString(line)
			b.WriteString("\n")
			used++
		}
	}
	for ; used < rows; used++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) renderBufferBar(width int) string {
	var parts []string
	for i, buf := range m.buffers {
		name := buf.filename
		if name == "" {
			name = "[untitled]"
		}
		if buf.dirty {
			name += "*"
		}
		label := fmt.Sprintf(" %d:%s ", i+1, name)
		if i == m.currentBufferIndex {
			label = activeBufStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return lipgloss.NewStyle().MaxWidth(max(1, width)).Render(strings.Join(parts, "│"))
}

func (m *model) modeString() string {
	s := m.getSession()
	switch m.mode {
	case ModePaste:
		return "PASTE"
	case ModePrompt:
		return "PROMPT"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	}
	if s.Settings.Tool == ToolSelect {
		if s.Selection().State() == SelectSelecting {
			return "SELECTING"
		}
		return "SELECT"
	}
	return "PAINT"
}

func (m *model) statusLine() string {
	s := m.getSession()
	st := s.Settings
	w, h := s.Dimensions()

	swatch := lipgloss.NewStyle().Background(lipgloss.Color(st.Color)).Render("  ")
	info := fmt.Sprintf(" %s %s %d° %s │ (%d,%d) of %dx%d",
		st.Tool, st.Color, st.Rotation, st.Position, m.cursorX, m.cursorY, w, h)
	if st.Pattern != "" {
		info += " │ pattern " + shortRef(st.Pattern)
	}
	if n := s.Selection().Len(); n > 0 {
		info += fmt.Sprintf(" │ %d selected", n)
	}
	if snap := s.Clipboard(); snap != nil {
		info += fmt.Sprintf(" │ clip %dx%d", snap.Bounds.Width(), snap.Bounds.Height())
	}
	line := modeStyle.Render(m.modeString()) + " " + swatch + statusStyle.Render(info)
	return lipgloss.NewStyle().MaxWidth(max(1, m.width)).Render(line)
}

func (m *model) messageLine() string {
	switch m.mode {
	case ModePrompt:
		label := map[PromptKind]string{
			PromptResize:  "Resize (clears grid): ",
			PromptColor:   "Color: ",
			PromptPattern: "Pattern: ",
		}[m.promptKind]
		return label + m.input.View()
	case ModeFileInput:
		verb := map[FileOperation]string{
			FileOpSave:          "Save design as: ",
			FileOpSavePNG:       "Export PNG as: ",
			FileOpSaveVisualTXT: "Export text as: ",
			FileOpOpen:          "Open: ",
		}[m.fileOp]
		return verb + m.input.View()
	case ModeConfirm:
		return m.confirmPrompt() + " (y/n)"
	case ModePaste:
		return "Move to the target cell and press space, or click. Esc cancels."
	}
	if m.errorMessage != "" {
		return errorStyle.Render(m.errorMessage)
	}
	if m.successMessage != "" {
		return successStyle.Render(m.successMessage)
	}
	return dimStyle.Render("? help  space paint  v select  y copy  ctrl+r rotate  p paste  w save  q quit")
}

func (m *model) confirmPrompt() string {
	switch m.confirmAction {
	case ConfirmClearGrid:
		return "Clear the whole grid?"
	case ConfirmQuit:
		return "There are unsaved changes. Quit anyway?"
	case ConfirmCloseBuffer:
		return "Close this buffer without saving?"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("%s exists. Overwrite?", m.pendingPath)
	}
	return "Are you sure?"
}

var helpLines = []string{
	"quiltgrid help",
	"==============",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→  Move cursor",
	"  Shift+h/j/k/l    Move cursor 2 cells",
	"  mouse            Click to paint, drag to select in select mode",
	"",
	"Painting:",
	"---------",
	"  space/enter      Paint current shape at cursor",
	"  x                Clear cell under cursor",
	"  s                Cycle shape (six shapes, then clear-cell)",
	"  r                Cycle rotation 0/90/180/270",
	"  c                Cycle color through the palette",
	"  C                Enter a #rrggbb color",
	"  t                Set pattern image (path or data: URL)",
	"  1-5              Position: top-left, top-right, bottom-left, bottom-right, center",
	"",
	"Selection:",
	"----------",
	"  v                Toggle select mode",
	"  space            Start / finish a rectangular selection",
	"  enter            Select the single cell under the cursor",
	"  y                Copy selection",
	"  ctrl+r           Rotate selection 90° clockwise",
	"  p                Paste; then space/enter or click on the target",
	"  esc              Clear selection / cancel paste",
	"",
	"Grid:",
	"-----",
	"  R                Resize grid (clears it)",
	"  X                Clear grid",
	"",
	"Files:",
	"------",
	"  w                Save design (JSON)",
	"  W                Export PNG",
	"  T                Export text",
	"  o / O            Open design in this / a new buffer",
	"  E / I            Copy design to / import from system clipboard",
	"",
	"Buffers:",
	"--------",
	"  { / }            Previous / next buffer",
	"  N                New buffer",
	"  ctrl+w           Close buffer",
	"",
	"  ?                Toggle this help",
	"  q/ctrl+c         Quit",
}

func (m model) helpView() string {
	visible := max(1, m.height-1)
	start := min(m.helpScroll, max(0, len(helpLines)-visible))
	end := min(len(helpLines), start+visible)
	return strings.Join(helpLines[start:end], "\n")
}
