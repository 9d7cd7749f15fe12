package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.getSession()
	key := msg.String()
	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "h", "j", "k", "l", "left", "down", "up", "right",
		"H", "J", "K", "L", "shift+left", "shift+down", "shift+up", "shift+right":
		m.handleCursorMove(key, m.getMoveSpeed(key))

	case " ", "enter":
		m.primaryAction(key == "enter")

	case "x":
		m.apply(ClearCellAt{At: m.cursor()})

	case "r":
		s.CycleRotation()
	case "s":
		s.CycleShape()
	case "c":
		s.CycleColor()
	case "1", "2", "3", "4", "5":
		i, _ := strconv.Atoi(key)
		s.SetPosition(positions[i-1])

	case "v":
		if s.Selection().State() == SelectSelecting {
			m.apply(SelectEnd{})
		}
		s.ToggleSelectMode()

	case "y":
		m.apply(Copy{})
		if snap := s.Clipboard(); snap != nil && s.HasSelection() {
			m.successMessage = fmt.Sprintf("Copied %d cells", len(snap.Cells))
		} else {
			m.errorMessage = "Nothing selected to copy"
		}

	case "ctrl+r":
		if !s.HasSelection() {
			m.errorMessage = "Nothing selected to rotate"
			break
		}
		m.apply(RotateSelection{})

	case "p":
		m.apply(StartPaste{})
		if s.Pasting() {
			m.mode = ModePaste
		} else {
			m.errorMessage = "Clipboard is empty"
		}

	case "esc":
		m.apply(ClearSelection{})

	case "X":
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmClearGrid
		} else {
			m.apply(ClearGrid{})
		}

	case "R":
		w, h := s.Dimensions()
		return m.startPrompt(PromptResize, fmt.Sprintf("%dx%d", w, h))
	case "C":
		return m.startPrompt(PromptColor, s.Settings.Color)
	case "t":
		return m.startPrompt(PromptPattern, s.Settings.Pattern)

	case "w":
		return m.startFileInput(FileOpSave, false)
	case "W":
		return m.startFileInput(FileOpSavePNG, false)
	case "T":
		return m.startFileInput(FileOpSaveVisualTXT, false)
	case "o":
		return m.startFileInput(FileOpOpen, false)
	case "O":
		return m.startFileInput(FileOpOpen, true)

	case "E":
		if err := m.copyDesignToClipboard(); err != nil {
			m.errorMessage = fmt.Sprintf("Clipboard copy failed: %v", err)
		} else {
			m.successMessage = "Design copied to clipboard"
		}
	case "I":
		if err := m.importDesignFromClipboard(); err != nil {
			m.errorMessage = fmt.Sprintf("Clipboard import failed: %v", err)
			break
		}
		m.successMessage = "Design imported from clipboard"
		m.ensureCursorInBounds()
		return m, m.requestPatterns()

	case "{":
		if m.currentBufferIndex > 0 {
			m.currentBufferIndex--
		} else {
			m.currentBufferIndex = len(m.buffers) - 1
		}
		m.ensureCursorInBounds()
	case "}":
		m.currentBufferIndex = (m.currentBufferIndex + 1) % len(m.buffers)
		m.ensureCursorInBounds()
	case "N":
		ns, err := NewSession(m.config.Width, m.config.Height)
		if err != nil {
			m.errorMessage = err.Error()
			break
		}
		m.addNewBuffer(ns, "")
		m.cursorX, m.cursorY = 0, 0
		m.ensureCursorInBounds()
	case "ctrl+w":
		if m.getCurrentBuffer().dirty && m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmCloseBuffer
		} else {
			return m.closeBuffer()
		}

	case "?":
		m.help = true
		m.helpScroll = 0

	case "q":
		if m.anyDirty() && m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) cursor() point {
	return point{X: m.cursorX, Y: m.cursorY}
}

// primaryAction is space or enter on the cursor cell: paint with the current
// tool, or in select mode start, finish or (enter) single-select.
func (m *model) primaryAction(single bool) {
	s := m.getSession()
	if s.Settings.Tool != ToolSelect {
		m.apply(Paint{At: m.cursor()})
		return
	}
	switch {
	case s.Selection().State() == SelectSelecting:
		m.apply(SelectEnd{})
	case single:
		m.apply(SelectSingle{At: m.cursor()})
	default:
		m.apply(SelectStart{At: m.cursor()})
	}
}

func (m model) handlePasteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc":
		m.getSession().CancelPaste()
		m.mode = ModeNormal
	case " ", "enter":
		m.pasteAt(m.cursor())
	default:
		m.handleCursorMove(key, m.getMoveSpeed(key))
	}
	return m, nil
}

func (m *model) pasteAt(c point) {
	m.apply(PasteAt{At: c})
	m.mode = ModeNormal
	m.successMessage = fmt.Sprintf("Pasted at (%d,%d)", c.X, c.Y)
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	s := m.getSession()
	if s == nil || m.help {
		return m, nil
	}
	c := m.cellAtScreen(msg.X, msg.Y)
	inGrid := s.Grid().InBounds(c.X, c.Y)

	switch msg.Type {
	case tea.MouseLeft:
		if inGrid {
			m.cursorX, m.cursorY = c.X, c.Y
		}
		switch {
		case m.mode == ModePaste:
			m.pasteAt(c)
		case m.mode != ModeNormal:
		case s.Settings.Tool == ToolSelect:
			m.apply(SelectStart{At: c})
			m.mouseDown = true
		case inGrid:
			m.apply(Paint{At: c})
		}

	case tea.MouseMotion:
		if inGrid {
			m.cursorX, m.cursorY = c.X, c.Y
		}
		if m.mouseDown && s.Selection().State() == SelectSelecting {
			m.apply(SelectExtend{At: c})
		}

	case tea.MouseRelease:
		if m.mouseDown {
			m.mouseDown = false
			m.apply(SelectEnd{})
		}
	}
	return m, nil
}

func (m model) startPrompt(kind PromptKind, value string) (tea.Model, tea.Cmd) {
	m.mode = ModePrompt
	m.promptKind = kind
	m.input.CharLimit = 256
	if kind == PromptPattern {
		// Embedded patterns are long data URLs.
		m.input.CharLimit = 0
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	switch kind {
	case PromptResize:
		m.input.Placeholder = "WIDTHxHEIGHT"
	case PromptColor:
		m.input.Placeholder = "#rrggbb"
	case PromptPattern:
		m.input.Placeholder = "image path or data: URL (empty clears)"
	}
	return m, m.input.Focus()
}

func (m model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.mode = ModeNormal
		return m, nil
	case "enter":
		m.input.Blur()
		m.mode = ModeNormal
		return m, m.submitPrompt(strings.TrimSpace(m.input.Value()))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) submitPrompt(value string) tea.Cmd {
	s := m.getSession()
	switch m.promptKind {
	case PromptResize:
		w, h, err := parseDimensions(value)
		if err == nil {
			err = m.apply(ResizeGrid{Width: w, Height: h})
		}
		if err != nil {
			m.errorMessage = fmt.Sprintf("Resize failed: %v", err)
			return nil
		}
		m.cursorX, m.cursorY = 0, 0
		m.ensureCursorInBounds()
		m.successMessage = fmt.Sprintf("Grid is now %dx%d", w, h)
	case PromptColor:
		if err := s.SetColor(value); err != nil {
			m.errorMessage = err.Error()
		}
	case PromptPattern:
		ref, err := embedPattern(value)
		if err != nil {
			m.errorMessage = fmt.Sprintf("Pattern failed to load: %v", err)
			return nil
		}
		s.SetPattern(ref)
		if ref != "" {
			m.successMessage = "Pattern set"
		}
		return m.patterns.Request(ref)
	}
	return nil
}

// parseDimensions reads "20x30", "20 30" or "20,30".
func parseDimensions(value string) (int, int, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == 'x' || r == 'X' || r == ',' || r == ' '
	})
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: want WIDTHxHEIGHT, got %q", ErrInvalidDimension, value)
	}
	w, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: width %q", ErrInvalidDimension, fields[0])
	}
	h, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: height %q", ErrInvalidDimension, fields[1])
	}
	return w, h, nil
}

func fileExt(op FileOperation) string {
	switch op {
	case FileOpSavePNG:
		return ".png"
	case FileOpSaveVisualTXT:
		return ".txt"
	default:
		return designExt
	}
}

func (m model) startFileInput(op FileOperation, newBuffer bool) (tea.Model, tea.Cmd) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.openInNewBuffer = newBuffer
	m.input.Placeholder = "name"
	value := ""
	if buf := m.getCurrentBuffer(); buf != nil && buf.filename != "" {
		value = strings.TrimSuffix(buf.filename, designExt)
	}
	if op == FileOpOpen {
		value = ""
		m.scanDesignFiles()
		if m.selectedFileIndex >= 0 {
			value = m.fileList[m.selectedFileIndex]
		}
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m model) handleFileInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.mode = ModeNormal
		return m, nil
	case "up", "down":
		if m.fileOp == FileOpOpen && len(m.fileList) > 0 {
			if msg.String() == "up" {
				m.selectedFileIndex = max(0, m.selectedFileIndex-1)
			} else {
				m.selectedFileIndex = min(len(m.fileList)-1, m.selectedFileIndex+1)
			}
			m.input.SetValue(m.fileList[m.selectedFileIndex])
			m.input.CursorEnd()
		}
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.errorMessage = "File name required"
			return m, nil
		}
		m.input.Blur()
		m.mode = ModeNormal
		if !strings.HasSuffix(strings.ToLower(name), fileExt(m.fileOp)) {
			name += fileExt(m.fileOp)
		}
		path := m.config.GetSavePath(name)
		if m.fileOp != FileOpOpen && m.config.Confirmations {
			if _, err := os.Stat(path); err == nil {
				m.pendingPath = path
				m.mode = ModeConfirm
				m.confirmAction = ConfirmOverwriteFile
				return m, nil
			}
		}
		return m, m.performFileOp(path)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) performFileOp(path string) tea.Cmd {
	s := m.getSession()
	buf := m.getCurrentBuffer()
	switch m.fileOp {
	case FileOpSave:
		if err := s.SaveToFile(path); err != nil {
			m.errorMessage = fmt.Sprintf("Save failed: %v", err)
			return nil
		}
		buf.filename = filepath.Base(path)
		buf.dirty = false
		m.successMessage = "Saved " + path
	case FileOpSavePNG:
		w, h := s.Dimensions()
		opts := ExportOptions{
			CellSize: m.config.ExportCellSize(w, h),
			Patterns: m.patterns,
		}
		if err := s.ExportPNG(path, opts); err != nil {
			m.errorMessage = fmt.Sprintf("Export failed: %v", err)
			return nil
		}
		m.successMessage = "Exported " + path
	case FileOpSaveVisualTXT:
		if err := s.ExportVisualTXT(path); err != nil {
			m.errorMessage = fmt.Sprintf("Export failed: %v", err)
			return nil
		}
		m.successMessage = "Exported " + path
	case FileOpOpen:
		target := s
		if m.openInNewBuffer {
			var err error
			target, err = NewSession(m.config.Width, m.config.Height)
			if err != nil {
				m.errorMessage = err.Error()
				return nil
			}
		}
		if err := target.LoadFromFile(path); err != nil {
			if errors.Is(err, ErrInvalidDocument) {
				m.errorMessage = fmt.Sprintf("Invalid design file: %v", err)
			} else {
				m.errorMessage = fmt.Sprintf("Open failed: %v", err)
			}
			return nil
		}
		if m.openInNewBuffer {
			m.addNewBuffer(target, filepath.Base(path))
		} else {
			buf.filename = filepath.Base(path)
			buf.dirty = false
		}
		m.cursorX, m.cursorY = 0, 0
		m.ensureCursorInBounds()
		m.successMessage = "Opened " + path
		return m.requestPatterns()
	}
	return nil
}

// scanDesignFiles lists the JSON designs in the save directory.
func (m *model) scanDesignFiles() {
	m.fileList = []string{}
	m.selectedFileIndex = -1

	dir := m.config.SaveDirectory
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), designExt) {
			m.fileList = append(m.fileList, entry.Name())
		}
	}
	sort.Strings(m.fileList)
	if len(m.fileList) > 0 {
		m.selectedFileIndex = 0
	}
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmClearGrid:
			m.apply(ClearGrid{})
			m.successMessage = "Grid cleared"
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmCloseBuffer:
			return m.closeBuffer()
		case ConfirmOverwriteFile:
			return m, m.performFileOp(m.pendingPath)
		}
	case "n", "N", "esc":
		m.mode = ModeNormal
	}
	return m, nil
}

// closeBuffer drops the current buffer. The last buffer is replaced by a
// blank one rather than closed.
func (m model) closeBuffer() (tea.Model, tea.Cmd) {
	if len(m.buffers) <= 1 {
		s, err := NewSession(m.config.Width, m.config.Height)
		if err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.buffers[0] = Buffer{session: s}
		m.currentBufferIndex = 0
	} else {
		m.buffers = append(m.buffers[:m.currentBufferIndex], m.buffers[m.currentBufferIndex+1:]...)
		if m.currentBufferIndex >= len(m.buffers) {
			m.currentBufferIndex = len(m.buffers) - 1
		}
	}
	m.ensureCursorInBounds()
	return m, nil
}

func (m *model) anyDirty() bool {
	for _, b := range m.buffers {
		if b.dirty {
			return true
		}
	}
	return false
}

func (m model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		maxScroll := max(0, len(helpLines)-max(1, m.height-1))
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
	return m, nil
}
