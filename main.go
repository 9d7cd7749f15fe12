package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	if os.Getenv("QUILTGRID_DEBUG") != "" {
		f, err := tea.LogToFile("quiltgrid-debug.log", "quiltgrid")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	m, err := initialModel(loadConfig(), os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

// initialModel opens one buffer per design file given, or a blank grid.
func initialModel(config *Config, files []string) (model, error) {
	input := textinput.New()
	input.CharLimit = 256

	m := model{
		mode:              ModeNormal,
		input:             input,
		selectedFileIndex: -1,
		config:            config,
		patterns:          NewPatternCache(),
	}

	for _, name := range files {
		s, err := NewSession(config.Width, config.Height)
		if err != nil {
			return m, err
		}
		if err := s.LoadFromFile(name); err != nil {
			return m, err
		}
		m.addNewBuffer(s, filepath.Base(name))
	}
	if len(m.buffers) == 0 {
		s, err := NewSession(config.Width, config.Height)
		if err != nil {
			return m, err
		}
		if restoreAutosave(s, config.Autosave) {
			m.successMessage = "Restored autosave"
		}
		m.addNewBuffer(s, "")
	}
	m.currentBufferIndex = 0
	return m, nil
}

// restoreAutosave loads the last autosaved design into s. A missing or
// unreadable autosave leaves s blank.
func restoreAutosave(s *Session, path string) bool {
	if path == "" {
		return false
	}
	if err := s.LoadFromFile(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("autosave not restored: %v", err)
		}
		return false
	}
	return true
}

func (m model) Init() tea.Cmd {
	return m.requestPatterns()
}

// requestPatterns starts loading every pattern the current design or brush
// refers to.
func (m *model) requestPatterns() tea.Cmd {
	s := m.getSession()
	if s == nil {
		return nil
	}
	var cmds []tea.Cmd
	seen := map[string]bool{}
	request := func(ref string) {
		if ref == "" || seen[ref] {
			return
		}
		seen[ref] = true
		if cmd := m.patterns.Request(ref); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	request(s.Settings.Pattern)
	g := s.Grid()
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			for _, e := range g.cells[y][x].Elements {
				request(e.Pattern)
			}
		}
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInBounds()
		return m, nil

	case patternLoadedMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("Pattern failed to load: %v", msg.err)
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.help {
			return m.handleHelpKey(msg)
		}
		switch m.mode {
		case ModePrompt:
			return m.handlePromptKey(msg)
		case ModeFileInput:
			return m.handleFileInputKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		case ModePaste:
			return m.handlePasteKey(msg)
		default:
			return m.handleNormalKey(msg)
		}
	}
	return m, nil
}
