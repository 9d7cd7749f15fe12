package main

import (
	"fmt"
	"html"
	"log"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

func (m *model) getCurrentBuffer() *Buffer {
	if len(m.buffers) == 0 {
		return nil
	}
	return &m.buffers[m.currentBufferIndex]
}

func (m *model) getSession() *Session {
	if buf := m.getCurrentBuffer(); buf != nil {
		return buf.session
	}
	return nil
}

func (m *model) addNewBuffer(session *Session, filename string) {
	m.buffers = append(m.buffers, Buffer{
		session:  session,
		filename: filename,
	})
	m.currentBufferIndex = len(m.buffers) - 1
}

// apply runs a command on the current session and autosaves when content
// changed.
func (m *model) apply(cmd Command) error {
	s := m.getSession()
	if s == nil {
		return nil
	}
	changed, err := s.Apply(cmd)
	if err != nil {
		return err
	}
	if changed {
		m.markDirty()
	}
	return nil
}

func (m *model) markDirty() {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	buf.dirty = true
	if m.config == nil || m.config.Autosave == "" {
		return
	}
	if err := buf.session.SaveToFile(m.config.Autosave); err != nil {
		log.Printf("autosave failed: %v", err)
	}
}

// copyDesignToClipboard puts the current design on the system clipboard as
// JSON.
func (m *model) copyDesignToClipboard() error {
	s := m.getSession()
	if s == nil {
		return fmt.Errorf("no design open")
	}
	data, err := s.MarshalDesign()
	if err != nil {
		return err
	}
	return clipboard.WriteAll(string(data))
}

// importDesignFromClipboard loads a design from the system clipboard into
// the current buffer.
func (m *model) importDesignFromClipboard() error {
	s := m.getSession()
	if s == nil {
		return fmt.Errorf("no design open")
	}
	text, err := readClipboardText()
	if err != nil {
		return fmt.Errorf("read clipboard: %w", err)
	}
	text = cleanClipboardText(text)
	if isHTML(text) {
		text = extractTextFromHTML(text)
	}
	if err := s.LoadBytes([]byte(strings.TrimSpace(text))); err != nil {
		return err
	}
	m.markDirty()
	return nil
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
		if output, err := exec.Command("pbpaste").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func isHTML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<") &&
		(strings.Contains(text, "<html") || strings.Contains(text, "<body") || strings.Contains(text, "<div"))
}

// extractTextFromHTML keeps the text between tags. Browsers wrap copied JSON
// in markup.
func extractTextFromHTML(doc string) string {
	var text strings.Builder
	text.Grow(len(doc))
	depth := 0
	for _, r := range doc {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			text.WriteRune(r)
		}
	}
	return html.UnescapeString(text.String())
}

// cleanClipboardText drops control characters and normalises line endings.
// Rich text wrappers some platforms add are stripped first.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	text = stripRTF(text)
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	normalized := result.String()
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return normalized
}

// stripRTF removes RTF groups and control words. Literal braces in RTF are
// escaped, so JSON survives as text.
func stripRTF(text string) string {
	if !strings.HasPrefix(text, "{\\rtf") {
		return text
	}
	var result strings.Builder
	result.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '{' || r == '}' {
			continue
		}
		if r == '\\' && i+1 < len(runes) {
			next := runes[i+1]
			if next == '\\' || next == '{' || next == '}' {
				result.WriteRune(next)
				i++
				continue
			}
			if (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z') {
				i++
				for i < len(runes) && runes[i] != ' ' && runes[i] != '\\' && runes[i] != '{' && runes[i] != '}' && runes[i] != '\n' {
					i++
				}
				if i < len(runes) && runes[i] != ' ' {
					i--
				}
				continue
			}
		}
		result.WriteRune(r)
	}
	return result.String()
}
