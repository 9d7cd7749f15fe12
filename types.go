package main

import "github.com/charmbracelet/bubbles/textinput"

type Buffer struct {
	session  *Session
	filename string
	dirty    bool
	panX     int
	panY     int
}

type model struct {
	width              int
	height             int
	cursorX            int
	cursorY            int
	buffers            []Buffer
	currentBufferIndex int
	mode               Mode
	help               bool
	helpScroll         int
	input              textinput.Model
	promptKind         PromptKind
	fileOp             FileOperation
	fileList           []string
	selectedFileIndex  int
	openInNewBuffer    bool
	pendingPath        string
	confirmAction      ConfirmAction
	mouseDown          bool
	errorMessage       string
	successMessage     string
	config             *Config
	patterns           *PatternCache
}
