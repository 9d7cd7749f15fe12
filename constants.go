package main

type Mode int

const (
	ModeNormal Mode = iota
	ModePaste
	ModePrompt
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpSavePNG
	FileOpSaveVisualTXT
	FileOpOpen
)

type PromptKind int

const (
	PromptResize PromptKind = iota
	PromptColor
	PromptPattern
)

type ConfirmAction int

const (
	ConfirmClearGrid ConfirmAction = iota
	ConfirmQuit
	ConfirmCloseBuffer
	ConfirmOverwriteFile
)

const (
	defaultGridWidth  = 20
	defaultGridHeight = 20
	maxCellSize       = 30.0
	maxCanvasSize     = 800.0
	defaultColor      = "#ff6b6b"
	documentVersion   = "1.0"
	designExt         = ".json"
)

// ROYGBIV
var colorPalette = []string{
	"#ff0000",
	"#ff8c00",
	"#ffff00",
	"#00ff00",
	"#0000ff",
	"#4b0082",
	"#9400d3",
}
