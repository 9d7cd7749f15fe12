package main

// Screen layout: one optional buffer bar on top, two status lines below the
// grid. Each cell is two terminal columns wide.
const (
	cellColumns = 2
	statusLines = 2
)

func (m *model) handleCursorMove(key string, speed int) {
	switch key {
	case "h", "left", "H", "shift+left":
		m.cursorX -= speed
	case "l", "right", "L", "shift+right":
		m.cursorX += speed
	case "k", "up", "K", "shift+up":
		m.cursorY -= speed
	case "j", "down", "J", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()

	if s := m.getSession(); s != nil && s.Selection().State() == SelectSelecting {
		m.apply(SelectExtend{At: point{m.cursorX, m.cursorY}})
	}
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// ensureCursorInBounds clamps the cursor to the grid and scrolls the
// viewport so the cursor stays visible.
func (m *model) ensureCursorInBounds() {
	s := m.getSession()
	if s == nil {
		return
	}
	w, h := s.Dimensions()
	m.cursorX = max(0, min(m.cursorX, w-1))
	m.cursorY = max(0, min(m.cursorY, h-1))

	buf := m.getCurrentBuffer()
	cols, rows := m.viewportSize()
	if m.cursorX < buf.panX {
		buf.panX = m.cursorX
	} else if m.cursorX >= buf.panX+cols {
		buf.panX = m.cursorX - cols + 1
	}
	if m.cursorY < buf.panY {
		buf.panY = m.cursorY
	} else if m.cursorY >= buf.panY+rows {
		buf.panY = m.cursorY - rows + 1
	}
	buf.panX = max(0, min(buf.panX, w-cols))
	buf.panY = max(0, min(buf.panY, h-rows))
}

func (m *model) showBufferBar() bool {
	return len(m.buffers) > 1
}

func (m *model) gridTop() int {
	if m.showBufferBar() {
		return 1
	}
	return 0
}

// viewportSize is the number of grid cells that fit on screen.
func (m *model) viewportSize() (int, int) {
	cols := max(1, m.width/cellColumns)
	rows := max(1, m.height-statusLines-m.gridTop())
	if m.width <= 0 {
		cols = defaultGridWidth
	}
	if m.height <= 0 {
		rows = defaultGridHeight
	}
	return cols, rows
}

// cellAtScreen maps a terminal position to grid coordinates. The result may
// lie outside the grid.
func (m *model) cellAtScreen(x, y int) point {
	panX, panY := 0, 0
	if buf := m.getCurrentBuffer(); buf != nil {
		panX, panY = buf.panX, buf.panY
	}
	return point{X: x/cellColumns + panX, Y: y - m.gridTop() + panY}
}
