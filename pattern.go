package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// patternLoadedMsg reports that a pattern finished loading, successfully or
// not, and the grid should be redrawn.
type patternLoadedMsg struct {
	ref string
	err error
}

type patternEntry struct {
	img     image.Image
	average colorful.Color
	err     error
	pending bool
}

// PatternCache decodes pattern images once. Loads requested through Request
// run as bubbletea commands, so entries are guarded by a mutex.
type PatternCache struct {
	mu      sync.Mutex
	entries map[string]*patternEntry
}

func NewPatternCache() *PatternCache {
	return &PatternCache{entries: make(map[string]*patternEntry)}
}

// Get returns a loaded pattern. Pending and failed loads report false.
func (c *PatternCache) Get(ref string) (image.Image, colorful.Color, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[ref]
	if !ok || e.img == nil {
		return nil, colorful.Color{}, false
	}
	return e.img, e.average, true
}

// Load decodes ref synchronously, caching the result.
func (c *PatternCache) Load(ref string) (image.Image, error) {
	c.mu.Lock()
	if e, ok := c.entries[ref]; ok && !e.pending {
		c.mu.Unlock()
		return e.img, e.err
	}
	c.mu.Unlock()

	img, err := decodePattern(ref)
	e := &patternEntry{img: img, err: err}
	if err == nil {
		e.average = averageColor(img)
	} else {
		log.Printf("pattern %s: %v", shortRef(ref), err)
	}

	c.mu.Lock()
	c.entries[ref] = e
	c.mu.Unlock()
	return img, err
}

// Request starts a background load of ref unless it is already known.
func (c *PatternCache) Request(ref string) tea.Cmd {
	if ref == "" {
		return nil
	}
	c.mu.Lock()
	if _, ok := c.entries[ref]; ok {
		c.mu.Unlock()
		return nil
	}
	c.entries[ref] = &patternEntry{pending: true}
	c.mu.Unlock()

	return func() tea.Msg {
		_, err := c.Load(ref)
		return patternLoadedMsg{ref: ref, err: err}
	}
}

// embedPattern turns an image file into a data URL so a saved design carries
// its patterns with it. Data URLs and the empty reference pass through.
func embedPattern(ref string) (string, error) {
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ref, nil
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", err
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// decodePattern accepts a data URL or a path to an image file.
func decodePattern(ref string) (image.Image, error) {
	var data []byte
	if strings.HasPrefix(ref, "data:") {
		comma := strings.IndexByte(ref, ',')
		if comma < 0 || !strings.HasSuffix(ref[:comma], ";base64") {
			return nil, fmt.Errorf("unsupported data URL")
		}
		var err error
		data, err = base64.StdEncoding.DecodeString(ref[comma+1:])
		if err != nil {
			return nil, fmt.Errorf("decode data URL: %w", err)
		}
	} else {
		var err error
		data, err = os.ReadFile(ref)
		if err != nil {
			return nil, err
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func averageColor(img image.Image) colorful.Color {
	b := img.Bounds()
	step := max(1, max(b.Dx(), b.Dy())/64)
	var r, g, bl float64
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			r, g, bl = r+c.R, g+c.G, bl+c.B
			n++
		}
	}
	if n == 0 {
		return colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	}
	return colorful.Color{R: r / float64(n), G: g / float64(n), B: bl / float64(n)}
}

func shortRef(ref string) string {
	if len(ref) > 40 {
		return ref[:37] + "..."
	}
	return ref
}
