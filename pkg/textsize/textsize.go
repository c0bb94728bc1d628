// Package textsize measures text so hosts can size callout boxes from
// their content.
package textsize

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Measurer reports the extent of a block of text. Lines are separated by
// "\n".
type Measurer interface {
	Measure(text string) (width, height float64)
}

// Face measures text with a font face.
type Face struct {
	face       font.Face
	lineHeight float64
}

// NewFace wraps a font face.
func NewFace(f font.Face) Face {
	return Face{face: f, lineHeight: float64(f.Metrics().Height.Ceil())}
}

// Basic measures with the 7x13 bitmap face from x/image, the same face the
// PNG renderer draws with.
func Basic() Face { return NewFace(basicfont.Face7x13) }

// Measure implements Measurer.
func (f Face) Measure(text string) (float64, float64) {
	lines := strings.Split(text, "\n")
	var w int
	for _, line := range lines {
		w = max(w, font.MeasureString(f.face, line).Ceil())
	}
	return float64(w), float64(len(lines)) * f.lineHeight
}

// LineHeight returns the distance between baselines.
func (f Face) LineHeight() float64 { return f.lineHeight }

// Cells measures in terminal cells: display width of the widest line by
// one cell per line. ANSI escapes are ignored.
type Cells struct{}

// Measure implements Measurer.
func (Cells) Measure(text string) (float64, float64) {
	return float64(lipgloss.Width(text)), float64(lipgloss.Height(text))
}

// Fixed measures every rune as CharWidth wide and every line as
// LineHeight tall.
type Fixed struct {
	CharWidth  float64
	LineHeight float64
}

// Measure implements Measurer.
func (f Fixed) Measure(text string) (float64, float64) {
	lines := strings.Split(text, "\n")
	var n int
	for _, line := range lines {
		n = max(n, len([]rune(line)))
	}
	return float64(n) * f.CharWidth, float64(len(lines)) * f.LineHeight
}

var (
	_ Measurer = Face{}
	_ Measurer = Cells{}
	_ Measurer = Fixed{}
)
