// Package ui draws port screens with the engine debug font.
package ui

import (
	"strings"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Debug font metrics in pixels.
const (
	LineHeight = 16
	GlyphWidth = 6
)

// DrawLines prints lines with the debug font starting at x, y, wrapping
// them to width pixels. It returns the y below the last line.
func DrawLines(screen *ebiten.Image, lines []string, x, y, width int) int {
	cols := width / GlyphWidth
	for _, line := range lines {
		for _, part := range Wrap(ScreenText(line), cols) {
			ebitenutil.DebugPrintAt(screen, part, x, y)
			y += LineHeight
		}
	}
	return y
}

// Wrap splits s into chunks of at most cols runes, preferring spaces.
func Wrap(s string, cols int) []string {
	if cols <= 0 || len([]rune(s)) <= cols {
		return []string{s}
	}
	var out []string
	r := []rune(s)
	for len(r) > cols {
		cut := cols
		for i := cols; i > 0; i-- {
			if r[i] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimRight(string(r[:cut]), " "))
		r = r[cut:]
		for len(r) > 0 && r[0] == ' ' {
			r = r[1:]
		}
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}

// ScreenText strips accents, since the debug font only has ASCII glyphs.
func ScreenText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
