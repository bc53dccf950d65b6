package saveflow

import (
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/mgport/internal/application/state"
	"github.com/younwookim/mgport/internal/application/ui"
)

var (
	colorShade = color.RGBA{0, 0, 0, 180}
	colorPanel = color.RGBA{90, 20, 20, 255}
)

// IndicatorText is the loading indicator shown while writing. It animates
// with the time the indicator has been visible.
func IndicatorText(shown float64) string {
	dots := int(shown*4) % 4
	return "SALVANDO" + strings.Repeat(".", dots)
}

// FailureLines is the text of the retry or discard prompt.
func FailureLines() []string {
	return []string{
		"FALHA AO SALVAR",
		"",
		"O PROGRESSO NAO FOI GRAVADO.",
		"START/ENTER: TENTAR NOVAMENTE",
		"BACK/ESC: DESCARTAR",
	}
}

// Draw renders the indicator or the failure prompt on top of the scene.
func (o *Orchestrator) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	switch o.state {
	case state.SaveSerializing, state.SaveWritingInBackground:
		text := IndicatorText(o.shown)
		x := b.Dx() - len("SALVANDO...")*ui.GlyphWidth - 8
		ebitenutil.DebugPrintAt(screen, text, x, b.Dy()-ui.LineHeight-4)

	case state.SaveAwaitingUserDecision:
		ebitenutil.DrawRect(screen, 0, 0, float64(b.Dx()), float64(b.Dy()), colorShade)
		lines := FailureLines()
		w := b.Dx() * 2 / 3
		h := (len(lines) + 2) * ui.LineHeight
		x := (b.Dx() - w) / 2
		y := (b.Dy() - h) / 2
		ebitenutil.DrawRect(screen, float64(x), float64(y), float64(w), float64(h), colorPanel)
		ui.DrawLines(screen, lines, x+2*ui.GlyphWidth, y+ui.LineHeight, w-4*ui.GlyphWidth)
	}
}
