package boot

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/mgport/internal/application/state"
	"github.com/younwookim/mgport/internal/application/ui"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
	"github.com/younwookim/mgport/internal/infrastructure/paths"
)

const (
	marginX = 12
	marginY = 12
)

// Ellipsis is the line drawn when problems were left out.
const Ellipsis = "..."

var (
	colorBackground = color.RGBA{0, 0, 0, 255}
	colorOverlay    = color.RGBA{0, 0, 0, 200}
	colorDiagFrame  = color.RGBA{40, 200, 60, 255}
)

// ContentMissingLines is the text of the content screen. At most
// maxListed problems are listed, followed by Ellipsis when some were cut.
func ContentMissingLines(contentPath string, problems []string, maxListed int) []string {
	if contentPath == "" {
		contentPath = "<ContentPath>"
	}
	lines := []string{
		"ARQUIVOS DO JOGO NAO ENCONTRADOS",
		"",
		"PARA INICIAR, COPIE OS ARQUIVOS DO JOGO PARA:",
		contentPath,
		"",
		"FALTANDO/PROBLEMAS:",
	}
	for i, p := range problems {
		if i >= maxListed {
			lines = append(lines, Ellipsis)
			break
		}
		lines = append(lines, "- "+p)
	}
	return append(lines,
		"",
		"DEPOIS DE COPIAR, TOQUE OU APERTE START/ENTER PARA TENTAR NOVAMENTE.",
		"START/ENTER: TENTAR NOVAMENTE | BACK/ESC: SAIR",
	)
}

// FatalLines is the text of the fatal screen.
func FatalLines(msg string, cause error) []string {
	if msg == "" {
		msg = DefaultFatalMessage
	}
	lines := []string{"ERRO FATAL", "", msg}
	if cause != nil {
		lines = append(lines, logging.TypeName(cause)+": "+cause.Error())
	}
	return append(lines, "", "BACK/ESC: SAIR")
}

// DiagnosticsLines is the text of the diagnostics overlay.
func DiagnosticsLines(set paths.Set, summary string, problems int, hold time.Duration) []string {
	return []string{
		"DIAGNOSTICO",
		"BASE: " + set.Base,
		"CONTENT: " + set.Content,
		"LOGS: " + set.Logs,
		"SAVE: " + set.Save,
		"CONTENT_STATUS: " + summary,
		fmt.Sprintf("PROBLEMS: %d", problems),
		fmt.Sprintf("HOLD START/ENTER %gs PARA TOGGLE", hold.Seconds()),
	}
}

// Draw renders the blocking screen for the current state and the
// diagnostics overlay when it is on. It draws nothing while Running
// unless diagnostics are on.
func (m *Manager) Draw(screen *ebiten.Image) {
	m.mu.Lock()
	st := m.state
	report := m.report
	msg, cause := m.fatalMsg, m.fatalErr
	m.mu.Unlock()

	w := screen.Bounds().Dx()
	switch st {
	case state.BootContentInvalid:
		screen.Fill(colorBackground)
		ui.DrawLines(screen, ContentMissingLines(m.set.Content, report.Problems, m.opts.MaxListed), marginX, marginY, w-2*marginX)
	case state.BootFatal:
		screen.Fill(colorBackground)
		ui.DrawLines(screen, FatalLines(msg, cause), marginX, marginY, w-2*marginX)
	}

	if m.diag {
		lines := DiagnosticsLines(m.set, report.Summary, report.Len(), m.opts.HoldToggle)
		h := len(lines)*ui.LineHeight + 2*marginY
		ebitenutil.DrawRect(screen, 4, 4, float64(w-8), float64(h), colorDiagFrame)
		ebitenutil.DrawRect(screen, 6, 6, float64(w-12), float64(h-4), colorOverlay)
		ui.DrawLines(screen, lines, marginX, marginY, w-2*marginX)
	}
}
