package ui

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		in   string
		cols int
		want []string
	}{
		{"fits", "short", 10, []string{"short"}},
		{"no limit", "anything goes", 0, []string{"anything goes"}},
		{"breaks at space", "alpha beta gamma", 11, []string{"alpha beta", "gamma"}},
		{"hard break", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.in, tt.cols))
		})
	}
}

func TestScreenText(t *testing.T) {
	assert.Equal(t, "Nao foi possivel ler Content", ScreenText("Não foi possível ler Content"))
	assert.Equal(t, "Pasta FMOD ausente (audio pode falhar)", ScreenText("Pasta FMOD ausente (áudio pode falhar)"))
}

func TestDrawLines(t *testing.T) {
	img := ebiten.NewImage(120, 200)

	y := DrawLines(img, []string{"one", "a line long enough to wrap twice here"}, 10, 4, 100)

	// 100px of text fits 16 glyphs, so the second line takes three rows
	assert.Equal(t, 4+4*LineHeight, y)
}
