package game

import (
	"github.com/younwookim/mgport/internal/application/scene"
	"github.com/younwookim/mgport/internal/application/system"
)

// Latch samples an input source once per tick and hands the same state
// to every reader of that tick.
type Latch struct {
	src scene.InputReader
	cur system.InputState
}

// NewLatch wraps src.
func NewLatch(src scene.InputReader) *Latch {
	return &Latch{src: src}
}

// Poll samples the source. Game calls it at the start of each Update.
func (l *Latch) Poll() system.InputState {
	l.cur = l.src.GetInput()
	return l.cur
}

// GetInput returns the state sampled by the last Poll.
func (l *Latch) GetInput() system.InputState {
	return l.cur
}

// Consume clears the sampled state once a blocking screen has acted on
// it, so the scene does not see the same press.
func (l *Latch) Consume() system.InputState {
	l.cur = system.InputState{}
	return l.cur
}
