// Package boot gates the game loop on the content check and owns the
// blocking error screens shown until the user fixes the install or exits.
package boot

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/mgport/internal/application/content"
	"github.com/younwookim/mgport/internal/application/state"
	"github.com/younwookim/mgport/internal/application/system"
	"github.com/younwookim/mgport/internal/infrastructure/fsys"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
	"github.com/younwookim/mgport/internal/infrastructure/paths"
)

const logTag = "PORT/BOOT"

// DefaultFatalMessage is shown when EnterFatal gets an empty message.
const DefaultFatalMessage = "ERRO FATAL"

// ValidateFunc runs one content validation pass.
type ValidateFunc func(set paths.Set, fs fsys.FileSystem, requireAudio bool) content.Report

// Options configures a Manager.
type Options struct {
	RequireAudio bool
	// HoldToggle is how long the hold intent must be sustained to flip
	// the diagnostics overlay. Zero means 2s.
	HoldToggle time.Duration
	// MaxListed caps the problems drawn on the content screen. Zero means 10.
	MaxListed int
	// Validate replaces content.Validate.
	Validate ValidateFunc
}

func (o Options) withDefaults() Options {
	if o.HoldToggle <= 0 {
		o.HoldToggle = 2 * time.Second
	}
	if o.MaxListed <= 0 {
		o.MaxListed = 10
	}
	if o.Validate == nil {
		o.Validate = content.Validate
	}
	return o
}

// Manager is the boot and recovery state machine. Update and Draw run on
// the game loop; EnterFatal may be called from any goroutine.
type Manager struct {
	set   paths.Set
	files fsys.FileSystem
	log   logging.Logger
	opts  Options

	mu        sync.Mutex
	state     state.BootState
	report    content.Report
	validated bool
	fatalMsg  string
	fatalErr  error

	// only touched by Update
	held float64
	diag bool
}

// New creates a Manager in ContentInvalid. The first validation runs on
// the first Update, once the host input is live.
func New(set paths.Set, files fsys.FileSystem, log logging.Logger, opts Options) *Manager {
	if log == nil {
		log = logging.Nop{}
	}
	return &Manager{
		set:    set,
		files:  files,
		log:    log,
		opts:   opts.withDefaults(),
		state:  state.BootContentInvalid,
		report: content.Pending(),
	}
}

// Update advances the machine by dt seconds. It returns ebiten.Termination
// when the user asked to leave from a blocking screen.
func (m *Manager) Update(dt float64, in system.InputState) error {
	m.updateHold(dt, in.Hold)

	m.mu.Lock()
	first := m.state == state.BootContentInvalid && !m.validated
	m.mu.Unlock()
	if first {
		m.TryRevalidate()
	}

	switch m.State() {
	case state.BootContentInvalid:
		if in.Retry {
			m.TryRevalidate()
		}
		if in.Exit {
			m.log.Warn(logTag, "USER_EXIT_FROM_ERROR_SCREEN")
			return ebiten.Termination
		}
	case state.BootFatal:
		if in.Exit {
			m.log.Warn(logTag, "USER_EXIT_FROM_FATAL_SCREEN")
			return ebiten.Termination
		}
	}
	return nil
}

// updateHold services the level-triggered diagnostics gesture.
func (m *Manager) updateHold(dt float64, held bool) {
	if !held {
		m.held = 0
		return
	}
	m.held += dt
	if m.held < m.opts.HoldToggle.Seconds() {
		return
	}
	m.held = 0
	m.diag = !m.diag
	if m.diag {
		m.log.Info(logTag, "DIAG_MODE=ON")
	} else {
		m.log.Info(logTag, "DIAG_MODE=OFF")
	}
}

// TryRevalidate runs the content check again from ContentInvalid and
// moves to Running when it passes. It never leaves Running or Fatal.
// A panic inside the validator moves to Fatal.
func (m *Manager) TryRevalidate() (ok bool) {
	switch m.State() {
	case state.BootRunning:
		return true
	case state.BootFatal:
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			err := &logging.PanicError{Value: r}
			m.log.Exception(logTag, err, "content validation\n"+string(debug.Stack()))
			m.EnterFatalReported("Falha ao validar Content", err)
			ok = false
		}
	}()

	start := time.Now()
	r := m.opts.Validate(m.set, m.files, m.opts.RequireAudio)
	took := time.Since(start)

	m.mu.Lock()
	if m.state == state.BootFatal {
		// EnterFatal won the race
		m.mu.Unlock()
		return false
	}
	m.report = r
	m.validated = true
	if r.OK {
		m.state = state.BootRunning
	} else {
		m.state = state.BootContentInvalid
	}
	m.mu.Unlock()

	m.log.Info(logTag, fmt.Sprintf("CONTENT_STATUS=%s problems=%d took=%s", r.Summary, r.Len(), took.Round(time.Microsecond)))
	if r.OK {
		m.log.Info(logTag, "CONTENT_OK_AFTER_RETRY")
		return true
	}
	for _, p := range r.Problems {
		m.log.Warn(logTag, "PROBLEM: "+p)
	}
	m.log.Warn(logTag, "CONTENT_STILL_INVALID_AFTER_RETRY")
	return false
}

// EnterFatal moves to Fatal from any state and records what to show.
func (m *Manager) EnterFatal(msg string, cause error) {
	m.EnterFatalReported(msg, cause)
	if cause != nil {
		m.log.Exception(logTag, cause, "FATAL")
	}
}

// EnterFatalReported is EnterFatal for a cause that was already logged as
// an exception, such as a panic passed through logging.ReportPanic.
func (m *Manager) EnterFatalReported(msg string, cause error) {
	if msg == "" {
		msg = DefaultFatalMessage
	}
	m.mu.Lock()
	m.state = state.BootFatal
	m.fatalMsg = msg
	m.fatalErr = cause
	m.mu.Unlock()

	m.log.Error(logTag, "FATAL: "+msg)
}

// State returns the current state.
func (m *Manager) State() state.BootState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsBlocking reports whether the game loop must stay suspended.
func (m *Manager) IsBlocking() bool {
	return m.State().Blocking()
}

// Report returns the last validation report.
func (m *Manager) Report() content.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.report
}

// Diagnostics reports whether the diagnostics overlay is on.
func (m *Manager) Diagnostics() bool {
	return m.diag
}

// Fatal returns the recorded fatal message and cause.
func (m *Manager) Fatal() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fatalMsg, m.fatalErr
}

// Paths returns the roots shown on the diagnostics overlay.
func (m *Manager) Paths() paths.Set {
	return m.set
}
