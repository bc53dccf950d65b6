// Package saveflow runs the save handshake: serialize on the game loop,
// write on one background goroutine, poll for the outcome every tick and
// let the user retry or discard a failed save.
package saveflow

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/younwookim/mgport/internal/application/savestore"
	"github.com/younwookim/mgport/internal/application/state"
	"github.com/younwookim/mgport/internal/application/system"
	"github.com/younwookim/mgport/internal/domain/progress"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
)

const logTag = "PORT/SAVEFLOW"

// Source hands out the live payloads to persist.
type Source interface {
	SaveData() *progress.SaveData
	Settings() *progress.Settings
	FileKey() string
}

// request is the single save attempt in flight.
type request struct {
	file         bool
	settings     bool
	key          string
	fileData     []byte
	settingsData []byte
}

// Orchestrator owns the save state machine. Request, Update and Draw
// must be called from the game loop.
type Orchestrator struct {
	file     *savestore.Slot[progress.SaveData]
	settings *savestore.Slot[progress.Settings]
	source   Source
	log      logging.Logger
	now      func() time.Time

	gate  *semaphore.Weighted
	state state.SaveFlowState
	req   request
	last  bool
	shown float64 // seconds the indicator has been visible

	writing atomic.Bool
	outcome atomic.Bool
	done    chan struct{}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the time stamped into SaveData.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an idle Orchestrator.
func New(file *savestore.Slot[progress.SaveData], settings *savestore.Slot[progress.Settings], source Source, log logging.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = logging.Nop{}
	}
	o := &Orchestrator{
		file:     file,
		settings: settings,
		source:   source,
		log:      log,
		now:      time.Now,
		gate:     semaphore.NewWeighted(1),
		state:    state.SaveIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Request starts saving the selected payloads. It returns false and does
// nothing while another save is in flight or nothing was selected.
func (o *Orchestrator) Request(file, settings bool) bool {
	if !file && !settings {
		return false
	}
	if !o.gate.TryAcquire(1) {
		o.log.Info(logTag, "SAVE_REQUEST_DROPPED state="+o.state.String())
		return false
	}
	o.req = request{file: file, settings: settings}
	o.log.Info(logTag, fmt.Sprintf("SAVE_REQUESTED file=%t settings=%t", file, settings))
	o.begin()
	return true
}

// begin serializes on the caller goroutine and hands the bytes to a new
// worker.
func (o *Orchestrator) begin() {
	o.state = state.SaveSerializing
	if err := o.serialize(); err != nil {
		o.log.Exception(logTag, err, "serialize")
		o.last = false
		o.state = state.SaveAwaitingUserDecision
		return
	}

	o.state = state.SaveWritingInBackground
	o.shown = 0
	o.outcome.Store(false)
	o.writing.Store(true)
	o.done = make(chan struct{})
	go o.write(o.req, o.done)
}

func (o *Orchestrator) serialize() error {
	o.req.fileData, o.req.settingsData = nil, nil
	if o.req.file {
		data := o.source.SaveData()
		data.BeforeSave(o.now())
		o.req.key = o.source.FileKey()
		b, err := o.file.Encode(*data)
		if err != nil {
			return err
		}
		o.req.fileData = b
	}
	if o.req.settings {
		b, err := o.settings.Encode(*o.source.Settings())
		if err != nil {
			return err
		}
		o.req.settingsData = b
	}
	return nil
}

// write runs on the worker goroutine. Every selected payload is attempted
// even when an earlier one failed.
func (o *Orchestrator) write(req request, done chan struct{}) {
	ok := false
	defer func() {
		if r := recover(); r != nil {
			_ = logging.ReportPanic(logTag, r, debug.Stack())
			o.log.Error(logTag, "SAVE_WORKER_PANIC")
			ok = false
		}
		o.outcome.Store(ok)
		o.writing.Store(false)
		close(done)
	}()

	ok = true
	if req.file {
		ok = o.file.Save(req.key, req.fileData) && ok
	}
	if req.settings {
		ok = o.settings.Save(progress.SettingsKey, req.settingsData) && ok
	}
}

// Update polls the worker and applies the user's decision after a
// failure. dt drives the indicator animation.
func (o *Orchestrator) Update(dt float64, in system.InputState) {
	switch o.state {
	case state.SaveWritingInBackground:
		o.shown += dt
		if o.writing.Load() {
			return
		}
		o.last = o.outcome.Load()
		if o.last {
			o.log.Info(logTag, "SAVE_DONE")
			o.finish()
			return
		}
		o.log.Warn(logTag, "SAVE_FAILED_AWAITING_USER")
		o.state = state.SaveAwaitingUserDecision

	case state.SaveAwaitingUserDecision:
		if in.Retry {
			o.log.Info(logTag, "SAVE_RETRY")
			o.begin()
			return
		}
		if in.Exit {
			o.log.Warn(logTag, "SAVE_DISCARDED")
			o.finish()
		}
	}
}

func (o *Orchestrator) finish() {
	o.state = state.SaveIdle
	o.req = request{}
	o.gate.Release(1)
}

// State returns the current step.
func (o *Orchestrator) State() state.SaveFlowState {
	return o.state
}

// Busy reports whether a save flow is in progress.
func (o *Orchestrator) Busy() bool {
	return o.state != state.SaveIdle
}

// Blocking reports whether the failure prompt owns the input.
func (o *Orchestrator) Blocking() bool {
	return o.state == state.SaveAwaitingUserDecision
}

// LastResult returns the outcome of the last finished attempt.
func (o *Orchestrator) LastResult() bool {
	return o.last
}

// Wait blocks until the worker of the current attempt has finished.
func (o *Orchestrator) Wait() {
	if o.done != nil {
		<-o.done
	}
}
