package logging

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// The crash handle is the only process-wide logging state. Everything else
// receives its Logger through its constructor. It exists because a panic
// can unwind from places that were never handed one.
var crash struct {
	mu     sync.Mutex
	log    Logger
	errors *ErrorLog
}

// SetCrashLogger installs the logger and error log used by Recover and
// ReportPanic. Passing nil for either disables that sink.
func SetCrashLogger(log Logger, errs *ErrorLog) {
	crash.mu.Lock()
	defer crash.mu.Unlock()
	crash.log = log
	crash.errors = errs
}

// PanicError wraps a recovered panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ReportPanic appends a recovered panic with its stack to the error log,
// which logs it once, and flushes the session log. Without an error log the
// panic goes straight to the logger. It returns the panic as an error.
func ReportPanic(tag string, r any, stack []byte) error {
	err := &PanicError{Value: r}

	crash.mu.Lock()
	log, errs := crash.log, crash.errors
	crash.mu.Unlock()

	context := "unhandled panic\n" + string(stack)
	if errs != nil {
		errs.Report(tag, context, err, stack)
	} else if log != nil {
		log.Exception(tag, err, context)
	}
	if f, ok := log.(Flusher); ok {
		_ = f.Flush()
	}
	return err
}

// Recover is deferred at the top of main and of goroutines the port starts.
// It reports the panic and then lets it continue unwinding.
func Recover(tag string) {
	if r := recover(); r != nil {
		_ = ReportPanic(tag, r, debug.Stack())
		panic(r)
	}
}
