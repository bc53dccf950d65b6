package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrorLogName is the running error log kept in the logs root.
const ErrorLogName = "error_log.txt"

const (
	errorRule       = "=========================================="
	errorTimeLayout = "2006-01-02 15:04:05.000"
)

// ErrorLog accumulates fatal errors across sessions. Each block carries a
// timestamp, the error type and message, an optional stack and the wrapped
// error if there is one.
type ErrorLog struct {
	mu    sync.Mutex
	path  string
	log   Logger
	now   func() time.Time
	count int
}

// NewErrorLog creates an ErrorLog at logsDir/error_log.txt. Blocks are also
// reported to log as exceptions.
func NewErrorLog(logsDir string, log Logger) *ErrorLog {
	if log == nil {
		log = Nop{}
	}
	return &ErrorLog{
		path: filepath.Join(logsDir, ErrorLogName),
		log:  log,
		now:  time.Now,
	}
}

// Path returns the error log path.
func (e *ErrorLog) Path() string {
	return e.path
}

// Count returns how many blocks this process has written.
func (e *ErrorLog) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

// Report appends a block for err and logs it as a single exception under
// tag. Callers that hold an ErrorLog use it instead of logging the
// exception themselves.
func (e *ErrorLog) Report(tag, context string, err error, stack []byte) {
	if err == nil {
		return
	}

	block := FormatErrorBlock(e.now(), err, stack)

	e.mu.Lock()
	e.count++
	writeErr := appendFile(e.path, block)
	e.mu.Unlock()

	e.log.Exception(tag, err, context)
	if writeErr != nil {
		e.log.Error("PORT/ERRORLOG", "cannot append error log: "+writeErr.Error())
	}
}

// Clear truncates the error log.
func (e *ErrorLog) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(e.path, nil, 0o644)
}

// FormatErrorBlock renders one error log block.
func FormatErrorBlock(t time.Time, err error, stack []byte) string {
	var b strings.Builder
	b.WriteString(errorRule + "\n")
	b.WriteString(t.Format(errorTimeLayout) + "\n")
	fmt.Fprintf(&b, "%s: %s\n", TypeName(err), err.Error())
	if s := strings.TrimRight(string(stack), "\n"); s != "" {
		b.WriteString(s + "\n")
	}
	if inner := errors.Unwrap(err); inner != nil {
		b.WriteString("---- INNER ----\n")
		fmt.Fprintf(&b, "%s: %s\n", TypeName(inner), inner.Error())
	}
	b.WriteString(errorRule + "\n")
	return b.String()
}

func appendFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
