package logging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

const (
	sessionTimeLayout = "2006-01-02_15-04-05"
	maxMirrorLen      = 3500
	maxSessionSuffix  = 100
)

// FileLogger writes the session log file and mirrors lines to a
// charmbracelet logger. It is safe for concurrent use.
type FileLogger struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	mirror *log.Logger
	now    func() time.Time
}

// Option configures a FileLogger.
type Option func(*fileOptions)

type fileOptions struct {
	mirror      io.Writer
	mirrorLevel log.Level
	now         func() time.Time
}

// WithMirror sets where lines are mirrored. nil disables mirroring.
func WithMirror(w io.Writer) Option {
	return func(o *fileOptions) {
		o.mirror = w
	}
}

// WithMirrorLevel sets the minimum level mirrored, e.g. "info" or "warn".
// Unknown names keep the default.
func WithMirrorLevel(name string) Option {
	return func(o *fileOptions) {
		if lvl, err := log.ParseLevel(name); err == nil {
			o.mirrorLevel = lvl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *fileOptions) {
		o.now = now
	}
}

// NewFileLogger creates logsDir/log_<timestamp>.txt and logs LOG_FILE=<path>.
// A session started in the same second as an existing log gets a _N suffix
// instead of overwriting it.
func NewFileLogger(logsDir string, opts ...Option) (*FileLogger, error) {
	o := fileOptions{
		mirror:      os.Stderr,
		mirrorLevel: log.InfoLevel,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create %s: %w", logsDir, err)
	}
	f, path, err := createSession(logsDir, o.now())
	if err != nil {
		return nil, err
	}

	l := &FileLogger{
		path: path,
		file: f,
		now:  o.now,
	}
	if o.mirror != nil {
		l.mirror = log.NewWithOptions(o.mirror, log.Options{
			ReportTimestamp: true,
			Level:           o.mirrorLevel,
		})
	}

	l.Info("PORT/LOG", "LOG_FILE="+path)
	return l, nil
}

// SessionFileName returns the session log name for a start time.
func SessionFileName(t time.Time) string {
	return "log_" + t.Format(sessionTimeLayout) + ".txt"
}

func sessionFileName(t time.Time, n int) string {
	if n == 0 {
		return SessionFileName(t)
	}
	return "log_" + t.Format(sessionTimeLayout) + "_" + strconv.Itoa(n) + ".txt"
}

func createSession(logsDir string, t time.Time) (*os.File, string, error) {
	for n := 0; n < maxSessionSuffix; n++ {
		path := filepath.Join(logsDir, sessionFileName(t, n))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("logging: open session log: %w", err)
		}
		return f, path, nil
	}
	return nil, "", fmt.Errorf("logging: open session log: %d logs already start at %s", maxSessionSuffix, t.Format(sessionTimeLayout))
}

// Path returns the session log path.
func (l *FileLogger) Path() string {
	return l.path
}

// Info implements Logger.
func (l *FileLogger) Info(tag, msg string) { l.write(LevelInfo, tag, msg) }

// Warn implements Logger.
func (l *FileLogger) Warn(tag, msg string) { l.write(LevelWarn, tag, msg) }

// Error implements Logger.
func (l *FileLogger) Error(tag, msg string) { l.write(LevelError, tag, msg) }

// Exception implements Logger.
func (l *FileLogger) Exception(tag string, err error, context string) {
	if err == nil {
		l.Error(tag, FormatException(nil, context))
		return
	}
	l.write(LevelException, tag, FormatException(err, context))
}

func (l *FileLogger) write(level Level, tag, msg string) {
	line := FormatLine(l.now(), level, tag, msg) + "\n"

	l.mu.Lock()
	if l.file != nil {
		// a failing session file must never take the caller down
		_, _ = io.WriteString(l.file, line)
	}
	l.mu.Unlock()

	if l.mirror == nil {
		return
	}
	m := l.mirror.WithPrefix(tag)
	msg = truncateMirror(msg)
	switch level {
	case LevelError, LevelException:
		m.Error(msg)
	case LevelWarn:
		m.Warn(msg)
	default:
		m.Info(msg)
	}
}

// truncateMirror cuts msg to maxMirrorLen bytes on a rune boundary.
func truncateMirror(msg string) string {
	if len(msg) <= maxMirrorLen {
		return msg
	}
	cut := maxMirrorLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut] + "...(truncated)"
}

// Flush forces the session file to stable storage.
func (l *FileLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Sync()
}

// Close flushes and closes the session file. Later writes are dropped.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	_ = l.file.Sync()
	err := l.file.Close()
	l.file = nil
	return err
}
