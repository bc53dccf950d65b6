// Package logging provides the port layer's session log.
//
// Every line written to the session file has the form
//
//	HH:mm:ss.fff | LEVEL | TAG | message
//
// and is mirrored to a charmbracelet logger (stderr on desktop). Fatal
// errors additionally go to the running error log, see ErrorLog.
package logging

import (
	"fmt"
	"strings"
	"time"
)

// Level is the severity of a log line.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
	LevelException
)

// String returns the level as written in the session file
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelException:
		return "EX"
	default:
		return "UNKNOWN"
	}
}

// Logger is the tagged logging capability injected into every component.
type Logger interface {
	Info(tag, msg string)
	Warn(tag, msg string)
	Error(tag, msg string)
	// Exception logs err with an optional context prefix.
	Exception(tag string, err error, context string)
}

// Flusher is implemented by loggers backed by a file.
type Flusher interface {
	Flush() error
}

const lineTimeLayout = "15:04:05.000"

// FormatLine renders one session log line without the trailing newline.
func FormatLine(t time.Time, level Level, tag, msg string) string {
	return fmt.Sprintf("%s | %s | %s | %s", t.Format(lineTimeLayout), level, tag, msg)
}

// FormatException renders the message part of an exception line.
func FormatException(err error, context string) string {
	if err == nil {
		if context == "" {
			return "Exception(nil)"
		}
		return context
	}
	var b strings.Builder
	if context != "" {
		b.WriteString(context)
		b.WriteString(" | ")
	}
	fmt.Fprintf(&b, "%s: %s", TypeName(err), err.Error())
	return b.String()
}

// TypeName returns the dynamic type of err as shown on screens and logs.
func TypeName(err error) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

// Nop discards everything.
type Nop struct{}

func (Nop) Info(string, string)             {}
func (Nop) Warn(string, string)             {}
func (Nop) Error(string, string)            {}
func (Nop) Exception(string, error, string) {}
