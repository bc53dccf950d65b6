package logging

import (
	"strings"
	"sync"
)

// Entry is one line recorded by Capture.
type Entry struct {
	Level   Level
	Tag     string
	Message string
}

// Capture records lines in memory. Tests use it to assert on what a
// component logged.
type Capture struct {
	mu      sync.Mutex
	entries []Entry
}

// NewCapture creates an empty Capture.
func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) add(level Level, tag, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Level: level, Tag: tag, Message: msg})
}

// Info implements Logger.
func (c *Capture) Info(tag, msg string) { c.add(LevelInfo, tag, msg) }

// Warn implements Logger.
func (c *Capture) Warn(tag, msg string) { c.add(LevelWarn, tag, msg) }

// Error implements Logger.
func (c *Capture) Error(tag, msg string) { c.add(LevelError, tag, msg) }

// Exception implements Logger.
func (c *Capture) Exception(tag string, err error, context string) {
	c.add(LevelException, tag, FormatException(err, context))
}

// Entries returns a copy of everything recorded so far.
func (c *Capture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// Contains reports whether a line at level has a message containing substr.
func (c *Capture) Contains(level Level, substr string) bool {
	for _, e := range c.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// Count returns how many lines were recorded at level.
func (c *Capture) Count(level Level) int {
	n := 0
	for _, e := range c.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}
