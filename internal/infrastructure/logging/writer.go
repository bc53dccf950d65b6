package logging

import (
	"bytes"
	"strings"
	"sync"
)

// LineWriter turns writes into log lines, one per newline. Hosts point the
// standard library logger at it so legacy log.Printf output lands in the
// session file:
//
//	log.SetOutput(logging.NewLineWriter(logger, "PORT/CONSOLE", false))
type LineWriter struct {
	log     Logger
	tag     string
	isError bool

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLineWriter creates a LineWriter logging at Info, or at Error if isError.
func NewLineWriter(log Logger, tag string, isError bool) *LineWriter {
	return &LineWriter{log: log, tag: tag, isError: isError}
}

// Write implements io.Writer.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.emit(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Flush logs any buffered partial line.
func (w *LineWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
	return nil
}

func (w *LineWriter) emit(line string) {
	if w.isError {
		w.log.Error(w.tag, line)
		return
	}
	w.log.Info(w.tag, line)
}
