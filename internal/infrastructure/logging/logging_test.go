package logging

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func fixedClock() time.Time { return fixedTime }

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelException, "EX"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestFormatLine(t *testing.T) {
	line := FormatLine(fixedTime, LevelWarn, "PORT/BOOT", "CONTENT_STILL_INVALID_AFTER_RETRY")
	assert.Equal(t, "09:26:53.589 | WARN | PORT/BOOT | CONTENT_STILL_INVALID_AFTER_RETRY", line)
}

func TestFormatException(t *testing.T) {
	err := &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}

	assert.Equal(t, "fs.PathError: open /x: file does not exist", FormatException(err, ""))
	assert.Equal(t, "load | fs.PathError: open /x: file does not exist", FormatException(err, "load"))
	assert.Equal(t, "Exception(nil)", FormatException(nil, ""))
	assert.Equal(t, "ctx", FormatException(nil, "ctx"))
}

func TestFileLogger_WritesSessionFile(t *testing.T) {
	dir := t.TempDir()
	var mirror bytes.Buffer

	l, err := NewFileLogger(dir, WithClock(fixedClock), WithMirror(&mirror))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "log_2026-03-14_09-26-53.txt"), l.Path())

	l.Info("PORT/TEST", "hello")
	l.Warn("PORT/TEST", "careful")
	l.Error("PORT/TEST", "broken")
	l.Exception("PORT/TEST", errors.New("boom"), "ctx")
	require.NoError(t, l.Flush())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 5)

	assert.Equal(t, "09:26:53.589 | INFO | PORT/LOG | LOG_FILE="+l.Path(), lines[0])
	assert.Equal(t, "09:26:53.589 | INFO | PORT/TEST | hello", lines[1])
	assert.Equal(t, "09:26:53.589 | WARN | PORT/TEST | careful", lines[2])
	assert.Equal(t, "09:26:53.589 | ERROR | PORT/TEST | broken", lines[3])
	assert.Equal(t, "09:26:53.589 | EX | PORT/TEST | ctx | errors.errorString: boom", lines[4])

	assert.Contains(t, mirror.String(), "PORT/TEST")
	assert.Contains(t, mirror.String(), "careful")
}

func TestFileLogger_SameSecondKeepsEarlierLog(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileLogger(dir, WithClock(fixedClock), WithMirror(nil))
	require.NoError(t, err)
	first.Info("PORT/TEST", "first session")
	require.NoError(t, first.Close())

	second, err := NewFileLogger(dir, WithClock(fixedClock), WithMirror(nil))
	require.NoError(t, err)
	second.Info("PORT/TEST", "second session")
	require.NoError(t, second.Close())

	third, err := NewFileLogger(dir, WithClock(fixedClock), WithMirror(nil))
	require.NoError(t, err)
	require.NoError(t, third.Close())

	assert.Equal(t, filepath.Join(dir, "log_2026-03-14_09-26-53.txt"), first.Path())
	assert.Equal(t, filepath.Join(dir, "log_2026-03-14_09-26-53_1.txt"), second.Path())
	assert.Equal(t, filepath.Join(dir, "log_2026-03-14_09-26-53_2.txt"), third.Path())

	data, err := os.ReadFile(first.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "first session")
	assert.NotContains(t, string(data), "second session")
}

func TestTruncateMirror(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"short", "hello", "hello"},
		{"ascii", strings.Repeat("x", maxMirrorLen+10), strings.Repeat("x", maxMirrorLen) + "...(truncated)"},
		// "é" is two bytes, so the limit lands inside a rune
		{"multibyte", "x" + strings.Repeat("é", maxMirrorLen), "x" + strings.Repeat("é", (maxMirrorLen-1)/2) + "...(truncated)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateMirror(tt.msg)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestFileLogger_MirrorTruncatesLongMessages(t *testing.T) {
	var mirror bytes.Buffer
	l, err := NewFileLogger(t.TempDir(), WithMirror(&mirror))
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	l.Info("PORT/TEST", strings.Repeat("x", 5000))
	assert.Contains(t, mirror.String(), "...(truncated)")

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), strings.Repeat("x", 5000))
}

func TestFileLogger_MirrorLevel(t *testing.T) {
	var mirror bytes.Buffer
	l, err := NewFileLogger(t.TempDir(), WithMirror(&mirror), WithMirrorLevel("warn"))
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	l.Info("PORT/TEST", "quiet")
	l.Warn("PORT/TEST", "loud")

	assert.NotContains(t, mirror.String(), "quiet")
	assert.Contains(t, mirror.String(), "loud")
}

func TestFileLogger_ConcurrentLinesStayWhole(t *testing.T) {
	l, err := NewFileLogger(t.TempDir(), WithMirror(nil))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Info("PORT/TEST", fmt.Sprintf("worker-%d line-%d", i, j))
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	lineRE := regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{3} \| INFO \| PORT/(TEST|LOG) \| .+$`)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 401)
	for _, line := range lines {
		assert.Regexp(t, lineRE, line)
	}
}

func TestFileLogger_WriteAfterCloseIsDropped(t *testing.T) {
	l, err := NewFileLogger(t.TempDir(), WithMirror(nil))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	assert.NotPanics(t, func() { l.Info("PORT/TEST", "late") })
	assert.NoError(t, l.Flush())
	assert.NoError(t, l.Close())
}

func TestLineWriter(t *testing.T) {
	c := NewCapture()
	w := NewLineWriter(c, "PORT/CONSOLE", false)

	_, err := w.Write([]byte("first\nsec"))
	require.NoError(t, err)
	_, err = w.Write([]byte("ond\r\nthird"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	entries := c.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Level: LevelInfo, Tag: "PORT/CONSOLE", Message: "first"}, entries[0])
	assert.Equal(t, "second", entries[1].Message)
	assert.Equal(t, "third", entries[2].Message)
}

func TestLineWriter_Error(t *testing.T) {
	c := NewCapture()
	w := NewLineWriter(c, "PORT/CONSOLE", true)

	_, err := w.Write([]byte("bad\n"))
	require.NoError(t, err)
	assert.True(t, c.Contains(LevelError, "bad"))
}

func TestErrorLog_Report(t *testing.T) {
	dir := t.TempDir()
	c := NewCapture()
	e := NewErrorLog(dir, c)
	e.now = fixedClock

	inner := errors.New("disk full")
	e.Report("PORT/SAVE", "write 0", fmt.Errorf("save failed: %w", inner), []byte("goroutine 1 [running]:\nmain.main()\n"))
	e.Report("PORT/SAVE", "", errors.New("second"), nil)
	e.Report("PORT/SAVE", "", nil, nil)

	assert.Equal(t, 2, e.Count())
	assert.Equal(t, 2, c.Count(LevelException), "one exception line per block")
	assert.True(t, c.Contains(LevelException, "write 0 | fmt.wrapError: save failed"))
	assert.Equal(t, "PORT/SAVE", c.Entries()[0].Tag)

	data, err := os.ReadFile(filepath.Join(dir, ErrorLogName))
	require.NoError(t, err)
	text := string(data)

	expectedFirst := strings.Join([]string{
		errorRule,
		"2026-03-14 09:26:53.589",
		"fmt.wrapError: save failed: disk full",
		"goroutine 1 [running]:",
		"main.main()",
		"---- INNER ----",
		"errors.errorString: disk full",
		errorRule,
	}, "\n") + "\n"
	assert.True(t, strings.HasPrefix(text, expectedFirst), text)
	assert.Contains(t, text, "errors.errorString: second\n")
	assert.Equal(t, 4, strings.Count(text, errorRule))
}

func TestErrorLog_Clear(t *testing.T) {
	dir := t.TempDir()
	e := NewErrorLog(dir, nil)
	e.Report("PORT/TEST", "", errors.New("x"), nil)

	require.NoError(t, e.Clear())
	data, err := os.ReadFile(e.Path())
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReportPanic(t *testing.T) {
	dir := t.TempDir()
	c := NewCapture()
	errs := NewErrorLog(dir, c)
	SetCrashLogger(c, errs)
	defer SetCrashLogger(nil, nil)

	err := ReportPanic("PORT/TEST", "kaboom", []byte("stack here"))

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
	assert.True(t, c.Contains(LevelException, "unhandled panic"))
	assert.Equal(t, 1, c.Count(LevelException), "panic logged once")
	assert.Equal(t, 1, errs.Count())

	data, readErr := os.ReadFile(errs.Path())
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "stack here")
}

func TestRecover_Repanics(t *testing.T) {
	c := NewCapture()
	SetCrashLogger(c, nil)
	defer SetCrashLogger(nil, nil)

	assert.PanicsWithValue(t, "again", func() {
		defer Recover("PORT/TEST")
		panic("again")
	})
	assert.True(t, c.Contains(LevelException, "panic: again"))
}

func TestPanicError_Unwrap(t *testing.T) {
	assert.ErrorIs(t, &PanicError{Value: fs.ErrClosed}, fs.ErrClosed)
	assert.Nil(t, (&PanicError{Value: 3}).Unwrap())
}

func TestArchiveOld(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"log_2026-01-01_10-00-00.txt",
		"log_2026-01-02_10-00-00.txt",
		"log_2026-01-03_10-00-00.txt",
		"log_2026-01-04_10-00-00.txt",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("body of "+n), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ErrorLogName), []byte("keep me"), 0o644))

	n, err := ArchiveOld(dir, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, name := range names[:2] {
		_, statErr := os.Stat(filepath.Join(dir, name))
		assert.ErrorIs(t, statErr, fs.ErrNotExist)

		text, readErr := ReadArchived(filepath.Join(dir, name+ArchiveSuffix))
		require.NoError(t, readErr)
		assert.Equal(t, "body of "+name, string(text))
	}
	for _, name := range names[2:] {
		_, statErr := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, statErr)
	}
	_, err = os.Stat(filepath.Join(dir, ErrorLogName))
	assert.NoError(t, err)

	// second pass has nothing left to do
	n, err = ArchiveOld(dir, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestArchiveOld_AlwaysKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log_2026-01-01_10-00-00.txt"), nil, 0o644))

	n, err := ArchiveOld(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	assert.NotPanics(t, func() {
		l.Info("a", "b")
		l.Exception("a", errors.New("b"), "")
	})
}
