package boot

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/mgport/internal/application/content"
	"github.com/younwookim/mgport/internal/application/state"
	"github.com/younwookim/mgport/internal/application/system"
	"github.com/younwookim/mgport/internal/infrastructure/fsys"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
	"github.com/younwookim/mgport/internal/infrastructure/paths"
)

const tick = 1.0 / 60.0

var (
	retry = system.InputState{Retry: true}
	exit  = system.InputState{Exit: true}
	hold  = system.InputState{Hold: true}
	idle  = system.InputState{}
)

func memSet() paths.Set {
	return paths.Set{
		Base:    filepath.FromSlash("/data"),
		Content: filepath.FromSlash("/data/Content"),
		Logs:    filepath.FromSlash("/data/Logs"),
		Save:    filepath.FromSlash("/data/Save"),
	}
}

func installContent(t *testing.T, fs fsys.FileSystem) {
	t.Helper()
	require.NoError(t, fs.WriteFile("Content/Dialog/English.txt", []byte("hello")))
	require.NoError(t, fs.WriteFile("Content/Effects/Glitch.xnb", []byte{1}))
	require.NoError(t, fs.WriteFile("Content/Graphics/Atlases/Gameplay.meta", []byte{1}))
}

func newManager(t *testing.T, opts Options) (*Manager, *fsys.Mem, *logging.Capture) {
	t.Helper()
	mem := fsys.NewMem(memSet())
	log := logging.NewCapture()
	return New(memSet(), mem, log, opts), mem, log
}

func TestNew_StartsContentInvalidWithoutValidating(t *testing.T) {
	calls := 0
	m, _, _ := newManager(t, Options{Validate: func(paths.Set, fsys.FileSystem, bool) content.Report {
		calls++
		return content.Report{OK: true, Summary: content.SummaryOK}
	}})

	assert.Equal(t, state.BootContentInvalid, m.State())
	assert.True(t, m.IsBlocking())
	assert.Equal(t, content.SummaryPending, m.Report().Summary)
	assert.Zero(t, calls)
}

func TestUpdate_FirstValidationSucceeds(t *testing.T) {
	m, mem, log := newManager(t, Options{})
	installContent(t, mem)

	require.NoError(t, m.Update(tick, idle))

	assert.Equal(t, state.BootRunning, m.State())
	assert.False(t, m.IsBlocking())
	assert.True(t, m.Report().OK)
	assert.True(t, log.Contains(logging.LevelInfo, "CONTENT_OK_AFTER_RETRY"))
}

func TestUpdate_FirstValidationRunsOnce(t *testing.T) {
	calls := 0
	m, _, _ := newManager(t, Options{Validate: func(set paths.Set, fs fsys.FileSystem, audio bool) content.Report {
		calls++
		return content.Validate(set, fs, audio)
	}})

	for i := 0; i < 10; i++ {
		require.NoError(t, m.Update(tick, idle))
	}

	assert.Equal(t, 1, calls)
	assert.Equal(t, state.BootContentInvalid, m.State())
	assert.Equal(t, content.SummaryMissing, m.Report().Summary)
}

func TestUpdate_RetryAfterFixingContent(t *testing.T) {
	m, mem, log := newManager(t, Options{})

	require.NoError(t, m.Update(tick, idle))
	require.Equal(t, state.BootContentInvalid, m.State())

	require.NoError(t, m.Update(tick, retry))
	assert.Equal(t, state.BootContentInvalid, m.State())
	assert.True(t, log.Contains(logging.LevelWarn, "CONTENT_STILL_INVALID_AFTER_RETRY"))

	installContent(t, mem)
	require.NoError(t, m.Update(tick, retry))
	assert.Equal(t, state.BootRunning, m.State())
}

func TestUpdate_ExitFromErrorScreen(t *testing.T) {
	m, _, log := newManager(t, Options{})

	err := m.Update(tick, exit)

	assert.ErrorIs(t, err, ebiten.Termination)
	assert.True(t, log.Contains(logging.LevelWarn, "USER_EXIT_FROM_ERROR_SCREEN"))
}

func TestUpdate_RunningIgnoresIntents(t *testing.T) {
	m, mem, _ := newManager(t, Options{})
	installContent(t, mem)
	require.NoError(t, m.Update(tick, idle))
	require.Equal(t, state.BootRunning, m.State())

	// breaking the install while running is only noticed on the next boot
	require.NoError(t, mem.Remove("Content/Effects/Glitch.xnb"))

	for _, in := range []system.InputState{retry, exit, hold, {Retry: true, Exit: true, Hold: true, Save: true}} {
		assert.NoError(t, m.Update(tick, in))
		assert.Equal(t, state.BootRunning, m.State())
	}
	assert.True(t, m.TryRevalidate())
	assert.Equal(t, state.BootRunning, m.State())
}

func TestEnterFatal_FromEveryState(t *testing.T) {
	cause := errors.New("gpu lost")

	t.Run("ContentInvalid", func(t *testing.T) {
		m, _, _ := newManager(t, Options{})
		m.EnterFatal("boom", cause)
		assert.Equal(t, state.BootFatal, m.State())
	})

	t.Run("Running", func(t *testing.T) {
		m, mem, log := newManager(t, Options{})
		installContent(t, mem)
		require.NoError(t, m.Update(tick, idle))

		m.EnterFatal("boom", cause)

		assert.Equal(t, state.BootFatal, m.State())
		msg, err := m.Fatal()
		assert.Equal(t, "boom", msg)
		assert.Equal(t, cause, err)
		assert.True(t, log.Contains(logging.LevelError, "FATAL: boom"))
		assert.True(t, log.Contains(logging.LevelException, "gpu lost"))
	})

	t.Run("default message", func(t *testing.T) {
		m, _, _ := newManager(t, Options{})
		m.EnterFatal("", nil)
		msg, err := m.Fatal()
		assert.Equal(t, DefaultFatalMessage, msg)
		assert.NoError(t, err)
	})
}

func TestFatal_IsAbsorbing(t *testing.T) {
	m, mem, log := newManager(t, Options{})
	installContent(t, mem)
	m.EnterFatal("boom", nil)

	for _, in := range []system.InputState{idle, retry, hold, retry} {
		require.NoError(t, m.Update(1, in))
		assert.Equal(t, state.BootFatal, m.State())
	}
	assert.False(t, m.TryRevalidate())
	assert.Equal(t, state.BootFatal, m.State())

	err := m.Update(tick, exit)
	assert.ErrorIs(t, err, ebiten.Termination)
	assert.True(t, log.Contains(logging.LevelWarn, "USER_EXIT_FROM_FATAL_SCREEN"))
}

func TestTryRevalidate_ValidatorPanicGoesFatal(t *testing.T) {
	m, _, log := newManager(t, Options{Validate: func(paths.Set, fsys.FileSystem, bool) content.Report {
		panic("disk exploded")
	}})

	assert.NotPanics(t, func() {
		assert.NoError(t, m.Update(tick, idle))
	})

	assert.Equal(t, state.BootFatal, m.State())
	msg, err := m.Fatal()
	assert.Equal(t, "Falha ao validar Content", msg)
	var pe *logging.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "disk exploded", pe.Value)
	assert.True(t, log.Contains(logging.LevelException, "content validation"))
	assert.Equal(t, 1, log.Count(logging.LevelException), "panic logged once")
	assert.True(t, log.Contains(logging.LevelError, "FATAL: Falha ao validar Content"))
}

func TestEnterFatal_LogsCauseOnce(t *testing.T) {
	tests := []struct {
		name       string
		enter      func(m *Manager, msg string, cause error)
		cause      error
		exceptions int
	}{
		{"cause logged", (*Manager).EnterFatal, errors.New("boom"), 1},
		{"no cause", (*Manager).EnterFatal, nil, 0},
		{"already reported", (*Manager).EnterFatalReported, errors.New("boom"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, log := newManager(t, Options{})
			tt.enter(m, "falhou", tt.cause)

			assert.Equal(t, state.BootFatal, m.State())
			msg, err := m.Fatal()
			assert.Equal(t, "falhou", msg)
			assert.Equal(t, tt.cause, err)
			assert.Equal(t, tt.exceptions, log.Count(logging.LevelException))
			assert.Equal(t, 1, log.Count(logging.LevelError))
		})
	}
}

func TestTryRevalidate_ReplacesReport(t *testing.T) {
	reports := []content.Report{
		{Summary: content.SummaryIncomplete, Problems: []string{"a", "b"}},
		{Summary: content.SummaryIncomplete, Problems: []string{"c"}},
	}
	i := 0
	m, _, log := newManager(t, Options{Validate: func(paths.Set, fsys.FileSystem, bool) content.Report {
		r := reports[i]
		i++
		return r
	}})

	assert.False(t, m.TryRevalidate())
	assert.Equal(t, []string{"a", "b"}, m.Report().Problems)
	assert.False(t, m.TryRevalidate())
	assert.Equal(t, []string{"c"}, m.Report().Problems)
	assert.True(t, log.Contains(logging.LevelWarn, "PROBLEM: c"))
}

func TestTryRevalidate_PassesRequireAudio(t *testing.T) {
	var got bool
	m, _, _ := newManager(t, Options{RequireAudio: true, Validate: func(_ paths.Set, _ fsys.FileSystem, audio bool) content.Report {
		got = audio
		return content.Report{OK: true, Summary: content.SummaryOK}
	}})

	require.True(t, m.TryRevalidate())
	assert.True(t, got)
}

func TestUpdate_HoldTogglesDiagnostics(t *testing.T) {
	m, _, log := newManager(t, Options{HoldToggle: time.Second})

	// 0.5s held then released resets the accumulator
	for i := 0; i < 30; i++ {
		require.NoError(t, m.Update(tick, hold))
	}
	require.NoError(t, m.Update(tick, idle))
	for i := 0; i < 30; i++ {
		require.NoError(t, m.Update(tick, hold))
	}
	assert.False(t, m.Diagnostics())

	// a sustained hold flips it once per threshold
	for i := 0; i < 31; i++ {
		require.NoError(t, m.Update(tick, hold))
	}
	assert.True(t, m.Diagnostics())
	assert.True(t, log.Contains(logging.LevelInfo, "DIAG_MODE=ON"))

	for i := 0; i < 61; i++ {
		require.NoError(t, m.Update(tick, hold))
	}
	assert.False(t, m.Diagnostics())
	assert.True(t, log.Contains(logging.LevelInfo, "DIAG_MODE=OFF"))
}

func TestUpdate_HoldWorksInEveryState(t *testing.T) {
	m, _, _ := newManager(t, Options{})
	m.EnterFatal("boom", nil)

	require.NoError(t, m.Update(2.5, hold))
	assert.True(t, m.Diagnostics())
}

func TestEnterFatal_Concurrent(t *testing.T) {
	m, mem, _ := newManager(t, Options{})
	installContent(t, mem)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.EnterFatal(fmt.Sprintf("worker %d", i), nil)
		}(i)
	}
	for i := 0; i < 20; i++ {
		_ = m.Update(tick, retry)
	}
	wg.Wait()

	assert.Equal(t, state.BootFatal, m.State())
	msg, _ := m.Fatal()
	assert.True(t, strings.HasPrefix(msg, "worker "))
}

func TestContentMissingLines(t *testing.T) {
	problems := make([]string, 12)
	for i := range problems {
		problems[i] = fmt.Sprintf("problem %d", i)
	}

	lines := ContentMissingLines("/data/Content", problems, 10)

	assert.Equal(t, "ARQUIVOS DO JOGO NAO ENCONTRADOS", lines[0])
	assert.Contains(t, lines, "/data/Content")
	assert.Contains(t, lines, "- problem 0")
	assert.Contains(t, lines, "- problem 9")
	assert.NotContains(t, lines, "- problem 10")
	assert.Contains(t, lines, Ellipsis)
	assert.Equal(t, "START/ENTER: TENTAR NOVAMENTE | BACK/ESC: SAIR", lines[len(lines)-1])
}

func TestContentMissingLines_NoEllipsisWhenAllFit(t *testing.T) {
	lines := ContentMissingLines("", []string{"a", "b"}, 2)

	assert.Contains(t, lines, "<ContentPath>")
	assert.Contains(t, lines, "- b")
	assert.NotContains(t, lines, Ellipsis)
}

func TestFatalLines(t *testing.T) {
	lines := FatalLines("Falha ao validar Content", &logging.PanicError{Value: "x"})

	assert.Equal(t, []string{
		"ERRO FATAL",
		"",
		"Falha ao validar Content",
		"logging.PanicError: panic: x",
		"",
		"BACK/ESC: SAIR",
	}, lines)

	assert.Equal(t, DefaultFatalMessage, FatalLines("", nil)[2])
}

func TestDiagnosticsLines(t *testing.T) {
	lines := DiagnosticsLines(memSet(), "INCOMPLETO", 3, 2*time.Second)

	assert.Equal(t, "DIAGNOSTICO", lines[0])
	assert.Equal(t, "BASE: "+memSet().Base, lines[1])
	assert.Equal(t, "CONTENT: "+memSet().Content, lines[2])
	assert.Equal(t, "LOGS: "+memSet().Logs, lines[3])
	assert.Equal(t, "SAVE: "+memSet().Save, lines[4])
	assert.Equal(t, "CONTENT_STATUS: INCOMPLETO", lines[5])
	assert.Equal(t, "PROBLEMS: 3", lines[6])
	assert.Equal(t, "HOLD START/ENTER 2s PARA TOGGLE", lines[7])
}

func TestDraw(t *testing.T) {
	m, _, _ := newManager(t, Options{})
	img := ebiten.NewImage(640, 360)

	assert.NotPanics(t, func() {
		m.Draw(img)
		require.NoError(t, m.Update(2.5, hold))
		m.Draw(img)
		m.EnterFatal("boom", errors.New("cause"))
		m.Draw(img)
	})
}
