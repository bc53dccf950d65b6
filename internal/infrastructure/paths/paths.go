// Package paths defines the directory roots the port layer works in.
//
// A Set is built once at process start (desktop flag, environment or the
// path handed in by the mobile host), ensured on disk, and then passed by
// value to every component that needs it.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Directory names under the base data root.
const (
	ContentDir = "Content"
	LogsDir    = "Logs"
	SaveDir    = "Save"
)

// EnvBase overrides the default base data root on desktop.
const EnvBase = "MGPORT_DATA"

// Set holds the four absolute roots used by the port layer.
type Set struct {
	Base    string
	Content string
	Logs    string
	Save    string
}

// FromBase constructs the standard layout under a base data root.
func FromBase(base string) (Set, error) {
	if base == "" {
		return Set{}, errors.New("paths: base data root is empty")
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return Set{}, fmt.Errorf("paths: resolve %s: %w", base, err)
	}
	return Set{
		Base:    abs,
		Content: filepath.Join(abs, ContentDir),
		Logs:    filepath.Join(abs, LogsDir),
		Save:    filepath.Join(abs, SaveDir),
	}, nil
}

// DefaultBase returns the base data root for desktop hosts.
// MGPORT_DATA wins over the per-user config directory.
func DefaultBase() string {
	if env := os.Getenv(EnvBase); env != "" {
		return env
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "mgport")
	}
	if runtime.GOOS == "windows" {
		return `C:\ProgramData\mgport`
	}
	return filepath.Join(".", "var", "mgport")
}

// Dirs returns the roots in creation order.
func (s Set) Dirs() []string {
	return []string{s.Base, s.Content, s.Logs, s.Save}
}

// Ensure creates every root and checks that Save and Logs are writable.
func Ensure(s Set) error {
	for _, d := range s.Dirs() {
		if d == "" {
			return errors.New("paths: set has an empty root")
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("paths: create %s: %w", d, err)
		}
	}
	for _, d := range []string{s.Save, s.Logs} {
		if err := probeWritable(d); err != nil {
			return err
		}
	}
	return nil
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("paths: %s is not writable: %w", dir, err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
