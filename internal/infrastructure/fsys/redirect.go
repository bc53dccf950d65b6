package fsys

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/younwookim/mgport/internal/infrastructure/paths"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Redirect is the OS-backed FileSystem.
type Redirect struct {
	set paths.Set
}

// NewRedirect creates a FileSystem rooted at set.
func NewRedirect(set paths.Set) *Redirect {
	return &Redirect{set: set}
}

// Resolve implements FileSystem.
func (r *Redirect) Resolve(path string) string {
	return Resolve(r.set, path)
}

// DirExists implements FileSystem.
func (r *Redirect) DirExists(path string) bool {
	info, err := os.Stat(r.Resolve(path))
	return err == nil && info.IsDir()
}

// FileExists implements FileSystem.
func (r *Redirect) FileExists(path string) bool {
	info, err := os.Stat(r.Resolve(path))
	return err == nil && info.Mode().IsRegular()
}

// ReadDir implements FileSystem.
func (r *Redirect) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(r.Resolve(path))
}

// FindFiles implements FileSystem.
func (r *Redirect) FindFiles(path, ext string, recursive bool) ([]string, error) {
	root := r.Resolve(path)

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		var files []string
		for _, e := range entries {
			if e.Type().IsRegular() && hasExt(e.Name(), ext) {
				files = append(files, filepath.Join(root, e.Name()))
			}
		}
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && hasExt(d.Name(), ext) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// OpenRead implements FileSystem.
func (r *Redirect) OpenRead(path string) (io.ReadCloser, error) {
	return os.Open(r.Resolve(path))
}

// ReadFile implements FileSystem.
func (r *Redirect) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(r.Resolve(path))
}

// OpenWrite implements FileSystem.
func (r *Redirect) OpenWrite(path string, overwrite bool) (File, error) {
	p := r.Resolve(path)
	if err := ensureParent(p); err != nil {
		return nil, err
	}
	flag := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flag |= os.O_TRUNC
	} else {
		flag |= os.O_EXCL
	}
	f, err := os.OpenFile(p, flag, filePerm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// WriteFile implements FileSystem.
func (r *Redirect) WriteFile(path string, data []byte) error {
	p := r.Resolve(path)
	if err := ensureParent(p); err != nil {
		return err
	}
	return os.WriteFile(p, data, filePerm)
}

// CreateDir implements FileSystem.
func (r *Redirect) CreateDir(path string) error {
	return os.MkdirAll(r.Resolve(path), dirPerm)
}

// Move implements FileSystem.
func (r *Redirect) Move(src, dst string, overwrite bool) error {
	s := r.Resolve(src)
	d := r.Resolve(dst)
	if err := ensureParent(d); err != nil {
		return err
	}

	if _, err := os.Stat(d); err == nil {
		if !overwrite {
			return &fs.PathError{Op: "move", Path: d, Err: fs.ErrExist}
		}
		if err := os.Remove(d); err != nil {
			return fmt.Errorf("fsys: remove existing %s: %w", d, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return os.Rename(s, d)
}

// Remove implements FileSystem.
func (r *Redirect) Remove(path string) error {
	return os.Remove(r.Resolve(path))
}

func ensureParent(p string) error {
	dir := filepath.Dir(p)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("fsys: create parent %s: %w", dir, err)
	}
	return nil
}
