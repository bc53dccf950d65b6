// Package fsys is the filesystem capability used by the port layer.
//
// Callers keep using the engine's logical paths ("Content/...", "Save/...")
// and the FileSystem decides where they live. Every operation resolves its
// path again, so a reconfigured Set takes effect immediately.
package fsys

import (
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/younwookim/mgport/internal/infrastructure/paths"
)

// Logical root markers. Matching is case-insensitive.
const (
	MarkerContent = "Content"
	MarkerSave    = "Save"
	MarkerSaves   = "Saves"
)

// File is a writable handle returned by OpenWrite.
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// FileSystem is the capability every platform target implements:
// desktop and mobile use Redirect, tests use Mem.
type FileSystem interface {
	// Resolve maps a logical path to a concrete one.
	Resolve(path string) string

	DirExists(path string) bool
	FileExists(path string) bool

	// ReadDir lists a directory sorted by name.
	ReadDir(path string) ([]fs.DirEntry, error)

	// FindFiles returns the resolved paths of files under path whose name
	// ends with ext (case-insensitive). An empty ext matches any file.
	FindFiles(path, ext string, recursive bool) ([]string, error)

	OpenRead(path string) (io.ReadCloser, error)
	ReadFile(path string) ([]byte, error)

	// OpenWrite creates missing parent directories first. With overwrite
	// false it fails when the file already exists.
	OpenWrite(path string, overwrite bool) (File, error)

	// WriteFile creates missing parent directories first.
	WriteFile(path string, data []byte) error

	CreateDir(path string) error

	// Move creates missing parent directories of dst. With overwrite true
	// an existing dst is deleted before the move.
	Move(src, dst string, overwrite bool) error

	Remove(path string) error
}

// Resolve applies the logical path rules to p:
//   - absolute paths pass through unchanged
//   - "Content" and "Content/..." go under set.Content
//   - "Save", "Saves" and their children go under set.Save
//   - anything else goes under set.Base
func Resolve(set paths.Set, p string) string {
	if p == "" {
		return p
	}
	if filepath.IsAbs(p) {
		return p
	}

	norm := strings.ReplaceAll(p, `\`, "/")

	if rel, ok := stripMarker(norm, MarkerContent); ok {
		return join(set.Content, rel)
	}
	if rel, ok := stripMarker(norm, MarkerSave); ok {
		return join(set.Save, rel)
	}
	if rel, ok := stripMarker(norm, MarkerSaves); ok {
		return join(set.Save, rel)
	}
	return join(set.Base, norm)
}

// stripMarker reports whether norm is marker or starts with marker + "/",
// and returns the remainder.
func stripMarker(norm, marker string) (string, bool) {
	if strings.EqualFold(norm, marker) {
		return "", true
	}
	n := len(marker)
	if len(norm) > n && norm[n] == '/' && strings.EqualFold(norm[:n], marker) {
		return norm[n+1:], true
	}
	return "", false
}

func join(root, rel string) string {
	if rel == "" {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

func hasExt(name, ext string) bool {
	if ext == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
}
