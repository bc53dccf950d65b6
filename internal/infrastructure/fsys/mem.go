package fsys

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/younwookim/mgport/internal/infrastructure/paths"
)

// ErrInjected is returned by Mem operations armed with FailOn.
var ErrInjected = errors.New("fsys: injected failure")

// Op names a Mem operation that can be armed to fail.
type Op int

const (
	OpRead Op = iota
	OpReadDir
	OpWrite
	OpSync
	OpMove
	OpRemove
)

// String returns the string representation of the op
func (o Op) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpReadDir:
		return "readdir"
	case OpWrite:
		return "write"
	case OpSync:
		return "sync"
	case OpMove:
		return "move"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

type fault struct {
	op     Op
	suffix string
	err    error
}

// Mem is an in-memory FileSystem for tests. It is safe for concurrent use.
type Mem struct {
	set paths.Set

	mu     sync.Mutex
	dirs   map[string]bool
	files  map[string][]byte
	faults []fault
	syncs  int
}

// NewMem creates an empty in-memory FileSystem rooted at set.
func NewMem(set paths.Set) *Mem {
	return &Mem{
		set:   set,
		dirs:  make(map[string]bool),
		files: make(map[string][]byte),
	}
}

// FailOn makes every op on a resolved path ending with suffix fail with err.
// A nil err means ErrInjected.
func (m *Mem) FailOn(op Op, suffix string, err error) {
	if err == nil {
		err = ErrInjected
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults = append(m.faults, fault{op: op, suffix: filepath.FromSlash(suffix), err: err})
}

// ClearFaults disarms every FailOn.
func (m *Mem) ClearFaults() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults = nil
}

// Syncs returns how many times a written file was synced.
func (m *Mem) Syncs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncs
}

// Resolve implements FileSystem.
func (m *Mem) Resolve(path string) string {
	return filepath.Clean(Resolve(m.set, path))
}

// DirExists implements FileSystem.
func (m *Mem) DirExists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs[m.Resolve(path)]
}

// FileExists implements FileSystem.
func (m *Mem) FileExists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[m.Resolve(path)]
	return ok
}

// ReadDir implements FileSystem.
func (m *Mem) ReadDir(path string) ([]fs.DirEntry, error) {
	p := m.Resolve(path)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failing(OpReadDir, p); err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: err}
	}
	if !m.dirs[p] {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrNotExist}
	}

	var entries []fs.DirEntry
	for d := range m.dirs {
		if d != p && filepath.Dir(d) == p {
			entries = append(entries, fs.FileInfoToDirEntry(memInfo{name: filepath.Base(d), dir: true}))
		}
	}
	for f, data := range m.files {
		if filepath.Dir(f) == p {
			entries = append(entries, fs.FileInfoToDirEntry(memInfo{name: filepath.Base(f), size: int64(len(data))}))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// FindFiles implements FileSystem.
func (m *Mem) FindFiles(path, ext string, recursive bool) ([]string, error) {
	p := m.Resolve(path)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failing(OpReadDir, p); err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: err}
	}
	if !m.dirs[p] {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrNotExist}
	}

	prefix := p + string(filepath.Separator)
	var files []string
	for f := range m.files {
		inside := filepath.Dir(f) == p
		if recursive {
			inside = strings.HasPrefix(f, prefix)
		}
		if inside && hasExt(filepath.Base(f), ext) {
			files = append(files, f)
		}
	}
	sort.Strings(files)
	return files, nil
}

// OpenRead implements FileSystem.
func (m *Mem) OpenRead(path string) (io.ReadCloser, error) {
	data, err := m.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// ReadFile implements FileSystem.
func (m *Mem) ReadFile(path string) ([]byte, error) {
	p := m.Resolve(path)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failing(OpRead, p); err != nil {
		return nil, &fs.PathError{Op: "open", Path: p, Err: err}
	}
	data, ok := m.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	return bytes.Clone(data), nil
}

// OpenWrite implements FileSystem.
func (m *Mem) OpenWrite(path string, overwrite bool) (File, error) {
	p := m.Resolve(path)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failing(OpWrite, p); err != nil {
		return nil, &fs.PathError{Op: "open", Path: p, Err: err}
	}
	if _, ok := m.files[p]; ok && !overwrite {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrExist}
	}
	m.mkdirAll(filepath.Dir(p))
	m.files[p] = nil
	return &memFile{m: m, path: p}, nil
}

// WriteFile implements FileSystem.
func (m *Mem) WriteFile(path string, data []byte) error {
	p := m.Resolve(path)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failing(OpWrite, p); err != nil {
		return &fs.PathError{Op: "write", Path: p, Err: err}
	}
	m.mkdirAll(filepath.Dir(p))
	m.files[p] = bytes.Clone(data)
	return nil
}

// CreateDir implements FileSystem.
func (m *Mem) CreateDir(path string) error {
	p := m.Resolve(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[p]; ok {
		return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
	}
	m.mkdirAll(p)
	return nil
}

// Move implements FileSystem.
func (m *Mem) Move(src, dst string, overwrite bool) error {
	s := m.Resolve(src)
	d := m.Resolve(dst)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failing(OpMove, d); err != nil {
		return &fs.PathError{Op: "move", Path: d, Err: err}
	}
	data, ok := m.files[s]
	if !ok {
		return &fs.PathError{Op: "move", Path: s, Err: fs.ErrNotExist}
	}
	m.mkdirAll(filepath.Dir(d))
	if _, exists := m.files[d]; exists {
		if !overwrite {
			return &fs.PathError{Op: "move", Path: d, Err: fs.ErrExist}
		}
		delete(m.files, d)
	}
	m.files[d] = data
	delete(m.files, s)
	return nil
}

// Remove implements FileSystem.
func (m *Mem) Remove(path string) error {
	p := m.Resolve(path)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failing(OpRemove, p); err != nil {
		return &fs.PathError{Op: "remove", Path: p, Err: err}
	}
	if _, ok := m.files[p]; ok {
		delete(m.files, p)
		return nil
	}
	if m.dirs[p] {
		for other := range m.dirs {
			if other != p && filepath.Dir(other) == p {
				return &fs.PathError{Op: "remove", Path: p, Err: errors.New("directory not empty")}
			}
		}
		for f := range m.files {
			if filepath.Dir(f) == p {
				return &fs.PathError{Op: "remove", Path: p, Err: errors.New("directory not empty")}
			}
		}
		delete(m.dirs, p)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrNotExist}
}

// mkdirAll must be called with mu held.
func (m *Mem) mkdirAll(p string) {
	for {
		m.dirs[p] = true
		parent := filepath.Dir(p)
		if parent == p {
			return
		}
		p = parent
	}
}

// failing must be called with mu held.
func (m *Mem) failing(op Op, p string) error {
	for _, f := range m.faults {
		if f.op == op && strings.HasSuffix(p, f.suffix) {
			return f.err
		}
	}
	return nil
}

type memFile struct {
	m      *Mem
	path   string
	closed bool
}

func (f *memFile) Write(b []byte) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.closed {
		return 0, fs.ErrClosed
	}
	if err := f.m.failing(OpWrite, f.path); err != nil {
		return 0, &fs.PathError{Op: "write", Path: f.path, Err: err}
	}
	f.m.files[f.path] = append(f.m.files[f.path], b...)
	return len(b), nil
}

func (f *memFile) Sync() error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.failing(OpSync, f.path); err != nil {
		return &fs.PathError{Op: "sync", Path: f.path, Err: err}
	}
	f.m.syncs++
	return nil
}

func (f *memFile) Close() error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.closed {
		return fs.ErrClosed
	}
	f.closed = true
	return nil
}

type memInfo struct {
	name string
	size int64
	dir  bool
}

func (i memInfo) Name() string { return i.name }
func (i memInfo) Size() int64  { return i.size }
func (i memInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | dirPerm
	}
	return filePerm
}
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() any           { return nil }
