// Package savestore persists named blobs with a backup-first,
// verify-before-commit protocol.
//
// A record with key k lives at <root>/k<ext> (primary) and
// <root>/<backupDir>/k<ext> (backup). Saving writes the backup, reads it back
// through the normal load path, and only then writes the primary, so the
// primary is always a copy that was loadable when it was written.
package savestore

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/younwookim/mgport/internal/infrastructure/fsys"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
)

const logTag = "PORT/SAVE"

// Defaults used by New.
const (
	DefaultRoot      = fsys.MarkerSave
	DefaultExtension = ".celeste"
	DefaultBackupDir = "Backups"
	// TempSuffix marks a write in progress. Such files are never read.
	TempSuffix = ".tmp"
)

var (
	// ErrInvalidKey is returned for keys that would escape the save root.
	ErrInvalidKey = errors.New("savestore: invalid key")
	// ErrDigestMismatch is returned when the re-read backup differs from
	// the bytes that were written.
	ErrDigestMismatch = errors.New("savestore: digest mismatch")
	// ErrEmpty is returned when a payload has no bytes.
	ErrEmpty = errors.New("savestore: empty payload")
)

// Status tells an absent record apart from one that could not be used.
type Status int

const (
	StatusFound Status = iota
	StatusAbsent
	// StatusCorrupt means the file exists but could not be read or decoded.
	StatusCorrupt
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusFound:
		return "Found"
	case StatusAbsent:
		return "Absent"
	case StatusCorrupt:
		return "Corrupt"
	default:
		return "Unknown"
	}
}

// Store owns the on-disk layout of save records.
type Store struct {
	files     fsys.FileSystem
	log       logging.Logger
	errs      *logging.ErrorLog
	root      string
	ext       string
	backupDir string
}

// Option configures a Store.
type Option func(*Store)

// WithRoot sets the logical directory holding primary records.
func WithRoot(logical string) Option {
	return func(s *Store) { s.root = logical }
}

// WithExtension sets the record file extension, including the dot.
func WithExtension(ext string) Option {
	return func(s *Store) { s.ext = ext }
}

// WithBackupDir sets the backup directory name under the root.
func WithBackupDir(name string) Option {
	return func(s *Store) { s.backupDir = name }
}

// WithErrorLog appends every failed save and load to errs.
func WithErrorLog(errs *logging.ErrorLog) Option {
	return func(s *Store) { s.errs = errs }
}

// New creates a Store on top of files. A nil log discards messages.
func New(files fsys.FileSystem, log logging.Logger, opts ...Option) *Store {
	if log == nil {
		log = logging.Nop{}
	}
	s := &Store{
		files:     files,
		log:       log,
		root:      DefaultRoot,
		ext:       DefaultExtension,
		backupDir: DefaultBackupDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the logical path of the primary record for key.
func (s *Store) Path(key string) string {
	return path.Join(s.root, key+s.ext)
}

// BackupPath returns the logical path of the backup record for key.
func (s *Store) BackupPath(key string) string {
	return path.Join(s.root, s.backupDir, key+s.ext)
}

func (s *Store) location(key string, backup bool) string {
	if backup {
		return s.BackupPath(key)
	}
	return s.Path(key)
}

// Exists reports whether the primary record for key is present.
func (s *Store) Exists(key string) bool {
	if checkKey(key) != nil {
		return false
	}
	return s.files.FileExists(s.Path(key))
}

// Delete removes the primary record. It returns false when there was
// nothing to delete or the removal failed.
func (s *Store) Delete(key string) bool {
	if !s.Exists(key) {
		return false
	}
	if err := s.files.Remove(s.Path(key)); err != nil {
		s.report(err, "Delete "+key, nil)
		return false
	}
	s.log.Info(logTag, "DELETED key="+key)
	return true
}

// Keys lists the keys with a primary record, sorted.
func (s *Store) Keys() ([]string, error) {
	if !s.files.DirExists(s.root) {
		return nil, nil
	}
	found, err := s.files.FindFiles(s.root, s.ext, false)
	if err != nil {
		return nil, fmt.Errorf("savestore: list %s: %w", s.root, err)
	}
	keys := make([]string, 0, len(found))
	for _, p := range found {
		name := baseName(p)
		if len(name) <= len(s.ext) {
			continue
		}
		keys = append(keys, name[:len(name)-len(s.ext)])
	}
	slices.Sort(keys)
	return keys, nil
}

// writeAtomic writes data to p through a synced temp sibling that
// replaces p in one move.
func (s *Store) writeAtomic(p string, data []byte) error {
	tmp := p + TempSuffix
	f, err := s.files.OpenWrite(tmp, true)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = s.files.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = s.files.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = s.files.Remove(tmp)
		return err
	}
	if err := s.files.Move(tmp, p, true); err != nil {
		_ = s.files.Remove(tmp)
		return err
	}
	return nil
}

// readRaw returns the bytes of a record. A missing file is StatusAbsent
// with a nil error.
func (s *Store) readRaw(key string, backup bool) ([]byte, Status, error) {
	if err := checkKey(key); err != nil {
		return nil, StatusCorrupt, err
	}
	p := s.location(key, backup)
	if !s.files.FileExists(p) {
		return nil, StatusAbsent, nil
	}
	data, err := s.files.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, StatusAbsent, nil
	}
	if err != nil {
		return nil, StatusCorrupt, fmt.Errorf("savestore: read %s: %w", p, err)
	}
	return data, StatusFound, nil
}

// report logs err once, through the error log when one is attached.
func (s *Store) report(err error, context string, stack []byte) {
	if s.errs != nil {
		s.errs.Report(logTag, context, err, stack)
		return
	}
	s.log.Exception(logTag, err, context)
}

func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func baseName(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return path.Base(p)
}
