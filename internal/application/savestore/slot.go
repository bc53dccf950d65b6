package savestore

import (
	"fmt"
	"runtime/debug"

	"github.com/opencontainers/go-digest"

	"github.com/younwookim/mgport/internal/infrastructure/logging"
)

// Slot is a typed view of a Store that knows how to decode its records.
type Slot[T any] struct {
	store *Store
	codec Codec[T]
}

// NewSlot creates a Slot decoding records with codec.
func NewSlot[T any](store *Store, codec Codec[T]) *Slot[T] {
	return &Slot[T]{store: store, codec: codec}
}

// Store returns the underlying store.
func (s *Slot[T]) Store() *Store {
	return s.store
}

// Encode serializes v with the slot codec.
func (s *Slot[T]) Encode(v T) ([]byte, error) {
	return s.codec.Marshal(v)
}

// Save writes data as the record for key. It returns true only when the
// backup was written, read back and verified, and the primary was written.
// Failures are logged and never escape.
func (s *Slot[T]) Save(key string, data []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.store.report(&logging.PanicError{Value: r}, "Save "+key, debug.Stack())
			s.store.log.Warn(logTag, "SAVE_FAILED key="+key)
			ok = false
		}
	}()

	if err := s.save(key, data); err != nil {
		s.store.report(err, "Save "+key, nil)
		s.store.log.Warn(logTag, "SAVE_FAILED key="+key)
		return false
	}
	return true
}

func (s *Slot[T]) save(key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	expected := digest.FromBytes(data)

	if err := s.store.writeAtomic(s.store.BackupPath(key), data); err != nil {
		return fmt.Errorf("savestore: write backup %s: %w", key, err)
	}
	if err := s.verify(key, expected); err != nil {
		return fmt.Errorf("savestore: verify backup %s: %w", key, err)
	}
	if err := s.store.writeAtomic(s.store.Path(key), data); err != nil {
		return fmt.Errorf("savestore: write primary %s: %w", key, err)
	}

	s.store.log.Info(logTag, fmt.Sprintf("SAVE_OK key=%s bytes=%d digest=%s", key, len(data), expected.Encoded()[:12]))
	return nil
}

// verify loads the backup through the normal read and decode path and
// checks it against the digest of the bytes that were meant to be written.
func (s *Slot[T]) verify(key string, expected digest.Digest) error {
	raw, status, err := s.store.readRaw(key, true)
	if err != nil {
		return err
	}
	if status != StatusFound {
		return fmt.Errorf("backup is %s after write", status)
	}
	if _, err := s.codec.Unmarshal(raw); err != nil {
		return err
	}
	if got := expected.Algorithm().FromBytes(raw); got != expected {
		return fmt.Errorf("%w: expected %s, got %s", ErrDigestMismatch, expected, got)
	}
	return nil
}

// Load decodes the record for key. Absent and unusable records both
// return false; use Lookup to tell them apart.
func (s *Slot[T]) Load(key string, useBackup bool) (T, bool) {
	v, status := s.Lookup(key, useBackup)
	return v, status == StatusFound
}

// Lookup decodes the record for key and reports why nothing was returned.
// Read and decode failures are logged.
func (s *Slot[T]) Lookup(key string, useBackup bool) (v T, status Status) {
	defer func() {
		if r := recover(); r != nil {
			s.store.report(&logging.PanicError{Value: r}, "Load "+key, debug.Stack())
			var zero T
			v, status = zero, StatusCorrupt
		}
	}()

	raw, status, err := s.store.readRaw(key, useBackup)
	if err != nil {
		s.store.report(err, "Load "+key, nil)
		return v, StatusCorrupt
	}
	if status != StatusFound {
		return v, status
	}

	decoded, err := s.codec.Unmarshal(raw)
	if err != nil {
		s.store.report(fmt.Errorf("savestore: decode %s: %w", s.store.location(key, useBackup), err), "Load "+key, nil)
		return v, StatusCorrupt
	}
	return decoded, StatusFound
}
