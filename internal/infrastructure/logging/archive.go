package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ArchiveSuffix is appended to session logs compressed by ArchiveOld.
const ArchiveSuffix = ".zst"

// ArchiveOld keeps the newest keep session logs in logsDir as text and
// compresses the older ones to log_<ts>.txt.zst. It returns how many logs
// were compressed. Session names sort by start time. At least one log is
// always kept so the running session is never touched.
func ArchiveOld(logsDir string, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	entries, err := os.ReadDir(logsDir)
	if err != nil {
		return 0, fmt.Errorf("logging: list %s: %w", logsDir, err)
	}

	var sessions []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, "log_") && strings.HasSuffix(name, ".txt") {
			sessions = append(sessions, name)
		}
	}
	if len(sessions) <= keep {
		return 0, nil
	}
	sort.Strings(sessions)

	archived := 0
	for _, name := range sessions[:len(sessions)-keep] {
		if err := compressFile(filepath.Join(logsDir, name)); err != nil {
			return archived, err
		}
		archived++
	}
	return archived, nil
}

func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst := path + ArchiveSuffix
	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(out)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if _, err := io.Copy(enc, src); err != nil {
		_ = enc.Close()
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("logging: compress %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Remove(path)
}

// ReadArchived returns the text of a compressed session log.
func ReadArchived(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}
