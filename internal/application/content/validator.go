// Package content checks that the game assets copied by the user have the
// shape the engine expects before the game loop is allowed to start.
package content

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/younwookim/mgport/internal/infrastructure/fsys"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
	"github.com/younwookim/mgport/internal/infrastructure/paths"
)

// Required subtrees, checked in this order.
const (
	DirDialog   = "Dialog"
	DirEffects  = "Effects"
	DirGraphics = "Graphics"
	DirAudio    = "FMOD"
)

// EffectsExt is the compiled asset extension Effects must contain.
const EffectsExt = ".xnb"

var requiredDirs = []string{DirDialog, DirEffects, DirGraphics}

// Validate inspects set.Content through fs and reports every structural
// defect. It only reads, so calling it again on an unchanged tree yields an
// equal Report.
func Validate(set paths.Set, fs fsys.FileSystem, requireAudio bool) Report {
	return validate(set, fs, requireAudio)
}

func validate(set paths.Set, fs fsys.FileSystem, requireAudio bool) Report {
	if fs == nil || set.Content == "" {
		return failed(SummaryUninitialized, "Paths ou FileSystem não configurados.")
	}

	root := set.Content
	if !fs.DirExists(root) {
		return failed(SummaryMissing, fmt.Sprintf("Pasta Content não existe: %s", root))
	}

	entries, err := fs.ReadDir(root)
	if err != nil {
		return failed(SummaryUnreadable, "Falha ao enumerar Content: "+describe(err))
	}
	if len(entries) == 0 {
		return failed(SummaryEmpty, fmt.Sprintf("Pasta Content está vazia: %s", root))
	}

	var problems []string
	for _, name := range requiredDirs {
		expected := filepath.Join(root, name)
		if !fs.DirExists(expected) {
			problems = append(problems, absentProblem(fs, root, name, expected))
			continue
		}
		if p, ok := checkSubtree(fs, name, expected); !ok {
			problems = append(problems, p)
		}
	}

	if requireAudio {
		expected := filepath.Join(root, DirAudio)
		if !fs.DirExists(expected) {
			if found, ok := findDirFold(fs, root, DirAudio); ok {
				problems = append(problems, renameProblem(DirAudio, found))
			} else {
				problems = append(problems, fmt.Sprintf("Pasta %s ausente (áudio pode falhar): %s/", DirAudio, DirAudio))
			}
		}
	}

	if len(problems) == 0 {
		return Report{OK: true, Summary: SummaryOK}
	}
	return Report{Summary: SummaryIncomplete, Problems: problems}
}

// checkSubtree applies the per-directory minimum content rule.
func checkSubtree(fs fsys.FileSystem, name, dir string) (string, bool) {
	switch name {
	case DirEffects:
		files, err := fs.FindFiles(dir, EffectsExt, true)
		if err != nil {
			return fmt.Sprintf("Falha ao ler %s: %s", name, describe(err)), false
		}
		if len(files) == 0 {
			return fmt.Sprintf("%s existe mas não contém %s: %s", name, EffectsExt, dir), false
		}
	case DirDialog:
		files, err := fs.FindFiles(dir, "", true)
		if err != nil {
			return fmt.Sprintf("Falha ao ler %s: %s", name, describe(err)), false
		}
		if len(files) == 0 {
			return fmt.Sprintf("%s existe mas está vazio: %s", name, dir), false
		}
	default:
		entries, err := fs.ReadDir(dir)
		if err != nil {
			return fmt.Sprintf("Falha ao ler %s: %s", name, describe(err)), false
		}
		if len(entries) == 0 {
			return fmt.Sprintf("%s existe mas está vazio: %s", name, dir), false
		}
	}
	return "", true
}

func absentProblem(fs fsys.FileSystem, root, name, expected string) string {
	if found, ok := findDirFold(fs, root, name); ok {
		return renameProblem(name, found)
	}
	return fmt.Sprintf("Pasta crítica ausente: %s/ (esperado em %s)", name, expected)
}

func renameProblem(expected, found string) string {
	return fmt.Sprintf("Case mismatch: esperado '%s/' mas encontrado '%s/'. Renomeie para exatamente '%s/'.", expected, found, expected)
}

// findDirFold looks for a sibling directory whose name matches name
// ignoring case. Enumeration errors count as not found.
func findDirFold(fs fsys.FileSystem, parent, name string) (string, bool) {
	entries, err := fs.ReadDir(parent)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() && strings.EqualFold(e.Name(), name) {
			return e.Name(), true
		}
	}
	return "", false
}

func describe(err error) string {
	return logging.TypeName(err) + ": " + err.Error()
}
