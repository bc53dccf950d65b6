package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the base data root.
const FileName = "port.yaml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

//go:embed defaults.yaml
var defaultYAML []byte

// Loader loads the port configuration from YAML files using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// Defaults returns the embedded default configuration
func Defaults() *PortConfig {
	var cfg PortConfig
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		// defaults.yaml ships with the binary
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return &cfg
}

// Load reads port.yaml on top of the defaults.
// A missing file yields the defaults.
func (l *Loader) Load() (*PortConfig, error) {
	data, err := fs.ReadFile(l.fsys, FileName)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	return parse(data, filepath.Join(l.basePath, FileName))
}

// LoadFile reads an explicit config file on top of the defaults.
func LoadFile(path string) (*PortConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return parse(data, path)
}

// Resolve loads the configuration with the search order
// explicit path -> <base>/port.yaml -> embedded defaults.
func Resolve(explicit, base string) (*PortConfig, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	return NewLoader(base).Load()
}

func parse(data []byte, name string) (*PortConfig, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// Validate checks values the port cannot run with.
func (c *PortConfig) Validate() error {
	var problems []string
	if c.Display.ScreenWidth <= 0 || c.Display.ScreenHeight <= 0 {
		problems = append(problems, "display size must be positive")
	}
	if c.Display.Scale <= 0 {
		problems = append(problems, "display scale must be positive")
	}
	if c.Display.Framerate <= 0 {
		problems = append(problems, "display framerate must be positive")
	}
	if c.Boot.HoldToggleSeconds <= 0 {
		problems = append(problems, "boot holdToggleSeconds must be positive")
	}
	if c.Boot.MaxListedProblems <= 0 {
		problems = append(problems, "boot maxListedProblems must be positive")
	}
	if !strings.HasPrefix(c.Save.Extension, ".") || len(c.Save.Extension) < 2 {
		problems = append(problems, fmt.Sprintf("save extension %q must start with a dot", c.Save.Extension))
	}
	if c.Save.BackupDir == "" || strings.ContainsAny(c.Save.BackupDir, `/\`) {
		problems = append(problems, "save backupDir must be a single directory name")
	}
	if c.Save.FileKey == "" {
		problems = append(problems, "save fileKey is empty")
	}
	if c.Logs.KeepSessions < 1 {
		problems = append(problems, "logs keepSessions must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
