package config

// PortConfig is the root config for port.yaml
type PortConfig struct {
	Display DisplayConfig `yaml:"display"`
	Content ContentConfig `yaml:"content"`
	Boot    BootConfig    `yaml:"boot"`
	Save    SaveConfig    `yaml:"save"`
	Logs    LogsConfig    `yaml:"logs"`
}

type DisplayConfig struct {
	ScreenWidth  int    `yaml:"screenWidth"`
	ScreenHeight int    `yaml:"screenHeight"`
	Scale        int    `yaml:"scale"`
	Framerate    int    `yaml:"framerate"`
	Title        string `yaml:"title"`
}

// ContentConfig configures the startup content check
type ContentConfig struct {
	// RequireAudioAssets adds the FMOD subtree to the required set
	RequireAudioAssets bool `yaml:"requireAudioAssets"`
}

type BootConfig struct {
	HoldToggleSeconds float64 `yaml:"holdToggleSeconds"` // Diagnostics toggle hold time
	MaxListedProblems int     `yaml:"maxListedProblems"` // Problems shown before "..."
}

type SaveConfig struct {
	Extension string `yaml:"extension"`
	BackupDir string `yaml:"backupDir"`
	FileKey   string `yaml:"fileKey"` // Key of the save slot written by the title scene
}

type LogsConfig struct {
	KeepSessions int    `yaml:"keepSessions"` // Plain-text session logs kept, older ones are compressed
	MirrorLevel  string `yaml:"mirrorLevel"`
}
