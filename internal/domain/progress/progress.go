// Package progress holds the payloads the port persists for the game.
// The port layer treats their encoding as opaque bytes.
package progress

import "time"

// FormatVersion is written into every SaveData.
const FormatVersion = "1.4.0.0"

// SettingsKey is the store key of the settings record.
const SettingsKey = "settings"

// SaveData is the progress of one save file
type SaveData struct {
	Version     string        `json:"version"`
	Name        string        `json:"name"`
	TotalDeaths int           `json:"totalDeaths"`
	Time        time.Duration `json:"time"`
	SaveCount   int           `json:"saveCount"`
	LastSave    time.Time     `json:"lastSave"`
}

// NewSaveData creates an empty save file
func NewSaveData(name string) *SaveData {
	return &SaveData{Version: FormatVersion, Name: name}
}

// AddTime accumulates play time
func (s *SaveData) AddTime(dt float64) {
	if dt > 0 {
		s.Time += time.Duration(dt * float64(time.Second))
	}
}

// BeforeSave stamps the record right before it is serialized
func (s *SaveData) BeforeSave(now time.Time) {
	s.Version = FormatVersion
	s.SaveCount++
	s.LastSave = now.UTC()
}

// Settings are the user preferences shared by every save file
type Settings struct {
	Language    string `json:"language"`
	MusicVolume int    `json:"musicVolume"` // 0-10
	SFXVolume   int    `json:"sfxVolume"`   // 0-10
	Rumble      bool   `json:"rumble"`
	ScreenShake bool   `json:"screenShake"`
}

// DefaultSettings returns the settings used before anything was saved
func DefaultSettings() *Settings {
	return &Settings{
		Language:    "english",
		MusicVolume: 10,
		SFXVolume:   10,
		Rumble:      true,
		ScreenShake: true,
	}
}

// Clamp keeps volumes in range
func (s *Settings) Clamp() {
	s.MusicVolume = clamp(s.MusicVolume, 0, 10)
	s.SFXVolume = clamp(s.SFXVolume, 0, 10)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
