// Package config loads shifumi settings from an optional TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Pointer fields keep
// absent keys distinguishable from zero values.
type FileConfig struct {
	Game   GameConfig   `toml:"game"`
	Vision VisionConfig `toml:"vision"`
	Camera CameraConfig `toml:"camera"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
}

// GameConfig maps match settings.
type GameConfig struct {
	Confidence       *float64 `toml:"confidence"`
	CountdownSeconds *int     `toml:"countdown-seconds"`
	Rounds           *int     `toml:"rounds"`
	RoundOptions     []int    `toml:"round-options"`
}

// VisionConfig maps crop extraction and model settings.
type VisionConfig struct {
	Padding       *int     `toml:"padding"`
	TargetSize    *int     `toml:"target-size"`
	PreviewSize   *int     `toml:"preview-size"`
	Model         *string  `toml:"model"`
	Labels        []string `toml:"labels"`
	DisplayWidth  *int     `toml:"display-width"`
	DisplayHeight *int     `toml:"display-height"`
}

// CameraConfig maps capture settings.
type CameraConfig struct {
	Device          *int     `toml:"device"`
	IdleFPS         *int     `toml:"idle-fps"`
	ActiveFPS       *int     `toml:"active-fps"`
	MotionThreshold *float64 `toml:"motion-threshold"`
}

// ServerConfig maps HTTP settings.
type ServerConfig struct {
	Addr   *string `toml:"addr"`
	WebDir *string `toml:"web-dir"`
}

// StoreConfig maps database settings.
type StoreConfig struct {
	Path *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return cfg, nil
}
