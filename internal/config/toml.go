// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game   GameConfig   `toml:"game"`
	Server ServerConfig `toml:"server"`
}

// GameConfig maps drill-related settings.
type GameConfig struct {
	Difficulty *int     `toml:"difficulty"`
	Operation  *string  `toml:"operation"`
	TimeLimit  *float64 `toml:"time-limit"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
	NoSave     *bool    `toml:"no-save"`
}

// ServerConfig maps settings for the web and SSH servers.
type ServerConfig struct {
	WebHost    *string `toml:"web-host"`
	WebPort    *string `toml:"web-port"`
	SSHHost    *string `toml:"ssh-host"`
	SSHPort    *string `toml:"ssh-port"`
	SSHHostKey *string `toml:"ssh-host-key"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
