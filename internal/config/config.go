package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// DataDir overrides where databases and stored media live. Empty
	// means the XDG data directory.
	DataDir string `koanf:"data_dir"`

	// Notifications toggles desktop notifications on track change.
	Notifications *bool `koanf:"notifications"`

	Player   PlayerConfig   `koanf:"player"`
	Metadata MetadataConfig `koanf:"metadata"`
}

// PlayerConfig holds settings for the external streaming player.
type PlayerConfig struct {
	Binary       string `koanf:"binary"`        // default: mpv
	Socket       string `koanf:"socket"`        // IPC socket path; empty picks one per process
	GraceSeconds int    `koanf:"grace_seconds"` // startup grace before giving up (default: 10)
}

// MetadataConfig holds settings for remote metadata lookup.
type MetadataConfig struct {
	OEmbedURL string `koanf:"oembed_url"` // override the lookup endpoint
}

func Load() (*Config, error) {
	return loadFrom(getConfigPaths()...)
}

// loadFrom merges the given config files in order (last wins) and applies
// defaults.
func loadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Player.Binary == "" {
		cfg.Player.Binary = "mpv"
	}
	if cfg.Player.GraceSeconds <= 0 {
		cfg.Player.GraceSeconds = 10
	}
	if cfg.DataDir != "" {
		cfg.DataDir = expandPath(cfg.DataDir)
	}
	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/playdeck/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "playdeck", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// NotificationsEnabled reports whether desktop notifications should be
// shown. On unless explicitly turned off.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}
