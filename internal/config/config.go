// Package config loads the TOML configuration spec.md §6 defines,
// merging a global file (under the user's home) with a per-project
// file (under .dex/), project values winning. Grounded on
// jra3-linear-fuse's internal/config layout, ported from YAML to TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the merged view of global and project TOML files.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Sync    SyncConfig    `toml:"sync"`
	Daemon  DaemonConfig  `toml:"daemon"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
}

type StorageConfig struct {
	Engine string      `toml:"engine"`
	File   FileStorage `toml:"file"`
}

type FileStorage struct {
	Mode string `toml:"mode"` // "in-repo" | "centralized"
}

type SyncConfig struct {
	GitHub GitHubSyncConfig `toml:"github"`
}

type GitHubSyncConfig struct {
	Enabled     bool       `toml:"enabled"`
	TokenEnv    string     `toml:"token_env"`
	LabelPrefix string     `toml:"label_prefix"`
	// Owner/Repo override git-remote detection when set; leave empty to
	// detect from the project's "origin" remote.
	Owner string     `toml:"owner"`
	Repo  string     `toml:"repo"`
	Auto  AutoConfig `toml:"auto"`
}

type AutoConfig struct {
	OnChange bool   `toml:"on_change"`
	MaxAge   string `toml:"max_age"`
}

// DaemonConfig holds the cron schedules for the long-running sweep
// loop (spec.md §4.7 daemon mode).
type DaemonConfig struct {
	SyncInterval    string `toml:"sync_interval"`
	ArchiveInterval string `toml:"archive_interval"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// DefaultConfig returns the documented defaults for every recognized key.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Engine: "file",
			File:   FileStorage{Mode: "in-repo"},
		},
		Sync: SyncConfig{
			GitHub: GitHubSyncConfig{
				LabelPrefix: "dex",
				Auto:        AutoConfig{OnChange: true},
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the global config, then the project config, merging
// project values over global ones, using the real environment and
// filesystem.
func Load(projectDir string) (*Config, error) {
	return LoadWithEnv(projectDir, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup, so tests
// can run without touching the real home directory.
func LoadWithEnv(projectDir string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	if path, err := globalConfigPathWithEnv(getenv); err == nil {
		if err := mergeFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if projectDir != "" {
		if err := mergeFile(cfg, filepath.Join(projectDir, ".dex", "config.toml")); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func globalConfigPath() (string, error) {
	return globalConfigPathWithEnv(os.Getenv)
}

func globalConfigPathWithEnv(getenv func(string) string) (string, error) {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dex", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dex", "config.toml"), nil
}

// ParseDuration implements spec.md §6's duration grammar
// ^\d+(s|m|h|d|w|mo)$, where d/w/mo are calendar-ish approximations
// (mo = 30 days) time.ParseDuration has no notion of.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	// mo must be checked before the single-letter units since it's the
	// only two-letter suffix in the grammar.
	if len(s) > 2 && s[len(s)-2:] == "mo" {
		n, err := parseUintPrefix(s[:len(s)-2])
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 30 * 24 * time.Hour, nil
	}
	unit := s[len(s)-1]
	numPart := s[:len(s)-1]
	n, err := parseUintPrefix(numPart)
	if err != nil {
		return 0, err
	}
	switch unit {
	case 's':
		return time.Duration(n) * time.Second, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid duration %q", s)
	}
}

func parseUintPrefix(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing numeric component")
	}
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid duration digits %q", s)
		}
		n = n*10 + int64(r-'0')
	}
	return n, nil
}
