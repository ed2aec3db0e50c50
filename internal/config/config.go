// Package config loads yaiba settings from a TOML file, .env files and
// the environment.
//
// Priority: environment > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/pseudonym"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/sessionlog"
)

// DirName is the directory below the user config dir holding yaiba files.
const DirName = "yaiba"

// Environment variable names for config overrides.
const (
	EnvSalt           = "YAIBA_SALT"
	EnvLogDir         = "YAIBA_LOGDIR"
	EnvArchive        = "YAIBA_ARCHIVE"
	EnvExportUserName = "YAIBA_EXPORT_USER_NAME"
)

// PolicyConfig selects the privacy classes written by exports.
type PolicyConfig struct {
	UserName       bool `toml:"user_name"`
	PseudoUserName bool `toml:"pseudo_user_name"`
	PlayerID       bool `toml:"player_id"`
	Timestamp      bool `toml:"timestamp"`
}

// ToPolicy converts c into a sessionlog.Policy.
func (c PolicyConfig) ToPolicy() sessionlog.Policy {
	return sessionlog.Policy{
		UserName:       c.UserName,
		PseudoUserName: c.PseudoUserName,
		PlayerID:       c.PlayerID,
		Timestamp:      c.Timestamp,
	}
}

// Config holds yaiba settings.
type Config struct {
	// TagNames are the tag marker names in world order. Empty uses the
	// built-in list.
	TagNames []string `toml:"tag_names"`

	// Salt is the base64 pseudonymization salt. Empty generates a random
	// salt per run, so pseudonyms are not stable across runs.
	Salt string `toml:"salt"`

	// LogDir is the VRChat log directory. Empty auto-detects.
	LogDir string `toml:"log_dir"`

	// ArchivePath is the SQLite archive file.
	ArchivePath string `toml:"archive_path"`

	Policy PolicyConfig `toml:"policy"`
}

// DefaultConfig returns a Config with the Pseudonymized export policy and
// the archive in the data directory.
func DefaultConfig() Config {
	cfg := Config{
		Policy: PolicyConfig{PseudoUserName: true, PlayerID: true, Timestamp: true},
	}
	if dir, err := DataDir(); err == nil {
		cfg.ArchivePath = filepath.Join(dir, "archive.sqlite")
	}
	return cfg
}

// DataDir returns the yaiba directory below the user config dir.
func DataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(base, DirName), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at the default path.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config file at path. A missing file yields the
// defaults; a corrupt file or unknown keys are an error.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return DefaultConfig(), fmt.Errorf("parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	home, _ := os.UserHomeDir()
	cfg.LogDir = expandHome(cfg.LogDir, home)
	cfg.ArchivePath = expandHome(cfg.ArchivePath, home)

	if _, err := cfg.SaltBytes(); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveTo writes cfg to path as TOML, creating parent directories.
// The file is replaced atomically.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment variables take highest priority over config file values.
func ApplyEnvOverrides(cfg Config) Config {
	if v := os.Getenv(EnvSalt); v != "" {
		cfg.Salt = v
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv(EnvArchive); v != "" {
		cfg.ArchivePath = v
	}
	if v := os.Getenv(EnvExportUserName); v != "" {
		cfg.Policy.UserName = parseBool(v)
	}
	return cfg
}

// SaltBytes decodes Salt. An empty Salt returns (nil, nil).
func (c Config) SaltBytes() ([]byte, error) {
	if c.Salt == "" {
		return nil, nil
	}
	return pseudonym.SaltFromString(c.Salt)
}

// parseBool accepts "true", "1", "yes", "on" (case-insensitive) as true.
// All other values are treated as false.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func expandHome(path, home string) string {
	if home != "" && len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator) {
		return filepath.Join(home, path[2:])
	}
	return path
}
