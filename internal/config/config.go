package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Well-known bus address keywords.
const (
	BusSystem  = "system"
	BusSession = "session"
)

// Bus describes the daemon endpoint.
type Bus struct {
	// Address is "system", "session", or a literal bus address.
	Address    string `toml:"address"`
	Service    string `toml:"service"`
	ObjectPath string `toml:"object_path"`
	Interface  string `toml:"interface"`
}

// Backend configures local helper execution.
type Backend struct {
	Name      string `toml:"name"`
	HelperDir string `toml:"helper_dir"`
	// LockPath serializes helpers across processes; empty disables the lock.
	LockPath           string `toml:"lock_path"`
	CancelGraceSeconds int    `toml:"cancel_grace_seconds"`
	// ExitZeroFinishes treats a clean exit as completion for helpers that
	// never print a finished record.
	ExitZeroFinishes bool `toml:"exit_zero_finishes"`
}

// Network configures the reachability probe consulted before network-bound
// helpers run.
type Network struct {
	// Force pins the state to "online" or "offline"; empty probes interfaces.
	Force   string `toml:"force"`
	Monitor bool   `toml:"monitor"`
}

// Logging configures log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for pkcon.
type Config struct {
	Bus     Bus     `toml:"bus"`
	Backend Backend `toml:"backend"`
	Network Network `toml:"network"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/packagekit/pkcon.toml")
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return "", false, err
		}
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

// HelperPath returns the executable path for a helper script of the
// configured backend.
func (c *Config) HelperPath(helper string) string {
	return filepath.Join(c.Backend.HelperDir, c.Backend.Name, helper)
}

// CancelGrace is how long a cancelled helper may linger after SIGTERM.
func (c *Config) CancelGrace() time.Duration {
	return time.Duration(c.Backend.CancelGraceSeconds) * time.Second
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() (string, error) {
	var sb strings.Builder
	encoder := toml.NewEncoder(&sb)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return sb.String(), nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && pathValue[1] == '/' {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
