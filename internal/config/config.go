package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/OpenGG/rspec-toggle/internal/toggle/paths"
)

const (
	AppName        = "rspec-toggle"
	ConfigFileName = "config.toml"

	// KeyPrefix namespaces keys in the per-project override file.
	KeyPrefix = AppName + "."

	EnvConfigPath = "RSPEC_TOGGLE_CONFIG"
	EnvDebug      = "RSPEC_TOGGLE_DEBUG"
)

const DefaultConfigToml = `# rspec-toggle configuration

# Print resolution details to stderr.
debug = false

# Command used to open files. Falls back to $VISUAL, then $EDITOR.
# The command is split on whitespace, so an executable whose path contains
# spaces must be reached through a symlink or a wrapper on $PATH.
editor = ""

# Extra project roots tried after the current directory.
roots = []
`

// Config holds the user settings.
type Config struct {
	Debug  bool     `toml:"debug"`
	Editor string   `toml:"editor"`
	Roots  []string `toml:"roots"`
}

// projectOverride mirrors the namespaced keys of .rspec-toggle.yml.
// Pointers tell "unset" apart from the zero value.
type projectOverride struct {
	Debug  *bool    `yaml:"rspec-toggle.debug"`
	Editor *string  `yaml:"rspec-toggle.editor"`
	Roots  []string `yaml:"rspec-toggle.roots"`
}

// Loader reads settings from the global file, a project override and the environment.
type Loader struct {
	fs        afero.Fs
	getenv    func(string) string
	configDir func() (string, error)
}

// NewLoader creates a Loader reading through fs.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs, getenv: os.Getenv, configDir: os.UserConfigDir}
}

// SetEnv overrides environment lookups for testing.
func (l *Loader) SetEnv(getenv func(string) string) {
	if getenv == nil {
		l.getenv = os.Getenv
		return
	}
	l.getenv = getenv
}

// SetConfigDir overrides the user config directory lookup for testing.
func (l *Loader) SetConfigDir(dir func() (string, error)) {
	if dir == nil {
		l.configDir = os.UserConfigDir
		return
	}
	l.configDir = dir
}

// GlobalPath returns the location of the global config file. An empty path
// means no user config directory is available.
func (l *Loader) GlobalPath() string {
	if p := l.getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := l.configDir()
	if err != nil || dir == "" {
		return ""
	}
	return filepath.Join(dir, AppName, ConfigFileName)
}

// Load merges defaults, the global file, the project override under
// projectRoot (if non-empty) and the environment, in that order.
// Missing files are skipped; malformed files are errors.
func (l *Loader) Load(projectRoot string) (Config, error) {
	cfg := Config{}

	if path := l.GlobalPath(); path != "" {
		if err := l.loadGlobal(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if projectRoot != "" {
		if err := l.loadProject(paths.New(projectRoot).ProjectConfigPath(), &cfg); err != nil {
			return Config{}, err
		}
	}

	if v := l.getenv(EnvDebug); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = on
		}
	}
	return cfg, nil
}

func (l *Loader) loadGlobal(path string, cfg *Config) error {
	raw, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if _, err := toml.Decode(string(raw), cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (l *Loader) loadProject(path string, cfg *Config) error {
	raw, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read project config %s: %w", path, err)
	}
	var override projectOverride
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return fmt.Errorf("failed to parse project config %s: %w", path, err)
	}
	if override.Debug != nil {
		cfg.Debug = *override.Debug
	}
	if override.Editor != nil {
		cfg.Editor = strings.TrimSpace(*override.Editor)
	}
	if len(override.Roots) > 0 {
		cfg.Roots = append(cfg.Roots, override.Roots...)
	}
	return nil
}

// WriteDefault writes DefaultConfigToml to the global path unless a file is already there.
func (l *Loader) WriteDefault() (string, error) {
	path := l.GlobalPath()
	if path == "" {
		return "", errors.New("no user config directory available")
	}
	exists, err := afero.Exists(l.fs, path)
	if err != nil {
		return "", err
	}
	if exists {
		return path, fmt.Errorf("config already exists: %s", path)
	}
	if err := l.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(l.fs, path, []byte(DefaultConfigToml), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
