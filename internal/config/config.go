package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory, file and bind address configuration.
type Paths struct {
	VideoDir string `toml:"video_dir"`
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	DeckFile string `toml:"deck_file"`
	APIBind  string `toml:"api_bind"`
}

// Admin contains the shared admin secret and session lifetime.
type Admin struct {
	Password     string `toml:"password"`
	SessionHours int    `toml:"session_hours"`
}

// Inventory controls which files under the video directory count as playable.
type Inventory struct {
	Extension     string `toml:"extension"`
	MinBytes      int64  `toml:"min_bytes"`
	HiddenPrefix  string `toml:"hidden_prefix"`
	PartialSuffix string `toml:"partial_suffix"`
}

// Slideshow contains playback timing defaults in milliseconds.
type Slideshow struct {
	DefaultDuration    int `toml:"default_duration" json:"defaultDuration"`
	TransitionDuration int `toml:"transition_duration" json:"transitionDuration"`
}

// Polling contains client poll intervals in milliseconds.
type Polling struct {
	SlideshowState   int `toml:"slideshow_state" json:"slideshowState"`
	AdminState       int `toml:"admin_state" json:"adminState"`
	AdminSubmissions int `toml:"admin_submissions" json:"adminSubmissions"`
}

// Video contains client-side video loading settings.
type Video struct {
	APITimeout int `toml:"api_timeout" json:"apiTimeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for marquee.
//
// Configuration sections by subsystem:
//   - Paths: video inventory root, data/log directories, static deck, API bind
//   - Admin: shared admin password and session lifetime
//   - Inventory: playable file filters
//   - Slideshow, Polling, Video: values published to browser clients
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Admin     Admin     `toml:"admin"`
	Inventory Inventory `toml:"inventory"`
	Slideshow Slideshow `toml:"slideshow"`
	Polling   Polling   `toml:"polling"`
	Video     Video     `toml:"video"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment overrides applied.
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
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
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
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories. The video directory
// is owned by the offline download pipeline and is never created here.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "marquee.db")
}

// PlayCountsPath returns the play-count ledger location.
func (c *Config) PlayCountsPath() string {
	return filepath.Join(c.Paths.DataDir, "play_counts.json")
}

// LockPath returns the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "marqueed.lock")
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
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
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
