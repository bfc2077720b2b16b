package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides lists the settings that may be supplied through the environment.
// Each field is read from MARQUEE_<NAME>, then from the bare name.
type envOverrides struct {
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	APIBind       string `envconfig:"API_BIND"`
	VideoDir      string `envconfig:"VIDEO_DIR"`
	DataDir       string `envconfig:"DATA_DIR"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("marquee", &env); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}
	if env.AdminPassword != "" {
		c.Admin.Password = env.AdminPassword
	}
	if env.APIBind != "" {
		c.Paths.APIBind = env.APIBind
	}
	if env.VideoDir != "" {
		c.Paths.VideoDir = env.VideoDir
	}
	if env.DataDir != "" {
		c.Paths.DataDir = env.DataDir
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeInventory()
	c.normalizeTimings()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.VideoDir, err = expandPath(c.Paths.VideoDir); err != nil {
		return fmt.Errorf("paths.video_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DeckFile) != "" {
		if c.Paths.DeckFile, err = expandPath(c.Paths.DeckFile); err != nil {
			return fmt.Errorf("paths.deck_file: %w", err)
		}
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeInventory() {
	c.Inventory.Extension = strings.ToLower(strings.TrimSpace(c.Inventory.Extension))
	if c.Inventory.Extension == "" {
		c.Inventory.Extension = defaultVideoExtension
	}
	if !strings.HasPrefix(c.Inventory.Extension, ".") {
		c.Inventory.Extension = "." + c.Inventory.Extension
	}
	if c.Inventory.MinBytes < 0 {
		c.Inventory.MinBytes = 0
	}
}

func (c *Config) normalizeTimings() {
	if c.Admin.SessionHours <= 0 {
		c.Admin.SessionHours = defaultSessionHours
	}
	if c.Slideshow.DefaultDuration <= 0 {
		c.Slideshow.DefaultDuration = defaultSlideDuration
	}
	if c.Slideshow.TransitionDuration < 0 {
		c.Slideshow.TransitionDuration = defaultTransitionDuration
	}
	if c.Polling.SlideshowState <= 0 {
		c.Polling.SlideshowState = defaultStatePoll
	}
	if c.Polling.AdminState <= 0 {
		c.Polling.AdminState = defaultStatePoll
	}
	if c.Polling.AdminSubmissions <= 0 {
		c.Polling.AdminSubmissions = defaultSubmissionsPoll
	}
	if c.Video.APITimeout <= 0 {
		c.Video.APITimeout = defaultVideoAPITimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
