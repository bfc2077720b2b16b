package config

const (
	defaultConfigPath         = "~/.config/marquee/config.toml"
	defaultVideoDir           = "~/.local/share/marquee/videos"
	defaultDataDir            = "~/.local/share/marquee/data"
	defaultLogDir             = "~/.local/share/marquee/logs"
	defaultDeckFile           = "~/.config/marquee/slideshow.yaml"
	defaultAPIBind            = "127.0.0.1:8000"
	defaultSessionHours       = 12
	defaultVideoExtension     = ".mp4"
	defaultMinVideoBytes      = 1000
	defaultHiddenPrefix       = "_"
	defaultPartialSuffix      = ".part"
	defaultSlideDuration      = 30000
	defaultTransitionDuration = 1200
	defaultStatePoll          = 2000
	defaultSubmissionsPoll    = 5000
	defaultVideoAPITimeout    = 10000
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VideoDir: defaultVideoDir,
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			DeckFile: defaultDeckFile,
			APIBind:  defaultAPIBind,
		},
		Admin: Admin{
			SessionHours: defaultSessionHours,
		},
		Inventory: Inventory{
			Extension:     defaultVideoExtension,
			MinBytes:      defaultMinVideoBytes,
			HiddenPrefix:  defaultHiddenPrefix,
			PartialSuffix: defaultPartialSuffix,
		},
		Slideshow: Slideshow{
			DefaultDuration:    defaultSlideDuration,
			TransitionDuration: defaultTransitionDuration,
		},
		Polling: Polling{
			SlideshowState:   defaultStatePoll,
			AdminState:       defaultStatePoll,
			AdminSubmissions: defaultSubmissionsPoll,
		},
		Video: Video{
			APITimeout: defaultVideoAPITimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
