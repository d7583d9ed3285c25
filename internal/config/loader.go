package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// LoaderOptions configures the config loader
type LoaderOptions struct {
	// ConfigPath is the path to the TOML config file (optional).
	ConfigPath string

	// FlagOverrides are CLI flag values that override everything else.
	FlagOverrides FlagOverrides

	// Getenv reads the environment. Defaults to os.Getenv.
	Getenv func(string) string

	// Logger is used for warning messages (e.g., undecoded keys).
	Logger *zap.Logger
}

// FlagOverrides holds CLI flag values that override config file values
type FlagOverrides struct {
	ListenAddr  *string
	LogLevel    *string
	Rasterizer  *string
	BrowserPath *string
	PageSize    *string
}

// fileConfig mirrors Config with pointer sections to detect presence
type fileConfig struct {
	ListenAddr      string `toml:"listen_addr"`
	ShutdownTimeout string `toml:"shutdown_timeout"`

	Logging *LoggingConfig `toml:"logging"`
	Report  *fileReport    `toml:"report"`
	Explain *ExplainConfig `toml:"explain"`
	Speech  *fileSpeech    `toml:"speech"`
}

type fileReport struct {
	PageSize    string   `toml:"page_size"`
	Margin      *float64 `toml:"margin"`
	RasterWidth int      `toml:"raster_width"`
	Scale       float64  `toml:"scale"`
	JPEGQuality int      `toml:"jpeg_quality"`
	MaxPixels   int      `toml:"max_pixels"`
	Rasterizer  string   `toml:"rasterizer"`
	BrowserPath string   `toml:"browser_path"`
	Author      string   `toml:"author"`
}

type fileSpeech struct {
	APIKey          string   `toml:"api_key"`
	VoiceID         string   `toml:"voice_id"`
	ModelID         string   `toml:"model_id"`
	BaseURL         string   `toml:"base_url"`
	Stability       *float64 `toml:"stability"`
	SimilarityBoost *float64 `toml:"similarity_boost"`
	Style           *float64 `toml:"style"`
	UseSpeakerBoost *bool    `toml:"use_speaker_boost"`
}

// Load loads configuration with the following precedence:
//  1. Built-in defaults
//  2. TOML config file values
//  3. Environment variables (API keys, listen address)
//  4. CLI flags
//
// A config path that cannot be read or parsed is an error. Unknown keys
// produce a warning but do not fail the load
func Load(opts LoaderOptions) (*Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := Default()

	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigPath, err)
		}
		var fc fileConfig
		md, err := toml.Decode(string(data), &fc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", opts.ConfigPath, err)
		}

		// Warn about undecoded keys (do not fail)
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			logger.Warn("config file contains undecoded keys",
				zap.String("path", opts.ConfigPath),
				zap.Strings("keys", keys),
			)
		}
		if err := overlayFileConfig(cfg, &fc); err != nil {
			return nil, err
		}
	}

	overlayEnv(cfg, getenv)
	overlayFlags(cfg, opts.FlagOverrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayFileConfig applies values present in the file onto cfg
func overlayFileConfig(cfg *Config, fc *fileConfig) error {
	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.ShutdownTimeout != "" {
		d, err := time.ParseDuration(fc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown_timeout %q: %w", fc.ShutdownTimeout, err)
		}
		cfg.ShutdownTimeout = d
	}

	if fc.Logging != nil && fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}

	if r := fc.Report; r != nil {
		if r.PageSize != "" {
			cfg.Report.PageSize = r.PageSize
		}
		if r.Margin != nil {
			cfg.Report.Margin = *r.Margin
		}
		if r.RasterWidth > 0 {
			cfg.Report.RasterWidth = r.RasterWidth
		}
		if r.Scale > 0 {
			cfg.Report.Scale = r.Scale
		}
		if r.JPEGQuality != 0 {
			cfg.Report.JPEGQuality = r.JPEGQuality
		}
		if r.MaxPixels != 0 {
			cfg.Report.MaxPixels = r.MaxPixels
		}
		if r.Rasterizer != "" {
			cfg.Report.Rasterizer = r.Rasterizer
		}
		if r.BrowserPath != "" {
			cfg.Report.BrowserPath = r.BrowserPath
		}
		if r.Author != "" {
			cfg.Report.Author = r.Author
		}
	}

	if e := fc.Explain; e != nil {
		if e.APIKey != "" {
			cfg.Explain.APIKey = e.APIKey
		}
		if e.Model != "" {
			cfg.Explain.Model = e.Model
		}
		if e.BaseURL != "" {
			cfg.Explain.BaseURL = e.BaseURL
		}
	}

	if s := fc.Speech; s != nil {
		if s.APIKey != "" {
			cfg.Speech.APIKey = s.APIKey
		}
		if s.VoiceID != "" {
			cfg.Speech.VoiceID = s.VoiceID
		}
		if s.ModelID != "" {
			cfg.Speech.ModelID = s.ModelID
		}
		if s.BaseURL != "" {
			cfg.Speech.BaseURL = s.BaseURL
		}
		if s.Stability != nil {
			cfg.Speech.Stability = *s.Stability
		}
		if s.SimilarityBoost != nil {
			cfg.Speech.SimilarityBoost = *s.SimilarityBoost
		}
		if s.Style != nil {
			cfg.Speech.Style = *s.Style
		}
		if s.UseSpeakerBoost != nil {
			cfg.Speech.UseSpeakerBoost = *s.UseSpeakerBoost
		}
	}
	return nil
}

// overlayEnv applies environment variables onto cfg
func overlayEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvGoogleAIKey); v != "" {
		cfg.Explain.APIKey = v
	}
	if v := getenv(EnvElevenLabsKey); v != "" {
		cfg.Speech.APIKey = v
	}
	if v := getenv(EnvListenAddr); v != "" {
		cfg.ListenAddr = v
	}
}

// overlayFlags applies CLI flag values onto cfg
func overlayFlags(cfg *Config, f FlagOverrides) {
	if f.ListenAddr != nil && *f.ListenAddr != "" {
		cfg.ListenAddr = *f.ListenAddr
	}
	if f.LogLevel != nil && *f.LogLevel != "" {
		cfg.Logging.Level = *f.LogLevel
	}
	if f.Rasterizer != nil && *f.Rasterizer != "" {
		cfg.Report.Rasterizer = *f.Rasterizer
	}
	if f.BrowserPath != nil && *f.BrowserPath != "" {
		cfg.Report.BrowserPath = *f.BrowserPath
	}
	if f.PageSize != nil && *f.PageSize != "" {
		cfg.Report.PageSize = *f.PageSize
	}
}
