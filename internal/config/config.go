// Package config loads service configuration from defaults, a TOML file,
// the environment and CLI flags, in that order of precedence
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/chiremba/chiremba/internal/explain"
	"github.com/chiremba/chiremba/internal/raster"
	"github.com/chiremba/chiremba/internal/speech"
	"github.com/chiremba/chiremba/pkg/api"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment variables read by Load
const (
	EnvGoogleAIKey   = "GOOGLE_AI_API_KEY"
	EnvElevenLabsKey = "ELEVEN_LABS_API_KEY"
	EnvListenAddr    = "CHIREMBA_LISTEN_ADDR"
)

// Config is the complete service configuration
type Config struct {
	ListenAddr      string
	ShutdownTimeout time.Duration

	Logging LoggingConfig
	Report  ReportConfig
	Explain ExplainConfig
	Speech  SpeechConfig
}

// LoggingConfig selects the log level
type LoggingConfig struct {
	Level string `toml:"level"`
}

// ReportConfig controls PDF generation
type ReportConfig struct {
	PageSize    string  `toml:"page_size"`
	Margin      float64 `toml:"margin"`
	RasterWidth int     `toml:"raster_width"`
	Scale       float64 `toml:"scale"`
	JPEGQuality int     `toml:"jpeg_quality"`
	MaxPixels   int     `toml:"max_pixels"`
	Rasterizer  string  `toml:"rasterizer"`
	BrowserPath string  `toml:"browser_path"`
	Author      string  `toml:"author"`
}

// ExplainConfig configures the generative text provider
type ExplainConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// SpeechConfig configures the text-to-speech provider
type SpeechConfig struct {
	APIKey          string  `toml:"api_key"`
	VoiceID         string  `toml:"voice_id"`
	ModelID         string  `toml:"model_id"`
	BaseURL         string  `toml:"base_url"`
	Stability       float64 `toml:"stability"`
	SimilarityBoost float64 `toml:"similarity_boost"`
	Style           float64 `toml:"style"`
	UseSpeakerBoost bool    `toml:"use_speaker_boost"`
}

// Default returns the built-in configuration
func Default() *Config {
	voice := speech.DefaultVoiceSettings()
	return &Config{
		ListenAddr:      ":3001",
		ShutdownTimeout: 10 * time.Second,
		Logging:         LoggingConfig{Level: "info"},
		Report: ReportConfig{
			PageSize:    "A4",
			Margin:      15,
			RasterWidth: 750,
			Scale:       2,
			JPEGQuality: 100,
			Rasterizer:  string(raster.KindNative),
		},
		Explain: ExplainConfig{Model: explain.DefaultModel},
		Speech: SpeechConfig{
			VoiceID:         speech.DefaultVoiceID,
			ModelID:         speech.DefaultModelID,
			BaseURL:         speech.DefaultBaseURL,
			Stability:       voice.Stability,
			SimilarityBoost: voice.SimilarityBoost,
			Style:           voice.Style,
			UseSpeakerBoost: voice.UseSpeakerBoost,
		},
	}
}

// Validate checks enum-like fields
func (c *Config) Validate() error {
	if _, _, ok := api.PageSize(c.Report.PageSize); !ok {
		return fmt.Errorf("invalid report.page_size %q", c.Report.PageSize)
	}
	switch raster.Kind(strings.ToLower(c.Report.Rasterizer)) {
	case raster.KindNative, raster.KindChromium, raster.KindRod:
	default:
		return fmt.Errorf("invalid report.rasterizer %q: must be native, chromium or rod", c.Report.Rasterizer)
	}
	if c.Report.JPEGQuality < 1 || c.Report.JPEGQuality > 100 {
		return fmt.Errorf("invalid report.jpeg_quality %d: must be 1-100", c.Report.JPEGQuality)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level %q: %w", c.Logging.Level, err)
	}
	return nil
}

// ReportOptions converts the report section into generator options
func (c *Config) ReportOptions(logger *zap.Logger) []api.Option {
	w, h, _ := api.PageSize(c.Report.PageSize)
	return []api.Option{
		api.WithPageSize(w, h),
		api.WithMargin(c.Report.Margin),
		api.WithRasterWidth(c.Report.RasterWidth),
		api.WithScale(c.Report.Scale),
		api.WithJPEGQuality(c.Report.JPEGQuality),
		api.WithMaxPixels(c.Report.MaxPixels),
		api.WithRasterizer(raster.Kind(strings.ToLower(c.Report.Rasterizer))),
		api.WithBrowserPath(c.Report.BrowserPath),
		api.WithAuthor(c.Report.Author),
		api.WithLogger(logger),
	}
}

// GeminiConfig converts the explain section into client settings
func (c *Config) GeminiConfig() explain.Config {
	return explain.Config{APIKey: c.Explain.APIKey, Model: c.Explain.Model, BaseURL: c.Explain.BaseURL}
}

// SpeechClientConfig converts the speech section into client settings
func (c *Config) SpeechClientConfig() speech.Config {
	return speech.Config{
		APIKey:  c.Speech.APIKey,
		VoiceID: c.Speech.VoiceID,
		ModelID: c.Speech.ModelID,
		BaseURL: c.Speech.BaseURL,
		Voice: speech.VoiceSettings{
			Stability:       c.Speech.Stability,
			SimilarityBoost: c.Speech.SimilarityBoost,
			Style:           c.Speech.Style,
			UseSpeakerBoost: c.Speech.UseSpeakerBoost,
		},
	}
}

// NewLogger builds the production zap logger at the configured level.
// verbose forces debug output
func NewLogger(level string, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
