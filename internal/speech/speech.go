// Package speech converts text to audio with the ElevenLabs API. Every
// failure degrades to NoAudioAvailable so callers can fall back to local
// speech synthesis
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io/v1"
	DefaultVoiceID = "EXAVITQu4vr4xnSDxMaL"
	DefaultModelID = "eleven_multilingual_v2"

	// DefaultMaxAudioSize caps the audio body read from the provider
	DefaultMaxAudioSize = 32 << 20
)

// VoiceSettings tunes the synthesized voice
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns the settings the service ships with
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{Stability: 0.5, SimilarityBoost: 0.75, Style: 0.5, UseSpeakerBoost: true}
}

// Config holds ElevenLabs settings
type Config struct {
	APIKey  string
	VoiceID string
	ModelID string
	BaseURL string
	Voice   VoiceSettings
	Timeout time.Duration

	// MaxAudioSize rejects longer audio bodies; zero selects DefaultMaxAudioSize
	MaxAudioSize int64
}

// DefaultConfig returns a config without credentials
func DefaultConfig() Config {
	return Config{
		VoiceID:      DefaultVoiceID,
		ModelID:      DefaultModelID,
		BaseURL:      DefaultBaseURL,
		Voice:        DefaultVoiceSettings(),
		Timeout:      30 * time.Second,
		MaxAudioSize: DefaultMaxAudioSize,
	}
}

// Result is either Audio or NoAudioAvailable
type Result interface {
	isResult()
}

// Audio holds synthesized speech
type Audio struct {
	Data        []byte
	ContentType string
}

// NoAudioAvailable means the caller should speak the text locally
type NoAudioAvailable struct {
	Reason string
}

func (Audio) isResult()            {}
func (NoAudioAvailable) isResult() {}

// Client talks to the text-to-speech endpoint
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a client. Missing fields fall back to DefaultConfig
func NewClient(cfg Config, logger *zap.Logger) *Client {
	def := DefaultConfig()
	if cfg.VoiceID == "" {
		cfg.VoiceID = def.VoiceID
	}
	if cfg.ModelID == "" {
		cfg.ModelID = def.ModelID
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Voice == (VoiceSettings{}) {
		cfg.Voice = def.Voice
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAudioSize <= 0 {
		cfg.MaxAudioSize = def.MaxAudioSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Synthesize converts text to speech with a single provider call
func (c *Client) Synthesize(ctx context.Context, text string) Result {
	if c.cfg.APIKey == "" {
		c.logger.Warn("ElevenLabs API key not found, using local speech instead")
		return NoAudioAvailable{Reason: "missing api key"}
	}
	if strings.TrimSpace(text) == "" {
		return NoAudioAvailable{Reason: "empty text"}
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, ModelID: c.cfg.ModelID, VoiceSettings: c.cfg.Voice})
	if err != nil {
		return c.fail("encode request", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return c.fail("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail("request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.logger.Warn("ElevenLabs API error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail),
		)
		return NoAudioAvailable{Reason: fmt.Sprintf("provider returned %s", resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxAudioSize+1))
	if err != nil {
		return c.fail("read audio", err)
	}
	if int64(len(data)) > c.cfg.MaxAudioSize {
		c.logger.Warn("ElevenLabs audio exceeds size limit", zap.Int64("limit", c.cfg.MaxAudioSize))
		return NoAudioAvailable{Reason: "audio too large"}
	}
	if len(data) == 0 {
		return NoAudioAvailable{Reason: "provider returned no audio"}
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return Audio{Data: data, ContentType: contentType}
}

func (c *Client) fail(step string, err error) Result {
	c.logger.Warn("error generating speech with ElevenLabs", zap.String("step", step), zap.Error(err))
	return NoAudioAvailable{Reason: step + " failed"}
}
