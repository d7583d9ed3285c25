// Package explain proxies free-text prompts to a generative text model
package explain

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-pro"

// ErrNoAPIKey is returned by generators built without credentials
var ErrNoAPIKey = errors.New("GOOGLE_AI_API_KEY is not set")

// Generator produces an explanation for a prompt. One call is one attempt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Config holds Gemini client settings
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint
	BaseURL string
}

// Gemini generates explanations with Google's Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini generator. It fails without an API key
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Model returns the configured model name
func (g *Gemini) Model() string { return g.model }

// Generate implements Generator
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Unavailable returns a generator that always fails with err. It stands in
// when the service starts without credentials
func Unavailable(err error) Generator {
	return GeneratorFunc(func(context.Context, string) (string, error) {
		return "", err
	})
}
