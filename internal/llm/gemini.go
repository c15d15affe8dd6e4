package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

type geminiBackend struct {
	client *genai.Client
	model  string
}

const geminiDefault = "gemini-2.0-flash"

func (b *geminiBackend) Init(cfg Config) error {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	c, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("gemini client init: %w", err)
	}
	b.client = c
	if strings.TrimSpace(cfg.Model) != "" {
		b.model = cfg.Model
	} else {
		b.model = geminiDefault
	}
	return nil
}

func (b *geminiBackend) DefaultModel() string { return geminiDefault }

func (b *geminiBackend) AllowedModelOrDefault(model string) string {
	m := strings.TrimSpace(model)
	if m == "" {
		return b.model
	}
	if !strings.HasPrefix(strings.ToLower(m), "gemini-") {
		return geminiDefault
	}
	return m
}

func (b *geminiBackend) generateConfig(opts GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		t := float32(opts.Temperature)
		cfg.Temperature = &t
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxOutputTokens)
	}
	return cfg
}

func (b *geminiBackend) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if b.client == nil {
		return "", ErrNotInitialized
	}
	m := b.AllowedModelOrDefault(opts.Model)
	resp, err := b.client.Models.GenerateContent(ctx, m, genai.Text(prompt), b.generateConfig(opts))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func (b *geminiBackend) GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if b.client == nil {
		return "", ErrNotInitialized
	}
	m := b.AllowedModelOrDefault(opts.Model)
	cfg := b.generateConfig(opts)
	// Force JSON output in candidates
	cfg.ResponseMIMEType = "application/json"
	resp, err := b.client.Models.GenerateContent(ctx, m, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate json: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
