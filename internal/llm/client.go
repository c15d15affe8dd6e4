package llm

import (
	"context"
	"fmt"
	"strings"
)

type Config struct {
	Backend    string
	Model      string
	APIKey     string
	OllamaHost string
}

// GenerateOptions tunes a single generative call. Zero values defer to the
// backend's defaults.
type GenerateOptions struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

// Client is the generative capability consumed by the decomposer, the
// decision engine's advanced mode, and the LLM-backed task providers.
type Client interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// GenerateJSON forces strict JSON output in the returned text.
	GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Backend is a concrete generative implementation.
type Backend interface {
	Client
	Init(cfg Config) error
	DefaultModel() string
	AllowedModelOrDefault(model string) string
}

// New builds and initializes the configured backend.
func New(cfg Config) (Backend, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = "gemini"
	}
	var b Backend
	switch backend {
	case "ollama":
		b = &ollamaBackend{}
	case "gemini":
		b = &geminiBackend{}
	default:
		return nil, fmt.Errorf("unsupported LLM backend: %s", backend)
	}
	if err := b.Init(cfg); err != nil {
		return nil, err
	}
	return b, nil
}
