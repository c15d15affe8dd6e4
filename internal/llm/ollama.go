package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/ollama/ollama/api"
)

type ollamaBackend struct {
	client *api.Client
	model  string
}

const ollamaDefault = "phi4:latest"

func (b *ollamaBackend) Init(cfg Config) error {
	c, err := api.ClientFromEnvironment()
	if err != nil {
		host := cfg.OllamaHost
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		u, uerr := url.Parse(host)
		if uerr != nil {
			return fmt.Errorf("ollama: bad host %q: %w", host, uerr)
		}
		c = api.NewClient(u, nil)
	}
	b.client = c
	if strings.TrimSpace(cfg.Model) != "" {
		b.model = cfg.Model
	} else {
		b.model = ollamaDefault
	}
	return nil
}

func (b *ollamaBackend) DefaultModel() string { return ollamaDefault }

func (b *ollamaBackend) AllowedModelOrDefault(model string) string {
	m := strings.TrimSpace(model)
	if m == "" {
		return b.model
	}
	return m
}

func (b *ollamaBackend) request(prompt, model string, opts GenerateOptions, format json.RawMessage) *api.GenerateRequest {
	stream := false
	req := &api.GenerateRequest{
		Model:  b.AllowedModelOrDefault(model),
		Prompt: prompt,
		Stream: &stream,
		Format: format,
	}
	options := map[string]any{}
	if opts.Temperature > 0 {
		options["temperature"] = opts.Temperature
	}
	if opts.MaxOutputTokens > 0 {
		options["num_predict"] = opts.MaxOutputTokens
	}
	if len(options) > 0 {
		req.Options = options
	}
	return req
}

func (b *ollamaBackend) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if b.client == nil {
		return "", ErrNotInitialized
	}
	req := b.request(prompt, opts.Model, opts, nil)
	var out strings.Builder
	if err := b.client.Generate(ctx, req, func(gr api.GenerateResponse) error {
		out.WriteString(gr.Response)
		return nil
	}); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return out.String(), nil
}

func (b *ollamaBackend) GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if b.client == nil {
		return "", ErrNotInitialized
	}
	req := b.request(prompt+"\n\nReturn ONLY strict JSON. No extra text.", opts.Model, opts, json.RawMessage(`"json"`))
	var out strings.Builder
	if err := b.client.Generate(ctx, req, func(gr api.GenerateResponse) error {
		out.WriteString(gr.Response)
		return nil
	}); err != nil {
		return "", fmt.Errorf("ollama generate json: %w", err)
	}
	return out.String(), nil
}
