package capability

import (
	"context"
	"fmt"
	"strings"

	"missiond/internal/llm"
)

// Knowledge answers a task directly from the generative backend's own
// knowledge, without external retrieval.
type Knowledge struct {
	gen llm.Client
}

func NewKnowledge(gen llm.Client) *Knowledge { return &Knowledge{gen: gen} }

func (k *Knowledge) Name() string { return NameKnowledge }

func (k *Knowledge) Invoke(ctx context.Context, query string, opts Options) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are a precise research assistant. Answer the request below directly and factually.\n")
	sb.WriteString("If you do not know, say so explicitly instead of inventing facts.\n\n")
	sb.WriteString("Request: ")
	sb.WriteString(query)

	out, err := k.gen.Generate(ctx, sb.String(), generateOptions(opts))
	if err != nil {
		return "", fmt.Errorf("knowledge provider: %w", err)
	}
	return out, nil
}

// Summarize condenses the material embedded in a task description.
type Summarize struct {
	gen llm.Client
}

func NewSummarize(gen llm.Client) *Summarize { return &Summarize{gen: gen} }

func (s *Summarize) Name() string { return NameSummarize }

func (s *Summarize) Invoke(ctx context.Context, query string, opts Options) (string, error) {
	var sb strings.Builder
	sb.WriteString("Summarize the following material into a concise, information-dense digest.\n")
	sb.WriteString("Keep concrete facts, figures and names. Drop filler.\n\n")
	sb.WriteString(query)

	out, err := s.gen.Generate(ctx, sb.String(), generateOptions(opts))
	if err != nil {
		return "", fmt.Errorf("summarize provider: %w", err)
	}
	return out, nil
}

func generateOptions(opts Options) llm.GenerateOptions {
	return llm.GenerateOptions{
		Model:           opts.Model,
		Temperature:     opts.Temperature,
		MaxOutputTokens: opts.MaxOutputTokens,
	}
}
