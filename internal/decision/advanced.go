package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"missiond/internal/llm"
	"missiond/internal/mission"
)

const advancedTimeout = 20 * time.Second

func buildDecidePrompt(task *mission.Task) string {
	var sb strings.Builder
	sb.WriteString("You are a task router. Pick the single best provider for the task below.\n")
	sb.WriteString("Respond ONLY with JSON: {\"provider\": \"<name>\"}\n\n")
	sb.WriteString("PROVIDERS:\n")
	sb.WriteString("- web_search: live web lookups for current facts, news, recent events.\n")
	sb.WriteString("- knowledge: direct factual answers, definitions, explanations.\n")
	sb.WriteString("- summarize: condensing material already contained in the task.\n\n")
	sb.WriteString(fmt.Sprintf("Task: %q\n", task.Description))
	return sb.String()
}

func buildRedecidePrompt(task *mission.Task, failure Failure) string {
	var sb strings.Builder
	sb.WriteString("You are a task router reacting to a failed attempt.\n")
	sb.WriteString("Respond ONLY with JSON: {\"action\": \"retry|alternative_source|escalate\", \"next_provider\": \"<name or empty>\"}\n\n")
	sb.WriteString("PROVIDERS: web_search, knowledge, summarize\n\n")
	sb.WriteString(fmt.Sprintf("Task: %q\n", task.Description))
	sb.WriteString(fmt.Sprintf("Failed provider: %s\n", failure.Provider))
	sb.WriteString(fmt.Sprintf("Error: %s\n", failure.Err))
	if failure.Validation != nil {
		sb.WriteString(fmt.Sprintf("Validator critique: %s\n", failure.Validation.Critique))
	}
	sb.WriteString(fmt.Sprintf("Retries so far: %d of %d\n", task.Retries, MaxTaskRetries))
	return sb.String()
}

// decideAdvanced delegates provider selection to the generative client.
// The second return is false whenever the suggestion cannot be used, which
// sends the caller down the rule-based path.
func (e *Engine) decideAdvanced(ctx context.Context, task *mission.Task) (Decision, bool) {
	ctx, cancel := context.WithTimeout(ctx, advancedTimeout)
	defer cancel()

	raw, err := e.gen.GenerateJSON(ctx, buildDecidePrompt(task), llm.GenerateOptions{Temperature: 0.1})
	if err != nil {
		return Decision{}, false
	}

	var out struct {
		Provider string `json:"provider"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Decision{}, false
	}
	provider := strings.ToLower(strings.TrimSpace(out.Provider))
	if !KnownProvider(provider) {
		return Decision{}, false
	}
	return Decision{Provider: provider}, true
}

func (e *Engine) redecideAdvanced(ctx context.Context, task *mission.Task, failure Failure) (Remediation, bool) {
	ctx, cancel := context.WithTimeout(ctx, advancedTimeout)
	defer cancel()

	raw, err := e.gen.GenerateJSON(ctx, buildRedecidePrompt(task, failure), llm.GenerateOptions{Temperature: 0.1})
	if err != nil {
		return Remediation{}, false
	}

	var out struct {
		Action       string `json:"action"`
		NextProvider string `json:"next_provider"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Remediation{}, false
	}

	action := strings.ToLower(strings.TrimSpace(out.Action))
	provider := strings.ToLower(strings.TrimSpace(out.NextProvider))
	switch action {
	case ActionRetry:
		if provider == "" {
			provider = failure.Provider
		}
	case ActionAlternativeSource:
		if !KnownProvider(provider) || provider == failure.Provider {
			provider = nextProvider(failure.Provider)
		}
	case ActionEscalate:
		provider = ""
	default:
		return Remediation{}, false
	}

	if action != ActionEscalate && !KnownProvider(provider) {
		return Remediation{}, false
	}
	return Remediation{Action: action, NextProvider: provider}, true
}
