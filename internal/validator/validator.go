// Package validator grades a task's raw output with ordered heuristic
// checks. It performs no I/O and never mutates the task.
package validator

import (
	"fmt"
	"strings"

	"missiond/internal/decision"
	"missiond/internal/mission"
)

// MinResultLength is the shortest stringified result considered substantial.
const MinResultLength = 50

// Case-insensitive substrings that mark an upstream error leaking through
// as a "result".
var errorSignatures = []string{
	"error:",
	"api key",
	"unauthorized",
	"forbidden",
	"rate limit",
	"not configured",
	"no results found",
	"internal server error",
	"service unavailable",
	"bad gateway",
	"request timed out",
}

// Substrings that mark a stubbed or simulated upstream code path.
var placeholderMarkers = []string{
	"simulated result",
	"placeholder content",
	"not implemented",
	"lorem ipsum",
	"dummy response",
	"[stub]",
}

// Validate applies the heuristic checks in order, first match wins. The
// verdict is a pure function of the task's retry count and the raw result.
func Validate(task *mission.Task, raw string) *mission.ValidationOutput {
	lower := strings.ToLower(raw)

	if strings.TrimSpace(raw) == "" {
		return invalid(task, 0.0, "Result is empty or missing.", mission.ActionRetryNewParams)
	}

	for _, sig := range errorSignatures {
		if strings.Contains(lower, sig) {
			critique := fmt.Sprintf("Result contains a known error signature: %q.", sig)
			return invalid(task, 0.1, critique, mission.ActionRetryNewParams)
		}
	}

	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			critique := fmt.Sprintf("Result looks like placeholder or simulated content (%q).", marker)
			return invalid(task, 0.05, critique, mission.ActionRetryNewParams)
		}
	}

	if len(raw) < MinResultLength {
		critique := fmt.Sprintf("Result is too short to be useful (%d chars, need at least %d).", len(raw), MinResultLength)
		return invalid(task, 0.3, critique, mission.ActionRefineQuery)
	}

	return &mission.ValidationOutput{
		IsValid:         true,
		QualityScore:    0.7,
		Critique:        "Result passed heuristic checks.",
		SuggestedAction: mission.ActionAccept,
	}
}

// invalid fills in the suggested action: once the retry ceiling is reached
// the only sensible move is a different source.
func invalid(task *mission.Task, score float64, critique, retryAction string) *mission.ValidationOutput {
	action := retryAction
	if task.Retries >= decision.MaxTaskRetries {
		action = mission.ActionAlternativeSource
	}
	return &mission.ValidationOutput{
		IsValid:         false,
		QualityScore:    score,
		Critique:        critique,
		SuggestedAction: action,
	}
}
