// Package decomposer splits a mission goal into an ordered list of atomic
// task descriptions using one generative call.
package decomposer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"missiond/internal/llm"
	"missiond/internal/mission"
)

// ErrDecomposition marks a generative call that errored or returned output
// that does not parse as a JSON array of task objects. The mission-creation
// boundary decides the mission's fate; there is no retry at this layer.
var ErrDecomposition = errors.New("goal decomposition failed")

type Decomposer struct {
	gen llm.Client
	log *zap.Logger
}

func New(gen llm.Client, log *zap.Logger) *Decomposer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decomposer{gen: gen, log: log}
}

func buildDecomposePrompt(goal string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert planner. Break the user's goal into an ordered list of atomic sub-tasks.\n")
	sb.WriteString("Respond ONLY with a JSON array. No extra text.\n\n")

	sb.WriteString("OUTPUT JSON SCHEMA:\n")
	sb.WriteString("[{\"description\": \"<one atomic sub-task, imperative phrasing>\"}]\n\n")

	sb.WriteString("RULES:\n")
	sb.WriteString("1) Order the array by execution priority: earlier entries first.\n")
	sb.WriteString("2) Each description must be self-contained and executable on its own.\n")
	sb.WriteString("3) Use as few tasks as the goal allows; a single task is fine.\n")
	sb.WriteString("4) Return [] if the goal needs no work.\n")
	sb.WriteString("5) Never leave a description empty.\n\n")

	sb.WriteString("Decompose this goal now:\n")
	sb.WriteString(fmt.Sprintf("Goal: %q\n", goal))
	sb.WriteString("Assistant: ")

	return sb.String()
}

// Decompose returns the ordered task descriptions for a mission with a
// non-empty goal and no tasks yet. An empty slice is a valid outcome.
func (d *Decomposer) Decompose(ctx context.Context, m *mission.Mission) ([]string, error) {
	if strings.TrimSpace(m.Goal) == "" {
		return nil, fmt.Errorf("%w: mission %s has an empty goal", ErrDecomposition, m.ID)
	}
	if len(m.Tasks) > 0 {
		return nil, fmt.Errorf("%w: mission %s already has tasks", ErrDecomposition, m.ID)
	}

	raw, err := d.gen.GenerateJSON(ctx, buildDecomposePrompt(m.Goal), llm.GenerateOptions{Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecomposition, err)
	}

	// json.Unmarshal accepts "null" into a slice without error; only an
	// actual array counts as a decomposition.
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("%w: response is not a JSON array of tasks", ErrDecomposition)
	}

	var entries []struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		return nil, fmt.Errorf("%w: response is not a JSON array of tasks: %v", ErrDecomposition, err)
	}

	descriptions := make([]string, 0, len(entries))
	for _, e := range entries {
		desc := strings.TrimSpace(e.Description)
		if desc == "" {
			continue
		}
		descriptions = append(descriptions, desc)
	}

	d.log.Info("goal decomposed",
		zap.String("mission_id", m.ID),
		zap.Int("tasks", len(descriptions)))
	return descriptions, nil
}
