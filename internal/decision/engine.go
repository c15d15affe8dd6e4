// Package decision routes tasks to capability providers and recommends how
// to react to failed attempts. It owns the retry policy constant.
package decision

import (
	"context"

	"go.uber.org/zap"

	"missiond/internal/llm"
	"missiond/internal/mission"
)

// MaxTaskRetries is the number of additional attempts a task gets after
// its first failure. Consulted by the executor and the validator.
const MaxTaskRetries = 3

// Remediation actions after a failed attempt.
const (
	ActionRetry             = "retry"
	ActionAlternativeSource = "alternative_source"
	ActionEscalate          = "escalate"
)

// Decision selects the provider for a fresh attempt.
type Decision struct {
	Provider string
}

// Remediation is the engine's answer to a failed attempt.
type Remediation struct {
	Action       string
	NextProvider string
}

// Failure describes the attempt the engine is reacting to.
type Failure struct {
	Err        string
	Provider   string
	Validation *mission.ValidationOutput
}

// Engine picks providers. With a generative client it runs in advanced
// mode, falling back to the rule table whenever that path misbehaves; the
// engine holds no other state across calls.
type Engine struct {
	gen llm.Client
	log *zap.Logger
}

func NewEngine(gen llm.Client, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{gen: gen, log: log}
}

// Decide picks the provider for a task that has not failed yet. It always
// terminates in a decision.
func (e *Engine) Decide(ctx context.Context, task *mission.Task) Decision {
	if e.gen != nil {
		if d, ok := e.decideAdvanced(ctx, task); ok {
			e.log.Info("provider selected",
				zap.String("task_id", task.ID),
				zap.String("mode", "advanced"),
				zap.String("provider", d.Provider))
			return d
		}
		e.log.Warn("advanced selection failed, falling back to rules",
			zap.String("task_id", task.ID))
	}

	d := decideByRules(task.Description)
	e.log.Info("provider selected",
		zap.String("task_id", task.ID),
		zap.String("mode", "rules"),
		zap.String("provider", d.Provider))
	return d
}

// ReDecide recommends the next move after a failed attempt.
func (e *Engine) ReDecide(ctx context.Context, task *mission.Task, failure Failure) Remediation {
	if e.gen != nil {
		if r, ok := e.redecideAdvanced(ctx, task, failure); ok {
			e.log.Info("remediation selected",
				zap.String("task_id", task.ID),
				zap.String("mode", "advanced"),
				zap.String("action", r.Action),
				zap.String("next_provider", r.NextProvider))
			return r
		}
		e.log.Warn("advanced remediation failed, falling back to rules",
			zap.String("task_id", task.ID))
	}

	r := redecideByRules(task, failure)
	e.log.Info("remediation selected",
		zap.String("task_id", task.ID),
		zap.String("mode", "rules"),
		zap.String("action", r.Action),
		zap.String("next_provider", r.NextProvider))
	return r
}
