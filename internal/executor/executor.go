// Package executor drives a single task from pending to a terminal status,
// coordinating the decision engine, the capability providers and the
// validator. Retries are strictly sequential; each one may depend on the
// engine's read of the previous failure.
package executor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"missiond/internal/capability"
	"missiond/internal/decision"
	"missiond/internal/metrics"
	"missiond/internal/mission"
	"missiond/internal/store"
	"missiond/internal/validator"
)

const defaultProviderTimeout = 60 * time.Second

type Executor struct {
	store    store.Store
	engine   *decision.Engine
	registry *capability.Registry
	log      *zap.Logger

	// ProviderTimeout bounds one provider invocation. Zero means the
	// default.
	ProviderTimeout time.Duration
}

func New(st store.Store, engine *decision.Engine, registry *capability.Registry, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{store: st, engine: engine, registry: registry, log: log}
}

// Run executes the task's retry loop until it reaches completed or failed
// and returns the resolved record. Provider and validation failures never
// escape as errors; only store access can fail.
func (e *Executor) Run(ctx context.Context, taskID string) (*mission.Task, *metrics.TaskMetrics, error) {
	tm := &metrics.TaskMetrics{TaskID: taskID, Start: time.Now()}
	defer func() {
		tm.End = time.Now()
		tm.Finalize()
	}()

	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, tm, fmt.Errorf("load task %s: %w", taskID, err)
	}
	if mission.IsTerminal(task.Status) {
		// Terminal statuses are never revisited.
		return task, tm, nil
	}

	providerName := e.engine.Decide(ctx, task).Provider

	for {
		// Re-read before each attempt: the task may have been finalized
		// externally between retry iterations.
		task, err = e.store.GetTask(ctx, taskID)
		if err != nil {
			return nil, tm, fmt.Errorf("load task %s: %w", taskID, err)
		}
		if mission.IsTerminal(task.Status) {
			e.log.Info("task finalized externally, aborting loop",
				zap.String("task_id", task.ID),
				zap.String("status", task.Status))
			tm.Retries = task.Retries
			return task, tm, nil
		}
		if ctx.Err() != nil {
			if ferr := e.finalizeFailed(context.WithoutCancel(ctx), task, providerName, "execution cancelled: "+ctx.Err().Error()); ferr != nil {
				return nil, tm, ferr
			}
			tm.Retries = task.Retries
			return task, tm, nil
		}

		if task.Status == mission.StatusPending {
			if err := e.updateTask(ctx, task, store.TaskUpdate{Status: ptr(mission.StatusInProgress)}); err != nil {
				return nil, tm, err
			}
		}

		am := metrics.AttemptMetrics{Provider: providerName, Start: time.Now()}
		output, invokeErr := e.invoke(ctx, providerName, task.Description)
		am.End = time.Now()
		am.DurationMs = am.End.Sub(am.Start).Milliseconds()
		am.Success = invokeErr == nil
		if invokeErr != nil {
			am.Err = invokeErr.Error()
		}
		tm.Attempts = append(tm.Attempts, am)

		var failure decision.Failure
		if invokeErr == nil {
			verdict := validator.Validate(task, output)
			upd := store.TaskUpdate{Result: &output, ValidationOutcome: verdict}
			if err := e.updateTask(ctx, task, upd); err != nil {
				return nil, tm, err
			}

			if verdict.IsValid {
				if err := e.updateTask(ctx, task, store.TaskUpdate{Status: ptr(mission.StatusCompleted)}); err != nil {
					return nil, tm, err
				}
				e.log.Info("attempt succeeded",
					zap.String("task_id", task.ID),
					zap.String("provider", providerName),
					zap.Float64("quality_score", verdict.QualityScore))
				tm.Completed = true
				tm.Retries = task.Retries
				return task, tm, nil
			}

			e.log.Warn("attempt rejected by validator",
				zap.String("task_id", task.ID),
				zap.String("provider", providerName),
				zap.String("critique", verdict.Critique))
			failure = decision.Failure{Err: verdict.Critique, Provider: providerName, Validation: verdict}
		} else {
			e.log.Warn("attempt failed",
				zap.String("task_id", task.ID),
				zap.String("provider", providerName),
				zap.Error(invokeErr))
			failure = decision.Failure{Err: invokeErr.Error(), Provider: providerName}
		}

		details := &mission.FailureDetails{
			OriginalError:     failure.Err,
			AttemptedProvider: providerName,
			Timestamp:         time.Now(),
		}

		if task.Retries >= decision.MaxTaskRetries {
			if err := e.updateTask(ctx, task, store.TaskUpdate{
				Status:         ptr(mission.StatusFailed),
				FailureDetails: details,
			}); err != nil {
				return nil, tm, err
			}
			e.log.Error("retry ceiling reached, task failed",
				zap.String("task_id", task.ID),
				zap.String("provider", providerName),
				zap.Int("retries", task.Retries))
			tm.Retries = task.Retries
			return task, tm, nil
		}

		retries := task.Retries + 1
		if err := e.updateTask(ctx, task, store.TaskUpdate{
			Retries:        &retries,
			FailureDetails: details,
		}); err != nil {
			return nil, tm, err
		}

		rem := e.engine.ReDecide(ctx, task, failure)
		if rem.Action == decision.ActionEscalate {
			if ferr := e.finalizeFailed(ctx, task, providerName, failure.Err); ferr != nil {
				return nil, tm, ferr
			}
			tm.Retries = task.Retries
			return task, tm, nil
		}
		if rem.NextProvider != "" {
			providerName = rem.NextProvider
		}
	}
}

// invoke performs exactly one provider call with a bounded timeout. Panics
// are converted to errors so the retry loop stays in control.
func (e *Executor) invoke(ctx context.Context, providerName, query string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in provider %s: %v", providerName, rec)
		}
	}()

	p, err := e.registry.Get(providerName)
	if err != nil {
		return "", err
	}

	timeout := e.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return p.Invoke(callCtx, query, capability.Options{})
}

// updateTask persists the change and mirrors it onto the local copy so the
// loop keeps working with current values.
func (e *Executor) updateTask(ctx context.Context, t *mission.Task, upd store.TaskUpdate) error {
	if err := e.store.UpdateTask(ctx, t.ID, upd); err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Retries != nil {
		t.Retries = *upd.Retries
	}
	if upd.Result != nil {
		t.Result = *upd.Result
	}
	if upd.FailureDetails != nil {
		t.FailureDetails = upd.FailureDetails
	}
	if upd.ValidationOutcome != nil {
		t.ValidationOutcome = upd.ValidationOutcome
	}
	return nil
}

func (e *Executor) finalizeFailed(ctx context.Context, t *mission.Task, providerName, cause string) error {
	return e.updateTask(ctx, t, store.TaskUpdate{
		Status: ptr(mission.StatusFailed),
		FailureDetails: &mission.FailureDetails{
			OriginalError:     cause,
			AttemptedProvider: providerName,
			Timestamp:         time.Now(),
		},
	})
}

func ptr[T any](v T) *T { return &v }
