// Package supervisor owns the mission lifecycle: goal decomposition, task
// fan-out, status aggregation and cancellation. It is the only layer that
// turns per-task outcomes into a mission-level verdict.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"missiond/internal/decomposer"
	"missiond/internal/executor"
	"missiond/internal/metrics"
	"missiond/internal/mission"
	"missiond/internal/store"
)

const (
	queueSize              = 100
	defaultTaskConcurrency = 4
)

type Supervisor struct {
	store store.Store
	dec   *decomposer.Decomposer
	exec  *executor.Executor
	log   *zap.Logger

	queue chan string
	// Results receives every finished mission. Buffered so slow consumers
	// do not stall the worker.
	Results chan MissionResult

	mu      sync.Mutex
	running map[string]context.CancelFunc
	lastID  string

	// TaskConcurrency caps sibling tasks executing in parallel. Zero
	// means the default.
	TaskConcurrency int
}

func New(st store.Store, dec *decomposer.Decomposer, exec *executor.Executor, log *zap.Logger) *Supervisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Supervisor{
		store:   st,
		dec:     dec,
		exec:    exec,
		log:     log,
		queue:   make(chan string, queueSize),
		Results: make(chan MissionResult, queueSize),
		running: map[string]context.CancelFunc{},
	}
}

// Start launches the worker loop; it returns when ctx is cancelled.
func (s *Supervisor) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case id := <-s.queue:
				s.log.Info("mission starting", zap.String("mission_id", id))
				s.RunMission(ctx, id)
			}
		}
	}()
}

// CreateMission decomposes the goal and persists the mission with its
// ordered tasks. A decomposition failure persists a failed mission and is
// returned as an explicit error wrapping decomposer.ErrDecomposition. A
// zero-task decomposition resolves the mission as immediately completed.
func (s *Supervisor) CreateMission(ctx context.Context, goal string) (*mission.Mission, error) {
	now := time.Now()
	m := &mission.Mission{
		ID:        shortID(),
		Goal:      strings.TrimSpace(goal),
		Status:    mission.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	descriptions, err := s.dec.Decompose(ctx, m)
	if err != nil {
		if errors.Is(err, decomposer.ErrDecomposition) {
			m.Status = mission.StatusFailed
			m.Result = "decomposition failed: " + err.Error()
			if cerr := s.store.CreateMission(ctx, m); cerr != nil {
				return nil, cerr
			}
			return m, err
		}
		return nil, err
	}

	for _, desc := range descriptions {
		m.Tasks = append(m.Tasks, &mission.Task{
			ID:          shortID(),
			MissionID:   m.ID,
			Description: desc,
			Status:      mission.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if len(m.Tasks) == 0 {
		m.Status = mission.StatusCompleted
		m.Result = "goal decomposed to zero tasks; nothing to execute"
	}

	if err := s.store.CreateMission(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("mission created",
		zap.String("mission_id", m.ID),
		zap.Int("tasks", len(m.Tasks)),
		zap.String("status", m.Status))
	return m, nil
}

// Submit enqueues a persisted mission for background execution.
func (s *Supervisor) Submit(missionID string) {
	s.queue <- missionID
}

// Cancel stops the running mission with the given id, or the most recent
// one when id is empty.
func (s *Supervisor) Cancel(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = s.lastID
	}
	cancel, ok := s.running[id]
	if !ok {
		return "", fmt.Errorf("mission %s is not running", id)
	}
	cancel()
	return id, nil
}

// RunMission executes every task of a mission and aggregates the terminal
// status. Safe to call directly for synchronous execution.
func (s *Supervisor) RunMission(ctx context.Context, missionID string) {
	m, err := s.store.GetMission(ctx, missionID)
	if err != nil {
		s.log.Error("mission load failed", zap.String("mission_id", missionID), zap.Error(err))
		return
	}
	if mission.IsTerminal(m.Status) {
		return
	}

	mm := &metrics.MissionMetrics{MissionID: m.ID, Start: time.Now()}

	missionCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.running[m.ID] = cancel
	s.lastID = m.ID
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.running, m.ID)
		s.mu.Unlock()
	}()

	if err := s.store.UpdateMission(ctx, m.ID, store.MissionUpdate{Status: ptr(mission.StatusInProgress)}); err != nil {
		s.log.Error("mission update failed", zap.String("mission_id", m.ID), zap.Error(err))
		return
	}

	limit := s.TaskConcurrency
	if limit <= 0 {
		limit = defaultTaskConcurrency
	}

	// Sibling tasks run concurrently; decomposition order is a priority
	// hint, not an execution barrier. A failed task never aborts its
	// siblings, so task failures stay out of the group error.
	g, gctx := errgroup.WithContext(missionCtx)
	g.SetLimit(limit)

	var tmu sync.Mutex
	for _, t := range m.Tasks {
		taskID := t.ID
		g.Go(func() error {
			_, tms, err := s.exec.Run(gctx, taskID)
			if tms != nil {
				tmu.Lock()
				mm.Tasks = append(mm.Tasks, *tms)
				tmu.Unlock()
			}
			if err != nil {
				return fmt.Errorf("task %s: %w", taskID, err)
			}
			return nil
		})
	}
	infraErr := g.Wait()

	mm.End = time.Now()
	mm.Finalize()

	s.finalizeMission(context.WithoutCancel(ctx), m.ID, mm, infraErr)
}

// finalizeMission computes the mission verdict from the persisted tasks.
func (s *Supervisor) finalizeMission(ctx context.Context, missionID string, mm *metrics.MissionMetrics, infraErr error) {
	m, err := s.store.GetMission(ctx, missionID)
	if err != nil {
		s.log.Error("mission reload failed", zap.String("mission_id", missionID), zap.Error(err))
		return
	}

	completed, failed := 0, 0
	var causes []string
	for _, t := range m.Tasks {
		switch t.Status {
		case mission.StatusCompleted:
			completed++
		case mission.StatusFailed:
			failed++
			if t.FailureDetails != nil {
				causes = append(causes, fmt.Sprintf("task %s: %s", t.ID, t.FailureDetails.OriginalError))
			}
		}
	}

	status := mission.StatusCompleted
	var result string
	switch {
	case infraErr != nil:
		status = mission.StatusFailed
		result = "mission aborted: " + infraErr.Error()
	case failed > 0:
		status = mission.StatusFailed
		result = fmt.Sprintf("%d of %d tasks failed: %s", failed, len(m.Tasks), strings.Join(causes, "; "))
	default:
		result = fmt.Sprintf("all %d tasks completed", len(m.Tasks))
	}

	if err := s.store.UpdateMission(ctx, missionID, store.MissionUpdate{Status: &status, Result: &result}); err != nil {
		s.log.Error("mission finalize failed", zap.String("mission_id", missionID), zap.Error(err))
		return
	}

	mm.Succeeded = status == mission.StatusCompleted
	s.log.Info("mission finished",
		zap.String("mission_id", missionID),
		zap.String("status", status),
		zap.Int("completed", completed),
		zap.Int("failed", failed))

	res := MissionResult{
		MissionID:    missionID,
		OriginalGoal: m.Goal,
		Status:       status,
		Summary:      result,
		Metrics:      mm,
	}
	if status == mission.StatusFailed {
		res.Error = result
	}
	select {
	case s.Results <- res:
	default:
		s.log.Warn("results channel full, dropping", zap.String("mission_id", missionID))
	}
}

func shortID() string {
	return uuid.New().String()[:8]
}

func ptr[T any](v T) *T { return &v }
