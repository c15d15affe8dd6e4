package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"missiond/internal/mission"
)

func seedMission(t *testing.T, s *Memory, id string, status string, taskIDs ...string) *mission.Mission {
	t.Helper()

	now := time.Now()
	m := &mission.Mission{
		ID:        id,
		Goal:      "goal for " + id,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, tid := range taskIDs {
		m.Tasks = append(m.Tasks, &mission.Task{
			ID:          tid,
			MissionID:   id,
			Description: "task " + tid,
			Status:      mission.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := s.CreateMission(context.Background(), m); err != nil {
		t.Fatalf("CreateMission(%s): %v", id, err)
	}
	return m
}

func TestMemoryMissionRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	seedMission(t, s, "m1", mission.StatusPending, "t1", "t2")

	got, err := s.GetMission(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMission: %v", err)
	}
	if got.Goal != "goal for m1" {
		t.Errorf("goal = %q", got.Goal)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(got.Tasks))
	}
	if got.Tasks[0].ID != "t1" || got.Tasks[1].ID != "t2" {
		t.Errorf("task order = %s, %s", got.Tasks[0].ID, got.Tasks[1].ID)
	}

	if _, err := s.GetMission(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMission(missing) = %v, want ErrNotFound", err)
	}
}

func TestMemoryReadsDoNotAlias(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	seedMission(t, s, "m1", mission.StatusPending, "t1")

	first, _ := s.GetMission(ctx, "m1")
	first.Goal = "mutated"
	first.Tasks[0].Status = mission.StatusFailed

	second, _ := s.GetMission(ctx, "m1")
	if second.Goal != "goal for m1" {
		t.Errorf("mutating a returned mission leaked into the store")
	}
	if second.Tasks[0].Status != mission.StatusPending {
		t.Errorf("mutating a returned task leaked into the store")
	}
}

func TestMemoryTaskUpdatesReflectInMission(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	seedMission(t, s, "m1", mission.StatusInProgress, "t1")

	status := mission.StatusCompleted
	result := "done"
	retries := 2
	upd := TaskUpdate{
		Status:  &status,
		Result:  &result,
		Retries: &retries,
		FailureDetails: &mission.FailureDetails{
			OriginalError:     "transient",
			AttemptedProvider: "web_search",
			Timestamp:         time.Now(),
		},
		ValidationOutcome: &mission.ValidationOutput{
			IsValid:         true,
			QualityScore:    0.7,
			Critique:        "fine",
			SuggestedAction: mission.ActionAccept,
		},
	}
	if err := s.UpdateTask(ctx, "t1", upd); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	task, err := s.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Status != mission.StatusCompleted || task.Result != "done" || task.Retries != 2 {
		t.Errorf("task after update = %+v", task)
	}
	if task.FailureDetails == nil || task.FailureDetails.OriginalError != "transient" {
		t.Errorf("failure details = %+v", task.FailureDetails)
	}
	if task.ValidationOutcome == nil || task.ValidationOutcome.SuggestedAction != mission.ActionAccept {
		t.Errorf("validation outcome = %+v", task.ValidationOutcome)
	}

	// The same task must be visible through its mission.
	m, _ := s.GetMission(ctx, "m1")
	if m.Tasks[0].Status != mission.StatusCompleted {
		t.Errorf("mission view shows status %q, want completed", m.Tasks[0].Status)
	}
}

func TestMemoryPartialUpdateLeavesOtherFields(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	seedMission(t, s, "m1", mission.StatusInProgress, "t1")

	result := "partial output"
	if err := s.UpdateTask(ctx, "t1", TaskUpdate{Result: &result}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	task, _ := s.GetTask(ctx, "t1")
	if task.Result != "partial output" {
		t.Errorf("result = %q", task.Result)
	}
	if task.Status != mission.StatusPending {
		t.Errorf("status changed by a result-only update: %q", task.Status)
	}
	if task.Retries != 0 {
		t.Errorf("retries changed by a result-only update: %d", task.Retries)
	}

	if err := s.UpdateTask(ctx, "missing", TaskUpdate{Result: &result}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTask(missing) = %v, want ErrNotFound", err)
	}
}

func TestMemoryListActiveMissions(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	seedMission(t, s, "m1", mission.StatusPending)
	seedMission(t, s, "m2", mission.StatusCompleted)
	seedMission(t, s, "m3", mission.StatusInProgress)
	seedMission(t, s, "m4", mission.StatusFailed)

	active, err := s.ListActiveMissions(ctx)
	if err != nil {
		t.Fatalf("ListActiveMissions: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active missions = %d, want 2", len(active))
	}
	if active[0].ID != "m1" || active[1].ID != "m3" {
		t.Errorf("active order = %s, %s, want m1, m3", active[0].ID, active[1].ID)
	}

	status := mission.StatusFailed
	if err := s.UpdateMission(ctx, "m1", MissionUpdate{Status: &status}); err != nil {
		t.Fatalf("UpdateMission: %v", err)
	}
	active, _ = s.ListActiveMissions(ctx)
	if len(active) != 1 || active[0].ID != "m3" {
		t.Errorf("after finalizing m1, active = %+v", active)
	}
}

func TestMemoryDeleteMissionRemovesTasks(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	seedMission(t, s, "m1", mission.StatusPending, "t1", "t2")

	if err := s.DeleteMission(ctx, "m1"); err != nil {
		t.Fatalf("DeleteMission: %v", err)
	}
	if _, err := s.GetMission(ctx, "m1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMission after delete = %v, want ErrNotFound", err)
	}
	if _, err := s.GetTask(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask after mission delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteMission(ctx, "m1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteMission = %v, want ErrNotFound", err)
	}
}

func TestMemoryDeleteTask(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	seedMission(t, s, "m1", mission.StatusPending, "t1", "t2")

	if err := s.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := s.GetTask(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask after delete = %v, want ErrNotFound", err)
	}

	m, _ := s.GetMission(ctx, "m1")
	if len(m.Tasks) != 1 || m.Tasks[0].ID != "t2" {
		t.Errorf("mission tasks after delete = %+v", m.Tasks)
	}
}
