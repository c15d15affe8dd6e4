// Package store is the narrow persistence contract for mission and task
// records. The core treats JSON-shaped fields as structured values; each
// implementation owns their (de)serialization.
package store

import (
	"context"
	"errors"

	"missiond/internal/mission"
)

var ErrNotFound = errors.New("record not found")

// MissionUpdate carries partial mission field updates; nil means unchanged.
type MissionUpdate struct {
	Status *string
	Result *string
}

// TaskUpdate carries partial task field updates; nil means unchanged.
type TaskUpdate struct {
	Status            *string
	Retries           *int
	Result            *string
	FailureDetails    *mission.FailureDetails
	ValidationOutcome *mission.ValidationOutput
}

type Store interface {
	CreateMission(ctx context.Context, m *mission.Mission) error
	GetMission(ctx context.Context, id string) (*mission.Mission, error)
	// ListActiveMissions returns missions not yet in a terminal status.
	ListActiveMissions(ctx context.Context) ([]*mission.Mission, error)
	UpdateMission(ctx context.Context, id string, upd MissionUpdate) error
	DeleteMission(ctx context.Context, id string) error

	GetTask(ctx context.Context, id string) (*mission.Task, error)
	UpdateTask(ctx context.Context, id string, upd TaskUpdate) error
	DeleteTask(ctx context.Context, id string) error
}
