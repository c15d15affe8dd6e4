package store

import (
	"context"
	"sync"
	"time"

	"missiond/internal/mission"
)

// Memory is the in-process store used by tests and by the CLI when no DSN
// is configured. All reads return deep copies so callers never alias the
// stored records.
type Memory struct {
	mu       sync.RWMutex
	missions map[string]*mission.Mission
	tasks    map[string]*mission.Task // task id -> task, also referenced by its mission
	order    []string                 // mission ids in creation order
}

func NewMemory() *Memory {
	return &Memory{
		missions: map[string]*mission.Mission{},
		tasks:    map[string]*mission.Task{},
	}
}

func (s *Memory) CreateMission(_ context.Context, m *mission.Mission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := copyMission(m)
	s.missions[cp.ID] = cp
	s.order = append(s.order, cp.ID)
	for _, t := range cp.Tasks {
		s.tasks[t.ID] = t
	}
	return nil
}

func (s *Memory) GetMission(_ context.Context, id string) (*mission.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.missions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyMission(m), nil
}

func (s *Memory) ListActiveMissions(_ context.Context) ([]*mission.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*mission.Mission
	for _, id := range s.order {
		m, ok := s.missions[id]
		if !ok || mission.IsTerminal(m.Status) {
			continue
		}
		out = append(out, copyMission(m))
	}
	return out, nil
}

func (s *Memory) UpdateMission(_ context.Context, id string, upd MissionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.missions[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Status != nil {
		m.Status = *upd.Status
	}
	if upd.Result != nil {
		m.Result = *upd.Result
	}
	m.UpdatedAt = time.Now()
	return nil
}

func (s *Memory) DeleteMission(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.missions[id]
	if !ok {
		return ErrNotFound
	}
	for _, t := range m.Tasks {
		delete(s.tasks, t.ID)
	}
	delete(s.missions, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Memory) GetTask(_ context.Context, id string) (*mission.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyTask(t), nil
}

func (s *Memory) UpdateTask(_ context.Context, id string, upd TaskUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
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
		fd := *upd.FailureDetails
		t.FailureDetails = &fd
	}
	if upd.ValidationOutcome != nil {
		vo := *upd.ValidationOutcome
		t.ValidationOutcome = &vo
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (s *Memory) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if m, ok := s.missions[t.MissionID]; ok {
		for i, mt := range m.Tasks {
			if mt.ID == id {
				m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
				break
			}
		}
	}
	delete(s.tasks, id)
	return nil
}

func copyMission(m *mission.Mission) *mission.Mission {
	cp := *m
	cp.Tasks = make([]*mission.Task, len(m.Tasks))
	for i, t := range m.Tasks {
		cp.Tasks[i] = copyTask(t)
	}
	return &cp
}

func copyTask(t *mission.Task) *mission.Task {
	cp := *t
	if t.FailureDetails != nil {
		fd := *t.FailureDetails
		cp.FailureDetails = &fd
	}
	if t.ValidationOutcome != nil {
		vo := *t.ValidationOutcome
		cp.ValidationOutcome = &vo
	}
	return &cp
}
