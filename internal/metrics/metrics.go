package metrics

import "time"

type AttemptMetrics struct {
	Provider   string    `json:"provider"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Err        string    `json:"err,omitempty"`
}

type TaskMetrics struct {
	TaskID     string           `json:"task_id"`
	Start      time.Time        `json:"start"`
	End        time.Time        `json:"end"`
	DurationMs int64            `json:"duration_ms"`
	Completed  bool             `json:"completed"`
	Retries    int              `json:"retries"`
	Attempts   []AttemptMetrics `json:"attempts"`
}

type MissionMetrics struct {
	MissionID  string        `json:"mission_id"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	DurationMs int64         `json:"duration_ms"`
	Succeeded  bool          `json:"succeeded"`
	Tasks      []TaskMetrics `json:"tasks"`
}

// Compute derived fields for a task.
func (t *TaskMetrics) Finalize() {
	t.DurationMs = t.End.Sub(t.Start).Milliseconds()
}

// Compute derived fields for a mission.
func (m *MissionMetrics) Finalize() {
	m.DurationMs = m.End.Sub(m.Start).Milliseconds()
}
