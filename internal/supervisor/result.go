package supervisor

import "missiond/internal/metrics"

// MissionResult is delivered on the Results channel when a mission reaches
// a terminal status.
type MissionResult struct {
	MissionID    string                  `json:"mission_id"`
	OriginalGoal string                  `json:"original_goal"`
	Status       string                  `json:"status"`
	Summary      string                  `json:"summary,omitempty"`
	Error        string                  `json:"error,omitempty"`
	Metrics      *metrics.MissionMetrics `json:"metrics,omitempty"`
}
