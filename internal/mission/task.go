package mission

import "time"

// Suggested remedial actions emitted by the validator.
const (
	ActionAccept            = "accept"
	ActionRetryNewParams    = "retry_task_new_params"
	ActionRefineQuery       = "refine_query"
	ActionAlternativeSource = "alternative_source"
)

type Task struct {
	ID          string `json:"id"`
	MissionID   string `json:"mission_id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Retries     int    `json:"retries"`

	// Result holds the accepted output once validated, or the last
	// attempted output.
	Result            string            `json:"result,omitempty"`
	FailureDetails    *FailureDetails   `json:"failure_details,omitempty"`
	ValidationOutcome *ValidationOutput `json:"validation_outcome,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FailureDetails records the latest failed attempt. Overwritten on each
// failure, never appended.
type FailureDetails struct {
	OriginalError     string    `json:"original_error"`
	AttemptedProvider string    `json:"attempted_provider"`
	Timestamp         time.Time `json:"timestamp"`
}

// ValidationOutput is the validator's verdict on a task's raw output.
type ValidationOutput struct {
	IsValid         bool    `json:"is_valid"`
	QualityScore    float64 `json:"quality_score"`
	Critique        string  `json:"critique"`
	SuggestedAction string  `json:"suggested_action"`
}
