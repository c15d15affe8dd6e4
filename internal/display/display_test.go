package display

import (
	"strings"
	"testing"

	"missiond/internal/mission"
)

func TestFormatMission(t *testing.T) {
	m := &mission.Mission{
		ID:     "abc12345",
		Goal:   "Research AI adoption in hospitals",
		Status: mission.StatusInProgress,
		Tasks: []*mission.Task{
			{
				ID:          "t1",
				Description: "Search for recent AI adoption studies",
				Status:      mission.StatusCompleted,
				Result:      "Found three relevant studies.",
			},
			{
				ID:          "t2",
				Description: "Summarize the findings",
				Status:      mission.StatusFailed,
				Retries:     2,
				FailureDetails: &mission.FailureDetails{
					OriginalError:     "no results found",
					AttemptedProvider: "web_search",
				},
			},
		},
	}

	out := FormatMission(m)

	if !strings.Contains(out, "Mission abc12345 [in_progress]") {
		t.Errorf("output is missing the mission header: %q", out)
	}
	if !strings.Contains(out, "Task 1 (ID: t1) [completed]") {
		t.Errorf("output is missing the first task line.")
	}
	if !strings.Contains(out, "Retries: 2") {
		t.Errorf("output is missing the retry count.")
	}
	if !strings.Contains(out, "Last failure (web_search): no results found") {
		t.Errorf("output is missing the failure details.")
	}
}

func TestFormatMission_TruncatesLongResults(t *testing.T) {
	long := strings.Repeat("a", 300)
	m := &mission.Mission{
		ID:     "m1",
		Goal:   "goal",
		Status: mission.StatusCompleted,
		Tasks: []*mission.Task{
			{ID: "t1", Description: "task", Status: mission.StatusCompleted, Result: long},
		},
	}

	out := FormatMission(m)

	if !strings.Contains(out, "...") {
		t.Errorf("Expected long result to be truncated with '...', but it wasn't.")
	}
	if strings.Contains(out, long) {
		t.Errorf("Expected long result to be truncated, but the full string was found.")
	}
}
