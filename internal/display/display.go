package display

import (
	"fmt"
	"strings"

	"missiond/internal/mission"
)

const maxResultPreviewLength = 100

func FormatMission(m *mission.Mission) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mission %s [%s]: %s\n", m.ID, m.Status, m.Goal))
	sb.WriteString("--------------------------------------------------\n")

	for i, t := range m.Tasks {
		sb.WriteString(fmt.Sprintf("Task %d (ID: %s) [%s]\n", i+1, t.ID, t.Status))
		sb.WriteString(fmt.Sprintf("  Description: %s\n", t.Description))
		if t.Retries > 0 {
			sb.WriteString(fmt.Sprintf("  Retries: %d\n", t.Retries))
		}
		if t.Result != "" {
			sb.WriteString(fmt.Sprintf("  Result: %s\n", formatValueForDisplay(t.Result)))
		}
		if t.FailureDetails != nil {
			sb.WriteString(fmt.Sprintf("  Last failure (%s): %s\n",
				t.FailureDetails.AttemptedProvider, formatValueForDisplay(t.FailureDetails.OriginalError)))
		}
	}
	if m.Result != "" {
		sb.WriteString(fmt.Sprintf("Outcome: %s\n", m.Result))
	}
	sb.WriteString("--------------------------------------------------")
	return sb.String()
}

func formatValueForDisplay(value any) string {
	s := fmt.Sprintf("%v", value)
	s = strings.ReplaceAll(s, "\n", "\\n")

	if len(s) > maxResultPreviewLength {
		return s[:maxResultPreviewLength] + "..."
	}
	return s
}
