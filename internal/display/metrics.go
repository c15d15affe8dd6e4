package display

import (
	"fmt"
	"strings"

	"missiond/internal/metrics"
)

func FormatMissionMetrics(mm *metrics.MissionMetrics) string {
	if mm == nil {
		return "No metrics available."
	}
	var sb strings.Builder
	sb.WriteString("Execution metrics:\n")
	sb.WriteString(fmt.Sprintf("- Total: %d ms  (success=%v)\n", mm.DurationMs, mm.Succeeded))
	for _, t := range mm.Tasks {
		sb.WriteString(fmt.Sprintf("  Task %s: %d ms, retries=%d\n",
			t.TaskID, t.DurationMs, t.Retries))
		for _, a := range t.Attempts {
			status := "ok"
			if !a.Success {
				status = "err"
			}
			sb.WriteString(fmt.Sprintf("    - %-12s %5d ms  [%s]\n",
				a.Provider, a.DurationMs, status))
		}
	}
	return sb.String()
}
