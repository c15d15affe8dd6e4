package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"missiond/internal/display"
	"missiond/internal/mission"
)

var runCmd = &cobra.Command{
	Use:   "run <goal>",
	Short: "Execute a single mission to completion and print the outcome",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		goal := strings.Join(args, " ")

		app, err := buildApp(ctx)
		if err != nil {
			return err
		}

		m, err := app.Sup.CreateMission(ctx, goal)
		if err != nil {
			return err
		}

		if !mission.IsTerminal(m.Status) {
			app.Sup.RunMission(ctx, m.ID)
		}

		final, err := app.Store.GetMission(ctx, m.ID)
		if err != nil {
			return err
		}
		fmt.Println(display.FormatMission(final))

		select {
		case res := <-app.Sup.Results:
			fmt.Println(display.FormatMissionMetrics(res.Metrics))
		default:
		}

		if final.Status == mission.StatusFailed {
			return fmt.Errorf("mission %s failed", final.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
