package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"missiond/internal/decomposer"
	"missiond/internal/display"
	"missiond/internal/listener"
	"missiond/internal/mission"
	"missiond/internal/supervisor"
)

func printResults(results <-chan supervisor.MissionResult) {
	for result := range results {
		if result.Status == mission.StatusFailed {
			listener.AsyncPrintln(fmt.Sprintf("[Mission %s FAILED] %s", result.MissionID, result.Error))
		} else {
			listener.AsyncPrintln(fmt.Sprintf("[Mission %s COMPLETED] %s", result.MissionID, result.Summary))
		}
		if result.Metrics != nil {
			listener.AsyncPrintln(display.FormatMissionMetrics(result.Metrics))
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "missiond",
	Short: "A mission orchestrator that routes tasks to search and generation providers",
	Long:  `missiond splits a high-level goal into tasks, routes each task to the best capability provider, retries failures with bounded policy, and validates every result before accepting it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		app, err := buildApp(ctx)
		if err != nil {
			return err
		}

		if err := listener.Init(); err != nil {
			return fmt.Errorf("init terminal input: %w", err)
		}
		defer listener.Close()

		app.Sup.Start(ctx)
		go printResults(app.Sup.Results)

		// Graceful shutdown: cancel the context and close the listener so
		// GetInput unblocks and RunE returns through its deferred cleanup.
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(c)
		go func() {
			<-c
			cancel()
			listener.Close()
		}()

		listener.AsyncPrintln("Describe a goal to launch a mission. Commands: status, cancel [id], exit.")

		for {
			input := listener.GetInput()
			if ctx.Err() != nil {
				fmt.Println("\nGoodbye!")
				return nil
			}
			switch {
			case input == "":
				continue
			case strings.EqualFold(input, "exit"):
				fmt.Println("Goodbye!")
				return nil
			case strings.EqualFold(input, "status"):
				printActive(ctx, app)
				continue
			case strings.HasPrefix(strings.ToLower(input), "cancel"):
				id := strings.TrimSpace(strings.TrimPrefix(strings.ToLower(input), "cancel"))
				cancelled, err := app.Sup.Cancel(id)
				if err != nil {
					listener.AsyncPrintln(fmt.Sprintf("[Cancel] %v", err))
				} else {
					listener.AsyncPrintln(fmt.Sprintf("[Cancel] mission %s cancelled", cancelled))
				}
				continue
			}

			m, err := app.Sup.CreateMission(ctx, input)
			if err != nil {
				if errors.Is(err, decomposer.ErrDecomposition) {
					listener.AsyncPrintln(fmt.Sprintf("[Decomposition FAILED] %v", err))
				} else {
					listener.AsyncPrintln(fmt.Sprintf("[Error] %v", err))
				}
				continue
			}
			if mission.IsTerminal(m.Status) {
				listener.AsyncPrintln(fmt.Sprintf("[Mission %s] %s", m.ID, m.Result))
				continue
			}

			listener.AsyncPrintln(display.FormatMission(m))
			if !listener.AskYesNo(fmt.Sprintf("Execute mission %s with %d task(s)?", m.ID, len(m.Tasks))) {
				listener.AsyncPrintln("[Skipped] mission left pending")
				continue
			}
			app.Sup.Submit(m.ID)
			listener.AsyncPrintln(fmt.Sprintf("[Mission %s submitted]", m.ID))
		}
	},
}

func printActive(ctx context.Context, app *App) {
	ms, err := app.Store.ListActiveMissions(ctx)
	if err != nil {
		listener.AsyncPrintln(fmt.Sprintf("[Status] %v", err))
		return
	}
	if len(ms) == 0 {
		listener.AsyncPrintln("[Status] no active missions")
		return
	}
	for _, m := range ms {
		listener.AsyncPrintln(display.FormatMission(m))
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
