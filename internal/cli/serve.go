package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"missiond/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the mission worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		app, err := buildApp(ctx)
		if err != nil {
			return err
		}

		app.Sup.Start(ctx)

		// Drain results; over HTTP the terminal state is read from the
		// store, not the channel.
		go func() {
			for range app.Sup.Results {
			}
		}()

		g := server.New(app.Store, app.Sup, app.Log)
		fmt.Printf("missiond listening on %s\n", app.Cfg.HTTPAddr)
		return g.Run(app.Cfg.HTTPAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
