package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and run extraction on a schedule",
		Long: `Start the REST gateway, and run extraction and reconciliation on the cron
schedules given in the configuration. Runs which are still in progress when
their schedule next fires are skipped.

Stops on SIGINT or SIGTERM once in-flight runs have finished.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			app, cleanup, err := opts.bootstrap(ctx, needsDatabase|needsCatalog)
			if err != nil {
				return err
			}
			defer cleanup()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(exit)
			go func() {
				select {
				case <-exit:
					cancel()
				case <-ctx.Done():
				}
			}()

			return app.Serve(ctx)
		},
	}
}
