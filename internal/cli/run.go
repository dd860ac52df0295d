package cli

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/hbomb79/smartmedia/internal/api/runs"
	"github.com/spf13/cobra"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Run a single time-boxed metadata extraction",
		Long: `Select the media files which do not yet have metadata, probe each of them
and save the results. The run stops between chunks once the configured
runtime budget is spent; files not reached are picked up by the next run.

Only one run may execute at a time across every process sharing the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, cleanup, err := opts.bootstrap(ctx, needsDatabase)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := app.RunExtraction(ctx)
			if err != nil {
				return fmt.Errorf("extraction: %w", err)
			}

			return opts.render(cmd.OutOrStdout(), runs.NewDto(result), func(w io.Writer) error {
				fmt.Fprintf(w, "Run %s finished in %s\n\n", result.RunID, result.Elapsed.Round(time.Millisecond))
				fmt.Fprintf(w, "  Candidates: %d\n", result.CandidateCount)
				fmt.Fprintf(w, "  Extracted:  %d\n", result.SuccessCount)
				fmt.Fprintf(w, "  Failed:     %d\n", result.FailCount)
				fmt.Fprintf(w, "  Duplicates: %d\n", result.DuplicateCount)
				if result.Halted {
					fmt.Fprintln(w, "\nRuntime budget exhausted; remaining files will be processed by the next run.")
				}

				writeReasons(w, "Failures", result.FailedHashes)
				return nil
			})
		},
	}
}

func newReconcileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Remove metadata for content which no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, cleanup, err := opts.bootstrap(ctx, needsDatabase)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := app.Reconcile(ctx)
			if err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}

			return opts.render(cmd.OutOrStdout(), result, func(w io.Writer) error {
				if len(result.Removed) == 0 {
					fmt.Fprintln(w, "No orphaned metadata found.")
					return nil
				}

				writeReasons(w, fmt.Sprintf("Removed (%d)", len(result.Removed)), result.Removed)
				return nil
			})
		},
	}
}

func writeReasons(w io.Writer, heading string, reasons map[string]string) {
	if len(reasons) == 0 {
		return
	}

	keys := make([]string, 0, len(reasons))
	for k := range reasons {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	fmt.Fprintf(w, "\n%s:\n", heading)
	for _, k := range keys {
		fmt.Fprintf(w, "- %s: %s\n", k, reasons[k])
	}
}
