package cli

import (
	"fmt"
	"io"

	"github.com/hbomb79/smartmedia/internal/cost"
	"github.com/spf13/cobra"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Estimate the processing cost of all extracted media",
		Long: `Estimate the cost of processing every file with extracted metadata, split
between content which has already been converted and content which has not.

Costs for categories without a price in the region are never counted as
free: they are excluded from the totals and reported as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, cleanup, err := opts.bootstrap(ctx, needsDatabase|needsCatalog)
			if err != nil {
				return err
			}
			defer cleanup()

			if region == "" {
				region = app.DefaultRegion()
			}

			summary, err := app.Report(ctx, region)
			if err != nil {
				return fmt.Errorf("report: %w", err)
			}

			return opts.render(cmd.OutOrStdout(), summary, func(w io.Writer) error {
				writeSummary(w, summary)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&region, "region", "r", "", "region to price (defaults to the configured region)")
	return cmd
}

func newEstimateCmd(opts *rootOptions) *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:   "estimate <content-hash>",
		Short: "Estimate the processing cost of a single piece of content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, cleanup, err := opts.bootstrap(ctx, needsDatabase|needsCatalog)
			if err != nil {
				return err
			}
			defer cleanup()

			if region == "" {
				region = app.DefaultRegion()
			}

			estimate, err := app.EstimateFile(ctx, region, args[0])
			if err != nil {
				return fmt.Errorf("estimate: %w", err)
			}

			return opts.render(cmd.OutOrStdout(), estimate, func(w io.Writer) error {
				fmt.Fprintf(w, "%s (%.2f minutes) in %s:\n", estimate.ContentHash, estimate.DurationMinutes, region)
				for _, e := range estimate.Estimates {
					fmt.Fprintf(w, "  %-20s %s\n", e.Category, cost.FormatCost(e.Cost))
				}
				fmt.Fprintf(w, "\n  %-20s %s\n", "total", cost.FormatCost(estimate.TotalCost))
				if estimate.PresetsCost != nil {
					fmt.Fprintf(w, "  %-20s %s\n", "presets", cost.FormatCost(estimate.PresetsCost))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&region, "region", "r", "", "region to price (defaults to the configured region)")
	return cmd
}

func writeSummary(w io.Writer, summary *cost.Summary) {
	fmt.Fprintf(w, "Cost report for %s\n\n", summary.Region)
	if summary.MediaFiles != nil {
		fmt.Fprintf(w, "  Media files:   %d (%d video, %d audio)\n", summary.MediaFiles.Total, summary.MediaFiles.Video, summary.MediaFiles.Audio)
	}
	fmt.Fprintf(w, "  With metadata: %d\n", summary.Files)
	fmt.Fprintf(w, "  Unpriced:      %d\n\n", summary.UnpricedFiles)

	for _, total := range summary.Categories {
		fmt.Fprintf(w, "  %-20s %5d files %10.2f min  %s\n", total.Category, total.Files, total.Minutes, cost.FormatCost(total.Cost))
	}

	fmt.Fprintf(w, "\n  Converted: $%.4f\n", summary.ConvertedCost)
	fmt.Fprintf(w, "  Pending:   $%.4f\n", summary.PendingCost)
	fmt.Fprintf(w, "  Total:     $%.4f\n", summary.TotalCost)

	for _, warning := range summary.Warnings {
		fmt.Fprintf(w, "\nWarning: %s", warning)
	}
	if len(summary.Warnings) > 0 {
		fmt.Fprintln(w)
	}
}
