package cli

import (
	"fmt"
	"io"

	"github.com/hbomb79/smartmedia/internal/api/prices"
	"github.com/hbomb79/smartmedia/internal/cost"
	"github.com/hbomb79/smartmedia/internal/pricing"
	"github.com/spf13/cobra"
)

func newPricingCmd(opts *rootOptions) *cobra.Command {
	var listRegions bool
	cmd := &cobra.Command{
		Use:   "pricing [region]",
		Short: "Show the live per-minute pricing for a region",
		Long: `Fetch the per-minute prices of every enabled service from the pricing catalog.
If no region is given, the configured default region is used.

Examples:
  smartmedia pricing
  smartmedia pricing eu-west-1 -o json
  smartmedia pricing --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if listRegions {
				app, _, err := opts.bootstrap(ctx, 0)
				if err != nil {
					return err
				}

				regions := app.Regions()
				return opts.render(cmd.OutOrStdout(), regions, func(w io.Writer) error {
					for _, r := range regions {
						fmt.Fprintln(w, r)
					}
					return nil
				})
			}

			app, _, err := opts.bootstrap(ctx, needsCatalog)
			if err != nil {
				return err
			}

			region := app.DefaultRegion()
			if len(args) == 1 {
				region = args[0]
			}

			lp, err := app.GetPricing(ctx, region)
			if err != nil {
				return fmt.Errorf("pricing: %w", err)
			}

			dto := prices.NewDto(region, lp)
			return opts.render(cmd.OutOrStdout(), dto, func(w io.Writer) error {
				fmt.Fprintf(w, "Pricing for %s:\n", region)
				for _, service := range dto.Services {
					variant, _ := service.Variant.MarshalText()
					fmt.Fprintf(w, "\n%s (%s):\n", variant, service.Location)
					for _, category := range pricing.CategoriesFor(service.Variant) {
						fmt.Fprintf(w, "  %-20s %s\n", category, formatPrice(service.Prices[category]))
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&listRegions, "list", "l", false, "list the known regions instead")
	return cmd
}

func formatPrice(price *float64) string {
	if price == nil {
		return cost.NoCostData
	}

	return fmt.Sprintf("$%.5f/min", *price)
}
