package cost

import (
	"fmt"
	"slices"

	"github.com/hbomb79/smartmedia/internal/metadata"
	"github.com/hbomb79/smartmedia/internal/pricing"
)

type (
	// CategoryTotal is the sum of all estimates for one category. Cost is nil
	// if the category is unpriced.
	CategoryTotal struct {
		Variant  pricing.Variant  `json:"variant"`
		Category pricing.Category `json:"category"`
		Files    int              `json:"files"`
		Minutes  float64          `json:"minutes"`
		Cost     *float64         `json:"cost"`
	}

	// Summary is the cost exposure of every file with metadata. Costs which
	// could not be estimated are excluded from the totals, and the files
	// they belong to are counted in UnpricedFiles instead.
	Summary struct {
		Region        string               `json:"region"`
		Files         int                  `json:"files"`
		UnpricedFiles int                  `json:"unpriced_files"`
		ConvertedCost float64              `json:"converted_cost"`
		PendingCost   float64              `json:"pending_cost"`
		TotalCost     float64              `json:"total_cost"`
		Categories    []*CategoryTotal     `json:"categories"`
		MediaFiles    *metadata.FileCounts `json:"media_files,omitempty"`
		Warnings      []string             `json:"warnings"`
	}
)

// Summarize estimates every record provided, splitting the total cost between
// content which has already been converted (per the set of converted
// content hashes) and content which has not.
func (estimator *Estimator) Summarize(region string, records []*metadata.Record, converted map[string]bool) *Summary {
	summary := &Summary{Region: region, Files: len(records), Categories: make([]*CategoryTotal, 0), Warnings: make([]string, 0)}

	totals := make(map[pricing.Category]*CategoryTotal)
	for _, record := range records {
		unpriced := false
		for _, estimate := range estimator.EstimateFile(record) {
			total, ok := totals[estimate.Category]
			if !ok {
				total = &CategoryTotal{Variant: estimate.Variant, Category: estimate.Category}
				totals[estimate.Category] = total
			}

			total.Files++
			total.Minutes += estimate.DurationMinutes
			if !estimate.Priced() {
				unpriced = true
				continue
			}

			if total.Cost == nil {
				total.Cost = new(float64)
			}
			*total.Cost += *estimate.Cost

			if converted[record.ContentHash] {
				summary.ConvertedCost += *estimate.Cost
			} else {
				summary.PendingCost += *estimate.Cost
			}
		}

		if unpriced {
			summary.UnpricedFiles++
		}
	}

	summary.TotalCost = summary.ConvertedCost + summary.PendingCost
	for _, total := range totals {
		summary.Categories = append(summary.Categories, total)
		if total.Cost == nil {
			warning := fmt.Sprintf("There is no %s cost data for region %s, these costs are excluded from the total", total.Category, region)
			log.Warnf("%s\n", warning)
			summary.Warnings = append(summary.Warnings, warning)
		}
	}

	slices.SortFunc(summary.Categories, func(a, b *CategoryTotal) int {
		if a.Variant != b.Variant {
			return int(a.Variant) - int(b.Variant)
		}

		return categoryOrder(a) - categoryOrder(b)
	})
	slices.Sort(summary.Warnings)

	return summary
}

func categoryOrder(total *CategoryTotal) int {
	return slices.Index(pricing.CategoriesFor(total.Variant), total.Category)
}
