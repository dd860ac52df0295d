package cost

import "github.com/hbomb79/smartmedia/internal/metadata"

// FileEstimate is the full cost breakdown for a single file.
type FileEstimate struct {
	ContentHash     string     `json:"content_hash"`
	PathnameHash    string     `json:"pathname_hash"`
	DurationMinutes float64    `json:"duration_minutes"`
	Estimates       []Estimate `json:"estimates"`
	TotalCost       *float64   `json:"total_cost"`
	PresetsCost     *float64   `json:"presets_cost"`
}

// EstimateRecord builds the breakdown for the record. The total is only
// present when every estimate is priced.
func (estimator *Estimator) EstimateRecord(record *metadata.Record) *FileEstimate {
	file := &FileEstimate{
		ContentHash:     record.ContentHash,
		PathnameHash:    record.PathnameHash,
		DurationMinutes: record.DurationMinutes(),
		Estimates:       estimator.EstimateFile(record),
	}

	if len(estimator.config.Presets) > 0 {
		file.PresetsCost = estimator.EstimatePresets(record)
	}

	total := 0.0
	for _, estimate := range file.Estimates {
		if !estimate.Priced() {
			return file
		}

		total += *estimate.Cost
	}

	file.TotalCost = &total
	return file
}
