package cost

import (
	"github.com/hbomb79/smartmedia/internal/metadata"
	"github.com/hbomb79/smartmedia/internal/pricing"
)

func (preset Preset) IsAudio() bool              { return preset.Height <= 0 }
func (preset Preset) IsHighDefinition() bool     { return preset.Height >= MinimumHDHeight }
func (preset Preset) IsStandardDefinition() bool { return preset.Height > 0 && preset.Height < MinimumHDHeight }

// PresetCategory returns the category charged for transcoding the file to
// the preset. The transcoder charges for the lower of the input and output
// definitions, and audio outputs (or audio inputs) are always charged as audio.
func PresetCategory(preset Preset, record *metadata.Record) pricing.Category {
	inputVideo := record.VideoStreams > 0 && record.Height > 0
	inputHD := inputVideo && record.Height >= MinimumHDHeight

	switch {
	case preset.IsStandardDefinition() && inputVideo:
		return pricing.StandardDefinition
	case preset.IsHighDefinition() && inputHD:
		return pricing.HighDefinition
	case preset.IsHighDefinition() && inputVideo:
		return pricing.StandardDefinition
	default:
		return pricing.Audio
	}
}

// EstimatePresets returns the cost of transcoding the file to every configured
// preset. If any preset's category is unpriced the total is unknown, and nil
// is returned.
func (estimator *Estimator) EstimatePresets(record *metadata.Record) *float64 {
	lp := estimator.pricing.Transcode
	if lp == nil {
		return nil
	}

	total := 0.0
	minutes := record.DurationMinutes()
	for _, preset := range estimator.config.Presets {
		cost, ok := lp.Cost(PresetCategory(preset, record), minutes)
		if !ok {
			return nil
		}

		total += cost
	}

	return &total
}
