package cost

import "github.com/hbomb79/smartmedia/internal/pricing"

type (
	// Config selects which processing is estimated for each file.
	Config struct {
		// The analysis features enabled for each video; any of face_detection,
		// content_moderation, person_tracking and label_detection.
		AnalysisFeatures []string `yaml:"analysis_features" env:"COST_ANALYSIS_FEATURES" env-separator:"," validate:"dive,oneof=face_detection content_moderation person_tracking label_detection"`

		Transcribe bool `yaml:"transcribe" env:"COST_TRANSCRIBE" env-default:"false"`

		// The output presets every file is transcoded to.
		Presets []Preset `yaml:"presets" validate:"dive"`
	}

	// Preset is a single transcoder output. A height of zero
	// describes an audio-only output.
	Preset struct {
		ID        string `yaml:"id" json:"id" validate:"required"`
		Container string `yaml:"container" json:"container"`
		Width     int    `yaml:"width" json:"width" validate:"min=0"`
		Height    int    `yaml:"height" json:"height" validate:"min=0"`
	}
)

func (config Config) analysisFeatures() []pricing.Category {
	features := make([]pricing.Category, 0, len(config.AnalysisFeatures))
	for _, f := range config.AnalysisFeatures {
		features = append(features, pricing.Category(f))
	}

	return features
}
