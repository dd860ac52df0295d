package cost

import (
	"fmt"

	"github.com/hbomb79/smartmedia/internal/metadata"
	"github.com/hbomb79/smartmedia/internal/pricing"
	"github.com/hbomb79/smartmedia/pkg/logger"
)

const (
	// MinimumHDHeight is the smallest frame height (in pixels)
	// considered high definition.
	MinimumHDHeight = 720

	// NoCostData is rendered in place of a cost which cannot be
	// calculated because its category has no known price.
	NoCostData = "no cost data"
)

var log = logger.Get("Cost")

type (
	// Pricing bundles the location pricing for each service. A nil
	// entry means the service was not priced and all of its
	// estimates will be absent.
	Pricing struct {
		Transcode     *pricing.LocationPricing
		Analysis      *pricing.LocationPricing
		Transcription *pricing.LocationPricing
	}

	// Estimate is the estimated cost of processing a single file under
	// a single category. A nil Cost means the category is unpriced, which
	// must never be treated as free.
	Estimate struct {
		ContentHash     string           `json:"content_hash"`
		PathnameHash    string           `json:"pathname_hash"`
		Variant         pricing.Variant  `json:"variant"`
		Category        pricing.Category `json:"category"`
		DurationMinutes float64          `json:"duration_minutes"`
		Cost            *float64         `json:"cost"`
	}

	Estimator struct {
		config  Config
		pricing Pricing
	}
)

func New(config Config, prices Pricing) *Estimator {
	return &Estimator{config: config, pricing: prices}
}

// TranscodeCategory returns the transcode category a file falls under: any file
// without a video stream is audio, otherwise the height of the (first) video
// stream decides between high and standard definition.
func TranscodeCategory(record *metadata.Record) pricing.Category {
	if record.VideoStreams == 0 {
		return pricing.Audio
	} else if record.Height >= MinimumHDHeight {
		return pricing.HighDefinition
	}

	return pricing.StandardDefinition
}

func (estimator *Estimator) EstimateTranscode(record *metadata.Record) Estimate {
	return newEstimate(record, estimator.pricing.Transcode, pricing.TRANSCODE, TranscodeCategory(record))
}

// EstimateAnalysis returns one estimate per enabled analysis feature. Files
// without video cannot be analysed and yield no estimates.
func (estimator *Estimator) EstimateAnalysis(record *metadata.Record) []Estimate {
	if record.VideoStreams == 0 {
		return nil
	}

	features := estimator.config.analysisFeatures()
	estimates := make([]Estimate, 0, len(features))
	for _, feature := range features {
		estimates = append(estimates, newEstimate(record, estimator.pricing.Analysis, pricing.ANALYSIS, feature))
	}

	return estimates
}

// EstimateTranscription returns nil when transcription is disabled, or
// the file has no audio to transcribe.
func (estimator *Estimator) EstimateTranscription(record *metadata.Record) *Estimate {
	if !estimator.config.Transcribe || record.AudioStreams == 0 {
		return nil
	}

	estimate := newEstimate(record, estimator.pricing.Transcription, pricing.TRANSCRIPTION, pricing.Transcription)
	return &estimate
}

// EstimateFile returns every estimate which applies to the file.
func (estimator *Estimator) EstimateFile(record *metadata.Record) []Estimate {
	estimates := []Estimate{estimator.EstimateTranscode(record)}
	estimates = append(estimates, estimator.EstimateAnalysis(record)...)
	if transcription := estimator.EstimateTranscription(record); transcription != nil {
		estimates = append(estimates, *transcription)
	}

	return estimates
}

func newEstimate(record *metadata.Record, lp *pricing.LocationPricing, variant pricing.Variant, category pricing.Category) Estimate {
	estimate := Estimate{
		ContentHash:     record.ContentHash,
		PathnameHash:    record.PathnameHash,
		Variant:         variant,
		Category:        category,
		DurationMinutes: record.DurationMinutes(),
	}

	if lp == nil {
		return estimate
	}

	if cost, ok := lp.Cost(category, estimate.DurationMinutes); ok {
		estimate.Cost = &cost
	}

	return estimate
}

func (estimate Estimate) Priced() bool { return estimate.Cost != nil }

func (estimate Estimate) String() string {
	return fmt.Sprintf("%s %s (%.2f min): %s", estimate.PathnameHash, estimate.Category, estimate.DurationMinutes, FormatCost(estimate.Cost))
}

// FormatCost renders a cost in dollars, or NoCostData when absent.
func FormatCost(cost *float64) string {
	if cost == nil {
		return NoCostData
	}

	return fmt.Sprintf("$%.4f", *cost)
}
