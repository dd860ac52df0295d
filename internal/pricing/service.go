package pricing

import "strings"

type (
	// Service describes how to price one catalog service: which products
	// to ask for, and which category each returned product prices.
	Service struct {
		Code    string
		Variant Variant
		Filters []Filter

		classify func(*Product) []Category
	}
)

var (
	TranscodeService = Service{
		Code:     "AmazonETS",
		Variant:  TRANSCODE,
		Filters:  []Filter{TermFilter("transcodingResult", "Success")},
		classify: classifyTranscode,
	}

	AnalysisService = Service{
		Code:     "AmazonRekognition",
		Variant:  ANALYSIS,
		Filters:  []Filter{TermFilter("productFamily", "Rekognition Video API - Archived Content")},
		classify: classifyAnalysis,
	}

	TranscriptionService = Service{
		Code:     "Transcribe",
		Variant:  TRANSCRIPTION,
		Filters:  []Filter{TermFilter("productFamily", "Transcription Job")},
		classify: classifyTranscription,
	}

	transcodeFamilies = map[string]Category{
		"Standard Definition": StandardDefinition,
		"High Definition":     HighDefinition,
		"Audio":               Audio,
	}

	analysisFeatures = []struct {
		marker   string
		category Category
	}{
		{"FaceDetection", FaceDetection},
		{"ContentModeration", ContentModeration},
		{"PersonTracking", PersonTracking},
		{"LabelDetection", LabelDetection},
	}
)

// Services returns every service we know how to price.
func Services() []Service {
	return []Service{TranscodeService, AnalysisService, TranscriptionService}
}

func (service Service) String() string { return service.Code }

func classifyTranscode(product *Product) []Category {
	if category, ok := transcodeFamilies[product.Family]; ok {
		return []Category{category}
	}

	return nil
}

// A single analysis product may describe multiple features.
func classifyAnalysis(product *Product) []Category {
	var categories []Category
	for _, feature := range analysisFeatures {
		if strings.Contains(product.Description, feature.marker) {
			categories = append(categories, feature.category)
		}
	}

	return categories
}

func classifyTranscription(product *Product) []Category {
	if strings.Contains(product.UsageType, "-TranscribeAudio") {
		return []Category{Transcription}
	}

	return nil
}
