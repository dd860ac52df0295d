package pricing

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

type Category string

const (
	StandardDefinition Category = "standard_definition"
	HighDefinition     Category = "high_definition"
	Audio              Category = "audio"

	FaceDetection     Category = "face_detection"
	ContentModeration Category = "content_moderation"
	PersonTracking    Category = "person_tracking"
	LabelDetection    Category = "label_detection"

	Transcription Category = "transcription"
)

var (
	variantCategories = map[Variant][]Category{
		TRANSCODE:     {StandardDefinition, HighDefinition, Audio},
		ANALYSIS:      {FaceDetection, ContentModeration, PersonTracking, LabelDetection},
		TRANSCRIPTION: {Transcription},
	}

	ErrInvalidPrice    = errors.New("price must be a finite non-negative number")
	ErrForeignCategory = errors.New("category does not belong to this service")
)

// LocationPricing holds the per-minute price of each category offered by a
// single service in a single region. A category only has a price once one has
// been explicitly set; an unset category is unpriced, which is distinct
// from a price of zero.
type LocationPricing struct {
	Region   string
	Location string
	Variant  Variant
	prices   map[Category]float64
}

func NewLocationPricing(region string, location string, variant Variant) *LocationPricing {
	return &LocationPricing{
		Region:   region,
		Location: location,
		Variant:  variant,
		prices:   make(map[Category]float64),
	}
}

// CategoriesFor returns the categories offered by services of the
// variant provided, in a stable order.
func CategoriesFor(variant Variant) []Category {
	return slices.Clone(variantCategories[variant])
}

func (lp *LocationPricing) Categories() []Category {
	return CategoriesFor(lp.Variant)
}

func (lp *LocationPricing) SetPrice(category Category, price float64) error {
	if !lp.offers(category) {
		return fmt.Errorf("%w: %s is not offered by %s", ErrForeignCategory, category, lp.Variant)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}

	lp.prices[category] = price
	return nil
}

func (lp *LocationPricing) HasValidPrice(category Category) bool {
	_, ok := lp.prices[category]
	return ok
}

// Price returns the per-minute price for the category, and whether
// the category is priced at all.
func (lp *LocationPricing) Price(category Category) (float64, bool) {
	price, ok := lp.prices[category]
	return price, ok
}

// Cost returns the cost of processing the given number of minutes under
// the category. If the category is unpriced, false is returned and the
// cost must be treated as unknown.
func (lp *LocationPricing) Cost(category Category, minutes float64) (float64, bool) {
	price, ok := lp.prices[category]
	if !ok {
		return 0, false
	}

	return minutes * price, true
}

// Prices returns every category offered by the service, with
// unpriced categories mapped to nil.
func (lp *LocationPricing) Prices() map[Category]*float64 {
	output := make(map[Category]*float64)
	for _, category := range variantCategories[lp.Variant] {
		if price, ok := lp.prices[category]; ok {
			output[category] = &price
		} else {
			output[category] = nil
		}
	}

	return output
}

func (lp *LocationPricing) offers(category Category) bool {
	return slices.Contains(variantCategories[lp.Variant], category)
}
