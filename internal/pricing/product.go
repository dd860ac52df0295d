package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type Variant int

const (
	TRANSCODE Variant = iota
	ANALYSIS
	TRANSCRIPTION
)

// Product is a single priced SKU from the catalog. Which of the
// variant specific fields is populated depends on the Variant.
type Product struct {
	ID          string  `json:"id"`
	Family      string  `json:"family"`
	Location    string  `json:"location"`
	ServiceCode string  `json:"service_code"`
	Cost        float64 `json:"cost"`
	Variant     Variant `json:"variant"`

	TranscodingResult string `json:"transcoding_result,omitempty"`
	Description       string `json:"description,omitempty"`
	UsageType         string `json:"usage_type,omitempty"`
}

type rawProduct struct {
	ServiceCode string `json:"serviceCode"`
	Product     struct {
		SKU           string `json:"sku"`
		ProductFamily string `json:"productFamily"`
		Attributes    struct {
			Location          string `json:"location"`
			TranscodingResult string `json:"transcodingResult"`
			GroupDescription  string `json:"groupDescription"`
			UsageType         string `json:"usagetype"`
		} `json:"attributes"`
	} `json:"product"`
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// ParseProduct decodes a single raw catalog entry. The entry must contain
// exactly one on-demand term with exactly one price dimension, priced in USD;
// anything else cannot be priced unambiguously and is rejected with
// ErrMalformedCatalogEntry.
func ParseProduct(raw []byte, variant Variant) (*Product, error) {
	var entry rawProduct
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedCatalogEntry, err)
	}

	if entry.Product.SKU == "" {
		return nil, fmt.Errorf("%w: missing product sku", ErrMalformedCatalogEntry)
	}

	cost, err := parseOnDemandCost(&entry)
	if err != nil {
		return nil, fmt.Errorf("%w: product %s: %s", ErrMalformedCatalogEntry, entry.Product.SKU, err)
	}

	product := &Product{
		ID:          entry.Product.SKU,
		Family:      entry.Product.ProductFamily,
		Location:    entry.Product.Attributes.Location,
		ServiceCode: entry.ServiceCode,
		Cost:        cost,
		Variant:     variant,
	}

	switch variant {
	case TRANSCODE:
		product.TranscodingResult = entry.Product.Attributes.TranscodingResult
	case ANALYSIS:
		product.Description = entry.Product.Attributes.GroupDescription
	case TRANSCRIPTION:
		product.UsageType = entry.Product.Attributes.UsageType
	default:
		return nil, fmt.Errorf("unknown product variant %s", variant)
	}

	return product, nil
}

func parseOnDemandCost(entry *rawProduct) (float64, error) {
	terms := entry.Terms.OnDemand
	if len(terms) != 1 {
		return 0, fmt.Errorf("expected exactly one OnDemand term, found %d", len(terms))
	}

	for _, term := range terms {
		if len(term.PriceDimensions) != 1 {
			return 0, fmt.Errorf("expected exactly one price dimension, found %d", len(term.PriceDimensions))
		}

		for _, dimension := range term.PriceDimensions {
			usd, ok := dimension.PricePerUnit["USD"]
			if !ok {
				return 0, fmt.Errorf("price dimension has no USD price")
			}

			cost, err := strconv.ParseFloat(usd, 64)
			if err != nil {
				return 0, fmt.Errorf("USD price %q is not numeric", usd)
			}
			if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
				return 0, fmt.Errorf("USD price %q is not a finite non-negative number", usd)
			}

			return cost, nil
		}
	}

	// Unreachable, both maps have a single entry.
	return 0, fmt.Errorf("no price found")
}

func (v Variant) String() string {
	switch v {
	case TRANSCODE:
		return fmt.Sprintf("TRANSCODE[%d]", v)
	case ANALYSIS:
		return fmt.Sprintf("ANALYSIS[%d]", v)
	case TRANSCRIPTION:
		return fmt.Sprintf("TRANSCRIPTION[%d]", v)
	default:
		return fmt.Sprintf("UNKNOWN[%d]", v)
	}
}

func (v Variant) MarshalText() ([]byte, error) {
	switch v {
	case TRANSCODE:
		return []byte("transcode"), nil
	case ANALYSIS:
		return []byte("analysis"), nil
	case TRANSCRIPTION:
		return []byte("transcription"), nil
	default:
		return nil, fmt.Errorf("cannot marshal unknown variant %d", int(v))
	}
}
