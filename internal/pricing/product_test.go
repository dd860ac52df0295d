package pricing_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/hbomb79/smartmedia/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawEntry builds a minimal catalog entry with a single on-demand
// term and price dimension.
func rawEntry(sku, family, location string, attrs map[string]string, usd string) string {
	extra := ""
	for k, v := range attrs {
		extra += fmt.Sprintf(`, %q: %q`, k, v)
	}

	return fmt.Sprintf(`{
		"serviceCode": "Test",
		"product": {"sku": %q, "productFamily": %q, "attributes": {"location": %q%s}},
		"terms": {"OnDemand": {"%[1]s.T": {"priceDimensions": {"%[1]s.T.D": {"unit": "minutes", "pricePerUnit": {"USD": %[5]q}}}}}}
	}`, sku, family, location, extra, usd)
}

func Test_ParseProduct_RealEntry(t *testing.T) {
	raw, err := os.ReadFile("testdata/ets_product.json")
	require.NoError(t, err)

	product, err := pricing.ParseProduct(raw, pricing.TRANSCODE)
	require.NoError(t, err)
	assert.Equal(t, "3RNAP4ZRQUR2RTTV", product.ID)
	assert.Equal(t, "High Definition", product.Family)
	assert.Equal(t, "Asia Pacific (Sydney)", product.Location)
	assert.Equal(t, "AmazonETS", product.ServiceCode)
	assert.Equal(t, "Success", product.TranscodingResult)
	assert.Equal(t, pricing.TRANSCODE, product.Variant)
	assert.InDelta(t, 0.034, product.Cost, 1e-9)
}

func Test_ParseProduct_Variants(t *testing.T) {
	attrs := map[string]string{
		"transcodingResult": "Success",
		"groupDescription":  "Amazon Rekognition Video FaceDetection",
		"usagetype":         "APS2-TranscribeAudio",
	}
	raw := []byte(rawEntry("SKU1", "Family", "EU (Ireland)", attrs, "0.1"))

	transcode, err := pricing.ParseProduct(raw, pricing.TRANSCODE)
	require.NoError(t, err)
	assert.Equal(t, "Success", transcode.TranscodingResult)
	assert.Empty(t, transcode.Description)

	analysis, err := pricing.ParseProduct(raw, pricing.ANALYSIS)
	require.NoError(t, err)
	assert.Equal(t, "Amazon Rekognition Video FaceDetection", analysis.Description)
	assert.Empty(t, analysis.UsageType)

	transcription, err := pricing.ParseProduct(raw, pricing.TRANSCRIPTION)
	require.NoError(t, err)
	assert.Equal(t, "APS2-TranscribeAudio", transcription.UsageType)
	assert.Empty(t, transcription.TranscodingResult)
}

func Test_ParseProduct_ZeroPriceIsValid(t *testing.T) {
	product, err := pricing.ParseProduct([]byte(rawEntry("FREE", "Audio", "EU (Ireland)", nil, "0.0000000000")), pricing.TRANSCODE)
	require.NoError(t, err)
	assert.Equal(t, 0.0, product.Cost)
}

func Test_ParseProduct_Malformed(t *testing.T) {
	tests := []struct {
		summary string
		raw     string
	}{
		{"not json", `<html>`},
		{"missing sku", `{"product": {"productFamily": "Audio"}, "terms": {"OnDemand": {"a": {"priceDimensions": {"b": {"pricePerUnit": {"USD": "1"}}}}}}}`},
		{"no on-demand terms", `{"product": {"sku": "X"}, "terms": {"OnDemand": {}}}`},
		{"two on-demand terms", `{"product": {"sku": "X"}, "terms": {"OnDemand": {
			"a": {"priceDimensions": {"b": {"pricePerUnit": {"USD": "1"}}}},
			"c": {"priceDimensions": {"d": {"pricePerUnit": {"USD": "2"}}}}
		}}}`},
		{"zero price dimensions", `{"product": {"sku": "X"}, "terms": {"OnDemand": {"a": {"priceDimensions": {}}}}}`},
		{"two price dimensions", `{"product": {"sku": "X"}, "terms": {"OnDemand": {"a": {"priceDimensions": {
			"b": {"pricePerUnit": {"USD": "1"}},
			"c": {"pricePerUnit": {"USD": "2"}}
		}}}}}`},
		{"no USD price", `{"product": {"sku": "X"}, "terms": {"OnDemand": {"a": {"priceDimensions": {"b": {"pricePerUnit": {"CNY": "1"}}}}}}}`},
		{"non-numeric price", rawEntry("X", "Audio", "", nil, "free")},
		{"negative price", rawEntry("X", "Audio", "", nil, "-0.01")},
		{"NaN price", rawEntry("X", "Audio", "", nil, "NaN")},
		{"infinite price", rawEntry("X", "Audio", "", nil, "Inf")},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			product, err := pricing.ParseProduct([]byte(tt.raw), pricing.TRANSCODE)
			assert.Nil(t, product)
			assert.ErrorIs(t, err, pricing.ErrMalformedCatalogEntry)
		})
	}
}
