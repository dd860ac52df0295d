package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/smartmedia/internal/api"
	"github.com/hbomb79/smartmedia/internal/cost"
	"github.com/hbomb79/smartmedia/internal/database"
	"github.com/hbomb79/smartmedia/internal/extract"
	"github.com/hbomb79/smartmedia/internal/metadata"
	"github.com/hbomb79/smartmedia/internal/pricing"
	"github.com/hbomb79/smartmedia/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetMinLoggingLevel(logger.VERBOSE.Level())
}

type fakeService struct {
	pricingErr error
	runErr     error
	regions    []string
	lastRegion string
}

func (f *fakeService) Regions() []string     { return f.regions }
func (f *fakeService) DefaultRegion() string { return "ap-southeast-2" }

func (f *fakeService) GetPricing(_ context.Context, region string) (*cost.Pricing, error) {
	f.lastRegion = region
	if f.pricingErr != nil {
		return nil, f.pricingErr
	}

	lp := pricing.NewLocationPricing(region, "Asia Pacific (Sydney)", pricing.TRANSCODE)
	if err := lp.SetPrice(pricing.HighDefinition, 0.034); err != nil {
		return nil, err
	}

	return &cost.Pricing{Transcode: lp}, nil
}

func (f *fakeService) Report(_ context.Context, region string) (*cost.Summary, error) {
	f.lastRegion = region
	if f.pricingErr != nil {
		return nil, f.pricingErr
	}

	return &cost.Summary{Region: region, Files: 2, TotalCost: 1.5, Categories: []*cost.CategoryTotal{}, Warnings: []string{}}, nil
}

func (f *fakeService) EstimateFile(_ context.Context, region string, contentHash string) (*cost.FileEstimate, error) {
	f.lastRegion = region
	if contentHash == "missing" {
		return nil, fmt.Errorf("%w: %s", metadata.ErrRecordNotFound, contentHash)
	}

	return &cost.FileEstimate{ContentHash: contentHash, Estimates: []cost.Estimate{}}, nil
}

func (f *fakeService) RunExtraction(context.Context) (*extract.Result, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}

	return &extract.Result{RunID: uuid.New(), CandidateCount: 3, SuccessCount: 2, FailCount: 1, FailedHashes: map[string]string{"p1": "corrupt"}, Elapsed: 1500 * time.Millisecond}, nil
}

func (f *fakeService) Reconcile(context.Context) (*extract.ReconcileResult, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}

	return &extract.ReconcileResult{Removed: map[string]string{"p2": "gone"}}, nil
}

func serve(t *testing.T, service api.Service, method string, path string) *httptest.ResponseRecorder {
	gateway := api.NewRestGateway(&api.RestConfig{HostAddr: "127.0.0.1:0"}, service)
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	gateway.Handler().ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func Test_Pricing_ListRegions(t *testing.T) {
	rec := serve(t, &fakeService{regions: []string{"ap-southeast-2", "us-east-1"}}, http.MethodGet, "/api/smartmedia/v1/pricing")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["ap-southeast-2","us-east-1"]`, rec.Body.String())
}

func Test_Pricing_Get(t *testing.T) {
	service := &fakeService{}
	rec := serve(t, service, http.MethodGet, "/api/smartmedia/v1/pricing/ap-southeast-2/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ap-southeast-2", service.lastRegion)
	assert.JSONEq(t, `{
		"region": "ap-southeast-2",
		"services": [{
			"variant": "transcode",
			"location": "Asia Pacific (Sydney)",
			"prices": {"standard_definition": null, "high_definition": 0.034, "audio": null}
		}]
	}`, rec.Body.String())
}

func Test_Pricing_Errors(t *testing.T) {
	tests := []struct {
		summary  string
		err      error
		expected int
	}{
		{"unknown region", fmt.Errorf("%w: mars-1", pricing.ErrUnknownRegion), http.StatusNotFound},
		{"catalog unavailable", fmt.Errorf("%w: throttled", pricing.ErrCatalogUnavailable), http.StatusBadGateway},
		{"malformed catalog", pricing.ErrMalformedCatalogEntry, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			rec := serve(t, &fakeService{pricingErr: tt.err}, http.MethodGet, "/api/smartmedia/v1/pricing/mars-1/")
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func Test_Reports_Summary(t *testing.T) {
	service := &fakeService{}
	rec := serve(t, service, http.MethodGet, "/api/smartmedia/v1/reports/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ap-southeast-2", service.lastRegion, "default region should be used when none is given")

	body := decode(t, rec)
	assert.Equal(t, 2.0, body["files"])
	assert.Equal(t, 1.5, body["total_cost"])

	rec = serve(t, service, http.MethodGet, "/api/smartmedia/v1/reports/?region=eu-west-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "eu-west-1", service.lastRegion)
}

func Test_Reports_File(t *testing.T) {
	rec := serve(t, &fakeService{}, http.MethodGet, "/api/smartmedia/v1/reports/files/abcd/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abcd", decode(t, rec)["content_hash"])

	rec = serve(t, &fakeService{}, http.MethodGet, "/api/smartmedia/v1/reports/files/missing/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_Runs_Extraction(t *testing.T) {
	rec := serve(t, &fakeService{}, http.MethodPost, "/api/smartmedia/v1/runs/extraction/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, 3.0, body["candidate_count"])
	assert.Equal(t, 1.5, body["elapsed_seconds"])
	assert.Equal(t, map[string]any{"p1": "corrupt"}, body["failed_files"])
}

func Test_Runs_Reconciliation(t *testing.T) {
	rec := serve(t, &fakeService{}, http.MethodPost, "/api/smartmedia/v1/runs/reconciliation/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":{"p2":"gone"}}`, rec.Body.String())
}

func Test_Runs_LockHeldIsConflict(t *testing.T) {
	service := &fakeService{runErr: database.ErrLockHeld}
	assert.Equal(t, http.StatusConflict, serve(t, service, http.MethodPost, "/api/smartmedia/v1/runs/extraction/").Code)
	assert.Equal(t, http.StatusConflict, serve(t, service, http.MethodPost, "/api/smartmedia/v1/runs/reconciliation/").Code)

	failing := &fakeService{runErr: errors.New("db gone")}
	assert.Equal(t, http.StatusInternalServerError, serve(t, failing, http.MethodPost, "/api/smartmedia/v1/runs/extraction/").Code)
}

func Test_Runs_RequirePost(t *testing.T) {
	rec := serve(t, &fakeService{}, http.MethodGet, "/api/smartmedia/v1/runs/extraction/")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
