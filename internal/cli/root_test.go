package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/smartmedia/internal"
	"github.com/hbomb79/smartmedia/internal/cost"
	"github.com/hbomb79/smartmedia/internal/extract"
	"github.com/hbomb79/smartmedia/internal/metadata"
	"github.com/hbomb79/smartmedia/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testConfig = `
log_level: error
database:
  username: smartmedia
  password: secret
extraction:
  file_directory: /srv/filedir
  max_runtime_seconds: 60
pricing:
  region: eu-west-1
`

type fakeApp struct {
	config    internal.Config
	connected []string
	closed    bool
	region    string
	err       error
}

func (f *fakeApp) ConnectDatabase() error {
	f.connected = append(f.connected, "database")
	return nil
}

func (f *fakeApp) ConnectCatalog(context.Context) error {
	f.connected = append(f.connected, "catalog")
	return nil
}

func (f *fakeApp) Close() error {
	f.closed = true
	return nil
}

func (f *fakeApp) RunExtraction(context.Context) (*extract.Result, error) {
	if f.err != nil {
		return nil, f.err
	}

	return &extract.Result{
		RunID:          uuid.MustParse("2b1f8a3e-7d0c-4a59-9a5e-8c1d2f3e4a5b"),
		CandidateCount: 2,
		SuccessCount:   1,
		FailCount:      1,
		FailedHashes:   map[string]string{"p-bad": "not a media file"},
		Halted:         true,
		Elapsed:        2 * time.Second,
	}, nil
}

func (f *fakeApp) Reconcile(context.Context) (*extract.ReconcileResult, error) {
	return &extract.ReconcileResult{Removed: map[string]string{}}, nil
}

func (f *fakeApp) Regions() []string     { return []string{"eu-west-1", "us-east-1"} }
func (f *fakeApp) DefaultRegion() string { return f.config.Pricing.Region }

func (f *fakeApp) GetPricing(_ context.Context, region string) (*cost.Pricing, error) {
	f.region = region
	lp := pricing.NewLocationPricing(region, "EU (Ireland)", pricing.TRANSCODE)
	if err := lp.SetPrice(pricing.StandardDefinition, 0.017); err != nil {
		return nil, err
	}

	return &cost.Pricing{Transcode: lp}, nil
}

func (f *fakeApp) Report(_ context.Context, region string) (*cost.Summary, error) {
	f.region = region
	return &cost.Summary{
		Region:        region,
		Files:         3,
		UnpricedFiles: 1,
		TotalCost:     0.17,
		Categories:    []*cost.CategoryTotal{},
		MediaFiles:    &metadata.FileCounts{Total: 5, Audio: 1, Video: 4},
		Warnings:      []string{"There is no high_definition cost data for region " + region + ", these costs are excluded from the total"},
	}, nil
}

func (f *fakeApp) EstimateFile(_ context.Context, region string, contentHash string) (*cost.FileEstimate, error) {
	f.region = region
	return &cost.FileEstimate{ContentHash: contentHash, DurationMinutes: 10, Estimates: []cost.Estimate{{Category: pricing.HighDefinition}}}, nil
}

func (f *fakeApp) Serve(context.Context) error { return nil }

func execute(t *testing.T, app *fakeApp, args ...string) (string, error) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	original := newApp
	t.Cleanup(func() { newApp = original })
	newApp = func(config internal.Config) (smartmedia, error) {
		app.config = config
		return app, nil
	}

	out := &bytes.Buffer{}
	root := newRootCmd()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append([]string{"--config", path}, args...))

	err := root.Execute()
	return out.String(), err
}

func Test_Extract_Text(t *testing.T) {
	app := &fakeApp{}
	out, err := execute(t, app, "extract")
	require.NoError(t, err)

	assert.Equal(t, []string{"database"}, app.connected)
	assert.True(t, app.closed)
	assert.Equal(t, "/srv/filedir", app.config.Extraction.FileDirectory)
	assert.Equal(t, 60, app.config.Extraction.MaxRuntimeSeconds)
	assert.Contains(t, out, "Candidates: 2")
	assert.Contains(t, out, "Runtime budget exhausted")
	assert.Contains(t, out, "- p-bad: not a media file")
}

func Test_Extract_JSON(t *testing.T) {
	out, err := execute(t, &fakeApp{}, "extract", "-o", "json")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "2b1f8a3e-7d0c-4a59-9a5e-8c1d2f3e4a5b", body["run_id"])
	assert.Equal(t, 2.0, body["elapsed_seconds"])
	assert.Equal(t, true, body["halted"])
}

func Test_Extract_Error(t *testing.T) {
	_, err := execute(t, &fakeApp{err: errors.New("database is gone")}, "extract")
	assert.ErrorContains(t, err, "database is gone")
}

func Test_Pricing_UsesDefaultRegion(t *testing.T) {
	app := &fakeApp{}
	out, err := execute(t, app, "pricing")
	require.NoError(t, err)

	assert.Equal(t, []string{"catalog"}, app.connected, "pricing does not need the database")
	assert.Equal(t, "eu-west-1", app.region)
	assert.Contains(t, out, "$0.01700/min")
	assert.Contains(t, out, cost.NoCostData)
}

func Test_Pricing_YAML(t *testing.T) {
	app := &fakeApp{}
	out, err := execute(t, app, "pricing", "us-east-1", "-o", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", app.region)

	var body struct {
		Region   string `yaml:"region"`
		Services []struct {
			Variant string              `yaml:"variant"`
			Prices  map[string]*float64 `yaml:"prices"`
		} `yaml:"services"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &body))
	assert.Equal(t, "us-east-1", body.Region)
	require.Len(t, body.Services, 1)
	assert.Equal(t, "transcode", body.Services[0].Variant)
	assert.Nil(t, body.Services[0].Prices["high_definition"])
	require.NotNil(t, body.Services[0].Prices["standard_definition"])
	assert.InDelta(t, 0.017, *body.Services[0].Prices["standard_definition"], 1e-9)
}

func Test_Pricing_ListRegions(t *testing.T) {
	app := &fakeApp{}
	out, err := execute(t, app, "pricing", "--list")
	require.NoError(t, err)
	assert.Empty(t, app.connected)
	assert.Equal(t, "eu-west-1\nus-east-1\n", out)
}

func Test_Report(t *testing.T) {
	app := &fakeApp{}
	out, err := execute(t, app, "report", "--region", "ap-south-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"database", "catalog"}, app.connected)
	assert.Equal(t, "ap-south-1", app.region)
	assert.Contains(t, out, "Media files:   5 (4 video, 1 audio)")
	assert.Contains(t, out, "Total:     $0.1700")
	assert.Contains(t, out, "Warning: There is no high_definition cost data for region ap-south-1")
}

func Test_Estimate(t *testing.T) {
	out, err := execute(t, &fakeApp{}, "estimate", "abcdef")
	require.NoError(t, err)
	assert.Contains(t, out, "abcdef (10.00 minutes) in eu-west-1")
	assert.Regexp(t, `total\s+`+cost.NoCostData, out)

	_, err = execute(t, &fakeApp{}, "estimate")
	assert.Error(t, err, "a content hash is required")
}

func Test_UnknownOutputFormat(t *testing.T) {
	_, err := execute(t, &fakeApp{}, "reconcile", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func Test_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig+"schedule:\n  extraction: every tuesday\n"), 0o600))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "extract"})
	assert.ErrorIs(t, root.Execute(), internal.ErrInvalidConfig)
}
