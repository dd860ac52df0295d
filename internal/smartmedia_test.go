package internal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hbomb79/smartmedia/internal/cost"
	"github.com/hbomb79/smartmedia/internal/database"
	"github.com/hbomb79/smartmedia/internal/extract"
	"github.com/hbomb79/smartmedia/internal/extract/mocks"
	"github.com/hbomb79/smartmedia/internal/ffmpeg"
	"github.com/hbomb79/smartmedia/internal/metadata"
	"github.com/hbomb79/smartmedia/internal/pricing"
	"github.com/hbomb79/smartmedia/pkg/logger"
	"github.com/hbomb79/smartmedia/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetMinLoggingLevel(logger.VERBOSE.Level())
}

// sydneyCatalog serves transcode pricing for Sydney only; the HD
// family is deliberately missing.
type sydneyCatalog struct{}

func (sydneyCatalog) GetProducts(_ context.Context, serviceCode string, filters []pricing.Filter) ([]string, error) {
	if serviceCode != pricing.TranscodeService.Code {
		return nil, nil
	}

	product := func(sku string, family string, usd string) string {
		return fmt.Sprintf(`{
			"serviceCode": "AmazonETS",
			"product": {"sku": %q, "productFamily": %q, "attributes": {"location": "Asia Pacific (Sydney)", "transcodingResult": "Success"}},
			"terms": {"OnDemand": {"%[1]s.T": {"priceDimensions": {"%[1]s.T.D": {"pricePerUnit": {"USD": %[3]q}}}}}}
		}`, sku, family, usd)
	}

	return []string{product("SD", "Standard Definition", "0.017"), product("AU", "Audio", "0.00522")}, nil
}

func (sydneyCatalog) DescribeServices(context.Context, string) ([]pricing.ServiceDescription, error) {
	return nil, nil
}

func (sydneyCatalog) GetAttributeValues(context.Context, string, string) ([]string, error) {
	return nil, nil
}

func newTestSmartmedia(t *testing.T) (*smartmediaImpl, database.Manager, *mocks.MockProber) {
	db := helpers.RequireDatabase(t)
	prober := mocks.NewMockProber(t)

	config := Config{
		Extraction: extract.Config{ChunkSize: 100, MaxRuntimeSeconds: 300, FileDirectory: "/data"},
		Pricing:    pricing.Config{Region: "ap-southeast-2"},
	}
	sm := newSmartmedia(config, db, pricing.DefaultRegionTable(), prober)
	sm.catalog = sydneyCatalog{}

	return sm, db, prober
}

func seed(t *testing.T, db database.Manager, contentHash string, mimetype string) {
	_, err := db.GetSqlxDb().Exec(`
		INSERT INTO files(content_hash, pathname_hash, filename, mimetype, component, time_created)
		VALUES ($1, $2, $3, $4, 'mod_resource', $5)`,
		contentHash, "p-"+contentHash, contentHash+".bin", mimetype, time.Now())
	require.NoError(t, err)
}

func probed(duration float64, height int) *ffmpeg.ProbeResult {
	data := &ffmpeg.ProbeData{Duration: duration, TotalAudioStreams: 1, AudioStreams: []ffmpeg.AudioStream{{CodecName: "aac"}}}
	if height > 0 {
		data.TotalVideoStreams = 1
		data.VideoStreams = []ffmpeg.VideoStream{{CodecName: "h264", Width: height * 16 / 9, Height: height}}
	}

	return &ffmpeg.ProbeResult{Status: ffmpeg.StatusSuccess, Data: data}
}

func Test_RunExtraction_ThenReport(t *testing.T) {
	sm, db, prober := newTestSmartmedia(t)
	ctx := context.Background()

	seed(t, db, "aaaa0001", "video/mp4")
	seed(t, db, "bbbb0002", "video/mp4")
	seed(t, db, "cccc0003", "audio/mpeg")
	seed(t, db, "dddd0004", "video/mp4")

	prober.EXPECT().GetMediaMetadata(mock.Anything, "/data/aa/aa/aaaa0001").Return(probed(600, 480), nil).Once()
	prober.EXPECT().GetMediaMetadata(mock.Anything, "/data/bb/bb/bbbb0002").Return(probed(600, 1080), nil).Once()
	prober.EXPECT().GetMediaMetadata(mock.Anything, "/data/cc/cc/cccc0003").Return(probed(600, 0), nil).Once()
	prober.EXPECT().GetMediaMetadata(mock.Anything, "/data/dd/dd/dddd0004").Return(&ffmpeg.ProbeResult{Status: ffmpeg.StatusFailed, Reason: "moov atom not found"}, nil).Once()

	result, err := sm.RunExtraction(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, result.CandidateCount)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)
	assert.Equal(t, map[string]string{"p-dddd0004": "moov atom not found"}, result.FailedHashes)

	record, err := sm.store.GetRecord(ctx, "bbbb0002")
	require.NoError(t, err)
	assert.Equal(t, 1080, record.Height)

	_, err = db.GetSqlxDb().Exec(`INSERT INTO conversions(id, content_hash, pathname_hash, status) VALUES (gen_random_uuid(), 'aaaa0001', 'p-aaaa0001', 'finished')`)
	require.NoError(t, err)

	summary, err := sm.Report(ctx, "ap-southeast-2")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Files)
	assert.Equal(t, 1, summary.UnpricedFiles, "the HD file has no price")
	assert.InDelta(t, 0.17, summary.ConvertedCost, 1e-9)
	assert.InDelta(t, 0.0522, summary.PendingCost, 1e-9)
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "high_definition")
	require.NotNil(t, summary.MediaFiles)
	assert.Equal(t, metadata.FileCounts{Total: 4, Audio: 1, Video: 3}, *summary.MediaFiles)

	estimate, err := sm.EstimateFile(ctx, "ap-southeast-2", "cccc0003")
	require.NoError(t, err)
	require.NotNil(t, estimate.TotalCost)
	assert.InDelta(t, 0.0522, *estimate.TotalCost, 1e-9)

	_, err = sm.EstimateFile(ctx, "ap-southeast-2", "dddd0004")
	assert.ErrorIs(t, err, metadata.ErrRecordNotFound)

	_, err = sm.Report(ctx, "mars-1")
	assert.ErrorIs(t, err, pricing.ErrUnknownRegion)
}

func Test_RunExtraction_SecondRunSkipsExtractedFiles(t *testing.T) {
	sm, db, prober := newTestSmartmedia(t)
	ctx := context.Background()

	seed(t, db, "aaaa0001", "audio/mpeg")
	prober.EXPECT().GetMediaMetadata(mock.Anything, "/data/aa/aa/aaaa0001").Return(probed(60, 0), nil).Once()

	first, err := sm.RunExtraction(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SuccessCount)

	second, err := sm.RunExtraction(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.CandidateCount)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func Test_RunExtraction_LockHeld(t *testing.T) {
	sm, db, _ := newTestSmartmedia(t)
	ctx := context.Background()

	err := db.WithAdvisoryLock(ctx, runLockKey, func() error {
		_, err := sm.RunExtraction(ctx)
		assert.ErrorIs(t, err, database.ErrLockHeld)

		_, err = sm.Reconcile(ctx)
		assert.ErrorIs(t, err, database.ErrLockHeld)
		return nil
	})
	require.NoError(t, err)
}

func Test_Reconcile_RemovesOrphans(t *testing.T) {
	sm, db, _ := newTestSmartmedia(t)
	ctx := context.Background()

	seed(t, db, "kept0001", "video/mp4")
	require.NoError(t, sm.store.InsertRecords(ctx, []*metadata.Record{
		{ContentHash: "kept0001", PathnameHash: "p-kept0001", TimeCreated: time.Now()},
		{ContentHash: "gone0002", PathnameHash: "p-gone0002", TimeCreated: time.Now()},
	}))

	result, err := sm.Reconcile(ctx)
	require.NoError(t, err)
	assert.Contains(t, result.Removed, "p-gone0002")
	assert.Len(t, result.Removed, 1)

	records, err := sm.store.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "kept0001", records[0].ContentHash)
}

func Test_GetPricing_OnlyEnabledServices(t *testing.T) {
	regions := pricing.DefaultRegionTable()
	sm := newSmartmedia(Config{}, database.New(), regions, nil)

	_, err := sm.GetPricing(context.Background(), "ap-southeast-2")
	assert.ErrorIs(t, err, pricing.ErrCatalogUnavailable, "catalog must be connected before pricing")

	sm.catalog = sydneyCatalog{}
	prices, err := sm.GetPricing(context.Background(), "ap-southeast-2")
	require.NoError(t, err)
	assert.Nil(t, prices.Analysis)
	assert.Nil(t, prices.Transcription)
	assert.True(t, prices.Transcode.HasValidPrice(pricing.StandardDefinition))
	assert.False(t, prices.Transcode.HasValidPrice(pricing.HighDefinition))

	sm.config.Cost = cost.Config{AnalysisFeatures: []string{"label_detection"}, Transcribe: true}
	prices, err = sm.GetPricing(context.Background(), "ap-southeast-2")
	require.NoError(t, err)
	assert.NotNil(t, prices.Analysis)
	assert.NotNil(t, prices.Transcription)
}
