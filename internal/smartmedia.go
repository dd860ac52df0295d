package internal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hbomb79/smartmedia/internal/api"
	"github.com/hbomb79/smartmedia/internal/cost"
	"github.com/hbomb79/smartmedia/internal/database"
	"github.com/hbomb79/smartmedia/internal/extract"
	"github.com/hbomb79/smartmedia/internal/ffmpeg"
	"github.com/hbomb79/smartmedia/internal/pricing"
	"github.com/hbomb79/smartmedia/pkg/logger"
)

var log = logger.Get("Core")

// Runs of extraction and reconciliation are serialised across every
// smartmedia process sharing a database using this advisory lock.
const runLockKey int64 = 0x736d6564

type (
	RunnableService interface {
		Run(context.Context) error
	}

	// smartmediaImpl is the top-level object of the application, and is
	// responsible for wiring together the database, the extraction scheduler
	// and the pricing catalog. All of the operations exposed by the CLI and
	// the REST gateway are implemented here.
	smartmediaImpl struct {
		config    Config
		db        database.Manager
		store     *dataOrchestrator
		regions   *pricing.RegionTable
		catalog   pricing.CatalogAPI
		scheduler *extract.Scheduler
	}
)

func New(config Config) (*smartmediaImpl, error) {
	log.Emit(logger.DEBUG, "Bootstrapping smartmedia using config: %#v\n", config)
	regions, err := pricing.LoadRegionTable(config.Pricing.RegionTablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load region table: %w", err)
	}

	return newSmartmedia(config, database.New(), regions, ffmpeg.NewProber(config.Probe)), nil
}

func newSmartmedia(config Config, db database.Manager, regions *pricing.RegionTable, prober extract.Prober) *smartmediaImpl {
	store := newDataOrchestrator(db)
	return &smartmediaImpl{
		config:    config,
		db:        db,
		store:     store,
		regions:   regions,
		scheduler: extract.New(config.Extraction, prober, store, store),
	}
}

// ConnectDatabase opens the database connection and executes any
// pending migrations. Required by every operation except pricing.
func (sm *smartmediaImpl) ConnectDatabase() error {
	log.Emit(logger.NEW, "Connecting to database...\n")
	return sm.db.Connect(sm.config.Database)
}

// ConnectCatalog constructs the client used to query the pricing catalog
// using the AWS credentials found in the environment.
func (sm *smartmediaImpl) ConnectCatalog(ctx context.Context) error {
	catalog, err := pricing.NewAWSCatalog(ctx, sm.config.Pricing)
	if err != nil {
		return err
	}

	sm.catalog = catalog
	return nil
}

func (sm *smartmediaImpl) Close() error {
	return sm.db.Close()
}

// RunExtraction performs a single time-boxed extraction run. If another
// run (or reconciliation) holds the run lock, database.ErrLockHeld is
// returned and nothing is processed.
func (sm *smartmediaImpl) RunExtraction(ctx context.Context) (*extract.Result, error) {
	var result *extract.Result
	err := sm.db.WithAdvisoryLock(ctx, runLockKey, func() error {
		res, err := sm.scheduler.Run(ctx, sm.config.Extraction.MaxRuntimeDuration())
		result = res
		return err
	})

	return result, err
}

// Reconcile removes the metadata for content which no longer exists. It
// shares the run lock with extraction.
func (sm *smartmediaImpl) Reconcile(ctx context.Context) (*extract.ReconcileResult, error) {
	var result *extract.ReconcileResult
	err := sm.db.WithAdvisoryLock(ctx, runLockKey, func() error {
		res, err := sm.scheduler.Reconcile(ctx)
		result = res
		return err
	})

	return result, err
}

func (sm *smartmediaImpl) Regions() []string     { return sm.regions.Codes() }
func (sm *smartmediaImpl) DefaultRegion() string { return sm.config.Pricing.Region }

// GetLocationPricing fetches the live pricing of a single service.
func (sm *smartmediaImpl) GetLocationPricing(ctx context.Context, service pricing.Service, region string) (*pricing.LocationPricing, error) {
	if sm.catalog == nil {
		return nil, fmt.Errorf("%w: catalog is not connected", pricing.ErrCatalogUnavailable)
	}

	return pricing.NewClient(sm.catalog, service, sm.regions).GetLocationPricing(ctx, region)
}

// GetPricing fetches the pricing of every service enabled by the cost
// configuration. Transcoding is always priced.
func (sm *smartmediaImpl) GetPricing(ctx context.Context, region string) (*cost.Pricing, error) {
	prices := &cost.Pricing{}

	transcode, err := sm.GetLocationPricing(ctx, pricing.TranscodeService, region)
	if err != nil {
		return nil, err
	}
	prices.Transcode = transcode

	if len(sm.config.Cost.AnalysisFeatures) > 0 {
		if prices.Analysis, err = sm.GetLocationPricing(ctx, pricing.AnalysisService, region); err != nil {
			return nil, err
		}
	}

	if sm.config.Cost.Transcribe {
		if prices.Transcription, err = sm.GetLocationPricing(ctx, pricing.TranscriptionService, region); err != nil {
			return nil, err
		}
	}

	return prices, nil
}

// Report estimates the cost of processing every file with metadata
// under the pricing of the region provided.
func (sm *smartmediaImpl) Report(ctx context.Context, region string) (*cost.Summary, error) {
	prices, err := sm.GetPricing(ctx, region)
	if err != nil {
		return nil, err
	}

	records, err := sm.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	converted, err := sm.store.GetConvertedContentHashes(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := sm.store.CountMediaFiles(ctx)
	if err != nil {
		return nil, err
	}

	summary := cost.New(sm.config.Cost, *prices).Summarize(region, records, converted)
	summary.MediaFiles = counts

	return summary, nil
}

// EstimateFile returns the cost breakdown of a single piece of content.
func (sm *smartmediaImpl) EstimateFile(ctx context.Context, region string, contentHash string) (*cost.FileEstimate, error) {
	record, err := sm.store.GetRecord(ctx, contentHash)
	if err != nil {
		return nil, err
	}

	prices, err := sm.GetPricing(ctx, region)
	if err != nil {
		return nil, err
	}

	return cost.New(sm.config.Cost, *prices).EstimateRecord(record), nil
}

// Serve brings up the REST gateway and the run scheduler, and does not
// return until both have stopped. To stop serving, the provided context must
// be cancelled. Errors from which a service cannot recover will also cause
// serving to stop.
func (sm *smartmediaImpl) Serve(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		crashErr  error
		crashOnce sync.Once
	)
	crashHandler := func(label string, err error) {
		log.Emit(logger.FATAL, "Service crash (%s)! %s\n", label, err.Error())
		crashOnce.Do(func() { crashErr = fmt.Errorf("%s crashed: %w", label, err) })
		cancel()
	}

	scheduler := newCronService(
		scheduledJob{"extraction", sm.config.Schedule.ExtractionSpec, sm.scheduledExtraction},
		scheduledJob{"reconciliation", sm.config.Schedule.ReconciliationSpec, sm.scheduledReconciliation},
	)

	wg := &sync.WaitGroup{}
	sm.spawnAsyncService(ctx, wg, api.NewRestGateway(&sm.config.RestConfig, sm), "rest-gateway", crashHandler)
	sm.spawnAsyncService(ctx, wg, scheduler, "run-scheduler", crashHandler)
	log.Emit(logger.SUCCESS, "smartmedia services spawned!\n")

	wg.Wait()
	return crashErr
}

// spawnAsyncService will run the provided service as it's own
// go-routine, ensuring that the waitgroup is updated correctly
func (sm *smartmediaImpl) spawnAsyncService(ctx context.Context, wg *sync.WaitGroup, service RunnableService, serviceLabel string, crashHandler func(string, error)) {
	log.Emit(logger.NEW, "Spawning %s\n", serviceLabel)
	wg.Add(1)

	go func(wg *sync.WaitGroup, label string, crash func(string, error)) {
		defer func() {
			if r := recover(); r != nil {
				crash(label, fmt.Errorf("panic: %v", r))
			}

			log.Emit(logger.STOP, "Service %s has stopped\n", label)
			wg.Done()
		}()

		if err := service.Run(ctx); err != nil {
			crash(label, err)
		}
	}(wg, serviceLabel, crashHandler)
}

func (sm *smartmediaImpl) scheduledExtraction(ctx context.Context) error {
	result, err := sm.RunExtraction(ctx)
	if errors.Is(err, database.ErrLockHeld) {
		log.Warnf("Skipping scheduled extraction as another run is in progress\n")
		return nil
	} else if err != nil {
		return err
	}

	log.Emit(logger.SUCCESS, "Scheduled extraction %s complete: %d candidates, %d extracted, %d failed, %d duplicate (halted=%v)\n",
		result.RunID, result.CandidateCount, result.SuccessCount, result.FailCount, result.DuplicateCount, result.Halted)
	return nil
}

func (sm *smartmediaImpl) scheduledReconciliation(ctx context.Context) error {
	result, err := sm.Reconcile(ctx)
	if errors.Is(err, database.ErrLockHeld) {
		log.Warnf("Skipping scheduled reconciliation as another run is in progress\n")
		return nil
	} else if err != nil {
		return err
	}

	log.Emit(logger.SUCCESS, "Scheduled reconciliation complete: %d records removed\n", len(result.Removed))
	return nil
}
