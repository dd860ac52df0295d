package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/smartmedia/internal/database"
	"github.com/hbomb79/smartmedia/internal/ffmpeg"
	"github.com/hbomb79/smartmedia/internal/metadata"
	"github.com/hbomb79/smartmedia/pkg/logger"
)

const defaultChunkSize = 100

var log = logger.Get("Extract")

type (
	Prober interface {
		GetMediaMetadata(ctx context.Context, path string) (*ffmpeg.ProbeResult, error)
	}

	CandidateSource interface {
		GetFilesToProcess(ctx context.Context, lookback time.Duration) ([]metadata.FileCandidate, error)
		GetFilesToRemove(ctx context.Context) ([]metadata.Orphan, error)
	}

	RecordStore interface {
		InsertRecords(ctx context.Context, records []*metadata.Record) error
		DeleteRecordsByContentHash(ctx context.Context, hashes []string) (int64, error)
	}

	// Result is the outcome of a single extraction run. Every candidate
	// considered by the run is counted exactly once across the
	// success, failure and duplicate counts.
	Result struct {
		RunID          uuid.UUID         `json:"run_id"`
		CandidateCount int               `json:"candidate_count"`
		SuccessCount   int               `json:"success_count"`
		FailCount      int               `json:"fail_count"`
		DuplicateCount int               `json:"duplicate_count"`
		FailedHashes   map[string]string `json:"failed_hashes"`
		Halted         bool              `json:"halted"`
		Elapsed        time.Duration     `json:"elapsed"`
	}

	ReconcileResult struct {
		Removed map[string]string `json:"removed"`
	}

	// Scheduler runs time-boxed batches of metadata extraction over
	// the files in the host store which do not yet have a record.
	Scheduler struct {
		config Config
		prober Prober
		source CandidateSource
		store  RecordStore
		now    func() time.Time
	}

	Option func(*Scheduler)

	// runState holds everything scoped to a single run.
	runState struct {
		start   time.Time
		seen    map[string]struct{}
		pending []*metadata.Record
		result  *Result
	}
)

// WithClock replaces the clock used to measure a run's elapsed time.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func New(config Config, prober Prober, source CandidateSource, store RecordStore, opts ...Option) *Scheduler {
	scheduler := &Scheduler{
		config: config,
		prober: prober,
		source: source,
		store:  store,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(scheduler)
	}

	return scheduler
}

func newRunState(start time.Time) *runState {
	return &runState{
		start: start,
		seen:  make(map[string]struct{}),
		result: &Result{
			RunID:        uuid.New(),
			FailedHashes: make(map[string]string),
		},
	}
}

// Run selects all files lacking a metadata record and extracts metadata for
// them, chunk by chunk, until either all candidates are processed or the
// runtime budget is exhausted. The budget is only checked between chunks, so
// a run may exceed it by the time taken to process one chunk.
//
// Failures specific to a file are recorded in the result and do not fail
// the run. Any other failure (probe unavailable, persistence) is returned
// as an error and no records are written.
func (scheduler *Scheduler) Run(ctx context.Context, maxRuntime time.Duration) (*Result, error) {
	state := newRunState(scheduler.now())
	log.Emit(logger.NEW, "Beginning metadata extraction run %s (budget %s)\n", state.result.RunID, maxRuntime)

	candidates, err := scheduler.source.GetFilesToProcess(ctx, scheduler.config.LookbackDuration())
	if err != nil {
		return nil, fmt.Errorf("failed to select files to process: %w", err)
	}

	state.result.CandidateCount = len(candidates)
	if len(candidates) == 0 {
		log.Infof("No files require metadata extraction\n")
		return scheduler.finish(state), nil
	}

	if elapsed := scheduler.now().Sub(state.start); elapsed >= maxRuntime {
		log.Emit(logger.WARNING, "Runtime budget for run %s is already exhausted (%s elapsed), at most one chunk will be processed\n", state.result.RunID, elapsed)
	}

	chunks := chunk(candidates, scheduler.config.chunkSize())
	for i, c := range chunks {
		log.Verbosef("Processing chunk %d/%d (%d files)\n", i+1, len(chunks), len(c))
		for _, candidate := range c {
			if err := scheduler.processCandidate(ctx, state, candidate); err != nil {
				return nil, err
			}
		}

		if elapsed := scheduler.now().Sub(state.start); elapsed >= maxRuntime {
			if remaining := len(chunks) - i - 1; remaining > 0 {
				log.Emit(logger.STOP, "Runtime budget exhausted after %s, halting with %d chunk(s) remaining\n", elapsed, remaining)
				state.result.Halted = true
			}

			break
		}
	}

	if len(state.pending) > 0 {
		if err := scheduler.store.InsertRecords(ctx, state.pending); err != nil {
			return nil, fmt.Errorf("failed to save %d metadata records: %w", len(state.pending), err)
		}
	}

	result := scheduler.finish(state)
	log.Emit(logger.SUCCESS, "Extraction run %s complete: %d succeeded, %d failed, %d duplicate (%s)\n",
		result.RunID, result.SuccessCount, result.FailCount, result.DuplicateCount, result.Elapsed)
	return result, nil
}

// processCandidate probes a single candidate, recording the outcome in the run
// state. Only failures that should abort the entire run are returned.
func (scheduler *Scheduler) processCandidate(ctx context.Context, state *runState, candidate metadata.FileCandidate) error {
	if _, ok := state.seen[candidate.ContentHash]; ok {
		log.Verbosef("Skipping %s as content %s has already been processed this run\n", candidate.PathnameHash, candidate.ContentHash)
		state.result.DuplicateCount++
		return nil
	}
	state.seen[candidate.ContentHash] = struct{}{}

	record, err := scheduler.extract(ctx, candidate)
	if err != nil {
		var trouble Trouble
		if errors.As(err, &trouble) {
			log.Warnf("Failed to extract metadata for %s (%s): %s\n", candidate.PathnameHash, trouble.Type(), trouble.Reason())
			state.result.FailedHashes[candidate.PathnameHash] = trouble.Reason()
			state.result.FailCount++
			return nil
		}

		return fmt.Errorf("failed to extract metadata for %s: %w", candidate.PathnameHash, err)
	}

	record.TimeCreated = scheduler.now()
	state.pending = append(state.pending, record)
	state.result.SuccessCount++
	return nil
}

func (scheduler *Scheduler) extract(ctx context.Context, candidate metadata.FileCandidate) (*metadata.Record, error) {
	result, err := scheduler.prober.GetMediaMetadata(ctx, scheduler.contentPath(candidate.ContentHash))
	if err != nil {
		return nil, err
	}

	if result == nil || result.Status != ffmpeg.StatusSuccess || result.Data == nil {
		reason := "probe returned no result"
		if result != nil && result.Reason != "" {
			reason = result.Reason
		}

		return nil, newTrouble(PROBE_FAILURE, reason)
	}

	return newRecord(candidate, result.Data)
}

// contentPath resolves the location of content in the host's file
// directory, which shards files by the first two pairs of their hash.
func (scheduler *Scheduler) contentPath(contentHash string) string {
	if len(contentHash) < 4 {
		return filepath.Join(scheduler.config.FileDirectory, contentHash)
	}

	return filepath.Join(scheduler.config.FileDirectory, contentHash[0:2], contentHash[2:4], contentHash)
}

func (scheduler *Scheduler) finish(state *runState) *Result {
	state.result.Elapsed = scheduler.now().Sub(state.start)
	return state.result
}

// Reconcile removes metadata for content which is no longer
// referenced by any file in the host store.
func (scheduler *Scheduler) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	orphans, err := scheduler.source.GetFilesToRemove(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select orphaned metadata: %w", err)
	}

	result := &ReconcileResult{Removed: make(map[string]string, len(orphans))}
	if len(orphans) == 0 {
		log.Infof("No orphaned metadata to remove\n")
		return result, nil
	}

	hashes := make([]string, 0, len(orphans))
	seen := make(map[string]struct{}, len(orphans))
	for _, orphan := range orphans {
		result.Removed[orphan.PathnameHash] = orphan.Reason
		if _, ok := seen[orphan.ContentHash]; !ok {
			seen[orphan.ContentHash] = struct{}{}
			hashes = append(hashes, orphan.ContentHash)
		}
	}

	removed, err := scheduler.store.DeleteRecordsByContentHash(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to delete %d orphaned metadata records: %w", len(hashes), err)
	}

	log.Emit(logger.REMOVE, "Removed %d orphaned metadata record(s)\n", removed)
	return result, nil
}

func newRecord(candidate metadata.FileCandidate, data *ffmpeg.ProbeData) (*metadata.Record, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, newTrouble(ENCODE_FAILURE, fmt.Sprintf("metadata could not be encoded: %s", err))
	}

	record := &metadata.Record{
		ID:           uuid.New(),
		ContentHash:  candidate.ContentHash,
		PathnameHash: candidate.PathnameHash,
		Duration:     data.Duration,
		Bitrate:      data.Bitrate,
		Size:         data.Size,
		VideoStreams: data.TotalVideoStreams,
		AudioStreams: data.TotalAudioStreams,
		Metadata:     database.RawJson(raw),
	}

	if len(data.VideoStreams) > 0 {
		record.Width = data.VideoStreams[0].Width
		record.Height = data.VideoStreams[0].Height
	}

	return record, nil
}

func chunk[T any](items []T, size int) [][]T {
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for size < len(items) {
		items, chunks = items[size:], append(chunks, items[0:size:size])
	}

	return append(chunks, items)
}
