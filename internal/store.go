package internal

import (
	"context"
	"time"

	"github.com/hbomb79/smartmedia/internal/database"
	"github.com/hbomb79/smartmedia/internal/metadata"
	"github.com/jmoiron/sqlx"
)

type (
	// dataOrchestrator is responsible for binding the 'dumb' data stores to
	// the database connection, and for deciding which operations need
	// to be performed inside of a transaction.
	//
	// If consumers need to be able to access data stores directly, they're
	// welcome to do so via the exported stores.
	dataOrchestrator struct {
		db            database.Manager
		now           func() time.Time
		MetadataStore *metadata.Store
	}
)

func newDataOrchestrator(db database.Manager) *dataOrchestrator {
	return &dataOrchestrator{
		db:            db,
		now:           time.Now,
		MetadataStore: &metadata.Store{},
	}
}

// GetFilesToProcess returns the files without metadata created within
// the lookback window. A zero lookback places no limit on creation time.
func (orch *dataOrchestrator) GetFilesToProcess(ctx context.Context, lookback time.Duration) ([]metadata.FileCandidate, error) {
	var since time.Time
	if lookback > 0 {
		since = orch.now().Add(-lookback)
	}

	return orch.MetadataStore.GetFilesToProcess(ctx, orch.db.GetSqlxDb(), since)
}

func (orch *dataOrchestrator) GetFilesToRemove(ctx context.Context) ([]metadata.Orphan, error) {
	return orch.MetadataStore.GetOrphanedRecords(ctx, orch.db.GetSqlxDb())
}

// InsertRecords saves all the records provided in a single transaction;
// either all of the records are saved, or none are.
func (orch *dataOrchestrator) InsertRecords(ctx context.Context, records []*metadata.Record) error {
	return orch.db.WrapTx(func(tx *sqlx.Tx) error {
		return orch.MetadataStore.InsertRecords(ctx, tx, records)
	})
}

func (orch *dataOrchestrator) DeleteRecordsByContentHash(ctx context.Context, hashes []string) (int64, error) {
	var removed int64
	err := orch.db.WrapTx(func(tx *sqlx.Tx) error {
		n, err := orch.MetadataStore.DeleteRecordsByContentHash(ctx, tx, hashes)
		removed = n
		return err
	})

	return removed, err
}

func (orch *dataOrchestrator) ListRecords(ctx context.Context) ([]*metadata.Record, error) {
	return orch.MetadataStore.ListRecords(ctx, orch.db.GetSqlxDb())
}

func (orch *dataOrchestrator) GetRecord(ctx context.Context, contentHash string) (*metadata.Record, error) {
	return orch.MetadataStore.GetRecord(ctx, orch.db.GetSqlxDb(), contentHash)
}

func (orch *dataOrchestrator) GetConvertedContentHashes(ctx context.Context) (map[string]bool, error) {
	return orch.MetadataStore.GetConvertedContentHashes(ctx, orch.db.GetSqlxDb())
}

func (orch *dataOrchestrator) CountMediaFiles(ctx context.Context) (*metadata.FileCounts, error) {
	return orch.MetadataStore.CountMediaFiles(ctx, orch.db.GetSqlxDb())
}
