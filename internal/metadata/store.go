package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/hbomb79/smartmedia/internal/database"
)

const (
	// The number of rows sent per INSERT statement. Postgres
	// limits a statement to 65535 bind parameters.
	insertBatchSize = 1000

	// Files written by smartmedia itself are never candidates.
	ownComponent = "smartmedia"

	orphanReason = "content hash is no longer referenced by any file"
)

var (
	psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	ErrRecordNotFound = errors.New("no metadata record for content")
)

type (
	// FileCandidate is a read-only view of a file revision in
	// the host file store.
	FileCandidate struct {
		ContentHash  string    `db:"content_hash"`
		PathnameHash string    `db:"pathname_hash"`
		TimeCreated  time.Time `db:"time_created"`
	}

	// Record is the technical metadata extracted for a single
	// unique piece of content (identified by its content hash).
	Record struct {
		ID           uuid.UUID        `db:"id" json:"id"`
		ContentHash  string           `db:"content_hash" json:"content_hash"`
		PathnameHash string           `db:"pathname_hash" json:"pathname_hash"`
		Duration     float64          `db:"duration" json:"duration"`
		Bitrate      int64            `db:"bitrate" json:"bitrate"`
		Size         int64            `db:"size" json:"size"`
		VideoStreams int              `db:"video_streams" json:"video_streams"`
		AudioStreams int              `db:"audio_streams" json:"audio_streams"`
		Width        int              `db:"width" json:"width"`
		Height       int              `db:"height" json:"height"`
		Metadata     database.RawJson `db:"metadata" json:"metadata"`
		TimeCreated  time.Time        `db:"time_created" json:"time_created"`
	}

	// Orphan is a metadata record whose content is no longer
	// referenced by any file in the host store.
	Orphan struct {
		ContentHash  string `db:"content_hash"`
		PathnameHash string `db:"pathname_hash"`
		Reason       string `db:"-"`
	}

	FileCounts struct {
		Total int `db:"total" json:"total"`
		Audio int `db:"audio" json:"audio"`
		Video int `db:"video" json:"video"`
	}

	Store struct{}
)

// DurationMinutes returns the duration of the media in minutes, which
// is the unit used by the pricing catalog.
func (record *Record) DurationMinutes() float64 {
	return record.Duration / 60
}

// GetFilesToProcess returns all files which do not yet have a metadata record for
// their content. Only files created at or after 'since' are considered,
// unless 'since' is the zero time. Newest files are returned first.
func (store *Store) GetFilesToProcess(ctx context.Context, db database.Queryable, since time.Time) ([]FileCandidate, error) {
	builder := psql.
		Select("f.content_hash", "f.pathname_hash", "f.time_created").
		From("files f").
		LeftJoin("media_metadata m ON m.content_hash = f.content_hash").
		Where(squirrel.Eq{"m.id": nil}).
		Where(squirrel.NotEq{"f.component": ownComponent}).
		Where(squirrel.Or{
			squirrel.Like{"f.mimetype": "audio/%"},
			squirrel.Like{"f.mimetype": "video/%"},
		}).
		OrderBy("f.time_created DESC", "f.id DESC")

	if !since.IsZero() {
		builder = builder.Where(squirrel.GtOrEq{"f.time_created": since})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to construct candidate query: %w", err)
	}

	var results []FileCandidate
	if err := db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select candidate files: %w", err)
	}

	return results, nil
}

// GetOrphanedRecords returns every metadata record whose content hash
// is not referenced by any file.
func (store *Store) GetOrphanedRecords(ctx context.Context, db database.Queryable) ([]Orphan, error) {
	var results []Orphan
	if err := db.SelectContext(ctx, &results, `
		SELECT m.content_hash, m.pathname_hash FROM media_metadata m
		WHERE NOT EXISTS (SELECT 1 FROM files f WHERE f.content_hash = m.content_hash)
	`); err != nil {
		return nil, fmt.Errorf("failed to select orphaned metadata: %w", err)
	}

	for k := range results {
		results[k].Reason = orphanReason
	}

	return results, nil
}

// InsertRecords bulk inserts the provided records. Callers wanting
// all-or-nothing behaviour should provide a transaction.
func (store *Store) InsertRecords(ctx context.Context, db database.Queryable, records []*Record) error {
	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))

		builder := psql.
			Insert("media_metadata").
			Columns("id", "content_hash", "pathname_hash", "duration", "bitrate", "size",
				"video_streams", "audio_streams", "width", "height", "metadata", "time_created").
			Suffix("ON CONFLICT(content_hash) DO NOTHING")

		for _, r := range records[start:end] {
			if r.ID == uuid.Nil {
				r.ID = uuid.New()
			}

			builder = builder.Values(r.ID, r.ContentHash, r.PathnameHash, r.Duration, r.Bitrate, r.Size,
				r.VideoStreams, r.AudioStreams, r.Width, r.Height, r.Metadata, r.TimeCreated)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to construct metadata insert: %w", err)
		}

		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert metadata records: %w", err)
		}
	}

	return nil
}

// DeleteRecordsByContentHash removes all metadata records with the given
// content hashes, returning the number of rows removed.
func (store *Store) DeleteRecordsByContentHash(ctx context.Context, db database.Queryable, hashes []string) (int64, error) {
	if len(hashes) == 0 {
		return 0, nil
	}

	query, args, err := psql.Delete("media_metadata").Where(squirrel.Eq{"content_hash": hashes}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to construct metadata delete: %w", err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete metadata records: %w", err)
	}

	return res.RowsAffected()
}

func (store *Store) ListRecords(ctx context.Context, db database.Queryable) ([]*Record, error) {
	var results []*Record
	if err := db.SelectContext(ctx, &results, `SELECT * FROM media_metadata ORDER BY time_created, content_hash`); err != nil {
		return nil, fmt.Errorf("failed to list metadata records: %w", err)
	}

	return results, nil
}

func (store *Store) GetRecord(ctx context.Context, db database.Queryable, contentHash string) (*Record, error) {
	var result Record
	if err := db.GetContext(ctx, &result, `SELECT * FROM media_metadata WHERE content_hash=$1`, contentHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, contentHash)
		}

		return nil, fmt.Errorf("failed to find metadata for content %s: %w", contentHash, err)
	}

	return &result, nil
}

// GetConvertedContentHashes returns the set of content hashes which
// have at least one finished conversion.
func (store *Store) GetConvertedContentHashes(ctx context.Context, db database.Queryable) (map[string]bool, error) {
	var hashes []string
	if err := db.SelectContext(ctx, &hashes, `SELECT DISTINCT content_hash FROM conversions WHERE status = 'finished'`); err != nil {
		return nil, fmt.Errorf("failed to select converted content: %w", err)
	}

	output := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		output[h] = true
	}

	return output, nil
}

// CountMediaFiles counts the files in the host store, and how
// many of those are audio or video (by MIME type).
func (store *Store) CountMediaFiles(ctx context.Context, db database.Queryable) (*FileCounts, error) {
	var counts FileCounts
	if err := db.GetContext(ctx, &counts, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE mimetype LIKE 'audio/%') AS audio,
			COUNT(*) FILTER (WHERE mimetype LIKE 'video/%') AS video
		FROM files
		WHERE component <> $1
	`, ownComponent); err != nil {
		return nil, fmt.Errorf("failed to count media files: %w", err)
	}

	return &counts, nil
}
