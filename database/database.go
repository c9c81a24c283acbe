package database

import (
	"database/sql"
	"fmt"
	"time"

	"imagepad/logging"
	"imagepad/types"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// BatchPrefix is prepended to every batch id
const BatchPrefix = "batch_"

// BatchRecord is one row of the batches table
type BatchRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Scale      float64
	ForcePad   bool
	Total      int
	Succeeded  int
	Failed     int
	ElapsedMS  int64
}

// FileRecord is one row of the batch_files table
type FileRecord struct {
	BatchID      string
	Path         string
	Outcome      types.Outcome
	Message      string
	SourceWidth  int
	SourceHeight int
	Width        int
	Height       int
}

// InitDatabase opens the journal at dbPath, creating its tables if needed
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open journal")
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		scale REAL NOT NULL,
		force_pad INTEGER NOT NULL,
		total INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS batch_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL REFERENCES batches(id),
		path TEXT NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT,
		source_width INTEGER,
		source_height INTEGER,
		width INTEGER,
		height INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_batches_started_at ON batches(started_at);
	CREATE INDEX IF NOT EXISTS idx_batch_files_batch_id ON batch_files(batch_id);`

	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "cannot create journal tables")
	}

	// Journals written before elapsed_ms was recorded lack the column
	var hasElapsedColumn bool
	err = db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('batches') WHERE name='elapsed_ms'").Scan(&hasElapsedColumn)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error checking for elapsed_ms column")
	}

	if !hasElapsedColumn {
		if _, err = db.Exec("ALTER TABLE batches ADD COLUMN elapsed_ms INTEGER NOT NULL DEFAULT 0;"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "error adding elapsed_ms column")
		}
		logging.DebugLog("Added 'elapsed_ms' column to journal schema")
	}

	return db, nil
}

// OpenDatabase opens an existing journal without touching its schema
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// generateBatchID returns a time-ordered UUIDv7 id, falling back to the
// current time if the generator fails
func generateBatchID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(BatchPrefix+"%d", time.Now().UnixNano())
	}
	return BatchPrefix + id.String()
}

// StoreBatch records a finished batch and all of its file results in a
// single transaction and returns the new batch id
func StoreBatch(db *sql.DB, params types.ProcessingParameters, summary types.BatchSummary, started time.Time) (string, error) {
	id := generateBatchID()
	finished := started.Add(summary.Elapsed)

	tx, err := db.Begin()
	if err != nil {
		return "", errors.Wrap(err, "cannot begin journal transaction")
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO batches (
			id, started_at, finished_at, scale, force_pad, total, succeeded, failed, elapsed_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		started.UTC().Format(time.RFC3339Nano),
		finished.UTC().Format(time.RFC3339Nano),
		params.Scale,
		params.ForcePad,
		summary.Total,
		summary.Succeeded,
		summary.Failed,
		summary.Elapsed.Milliseconds(),
	)
	if err != nil {
		return "", errors.Wrapf(err, "cannot insert batch %s", id)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO batch_files (
			batch_id, path, outcome, message, source_width, source_height, width, height
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "cannot prepare file statement")
	}
	defer stmt.Close()

	for _, r := range summary.Results {
		_, err := stmt.Exec(
			id,
			r.Path,
			r.Outcome.String(),
			r.Message,
			r.Report.SourceWidth,
			r.Report.SourceHeight,
			r.Report.Width,
			r.Report.Height,
		)
		if err != nil {
			return "", errors.Wrapf(err, "cannot insert result for %s", r.Path)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "cannot commit batch")
	}

	logging.DebugLog("Stored batch %s (%d files) in journal", id, len(summary.Results))
	return id, nil
}

// ListBatches returns the most recent batches first. limit <= 0 returns all.
func ListBatches(db *sql.DB, limit int) ([]BatchRecord, error) {
	query := `SELECT id, started_at, finished_at, scale, force_pad, total, succeeded, failed, elapsed_ms
		FROM batches ORDER BY started_at DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "cannot query batches")
	}
	defer rows.Close()

	var batches []BatchRecord
	for rows.Next() {
		var b BatchRecord
		var startedAt, finishedAt string
		err := rows.Scan(&b.ID, &startedAt, &finishedAt, &b.Scale, &b.ForcePad,
			&b.Total, &b.Succeeded, &b.Failed, &b.ElapsedMS)
		if err != nil {
			return nil, errors.Wrap(err, "cannot read batch row")
		}
		if b.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, errors.Wrapf(err, "bad started_at for batch %s", b.ID)
		}
		if b.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, errors.Wrapf(err, "bad finished_at for batch %s", b.ID)
		}
		batches = append(batches, b)
	}
	return batches, errors.Wrap(rows.Err(), "cannot iterate batches")
}

// GetBatchFiles returns the file results of one batch in the order they
// were recorded
func GetBatchFiles(db *sql.DB, batchID string) ([]FileRecord, error) {
	rows, err := db.Query(`
		SELECT batch_id, path, outcome, message, source_width, source_height, width, height
		FROM batch_files WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot query files of batch %s", batchID)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var outcome string
		var message sql.NullString
		err := rows.Scan(&f.BatchID, &f.Path, &outcome, &message,
			&f.SourceWidth, &f.SourceHeight, &f.Width, &f.Height)
		if err != nil {
			return nil, errors.Wrap(err, "cannot read file row")
		}
		f.Outcome = types.ParseOutcome(outcome)
		f.Message = message.String
		files = append(files, f)
	}
	return files, errors.Wrap(rows.Err(), "cannot iterate batch files")
}
