package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nerrad567/motionbridge/internal/infrastructure/config"
	"github.com/nerrad567/motionbridge/internal/pipeline"
)

// Database configuration constants.
const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second
)

// schema creates the journal table on first open. The table is append-only;
// reprocessing an event adds a second row rather than updating the first,
// preserving the full processing history.
const schema = `
CREATE TABLE IF NOT EXISTS processed_events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	camera_id    TEXT    NOT NULL,
	event_id     TEXT    NOT NULL,
	outcome      TEXT    NOT NULL,
	artifact     TEXT    NOT NULL DEFAULT '',
	error        TEXT    NOT NULL DEFAULT '',
	duration_ms  INTEGER NOT NULL,
	processed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_processed_events_event
	ON processed_events(camera_id, event_id);
`

// Entry is one journal row.
type Entry struct {
	ID          int64
	CameraID    string
	EventID     string
	Outcome     string
	Artifact    string
	Error       string
	DurationMS  int64
	ProcessedAt time.Time
}

// Journal wraps a SQLite connection holding the processed-event history.
// It satisfies pipeline.Recorder.
type Journal struct {
	db   *sql.DB
	path string
}

// Open creates the journal database, applying WAL mode and busy-timeout
// pragmas and creating the schema if needed.
//
// Parameters:
//   - cfg: Journal configuration from the main config file
//
// Returns:
//   - *Journal: Ready-to-use journal
//   - error: If the file cannot be opened or the schema created
func Open(cfg config.JournalConfig) (*Journal, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	// Connection string pragmas, see github.com/mattn/go-sqlite3.
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}

	// SQLite supports a single writer; the journal only ever writes from
	// pipeline workers, so one connection is enough.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying journal connection: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	// Owner read/write only; the journal can hold camera identifiers.
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // File may appear after first write

	return &Journal{db: db, path: cfg.Path}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("closing journal database: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the journal database file.
func (j *Journal) Path() string {
	return j.path
}

// HealthCheck verifies the journal is accessible.
func (j *Journal) HealthCheck(ctx context.Context) error {
	var result int
	if err := j.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("journal health check failed: %w", err)
	}
	return nil
}

// Record appends one processing result to the journal.
func (j *Journal) Record(ctx context.Context, res pipeline.Result) error {
	errText := ""
	if res.Err != nil {
		errText = res.Err.Error()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO processed_events
			(camera_id, event_id, outcome, artifact, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		res.Camera,
		res.EventID,
		string(res.Outcome),
		res.Artifact,
		errText,
		res.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording processed event: %w", err)
	}
	return nil
}

// CountForEvent returns how many times an event has been processed.
// Reprocessed events accumulate one row per attempt.
func (j *Journal) CountForEvent(ctx context.Context, cameraID, eventID string) (int, error) {
	var count int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM processed_events WHERE camera_id = ? AND event_id = ?",
		cameraID, eventID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting journal entries: %w", err)
	}
	return count, nil
}

// Recent returns the most recently processed events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, camera_id, event_id, outcome, artifact, error, duration_ms, processed_at
		 FROM processed_events
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query cleanup

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CameraID, &e.EventID, &e.Outcome,
			&e.Artifact, &e.Error, &e.DurationMS, &e.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}
	return entries, nil
}
