package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/tabclean/internal/model"
)

// FileName is the name of the history database file inside its directory.
const FileName = "tabclean.db"

// ErrRunNotFound is returned when no stored run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores finished cleaning runs in SQLite so later runs of the
// same source can be compared against them.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// RunMetadata is the part of a stored run needed to list history
// without decoding every run.
type RunMetadata struct {
	ID                string         `json:"id"`
	Source            string         `json:"source"`
	StartedAt         time.Time      `json:"started_at"`
	Duration          time.Duration  `json:"duration"`
	InputFingerprint  string         `json:"input_fingerprint"`
	OutputFingerprint string         `json:"output_fingerprint"`
	RowsBefore        int            `json:"rows_before"`
	ColsBefore        int            `json:"cols_before"`
	RowsAfter         int            `json:"rows_after"`
	ColsAfter         int            `json:"cols_after"`
	HighestSeverity   model.Severity `json:"highest_severity"`
	Findings          int            `json:"findings"`
	Error             string         `json:"error,omitempty"`
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		started_at TEXT NOT NULL,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		input_fingerprint TEXT,
		output_fingerprint TEXT,
		rows_before INTEGER,
		cols_before INTEGER,
		rows_after INTEGER,
		cols_after INTEGER,
		highest_severity INTEGER,
		findings INTEGER,
		error TEXT,
		run_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_input ON runs(input_fingerprint);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a run. Saving a run with an existing ID replaces it.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) error {
	if run == nil {
		return errors.New("run is nil")
	}

	runJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	var rowsBefore, colsBefore, rowsAfter, colsAfter int
	if s := run.Summary; s != nil {
		rowsBefore, colsBefore = s.RowsBefore, s.ColsBefore
		rowsAfter, colsAfter = s.RowsAfter, s.ColsAfter
	}

	query := `
	INSERT INTO runs (id, source, started_at, duration_ns, input_fingerprint, output_fingerprint,
		rows_before, cols_before, rows_after, cols_after, highest_severity, findings, error, run_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		source = excluded.source,
		started_at = excluded.started_at,
		duration_ns = excluded.duration_ns,
		input_fingerprint = excluded.input_fingerprint,
		output_fingerprint = excluded.output_fingerprint,
		rows_before = excluded.rows_before,
		cols_before = excluded.cols_before,
		rows_after = excluded.rows_after,
		cols_after = excluded.cols_after,
		highest_severity = excluded.highest_severity,
		findings = excluded.findings,
		error = excluded.error,
		run_json = excluded.run_json
	`

	_, err = hdb.db.ExecContext(ctx, query,
		run.ID, run.Source, formatTimestamp(run.StartedAt), int64(run.Duration),
		run.InputFingerprint, run.OutputFingerprint,
		rowsBefore, colsBefore, rowsAfter, colsAfter,
		int(run.HighestSeverity()), len(run.Findings), run.ErrorMessage, string(runJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. The tables of a stored run are not kept,
// so Input and Output are nil.
func (hdb *HistoryDB) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var runJSON string
	err := hdb.db.QueryRowContext(ctx, "SELECT run_json FROM runs WHERE id = ?", id).Scan(&runJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return decodeRun(runJSON)
}

// LatestRuns returns up to n runs of source, newest first.
func (hdb *HistoryDB) LatestRuns(ctx context.Context, source string, n int) ([]*model.Run, error) {
	rows, err := hdb.db.QueryContext(ctx,
		"SELECT run_json FROM runs WHERE source = ? ORDER BY started_at DESC, id DESC LIMIT ?",
		source, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		var runJSON string
		if err := rows.Scan(&runJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run, err := decodeRun(runJSON)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListRuns returns metadata of stored runs, newest first. An empty source
// lists the runs of every source. A limit of zero or less means no limit.
func (hdb *HistoryDB) ListRuns(ctx context.Context, source string, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, source, started_at, duration_ns, input_fingerprint, output_fingerprint,
		rows_before, cols_before, rows_after, cols_after, highest_severity, findings, error
	FROM runs
	WHERE (? = '' OR source = ?)
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := hdb.db.QueryContext(ctx, query, source, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta                   RunMetadata
			startedAt              string
			durationNS             int64
			inputFP, outputFP, msg sql.NullString
			severity               int
		)
		if err := rows.Scan(&meta.ID, &meta.Source, &startedAt, &durationNS, &inputFP, &outputFP,
			&meta.RowsBefore, &meta.ColsBefore, &meta.RowsAfter, &meta.ColsAfter,
			&severity, &meta.Findings, &msg); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.StartedAt = parseTimestamp(startedAt)
		meta.Duration = time.Duration(durationNS)
		meta.InputFingerprint = inputFP.String
		meta.OutputFingerprint = outputFP.String
		meta.HighestSeverity = model.Severity(severity)
		meta.Error = msg.String
		results = append(results, meta)
	}
	return results, rows.Err()
}

// ListSources returns every source with at least one stored run, sorted.
func (hdb *HistoryDB) ListSources(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, "SELECT DISTINCT source FROM runs ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// FindByInput returns the metadata of runs that read a table with the
// given input fingerprint, newest first.
func (hdb *HistoryDB) FindByInput(ctx context.Context, fingerprint string) ([]RunMetadata, error) {
	all, err := hdb.ListRuns(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	var matches []RunMetadata
	for _, m := range all {
		if m.InputFingerprint == fingerprint {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// DeleteRuns removes the runs of source and returns how many were removed.
func (hdb *HistoryDB) DeleteRuns(ctx context.Context, source string) (int64, error) {
	res, err := hdb.db.ExecContext(ctx, "DELETE FROM runs WHERE source = ?", source)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	return res.RowsAffected()
}

func decodeRun(runJSON string) (*model.Run, error) {
	var run model.Run
	if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to deserialize run: %w", err)
	}
	if run.ErrorMessage != "" {
		run.Error = errors.New(run.ErrorMessage)
	}
	return &run, nil
}

// storedTimestampFormat sorts lexically in time order for UTC values.
const storedTimestampFormat = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimestampFormat)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	storedTimestampFormat,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
	"2006-01-02 15:04:05",     // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
