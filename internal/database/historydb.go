package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/eps-fdir/epsfdir/internal/model"
)

// FileName is the name of the history database inside its directory.
const FileName = "epsfdir.db"

// Run kinds.
const (
	KindCharts = "charts"
	KindExport = "export"
)

// Artifact roles.
const (
	RoleChart  = "chart"
	RoleModel  = "model"
	RoleSource = "source"
	RoleHeader = "header"
)

// HistoryDB stores the results of past runs.
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

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
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
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per charts run or model export
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		saved INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		cancelled INTEGER NOT NULL DEFAULT 0,
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Files read or written by a run
	CREATE TABLE IF NOT EXISTS artifacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		name TEXT NOT NULL,
		path TEXT,
		status TEXT NOT NULL,
		bytes INTEGER NOT NULL DEFAULT 0,
		digest TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id);
	CREATE INDEX IF NOT EXISTS idx_artifacts_name ON artifacts(name);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is a stored run.
type RunRecord struct {
	ID        int64
	Kind      string
	StartedAt time.Time
	EndedAt   time.Time
	OutputDir string
	Saved     int
	Failed    int
	Cancelled int

	// Detail is a one-line description, e.g. the exported artifact.
	Detail string
}

// ArtifactRecord is a stored file of a run.
type ArtifactRecord struct {
	ID     int64
	RunID  int64
	Role   string
	Name   string
	Path   string
	Status model.Status
	Bytes  int64
	Digest string
	Error  string
}

// SaveRun stores a charts run with one artifact row per chart.
func (h *HistoryDB) SaveRun(ctx context.Context, report *model.RunReport) (int64, error) {
	run := RunRecord{
		Kind:      KindCharts,
		StartedAt: report.StartedAt,
		EndedAt:   report.EndedAt,
		OutputDir: report.OutputDir,
		Saved:     report.Count(model.StatusSaved),
		Failed:    report.Count(model.StatusFailed),
		Cancelled: report.Count(model.StatusCancelled),
	}

	artifacts := make([]ArtifactRecord, len(report.Charts))
	for i, c := range report.Charts {
		a := ArtifactRecord{
			Role:   RoleChart,
			Name:   c.Name,
			Path:   c.Path,
			Status: c.Status,
			Bytes:  c.Bytes,
			Digest: c.Digest,
		}
		if c.Err != nil {
			a.Error = c.Err.Error()
		}
		artifacts[i] = a
	}

	return h.insert(ctx, run, artifacts)
}

// SaveExport stores a model export with rows for the model input and the
// generated files.
func (h *HistoryDB) SaveExport(ctx context.Context, report *model.ExportReport) (int64, error) {
	saved := 1
	artifacts := []ArtifactRecord{
		{
			Role:   RoleModel,
			Name:   filepath.Base(report.ArtifactPath),
			Path:   report.ArtifactPath,
			Status: model.StatusRead,
			Digest: report.ArtifactDigest,
		},
		{
			Role:   RoleSource,
			Name:   filepath.Base(report.SourcePath),
			Path:   report.SourcePath,
			Status: model.StatusSaved,
			Bytes:  report.SourceBytes,
		},
	}
	if report.HeaderPath != "" {
		saved++
		artifacts = append(artifacts, ArtifactRecord{
			Role:   RoleHeader,
			Name:   filepath.Base(report.HeaderPath),
			Path:   report.HeaderPath,
			Status: model.StatusSaved,
		})
	}

	run := RunRecord{
		Kind:      KindExport,
		StartedAt: report.ExportedAt,
		EndedAt:   report.ExportedAt,
		OutputDir: filepath.Dir(report.SourcePath),
		Saved:     saved,
		Detail:    fmt.Sprintf("%s -> %s", filepath.Base(report.ArtifactPath), report.Signature),
	}
	return h.insert(ctx, run, artifacts)
}

// insert stores a run and its artifacts in one transaction.
func (h *HistoryDB) insert(ctx context.Context, run RunRecord, artifacts []ArtifactRecord) (id int64, err error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (kind, started_at, ended_at, output_dir, saved, failed, cancelled, detail)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.Kind,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.EndedAt),
		run.OutputDir,
		run.Saved,
		run.Failed,
		run.Cancelled,
		run.Detail,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, a := range artifacts {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO artifacts (run_id, role, name, path, status, bytes, digest, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, a.Role, a.Name, a.Path, a.Status.String(), a.Bytes, a.Digest, a.Error)
		if err != nil {
			return 0, fmt.Errorf("failed to save artifact %s: %w", a.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// RecentRuns returns up to limit runs, newest first.
func (h *HistoryDB) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, kind, started_at, ended_at, output_dir, saved, failed, cancelled, detail
	FROM runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`

	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started, ended string
		var detail sql.NullString
		if err := rows.Scan(&r.ID, &r.Kind, &started, &ended, &r.OutputDir,
			&r.Saved, &r.Failed, &r.Cancelled, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(started)
		r.EndedAt = parseTimestamp(ended)
		r.Detail = detail.String
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// RunArtifacts returns the artifacts of a run in insertion order.
func (h *HistoryDB) RunArtifacts(ctx context.Context, runID int64) ([]ArtifactRecord, error) {
	query := `
	SELECT id, run_id, role, name, path, status, bytes, digest, error
	FROM artifacts
	WHERE run_id = ?
	ORDER BY id
	`

	rows, err := h.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var out []ArtifactRecord
	for rows.Next() {
		var a ArtifactRecord
		var status string
		var path, digest, errText sql.NullString
		if err := rows.Scan(&a.ID, &a.RunID, &a.Role, &a.Name, &path,
			&status, &a.Bytes, &digest, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		a.Status = model.ParseStatus(status)
		a.Path = path.String
		a.Digest = digest.String
		a.Error = errText.String
		out = append(out, a)
	}

	return out, rows.Err()
}

// LastDigest returns the digest of the most recently saved chart with the
// given name, excluding run excludeRunID. ok is false when the chart was
// never saved before.
func (h *HistoryDB) LastDigest(ctx context.Context, name string, excludeRunID int64) (digest string, ok bool, err error) {
	query := `
	SELECT a.digest FROM artifacts a
	JOIN runs r ON r.id = a.run_id
	WHERE a.name = ? AND a.role = ? AND a.status = ? AND a.run_id != ?
	ORDER BY r.started_at DESC, r.id DESC
	LIMIT 1
	`

	var d sql.NullString
	err = h.db.QueryRowContext(ctx, query, name, RoleChart, model.StatusSaved.String(), excludeRunID).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get digest of %s: %w", name, err)
	}
	return d.String, true, nil
}

// storedTimestampLayout has a fixed-width fraction and zone, so text order
// is time order.
const storedTimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTimestamp stores times in UTC.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimestampLayout)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
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
