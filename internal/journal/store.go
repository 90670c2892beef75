package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"keel/internal/services"
)

// Store persists run and per-target records in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the journal database file.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts a new run and returns it with a fresh identifier.
func (s *Store) BeginRun(ctx context.Context, op Op) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Op:        op,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (run_id, operation, started_at) VALUES (?, ?, ?)`,
		run.ID,
		string(run.Op),
		run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stamps the run's finish time.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET finished_at = ? WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run %s: %w", runID, services.ErrNotFound)
	}
	return nil
}

// Record journals the outcome of processing one target within a run.
func (s *Store) Record(ctx context.Context, runID string, op Op, target string, outcome Outcome, detail string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO records (run_id, operation, target, outcome, detail, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runID,
		string(op),
		target,
		outcome,
		nullableString(detail),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Run fetches a run by identifier.
func (s *Store) Run(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT run_id, operation, started_at, finished_at FROM runs WHERE run_id = ?`,
		runID,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, services.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// LatestRun returns the most recently started run, optionally filtered by
// operation. Returns nil when the journal holds no matching run.
func (s *Store) LatestRun(ctx context.Context, op Op) (*Run, error) {
	query := `SELECT run_id, operation, started_at, finished_at FROM runs`
	args := []any{}
	if op != "" {
		query += ` WHERE operation = ?`
		args = append(args, string(op))
	}
	query += ` ORDER BY started_at DESC LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, args...)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// Records returns every record for a run in insertion order.
func (s *Store) Records(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, operation, target, outcome, detail, created_at
         FROM records WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Summarize counts record outcomes for a run.
func (s *Store) Summarize(ctx context.Context, runID string) (Summary, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT outcome, COUNT(1) FROM records WHERE run_id = ? GROUP BY outcome`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	summary := Summary{}
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summary[Outcome(outcome)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return summary, nil
}

// HasConfirmation reports whether a copy of target with the given checksum was
// previously confirmed. Safe removal requires this as its second witness.
func (s *Store) HasConfirmation(ctx context.Context, target, checksum string) (bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM records
         WHERE operation = ? AND outcome = ? AND target = ? AND detail = ?`,
		string(OpCopyConfirm),
		string(OutcomeConfirmed),
		target,
		checksum,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("scan confirmation: %w", err)
	}
	return count > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		op         string
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(&run.ID, &op, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	run.Op = Op(op)

	started, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = started

	if finishedAt.Valid {
		finished, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = &finished
	}
	return &run, nil
}

func scanRecord(row scanner) (*Record, error) {
	var (
		record    Record
		op        string
		outcome   string
		detail    sql.NullString
		createdAt string
	)
	if err := row.Scan(&record.ID, &record.RunID, &op, &record.Target, &outcome, &detail, &createdAt); err != nil {
		return nil, err
	}
	record.Op = Op(op)
	record.Outcome = Outcome(outcome)
	record.Detail = detail.String

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	record.CreatedAt = created
	return &record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
