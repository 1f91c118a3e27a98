// Package history keeps a SQLite log of verification runs so a plan's
// progress can be reviewed over time. Each row is one immutable result.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pablasso/planfirst/internal/verify"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// FileName is the database file inside the .planfirst directory.
const FileName = "history.db"

// Run is one recorded verification.
type Run struct {
	ID            string
	PlanID        string
	PhaseID       string
	OverallStatus verify.Status
	Summary       verify.Summary
	CreatedAt     time.Time
	Result        *verify.Result
}

// Store records verification runs.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the history database in dir. Pass
// ":memory:" for an in-memory database.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dbPath := ":memory:"
	if dir != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
		dbPath = filepath.Join(dir, FileName)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// an in-memory database lives only as long as its single connection
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS verification_runs (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL,
		phase_id TEXT NOT NULL DEFAULT '',
		overall_status TEXT NOT NULL,
		total_tasks INTEGER NOT NULL,
		tasks_completed INTEGER NOT NULL,
		tasks_partial INTEGER NOT NULL,
		tasks_missing INTEGER NOT NULL,
		critical_issues INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		result TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_verification_runs_plan ON verification_runs(plan_id, created_at);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores res and returns the new run id.
func (s *Store) Record(ctx context.Context, res *verify.Result) (string, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	id := uuid.New().String()
	sum := res.Summary
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO verification_runs (id, plan_id, phase_id, overall_status, total_tasks, tasks_completed,
			tasks_partial, tasks_missing, critical_issues, warnings, created_at, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, res.PlanID, res.PhaseID, string(res.OverallStatus), sum.TotalTasks, sum.TasksCompleted,
		sum.TasksPartial, sum.TasksMissing, sum.CriticalIssues, sum.Warnings,
		res.Timestamp.UTC().Format(time.RFC3339Nano), string(data),
	)
	if err != nil {
		return "", fmt.Errorf("insert verification run: %w", err)
	}

	s.logger.Debug("verification run recorded",
		zap.String("run_id", id),
		zap.String("plan_id", res.PlanID),
		zap.String("status", string(res.OverallStatus)),
	)
	return id, nil
}

// List returns up to limit runs for planID, newest first. A limit of zero
// or less returns every run.
func (s *Store) List(ctx context.Context, planID string, limit int) ([]Run, error) {
	query := `
		SELECT id, plan_id, phase_id, overall_status, total_tasks, tasks_completed, tasks_partial,
			tasks_missing, critical_issues, warnings, created_at, result
		FROM verification_runs WHERE plan_id = ? ORDER BY created_at DESC, rowid DESC`
	args := []any{planID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query verification runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var status, createdAt, data string
		if err := rows.Scan(&r.ID, &r.PlanID, &r.PhaseID, &status,
			&r.Summary.TotalTasks, &r.Summary.TasksCompleted, &r.Summary.TasksPartial,
			&r.Summary.TasksMissing, &r.Summary.CriticalIssues, &r.Summary.Warnings,
			&createdAt, &data); err != nil {
			return nil, fmt.Errorf("scan verification run: %w", err)
		}
		r.OverallStatus = verify.Status(status)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

		var res verify.Result
		if err := json.Unmarshal([]byte(data), &res); err != nil {
			s.logger.Warn("skipping unreadable result", zap.String("run_id", r.ID), zap.Error(err))
		} else {
			r.Result = &res
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
