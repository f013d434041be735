package runner

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/baton-ai/baton/internal/core"
	_ "modernc.org/sqlite"
)

//go:embed migrations/001_initial_schema.sql
var historyMigrationV1 string

// HistoryStore archives terminal runs in a SQLite database. Writes go
// through a single connection; reads use a separate read-only pool.
type HistoryStore struct {
	dbPath string
	db     *sql.DB // Write connection
	readDB *sql.DB // Read-only connection

	maxRetries    int
	baseRetryWait time.Duration
}

// DefaultHistoryPath returns the history database location under a
// workflow store directory.
func DefaultHistoryPath(storeDir string) string {
	return filepath.Join(storeDir, ".baton", "history.db")
}

// NewHistoryStore opens (creating if necessary) the history database at
// dbPath and applies pending schema migrations.
func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	h := &HistoryStore{
		dbPath:        dbPath,
		maxRetries:    5,
		baseRetryWait: 100 * time.Millisecond,
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, core.ErrIO(core.CodeHistoryIO,
			fmt.Sprintf("creating history directory %s", dir)).WithCause(err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, core.ErrIO(core.CodeHistoryIO, "opening write database").WithCause(err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	h.db = db

	readDB, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&mode=ro&_pragma=busy_timeout(1000)")
	if err != nil {
		_ = db.Close()
		return nil, core.ErrIO(core.CodeHistoryIO, "opening read database").WithCause(err)
	}
	readDB.SetMaxOpenConns(10)
	readDB.SetMaxIdleConns(5)
	readDB.SetConnMaxLifetime(5 * time.Minute)
	h.readDB = readDB

	if err := h.migrate(); err != nil {
		_ = db.Close()
		_ = readDB.Close()
		return nil, core.ErrIO(core.CodeHistoryIO, "running migrations").WithCause(err)
	}

	return h, nil
}

// Path returns the database file location.
func (h *HistoryStore) Path() string { return h.dbPath }

// migrate applies pending schema migrations in order.
func (h *HistoryStore) migrate() error {
	_, err := h.db.Exec(`CREATE TABLE IF NOT EXISTS history_schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var currentVersion int
	row := h.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM history_schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("checking schema version: %w", err)
	}

	migrations := []string{historyMigrationV1}
	for i, migration := range migrations {
		version := i + 1
		if version <= currentVersion {
			continue
		}

		tx, err := h.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration transaction: %w", err)
		}
		for _, stmt := range splitStatements(migration) {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("executing migration v%d: %w", version, err)
			}
		}
		if _, err := tx.Exec(
			"INSERT INTO history_schema_migrations (version, applied_at) VALUES (?, ?)",
			version, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration v%d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", version, err)
		}
	}

	return nil
}

// splitStatements splits a SQL script into individual statements,
// dropping comment-only lines.
func splitStatements(script string) []string {
	var statements []string
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		lines := strings.Split(stmt, "\n")
		var sqlLines []string
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				sqlLines = append(sqlLines, line)
			}
		}
		if len(sqlLines) > 0 {
			statements = append(statements, strings.Join(sqlLines, "\n"))
		}
	}
	return statements
}

// retryWrite executes a write with exponential backoff on SQLITE_BUSY.
func (h *HistoryStore) retryWrite(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if err := fn(); err != nil {
			if isSQLiteBusy(err) {
				lastErr = err
				wait := h.baseRetryWait * time.Duration(1<<attempt)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
					continue
				}
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("%s failed after %d retries: %w", operation, h.maxRetries, lastErr)
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "SQLITE_LOCKED")
}

// Archive upserts a terminal run into the history table.
func (h *HistoryStore) Archive(ctx context.Context, run *core.Run) error {
	steps, err := json.Marshal(run.CompletedSteps)
	if err != nil {
		return core.ErrInternal("encoding completed steps").WithCause(err)
	}
	outputs, err := json.Marshal(run.StepOutputs)
	if err != nil {
		return core.ErrInternal("encoding step outputs").WithCause(err)
	}
	var finishedAt sql.NullString
	if run.FinishedAt != nil {
		finishedAt = sql.NullString{
			String: run.FinishedAt.UTC().Format(time.RFC3339Nano),
			Valid:  true,
		}
	}

	writeErr := h.retryWrite(ctx, "Archive", func() error {
		_, err := h.db.ExecContext(ctx, `
			INSERT INTO run_history (id, workflow_id, status, prompt, error, completed_steps, step_outputs, started_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				status = excluded.status,
				error = excluded.error,
				completed_steps = excluded.completed_steps,
				step_outputs = excluded.step_outputs,
				finished_at = excluded.finished_at
		`,
			run.ID,
			run.WorkflowID,
			string(run.Status),
			run.Prompt,
			run.Error,
			string(steps),
			string(outputs),
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			finishedAt,
		)
		return err
	})
	if writeErr != nil {
		return core.ErrIO(core.CodeHistoryIO, "archiving run").
			WithCause(writeErr).WithDetail("run_id", run.ID)
	}
	return nil
}

// Recent returns archived runs, newest first. A non-empty workflowID
// restricts the result; limit caps the row count (default 50).
func (h *HistoryStore) Recent(ctx context.Context, limit int, workflowID string) ([]*core.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, workflow_id, status, prompt, error, completed_steps, step_outputs, started_at, finished_at
		FROM run_history
	`
	args := make([]interface{}, 0, 2)
	if workflowID != "" {
		query += " WHERE workflow_id = ?"
		args = append(args, workflowID)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := h.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.ErrIO(core.CodeHistoryIO, "querying history").WithCause(err)
	}
	defer rows.Close()

	var runs []*core.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, core.ErrIO(core.CodeHistoryIO, "scanning history row").WithCause(err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, core.ErrIO(core.CodeHistoryIO, "reading history rows").WithCause(err)
	}
	return runs, nil
}

func scanRun(rows *sql.Rows) (*core.Run, error) {
	var run core.Run
	var status, startedAt string
	var prompt, errMsg, finishedAt sql.NullString
	var steps, outputs string

	if err := rows.Scan(&run.ID, &run.WorkflowID, &status, &prompt, &errMsg,
		&steps, &outputs, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	run.Status = core.RunStatus(status)
	run.Prompt = prompt.String
	run.Error = errMsg.String
	if err := json.Unmarshal([]byte(steps), &run.CompletedSteps); err != nil {
		return nil, fmt.Errorf("decoding completed steps: %w", err)
	}
	if err := json.Unmarshal([]byte(outputs), &run.StepOutputs); err != nil {
		return nil, fmt.Errorf("decoding step outputs: %w", err)
	}
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	if finishedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err == nil {
			run.FinishedAt = &t
		}
	}
	return &run, nil
}

// Close closes both database connections.
func (h *HistoryStore) Close() error {
	var errs []error
	if h.readDB != nil {
		if err := h.readDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing read connection: %w", err))
		}
	}
	if h.db != nil {
		if err := h.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing write connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
