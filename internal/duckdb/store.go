package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"enemeval/internal/eval"
	"enemeval/internal/report"
	"enemeval/internal/runner"
)

// ErrNoRuns is returned by LatestRunID when the store is empty.
var ErrNoRuns = errors.New("duckdb: no runs recorded")

// RunRecord describes one batch run.
type RunRecord struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Model       string
	Total       int
	Processed   int
	Interrupted bool
}

// RecordRun stores a run and its results in a single transaction. Recording
// the same run id again replaces the earlier rows.
func RecordRun(ctx context.Context, db *sql.DB, run RunRecord, results []runner.Result) error {
	if db == nil {
		return errors.New("duckdb: db is nil")
	}
	if run.RunID == "" {
		return errors.New("duckdb: run id is required")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", run.RunID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM results WHERE run_id = ?", run.RunID); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", run.RunID); err != nil {
		return fmt.Errorf("clear run: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, finished_at, model, total_questions, processed, interrupted)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.StartedAt.UTC(), nullableTime(run.FinishedAt), run.Model, run.Total, run.Processed, run.Interrupted,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, seq, question_id, question_key, source_file, area, expected, response, error, verdict)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()
	for i, r := range results {
		key, err := questionKey(r)
		if err != nil {
			return fmt.Errorf("fingerprint result %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx,
			run.RunID, i, nullableString(r.QuestionID), key, nullableString(r.SourceFile), areaOf(r),
			nullableString(r.Expected), nullableString(r.Response), nullableString(r.Error), verdictValue(r.Verdict),
		); err != nil {
			return fmt.Errorf("insert result %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.RunID, err)
	}
	return nil
}

// AreaSummaries returns per-area statistics for a run, in the order areas
// first appear in its results.
func AreaSummaries(ctx context.Context, db *sql.DB, runID string) ([]report.AreaReport, error) {
	if db == nil {
		return nil, errors.New("duckdb: db is nil")
	}
	rows, err := db.QueryContext(ctx,
		`SELECT area, total_questions, correct, incorrect, unanswered, failures
		 FROM v_area_counts WHERE run_id = ? ORDER BY first_seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query area summaries: %w", err)
	}
	defer rows.Close()
	var out []report.AreaReport
	for rows.Next() {
		var s report.AreaReport
		if err := rows.Scan(&s.Area, &s.Total, &s.Correct, &s.Incorrect, &s.Unanswered, &s.Failures); err != nil {
			return nil, fmt.Errorf("scan area summary: %w", err)
		}
		s.Accuracy = report.Accuracy(s.Correct, s.Incorrect)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read area summaries: %w", err)
	}
	return out, nil
}

// LatestRunID returns the most recently started run.
func LatestRunID(ctx context.Context, db *sql.DB) (string, error) {
	if db == nil {
		return "", errors.New("duckdb: db is nil")
	}
	var id string
	err := db.QueryRowContext(ctx, "SELECT run_id FROM runs ORDER BY started_at DESC, run_id DESC LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("query latest run: %w", err)
	}
	return id, nil
}

func questionKey(r runner.Result) (string, error) {
	if r.Original != nil {
		return FingerprintJSON(r.Original)
	}
	return FingerprintJSON(map[string]any{"id": r.QuestionID, "arquivo_origem": r.SourceFile})
}

func areaOf(r runner.Result) string {
	if r.Area == "" {
		return "OUTRAS"
	}
	return r.Area
}

func verdictValue(v eval.Verdict) any {
	switch v {
	case eval.True:
		return true
	case eval.False:
		return false
	default:
		return nil
	}
}

// nullableString maps empty strings to SQL NULL.
func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC()
}
