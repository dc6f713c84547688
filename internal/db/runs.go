package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Run is one pipeline execution over a lead file.
type Run struct {
	ID          uuid.UUID  `json:"id"`
	SourceFile  string     `json:"source_file"`
	Status      string     `json:"status"`
	TotalLeads  int        `json:"total_leads"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// LeadResult is the stored outcome for one lead within a run.
type LeadResult struct {
	ID         uuid.UUID `json:"id"`
	RunID      uuid.UUID `json:"run_id"`
	Email      string    `json:"email"`
	Company    string    `json:"company"`
	Score      int       `json:"score"`
	Campaign   string    `json:"campaign"`
	Provider   string    `json:"provider"`
	Icebreaker string    `json:"icebreaker"`
	Uploaded   bool      `json:"uploaded"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateRun records the start of a processing run and returns its ID.
func (db *DB) CreateRun(ctx context.Context, sourceFile string, totalLeads int) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO processing_runs (source_file, status, total_leads)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		sourceFile, RunStatusRunning, totalLeads,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun records the final status and counters for a run.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, succeeded, failed int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE processing_runs
		 SET status = $1, succeeded = $2, failed = $3, completed_at = NOW()
		 WHERE id = $4`,
		status, succeeded, failed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveLeadResult stores the outcome for one lead.
func (db *DB) SaveLeadResult(ctx context.Context, runID uuid.UUID, r LeadResult) error {
	var errText *string
	if r.Error != "" {
		errText = &r.Error
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO lead_results (run_id, email, company, score, campaign, provider, icebreaker, uploaded, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		runID, r.Email, r.Company, r.Score, r.Campaign, r.Provider, r.Icebreaker, r.Uploaded, errText,
	)
	if err != nil {
		return fmt.Errorf("failed to save lead result for %s: %w", r.Email, err)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil when no such run exists.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, source_file, status, total_leads, succeeded, failed, created_at, completed_at
		 FROM processing_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.SourceFile, &run.Status, &run.TotalLeads, &run.Succeeded, &run.Failed, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// RunFilters holds optional filters for listing runs.
type RunFilters struct {
	Status string
	Limit  int
}

// ListRuns retrieves recent runs, newest first.
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT id, source_file, status, total_leads, succeeded, failed, created_at, completed_at
		FROM processing_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.SourceFile, &run.Status, &run.TotalLeads, &run.Succeeded, &run.Failed, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ListLeadResults retrieves all stored lead outcomes for a run.
func (db *DB) ListLeadResults(ctx context.Context, runID uuid.UUID) ([]LeadResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, email, company, score, campaign, provider, icebreaker, uploaded, COALESCE(error, ''), created_at
		 FROM lead_results WHERE run_id = $1 ORDER BY created_at ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead results: %w", err)
	}
	defer rows.Close()

	var results []LeadResult
	for rows.Next() {
		var r LeadResult
		if err := rows.Scan(&r.ID, &r.RunID, &r.Email, &r.Company, &r.Score, &r.Campaign, &r.Provider, &r.Icebreaker, &r.Uploaded, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead result: %w", err)
		}
		results = append(results, r)
	}
	return results, nil
}

// DeleteRun deletes a run and its lead results.
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM processing_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}
