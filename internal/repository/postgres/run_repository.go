package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/fba-weekly-summary/internal/domain"
)

// ReportRun is one execution of the weekly summary pipeline.
type ReportRun struct {
	ID            int64          `db:"id"`
	AnchorDate    time.Time      `db:"anchor_date"`
	Status        string         `db:"status"`
	TotalRows     int            `db:"total_rows"`
	Discrepancies int            `db:"discrepancies"`
	Issues        int            `db:"issues"`
	StartedAt     time.Time      `db:"started_at"`
	CompletedAt   sql.NullTime   `db:"completed_at"`
	ErrorMessage  sql.NullString `db:"error_message"`
}

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunRepository persists report runs and their discrepancy/issue details.
type RunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// EnsureSchema creates the report tables when they do not exist yet.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS report_runs (
			id BIGSERIAL PRIMARY KEY,
			anchor_date DATE NOT NULL,
			status TEXT NOT NULL,
			total_rows INT NOT NULL DEFAULT 0,
			discrepancies INT NOT NULL DEFAULT 0,
			issues INT NOT NULL DEFAULT 0,
			started_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ,
			error_message TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS report_discrepancies (
			id BIGSERIAL PRIMARY KEY,
			run_id BIGINT NOT NULL REFERENCES report_runs(id) ON DELETE CASCADE,
			sku TEXT NOT NULL,
			expected_inbound INT NOT NULL,
			alternate_inbound INT NOT NULL,
			delta INT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS report_issues (
			id BIGSERIAL PRIMARY KEY,
			run_id BIGINT NOT NULL REFERENCES report_runs(id) ON DELETE CASCADE,
			sku TEXT NOT NULL,
			code TEXT NOT NULL,
			detail TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_report_runs_anchor ON report_runs(anchor_date)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// InsertRun creates a run record in running state and returns its ID.
func (r *RunRepository) InsertRun(ctx context.Context, anchorDate time.Time) (int64, error) {
	query := `
		INSERT INTO report_runs (anchor_date, status, started_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, anchorDate, RunStatusRunning, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// CompleteRun marks the run completed and stores its discrepancy and issue
// details in the same transaction.
func (r *RunRepository) CompleteRun(ctx context.Context, runID int64, totalRows int, report domain.DiscrepancyReport) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE report_runs
			SET status = $1, total_rows = $2, discrepancies = $3, issues = $4, completed_at = $5
			WHERE id = $6
		`
		_, err := tx.ExecContext(ctx, query,
			RunStatusCompleted, totalRows, len(report.Discrepancies), len(report.Issues),
			time.Now().UTC(), runID,
		)
		if err != nil {
			return fmt.Errorf("complete run: %w", err)
		}

		for _, d := range report.Discrepancies {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO report_discrepancies (run_id, sku, expected_inbound, alternate_inbound, delta)
				VALUES ($1, $2, $3, $4, $5)
			`, runID, d.SKU, d.ExpectedInbound, d.AlternateInbound, d.Delta)
			if err != nil {
				return fmt.Errorf("insert discrepancy for %s: %w", d.SKU, err)
			}
		}

		for _, i := range report.Issues {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO report_issues (run_id, sku, code, detail)
				VALUES ($1, $2, $3, $4)
			`, runID, i.SKU, string(i.Code), i.Detail)
			if err != nil {
				return fmt.Errorf("insert issue for %s: %w", i.SKU, err)
			}
		}

		return nil
	})
}

// FailRun marks the run failed with its error message.
func (r *RunRepository) FailRun(ctx context.Context, runID int64, runErr error) error {
	query := `
		UPDATE report_runs
		SET status = $1, completed_at = $2, error_message = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, RunStatusFailed, time.Now().UTC(), runErr.Error(), runID)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return nil
}

// GetLatestRun returns the most recently started run, or nil when none exist.
func (r *RunRepository) GetLatestRun(ctx context.Context) (*ReportRun, error) {
	query := `
		SELECT id, anchor_date, status, total_rows, discrepancies, issues,
		       started_at, completed_at, error_message
		FROM report_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	run := &ReportRun{}
	err := r.db.GetContext(ctx, run, query)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest run: %w", err)
	}
	return run, nil
}

// GetRunDiscrepancies returns the discrepancy records stored for a run.
func (r *RunRepository) GetRunDiscrepancies(ctx context.Context, runID int64) ([]domain.DiscrepancyRecord, error) {
	query := `
		SELECT sku, expected_inbound, alternate_inbound, delta
		FROM report_discrepancies
		WHERE run_id = $1
		ORDER BY sku
	`

	var records []domain.DiscrepancyRecord
	if err := sqlx.SelectContext(ctx, r.db, &records, query, runID); err != nil {
		return nil, fmt.Errorf("get run discrepancies: %w", err)
	}
	return records, nil
}

// GetRunIssues returns the row issues stored for a run.
func (r *RunRepository) GetRunIssues(ctx context.Context, runID int64) ([]domain.RowIssue, error) {
	query := `
		SELECT sku, code, detail
		FROM report_issues
		WHERE run_id = $1
		ORDER BY sku
	`

	var issues []domain.RowIssue
	if err := sqlx.SelectContext(ctx, r.db, &issues, query, runID); err != nil {
		return nil, fmt.Errorf("get run issues: %w", err)
	}
	return issues, nil
}
