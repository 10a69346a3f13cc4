package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/user/headline-service/internal/entity"
)

// DBTX is the subset of *pgxpool.Pool the repository uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const schema = `
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id             UUID PRIMARY KEY,
		site           TEXT        NOT NULL,
		status         TEXT        NOT NULL,
		record_count   INTEGER     NOT NULL DEFAULT 0,
		headline_found BOOLEAN     NOT NULL DEFAULT FALSE,
		failure_reason TEXT        NOT NULL DEFAULT '',
		started_at     TIMESTAMPTZ NOT NULL,
		duration_ms    BIGINT      NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS scrape_runs_site_started_idx ON scrape_runs (site, started_at DESC);
`

// RunRepoImpl stores scrape runs in PostgreSQL.
type RunRepoImpl struct {
	db DBTX
}

// NewRunRepo creates a new instance of RunRepoImpl.
func NewRunRepo(db DBTX) *RunRepoImpl {
	return &RunRepoImpl{db: db}
}

// Migrate creates the scrape_runs table if it does not exist.
func (r *RunRepoImpl) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return eris.Wrap(err, "postgres: migrate scrape_runs")
	}
	return nil
}

// Save inserts one run.
func (r *RunRepoImpl) Save(ctx context.Context, run *entity.ScrapeRun) error {
	query := `
		INSERT INTO scrape_runs (id, site, status, record_count, headline_found, failure_reason, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		run.ID.String(),
		run.Site,
		string(run.Status),
		run.RecordCount,
		run.HeadlineFound,
		run.FailureReason,
		run.StartedAt,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save run %s", run.ID)
	}
	return nil
}

// ListRecent returns up to limit runs for site, newest first.
func (r *RunRepoImpl) ListRecent(ctx context.Context, site string, limit int) ([]*entity.ScrapeRun, error) {
	query := `
		SELECT id, site, status, record_count, headline_found, failure_reason, started_at, duration_ms
		FROM scrape_runs
		WHERE site = $1
		ORDER BY started_at DESC
		LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, site, limit)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list runs for %s", site)
	}
	defer rows.Close()

	runs := make([]*entity.ScrapeRun, 0, limit)
	for rows.Next() {
		var (
			run        entity.ScrapeRun
			id, status string
			durationMS int64
		)
		if err := rows.Scan(
			&id,
			&run.Site,
			&status,
			&run.RecordCount,
			&run.HeadlineFound,
			&run.FailureReason,
			&run.StartedAt,
			&durationMS,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, eris.Wrapf(err, "postgres: run id %q", id)
		}
		run.Status = entity.RunStatus(status)
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate runs")
	}
	return runs, nil
}
