package repository

import (
	"context"

	"github.com/user/headline-service/internal/entity"
)

// RunRepository stores the audit trail of scrape runs.
type RunRepository interface {
	// Save inserts one run.
	Save(ctx context.Context, run *entity.ScrapeRun) error
	// ListRecent returns up to limit runs for site, newest first.
	ListRecent(ctx context.Context, site string, limit int) ([]*entity.ScrapeRun, error)
}
