package repository

import (
	"context"

	"github.com/user/headline-service/internal/entity"
)

// SnapshotArchive keeps the raw HTML of a run so that a layout change can be
// diagnosed after the fact.
type SnapshotArchive interface {
	Store(ctx context.Context, run *entity.ScrapeRun, html string) error
}
