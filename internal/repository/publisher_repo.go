package repository

import (
	"context"

	"github.com/user/headline-service/internal/entity"
)

// HeadlinePublisher fans a successful scrape out to subscribers.
type HeadlinePublisher interface {
	Publish(ctx context.Context, run *entity.ScrapeRun, records []entity.NewsRecord) error
}
