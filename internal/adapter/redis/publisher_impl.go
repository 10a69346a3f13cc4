package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/user/headline-service/internal/entity"
)

// publishClient is satisfied by *redis.Client and *redis.ClusterClient.
type publishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// HeadlineMessage is the pub/sub payload for one successful scrape.
type HeadlineMessage struct {
	RunID     string              `json:"run_id"`
	Site      string              `json:"site"`
	ScrapedAt time.Time           `json:"scraped_at"`
	Records   []entity.NewsRecord `json:"noticias"`
}

// PublisherImpl publishes scrape results on a per-site Redis channel.
type PublisherImpl struct {
	client publishClient
	prefix string
}

// NewPublisher creates a new instance of PublisherImpl. Messages go to
// "<prefix>:<site>".
func NewPublisher(client publishClient, prefix string) *PublisherImpl {
	return &PublisherImpl{client: client, prefix: prefix}
}

// Channel returns the channel a site's results are published on.
func (p *PublisherImpl) Channel(site string) string {
	return p.prefix + ":" + site
}

// Publish sends the records of run to subscribers.
func (p *PublisherImpl) Publish(ctx context.Context, run *entity.ScrapeRun, records []entity.NewsRecord) error {
	payload, err := json.Marshal(HeadlineMessage{
		RunID:     run.ID.String(),
		Site:      run.Site,
		ScrapedAt: run.StartedAt.UTC(),
		Records:   records,
	})
	if err != nil {
		return eris.Wrap(err, "redis: encode headlines")
	}
	if err := p.client.Publish(ctx, p.Channel(run.Site), payload).Err(); err != nil {
		return eris.Wrapf(err, "redis: publish to %s", p.Channel(run.Site))
	}
	return nil
}
