package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/user/headline-service/internal/dom"
	"github.com/user/headline-service/internal/entity"
	"github.com/user/headline-service/internal/extractor"
	"github.com/user/headline-service/internal/repository"
	"github.com/user/headline-service/internal/site"
	"github.com/user/headline-service/pkg/metrics"
)

const (
	defaultSideEffectTimeout = 5 * time.Second
	outcomeCanceled          = "canceled"
)

// Scraper renders a configured homepage and extracts its stories.
type Scraper interface {
	Scrape(ctx context.Context, siteName string) (*ScrapeResult, error)
}

// ScrapeResult is the outcome of one successful render plus extraction. An
// empty Records slice is a valid result.
type ScrapeResult struct {
	RunID   uuid.UUID
	Site    string
	Records []entity.NewsRecord
}

// Options wires the optional side effects of a scrape. Nil repositories are
// skipped.
type Options struct {
	Runs      repository.RunRepository
	Publisher repository.HeadlinePublisher
	Archive   repository.SnapshotArchive
	// RatePerSecond limits scrapes per site. Zero disables the limiter.
	RatePerSecond float64
	// ArchiveOnEmptyOnly restricts snapshot archiving to runs that did not
	// succeed.
	ArchiveOnEmptyOnly bool
	SideEffectTimeout  time.Duration
}

type scraperUseCase struct {
	renderer repository.Renderer
	sites    *site.Registry
	engines  map[string]*extractor.Engine
	limiters map[string]*rate.Limiter
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

// NewScraperUseCase creates a new instance of the scraper use case.
func NewScraperUseCase(renderer repository.Renderer, sites *site.Registry, opts Options, logger *zap.Logger) Scraper {
	if opts.SideEffectTimeout <= 0 {
		opts.SideEffectTimeout = defaultSideEffectTimeout
	}
	uc := &scraperUseCase{
		renderer: renderer,
		sites:    sites,
		engines:  make(map[string]*extractor.Engine),
		limiters: make(map[string]*rate.Limiter),
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
	for _, s := range sites.All() {
		uc.engines[s.Name] = extractor.NewEngine(s.Extraction)
		if opts.RatePerSecond > 0 {
			uc.limiters[s.Name] = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
		}
	}
	return uc
}

// Scrape performs one full render and extraction of the named site. Nothing
// is cached between calls.
func (uc *scraperUseCase) Scrape(ctx context.Context, siteName string) (*ScrapeResult, error) {
	s, err := uc.sites.Get(siteName)
	if err != nil {
		return nil, err
	}
	run := &entity.ScrapeRun{ID: uuid.New(), Site: s.Name, StartedAt: uc.now()}
	logger := uc.logger.With(zap.String("site", s.Name), zap.String("run_id", run.ID.String()))

	if lim, ok := uc.limiters[s.Name]; ok {
		if err := lim.Wait(ctx); err != nil {
			err = eris.Wrapf(repository.ErrScrapeCanceled, "rate limit %s: %v", s.Name, err)
			uc.finish(ctx, logger, run, nil, "", err)
			return nil, err
		}
	}

	logger.Info("Starting scrape", zap.String("url", s.URL))

	session, err := uc.renderer.Open(ctx, s.URL, s.Wait)
	if err != nil {
		uc.finish(ctx, logger, run, nil, "", err)
		return nil, err
	}
	var closeOnce sync.Once
	closeSession := func() {
		closeOnce.Do(func() {
			if err := session.Close(); err != nil {
				logger.Warn("Failed to close browser session", zap.Error(err))
			}
		})
	}
	defer closeSession()

	records, err := extract(uc.engines[s.Name], session.Document())
	html := session.HTML()
	// Document and HTML stay valid after Close.
	closeSession()

	uc.finish(ctx, logger, run, records, html, err)
	if err != nil {
		return nil, err
	}
	return &ScrapeResult{RunID: run.ID, Site: s.Name, Records: records}, nil
}

func extract(engine *extractor.Engine, doc dom.Document) (records []entity.NewsRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = eris.Wrapf(repository.ErrExtractionFailed, "%v", r)
		}
	}()
	return engine.Extract(doc), nil
}

// finish records metrics, logs the outcome and runs the side effects. Side
// effect failures are logged only.
func (uc *scraperUseCase) finish(ctx context.Context, logger *zap.Logger, run *entity.ScrapeRun, records []entity.NewsRecord, html string, scrapeErr error) {
	run.Duration = uc.now().Sub(run.StartedAt)
	run.RecordCount = len(records)
	headlines := 0
	for _, r := range records {
		if r.IsHeadline() {
			headlines++
		}
	}
	run.HeadlineFound = headlines > 0

	outcome := outcomeOf(scrapeErr, len(records))
	if scrapeErr != nil && errors.Is(ctx.Err(), context.Canceled) {
		outcome = outcomeCanceled
	}
	switch {
	case scrapeErr != nil:
		run.Status = entity.RunFailed
		run.FailureReason = scrapeErr.Error()
		logger.Error("Scrape failed", zap.String("outcome", outcome), zap.Duration("duration", run.Duration), zap.Error(scrapeErr))
	case len(records) == 0:
		run.Status = entity.RunEmpty
		logger.Warn("No stories found, the site layout may have changed", zap.Duration("duration", run.Duration))
	default:
		run.Status = entity.RunSucceeded
		logger.Info("Scrape finished",
			zap.Int("records", len(records)),
			zap.Bool("headline_found", run.HeadlineFound),
			zap.Duration("duration", run.Duration),
		)
	}

	metrics.ScrapesTotal.WithLabelValues(run.Site, outcome).Inc()
	metrics.ScrapeDuration.WithLabelValues(run.Site).Observe(run.Duration.Seconds())
	if scrapeErr == nil {
		metrics.ScrapeRecords.WithLabelValues(run.Site, string(entity.Headline)).Set(float64(headlines))
		metrics.ScrapeRecords.WithLabelValues(run.Site, string(entity.Regular)).Set(float64(len(records) - headlines))
	}

	uc.sideEffects(ctx, logger, run, records, html)
}

func (uc *scraperUseCase) sideEffects(ctx context.Context, logger *zap.Logger, run *entity.ScrapeRun, records []entity.NewsRecord, html string) {
	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.opts.SideEffectTimeout)
	defer cancel()

	var g errgroup.Group
	if uc.opts.Runs != nil {
		g.Go(func() error {
			if err := uc.opts.Runs.Save(sideCtx, run); err != nil {
				logger.Warn("Failed to save scrape run", zap.Error(err))
			}
			return nil
		})
	}
	if uc.opts.Publisher != nil && run.Status == entity.RunSucceeded {
		g.Go(func() error {
			if err := uc.opts.Publisher.Publish(sideCtx, run, records); err != nil {
				logger.Warn("Failed to publish headlines", zap.Error(err))
			}
			return nil
		})
	}
	if uc.opts.Archive != nil && html != "" && (!uc.opts.ArchiveOnEmptyOnly || run.Status != entity.RunSucceeded) {
		g.Go(func() error {
			if err := uc.opts.Archive.Store(sideCtx, run, html); err != nil {
				logger.Warn("Failed to archive snapshot", zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// outcomeOf returns the scrapes_total outcome label.
func outcomeOf(err error, records int) string {
	switch {
	case err == nil && records == 0:
		return "empty"
	case err == nil:
		return "success"
	case errors.Is(err, repository.ErrRenderTimeout):
		return "timeout"
	case errors.Is(err, repository.ErrExtractionFailed):
		return "extraction"
	case errors.Is(err, repository.ErrScrapeCanceled):
		return outcomeCanceled
	default:
		return "navigation"
	}
}
