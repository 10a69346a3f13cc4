package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/user/headline-service/internal/adapter/chromedp_renderer"
	"github.com/user/headline-service/internal/adapter/postgres"
	redis_adapter "github.com/user/headline-service/internal/adapter/redis"
	s3_adapter "github.com/user/headline-service/internal/adapter/s3"
	"github.com/user/headline-service/internal/delivery/http/handler"
	"github.com/user/headline-service/internal/repository"
	"github.com/user/headline-service/internal/site"
	"github.com/user/headline-service/internal/usecase"
	"github.com/user/headline-service/pkg/config"
)

// environment holds everything a command needs, built from config.
type environment struct {
	Sites   *site.Registry
	Runs    repository.RunRepository
	Scraper usecase.Scraper
	Handler *handler.Handler

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func initEnvironment(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *environment, err error) {
	env := &environment{}
	defer func() {
		if err != nil {
			env.Close()
		}
	}()

	env.Sites, err = loadSites(cfg.Sites)
	if err != nil {
		return nil, err
	}

	renderer := chromedp_renderer.NewChromedpRenderer(chromedp_renderer.Options{
		MaxConcurrency:  cfg.Renderer.MaxConcurrency,
		PageLoadTimeout: cfg.Renderer.PageLoadTimeout,
		UserAgent:       cfg.Renderer.UserAgent,
		ExecPath:        cfg.Renderer.ExecPath,
	}, logger.Named("renderer"))
	env.closers = append(env.closers, renderer.Close)

	opts := usecase.Options{
		RatePerSecond:      cfg.Scrape.RatePerSecond,
		ArchiveOnEmptyOnly: cfg.Archive.OnEmptyOnly,
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: connect")
		}
		env.closers = append(env.closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			return nil, eris.Wrap(err, "postgres: ping")
		}
		runs := postgres.NewRunRepo(pool)
		if err := runs.Migrate(ctx); err != nil {
			return nil, err
		}
		env.Runs = runs
		opts.Runs = runs
		logger.Info("Scrape run history enabled")
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		env.closers = append(env.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, eris.Wrap(err, "redis: ping")
		}
		opts.Publisher = redis_adapter.NewPublisher(rdb, cfg.Redis.ChannelPrefix)
		logger.Info("Headline publishing enabled", zap.String("channel_prefix", cfg.Redis.ChannelPrefix))
	}

	if cfg.Archive.Bucket != "" {
		archive, err := s3_adapter.NewArchive(ctx, s3_adapter.Options{
			Bucket:       cfg.Archive.Bucket,
			Prefix:       cfg.Archive.Prefix,
			Region:       cfg.Archive.Region,
			UsePathStyle: cfg.Archive.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		opts.Archive = archive
		logger.Info("Snapshot archive enabled", zap.String("bucket", cfg.Archive.Bucket))
	}

	env.Scraper = usecase.NewScraperUseCase(renderer, env.Sites, opts, logger.Named("scraper"))
	env.Handler = handler.NewHandler(env.Scraper, env.Sites, env.Runs, logger.Named("http"))
	return env, nil
}

// loadSites returns the built-in sites merged with those of the optional
// sites file.
func loadSites(cfg config.SitesConfig) (*site.Registry, error) {
	sites := site.Builtin()
	if cfg.File != "" {
		extra, err := site.LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		sites = site.Merge(sites, extra)
	}
	return site.NewRegistry(sites...)
}
