package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/headline-service/internal/delivery/http/handler"
	"github.com/user/headline-service/internal/delivery/http/middleware"
)

// New returns the API router.
func New(h *handler.Handler, logger *zap.Logger) http.Handler {
	r := newBase(logger)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/sites", h.HandleListSites)
		r.Get("/sites/{site}/headlines", h.HandleHeadlines)
		r.Get("/sites/{site}/runs", h.HandleListRuns)
	})

	return r
}

// NewSite returns a router that answers GET / with the headlines of one
// site, for a site's dedicated port.
func NewSite(h *handler.Handler, siteName string, logger *zap.Logger) http.Handler {
	r := newBase(logger.With(zap.String("listener", siteName)))
	r.Get("/", h.SiteHeadlines(siteName))
	return r
}

func newBase(logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{handler.ScrapeIDHeader},
		MaxAge:         300,
	}))

	return r
}
