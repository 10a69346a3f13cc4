package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/headline-service/internal/delivery/http/response"
	"github.com/user/headline-service/internal/repository"
	"github.com/user/headline-service/internal/site"
	"github.com/user/headline-service/internal/usecase"
)

const (
	// ScrapeIDHeader carries the run id of the scrape behind a response.
	ScrapeIDHeader = "X-Scrape-ID"

	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

type Handler struct {
	scraper usecase.Scraper
	sites   *site.Registry
	runs    repository.RunRepository
	logger  *zap.Logger
}

// NewHandler creates the HTTP handlers. runs may be nil when run history is
// not configured.
func NewHandler(scraper usecase.Scraper, sites *site.Registry, runs repository.RunRepository, logger *zap.Logger) *Handler {
	return &Handler{
		scraper: scraper,
		sites:   sites,
		runs:    runs,
		logger:  logger,
	}
}

// HandleHeadlines scrapes the site named by the {site} URL parameter.
func (h *Handler) HandleHeadlines(w http.ResponseWriter, r *http.Request) {
	h.serveHeadlines(w, r, chi.URLParam(r, "site"))
}

// SiteHeadlines returns a handler bound to one site, for the per-site
// listeners.
func (h *Handler) SiteHeadlines(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveHeadlines(w, r, name)
	}
}

func (h *Handler) serveHeadlines(w http.ResponseWriter, r *http.Request, name string) {
	result, err := h.scraper.Scrape(r.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrSiteNotFound) {
			h.writeJSON(w, http.StatusNotFound, response.ErrorResponse{Error: fmt.Sprintf("unknown site %q", name)})
			return
		}
		h.logger.Error("Failed to fetch headlines", zap.String("site", name), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, response.ErrorResponse{
			Error:   response.ErrorFetchFailed,
			Details: err.Error(),
		})
		return
	}

	w.Header().Set(ScrapeIDHeader, result.RunID.String())
	body, ok := response.NewHeadlinesResponse(result.Records)
	if !ok {
		h.writeJSON(w, http.StatusNotFound, response.NewNotFoundResponse())
		return
	}
	h.writeJSON(w, http.StatusOK, body)
}

func (h *Handler) HandleListSites(w http.ResponseWriter, r *http.Request) {
	all := h.sites.All()
	resp := make([]response.SiteResponse, 0, len(all))
	for _, s := range all {
		resp = append(resp, response.SiteResponse{
			Name:     s.Name,
			URL:      s.URL,
			Source:   s.Extraction.Source,
			Language: s.Extraction.Language,
			Port:     s.Port,
			Endpoint: "/api/sites/" + s.Name + "/headlines",
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeJSONError(w, "Run history is not enabled", http.StatusNotFound)
		return
	}
	name := chi.URLParam(r, "site")
	if _, err := h.sites.Get(name); err != nil {
		h.writeJSONError(w, fmt.Sprintf("unknown site %q", name), http.StatusNotFound)
		return
	}

	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRunsLimit {
			h.writeJSONError(w, fmt.Sprintf("limit must be between 1 and %d", maxRunsLimit), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRecent(r.Context(), name, limit)
	if err != nil {
		h.logger.Error("Failed to list scrape runs", zap.String("site", name), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	resp := make([]response.ScrapeRunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, response.NewScrapeRunResponse(run))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
