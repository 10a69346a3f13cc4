package response

import (
	"time"

	"github.com/user/headline-service/internal/entity"
)

// Texts of the public headline contract. Consumers match on them, so they
// must not change.
const (
	WarningNoNews           = "Nenhuma notícia encontrada"
	SuggestionLayoutChanged = "A estrutura do site pode ter mudado"
	ErrorFetchFailed        = "Falha ao buscar notícias"
)

// HeadlinesResponse is the 200 payload of a scrape.
type HeadlinesResponse struct {
	Headline *entity.NewsRecord  `json:"noticia_especial"`
	Others   []entity.NewsRecord `json:"outras_noticias"`
}

// NewHeadlinesResponse splits records into the headline and the rest,
// preserving order. It reports false when there is nothing to show.
func NewHeadlinesResponse(records []entity.NewsRecord) (HeadlinesResponse, bool) {
	if len(records) == 0 {
		return HeadlinesResponse{}, false
	}
	resp := HeadlinesResponse{Others: make([]entity.NewsRecord, 0, len(records))}
	for i := range records {
		if resp.Headline == nil && records[i].IsHeadline() {
			headline := records[i]
			resp.Headline = &headline
			continue
		}
		resp.Others = append(resp.Others, records[i])
	}
	return resp, true
}

// NotFoundResponse is the 404 payload of a scrape that found nothing.
type NotFoundResponse struct {
	Warning    string `json:"warning"`
	Suggestion string `json:"suggestion"`
}

func NewNotFoundResponse() NotFoundResponse {
	return NotFoundResponse{Warning: WarningNoNews, Suggestion: SuggestionLayoutChanged}
}

// ErrorResponse is the payload of every other failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SiteResponse describes one configured site.
type SiteResponse struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Source   string `json:"tag"`
	Language string `json:"language"`
	Port     int    `json:"port,omitempty"`
	Endpoint string `json:"endpoint"`
}

// ScrapeRunResponse is a DTO for entity.ScrapeRun.
type ScrapeRunResponse struct {
	ID            string    `json:"id"`
	Site          string    `json:"site"`
	Status        string    `json:"status"`
	RecordCount   int       `json:"record_count"`
	HeadlineFound bool      `json:"headline_found"`
	FailureReason string    `json:"failure_reason,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	DurationMS    int64     `json:"duration_ms"`
}

func NewScrapeRunResponse(run *entity.ScrapeRun) ScrapeRunResponse {
	return ScrapeRunResponse{
		ID:            run.ID.String(),
		Site:          run.Site,
		Status:        string(run.Status),
		RecordCount:   run.RecordCount,
		HeadlineFound: run.HeadlineFound,
		FailureReason: run.FailureReason,
		StartedAt:     run.StartedAt,
		DurationMS:    run.Duration.Milliseconds(),
	}
}
