package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/headline-service/internal/delivery/http/handler"
	"github.com/user/headline-service/internal/delivery/http/response"
	"github.com/user/headline-service/internal/dom"
	"github.com/user/headline-service/internal/entity"
	"github.com/user/headline-service/internal/extractor"
	"github.com/user/headline-service/internal/repository"
	"github.com/user/headline-service/internal/site"
	"github.com/user/headline-service/internal/usecase"
)

const frontPage = `<html><body>
<div class="hero"><a href="/a/1"><h1 class="hl-title">Storm hits capital</h1></a></div>
<ul>
  <li><a href="/b/1"><span class="item-title">Economy rises</span></a></li>
  <li><a href="/b/2"><span class="item-title">Sports update</span></a></li>
  <li><a href="/b/3"><span class="item-title">Economy rises</span></a></li>
</ul>
</body></html>`

type stubSession struct {
	doc  dom.Document
	html string
}

func (s *stubSession) Document() dom.Document { return s.doc }
func (s *stubSession) HTML() string           { return s.html }
func (s *stubSession) Close() error           { return nil }

type stubRenderer struct {
	html string
	err  error
}

func (r *stubRenderer) Open(ctx context.Context, pageURL string, policy repository.WaitPolicy) (repository.Session, error) {
	if r.err != nil {
		return nil, r.err
	}
	doc, err := dom.ParseString(r.html, pageURL)
	if err != nil {
		return nil, err
	}
	return &stubSession{doc: doc, html: r.html}, nil
}

type stubRuns struct {
	runs []*entity.ScrapeRun
}

func (s *stubRuns) Save(ctx context.Context, run *entity.ScrapeRun) error {
	s.runs = append([]*entity.ScrapeRun{run}, s.runs...)
	return nil
}

func (s *stubRuns) ListRecent(ctx context.Context, site string, limit int) ([]*entity.ScrapeRun, error) {
	if len(s.runs) > limit {
		return s.runs[:limit], nil
	}
	return s.runs, nil
}

func newsSite() site.Site {
	return site.Site{
		Name: "news",
		URL:  "https://news.example/",
		Port: 3005,
		Extraction: extractor.SiteConfig{
			Source:             "NEWS",
			Language:           "English",
			HeadlineSelector:   ".hl-title",
			HeadlineContainers: []string{"a"},
			RegularSelectors:   []string{`[class*="title"]`},
			RegularContainers:  []string{"a"},
		},
	}
}

func newServer(t *testing.T, renderer repository.Renderer, runs repository.RunRepository) (*handler.Handler, http.Handler) {
	t.Helper()
	reg, err := site.NewRegistry(newsSite())
	require.NoError(t, err)

	opts := usecase.Options{Runs: runs}
	scraper := usecase.NewScraperUseCase(renderer, reg, opts, zap.NewNop())
	h := handler.NewHandler(scraper, reg, runs, zap.NewNop())
	return h, New(h, zap.NewNop())
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHeadlines_OK(t *testing.T) {
	_, srv := newServer(t, &stubRenderer{html: frontPage}, nil)

	rec := get(t, srv, "/api/sites/news/headlines")

	require.Equal(t, http.StatusOK, rec.Code)
	_, err := uuid.Parse(rec.Header().Get(handler.ScrapeIDHeader))
	assert.NoError(t, err)

	var body response.HeadlinesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Headline)
	assert.Equal(t, "Storm hits capital", body.Headline.Title)
	assert.Equal(t, "https://news.example/a/1", body.Headline.Link)
	assert.Equal(t, entity.Headline, body.Headline.Classification)
	require.Len(t, body.Others, 2)
	assert.Equal(t, "Economy rises", body.Others[0].Title)
	assert.Equal(t, "Sports update", body.Others[1].Title)
}

func TestHeadlines_NothingFound(t *testing.T) {
	_, srv := newServer(t, &stubRenderer{html: `<html><body><nav>menu</nav></body></html>`}, nil)

	rec := get(t, srv, "/api/sites/news/headlines")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"warning":"Nenhuma notícia encontrada","suggestion":"A estrutura do site pode ter mudado"}`, rec.Body.String())
}

func TestHeadlines_RenderTimeout(t *testing.T) {
	renderErr := eris.Wrapf(repository.ErrRenderTimeout, "navigate %s: %v", "https://news.example/", context.DeadlineExceeded)
	_, srv := newServer(t, &stubRenderer{err: renderErr}, nil)

	rec := get(t, srv, "/api/sites/news/headlines")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Falha ao buscar notícias", body.Error)
	assert.Contains(t, body.Details, "context deadline exceeded")
	assert.Contains(t, body.Details, "render timed out")
}

func TestHeadlines_UnknownSite(t *testing.T) {
	_, srv := newServer(t, &stubRenderer{html: frontPage}, nil)

	rec := get(t, srv, "/api/sites/folha/headlines")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "folha")
}

func TestHeadlines_CORS(t *testing.T) {
	_, srv := newServer(t, &stubRenderer{html: frontPage}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sites/news/headlines", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSiteListener(t *testing.T) {
	h, _ := newServer(t, &stubRenderer{html: frontPage}, nil)
	srv := NewSite(h, "news", zap.NewNop())

	rec := get(t, srv, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	var body response.HeadlinesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Others, 2)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/health").Code)
}

func TestListSites(t *testing.T) {
	_, srv := newServer(t, &stubRenderer{}, nil)

	rec := get(t, srv, "/api/sites")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{
		"name": "news",
		"url": "https://news.example/",
		"tag": "NEWS",
		"language": "English",
		"port": 3005,
		"endpoint": "/api/sites/news/headlines"
	}]`, rec.Body.String())
}

func TestListRuns(t *testing.T) {
	runs := &stubRuns{}
	_, srv := newServer(t, &stubRenderer{html: frontPage}, runs)

	require.Equal(t, http.StatusOK, get(t, srv, "/api/sites/news/headlines").Code)
	require.Equal(t, http.StatusOK, get(t, srv, "/api/sites/news/headlines").Code)

	rec := get(t, srv, "/api/sites/news/runs?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var body []response.ScrapeRunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "success", body[0].Status)
	assert.Equal(t, 3, body[0].RecordCount)
	assert.True(t, body[0].HeadlineFound)
	assert.WithinDuration(t, time.Now(), body[0].StartedAt, time.Minute)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/sites/news/runs?limit=0").Code)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/sites/folha/runs").Code)
}

func TestListRuns_Disabled(t *testing.T) {
	_, srv := newServer(t, &stubRenderer{}, nil)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/sites/news/runs").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	_, srv := newServer(t, &stubRenderer{}, nil)

	rec := get(t, srv, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, get(t, srv, "/metrics").Code)
}
