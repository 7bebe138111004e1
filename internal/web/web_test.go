package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"queryosity/internal/apiclient"
	"queryosity/internal/dashboard"
	"queryosity/internal/notify"
	"queryosity/internal/session"
	"queryosity/internal/store"
	"queryosity/pkg/models"
)

type fakeAPI struct {
	mu         sync.Mutex
	enginesErr error
	queries    []models.SearchQuery
	results    models.AnalysisResults
	resultsErr error
}

func (f *fakeAPI) CreateProject(_ context.Context, domain string) (models.Project, error) {
	return models.Project{ID: "p-1", Domain: domain}, nil
}

func (f *fakeAPI) SetEngines(_ context.Context, id string, e []models.Engine) (models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enginesErr != nil {
		return models.Project{}, f.enginesErr
	}
	return models.Project{ID: id, SelectedEngines: e}, nil
}

func (f *fakeAPI) SuggestCompetitors(context.Context, string) ([]string, error) {
	return []string{"rival.io", "other.net"}, nil
}

func (f *fakeAPI) SetCompetitors(_ context.Context, id string, c []string) (models.Project, error) {
	return models.Project{ID: id, Competitors: c}, nil
}

func (f *fakeAPI) GenerateQueries(context.Context, string) ([]models.SearchQuery, error) {
	return []models.SearchQuery{{Query: "generated one", Importance: 2}}, nil
}

func (f *fakeAPI) SetQueries(_ context.Context, id string, q []models.SearchQuery) (models.Project, error) {
	f.mu.Lock()
	f.queries = q
	f.mu.Unlock()
	return models.Project{ID: id, SearchQueries: q}, nil
}

func (f *fakeAPI) StartAnalysis(context.Context, string, int) (models.AnalysisStatus, error) {
	return models.AnalysisStatus{Status: models.AnalysisStarted}, nil
}

func (f *fakeAPI) FetchResults(_ context.Context, id string, from, to time.Time) (models.AnalysisResults, error) {
	if f.resultsErr != nil {
		return models.AnalysisResults{}, f.resultsErr
	}
	r := f.results
	r.ProjectID = id
	r.StartDate = from.Format(apiclient.DateLayout)
	r.EndDate = to.Format(apiclient.DateLayout)
	return r, nil
}

type harness struct {
	t       *testing.T
	api     *fakeAPI
	store   *store.Memory
	server  *Server
	handler http.Handler
	cookies []*http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	samples, err := dashboard.DefaultSamples()
	require.NoError(t, err)
	keys, err := session.DeriveKeys("test-secret")
	require.NoError(t, err)

	h := &harness{t: t, api: &fakeAPI{}, store: store.NewMemory()}
	nav := session.NavCodec{Secret: keys.Navigation, Issuer: "test", Duration: time.Hour}
	h.server = NewServer(h.api, h.store, nav, notify.NewCenter(nil), samples, zap.NewNop())
	h.server.now = func() time.Time { return time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC) }
	h.handler = h.server.Router(Options{
		Tokens:     session.TokenService{Secret: keys.Cookie, Issuer: "test", Duration: time.Hour},
		CookieName: "qs",
	})
	return h
}

func (h *harness) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		h.cookies = set
	}
	return rec
}

// post submits a form and returns the redirect target.
func (h *harness) post(target string, form url.Values) *url.URL {
	h.t.Helper()
	rec := h.do(http.MethodPost, target, form)
	require.Equal(h.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(h.t, err)
	return loc
}

func (h *harness) get(target string) string {
	h.t.Helper()
	rec := h.do(http.MethodGet, target, nil)
	require.Equal(h.t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func (h *harness) bundle(loc *url.URL) models.Bundle {
	h.t.Helper()
	claims, err := h.server.Nav.Decode(loc.Query().Get("nav"))
	require.NoError(h.t, err)
	return claims.Bundle
}

func TestWizardFlow(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.get("/"), "Analyze")

	loc := h.post("/analyze", url.Values{"domain": {"example.com"}})
	assert.Equal(t, "/analyze/search-engines", loc.Path)
	assert.Equal(t, models.Bundle{Domain: "example.com"}, h.bundle(loc))

	page := h.get(loc.String())
	assert.Contains(t, page, "Domain data fetched successfully")
	assert.Contains(t, page, "Perplexity")

	nav := loc.Query().Get("nav")
	loc = h.post(loc.Path, url.Values{"nav": {nav}, "action": {"continue"}})
	assert.Equal(t, "/analyze/competitors", loc.Path)
	want := models.Bundle{Domain: "example.com", SelectedEngines: []models.Engine{"perplexity"}}
	if diff := cmp.Diff(want, h.bundle(loc)); diff != "" {
		t.Fatalf("engine payload (-want +got):\n%s", diff)
	}

	page = h.get(loc.String())
	assert.Contains(t, page, "rival.io")
	assert.Contains(t, page, "Suggested competitors loaded successfully")

	nav = loc.Query().Get("nav")
	back := h.post(loc.Path, url.Values{"nav": {nav}, "action": {"add"}, "name": {"new.org"}})
	assert.Equal(t, loc.String(), back.String(), "edits stay on the page")
	assert.Contains(t, h.get(loc.String()), "new.org")

	loc = h.post(loc.Path, url.Values{"nav": {nav}, "action": {"continue"}})
	assert.Equal(t, "/analyze/queries", loc.Path)
	assert.Equal(t, []string{"rival.io", "other.net", "new.org"}, h.bundle(loc).SelectedCompetitors)

	page = h.get(loc.String())
	assert.Contains(t, page, "pricing comparison")

	nav = loc.Query().Get("nav")
	h.post(loc.Path, url.Values{"nav": {nav}, "action": {"add"}, "text": {"ai seo tools"}, "importance": {"9"}})
	loc = h.post(loc.Path, url.Values{"nav": {nav}, "action": {"continue"}})
	assert.Equal(t, "/dashboard", loc.Path)

	got := h.bundle(loc)
	require.Len(t, got.Queries, 4)
	assert.Equal(t, models.SearchQuery{Query: "ai seo tools", Importance: 5}, got.Queries[3])
	assert.Equal(t, got.Queries, h.api.queries)

	page = h.get(loc.String())
	assert.Contains(t, page, "Analysis generation started successfully")
	assert.Contains(t, page, "example.com")
}

func TestQueryAutoModeGenerates(t *testing.T) {
	h := newHarness(t)
	h.post("/analyze", url.Values{"domain": {"example.com"}})

	loc := h.post("/analyze/queries", url.Values{"action": {"mode"}, "mode": {"auto"}})
	assert.Equal(t, "/analyze/queries", loc.Path)

	page := h.get(loc.String())
	assert.Contains(t, page, "generated one")
	assert.Contains(t, page, "Queries generated successfully")
	assert.NotContains(t, page, "pricing comparison")
}

func TestEngineContinueFailureStays(t *testing.T) {
	h := newHarness(t)
	h.api.enginesErr = &apiclient.Error{Method: "PUT", URL: "x", Status: 503}

	loc := h.post("/analyze", url.Values{"domain": {"example.com"}})
	h.get(loc.String())
	nav := loc.Query().Get("nav")

	back := h.post(loc.Path, url.Values{"nav": {nav}, "action": {"continue"}})
	assert.Equal(t, loc.String(), back.String())

	page := h.get(back.String())
	assert.Equal(t, 1, strings.Count(page, "Failed to update search engines"))
}

func TestEngineToggleUnknown(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/analyze/search-engines", url.Values{"action": {"toggle"}, "engine": {"bing"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStepsWithoutNavigationUseDefaults(t *testing.T) {
	h := newHarness(t)

	page := h.get("/analyze/competitors")
	for _, name := range []string{"competitor1.com", "competitor2.com", "competitorsite.com", "industryexample.com"} {
		assert.Contains(t, page, name)
	}
	assert.Contains(t, h.get("/analyze/search-engines?nav=garbage"), "example.com")
	assert.Contains(t, h.get("/dashboard"), "yourdomain.com")
}

func TestBackNavigation(t *testing.T) {
	h := newHarness(t)
	loc := h.post("/analyze/queries", url.Values{"action": {"back"}})
	assert.Equal(t, "/analyze/competitors", loc.Path)
	assert.Equal(t, "example.com", h.bundle(loc).Domain)

	loc = h.post("/analyze/search-engines", url.Values{"action": {"back"}})
	assert.Equal(t, "/", loc.String())
}

func TestBlankDomainStaysOnLanding(t *testing.T) {
	h := newHarness(t)
	loc := h.post("/analyze", url.Values{"domain": {" "}})
	assert.Equal(t, "/", loc.String())
	assert.Contains(t, h.get("/"), "Please enter a domain to analyze")
}

func TestDashboardResults(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/dashboard/results", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	h.post("/analyze", url.Values{"domain": {"example.com"}})
	h.api.results = models.AnalysisResults{Data: json.RawMessage(`{"score":91}`)}

	rec = h.do(http.MethodGet, "/dashboard/results?start_date=2025-04-01&end_date=2025-04-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.AnalysisResults
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "p-1", res.ProjectID)
	assert.Equal(t, "2025-04-01", res.StartDate)
	assert.JSONEq(t, `{"score":91}`, string(res.Data))

	rec = h.do(http.MethodGet, "/dashboard/results?start_date=april", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.api.resultsErr = errors.New("down")
	rec = h.do(http.MethodGet, "/dashboard/results", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestImprovementsPage(t *testing.T) {
	h := newHarness(t)
	page := h.get("/recommend-improvements?status=Warning")
	assert.Contains(t, page, "https://example.com/products")
	assert.NotContains(t, page, "https://example.com/home")

	page = h.get("/recommend-improvements?q=readability")
	assert.Contains(t, page, "https://example.com/about")
	assert.Contains(t, page, "Page 1 of 1")
}

func TestResetClearsState(t *testing.T) {
	h := newHarness(t)
	h.post("/analyze", url.Values{"domain": {"example.com"}})
	require.Equal(t, 1, h.store.Len())
	require.Equal(t, 0, h.server.work.Len())
	h.get("/analyze/search-engines")
	require.Equal(t, 1, h.server.work.Len())

	loc := h.post("/reset", url.Values{})
	assert.Equal(t, "/", loc.String())
	assert.Equal(t, 0, h.server.work.Len())
	assert.Equal(t, 0, h.store.Len())
}

func TestNotFound(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}
