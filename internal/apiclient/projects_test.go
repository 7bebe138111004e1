package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queryosity/pkg/models"
)

// fakeDoer records requests and replays a canned response.
type fakeDoer struct {
	reqs []Request
	raw  string
	err  error
}

func (f *fakeDoer) Do(_ context.Context, r Request) (json.RawMessage, error) {
	f.reqs = append(f.reqs, r)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.raw), nil
}

func (f *fakeDoer) last(t *testing.T) Request {
	t.Helper()
	require.NotEmpty(t, f.reqs)
	return f.reqs[len(f.reqs)-1]
}

func bodyJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestCreateProject(t *testing.T) {
	doer := &fakeDoer{raw: `{
		"project_id": "project:2181",
		"domain_name": "example.com",
		"competitors": null,
		"search_queries": null,
		"selected_engines": null,
		"status_analysis": "pending",
		"status_competitor_generation": "pending",
		"status_content_processing": "pending",
		"status_query_generation": "pending"
	}`}
	p, err := NewProjects(doer).CreateProject(context.Background(), "  example.com ")
	require.NoError(t, err)

	req := doer.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/projects/", req.Path)
	assert.JSONEq(t, `{"domain_name":"example.com"}`, bodyJSON(t, req.Body))

	assert.Equal(t, "project:2181", p.ID)
	assert.Equal(t, "example.com", p.Domain)
	assert.Nil(t, p.Competitors)
	assert.Equal(t, models.StagePending, p.StatusAnalysis)
}

func TestCreateProject_MissingFieldsIsUnexpectedShape(t *testing.T) {
	for _, raw := range []string{
		`{}`,
		`{"project_id":"p-1"}`,
		`{"domain_name":"example.com"}`,
		`{"project_id":"","domain_name":"example.com"}`,
	} {
		doer := &fakeDoer{raw: raw}
		p, err := NewProjects(doer).CreateProject(context.Background(), "example.com")
		require.ErrorIs(t, err, ErrUnexpectedShape, raw)
		assert.Equal(t, models.Project{}, p, raw)
	}
}

func TestCreateProject_EmptyDomainSkipsCall(t *testing.T) {
	doer := &fakeDoer{}
	_, err := NewProjects(doer).CreateProject(context.Background(), "   ")
	require.Error(t, err)
	assert.Empty(t, doer.reqs)
}

func TestSetEngines(t *testing.T) {
	doer := &fakeDoer{raw: `{"project_id":"p/1","selected_engines":["perplexity","claude"]}`}
	p, err := NewProjects(doer).SetEngines(context.Background(), "p/1", []models.Engine{models.EnginePerplexity, models.EngineClaude})
	require.NoError(t, err)

	req := doer.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/projects/p%2F1/engines", req.Path)
	assert.JSONEq(t, `{"project_id":"p/1","engines":["perplexity","claude"]}`, bodyJSON(t, req.Body))
	assert.Equal(t, []models.Engine{models.EnginePerplexity, models.EngineClaude}, p.SelectedEngines)
}

func TestOperations_RequireProjectID(t *testing.T) {
	doer := &fakeDoer{}
	api := NewProjects(doer)
	ctx := context.Background()

	_, err := api.SetEngines(ctx, "", nil)
	assert.ErrorIs(t, err, ErrMissingProjectID)
	_, err = api.SuggestCompetitors(ctx, "")
	assert.ErrorIs(t, err, ErrMissingProjectID)
	_, err = api.SetCompetitors(ctx, "", nil)
	assert.ErrorIs(t, err, ErrMissingProjectID)
	_, err = api.GenerateQueries(ctx, "")
	assert.ErrorIs(t, err, ErrMissingProjectID)
	_, err = api.SetQueries(ctx, "", nil)
	assert.ErrorIs(t, err, ErrMissingProjectID)
	_, err = api.StartAnalysis(ctx, "", 1)
	assert.ErrorIs(t, err, ErrMissingProjectID)
	_, err = api.FetchResults(ctx, "", time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrMissingProjectID)

	assert.Empty(t, doer.reqs, "no request leaves without a project id")
}

func TestSuggestCompetitors(t *testing.T) {
	doer := &fakeDoer{raw: `{"competitors":["a.com","b.com"]}`}
	got, err := NewProjects(doer).SuggestCompetitors(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com"}, got)

	req := doer.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/projects/p1/suggest-competitors", req.Path)
	assert.JSONEq(t, `{"project_id":"p1"}`, bodyJSON(t, req.Body))
}

func TestSuggestCompetitors_UnexpectedShape(t *testing.T) {
	for _, raw := range []string{``, `[]`, `{"other":1}`, `{"competitors":"a.com"}`} {
		doer := &fakeDoer{raw: raw}
		_, err := NewProjects(doer).SuggestCompetitors(context.Background(), "p1")
		assert.ErrorIs(t, err, ErrUnexpectedShape, "raw=%q", raw)
	}
}

func TestSetCompetitors(t *testing.T) {
	doer := &fakeDoer{raw: `{"project_id":"p1","competitors":["a.com"]}`}
	p, err := NewProjects(doer).SetCompetitors(context.Background(), "p1", []string{"a.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com"}, p.Competitors)

	req := doer.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/projects/p1/competitors", req.Path)
	assert.JSONEq(t, `{"project_id":"p1","competitors":["a.com"]}`, bodyJSON(t, req.Body))
}

func TestGenerateQueries(t *testing.T) {
	doer := &fakeDoer{raw: `{"search_queries":[{"query":"best crm","importance":5},{"query":"crm pricing"}]}`}
	got, err := NewProjects(doer).GenerateQueries(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []models.SearchQuery{{Query: "best crm", Importance: 5}, {Query: "crm pricing"}}, got)

	req := doer.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/projects/p1/generate-queries", req.Path)
	assert.Nil(t, req.Body)

	_, err = NewProjects(&fakeDoer{raw: `{}`}).GenerateQueries(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestSetQueries(t *testing.T) {
	doer := &fakeDoer{raw: `{"project_id":"p1"}`}
	_, err := NewProjects(doer).SetQueries(context.Background(), "p1", []models.SearchQuery{{Query: "q", Importance: 2}})
	require.NoError(t, err)

	req := doer.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/projects/p1/search-queries", req.Path)
	assert.JSONEq(t, `{"search_queries":[{"query":"q","importance":2}]}`, bodyJSON(t, req.Body))
}

func TestStartAnalysis(t *testing.T) {
	doer := &fakeDoer{raw: `{"status":"started"}`}
	st, err := NewProjects(doer).StartAnalysis(context.Background(), "p1", 0)
	require.NoError(t, err)
	assert.True(t, st.Started())

	req := doer.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/projects/p1/analysis/generate", req.Path)
	assert.JSONEq(t, `{"num_runs_p":1}`, bodyJSON(t, req.Body), "non-positive runs default to one")

	st, err = NewProjects(&fakeDoer{raw: `{"status":"queued"}`}).StartAnalysis(context.Background(), "p1", 1)
	require.NoError(t, err)
	assert.False(t, st.Started())
}

func TestFetchResults(t *testing.T) {
	doer := &fakeDoer{raw: `{"scores":[1,2]}`}
	from := time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	res, err := NewProjects(doer).FetchResults(context.Background(), "p1", from, to)
	require.NoError(t, err)

	req := doer.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/projects/p1/analysis/results", req.Path)
	assert.Equal(t, "2025-04-01", req.Params.Get("start_date"), "range is reordered")
	assert.Equal(t, "2025-04-11", req.Params.Get("end_date"))
	assert.JSONEq(t, `{"scores":[1,2]}`, string(res.Data))
	assert.Equal(t, "p1", res.ProjectID)

	_, err = NewProjects(&fakeDoer{raw: `null`}).FetchResults(context.Background(), "p1", from, to)
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}

func TestOperations_PropagateAdapterError(t *testing.T) {
	apiErr := &Error{Method: http.MethodPut, URL: "x", Status: http.StatusBadGateway}
	doer := &fakeDoer{err: apiErr}

	_, err := NewProjects(doer).SetCompetitors(context.Background(), "p1", []string{"a.com"})
	require.Error(t, err)

	var got *Error
	require.True(t, errors.As(err, &got))
	assert.Equal(t, http.StatusBadGateway, got.Status)
	assert.Len(t, doer.reqs, 1, "no retry")
}
