package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"queryosity/pkg/models"
)

// DateLayout is the date format of the results query parameters.
const DateLayout = "2006-01-02"

// Projects declares one method per backend action on /projects. Each method
// issues exactly one request and never touches client-side state.
type Projects struct {
	Doer Doer
}

func NewProjects(doer Doer) *Projects {
	return &Projects{Doer: doer}
}

type createProjectReq struct {
	DomainName string `json:"domain_name"`
}

type enginesReq struct {
	ProjectID string          `json:"project_id"`
	Engines   []models.Engine `json:"engines"`
}

type projectIDReq struct {
	ProjectID string `json:"project_id"`
}

type competitorsReq struct {
	ProjectID   string   `json:"project_id"`
	Competitors []string `json:"competitors"`
}

type searchQueriesReq struct {
	SearchQueries []models.SearchQuery `json:"search_queries"`
}

type analysisReq struct {
	NumRuns int `json:"num_runs_p"`
}

type competitorsResp struct {
	Competitors *[]string `json:"competitors"`
}

type searchQueriesResp struct {
	SearchQueries *[]models.SearchQuery `json:"search_queries"`
}

func (p *Projects) CreateProject(ctx context.Context, domain string) (models.Project, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return models.Project{}, fmt.Errorf("create project: domain is required")
	}
	raw, err := p.Doer.Do(ctx, Request{
		Path:   "/projects/",
		Method: http.MethodPost,
		Body:   createProjectReq{DomainName: domain},
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("create project: %w", err)
	}
	project, err := decodeProject(raw)
	if err != nil {
		return models.Project{}, err
	}
	if !project.HasProjectID() || strings.TrimSpace(project.Domain) == "" {
		return models.Project{}, fmt.Errorf("create project: %w", ErrUnexpectedShape)
	}
	return project, nil
}

func (p *Projects) SetEngines(ctx context.Context, projectID string, engines []models.Engine) (models.Project, error) {
	if projectID == "" {
		return models.Project{}, ErrMissingProjectID
	}
	raw, err := p.Doer.Do(ctx, Request{
		Path:   projectPath(projectID, "engines"),
		Method: http.MethodPut,
		Body:   enginesReq{ProjectID: projectID, Engines: engines},
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("set engines: %w", err)
	}
	return decodeProject(raw)
}

func (p *Projects) SuggestCompetitors(ctx context.Context, projectID string) ([]string, error) {
	if projectID == "" {
		return nil, ErrMissingProjectID
	}
	raw, err := p.Doer.Do(ctx, Request{
		Path:   projectPath(projectID, "suggest-competitors"),
		Method: http.MethodPost,
		Body:   projectIDReq{ProjectID: projectID},
	})
	if err != nil {
		return nil, fmt.Errorf("suggest competitors: %w", err)
	}

	var resp competitorsResp
	if err := decodeObject(raw, &resp); err != nil {
		return nil, err
	}
	if resp.Competitors == nil {
		return nil, fmt.Errorf("suggest competitors: %w", ErrUnexpectedShape)
	}
	return *resp.Competitors, nil
}

func (p *Projects) SetCompetitors(ctx context.Context, projectID string, competitors []string) (models.Project, error) {
	if projectID == "" {
		return models.Project{}, ErrMissingProjectID
	}
	raw, err := p.Doer.Do(ctx, Request{
		Path:   projectPath(projectID, "competitors"),
		Method: http.MethodPut,
		Body:   competitorsReq{ProjectID: projectID, Competitors: competitors},
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("set competitors: %w", err)
	}
	return decodeProject(raw)
}

func (p *Projects) GenerateQueries(ctx context.Context, projectID string) ([]models.SearchQuery, error) {
	if projectID == "" {
		return nil, ErrMissingProjectID
	}
	raw, err := p.Doer.Do(ctx, Request{
		Path:   projectPath(projectID, "generate-queries"),
		Method: http.MethodPost,
	})
	if err != nil {
		return nil, fmt.Errorf("generate queries: %w", err)
	}

	var resp searchQueriesResp
	if err := decodeObject(raw, &resp); err != nil {
		return nil, err
	}
	if resp.SearchQueries == nil {
		return nil, fmt.Errorf("generate queries: %w", ErrUnexpectedShape)
	}
	return *resp.SearchQueries, nil
}

func (p *Projects) SetQueries(ctx context.Context, projectID string, queries []models.SearchQuery) (models.Project, error) {
	if projectID == "" {
		return models.Project{}, ErrMissingProjectID
	}
	raw, err := p.Doer.Do(ctx, Request{
		Path:   projectPath(projectID, "search-queries"),
		Method: http.MethodPut,
		Body:   searchQueriesReq{SearchQueries: queries},
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("set queries: %w", err)
	}
	return decodeProject(raw)
}

func (p *Projects) StartAnalysis(ctx context.Context, projectID string, runs int) (models.AnalysisStatus, error) {
	if projectID == "" {
		return models.AnalysisStatus{}, ErrMissingProjectID
	}
	if runs <= 0 {
		runs = 1
	}
	raw, err := p.Doer.Do(ctx, Request{
		Path:   projectPath(projectID, "analysis", "generate"),
		Method: http.MethodPost,
		Body:   analysisReq{NumRuns: runs},
	})
	if err != nil {
		return models.AnalysisStatus{}, fmt.Errorf("start analysis: %w", err)
	}

	var status models.AnalysisStatus
	if err := decodeObject(raw, &status); err != nil {
		return models.AnalysisStatus{}, err
	}
	return status, nil
}

func (p *Projects) FetchResults(ctx context.Context, projectID string, from, to time.Time) (models.AnalysisResults, error) {
	if projectID == "" {
		return models.AnalysisResults{}, ErrMissingProjectID
	}
	if to.Before(from) {
		from, to = to, from
	}
	params := url.Values{}
	params.Set("start_date", from.Format(DateLayout))
	params.Set("end_date", to.Format(DateLayout))

	raw, err := p.Doer.Do(ctx, Request{
		Path:   projectPath(projectID, "analysis", "results"),
		Method: http.MethodGet,
		Params: params,
	})
	if err != nil {
		return models.AnalysisResults{}, fmt.Errorf("fetch results: %w", err)
	}
	if models.IsNullJSON(raw) {
		return models.AnalysisResults{}, fmt.Errorf("fetch results: %w", ErrUnexpectedShape)
	}
	return models.AnalysisResults{
		ProjectID: projectID,
		StartDate: params.Get("start_date"),
		EndDate:   params.Get("end_date"),
		Data:      raw,
	}, nil
}

func projectPath(projectID string, segments ...string) string {
	parts := append([]string{"/projects", url.PathEscape(projectID)}, segments...)
	return strings.Join(parts, "/")
}

func decodeProject(raw json.RawMessage) (models.Project, error) {
	var p models.Project
	if err := decodeObject(raw, &p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// decodeObject accepts only a JSON object; anything else is
// ErrUnexpectedShape.
func decodeObject(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrUnexpectedShape
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	return nil
}
