package models

import (
	"bytes"
	"encoding/json"
)

// StageStatus tracks one backend processing stage of a project.
type StageStatus string

const (
	StagePending StageStatus = "pending"
	StageRunning StageStatus = "running"
	StageDone    StageStatus = "done"
	StageFailed  StageStatus = "failed"
)

// Project is the backend-tracked unit of analysis for one domain, as
// returned by the projects API. Fields the backend reports as null decode
// to their zero value.
type Project struct {
	ID              string          `json:"project_id"`
	Domain          string          `json:"domain_name"`
	SelectedEngines []Engine        `json:"selected_engines"`
	Competitors     []string        `json:"competitors"`
	SearchQueries   []SearchQuery   `json:"search_queries"`
	Content         json.RawMessage `json:"content,omitempty"`
	AnalysisResults json.RawMessage `json:"analysis_results,omitempty"`
	CreatedAt       string          `json:"created_at,omitempty"` // backend timestamp, not always RFC3339

	StatusContentProcessing    StageStatus `json:"status_content_processing,omitempty"`
	StatusCompetitorGeneration StageStatus `json:"status_competitor_generation,omitempty"`
	StatusQueryGeneration      StageStatus `json:"status_query_generation,omitempty"`
	StatusAnalysis             StageStatus `json:"status_analysis,omitempty"`
}

// Clone returns a copy that shares no slices with p.
func (p Project) Clone() Project {
	out := p
	if p.SelectedEngines != nil {
		out.SelectedEngines = append([]Engine(nil), p.SelectedEngines...)
	}
	if p.Competitors != nil {
		out.Competitors = append([]string(nil), p.Competitors...)
	}
	if p.SearchQueries != nil {
		out.SearchQueries = append([]SearchQuery(nil), p.SearchQueries...)
	}
	if p.Content != nil {
		out.Content = append(json.RawMessage(nil), p.Content...)
	}
	if p.AnalysisResults != nil {
		out.AnalysisResults = append(json.RawMessage(nil), p.AnalysisResults...)
	}
	return out
}

// HasProjectID reports whether the backend has assigned an id.
func (p Project) HasProjectID() bool {
	return p.ID != ""
}

// IsNullJSON reports whether raw carries no value (absent or literal null).
func IsNullJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
