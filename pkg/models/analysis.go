package models

import "encoding/json"

// AnalysisStarted is the status the backend reports when a run was queued.
const AnalysisStarted = "started"

type AnalysisStatus struct {
	Status string `json:"status"`
}

func (s AnalysisStatus) Started() bool {
	return s.Status == AnalysisStarted
}

// AnalysisResults wraps the opaque results document for a date range.
type AnalysisResults struct {
	ProjectID string          `json:"project_id"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Data      json.RawMessage `json:"data"`
}
