package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"queryosity/pkg/models"
)

// ResultsWindow is how far back the dashboard reads analysis results.
const ResultsWindow = 30 * 24 * time.Hour

type ResultsFetcher interface {
	FetchResults(ctx context.Context, projectID string, from, to time.Time) (models.AnalysisResults, error)
}

// LoadResults reads the analysis results of the last ResultsWindow. Any
// failure yields nil so the page keeps showing samples.
func LoadResults(ctx context.Context, f ResultsFetcher, projectID string, now time.Time, logger *zap.Logger) json.RawMessage {
	if f == nil || projectID == "" {
		return nil
	}
	res, err := f.FetchResults(ctx, projectID, now.Add(-ResultsWindow), now)
	if err != nil {
		logger.Debug("dashboard results unavailable", zap.String("project", projectID), zap.Error(err))
		return nil
	}
	if models.IsNullJSON(res.Data) {
		return nil
	}
	return res.Data
}
