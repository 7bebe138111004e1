package dashboard

import (
	"encoding/json"
	"strings"

	"queryosity/pkg/models"
)

// View is everything the dashboard page renders.
type View struct {
	Domain      string
	Engines     []models.EngineInfo
	Competitors []string
	Queries     []models.SearchQuery

	Headline          Headline
	EnginePerformance []EngineScore
	Opportunities     []Opportunity
	Mentions          Mentions
	Citations         []Citation
	CompetitorScores  []CompetitorScore
	HistoricalScores  []ScorePoint

	// Results is the backend analysis document when one could be read.
	Results json.RawMessage
}

// Build selects the sample entries matching the accumulated wizard
// selections. Engine performance falls back to the first sample entry when
// nothing matches.
func Build(b models.Bundle, s Samples) View {
	v := View{
		Domain:           b.Domain,
		Competitors:      append([]string(nil), b.SelectedCompetitors...),
		Queries:          append([]models.SearchQuery(nil), b.Queries...),
		Headline:         s.Headline,
		Opportunities:    s.ImprovementOpportunities,
		Mentions:         s.Mentions,
		Citations:        s.Citations,
		HistoricalScores: s.HistoricalScores,
	}

	for _, id := range b.SelectedEngines {
		if info, ok := models.LookupEngine(id); ok {
			v.Engines = append(v.Engines, info)
		}
	}

	for _, e := range s.EnginePerformance {
		if models.ContainsEngine(b.SelectedEngines, e.Engine) {
			v.EnginePerformance = append(v.EnginePerformance, e)
		}
	}
	if len(v.EnginePerformance) == 0 && len(s.EnginePerformance) > 0 {
		v.EnginePerformance = s.EnginePerformance[:1]
	}

	for _, c := range s.Competitors {
		if containsFold(b.SelectedCompetitors, c.Name) {
			v.CompetitorScores = append(v.CompetitorScores, c)
		}
	}
	return v
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}
