package dashboard

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"queryosity/pkg/models"
)

//go:embed samples.yaml
var samplesYAML []byte

type Headline struct {
	Readiness       int `yaml:"readiness" json:"readiness"`
	ReadinessChange int `yaml:"readiness_change" json:"readiness_change"`
	AverageRank     int `yaml:"average_rank" json:"average_rank"`
	RankChange      int `yaml:"rank_change" json:"rank_change"`
}

type EngineScore struct {
	Engine models.Engine `yaml:"engine" json:"engine"`
	Name   string        `yaml:"name" json:"name"`
	Value  int           `yaml:"value" json:"value"`
	Color  string        `yaml:"color" json:"color"`
}

type Opportunity struct {
	Name        string `yaml:"name" json:"name"`
	Score       int    `yaml:"score" json:"score"`
	Description string `yaml:"description" json:"description"`
}

type Mention struct {
	Source        string `yaml:"source" json:"source"`
	Count         int    `yaml:"count" json:"count"`
	Sentiment     string `yaml:"sentiment" json:"sentiment"`
	PercentChange int    `yaml:"percent_change" json:"percent_change"`
}

type Mentions struct {
	TotalQueries         int       `yaml:"total_queries" json:"total_queries"`
	QueriesPercentChange int       `yaml:"queries_percent_change" json:"queries_percent_change"`
	Sources              []Mention `yaml:"sources" json:"sources"`
}

// MentionRate is the share of queries that mentioned the domain, in percent.
func (m Mentions) MentionRate() float64 {
	if m.TotalQueries == 0 {
		return 0
	}
	total := 0
	for _, s := range m.Sources {
		total += s.Count
	}
	return float64(total) / float64(m.TotalQueries) * 100
}

type EngineResult struct {
	Engine   string `yaml:"engine" json:"engine"`
	Position int    `yaml:"position" json:"position"`
	URL      string `yaml:"url" json:"url"`
	Date     string `yaml:"date" json:"date"`
}

type Citation struct {
	Query            string         `yaml:"query" json:"query"`
	Position         int            `yaml:"position" json:"position"`
	PreviousPosition int            `yaml:"previous_position" json:"previous_position"`
	Importance       int            `yaml:"importance" json:"importance"`
	EngineResults    []EngineResult `yaml:"engine_results" json:"engine_results"`
}

type CompetitorMetrics struct {
	ContentDepth     int `yaml:"content_depth" json:"content_depth"`
	CitationDensity  int `yaml:"citation_density" json:"citation_density"`
	QueryRelevance   int `yaml:"query_relevance" json:"query_relevance"`
	LinkEcosystem    int `yaml:"link_ecosystem" json:"link_ecosystem"`
	AuthoritySignals int `yaml:"authority_signals" json:"authority_signals"`
}

type CompetitorScore struct {
	Name            string            `yaml:"name" json:"name"`
	ReadinessScore  int               `yaml:"readiness_score" json:"readiness_score"`
	AveragePosition int               `yaml:"average_position" json:"average_position"`
	Strengths       []string          `yaml:"strengths" json:"strengths"`
	Weaknesses      []string          `yaml:"weaknesses" json:"weaknesses"`
	Metrics         CompetitorMetrics `yaml:"metrics" json:"metrics"`
}

type ScorePoint struct {
	Date  string `yaml:"date" json:"date"`
	Score int    `yaml:"score" json:"score"`
}

type Issue struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Severity    Status `yaml:"severity" json:"severity"`
}

type PageAudit struct {
	URL    string  `yaml:"url" json:"url"`
	Status Status  `yaml:"status" json:"status"`
	Issues []Issue `yaml:"issues" json:"issues"`
}

// Samples is the static placeholder content of the dashboard pages.
type Samples struct {
	Headline                 Headline          `yaml:"headline"`
	EnginePerformance        []EngineScore     `yaml:"engine_performance"`
	ImprovementOpportunities []Opportunity     `yaml:"improvement_opportunities"`
	Mentions                 Mentions          `yaml:"mentions"`
	Citations                []Citation        `yaml:"citations"`
	Competitors              []CompetitorScore `yaml:"competitors"`
	HistoricalScores         []ScorePoint      `yaml:"historical_scores"`
	PageAudits               []PageAudit       `yaml:"page_audits"`
}

// ParseSamples decodes a samples document.
func ParseSamples(b []byte) (Samples, error) {
	var s Samples
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Samples{}, fmt.Errorf("parse samples: %w", err)
	}
	if len(s.EnginePerformance) == 0 {
		return Samples{}, fmt.Errorf("parse samples: no engine performance entries")
	}
	return s, nil
}

// DefaultSamples returns the embedded sample datasets.
func DefaultSamples() (Samples, error) {
	return ParseSamples(samplesYAML)
}
