package wizard

import "queryosity/pkg/models"

const (
	DefaultDomain          = "example.com"
	DefaultDashboardDomain = "yourdomain.com"
)

var DefaultEngines = []models.Engine{models.EnginePerplexity}

// DefaultPayload is the navigation payload a step assumes when it is
// opened without one.
func DefaultPayload(step Step) models.Bundle {
	engines := append([]models.Engine(nil), DefaultEngines...)
	switch step {
	case StepEngines:
		return models.Bundle{Domain: DefaultDomain}
	case StepCompetitors:
		return models.Bundle{Domain: DefaultDomain, SelectedEngines: engines}
	case StepQueries:
		return models.Bundle{
			Domain:              DefaultDomain,
			SelectedEngines:     engines,
			SelectedCompetitors: []string{"competitor1.com"},
		}
	case StepDashboard:
		return models.Bundle{
			Domain:              DefaultDashboardDomain,
			SelectedEngines:     engines,
			SelectedCompetitors: []string{"competitor1.com"},
			Queries:             []models.SearchQuery{},
		}
	default:
		return models.Bundle{}
	}
}

// DefaultCompetitors is the sample working set used when neither the
// store nor the backend can supply one.
func DefaultCompetitors() []models.Competitor {
	return []models.Competitor{
		{ID: "comp1", Name: "competitor1.com", Selected: true},
		{ID: "comp2", Name: "competitor2.com", Selected: true},
		{ID: "comp3", Name: "competitorsite.com", Selected: false},
		{ID: "comp4", Name: "industryexample.com", Selected: false},
	}
}

func DefaultQueries() []models.QueryItem {
	return []models.QueryItem{
		{ID: "q1", Text: "product features", Importance: 4},
		{ID: "q2", Text: "pricing comparison", Importance: 5},
		{ID: "q3", Text: "industry solutions", Importance: 3},
	}
}

// Reconcile resolves the selections a step starts from. Per field, data
// persisted in the project record wins, then the navigation payload, then
// the step's defaults. Engine selection is the exception for the domain:
// the submitted domain in nav wins there. A nil nav means the step was
// opened without one.
func Reconcile(step Step, nav *models.Bundle, p models.Project) models.Bundle {
	def := DefaultPayload(step)
	var in models.Bundle
	if nav != nil {
		in = nav.Clone()
	}

	out := models.Bundle{}
	switch {
	case step == StepEngines && in.Domain != "":
		// the domain just submitted on the landing page
		out.Domain = in.Domain
	case p.Domain != "":
		out.Domain = p.Domain
	case in.Domain != "":
		out.Domain = in.Domain
	default:
		out.Domain = def.Domain
	}

	switch {
	case len(p.SelectedEngines) > 0:
		out.SelectedEngines = append([]models.Engine(nil), p.SelectedEngines...)
	case len(in.SelectedEngines) > 0:
		out.SelectedEngines = in.SelectedEngines
	default:
		out.SelectedEngines = def.SelectedEngines
	}

	switch {
	case len(p.Competitors) > 0:
		out.SelectedCompetitors = append([]string(nil), p.Competitors...)
	case len(in.SelectedCompetitors) > 0:
		out.SelectedCompetitors = in.SelectedCompetitors
	default:
		out.SelectedCompetitors = def.SelectedCompetitors
	}

	switch {
	case len(p.SearchQueries) > 0:
		out.Queries = normalizeQueries(p.SearchQueries)
	case len(in.Queries) > 0:
		out.Queries = normalizeQueries(in.Queries)
	default:
		out.Queries = def.Queries
	}

	// later steps' fields are not known yet
	switch step {
	case StepEngines:
		out.SelectedCompetitors, out.Queries = nil, nil
	case StepCompetitors, StepQueries:
		out.Queries = nil
	}
	return out
}

func normalizeQueries(in []models.SearchQuery) []models.SearchQuery {
	out := make([]models.SearchQuery, len(in))
	for i, q := range in {
		out[i] = models.SearchQuery{Query: q.Query, Importance: models.NormalizeImportance(q.Importance)}
	}
	return out
}
