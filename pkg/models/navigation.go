package models

// Bundle is the selection state threaded from one wizard step to the next.
// Each step adds its own field; later fields stay empty until reached.
type Bundle struct {
	Domain              string        `json:"domain,omitempty"`
	SelectedEngines     []Engine      `json:"selectedEngines,omitempty"`
	SelectedCompetitors []string      `json:"selectedCompetitors,omitempty"`
	Queries             []SearchQuery `json:"queries,omitempty"`
}

func (b Bundle) Clone() Bundle {
	out := Bundle{Domain: b.Domain}
	if b.SelectedEngines != nil {
		out.SelectedEngines = append([]Engine(nil), b.SelectedEngines...)
	}
	if b.SelectedCompetitors != nil {
		out.SelectedCompetitors = append([]string(nil), b.SelectedCompetitors...)
	}
	if b.Queries != nil {
		out.Queries = append([]SearchQuery(nil), b.Queries...)
	}
	return out
}
