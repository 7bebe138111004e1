package models

// Competitor is one entry of the competitor working set.
type Competitor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// QueryItem is one entry of the query working set.
type QueryItem struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Importance int    `json:"importance"`
}

func (q QueryItem) SearchQuery() SearchQuery {
	return SearchQuery{Query: q.Text, Importance: q.Importance}
}
