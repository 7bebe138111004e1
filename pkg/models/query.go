package models

const (
	MinImportance     = 1
	MaxImportance     = 5
	DefaultImportance = 3
)

// SearchQuery is a search phrase weighted by importance, in the shape the
// backend expects.
type SearchQuery struct {
	Query      string `json:"query"`
	Importance int    `json:"importance"`
}

// ClampImportance forces v into [MinImportance, MaxImportance].
func ClampImportance(v int) int {
	if v < MinImportance {
		return MinImportance
	}
	if v > MaxImportance {
		return MaxImportance
	}
	return v
}

// NormalizeImportance maps a missing (zero) importance to the default and
// clamps everything else.
func NormalizeImportance(v int) int {
	if v == 0 {
		return DefaultImportance
	}
	return ClampImportance(v)
}
