package store

import (
	"context"
	"errors"

	"queryosity/pkg/models"
)

// ErrNoSession is returned for an empty session id.
var ErrNoSession = errors.New("session id required")

// Store holds the canonical project record of each session. Writes always
// replace the whole record; readers get a copy they may freely modify.
type Store interface {
	Get(ctx context.Context, sessionID string) (models.Project, error)
	Replace(ctx context.Context, sessionID string, p models.Project) error
	Clear(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

// Merge overlays the fields incoming carries on top of current. Empty
// strings, nil slices and null documents in incoming keep the current
// value; a non-nil empty slice clears it.
func Merge(current, incoming models.Project) models.Project {
	out := current.Clone()
	in := incoming.Clone()

	if in.ID != "" {
		out.ID = in.ID
	}
	if in.Domain != "" {
		out.Domain = in.Domain
	}
	if in.SelectedEngines != nil {
		out.SelectedEngines = in.SelectedEngines
	}
	if in.Competitors != nil {
		out.Competitors = in.Competitors
	}
	if in.SearchQueries != nil {
		out.SearchQueries = in.SearchQueries
	}
	if !models.IsNullJSON(in.Content) {
		out.Content = in.Content
	}
	if !models.IsNullJSON(in.AnalysisResults) {
		out.AnalysisResults = in.AnalysisResults
	}
	if in.CreatedAt != "" {
		out.CreatedAt = in.CreatedAt
	}
	if in.StatusContentProcessing != "" {
		out.StatusContentProcessing = in.StatusContentProcessing
	}
	if in.StatusCompetitorGeneration != "" {
		out.StatusCompetitorGeneration = in.StatusCompetitorGeneration
	}
	if in.StatusQueryGeneration != "" {
		out.StatusQueryGeneration = in.StatusQueryGeneration
	}
	if in.StatusAnalysis != "" {
		out.StatusAnalysis = in.StatusAnalysis
	}
	return out
}

// Session binds a Store to one session id.
type Session struct {
	store Store
	id    string
}

func ForSession(s Store, sessionID string) *Session {
	return &Session{store: s, id: sessionID}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Snapshot(ctx context.Context) (models.Project, error) {
	return s.store.Get(ctx, s.id)
}

func (s *Session) Replace(ctx context.Context, p models.Project) error {
	return s.store.Replace(ctx, s.id, p)
}

func (s *Session) Clear(ctx context.Context) error {
	return s.store.Clear(ctx, s.id)
}

// Update reads the current record, applies fn and writes the result back
// as one whole-record replace.
func (s *Session) Update(ctx context.Context, fn func(models.Project) models.Project) error {
	current, err := s.store.Get(ctx, s.id)
	if err != nil {
		return err
	}
	return s.store.Replace(ctx, s.id, fn(current))
}
