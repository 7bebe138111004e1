package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"queryosity/internal/apiclient"
	"queryosity/pkg/models"
)

// CompetitorStep holds the competitor working set of one page visit.
type CompetitorStep struct {
	guard
	deps Deps

	mu      sync.Mutex
	domain  string
	engines []models.Engine
	items   []models.Competitor
}

// OpenCompetitorStep seeds the working set from the project record, then
// from backend suggestions when a project exists, then from the samples.
func OpenCompetitorStep(ctx context.Context, d Deps, nav *models.Bundle) *CompetitorStep {
	p := d.snapshot(ctx)
	b := Reconcile(StepCompetitors, nav, p)
	s := &CompetitorStep{deps: d, domain: b.Domain, engines: b.SelectedEngines}

	switch {
	case len(p.Competitors) > 0:
		s.items = seedCompetitors(p.Competitors)
	case p.HasProjectID():
		s.items = s.suggest(ctx, p.ID)
	}
	if len(s.items) == 0 {
		s.items = DefaultCompetitors()
	}
	return s
}

func (s *CompetitorStep) suggest(ctx context.Context, projectID string) []models.Competitor {
	names, err := s.deps.API.SuggestCompetitors(ctx, projectID)
	switch {
	case errors.Is(err, apiclient.ErrUnexpectedShape):
		return nil
	case err != nil:
		s.deps.logger().Warn("suggest competitors", zap.String("project", projectID), zap.Error(err))
		s.deps.Notify.Error("Failed to fetch competitors data")
		return nil
	}
	items := seedCompetitors(names)
	if len(items) > 0 {
		s.deps.Notify.Success("Suggested competitors loaded successfully")
	}
	return items
}

// seedCompetitors turns names into a fully selected working set, dropping
// blanks and duplicates.
func seedCompetitors(names []string) []models.Competitor {
	out := make([]models.Competitor, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.Competitor{ID: fmt.Sprintf("comp%d", len(out)+1), Name: n, Selected: true})
	}
	return out
}

func (s *CompetitorStep) Domain() string            { return s.domain }
func (s *CompetitorStep) Engines() []models.Engine { return append([]models.Engine(nil), s.engines...) }

// Items returns a copy of the working set.
func (s *CompetitorStep) Items() []models.Competitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Competitor(nil), s.items...)
}

// Filter returns the entries whose name contains q, ignoring case.
func (s *CompetitorStep) Filter(q string) []models.Competitor {
	q = strings.ToLower(strings.TrimSpace(q))
	items := s.Items()
	if q == "" {
		return items
	}
	out := items[:0]
	for _, c := range items {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

func (s *CompetitorStep) indexLocked(id string) int {
	for i, c := range s.items {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *CompetitorStep) Toggle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("competitor %q: %w", id, ErrUnknownItem)
	}
	s.items[i].Selected = !s.items[i].Selected
	return nil
}

func (s *CompetitorStep) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("competitor %q: %w", id, ErrUnknownItem)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Add appends a selected competitor. Blank names and names already in the
// working set are ignored and reported as false.
func (s *CompetitorStep) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.items {
		if strings.EqualFold(c.Name, name) {
			return false
		}
	}
	s.items = append(s.items, models.Competitor{ID: uuid.NewString(), Name: name, Selected: true})
	return true
}

// Selected lists the names of the selected competitors in working-set order.
func (s *CompetitorStep) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.items {
		if c.Selected {
			out = append(out, c.Name)
		}
	}
	return out
}

func (s *CompetitorStep) CanContinue() bool {
	return !s.InFlight() && len(s.Selected()) > 0
}

// Continue persists the selected competitors and moves on to query
// selection.
func (s *CompetitorStep) Continue(ctx context.Context) (Transition, error) {
	names := s.Selected()
	if len(names) == 0 {
		s.deps.Notify.Error("Please select at least one competitor")
		return Transition{}, ErrEmptySelection
	}
	if !s.begin() {
		return Transition{}, ErrInFlight
	}
	defer s.end()

	p := s.deps.snapshot(ctx)
	if !p.HasProjectID() {
		s.deps.Notify.Error("Project ID not found")
		return Transition{}, apiclient.ErrMissingProjectID
	}

	updated, err := s.deps.API.SetCompetitors(ctx, p.ID, names)
	switch {
	case errors.Is(err, apiclient.ErrUnexpectedShape):
		s.deps.logger().Debug("set competitors: unexpected response, state unchanged")
	case err != nil:
		s.deps.logger().Warn("set competitors", zap.String("project", p.ID), zap.Error(err))
		s.deps.Notify.Error("Failed to update competitors")
		return Transition{}, fmt.Errorf("set competitors: %w", err)
	default:
		s.deps.merge(ctx, updated)
	}
	s.deps.Notify.Success("Competitors updated successfully")

	return Transition{
		From: StepCompetitors,
		To:   StepQueries,
		Payload: models.Bundle{
			Domain:              s.domain,
			SelectedEngines:     s.Engines(),
			SelectedCompetitors: names,
		},
	}, nil
}

// Back returns to engine selection with the payload it was opened with.
func (s *CompetitorStep) Back() Transition {
	return Transition{
		From:    StepCompetitors,
		To:      StepEngines,
		Payload: models.Bundle{Domain: s.domain, SelectedEngines: s.Engines()},
	}
}
