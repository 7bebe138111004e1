package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"queryosity/internal/apiclient"
	"queryosity/pkg/models"
)

// EngineStep holds the engine selection working set of one page visit.
type EngineStep struct {
	guard
	deps Deps

	mu       sync.Mutex
	domain   string
	selected map[models.Engine]bool
}

// OpenEngineStep starts an engine selection from the navigation payload
// and the session's project record.
func OpenEngineStep(ctx context.Context, d Deps, nav *models.Bundle) *EngineStep {
	b := Reconcile(StepEngines, nav, d.snapshot(ctx))
	engines := b.SelectedEngines
	if len(engines) == 0 {
		engines = DefaultEngines
	}

	s := &EngineStep{deps: d, domain: b.Domain, selected: make(map[models.Engine]bool)}
	for _, e := range engines {
		if _, ok := models.LookupEngine(e); ok {
			s.selected[e] = true
		}
	}
	return s
}

func (s *EngineStep) Domain() string { return s.domain }

// Toggle flips the membership of one catalog engine.
func (s *EngineStep) Toggle(id models.Engine) error {
	if _, ok := models.LookupEngine(id); !ok {
		return fmt.Errorf("engine %q: %w", id, ErrUnknownItem)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
	return nil
}

// Selected lists the chosen engines in catalog order.
func (s *EngineStep) Selected() []models.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Engine, 0, len(s.selected))
	for _, e := range models.EngineCatalog {
		if s.selected[e.ID] {
			out = append(out, e.ID)
		}
	}
	return out
}

func (s *EngineStep) CanContinue() bool {
	return !s.InFlight() && len(s.Selected()) > 0
}

// Continue persists the selection and moves on to competitor selection.
// On failure the step keeps its selection and no transition is returned.
func (s *EngineStep) Continue(ctx context.Context) (Transition, error) {
	engines := s.Selected()
	if len(engines) == 0 {
		s.deps.Notify.Error("Please select at least one search engine")
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

	updated, err := s.deps.API.SetEngines(ctx, p.ID, engines)
	switch {
	case errors.Is(err, apiclient.ErrUnexpectedShape):
		s.deps.logger().Debug("set engines: unexpected response, state unchanged")
	case err != nil:
		s.deps.logger().Warn("set engines", zap.String("project", p.ID), zap.Error(err))
		s.deps.Notify.Error("Failed to update search engines")
		return Transition{}, fmt.Errorf("set engines: %w", err)
	default:
		s.deps.merge(ctx, updated)
	}
	s.deps.Notify.Success("Search engines updated successfully")

	return Transition{
		From:    StepEngines,
		To:      StepCompetitors,
		Payload: models.Bundle{Domain: s.domain, SelectedEngines: engines},
	}, nil
}

// Back returns to the landing page.
func (s *EngineStep) Back() Transition {
	return Transition{From: StepEngines, To: StepLanding}
}
