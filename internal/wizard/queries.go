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

// Mode selects how the query working set is filled.
type Mode string

const (
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"
)

// AnalysisRuns is the run count requested when the wizard finishes.
const AnalysisRuns = 1

// QueryStep holds the query working set of one page visit.
type QueryStep struct {
	guard
	deps Deps

	mu          sync.Mutex
	domain      string
	engines     []models.Engine
	competitors []string
	mode        Mode
	items       []models.QueryItem
}

// OpenQueryStep starts in manual mode, seeded from the project record or
// the three sample queries.
func OpenQueryStep(ctx context.Context, d Deps, nav *models.Bundle) *QueryStep {
	p := d.snapshot(ctx)
	b := Reconcile(StepQueries, nav, p)
	s := &QueryStep{
		deps:        d,
		domain:      b.Domain,
		engines:     b.SelectedEngines,
		competitors: b.SelectedCompetitors,
		mode:        ModeManual,
		items:       seedQueries(p.SearchQueries),
	}
	if len(s.items) == 0 {
		s.items = DefaultQueries()
	}
	return s
}

func seedQueries(in []models.SearchQuery) []models.QueryItem {
	out := make([]models.QueryItem, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, q := range in {
		text := strings.TrimSpace(q.Query)
		key := strings.ToLower(text)
		if text == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.QueryItem{
			ID:         fmt.Sprintf("q%d", len(out)+1),
			Text:       text,
			Importance: models.NormalizeImportance(q.Importance),
		})
	}
	return out
}

func (s *QueryStep) Domain() string            { return s.domain }
func (s *QueryStep) Engines() []models.Engine { return append([]models.Engine(nil), s.engines...) }
func (s *QueryStep) Competitors() []string     { return append([]string(nil), s.competitors...) }

func (s *QueryStep) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches between manual entry and generation. Switching to auto
// generates queries right away when the project has an id; otherwise the
// working set is kept.
func (s *QueryStep) SetMode(ctx context.Context, m Mode) error {
	if m != ModeManual && m != ModeAuto {
		return fmt.Errorf("mode %q: %w", m, ErrUnknownItem)
	}
	s.mu.Lock()
	switched := s.mode != m
	s.mode = m
	s.mu.Unlock()

	if m == ModeAuto && switched && s.deps.snapshot(ctx).HasProjectID() {
		return s.Generate(ctx)
	}
	return nil
}

func (s *QueryStep) Items() []models.QueryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.QueryItem(nil), s.items...)
}

// Generate replaces the working set with backend-generated queries.
func (s *QueryStep) Generate(ctx context.Context) error {
	if !s.begin() {
		return ErrInFlight
	}
	defer s.end()

	p := s.deps.snapshot(ctx)
	if !p.HasProjectID() {
		s.deps.Notify.Error("Project ID not found")
		return apiclient.ErrMissingProjectID
	}

	generated, err := s.deps.API.GenerateQueries(ctx, p.ID)
	switch {
	case errors.Is(err, apiclient.ErrUnexpectedShape):
		return nil
	case err != nil:
		s.deps.logger().Warn("generate queries", zap.String("project", p.ID), zap.Error(err))
		s.deps.Notify.Error("Failed to generate queries")
		return fmt.Errorf("generate queries: %w", err)
	}

	items := seedQueries(generated)
	if len(items) == 0 {
		return nil
	}
	s.mu.Lock()
	s.items = items
	s.mode = ModeAuto
	s.mu.Unlock()
	s.deps.Notify.Success("Queries generated successfully")
	return nil
}

// Add appends a query. Blank text and text already in the working set are
// ignored and reported as false. A zero importance means the default.
func (s *QueryStep) Add(text string, importance int) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.items {
		if strings.EqualFold(q.Text, text) {
			return false
		}
	}
	s.items = append(s.items, models.QueryItem{
		ID:         uuid.NewString(),
		Text:       text,
		Importance: models.NormalizeImportance(importance),
	})
	return true
}

func (s *QueryStep) indexLocked(id string) int {
	for i, q := range s.items {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// SetImportance updates one query, clamping v to [1,5].
func (s *QueryStep) SetImportance(id string, v int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("query %q: %w", id, ErrUnknownItem)
	}
	s.items[i].Importance = models.ClampImportance(v)
	return nil
}

func (s *QueryStep) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("query %q: %w", id, ErrUnknownItem)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Queries returns the working set in the shape the backend expects.
func (s *QueryStep) Queries() []models.SearchQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SearchQuery, len(s.items))
	for i, q := range s.items {
		out[i] = q.SearchQuery()
	}
	return out
}

func (s *QueryStep) CanContinue() bool {
	return !s.InFlight() && len(s.Items()) > 0
}

// Continue saves the queries, then starts one analysis run. The project
// record is only updated and the dashboard only reached once the backend
// reports the run as started.
func (s *QueryStep) Continue(ctx context.Context) (Transition, error) {
	queries := s.Queries()
	if len(queries) == 0 {
		s.deps.Notify.Error("Please add at least one query")
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

	updated, err := s.deps.API.SetQueries(ctx, p.ID, queries)
	shapeless := errors.Is(err, apiclient.ErrUnexpectedShape)
	if err != nil && !shapeless {
		s.deps.logger().Warn("set queries", zap.String("project", p.ID), zap.Error(err))
		s.deps.Notify.Error("Failed to process queries")
		return Transition{}, fmt.Errorf("set queries: %w", err)
	}

	status, err := s.deps.API.StartAnalysis(ctx, p.ID, AnalysisRuns)
	if err != nil {
		s.deps.logger().Warn("start analysis", zap.String("project", p.ID), zap.Error(err))
		s.deps.Notify.Error("Failed to start analysis generation")
		return Transition{}, fmt.Errorf("start analysis: %w", err)
	}
	if !status.Started() {
		s.deps.logger().Warn("start analysis", zap.String("project", p.ID), zap.String("status", status.Status))
		s.deps.Notify.Error("Failed to start analysis generation")
		return Transition{}, ErrNotStarted
	}

	if !shapeless {
		s.deps.merge(ctx, updated)
	}
	s.deps.Notify.Success("Analysis generation started successfully")

	return Transition{
		From: StepQueries,
		To:   StepDashboard,
		Payload: models.Bundle{
			Domain:              s.domain,
			SelectedEngines:     s.Engines(),
			SelectedCompetitors: s.Competitors(),
			Queries:             queries,
		},
	}, nil
}

// Back returns to competitor selection.
func (s *QueryStep) Back() Transition {
	return Transition{
		From: StepQueries,
		To:   StepCompetitors,
		Payload: models.Bundle{
			Domain:          s.domain,
			SelectedEngines: s.Engines(),
		},
	}
}
