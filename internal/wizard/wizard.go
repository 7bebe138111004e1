package wizard

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"queryosity/internal/store"
	"queryosity/pkg/models"
)

var (
	ErrEmptyDomain    = errors.New("domain required")
	ErrEmptySelection = errors.New("nothing selected")
	ErrInFlight       = errors.New("request already in flight")
	ErrUnknownItem    = errors.New("unknown item")
	ErrNotStarted     = errors.New("analysis not started")
)

// Step is one page of the onboarding flow.
type Step int

const (
	StepLanding Step = iota
	StepEngines
	StepCompetitors
	StepQueries
	StepDashboard
)

func (s Step) String() string {
	switch s {
	case StepLanding:
		return "landing"
	case StepEngines:
		return "engine-selection"
	case StepCompetitors:
		return "competitor-selection"
	case StepQueries:
		return "query-selection"
	case StepDashboard:
		return "dashboard"
	default:
		return "unknown"
	}
}

// Path is the route that renders the step.
func (s Step) Path() string {
	switch s {
	case StepEngines:
		return "/analyze/search-engines"
	case StepCompetitors:
		return "/analyze/competitors"
	case StepQueries:
		return "/analyze/queries"
	case StepDashboard:
		return "/dashboard"
	default:
		return "/"
	}
}

// Transition is a navigation from one step to another carrying the
// accumulated selections.
type Transition struct {
	From    Step
	To      Step
	Payload models.Bundle
}

// ProjectAPI is the part of the data-fetching layer the wizard drives.
type ProjectAPI interface {
	CreateProject(ctx context.Context, domain string) (models.Project, error)
	SetEngines(ctx context.Context, projectID string, engines []models.Engine) (models.Project, error)
	SuggestCompetitors(ctx context.Context, projectID string) ([]string, error)
	SetCompetitors(ctx context.Context, projectID string, competitors []string) (models.Project, error)
	GenerateQueries(ctx context.Context, projectID string) ([]models.SearchQuery, error)
	SetQueries(ctx context.Context, projectID string, queries []models.SearchQuery) (models.Project, error)
	StartAnalysis(ctx context.Context, projectID string, runs int) (models.AnalysisStatus, error)
}

// State is the session's global project record.
type State interface {
	Snapshot(ctx context.Context) (models.Project, error)
	Replace(ctx context.Context, p models.Project) error
	Update(ctx context.Context, fn func(models.Project) models.Project) error
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Deps struct {
	API    ProjectAPI
	State  State
	Notify Notifier
	Logger *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// snapshot reads the project record; a failing store reads as empty.
func (d Deps) snapshot(ctx context.Context) models.Project {
	p, err := d.State.Snapshot(ctx)
	if err != nil {
		d.logger().Warn("read project state", zap.Error(err))
		return models.Project{}
	}
	return p
}

// merge shallow-merges incoming over the current record and writes the
// result back whole.
func (d Deps) merge(ctx context.Context, incoming models.Project) {
	err := d.State.Update(ctx, func(current models.Project) models.Project {
		return store.Merge(current, incoming)
	})
	if err != nil {
		d.logger().Warn("write project state", zap.Error(err))
	}
}

// guard admits one advance action at a time.
type guard struct {
	busy atomic.Bool
}

func (g *guard) begin() bool { return g.busy.CompareAndSwap(false, true) }
func (g *guard) end()        { g.busy.Store(false) }

// InFlight reports whether an advance action is running.
func (g *guard) InFlight() bool { return g.busy.Load() }
