package wizard

import (
	"context"
	"sync"
	"testing"

	"queryosity/internal/store"
	"queryosity/pkg/models"
)

// fakeAPI answers every call with the inputs echoed back unless a hook
// overrides it.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	createErr  error
	enginesErr error
	suggest    []string
	suggestErr error
	compErr    error
	generated  []models.SearchQuery
	genErr     error
	queriesErr error
	status     string
	startErr   error

	onSetEngines func()
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) CreateProject(_ context.Context, domain string) (models.Project, error) {
	f.record("create")
	if f.createErr != nil {
		return models.Project{}, f.createErr
	}
	return models.Project{ID: "p-1", Domain: domain, StatusContentProcessing: models.StagePending}, nil
}

func (f *fakeAPI) SetEngines(_ context.Context, id string, engines []models.Engine) (models.Project, error) {
	f.record("engines")
	if f.onSetEngines != nil {
		f.onSetEngines()
	}
	if f.enginesErr != nil {
		return models.Project{}, f.enginesErr
	}
	return models.Project{ID: id, SelectedEngines: engines}, nil
}

func (f *fakeAPI) SuggestCompetitors(context.Context, string) ([]string, error) {
	f.record("suggest")
	return f.suggest, f.suggestErr
}

func (f *fakeAPI) SetCompetitors(_ context.Context, id string, names []string) (models.Project, error) {
	f.record("competitors")
	if f.compErr != nil {
		return models.Project{}, f.compErr
	}
	return models.Project{ID: id, Competitors: names}, nil
}

func (f *fakeAPI) GenerateQueries(context.Context, string) ([]models.SearchQuery, error) {
	f.record("generate")
	return f.generated, f.genErr
}

func (f *fakeAPI) SetQueries(_ context.Context, id string, qs []models.SearchQuery) (models.Project, error) {
	f.record("queries")
	if f.queriesErr != nil {
		return models.Project{}, f.queriesErr
	}
	return models.Project{ID: id, SearchQueries: qs}, nil
}

func (f *fakeAPI) StartAnalysis(context.Context, string, int) (models.AnalysisStatus, error) {
	f.record("start")
	if f.startErr != nil {
		return models.AnalysisStatus{}, f.startErr
	}
	status := f.status
	if status == "" {
		status = models.AnalysisStarted
	}
	return models.AnalysisStatus{Status: status}, nil
}

type note struct {
	level string
	msg   string
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *fakeNotifier) Success(msg string) { n.add("success", msg) }
func (n *fakeNotifier) Error(msg string)   { n.add("error", msg) }

func (n *fakeNotifier) add(level, msg string) {
	n.mu.Lock()
	n.notes = append(n.notes, note{level, msg})
	n.mu.Unlock()
}

func (n *fakeNotifier) all() []note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]note(nil), n.notes...)
}

func (n *fakeNotifier) errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, x := range n.notes {
		if x.level == "error" {
			out = append(out, x.msg)
		}
	}
	return out
}

type fixture struct {
	api   *fakeAPI
	state *store.Session
	notes *fakeNotifier
	deps  Deps
}

func newFixture(t *testing.T, initial models.Project) *fixture {
	t.Helper()
	f := &fixture{
		api:   &fakeAPI{},
		state: store.ForSession(store.NewMemory(), "s1"),
		notes: &fakeNotifier{},
	}
	if err := f.state.Replace(context.Background(), initial); err != nil {
		t.Fatal(err)
	}
	f.deps = Deps{API: f.api, State: f.state, Notify: f.notes}
	return f
}

func (f *fixture) project(t *testing.T) models.Project {
	t.Helper()
	p, err := f.state.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return p
}
