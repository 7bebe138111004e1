package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queryosity/pkg/database"
	"queryosity/pkg/models"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "state.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": NewSQLite(db),
	}
}

func sampleProject() models.Project {
	return models.Project{
		ID:              "project:1",
		Domain:          "example.com",
		SelectedEngines: []models.Engine{models.EnginePerplexity},
		Competitors:     []string{"competitor1.com"},
		SearchQueries:   []models.SearchQuery{{Query: "pricing comparison", Importance: 5}},
		StatusAnalysis:  models.StagePending,
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, models.Project{}, got, "unknown session reads as the empty record")

			require.NoError(t, s.Replace(ctx, "s1", sampleProject()))
			got, err = s.Get(ctx, "s1")
			require.NoError(t, err)
			if diff := cmp.Diff(sampleProject(), got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}

			other, err := s.Get(ctx, "s2")
			require.NoError(t, err)
			assert.Empty(t, other.ID, "sessions are isolated")

			require.NoError(t, s.Replace(ctx, "s1", models.Project{Domain: "other.com"}))
			got, err = s.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, models.Project{Domain: "other.com"}, got, "replace never merges")

			assert.NoError(t, s.Ping(ctx))
			assert.ErrorIs(t, s.Replace(ctx, "", sampleProject()), ErrNoSession)
		})
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Clear(ctx, "s1"), "clear on empty session")

			require.NoError(t, s.Replace(ctx, "s1", sampleProject()))
			require.NoError(t, s.Clear(ctx, "s1"))
			require.NoError(t, s.Clear(ctx, "s1"))

			got, err := s.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, models.Project{}, got)
		})
	}
}

func TestMemory_SnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	p := sampleProject()
	require.NoError(t, m.Replace(ctx, "s1", p))
	p.Competitors[0] = "mutated-after-write.com"

	snap, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "competitor1.com", snap.Competitors[0])

	snap.Competitors[0] = "mutated-snapshot.com"
	again, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "competitor1.com", again.Competitors[0])
	assert.Equal(t, 1, m.Len())
}

func TestMerge(t *testing.T) {
	current := sampleProject()
	current.Content = json.RawMessage(`{"pages":3}`)

	incoming := models.Project{
		ID:              "project:1",
		SelectedEngines: []models.Engine{models.EngineClaude, models.EngineGoogle},
		Competitors:     nil,
		SearchQueries:   []models.SearchQuery{},
		Content:         json.RawMessage(`null`),
		StatusAnalysis:  models.StageRunning,
	}

	got := Merge(current, incoming)

	assert.Equal(t, "example.com", got.Domain, "empty string keeps current")
	assert.Equal(t, []models.Engine{models.EngineClaude, models.EngineGoogle}, got.SelectedEngines)
	assert.Equal(t, []string{"competitor1.com"}, got.Competitors, "nil keeps current")
	assert.Empty(t, got.SearchQueries, "explicit empty list clears")
	assert.NotNil(t, got.SearchQueries)
	assert.JSONEq(t, `{"pages":3}`, string(got.Content), "null document keeps current")
	assert.Equal(t, models.StageRunning, got.StatusAnalysis)

	incoming.SelectedEngines[0] = models.EnginePerplexity
	assert.Equal(t, models.EngineClaude, got.SelectedEngines[0], "result shares nothing with incoming")
}

func TestSession_Update(t *testing.T) {
	ctx := context.Background()
	sess := ForSession(NewMemory(), "s1")
	require.NoError(t, sess.Replace(ctx, sampleProject()))

	err := sess.Update(ctx, func(p models.Project) models.Project {
		p.Competitors = append(p.Competitors, "competitor2.com")
		return p
	})
	require.NoError(t, err)

	got, err := sess.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"competitor1.com", "competitor2.com"}, got.Competitors)
	assert.Equal(t, "example.com", got.Domain)

	require.NoError(t, sess.Clear(ctx))
	got, err = sess.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Project{}, got)
	assert.Equal(t, "s1", sess.ID())
}
