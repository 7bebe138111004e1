package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queryosity/pkg/models"
)

type recorded struct {
	method, path string
	body         map[string]any
}

func backend(t *testing.T) (*httptest.Server, *[]recorded) {
	t.Helper()
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		reqs = append(reqs, rec)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/projects/":
			_, _ = w.Write([]byte(`{"project_id":"p-9","domain_name":"example.com"}`))
		case "/api/v1/projects/p-9/analysis/generate":
			_, _ = w.Write([]byte(`{"status":"started"}`))
		case "/api/v1/projects/p-9/analysis/results":
			_, _ = w.Write([]byte(`{"score":90,"label":"good"}`))
		default:
			_, _ = w.Write([]byte(`{"project_id":"p-9"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_ProjectFlow(t *testing.T) {
	srv, reqs := backend(t)
	projectFile := filepath.Join(t.TempDir(), "project.json")
	base := []string{"--api", srv.URL, "--api-version", "v1", "--project-file", projectFile}

	out, err := run(t, append(base, "project", "create", "example.com")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"project_id": "p-9"`)

	id, err := readProject(projectFile)
	require.NoError(t, err)
	assert.Equal(t, "p-9", id)

	_, err = run(t, append(base, "engines", "set", "Perplexity", "claude", "perplexity")...)
	require.NoError(t, err)
	last := (*reqs)[len(*reqs)-1]
	assert.Equal(t, http.MethodPut, last.method)
	assert.Equal(t, "/api/v1/projects/p-9/engines", last.path)
	assert.Equal(t, []any{"perplexity", "claude"}, last.body["engines"])

	_, err = run(t, append(base, "analysis", "start")...)
	require.NoError(t, err)
	last = (*reqs)[len(*reqs)-1]
	assert.EqualValues(t, 1, last.body["num_runs_p"])
}

func TestCLI_Validation(t *testing.T) {
	srv, reqs := backend(t)
	base := []string{"--api", srv.URL, "--project-file", filepath.Join(t.TempDir(), "none.json")}

	_, err := run(t, append(base, "competitors", "suggest")...)
	require.ErrorContains(t, err, "no project id")

	_, err = run(t, append(base, "engines", "set", "bing", "--project", "p-9")...)
	require.ErrorContains(t, err, "unknown engine")
	assert.Empty(t, *reqs)
}

func TestCLI_ResultsCSV(t *testing.T) {
	srv, _ := backend(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "results.csv")

	_, err := run(t, "--api", srv.URL, "--api-version", "v1", "--project-file", filepath.Join(dir, "p.json"),
		"results", "fetch", "--project", "p-9", "--from", "2025-04-01", "--to", "2025-04-30", "--out", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"project_id", "start_date", "end_date", "field", "value"},
		{"p-9", "2025-04-01", "2025-04-30", "label", "good"},
		{"p-9", "2025-04-01", "2025-04-30", "score", "90"},
	}, rows)
}

func TestParseQueries(t *testing.T) {
	got, err := parseQueries([]string{"pricing comparison:5", "product features", "Product Features:2", "odd:9", "time: 10:30:1"})
	require.NoError(t, err)
	assert.Equal(t, []models.SearchQuery{
		{Query: "pricing comparison", Importance: 5},
		{Query: "product features", Importance: 3},
		{Query: "odd", Importance: 5},
		{Query: "time: 10:30", Importance: 1},
	}, got)

	_, err = parseQueries([]string{"broken:high"})
	require.Error(t, err)
	_, err = parseQueries([]string{" "})
	require.Error(t, err)
}
