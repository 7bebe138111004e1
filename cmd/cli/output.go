package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"queryosity/pkg/models"
)

type projectData struct {
	ProjectID string `json:"project_id"`
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// writeResultsCSV writes one row per top-level field of the results
// document; nested values stay JSON encoded.
func writeResultsCSV(path string, res models.AnalysisResults) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fields := map[string]json.RawMessage{}
	if !models.IsNullJSON(res.Data) {
		if err := json.Unmarshal(res.Data, &fields); err != nil {
			fields = map[string]json.RawMessage{"data": res.Data}
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"project_id", "start_date", "end_date", "field", "value"}); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writer.Write([]string{res.ProjectID, res.StartDate, res.EndDate, k, csvValue(fields[k])}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// csvValue unquotes JSON strings and keeps everything else verbatim.
func csvValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func defaultProjectPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.queryosity-project.json"
	}
	return filepath.Join(home, ".queryosity", "project.json")
}

func saveProject(path, id string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(projectData{ProjectID: id}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readProject(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var pd projectData
	if err := json.Unmarshal(data, &pd); err != nil {
		return "", err
	}
	return strings.TrimSpace(pd.ProjectID), nil
}
