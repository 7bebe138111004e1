package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"queryosity/internal/apiclient"
	"queryosity/pkg/models"
)

func (a *app) projectCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "project", Short: "Manage projects"}
	cmd.AddCommand(&cobra.Command{
		Use:   "create <domain>",
		Short: "Create a project for a domain and remember its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := strings.TrimSpace(args[0])
			if domain == "" {
				return fmt.Errorf("domain required")
			}
			p, err := a.projects.CreateProject(cmd.Context(), domain)
			if err != nil {
				return fmt.Errorf("create project: %w", err)
			}
			if p.HasProjectID() {
				if err := saveProject(a.projectFile, p.ID); err != nil {
					return fmt.Errorf("remember project: %w", err)
				}
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	})
	return cmd
}

func (a *app) enginesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "engines", Short: "Select search engines"}
	set := &cobra.Command{
		Use:   "set <engine>...",
		Short: "Replace the project's engines (perplexity, chatgpt, google, claude)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.projectID(cmd)
			if err != nil {
				return err
			}
			engines, err := parseEngines(args)
			if err != nil {
				return err
			}
			p, err := a.projects.SetEngines(cmd.Context(), id, engines)
			if err != nil {
				return fmt.Errorf("set engines: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	addProjectFlag(set)
	cmd.AddCommand(set)
	return cmd
}

func (a *app) competitorsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "competitors", Short: "Suggest and select competitors"}

	suggest := &cobra.Command{
		Use:   "suggest",
		Short: "Ask the backend for competitor suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.projectID(cmd)
			if err != nil {
				return err
			}
			names, err := a.projects.SuggestCompetitors(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("suggest competitors: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), names)
		},
	}

	set := &cobra.Command{
		Use:   "set <domain>...",
		Short: "Replace the project's competitors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.projectID(cmd)
			if err != nil {
				return err
			}
			p, err := a.projects.SetCompetitors(cmd.Context(), id, dedupe(args))
			if err != nil {
				return fmt.Errorf("set competitors: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	addProjectFlag(suggest)
	addProjectFlag(set)
	cmd.AddCommand(suggest, set)
	return cmd
}

func (a *app) queriesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "queries", Short: "Generate and select search queries"}

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Ask the backend to generate queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.projectID(cmd)
			if err != nil {
				return err
			}
			qs, err := a.projects.GenerateQueries(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("generate queries: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), qs)
		},
	}

	set := &cobra.Command{
		Use:   "set <query[:importance]>...",
		Short: "Replace the project's queries; importance is 1-5 and defaults to 3",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.projectID(cmd)
			if err != nil {
				return err
			}
			qs, err := parseQueries(args)
			if err != nil {
				return err
			}
			p, err := a.projects.SetQueries(cmd.Context(), id, qs)
			if err != nil {
				return fmt.Errorf("set queries: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	addProjectFlag(generate)
	addProjectFlag(set)
	cmd.AddCommand(generate, set)
	return cmd
}

func (a *app) analysisCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "analysis", Short: "Run analyses"}
	var runs int
	start := &cobra.Command{
		Use:   "start",
		Short: "Start analysis generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.projectID(cmd)
			if err != nil {
				return err
			}
			status, err := a.projects.StartAnalysis(cmd.Context(), id, runs)
			if err != nil {
				return fmt.Errorf("start analysis: %w", err)
			}
			if err := printJSON(cmd.OutOrStdout(), status); err != nil {
				return err
			}
			if !status.Started() {
				return fmt.Errorf("analysis not started: status %q", status.Status)
			}
			return nil
		},
	}
	start.Flags().IntVar(&runs, "runs", 1, "number of analysis runs")
	addProjectFlag(start)
	cmd.AddCommand(start)
	return cmd
}

func (a *app) resultsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "results", Short: "Read analysis results"}
	var from, to, out string
	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch results for a date range (default: last 30 days)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.projectID(cmd)
			if err != nil {
				return err
			}
			end := time.Now()
			if to != "" {
				if end, err = time.Parse(apiclient.DateLayout, to); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}
			begin := end.AddDate(0, 0, -30)
			if from != "" {
				if begin, err = time.Parse(apiclient.DateLayout, from); err != nil {
					return fmt.Errorf("--from: %w", err)
				}
			}

			res, err := a.projects.FetchResults(cmd.Context(), id, begin, end)
			if err != nil {
				return fmt.Errorf("fetch results: %w", err)
			}

			switch strings.ToLower(filepath.Ext(out)) {
			case "":
				return printJSON(cmd.OutOrStdout(), res)
			case ".csv":
				err = writeResultsCSV(out, res)
			default:
				err = writeJSON(out, res)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	fetch.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	fetch.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	fetch.Flags().StringVarP(&out, "out", "o", "", "write to a .json or .csv file instead of stdout")
	addProjectFlag(fetch)
	cmd.AddCommand(fetch)
	return cmd
}

func parseEngines(args []string) ([]models.Engine, error) {
	var out []models.Engine
	for _, arg := range args {
		e := models.Engine(strings.ToLower(strings.TrimSpace(arg)))
		if _, ok := models.LookupEngine(e); !ok {
			return nil, fmt.Errorf("unknown engine %q", arg)
		}
		if !models.ContainsEngine(out, e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// parseQueries reads "text" or "text:importance" arguments.
func parseQueries(args []string) ([]models.SearchQuery, error) {
	var out []models.SearchQuery
	seen := map[string]bool{}
	for _, arg := range args {
		text, importance := arg, 0
		if i := strings.LastIndex(arg, ":"); i >= 0 {
			n, err := strconv.Atoi(strings.TrimSpace(arg[i+1:]))
			if err != nil {
				return nil, fmt.Errorf("query %q: importance must be a number", arg)
			}
			text, importance = arg[:i], n
		}
		text = strings.TrimSpace(text)
		if text == "" || seen[strings.ToLower(text)] {
			continue
		}
		seen[strings.ToLower(text)] = true
		out = append(out, models.SearchQuery{Query: text, Importance: models.NormalizeImportance(importance)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one query required")
	}
	return out, nil
}

func dedupe(names []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[strings.ToLower(n)] {
			continue
		}
		seen[strings.ToLower(n)] = true
		out = append(out, n)
	}
	return out
}
