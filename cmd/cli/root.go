package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"queryosity/internal/apiclient"
	"queryosity/internal/logging"
	"queryosity/pkg/utils"
)

type app struct {
	configPath  string
	apiURL      string
	apiVersion  string
	projectFile string
	verbose     bool

	projects *apiclient.Projects
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "queryosity",
		Short:         "Drive the Queryosity projects API from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&a.apiURL, "api", "", "backend base URL (overrides config and API_URL)")
	pf.StringVar(&a.apiVersion, "api-version", "", "backend API version segment")
	pf.StringVar(&a.projectFile, "project-file", defaultProjectPath(), "file remembering the current project id")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log every request")

	root.AddCommand(
		a.projectCmd(),
		a.enginesCmd(),
		a.competitorsCmd(),
		a.queriesCmd(),
		a.analysisCmd(),
		a.resultsCmd(),
	)
	return root
}

func (a *app) init() error {
	cfg, err := utils.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.URL = a.apiURL
	}
	if a.apiVersion != "" {
		cfg.API.Version = a.apiVersion
	}

	logCfg := utils.LoggingConfig{Level: "warn", Format: "console"}
	if a.verbose {
		logCfg.Level = "debug"
	}
	a.logger, err = logging.New(logCfg)
	if err != nil {
		return err
	}

	adapter, err := apiclient.NewAdapter(cfg.API.URL, cfg.API.Version, apiclient.WithLogger(a.logger))
	if err != nil {
		return err
	}
	a.projects = apiclient.NewProjects(adapter)
	return nil
}

// projectID resolves the --project flag, falling back to the remembered
// project.
func (a *app) projectID(cmd *cobra.Command) (string, error) {
	if id, _ := cmd.Flags().GetString("project"); strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id), nil
	}
	id, err := readProject(a.projectFile)
	if err != nil || id == "" {
		return "", errors.New("no project id: pass --project or run `project create` first")
	}
	return id, nil
}

func addProjectFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("project", "p", "", "project id (defaults to the last created project)")
}
