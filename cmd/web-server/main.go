package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"queryosity/internal/apiclient"
	"queryosity/internal/dashboard"
	"queryosity/internal/health"
	"queryosity/internal/logging"
	"queryosity/internal/notify"
	"queryosity/internal/session"
	"queryosity/internal/store"
	"queryosity/internal/web"
	"queryosity/pkg/database"
	"queryosity/pkg/utils"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "web-server",
		Short:         "Serve the Queryosity onboarding front-end",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := utils.LoadConfig(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", os.Getenv("QUERYOSITY_CONFIG"), "path to a YAML config file")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "web-server:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg utils.Config) error {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.UsesDevSecret() {
		logger.Warn("using the built-in session secret; set QUERYOSITY_SESSION_SECRET in production")
	}

	st, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	adapter, err := apiclient.NewAdapter(cfg.API.URL, cfg.API.Version, apiclient.WithLogger(logger.Named("api")))
	if err != nil {
		return err
	}
	projects := apiclient.NewProjects(adapter)

	keys, err := session.DeriveKeys(cfg.Session.Secret)
	if err != nil {
		return err
	}
	tokens := session.TokenService{Secret: keys.Cookie, Issuer: cfg.Session.Issuer, Duration: cfg.Session.TTL}
	nav := session.NavCodec{Secret: keys.Navigation, Issuer: cfg.Session.Issuer, Duration: cfg.Session.TTL}

	samples, err := dashboard.DefaultSamples()
	if err != nil {
		return err
	}

	hub := notify.NewHub()
	center := notify.NewCenter(hub)

	srv := web.NewServer(projects, st, nav, center, samples, logger)
	router := srv.Router(web.Options{
		Tokens:     tokens,
		CookieName: cfg.Session.CookieName,
		Hub:        hub,
		Health:     &health.Handler{Store: st, Hub: hub, Backend: adapter.BaseURL(), Driver: cfg.Store.Driver},
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr), zap.String("backend", adapter.BaseURL()))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.HTTP.GRPCAddr != "" {
		grpcSrv := health.NewGRPCServer(logger.Named("grpc"))
		g.Go(func() error { return grpcSrv.Serve(gctx, cfg.HTTP.GRPCAddr) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")
		hub.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("servers stopped")
	return err
}

// openStore builds the configured project-state backend.
func openStore(cfg utils.StoreConfig) (store.Store, func(), error) {
	if cfg.Driver != "sqlite" {
		return store.NewMemory(), func() {}, nil
	}

	dbCfg := database.Config{Path: cfg.Path}
	if err := database.EnsureDataDir(dbCfg); err != nil {
		return nil, nil, err
	}
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db migrate failed: %w", err)
	}
	return store.NewSQLite(db), func() { closeDB(db) }, nil
}

func closeDB(db *sql.DB) { _ = db.Close() }
