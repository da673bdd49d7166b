package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wikiracer/wikirace/internal/config"
	"github.com/wikiracer/wikirace/internal/database"
	"github.com/wikiracer/wikirace/internal/server"
	"github.com/wikiracer/wikirace/internal/sixdegrees"
	"github.com/wikiracer/wikirace/internal/wiki"
)

// shutdownGrace is how long in-flight requests get to finish after a
// shutdown signal.
const shutdownGrace = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Wiki Race HTTP API",
		Long: `Serve runs the game API: game lifecycle routes, pairing selection,
sanitized page content, per-player stats, and a websocket live feed.

Player identity comes from bearer tokens configured in the config
file (auth_tokens). Without configured tokens the server runs in
local mode, attributing every game to a single local player.

Examples:
  # Serve on the default port
  wikirace serve

  # Serve on a specific address with verbose logging
  wikirace serve --listen :9000 -v

  # Use a custom configuration file
  wikirace serve -c myconfig.yaml`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr,
		"Address to bind the API server to")
	cmd.Flags().String("db-dir", "",
		"Directory for the SQLite database (default: XDG data directory)")
	addServiceFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping...")
		cancel()
	}()

	return runServe(ctx, cfg, logger)
}

// runServe opens the database, wires the services, and runs the HTTP
// server until the context is cancelled.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}()

	wikiClient := newWikiClient(cfg, logger)
	selector := newSelector(cfg, wikiClient, logger)

	var resolver server.UserResolver
	if len(cfg.AuthTokens) > 0 {
		resolver = server.NewTokenResolver(cfg.AuthTokens)
	} else {
		logger.Warn("no auth tokens configured, running in local single-player mode")
		resolver = server.StaticResolver("local")
	}

	api := server.NewServer(db, wikiClient, selector, resolver,
		server.WithServerLogger(logger),
	)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", "listen", cfg.ListenAddr, "db", cfg.DBDir)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		api.Hub().Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// newWikiClient builds the Wikipedia client from the config.
func newWikiClient(cfg *config.Config, logger *slog.Logger) *wiki.Client {
	return wiki.NewClient(cfg.WikipediaAPI,
		wiki.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		wiki.WithUserAgent(cfg.UserAgent),
		wiki.WithMaxBodySize(cfg.MaxBodySize),
		wiki.WithCache(wiki.NewContentCache(cfg.CacheSize)),
		wiki.WithLogger(logger),
	)
}

// newSelector builds the pairing selector from the config.
func newSelector(cfg *config.Config, wikiClient *wiki.Client, logger *slog.Logger) *sixdegrees.Selector {
	paths := sixdegrees.NewClient(cfg.SixDegreesAPI,
		sixdegrees.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		sixdegrees.WithUserAgent(cfg.UserAgent),
	)

	opts := []sixdegrees.SelectorOption{
		sixdegrees.WithOptions(sixdegrees.Options{
			MaxDegrees:          cfg.MaxDegrees,
			EndAttemptsPerStart: cfg.EndAttemptsPerStart,
			SafetyLimit:         cfg.SafetyLimit,
			ValidatePath:        cfg.ValidatePath,
		}),
		sixdegrees.WithSelectorLogger(logger),
	}
	if cfg.ValidatePath {
		opts = append(opts, sixdegrees.WithLinkChecker(wiki.HasGameLink))
	}

	return sixdegrees.NewSelector(paths,
		wikiClient.RandomPage,
		wikiClient.RandomPage,
		wikiClient.PageContent,
		opts...,
	)
}
