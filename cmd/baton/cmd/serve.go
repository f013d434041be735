package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/baton-ai/baton/internal/agents"
	"github.com/baton-ai/baton/internal/api"
	"github.com/baton-ai/baton/internal/compile"
	"github.com/baton-ai/baton/internal/core"
	"github.com/baton-ai/baton/internal/events"
	"github.com/baton-ai/baton/internal/export"
	"github.com/baton-ai/baton/internal/runner"
	"github.com/baton-ai/baton/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the baton API server.

The server exposes workflow CRUD, compilation and export, run driving
and SSE progress streams. Agent clients advance runs through it; the
server never calls an agent itself.

Examples:
  # Start with defaults (127.0.0.1:8843)
  baton serve

  # Bind to all interfaces on a custom port
  baton serve --host 0.0.0.0 --port 3000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "127.0.0.1", "Host address to bind to")
	serveCmd.Flags().IntP("port", "p", 8843, "Port to listen on")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	bus := events.New(100)
	defer bus.Close()

	var storeOpts []store.Option
	if !cfg.Store.SeedExamples {
		storeOpts = append(storeOpts, store.WithoutSeed())
	}
	st, err := store.New(cfg.Store.Dir, bus, logger, storeOpts...)
	if err != nil {
		return fmt.Errorf("opening workflow store: %w", err)
	}

	var history *runner.HistoryStore
	if cfg.History.Enabled {
		history, err = runner.NewHistoryStore(historyPath(cfg))
		if err != nil {
			logger.Warn("run archive unavailable", "error", err)
			history = nil
		} else {
			defer func() { _ = history.Close() }()
			logger.Info("run archive open", "path", history.Path())
		}
	}

	compiler, err := compile.New()
	if err != nil {
		return fmt.Errorf("loading artifact templates: %w", err)
	}

	registry, err := agents.Load(cfg.Agents.Catalog, logger)
	if err != nil {
		logger.Warn("agent catalog rejected, using built-in catalog", "error", err)
		registry = agents.NewRegistry(logger)
	}

	srv := api.NewServer(api.Deps{
		Store:    st,
		Runner:   runner.New(st, bus, history, logger),
		Compiler: compiler,
		Exports:  export.New(cfg.Export.Root, st, compiler, logger),
		Registry: registry,
		Handoffs: core.NewHandoffLog(),
		Bus:      bus,
		History:  history,
	},
		api.WithLogger(logger),
		api.WithVersion(appVersion),
		api.WithCORSOrigins(cfg.Server.CORSOrigins),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Store.Watch {
		g.Go(func() error {
			err := st.Watch(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("store watcher: %w", err)
			}
			return nil
		})
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	g.Go(func() error {
		return srv.ListenAndServe(ctx, addr)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
