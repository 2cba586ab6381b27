package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shipperizer/internal/config"
	"shipperizer/internal/domain"
	"shipperizer/internal/handler"
	"shipperizer/internal/hub"
	"shipperizer/internal/layout"
	"shipperizer/internal/logging"
	"shipperizer/internal/metrics"
	"shipperizer/internal/repository/sqlite"
	"shipperizer/internal/roster"
	"shipperizer/internal/service"
)

// Viewport used to arrange a freshly seeded roster before any client has
// reported its canvas size
const (
	seedWidth  = 1280
	seedHeight = 800
)

type serveOptions struct {
	addr   string
	dbPath string
	webDir string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the graph API and event stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := root.loadConfig()
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Server.Addr = opts.addr
			}
			if opts.dbPath != "" {
				cfg.Database.Path = opts.dbPath
			}

			logger, closeLog, err := logging.New(cfg.Log, root.verbose)
			if err != nil {
				return err
			}
			defer closeLog()

			if path != "" {
				logger.Info("config loaded", zap.String("path", path))
			}
			return runServe(cmd.Context(), cfg, opts.webDir, logger)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides config)")
	cmd.Flags().StringVar(&opts.webDir, "web", "", "directory of static front-end files to serve at /")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, webDir string, logger *zap.Logger) error {
	logger.Info("starting shipperizer", zap.String("version", version))

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	logger.Info("database opened", zap.String("path", cfg.Database.Path))

	collector := metrics.NewCollector("shipperizer")
	bus := service.NewEventBus()
	session := service.NewGraphSession(bus,
		service.WithLogger(logger.Named("session")),
		service.WithRecorder(collector),
		service.WithHistoryLimit(cfg.History.Limit),
	)
	autosaver := service.NewAutosaver(session, repo, bus, logger.Named("autosave"))
	loader := roster.NewLoader(cfg.Roster.Manifest, cfg.Roster.ImageDir, logger.Named("roster"))

	restored, err := autosaver.Restore(ctx)
	if err != nil {
		logger.Warn("ignoring unreadable autosave", zap.Error(err))
	}
	if !restored {
		if err := seedRoster(session, loader, cfg.Layout); err != nil {
			return fmt.Errorf("seed roster: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	spawn := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(runCtx)
		}()
	}

	sse := hub.New(logger.Named("hub")).WithInitial(func() interface{} {
		return service.Event{Type: service.EventGraphChanged, Payload: session.State()}
	})
	spawn(sse.Run)
	spawn(func(ctx context.Context) { sse.Relay(ctx, bus) })
	spawn(autosaver.Run)

	if cfg.Roster.Watch {
		watcher := roster.NewWatcher(loader, func(entities []domain.Entity) {
			changed, err := session.PerformCommand(service.SyncRoster{Entities: entities})
			if err != nil {
				logger.Error("roster sync failed", zap.Error(err))
				return
			}
			logger.Info("roster synced", zap.Bool("changed", changed))
		}, logger.Named("roster")).WithDebounce(cfg.Roster.Debounce.Duration())
		spawn(func(ctx context.Context) {
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("roster watcher stopped", zap.Error(err))
			}
		})
	}

	h := handler.NewGraphHandler(session, autosaver, handler.LayoutDefaults{
		Padding: cfg.Layout.Padding,
		Mobile:  cfg.Layout.Mobile,
	}, logger.Named("http"))

	routerCfg := handler.RouterConfig{
		Events:         sse,
		MetricsHandler: collector.Handler(),
		Observer:       collector,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if webDir != "" {
		routerCfg.Static = http.FileServer(http.Dir(webDir))
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.NewRouter(h, routerCfg, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		cancel()
		wg.Wait()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer stop()

	// Closing the hub first ends open event streams so Shutdown does not
	// wait on them
	cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	wg.Wait()

	logger.Info("server stopped")
	return nil
}

// seedRoster fills an empty session with the roster laid out on a circle.
// The seeded graph is the starting point, so it carries no undo history.
func seedRoster(session *service.GraphSession, loader *roster.Loader, defaults config.LayoutConfig) error {
	entities := loader.Entities()

	nodes := make([]layout.Node, len(entities))
	for i, e := range entities {
		nodes[i] = layout.Node{ID: e.ID, Position: e.Position}
	}
	center := domain.Position{X: seedWidth / 2, Y: seedHeight / 2}
	placements := layout.Circular(nodes, layout.Viewport{
		Width:    seedWidth,
		Height:   seedHeight,
		NodeSize: layout.NodeSize(seedWidth, seedHeight, defaults.Mobile),
		Padding:  defaults.Padding,
		Center:   &center,
	})
	positions := make(map[string]domain.Position, len(placements))
	for _, p := range placements {
		positions[p.ID] = p.Position
	}
	for i := range entities {
		entities[i].Position = positions[entities[i].ID]
	}

	snap := domain.NewSnapshot()
	snap.Entities = entities
	return session.Reset(snap)
}
