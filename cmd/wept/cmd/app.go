package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	"github.com/alexwatever/wept/internal/adapter/outbound/graphql"
	"github.com/alexwatever/wept/internal/adapter/outbound/memory"
	"github.com/alexwatever/wept/internal/adapter/outbound/sqlite"
	"github.com/alexwatever/wept/internal/adapter/outbound/state"
	"github.com/alexwatever/wept/internal/config"
	"github.com/alexwatever/wept/internal/port/outbound"
	"github.com/alexwatever/wept/internal/service"
	"github.com/alexwatever/wept/internal/telemetry"
)

// app holds the wired storefront for one command invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	store  outbound.KVStore
	state  *service.StateStore
	client graphql.Client
	cache  *graphql.CachingExecutor

	posts      *service.PostController
	pages      *service.PageController
	products   *service.ProductController
	categories *service.CategoryController
	menus      *service.NavigationController
	settings   *service.SettingsController
	cart       *service.CartService

	shutdownTelemetry func(context.Context) error
}

// newLogger builds the stderr logger. DevMode always forces debug.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openStore opens the durable store selected by cfg.Storage.
func openStore(cfg config.StorageConfig, logger *slog.Logger) (outbound.KVStore, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewKVStore(), nil
	case "sqlite":
		s, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, nil
	case "file", "":
		return state.NewFileKVStore(cfg.Path, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// newApp wires every component the commands use. The order matters:
// telemetry must be installed before the cache creates its instruments.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	shutdown, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:     "wept",
		ServiceVersion:  Version,
		Tracing:         cfg.Telemetry.Tracing,
		Metrics:         cfg.Telemetry.Metrics,
		MetricsInterval: cfg.MetricsInterval(),
		Writer:          os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	a.shutdownTelemetry = shutdown

	a.store, err = openStore(cfg.Storage, logger)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.state = service.DefaultState()
	a.state.Configure(cfg.Backend.Host, cfg.Backend.Path)

	a.client = graphql.NewClient(a.state,
		graphql.WithTimeout(cfg.BackendTimeout()),
		graphql.WithSessionHeader(cfg.Backend.SessionHeader),
		graphql.WithMetrics(graphql.NewMetrics(a.registry)),
		graphql.WithTracerProvider(otel.GetTracerProvider()),
		graphql.WithLogger(logger),
	)
	a.cache = graphql.NewCachingExecutor(a.client, cfg.CacheTTL(), cfg.Catalog.CacheSize,
		graphql.WithCacheEndpoint(a.state),
	)

	opts := []service.ControllerOption{
		service.WithPageSize(cfg.Catalog.PageSize, cfg.Catalog.MaxPageSize),
		service.WithControllerLogger(logger),
	}
	a.posts = service.NewPostController(a.cache, opts...)
	a.pages = service.NewPageController(a.cache, opts...)
	a.products = service.NewProductController(a.cache, opts...)
	a.categories = service.NewCategoryController(a.cache, opts...)
	a.menus = service.NewNavigationController(a.cache, opts...)
	a.settings = service.NewSettingsController(a.cache, opts...)

	// The cart bypasses the cache: it always reflects the server.
	cartCtrl := service.NewCartController(ctx, a.client, a.store, logger)
	a.cart = service.NewCartService(cartCtrl, a.state, a.store, logger)
	if err := a.cart.Restore(ctx); err != nil {
		logger.Warn("failed to restore cart", "error", err)
	}

	logger.Debug("storefront wired",
		"endpoint", a.state.Endpoint(),
		"storage", cfg.Storage.Driver,
		"cache_ttl", cfg.CacheTTL(),
	)
	return a, nil
}

// reconfigure applies a changed backend location and drops the old
// backend's cached entries.
func (a *app) reconfigure(host, path string) {
	if host == a.state.BackendHost() && path == a.state.BackendPath() {
		return
	}
	a.state.Configure(host, path)
	a.cache.Invalidate()
	a.logger.Info("backend reconfigured", "endpoint", a.state.Endpoint())
}

// Close releases the store and flushes telemetry.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
		}
	}
	return errors.Join(errs...)
}

// withApp loads config, wires the app, runs fn and tears everything down.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Debug("loaded config", "file", configFile)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.WithoutCancel(ctx)); cerr != nil {
			logger.Warn("shutdown incomplete", "error", cerr)
		}
	}()
	return fn(ctx, a)
}
