package cmd

import (
	"context"
	"os/signal"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alexwatever/wept/internal/adapter/inbound/http"
	"github.com/alexwatever/wept/internal/config"
)

var (
	serveAddr    string
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the storefront as a local JSON API",
	Long: `Serve the storefront as a local JSON API.

The API serves one browsing session: the cart session kept in --state.
It listens on server.http_addr (default 127.0.0.1:8090). See /healthz and
/metrics for operational endpoints.

When a config file is in use it is watched, and a changed backend.host or
backend.path is applied without a restart.

Examples:
  wept serve
  wept serve --addr 127.0.0.1:9000 --allow-origin http://localhost:3000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.http_addr)")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allow-origin", nil, "browser origins allowed to call the API")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// stop() restores default signal handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(cmd.Context(), gracefulSignals()...)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	return withApp(ctx, func(ctx context.Context, a *app) error {
		addr := a.cfg.Server.HTTPAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		watchBackendConfig(a)

		srv := http.NewServer(http.Storefront{
			Posts:      a.posts,
			Pages:      a.pages,
			Products:   a.products,
			Categories: a.categories,
			Menus:      a.menus,
			Settings:   a.settings,
			Cart:       a.cart,
		},
			http.WithAddr(addr),
			http.WithAllowedOrigins(serveOrigins),
			http.WithLogger(a.logger),
			http.WithRegistry(a.registry),
			http.WithHealthChecker(http.NewHealthChecker(a.state, a.store, a.cart, Version)),
		)

		a.logger.Info("serving storefront", "addr", addr, "backend", a.state.Endpoint())
		return srv.Start(ctx)
	})
}

// watchBackendConfig re-applies backend.host and backend.path when the
// config file changes. Other settings need a restart.
func watchBackendConfig(a *app) {
	if config.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := config.LoadConfigRaw()
		if err != nil {
			a.logger.Warn("ignoring unreadable config change", "file", e.Name, "error", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			a.logger.Warn("ignoring invalid config change", "file", e.Name, "error", err)
			return
		}
		a.reconfigure(cfg.Backend.Host, cfg.Backend.Path)
	})
	viper.WatchConfig()
}
