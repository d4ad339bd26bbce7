// Package cmd provides the CLI commands for wept.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexwatever/wept/internal/config"
)

var (
	cfgFile      string
	storagePath  string
	outputFormat string
	devMode      bool
)

var rootCmd = &cobra.Command{
	Use:   "wept",
	Short: "wept - WordPress/WooCommerce storefront client",
	Long: `wept reads posts, pages, products and categories from a WordPress
site running WPGraphQL and WooGraphQL, and manages a WooCommerce cart
session that survives restarts.

Quick start:
  1. Point wept at your site: export BACKEND_HOST=https://shop.example.com
  2. Run: wept products list

Configuration:
  Config is loaded from wept.yaml in the current directory, $HOME/.wept/,
  or /etc/wept/.

  Environment variables can override config values with the WEPT_ prefix.
  Example: WEPT_BACKEND_PATH=graphql
  BACKEND_HOST and BACKEND_PATH are also accepted without the prefix.

Commands:
  posts       List or show blog posts
  pages       List or show pages
  products    List, show or search products
  categories  List or show product categories
  menu        Show a navigation menu
  settings    Show the site's general settings
  cart        Show or change the cart
  serve       Serve the storefront as a local JSON API
  config      Show the effective configuration
  version     Print version information`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./wept.yaml)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "state", "", "path of the session store (default: ~/.wept/state.json)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format: json or yaml")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable development mode (debug logging, tracing)")
}

func initConfig() {
	config.InitViper(cfgFile)
}

// loadConfig loads the configuration and applies persistent flags before
// validating it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if devMode {
		cfg.DevMode = true
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
