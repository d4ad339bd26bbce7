// Package config provides configuration types for wept.
//
// Configuration comes from an optional wept.yaml file, WEPT_* environment
// variables and the bare BACKEND_HOST / BACKEND_PATH variables used by
// storefront deployments.
package config

import (
	"time"
)

// Backend location used when nothing is configured.
const (
	FallbackBackendHost = "http://localhost:8080"
	FallbackBackendPath = "graphql"
)

// Config is the top-level configuration for wept.
type Config struct {
	// Backend locates the WordPress GraphQL endpoint.
	Backend BackendConfig `yaml:"backend" mapstructure:"backend"`

	// Storage selects where the session token and cart mirror are kept.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Catalog tunes list paging and the read-query cache.
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`

	// Server configures the local JSON API started by "wept serve".
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// DevMode turns on debug logging and tracing to stdout.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// BackendConfig locates the GraphQL endpoint.
type BackendConfig struct {
	// Host is the backend origin, e.g. "https://shop.example.com".
	Host string `yaml:"host" mapstructure:"host" validate:"omitempty,backend_url"`
	// Path is appended to Host with a single slash. Defaults to "graphql".
	Path string `yaml:"path" mapstructure:"path"`
	// Timeout bounds a single request. Defaults to "30s".
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`
	// SessionHeader names the WooCommerce session header.
	// Defaults to "woocommerce-session".
	SessionHeader string `yaml:"session_header" mapstructure:"session_header"`
}

// StorageConfig selects the durable key-value store.
type StorageConfig struct {
	// Driver is one of "file", "sqlite" or "memory". Defaults to "file".
	Driver string `yaml:"driver" mapstructure:"driver" validate:"storage_driver"`
	// Path is the store location for the file and sqlite drivers.
	Path string `yaml:"path" mapstructure:"path"`
}

// CatalogConfig tunes catalog reads.
type CatalogConfig struct {
	PageSize    int `yaml:"page_size" mapstructure:"page_size" validate:"gte=1,lte=100"`
	MaxPageSize int `yaml:"max_page_size" mapstructure:"max_page_size" validate:"gte=1,lte=100,gtefield=PageSize"`
	// CacheTTL is how long read results are reused. "0s" disables the cache.
	CacheTTL  string `yaml:"cache_ttl" mapstructure:"cache_ttl" validate:"omitempty,duration"`
	CacheSize int    `yaml:"cache_size" mapstructure:"cache_size" validate:"gte=0"`
}

// ServerConfig configures the local JSON API.
type ServerConfig struct {
	// HTTPAddr is the listen address. Defaults to "127.0.0.1:8090".
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"hostname_port"`
	// LogLevel is one of debug, info, warn, error. Defaults to "info".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	// Tracing writes spans to stdout.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
	// Metrics writes OpenTelemetry metrics to stdout every MetricsInterval.
	Metrics         bool   `yaml:"metrics" mapstructure:"metrics"`
	MetricsInterval string `yaml:"metrics_interval" mapstructure:"metrics_interval" validate:"omitempty,duration"`
}

// SetDefaults applies default values to unset fields.
func (c *Config) SetDefaults() {
	if c.Backend.Host == "" {
		c.Backend.Host = FallbackBackendHost
	}
	if c.Backend.Path == "" {
		c.Backend.Path = FallbackBackendPath
	}
	if c.Backend.Timeout == "" {
		c.Backend.Timeout = "30s"
	}
	if c.Backend.SessionHeader == "" {
		c.Backend.SessionHeader = "woocommerce-session"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Path == "" && c.Storage.Driver != "memory" {
		c.Storage.Path = DefaultStoragePath(c.Storage.Driver)
	}

	if c.Catalog.PageSize == 0 {
		c.Catalog.PageSize = 10
	}
	if c.Catalog.MaxPageSize == 0 {
		c.Catalog.MaxPageSize = 100
	}
	if c.Catalog.CacheTTL == "" {
		c.Catalog.CacheTTL = "30s"
	}
	if c.Catalog.CacheSize == 0 {
		c.Catalog.CacheSize = 256
	}

	// Localhost only: the API carries the user's cart session.
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8090"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Telemetry.MetricsInterval == "" {
		c.Telemetry.MetricsInterval = "60s"
	}
}

// SetDevDefaults applies development overrides. No-op unless DevMode is set.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	c.Server.LogLevel = "debug"
	c.Telemetry.Tracing = true
}

// BackendTimeout returns the parsed backend timeout, or 30s if unparsable.
func (c *Config) BackendTimeout() time.Duration {
	return parseDuration(c.Backend.Timeout, 30*time.Second)
}

// CacheTTL returns the parsed cache TTL. Zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.Catalog.CacheTTL, 0)
}

// MetricsInterval returns the parsed OpenTelemetry export interval.
func (c *Config) MetricsInterval() time.Duration {
	return parseDuration(c.Telemetry.MetricsInterval, time.Minute)
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}
