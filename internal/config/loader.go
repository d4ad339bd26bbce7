package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const appName = "wept"

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for wept.yaml/.yml in standard locations.
// The search requires an explicit YAML extension so the "wept" binary in
// the working directory is never picked up as a config file.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// ReadInConfig then returns ConfigFileNotFoundError, which callers tolerate.
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
	}

	// WEPT_BACKEND_HOST overrides backend.host
	viper.SetEnvPrefix("WEPT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, "."+appName),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, appName))
		}
	} else {
		paths = append(paths, "/etc/"+appName)
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths returns the first wept.yaml or wept.yml found in
// paths, or "".
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, appName+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds every config key for environment variable support.
// BACKEND_HOST and BACKEND_PATH are also accepted without the prefix; the
// prefixed form wins when both are set.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("backend.host", "WEPT_BACKEND_HOST", "BACKEND_HOST")
	_ = viper.BindEnv("backend.path", "WEPT_BACKEND_PATH", "BACKEND_PATH")
	_ = viper.BindEnv("backend.timeout")
	_ = viper.BindEnv("backend.session_header")

	_ = viper.BindEnv("storage.driver")
	_ = viper.BindEnv("storage.path")

	_ = viper.BindEnv("catalog.page_size")
	_ = viper.BindEnv("catalog.max_page_size")
	_ = viper.BindEnv("catalog.cache_ttl")
	_ = viper.BindEnv("catalog.cache_size")

	_ = viper.BindEnv("server.http_addr")
	_ = viper.BindEnv("server.log_level")

	_ = viper.BindEnv("telemetry.tracing")
	_ = viper.BindEnv("telemetry.metrics")
	_ = viper.BindEnv("telemetry.metrics_interval")

	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults and validates the result.
func LoadConfig() (*Config, error) {
	cfg, err := LoadConfigRaw()
	if err != nil {
		return nil, err
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigRaw reads the configuration and applies defaults, but neither
// dev defaults nor validation. Use it when CLI flags may still override
// fields before validation.
func LoadConfigRaw() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No file: environment variables only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path of the loaded config file, or "".
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// DefaultStoragePath returns the default store location for driver under
// the user's home directory.
func DefaultStoragePath(driver string) string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = os.TempDir()
	}
	name := "state.json"
	if driver == "sqlite" {
		name = "state.db"
	}
	return filepath.Join(dir, "."+appName, name)
}
