package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alexwatever/wept/internal/adapter/outbound/state"
	"github.com/alexwatever/wept/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration after defaults, environment overrides and
flags have been applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if used := config.ConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "# loaded from %s\n", used)
		}
		if line := describeStateFile(cfg.Storage); line != "" {
			fmt.Fprintln(out, line)
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		return enc.Close()
	},
}

// describeStateFile reports where the file driver keeps the session and
// whether anything has been written there yet.
func describeStateFile(cfg config.StorageConfig) string {
	if cfg.Driver != "file" && cfg.Driver != "" {
		return ""
	}
	s := state.NewFileKVStore(cfg.Path, nil)
	if !s.Exists() {
		return fmt.Sprintf("# state file %s (not created yet)", s.Path())
	}
	return fmt.Sprintf("# state file %s", s.Path())
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
