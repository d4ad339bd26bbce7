package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu NAME",
	Short: "Show a navigation menu",
	Long: `Show the items of a named WordPress menu, e.g. "primary" or "footer".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			menu, err := a.menus.GetMenu(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), menu)
		})
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the site's general settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			s, err := a.settings.GetGeneralSettings(ctx)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), s)
		})
	},
}

func init() {
	rootCmd.AddCommand(menuCmd, settingsCmd)
}
