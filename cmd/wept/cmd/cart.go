package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alexwatever/wept/internal/domain/cart"
)

var (
	cartRefresh  bool
	cartQuantity int
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show or change the cart",
	Long: `Show or change the WooCommerce cart.

The session token issued by the store is kept in the session store
(--state), so the same cart is resumed on every invocation. After each
change the cart is fetched again from the store and that snapshot is
printed.

Examples:
  wept cart add 42 --quantity 2
  wept cart update 9f61408e3afb633e50cdf1b20de6f466 --quantity 3
  wept cart remove 9f61408e3afb633e50cdf1b20de6f466
  wept cart show --refresh
  wept cart reset`,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	Long: `Show the last cart snapshot. --refresh fetches it from the store first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			c := a.cart.Cart()
			if cartRefresh {
				var err error
				if c, err = a.cart.Refresh(ctx); err != nil {
					return err
				}
			}
			return printResult(cmd.OutOrStdout(), c)
		})
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add PRODUCT_ID",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		if cartQuantity < 1 {
			return fmt.Errorf("--quantity must be at least 1")
		}
		return runCartAction(cmd, func(ctx context.Context, a *app) (cart.Cart, error) {
			return a.cart.Add(ctx, id, cartQuantity)
		})
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update KEY",
	Short: "Set the quantity of a cart line",
	Long:  `Set the quantity of a cart line. A quantity of 0 removes the line.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cartQuantity < 0 {
			return fmt.Errorf("--quantity must be at least 0")
		}
		return runCartAction(cmd, func(ctx context.Context, a *app) (cart.Cart, error) {
			return a.cart.Update(ctx, args[0], cartQuantity)
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove KEY",
	Short: "Remove a cart line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCartAction(cmd, func(ctx context.Context, a *app) (cart.Cart, error) {
			return a.cart.Remove(ctx, args[0])
		})
	},
}

var cartResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the cart session",
	Long: `Forget the session token and the saved cart. The next change starts a
new cart on the store.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCartAction(cmd, func(ctx context.Context, a *app) (cart.Cart, error) {
			if err := a.cart.Reset(ctx); err != nil {
				return cart.Cart{}, err
			}
			return a.cart.Cart(), nil
		})
	},
}

func runCartAction(cmd *cobra.Command, action func(context.Context, *app) (cart.Cart, error)) error {
	return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
		c, err := action(ctx, a)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), c)
	})
}

func init() {
	cartShowCmd.Flags().BoolVar(&cartRefresh, "refresh", false, "fetch the cart from the store first")
	cartAddCmd.Flags().IntVarP(&cartQuantity, "quantity", "q", 1, "quantity to add")
	cartUpdateCmd.Flags().IntVarP(&cartQuantity, "quantity", "q", 1, "new quantity")

	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartResetCmd)
	rootCmd.AddCommand(cartCmd)
}
