package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shopfront/internal/cart"
)

// NewCartCommand creates the cart command group. Every mutating subcommand
// goes through the authorization gate before touching the cart store.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and modify the shopping cart",
	}
	cmd.AddCommand(newCartShowCommand(rootOpts))
	cmd.AddCommand(newCartAddCommand(rootOpts))
	cmd.AddCommand(newCartUpdateCommand(rootOpts))
	cmd.AddCommand(newCartRemoveCommand(rootOpts))
	cmd.AddCommand(newCartClearCommand(rootOpts))
	return cmd
}

func newCartShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current cart and its totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(rootOpts)
			if err != nil {
				return err
			}
			if err := env.RequireAuth(cmd.Context()); err != nil {
				return err
			}
			if err := env.Cart.Fetch(cmd.Context()); err != nil {
				return err
			}
			return renderCart(cmd.OutOrStdout(), env, rootOpts.Format)
		},
	}
	return cmd
}

// CartAddOptions holds flags for cart add.
type CartAddOptions struct {
	*RootOptions
	Quantity int
}

func newCartAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CartAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(opts.RootOptions)
			if err != nil {
				return err
			}
			if err := env.RequireAuth(cmd.Context()); err != nil {
				return err
			}
			if err := env.Cart.Add(cmd.Context(), args[0], opts.Quantity); err != nil {
				return err
			}
			return renderCart(cmd.OutOrStdout(), env, opts.Format)
		},
	}

	cmd.Flags().IntVarP(&opts.Quantity, "quantity", "q", 1, "quantity to add")

	return cmd
}

// CartUpdateOptions holds flags for cart update.
type CartUpdateOptions struct {
	*RootOptions
	Quantity int
}

func newCartUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CartUpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Set a cart line's quantity (0 removes the line)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(opts.RootOptions)
			if err != nil {
				return err
			}
			if err := env.RequireAuth(cmd.Context()); err != nil {
				return err
			}
			if err := env.Cart.UpdateQuantity(cmd.Context(), args[0], opts.Quantity); err != nil {
				return err
			}
			return renderCart(cmd.OutOrStdout(), env, opts.Format)
		},
	}

	cmd.Flags().IntVarP(&opts.Quantity, "quantity", "q", 1, "new quantity")
	_ = cmd.MarkFlagRequired("quantity")

	return cmd
}

func newCartRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(rootOpts)
			if err != nil {
				return err
			}
			if err := env.RequireAuth(cmd.Context()); err != nil {
				return err
			}
			if err := env.Cart.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			return renderCart(cmd.OutOrStdout(), env, rootOpts.Format)
		},
	}
	return cmd
}

func newCartClearCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove everything from the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(rootOpts)
			if err != nil {
				return err
			}
			if err := env.RequireAuth(cmd.Context()); err != nil {
				return err
			}
			if err := env.Cart.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
			return nil
		},
	}
	return cmd
}

func renderCart(w io.Writer, env *Env, format string) error {
	items := env.Cart.Items()
	summary := env.Cart.Summary()

	if format == "json" {
		return env.printJSON(w, map[string]any{
			"items":    items,
			"subtotal": summary.Subtotal,
			"shipping": summary.Shipping,
			"tax":      summary.Tax,
			"total":    summary.Total,
		})
	}

	if len(items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return nil
	}
	for _, item := range items {
		fmt.Fprintf(w, "%-12s %-40s x%-3d %10s\n",
			item.ID, truncate(item.Product.Title, 40), item.Quantity,
			formatPrice(item.Product.Price*float64(item.Quantity)))
	}
	renderSummary(w, summary)
	return nil
}

func renderSummary(w io.Writer, s cart.Summary) {
	fmt.Fprintf(w, "\nSubtotal: %s\n", formatPrice(s.Subtotal))
	if s.FreeShipping() {
		fmt.Fprintln(w, "Shipping: FREE")
	} else {
		fmt.Fprintf(w, "Shipping: %s\n", formatPrice(s.Shipping))
	}
	fmt.Fprintf(w, "Tax:      %s\n", formatPrice(s.Tax))
	fmt.Fprintf(w, "Total:    %s\n", formatPrice(s.Total))
	if gap := s.AmountToFreeShipping(); gap > 0 {
		fmt.Fprintf(w, "Add %s more for free shipping!\n", formatPrice(gap))
	}
}
