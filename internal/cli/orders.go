package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shopfront/internal/api"
	"shopfront/pkg/domain"
)

// NewOrdersCommand creates the orders command group.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Review past orders",
	}
	cmd.AddCommand(newOrdersListCommand(rootOpts))
	cmd.AddCommand(newOrdersShowCommand(rootOpts))
	return cmd
}

func newOrdersListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(rootOpts)
			if err != nil {
				return err
			}
			if err := env.RequireAuth(cmd.Context()); err != nil {
				return err
			}
			orders, err := env.Client.ListOrders(cmd.Context())
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return env.printJSON(cmd.OutOrStdout(), orders)
			}
			if len(orders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No orders yet.")
				return nil
			}
			for _, o := range orders {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-10s %2d item(s) %10s  %s\n",
					o.ID, o.Status, len(o.Items), formatPrice(o.TotalAmount),
					o.CreatedAt.Local().Format("2006-01-02"))
			}
			return nil
		},
	}
	return cmd
}

func newOrdersShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(rootOpts)
			if err != nil {
				return err
			}
			if err := env.RequireAuth(cmd.Context()); err != nil {
				return err
			}
			order, err := env.Client.GetOrder(cmd.Context(), args[0])
			if err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("order %q not found", args[0])
				}
				return err
			}
			if rootOpts.Format == "json" {
				return env.printJSON(cmd.OutOrStdout(), order)
			}
			renderOrder(cmd.OutOrStdout(), order)
			return nil
		},
	}
	return cmd
}

func renderOrder(w io.Writer, o domain.Order) {
	fmt.Fprintf(w, "Order %s (%s), placed %s\n", o.ID, o.Status,
		o.CreatedAt.Local().Format("2006-01-02 15:04"))
	for _, item := range o.Items {
		fmt.Fprintf(w, "  %-40s x%-3d %10s\n",
			truncate(item.Product.Title, 40), item.Quantity, formatPrice(item.Price))
	}
	fmt.Fprintf(w, "Total: %s\n", formatPrice(o.TotalAmount))
}
