package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shopfront/pkg/domain"
)

// CheckoutOptions holds the shipping and payment fields collected at
// checkout. They are sent with the order request; the server prices the
// order from its own cart state.
type CheckoutOptions struct {
	*RootOptions
	FullName   string
	Address    string
	City       string
	PostalCode string
	Country    string
	Phone      string
	Payment    string
	Notes      string
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order from the current cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(opts.RootOptions)
			if err != nil {
				return err
			}
			if err := env.RequireAuth(cmd.Context()); err != nil {
				return err
			}
			if err := env.Cart.Fetch(cmd.Context()); err != nil {
				return err
			}
			if env.Cart.ItemCount() == 0 {
				return errors.New("Your cart is empty")
			}

			renderSummary(cmd.OutOrStdout(), env.Cart.Summary())

			order, err := env.Client.Checkout(cmd.Context(), domain.CheckoutRequest{
				Shipping: domain.ShippingDetails{
					FullName:   opts.FullName,
					Address:    opts.Address,
					City:       opts.City,
					PostalCode: opts.PostalCode,
					Country:    opts.Country,
					Phone:      opts.Phone,
				},
				Payment: domain.PaymentDetails{
					Method: opts.Payment,
					Notes:  opts.Notes,
				},
			})
			if err != nil {
				env.Logger.Warn("checkout failed", "error", err)
				return errors.New("Checkout failed. Please try again.")
			}

			if opts.Format == "json" {
				return env.printJSON(cmd.OutOrStdout(), order)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nOrder %s placed (%s), total %s.\n",
				order.ID, order.Status, formatPrice(order.TotalAmount))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.FullName, "name", "", "recipient full name (required)")
	cmd.Flags().StringVar(&opts.Address, "address", "", "street address (required)")
	cmd.Flags().StringVar(&opts.City, "city", "", "city (required)")
	cmd.Flags().StringVar(&opts.PostalCode, "postal-code", "", "postal code (required)")
	cmd.Flags().StringVar(&opts.Country, "country", "", "country (required)")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&opts.Payment, "payment", "card", "payment method")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "delivery notes")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("city")
	_ = cmd.MarkFlagRequired("postal-code")
	_ = cmd.MarkFlagRequired("country")

	return cmd
}
