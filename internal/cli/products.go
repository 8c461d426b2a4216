package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shopfront/internal/api"
	"shopfront/pkg/domain"
)

// ProductsOptions holds flags for the products list command.
type ProductsOptions struct {
	*RootOptions
	Category string
	Sort     string
	Search   string
}

// NewProductsCommand creates the products command group.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog",
	}
	cmd.AddCommand(newProductsListCommand(rootOpts))
	cmd.AddCommand(newProductsShowCommand(rootOpts))
	return cmd
}

func newProductsListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, filterable by category, sort order, and search",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(opts.RootOptions)
			if err != nil {
				return err
			}
			products, err := env.Client.ListProducts(cmd.Context(), api.ProductQuery{
				CategoryID: opts.Category,
				Sort:       opts.Sort,
				Search:     opts.Search,
			})
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return env.printJSON(cmd.OutOrStdout(), products)
			}
			renderProductList(cmd.OutOrStdout(), products)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "filter by category id")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort order (newest|price_asc|price_desc|rating)")
	cmd.Flags().StringVar(&opts.Search, "search", "", "search term")

	return cmd
}

func newProductsShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <product-id>",
		Short: "Show one product and its related products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(rootOpts)
			if err != nil {
				return err
			}

			// The product and its related list are independent reads.
			var (
				product domain.Product
				related []domain.Product
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				product, err = env.Client.GetProduct(ctx, args[0])
				return err
			})
			g.Go(func() error {
				var err error
				related, err = env.Client.RelatedProducts(ctx, args[0])
				return err
			})
			if err := g.Wait(); err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("product %q not found", args[0])
				}
				return err
			}

			if rootOpts.Format == "json" {
				return env.printJSON(cmd.OutOrStdout(), map[string]any{
					"product": product,
					"related": related,
				})
			}
			renderProduct(cmd.OutOrStdout(), product)
			if len(related) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "\nRelated products:")
				renderProductList(cmd.OutOrStdout(), related)
			}
			return nil
		},
	}
	return cmd
}

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(rootOpts)
			if err != nil {
				return err
			}
			categories, err := env.Client.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return env.printJSON(cmd.OutOrStdout(), categories)
			}
			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", c.ID, c.Name)
			}
			return nil
		},
	}
	return cmd
}

func renderProductList(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	for _, p := range products {
		stock := ""
		if p.Stock == 0 {
			stock = "  (out of stock)"
		}
		fmt.Fprintf(w, "%-12s %-40s %10s%s\n", p.ID, truncate(p.Title, 40), formatPrice(p.Price), stock)
	}
}

func renderProduct(w io.Writer, p domain.Product) {
	fmt.Fprintf(w, "%s\n", p.Title)
	fmt.Fprintf(w, "Price: %s", formatPrice(p.Price))
	if p.Discount > 0 && p.OriginalPrice > 0 {
		fmt.Fprintf(w, "  (was %s, %d%% off)", formatPrice(p.OriginalPrice), p.Discount)
	}
	fmt.Fprintln(w)
	if p.Category != nil {
		fmt.Fprintf(w, "Category: %s\n", p.Category.Name)
	}
	if p.SKU != "" {
		fmt.Fprintf(w, "SKU: %s\n", p.SKU)
	}
	fmt.Fprintf(w, "Stock: %d\n", p.Stock)
	if p.Rating > 0 {
		fmt.Fprintf(w, "Rating: %.1f\n", p.Rating)
	}
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-1]) + "…"
}
