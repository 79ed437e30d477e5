package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shopmart/internal/catalog"
	"shopmart/internal/checkout"
	"shopmart/internal/domain"
	"shopmart/internal/validate"
)

type ProductsOptions struct {
	*RootOptions
	Category string
	Sort     string
}

func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		Long: `List products from the catalog API.

Examples:
  shopmart products
  shopmart products --category electronics --sort price-asc
  shopmart products --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			var (
				ps  []domain.Product
				err error
			)
			if opts.Category != "" {
				cat, ok := validate.Category(opts.Category)
				if !ok {
					return fmt.Errorf("invalid category %q", opts.Category)
				}
				ps, err = client.ProductsByCategory(cmd.Context(), cat)
			} else {
				ps, err = client.Products(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("failed to load products: %w", err)
			}
			ps = catalog.Sort(ps, catalog.ParseSortKey(opts.Sort))
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), ps)
			}
			return writeProducts(cmd.OutOrStdout(), ps)
		},
	}
	cmd.Flags().StringVar(&opts.Category, "category", "", "only this category")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "price-asc|price-desc|name-asc|name-desc")
	return cmd
}

func NewCategoriesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "categories",
		Short:         "List catalog categories",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := opts.client().Categories(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), cats)
			}
			for _, c := range cats {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c, catalog.CategoryLabel(c))
			}
			return nil
		},
	}
}

func NewProductCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "product <id>",
		Short:         "Show one product",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := validate.ID(args[0])
			if !ok {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			p, err := opts.client().Product(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load product %d: %w", id, err)
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "#%d %s\n", p.ID, p.Title)
			fmt.Fprintf(w, "Category: %s\n", catalog.CategoryLabel(p.Category))
			fmt.Fprintf(w, "Price:    $%s\n", checkout.Display(p.Price))
			fmt.Fprintf(w, "Rating:   %.1f (%d)\n", p.Rating.Rate, p.Rating.Count)
			fmt.Fprintf(w, "\n%s\n", p.Description)
			return nil
		},
	}
}

func (o *RootOptions) client() *catalog.Client {
	return catalog.NewClient(o.Config.CatalogBaseURL, o.Config.CatalogTimeout)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeProducts(w io.Writer, ps []domain.Product) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRICE\tCATEGORY\tTITLE")
	for _, p := range ps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, checkout.Display(p.Price), p.Category, p.Title)
	}
	return tw.Flush()
}
