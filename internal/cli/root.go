// Package cli holds the shopmart command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shopmart/internal/config"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	Format string // "text" | "json"
	Config config.Config
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shopmart",
		Short: "shopMart storefront",
		Long:  "A storefront over a remote product catalog: browse, cart and simulated checkout.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			base := opts.Config.CatalogBaseURL
			opts.Config = config.Load()
			if base != "" {
				opts.Config.CatalogBaseURL = base
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config.CatalogBaseURL, "catalog", "", "catalog API base URL (overrides CATALOG_BASE_URL)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))
	cmd.AddCommand(NewProductCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
