package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/product/dto"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newProductCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "product",
		Aliases: []string{"products"},
		Short:   "Manage the local product catalog",
	}
	cmd.AddCommand(
		newProductAddCmd(opts),
		newProductListCmd(opts),
		newProductSearchCmd(opts),
		newProductUpdateCmd(opts),
		newProductDeleteCmd(opts),
		newProductStatsCmd(opts),
	)
	return cmd
}

type productFlags struct {
	name        string
	category    string
	price       string
	stock       int
	description string
	imageURL    string
}

func (f *productFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Product name")
	cmd.Flags().StringVar(&f.category, "category", "", "Category name")
	cmd.Flags().StringVar(&f.price, "price", "0", "Unit price, e.g. 8.50")
	cmd.Flags().IntVar(&f.stock, "stock", 0, "Units in stock")
	cmd.Flags().StringVar(&f.description, "description", "", "Optional description")
	cmd.Flags().StringVar(&f.imageURL, "image", "", "Optional image reference")
}

func newProductAddCmd(opts *rootOptions) *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := decimal.NewFromString(f.price)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", f.price, err)
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.products.AddProduct(ctx, &dto.CreateProductInput{
					Name:        f.name,
					Category:    f.category,
					Price:       price,
					Stock:       f.stock,
					Description: f.description,
					ImageURL:    f.imageURL,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added product %s\n", p.ID)
				return nil
			})
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProductListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				products, err := a.products.ListProducts(ctx)
				if err != nil {
					return err
				}
				printProducts(cmd, products)
				return nil
			})
		},
	}
}

func newProductSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search products by name, category or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				products, err := a.products.SearchProducts(ctx, args[0])
				if err != nil {
					return err
				}
				printProducts(cmd, products)
				return nil
			})
		},
	}
}

func newProductUpdateCmd(opts *rootOptions) *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := &dto.UpdateProductInput{ID: args[0]}
			flags := cmd.Flags()
			if flags.Changed("name") {
				input.Name = &f.name
			}
			if flags.Changed("category") {
				input.Category = &f.category
			}
			if flags.Changed("price") {
				price, err := decimal.NewFromString(f.price)
				if err != nil {
					return fmt.Errorf("invalid price %q: %w", f.price, err)
				}
				input.Price = &price
			}
			if flags.Changed("stock") {
				input.Stock = &f.stock
			}
			if flags.Changed("description") {
				input.Description = &f.description
			}
			if flags.Changed("image") {
				input.ImageURL = &f.imageURL
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.products.UpdateProduct(ctx, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated product %s\n", p.ID)
				return nil
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newProductDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.products.DeleteProduct(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %s\n", args[0])
				return nil
			})
		},
	}
}

func newProductStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show inventory totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				stats, err := a.products.Stats(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Products:    %d\n", stats.TotalProducts)
				fmt.Fprintf(out, "Units:       %d\n", stats.TotalStock)
				fmt.Fprintf(out, "Stock value: %s\n", stats.TotalValue.StringFixed(2))
				return nil
			})
		},
	}
}

func printProducts(cmd *cobra.Command, products []model.Product) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock)
	}
	_ = w.Flush()
}
