package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/fekuna/omnipos-pos-agent/internal/category/dto"
	"github.com/spf13/cobra"
)

func newCategoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage product categories",
	}
	cmd.AddCommand(
		newCategoryAddCmd(opts),
		newCategoryListCmd(opts),
		newCategoryRenameCmd(opts),
		newCategoryDescribeCmd(opts),
		newCategoryDeleteCmd(opts),
	)
	return cmd
}

func newCategoryAddCmd(opts *rootOptions) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				c, err := a.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: args[0], Description: description})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added category %s (%s)\n", c.Name, c.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	return cmd
}

func newCategoryListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories, including ones only used by products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				summaries, err := a.categories.FilterCategories(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tPRODUCTS\tSTOCK\tVALUE\tRECORD")
				for _, s := range summaries {
					record := "-"
					if s.Explicit {
						record = s.CategoryID
					}
					fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", s.Name, s.ProductCount, s.TotalStock, s.TotalValue.StringFixed(2), record)
				}
				return w.Flush()
			})
		},
	}
}

func newCategoryRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old-name> <new-name>",
		Short: "Rename a category and every product filed under it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				c, err := a.categories.RenameCategory(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed category %s to %s\n", args[0], c.Name)
				return nil
			})
		},
	}
}

func newCategoryDescribeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <name> <description>",
		Short: "Set the description of a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				c, err := a.categories.GetCategoryByName(ctx, args[0])
				if err != nil {
					return err
				}
				if _, err := a.categories.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: c.ID, Description: args[1]}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated category %s\n", c.Name)
				return nil
			})
		},
	}
}

func newCategoryDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category that no product uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.categories.DeleteCategory(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
				return nil
			})
		},
	}
}
