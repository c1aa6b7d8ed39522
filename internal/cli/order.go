package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/transaction/dto"
	"github.com/spf13/cobra"
)

func newOrderCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "order",
		Aliases: []string{"orders"},
		Short:   "Record and inspect sales",
	}
	cmd.AddCommand(
		newOrderCreateCmd(opts),
		newOrderListCmd(opts),
		newOrderShowCmd(opts),
	)
	return cmd
}

func newOrderCreateCmd(opts *rootOptions) *cobra.Command {
	var items []string
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Check out a cart",
		Example: `  pos order create --item prod_123_abc:2 --item prod_456_def:1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := parseCartLines(items)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				tx, err := a.transactions.Checkout(ctx, lines)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Order saved %s total %s\n", tx.ID, tx.Total.StringFixed(2))
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&items, "item", nil, "Cart line as <product-id>:<quantity>; repeatable")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func parseCartLines(items []string) ([]dto.CartLine, error) {
	lines := make([]dto.CartLine, 0, len(items))
	for _, item := range items {
		id, qty, found := strings.Cut(item, ":")
		quantity := 1
		if found {
			n, err := strconv.Atoi(qty)
			if err != nil {
				return nil, fmt.Errorf("invalid quantity in %q", item)
			}
			quantity = n
		}
		lines = append(lines, dto.CartLine{ProductID: id, Quantity: quantity})
	}
	return lines, nil
}

func newOrderListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sales, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				txs, err := a.transactions.ListTransactions(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDATE\tQTY\tTOTAL\tSTATUS")
				for _, tx := range txs {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
						tx.ID, tx.CreatedAt.Local().Format(time.DateTime), tx.Quantity, tx.Total.StringFixed(2), tx.SyncStatus)
				}
				return w.Flush()
			})
		},
	}
}

func newOrderShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one sale with its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				tx, err := a.transactions.GetTransaction(ctx, args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "Order\t%s\n", tx.ID)
				fmt.Fprintf(w, "Date\t%s\n", tx.CreatedAt.Local().Format(time.DateTime))
				fmt.Fprintf(w, "Status\t%s\n", tx.SyncStatus)
				if tx.RemoteID != nil {
					fmt.Fprintf(w, "Remote ID\t%s\n", *tx.RemoteID)
				}
				if tx.SyncError != "" {
					fmt.Fprintf(w, "Sync error\t%s\n", tx.SyncError)
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, "ITEM\tQTY\tPRICE\tTOTAL")
				for _, item := range tx.Items {
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", item.Name, item.Quantity, item.UnitPrice.StringFixed(2), item.Total().StringFixed(2))
				}
				fmt.Fprintf(w, "Subtotal\t\t\t%s\n", tx.Subtotal.StringFixed(2))
				fmt.Fprintf(w, "Tax\t\t\t%s\n", tx.Tax.StringFixed(2))
				fmt.Fprintf(w, "Total\t\t\t%s\n", tx.Total.StringFixed(2))
				return w.Flush()
			})
		},
	}
}
