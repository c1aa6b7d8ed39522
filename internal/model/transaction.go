package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type SyncStatus string

const (
	SyncStatusUnsynced SyncStatus = "unsynced"
	SyncStatusSynced   SyncStatus = "synced"
	// SyncStatusRejected marks a transaction the remote refused permanently.
	SyncStatusRejected SyncStatus = "rejected"
)

// LineItem snapshots the product name and price at the time of sale.
type LineItem struct {
	ProductID string          `json:"productId" csv:"-"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Transaction struct {
	ID         string          `json:"id"`
	Items      []LineItem      `json:"items"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxRate    decimal.Decimal `json:"taxRate"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"createdAt"`
	SyncStatus SyncStatus      `json:"syncStatus"`
	RemoteID   *string         `json:"remoteId,omitempty"`
	SyncedAt   *time.Time      `json:"syncedAt,omitempty"`
	SyncError  string          `json:"syncError,omitempty"`
}

// ComputeTotals derives quantity, subtotal, tax and total from the line items.
// Tax is rounded to cents.
func (t *Transaction) ComputeTotals(taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	quantity := 0
	for _, item := range t.Items {
		subtotal = subtotal.Add(item.Total())
		quantity += item.Quantity
	}
	t.Quantity = quantity
	t.Subtotal = subtotal
	t.TaxRate = taxRate
	t.Tax = subtotal.Mul(taxRate).Round(2)
	t.Total = subtotal.Add(t.Tax)
}

// VerifyTotal recomputes the totals from the line items and reports a mismatch
// with the stored values.
func (t *Transaction) VerifyTotal() error {
	check := Transaction{Items: t.Items}
	check.ComputeTotals(t.TaxRate)
	if !check.Total.Equal(t.Total) {
		return fmt.Errorf("total %s does not match line items (%s)", t.Total, check.Total)
	}
	if check.Quantity != t.Quantity {
		return fmt.Errorf("quantity %d does not match line items (%d)", t.Quantity, check.Quantity)
	}
	return nil
}

func (t *Transaction) IsSynced() bool {
	return t.SyncStatus == SyncStatusSynced
}
