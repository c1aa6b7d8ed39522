package transaction

import (
	"context"
	"io"

	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/transaction/dto"
)

type UseCase interface {
	// Record stores a new transaction as unsynced. Line items must already
	// carry their name and price snapshots.
	Record(ctx context.Context, items []model.LineItem) (*model.Transaction, error)
	// Checkout snapshots the current products named by the cart and records them.
	Checkout(ctx context.Context, lines []dto.CartLine) (*model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	// ListTransactions returns the newest transaction first.
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	ListUnsynced(ctx context.Context) ([]model.Transaction, error)
	PendingCount(ctx context.Context) (int, error)
	ExportCSV(ctx context.Context, w io.Writer) error

	MarkSynced(ctx context.Context, id, remoteID string) error
	MarkRejected(ctx context.Context, id, reason string) error
}
