package transaction

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/model"
)

type Repository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	// FindAll returns every transaction, oldest first.
	FindAll(ctx context.Context) ([]model.Transaction, error)
	FindUnsynced(ctx context.Context) ([]model.Transaction, error)
	// MarkSynced patches the sync fields only. It is a no-op on a transaction
	// that is already synced.
	MarkSynced(ctx context.Context, id, remoteID string, at time.Time) error
	MarkRejected(ctx context.Context, id, reason string) error
}
