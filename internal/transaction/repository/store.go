package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/store"
)

type StoreRepository struct {
	Store store.Store
}

func NewStoreRepository(s store.Store) *StoreRepository {
	return &StoreRepository{Store: s}
}

func (r *StoreRepository) Create(ctx context.Context, t *model.Transaction) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode transaction %s: %w", t.ID, err)
	}
	return r.Store.Put(ctx, store.PartitionTransactions, t.ID, data)
}

func (r *StoreRepository) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	data, err := r.Store.Get(ctx, store.PartitionTransactions, id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return decode(data)
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]model.Transaction, error) {
	rows, err := r.Store.GetAll(ctx, store.PartitionTransactions)
	if err != nil {
		return nil, err
	}

	txs := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := decode(row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})
	return txs, nil
}

func (r *StoreRepository) FindUnsynced(ctx context.Context) ([]model.Transaction, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	unsynced := make([]model.Transaction, 0)
	for _, t := range all {
		if t.SyncStatus == model.SyncStatusUnsynced {
			unsynced = append(unsynced, t)
		}
	}
	return unsynced, nil
}

func (r *StoreRepository) MarkSynced(ctx context.Context, id, remoteID string, at time.Time) error {
	return r.patch(ctx, id, func(t *model.Transaction) bool {
		if t.IsSynced() {
			return false
		}
		t.SyncStatus = model.SyncStatusSynced
		t.RemoteID = &remoteID
		t.SyncedAt = &at
		t.SyncError = ""
		return true
	})
}

func (r *StoreRepository) MarkRejected(ctx context.Context, id, reason string) error {
	return r.patch(ctx, id, func(t *model.Transaction) bool {
		// synced is terminal
		if t.IsSynced() {
			return false
		}
		t.SyncStatus = model.SyncStatusRejected
		t.SyncError = reason
		return true
	})
}

// patch re-reads the stored record inside one store transaction so only the
// fields touched by fn change.
func (r *StoreRepository) patch(ctx context.Context, id string, fn func(t *model.Transaction) bool) error {
	return r.Store.Update(ctx, func(tx store.Tx) error {
		data, err := tx.Get(store.PartitionTransactions, id)
		if err != nil {
			return err
		}
		if data == nil {
			return fmt.Errorf("transaction %s: %w", id, apperr.ErrNotFound)
		}
		t, err := decode(data)
		if err != nil {
			return err
		}
		if !fn(t) {
			return nil
		}
		out, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode transaction %s: %w", id, err)
		}
		return tx.Put(store.PartitionTransactions, id, out)
	})
}

func decode(data []byte) (*model.Transaction, error) {
	var t model.Transaction
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return &t, nil
}
