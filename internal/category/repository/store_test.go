package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/model"
	productRepo "github.com/fekuna/omnipos-pos-agent/internal/product/repository"
	"github.com/fekuna/omnipos-pos-agent/internal/store"
	"github.com/fekuna/omnipos-pos-agent/internal/store/bolt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

// flakyStore fails the Nth product write made inside Update.
type flakyStore struct {
	store.Store
	failAt int
}

func (s *flakyStore) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.Update(ctx, func(tx store.Tx) error {
		return fn(&flakyTx{Tx: tx, failAt: s.failAt})
	})
}

type flakyTx struct {
	store.Tx
	failAt int
	writes int
}

func (tx *flakyTx) Put(partition, key string, value []byte) error {
	if partition == store.PartitionProducts {
		tx.writes++
		if tx.writes == tx.failAt {
			return errDiskFull
		}
	}
	return tx.Tx.Put(partition, key, value)
}

func TestRenameIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s, err := bolt.Open(filepath.Join(t.TempDir(), "pos.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	products := productRepo.NewStoreRepository(s)
	for _, id := range []string{"prod_1", "prod_2", "prod_3", "prod_4", "prod_5"} {
		require.NoError(t, products.Create(ctx, &model.Product{
			BaseModel: model.BaseModel{ID: id},
			Name:      id,
			Category:  "Coffee",
			Price:     decimal.NewFromInt(1),
		}))
	}
	require.NoError(t, NewStoreRepository(s).Create(ctx, &model.Category{
		BaseModel: model.BaseModel{ID: "cat_1"},
		Name:      "Coffee",
	}))

	repo := NewStoreRepository(&flakyStore{Store: s, failAt: 3})
	_, _, err = repo.Rename(ctx, "cat_1", "Hot Coffee")
	require.ErrorIs(t, err, errDiskFull)

	c, err := repo.FindByID(ctx, "cat_1")
	require.NoError(t, err)
	assert.Equal(t, "Coffee", c.Name)

	all, err := products.FindAll(ctx)
	require.NoError(t, err)
	for _, p := range all {
		assert.Equal(t, "Coffee", p.Category, p.ID)
	}

	renamed, moved, err := NewStoreRepository(s).Rename(ctx, "cat_1", "Hot Coffee")
	require.NoError(t, err)
	assert.Equal(t, "Hot Coffee", renamed.Name)
	assert.Equal(t, 5, moved)
}

func TestDeleteGuardsReferencedCategory(t *testing.T) {
	ctx := context.Background()
	s, err := bolt.Open(filepath.Join(t.TempDir(), "pos.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	repo := NewStoreRepository(s)
	require.NoError(t, repo.Create(ctx, &model.Category{BaseModel: model.BaseModel{ID: "cat_1"}, Name: "Tea"}))
	require.NoError(t, productRepo.NewStoreRepository(s).Create(ctx, &model.Product{
		BaseModel: model.BaseModel{ID: "prod_1"},
		Name:      "Earl Grey",
		Category:  "Tea",
	}))

	err = repo.Delete(ctx, "cat_1")
	require.Error(t, err)

	c, err := repo.FindByID(ctx, "cat_1")
	require.NoError(t, err)
	require.NotNil(t, c)

	found, err := repo.FindByName(ctx, "TEA")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "cat_1", found.ID)
}
