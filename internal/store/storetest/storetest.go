// Package storetest is a conformance suite every Local Store backend runs.
package storetest

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-pos-agent/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Opener opens (or reopens) the backend stored at path.
type Opener func(t *testing.T, path string) store.Store

func Run(t *testing.T, open Opener) {
	t.Run("put get overwrite delete", func(t *testing.T) { testCRUD(t, open) })
	t.Run("get all and clear", func(t *testing.T) { testGetAllClear(t, open) })
	t.Run("unknown partition", func(t *testing.T) { testUnknownPartition(t, open) })
	t.Run("update is atomic", func(t *testing.T) { testUpdateAtomic(t, open) })
	t.Run("durable across reopen", func(t *testing.T) { testReopen(t, open) })
	t.Run("concurrent writers", func(t *testing.T) { testConcurrentWriters(t, open) })
}

func newStore(t *testing.T, open Opener) (store.Store, string) {
	path := filepath.Join(t.TempDir(), "pos.db")
	s := open(t, path)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func testCRUD(t *testing.T, open Opener) {
	ctx := context.Background()
	s, _ := newStore(t, open)

	v, err := s.Get(ctx, store.PartitionProducts, "prod_1")
	require.NoError(t, err)
	assert.Nil(t, v, "absent key")

	require.NoError(t, s.Put(ctx, store.PartitionProducts, "prod_1", []byte(`{"name":"Latte"}`)))
	require.NoError(t, s.Put(ctx, store.PartitionProducts, "prod_1", []byte(`{"name":"Mocha"}`)))

	v, err = s.Get(ctx, store.PartitionProducts, "prod_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Mocha"}`, string(v))

	// partitions are independent key spaces
	v, err = s.Get(ctx, store.PartitionCategories, "prod_1")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Delete(ctx, store.PartitionProducts, "prod_1"))
	require.NoError(t, s.Delete(ctx, store.PartitionProducts, "prod_1"), "deleting twice is fine")
	v, err = s.Get(ctx, store.PartitionProducts, "prod_1")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func testGetAllClear(t *testing.T, open Opener) {
	ctx := context.Background()
	s, _ := newStore(t, open)

	for _, k := range []string{"txn_3", "txn_1", "txn_2"} {
		require.NoError(t, s.Put(ctx, store.PartitionTransactions, k, []byte(k)))
	}
	require.NoError(t, s.Put(ctx, store.PartitionProducts, "prod_1", []byte("p")))

	all, err := s.GetAll(ctx, store.PartitionTransactions)
	require.NoError(t, err)
	got := make([]string, 0, len(all))
	for _, v := range all {
		got = append(got, string(v))
	}
	sort.Strings(got)
	assert.Equal(t, []string{"txn_1", "txn_2", "txn_3"}, got)

	require.NoError(t, s.Clear(ctx, store.PartitionTransactions))
	all, err = s.GetAll(ctx, store.PartitionTransactions)
	require.NoError(t, err)
	assert.Empty(t, all)

	products, err := s.GetAll(ctx, store.PartitionProducts)
	require.NoError(t, err)
	assert.Len(t, products, 1, "clear only touches its own partition")

	require.NoError(t, s.Put(ctx, store.PartitionTransactions, "txn_4", []byte("x")), "cleared partition stays usable")
}

func testUnknownPartition(t *testing.T, open Opener) {
	ctx := context.Background()
	s, _ := newStore(t, open)

	assert.ErrorIs(t, s.Put(ctx, "settings", "k", []byte("v")), store.ErrUnknownPartition)
	_, err := s.Get(ctx, "settings", "k")
	assert.ErrorIs(t, err, store.ErrUnknownPartition)
	_, err = s.GetAll(ctx, "settings")
	assert.ErrorIs(t, err, store.ErrUnknownPartition)
	assert.ErrorIs(t, s.Clear(ctx, "settings"), store.ErrUnknownPartition)
}

func testUpdateAtomic(t *testing.T, open Opener) {
	ctx := context.Background()
	s, _ := newStore(t, open)
	require.NoError(t, s.Put(ctx, store.PartitionCategories, "cat_1", []byte("Coffee")))

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.Put(store.PartitionCategories, "cat_1", []byte("Hot Coffee")); err != nil {
			return err
		}
		if err := tx.Put(store.PartitionProducts, "prod_1", []byte("p")); err != nil {
			return err
		}
		v, err := tx.Get(store.PartitionCategories, "cat_1")
		if err != nil {
			return err
		}
		assert.Equal(t, "Hot Coffee", string(v), "writes are visible inside the transaction")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := s.Get(ctx, store.PartitionCategories, "cat_1")
	require.NoError(t, err)
	assert.Equal(t, "Coffee", string(v), "rolled back")
	v, err = s.Get(ctx, store.PartitionProducts, "prod_1")
	require.NoError(t, err)
	assert.Nil(t, v, "rolled back")

	err = s.Update(ctx, func(tx store.Tx) error {
		if err := tx.Put(store.PartitionCategories, "cat_1", []byte("Hot Coffee")); err != nil {
			return err
		}
		return tx.Put(store.PartitionProducts, "prod_1", []byte("p"))
	})
	require.NoError(t, err)
	all, err := s.GetAll(ctx, store.PartitionProducts)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testReopen(t *testing.T, open Opener) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pos.db")

	s := open(t, path)
	require.NoError(t, s.Put(ctx, store.PartitionTransactions, "txn_1", []byte("kept")))
	require.NoError(t, s.Close())

	s = open(t, path)
	defer s.Close()
	v, err := s.Get(ctx, store.PartitionTransactions, "txn_1")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(v))
}

func testConcurrentWriters(t *testing.T, open Opener) {
	ctx := context.Background()
	s, _ := newStore(t, open)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			assert.NoError(t, s.Put(ctx, store.PartitionProducts, key, []byte(key)))
		}(i)
	}
	wg.Wait()

	all, err := s.GetAll(ctx, store.PartitionProducts)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
