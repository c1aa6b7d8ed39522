package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/idgen"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/product"
	productRepo "github.com/fekuna/omnipos-pos-agent/internal/product/repository"
	"github.com/fekuna/omnipos-pos-agent/internal/store"
	"github.com/fekuna/omnipos-pos-agent/internal/store/bolt"
	"github.com/fekuna/omnipos-pos-agent/internal/transaction"
	"github.com/fekuna/omnipos-pos-agent/internal/transaction/dto"
	"github.com/fekuna/omnipos-pos-agent/internal/transaction/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    store.Store
	products product.Repository
	uc       transaction.UseCase
}

func newFixture(t *testing.T, taxRate string) *fixture {
	t.Helper()
	s, err := bolt.Open(filepath.Join(t.TempDir(), "pos.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ids, err := idgen.New(1)
	require.NoError(t, err)
	products := productRepo.NewStoreRepository(s)
	return &fixture{
		store:    s,
		products: products,
		uc: NewTransactionUseCase(
			repository.NewStoreRepository(s),
			products,
			ids,
			decimal.RequireFromString(taxRate),
			logger.NewNop(),
		),
	}
}

func latte(qty int) model.LineItem {
	return model.LineItem{ProductID: "prod_latte", Name: "Latte", UnitPrice: decimal.RequireFromString("8.50"), Quantity: qty}
}

func TestRecordComputesTotals(t *testing.T) {
	f := newFixture(t, "0.06")
	ctx := context.Background()

	tx, err := f.uc.Record(ctx, []model.LineItem{
		latte(2),
		{ProductID: "prod_muffin", Name: "Muffin", UnitPrice: decimal.RequireFromString("4.25"), Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, model.SyncStatusUnsynced, tx.SyncStatus)
	assert.Nil(t, tx.RemoteID)
	assert.Equal(t, 3, tx.Quantity)
	assert.Equal(t, "21.25", tx.Subtotal.StringFixed(2))
	assert.Equal(t, "1.28", tx.Tax.StringFixed(2))
	assert.Equal(t, "22.53", tx.Total.StringFixed(2))
	assert.NoError(t, tx.VerifyTotal())

	stored, err := f.uc.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(tx.Total))
}

func TestRecordValidation(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()

	_, err := f.uc.Record(ctx, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.uc.Record(ctx, []model.LineItem{latte(0)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	n, err := f.uc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCheckoutSnapshotsProducts(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()

	require.NoError(t, f.products.Create(ctx, &model.Product{
		BaseModel: model.BaseModel{ID: "prod_latte"},
		Name:      "Latte",
		Price:     decimal.RequireFromString("8.50"),
		Stock:     3,
	}))

	tx, err := f.uc.Checkout(ctx, []dto.CartLine{{ProductID: "prod_latte", Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, tx.Items, 1)
	assert.Equal(t, "Latte", tx.Items[0].Name)
	assert.Equal(t, "17.00", tx.Total.StringFixed(2))

	// later price changes do not touch recorded sales
	p, err := f.products.FindByID(ctx, "prod_latte")
	require.NoError(t, err)
	p.Price = decimal.RequireFromString("9.00")
	require.NoError(t, f.products.Update(ctx, p))

	stored, err := f.uc.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "8.50", stored.Items[0].UnitPrice.StringFixed(2))

	_, err = f.uc.Checkout(ctx, []dto.CartLine{{ProductID: "prod_latte", Quantity: 4}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.uc.Checkout(ctx, []dto.CartLine{{ProductID: "prod_gone", Quantity: 1}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMarkSyncedIsIdempotent(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()

	tx, err := f.uc.Record(ctx, []model.LineItem{latte(1)})
	require.NoError(t, err)

	require.NoError(t, f.uc.MarkSynced(ctx, tx.ID, "remote-1"))
	first, err := f.store.Get(ctx, store.PartitionTransactions, tx.ID)
	require.NoError(t, err)

	require.NoError(t, f.uc.MarkSynced(ctx, tx.ID, "remote-2"))
	second, err := f.store.Get(ctx, store.PartitionTransactions, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "second mark must not change the record")

	stored, err := f.uc.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSynced())
	require.NotNil(t, stored.RemoteID)
	assert.Equal(t, "remote-1", *stored.RemoteID)
	assert.NotNil(t, stored.SyncedAt)

	// synced never reverts
	require.NoError(t, f.uc.MarkRejected(ctx, tx.ID, "late rejection"))
	stored, err = f.uc.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsSynced())

	assert.ErrorIs(t, f.uc.MarkSynced(ctx, "txn_missing", "remote-3"), apperr.ErrNotFound)
	assert.ErrorIs(t, f.uc.MarkSynced(ctx, tx.ID, ""), apperr.ErrValidation)
}

func TestListingAndPending(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()

	var ids []string
	for i := 1; i <= 3; i++ {
		tx, err := f.uc.Record(ctx, []model.LineItem{latte(i)})
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}
	require.NoError(t, f.uc.MarkSynced(ctx, ids[0], "remote-1"))
	require.NoError(t, f.uc.MarkRejected(ctx, ids[1], "unknown merchant"))

	unsynced, err := f.uc.ListUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, ids[2], unsynced[0].ID)

	n, err := f.uc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := f.uc.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, model.SyncStatusRejected, all[1].SyncStatus)
	assert.Equal(t, "unknown merchant", all[1].SyncError)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()

	tx, err := f.uc.Record(ctx, []model.LineItem{
		latte(2),
		{ProductID: "prod_muffin", Name: "Muffin", UnitPrice: decimal.RequireFromString("4.25"), Quantity: 1},
	})
	require.NoError(t, err)
	require.NoError(t, f.uc.MarkSynced(ctx, tx.ID, "remote-1"))

	var buf bytes.Buffer
	require.NoError(t, f.uc.ExportCSV(ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"date", "transaction_id", "item", "qty", "price", "line_total", "synced"}, records[0])
	assert.Equal(t, tx.ID, records[1][1])
	assert.Equal(t, []string{"Latte", "2", "8.50", "17.00", "true"}, records[1][2:])
	assert.Equal(t, []string{"Muffin", "1", "4.25", "4.25", "true"}, records[2][2:])
}
