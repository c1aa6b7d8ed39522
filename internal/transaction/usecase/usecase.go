package usecase

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/idgen"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/product"
	"github.com/fekuna/omnipos-pos-agent/internal/transaction"
	"github.com/fekuna/omnipos-pos-agent/internal/transaction/dto"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type transactionUseCase struct {
	repo     transaction.Repository
	products product.Repository
	ids      *idgen.Generator
	taxRate  decimal.Decimal
	logger   logger.ZapLogger
}

func NewTransactionUseCase(
	repo transaction.Repository,
	products product.Repository,
	ids *idgen.Generator,
	taxRate decimal.Decimal,
	log logger.ZapLogger,
) transaction.UseCase {
	return &transactionUseCase{
		repo:     repo,
		products: products,
		ids:      ids,
		taxRate:  taxRate,
		logger:   log,
	}
}

func (uc *transactionUseCase) Record(ctx context.Context, items []model.LineItem) (*model.Transaction, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", apperr.ErrValidation)
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for %q must be at least 1", apperr.ErrValidation, item.Name)
		}
	}

	t := &model.Transaction{
		ID:         uc.ids.Next(idgen.PrefixTransaction),
		Items:      append([]model.LineItem(nil), items...),
		CreatedAt:  time.Now().UTC(),
		SyncStatus: model.SyncStatusUnsynced,
	}
	t.ComputeTotals(uc.taxRate)

	if err := uc.repo.Create(ctx, t); err != nil {
		uc.logger.Error("failed to record transaction", zap.String("transaction_id", t.ID), zap.Error(err))
		return nil, err
	}
	uc.logger.Info("transaction recorded",
		zap.String("transaction_id", t.ID),
		zap.Int("quantity", t.Quantity),
		zap.String("total", t.Total.StringFixed(2)),
	)
	return t, nil
}

func (uc *transactionUseCase) Checkout(ctx context.Context, lines []dto.CartLine) (*model.Transaction, error) {
	items := make([]model.LineItem, 0, len(lines))
	for _, line := range lines {
		p, err := uc.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, apperr.ErrNotFound)
		}
		if line.Quantity > p.Stock {
			return nil, fmt.Errorf("%w: only %d of %s in stock", apperr.ErrValidation, p.Stock, p.Name)
		}
		items = append(items, model.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  line.Quantity,
		})
	}
	return uc.Record(ctx, items)
}

func (uc *transactionUseCase) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	t, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("transaction %s: %w", id, apperr.ErrNotFound)
	}
	return t, nil
}

func (uc *transactionUseCase) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	txs, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}
	return txs, nil
}

func (uc *transactionUseCase) ListUnsynced(ctx context.Context) ([]model.Transaction, error) {
	return uc.repo.FindUnsynced(ctx)
}

func (uc *transactionUseCase) PendingCount(ctx context.Context) (int, error) {
	unsynced, err := uc.repo.FindUnsynced(ctx)
	if err != nil {
		return 0, err
	}
	return len(unsynced), nil
}

func (uc *transactionUseCase) ExportCSV(ctx context.Context, w io.Writer) error {
	txs, err := uc.ListTransactions(ctx)
	if err != nil {
		return err
	}

	rows := make([]*dto.ExportRow, 0)
	for _, t := range txs {
		for _, item := range t.Items {
			rows = append(rows, &dto.ExportRow{
				Date:          t.CreatedAt.Format(time.RFC3339),
				TransactionID: t.ID,
				Item:          item.Name,
				Quantity:      item.Quantity,
				Price:         item.UnitPrice.StringFixed(2),
				LineTotal:     item.Total().StringFixed(2),
				Synced:        strconv.FormatBool(t.IsSynced()),
			})
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write csv export: %w", err)
	}
	return nil
}

func (uc *transactionUseCase) MarkSynced(ctx context.Context, id, remoteID string) error {
	if strings.TrimSpace(remoteID) == "" {
		return fmt.Errorf("%w: remote id is required", apperr.ErrValidation)
	}
	return uc.repo.MarkSynced(ctx, id, remoteID, time.Now().UTC())
}

func (uc *transactionUseCase) MarkRejected(ctx context.Context, id, reason string) error {
	return uc.repo.MarkRejected(ctx, id, reason)
}
