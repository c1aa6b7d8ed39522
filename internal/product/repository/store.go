package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/store"
)

type StoreRepository struct {
	Store store.Store
}

func NewStoreRepository(s store.Store) *StoreRepository {
	return &StoreRepository{Store: s}
}

func (r *StoreRepository) Create(ctx context.Context, p *model.Product) error {
	return r.put(ctx, p)
}

func (r *StoreRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	data, err := r.Store.Get(ctx, store.PartitionProducts, id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var p model.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	return &p, nil
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	rows, err := r.Store.GetAll(ctx, store.PartitionProducts)
	if err != nil {
		return nil, err
	}
	return DecodeAll(rows)
}

func (r *StoreRepository) Update(ctx context.Context, p *model.Product) error {
	return r.put(ctx, p)
}

func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	return r.Store.Delete(ctx, store.PartitionProducts, id)
}

func (r *StoreRepository) put(ctx context.Context, p *model.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode product %s: %w", p.ID, err)
	}
	return r.Store.Put(ctx, store.PartitionProducts, p.ID, data)
}

// DecodeAll decodes raw product records in scan order.
func DecodeAll(rows [][]byte) ([]model.Product, error) {
	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		var p model.Product
		if err := json.Unmarshal(row, &p); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}
