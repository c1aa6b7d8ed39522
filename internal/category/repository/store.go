package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	productRepo "github.com/fekuna/omnipos-pos-agent/internal/product/repository"
	"github.com/fekuna/omnipos-pos-agent/internal/store"
)

type StoreRepository struct {
	Store store.Store
}

func NewStoreRepository(s store.Store) *StoreRepository {
	return &StoreRepository{Store: s}
}

func (r *StoreRepository) Create(ctx context.Context, c *model.Category) error {
	return r.Store.Update(ctx, func(tx store.Tx) error {
		categories, err := loadAll(tx)
		if err != nil {
			return err
		}
		if taken := findByName(categories, c.Name); taken != nil {
			return fmt.Errorf("category %q: %w", c.Name, apperr.ErrDuplicateName)
		}
		return put(tx, c)
	})
}

func (r *StoreRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	data, err := r.Store.Get(ctx, store.PartitionCategories, id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var c model.Category
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode category %s: %w", id, err)
	}
	return &c, nil
}

func (r *StoreRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	categories, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return findByName(categories, name), nil
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	rows, err := r.Store.GetAll(ctx, store.PartitionCategories)
	if err != nil {
		return nil, err
	}
	return decodeAll(rows)
}

func (r *StoreRepository) Update(ctx context.Context, c *model.Category) error {
	return r.Store.Update(ctx, func(tx store.Tx) error {
		return put(tx, c)
	})
}

func (r *StoreRepository) Rename(ctx context.Context, id, newName string) (*model.Category, int, error) {
	var (
		renamed *model.Category
		moved   int
	)
	err := r.Store.Update(ctx, func(tx store.Tx) error {
		categories, err := loadAll(tx)
		if err != nil {
			return err
		}
		current := findByID(categories, id)
		if current == nil {
			return fmt.Errorf("category %s: %w", id, apperr.ErrNotFound)
		}
		if taken := findByName(categories, newName); taken != nil && taken.ID != id {
			return fmt.Errorf("category %q: %w", newName, apperr.ErrDuplicateName)
		}

		rows, err := tx.GetAll(store.PartitionProducts)
		if err != nil {
			return err
		}
		products, err := productRepo.DecodeAll(rows)
		if err != nil {
			return fmt.Errorf("rename %q aborted: %w", current.Name, err)
		}

		now := time.Now().UTC()
		oldName := current.Name
		for i := range products {
			p := &products[i]
			if p.Category != oldName {
				continue
			}
			p.Category = newName
			p.UpdatedAt = now
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("rename %q aborted: failed to encode product %s: %w", oldName, p.ID, err)
			}
			if err := tx.Put(store.PartitionProducts, p.ID, data); err != nil {
				return fmt.Errorf("rename %q aborted: %w", oldName, err)
			}
			moved++
		}

		current.Name = newName
		current.UpdatedAt = now
		renamed = current
		return put(tx, current)
	})
	if err != nil {
		return nil, 0, err
	}
	return renamed, moved, nil
}

func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	return r.Store.Update(ctx, func(tx store.Tx) error {
		data, err := tx.Get(store.PartitionCategories, id)
		if err != nil {
			return err
		}
		if data == nil {
			return fmt.Errorf("category %s: %w", id, apperr.ErrNotFound)
		}
		var c model.Category
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("failed to decode category %s: %w", id, err)
		}

		rows, err := tx.GetAll(store.PartitionProducts)
		if err != nil {
			return err
		}
		products, err := productRepo.DecodeAll(rows)
		if err != nil {
			return err
		}
		inUse := 0
		for _, p := range products {
			if p.Category == c.Name {
				inUse++
			}
		}
		if inUse > 0 {
			return fmt.Errorf("category %q has %d products: %w", c.Name, inUse, apperr.ErrCategoryInUse)
		}
		return tx.Delete(store.PartitionCategories, id)
	})
}

func loadAll(tx store.Tx) ([]model.Category, error) {
	rows, err := tx.GetAll(store.PartitionCategories)
	if err != nil {
		return nil, err
	}
	return decodeAll(rows)
}

func decodeAll(rows [][]byte) ([]model.Category, error) {
	categories := make([]model.Category, 0, len(rows))
	for _, row := range rows {
		var c model.Category
		if err := json.Unmarshal(row, &c); err != nil {
			return nil, fmt.Errorf("failed to decode category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func put(tx store.Tx, c *model.Category) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode category %s: %w", c.ID, err)
	}
	return tx.Put(store.PartitionCategories, c.ID, data)
}

func findByID(categories []model.Category, id string) *model.Category {
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}
	return nil
}

func findByName(categories []model.Category, name string) *model.Category {
	for i := range categories {
		if strings.EqualFold(categories[i].Name, name) {
			return &categories[i]
		}
	}
	return nil
}
