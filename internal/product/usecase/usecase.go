package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/idgen"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/product"
	"github.com/fekuna/omnipos-pos-agent/internal/product/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type productUseCase struct {
	repo   product.Repository
	ids    *idgen.Generator
	logger logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, ids *idgen.Generator, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		ids:    ids,
		logger: log,
	}
}

func (uc *productUseCase) AddProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", apperr.ErrValidation)
	}

	now := time.Now().UTC()
	p := &model.Product{
		BaseModel: model.BaseModel{
			ID:        uc.ids.Next(idgen.PrefixProduct),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        name,
		Category:    strings.TrimSpace(input.Category),
		Price:       input.Price,
		Stock:       input.Stock,
		Description: optional(input.Description),
		ImageURL:    optional(input.ImageURL),
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		uc.logger.Error("failed to add product", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	uc.logger.Debug("product added", zap.String("product_id", p.ID), zap.String("category", p.Category))
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context) ([]model.Product, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: product name is required", apperr.ErrValidation)
		}
		p.Name = name
	}
	if input.Category != nil {
		p.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.Stock != nil {
		p.Stock = *input.Stock
	}
	if input.Description != nil {
		p.Description = optional(*input.Description)
	}
	if input.ImageURL != nil {
		p.ImageURL = optional(*input.ImageURL)
	}
	p.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil // Already deleted
	}
	// Past transactions keep their own name/price snapshot, nothing to cascade.
	return uc.repo.Delete(ctx, id)
}

func (uc *productUseCase) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	products, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matches := make([]model.Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) ||
			(p.Description != nil && strings.Contains(strings.ToLower(*p.Description), q)) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (uc *productUseCase) ListCategories(ctx context.Context) ([]string, error) {
	products, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		names = append(names, p.Category)
	}
	sort.Strings(names)
	return names, nil
}

func (uc *productUseCase) Stats(ctx context.Context) (*dto.ProductStats, error) {
	products, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.ProductStats{TotalValue: decimal.Zero}
	for i := range products {
		stats.TotalProducts++
		stats.TotalStock += products[i].Stock
		stats.TotalValue = stats.TotalValue.Add(products[i].StockValue())
	}
	return stats, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
