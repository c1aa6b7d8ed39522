package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/category"
	"github.com/fekuna/omnipos-pos-agent/internal/category/dto"
	"github.com/fekuna/omnipos-pos-agent/internal/idgen"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/product"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo     category.Repository
	products product.Repository
	ids      *idgen.Generator
	logger   logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, products product.Repository, ids *idgen.Generator, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:     repo,
		products: products,
		ids:      ids,
		logger:   log,
	}
}

func (uc *categoryUseCase) AddCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperr.ErrValidation)
	}

	now := time.Now().UTC()
	c := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uc.ids.Next(idgen.PrefixCategory),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        name,
		Description: optional(input.Description),
	}

	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.logger.Debug("category added", zap.String("category_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("category %s: %w", id, apperr.ErrNotFound)
	}
	return c, nil
}

func (uc *categoryUseCase) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	c, err := uc.repo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("category %q: %w", name, apperr.ErrNotFound)
	}
	return c, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (uc *categoryUseCase) CategoryNames(ctx context.Context) ([]string, error) {
	categories, err := uc.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	c, err := uc.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	c.Description = optional(input.Description)
	c.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *categoryUseCase) RenameCategory(ctx context.Context, oldName, newName string) (*model.Category, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: category name is required", apperr.ErrValidation)
	}

	current, err := uc.GetCategoryByName(ctx, oldName)
	if err != nil {
		return nil, err
	}

	renamed, moved, err := uc.repo.Rename(ctx, current.ID, newName)
	if err != nil {
		uc.logger.Warn("category rename failed",
			zap.String("from", current.Name),
			zap.String("to", newName),
			zap.Error(err),
		)
		return nil, err
	}
	uc.logger.Info("category renamed",
		zap.String("from", current.Name),
		zap.String("to", renamed.Name),
		zap.Int("products_moved", moved),
	)
	return renamed, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, name string) error {
	c, err := uc.GetCategoryByName(ctx, name)
	if err != nil {
		return err
	}
	return uc.repo.Delete(ctx, c.ID)
}

func (uc *categoryUseCase) FilterCategories(ctx context.Context) ([]model.CategorySummary, error) {
	categories, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	products, err := uc.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*model.CategorySummary)
	for _, c := range categories {
		byName[c.Name] = &model.CategorySummary{
			Name:        c.Name,
			CategoryID:  c.ID,
			Description: c.Description,
			Explicit:    true,
			TotalValue:  decimal.Zero,
		}
	}
	for i := range products {
		p := &products[i]
		if p.Category == "" {
			continue
		}
		s, ok := byName[p.Category]
		if !ok {
			s = &model.CategorySummary{Name: p.Category, TotalValue: decimal.Zero}
			byName[p.Category] = s
		}
		s.ProductCount++
		s.TotalStock += p.Stock
		s.TotalValue = s.TotalValue.Add(p.StockValue())
	}

	summaries := make([]model.CategorySummary, 0, len(byName))
	for _, s := range byName {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
