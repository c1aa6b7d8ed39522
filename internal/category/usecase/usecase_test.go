package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/category"
	"github.com/fekuna/omnipos-pos-agent/internal/category/dto"
	categoryRepo "github.com/fekuna/omnipos-pos-agent/internal/category/repository"
	"github.com/fekuna/omnipos-pos-agent/internal/idgen"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/product"
	productDto "github.com/fekuna/omnipos-pos-agent/internal/product/dto"
	productRepo "github.com/fekuna/omnipos-pos-agent/internal/product/repository"
	productUsecase "github.com/fekuna/omnipos-pos-agent/internal/product/usecase"
	"github.com/fekuna/omnipos-pos-agent/internal/store"
	"github.com/fekuna/omnipos-pos-agent/internal/store/bolt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store      store.Store
	categories category.UseCase
	products   product.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := bolt.Open(filepath.Join(t.TempDir(), "pos.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ids, err := idgen.New(1)
	require.NoError(t, err)
	products := productRepo.NewStoreRepository(s)
	return &fixture{
		store:      s,
		categories: NewCategoryUseCase(categoryRepo.NewStoreRepository(s), products, ids, logger.NewNop()),
		products:   productUsecase.NewProductUseCase(products, ids, logger.NewNop()),
	}
}

func (f *fixture) addProduct(t *testing.T, name, category string) {
	t.Helper()
	_, err := f.products.AddProduct(context.Background(), &productDto.CreateProductInput{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString("5.00"),
		Stock:    2,
	})
	require.NoError(t, err)
}

func (f *fixture) countIn(t *testing.T, category string) int {
	t.Helper()
	all, err := f.products.ListProducts(context.Background())
	require.NoError(t, err)
	n := 0
	for _, p := range all {
		if p.Category == category {
			n++
		}
	}
	return n
}

func TestAddCategoryDuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: "Coffee", Description: "Hot drinks"})
	require.NoError(t, err)

	_, err = f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: "coffee"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateName)

	_, err = f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: " "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	names, err := f.categories.CategoryNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee"}, names)
}

func TestRenameCascadesToProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: "Coffee"})
	require.NoError(t, err)
	for _, name := range []string{"Latte", "Mocha", "Espresso", "Americano", "Flat White"} {
		f.addProduct(t, name, "Coffee")
	}
	f.addProduct(t, "Earl Grey", "Tea")

	renamed, err := f.categories.RenameCategory(ctx, "coffee", "Hot Coffee")
	require.NoError(t, err)
	assert.Equal(t, "Hot Coffee", renamed.Name)

	assert.Equal(t, 5, f.countIn(t, "Hot Coffee"))
	assert.Zero(t, f.countIn(t, "Coffee"))
	assert.Equal(t, 1, f.countIn(t, "Tea"))

	_, err = f.categories.GetCategoryByName(ctx, "Coffee")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRenameRollsBackOnCorruptProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: "Coffee"})
	require.NoError(t, err)
	for _, name := range []string{"Latte", "Mocha", "Espresso"} {
		f.addProduct(t, name, "Coffee")
	}
	// an unreadable product record aborts the cascade
	require.NoError(t, f.store.Put(ctx, store.PartitionProducts, "prod_~", []byte("{not json")))

	_, err = f.categories.RenameCategory(ctx, "Coffee", "Hot Coffee")
	require.Error(t, err)

	_, err = f.categories.GetCategoryByName(ctx, "Coffee")
	require.NoError(t, err, "category record must keep its old name")

	require.NoError(t, f.store.Delete(ctx, store.PartitionProducts, "prod_~"))
	assert.Equal(t, 3, f.countIn(t, "Coffee"))
	assert.Zero(t, f.countIn(t, "Hot Coffee"))
}

func TestRenameErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: "Coffee"})
	require.NoError(t, err)
	_, err = f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: "Tea"})
	require.NoError(t, err)
	f.addProduct(t, "Latte", "Coffee")

	_, err = f.categories.RenameCategory(ctx, "Coffee", "TEA")
	assert.ErrorIs(t, err, apperr.ErrDuplicateName)
	assert.Equal(t, 1, f.countIn(t, "Coffee"))

	_, err = f.categories.RenameCategory(ctx, "Juice", "Fresh Juice")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// changing only the case of its own name is allowed
	renamed, err := f.categories.RenameCategory(ctx, "Coffee", "COFFEE")
	require.NoError(t, err)
	assert.Equal(t, "COFFEE", renamed.Name)
	assert.Equal(t, 1, f.countIn(t, "COFFEE"))
}

func TestDeleteCategoryInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	coffee, err := f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: "Coffee"})
	require.NoError(t, err)
	_, err = f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: "Seasonal"})
	require.NoError(t, err)
	f.addProduct(t, "Latte", "Coffee")

	err = f.categories.DeleteCategory(ctx, "Coffee")
	assert.ErrorIs(t, err, apperr.ErrCategoryInUse)

	still, err := f.categories.GetCategory(ctx, coffee.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", still.Name)
	assert.Equal(t, 1, f.countIn(t, "Coffee"))

	require.NoError(t, f.categories.DeleteCategory(ctx, "seasonal"))
	assert.ErrorIs(t, f.categories.DeleteCategory(ctx, "Seasonal"), apperr.ErrNotFound)
}

func TestUpdateCategoryDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: "Coffee"})
	require.NoError(t, err)
	assert.Nil(t, c.Description)

	updated, err := f.categories.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: c.ID, Description: "Espresso based"})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Espresso based", *updated.Description)

	_, err = f.categories.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: "cat_missing"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFilterCategoriesReconcilesImplicit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: "Coffee", Description: "Hot drinks"})
	require.NoError(t, err)
	_, err = f.categories.AddCategory(ctx, &dto.CreateCategoryInput{Name: "Pastry"})
	require.NoError(t, err)
	f.addProduct(t, "Latte", "Coffee")
	f.addProduct(t, "Mocha", "Coffee")
	f.addProduct(t, "Earl Grey", "Tea")
	f.addProduct(t, "Gift Card", "")

	summaries, err := f.categories.FilterCategories(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, "Coffee", summaries[0].Name)
	assert.True(t, summaries[0].Explicit)
	assert.Equal(t, 2, summaries[0].ProductCount)
	assert.Equal(t, 4, summaries[0].TotalStock)
	assert.True(t, summaries[0].TotalValue.Equal(decimal.RequireFromString("20")))

	assert.Equal(t, "Pastry", summaries[1].Name)
	assert.True(t, summaries[1].Explicit)
	assert.Zero(t, summaries[1].ProductCount)

	assert.Equal(t, "Tea", summaries[2].Name)
	assert.False(t, summaries[2].Explicit)
	assert.Empty(t, summaries[2].CategoryID)
	assert.Equal(t, 1, summaries[2].ProductCount)
}
