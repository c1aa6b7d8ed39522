package category

import (
	"context"

	"github.com/fekuna/omnipos-pos-agent/internal/category/dto"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
)

type UseCase interface {
	AddCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CategoryNames(ctx context.Context) ([]string, error)
	UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error)
	RenameCategory(ctx context.Context, oldName, newName string) (*model.Category, error)
	DeleteCategory(ctx context.Context, name string) error

	// FilterCategories is the reconciled list used for filtering: explicit
	// records plus every distinct category name found on products.
	FilterCategories(ctx context.Context) ([]model.CategorySummary, error)
}
