package category

import (
	"context"

	"github.com/fekuna/omnipos-pos-agent/internal/model"
)

// Repository persists explicit category records. Create, Rename and Delete
// check their preconditions and write in one store transaction.
type Repository interface {
	// Create fails with apperr.ErrDuplicateName when the name is taken, ignoring case.
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	FindAll(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	// Rename rewrites the category and every product filed under its old
	// name together. It returns the number of products moved.
	Rename(ctx context.Context, id, newName string) (*model.Category, int, error)
	// Delete fails with apperr.ErrCategoryInUse while any product references the category.
	Delete(ctx context.Context, id string) error
}
