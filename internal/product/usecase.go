package product

import (
	"context"

	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/product/dto"
)

type UseCase interface {
	AddProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	// SearchProducts matches query case-insensitively against name, category and description.
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
	// ListCategories returns the distinct category names used by products, sorted.
	ListCategories(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*dto.ProductStats, error)
}
