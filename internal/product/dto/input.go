package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Description string
	ImageURL    string
}

// UpdateProductInput carries a partial update: nil fields are left unchanged.
type UpdateProductInput struct {
	ID          string
	Name        *string
	Category    *string
	Price       *decimal.Decimal
	Stock       *int
	Description *string
	ImageURL    *string
}
