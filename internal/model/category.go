package model

import "github.com/shopspring/decimal"

type Category struct {
	BaseModel
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// CategorySummary is one entry of the reconciled category list: explicit
// records merged with the distinct category names found on products.
type CategorySummary struct {
	Name         string          `json:"name"`
	CategoryID   string          `json:"categoryId,omitempty"` // Empty for categories only known from products
	Description  *string         `json:"description,omitempty"`
	Explicit     bool            `json:"explicit"`
	ProductCount int             `json:"productCount"`
	TotalStock   int             `json:"totalStock"`
	TotalValue   decimal.Decimal `json:"totalValue"`
}
