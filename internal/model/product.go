package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Name        string          `json:"name"`
	Category    string          `json:"category"` // Plain name, not a reference to a Category record
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description *string         `json:"description,omitempty"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
}

// StockValue is price times units on hand.
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}
