package dto

import "github.com/shopspring/decimal"

type ProductStats struct {
	TotalProducts int             `json:"totalProducts"`
	TotalStock    int             `json:"totalStock"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}
