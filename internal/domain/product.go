package domain

import "github.com/shopspring/decimal"

// Product is a catalog record. It is owned by the catalog and never
// mutated after it is read; the cart copies what it needs at add time.
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Unit  string          `json:"unit,omitempty"`
	Price decimal.Decimal `json:"price"`
}
