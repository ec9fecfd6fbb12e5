package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is a frozen copy of a cart item taken at submission time. It
// never references the live cart.
type OrderLine struct {
	ProductID   int64           `json:"product_code"`
	Description string          `json:"product_description"`
	Unit        string          `json:"unit_code,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"total_price"`
}

type Order struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"order_code"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []OrderLine     `json:"lines"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewOrderFromCart snapshots the cart into an order with a generated id
// and human-facing code.
func NewOrderFromCart(cart Cart) *Order {
	id := uuid.New()
	lines := make([]OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, OrderLine{
			ProductID:   item.ProductID,
			Description: item.Name,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return &Order{
		ID:          id,
		Code:        orderCode(id),
		TotalAmount: cart.Total,
		Lines:       lines,
		CreatedAt:   time.Now().UTC(),
	}
}

func orderCode(id uuid.UUID) string {
	return "ORD-" + strings.ToUpper(id.String()[:8])
}
