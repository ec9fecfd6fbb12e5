package domain

import "github.com/shopspring/decimal"

// CartItem is one product's quantity and price within the cart. Name and
// Unit are copied from the product at add time; UnitPrice starts at the
// product price but may be edited independently afterwards.
type CartItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Cart holds the item sequence and the derived total. Mutations are pure
// functions that return a new Cart value with Total recomputed from the
// items, so Total can never drift from the item sequence.
type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func NewCart() Cart {
	return Cart{Total: decimal.Zero}
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Item looks up the line for the given product id.
func (c Cart) Item(productID int64) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// AddItem appends a new line with quantity 1 for the product. Adding a
// product that is already in the cart is a no-op (the quantity stepper is
// the only way to increase quantity). The added flag reports whether the
// cart changed.
func (c Cart) AddItem(p Product) (Cart, bool) {
	if _, exists := c.Item(p.ID); exists {
		return c, false
	}

	item := CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Unit:      p.Unit,
		Quantity:  1,
		UnitPrice: p.Price,
		LineTotal: p.Price,
	}
	return c.replaceItems(append(copyItems(c.Items), item)), true
}

// UpdateQuantity sets the quantity for a line. A quantity of zero or less
// removes the line. Unknown product ids are a no-op.
func (c Cart) UpdateQuantity(productID int64, quantity int) Cart {
	if quantity <= 0 {
		return c.RemoveItem(productID)
	}

	items := copyItems(c.Items)
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			items[i].LineTotal = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
		}
	}
	return c.replaceItems(items)
}

// UpdatePrice sets the unit price for a line and recomputes its total.
// Unknown product ids are a no-op.
func (c Cart) UpdatePrice(productID int64, price decimal.Decimal) Cart {
	items := copyItems(c.Items)
	for i := range items {
		if items[i].ProductID == productID {
			items[i].UnitPrice = price
			items[i].LineTotal = price.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		}
	}
	return c.replaceItems(items)
}

// RemoveItem deletes the line for the given product id.
func (c Cart) RemoveItem(productID int64) Cart {
	items := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	return c.replaceItems(items)
}

// Clear resets the cart to an empty item sequence and zero total.
func (c Cart) Clear() Cart {
	return NewCart()
}

func (c Cart) replaceItems(items []CartItem) Cart {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return Cart{Items: items, Total: total}
}

func copyItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
