package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ItemId          string           `json:"item_id"`
	Name            string           `json:"name"`
	Price           decimal.Decimal  `json:"price"`
	Quantity        int              `json:"quantity"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	InStock         bool             `json:"in_stock"`
	Replacement     string           `json:"replacement,omitempty"`
}

// UnitPrice is the discounted price when one applies.
func (i CartItem) UnitPrice() decimal.Decimal {
	if i.DiscountedPrice != nil {
		return *i.DiscountedPrice
	}
	return i.Price
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	UserId    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Count is the number of units in the cart.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Find returns the index of the item with the given id, or -1.
func (c Cart) Find(itemId string) int {
	for i, it := range c.Items {
		if it.ItemId == itemId {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no slices with c.
func (c Cart) Clone() Cart {
	out := c
	out.Items = append([]CartItem(nil), c.Items...)
	return out
}

// CartOperation records one applied cart change under its idempotency token
// together with the reply it produced, so a replayed turn answers the same way.
type CartOperation struct {
	UserId    string
	Token     string
	Message   string
	Missing   []string
	CreatedAt time.Time
}
