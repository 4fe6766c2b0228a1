// Package cart models the shopping cart as an explicit aggregate passed
// into the checkout workflow, instead of the ambient client-side state
// the mobile app keeps.
package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("item quantity must be at least 1")
	ErrInvalidDish     = errors.New("item dish id must be set")
)

type Item struct {
	DishID    int64           `json:"dish_id"`
	Name      string          `json:"nombre,omitempty"`
	UnitPrice decimal.Decimal `json:"precio"`
	Quantity  int             `json:"cantidad"`
}

type Cart struct {
	Items []Item `json:"items"`
}

func New() *Cart {
	return &Cart{}
}

// Add merges quantity into an existing line for the same dish.
func (c *Cart) Add(item Item) {
	for i := range c.Items {
		if c.Items[i].DishID == item.DishID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

func (c *Cart) Remove(dishID int64) {
	for i := range c.Items {
		if c.Items[i].DishID == dishID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) Validate() error {
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range c.Items {
		if item.DishID == 0 {
			return ErrInvalidDish
		}
		if item.Quantity < 1 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// Total sums unit price x quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
