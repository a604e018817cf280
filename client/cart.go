package client

import (
	"errors"
	"fmt"

	"tableorder-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("cart is empty")

type CartLine struct {
	Item     models.MenuItem
	Quantity int
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart collects a table's selections before the order is placed. It is
// owned by one customer session and is not safe for concurrent use.
type Cart struct {
	tableNumber int
	lines       []CartLine
}

func NewCart(tableNumber int) *Cart {
	return &Cart{tableNumber: tableNumber}
}

func (c *Cart) TableNumber() int { return c.tableNumber }

// Add puts quantity more of item into the cart.
func (c *Cart) Add(item models.MenuItem, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	if !item.Available {
		return fmt.Errorf("%s is not available", item.Name)
	}
	if i := c.find(item.ID); i >= 0 {
		c.lines[i].Quantity += quantity
		c.lines[i].Item = item
		return nil
	}
	c.lines = append(c.lines, CartLine{Item: item, Quantity: quantity})
	return nil
}

// SetQuantity replaces the quantity of an item already in the cart; zero
// removes it.
func (c *Cart) SetQuantity(id uuid.UUID, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must not be negative, got %d", quantity)
	}
	i := c.find(id)
	if i < 0 {
		return fmt.Errorf("item %s is not in the cart", id)
	}
	if quantity == 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return nil
	}
	c.lines[i].Quantity = quantity
	return nil
}

func (c *Cart) Remove(id uuid.UUID) {
	if i := c.find(id); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Total is the price the server will charge if menu prices do not change
// before the order lands.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Count is the number of units, not distinct items.
func (c *Cart) Count() int {
	n := 0
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}

func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Clear() {
	c.lines = nil
}

type Customer struct {
	Name                string
	Phone               string
	SpecialInstructions string
}

func (c *Cart) OrderRequest(customer Customer) (OrderRequest, error) {
	if len(c.lines) == 0 {
		return OrderRequest{}, ErrEmptyCart
	}
	req := OrderRequest{
		TableNumber:         c.tableNumber,
		Items:               make([]OrderLine, 0, len(c.lines)),
		CustomerName:        customer.Name,
		CustomerPhone:       customer.Phone,
		SpecialInstructions: customer.SpecialInstructions,
	}
	for _, line := range c.lines {
		req.Items = append(req.Items, OrderLine{MenuItemID: line.Item.ID, Quantity: line.Quantity})
	}
	return req, nil
}

func (c *Cart) find(id uuid.UUID) int {
	for i, line := range c.lines {
		if line.Item.ID == id {
			return i
		}
	}
	return -1
}
