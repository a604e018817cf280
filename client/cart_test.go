package client

import (
	"testing"

	"tableorder-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuItem(name, price string) models.MenuItem {
	return models.MenuItem{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  models.CategoryMainCourse,
		Available: true,
	}
}

func TestCart(t *testing.T) {
	burger := menuItem("Burger", "9.99")
	fries := menuItem("Fries", "3.50")
	cart := NewCart(2)

	require.NoError(t, cart.Add(burger, 1))
	require.NoError(t, cart.Add(fries, 2))
	require.NoError(t, cart.Add(burger, 1))

	assert.Equal(t, 4, cart.Count())
	assert.Len(t, cart.Lines(), 2)
	assert.True(t, decimal.RequireFromString("26.98").Equal(cart.Total()), cart.Total().String())

	require.NoError(t, cart.SetQuantity(fries.ID, 0))
	assert.Len(t, cart.Lines(), 1)
	assert.Error(t, cart.SetQuantity(fries.ID, 1), "removed items cannot be updated")
	assert.Error(t, cart.SetQuantity(burger.ID, -1))

	req, err := cart.OrderRequest(Customer{Phone: "+14155550100"})
	require.NoError(t, err)
	assert.Equal(t, 2, req.TableNumber)
	assert.Equal(t, []OrderLine{{MenuItemID: burger.ID, Quantity: 2}}, req.Items)
	assert.Equal(t, "+14155550100", req.CustomerPhone)

	cart.Clear()
	assert.Zero(t, cart.Count())
	_, err = cart.OrderRequest(Customer{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCart_RejectsBadAdds(t *testing.T) {
	cart := NewCart(1)
	soup := menuItem("Soup", "4.00")
	soup.Available = false

	assert.Error(t, cart.Add(soup, 1))
	assert.Error(t, cart.Add(menuItem("Tea", "1.00"), 0))
	assert.Zero(t, cart.Count())

	tea := menuItem("Tea", "1.00")
	require.NoError(t, cart.Add(tea, 1))
	lines := cart.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, cart.Count(), "Lines returns a copy")
	cart.Remove(tea.ID)
	assert.Zero(t, cart.Count())
}
