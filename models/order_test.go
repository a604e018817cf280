package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusServed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusPending, StatusReady, false},
		{StatusPending, StatusServed, false},
		{StatusPending, StatusPending, false},
		{StatusReady, StatusCancelled, false},
		{StatusReady, StatusPreparing, false},
		{StatusServed, StatusPending, false},
		{StatusServed, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusPreparing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	for _, s := range Statuses {
		want := s == StatusServed || s == StatusCancelled
		assert.Equal(t, want, s.Terminal(), s)
		if s.Terminal() {
			for _, next := range Statuses {
				assert.False(t, s.CanTransitionTo(next), "%s -> %s", s, next)
			}
		}
	}
	assert.False(t, OrderStatus("delivered").Valid())
}

func TestSumLineItems(t *testing.T) {
	items := []OrderItem{
		{Price: decimal.RequireFromString("9.99"), Quantity: 2},
		{Price: decimal.RequireFromString("0.10"), Quantity: 3},
	}
	assert.True(t, decimal.RequireFromString("20.28").Equal(SumLineItems(items)))
	assert.True(t, SumLineItems(nil).IsZero())
}

func TestNewOrderView_FlagsDeletedItems(t *testing.T) {
	kept := MenuItem{ID: uuid.New(), Name: "Burger"}
	gone := uuid.New()
	order := Order{
		ID: uuid.New(),
		Items: []OrderItem{
			{MenuItemID: kept.ID, Name: "Burger", Quantity: 1},
			{MenuItemID: gone, Name: "Soup", Quantity: 2},
		},
	}

	view := NewOrderView(order, map[uuid.UUID]MenuItem{kept.ID: kept})

	require.Len(t, view.Items, 2)
	require.NotNil(t, view.Items[0].MenuItem)
	assert.Equal(t, "Burger", view.Items[0].MenuItem.Name)
	assert.False(t, view.Items[0].MenuItemDeleted)
	assert.Nil(t, view.Items[1].MenuItem)
	assert.True(t, view.Items[1].MenuItemDeleted)
	assert.Equal(t, "Soup", view.Items[1].Name)

	body, err := json.Marshal(view)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	lines := decoded["items"].([]any)
	assert.Len(t, lines, 2)
	assert.Nil(t, lines[1].(map[string]any)["menuItem"])
}
