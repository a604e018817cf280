package services

import (
	"errors"
	"testing"

	"tableorder-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStructMessages(t *testing.T) {
	burgerID := uuid.New()
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{
			name:  "table number",
			input: CreateOrderInput{Items: []LineItemInput{{MenuItemID: burgerID, Quantity: 1}}},
			want:  "tableNumber must be at least 1",
		},
		{
			name:  "empty items",
			input: CreateOrderInput{TableNumber: 1},
			want:  "items must not be empty",
		},
		{
			name: "line index is one based",
			input: CreateOrderInput{TableNumber: 1, Items: []LineItemInput{
				{MenuItemID: burgerID, Quantity: 1},
				{MenuItemID: burgerID, Quantity: 0},
			}},
			want: "item 2: quantity must be at least 1",
		},
		{
			name:  "missing menu item",
			input: CreateOrderInput{TableNumber: 1, Items: []LineItemInput{{Quantity: 1}}},
			want:  "item 1: menuItem is required",
		},
		{
			name: "phone",
			input: CreateOrderInput{
				TableNumber:   1,
				Items:         []LineItemInput{{MenuItemID: burgerID, Quantity: 1}},
				CustomerPhone: "call me",
			},
			want: "customerPhone is not a valid phone number",
		},
		{
			name:  "menu item uses json names",
			input: &models.MenuItem{Name: "Burger", Category: models.CategoryMainCourse, Image: "x.png"},
			want:  "preparationTime must be at least 1",
		},
		{
			name:  "category list",
			input: &models.MenuItem{Name: "Burger", Category: "brunch", Image: "x.png", PreparationTime: 5},
			want:  "category must be one of appetizers, main-course, desserts, beverages, specials",
		},
		{
			name:  "email",
			input: RegisterInput{Username: "a", Email: "nope", Password: "secret123", Role: models.RoleManager},
			want:  "email is not a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStruct(tt.input)
			var svcErr *Error
			require.True(t, errors.As(err, &svcErr), "got %v", err)
			assert.Equal(t, KindValidation, svcErr.Kind)
			assert.Equal(t, tt.want, svcErr.Message)
		})
	}

	assert.NoError(t, checkStruct(CreateOrderInput{
		TableNumber:   3,
		Items:         []LineItemInput{{MenuItemID: burgerID, Quantity: 2}},
		CustomerPhone: "+14155550100",
	}))
}

func TestValidateMenuItemPrice(t *testing.T) {
	item := func(price string) *models.MenuItem {
		return &models.MenuItem{
			Name:            "Burger",
			Price:           decimal.RequireFromString(price),
			Category:        models.CategoryMainCourse,
			Image:           "x.png",
			PreparationTime: 10,
		}
	}

	for _, price := range []string{"9.99", "12.5", "10", "9.990"} {
		assert.NoError(t, validateMenuItem(item(price)), price)
	}
	for _, price := range []string{"0", "-1", "9.999", "0.001", "100000000"} {
		assert.ErrorIs(t, validateMenuItem(item(price)), ErrValidation, price)
	}
}
