package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultEstimatedTime is used when none of the ordered items carries a
// preparation time.
const DefaultEstimatedTime = 20 // minutes

type Order struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TableNumber         int             `gorm:"index;not null" json:"tableNumber"`
	Items               []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	Status              OrderStatus     `gorm:"type:varchar(20);index;not null" json:"status"`
	CustomerName        string          `json:"customerName,omitempty"`
	CustomerPhone       string          `json:"customerPhone,omitempty"`
	SpecialInstructions string          `gorm:"type:text" json:"specialInstructions,omitempty"`
	EstimatedTime       int             `json:"estimatedTime"` // in minutes
	CreatedAt           time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// OrderItem is a line of an order. MenuItemID is a weak reference: the menu
// item may be deleted later, so Name and Price are snapshots.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"-"`
	OrderID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"-"`
	Position   int             `gorm:"not null" json:"-"`
	MenuItemID uuid.UUID       `gorm:"type:uuid;index;not null" json:"menuItemId"`
	Name       string          `gorm:"not null" json:"name"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// LineTotal is the captured unit price times the quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumLineItems returns the order total for the given lines.
func SumLineItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// OrderView is an order with its line items resolved against the menu.
type OrderView struct {
	Order
	Items []LineItemView `json:"items"`
}

type LineItemView struct {
	OrderItem
	MenuItem        *MenuItem `json:"menuItem"`
	MenuItemDeleted bool      `json:"menuItemDeleted,omitempty"`
}

// NewOrderView resolves each line of o against menu. Lines whose menu item
// is gone keep their snapshot and are flagged as deleted.
func NewOrderView(o Order, menu map[uuid.UUID]MenuItem) OrderView {
	view := OrderView{Order: o, Items: make([]LineItemView, 0, len(o.Items))}
	for _, item := range o.Items {
		line := LineItemView{OrderItem: item}
		if m, ok := menu[item.MenuItemID]; ok {
			m := m
			line.MenuItem = &m
		} else {
			line.MenuItemDeleted = true
		}
		view.Items = append(view.Items, line)
	}
	view.Order.Items = nil
	return view
}
