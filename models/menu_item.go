package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices go over the wire as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Category string

const (
	CategoryAppetizers Category = "appetizers"
	CategoryMainCourse Category = "main-course"
	CategoryDesserts   Category = "desserts"
	CategoryBeverages  Category = "beverages"
	CategorySpecials   Category = "specials"
)

// Categories lists every category in menu display order.
var Categories = []Category{
	CategoryAppetizers,
	CategoryMainCourse,
	CategoryDesserts,
	CategoryBeverages,
	CategorySpecials,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const DefaultPreparationTime = 15 // minutes

type MenuItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name            string          `gorm:"not null" json:"name" validate:"required,max=100"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Category        Category        `gorm:"type:varchar(20);index;not null" json:"category" validate:"oneof=appetizers main-course desserts beverages specials"`
	Image           string          `gorm:"not null" json:"image" validate:"required"`
	Available       bool            `gorm:"not null" json:"available"`
	PreparationTime int             `gorm:"not null" json:"preparationTime" validate:"min=1"` // in minutes
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Initialize UUID before creating
func (m *MenuItem) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
