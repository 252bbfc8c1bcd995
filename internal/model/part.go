package model

import (
	"time"

	"github.com/google/uuid"
)

// Part is a catalog entry. Price is the base price before markup; markup is
// applied when a part is copied onto a work order.
type Part struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DealershipID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	SKU          *string   `gorm:"column:sku" json:"sku,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Price        float64   `gorm:"not null" json:"price"`
	InStockQty   int       `gorm:"default:0" json:"inStockQty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
