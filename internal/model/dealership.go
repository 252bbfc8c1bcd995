package model

import (
	"time"

	"github.com/google/uuid"
)

// Dealership carries the per-dealership settings read by the pricing engine.
type Dealership struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Name                  string    `gorm:"not null" json:"dealershipName"`
	Phone                 string    `json:"phone"`
	Email                 string    `json:"email"`
	DefaultLaborRate      float64   `gorm:"default:85" json:"defaultLaborRate"`
	CurrencySymbol        string    `gorm:"default:'$'" json:"currencySymbol"`
	DefaultTerms          string    `json:"defaultTerms"`
	PartsMarkupPercent    float64   `gorm:"default:0" json:"partsMarkupPercent"`
	TechniciansSeePricing bool      `gorm:"default:false" json:"techniciansSeePricing"`
	CreatedAt             time.Time `json:"-"`
	UpdatedAt             time.Time `json:"-"`
}
