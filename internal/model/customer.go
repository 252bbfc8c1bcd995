package model

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DealershipID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// RV belongs to exactly one customer.
type RV struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DealershipID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`
	Year         int       `json:"year"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	VIN          string    `gorm:"column:vin" json:"vin"`
	Nickname     *string   `json:"nickname,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (RV) TableName() string { return "rvs" }
