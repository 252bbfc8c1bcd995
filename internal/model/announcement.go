package model

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is a dealership-wide message. Audience holds role names or
// the single literal "all".
type Announcement struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DealershipID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Title        string    `gorm:"not null" json:"title"`
	Message      string    `json:"message"`
	Audience     []string  `gorm:"serializer:json" json:"audience"`
	ActionLabel  *string   `json:"actionLabel,omitempty"`
	ActionLink   *string   `json:"actionLink,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// VisibleTo reports whether the announcement targets the given role.
func (a Announcement) VisibleTo(role Role) bool {
	for _, aud := range a.Audience {
		if aud == "all" || aud == string(role) {
			return true
		}
	}
	return false
}
