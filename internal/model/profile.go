package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner      Role = "owner"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleTechnician:
		return true
	}
	return false
}

type ProfileStatus string

const (
	ProfileActive   ProfileStatus = "active"
	ProfileInactive ProfileStatus = "inactive"
)

// Capability names an operation gated by role. Authorization checks go
// through Role.Can instead of comparing role strings at call sites.
type Capability string

const (
	CapManageUsers     Capability = "manage_users"
	CapApproveOrders   Capability = "approve_orders"
	CapSendForApproval Capability = "send_for_approval"
	CapForceStatus     Capability = "force_status"
	CapEditSettings    Capability = "edit_settings"
	CapViewReports     Capability = "view_reports"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleOwner: {
		CapManageUsers:     true,
		CapApproveOrders:   true,
		CapSendForApproval: true,
		CapForceStatus:     true,
		CapEditSettings:    true,
		CapViewReports:     true,
	},
	RoleManager: {
		CapApproveOrders:   true,
		CapSendForApproval: true,
		CapForceStatus:     true,
		CapViewReports:     true,
	},
	RoleTechnician: {},
}

func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// Profile is the application-level user record. Profiles are created only
// through the provisioning service, alongside an identity.
type Profile struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	DealershipID uuid.UUID     `gorm:"type:uuid;index;not null" json:"-"`
	Name         string        `gorm:"not null" json:"name"`
	Email        string        `gorm:"not null" json:"email"`
	Role         Role          `gorm:"type:varchar(20);not null" json:"role"`
	Status       ProfileStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	CreatedAt    time.Time     `json:"-"`
	UpdatedAt    time.Time     `json:"-"`
}

func (Profile) TableName() string { return "profiles" }

// Identity is the auth credential record, kept separate from Profile so the
// provisioning saga's create/delete steps stay independent even when both
// live in the same database.
type Identity struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
}

func (Identity) TableName() string { return "identities" }
