package model

import "github.com/google/uuid"

// Principal is the authenticated caller extracted from the bearer token.
type Principal struct {
	UserID       uuid.UUID
	DealershipID uuid.UUID
	Role         Role
}

func (p Principal) IsOwner() bool      { return p.Role == RoleOwner }
func (p Principal) IsManager() bool    { return p.Role == RoleManager }
func (p Principal) IsTechnician() bool { return p.Role == RoleTechnician }

func (p Principal) Can(c Capability) bool { return p.Role.Can(c) }
