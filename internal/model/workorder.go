package model

import (
	"time"

	"github.com/google/uuid"
)

type WorkOrderStatus string

const (
	StatusDraft                   WorkOrderStatus = "draft"
	StatusSubmitted               WorkOrderStatus = "submitted"
	StatusApproved                WorkOrderStatus = "approved"
	StatusRejected                WorkOrderStatus = "rejected"
	StatusPendingCustomerApproval WorkOrderStatus = "pending_customer_approval"
	StatusCustomerApproved        WorkOrderStatus = "customer_approved"
	StatusCustomerRejected        WorkOrderStatus = "customer_rejected"
	StatusCompleted               WorkOrderStatus = "completed"
)

// transitions lists the legal next statuses for every status. Terminal
// statuses map to an empty set.
var transitions = map[WorkOrderStatus][]WorkOrderStatus{
	StatusDraft:                   {StatusSubmitted, StatusCompleted},
	StatusSubmitted:               {StatusApproved, StatusRejected},
	StatusApproved:                {StatusPendingCustomerApproval, StatusCompleted},
	StatusPendingCustomerApproval: {StatusCustomerApproved, StatusCustomerRejected},
	StatusCustomerApproved:        {StatusCompleted},
	StatusRejected:                {},
	StatusCustomerRejected:        {},
	StatusCompleted:               {},
}

func (s WorkOrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s WorkOrderStatus) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step.
func (s WorkOrderStatus) CanTransition(next WorkOrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type WorkOrder struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DealershipID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	RVID         uuid.UUID `gorm:"column:rv_id;type:uuid;index;not null" json:"rvId"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`

	IssueDescription string          `json:"issueDescription"`
	LaborHours       float64         `json:"laborHours"`
	LaborRate        float64         `json:"laborRate"`
	Status           WorkOrderStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	TechnicianNotes  *string         `json:"technicianNotes,omitempty"`
	ManagerNotes     *string         `json:"managerNotes,omitempty"`
	TechnicianID     *uuid.UUID      `gorm:"type:uuid" json:"technicianId,omitempty"`

	// TotalEstimate is derived from parts and labor; it is never written
	// directly by callers.
	TotalEstimate float64 `json:"totalEstimate"`

	ApprovalToken          *string    `gorm:"uniqueIndex" json:"-"`
	ApprovalTokenExpiresAt *time.Time `json:"-"`
	CustomerNotes          *string    `json:"customerNotes,omitempty"`
	ApprovedAt             *time.Time `json:"approvedAt,omitempty"`
	RejectedAt             *time.Time `json:"rejectedAt,omitempty"`

	Parts  []WorkOrderPart  `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"parts"`
	Photos []WorkOrderPhoto `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"photos"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkOrderPart is a snapshot of a catalog part at the moment it was added
// to the order. UnitPrice already includes the dealership markup and does
// not follow later catalog price changes.
type WorkOrderPart struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	WorkOrderID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	PartID      uuid.UUID `gorm:"type:uuid;not null" json:"partId"`
	Name        string    `gorm:"not null" json:"name"`
	UnitPrice   float64   `gorm:"not null" json:"unitPrice"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
}

type WorkOrderPhoto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	WorkOrderID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	StoragePath string    `gorm:"not null" json:"storagePath"`
	Filename    string    `json:"filename"`
	Position    int       `json:"-"`
}
