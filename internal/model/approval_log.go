package model

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalAction string

const (
	ApprovalActionSent     ApprovalAction = "sent"
	ApprovalActionViewed   ApprovalAction = "viewed"
	ApprovalActionApproved ApprovalAction = "approved"
	ApprovalActionRejected ApprovalAction = "rejected"
)

// ApprovalLog is an append-only audit record of the customer approval flow.
type ApprovalLog struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WorkOrderID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"workOrderId"`
	Action         ApprovalAction `gorm:"type:varchar(20);not null" json:"action"`
	DeliveryMethod *string        `json:"deliveryMethod,omitempty"`
	IPAddress      *string        `gorm:"column:ip_address" json:"ipAddress,omitempty"`
	UserAgent      *string        `json:"userAgent,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}
