package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationWorkOrderSubmitted NotificationType = "work_order_submitted"
	NotificationWorkOrderApproved  NotificationType = "work_order_approved"
	NotificationWorkOrderRejected  NotificationType = "work_order_rejected"
	NotificationCustomerApproved   NotificationType = "customer_approved"
	NotificationCustomerRejected   NotificationType = "customer_rejected"
	NotificationGeneral            NotificationType = "general"
)

type Notification struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID        `gorm:"type:uuid;index;not null" json:"userId"`
	DealershipID uuid.UUID        `gorm:"type:uuid;index;not null" json:"dealershipId"`
	Title        string           `gorm:"not null" json:"title"`
	Message      string           `json:"message"`
	Type         NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	WorkOrderID  *uuid.UUID       `gorm:"type:uuid" json:"workOrderId"`
	Read         bool             `gorm:"default:false" json:"read"`
	CreatedAt    time.Time        `json:"createdAt"`
}
