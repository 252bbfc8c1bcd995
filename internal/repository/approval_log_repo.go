package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvworks/servicedesk/internal/model"
)

// ApprovalLogRepository is append-only; entries are never updated or
// deleted.
type ApprovalLogRepository interface {
	Append(ctx context.Context, entry *model.ApprovalLog) error
	ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID) ([]model.ApprovalLog, error)
}

type approvalLogRepository struct {
	db *gorm.DB
}

func NewApprovalLogRepository(db *gorm.DB) ApprovalLogRepository {
	return &approvalLogRepository{db: db}
}

func (r *approvalLogRepository) Append(ctx context.Context, entry *model.ApprovalLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *approvalLogRepository) ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID) ([]model.ApprovalLog, error) {
	var entries []model.ApprovalLog
	err := r.db.WithContext(ctx).
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
