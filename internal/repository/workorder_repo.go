package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvworks/servicedesk/internal/model"
)

type WorkOrderRepository interface {
	Create(ctx context.Context, wo *model.WorkOrder) error
	GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.WorkOrder, error)
	GetByToken(ctx context.Context, token string) (*model.WorkOrder, error)
	List(ctx context.Context, dealershipID uuid.UUID) ([]model.WorkOrder, error)
	ListByRV(ctx context.Context, dealershipID, rvID uuid.UUID) ([]model.WorkOrder, error)
	ListUpdatedBetween(ctx context.Context, dealershipID uuid.UUID, status model.WorkOrderStatus, from, to time.Time) ([]model.WorkOrder, error)
	// Update persists the full merged state, replacing the part and photo
	// collections.
	Update(ctx context.Context, wo *model.WorkOrder) error
	SetApprovalToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	// FinalizeByToken conditionally moves an order out of
	// pending_customer_approval. It reports false when the order was already
	// finalized, so exactly one of two racing calls wins.
	FinalizeByToken(ctx context.Context, token string, status model.WorkOrderStatus, decidedAt time.Time, customerNotes *string) (bool, error)
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type workOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) WorkOrderRepository {
	return &workOrderRepository{db: db}
}

func (r *workOrderRepository) Create(ctx context.Context, wo *model.WorkOrder) error {
	return r.db.WithContext(ctx).Create(wo).Error
}

func (r *workOrderRepository) GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Parts").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("dealership_id = ? AND id = ?", dealershipID, id).
		First(&wo).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *workOrderRepository) GetByToken(ctx context.Context, token string) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Parts").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("approval_token = ?", token).
		First(&wo).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *workOrderRepository) List(ctx context.Context, dealershipID uuid.UUID) ([]model.WorkOrder, error) {
	var orders []model.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Parts").
		Preload("Photos").
		Where("dealership_id = ?", dealershipID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *workOrderRepository) ListByRV(ctx context.Context, dealershipID, rvID uuid.UUID) ([]model.WorkOrder, error) {
	var orders []model.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Parts").
		Preload("Photos").
		Where("dealership_id = ? AND rv_id = ?", dealershipID, rvID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *workOrderRepository) ListUpdatedBetween(ctx context.Context, dealershipID uuid.UUID, status model.WorkOrderStatus, from, to time.Time) ([]model.WorkOrder, error) {
	var orders []model.WorkOrder
	query := r.db.WithContext(ctx).
		Preload("Parts").
		Where("dealership_id = ? AND updated_at >= ? AND updated_at <= ?", dealershipID, from, to)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("updated_at ASC").Find(&orders).Error
	return orders, err
}

func (r *workOrderRepository) Update(ctx context.Context, wo *model.WorkOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"issue_description": wo.IssueDescription,
			"labor_hours":       wo.LaborHours,
			"labor_rate":        wo.LaborRate,
			"status":            wo.Status,
			"technician_notes":  wo.TechnicianNotes,
			"manager_notes":     wo.ManagerNotes,
			"technician_id":     wo.TechnicianID,
			"total_estimate":    wo.TotalEstimate,
			"customer_notes":    wo.CustomerNotes,
			"updated_at":        wo.UpdatedAt,
		}
		res := tx.Model(&model.WorkOrder{}).
			Where("dealership_id = ? AND id = ?", wo.DealershipID, wo.ID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("work_order_id = ?", wo.ID).Delete(&model.WorkOrderPart{}).Error; err != nil {
			return err
		}
		for i := range wo.Parts {
			wo.Parts[i].WorkOrderID = wo.ID
			if wo.Parts[i].ID == uuid.Nil {
				wo.Parts[i].ID = uuid.New()
			}
		}
		if len(wo.Parts) > 0 {
			if err := tx.Create(&wo.Parts).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("work_order_id = ?", wo.ID).Delete(&model.WorkOrderPhoto{}).Error; err != nil {
			return err
		}
		for i := range wo.Photos {
			wo.Photos[i].WorkOrderID = wo.ID
			wo.Photos[i].Position = i
			if wo.Photos[i].ID == uuid.Nil {
				wo.Photos[i].ID = uuid.New()
			}
		}
		if len(wo.Photos) > 0 {
			if err := tx.Create(&wo.Photos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *workOrderRepository) SetApprovalToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.WorkOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"approval_token":            token,
			"approval_token_expires_at": expiresAt,
			"status":                    model.StatusPendingCustomerApproval,
			"updated_at":                time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *workOrderRepository) FinalizeByToken(ctx context.Context, token string, status model.WorkOrderStatus, decidedAt time.Time, customerNotes *string) (bool, error) {
	updates := map[string]interface{}{
		"status":         status,
		"customer_notes": customerNotes,
		"updated_at":     decidedAt,
	}
	if status == model.StatusCustomerApproved {
		updates["approved_at"] = decidedAt
	} else {
		updates["rejected_at"] = decidedAt
	}
	res := r.db.WithContext(ctx).Model(&model.WorkOrder{}).
		Where("approval_token = ? AND status = ?", token, model.StatusPendingCustomerApproval).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *workOrderRepository) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.WorkOrder{}).
		Where("approval_token IS NOT NULL AND approval_token_expires_at < ? AND status = ?", now, model.StatusPendingCustomerApproval).
		Updates(map[string]interface{}{
			"approval_token":            nil,
			"approval_token_expires_at": nil,
		})
	return res.RowsAffected, res.Error
}
