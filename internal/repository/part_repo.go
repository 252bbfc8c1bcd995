package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvworks/servicedesk/internal/model"
)

type PartRepository interface {
	Create(ctx context.Context, p *model.Part) error
	GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.Part, error)
	List(ctx context.Context, dealershipID uuid.UUID, search string) ([]model.Part, error)
	Update(ctx context.Context, p *model.Part) error
}

type partRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) PartRepository {
	return &partRepository{db: db}
}

func (r *partRepository) Create(ctx context.Context, p *model.Part) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *partRepository) GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.Part, error) {
	var p model.Part
	err := r.db.WithContext(ctx).
		Where("dealership_id = ? AND id = ?", dealershipID, id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *partRepository) List(ctx context.Context, dealershipID uuid.UUID, search string) ([]model.Part, error) {
	query := r.db.WithContext(ctx).Where("dealership_id = ?", dealershipID)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", pattern, pattern)
	}
	var parts []model.Part
	err := query.Order("name ASC").Find(&parts).Error
	return parts, err
}

func (r *partRepository) Update(ctx context.Context, p *model.Part) error {
	res := r.db.WithContext(ctx).Model(&model.Part{}).
		Where("dealership_id = ? AND id = ?", p.DealershipID, p.ID).
		Updates(map[string]interface{}{
			"name":         p.Name,
			"sku":          p.SKU,
			"description":  p.Description,
			"price":        p.Price,
			"in_stock_qty": p.InStockQty,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
