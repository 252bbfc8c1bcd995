package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvworks/servicedesk/internal/model"
)

type DealershipRepository interface {
	Create(ctx context.Context, d *model.Dealership) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Dealership, error)
	Update(ctx context.Context, d *model.Dealership) error
	// Delete exists for the provisioning saga's compensation step.
	Delete(ctx context.Context, id uuid.UUID) error
}

type dealershipRepository struct {
	db *gorm.DB
}

func NewDealershipRepository(db *gorm.DB) DealershipRepository {
	return &dealershipRepository{db: db}
}

func (r *dealershipRepository) Create(ctx context.Context, d *model.Dealership) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *dealershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Dealership, error) {
	var d model.Dealership
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dealershipRepository) Update(ctx context.Context, d *model.Dealership) error {
	res := r.db.WithContext(ctx).Model(&model.Dealership{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"name":                    d.Name,
			"phone":                   d.Phone,
			"email":                   d.Email,
			"default_labor_rate":      d.DefaultLaborRate,
			"currency_symbol":         d.CurrencySymbol,
			"default_terms":           d.DefaultTerms,
			"parts_markup_percent":    d.PartsMarkupPercent,
			"technicians_see_pricing": d.TechniciansSeePricing,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *dealershipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Dealership{}).Error
}
