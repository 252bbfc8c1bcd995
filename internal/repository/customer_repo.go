package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvworks/servicedesk/internal/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, dealershipID uuid.UUID, search string) ([]model.Customer, error)
	Update(ctx context.Context, c *model.Customer) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepository) GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).
		Where("dealership_id = ? AND id = ?", dealershipID, id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context, dealershipID uuid.UUID, search string) ([]model.Customer, error) {
	query := r.db.WithContext(ctx).Where("dealership_id = ?", dealershipID)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", pattern, pattern, pattern)
	}
	var customers []model.Customer
	err := query.Order("created_at DESC").Find(&customers).Error
	return customers, err
}

func (r *customerRepository) Update(ctx context.Context, c *model.Customer) error {
	res := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("dealership_id = ? AND id = ?", c.DealershipID, c.ID).
		Updates(map[string]interface{}{
			"name":  c.Name,
			"email": c.Email,
			"phone": c.Phone,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type RVRepository interface {
	Create(ctx context.Context, rv *model.RV) error
	GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.RV, error)
	ListByCustomer(ctx context.Context, dealershipID, customerID uuid.UUID) ([]model.RV, error)
}

type rvRepository struct {
	db *gorm.DB
}

func NewRVRepository(db *gorm.DB) RVRepository {
	return &rvRepository{db: db}
}

func (r *rvRepository) Create(ctx context.Context, rv *model.RV) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *rvRepository) GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.RV, error) {
	var rv model.RV
	err := r.db.WithContext(ctx).
		Where("dealership_id = ? AND id = ?", dealershipID, id).
		First(&rv).Error
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *rvRepository) ListByCustomer(ctx context.Context, dealershipID, customerID uuid.UUID) ([]model.RV, error) {
	var rvs []model.RV
	err := r.db.WithContext(ctx).
		Where("dealership_id = ? AND customer_id = ?", dealershipID, customerID).
		Order("created_at DESC").
		Find(&rvs).Error
	return rvs, err
}
