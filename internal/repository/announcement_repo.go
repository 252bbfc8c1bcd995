package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvworks/servicedesk/internal/model"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, a *model.Announcement) error
	ListByDealership(ctx context.Context, dealershipID uuid.UUID) ([]model.Announcement, error)
	Delete(ctx context.Context, dealershipID, id uuid.UUID) error
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *announcementRepository) ListByDealership(ctx context.Context, dealershipID uuid.UUID) ([]model.Announcement, error) {
	var announcements []model.Announcement
	err := r.db.WithContext(ctx).
		Where("dealership_id = ?", dealershipID).
		Order("created_at DESC").
		Find(&announcements).Error
	return announcements, err
}

func (r *announcementRepository) Delete(ctx context.Context, dealershipID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("dealership_id = ? AND id = ?", dealershipID, id).
		Delete(&model.Announcement{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
