package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvworks/servicedesk/internal/model"
)

// IdentityStore holds auth credentials. It is a separate interface from
// ProfileRepository so the provisioning saga can swap in an external
// identity provider without touching profile storage.
type IdentityStore interface {
	Create(ctx context.Context, email, passwordHash string) (uuid.UUID, error)
	GetByEmail(ctx context.Context, email string) (*model.Identity, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type identityStore struct {
	db *gorm.DB
}

func NewIdentityStore(db *gorm.DB) IdentityStore {
	return &identityStore{db: db}
}

func (s *identityStore) Create(ctx context.Context, email, passwordHash string) (uuid.UUID, error) {
	identity := model.Identity{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.db.WithContext(ctx).Create(&identity).Error; err != nil {
		return uuid.Nil, translateError(err)
	}
	return identity.ID, nil
}

func (s *identityStore) GetByEmail(ctx context.Context, email string) (*model.Identity, error) {
	var identity model.Identity
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&identity).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}

func (s *identityStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Identity{}).Error
}
