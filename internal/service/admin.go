package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/repository"
)

// AdminService covers dealership settings, staff management and
// announcements. Everything here is gated on capabilities rather than raw
// role comparisons.
type AdminService struct {
	dealerships   repository.DealershipRepository
	profiles      repository.ProfileRepository
	announcements repository.AnnouncementRepository
}

func NewAdminService(
	dealerships repository.DealershipRepository,
	profiles repository.ProfileRepository,
	announcements repository.AnnouncementRepository,
) *AdminService {
	return &AdminService{
		dealerships:   dealerships,
		profiles:      profiles,
		announcements: announcements,
	}
}

func (s *AdminService) GetSettings(ctx context.Context, principal model.Principal) (*model.Dealership, error) {
	d, err := s.dealerships.GetByID(ctx, principal.DealershipID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: dealership", ErrNotFound)
		}
		return nil, err
	}
	return d, nil
}

type SettingsInput struct {
	Name                  *string  `json:"dealershipName"`
	Phone                 *string  `json:"phone"`
	Email                 *string  `json:"email"`
	DefaultLaborRate      *float64 `json:"defaultLaborRate"`
	CurrencySymbol        *string  `json:"currencySymbol"`
	DefaultTerms          *string  `json:"defaultTerms"`
	PartsMarkupPercent    *float64 `json:"partsMarkupPercent"`
	TechniciansSeePricing *bool    `json:"techniciansSeePricing"`
}

// UpdateSettings merges the given fields. Markup and labor rate changes
// only affect orders created afterwards; existing part lines keep their
// snapshot prices.
func (s *AdminService) UpdateSettings(ctx context.Context, principal model.Principal, input SettingsInput) (*model.Dealership, error) {
	if !principal.Can(model.CapEditSettings) {
		return nil, fmt.Errorf("%w: role %s cannot edit settings", ErrForbidden, principal.Role)
	}
	d, err := s.GetSettings(ctx, principal)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		d.Name = *input.Name
	}
	if input.Phone != nil {
		d.Phone = *input.Phone
	}
	if input.Email != nil {
		d.Email = *input.Email
	}
	if input.DefaultLaborRate != nil {
		if *input.DefaultLaborRate < 0 {
			return nil, fmt.Errorf("%w: defaultLaborRate must not be negative", ErrValidation)
		}
		d.DefaultLaborRate = *input.DefaultLaborRate
	}
	if input.CurrencySymbol != nil {
		d.CurrencySymbol = *input.CurrencySymbol
	}
	if input.DefaultTerms != nil {
		d.DefaultTerms = *input.DefaultTerms
	}
	if input.PartsMarkupPercent != nil {
		if *input.PartsMarkupPercent < 0 {
			return nil, fmt.Errorf("%w: partsMarkupPercent must not be negative", ErrValidation)
		}
		d.PartsMarkupPercent = *input.PartsMarkupPercent
	}
	if input.TechniciansSeePricing != nil {
		d.TechniciansSeePricing = *input.TechniciansSeePricing
	}
	d.UpdatedAt = time.Now().UTC()
	if err := s.dealerships.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *AdminService) ListUsers(ctx context.Context, principal model.Principal) ([]model.Profile, error) {
	return s.profiles.ListByDealership(ctx, principal.DealershipID)
}

type UpdateUserInput struct {
	Name   *string              `json:"name"`
	Role   *model.Role          `json:"role"`
	Status *model.ProfileStatus `json:"status"`
}

// UpdateUser changes a staff member's display name, role or status. The
// owner role can be neither granted nor revoked here.
func (s *AdminService) UpdateUser(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateUserInput) (*model.Profile, error) {
	if !principal.Can(model.CapManageUsers) {
		return nil, fmt.Errorf("%w: role %s cannot manage users", ErrForbidden, principal.Role)
	}
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, err
	}
	if p.DealershipID != principal.DealershipID {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}

	if input.Name != nil && *input.Name != "" {
		p.Name = *input.Name
	}
	if input.Role != nil {
		if p.Role == model.RoleOwner || *input.Role == model.RoleOwner {
			return nil, fmt.Errorf("%w: the owner role cannot be reassigned", ErrConflict)
		}
		if !input.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *input.Role)
		}
		p.Role = *input.Role
	}
	if input.Status != nil {
		if *input.Status != model.ProfileActive && *input.Status != model.ProfileInactive {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *input.Status)
		}
		if p.ID == principal.UserID && *input.Status == model.ProfileInactive {
			return nil, fmt.Errorf("%w: cannot deactivate your own account", ErrConflict)
		}
		p.Status = *input.Status
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type AnnouncementInput struct {
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	Audience    []string `json:"audience"`
	ActionLabel *string  `json:"actionLabel"`
	ActionLink  *string  `json:"actionLink"`
}

func (s *AdminService) CreateAnnouncement(ctx context.Context, principal model.Principal, input AnnouncementInput) (*model.Announcement, error) {
	if !principal.Can(model.CapManageUsers) {
		return nil, fmt.Errorf("%w: role %s cannot publish announcements", ErrForbidden, principal.Role)
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	audience := input.Audience
	if len(audience) == 0 {
		audience = []string{"all"}
	}
	for _, aud := range audience {
		if aud != "all" && !model.Role(aud).Valid() {
			return nil, fmt.Errorf("%w: unknown audience %q", ErrValidation, aud)
		}
	}
	a := &model.Announcement{
		ID:           uuid.New(),
		DealershipID: principal.DealershipID,
		Title:        input.Title,
		Message:      input.Message,
		Audience:     audience,
		ActionLabel:  input.ActionLabel,
		ActionLink:   input.ActionLink,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAnnouncements returns the announcements visible to the caller's role.
func (s *AdminService) ListAnnouncements(ctx context.Context, principal model.Principal) ([]model.Announcement, error) {
	all, err := s.announcements.ListByDealership(ctx, principal.DealershipID)
	if err != nil {
		return nil, err
	}
	visible := make([]model.Announcement, 0, len(all))
	for _, a := range all {
		if a.VisibleTo(principal.Role) {
			visible = append(visible, a)
		}
	}
	return visible, nil
}

func (s *AdminService) DeleteAnnouncement(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.Can(model.CapManageUsers) {
		return fmt.Errorf("%w: role %s cannot delete announcements", ErrForbidden, principal.Role)
	}
	if err := s.announcements.Delete(ctx, principal.DealershipID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: announcement %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}
