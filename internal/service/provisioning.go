package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rvworks/servicedesk/internal/auth"
	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/repository"
)

const minPasswordLength = 6

// ProvisioningService creates dealerships and their users. Both flows span
// multiple writes, so they run as sagas: each completed step registers a
// compensation that undoes it if a later step fails, leaving no partial
// rows behind.
type ProvisioningService struct {
	dealerships repository.DealershipRepository
	profiles    repository.ProfileRepository
	identities  repository.IdentityStore
	tokens      *auth.Manager
	log         zerolog.Logger
}

func NewProvisioningService(
	dealerships repository.DealershipRepository,
	profiles repository.ProfileRepository,
	identities repository.IdentityStore,
	tokens *auth.Manager,
	log zerolog.Logger,
) *ProvisioningService {
	return &ProvisioningService{
		dealerships: dealerships,
		profiles:    profiles,
		identities:  identities,
		tokens:      tokens,
		log:         log,
	}
}

type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// runSaga executes the steps in order. On failure it runs the compensations
// of every completed step in reverse and returns the original error.
// Compensation failures are logged, not returned; the saga is best-effort
// about cleanup but always reports the step that broke.
func (s *ProvisioningService) runSaga(ctx context.Context, steps []sagaStep) error {
	var done []sagaStep
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			for i := len(done) - 1; i >= 0; i-- {
				if done[i].compensate == nil {
					continue
				}
				if cerr := done[i].compensate(ctx); cerr != nil {
					s.log.Error().Err(cerr).Str("step", done[i].name).Msg("saga compensation failed")
				}
			}
			return fmt.Errorf("%s: %w", step.name, err)
		}
		done = append(done, step)
	}
	return nil
}

type CreateDealershipOwnerInput struct {
	DealershipName string `json:"dealershipName"`
	OwnerName      string `json:"ownerName"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Phone          string `json:"phone"`
}

type CreateDealershipOwnerResult struct {
	Dealership *model.Dealership `json:"dealership"`
	Owner      *model.Profile    `json:"owner"`
}

// CreateDealershipOwner provisions a dealership with its first owner
// account: dealership row, auth identity, then profile. The profile shares
// the identity's ID.
func (s *ProvisioningService) CreateDealershipOwner(ctx context.Context, input CreateDealershipOwnerInput) (*CreateDealershipOwnerResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.DealershipName == "" || input.OwnerName == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: dealershipName, ownerName and email are required", ErrValidation)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	dealership := &model.Dealership{
		ID:               uuid.New(),
		Name:             input.DealershipName,
		Phone:            input.Phone,
		Email:            input.Email,
		DefaultLaborRate: 85,
		CurrencySymbol:   "$",
	}
	var identityID uuid.UUID
	var owner *model.Profile

	steps := []sagaStep{
		{
			name: "create dealership",
			run: func(ctx context.Context) error {
				return s.dealerships.Create(ctx, dealership)
			},
			compensate: func(ctx context.Context) error {
				return s.dealerships.Delete(ctx, dealership.ID)
			},
		},
		{
			name: "create identity",
			run: func(ctx context.Context) error {
				id, err := s.identities.Create(ctx, input.Email, hash)
				if err != nil {
					if errors.Is(err, repository.ErrDuplicate) {
						return fmt.Errorf("%w: email %s is already registered", ErrConflict, input.Email)
					}
					return err
				}
				identityID = id
				return nil
			},
			compensate: func(ctx context.Context) error {
				return s.identities.Delete(ctx, identityID)
			},
		},
		{
			name: "create owner profile",
			run: func(ctx context.Context) error {
				owner = &model.Profile{
					ID:           identityID,
					DealershipID: dealership.ID,
					Name:         input.OwnerName,
					Email:        input.Email,
					Role:         model.RoleOwner,
					Status:       model.ProfileActive,
				}
				return s.profiles.Create(ctx, owner)
			},
		},
	}
	if err := s.runSaga(ctx, steps); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("dealership_id", dealership.ID.String()).
		Str("owner_id", owner.ID.String()).
		Msg("dealership provisioned")
	return &CreateDealershipOwnerResult{Dealership: dealership, Owner: owner}, nil
}

type CreateUserInput struct {
	Principal model.Principal
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      model.Role `json:"role"`
}

// CreateUser adds a staff account to the caller's dealership. Only owners
// hold CapManageUsers, and a dealership gets exactly one owner, so the new
// role must be manager or technician.
func (s *ProvisioningService) CreateUser(ctx context.Context, input CreateUserInput) (*model.Profile, error) {
	if !input.Principal.Can(model.CapManageUsers) {
		return nil, fmt.Errorf("%w: role %s cannot manage users", ErrForbidden, input.Principal.Role)
	}
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Name == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if input.Role != model.RoleManager && input.Role != model.RoleTechnician {
		return nil, fmt.Errorf("%w: role must be manager or technician", ErrValidation)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var identityID uuid.UUID
	var profile *model.Profile

	steps := []sagaStep{
		{
			name: "create identity",
			run: func(ctx context.Context) error {
				id, err := s.identities.Create(ctx, input.Email, hash)
				if err != nil {
					if errors.Is(err, repository.ErrDuplicate) {
						return fmt.Errorf("%w: email %s is already registered", ErrConflict, input.Email)
					}
					return err
				}
				identityID = id
				return nil
			},
			compensate: func(ctx context.Context) error {
				return s.identities.Delete(ctx, identityID)
			},
		},
		{
			name: "create profile",
			run: func(ctx context.Context) error {
				profile = &model.Profile{
					ID:           identityID,
					DealershipID: input.Principal.DealershipID,
					Name:         input.Name,
					Email:        input.Email,
					Role:         input.Role,
					Status:       model.ProfileActive,
				}
				return s.profiles.Create(ctx, profile)
			},
		},
	}
	if err := s.runSaga(ctx, steps); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", profile.ID.String()).
		Str("role", string(profile.Role)).
		Msg("user created")
	return profile, nil
}

type LoginResult struct {
	AccessToken string         `json:"accessToken"`
	Profile     *model.Profile `json:"profile"`
}

// Authenticate checks credentials and issues an access token. All failure
// modes return ErrForbidden so a caller cannot probe which emails exist.
func (s *ProvisioningService) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
		}
		return nil, err
	}
	if !auth.CheckPassword(password, identity.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	profile, err := s.profiles.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
		}
		return nil, err
	}
	if profile.Status != model.ProfileActive {
		return nil, fmt.Errorf("%w: account is inactive", ErrForbidden)
	}

	token, err := s.tokens.Issue(model.Principal{
		UserID:       profile.ID,
		DealershipID: profile.DealershipID,
		Role:         profile.Role,
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, Profile: profile}, nil
}
