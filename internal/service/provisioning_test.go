package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvworks/servicedesk/internal/auth"
	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/repository"
)

var errInjected = errors.New("injected failure")

type failingProfiles struct {
	repository.ProfileRepository
}

func (failingProfiles) Create(ctx context.Context, p *model.Profile) error {
	return errInjected
}

type recordingDealerships struct {
	repository.DealershipRepository
	created []uuid.UUID
	deleted []uuid.UUID
}

func (r *recordingDealerships) Create(ctx context.Context, d *model.Dealership) error {
	if err := r.DealershipRepository.Create(ctx, d); err != nil {
		return err
	}
	r.created = append(r.created, d.ID)
	return nil
}

func (r *recordingDealerships) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.DealershipRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func ownerInput() CreateDealershipOwnerInput {
	return CreateDealershipOwnerInput{
		DealershipName: "Lakeside RV",
		OwnerName:      "Robin Hale",
		Email:          "robin@lakeside.example",
		Password:       "sturdy-pass",
		Phone:          "5559876543",
	}
}

func TestCreateDealershipOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.provisioning.CreateDealershipOwner(ctx, ownerInput())
	require.NoError(t, err)
	assert.Equal(t, "Lakeside RV", result.Dealership.Name)
	assert.InDelta(t, 85, result.Dealership.DefaultLaborRate, 1e-9)
	assert.InDelta(t, 0, result.Dealership.PartsMarkupPercent, 1e-9)
	assert.Equal(t, "$", result.Dealership.CurrencySymbol)
	assert.Equal(t, model.RoleOwner, result.Owner.Role)
	assert.Equal(t, result.Dealership.ID, result.Owner.DealershipID)

	login, err := f.provisioning.Authenticate(ctx, "robin@lakeside.example", "sturdy-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, result.Owner.ID, login.Profile.ID)
}

func TestCreateDealershipOwnerShortPassword(t *testing.T) {
	f := newFixture(t)
	input := ownerInput()
	input.Password = "tiny"

	_, err := f.provisioning.CreateDealershipOwner(context.Background(), input)
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.store.Identities().GetByEmail(context.Background(), input.Email)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateDealershipOwnerRollsBackOnProfileFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dealerships := &recordingDealerships{DealershipRepository: f.store.Dealerships()}
	svc := NewProvisioningService(dealerships, failingProfiles{}, f.store.Identities(),
		auth.NewManager("test-secret", time.Hour), zerolog.Nop())

	_, err := svc.CreateDealershipOwner(ctx, ownerInput())
	require.ErrorIs(t, err, errInjected)

	// Both earlier steps were compensated.
	require.Len(t, dealerships.created, 1)
	assert.Equal(t, dealerships.created, dealerships.deleted)
	_, err = f.store.Identities().GetByEmail(ctx, "robin@lakeside.example")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateDealershipOwnerRollsBackOnDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dealerships := &recordingDealerships{DealershipRepository: f.store.Dealerships()}
	svc := NewProvisioningService(dealerships, f.store.Profiles(), f.store.Identities(),
		auth.NewManager("test-secret", time.Hour), zerolog.Nop())

	_, err := svc.CreateDealershipOwner(ctx, ownerInput())
	require.NoError(t, err)

	input := ownerInput()
	input.DealershipName = "Lakeside RV Second"
	_, err = svc.CreateDealershipOwner(ctx, input)
	require.ErrorIs(t, err, ErrConflict)

	// The second dealership row was removed again.
	require.Len(t, dealerships.created, 2)
	require.Len(t, dealerships.deleted, 1)
	assert.Equal(t, dealerships.created[1], dealerships.deleted[0])
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	profile, err := f.provisioning.CreateUser(ctx, CreateUserInput{
		Principal: f.owner,
		Name:      "Casey Crew",
		Email:     "casey@sunset.example",
		Password:  "workshop",
		Role:      model.RoleTechnician,
	})
	require.NoError(t, err)
	assert.Equal(t, f.dealership.ID, profile.DealershipID)
	assert.Equal(t, model.RoleTechnician, profile.Role)
	assert.Equal(t, model.ProfileActive, profile.Status)

	login, err := f.provisioning.Authenticate(ctx, "casey@sunset.example", "workshop")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, login.Profile.ID)
}

func TestCreateUserRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, caller := range []model.Principal{f.manager, f.technician} {
		_, err := f.provisioning.CreateUser(ctx, CreateUserInput{
			Principal: caller,
			Name:      "Nobody New",
			Email:     "nobody@sunset.example",
			Password:  "workshop",
			Role:      model.RoleTechnician,
		})
		require.ErrorIs(t, err, ErrForbidden)
	}

	_, err := f.store.Identities().GetByEmail(ctx, "nobody@sunset.example")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateUserCannotGrantOwner(t *testing.T) {
	f := newFixture(t)
	_, err := f.provisioning.CreateUser(context.Background(), CreateUserInput{
		Principal: f.owner,
		Name:      "Second Owner",
		Email:     "second@sunset.example",
		Password:  "workshop",
		Role:      model.RoleOwner,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateUserRollsBackIdentityOnProfileFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewProvisioningService(f.store.Dealerships(), failingProfiles{}, f.store.Identities(),
		auth.NewManager("test-secret", time.Hour), zerolog.Nop())

	_, err := svc.CreateUser(ctx, CreateUserInput{
		Principal: f.owner,
		Name:      "Casey Crew",
		Email:     "casey@sunset.example",
		Password:  "workshop",
		Role:      model.RoleManager,
	})
	require.ErrorIs(t, err, errInjected)

	_, err = f.store.Identities().GetByEmail(ctx, "casey@sunset.example")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.provisioning.CreateDealershipOwner(ctx, ownerInput())
	require.NoError(t, err)

	_, err = f.provisioning.Authenticate(ctx, "robin@lakeside.example", "wrong-pass")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.provisioning.Authenticate(ctx, "unknown@lakeside.example", "sturdy-pass")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAuthenticateRejectsInactiveProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result, err := f.provisioning.CreateDealershipOwner(ctx, ownerInput())
	require.NoError(t, err)

	result.Owner.Status = model.ProfileInactive
	require.NoError(t, f.store.Profiles().Update(ctx, result.Owner))

	_, err = f.provisioning.Authenticate(ctx, "robin@lakeside.example", "sturdy-pass")
	require.ErrorIs(t, err, ErrForbidden)
}
