package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rvworks/servicedesk/internal/auth"
	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/repository"
)

// fixture wires the services over the in-memory store with one seeded
// dealership: a customer with an RV, two catalog parts and a 12% markup.
type fixture struct {
	store *repository.Store

	orders        *WorkOrderService
	approvals     *ApprovalService
	provisioning  *ProvisioningService
	directory     *DirectoryService
	admin         *AdminService
	notifications *NotificationService
	reports       *ReportService

	dealership model.Dealership
	customer   model.Customer
	rv         model.RV
	pump       model.Part
	hose       model.Part

	owner      model.Principal
	manager    model.Principal
	technician model.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewStore()
	log := zerolog.Nop()

	f := &fixture{store: store}

	f.dealership = model.Dealership{
		ID:                 uuid.New(),
		Name:               "Sunset RV",
		DefaultLaborRate:   85,
		CurrencySymbol:     "$",
		PartsMarkupPercent: 12,
	}
	require.NoError(t, store.Dealerships().Create(ctx, &f.dealership))

	f.customer = model.Customer{
		ID:           uuid.New(),
		DealershipID: f.dealership.ID,
		Name:         "Pat Rivera",
		Email:        "pat@example.com",
		Phone:        "5551234567",
	}
	require.NoError(t, store.Customers().Create(ctx, &f.customer))

	f.rv = model.RV{
		ID:           uuid.New(),
		DealershipID: f.dealership.ID,
		CustomerID:   f.customer.ID,
		Year:         2019,
		Make:         "Winnebago",
		Model:        "Vista",
	}
	require.NoError(t, store.RVs().Create(ctx, &f.rv))

	f.pump = model.Part{
		ID:           uuid.New(),
		DealershipID: f.dealership.ID,
		Name:         "Water Pump",
		Price:        245,
	}
	require.NoError(t, store.Parts().Create(ctx, &f.pump))

	f.hose = model.Part{
		ID:           uuid.New(),
		DealershipID: f.dealership.ID,
		Name:         "Heater Hose",
		Price:        25,
	}
	require.NoError(t, store.Parts().Create(ctx, &f.hose))

	f.owner = seedStaff(t, store, f.dealership.ID, "Olive Owner", model.RoleOwner)
	f.manager = seedStaff(t, store, f.dealership.ID, "Morgan Manager", model.RoleManager)
	f.technician = seedStaff(t, store, f.dealership.ID, "Toni Tech", model.RoleTechnician)

	f.orders = NewWorkOrderService(store.WorkOrders(), store.Parts(), store.RVs(), store.Customers(), store.Dealerships(), log)
	f.approvals = NewApprovalService(store.WorkOrders(), store.Customers(), store.RVs(), store.Dealerships(), store.ApprovalLogs(),
		"https://approve.example.com", 7*24*time.Hour, log)
	f.provisioning = NewProvisioningService(store.Dealerships(), store.Profiles(), store.Identities(),
		auth.NewManager("test-secret", time.Hour), log)
	f.directory = NewDirectoryService(store.Customers(), store.RVs(), store.Parts())
	f.admin = NewAdminService(store.Dealerships(), store.Profiles(), store.Announcements())
	f.notifications = NewNotificationService(store.Notifications(), store.Profiles(), log)
	f.reports = NewReportService(store.WorkOrders(), store.Profiles(), store.Customers(), store.Dealerships(), nil, log)

	f.orders.AddTransitionHook(f.notifications)
	f.approvals.AddTransitionHook(f.notifications)
	return f
}

func seedStaff(t *testing.T, store *repository.Store, dealershipID uuid.UUID, name string, role model.Role) model.Principal {
	t.Helper()
	profile := model.Profile{
		ID:           uuid.New(),
		DealershipID: dealershipID,
		Name:         name,
		Role:         role,
		Status:       model.ProfileActive,
	}
	require.NoError(t, store.Profiles().Create(context.Background(), &profile))
	return model.Principal{UserID: profile.ID, DealershipID: dealershipID, Role: role}
}

// newDraftOrder creates an order with one pump and 3.5 labor hours at the
// dealership default rate.
func (f *fixture) newDraftOrder(t *testing.T) *model.WorkOrder {
	t.Helper()
	wo, err := f.orders.Create(context.Background(), CreateWorkOrderInput{
		Principal:        f.technician,
		RVID:             f.rv.ID,
		IssueDescription: "Water pump leaking at the housing",
		LaborHours:       3.5,
		Parts:            []PartSelection{{PartID: f.pump.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	return wo
}

// advanceToApproved walks a draft through submit and manager approval.
func (f *fixture) advanceToApproved(t *testing.T, id uuid.UUID) *model.WorkOrder {
	t.Helper()
	ctx := context.Background()
	submitted := model.StatusSubmitted
	_, err := f.orders.Update(ctx, UpdateWorkOrderInput{Principal: f.technician, ID: id, Status: &submitted})
	require.NoError(t, err)
	approved := model.StatusApproved
	wo, err := f.orders.Update(ctx, UpdateWorkOrderInput{Principal: f.manager, ID: id, Status: &approved})
	require.NoError(t, err)
	return wo
}

func statusPtr(s model.WorkOrderStatus) *model.WorkOrderStatus { return &s }

func float64Ptr(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }
