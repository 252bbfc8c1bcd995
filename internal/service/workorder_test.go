package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvworks/servicedesk/internal/model"
)

func TestCreateWorkOrderSnapshotsPartsWithMarkup(t *testing.T) {
	f := newFixture(t)
	wo := f.newDraftOrder(t)

	require.Len(t, wo.Parts, 1)
	assert.Equal(t, "Water Pump", wo.Parts[0].Name)
	assert.InDelta(t, 274.40, wo.Parts[0].UnitPrice, 1e-9)
	// 274.40 parts + 3.5h * 85 labor
	assert.InDelta(t, 571.90, wo.TotalEstimate, 1e-9)
	assert.Equal(t, model.StatusDraft, wo.Status)
	assert.Equal(t, f.customer.ID, wo.CustomerID)
}

func TestCreateWorkOrderUsesDealershipDefaultLaborRate(t *testing.T) {
	f := newFixture(t)
	wo := f.newDraftOrder(t)
	assert.InDelta(t, 85, wo.LaborRate, 1e-9)

	custom, err := f.orders.Create(context.Background(), CreateWorkOrderInput{
		Principal:  f.technician,
		RVID:       f.rv.ID,
		LaborHours: 1,
		LaborRate:  float64Ptr(120),
	})
	require.NoError(t, err)
	assert.InDelta(t, 120, custom.LaborRate, 1e-9)
	assert.InDelta(t, 120, custom.TotalEstimate, 1e-9)
}

func TestCreateWorkOrderUnknownRV(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.Create(context.Background(), CreateWorkOrderInput{
		Principal:  f.technician,
		RVID:       f.pump.ID,
		LaborHours: 1,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotIsolatedFromCatalogChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wo := f.newDraftOrder(t)

	_, err := f.directory.UpdatePart(ctx, f.manager, f.pump.ID, PartInput{
		Name:  "Water Pump",
		Price: 999,
	})
	require.NoError(t, err)

	// Touching an unrelated field must not reprice the existing line.
	updated, err := f.orders.Update(ctx, UpdateWorkOrderInput{
		Principal:       f.technician,
		ID:              wo.ID,
		TechnicianNotes: strPtr("pressure tested"),
	})
	require.NoError(t, err)
	assert.InDelta(t, 274.40, updated.Parts[0].UnitPrice, 1e-9)
	assert.InDelta(t, 571.90, updated.TotalEstimate, 1e-9)

	// Resubmitting the same part list keeps the old snapshot price too.
	resent, err := f.orders.Update(ctx, UpdateWorkOrderInput{
		Principal: f.technician,
		ID:        wo.ID,
		Parts:     &[]PartSelection{{PartID: f.pump.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 274.40, resent.Parts[0].UnitPrice, 1e-9)

	// A brand new line is priced from the current catalog.
	both, err := f.orders.Update(ctx, UpdateWorkOrderInput{
		Principal: f.technician,
		ID:        wo.ID,
		Parts: &[]PartSelection{
			{PartID: f.pump.ID, Quantity: 1},
			{PartID: f.hose.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, both.Parts, 2)
	assert.InDelta(t, 274.40, both.Parts[0].UnitPrice, 1e-9)
	assert.InDelta(t, 28.00, both.Parts[1].UnitPrice, 1e-9)
}

func TestTotalEstimateRecomputedOnEveryUpdate(t *testing.T) {
	f := newFixture(t)
	wo := f.newDraftOrder(t)

	updated, err := f.orders.Update(context.Background(), UpdateWorkOrderInput{
		Principal:  f.technician,
		ID:         wo.ID,
		LaborHours: float64Ptr(2),
		LaborRate:  float64Ptr(100),
	})
	require.NoError(t, err)
	// 274.40 parts + 2h * 100
	assert.InDelta(t, 474.40, updated.TotalEstimate, 1e-9)
}

func TestIllegalTransitionRejected(t *testing.T) {
	f := newFixture(t)
	wo := f.newDraftOrder(t)

	_, err := f.orders.Update(context.Background(), UpdateWorkOrderInput{
		Principal: f.manager,
		ID:        wo.ID,
		Status:    statusPtr(model.StatusApproved),
	})
	require.ErrorIs(t, err, ErrConflict)

	stored, err := f.orders.Get(context.Background(), f.manager, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, stored.Status)
}

func TestTerminalStatusesRejectFurtherTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wo := f.newDraftOrder(t)
	f.advanceToApproved(t, wo.ID)

	completed, err := f.orders.Update(ctx, UpdateWorkOrderInput{
		Principal: f.manager,
		ID:        wo.ID,
		Status:    statusPtr(model.StatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, completed.Status)

	_, err = f.orders.Update(ctx, UpdateWorkOrderInput{
		Principal: f.manager,
		ID:        wo.ID,
		Status:    statusPtr(model.StatusSubmitted),
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestTechnicianCannotDecideSubmittedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wo := f.newDraftOrder(t)

	_, err := f.orders.Update(ctx, UpdateWorkOrderInput{
		Principal: f.technician,
		ID:        wo.ID,
		Status:    statusPtr(model.StatusSubmitted),
	})
	require.NoError(t, err)

	_, err = f.orders.Update(ctx, UpdateWorkOrderInput{
		Principal: f.technician,
		ID:        wo.ID,
		Status:    statusPtr(model.StatusApproved),
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCustomerStatusesNotSettableDirectly(t *testing.T) {
	f := newFixture(t)
	wo := f.newDraftOrder(t)
	f.advanceToApproved(t, wo.ID)

	_, err := f.orders.Update(context.Background(), UpdateWorkOrderInput{
		Principal: f.manager,
		ID:        wo.ID,
		Status:    statusPtr(model.StatusPendingCustomerApproval),
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestForceStatusRequiresCapability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wo := f.newDraftOrder(t)

	_, err := f.orders.ForceStatus(ctx, f.technician, wo.ID, model.StatusCompleted)
	require.ErrorIs(t, err, ErrForbidden)

	forced, err := f.orders.ForceStatus(ctx, f.manager, wo.ID, model.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, forced.Status)
}

func TestSubmitNotifiesApprovers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wo := f.newDraftOrder(t)

	_, err := f.orders.Update(ctx, UpdateWorkOrderInput{
		Principal: f.technician,
		ID:        wo.ID,
		Status:    statusPtr(model.StatusSubmitted),
	})
	require.NoError(t, err)

	managerInbox, err := f.notifications.List(ctx, f.manager, true)
	require.NoError(t, err)
	require.Len(t, managerInbox, 1)
	assert.Equal(t, model.NotificationWorkOrderSubmitted, managerInbox[0].Type)

	techInbox, err := f.notifications.List(ctx, f.technician, true)
	require.NoError(t, err)
	assert.Empty(t, techInbox)
}

func TestCreateDirectlySubmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wo, err := f.orders.Create(ctx, CreateWorkOrderInput{
		Principal:  f.technician,
		RVID:       f.rv.ID,
		LaborHours: 1,
		Status:     statusPtr(model.StatusSubmitted),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, wo.Status)

	managerInbox, err := f.notifications.List(ctx, f.manager, true)
	require.NoError(t, err)
	require.Len(t, managerInbox, 1)
	assert.Equal(t, model.NotificationWorkOrderSubmitted, managerInbox[0].Type)
}

func TestCreateRejectsOtherInitialStatuses(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.Create(context.Background(), CreateWorkOrderInput{
		Principal:  f.technician,
		RVID:       f.rv.ID,
		LaborHours: 1,
		Status:     statusPtr(model.StatusApproved),
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestWorkOrdersScopedToDealership(t *testing.T) {
	f := newFixture(t)
	wo := f.newDraftOrder(t)

	outsider := seedStaff(t, f.store, uuid.New(), "Other Owner", model.RoleOwner)
	_, err := f.orders.Get(context.Background(), outsider, wo.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
