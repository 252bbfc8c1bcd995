package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvworks/servicedesk/internal/model"
)

// seedCompletedOrders finishes two orders for the fixture customer: the
// standard pump order (571.90) and a hose order (226.00).
func seedCompletedOrders(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()

	first := f.newDraftOrder(t)
	_, err := f.orders.Update(ctx, UpdateWorkOrderInput{
		Principal:    f.manager,
		ID:           first.ID,
		TechnicianID: &f.technician.UserID,
	})
	require.NoError(t, err)
	_, err = f.orders.ForceStatus(ctx, f.manager, first.ID, model.StatusCompleted)
	require.NoError(t, err)

	second, err := f.orders.Create(ctx, CreateWorkOrderInput{
		Principal:  f.technician,
		RVID:       f.rv.ID,
		LaborHours: 2,
		Parts:      []PartSelection{{PartID: f.hose.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = f.orders.ForceStatus(ctx, f.manager, second.ID, model.StatusCompleted)
	require.NoError(t, err)
}

func testPeriod(principal model.Principal) ReportPeriod {
	now := time.Now().UTC()
	return ReportPeriod{
		Principal: principal,
		From:      now.Add(-time.Hour),
		To:        now.Add(time.Hour),
	}
}

func TestRevenueReportAggregatesCompletedOrders(t *testing.T) {
	f := newFixture(t)
	seedCompletedOrders(t, f)

	metrics, err := f.reports.Revenue(context.Background(), testPeriod(f.manager))
	require.NoError(t, err)
	require.Len(t, metrics, 1)

	day := metrics[0]
	assert.Equal(t, 2, day.OrderCount)
	// 274.40 + 56.00 parts, 297.50 + 170.00 labor
	assert.InDelta(t, 330.40, day.PartsRevenue, 1e-9)
	assert.InDelta(t, 467.50, day.LaborRevenue, 1e-9)
	assert.InDelta(t, 797.90, day.TotalRevenue, 1e-9)
}

func TestRevenueReportExcludesOpenOrders(t *testing.T) {
	f := newFixture(t)
	f.newDraftOrder(t)

	metrics, err := f.reports.Revenue(context.Background(), testPeriod(f.manager))
	require.NoError(t, err)
	assert.Empty(t, metrics)
}

func TestRevenueReportForbiddenForTechnician(t *testing.T) {
	f := newFixture(t)
	_, err := f.reports.Revenue(context.Background(), testPeriod(f.technician))
	require.ErrorIs(t, err, ErrForbidden)
}

func TestReportPeriodValidation(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	_, err := f.reports.Revenue(context.Background(), ReportPeriod{
		Principal: f.manager,
		From:      now,
		To:        now.Add(-time.Hour),
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestProductivityReport(t *testing.T) {
	f := newFixture(t)
	seedCompletedOrders(t, f)

	entries, err := f.reports.Productivity(context.Background(), testPeriod(f.owner))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, f.technician.UserID, entries[0].TechnicianID)
	assert.Equal(t, "Toni Tech", entries[0].TechnicianName)
	assert.Equal(t, 1, entries[0].CompletedOrders)
	assert.InDelta(t, 571.90, entries[0].TotalRevenue, 1e-9)
}

func TestTopCustomersReport(t *testing.T) {
	f := newFixture(t)
	seedCompletedOrders(t, f)

	entries, err := f.reports.TopCustomers(context.Background(), testPeriod(f.manager), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, f.customer.ID, entries[0].CustomerID)
	assert.Equal(t, "Pat Rivera", entries[0].CustomerName)
	assert.Equal(t, 2, entries[0].TotalOrders)
	assert.InDelta(t, 797.90, entries[0].TotalSpent, 1e-9)
}

func TestFunnelReportBucketsByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.newDraftOrder(t)
	submitted := f.newDraftOrder(t)
	_, err := f.orders.Update(ctx, UpdateWorkOrderInput{
		Principal: f.technician,
		ID:        submitted.ID,
		Status:    statusPtr(model.StatusSubmitted),
	})
	require.NoError(t, err)

	entries, err := f.reports.Funnel(ctx, testPeriod(f.manager))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].DraftCount)
	assert.Equal(t, 1, entries[0].SubmittedCount)
	assert.Equal(t, 0, entries[0].CompletedCount)
}
