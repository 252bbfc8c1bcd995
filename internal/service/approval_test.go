package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvworks/servicedesk/internal/model"
)

func issueApproval(t *testing.T, f *fixture) *IssueResult {
	t.Helper()
	wo := f.newDraftOrder(t)
	f.advanceToApproved(t, wo.ID)
	issued, err := f.approvals.Issue(context.Background(), IssueInput{
		Principal:      f.manager,
		WorkOrderID:    wo.ID,
		DeliveryMethod: "sms",
	})
	require.NoError(t, err)
	return issued
}

func TestIssueMovesOrderToPendingAndLogsSent(t *testing.T) {
	f := newFixture(t)
	issued := issueApproval(t, f)

	assert.Equal(t, model.StatusPendingCustomerApproval, issued.WorkOrder.Status)
	assert.NotEmpty(t, issued.Token)
	assert.Contains(t, issued.ApprovalURL, issued.Token)

	entries, err := f.approvals.History(context.Background(), f.manager, issued.WorkOrder.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ApprovalActionSent, entries[0].Action)
	require.NotNil(t, entries[0].DeliveryMethod)
	assert.Equal(t, "sms", *entries[0].DeliveryMethod)
}

func TestIssueRequiresCapability(t *testing.T) {
	f := newFixture(t)
	wo := f.newDraftOrder(t)
	f.advanceToApproved(t, wo.ID)

	_, err := f.approvals.Issue(context.Background(), IssueInput{
		Principal:   f.technician,
		WorkOrderID: wo.ID,
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestIssueRejectsDraftOrder(t *testing.T) {
	f := newFixture(t)
	wo := f.newDraftOrder(t)

	_, err := f.approvals.Issue(context.Background(), IssueInput{
		Principal:   f.manager,
		WorkOrderID: wo.ID,
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestReissueRotatesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := issueApproval(t, f)

	second, err := f.approvals.Issue(ctx, IssueInput{
		Principal:   f.manager,
		WorkOrderID: first.WorkOrder.ID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = f.approvals.Resolve(ctx, first.Token, nil, nil)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.approvals.Resolve(ctx, second.Token, nil, nil)
	require.NoError(t, err)
}

func TestResolveReturnsViewAndLogsViewed(t *testing.T) {
	f := newFixture(t)
	issued := issueApproval(t, f)

	ip := "203.0.113.9"
	ua := "Mozilla/5.0"
	view, err := f.approvals.Resolve(context.Background(), issued.Token, &ip, &ua)
	require.NoError(t, err)
	assert.Equal(t, "Pat Rivera", view.CustomerName)
	assert.Equal(t, "2019 Winnebago Vista", view.RVLabel)
	assert.Equal(t, "Sunset RV", view.DealershipName)
	assert.InDelta(t, 571.90, view.WorkOrder.TotalEstimate, 1e-9)

	entries, err := f.approvals.History(context.Background(), f.manager, issued.WorkOrder.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ApprovalActionViewed, entries[1].Action)
	require.NotNil(t, entries[1].IPAddress)
	assert.Equal(t, ip, *entries[1].IPAddress)
}

func TestTokenValidUntilExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.approvals.now = func() time.Time { return issuedAt }
	issued := issueApproval(t, f)

	// One second before the deadline the link still works.
	f.approvals.now = func() time.Time { return issuedAt.Add(7*24*time.Hour - time.Second) }
	_, err := f.approvals.Resolve(context.Background(), issued.Token, nil, nil)
	require.NoError(t, err)

	// Past the deadline it is gone.
	f.approvals.now = func() time.Time { return issuedAt.Add(7*24*time.Hour + time.Second) }
	_, err = f.approvals.Resolve(context.Background(), issued.Token, nil, nil)
	require.ErrorIs(t, err, ErrExpired)
}

func TestFinalizeApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issued := issueApproval(t, f)

	notes := "please call before starting"
	wo, err := f.approvals.Finalize(ctx, FinalizeInput{
		Token:         issued.Token,
		Approve:       true,
		CustomerNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCustomerApproved, wo.Status)
	require.NotNil(t, wo.ApprovedAt)

	stored, err := f.orders.Get(ctx, f.manager, wo.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCustomerApproved, stored.Status)
	require.NotNil(t, stored.CustomerNotes)
	assert.Equal(t, notes, *stored.CustomerNotes)

	entries, err := f.approvals.History(ctx, f.manager, wo.ID)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, model.ApprovalActionApproved, last.Action)
}

func TestFinalizeReject(t *testing.T) {
	f := newFixture(t)
	issued := issueApproval(t, f)

	wo, err := f.approvals.Finalize(context.Background(), FinalizeInput{
		Token:   issued.Token,
		Approve: false,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCustomerRejected, wo.Status)
	require.NotNil(t, wo.RejectedAt)
}

func TestFinalizeTwiceReportsAlreadyProcessed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issued := issueApproval(t, f)

	_, err := f.approvals.Finalize(ctx, FinalizeInput{Token: issued.Token, Approve: true})
	require.NoError(t, err)

	_, err = f.approvals.Finalize(ctx, FinalizeInput{Token: issued.Token, Approve: false})
	require.ErrorIs(t, err, ErrAlreadyProcessed)

	// The first decision stands.
	stored, err := f.orders.Get(ctx, f.manager, issued.WorkOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCustomerApproved, stored.Status)
}

func TestConcurrentFinalizeHasOneWinner(t *testing.T) {
	f := newFixture(t)
	issued := issueApproval(t, f)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.approvals.Finalize(context.Background(), FinalizeInput{
				Token:   issued.Token,
				Approve: i == 0,
			})
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrAlreadyProcessed):
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}

func TestFinalizeExpiredLeavesOrderUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.approvals.now = func() time.Time { return issuedAt }
	issued := issueApproval(t, f)

	f.approvals.now = func() time.Time { return issuedAt.Add(8 * 24 * time.Hour) }
	_, err := f.approvals.Finalize(ctx, FinalizeInput{Token: issued.Token, Approve: true})
	require.ErrorIs(t, err, ErrExpired)

	stored, err := f.orders.Get(ctx, f.manager, issued.WorkOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingCustomerApproval, stored.Status)
	assert.Nil(t, stored.ApprovedAt)

	for _, entry := range mustHistory(t, f, issued.WorkOrder.ID) {
		assert.NotEqual(t, model.ApprovalActionApproved, entry.Action)
		assert.NotEqual(t, model.ApprovalActionRejected, entry.Action)
	}
}

func TestExpiryReportedOverAlreadyProcessed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.approvals.now = func() time.Time { return issuedAt }
	issued := issueApproval(t, f)

	_, err := f.approvals.Finalize(ctx, FinalizeInput{Token: issued.Token, Approve: true})
	require.NoError(t, err)

	// Before the deadline a repeat click reports the recorded decision.
	f.approvals.now = func() time.Time { return issuedAt.Add(24 * time.Hour) }
	_, err = f.approvals.Resolve(ctx, issued.Token, nil, nil)
	require.ErrorIs(t, err, ErrAlreadyProcessed)

	// After the deadline the same link reports expired, decided or not.
	f.approvals.now = func() time.Time { return issuedAt.Add(8 * 24 * time.Hour) }
	_, err = f.approvals.Resolve(ctx, issued.Token, nil, nil)
	require.ErrorIs(t, err, ErrExpired)
	_, err = f.approvals.Finalize(ctx, FinalizeInput{Token: issued.Token, Approve: false})
	require.ErrorIs(t, err, ErrExpired)
}

func TestFinalizeUnknownToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.approvals.Finalize(context.Background(), FinalizeInput{
		Token:   "nonexistent-token",
		Approve: true,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerDecisionNotifiesStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issued := issueApproval(t, f)

	_, err := f.approvals.Finalize(ctx, FinalizeInput{Token: issued.Token, Approve: true})
	require.NoError(t, err)

	inbox, err := f.notifications.List(ctx, f.manager, true)
	require.NoError(t, err)
	var decisions int
	for _, n := range inbox {
		if n.Type == model.NotificationCustomerApproved {
			decisions++
		}
	}
	assert.Equal(t, 1, decisions)
}

func TestSweepClearsOnlyExpiredTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.approvals.now = func() time.Time { return issuedAt }
	stale := issueApproval(t, f)

	f.approvals.now = func() time.Time { return issuedAt.Add(3 * 24 * time.Hour) }
	fresh := issueApproval(t, f)

	f.approvals.now = func() time.Time { return issuedAt.Add(8 * 24 * time.Hour) }
	cleared, err := f.approvals.SweepExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	_, err = f.approvals.Resolve(ctx, stale.Token, nil, nil)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.approvals.Resolve(ctx, fresh.Token, nil, nil)
	require.NoError(t, err)
}

func mustHistory(t *testing.T, f *fixture, workOrderID uuid.UUID) []model.ApprovalLog {
	t.Helper()
	entries, err := f.approvals.History(context.Background(), f.manager, workOrderID)
	require.NoError(t, err)
	return entries
}
