package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvworks/servicedesk/internal/model"
)

type fakeSMS struct {
	sent []string
	err  error
}

func (f *fakeSMS) Send(ctx context.Context, to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, body)
	return nil
}

type fakeEmail struct {
	sent []EstimateEmail
	err  error
}

func (f *fakeEmail) SendEstimate(ctx context.Context, msg EstimateEmail) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newDispatch(f *fixture, sms *fakeSMS, email *fakeEmail) *DispatchService {
	return NewDispatchService(f.approvals, f.store.Customers(), f.store.RVs(), f.store.Dealerships(),
		sms, email, nil, zerolog.Nop())
}

func TestSendForApprovalBothChannels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wo := f.newDraftOrder(t)
	f.advanceToApproved(t, wo.ID)

	sms := &fakeSMS{}
	email := &fakeEmail{}
	result, err := newDispatch(f, sms, email).SendForApproval(ctx, SendForApprovalInput{
		Principal:   f.manager,
		WorkOrderID: wo.ID,
		ViaSMS:      true,
		ViaEmail:    true,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"sms", "email"}, result.Delivered)
	assert.Empty(t, result.Failed)
	assert.Equal(t, model.StatusPendingCustomerApproval, result.WorkOrder.Status)

	require.Len(t, sms.sent, 1)
	assert.Contains(t, sms.sent[0], result.ApprovalURL)
	require.Len(t, email.sent, 1)
	assert.Equal(t, "pat@example.com", email.sent[0].To)
	assert.InDelta(t, 571.90, email.sent[0].Total, 1e-9)

	entries, err := f.approvals.History(ctx, f.manager, wo.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].DeliveryMethod)
	assert.Equal(t, "sms,email", *entries[0].DeliveryMethod)
}

func TestSendForApprovalSurvivesProviderFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wo := f.newDraftOrder(t)
	f.advanceToApproved(t, wo.ID)

	sms := &fakeSMS{err: errors.New("twilio is down")}
	email := &fakeEmail{}
	result, err := newDispatch(f, sms, email).SendForApproval(ctx, SendForApprovalInput{
		Principal:   f.manager,
		WorkOrderID: wo.ID,
		ViaSMS:      true,
		ViaEmail:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"email"}, result.Delivered)
	assert.Equal(t, []string{"sms"}, result.Failed)

	// The token was issued regardless; the customer can still use the link.
	view, err := f.approvals.Resolve(ctx, tokenFromURL(result.ApprovalURL), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingCustomerApproval, view.WorkOrder.Status)
}

func TestSendForApprovalSkipsChannelWithoutContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.directory.UpdateCustomer(ctx, f.manager, f.customer.ID, CustomerInput{
		Name:  f.customer.Name,
		Email: f.customer.Email,
		Phone: "",
	})
	require.NoError(t, err)

	wo := f.newDraftOrder(t)
	f.advanceToApproved(t, wo.ID)

	sms := &fakeSMS{}
	email := &fakeEmail{}
	result, err := newDispatch(f, sms, email).SendForApproval(ctx, SendForApprovalInput{
		Principal:   f.manager,
		WorkOrderID: wo.ID,
		ViaSMS:      true,
		ViaEmail:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, result.Delivered)
	assert.Equal(t, []string{"sms"}, result.Failed)
	assert.Empty(t, sms.sent)
}

func TestSendForApprovalRequiresChannel(t *testing.T) {
	f := newFixture(t)
	wo := f.newDraftOrder(t)
	f.advanceToApproved(t, wo.ID)

	_, err := newDispatch(f, &fakeSMS{}, &fakeEmail{}).SendForApproval(context.Background(), SendForApprovalInput{
		Principal:   f.manager,
		WorkOrderID: wo.ID,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestSendForApprovalForbiddenForTechnician(t *testing.T) {
	f := newFixture(t)
	wo := f.newDraftOrder(t)
	f.advanceToApproved(t, wo.ID)

	_, err := newDispatch(f, &fakeSMS{}, &fakeEmail{}).SendForApproval(context.Background(), SendForApprovalInput{
		Principal:   f.technician,
		WorkOrderID: wo.ID,
		ViaSMS:      true,
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func tokenFromURL(url string) string {
	for i := len(url) - 1; i >= 0; i-- {
		if url[i] == '/' {
			return url[i+1:]
		}
	}
	return url
}
