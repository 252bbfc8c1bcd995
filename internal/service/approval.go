package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/repository"
)

// ApprovalService owns the customer approval flow: issuing tokenized links,
// rendering them for the customer, and recording the decision exactly once.
type ApprovalService struct {
	orders      repository.WorkOrderRepository
	customers   repository.CustomerRepository
	rvs         repository.RVRepository
	dealerships repository.DealershipRepository
	logs        repository.ApprovalLogRepository
	hooks       []TransitionHook
	baseURL     string
	ttl         time.Duration
	log         zerolog.Logger

	now func() time.Time
}

func NewApprovalService(
	orders repository.WorkOrderRepository,
	customers repository.CustomerRepository,
	rvs repository.RVRepository,
	dealerships repository.DealershipRepository,
	logs repository.ApprovalLogRepository,
	baseURL string,
	ttl time.Duration,
	log zerolog.Logger,
) *ApprovalService {
	return &ApprovalService{
		orders:      orders,
		customers:   customers,
		rvs:         rvs,
		dealerships: dealerships,
		logs:        logs,
		baseURL:     baseURL,
		ttl:         ttl,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *ApprovalService) AddTransitionHook(h TransitionHook) {
	s.hooks = append(s.hooks, h)
}

type IssueInput struct {
	Principal      model.Principal
	WorkOrderID    uuid.UUID
	DeliveryMethod string
}

type IssueResult struct {
	WorkOrder   *model.WorkOrder
	Token       string
	ApprovalURL string
	ExpiresAt   time.Time
}

// Issue generates a fresh approval token, moves the order to
// pending_customer_approval and records a "sent" audit entry. Issuing again
// while an order is already pending rotates the token, so a resend always
// invalidates earlier links.
func (s *ApprovalService) Issue(ctx context.Context, input IssueInput) (*IssueResult, error) {
	if !input.Principal.Can(model.CapSendForApproval) {
		return nil, fmt.Errorf("%w: role %s cannot send orders for approval", ErrForbidden, input.Principal.Role)
	}

	wo, err := s.orders.GetByID(ctx, input.Principal.DealershipID, input.WorkOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: work order %s", ErrNotFound, input.WorkOrderID)
		}
		return nil, err
	}
	if wo.Status != model.StatusApproved && wo.Status != model.StatusPendingCustomerApproval {
		return nil, fmt.Errorf("%w: work order in status %s cannot be sent for approval", ErrConflict, wo.Status)
	}

	from := wo.Status
	token := uuid.NewString()
	expiresAt := s.now().Add(s.ttl)
	if err := s.orders.SetApprovalToken(ctx, wo.ID, token, expiresAt); err != nil {
		return nil, err
	}
	wo.ApprovalToken = &token
	wo.ApprovalTokenExpiresAt = &expiresAt
	wo.Status = model.StatusPendingCustomerApproval

	method := input.DeliveryMethod
	entry := model.ApprovalLog{
		WorkOrderID: wo.ID,
		Action:      model.ApprovalActionSent,
		CreatedAt:   s.now(),
	}
	if method != "" {
		entry.DeliveryMethod = &method
	}
	if err := s.logs.Append(ctx, &entry); err != nil {
		s.log.Error().Err(err).Str("work_order_id", wo.ID.String()).Msg("failed to record sent audit entry")
	}

	if from != wo.Status {
		for _, h := range s.hooks {
			h.OnTransition(ctx, wo, from, wo.Status)
		}
	}

	s.log.Info().
		Str("work_order_id", wo.ID.String()).
		Time("expires_at", expiresAt).
		Msg("approval link issued")
	return &IssueResult{
		WorkOrder:   wo,
		Token:       token,
		ApprovalURL: fmt.Sprintf("%s/approve/%s", s.baseURL, token),
		ExpiresAt:   expiresAt,
	}, nil
}

// ApprovalView is everything the public approval page needs to render an
// estimate. Internal identifiers stay off the wire.
type ApprovalView struct {
	WorkOrder      *model.WorkOrder `json:"workOrder"`
	CustomerName   string           `json:"customerName"`
	RVLabel        string           `json:"rvLabel"`
	DealershipName string           `json:"dealershipName"`
	CurrencySymbol string           `json:"currencySymbol"`
	ExpiresAt      time.Time        `json:"expiresAt"`
}

// Resolve loads the order behind an approval token for display and records
// a "viewed" audit entry. The token is the only credential; no dealership
// scoping applies.
func (s *ApprovalService) Resolve(ctx context.Context, token string, ipAddress, userAgent *string) (*ApprovalView, error) {
	wo, err := s.orders.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// Expiry wins over already-processed: a stale link reports expired even
	// when a decision was recorded before the token lapsed.
	if wo.ApprovalTokenExpiresAt == nil || s.now().After(*wo.ApprovalTokenExpiresAt) {
		return nil, ErrExpired
	}
	if wo.Status != model.StatusPendingCustomerApproval {
		return nil, ErrAlreadyProcessed
	}

	entry := model.ApprovalLog{
		WorkOrderID: wo.ID,
		Action:      model.ApprovalActionViewed,
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
		CreatedAt:   s.now(),
	}
	if err := s.logs.Append(ctx, &entry); err != nil {
		s.log.Error().Err(err).Str("work_order_id", wo.ID.String()).Msg("failed to record viewed audit entry")
	}

	view := &ApprovalView{
		WorkOrder: wo,
		ExpiresAt: *wo.ApprovalTokenExpiresAt,
	}
	if customer, err := s.customers.GetByID(ctx, wo.DealershipID, wo.CustomerID); err == nil {
		view.CustomerName = customer.Name
	}
	if rv, err := s.rvs.GetByID(ctx, wo.DealershipID, wo.RVID); err == nil {
		view.RVLabel = fmt.Sprintf("%d %s %s", rv.Year, rv.Make, rv.Model)
	}
	if dealership, err := s.dealerships.GetByID(ctx, wo.DealershipID); err == nil {
		view.DealershipName = dealership.Name
		view.CurrencySymbol = dealership.CurrencySymbol
	}
	return view, nil
}

type FinalizeInput struct {
	Token         string
	Approve       bool
	CustomerNotes *string
	IPAddress     *string
	UserAgent     *string
}

// Finalize records the customer's decision. The underlying update is
// conditional on the order still being pending, so when two requests race
// exactly one succeeds and the other reports ErrAlreadyProcessed.
func (s *ApprovalService) Finalize(ctx context.Context, input FinalizeInput) (*model.WorkOrder, error) {
	wo, err := s.orders.GetByToken(ctx, input.Token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if wo.ApprovalTokenExpiresAt == nil || s.now().After(*wo.ApprovalTokenExpiresAt) {
		return nil, ErrExpired
	}
	if wo.Status != model.StatusPendingCustomerApproval {
		return nil, ErrAlreadyProcessed
	}

	status := model.StatusCustomerRejected
	action := model.ApprovalActionRejected
	if input.Approve {
		status = model.StatusCustomerApproved
		action = model.ApprovalActionApproved
	}
	decidedAt := s.now()

	won, err := s.orders.FinalizeByToken(ctx, input.Token, status, decidedAt, input.CustomerNotes)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrAlreadyProcessed
	}

	entry := model.ApprovalLog{
		WorkOrderID: wo.ID,
		Action:      action,
		IPAddress:   input.IPAddress,
		UserAgent:   input.UserAgent,
		Notes:       input.CustomerNotes,
		CreatedAt:   decidedAt,
	}
	if err := s.logs.Append(ctx, &entry); err != nil {
		s.log.Error().Err(err).Str("work_order_id", wo.ID.String()).Msg("failed to record decision audit entry")
	}

	from := wo.Status
	wo.Status = status
	wo.CustomerNotes = input.CustomerNotes
	if input.Approve {
		wo.ApprovedAt = &decidedAt
	} else {
		wo.RejectedAt = &decidedAt
	}
	for _, h := range s.hooks {
		h.OnTransition(ctx, wo, from, status)
	}

	s.log.Info().
		Str("work_order_id", wo.ID.String()).
		Str("decision", string(action)).
		Msg("customer decision recorded")
	return wo, nil
}

// History returns the audit trail for an order, newest last.
func (s *ApprovalService) History(ctx context.Context, principal model.Principal, workOrderID uuid.UUID) ([]model.ApprovalLog, error) {
	if _, err := s.orders.GetByID(ctx, principal.DealershipID, workOrderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: work order %s", ErrNotFound, workOrderID)
		}
		return nil, err
	}
	return s.logs.ListByWorkOrder(ctx, workOrderID)
}

// SweepExpiredTokens clears tokens past their expiry on orders still
// pending. Run daily by the scheduler.
func (s *ApprovalService) SweepExpiredTokens(ctx context.Context) (int64, error) {
	cleared, err := s.orders.ClearExpiredTokens(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if cleared > 0 {
		s.log.Info().Int64("cleared", cleared).Msg("expired approval tokens cleared")
	}
	return cleared, nil
}
