package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/repository"
)

// NotificationService fans work order status changes out to in-app
// notifications and serves the notification inbox. It plugs into the work
// order and approval services as a TransitionHook.
type NotificationService struct {
	notifications repository.NotificationRepository
	profiles      repository.ProfileRepository
	log           zerolog.Logger
}

func NewNotificationService(
	notifications repository.NotificationRepository,
	profiles repository.ProfileRepository,
	log zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		profiles:      profiles,
		log:           log,
	}
}

var _ TransitionHook = (*NotificationService)(nil)

// OnTransition creates notifications for the people a status change
// concerns. Failures are logged and swallowed; notifications never block a
// lifecycle operation.
func (s *NotificationService) OnTransition(ctx context.Context, wo *model.WorkOrder, from, to model.WorkOrderStatus) {
	switch to {
	case model.StatusSubmitted:
		s.notifyApprovers(ctx, wo, model.NotificationWorkOrderSubmitted,
			"Work order submitted",
			"A work order is waiting for review.")
	case model.StatusApproved:
		s.notifyTechnician(ctx, wo, model.NotificationWorkOrderApproved,
			"Work order approved",
			"Your work order was approved by a manager.")
	case model.StatusRejected:
		s.notifyTechnician(ctx, wo, model.NotificationWorkOrderRejected,
			"Work order rejected",
			"Your work order was rejected by a manager.")
	case model.StatusCustomerApproved:
		msg := fmt.Sprintf("The customer approved the estimate of %.2f.", wo.TotalEstimate)
		s.notifyApprovers(ctx, wo, model.NotificationCustomerApproved, "Estimate approved", msg)
		s.notifyTechnician(ctx, wo, model.NotificationCustomerApproved, "Estimate approved", msg)
	case model.StatusCustomerRejected:
		s.notifyApprovers(ctx, wo, model.NotificationCustomerRejected,
			"Estimate declined",
			"The customer declined the estimate.")
		s.notifyTechnician(ctx, wo, model.NotificationCustomerRejected,
			"Estimate declined",
			"The customer declined the estimate.")
	}
}

// notifyApprovers targets every owner and manager in the dealership.
func (s *NotificationService) notifyApprovers(ctx context.Context, wo *model.WorkOrder, typ model.NotificationType, title, message string) {
	profiles, err := s.profiles.ListByDealership(ctx, wo.DealershipID)
	if err != nil {
		s.log.Error().Err(err).Str("work_order_id", wo.ID.String()).Msg("failed to load staff for notification")
		return
	}
	for _, p := range profiles {
		if !p.Role.Can(model.CapApproveOrders) || p.Status != model.ProfileActive {
			continue
		}
		s.create(ctx, p.ID, wo, typ, title, message)
	}
}

func (s *NotificationService) notifyTechnician(ctx context.Context, wo *model.WorkOrder, typ model.NotificationType, title, message string) {
	if wo.TechnicianID == nil {
		return
	}
	s.create(ctx, *wo.TechnicianID, wo, typ, title, message)
}

func (s *NotificationService) create(ctx context.Context, userID uuid.UUID, wo *model.WorkOrder, typ model.NotificationType, title, message string) {
	woID := wo.ID
	n := &model.Notification{
		ID:           uuid.New(),
		UserID:       userID,
		DealershipID: wo.DealershipID,
		Title:        title,
		Message:      message,
		Type:         typ,
		WorkOrderID:  &woID,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("work_order_id", wo.ID.String()).
			Msg("failed to create notification")
	}
}

func (s *NotificationService) List(ctx context.Context, principal model.Principal, unreadOnly bool) ([]model.Notification, error) {
	return s.notifications.ListByUser(ctx, principal.UserID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, principal.UserID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: notification %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, principal model.Principal) error {
	return s.notifications.MarkAllRead(ctx, principal.UserID)
}
