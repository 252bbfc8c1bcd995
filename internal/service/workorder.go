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

// TransitionHook is notified after a work order changes status. Hooks run
// best-effort; a hook failure never fails the triggering operation.
type TransitionHook interface {
	OnTransition(ctx context.Context, wo *model.WorkOrder, from, to model.WorkOrderStatus)
}

type WorkOrderService struct {
	orders      repository.WorkOrderRepository
	parts       repository.PartRepository
	rvs         repository.RVRepository
	customers   repository.CustomerRepository
	dealerships repository.DealershipRepository
	hooks       []TransitionHook
	log         zerolog.Logger
}

func NewWorkOrderService(
	orders repository.WorkOrderRepository,
	parts repository.PartRepository,
	rvs repository.RVRepository,
	customers repository.CustomerRepository,
	dealerships repository.DealershipRepository,
	log zerolog.Logger,
) *WorkOrderService {
	return &WorkOrderService{
		orders:      orders,
		parts:       parts,
		rvs:         rvs,
		customers:   customers,
		dealerships: dealerships,
		log:         log,
	}
}

// AddTransitionHook registers a hook for status changes. Not safe to call
// after the service starts handling requests.
func (s *WorkOrderService) AddTransitionHook(h TransitionHook) {
	s.hooks = append(s.hooks, h)
}

// PartSelection references a catalog part to copy onto a work order.
type PartSelection struct {
	PartID   uuid.UUID `json:"partId"`
	Quantity int       `json:"quantity"`
}

type PhotoInput struct {
	StoragePath string `json:"storagePath"`
	Filename    string `json:"filename"`
}

type CreateWorkOrderInput struct {
	Principal        model.Principal
	RVID             uuid.UUID
	IssueDescription string
	LaborHours       float64
	LaborRate        *float64
	Status           *model.WorkOrderStatus
	TechnicianNotes  *string
	Parts            []PartSelection
	Photos           []PhotoInput
}

// Create opens a new work order. Part lines are snapshots: the catalog
// price plus the dealership markup is copied onto the order and never
// follows later catalog changes. An order can start in draft (the default)
// or directly in submitted; any other initial status is rejected.
func (s *WorkOrderService) Create(ctx context.Context, input CreateWorkOrderInput) (*model.WorkOrder, error) {
	if input.RVID == uuid.Nil {
		return nil, fmt.Errorf("%w: rvId is required", ErrValidation)
	}
	if input.LaborHours < 0 {
		return nil, fmt.Errorf("%w: laborHours must not be negative", ErrValidation)
	}
	status := model.StatusDraft
	if input.Status != nil {
		if *input.Status != model.StatusDraft && *input.Status != model.StatusSubmitted {
			return nil, fmt.Errorf("%w: a work order can only start in draft or submitted", ErrValidation)
		}
		status = *input.Status
	}

	rv, err := s.rvs.GetByID(ctx, input.Principal.DealershipID, input.RVID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: rv %s", ErrNotFound, input.RVID)
		}
		return nil, err
	}

	dealership, err := s.dealerships.GetByID(ctx, input.Principal.DealershipID)
	if err != nil {
		return nil, err
	}

	laborRate := dealership.DefaultLaborRate
	if input.LaborRate != nil {
		if *input.LaborRate < 0 {
			return nil, fmt.Errorf("%w: laborRate must not be negative", ErrValidation)
		}
		laborRate = *input.LaborRate
	}

	lines, err := s.snapshotParts(ctx, input.Principal.DealershipID, dealership.PartsMarkupPercent, input.Parts, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wo := &model.WorkOrder{
		ID:               uuid.New(),
		DealershipID:     input.Principal.DealershipID,
		RVID:             rv.ID,
		CustomerID:       rv.CustomerID,
		IssueDescription: input.IssueDescription,
		LaborHours:       input.LaborHours,
		LaborRate:        laborRate,
		Status:           status,
		TechnicianNotes:  input.TechnicianNotes,
		Parts:            lines,
		Photos:           photosFromInput(input.Photos),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	wo.TotalEstimate = ComputeTotal(wo.Parts, wo.LaborHours, wo.LaborRate)

	if err := s.orders.Create(ctx, wo); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("work_order_id", wo.ID.String()).
		Str("rv_id", wo.RVID.String()).
		Str("status", string(wo.Status)).
		Float64("total_estimate", wo.TotalEstimate).
		Msg("work order created")
	if wo.Status == model.StatusSubmitted {
		s.fireTransition(ctx, wo, model.StatusDraft, model.StatusSubmitted)
	}
	return wo, nil
}

func (s *WorkOrderService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.WorkOrder, error) {
	wo, err := s.orders.GetByID(ctx, principal.DealershipID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: work order %s", ErrNotFound, id)
		}
		return nil, err
	}
	return wo, nil
}

func (s *WorkOrderService) List(ctx context.Context, principal model.Principal) ([]model.WorkOrder, error) {
	return s.orders.List(ctx, principal.DealershipID)
}

func (s *WorkOrderService) ListByRV(ctx context.Context, principal model.Principal, rvID uuid.UUID) ([]model.WorkOrder, error) {
	return s.orders.ListByRV(ctx, principal.DealershipID, rvID)
}

type UpdateWorkOrderInput struct {
	Principal model.Principal
	ID        uuid.UUID

	IssueDescription *string
	LaborHours       *float64
	LaborRate        *float64
	Status           *model.WorkOrderStatus
	TechnicianNotes  *string
	ManagerNotes     *string
	TechnicianID     *uuid.UUID
	Parts            *[]PartSelection
	Photos           *[]PhotoInput
}

// Update merges the given fields into the stored order and recomputes the
// estimate. A status change must be a legal lifecycle step; use ForceStatus
// to override. Part lines already on the order keep their snapshot price,
// newly added lines are priced from the current catalog.
func (s *WorkOrderService) Update(ctx context.Context, input UpdateWorkOrderInput) (*model.WorkOrder, error) {
	wo, err := s.Get(ctx, input.Principal, input.ID)
	if err != nil {
		return nil, err
	}

	from := wo.Status
	if input.Status != nil && *input.Status != from {
		to := *input.Status
		if !to.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
		}
		if !from.CanTransition(to) {
			return nil, fmt.Errorf("%w: cannot move work order from %s to %s", ErrConflict, from, to)
		}
		// The customer approval statuses are owned by the approval flow:
		// pending is entered by sending the link, the decision statuses by
		// the customer following it.
		switch to {
		case model.StatusPendingCustomerApproval, model.StatusCustomerApproved, model.StatusCustomerRejected:
			return nil, fmt.Errorf("%w: status %s is set by the customer approval flow", ErrValidation, to)
		}
		if requiresApprovalCapability(from, to) && !input.Principal.Can(model.CapApproveOrders) {
			return nil, fmt.Errorf("%w: role %s cannot decide submitted orders", ErrForbidden, input.Principal.Role)
		}
		wo.Status = to
	}

	if input.IssueDescription != nil {
		wo.IssueDescription = *input.IssueDescription
	}
	if input.LaborHours != nil {
		if *input.LaborHours < 0 {
			return nil, fmt.Errorf("%w: laborHours must not be negative", ErrValidation)
		}
		wo.LaborHours = *input.LaborHours
	}
	if input.LaborRate != nil {
		if *input.LaborRate < 0 {
			return nil, fmt.Errorf("%w: laborRate must not be negative", ErrValidation)
		}
		wo.LaborRate = *input.LaborRate
	}
	if input.TechnicianNotes != nil {
		wo.TechnicianNotes = input.TechnicianNotes
	}
	if input.ManagerNotes != nil {
		wo.ManagerNotes = input.ManagerNotes
	}
	if input.TechnicianID != nil {
		wo.TechnicianID = input.TechnicianID
	}
	if input.Photos != nil {
		wo.Photos = photosFromInput(*input.Photos)
	}
	if input.Parts != nil {
		dealership, err := s.dealerships.GetByID(ctx, input.Principal.DealershipID)
		if err != nil {
			return nil, err
		}
		lines, err := s.snapshotParts(ctx, input.Principal.DealershipID, dealership.PartsMarkupPercent, *input.Parts, wo.Parts)
		if err != nil {
			return nil, err
		}
		wo.Parts = lines
	}

	wo.TotalEstimate = ComputeTotal(wo.Parts, wo.LaborHours, wo.LaborRate)
	wo.UpdatedAt = time.Now().UTC()

	if err := s.orders.Update(ctx, wo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: work order %s", ErrNotFound, input.ID)
		}
		return nil, err
	}

	if wo.Status != from {
		s.fireTransition(ctx, wo, from, wo.Status)
	}
	return wo, nil
}

// ForceStatus moves an order to any valid status, skipping the transition
// table. Reserved for managers correcting mistakes.
func (s *WorkOrderService) ForceStatus(ctx context.Context, principal model.Principal, id uuid.UUID, status model.WorkOrderStatus) (*model.WorkOrder, error) {
	if !principal.Can(model.CapForceStatus) {
		return nil, fmt.Errorf("%w: role %s cannot force status", ErrForbidden, principal.Role)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	wo, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	from := wo.Status
	if from == status {
		return wo, nil
	}
	wo.Status = status
	wo.UpdatedAt = time.Now().UTC()
	if err := s.orders.Update(ctx, wo); err != nil {
		return nil, err
	}
	s.log.Warn().
		Str("work_order_id", id.String()).
		Str("from", string(from)).
		Str("to", string(status)).
		Str("user_id", principal.UserID.String()).
		Msg("work order status forced")
	s.fireTransition(ctx, wo, from, status)
	return wo, nil
}

func (s *WorkOrderService) fireTransition(ctx context.Context, wo *model.WorkOrder, from, to model.WorkOrderStatus) {
	for _, h := range s.hooks {
		h.OnTransition(ctx, wo, from, to)
	}
}

// snapshotParts resolves part selections against the catalog. Selections
// matching an existing line reuse that line's snapshot price so catalog
// changes never reprice work already quoted.
func (s *WorkOrderService) snapshotParts(ctx context.Context, dealershipID uuid.UUID, markupPercent float64, selections []PartSelection, existing []model.WorkOrderPart) ([]model.WorkOrderPart, error) {
	priorPrice := make(map[uuid.UUID]float64, len(existing))
	for _, line := range existing {
		priorPrice[line.PartID] = line.UnitPrice
	}

	lines := make([]model.WorkOrderPart, 0, len(selections))
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			return nil, fmt.Errorf("%w: part quantity must be positive", ErrValidation)
		}
		part, err := s.parts.GetByID(ctx, dealershipID, sel.PartID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: part %s", ErrNotFound, sel.PartID)
			}
			return nil, err
		}
		unitPrice, ok := priorPrice[sel.PartID]
		if !ok {
			unitPrice = ApplyMarkup(part.Price, markupPercent)
		}
		lines = append(lines, model.WorkOrderPart{
			ID:        uuid.New(),
			PartID:    part.ID,
			Name:      part.Name,
			UnitPrice: unitPrice,
			Quantity:  sel.Quantity,
		})
	}
	return lines, nil
}

func photosFromInput(inputs []PhotoInput) []model.WorkOrderPhoto {
	photos := make([]model.WorkOrderPhoto, 0, len(inputs))
	for i, in := range inputs {
		photos = append(photos, model.WorkOrderPhoto{
			ID:          uuid.New(),
			StoragePath: in.StoragePath,
			Filename:    in.Filename,
			Position:    i,
		})
	}
	return photos
}

// requiresApprovalCapability reports whether the step is the internal
// manager decision on a submitted order.
func requiresApprovalCapability(from, to model.WorkOrderStatus) bool {
	return from == model.StatusSubmitted &&
		(to == model.StatusApproved || to == model.StatusRejected)
}
