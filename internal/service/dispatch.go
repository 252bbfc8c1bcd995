package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/repository"
)

// SMSSender delivers a text message. Implemented by the Twilio adapter.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// EstimateEmail carries everything the email adapter needs to render and
// send the estimate message.
type EstimateEmail struct {
	To             string
	CustomerName   string
	DealershipName string
	RVLabel        string
	ApprovalURL    string
	Total          float64
	CurrencySymbol string
	ExpiresAt      time.Time
	AttachmentPDF  []byte
}

type EmailSender interface {
	SendEstimate(ctx context.Context, msg EstimateEmail) error
}

// EstimateDocument is the input to the PDF renderer.
type EstimateDocument struct {
	WorkOrder      *model.WorkOrder
	CustomerName   string
	RVLabel        string
	DealershipName string
	CurrencySymbol string
}

type EstimateRenderer interface {
	Render(doc EstimateDocument) ([]byte, error)
}

// DispatchService sends approval links to customers over SMS and email.
// Delivery is at-least-once and best-effort: the token is issued and the
// order moved to pending before any send, and a provider failure is
// reported in the result rather than rolling anything back.
type DispatchService struct {
	approvals   *ApprovalService
	customers   repository.CustomerRepository
	rvs         repository.RVRepository
	dealerships repository.DealershipRepository
	sms         SMSSender
	email       EmailSender
	pdf         EstimateRenderer
	log         zerolog.Logger
}

func NewDispatchService(
	approvals *ApprovalService,
	customers repository.CustomerRepository,
	rvs repository.RVRepository,
	dealerships repository.DealershipRepository,
	sms SMSSender,
	email EmailSender,
	pdf EstimateRenderer,
	log zerolog.Logger,
) *DispatchService {
	return &DispatchService{
		approvals:   approvals,
		customers:   customers,
		rvs:         rvs,
		dealerships: dealerships,
		sms:         sms,
		email:       email,
		pdf:         pdf,
		log:         log,
	}
}

type SendForApprovalInput struct {
	Principal   model.Principal
	WorkOrderID uuid.UUID
	ViaSMS      bool `json:"viaSms"`
	ViaEmail    bool `json:"viaEmail"`
}

type SendForApprovalResult struct {
	WorkOrder   *model.WorkOrder `json:"workOrder"`
	ApprovalURL string           `json:"approvalUrl"`
	ExpiresAt   time.Time        `json:"expiresAt"`
	Delivered   []string         `json:"delivered"`
	Failed      []string         `json:"failed"`
}

// SendForApproval issues an approval link and pushes it to the customer
// over the requested channels. Channels without a usable contact on file
// are skipped and reported as failed.
func (s *DispatchService) SendForApproval(ctx context.Context, input SendForApprovalInput) (*SendForApprovalResult, error) {
	if !input.ViaSMS && !input.ViaEmail {
		return nil, fmt.Errorf("%w: at least one delivery channel is required", ErrValidation)
	}

	var channels []string
	if input.ViaSMS {
		channels = append(channels, "sms")
	}
	if input.ViaEmail {
		channels = append(channels, "email")
	}

	issued, err := s.approvals.Issue(ctx, IssueInput{
		Principal:      input.Principal,
		WorkOrderID:    input.WorkOrderID,
		DeliveryMethod: strings.Join(channels, ","),
	})
	if err != nil {
		return nil, err
	}
	wo := issued.WorkOrder

	customer, err := s.customers.GetByID(ctx, input.Principal.DealershipID, wo.CustomerID)
	if err != nil {
		return nil, err
	}
	dealership, err := s.dealerships.GetByID(ctx, input.Principal.DealershipID)
	if err != nil {
		return nil, err
	}
	rvLabel := ""
	if rv, err := s.rvs.GetByID(ctx, input.Principal.DealershipID, wo.RVID); err == nil {
		rvLabel = fmt.Sprintf("%d %s %s", rv.Year, rv.Make, rv.Model)
	}

	result := &SendForApprovalResult{
		WorkOrder:   wo,
		ApprovalURL: issued.ApprovalURL,
		ExpiresAt:   issued.ExpiresAt,
	}

	if input.ViaSMS {
		switch {
		case customer.Phone == "":
			result.Failed = append(result.Failed, "sms")
			s.log.Warn().Str("work_order_id", wo.ID.String()).Msg("sms requested but customer has no phone")
		default:
			body := fmt.Sprintf("%s has an estimate ready for your %s (%s%.2f). Review and approve: %s",
				dealership.Name, rvLabel, dealership.CurrencySymbol, wo.TotalEstimate, issued.ApprovalURL)
			if err := s.sms.Send(ctx, customer.Phone, body); err != nil {
				result.Failed = append(result.Failed, "sms")
				s.log.Warn().Err(err).Str("work_order_id", wo.ID.String()).Msg("sms delivery failed")
			} else {
				result.Delivered = append(result.Delivered, "sms")
			}
		}
	}

	if input.ViaEmail {
		switch {
		case customer.Email == "":
			result.Failed = append(result.Failed, "email")
			s.log.Warn().Str("work_order_id", wo.ID.String()).Msg("email requested but customer has no email")
		default:
			msg := EstimateEmail{
				To:             customer.Email,
				CustomerName:   customer.Name,
				DealershipName: dealership.Name,
				RVLabel:        rvLabel,
				ApprovalURL:    issued.ApprovalURL,
				Total:          wo.TotalEstimate,
				CurrencySymbol: dealership.CurrencySymbol,
				ExpiresAt:      issued.ExpiresAt,
			}
			if s.pdf != nil {
				pdf, err := s.pdf.Render(EstimateDocument{
					WorkOrder:      wo,
					CustomerName:   customer.Name,
					RVLabel:        rvLabel,
					DealershipName: dealership.Name,
					CurrencySymbol: dealership.CurrencySymbol,
				})
				if err != nil {
					s.log.Warn().Err(err).Str("work_order_id", wo.ID.String()).Msg("estimate pdf render failed")
				} else {
					msg.AttachmentPDF = pdf
				}
			}
			if err := s.email.SendEstimate(ctx, msg); err != nil {
				result.Failed = append(result.Failed, "email")
				s.log.Warn().Err(err).Str("work_order_id", wo.ID.String()).Msg("email delivery failed")
			} else {
				result.Delivered = append(result.Delivered, "email")
			}
		}
	}

	return result, nil
}
