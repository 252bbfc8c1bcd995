package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rvworks/servicedesk/internal/model"
	"github.com/rvworks/servicedesk/internal/repository"
)

// ExcelWriter renders a revenue report as an xlsx workbook.
type ExcelWriter interface {
	WriteRevenue(report model.RevenueReport) ([]byte, error)
}

// ReportService derives revenue, productivity and funnel analytics from
// completed work orders. All figures come from the stored part line
// snapshots, so later catalog or settings changes never restate history.
type ReportService struct {
	orders      repository.WorkOrderRepository
	profiles    repository.ProfileRepository
	customers   repository.CustomerRepository
	dealerships repository.DealershipRepository
	excel       ExcelWriter
	log         zerolog.Logger
}

func NewReportService(
	orders repository.WorkOrderRepository,
	profiles repository.ProfileRepository,
	customers repository.CustomerRepository,
	dealerships repository.DealershipRepository,
	excel ExcelWriter,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		orders:      orders,
		profiles:    profiles,
		customers:   customers,
		dealerships: dealerships,
		excel:       excel,
		log:         log,
	}
}

type ReportPeriod struct {
	Principal model.Principal
	From      time.Time
	To        time.Time
}

func (p ReportPeriod) validate() error {
	if !p.Principal.Can(model.CapViewReports) {
		return fmt.Errorf("%w: role %s cannot view reports", ErrForbidden, p.Principal.Role)
	}
	if p.From.IsZero() || p.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrValidation)
	}
	if p.From.After(p.To) {
		return fmt.Errorf("%w: from must not be after to", ErrValidation)
	}
	return nil
}

// Revenue aggregates completed orders by day. Parts and labor are split so
// the dashboard can chart them separately.
func (s *ReportService) Revenue(ctx context.Context, period ReportPeriod) ([]model.RevenueMetric, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListUpdatedBetween(ctx, period.Principal.DealershipID, model.StatusCompleted, period.From, period.To)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*model.RevenueMetric)
	for _, wo := range orders {
		day := wo.UpdatedAt.Format("2006-01-02")
		metric, ok := byDay[day]
		if !ok {
			metric = &model.RevenueMetric{Date: day}
			byDay[day] = metric
		}
		var partsTotal float64
		for _, line := range wo.Parts {
			partsTotal += line.UnitPrice * float64(line.Quantity)
		}
		metric.PartsRevenue = RoundCurrency(metric.PartsRevenue + partsTotal)
		metric.LaborRevenue = RoundCurrency(metric.LaborRevenue + wo.LaborHours*wo.LaborRate)
		metric.TotalRevenue = RoundCurrency(metric.TotalRevenue + wo.TotalEstimate)
		metric.OrderCount++
	}

	metrics := make([]model.RevenueMetric, 0, len(byDay))
	for _, m := range byDay {
		metrics = append(metrics, *m)
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Date < metrics[j].Date })
	return metrics, nil
}

// Productivity counts orders and completed revenue per assigned technician.
func (s *ReportService) Productivity(ctx context.Context, period ReportPeriod) ([]model.TechnicianProductivity, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListUpdatedBetween(ctx, period.Principal.DealershipID, "", period.From, period.To)
	if err != nil {
		return nil, err
	}

	byTech := make(map[string]*model.TechnicianProductivity)
	for _, wo := range orders {
		if wo.TechnicianID == nil {
			continue
		}
		key := wo.TechnicianID.String()
		entry, ok := byTech[key]
		if !ok {
			entry = &model.TechnicianProductivity{TechnicianID: *wo.TechnicianID}
			if profile, err := s.profiles.GetByID(ctx, *wo.TechnicianID); err == nil {
				entry.TechnicianName = profile.Name
			}
			byTech[key] = entry
		}
		entry.TotalOrders++
		if wo.Status == model.StatusCompleted {
			entry.CompletedOrders++
			entry.TotalRevenue = RoundCurrency(entry.TotalRevenue + wo.TotalEstimate)
		}
	}

	out := make([]model.TechnicianProductivity, 0, len(byTech))
	for _, entry := range byTech {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalRevenue > out[j].TotalRevenue })
	return out, nil
}

// Funnel buckets orders by ISO week of last update and counts the main
// lifecycle stages.
func (s *ReportService) Funnel(ctx context.Context, period ReportPeriod) ([]model.WorkOrderFunnel, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListUpdatedBetween(ctx, period.Principal.DealershipID, "", period.From, period.To)
	if err != nil {
		return nil, err
	}

	byWeek := make(map[string]*model.WorkOrderFunnel)
	for _, wo := range orders {
		week := weekStart(wo.UpdatedAt).Format("2006-01-02")
		entry, ok := byWeek[week]
		if !ok {
			entry = &model.WorkOrderFunnel{WeekStart: week}
			byWeek[week] = entry
		}
		switch wo.Status {
		case model.StatusDraft:
			entry.DraftCount++
		case model.StatusSubmitted:
			entry.SubmittedCount++
		case model.StatusApproved, model.StatusPendingCustomerApproval, model.StatusCustomerApproved:
			entry.ApprovedCount++
		case model.StatusCompleted:
			entry.CompletedCount++
		}
	}

	out := make([]model.WorkOrderFunnel, 0, len(byWeek))
	for _, entry := range byWeek {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart < out[j].WeekStart })
	return out, nil
}

// TopCustomers ranks customers by completed spend, largest first.
func (s *ReportService) TopCustomers(ctx context.Context, period ReportPeriod, limit int) ([]model.TopCustomer, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListUpdatedBetween(ctx, period.Principal.DealershipID, model.StatusCompleted, period.From, period.To)
	if err != nil {
		return nil, err
	}

	byCustomer := make(map[string]*model.TopCustomer)
	for _, wo := range orders {
		key := wo.CustomerID.String()
		entry, ok := byCustomer[key]
		if !ok {
			entry = &model.TopCustomer{CustomerID: wo.CustomerID}
			if customer, err := s.customers.GetByID(ctx, period.Principal.DealershipID, wo.CustomerID); err == nil {
				entry.CustomerName = customer.Name
			}
			byCustomer[key] = entry
		}
		entry.TotalOrders++
		entry.TotalSpent = RoundCurrency(entry.TotalSpent + wo.TotalEstimate)
	}

	out := make([]model.TopCustomer, 0, len(byCustomer))
	for _, entry := range byCustomer {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalSpent > out[j].TotalSpent })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// ExportRevenue renders the revenue report as an xlsx download.
func (s *ReportService) ExportRevenue(ctx context.Context, period ReportPeriod) (*ExportResult, error) {
	metrics, err := s.Revenue(ctx, period)
	if err != nil {
		return nil, err
	}
	dealership, err := s.dealerships.GetByID(ctx, period.Principal.DealershipID)
	if err != nil {
		return nil, err
	}

	content, err := s.excel.WriteRevenue(model.RevenueReport{
		DealershipName: dealership.Name,
		PeriodStart:    period.From,
		PeriodEnd:      period.To,
		Metrics:        metrics,
	})
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("revenue_%s_%s.xlsx", period.From.Format("20060102"), period.To.Format("20060102"))
	return &ExportResult{FileName: name, Content: content}, nil
}

// weekStart truncates to the Monday of the timestamp's week, UTC.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}
