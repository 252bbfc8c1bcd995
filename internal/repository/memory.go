package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rvworks/servicedesk/internal/model"
)

// Store is an in-memory implementation of every repository interface in
// this package. It backs the service tests and any deployment that runs
// without a database. All methods copy values in and out so callers never
// share memory with the store, and every mutation happens under one lock
// so FinalizeByToken keeps its single-winner guarantee.
//
// The per-interface views are obtained through the accessor methods,
// e.g. store.WorkOrders() satisfies WorkOrderRepository.
type Store struct {
	mu sync.Mutex

	dealerships   map[uuid.UUID]model.Dealership
	profiles      map[uuid.UUID]model.Profile
	identities    map[uuid.UUID]model.Identity
	customers     map[uuid.UUID]model.Customer
	rvs           map[uuid.UUID]model.RV
	parts         map[uuid.UUID]model.Part
	workOrders    map[uuid.UUID]model.WorkOrder
	approvalLogs  []model.ApprovalLog
	notifications map[uuid.UUID]model.Notification
	announcements map[uuid.UUID]model.Announcement
}

func NewStore() *Store {
	return &Store{
		dealerships:   make(map[uuid.UUID]model.Dealership),
		profiles:      make(map[uuid.UUID]model.Profile),
		identities:    make(map[uuid.UUID]model.Identity),
		customers:     make(map[uuid.UUID]model.Customer),
		rvs:           make(map[uuid.UUID]model.RV),
		parts:         make(map[uuid.UUID]model.Part),
		workOrders:    make(map[uuid.UUID]model.WorkOrder),
		notifications: make(map[uuid.UUID]model.Notification),
		announcements: make(map[uuid.UUID]model.Announcement),
	}
}

func (s *Store) Dealerships() DealershipRepository     { return memDealerships{s} }
func (s *Store) Profiles() ProfileRepository           { return memProfiles{s} }
func (s *Store) Identities() IdentityStore             { return memIdentities{s} }
func (s *Store) Customers() CustomerRepository         { return memCustomers{s} }
func (s *Store) RVs() RVRepository                     { return memRVs{s} }
func (s *Store) Parts() PartRepository                 { return memParts{s} }
func (s *Store) WorkOrders() WorkOrderRepository       { return memWorkOrders{s} }
func (s *Store) ApprovalLogs() ApprovalLogRepository   { return memApprovalLogs{s} }
func (s *Store) Notifications() NotificationRepository { return memNotifications{s} }
func (s *Store) Announcements() AnnouncementRepository { return memAnnouncements{s} }

func cloneWorkOrder(wo model.WorkOrder) model.WorkOrder {
	out := wo
	out.Parts = append([]model.WorkOrderPart(nil), wo.Parts...)
	out.Photos = append([]model.WorkOrderPhoto(nil), wo.Photos...)
	return out
}

type memDealerships struct{ s *Store }

func (v memDealerships) Create(ctx context.Context, d *model.Dealership) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	v.s.dealerships[d.ID] = *d
	return nil
}

func (v memDealerships) GetByID(ctx context.Context, id uuid.UUID) (*model.Dealership, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	d, ok := v.s.dealerships[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (v memDealerships) Update(ctx context.Context, d *model.Dealership) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.dealerships[d.ID]; !ok {
		return ErrNotFound
	}
	v.s.dealerships[d.ID] = *d
	return nil
}

func (v memDealerships) Delete(ctx context.Context, id uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.dealerships, id)
	return nil
}

type memProfiles struct{ s *Store }

func (v memProfiles) Create(ctx context.Context, p *model.Profile) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	v.s.profiles[p.ID] = *p
	return nil
}

func (v memProfiles) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p, ok := v.s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (v memProfiles) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, p := range v.s.profiles {
		if p.Email == email {
			out := p
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (v memProfiles) ListByDealership(ctx context.Context, dealershipID uuid.UUID) ([]model.Profile, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.Profile
	for _, p := range v.s.profiles {
		if p.DealershipID == dealershipID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v memProfiles) Update(ctx context.Context, p *model.Profile) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	existing, ok := v.s.profiles[p.ID]
	if !ok || existing.DealershipID != p.DealershipID {
		return ErrNotFound
	}
	v.s.profiles[p.ID] = *p
	return nil
}

func (v memProfiles) Delete(ctx context.Context, id uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.profiles, id)
	return nil
}

type memIdentities struct{ s *Store }

func (v memIdentities) Create(ctx context.Context, email, passwordHash string) (uuid.UUID, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, identity := range v.s.identities {
		if identity.Email == email {
			return uuid.Nil, ErrDuplicate
		}
	}
	identity := model.Identity{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	v.s.identities[identity.ID] = identity
	return identity.ID, nil
}

func (v memIdentities) GetByEmail(ctx context.Context, email string) (*model.Identity, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, identity := range v.s.identities {
		if identity.Email == email {
			out := identity
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (v memIdentities) Delete(ctx context.Context, id uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.identities, id)
	return nil
}

type memCustomers struct{ s *Store }

func (v memCustomers) Create(ctx context.Context, c *model.Customer) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	v.s.customers[c.ID] = *c
	return nil
}

func (v memCustomers) GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.Customer, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	c, ok := v.s.customers[id]
	if !ok || c.DealershipID != dealershipID {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (v memCustomers) List(ctx context.Context, dealershipID uuid.UUID, search string) ([]model.Customer, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	needle := strings.ToLower(search)
	var out []model.Customer
	for _, c := range v.s.customers {
		if c.DealershipID != dealershipID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Email), needle) &&
			!strings.Contains(c.Phone, search) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v memCustomers) Update(ctx context.Context, c *model.Customer) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	existing, ok := v.s.customers[c.ID]
	if !ok || existing.DealershipID != c.DealershipID {
		return ErrNotFound
	}
	v.s.customers[c.ID] = *c
	return nil
}

type memRVs struct{ s *Store }

func (v memRVs) Create(ctx context.Context, rv *model.RV) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	v.s.rvs[rv.ID] = *rv
	return nil
}

func (v memRVs) GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.RV, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	rv, ok := v.s.rvs[id]
	if !ok || rv.DealershipID != dealershipID {
		return nil, ErrNotFound
	}
	return &rv, nil
}

func (v memRVs) ListByCustomer(ctx context.Context, dealershipID, customerID uuid.UUID) ([]model.RV, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.RV
	for _, rv := range v.s.rvs {
		if rv.DealershipID == dealershipID && rv.CustomerID == customerID {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memParts struct{ s *Store }

func (v memParts) Create(ctx context.Context, p *model.Part) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	v.s.parts[p.ID] = *p
	return nil
}

func (v memParts) GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.Part, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p, ok := v.s.parts[id]
	if !ok || p.DealershipID != dealershipID {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (v memParts) List(ctx context.Context, dealershipID uuid.UUID, search string) ([]model.Part, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	needle := strings.ToLower(search)
	var out []model.Part
	for _, p := range v.s.parts {
		if p.DealershipID != dealershipID {
			continue
		}
		if needle != "" {
			sku := ""
			if p.SKU != nil {
				sku = strings.ToLower(*p.SKU)
			}
			if !strings.Contains(strings.ToLower(p.Name), needle) && !strings.Contains(sku, needle) {
				continue
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v memParts) Update(ctx context.Context, p *model.Part) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	existing, ok := v.s.parts[p.ID]
	if !ok || existing.DealershipID != p.DealershipID {
		return ErrNotFound
	}
	v.s.parts[p.ID] = *p
	return nil
}

type memWorkOrders struct{ s *Store }

func (v memWorkOrders) Create(ctx context.Context, wo *model.WorkOrder) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if wo.ID == uuid.Nil {
		wo.ID = uuid.New()
	}
	now := time.Now().UTC()
	if wo.CreatedAt.IsZero() {
		wo.CreatedAt = now
	}
	if wo.UpdatedAt.IsZero() {
		wo.UpdatedAt = now
	}
	normalizeOrderChildren(wo)
	v.s.workOrders[wo.ID] = cloneWorkOrder(*wo)
	return nil
}

func (v memWorkOrders) GetByID(ctx context.Context, dealershipID, id uuid.UUID) (*model.WorkOrder, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	wo, ok := v.s.workOrders[id]
	if !ok || wo.DealershipID != dealershipID {
		return nil, ErrNotFound
	}
	out := cloneWorkOrder(wo)
	return &out, nil
}

func (v memWorkOrders) GetByToken(ctx context.Context, token string) (*model.WorkOrder, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, wo := range v.s.workOrders {
		if wo.ApprovalToken != nil && *wo.ApprovalToken == token {
			out := cloneWorkOrder(wo)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (v memWorkOrders) List(ctx context.Context, dealershipID uuid.UUID) ([]model.WorkOrder, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.WorkOrder
	for _, wo := range v.s.workOrders {
		if wo.DealershipID == dealershipID {
			out = append(out, cloneWorkOrder(wo))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v memWorkOrders) ListByRV(ctx context.Context, dealershipID, rvID uuid.UUID) ([]model.WorkOrder, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.WorkOrder
	for _, wo := range v.s.workOrders {
		if wo.DealershipID == dealershipID && wo.RVID == rvID {
			out = append(out, cloneWorkOrder(wo))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v memWorkOrders) ListUpdatedBetween(ctx context.Context, dealershipID uuid.UUID, status model.WorkOrderStatus, from, to time.Time) ([]model.WorkOrder, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.WorkOrder
	for _, wo := range v.s.workOrders {
		if wo.DealershipID != dealershipID {
			continue
		}
		if status != "" && wo.Status != status {
			continue
		}
		if wo.UpdatedAt.Before(from) || wo.UpdatedAt.After(to) {
			continue
		}
		out = append(out, cloneWorkOrder(wo))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (v memWorkOrders) Update(ctx context.Context, wo *model.WorkOrder) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	existing, ok := v.s.workOrders[wo.ID]
	if !ok || existing.DealershipID != wo.DealershipID {
		return ErrNotFound
	}
	normalizeOrderChildren(wo)
	merged := cloneWorkOrder(*wo)
	merged.CreatedAt = existing.CreatedAt
	merged.ApprovalToken = existing.ApprovalToken
	merged.ApprovalTokenExpiresAt = existing.ApprovalTokenExpiresAt
	merged.ApprovedAt = existing.ApprovedAt
	merged.RejectedAt = existing.RejectedAt
	v.s.workOrders[wo.ID] = merged
	return nil
}

func (v memWorkOrders) SetApprovalToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	wo, ok := v.s.workOrders[id]
	if !ok {
		return ErrNotFound
	}
	wo.ApprovalToken = &token
	wo.ApprovalTokenExpiresAt = &expiresAt
	wo.Status = model.StatusPendingCustomerApproval
	wo.UpdatedAt = time.Now().UTC()
	v.s.workOrders[id] = wo
	return nil
}

func (v memWorkOrders) FinalizeByToken(ctx context.Context, token string, status model.WorkOrderStatus, decidedAt time.Time, customerNotes *string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for id, wo := range v.s.workOrders {
		if wo.ApprovalToken == nil || *wo.ApprovalToken != token {
			continue
		}
		if wo.Status != model.StatusPendingCustomerApproval {
			return false, nil
		}
		wo.Status = status
		wo.CustomerNotes = customerNotes
		wo.UpdatedAt = decidedAt
		decided := decidedAt
		if status == model.StatusCustomerApproved {
			wo.ApprovedAt = &decided
		} else {
			wo.RejectedAt = &decided
		}
		v.s.workOrders[id] = wo
		return true, nil
	}
	return false, nil
}

func (v memWorkOrders) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var cleared int64
	for id, wo := range v.s.workOrders {
		if wo.ApprovalToken == nil || wo.Status != model.StatusPendingCustomerApproval {
			continue
		}
		if wo.ApprovalTokenExpiresAt != nil && wo.ApprovalTokenExpiresAt.Before(now) {
			wo.ApprovalToken = nil
			wo.ApprovalTokenExpiresAt = nil
			v.s.workOrders[id] = wo
			cleared++
		}
	}
	return cleared, nil
}

func normalizeOrderChildren(wo *model.WorkOrder) {
	for i := range wo.Parts {
		if wo.Parts[i].ID == uuid.Nil {
			wo.Parts[i].ID = uuid.New()
		}
		wo.Parts[i].WorkOrderID = wo.ID
	}
	for i := range wo.Photos {
		if wo.Photos[i].ID == uuid.Nil {
			wo.Photos[i].ID = uuid.New()
		}
		wo.Photos[i].WorkOrderID = wo.ID
		wo.Photos[i].Position = i
	}
}

type memApprovalLogs struct{ s *Store }

func (v memApprovalLogs) Append(ctx context.Context, entry *model.ApprovalLog) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	v.s.approvalLogs = append(v.s.approvalLogs, *entry)
	return nil
}

func (v memApprovalLogs) ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID) ([]model.ApprovalLog, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.ApprovalLog
	for _, entry := range v.s.approvalLogs {
		if entry.WorkOrderID == workOrderID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type memNotifications struct{ s *Store }

func (v memNotifications) Create(ctx context.Context, n *model.Notification) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	v.s.notifications[n.ID] = *n
	return nil
}

func (v memNotifications) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.Notification
	for _, n := range v.s.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v memNotifications) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	n, ok := v.s.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.Read = true
	v.s.notifications[id] = n
	return nil
}

func (v memNotifications) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for id, n := range v.s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			v.s.notifications[id] = n
		}
	}
	return nil
}

type memAnnouncements struct{ s *Store }

func (v memAnnouncements) Create(ctx context.Context, a *model.Announcement) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	v.s.announcements[a.ID] = *a
	return nil
}

func (v memAnnouncements) ListByDealership(ctx context.Context, dealershipID uuid.UUID) ([]model.Announcement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.Announcement
	for _, a := range v.s.announcements {
		if a.DealershipID == dealershipID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v memAnnouncements) Delete(ctx context.Context, dealershipID, id uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	a, ok := v.s.announcements[id]
	if !ok || a.DealershipID != dealershipID {
		return ErrNotFound
	}
	delete(v.s.announcements, id)
	return nil
}
