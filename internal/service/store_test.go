package service_test

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

// memStore is an in-memory backing store for service tests. It enforces the
// same uniqueness and payment rules as the database schema.
type memStore struct {
	mu        sync.Mutex
	seq       int
	base      time.Time
	tenants   map[uuid.UUID]*domain.Tenant
	customers map[uuid.UUID]*domain.Customer
	quotes    map[uuid.UUID]*domain.Quote
	jobs      map[uuid.UUID]*domain.Job
	invoices  []*domain.Invoice
	payments  []*domain.Payment

	// reserved numbers count as taken by rows outside the test's view.
	reserved map[string]bool
	// dupOnCreate makes the next N invoice inserts fail with a number clash.
	dupOnCreate int
	// staleOnApply makes the next N payment updates lose the race.
	staleOnApply int
	// afterShareRead runs once after an invoice is read by share token, to
	// stand in for a write that commits between a read and its update.
	afterShareRead func()
	// afterQuoteShareRead does the same for quotes.
	afterQuoteShareRead func()
}

func newMemStore() *memStore {
	return &memStore{
		base:      time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		tenants:   make(map[uuid.UUID]*domain.Tenant),
		customers: make(map[uuid.UUID]*domain.Customer),
		quotes:    make(map[uuid.UUID]*domain.Quote),
		jobs:      make(map[uuid.UUID]*domain.Job),
		reserved:  make(map[string]bool),
	}
}

func (s *memStore) tick() time.Time {
	s.seq++
	return s.base.Add(time.Duration(s.seq) * time.Second)
}

// passthroughTx runs fn without isolation.
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var sequential = regexp.MustCompile(`^[A-Z]+-[0-9]{4}-[0-9]+$`)

// --- tenants ---

type memTenants struct{ *memStore }

func (r memTenants) GetByID(_ context.Context, id uuid.UUID) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTenants) Update(_ context.Context, t *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r memTenants) UpdatePlan(_ context.Context, id uuid.UUID, plan domain.TenantPlan, status domain.SubscriptionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	t.Plan = plan
	t.SubscriptionStatus = status
	return nil
}

// --- customers ---

type memCustomers struct{ *memStore }

func (r memCustomers) Create(_ context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = r.tick()
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r memCustomers) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, domain.ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memCustomers) List(_ context.Context, tenantID uuid.UUID, search string, offset, limit int) ([]domain.Customer, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Customer
	for _, c := range r.customers {
		if c.TenantID == tenantID && strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, *c)
		}
	}
	return window(out, offset, limit), len(out), nil
}

func (r memCustomers) Update(_ context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r memCustomers) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, id)
	return nil
}

func (r memCustomers) IsReferenced(_ context.Context, tenantID, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.CustomerID == id {
			return true, nil
		}
	}
	for _, j := range r.jobs {
		if j.CustomerID == id {
			return true, nil
		}
	}
	for _, inv := range r.invoices {
		if inv.CustomerID == id {
			return true, nil
		}
	}
	return false, nil
}

// --- quotes ---

type memQuotes struct{ *memStore }

func (r memQuotes) LatestNumber(_ context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Quote
	for _, q := range r.quotes {
		if q.TenantID == tenantID && strings.HasPrefix(q.QuoteNumber, prefix) && sequential.MatchString(q.QuoteNumber) {
			if latest == nil || q.CreatedAt.After(latest.CreatedAt) {
				latest = q
			}
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.QuoteNumber, nil
}

func (r memQuotes) NumberExists(_ context.Context, tenantID uuid.UUID, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reserved[number] {
		return true, nil
	}
	for _, q := range r.quotes {
		if q.TenantID == tenantID && q.QuoteNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r memQuotes) Create(_ context.Context, q *domain.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.quotes {
		if other.TenantID == q.TenantID && other.QuoteNumber == q.QuoteNumber {
			return domain.ErrDuplicateQuoteNumber
		}
	}
	q.ID = uuid.New()
	q.ShareToken = uuid.New()
	q.CreatedAt = r.tick()
	cp := *q
	r.quotes[q.ID] = &cp
	return nil
}

func (r memQuotes) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok || q.TenantID != tenantID {
		return nil, domain.ErrQuoteNotFound
	}
	cp := *q
	return &cp, nil
}

func (r memQuotes) GetByShareToken(_ context.Context, token uuid.UUID) (*domain.Quote, error) {
	r.mu.Lock()
	var found *domain.Quote
	for _, q := range r.quotes {
		if q.ShareToken == token {
			cp := *q
			found = &cp
			break
		}
	}
	hook := r.afterQuoteShareRead
	r.afterQuoteShareRead = nil
	r.mu.Unlock()
	if found == nil {
		return nil, domain.ErrQuoteNotFound
	}
	if hook != nil {
		hook()
	}
	return found, nil
}

func (r memQuotes) List(_ context.Context, tenantID uuid.UUID, filter port.QuoteFilter, offset, limit int) ([]domain.Quote, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Quote
	for _, q := range r.quotes {
		if q.TenantID == tenantID && (filter.Status == "" || q.Status == filter.Status) {
			out = append(out, *q)
		}
	}
	return window(out, offset, limit), len(out), nil
}

func (r memQuotes) Update(_ context.Context, q *domain.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.quotes[q.ID]
	if !ok || stored.Status != domain.QuoteStatusDraft {
		return domain.ErrNotEditable
	}
	cp := *q
	r.quotes[q.ID] = &cp
	return nil
}

func (r memQuotes) UpdateStatus(_ context.Context, q *domain.Quote, from domain.QuoteStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.quotes[q.ID]
	if !ok || stored.Status != from {
		return domain.ErrConcurrentUpdate
	}
	stored.Status = q.Status
	stored.SentAt, stored.ViewedAt = q.SentAt, q.ViewedAt
	stored.AcceptedAt, stored.RejectedAt = q.AcceptedAt, q.RejectedAt
	return nil
}

func (r memQuotes) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.QuoteID != nil && *j.QuoteID == id {
			return domain.ErrQuoteHasJob
		}
	}
	delete(r.quotes, id)
	return nil
}

// --- jobs ---

type memJobs struct{ *memStore }

func (r memJobs) Create(_ context.Context, j *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.QuoteID != nil {
		for _, other := range r.jobs {
			if other.QuoteID != nil && *other.QuoteID == *j.QuoteID {
				return domain.ErrQuoteHasJob
			}
		}
	}
	j.ID = uuid.New()
	j.CreatedAt = r.tick()
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r memJobs) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.TenantID != tenantID {
		return nil, domain.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (r memJobs) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*domain.Job, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r memJobs) GetByQuoteID(_ context.Context, tenantID, quoteID uuid.UUID) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.TenantID == tenantID && j.QuoteID != nil && *j.QuoteID == quoteID {
			cp := *j
			return &cp, nil
		}
	}
	return nil, domain.ErrJobNotFound
}

func (r memJobs) List(_ context.Context, tenantID uuid.UUID, filter port.JobFilter, offset, limit int) ([]domain.Job, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Job
	for _, j := range r.jobs {
		if j.TenantID == tenantID && (filter.Status == "" || j.Status == filter.Status) {
			out = append(out, *j)
		}
	}
	return window(out, offset, limit), len(out), nil
}

func (r memJobs) UpdateStatus(_ context.Context, j *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.jobs[j.ID]
	if !ok {
		return domain.ErrJobNotFound
	}
	stored.Status = j.Status
	stored.ScheduledDate, stored.CompletedDate = j.ScheduledDate, j.CompletedDate
	return nil
}

func (r memJobs) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return domain.ErrJobNotFound
	}
	delete(r.jobs, id)
	return nil
}

// --- invoices ---

type memInvoices struct{ *memStore }

func (r memInvoices) LatestNumber(_ context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.invoices) - 1; i >= 0; i-- {
		inv := r.invoices[i]
		if inv.TenantID == tenantID && strings.HasPrefix(inv.InvoiceNumber, prefix) && sequential.MatchString(inv.InvoiceNumber) {
			return inv.InvoiceNumber, nil
		}
	}
	return "", nil
}

func (r memInvoices) NumberExists(_ context.Context, tenantID uuid.UUID, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reserved[number] {
		return true, nil
	}
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.InvoiceNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r memInvoices) Create(_ context.Context, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dupOnCreate > 0 {
		r.dupOnCreate--
		r.reserved[inv.InvoiceNumber] = true
		return domain.ErrDuplicateInvoiceNumber
	}
	for _, other := range r.invoices {
		if other.TenantID == inv.TenantID && other.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicateInvoiceNumber
		}
		if inv.JobID != nil && other.JobID != nil && *other.JobID == *inv.JobID && other.InvoiceType == inv.InvoiceType {
			switch inv.InvoiceType {
			case domain.InvoiceTypeDeposit:
				return domain.ErrDepositExists
			case domain.InvoiceTypeBalance:
				return domain.ErrBalanceExists
			}
		}
	}
	inv.ID = uuid.New()
	inv.ShareToken = uuid.New()
	inv.CreatedAt = r.tick()
	cp := *inv
	r.invoices = append(r.invoices, &cp)
	return nil
}

func (r memInvoices) find(tenantID, id uuid.UUID) (int, *domain.Invoice) {
	for i, inv := range r.invoices {
		if inv.ID == id && inv.TenantID == tenantID {
			return i, inv
		}
	}
	return -1, nil
}

func (r memInvoices) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, inv := r.find(tenantID, id)
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r memInvoices) GetByShareToken(_ context.Context, token uuid.UUID) (*domain.Invoice, error) {
	r.mu.Lock()
	var found *domain.Invoice
	for _, inv := range r.invoices {
		if inv.ShareToken == token {
			cp := *inv
			found = &cp
			break
		}
	}
	hook := r.afterShareRead
	r.afterShareRead = nil
	r.mu.Unlock()
	if found == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	if hook != nil {
		hook()
	}
	return found, nil
}

func (r memInvoices) filtered(tenantID uuid.UUID, filter port.InvoiceFilter) []domain.Invoice {
	var out []domain.Invoice
	for _, inv := range r.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.JobID != nil && (inv.JobID == nil || *inv.JobID != *filter.JobID) {
			continue
		}
		out = append(out, *inv)
	}
	return out
}

func (r memInvoices) List(_ context.Context, tenantID uuid.UUID, filter port.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.filtered(tenantID, filter)
	return window(out, offset, limit), len(out), nil
}

func (r memInvoices) ListAll(_ context.Context, tenantID uuid.UUID, filter port.InvoiceFilter) ([]domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filtered(tenantID, filter), nil
}

func (r memInvoices) ListByJob(_ context.Context, tenantID, jobID uuid.UUID) ([]domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.filtered(tenantID, port.InvoiceFilter{JobID: &jobID})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memInvoices) Update(_ context.Context, inv *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, stored := r.find(inv.TenantID, inv.ID)
	if stored == nil || stored.Status != domain.InvoiceStatusDraft {
		return domain.ErrNotEditable
	}
	cp := *inv
	r.invoices[i] = &cp
	return nil
}

func (r memInvoices) UpdateStatus(_ context.Context, inv *domain.Invoice, from domain.InvoiceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, stored := r.find(inv.TenantID, inv.ID)
	if stored == nil || stored.Status != from {
		return domain.ErrConcurrentUpdate
	}
	stored.Status = inv.Status
	stored.SentAt, stored.ViewedAt = inv.SentAt, inv.ViewedAt
	return nil
}

func (r memInvoices) ApplyPayment(_ context.Context, tenantID, id uuid.UUID, expected, paid domain.Money,
	status domain.InvoiceStatus, paidAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, stored := r.find(tenantID, id)
	if stored == nil {
		return domain.ErrConcurrentUpdate
	}
	if r.staleOnApply > 0 {
		r.staleOnApply--
		return domain.ErrConcurrentUpdate
	}
	if stored.AmountPaid != expected || paid > stored.Total {
		return domain.ErrConcurrentUpdate
	}
	stored.AmountPaid = paid
	stored.Status = status
	if paidAt != nil {
		stored.PaidAt = paidAt
	}
	return nil
}

func (r memInvoices) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, stored := r.find(tenantID, id)
	if stored == nil {
		return domain.ErrInvoiceNotFound
	}
	for _, p := range r.payments {
		if p.InvoiceID == id {
			return domain.ErrInvoiceHasPayments
		}
	}
	for _, inv := range r.invoices {
		if inv.ParentInvoiceID != nil && *inv.ParentInvoiceID == id {
			inv.ParentInvoiceID = nil
		}
	}
	r.invoices = append(r.invoices[:i], r.invoices[i+1:]...)
	return nil
}

func (r memInvoices) DeleteByJob(_ context.Context, tenantID, jobID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keep []*domain.Invoice
	var removed int64
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.JobID != nil && *inv.JobID == jobID {
			for _, p := range r.payments {
				if p.InvoiceID == inv.ID {
					return 0, domain.ErrJobHasPayments
				}
			}
			removed++
			continue
		}
		keep = append(keep, inv)
	}
	r.invoices = keep
	return removed, nil
}

func (r memInvoices) MarkOverdue(_ context.Context, tenantID uuid.UUID, today time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && (inv.Status == domain.InvoiceStatusSent || inv.Status == domain.InvoiceStatusViewed) &&
			inv.DueDate.Before(today) {
			inv.Status = domain.InvoiceStatusOverdue
			n++
		}
	}
	return n, nil
}

// --- payments ---

type memPayments struct{ *memStore }

func (r memPayments) Create(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = r.tick()
	cp := *p
	r.payments = append(r.payments, &cp)
	return nil
}

func (r memPayments) ListByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		if p.TenantID == tenantID && p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r memPayments) CountByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int, error) {
	list, err := r.ListByInvoice(ctx, tenantID, invoiceID)
	return len(list), err
}

func (r memPayments) DeleteByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keep []*domain.Payment
	var removed int64
	for _, p := range r.payments {
		if p.TenantID == tenantID && p.InvoiceID == invoiceID {
			removed++
			continue
		}
		keep = append(keep, p)
	}
	r.payments = keep
	return removed, nil
}

func (r memPayments) InvoiceNumbersWithPayments(_ context.Context, tenantID, jobID uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, inv := range r.invoices {
		if inv.TenantID != tenantID || inv.JobID == nil || *inv.JobID != jobID {
			continue
		}
		for _, p := range r.payments {
			if p.InvoiceID == inv.ID {
				out = append(out, inv.InvoiceNumber)
				break
			}
		}
	}
	return out, nil
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
