package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

// QuoteInput is the DTO for creating or replacing a draft quote.
type QuoteInput struct {
	CustomerID uuid.UUID              `json:"customer_id" binding:"required"`
	Title      string                 `json:"title" binding:"required"`
	LineItems  []domain.LineItemInput `json:"line_items" binding:"required,min=1,dive"`
	ValidUntil *domain.Date           `json:"valid_until" swaggertype:"string" example:"2026-04-09"`
	Notes      string                 `json:"notes"`
}

// PublicQuote is a quote as seen through its share link.
type PublicQuote struct {
	Quote        *domain.Quote `json:"quote"`
	BusinessName string        `json:"business_name"`
}

// QuoteService defines the quote lifecycle contract.
type QuoteService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input *QuoteInput) (*domain.Quote, error)
	GetByID(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)
	List(ctx context.Context, tenantID uuid.UUID, filter port.QuoteFilter, offset, limit int) ([]domain.Quote, int, error)
	Update(ctx context.Context, tenantID, quoteID uuid.UUID, input *QuoteInput) (*domain.Quote, error)
	Delete(ctx context.Context, tenantID, quoteID uuid.UUID) error
	Send(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)
	Accept(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)
	Reject(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)
	GetPublic(ctx context.Context, token uuid.UUID) (*PublicQuote, error)
	AcceptPublic(ctx context.Context, token uuid.UUID) (*PublicQuote, error)
	RejectPublic(ctx context.Context, token uuid.UUID) (*PublicQuote, error)
}

// QuoteServiceDeps groups the collaborators of the quote service.
type QuoteServiceDeps struct {
	Quotes    port.QuoteRepository
	Customers port.CustomerRepository
	Tenants   port.TenantRepository
	Usage     UsageService
	Email     port.EmailSender
	Settings  Settings
	Logger    *zap.Logger
	Now       func() time.Time
}

type quoteService struct {
	quotes    port.QuoteRepository
	customers port.CustomerRepository
	tenants   port.TenantRepository
	usage     UsageService
	email     port.EmailSender
	numbers   *numberAllocator
	settings  Settings
	log       *zap.Logger
	now       func() time.Time
}

// NewQuoteService creates a new QuoteService implementation.
func NewQuoteService(deps QuoteServiceDeps) QuoteService {
	now := orNow(deps.Now)
	log := orNop(deps.Logger)
	return &quoteService{
		quotes:    deps.Quotes,
		customers: deps.Customers,
		tenants:   deps.Tenants,
		usage:     deps.Usage,
		email:     deps.Email,
		numbers: newNumberAllocator(deps.Quotes, domain.QuoteNumberPrefix,
			deps.Settings.NumberAttempts, deps.Settings.NumberRetryDelay, now, log),
		settings: deps.Settings,
		log:      log,
		now:      now,
	}
}

func (s *quoteService) Create(ctx context.Context, tenantID uuid.UUID, input *QuoteInput) (*domain.Quote, error) {
	if err := s.usage.Check(ctx, tenantID, domain.UsageQuotes); err != nil {
		return nil, err
	}
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if _, err := s.customers.GetByID(ctx, tenantID, input.CustomerID); err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		TenantID: tenantID,
		Status:   domain.QuoteStatusDraft,
		VATRate:  tenant.EffectiveVATRate(),
	}
	if err := s.applyInput(quote, input); err != nil {
		return nil, err
	}

	err = s.numbers.create(ctx, tenantID, domain.ErrDuplicateQuoteNumber, func(ctx context.Context, number string) error {
		quote.QuoteNumber = number
		return s.quotes.Create(ctx, quote)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("quote created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("quote_number", quote.QuoteNumber),
	)
	return quote, nil
}

func (s *quoteService) GetByID(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error) {
	return s.quotes.GetByID(ctx, tenantID, quoteID)
}

func (s *quoteService) List(ctx context.Context, tenantID uuid.UUID, filter port.QuoteFilter, offset, limit int) ([]domain.Quote, int, error) {
	return s.quotes.List(ctx, tenantID, filter, offset, limit)
}

func (s *quoteService) Update(ctx context.Context, tenantID, quoteID uuid.UUID, input *QuoteInput) (*domain.Quote, error) {
	quote, err := s.quotes.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusDraft {
		return nil, domain.NewBusinessError(domain.ErrNotEditable,
			"quote %s is %s; only draft quotes can be edited", quote.QuoteNumber, quote.Status)
	}
	if input.CustomerID != quote.CustomerID {
		if _, err := s.customers.GetByID(ctx, tenantID, input.CustomerID); err != nil {
			return nil, err
		}
	}
	if err := s.applyInput(quote, input); err != nil {
		return nil, err
	}
	if err := s.quotes.Update(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *quoteService) Delete(ctx context.Context, tenantID, quoteID uuid.UUID) error {
	quote, err := s.quotes.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return err
	}
	if err := s.quotes.Delete(ctx, tenantID, quoteID); err != nil {
		if errors.Is(err, domain.ErrQuoteHasJob) {
			return domain.NewBusinessError(domain.ErrQuoteHasJob,
				"quote %s has a job; delete the job first", quote.QuoteNumber)
		}
		return err
	}
	return nil
}

func (s *quoteService) Send(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quotes.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if quote.IsExpiredAt(now) {
		return nil, s.expire(ctx, quote, now)
	}
	if err := domain.ValidateQuoteTransition(quote.Status, domain.QuoteStatusSent); err != nil {
		return nil, err
	}
	from := quote.Status
	// Re-sending a viewed quote keeps it viewed.
	if quote.Status == domain.QuoteStatusDraft {
		quote.Status = domain.QuoteStatusSent
	}
	quote.SentAt = &now
	if err := s.quotes.UpdateStatus(ctx, quote, from); err != nil {
		return nil, err
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, tenantID, quote.CustomerID)
	if err != nil {
		return nil, err
	}
	validUntil := quote.ValidUntil
	notify(ctx, s.log, s.email.SendQuoteEmail, port.DocumentEmail{
		ToEmail:        customer.Email,
		ToName:         customer.Name,
		BusinessName:   tenant.Name,
		DocumentNumber: quote.QuoteNumber,
		Total:          quote.Total,
		DueDate:        &validUntil,
		Link:           publicLink(s.settings.FrontendURL, "quotes", quote.ShareToken),
	})
	return quote, nil
}

func (s *quoteService) Accept(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quotes.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if err := s.decide(ctx, quote, domain.QuoteStatusAccepted); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *quoteService) Reject(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quotes.GetByID(ctx, tenantID, quoteID)
	if err != nil {
		return nil, err
	}
	if err := s.decide(ctx, quote, domain.QuoteStatusRejected); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *quoteService) GetPublic(ctx context.Context, token uuid.UUID) (*PublicQuote, error) {
	quote, err := s.sharedQuote(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	from := quote.Status
	switch {
	case quote.IsExpiredAt(now):
		quote.Status = domain.QuoteStatusExpired
	case quote.Status == domain.QuoteStatusSent:
		quote.Status = domain.QuoteStatusViewed
		quote.ViewedAt = &now
	default:
		return s.public(ctx, quote)
	}
	err = s.quotes.UpdateStatus(ctx, quote, from)
	switch {
	case errors.Is(err, domain.ErrConcurrentUpdate):
		// The customer or the tenant decided first; show that decision.
		if quote, err = s.quotes.GetByShareToken(ctx, token); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	return s.public(ctx, quote)
}

func (s *quoteService) AcceptPublic(ctx context.Context, token uuid.UUID) (*PublicQuote, error) {
	quote, err := s.sharedQuote(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.decide(ctx, quote, domain.QuoteStatusAccepted); err != nil {
		return nil, err
	}
	return s.public(ctx, quote)
}

func (s *quoteService) RejectPublic(ctx context.Context, token uuid.UUID) (*PublicQuote, error) {
	quote, err := s.sharedQuote(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.decide(ctx, quote, domain.QuoteStatusRejected); err != nil {
		return nil, err
	}
	return s.public(ctx, quote)
}

// decide moves an open quote to accepted or rejected. A quote past its
// validity date is persisted as expired instead.
func (s *quoteService) decide(ctx context.Context, quote *domain.Quote, to domain.QuoteStatus) error {
	now := s.now().UTC()
	if quote.IsExpiredAt(now) {
		return s.expire(ctx, quote, now)
	}
	if err := domain.ValidateQuoteTransition(quote.Status, to); err != nil {
		return err
	}
	from := quote.Status
	quote.Status = to
	if to == domain.QuoteStatusAccepted {
		quote.AcceptedAt = &now
	} else {
		quote.RejectedAt = &now
	}
	if err := s.quotes.UpdateStatus(ctx, quote, from); err != nil {
		return err
	}
	s.log.Info("quote decided",
		zap.String("tenant_id", quote.TenantID.String()),
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("status", string(to)),
	)
	return nil
}

func (s *quoteService) expire(ctx context.Context, quote *domain.Quote, now time.Time) error {
	from := quote.Status
	quote.Status = domain.QuoteStatusExpired
	if err := s.quotes.UpdateStatus(ctx, quote, from); err != nil {
		return err
	}
	return domain.NewBusinessError(domain.ErrQuoteExpired,
		"quote %s expired on %s", quote.QuoteNumber, quote.ValidUntil.Format("2006-01-02"))
}

// sharedQuote resolves a public link. Drafts have not been shared yet.
func (s *quoteService) sharedQuote(ctx context.Context, token uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quotes.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if quote.Status == domain.QuoteStatusDraft {
		return nil, domain.ErrQuoteNotFound
	}
	return quote, nil
}

func (s *quoteService) public(ctx context.Context, quote *domain.Quote) (*PublicQuote, error) {
	tenant, err := s.tenants.GetByID(ctx, quote.TenantID)
	if err != nil {
		return nil, err
	}
	return &PublicQuote{Quote: quote, BusinessName: tenant.Name}, nil
}

func (s *quoteService) applyInput(quote *domain.Quote, input *QuoteInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.NewBusinessError(domain.ErrValidation, "quote title is required")
	}
	priced, err := domain.PriceLineItems(input.LineItems, quote.VATRate)
	if err != nil {
		return err
	}
	quote.CustomerID = input.CustomerID
	quote.Title = title
	quote.LineItems = priced.Items
	quote.Subtotal = priced.Subtotal
	quote.VATAmount = priced.VAT
	quote.Total = priced.Total
	quote.Notes = input.Notes
	if input.ValidUntil != nil {
		quote.ValidUntil = input.ValidUntil.Time
	} else if quote.ValidUntil.IsZero() {
		quote.ValidUntil = dueDate(s.now(), s.settings.QuoteValidityDays)
	}
	return nil
}
