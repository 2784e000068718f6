package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

// PayFast payment_status values.
const (
	gatewayStatusComplete  = "COMPLETE"
	gatewayStatusCancelled = "CANCELLED"
)

// SubscriptionService mirrors the tenant's PayFast subscription.
type SubscriptionService interface {
	Checkout(ctx context.Context, tenantID uuid.UUID, email string) (*port.CheckoutSession, error)
	// HandleNotification verifies and applies a PayFast ITN. Redeliveries of
	// an already applied payment are ignored.
	HandleNotification(ctx context.Context, body []byte) error
	Cancel(ctx context.Context, tenantID uuid.UUID) (*domain.Subscription, error)
	Get(ctx context.Context, tenantID uuid.UUID) (*domain.Subscription, error)
}

// SubscriptionServiceDeps groups the collaborators of the subscription service.
type SubscriptionServiceDeps struct {
	Tx             port.Transactor
	Subscriptions  port.SubscriptionRepository
	Tenants        port.TenantRepository
	Gateway        port.SubscriptionGateway
	Idempotency    port.IdempotencyStore
	IdempotencyTTL time.Duration
	Logger         *zap.Logger
	Now            func() time.Time
}

type subscriptionService struct {
	tx      port.Transactor
	subs    port.SubscriptionRepository
	tenants port.TenantRepository
	gateway port.SubscriptionGateway
	seen    port.IdempotencyStore
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService implementation.
func NewSubscriptionService(deps SubscriptionServiceDeps) SubscriptionService {
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &subscriptionService{
		tx:      deps.Tx,
		subs:    deps.Subscriptions,
		tenants: deps.Tenants,
		gateway: deps.Gateway,
		seen:    deps.Idempotency,
		ttl:     ttl,
		log:     orNop(deps.Logger),
		now:     orNow(deps.Now),
	}
}

func (s *subscriptionService) Checkout(ctx context.Context, tenantID uuid.UUID, email string) (*port.CheckoutSession, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.HasPaidPlan() {
		return nil, domain.ErrSubscriptionAlreadyLive
	}
	if email == "" {
		email = tenant.Email
	}

	session, err := s.gateway.Checkout(port.CheckoutRequest{
		TenantID:     tenantID,
		BusinessName: tenant.Name,
		Email:        email,
	})
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.GetByTenant(ctx, tenantID)
	switch {
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		sub = &domain.Subscription{TenantID: tenantID, Plan: domain.PlanPro, Status: domain.SubscriptionPending}
		if err := s.subs.Upsert(ctx, sub); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	return session, nil
}

func (s *subscriptionService) HandleNotification(ctx context.Context, body []byte) error {
	n, err := s.gateway.ParseNotification(body)
	if err != nil {
		return err
	}

	key := "payfast:" + n.PaymentID + ":" + n.Status
	first, err := s.seen.MarkProcessed(ctx, key, s.ttl)
	if err != nil {
		return err
	}
	if !first {
		s.log.Info("duplicate payfast notification ignored",
			zap.String("pf_payment_id", n.PaymentID),
			zap.String("status", n.Status),
		)
		return nil
	}

	if err := s.apply(ctx, n); err != nil {
		if ferr := s.seen.Forget(ctx, key); ferr != nil {
			s.log.Error("releasing idempotency key failed", zap.String("key", key), zap.Error(ferr))
		}
		return err
	}
	return nil
}

func (s *subscriptionService) apply(ctx context.Context, n *port.GatewayNotification) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		tenant, err := s.tenants.GetByID(ctx, n.TenantID)
		if err != nil {
			return err
		}
		sub, err := s.subs.GetByTenant(ctx, n.TenantID)
		if errors.Is(err, domain.ErrSubscriptionNotFound) {
			sub = &domain.Subscription{TenantID: n.TenantID, Plan: domain.PlanPro, Status: domain.SubscriptionPending}
		} else if err != nil {
			return err
		}

		now := s.now().UTC()
		plan := tenant.Plan
		switch n.Status {
		case gatewayStatusComplete:
			sub.Status = domain.SubscriptionActive
			sub.Plan = domain.PlanPro
			sub.Amount = n.Amount
			sub.LastPaymentID = n.PaymentID
			sub.LastPaymentAt = &now
			sub.CancelledAt = nil
			if n.BillingDate != nil {
				next := n.BillingDate.AddDate(0, 1, 0)
				sub.NextBillingDate = &next
			}
			plan = domain.PlanPro
		case gatewayStatusCancelled:
			sub.Status = domain.SubscriptionCancelled
			sub.CancelledAt = &now
			sub.NextBillingDate = nil
			plan = domain.PlanFree
		default:
			if sub.Status == domain.SubscriptionActive {
				sub.Status = domain.SubscriptionPastDue
			} else {
				sub.Status = domain.SubscriptionPending
			}
			s.log.Warn("payfast notification with non-final status",
				zap.String("tenant_id", n.TenantID.String()),
				zap.String("status", n.Status),
			)
		}
		if n.Token != "" {
			sub.PayFastToken = n.Token
		}

		if err := s.subs.Upsert(ctx, sub); err != nil {
			return err
		}
		if err := s.tenants.UpdatePlan(ctx, n.TenantID, plan, sub.Status); err != nil {
			return err
		}
		s.log.Info("subscription mirrored",
			zap.String("tenant_id", n.TenantID.String()),
			zap.String("status", string(sub.Status)),
			zap.String("plan", string(plan)),
		)
		return nil
	})
}

func (s *subscriptionService) Cancel(ctx context.Context, tenantID uuid.UUID) (*domain.Subscription, error) {
	sub, err := s.subs.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if sub.PayFastToken == "" || sub.Status == domain.SubscriptionCancelled {
		return nil, domain.ErrNoActiveSubscription
	}
	if err := s.gateway.Cancel(ctx, sub.PayFastToken); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sub.Status = domain.SubscriptionCancelled
	sub.CancelledAt = &now
	sub.NextBillingDate = nil
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.subs.Upsert(ctx, sub); err != nil {
			return err
		}
		return s.tenants.UpdatePlan(ctx, tenantID, domain.PlanFree, domain.SubscriptionCancelled)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("subscription cancelled", zap.String("tenant_id", tenantID.String()))
	return sub, nil
}

func (s *subscriptionService) Get(ctx context.Context, tenantID uuid.UUID) (*domain.Subscription, error) {
	return s.subs.GetByTenant(ctx, tenantID)
}
