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

const fallbackNumberAttempts = 3

// numberAllocator hands out per-tenant sequential document numbers such as
// INV-2026-007. The unique constraint on (tenant_id, number) is the final
// arbiter; the existence check only narrows the race.
type numberAllocator struct {
	store     port.DocumentNumberStore
	prefix    string
	attempts  int
	baseDelay time.Duration
	now       func() time.Time
	log       *zap.Logger
}

func newNumberAllocator(store port.DocumentNumberStore, prefix string, attempts int, baseDelay time.Duration,
	now func() time.Time, log *zap.Logger) *numberAllocator {
	if attempts < 1 {
		attempts = 1
	}
	return &numberAllocator{
		store:     store,
		prefix:    prefix,
		attempts:  attempts,
		baseDelay: baseDelay,
		now:       now,
		log:       log,
	}
}

// allocate returns a number that was free when checked, along with its
// sequence. floor is the highest sequence already known to be taken.
func (a *numberAllocator) allocate(ctx context.Context, tenantID uuid.UUID, floor int) (string, int, error) {
	year := a.now().UTC().Year()
	latest, err := a.store.LatestNumber(ctx, tenantID, domain.YearPrefix(a.prefix, year))
	if err != nil {
		return "", 0, err
	}
	seq := 1
	if n, ok := domain.ParseDocumentSequence(a.prefix, year, latest); ok {
		seq = n + 1
	}
	if seq <= floor {
		seq = floor + 1
	}

	for attempt := 1; attempt <= a.attempts; attempt++ {
		candidate := domain.FormatDocumentNumber(a.prefix, year, seq)
		exists, err := a.store.NumberExists(ctx, tenantID, candidate)
		if err != nil {
			return "", 0, err
		}
		if !exists {
			return candidate, seq, nil
		}
		seq++
		if err := sleepCtx(ctx, time.Duration(attempt)*a.baseDelay); err != nil {
			return "", 0, err
		}
	}

	a.log.Warn("sequential numbering exhausted, using random suffix",
		zap.String("tenant_id", tenantID.String()),
		zap.String("prefix", a.prefix),
		zap.Int("attempts", a.attempts),
	)
	for i := 0; i < fallbackNumberAttempts; i++ {
		candidate, err := domain.RandomDocumentNumber(a.prefix, year)
		if err != nil {
			return "", 0, err
		}
		exists, err := a.store.NumberExists(ctx, tenantID, candidate)
		if err != nil {
			return "", 0, err
		}
		if !exists {
			return candidate, floor, nil
		}
	}
	return "", 0, domain.ErrNumberGenerationFailed
}

// create allocates a number and calls insert with it, allocating again when
// insert reports dup. insert is expected to run its own transaction so a
// failed attempt leaves nothing behind.
func (a *numberAllocator) create(ctx context.Context, tenantID uuid.UUID, dup error,
	insert func(ctx context.Context, number string) error) error {
	floor := 0
	for attempt := 1; attempt <= a.attempts; attempt++ {
		number, seq, err := a.allocate(ctx, tenantID, floor)
		if err != nil {
			return err
		}
		err = insert(ctx, number)
		if err == nil {
			return nil
		}
		if !errors.Is(err, dup) {
			return err
		}
		a.log.Debug("document number taken on insert, retrying",
			zap.String("tenant_id", tenantID.String()),
			zap.String("number", number),
			zap.Int("attempt", attempt),
		)
		if seq > floor {
			floor = seq
		}
	}
	return domain.ErrNumberGenerationFailed
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
