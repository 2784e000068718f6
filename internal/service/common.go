package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobkaart/internal/port"
)

// Settings are the invoicing knobs shared by the document services.
type Settings struct {
	NumberAttempts    int
	NumberRetryDelay  time.Duration
	FullDueDays       int
	DepositDueDays    int
	ProgressDueDays   int
	BalanceDueDays    int
	QuoteValidityDays int
	PaymentRetryLimit int
	// FrontendURL is the base for public share links.
	FrontendURL string
}

func dueDate(now time.Time, days int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
}

func publicLink(base, kind string, token uuid.UUID) string {
	return fmt.Sprintf("%s/p/%s/%s", strings.TrimRight(base, "/"), kind, token)
}

// notify sends a document email and logs delivery failures without failing
// the caller; the status change has already been committed.
func notify(ctx context.Context, log *zap.Logger, send func(context.Context, port.DocumentEmail) error, msg port.DocumentEmail) {
	if msg.ToEmail == "" {
		return
	}
	if err := send(ctx, msg); err != nil {
		log.Warn("document email delivery failed",
			zap.String("document_number", msg.DocumentNumber),
			zap.String("to", msg.ToEmail),
			zap.Error(err),
		)
	}
}

func orNow(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
