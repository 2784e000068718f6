package noop

import (
	"context"

	"go.uber.org/zap"

	"jobkaart/internal/port"
)

type noopSender struct {
	log *zap.Logger
}

// NewNoopSender creates a no-op EmailSender that logs share links instead of sending.
func NewNoopSender(log *zap.Logger) port.EmailSender {
	return &noopSender{log: log.Named("email.noop")}
}

func (s *noopSender) SendQuoteEmail(_ context.Context, msg port.DocumentEmail) error {
	s.log.Info("quote email", zap.String("to", msg.ToEmail),
		zap.String("quote_number", msg.DocumentNumber), zap.String("link", msg.Link))
	return nil
}

func (s *noopSender) SendInvoiceEmail(_ context.Context, msg port.DocumentEmail) error {
	s.log.Info("invoice email", zap.String("to", msg.ToEmail),
		zap.String("invoice_number", msg.DocumentNumber), zap.String("link", msg.Link))
	return nil
}
