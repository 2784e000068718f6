package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobkaart/internal/domain"
)

func TestQuoteStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to domain.QuoteStatus
		want     bool
	}{
		{domain.QuoteStatusDraft, domain.QuoteStatusSent, true},
		{domain.QuoteStatusDraft, domain.QuoteStatusAccepted, false},
		{domain.QuoteStatusDraft, domain.QuoteStatusRejected, false},
		{domain.QuoteStatusSent, domain.QuoteStatusViewed, true},
		{domain.QuoteStatusSent, domain.QuoteStatusAccepted, true},
		{domain.QuoteStatusViewed, domain.QuoteStatusRejected, true},
		{domain.QuoteStatusViewed, domain.QuoteStatusViewed, false},
		{domain.QuoteStatusAccepted, domain.QuoteStatusRejected, false},
		{domain.QuoteStatusExpired, domain.QuoteStatusAccepted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestValidateJobTransition(t *testing.T) {
	assert.NoError(t, domain.ValidateJobTransition(domain.JobStatusScheduled, domain.JobStatusInProgress))
	assert.ErrorIs(t, domain.ValidateJobTransition(domain.JobStatusComplete, domain.JobStatusPaid), domain.ErrInvalidStatusTransition)
	assert.ErrorIs(t, domain.ValidateJobTransition(domain.JobStatusInvoiced, domain.JobStatusComplete), domain.ErrInvalidStatusTransition)
}
