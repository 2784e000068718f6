package ses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobkaart/internal/port"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSendInvoiceEmail(t *testing.T) {
	fake := &fakeSES{}
	s := newSender(fake, "noreply@jobkaart.co.za", "JobKaart")
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	err := s.SendInvoiceEmail(context.Background(), port.DocumentEmail{
		ToEmail:        "thandi@example.com",
		ToName:         "Thandi",
		BusinessName:   "Sipho's Plumbing",
		DocumentNumber: "INV-2026-004",
		Total:          30000,
		DueDate:        &due,
		Link:           "https://app.jobkaart.co.za/p/invoices/abc",
	})

	require.NoError(t, err)
	require.NotNil(t, fake.input)
	assert.Equal(t, "JobKaart <noreply@jobkaart.co.za>", *fake.input.FromEmailAddress)
	assert.Equal(t, []string{"thandi@example.com"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "Invoice INV-2026-004 from Sipho's Plumbing", *fake.input.Content.Simple.Subject.Data)
	text := *fake.input.Content.Simple.Body.Text.Data
	assert.Contains(t, text, "R300.00 due on 15 March 2026")
	assert.Contains(t, text, "https://app.jobkaart.co.za/p/invoices/abc")
	assert.Contains(t, *fake.input.Content.Simple.Body.Html.Data, "Sipho&#39;s Plumbing")
}

func TestSendQuoteEmail_WrapsError(t *testing.T) {
	fake := &fakeSES{err: errors.New("throttled")}
	s := newSender(fake, "noreply@jobkaart.co.za", "JobKaart")

	err := s.SendQuoteEmail(context.Background(), port.DocumentEmail{ToEmail: "a@b.c", DocumentNumber: "Q-2026-001"})

	assert.ErrorContains(t, err, "SES SendEmail: throttled")
}
