package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"jobkaart/internal/port"
)

// sendAPI is the part of the SES client the sender uses.
type sendAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesSender struct {
	client      sendAPI
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(ctx context.Context, region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return newSender(sesv2.NewFromConfig(cfg), fromAddress, fromName), nil
}

func newSender(client sendAPI, fromAddress, fromName string) *sesSender {
	return &sesSender{client: client, fromAddress: fromAddress, fromName: fromName}
}

func (s *sesSender) SendQuoteEmail(ctx context.Context, msg port.DocumentEmail) error {
	subject := fmt.Sprintf("Quote %s from %s", msg.DocumentNumber, msg.BusinessName)
	text := fmt.Sprintf("Hi %s,\n\n%s has sent you quote %s for %s.\n\nView and accept it here:\n%s\n\n%s",
		msg.ToName, msg.BusinessName, msg.DocumentNumber, msg.Total.Format(), msg.Link, msg.BusinessName)
	body := buildDocumentHTML(msg, "View quote",
		fmt.Sprintf("%s has sent you quote <strong>%s</strong> for <strong>%s</strong>.",
			html.EscapeString(msg.BusinessName), html.EscapeString(msg.DocumentNumber), msg.Total.Format()))
	return s.send(ctx, msg.ToEmail, subject, body, text)
}

func (s *sesSender) SendInvoiceEmail(ctx context.Context, msg port.DocumentEmail) error {
	due := ""
	if msg.DueDate != nil {
		due = " due on " + msg.DueDate.Format("2 January 2006")
	}
	subject := fmt.Sprintf("Invoice %s from %s", msg.DocumentNumber, msg.BusinessName)
	text := fmt.Sprintf("Hi %s,\n\n%s has sent you invoice %s for %s%s.\n\nView it here:\n%s\n\n%s",
		msg.ToName, msg.BusinessName, msg.DocumentNumber, msg.Total.Format(), due, msg.Link, msg.BusinessName)
	body := buildDocumentHTML(msg, "View invoice",
		fmt.Sprintf("%s has sent you invoice <strong>%s</strong> for <strong>%s</strong>%s.",
			html.EscapeString(msg.BusinessName), html.EscapeString(msg.DocumentNumber), msg.Total.Format(), due))
	return s.send(ctx, msg.ToEmail, subject, body, text)
}

func (s *sesSender) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildDocumentHTML(msg port.DocumentEmail, action, summary string) string {
	link := html.EscapeString(msg.Link)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <p>Hi %s,</p>
  <p>%s</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #0F766E; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">%s</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`, html.EscapeString(msg.ToName), summary, link, action, link, html.EscapeString(msg.BusinessName))
}
