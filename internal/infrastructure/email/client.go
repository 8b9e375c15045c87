// Package email provides the email client for sending operational alerts.
package email

import (
	"fmt"
	"os"

	"github.com/helixdesk/helixdesk-go/internal/infrastructure/email/templates"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendEscalationAlert(toEmail string, props templates.EscalationAlertProps) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("ALERT_EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "alerts@helixdesk.com"
	}

	fromName := os.Getenv("ALERT_EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "Helixdesk"
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendEscalationAlert composes and sends the verification failure alert.
func (c *ResendClient) SendEscalationAlert(toEmail string, props templates.EscalationAlertProps) error {
	subject := fmt.Sprintf("Helixdesk alert: repeated verification failures (%s)", props.MaskedSessionID)

	htmlContent := templates.GetEscalationAlertContent(props)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send escalation alert via Resend: %w", err)
	}

	return nil
}
