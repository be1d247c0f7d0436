package notifier

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"libroom/pkg/logger"
)

// Mailer delivers one email to one recipient.
type Mailer interface {
	Send(toEmail, toName, subject, plainText, htmlContent string) error
}

type sendGridMailer struct {
	apiKey    string
	fromEmail string
	fromName  string
	log       *logger.Logger
}

// NewSendGridMailer reads SendGrid credentials from the environment. A
// missing API key or sender address is a startup error, not a per-message
// one.
func NewSendGridMailer(log *logger.Logger) (Mailer, error) {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
	}

	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		return nil, fmt.Errorf("SENDGRID_FROM_EMAIL is not set")
	}

	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "Library Room Reservations"
	}

	return &sendGridMailer{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		log:       log,
	}, nil
}

func (m *sendGridMailer) Send(toEmail, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		m.log.Error("SendGrid returned a non-success status",
			"to", toEmail,
			"subject", subject,
			"status", response.StatusCode,
			"body", response.Body,
		)
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}

	m.log.Info("Email sent", "to", toEmail, "subject", subject, "status", response.StatusCode)
	return nil
}
