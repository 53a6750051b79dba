package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers messages through the SendGrid v3 mail API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridSender creates a sender authenticated with apiKey.
func NewSendGridSender(apiKey, fromAddress, fromName string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

// newSendGridSenderWithHost points the client at another API host.
func newSendGridSenderWithHost(apiKey, host, fromAddress, fromName string) *SendGridSender {
	request := sendgrid.GetRequest(apiKey, "/v3/mail/send", host)
	request.Method = "POST"
	return &SendGridSender{
		client: &sendgrid.Client{Request: request},
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

// Send implements Sender. Any non-2xx response is an error.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(s.from, msg.Subject, to, msg.TextBody, msg.HTMLBody)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
