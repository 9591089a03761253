package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minitodo/apiserver/config"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier sends plain text email through the SendGrid v3 API.
type SendGridNotifier struct {
	client sendGridClient
	from   *mail.Email
}

func NewSendGrid(cfg config.MailConfig) (*SendGridNotifier, error) {
	if strings.TrimSpace(cfg.SendGridAPIKey) == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.Sender) == "" {
		return nil, errors.New("sender email is required")
	}
	return &SendGridNotifier{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail("", cfg.Sender),
	}, nil
}

func (n *SendGridNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errMissingRecipient
	}
	email := mail.NewSingleEmail(n.from, msg.Subject, mail.NewEmail("", msg.To), msg.Body, "")
	resp, err := n.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
