package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minitodo/apiserver/config"
	"gopkg.in/gomail.v2"
)

type smtpDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends email through an SMTP relay.
type SMTPNotifier struct {
	dialer smtpDialer
	from   string
}

func NewSMTP(cfg config.MailConfig) (*SMTPNotifier, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, errors.New("smtp host is required")
	}
	if strings.TrimSpace(cfg.Sender) == "" {
		return nil, errors.New("sender email is required")
	}
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.Sender,
	}, nil
}

// Notify dials the relay per message. gomail has no context support, so ctx
// is only checked before dialing.
func (n *SMTPNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errMissingRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}
