package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"jobboard/internal/config"
	"jobboard/internal/logging"
)

var ErrNotConfigured = errors.New("mailer: smtp host is not configured")

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger logging.Logger
}

func NewSMTP(cfg config.SMTPConfig, logger logging.Logger) *SMTPMailer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &SMTPMailer{cfg: cfg, logger: logger.With("component", "mailer")}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.Host == "" {
		return ErrNotConfigured
	}

	out, err := m.build(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mailer: new client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}

	m.logger.Info(ctx, "email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (m *SMTPMailer) build(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.FromFormat(m.cfg.FromName, m.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("mailer: from: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("mailer: to: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)
	return out, nil
}

var _ Mailer = (*SMTPMailer)(nil)
