package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yad2_tracker/internal/config"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message is a transport-agnostic email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Transport delivers messages. Implementations must honour ctx.
type Transport interface {
	Send(ctx context.Context, msg Message) error
	Verify(ctx context.Context) error
}

// SMTPTransport sends mail through an authenticated SMTP relay.
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSMTPTransport returns nil when SMTP credentials are incomplete; callers
// treat a nil Transport as "email not configured".
func NewSMTPTransport(cfg *config.Config, logger *zap.Logger) Transport {
	if !cfg.EmailConfigured() {
		logger.Warn("SMTP credentials missing, email notifications are unavailable",
			zap.Bool("host_set", cfg.SMTPHost != ""),
			zap.Bool("username_set", cfg.SMTPUsername != ""),
			zap.Bool("password_set", cfg.SMTPPassword != ""),
		)
		return nil
	}
	port := cfg.SMTPPort
	if port <= 0 {
		port = 587
	}
	return &SMTPTransport{
		host:     cfg.SMTPHost,
		port:     port,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		timeout:  30 * time.Second,
		logger:   logger.Named("smtp"),
	}
}

func (t *SMTPTransport) client() (*mail.Client, error) {
	return mail.NewClient(t.host,
		mail.WithPort(t.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(t.username),
		mail.WithPassword(t.password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithTimeout(t.timeout),
	)
}

// Send delivers msg in a single SMTP session.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m, err := buildMessage(msg)
	if err != nil {
		return err
	}
	c, err := t.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	t.logger.Debug("Message sent", zap.Int("recipients", len(msg.To)))
	return nil
}

// Verify dials and authenticates without sending anything.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	c, err := t.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	return c.Close()
}

func buildMessage(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("message has no recipients")
	}
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}
