// File: internal/notification/notifier.go
package notification

import (
	"context"
	"errors"
	"time"

	"yad2_tracker/internal/config"
	"yad2_tracker/internal/listing"
	"yad2_tracker/internal/settings"

	"go.uber.org/zap"
)

// ErrNoTransport is returned by VerifyTransport when SMTP is not configured.
var ErrNoTransport = errors.New("email transport not configured")

// SettingsReader supplies the notification settings at send time.
type SettingsReader interface {
	NotificationSettings(ctx context.Context) (*settings.NotificationSettings, error)
}

// Notifier turns a batch of new listings into one email digest.
type Notifier struct {
	settings           SettingsReader
	transport          Transport
	deliveries         Repository
	from               string
	recipientsOverride []string
	now                func() time.Time
	logger             *zap.Logger
}

// NewNotifier wires a notifier. transport and deliveries may be nil.
func NewNotifier(cfg *config.Config, settingsReader SettingsReader, transport Transport, deliveries Repository, logger *zap.Logger) *Notifier {
	from := cfg.EmailFrom
	if from == "" {
		from = cfg.SMTPUsername
	}
	return &Notifier{
		settings:           settingsReader,
		transport:          transport,
		deliveries:         deliveries,
		from:               from,
		recipientsOverride: settings.ParseRecipients(cfg.EmailRecipients),
		now:                time.Now,
		logger:             logger.Named("notifier"),
	}
}

// Notify sends the digest for listings. It never returns an error: every
// failure is logged and reported through the Outcome.
func (n *Notifier) Notify(ctx context.Context, listings []listing.Listing) Outcome {
	if len(listings) == 0 {
		n.logger.Info("No new ads to notify about")
		return OutcomeNothingToSend
	}

	ns, err := n.settings.NotificationSettings(ctx)
	if err != nil {
		n.logger.Error("Could not read notification settings, digest not sent",
			zap.Int("ads", len(listings)), zap.Error(err))
		return OutcomeFailed
	}
	if !ns.SendEmails {
		n.logger.Warn("Email sending disabled, digest suppressed", zap.Int("ads", len(listings)))
		return OutcomeDisabled
	}

	recipients := ns.EmailRecipients
	if len(n.recipientsOverride) > 0 {
		recipients = n.recipientsOverride
	}
	if len(recipients) == 0 && n.from != "" {
		// Nobody configured: the digest goes to the sending account.
		recipients = []string{n.from}
	}
	if len(recipients) == 0 {
		n.logger.Warn("No email recipients configured, digest suppressed", zap.Int("ads", len(listings)))
		return OutcomeNoRecipients
	}

	if n.transport == nil {
		n.logger.Error("Email transport not configured, digest not sent", zap.Int("ads", len(listings)))
		return OutcomeNoTransport
	}

	digest, err := RenderDigest(listings)
	if err != nil {
		n.logger.Error("Failed to render digest", zap.Error(err))
		n.record(ctx, OutcomeFailed, len(listings), len(recipients), "", err)
		return OutcomeFailed
	}

	err = n.transport.Send(ctx, Message{
		From:    n.from,
		To:      recipients,
		Subject: digest.Subject,
		HTML:    digest.HTML,
	})
	if err != nil {
		n.logger.Error("Failed to send digest", zap.Int("ads", len(listings)), zap.Error(err))
		n.record(ctx, OutcomeFailed, len(listings), len(recipients), digest.Subject, err)
		return OutcomeFailed
	}

	n.logger.Info("Digest sent", zap.Int("ads", len(listings)), zap.Int("recipients", len(recipients)))
	n.record(ctx, OutcomeSent, len(listings), len(recipients), digest.Subject, nil)
	return OutcomeSent
}

// VerifyTransport checks the SMTP configuration by dialing and authenticating.
func (n *Notifier) VerifyTransport(ctx context.Context) error {
	if n.transport == nil {
		return ErrNoTransport
	}
	if err := n.transport.Verify(ctx); err != nil {
		n.logger.Error("Email configuration test failed", zap.Error(err))
		return err
	}
	n.logger.Info("Email configuration is valid")
	return nil
}

func (n *Notifier) record(ctx context.Context, outcome Outcome, ads, recipients int, subject string, sendErr error) {
	if n.deliveries == nil {
		return
	}
	d := &Delivery{
		Outcome:        outcome,
		AdCount:        ads,
		RecipientCount: recipients,
		Subject:        subject,
		CreatedAt:      n.now().UTC(),
	}
	if sendErr != nil {
		d.Error = sendErr.Error()
	}
	if err := n.deliveries.Create(ctx, d); err != nil {
		n.logger.Warn("Failed to record delivery", zap.String("outcome", string(outcome)), zap.Error(err))
	}
}
