// File: internal/settings/service.go
package settings

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Service exposes typed access to the settings table.
type Service interface {
	NotificationSettings(ctx context.Context) (*NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, req UpdateSettingsRequest) (*NotificationSettings, error)
	AdminPasswordHash(ctx context.Context) (string, error)
	SetAdminPasswordHash(ctx context.Context, hash string) error
	SeedDefaults(ctx context.Context, sendEmails bool) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new settings service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger.Named("SettingsService")}
}

// NotificationSettings reads the current values. Nothing is cached: a change
// made through the admin API applies to the very next run. Sending is on
// unless a send_emails row turns it off.
func (s *service) NotificationSettings(ctx context.Context) (*NotificationSettings, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sendEmails := true
	if raw, ok := all[KeySendEmails]; ok {
		sendEmails = parseBool(raw)
	}
	return &NotificationSettings{
		SendEmails:      sendEmails,
		EmailRecipients: ParseRecipients(all[KeyEmailRecipients]),
	}, nil
}

func (s *service) UpdateNotificationSettings(ctx context.Context, req UpdateSettingsRequest) (*NotificationSettings, error) {
	if req.SendEmails != nil {
		if err := s.repo.Set(ctx, KeySendEmails, strconv.FormatBool(*req.SendEmails)); err != nil {
			return nil, err
		}
	}
	if req.EmailRecipients != nil {
		joined := strings.Join(ParseRecipients(strings.Join(*req.EmailRecipients, ",")), ",")
		if err := s.repo.Set(ctx, KeyEmailRecipients, joined); err != nil {
			return nil, err
		}
	}
	s.logger.Info("Notification settings updated")
	return s.NotificationSettings(ctx)
}

func (s *service) AdminPasswordHash(ctx context.Context) (string, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return "", err
	}
	return all[KeyAdminPasswordHash], nil
}

func (s *service) SetAdminPasswordHash(ctx context.Context, hash string) error {
	return s.repo.Set(ctx, KeyAdminPasswordHash, hash)
}

// SeedDefaults stores the initial send_emails value on a fresh install. An
// existing row, including one set from the admin API, is left alone.
func (s *service) SeedDefaults(ctx context.Context, sendEmails bool) error {
	seeded, err := s.repo.SetIfAbsent(ctx, KeySendEmails, strconv.FormatBool(sendEmails))
	if err != nil {
		return err
	}
	if seeded {
		s.logger.Info("Seeded notification settings", zap.Bool("send_emails", sendEmails))
	}
	return nil
}
