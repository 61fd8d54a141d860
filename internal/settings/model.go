// File: internal/settings/model.go
package settings

import (
	"strings"
	"time"
)

// Setting keys.
const (
	KeySendEmails        = "send_emails"
	KeyEmailRecipients   = "email_recipients"
	KeyAdminPasswordHash = "admin_password_hash"
)

// Setting is one row of the key/value settings table.
type Setting struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:text;not null;default:''"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Setting) TableName() string {
	return "settings"
}

// NotificationSettings gate the email digest. They are read at send time.
type NotificationSettings struct {
	SendEmails      bool     `json:"send_emails"`
	EmailRecipients []string `json:"email_recipients"`
}

// --- DTOs for API ---

type UpdateSettingsRequest struct {
	SendEmails      *bool     `json:"send_emails,omitempty"`
	EmailRecipients *[]string `json:"email_recipients,omitempty" binding:"omitempty,dive,email"`
}

// ParseRecipients splits a comma separated list, dropping blanks and duplicates.
func ParseRecipients(raw string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		addr := strings.TrimSpace(part)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// parseBool accepts the spellings operators actually type into a settings table.
func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
