package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outcome is the result of one Notify call. None of them is an error for the
// run; they exist so the orchestrator can report what happened.
type Outcome string

const (
	OutcomeNothingToSend Outcome = "nothing_to_send"
	OutcomeDisabled      Outcome = "disabled"
	OutcomeNoRecipients  Outcome = "no_recipients"
	OutcomeNoTransport   Outcome = "no_transport"
	OutcomeSent          Outcome = "sent"
	OutcomeFailed        Outcome = "failed"
)

// Delivery records one attempted digest send.
type Delivery struct {
	ID             uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	Outcome        Outcome   `gorm:"type:varchar(32);not null" json:"outcome"`
	AdCount        int       `gorm:"not null" json:"ad_count"`
	RecipientCount int       `gorm:"not null" json:"recipient_count"`
	Subject        string    `gorm:"type:text;not null;default:''" json:"subject"`
	Error          string    `gorm:"type:text;not null;default:''" json:"error,omitempty"`
	CreatedAt      time.Time `gorm:"not null;index:idx_notification_deliveries_created_at" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Delivery) TableName() string {
	return "notification_deliveries"
}

// BeforeCreate assigns the ID on the client so the same model works on
// PostgreSQL and SQLite.
func (d *Delivery) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
