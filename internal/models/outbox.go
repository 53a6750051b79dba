package models

import (
	"time"

	"cashtrackr/internal/uuid"

	"gorm.io/gorm"
)

// OutboxStatus is the delivery state of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusFailed  OutboxStatus = "failed"
)

// OutboxMessage is an email waiting to be delivered. It is written in the
// same transaction as the account change that produced it.
type OutboxMessage struct {
	ID            string       `gorm:"size:36;primaryKey" json:"id"`
	Kind          string       `gorm:"size:32;not null" json:"kind"`
	Recipient     string       `gorm:"size:255;not null" json:"recipient"`
	RecipientName string       `gorm:"size:100" json:"recipient_name"`
	Subject       string       `gorm:"size:255;not null" json:"subject"`
	HTMLBody      string       `gorm:"type:text;not null" json:"-"`
	TextBody      string       `gorm:"type:text" json:"-"`
	Status        OutboxStatus `gorm:"size:16;not null;default:pending;index:idx_outbox_due,priority:1" json:"status"`
	Attempts      int          `gorm:"not null;default:0" json:"attempts"`
	LastError     string       `gorm:"type:text" json:"last_error,omitempty"`
	NextAttemptAt time.Time    `gorm:"not null;index:idx_outbox_due,priority:2" json:"next_attempt_at"`
	SentAt        *time.Time   `json:"sent_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TableName keeps the outbox table name explicit.
func (OutboxMessage) TableName() string {
	return "email_outbox"
}

// BeforeCreate hook generates a UUIDv7 so ids sort by creation time
func (m *OutboxMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New()
	}
	return nil
}

// All lists every model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Budget{},
		&Expense{},
		&AuditLog{},
		&OutboxMessage{},
	}
}
