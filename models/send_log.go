package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SendLogEntry is the append-only audit trail of dispatched reminders.
// WorkflowStepID is set for automatic step fires and serves as the
// idempotency key that keeps a scheduled step from firing twice; manual
// sends leave it nil.
type SendLogEntry struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	ReminderID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	WorkflowStepID *uuid.UUID `gorm:"type:uuid;index"`

	Channel   Channel `gorm:"size:10;not null"`
	Recipient string  `gorm:"not null"`
	Message   string  `gorm:"type:text"`
	Automatic bool
	SentAt    time.Time

	gorm.Model
}

func (e *SendLogEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
