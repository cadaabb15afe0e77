package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderStatus string

const (
	StatusScheduled    ReminderStatus = "scheduled"
	StatusReminderSent ReminderStatus = "reminder_sent"
	StatusDone         ReminderStatus = "done"
	StatusDelayed      ReminderStatus = "delayed"
)

// Known service event types. The set is open: reminders imported from a
// service-history feed may carry types not listed here.
const (
	ServiceTypeInspection  = "inspection"
	ServiceTypeTireChange  = "tire_change"
	ServiceTypeLubrication = "lubrication"
	ServiceTypeOilChange   = "oil_change"
	ServiceTypeMaintenance = "maintenance"
)

type ServiceReminder struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	VehicleID uuid.UUID `gorm:"type:uuid;index;not null"`

	ServiceType  string         `gorm:"size:40;index;not null"`
	ReminderDate time.Time      `gorm:"not null"`
	ServiceDate  time.Time      `gorm:"not null"`
	Status       ReminderStatus `gorm:"size:20;index;default:'scheduled'"`

	CustomerNotified   bool `gorm:"default:false"`
	InternalNoticeSent bool `gorm:"default:false"`

	Vehicle Vehicle `gorm:"foreignKey:VehicleID"`

	gorm.Model
}

func (r *ServiceReminder) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
