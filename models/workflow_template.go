package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelInternal Channel = "internal"
)

// ServiceTypeList is stored as a JSON text column.
type ServiceTypeList []string

func (l ServiceTypeList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *ServiceTypeList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("unsupported column type for ServiceTypeList")
}

func (l ServiceTypeList) Contains(serviceType string) bool {
	for _, t := range l {
		if t == serviceType {
			return true
		}
	}
	return false
}

// WorkflowTemplate maps one or more service event types to an ordered list
// of notification steps. Only active templates take part in evaluation.
type WorkflowTemplate struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Name         string    `gorm:"not null"`
	Description  string
	ServiceTypes ServiceTypeList `gorm:"type:text;not null"`
	Active       bool            `gorm:"default:true"`

	Steps []WorkflowStep `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`

	gorm.Model
}

func (t *WorkflowTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// WorkflowStep fires DaysBefore days ahead of the service date on the given
// channel. Steps are processed in descending DaysBefore order, furthest from
// the service date first.
type WorkflowStep struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TemplateID uuid.UUID `gorm:"type:uuid;index;not null"`

	DaysBefore int     `gorm:"not null"`
	Channel    Channel `gorm:"size:10;not null"`
	Message    string  `gorm:"type:text;not null"`
	Automatic  bool    `gorm:"default:true"`

	gorm.Model
}

func (s *WorkflowStep) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
