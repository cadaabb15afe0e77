package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the owning customer of one or more vehicles. Its primary
// contact supplies the recipient address for email and SMS reminders.
type Company struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"not null"`

	ContactName  string
	ContactEmail string
	ContactPhone string
	IsActive     bool `gorm:"default:true"`

	Vehicles []Vehicle `gorm:"foreignKey:CompanyID"`

	gorm.Model
}

func (c *Company) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
