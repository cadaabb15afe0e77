package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Vehicle struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null"`

	PlateNumber string `gorm:"uniqueIndex;size:32;not null"`
	VehicleType string `gorm:"size:64;not null"` // van, truck, passenger car, ...
	ModelName   string `gorm:"column:model;size:64"`
	Year        int
	IsActive    bool `gorm:"default:true"`

	Company Company `gorm:"foreignKey:CompanyID"`

	gorm.Model
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}
