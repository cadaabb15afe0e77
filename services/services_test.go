package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"fleetcare-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Company{},
		&models.Vehicle{},
		&models.ServiceReminder{},
		&models.WorkflowTemplate{},
		&models.WorkflowStep{},
		&models.SendLogEntry{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

type sentMessage struct {
	Recipient string
	Message   string
}

// fakeTransport records sends and can be forced to fail.
type fakeTransport struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeTransport) Send(ctx context.Context, recipient, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{Recipient: recipient, Message: message})
	return nil
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func fakeTransports() (map[models.Channel]Transport, *fakeTransport, *fakeTransport, *fakeTransport) {
	email := &fakeTransport{}
	sms := &fakeTransport{}
	internal := &fakeTransport{}
	return map[models.Channel]Transport{
		models.ChannelEmail:    email,
		models.ChannelSMS:      sms,
		models.ChannelInternal: internal,
	}, email, sms, internal
}

type fleetOptions struct {
	plate        string
	contactEmail string
	contactPhone string
}

func seedFleet(t *testing.T, db *gorm.DB, opts fleetOptions) models.Vehicle {
	t.Helper()
	if opts.plate == "" {
		opts.plate = "AB123"
	}
	company := models.Company{
		Name:         "Hafnarflutningar ehf",
		ContactName:  "Jóna Dís",
		ContactEmail: opts.contactEmail,
		ContactPhone: opts.contactPhone,
		IsActive:     true,
	}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("failed to seed company: %v", err)
	}
	vehicle := models.Vehicle{
		CompanyID:   company.ID,
		PlateNumber: opts.plate,
		VehicleType: "Van",
		ModelName:   "Sprinter",
		Year:        2021,
		IsActive:    true,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("failed to seed vehicle: %v", err)
	}
	vehicle.Company = company
	return vehicle
}

func seedReminder(t *testing.T, db *gorm.DB, vehicle models.Vehicle, serviceType string, serviceDate time.Time) models.ServiceReminder {
	t.Helper()
	reminder := models.ServiceReminder{
		VehicleID:    vehicle.ID,
		ServiceType:  serviceType,
		ReminderDate: serviceDate.AddDate(0, 0, -14),
		ServiceDate:  serviceDate,
		Status:       models.StatusScheduled,
	}
	if err := db.Create(&reminder).Error; err != nil {
		t.Fatalf("failed to seed reminder: %v", err)
	}
	reminder.Vehicle = vehicle
	return reminder
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
