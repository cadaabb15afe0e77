package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"fleetcare-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder date defaults to two weeks ahead of the service date.
const defaultReminderLeadDays = 14

// allowedTransitions is the reminder state machine. done is terminal; it is
// additionally reachable from every non-done state as a manual escape hatch,
// handled separately in Transition. A delayed appointment still receives
// notices, so delayed -> reminder_sent is a defined edge (a successful
// dispatch is its usual trigger).
var allowedTransitions = map[models.ReminderStatus][]models.ReminderStatus{
	models.StatusScheduled:    {models.StatusReminderSent, models.StatusDelayed, models.StatusDone},
	models.StatusReminderSent: {models.StatusDone},
	models.StatusDelayed:      {models.StatusScheduled, models.StatusReminderSent, models.StatusDone},
	models.StatusDone:         {},
}

// LifecycleService owns reminder creation, import and status transitions.
type LifecycleService struct {
	db *gorm.DB
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db}
}

type CreateReminderInput struct {
	VehicleID    uuid.UUID
	ServiceType  string
	ServiceDate  time.Time
	ReminderDate *time.Time
}

func (s *LifecycleService) CreateReminder(in CreateReminderInput) (*models.ServiceReminder, error) {
	if in.ServiceType == "" {
		return nil, fmt.Errorf("%w: service type is required", ErrValidation)
	}
	if in.ServiceDate.IsZero() {
		return nil, fmt.Errorf("%w: service date is required", ErrValidation)
	}

	reminderDate := in.ServiceDate.AddDate(0, 0, -defaultReminderLeadDays)
	if in.ReminderDate != nil {
		reminderDate = *in.ReminderDate
	}
	if reminderDate.After(in.ServiceDate) {
		return nil, fmt.Errorf("%w: reminder date must not be after the service date", ErrValidation)
	}

	var vehicle models.Vehicle
	if err := s.db.First(&vehicle, "id = ?", in.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vehicle %s", ErrNotFound, in.VehicleID)
		}
		return nil, err
	}

	reminder := models.ServiceReminder{
		VehicleID:    in.VehicleID,
		ServiceType:  in.ServiceType,
		ReminderDate: reminderDate,
		ServiceDate:  in.ServiceDate,
		Status:       models.StatusScheduled,
	}
	if err := s.db.Create(&reminder).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// HistoryRecord is one row from an external service-history feed: the next
// planned service for a vehicle.
type HistoryRecord struct {
	VehicleID       uuid.UUID `json:"vehicleId"`
	ServiceType     string    `json:"serviceType"`
	NextServiceDate time.Time `json:"nextServiceDate"`
}

// ImportFromHistory creates reminders for history records that do not
// already have an open reminder for the same vehicle, type and date. Bad
// records are skipped and reported without aborting the batch.
func (s *LifecycleService) ImportFromHistory(records []HistoryRecord) ([]models.ServiceReminder, []error) {
	created := make([]models.ServiceReminder, 0, len(records))
	var failures []error

	for _, record := range records {
		var count int64
		err := s.db.Model(&models.ServiceReminder{}).
			Where("vehicle_id = ? AND service_type = ? AND service_date = ? AND status <> ?",
				record.VehicleID, record.ServiceType, record.NextServiceDate, models.StatusDone).
			Count(&count).Error
		if err != nil {
			failures = append(failures, fmt.Errorf("vehicle %s: %v", record.VehicleID, err))
			continue
		}
		if count > 0 {
			log.Printf("Import: open reminder already exists for vehicle %s (%s), skipping",
				record.VehicleID, record.ServiceType)
			continue
		}

		reminder, err := s.CreateReminder(CreateReminderInput{
			VehicleID:   record.VehicleID,
			ServiceType: record.ServiceType,
			ServiceDate: record.NextServiceDate,
		})
		if err != nil {
			failures = append(failures, fmt.Errorf("vehicle %s: %w", record.VehicleID, err))
			continue
		}
		created = append(created, *reminder)
	}
	return created, failures
}

// Transition applies a manual status change. done is terminal; every other
// state may move to done directly. Redundant same-state changes and
// undefined edges are rejected.
func (s *LifecycleService) Transition(id uuid.UUID, next models.ReminderStatus) (*models.ServiceReminder, error) {
	switch next {
	case models.StatusScheduled, models.StatusReminderSent, models.StatusDone, models.StatusDelayed:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}

	var reminder models.ServiceReminder
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reminder, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reminder %s", ErrNotFound, id)
			}
			return err
		}

		if reminder.Status == next {
			return fmt.Errorf("%w: reminder %s already %s", ErrInvalidTransition, id, next)
		}
		if reminder.Status == models.StatusDone {
			return fmt.Errorf("%w: reminder %s is done", ErrInvalidTransition, id)
		}
		if next != models.StatusDone && !transitionAllowed(reminder.Status, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reminder.Status, next)
		}

		reminder.Status = next
		return tx.Model(&models.ServiceReminder{}).Where("id = ?", id).
			Update("status", next).Error
	})
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func transitionAllowed(from, to models.ReminderStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// MarkDone is the manual completion action.
func (s *LifecycleService) MarkDone(id uuid.UUID) (*models.ServiceReminder, error) {
	return s.Transition(id, models.StatusDone)
}

type ReminderFilter struct {
	Status      models.ReminderStatus
	VehicleID   uuid.UUID
	ServiceType string
	OpenOnly    bool
}

func (s *LifecycleService) ListReminders(filter ReminderFilter) ([]models.ServiceReminder, error) {
	query := s.db.Preload("Vehicle.Company").Order("service_date")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.VehicleID != uuid.Nil {
		query = query.Where("vehicle_id = ?", filter.VehicleID)
	}
	if filter.ServiceType != "" {
		query = query.Where("service_type = ?", filter.ServiceType)
	}
	if filter.OpenOnly {
		query = query.Where("status <> ?", models.StatusDone)
	}

	var reminders []models.ServiceReminder
	err := query.Find(&reminders).Error
	return reminders, err
}

func (s *LifecycleService) Get(id uuid.UUID) (*models.ServiceReminder, error) {
	var reminder models.ServiceReminder
	if err := s.db.Preload("Vehicle.Company").First(&reminder, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reminder %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &reminder, nil
}

// LogsFor returns the append-only audit trail for one reminder, oldest first.
func (s *LifecycleService) LogsFor(reminderID uuid.UUID) ([]models.SendLogEntry, error) {
	var entries []models.SendLogEntry
	err := s.db.Where("reminder_id = ?", reminderID).Order("sent_at").Find(&entries).Error
	return entries, err
}
