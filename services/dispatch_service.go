package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fleetcare-backend/models"
	"fleetcare-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultTransportTimeout = 10 * time.Second

const lockStripes = 64

// DispatchService executes sends. Per reminder, dispatches are serialized
// through a striped lock: the append-log-then-transition sequence must never
// interleave with another dispatch for the same reminder. Striping keeps the
// lock memory bounded; two unrelated reminders may share a stripe, which
// only coarsens the serialization. The log entry and the status update are
// written in one DB transaction, and only after the transport confirmed
// delivery.
type DispatchService struct {
	db                *gorm.DB
	transports        map[models.Channel]Transport
	timeout           time.Duration
	internalRecipient string

	locks [lockStripes]sync.Mutex
}

func NewDispatchService(db *gorm.DB, transports map[models.Channel]Transport, internalRecipient string) *DispatchService {
	if internalRecipient == "" {
		internalRecipient = "service-department"
	}
	return &DispatchService{
		db:                db,
		transports:        transports,
		timeout:           defaultTransportTimeout,
		internalRecipient: internalRecipient,
	}
}

func (s *DispatchService) lockFor(reminderID uuid.UUID) *sync.Mutex {
	return &s.locks[int(reminderID[0])%lockStripes]
}

type DispatchInput struct {
	ReminderID uuid.UUID
	Channel    models.Channel

	// Recipient overrides contact resolution when set.
	Recipient string
	// Message is the literal text to send. When empty, StepID must be set
	// and the step's template is rendered from the reminder's context.
	Message string

	// StepID marks which workflow step fired; nil for free-form manual sends.
	StepID    *uuid.UUID
	Automatic bool
}

// Dispatch sends one message for one reminder and records the result. On any
// failure before or during transport, nothing is written and the call can be
// retried; on success exactly one log entry and one status update become
// visible together.
func (s *DispatchService) Dispatch(ctx context.Context, in DispatchInput) (*models.SendLogEntry, error) {
	lock := s.lockFor(in.ReminderID)
	lock.Lock()
	defer lock.Unlock()

	var reminder models.ServiceReminder
	if err := s.db.Preload("Vehicle.Company").First(&reminder, "id = ?", in.ReminderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reminder %s", ErrNotFound, in.ReminderID)
		}
		return nil, err
	}
	if reminder.Status == models.StatusDone {
		return nil, fmt.Errorf("%w: reminder %s is done", ErrInvalidTransition, reminder.ID)
	}

	transport, ok := s.transports[in.Channel]
	if !ok {
		return nil, fmt.Errorf("%w: no transport for channel %q", ErrValidation, in.Channel)
	}

	recipient := in.Recipient
	if recipient == "" {
		resolved, err := s.resolveRecipient(reminder, in.Channel)
		if err != nil {
			return nil, err
		}
		recipient = resolved
	}

	message := in.Message
	if message == "" {
		if in.StepID == nil {
			return nil, fmt.Errorf("%w: message is required for free-form sends", ErrValidation)
		}
		var step models.WorkflowStep
		if err := s.db.First(&step, "id = ?", *in.StepID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: workflow step %s", ErrNotFound, *in.StepID)
			}
			return nil, err
		}
		message = Render(step.Message, ContextFor(reminder))
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := transport.Send(sendCtx, recipient, message); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDispatchTransport, err)
	}

	entry := models.SendLogEntry{
		ReminderID:     reminder.ID,
		WorkflowStepID: in.StepID,
		Channel:        in.Channel,
		Recipient:      recipient,
		Message:        message,
		Automatic:      in.Automatic,
		SentAt:         time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		switch in.Channel {
		case models.ChannelEmail, models.ChannelSMS:
			updates["customer_notified"] = true
		case models.ChannelInternal:
			updates["internal_notice_sent"] = true
		}
		if reminder.Status == models.StatusScheduled || reminder.Status == models.StatusDelayed {
			updates["status"] = models.StatusReminderSent
		}
		return tx.Model(&models.ServiceReminder{}).Where("id = ?", reminder.ID).
			Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *DispatchService) resolveRecipient(reminder models.ServiceReminder, channel models.Channel) (string, error) {
	contact := reminder.Vehicle.Company
	switch channel {
	case models.ChannelEmail:
		if contact.ContactEmail == "" {
			return "", fmt.Errorf("%w: no contact email on file for company %q", ErrRecipientMissing, contact.Name)
		}
		return contact.ContactEmail, nil
	case models.ChannelSMS:
		if contact.ContactPhone == "" || !utils.ValidatePhone(contact.ContactPhone) {
			return "", fmt.Errorf("%w: no usable contact phone on file for company %q", ErrRecipientMissing, contact.Name)
		}
		return contact.ContactPhone, nil
	case models.ChannelInternal:
		return s.internalRecipient, nil
	}
	return "", fmt.Errorf("%w: unknown channel %q", ErrValidation, channel)
}

// FiredStepIDs returns the workflow step ids already recorded in the send
// log for a reminder. This is the idempotency set the evaluator excludes.
func (s *DispatchService) FiredStepIDs(reminderID uuid.UUID) (map[uuid.UUID]bool, error) {
	var entries []models.SendLogEntry
	if err := s.db.Where("reminder_id = ? AND workflow_step_id IS NOT NULL", reminderID).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	fired := make(map[uuid.UUID]bool, len(entries))
	for _, entry := range entries {
		fired[*entry.WorkflowStepID] = true
	}
	return fired, nil
}

// ContextFor builds the render context from a reminder loaded with its
// vehicle and company.
func ContextFor(reminder models.ServiceReminder) RenderContext {
	return RenderContext{
		Vehicle:     reminder.Vehicle.VehicleType,
		PlateNumber: reminder.Vehicle.PlateNumber,
		ServiceType: reminder.ServiceType,
		CompanyName: reminder.Vehicle.Company.Name,
		ServiceDate: utils.FormatDate(reminder.ServiceDate),
	}
}
