package services

import (
	"context"
	"log"
	"time"

	"fleetcare-backend/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ScanService runs the periodic evaluation cycle: load every open reminder,
// evaluate due steps against the active templates, dispatch each unfired due
// step. The scan is stateless; a missed run costs nothing because the next
// one recomputes due-ness from current dates.
type ScanService struct {
	db        *gorm.DB
	templates *TemplateService
	dispatch  *DispatchService
	cron      *cron.Cron

	// now is injected for tests.
	now func() time.Time
}

func NewScanService(db *gorm.DB, templates *TemplateService, dispatch *DispatchService) *ScanService {
	return &ScanService{
		db:        db,
		templates: templates,
		dispatch:  dispatch,
		now:       time.Now,
	}
}

// StartScheduler runs the scan on the given cron spec, e.g. "0 7 * * *".
func (s *ScanService) StartScheduler(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.RunScan(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	log.Printf("Reminder scan scheduled (%s)", spec)
	return nil
}

func (s *ScanService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

type ScanSummary struct {
	Processed  int
	Dispatched int
	Failed     int
}

// RunScan processes every non-terminal reminder independently: one
// reminder's failure is logged and does not abort the cycle.
func (s *ScanService) RunScan(ctx context.Context) ScanSummary {
	log.Println("Starting reminder scan...")
	today := s.now()

	var reminders []models.ServiceReminder
	if err := s.db.Preload("Vehicle.Company").
		Where("status <> ?", models.StatusDone).
		Find(&reminders).Error; err != nil {
		log.Printf("Scan: failed to load reminders: %v", err)
		return ScanSummary{}
	}

	var summary ScanSummary
	for _, reminder := range reminders {
		summary.Processed++
		dispatched, err := s.processReminder(ctx, today, reminder)
		summary.Dispatched += dispatched
		if err != nil {
			summary.Failed++
			log.Printf("Scan: reminder %s: %v", reminder.ID, err)
		}
	}

	log.Printf("Reminder scan completed: %d processed, %d dispatched, %d failed",
		summary.Processed, summary.Dispatched, summary.Failed)
	return summary
}

func (s *ScanService) processReminder(ctx context.Context, today time.Time, reminder models.ServiceReminder) (int, error) {
	templates, err := s.templates.FindByServiceType(reminder.ServiceType)
	if err != nil {
		return 0, err
	}
	if len(templates) == 0 {
		return 0, nil
	}

	fired, err := s.dispatch.FiredStepIDs(reminder.ID)
	if err != nil {
		return 0, err
	}

	evaluations := EvaluateDueSteps(reminder, templates, fired, today)

	dispatched := 0
	var firstErr error
	for _, step := range DueSteps(evaluations) {
		stepID := step.ID
		_, err := s.dispatch.Dispatch(ctx, DispatchInput{
			ReminderID: reminder.ID,
			Channel:    step.Channel,
			Message:    Render(step.Message, ContextFor(reminder)),
			StepID:     &stepID,
			Automatic:  true,
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		dispatched++
	}
	return dispatched, firstErr
}
