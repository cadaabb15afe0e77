package services

import (
	"context"
	"testing"
	"time"

	"fleetcare-backend/models"

	"gorm.io/gorm"
)

func newScanFixture(t *testing.T) (*gorm.DB, *ScanService, *TemplateService, *fakeTransport, *fakeTransport) {
	t.Helper()
	db := newTestDB(t)
	transports, email, sms, _ := fakeTransports()
	templates := NewTemplateService(db)
	dispatch := NewDispatchService(db, transports, "")
	scan := NewScanService(db, templates, dispatch)
	return db, scan, templates, email, sms
}

func seedInspectionWorkflow(t *testing.T, templates *TemplateService) models.WorkflowTemplate {
	t.Helper()
	template := models.WorkflowTemplate{
		Name:         "Inspection notices",
		ServiceTypes: models.ServiceTypeList{models.ServiceTypeInspection},
		Active:       true,
		Steps: []models.WorkflowStep{
			{DaysBefore: 14, Channel: models.ChannelEmail, Message: "Inspection for {{plate-number}} on {{service-date}}", Automatic: true},
			{DaysBefore: 3, Channel: models.ChannelSMS, Message: "{{plate-number}}: inspection on {{service-date}}", Automatic: true},
		},
	}
	if err := templates.Create(&template); err != nil {
		t.Fatalf("template create failed: %v", err)
	}
	return template
}

func TestScanFiresDueStepsOnce(t *testing.T) {
	db, scan, templates, email, sms := newScanFixture(t)
	seedInspectionWorkflow(t, templates)
	vehicle := seedFleet(t, db, fleetOptions{contactEmail: "jona@example.is", contactPhone: "+3545551234"})
	reminder := seedReminder(t, db, vehicle, models.ServiceTypeInspection, date(2025, time.June, 30))

	scan.now = func() time.Time { return date(2025, time.June, 20) } // 10 days out
	summary := scan.RunScan(context.Background())
	if summary.Processed != 1 || summary.Dispatched != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if email.count() != 1 || sms.count() != 0 {
		t.Fatalf("only the 14-day email step is due, email=%d sms=%d", email.count(), sms.count())
	}

	// Re-running the same day must not fire the step again.
	summary = scan.RunScan(context.Background())
	if summary.Dispatched != 0 {
		t.Fatalf("second scan must dispatch nothing, got %d", summary.Dispatched)
	}
	if email.count() != 1 {
		t.Fatalf("step fired twice, email sends=%d", email.count())
	}

	var count int64
	db.Model(&models.SendLogEntry{}).Where("reminder_id = ?", reminder.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one log entry after two scans, got %d", count)
	}

	var updated models.ServiceReminder
	db.First(&updated, "id = ?", reminder.ID)
	if updated.Status != models.StatusReminderSent {
		t.Fatalf("status must be reminder_sent, got %s", updated.Status)
	}

	// At 2 days out the SMS step joins in.
	scan.now = func() time.Time { return date(2025, time.June, 28) }
	summary = scan.RunScan(context.Background())
	if summary.Dispatched != 1 {
		t.Fatalf("expected the SMS step to fire, got %d dispatched", summary.Dispatched)
	}
	if sms.count() != 1 || email.count() != 1 {
		t.Fatalf("unexpected sends, email=%d sms=%d", email.count(), sms.count())
	}
}

func TestScanDoesNotRefireAfterTemplateEdit(t *testing.T) {
	db, scan, templates, email, _ := newScanFixture(t)
	template := seedInspectionWorkflow(t, templates)
	vehicle := seedFleet(t, db, fleetOptions{contactEmail: "jona@example.is", contactPhone: "+3545551234"})
	reminder := seedReminder(t, db, vehicle, models.ServiceTypeInspection, date(2025, time.June, 30))

	scan.now = func() time.Time { return date(2025, time.June, 20) }
	if summary := scan.RunScan(context.Background()); summary.Dispatched != 1 {
		t.Fatalf("expected the email step to fire, got %+v", summary)
	}

	// An edit that keeps the schedule must not reset fired-step tracking.
	edited := models.WorkflowTemplate{
		ID:           template.ID,
		Name:         template.Name,
		Description:  "Reworded after the first send",
		ServiceTypes: template.ServiceTypes,
		Active:       true,
		Steps: []models.WorkflowStep{
			{DaysBefore: 14, Channel: models.ChannelEmail, Message: "Inspection for {{plate-number}} on {{service-date}}", Automatic: true},
			{DaysBefore: 3, Channel: models.ChannelSMS, Message: "{{plate-number}}: inspection on {{service-date}}", Automatic: true},
		},
	}
	if err := templates.Update(&edited); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	summary := scan.RunScan(context.Background())
	if summary.Dispatched != 0 {
		t.Fatalf("rescan after the edit must dispatch nothing, got %d", summary.Dispatched)
	}
	if email.count() != 1 {
		t.Fatalf("already-sent step fired again after the edit, sends=%d", email.count())
	}
	var count int64
	db.Model(&models.SendLogEntry{}).Where("reminder_id = ?", reminder.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one log entry after the edit, got %d", count)
	}
}

func TestScanSkipsDoneReminders(t *testing.T) {
	db, scan, templates, email, _ := newScanFixture(t)
	seedInspectionWorkflow(t, templates)
	vehicle := seedFleet(t, db, fleetOptions{contactEmail: "jona@example.is"})
	reminder := seedReminder(t, db, vehicle, models.ServiceTypeInspection, date(2025, time.June, 30))
	if err := db.Model(&models.ServiceReminder{}).Where("id = ?", reminder.ID).
		Update("status", models.StatusDone).Error; err != nil {
		t.Fatalf("failed to mark done: %v", err)
	}

	scan.now = func() time.Time { return date(2025, time.June, 29) }
	summary := scan.RunScan(context.Background())
	if summary.Processed != 0 || summary.Dispatched != 0 {
		t.Fatalf("done reminders must not be scanned, got %+v", summary)
	}
	if email.count() != 0 {
		t.Fatal("done reminder must not dispatch")
	}
}

func TestScanStopsMatchingToggledTemplate(t *testing.T) {
	db, scan, templates, email, _ := newScanFixture(t)
	template := seedInspectionWorkflow(t, templates)
	vehicle := seedFleet(t, db, fleetOptions{contactEmail: "jona@example.is"})
	reminder := seedReminder(t, db, vehicle, models.ServiceTypeInspection, date(2025, time.June, 30))

	scan.now = func() time.Time { return date(2025, time.June, 20) }
	scan.RunScan(context.Background())
	if email.count() != 1 {
		t.Fatalf("expected the first scan to dispatch, sends=%d", email.count())
	}

	if _, err := templates.ToggleActive(template.ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	scan.now = func() time.Time { return date(2025, time.June, 28) }
	summary := scan.RunScan(context.Background())
	if summary.Dispatched != 0 {
		t.Fatalf("inactive template must stop dispatching, got %d", summary.Dispatched)
	}

	// The earlier log entry is untouched.
	var count int64
	db.Model(&models.SendLogEntry{}).Where("reminder_id = ?", reminder.ID).Count(&count)
	if count != 1 {
		t.Fatalf("toggling must not rewrite history, got %d entries", count)
	}
}

func TestScanIsolatesPerReminderFailures(t *testing.T) {
	db, scan, templates, email, _ := newScanFixture(t)
	seedInspectionWorkflow(t, templates)

	healthy := seedFleet(t, db, fleetOptions{plate: "AB123", contactEmail: "jona@example.is"})
	broken := seedFleet(t, db, fleetOptions{plate: "XY987"}) // no contact email
	seedReminder(t, db, healthy, models.ServiceTypeInspection, date(2025, time.June, 30))
	seedReminder(t, db, broken, models.ServiceTypeInspection, date(2025, time.June, 30))

	scan.now = func() time.Time { return date(2025, time.June, 20) }
	summary := scan.RunScan(context.Background())
	if summary.Processed != 2 {
		t.Fatalf("both reminders must be processed, got %d", summary.Processed)
	}
	if summary.Dispatched != 1 || summary.Failed != 1 {
		t.Fatalf("one dispatch and one failure expected, got %+v", summary)
	}
	if email.count() != 1 {
		t.Fatalf("the healthy reminder must still dispatch, sends=%d", email.count())
	}
}

func TestScanOverdueReminderFiresAllRemainingSteps(t *testing.T) {
	db, scan, templates, email, sms := newScanFixture(t)
	seedInspectionWorkflow(t, templates)
	vehicle := seedFleet(t, db, fleetOptions{contactEmail: "jona@example.is", contactPhone: "+3545551234"})
	seedReminder(t, db, vehicle, models.ServiceTypeInspection, date(2025, time.June, 30))

	// Service date has passed; both steps fire on the next cycle.
	scan.now = func() time.Time { return date(2025, time.July, 2) }
	summary := scan.RunScan(context.Background())
	if summary.Dispatched != 2 {
		t.Fatalf("all remaining steps must fire immediately, got %d", summary.Dispatched)
	}
	if email.count() != 1 || sms.count() != 1 {
		t.Fatalf("unexpected sends, email=%d sms=%d", email.count(), sms.count())
	}
}
