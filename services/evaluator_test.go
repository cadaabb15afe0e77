package services

import (
	"reflect"
	"testing"
	"time"

	"fleetcare-backend/models"

	"github.com/google/uuid"
)

func inspectionTemplate(steps ...models.WorkflowStep) models.WorkflowTemplate {
	return models.WorkflowTemplate{
		ID:           uuid.New(),
		Name:         "Inspection notices",
		ServiceTypes: models.ServiceTypeList{models.ServiceTypeInspection},
		Active:       true,
		Steps:        steps,
	}
}

func step(daysBefore int, channel models.Channel) models.WorkflowStep {
	return models.WorkflowStep{
		ID:         uuid.New(),
		DaysBefore: daysBefore,
		Channel:    channel,
		Message:    "Service on {{service-date}}",
		Automatic:  true,
	}
}

func inspectionReminder(serviceDate time.Time, status models.ReminderStatus) models.ServiceReminder {
	return models.ServiceReminder{
		ID:           uuid.New(),
		ServiceType:  models.ServiceTypeInspection,
		ReminderDate: serviceDate.AddDate(0, 0, -14),
		ServiceDate:  serviceDate,
		Status:       status,
	}
}

func TestEvaluateStepBecomesDueAtOffset(t *testing.T) {
	reminder := inspectionReminder(date(2025, time.June, 30), models.StatusScheduled)
	templates := []models.WorkflowTemplate{inspectionTemplate(step(14, models.ChannelEmail))}

	evals := EvaluateDueSteps(reminder, templates, nil, date(2025, time.June, 10))
	if len(evals) != 1 || len(evals[0].Steps) != 1 {
		t.Fatalf("expected one evaluated step, got %+v", evals)
	}
	if evals[0].Steps[0].State != StepUpcoming {
		t.Fatalf("20 days out the step must be upcoming, got %s", evals[0].Steps[0].State)
	}

	evals = EvaluateDueSteps(reminder, templates, nil, date(2025, time.June, 16))
	if evals[0].Steps[0].State != StepDue {
		t.Fatalf("14 days out the step must be due, got %s", evals[0].Steps[0].State)
	}
}

func TestEvaluateNoMatchingTemplate(t *testing.T) {
	reminder := inspectionReminder(date(2025, time.June, 30), models.StatusScheduled)
	tireTemplate := inspectionTemplate(step(7, models.ChannelEmail))
	tireTemplate.ServiceTypes = models.ServiceTypeList{models.ServiceTypeTireChange}

	evals := EvaluateDueSteps(reminder, []models.WorkflowTemplate{tireTemplate}, nil, date(2025, time.June, 29))
	if len(evals) != 0 {
		t.Fatalf("non-matching template must yield no evaluations, got %+v", evals)
	}
}

func TestEvaluateSkipsInactiveTemplate(t *testing.T) {
	reminder := inspectionReminder(date(2025, time.June, 30), models.StatusScheduled)
	template := inspectionTemplate(step(7, models.ChannelEmail))
	template.Active = false

	evals := EvaluateDueSteps(reminder, []models.WorkflowTemplate{template}, nil, date(2025, time.June, 29))
	if len(evals) != 0 {
		t.Fatalf("inactive template must yield no evaluations, got %+v", evals)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	reminder := inspectionReminder(date(2025, time.June, 30), models.StatusScheduled)
	templates := []models.WorkflowTemplate{inspectionTemplate(
		step(14, models.ChannelEmail),
		step(3, models.ChannelSMS),
	)}
	fired := map[uuid.UUID]bool{templates[0].Steps[0].ID: true}
	today := date(2025, time.June, 20)

	first := EvaluateDueSteps(reminder, templates, fired, today)
	second := EvaluateDueSteps(reminder, templates, fired, today)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must produce identical output\nfirst: %+v\nsecond: %+v", first, second)
	}
}

func TestEvaluateDueNessIsMonotonic(t *testing.T) {
	reminder := inspectionReminder(date(2025, time.June, 30), models.StatusScheduled)
	templates := []models.WorkflowTemplate{inspectionTemplate(step(14, models.ChannelEmail))}

	wasDue := false
	for today := date(2025, time.June, 1); !today.After(date(2025, time.June, 30)); today = today.AddDate(0, 0, 1) {
		evals := EvaluateDueSteps(reminder, templates, nil, today)
		due := evals[0].Steps[0].State == StepDue
		if wasDue && !due {
			t.Fatalf("step regressed from due to not due at %s", today)
		}
		if due {
			wasDue = true
		}
	}
	if !wasDue {
		t.Fatal("step never became due before the service date")
	}
}

func TestEvaluateFiredStepIsSent(t *testing.T) {
	reminder := inspectionReminder(date(2025, time.June, 30), models.StatusScheduled)
	emailStep := step(14, models.ChannelEmail)
	smsStep := step(3, models.ChannelSMS)
	templates := []models.WorkflowTemplate{inspectionTemplate(emailStep, smsStep)}
	fired := map[uuid.UUID]bool{emailStep.ID: true}

	evals := EvaluateDueSteps(reminder, templates, fired, date(2025, time.June, 28))
	if evals[0].Steps[0].State != StepSent {
		t.Fatalf("fired step must report sent, got %s", evals[0].Steps[0].State)
	}
	if evals[0].Steps[1].State != StepDue {
		t.Fatalf("unfired step inside its window must be due, got %s", evals[0].Steps[1].State)
	}
}

func TestEvaluateDoneReminderHasNoDueSteps(t *testing.T) {
	reminder := inspectionReminder(date(2025, time.June, 30), models.StatusDone)
	templates := []models.WorkflowTemplate{inspectionTemplate(step(14, models.ChannelEmail))}

	evals := EvaluateDueSteps(reminder, templates, nil, date(2025, time.June, 29))
	if due := DueSteps(evals); len(due) != 0 {
		t.Fatalf("done reminder must have no due steps, got %d", len(due))
	}
}

func TestEvaluateOverdueReminder(t *testing.T) {
	reminder := inspectionReminder(date(2025, time.June, 30), models.StatusScheduled)
	templates := []models.WorkflowTemplate{inspectionTemplate(step(14, models.ChannelEmail))}

	evals := EvaluateDueSteps(reminder, templates, nil, date(2025, time.July, 2))
	eval := evals[0].Steps[0]
	if !eval.Overdue {
		t.Fatal("reminder past its service date must be flagged overdue")
	}
	if eval.State != StepDue {
		t.Fatalf("unfired step must remain dispatch-eligible past the service date, got %s", eval.State)
	}
}

func TestEvaluateOrdersStepsFurthestFirst(t *testing.T) {
	reminder := inspectionReminder(date(2025, time.June, 30), models.StatusScheduled)
	near := step(3, models.ChannelSMS)
	far := step(21, models.ChannelEmail)
	mid := step(7, models.ChannelInternal)
	templates := []models.WorkflowTemplate{inspectionTemplate(near, far, mid)}

	evals := EvaluateDueSteps(reminder, templates, nil, date(2025, time.June, 1))
	got := []int{evals[0].Steps[0].Step.DaysBefore, evals[0].Steps[1].Step.DaysBefore, evals[0].Steps[2].Step.DaysBefore}
	want := []int{21, 7, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("steps must be ordered by descending daysBefore, got %v", got)
	}
}
