package services

import (
	"sort"
	"time"

	"fleetcare-backend/models"
	"fleetcare-backend/utils"

	"github.com/google/uuid"
)

type StepState string

const (
	StepUpcoming StepState = "upcoming"
	StepDue      StepState = "due"
	StepSent     StepState = "sent"
)

type StepEvaluation struct {
	Step    models.WorkflowStep `json:"step"`
	State   StepState           `json:"state"`
	Overdue bool                `json:"overdue"`
}

type TemplateEvaluation struct {
	Template models.WorkflowTemplate `json:"template"`
	Steps    []StepEvaluation        `json:"steps"`
}

// EvaluateDueSteps computes the due state of every step of every active
// template matching the reminder's service type. It is pure: no side
// effects, and identical inputs always produce identical output. The fired
// set holds step ids already recorded in the send log for this reminder.
//
// A step is due when the service date is at most DaysBefore days away, the
// step has not fired yet, and the reminder is not done. The overdue flag is
// reminder-level: the service date has passed while the reminder is still
// open. Overdue governs urgency display, not dispatch eligibility.
func EvaluateDueSteps(reminder models.ServiceReminder, templates []models.WorkflowTemplate, fired map[uuid.UUID]bool, today time.Time) []TemplateEvaluation {
	daysUntilService := utils.DaysBetween(today, reminder.ServiceDate)
	overdue := daysUntilService < 0 && reminder.Status != models.StatusDone

	evaluations := make([]TemplateEvaluation, 0)
	for _, template := range templates {
		if !template.Active || !template.ServiceTypes.Contains(reminder.ServiceType) {
			continue
		}

		steps := make([]models.WorkflowStep, len(template.Steps))
		copy(steps, template.Steps)
		sort.SliceStable(steps, func(i, j int) bool {
			return steps[i].DaysBefore > steps[j].DaysBefore
		})

		evaluation := TemplateEvaluation{Template: template}
		for _, step := range steps {
			state := StepUpcoming
			switch {
			case fired[step.ID]:
				state = StepSent
			case daysUntilService <= step.DaysBefore && reminder.Status != models.StatusDone:
				state = StepDue
			}
			evaluation.Steps = append(evaluation.Steps, StepEvaluation{
				Step:    step,
				State:   state,
				Overdue: overdue,
			})
		}
		evaluations = append(evaluations, evaluation)
	}
	return evaluations
}

// DueSteps flattens an evaluation down to the steps eligible for dispatch.
func DueSteps(evaluations []TemplateEvaluation) []models.WorkflowStep {
	var due []models.WorkflowStep
	for _, evaluation := range evaluations {
		for _, step := range evaluation.Steps {
			if step.State == StepDue {
				due = append(due, step.Step)
			}
		}
	}
	return due
}
