// controllers/reminder.go
package controllers

import (
	"net/http"
	"time"

	"fleetcare-backend/models"
	"fleetcare-backend/services"
	"fleetcare-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReminderController struct {
	Lifecycle *services.LifecycleService
	Templates *services.TemplateService
	Dispatch  *services.DispatchService
}

// CreateReminderInput defines the expected JSON structure
type CreateReminderInput struct {
	VehicleID    string     `json:"vehicleId" binding:"required"`
	ServiceType  string     `json:"serviceType" binding:"required"`
	ServiceDate  time.Time  `json:"serviceDate" binding:"required"`
	ReminderDate *time.Time `json:"reminderDate"`
}

func (ctl *ReminderController) Create(c *gin.Context) {
	var input CreateReminderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	vehicleID, err := uuid.Parse(input.VehicleID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid vehicle ID format")
		return
	}

	reminder, err := ctl.Lifecycle.CreateReminder(services.CreateReminderInput{
		VehicleID:    vehicleID,
		ServiceType:  input.ServiceType,
		ServiceDate:  input.ServiceDate,
		ReminderDate: input.ReminderDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

func (ctl *ReminderController) List(c *gin.Context) {
	filter := services.ReminderFilter{
		Status:      models.ReminderStatus(c.Query("status")),
		ServiceType: c.Query("serviceType"),
		OpenOnly:    c.Query("open") == "true",
	}
	if vehicleID := c.Query("vehicleId"); vehicleID != "" {
		parsed, err := uuid.Parse(vehicleID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid vehicle ID format")
			return
		}
		filter.VehicleID = parsed
	}

	reminders, err := ctl.Lifecycle.ListReminders(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminders)
}

func (ctl *ReminderController) Get(c *gin.Context) {
	reminderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reminder ID format")
		return
	}

	reminder, err := ctl.Lifecycle.Get(reminderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// ImportInput wraps a batch of external service-history records
type ImportInput struct {
	Records []services.HistoryRecord `json:"records" binding:"required,min=1"`
}

func (ctl *ReminderController) Import(c *gin.Context) {
	var input ImportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	created, failures := ctl.Lifecycle.ImportFromHistory(input.Records)
	messages := make([]string, 0, len(failures))
	for _, failure := range failures {
		messages = append(messages, failure.Error())
	}
	c.JSON(http.StatusOK, gin.H{"created": created, "failures": messages})
}

// TransitionInput defines the expected JSON structure
type TransitionInput struct {
	Status string `json:"status" binding:"required,oneof=scheduled reminder_sent done delayed"`
}

func (ctl *ReminderController) Transition(c *gin.Context) {
	reminderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reminder ID format")
		return
	}

	var input TransitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reminder, err := ctl.Lifecycle.Transition(reminderID, models.ReminderStatus(input.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// SendInput defines the expected JSON structure for a manual "send now"
type SendInput struct {
	Channel   string `json:"channel" binding:"required,oneof=email sms internal"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	StepID    string `json:"stepId"`
}

func (ctl *ReminderController) Send(c *gin.Context) {
	reminderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reminder ID format")
		return
	}

	var input SendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	dispatchInput := services.DispatchInput{
		ReminderID: reminderID,
		Channel:    models.Channel(input.Channel),
		Recipient:  input.Recipient,
		Message:    input.Message,
		Automatic:  false,
	}
	if input.StepID != "" {
		stepID, err := uuid.Parse(input.StepID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid step ID format")
			return
		}
		dispatchInput.StepID = &stepID
	}

	entry, err := ctl.Dispatch.Dispatch(c.Request.Context(), dispatchInput)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (ctl *ReminderController) Logs(c *gin.Context) {
	reminderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reminder ID format")
		return
	}

	entries, err := ctl.Lifecycle.LogsFor(reminderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// DueSteps previews the evaluation for one reminder as of today.
func (ctl *ReminderController) DueSteps(c *gin.Context) {
	reminderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reminder ID format")
		return
	}

	reminder, err := ctl.Lifecycle.Get(reminderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	templates, err := ctl.Templates.FindByServiceType(reminder.ServiceType)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	fired, err := ctl.Dispatch.FiredStepIDs(reminderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	evaluations := services.EvaluateDueSteps(*reminder, templates, fired, time.Now())
	c.JSON(http.StatusOK, evaluations)
}
