// controllers/workflow_template.go
package controllers

import (
	"net/http"

	"fleetcare-backend/models"
	"fleetcare-backend/services"
	"fleetcare-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WorkflowTemplateController struct {
	Templates *services.TemplateService
}

// WorkflowStepInput defines the expected JSON structure for one step
type WorkflowStepInput struct {
	DaysBefore int    `json:"daysBefore" binding:"required,gt=0"`
	Channel    string `json:"channel" binding:"required,oneof=email sms internal"`
	Message    string `json:"message" binding:"required"`
	Automatic  *bool  `json:"automatic"`
}

// WorkflowTemplateInput defines the expected JSON structure for create/update
type WorkflowTemplateInput struct {
	Name         string              `json:"name" binding:"required"`
	Description  string              `json:"description"`
	ServiceTypes []string            `json:"serviceTypes" binding:"required,min=1"`
	Steps        []WorkflowStepInput `json:"steps" binding:"required,min=1,dive"`
}

func (in WorkflowTemplateInput) toModel() models.WorkflowTemplate {
	template := models.WorkflowTemplate{
		Name:         in.Name,
		Description:  in.Description,
		ServiceTypes: in.ServiceTypes,
		Active:       true,
	}
	for _, step := range in.Steps {
		automatic := true
		if step.Automatic != nil {
			automatic = *step.Automatic
		}
		template.Steps = append(template.Steps, models.WorkflowStep{
			DaysBefore: step.DaysBefore,
			Channel:    models.Channel(step.Channel),
			Message:    step.Message,
			Automatic:  automatic,
		})
	}
	return template
}

func (ctl *WorkflowTemplateController) Create(c *gin.Context) {
	var input WorkflowTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	template := input.toModel()
	if err := ctl.Templates.Create(&template); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, template)
}

func (ctl *WorkflowTemplateController) List(c *gin.Context) {
	templates, err := ctl.Templates.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (ctl *WorkflowTemplateController) Get(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	template, err := ctl.Templates.Get(templateID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (ctl *WorkflowTemplateController) Update(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	var input WorkflowTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	existing, err := ctl.Templates.Get(templateID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	template := input.toModel()
	template.ID = templateID
	template.Active = existing.Active

	if err := ctl.Templates.Update(&template); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (ctl *WorkflowTemplateController) ToggleActive(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	template, err := ctl.Templates.ToggleActive(templateID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (ctl *WorkflowTemplateController) Delete(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	if err := ctl.Templates.Delete(templateID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}
