package services

import (
	"errors"
	"fmt"

	"fleetcare-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateService owns WorkflowTemplate CRUD. It is a plain data container:
// activation and deletion only change what future evaluations match, they
// never touch already-written log entries.
type TemplateService struct {
	db *gorm.DB
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db}
}

func validateTemplate(t *models.WorkflowTemplate) error {
	if t.Name == "" {
		return fmt.Errorf("%w: template name is required", ErrValidation)
	}
	if len(t.ServiceTypes) == 0 {
		return fmt.Errorf("%w: at least one service type is required", ErrValidation)
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("%w: at least one step is required", ErrValidation)
	}
	for _, step := range t.Steps {
		if step.DaysBefore <= 0 {
			return fmt.Errorf("%w: step daysBefore must be positive", ErrValidation)
		}
		switch step.Channel {
		case models.ChannelEmail, models.ChannelSMS, models.ChannelInternal:
		default:
			return fmt.Errorf("%w: unknown channel %q", ErrValidation, step.Channel)
		}
		if step.Message == "" {
			return fmt.Errorf("%w: step message is required", ErrValidation)
		}
	}
	return nil
}

func (s *TemplateService) Create(t *models.WorkflowTemplate) error {
	if err := validateTemplate(t); err != nil {
		return err
	}
	return s.db.Create(t).Error
}

// Update rewrites the template row and reconciles its step list. Steps that
// survive the edit keep their ids: the send log records fired steps by id,
// so id churn would make every already-sent step look unfired and the next
// scan would dispatch it again. An incoming step is matched to an existing
// row on (channel, daysBefore); unmatched existing rows are removed and
// unmatched incoming steps are created fresh.
func (s *TemplateService) Update(t *models.WorkflowTemplate) error {
	if err := validateTemplate(t); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.WorkflowTemplate
		if err := tx.First(&existing, "id = ?", t.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: template %s", ErrNotFound, t.ID)
			}
			return err
		}
		if err := tx.Model(&models.WorkflowTemplate{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"name":          t.Name,
			"description":   t.Description,
			"service_types": t.ServiceTypes,
			"active":        t.Active,
		}).Error; err != nil {
			return err
		}

		var currentSteps []models.WorkflowStep
		if err := tx.Where("template_id = ?", t.ID).Find(&currentSteps).Error; err != nil {
			return err
		}

		claimed := make(map[uuid.UUID]bool, len(currentSteps))
		for i := range t.Steps {
			step := &t.Steps[i]
			step.ID = uuid.Nil
			step.TemplateID = t.ID
			for _, current := range currentSteps {
				if claimed[current.ID] {
					continue
				}
				if current.Channel == step.Channel && current.DaysBefore == step.DaysBefore {
					step.ID = current.ID
					claimed[current.ID] = true
					break
				}
			}
		}

		for _, current := range currentSteps {
			if claimed[current.ID] {
				continue
			}
			if err := tx.Where("id = ?", current.ID).Delete(&models.WorkflowStep{}).Error; err != nil {
				return err
			}
		}

		for i := range t.Steps {
			step := &t.Steps[i]
			if claimed[step.ID] {
				err := tx.Model(&models.WorkflowStep{}).Where("id = ?", step.ID).Updates(map[string]interface{}{
					"message":   step.Message,
					"automatic": step.Automatic,
				}).Error
				if err != nil {
					return err
				}
				continue
			}
			if err := tx.Create(step).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *TemplateService) ToggleActive(id uuid.UUID) (*models.WorkflowTemplate, error) {
	var template models.WorkflowTemplate
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Steps").First(&template, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: template %s", ErrNotFound, id)
			}
			return err
		}
		template.Active = !template.Active
		return tx.Model(&models.WorkflowTemplate{}).Where("id = ?", id).
			Update("active", template.Active).Error
	})
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (s *TemplateService) Delete(id uuid.UUID) error {
	result := s.db.Where("id = ?", id).Delete(&models.WorkflowTemplate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: template %s", ErrNotFound, id)
	}
	return s.db.Where("template_id = ?", id).Delete(&models.WorkflowStep{}).Error
}

func (s *TemplateService) Get(id uuid.UUID) (*models.WorkflowTemplate, error) {
	var template models.WorkflowTemplate
	if err := s.db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("days_before DESC")
	}).First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: template %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &template, nil
}

func (s *TemplateService) List() ([]models.WorkflowTemplate, error) {
	var templates []models.WorkflowTemplate
	err := s.db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("days_before DESC")
	}).Order("name").Find(&templates).Error
	return templates, err
}

func (s *TemplateService) ListActive() ([]models.WorkflowTemplate, error) {
	var templates []models.WorkflowTemplate
	err := s.db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("days_before DESC")
	}).Where("active = ?", true).Find(&templates).Error
	return templates, err
}

// FindByServiceType returns the active templates covering the given service
// type. ServiceTypes is a JSON column, so the final match runs in Go; the
// active-template set is small and operator-curated.
func (s *TemplateService) FindByServiceType(serviceType string) ([]models.WorkflowTemplate, error) {
	active, err := s.ListActive()
	if err != nil {
		return nil, err
	}
	matched := make([]models.WorkflowTemplate, 0)
	for _, template := range active {
		if template.ServiceTypes.Contains(serviceType) {
			matched = append(matched, template)
		}
	}
	return matched, nil
}
