package controllers

import (
	"errors"
	"net/http"

	"fleetcare-backend/services"
	"fleetcare-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondServiceError maps engine error kinds onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, services.ErrRecipientMissing):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrDispatchTransport):
		status = http.StatusBadGateway
	}
	utils.RespondWithError(c, status, err.Error())
}
