// controllers/vehicle.go
package controllers

import (
	"errors"
	"net/http"

	"fleetcare-backend/config"
	"fleetcare-backend/models"
	"fleetcare-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateVehicleInput defines the expected JSON structure
type CreateVehicleInput struct {
	CompanyID   string `json:"companyId" binding:"required"`
	PlateNumber string `json:"plateNumber" binding:"required"`
	VehicleType string `json:"vehicleType" binding:"required"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
}

// UpdateVehicleInput defines the expected JSON structure
type UpdateVehicleInput struct {
	PlateNumber *string `json:"plateNumber"`
	VehicleType *string `json:"vehicleType"`
	Model       *string `json:"model"`
	Year        *int    `json:"year"`
	IsActive    *bool   `json:"isActive"`
}

func CreateVehicle(c *gin.Context) {
	var input CreateVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	companyID, err := uuid.Parse(input.CompanyID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid company ID format")
		return
	}

	var company models.Company
	if err := config.DB.First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Company not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	vehicle := models.Vehicle{
		CompanyID:   companyID,
		PlateNumber: input.PlateNumber,
		VehicleType: input.VehicleType,
		ModelName:   input.Model,
		Year:        input.Year,
		IsActive:    true,
	}
	if err := config.DB.Create(&vehicle).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create vehicle")
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

func GetVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	query := config.DB.Preload("Company")
	if companyID := c.Query("companyId"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}
	if err := query.Find(&vehicles).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve vehicles")
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

func GetVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid vehicle ID format")
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Preload("Company").First(&vehicle, "id = ?", vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Vehicle not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func UpdateVehicle(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid vehicle ID format")
		return
	}

	var input UpdateVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, "id = ?", vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Vehicle not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.PlateNumber != nil {
		vehicle.PlateNumber = *input.PlateNumber
	}
	if input.VehicleType != nil {
		vehicle.VehicleType = *input.VehicleType
	}
	if input.Model != nil {
		vehicle.ModelName = *input.Model
	}
	if input.Year != nil {
		vehicle.Year = *input.Year
	}
	if input.IsActive != nil {
		vehicle.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&vehicle).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update vehicle")
		return
	}
	c.JSON(http.StatusOK, vehicle)
}
