// controllers/company.go
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

// CreateCompanyInput defines the expected JSON structure
type CreateCompanyInput struct {
	Name         string `json:"name" binding:"required"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone string `json:"contactPhone"`
}

// UpdateCompanyInput defines the expected JSON structure
type UpdateCompanyInput struct {
	Name         *string `json:"name"`
	ContactName  *string `json:"contactName"`
	ContactEmail *string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone *string `json:"contactPhone"`
	IsActive     *bool   `json:"isActive"`
}

func CreateCompany(c *gin.Context) {
	var input CreateCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.ContactPhone != "" && !utils.ValidatePhone(input.ContactPhone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid contact phone number")
		return
	}

	company := models.Company{
		Name:         input.Name,
		ContactName:  input.ContactName,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
		IsActive:     true,
	}
	if err := config.DB.Create(&company).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create company")
		return
	}
	c.JSON(http.StatusCreated, company)
}

func GetCompanies(c *gin.Context) {
	var companies []models.Company
	if err := config.DB.Find(&companies).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve companies")
		return
	}
	c.JSON(http.StatusOK, companies)
}

func GetCompany(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid company ID format")
		return
	}

	var company models.Company
	if err := config.DB.Preload("Vehicles").First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Company not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	c.JSON(http.StatusOK, company)
}

func UpdateCompany(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid company ID format")
		return
	}

	var input UpdateCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
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

	if input.Name != nil {
		company.Name = *input.Name
	}
	if input.ContactName != nil {
		company.ContactName = *input.ContactName
	}
	if input.ContactEmail != nil {
		company.ContactEmail = *input.ContactEmail
	}
	if input.ContactPhone != nil {
		if *input.ContactPhone != "" && !utils.ValidatePhone(*input.ContactPhone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid contact phone number")
			return
		}
		company.ContactPhone = *input.ContactPhone
	}
	if input.IsActive != nil {
		company.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&company).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update company")
		return
	}
	c.JSON(http.StatusOK, company)
}
