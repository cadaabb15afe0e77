package routes

import (
	"fleetcare-backend/config"
	"fleetcare-backend/controllers"
	"fleetcare-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Templates *services.TemplateService
	Lifecycle *services.LifecycleService
	Dispatch  *services.DispatchService
}

func SetupRouter(svc Services) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	templateController := controllers.WorkflowTemplateController{Templates: svc.Templates}
	reminderController := controllers.ReminderController{
		Lifecycle: svc.Lifecycle,
		Templates: svc.Templates,
		Dispatch:  svc.Dispatch,
	}

	api := r.Group("/api")
	{
		// Workflow template routes
		templates := api.Group("/workflow-templates")
		{
			templates.POST("", templateController.Create)
			templates.GET("", templateController.List)
			templates.GET("/:id", templateController.Get)
			templates.PUT("/:id", templateController.Update)
			templates.POST("/:id/toggle", templateController.ToggleActive)
			templates.DELETE("/:id", templateController.Delete)
		}

		// Reminder routes
		reminders := api.Group("/reminders")
		{
			reminders.POST("", reminderController.Create)
			reminders.GET("", reminderController.List)
			reminders.POST("/import", reminderController.Import)
			reminders.GET("/:id", reminderController.Get)
			reminders.POST("/:id/transition", reminderController.Transition)
			reminders.POST("/:id/send", reminderController.Send)
			reminders.GET("/:id/logs", reminderController.Logs)
			reminders.GET("/:id/due-steps", reminderController.DueSteps)
		}

		// Vehicle routes
		vehicles := api.Group("/vehicles")
		{
			vehicles.POST("", controllers.CreateVehicle)
			vehicles.GET("", controllers.GetVehicles)
			vehicles.GET("/:id", controllers.GetVehicle)
			vehicles.PUT("/:id", controllers.UpdateVehicle)
		}

		// Company routes
		companies := api.Group("/companies")
		{
			companies.POST("", controllers.CreateCompany)
			companies.GET("", controllers.GetCompanies)
			companies.GET("/:id", controllers.GetCompany)
			companies.PUT("/:id", controllers.UpdateCompany)
		}
	}

	return r
}
