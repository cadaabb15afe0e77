package main

import (
	"fmt"
	"log"
	"os"

	"fleetcare-backend/config"
	"fleetcare-backend/models"
	"fleetcare-backend/routes"
	"fleetcare-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.Company{},
		&models.Vehicle{},
		&models.ServiceReminder{},
		&models.WorkflowTemplate{},
		&models.WorkflowStep{},
		&models.SendLogEntry{},
	)
}

func main() {
	templateService := services.NewTemplateService(config.DB)
	lifecycleService := services.NewLifecycleService(config.DB)
	dispatchService := services.NewDispatchService(config.DB, map[models.Channel]services.Transport{
		models.ChannelEmail:    services.NewSMTPEmailTransport(),
		models.ChannelSMS:      services.NewTwilioSMSTransport(),
		models.ChannelInternal: &services.InternalNoticeTransport{},
	}, os.Getenv("INTERNAL_DEPARTMENT"))

	scanService := services.NewScanService(config.DB, templateService, dispatchService)
	scanSpec := os.Getenv("SCAN_CRON")
	if scanSpec == "" {
		scanSpec = "0 7 * * *"
	}
	if err := scanService.StartScheduler(scanSpec); err != nil {
		log.Fatalf("Failed to start reminder scan: %v", err)
	}
	defer scanService.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter(routes.Services{
		Templates: templateService,
		Lifecycle: lifecycleService,
		Dispatch:  dispatchService,
	})
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
