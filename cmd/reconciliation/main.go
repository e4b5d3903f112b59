// cmd/reconciliation/main.go
package main

import (
	"log"

	"reconciliation-service/internal/api/handlers"
	"reconciliation-service/internal/api/responses"
	"reconciliation-service/internal/config"
	"reconciliation-service/internal/core/recon"

	"github.com/gin-gonic/gin"
)

func main() {
	responses.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid service configuration: ", err)
	}

	reconService := recon.NewService()
	reconHandler := handlers.NewReconciliationHandler(reconService, cfg)

	router := gin.Default()

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/reconcile/plan", reconHandler.HandlePlan)
		apiV1.POST("/reconcile/apply", reconHandler.HandleApply)
		apiV1.POST("/workbook/inspect", reconHandler.HandleInspect)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "reconciliation-service"})
	})

	log.Printf("🚀 Reconciliation Service (Go) listening on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start the reconciliation server: ", err)
	}
}
