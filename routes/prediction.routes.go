package routes

import (
	"ecoscope/internal/controllers"
	"ecoscope/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterPredictionRoutes(router *gin.Engine, predictionController *controllers.PredictionController) {
	predictionRoutes := router.Group("/prediction")
	predictionRoutes.GET("/health", predictionController.HealthCheck)
	predictionRoutes.Use(middleware.AuthMiddleware())
	{
		predictionRoutes.POST("/", predictionController.MakePrediction)

		predictionRoutes.GET("/:id", predictionController.GetPredictionByID)
		predictionRoutes.GET("/subject/:subject_id", predictionController.GetPredictionsBySubject)
	}
}
