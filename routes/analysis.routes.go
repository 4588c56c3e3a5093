package routes

import (
	"ecoscope/internal/controllers"
	"ecoscope/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterAnalysisRoutes(router *gin.Engine, analysisController *controllers.AnalysisController) {
	analysisRoutes := router.Group("/analysis")
	analysisRoutes.Use(middleware.AuthMiddleware())
	{
		analysisRoutes.POST("/", analysisController.RequestAnalysis)
		analysisRoutes.GET("/statistics", analysisController.GetStatistics)
		analysisRoutes.GET("/:subject_id", analysisController.GetAnalysis)
	}
}
