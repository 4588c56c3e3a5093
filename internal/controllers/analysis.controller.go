package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ecoscope/internal/models"
	"ecoscope/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AnalysisController struct {
	worker *services.AnalysisWorker
}

func NewAnalysisController(worker *services.AnalysisWorker) *AnalysisController {
	return &AnalysisController{worker: worker}
}

// RequestAnalysis godoc
// @Summary Request the explanation analysis for a subject
// @Description Returns the cached analysis when present; otherwise schedules a background computation and returns pending
// @Tags analysis
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Completed analysis"
// @Success 202 {object} map[string]interface{} "Analysis pending"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Router /analysis [post]
func (ac *AnalysisController) RequestAnalysis(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return
	}

	query := models.Query{
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Month:            req.Month,
		FutureYearOffset: req.FutureYearOffset,
	}
	if err := query.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid query",
			"error":   err.Error(),
		})
		return
	}

	record, err := ac.worker.Request(req.SubjectID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to request analysis",
			"error":   err.Error(),
		})
		return
	}

	status := http.StatusOK
	if record.Status == models.AnalysisStatusPending {
		status = http.StatusAccepted
	}
	c.JSON(status, gin.H{
		"status": "success",
		"data":   toAnalysisResponse(record),
	})
}

// GetAnalysis godoc
// @Summary Get the cached analysis for a subject
// @Tags analysis
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Analysis state"
// @Failure 404 {object} map[string]interface{} "No analysis for subject"
// @Router /analysis/{subject_id} [get]
func (ac *AnalysisController) GetAnalysis(c *gin.Context) {
	subjectID := c.Param("subject_id")

	record, err := ac.worker.Get(subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "No analysis for subject",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to load analysis",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   toAnalysisResponse(record),
	})
}

// GetStatistics godoc
// @Summary Per-status analysis counts
// @Tags analysis
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Statistics"
// @Router /analysis/statistics [get]
func (ac *AnalysisController) GetStatistics(c *gin.Context) {
	stats, err := ac.worker.Statistics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to load statistics",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   stats,
	})
}

func toAnalysisResponse(record *models.AnalysisRecord) models.AnalysisResponse {
	response := models.AnalysisResponse{
		SubjectID:   record.SubjectID,
		Status:      record.Status,
		GeneratedAt: record.GeneratedAt,
	}
	if record.ErrorMessage != nil {
		response.Error = *record.ErrorMessage
	}
	if record.Status != models.AnalysisStatusCompleted {
		return response
	}

	var report models.AttributionReport
	if err := json.Unmarshal([]byte(record.ShapData), &report); err == nil {
		response.Attribution = &report
	}
	var story models.NarrativeStory
	if err := json.Unmarshal([]byte(record.Story), &story); err == nil {
		response.Story = &story
	}
	return response
}
