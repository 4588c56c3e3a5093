package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"ecoscope/internal/envdata"
	"ecoscope/internal/features"
	"ecoscope/internal/models"
	"ecoscope/internal/repository"
	"ecoscope/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PredictionController struct {
	predictor *services.Predictor
	worker    *services.AnalysisWorker
	repo      repository.PredictionRepository
	source    envdata.Source
}

func NewPredictionController(
	predictor *services.Predictor,
	worker *services.AnalysisWorker,
	repo repository.PredictionRepository,
	source envdata.Source,
) *PredictionController {
	return &PredictionController{
		predictor: predictor,
		worker:    worker,
		repo:      repo,
		source:    source,
	}
}

// MakePrediction godoc
// @Summary Compute the environmental change score for a location and month
// @Description Resolves the nearest region, builds the feature vector and combines the sub-model scores into a composite outcome
// @Tags prediction
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Prediction result"
// @Failure 400 {object} map[string]interface{} "Invalid query"
// @Failure 503 {object} map[string]interface{} "Environmental data unavailable"
// @Router /prediction [post]
func (pc *PredictionController) MakePrediction(c *gin.Context) {
	var req models.PredictionRequest
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

	subjectID := req.SubjectID
	if subjectID == "" {
		subjectID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result, err := pc.predictor.Predict(ctx, query)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidQuery):
			c.JSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "Invalid query",
				"error":   err.Error(),
			})
		case errors.Is(err, features.ErrDataUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "error",
				"message": "Environmental data source is unavailable",
				"error":   err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Prediction failed",
				"error":   err.Error(),
			})
		}
		return
	}

	if err := pc.savePrediction(subjectID, query, result); err != nil {
		log.Printf("Error saving prediction for subject %s: %v", subjectID, err)
	}

	response := models.PredictionResult{
		SubjectID: subjectID,
		Region:    result.Region.Name,
		Outcome:   *result.Outcome,
	}

	if req.IncludeExplanation {
		pc.attachAnalysis(&response, subjectID, query)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Prediction completed",
		"data":    response,
	})
}

// attachAnalysis schedules (or reads) the cached analysis for the subject and
// folds whatever state it is in into the response.
func (pc *PredictionController) attachAnalysis(response *models.PredictionResult, subjectID string, query models.Query) {
	record, err := pc.worker.Request(subjectID, query)
	if err != nil {
		log.Printf("Error requesting analysis for subject %s: %v", subjectID, err)
		response.AnalysisStatus = models.AnalysisStatusFailed
		return
	}

	response.AnalysisStatus = record.Status
	if record.Status != models.AnalysisStatusCompleted {
		return
	}

	var report models.AttributionReport
	if err := json.Unmarshal([]byte(record.ShapData), &report); err == nil {
		response.Attribution = &report
	}
	var story models.NarrativeStory
	if err := json.Unmarshal([]byte(record.Story), &story); err == nil {
		response.Story = &story
	}
}

func (pc *PredictionController) savePrediction(subjectID string, query models.Query, result *services.PredictionContext) error {
	contributions, err := json.Marshal(result.Outcome.ComponentContributions)
	if err != nil {
		return err
	}

	prediction := &models.Prediction{
		SubjectID:        subjectID,
		Region:           result.Region.Name,
		Latitude:         query.Latitude,
		Longitude:        query.Longitude,
		Month:            query.Month,
		FutureYearOffset: query.FutureYearOffset,
		FinalScore:       result.Outcome.FinalScore,
		ClimateScore:     result.Outcome.ClimateScore,
		GeographicScore:  result.Outcome.GeographicScore,
		EconomicScore:    result.Outcome.EconomicScore,
		ConfidenceScore:  result.Outcome.ConfidenceScore,
		RiskLevel:        result.Outcome.RiskLevel,
		TrendDirection:   result.Outcome.TrendDirection,
		DataCompleteness: result.Outcome.DataCompleteness,
		Degraded:         result.Outcome.Degraded,
		Contributions:    string(contributions),
	}
	return pc.repo.SavePrediction(prediction)
}

// GetPredictionByID godoc
// @Summary Get a stored prediction by its numeric id
// @Tags prediction
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Prediction"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /prediction/{id} [get]
func (pc *PredictionController) GetPredictionByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid prediction ID",
			"error":   err.Error(),
		})
		return
	}

	prediction, err := pc.repo.GetPredictionByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "Prediction not found",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   prediction,
	})
}

// GetPredictionsBySubject godoc
// @Summary List stored predictions for a subject
// @Tags prediction
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]interface{} "Predictions"
// @Router /prediction/subject/{subject_id} [get]
func (pc *PredictionController) GetPredictionsBySubject(c *gin.Context) {
	subjectID := c.Param("subject_id")

	predictions, err := pc.repo.GetPredictionsBySubjectID(subjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to load predictions",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   predictions,
	})
}

// HealthCheck godoc
// @Summary Service and data source health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Failure 503 {object} map[string]interface{} "Data source unreachable"
// @Router /health [get]
func (pc *PredictionController) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := pc.source.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":      "degraded",
			"data_source": "unreachable",
			"error":       err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"data_source": "ok",
	})
}
