package models

import (
	"time"

	"gorm.io/gorm"
)

// Score dimensions.
const (
	DimensionClimate    = "climate"
	DimensionGeographic = "geographic"
	DimensionEconomic   = "economic"
	DimensionComposite  = "composite"
)

// Risk levels derived from the dynamic baseline thresholds.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Trend directions relative to the neutral band.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendWorsening = "worsening"
)

// SubModelPrediction is one dimension's raw output.
type SubModelPrediction struct {
	Dimension       string  `json:"dimension"`
	RawValue        float64 `json:"raw_value"`
	Confidence      float64 `json:"confidence"`
	ModelIdentifier string  `json:"model_identifier"`
}

// NormalizedScore standardizes a raw score against the region baseline.
type NormalizedScore struct {
	Dimension         string  `json:"dimension"`
	StandardizedValue float64 `json:"standardized_value"`
	BaselineMean      float64 `json:"baseline_mean"`
	BaselineStdev     float64 `json:"baseline_stdev"`
}

// CompositeOutcome is the combined result of the three sub-models. Dimension
// score pointers are nil when that dimension was unavailable (degraded mode);
// the weights are then re-normalized over the remaining dimensions.
type CompositeOutcome struct {
	FinalScore             float64                    `json:"final_score"`
	ClimateScore           *float64                   `json:"climate_score"`
	GeographicScore        *float64                   `json:"geographic_score"`
	EconomicScore          *float64                   `json:"economic_score"`
	ConfidenceScore        float64                    `json:"confidence_score"`
	RiskLevel              string                     `json:"risk_level"`
	TrendDirection         string                     `json:"trend_direction"`
	ComponentContributions map[string]float64         `json:"component_contributions"`
	Normalized             map[string]NormalizedScore `json:"normalized"`
	DataCompleteness       float64                    `json:"data_completeness"`
	Degraded               bool                       `json:"degraded"`
}

// Prediction is the persisted record of one computed outcome.
type Prediction struct {
	ID        uint           `gorm:"primaryKey" json:"id" example:"1"`
	CreatedAt time.Time      `gorm:"index" json:"created_at" example:"2023-01-01T00:00:00Z"`
	UpdatedAt time.Time      `json:"updated_at" example:"2023-01-01T00:00:00Z"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SubjectID string `gorm:"type:varchar(64);index" json:"subject_id"`
	Region    string `gorm:"type:varchar(64)" json:"region"`

	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Month            int     `json:"month"`
	FutureYearOffset int     `json:"future_year_offset"`

	FinalScore       float64  `json:"final_score" example:"0.449"`
	ClimateScore     *float64 `json:"climate_score,omitempty"`
	GeographicScore  *float64 `json:"geographic_score,omitempty"`
	EconomicScore    *float64 `json:"economic_score,omitempty"`
	ConfidenceScore  float64  `json:"confidence_score" example:"0.82"`
	RiskLevel        string   `gorm:"type:varchar(10);check:risk_level IN ('low','medium','high')" json:"risk_level"`
	TrendDirection   string   `gorm:"type:varchar(10)" json:"trend_direction"`
	DataCompleteness float64  `json:"data_completeness"`
	Degraded         bool     `json:"degraded"`

	// Contributions holds the component_contributions map as JSON.
	Contributions string `gorm:"type:text" json:"contributions"`
}

func (p *Prediction) TableName() string {
	return "predictions"
}

// PredictionRequest is the predict operation's request body.
type PredictionRequest struct {
	Latitude           float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude          float64 `json:"longitude" binding:"min=-180,max=180"`
	Month              int     `json:"month" binding:"required,min=1,max=12"`
	FutureYearOffset   int     `json:"future_year_offset" binding:"min=0"`
	SubjectID          string  `json:"subject_id"`
	IncludeExplanation bool    `json:"include_explanation"`
}

// PredictionResult is the predict operation's synchronous response payload.
type PredictionResult struct {
	SubjectID string           `json:"subject_id"`
	Region    string           `json:"region"`
	Outcome   CompositeOutcome `json:"outcome"`

	// AnalysisStatus reports the explanation state when include_explanation
	// was set: "pending" while background work runs, "completed" when the
	// cached analysis is attached, "failed" otherwise.
	AnalysisStatus string             `json:"analysis_status,omitempty"`
	Attribution    *AttributionReport `json:"attribution,omitempty"`
	Story          *NarrativeStory    `json:"story,omitempty"`
}
