package models

import (
	"time"

	"gorm.io/gorm"
)

// NarrativeStory is the structured explanation shown to the end user. Both
// the generated and the template paths fill the same sections, so consumers
// never branch on origin; Fallback only records which path produced it.
type NarrativeStory struct {
	Introduction   string `json:"introduction"`
	KeyDrivers     string `json:"key_drivers"`
	RiskAssessment string `json:"risk_assessment"`
	Conclusion     string `json:"conclusion"`
	Fallback       bool   `json:"fallback"`
}

// Analysis status constants.
const (
	AnalysisStatusPending   = "pending"
	AnalysisStatusCompleted = "completed"
	AnalysisStatusFailed    = "failed"
)

// AnalysisRecord is the cached (attribution, story) pair for one subject.
// Unique per subject id; once completed the content is immutable and is the
// canonical answer for every future read, even if models or baselines change.
type AnalysisRecord struct {
	SubjectID string `gorm:"primaryKey;type:varchar(64)" json:"subject_id"`
	Status    string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	// The originating query, kept so pending work can be recovered after a
	// restart.
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Month            int     `json:"month"`
	FutureYearOffset int     `json:"future_year_offset"`

	ShapData     string         `gorm:"type:text" json:"shap_data,omitempty"`
	Story        string         `gorm:"type:text" json:"story,omitempty"`
	ErrorMessage *string        `gorm:"type:text" json:"error_message,omitempty"`
	GeneratedAt  *time.Time     `json:"generated_at,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *AnalysisRecord) TableName() string {
	return "analysis_records"
}

// AnalysisRequest is the request-analysis operation's body.
type AnalysisRequest struct {
	SubjectID        string  `json:"subject_id" binding:"required"`
	Latitude         float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude        float64 `json:"longitude" binding:"min=-180,max=180"`
	Month            int     `json:"month" binding:"required,min=1,max=12"`
	FutureYearOffset int     `json:"future_year_offset" binding:"min=0"`
}

// AnalysisResponse is the get-cached-analysis payload.
type AnalysisResponse struct {
	SubjectID   string             `json:"subject_id"`
	Status      string             `json:"status"`
	Attribution *AttributionReport `json:"attribution,omitempty"`
	Story       *NarrativeStory    `json:"story,omitempty"`
	Error       string             `json:"error,omitempty"`
	GeneratedAt *time.Time         `json:"generated_at,omitempty"`
}
