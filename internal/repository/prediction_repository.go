package repository

import (
	"time"

	"ecoscope/internal/models"

	"gorm.io/gorm"
)

type PredictionRepository interface {
	SavePrediction(prediction *models.Prediction) error
	GetPredictionByID(id uint) (*models.Prediction, error)
	GetPredictionsBySubjectID(subjectID string) ([]models.Prediction, error)
	GetPredictionsByDateRange(startDate, endDate time.Time) ([]models.Prediction, error)
	DeletePrediction(id uint) error
}

type predictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db}
}

func (r *predictionRepository) SavePrediction(prediction *models.Prediction) error {
	return r.db.Create(prediction).Error
}

func (r *predictionRepository) GetPredictionByID(id uint) (*models.Prediction, error) {
	var prediction models.Prediction
	err := r.db.First(&prediction, id).Error
	if err != nil {
		return nil, err
	}
	return &prediction, nil
}

func (r *predictionRepository) GetPredictionsBySubjectID(subjectID string) ([]models.Prediction, error) {
	var predictions []models.Prediction
	err := r.db.Where("subject_id = ?", subjectID).Order("created_at DESC").Find(&predictions).Error
	return predictions, err
}

func (r *predictionRepository) GetPredictionsByDateRange(startDate, endDate time.Time) ([]models.Prediction, error) {
	var predictions []models.Prediction
	err := r.db.Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Order("created_at DESC").
		Find(&predictions).Error
	return predictions, err
}

func (r *predictionRepository) DeletePrediction(id uint) error {
	return r.db.Delete(&models.Prediction{}, id).Error
}
