package repository

import (
	"fmt"
	"log"
	"time"

	"ecoscope/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalysisRepository persists the per-subject analysis cache. The store only
// needs get / put-if-absent / compare-and-swap-status semantics; the gorm
// implementation expresses the swaps as guarded updates.
type AnalysisRepository interface {
	// CreateIfAbsent inserts a pending record, reporting false when the
	// subject id already exists.
	CreateIfAbsent(record *models.AnalysisRecord) (bool, error)
	GetBySubjectID(subjectID string) (*models.AnalysisRecord, error)

	// TransitionStatus moves subject from one status to another; it fails
	// when the record is not currently in the expected status. The error
	// message column is overwritten either way, so a nil errorMessage
	// clears it.
	TransitionStatus(subjectID, from, to string, errorMessage *string) error

	// Complete stores the analysis content and closes the pending state.
	// Completed content is immutable afterwards.
	Complete(subjectID, shapData, story string) error

	GetPending(limit int) ([]*models.AnalysisRecord, error)
	GetStatistics() (map[string]int64, error)
	CleanupFailed(olderThan time.Time) error
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) CreateIfAbsent(record *models.AnalysisRecord) (bool, error) {
	if record.Status == "" {
		record.Status = models.AnalysisStatusPending
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.UpdatedAt = time.Now()

	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *analysisRepository) GetBySubjectID(subjectID string) (*models.AnalysisRecord, error) {
	var record models.AnalysisRecord
	err := r.db.Where("subject_id = ?", subjectID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *analysisRepository) TransitionStatus(subjectID, from, to string, errorMessage *string) error {
	// error_message is always written: a nil pointer clears any stale
	// error carried over from a prior failure.
	updates := map[string]interface{}{
		"status":        to,
		"error_message": errorMessage,
		"updated_at":    time.Now(),
	}

	result := r.db.Model(&models.AnalysisRecord{}).
		Where("subject_id = ? AND status = ?", subjectID, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("analysis %s is not in status %s", subjectID, from)
	}
	return nil
}

func (r *analysisRepository) Complete(subjectID, shapData, story string) error {
	now := time.Now()
	result := r.db.Model(&models.AnalysisRecord{}).
		Where("subject_id = ? AND status = ?", subjectID, models.AnalysisStatusPending).
		Updates(map[string]interface{}{
			"status":        models.AnalysisStatusCompleted,
			"shap_data":     shapData,
			"story":         story,
			"error_message": nil,
			"generated_at":  &now,
			"updated_at":    now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("analysis %s is not pending", subjectID)
	}
	return nil
}

func (r *analysisRepository) GetPending(limit int) ([]*models.AnalysisRecord, error) {
	var records []*models.AnalysisRecord
	query := r.db.Where("status = ?", models.AnalysisStatusPending).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}

func (r *analysisRepository) GetStatistics() (map[string]int64, error) {
	stats := make(map[string]int64)
	statuses := []string{
		models.AnalysisStatusPending,
		models.AnalysisStatusCompleted,
		models.AnalysisStatusFailed,
	}

	for _, status := range statuses {
		var count int64
		err := r.db.Model(&models.AnalysisRecord{}).
			Where("status = ?", status).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		stats[status] = count
	}

	var total int64
	if err := r.db.Model(&models.AnalysisRecord{}).Count(&total).Error; err != nil {
		return nil, err
	}
	stats["total"] = total

	return stats, nil
}

func (r *analysisRepository) CleanupFailed(olderThan time.Time) error {
	result := r.db.Where("status = ? AND updated_at < ?", models.AnalysisStatusFailed, olderThan).
		Delete(&models.AnalysisRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d failed analyses", result.RowsAffected)
	}
	return nil
}
