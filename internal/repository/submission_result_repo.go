package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/models"
)

// SubmissionResultRepository defines data operations for evaluation results.
type SubmissionResultRepository interface {
	GetByID(ctx context.Context, id uint) (models.SubmissionResult, error)
	GetCurrent(ctx context.Context, submissionID uint) (models.SubmissionResult, error)
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.SubmissionResult, error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type submissionResultRepository struct {
	db *gorm.DB
}

// NewSubmissionResultRepository instantiates the repository.
func NewSubmissionResultRepository(db *gorm.DB) SubmissionResultRepository {
	return &submissionResultRepository{db: db}
}

func (r *submissionResultRepository) GetByID(ctx context.Context, id uint) (models.SubmissionResult, error) {
	var result models.SubmissionResult
	if err := r.db.WithContext(ctx).
		Preload("Submission").
		Preload("Submission.Assignment").
		First(&result, id).Error; err != nil {
		return models.SubmissionResult{}, err
	}

	return result, nil
}

// GetCurrent returns the single non-superseded result for the submission.
func (r *submissionResultRepository) GetCurrent(ctx context.Context, submissionID uint) (models.SubmissionResult, error) {
	var result models.SubmissionResult
	if err := r.db.WithContext(ctx).
		Where("submission_id = ? AND superseded = ?", submissionID, false).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		return models.SubmissionResult{}, err
	}

	return result, nil
}

func (r *submissionResultRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.SubmissionResult, error) {
	var results []models.SubmissionResult
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (r *submissionResultRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
