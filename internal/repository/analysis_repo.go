package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/models"
)

// AnalysisRepository persists text-analysis oracle output.
type AnalysisRepository interface {
	CreateResult(ctx context.Context, result *models.AnalysisResult, sections []models.AnalysisSection) error
	GetLatestByDocument(ctx context.Context, documentID uint) (models.AnalysisResult, []models.AnalysisSection, error)
}

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository instantiates the repository.
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// CreateResult writes the result and its sections in one transaction.
func (r *analysisRepository) CreateResult(ctx context.Context, result *models.AnalysisResult, sections []models.AnalysisSection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return err
		}

		for i := range sections {
			sections[i].AnalysisID = result.ID
			sections[i].DocumentID = result.DocumentID
		}

		if len(sections) == 0 {
			return nil
		}
		return tx.Create(&sections).Error
	})
}

func (r *analysisRepository) GetLatestByDocument(ctx context.Context, documentID uint) (models.AnalysisResult, []models.AnalysisSection, error) {
	var result models.AnalysisResult
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		return models.AnalysisResult{}, nil, err
	}

	var sections []models.AnalysisSection
	if err := r.db.WithContext(ctx).
		Where("analysis_id = ?", result.ID).
		Find(&sections).Error; err != nil {
		return models.AnalysisResult{}, nil, err
	}

	return result, sections, nil
}
