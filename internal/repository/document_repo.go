package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/models"
)

// DocumentFilter narrows document listings. Listing views only see latest versions.
type DocumentFilter struct {
	OwnerID  *uint
	GroupID  *uint
	Search   string
	Page     int
	PageSize int
}

// DocumentRepository defines plain reads and writes for document rows.
// Version-chain bookkeeping lives in VersionChainRepository.
type DocumentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Document, error)
	ListLatest(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error)
	LinkSubmission(ctx context.Context, tx *gorm.DB, documentID, submissionID, assignmentID uint) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository instantiates a GORM-backed repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) GetByID(ctx context.Context, id uint) (models.Document, error) {
	var document models.Document
	if err := r.db.WithContext(ctx).Preload("Owner").First(&document, id).Error; err != nil {
		return models.Document{}, err
	}

	return document, nil
}

func (r *documentRepository) ListLatest(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Document{}).Where("is_latest = ?", true)

	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}

	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ?", pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("updated_at DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var documents []models.Document
	if err := query.Find(&documents).Error; err != nil {
		return nil, 0, err
	}

	return documents, total, nil
}

// LinkSubmission re-points a document at the submission and assignment it was
// finally submitted for. When tx is nil the repository's own handle is used.
func (r *documentRepository) LinkSubmission(ctx context.Context, tx *gorm.DB, documentID, submissionID, assignmentID uint) error {
	db := r.db
	if tx != nil {
		db = tx
	}

	result := db.WithContext(ctx).Model(&models.Document{}).
		Where("id = ?", documentID).
		Updates(map[string]interface{}{
			"submission_id": submissionID,
			"assignment_id": assignmentID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
