package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/models"
)

// ErrVersionConflict is returned when two writers raced to append the same
// version number and the retry also collided.
var ErrVersionConflict = errors.New("version number conflict")

// VersionChainRepository owns the mapping from a lineage root to its ordered
// versions and which one is latest. Every multi-row mutation runs in a single
// transaction so partial promotions are never observable.
type VersionChainRepository interface {
	CreateLineage(ctx context.Context, document *models.Document) error
	AppendVersion(ctx context.Context, existingDocumentID uint, next *models.Document) error
	ListVersions(ctx context.Context, documentID uint) ([]models.Document, error)
	ResolveRoot(ctx context.Context, documentID uint) (uint, error)
	CollectLineageIDs(ctx context.Context, documentID uint) ([]uint, error)
	DeleteLineage(ctx context.Context, documentID uint) error
}

type versionChainRepository struct {
	db *gorm.DB
}

// NewVersionChainRepository instantiates a GORM-backed version chain store.
func NewVersionChainRepository(db *gorm.DB) VersionChainRepository {
	return &versionChainRepository{db: db}
}

// CreateLineage writes the first document of a new lineage together with its
// version entry. The root pointer is materialised once the row ID is known.
func (r *versionChainRepository) CreateLineage(ctx context.Context, document *models.Document) error {
	document.VersionNumber = 1
	document.IsLatest = true

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(document).Error; err != nil {
			return err
		}

		root := document.ID
		document.RootDocumentID = &root
		if err := tx.Model(&models.Document{}).Where("id = ?", document.ID).
			Update("root_document_id", root).Error; err != nil {
			return err
		}

		entry := models.VersionEntry{
			RootDocumentID:      root,
			VersionedDocumentID: document.ID,
			VersionNumber:       1,
		}
		return tx.Create(&entry).Error
	})
}

// AppendVersion promotes next to the latest version of the lineage that
// existingDocumentID belongs to. The demotion of the old latest, the new
// document row and its version entry commit together or not at all. A
// duplicate (root, version) pair means another writer won the race; the whole
// transaction is retried once before giving up with ErrVersionConflict.
func (r *versionChainRepository) AppendVersion(ctx context.Context, existingDocumentID uint, next *models.Document) error {
	root, err := r.ResolveRoot(ctx, existingDocumentID)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < 2; attempt++ {
		err = r.appendOnce(ctx, root, next)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		next.ID = 0
	}

	return ErrVersionConflict
}

func (r *versionChainRepository) appendOnce(ctx context.Context, root uint, next *models.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxVersion int
		row := tx.Model(&models.VersionEntry{}).
			Where("root_document_id = ?", root).
			Select("COALESCE(MAX(version_number), 0)").
			Row()
		if err := row.Scan(&maxVersion); err != nil {
			return err
		}

		if err := tx.Model(&models.Document{}).
			Where("root_document_id = ? AND is_latest = ?", root, true).
			Update("is_latest", false).Error; err != nil {
			return err
		}

		next.RootDocumentID = &root
		next.VersionNumber = maxVersion + 1
		next.IsLatest = true
		if err := tx.Create(next).Error; err != nil {
			return err
		}

		entry := models.VersionEntry{
			RootDocumentID:      root,
			VersionedDocumentID: next.ID,
			VersionNumber:       next.VersionNumber,
		}
		return tx.Create(&entry).Error
	})
}

// ListVersions returns every version of the lineage that documentID belongs
// to, newest first, with the author preloaded.
func (r *versionChainRepository) ListVersions(ctx context.Context, documentID uint) ([]models.Document, error) {
	root, err := r.ResolveRoot(ctx, documentID)
	if err != nil {
		return nil, err
	}

	var documents []models.Document
	if err := r.db.WithContext(ctx).
		Where("root_document_id = ?", root).
		Order("version_number DESC").
		Preload("Owner").
		Find(&documents).Error; err != nil {
		return nil, err
	}

	return documents, nil
}

// ResolveRoot maps any version of a lineage to the lineage root identifier.
// Documents never registered in a lineage yield gorm.ErrRecordNotFound.
func (r *versionChainRepository) ResolveRoot(ctx context.Context, documentID uint) (uint, error) {
	var entry models.VersionEntry
	if err := r.db.WithContext(ctx).
		Where("versioned_document_id = ?", documentID).
		First(&entry).Error; err != nil {
		return 0, err
	}

	return entry.RootDocumentID, nil
}

// CollectLineageIDs returns the IDs of every document in the lineage, ordered
// by version number ascending.
func (r *versionChainRepository) CollectLineageIDs(ctx context.Context, documentID uint) ([]uint, error) {
	root, err := r.ResolveRoot(ctx, documentID)
	if err != nil {
		return nil, err
	}

	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.VersionEntry{}).
		Where("root_document_id = ?", root).
		Order("version_number ASC").
		Pluck("versioned_document_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

// DeleteLineage removes every row that references any version of the lineage,
// children before parents, in one transaction.
func (r *versionChainRepository) DeleteLineage(ctx context.Context, documentID uint) error {
	ids, err := r.CollectLineageIDs(ctx, documentID)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id IN ?", ids).Delete(&models.AnalysisSection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id IN ?", ids).Delete(&models.AnalysisResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id IN ?", ids).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id IN ?", ids).Delete(&models.WordSuggestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id IN ?", ids).Delete(&models.SubmissionResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id IN ?", ids).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("versioned_document_id IN ?", ids).Delete(&models.VersionEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Document{}).Error
	})
}
