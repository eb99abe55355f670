package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/dto"
	"github.com/noah-isme/scribe-go-api/internal/models"
	"github.com/noah-isme/scribe-go-api/internal/repository"
)

// ErrDocumentNotFound indicates a document could not be found.
var ErrDocumentNotFound = errors.New("document not found")

// ErrDocumentConflict indicates two writers raced on the same lineage.
var ErrDocumentConflict = errors.New("document version conflict")

// DocumentService orchestrates document lineages. Updates always append a new
// version; content is never mutated in place, which is what gives the system
// its audit trail and stable snapshots for concurrent readers.
type DocumentService interface {
	Create(ctx context.Context, payload dto.DocumentCreateRequest, actorID uint) (dto.DocumentResponse, error)
	GetByID(ctx context.Context, id uint) (dto.DocumentResponse, error)
	List(ctx context.Context, filter dto.DocumentFilter) (dto.DocumentListResponse, error)
	Update(ctx context.Context, id uint, payload dto.DocumentUpdateRequest, actorID uint) (dto.DocumentResponse, error)
	ListVersions(ctx context.Context, id uint) ([]dto.DocumentVersionResponse, error)
	Delete(ctx context.Context, id uint, actorID uint) error
}

type documentService struct {
	documents repository.DocumentRepository
	chain     repository.VersionChainRepository
	policy    AccessPolicy
	validator *validator.Validate
	cache     *redis.Client
	cacheTTL  time.Duration
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewDocumentService constructs a DocumentService instance. The Redis client is
// optional; without it reads simply skip the cache.
func NewDocumentService(docRepo repository.DocumentRepository, chainRepo repository.VersionChainRepository, policy AccessPolicy, validate *validator.Validate, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) DocumentService {
	return &documentService{
		documents: docRepo,
		chain:     chainRepo,
		policy:    policy,
		validator: validate,
		cache:     cache,
		cacheTTL:  cacheTTL,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "document_service").Logger(),
	}
}

func (s *documentService) Create(ctx context.Context, payload dto.DocumentCreateRequest, actorID uint) (dto.DocumentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DocumentResponse{}, err
	}

	format := payload.ContentFormat
	if format == "" {
		format = models.ContentFormatText
	}

	content := payload.Content
	if format == models.ContentFormatHTML {
		content = s.sanitizer.Sanitize(content)
	}

	document := models.Document{
		Title:         payload.Title,
		Content:       content,
		ContentFormat: format,
		OwnerID:       actorID,
		GroupID:       payload.GroupID,
	}

	if err := s.chain.CreateLineage(ctx, &document); err != nil {
		return dto.DocumentResponse{}, err
	}

	s.logger.Info().Uint("document_id", document.ID).Uint("owner_id", actorID).Msg("lineage created")

	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) GetByID(ctx context.Context, id uint) (dto.DocumentResponse, error) {
	if cached, ok := s.cacheGet(ctx, id); ok {
		return cached, nil
	}

	document, err := s.documents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentResponse{}, ErrDocumentNotFound
		}
		return dto.DocumentResponse{}, err
	}

	response := dto.NewDocumentResponse(document)
	s.cacheSet(ctx, response)

	return response, nil
}

func (s *documentService) List(ctx context.Context, filter dto.DocumentFilter) (dto.DocumentListResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return dto.DocumentListResponse{}, err
	}

	repoFilter := repository.DocumentFilter{
		OwnerID:  filter.OwnerID,
		GroupID:  filter.GroupID,
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}

	documents, total, err := s.documents.ListLatest(ctx, repoFilter)
	if err != nil {
		return dto.DocumentListResponse{}, err
	}

	return dto.DocumentListResponse{
		Documents: dto.NewDocumentResponseSlice(documents),
		Total:     total,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}, nil
}

// Update appends a new version to the lineage the document belongs to. Only the
// owner may append; appending via an old version is allowed and stays linear.
func (s *documentService) Update(ctx context.Context, id uint, payload dto.DocumentUpdateRequest, actorID uint) (dto.DocumentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DocumentResponse{}, err
	}

	existing, err := s.documents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentResponse{}, ErrDocumentNotFound
		}
		return dto.DocumentResponse{}, err
	}

	isOwner, err := s.policy.IsOwner(ctx, actorID, id)
	if err != nil {
		return dto.DocumentResponse{}, err
	}
	if !isOwner {
		return dto.DocumentResponse{}, ErrUnauthorized
	}

	title := payload.Title
	if title == "" {
		title = existing.Title
	}

	content := payload.Content
	if existing.ContentFormat == models.ContentFormatHTML {
		content = s.sanitizer.Sanitize(content)
	}

	next := models.Document{
		Title:         title,
		Content:       content,
		ContentFormat: existing.ContentFormat,
		OwnerID:       actorID,
		GroupID:       existing.GroupID,
		AssignmentID:  existing.AssignmentID,
	}

	if err := s.chain.AppendVersion(ctx, id, &next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentResponse{}, ErrDocumentNotFound
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			return dto.DocumentResponse{}, ErrDocumentConflict
		}
		return dto.DocumentResponse{}, err
	}

	s.cacheInvalidate(ctx, id, existing.Root())
	s.logger.Info().Uint("document_id", next.ID).Int("version", next.VersionNumber).Msg("version appended")

	return dto.NewDocumentResponse(next), nil
}

func (s *documentService) ListVersions(ctx context.Context, id uint) ([]dto.DocumentVersionResponse, error) {
	documents, err := s.chain.ListVersions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	versions := make([]dto.DocumentVersionResponse, 0, len(documents))
	for _, document := range documents {
		versions = append(versions, dto.NewDocumentVersionResponse(document))
	}

	return versions, nil
}

// Delete removes the whole lineage and everything referencing it.
func (s *documentService) Delete(ctx context.Context, id uint, actorID uint) error {
	isOwner, err := s.policy.IsOwner(ctx, actorID, id)
	if err != nil {
		return err
	}
	if !isOwner {
		isAdmin, err := s.policy.HasRole(ctx, actorID, models.RoleAdmin)
		if err != nil {
			return err
		}
		if !isAdmin {
			return ErrUnauthorized
		}
	}

	ids, err := s.chain.CollectLineageIDs(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	if err := s.chain.DeleteLineage(ctx, id); err != nil {
		return err
	}

	for _, versionID := range ids {
		s.cacheInvalidate(ctx, versionID, 0)
	}

	s.logger.Info().Uint("document_id", id).Int("versions", len(ids)).Msg("lineage deleted")

	return nil
}

func documentCacheKey(id uint) string {
	return fmt.Sprintf("scribe:document:%d", id)
}

func (s *documentService) cacheGet(ctx context.Context, id uint) (dto.DocumentResponse, bool) {
	if s.cache == nil {
		return dto.DocumentResponse{}, false
	}

	raw, err := s.cache.Get(ctx, documentCacheKey(id)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("document cache read failed")
		}
		return dto.DocumentResponse{}, false
	}

	var response dto.DocumentResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		return dto.DocumentResponse{}, false
	}

	return response, true
}

func (s *documentService) cacheSet(ctx context.Context, response dto.DocumentResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, documentCacheKey(response.ID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("document cache write failed")
	}
}

func (s *documentService) cacheInvalidate(ctx context.Context, ids ...uint) {
	if s.cache == nil {
		return
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			keys = append(keys, documentCacheKey(id))
		}
	}
	if len(keys) == 0 {
		return
	}

	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("document cache invalidation failed")
	}
}
