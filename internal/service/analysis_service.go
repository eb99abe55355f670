package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/dto"
	"github.com/noah-isme/scribe-go-api/internal/models"
	"github.com/noah-isme/scribe-go-api/internal/repository"
	"github.com/noah-isme/scribe-go-api/pkg/ai"
)

// ErrAnalysisNotFound indicates no analysis has been run for the document.
var ErrAnalysisNotFound = errors.New("analysis not found")

// ErrAnalyzerUnavailable indicates no analysis oracle is configured.
var ErrAnalyzerUnavailable = errors.New("analyzer unavailable")

// AnalysisService runs the text-analysis oracle over a document version and
// persists the verdict alongside it. Results are per version, never mutated.
type AnalysisService interface {
	Analyze(ctx context.Context, documentID uint, actorID uint) (dto.AnalysisResponse, error)
	GetLatest(ctx context.Context, documentID uint) (dto.AnalysisResponse, error)
}

type analysisService struct {
	analyses  repository.AnalysisRepository
	documents repository.DocumentRepository
	policy    AccessPolicy
	analyzer  ai.Analyzer
	logger    zerolog.Logger
}

// NewAnalysisService constructs an AnalysisService instance. The analyzer may be
// nil when no oracle is configured; Analyze then fails fast.
func NewAnalysisService(analysisRepo repository.AnalysisRepository, docRepo repository.DocumentRepository, policy AccessPolicy, analyzer ai.Analyzer, logger zerolog.Logger) AnalysisService {
	return &analysisService{
		analyses:  analysisRepo,
		documents: docRepo,
		policy:    policy,
		analyzer:  analyzer,
		logger:    logger.With().Str("component", "analysis_service").Logger(),
	}
}

// Analyze is allowed for the document owner or any evaluator.
func (s *analysisService) Analyze(ctx context.Context, documentID uint, actorID uint) (dto.AnalysisResponse, error) {
	if s.analyzer == nil {
		return dto.AnalysisResponse{}, ErrAnalyzerUnavailable
	}

	document, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnalysisResponse{}, ErrDocumentNotFound
		}
		return dto.AnalysisResponse{}, err
	}

	allowed := document.OwnerID == actorID
	if !allowed {
		canEvaluate, err := s.policy.CanEvaluate(ctx, actorID)
		if err != nil {
			return dto.AnalysisResponse{}, err
		}
		allowed = canEvaluate
	}
	if !allowed {
		return dto.AnalysisResponse{}, ErrUnauthorized
	}

	outcome, err := s.analyzer.Analyze(ctx, ai.AnalysisInput{
		Title:         document.Title,
		Content:       document.Content,
		ContentFormat: document.ContentFormat,
	})
	if err != nil {
		return dto.AnalysisResponse{}, fmt.Errorf("analyze document %d: %w", documentID, err)
	}

	result := models.AnalysisResult{
		DocumentID:   documentID,
		OverallScore: outcome.OverallScore,
		Verdict:      outcome.Verdict,
		Metrics:      marshalJSON(outcome.Metrics),
	}

	sections := make([]models.AnalysisSection, 0, len(outcome.Sections))
	for _, finding := range outcome.Sections {
		sections = append(sections, models.AnalysisSection{
			Heading:    finding.Heading,
			Score:      finding.Score,
			Suggestion: finding.Suggestion,
			Details:    marshalJSON(finding.Details),
		})
	}

	if err := s.analyses.CreateResult(ctx, &result, sections); err != nil {
		return dto.AnalysisResponse{}, err
	}

	s.logger.Info().
		Uint("document_id", documentID).
		Float64("overall_score", result.OverallScore).
		Str("verdict", result.Verdict).
		Msg("document analyzed")

	return dto.NewAnalysisResponse(result, sections), nil
}

func (s *analysisService) GetLatest(ctx context.Context, documentID uint) (dto.AnalysisResponse, error) {
	result, sections, err := s.analyses.GetLatestByDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnalysisResponse{}, ErrAnalysisNotFound
		}
		return dto.AnalysisResponse{}, err
	}

	return dto.NewAnalysisResponse(result, sections), nil
}

func marshalJSON(value map[string]interface{}) datatypes.JSON {
	if len(value) == 0 {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return datatypes.JSON(payload)
}
