package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/dto"
	"github.com/noah-isme/scribe-go-api/internal/models"
	"github.com/noah-isme/scribe-go-api/internal/repository"
)

// ErrResultNotFound indicates the submission result was not located.
var ErrResultNotFound = errors.New("submission result not found")

// EvaluationService closes the loop on a finally-submitted attempt: the
// teacher's verdict lands on the SubmissionResult and drives the parent
// submission into its terminal state.
type EvaluationService interface {
	Evaluate(ctx context.Context, resultID uint, payload dto.EvaluateRequest, teacherID uint) (dto.EvaluateResponse, error)
	GetCurrent(ctx context.Context, submissionID uint) (dto.SubmissionResultResponse, error)
	History(ctx context.Context, submissionID uint) ([]dto.SubmissionResultResponse, error)
}

type evaluationService struct {
	results   repository.SubmissionResultRepository
	policy    AccessPolicy
	validator *validator.Validate
	events    EventPublisher
	subject   string
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEvaluationService constructs the evaluation workflow.
func NewEvaluationService(resultRepo repository.SubmissionResultRepository, policy AccessPolicy, validate *validator.Validate, events EventPublisher, subject string, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		results:   resultRepo,
		policy:    policy,
		validator: validate,
		events:    events,
		subject:   subject,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
		now:       time.Now,
	}
}

// Evaluate is authorized for evaluators only: the actor must hold a grading
// role and be either the assignment creator or a member of the assignment's
// group (co-teacher model). The result update and the submission status change
// commit together.
func (s *evaluationService) Evaluate(ctx context.Context, resultID uint, payload dto.EvaluateRequest, teacherID uint) (dto.EvaluateResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/scribe-go-api/internal/service/evaluation")
	ctx, span := tracer.Start(ctx, "evaluation.update")
	span.SetAttributes(
		attribute.Int64("evaluation.result_id", int64(resultID)),
		attribute.Int64("evaluation.teacher_id", int64(teacherID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.EvaluateResponse{}, err
	}

	if payload.Status != models.ResultStatusCompleted && payload.Status != models.ResultStatusRequiresRevision {
		return dto.EvaluateResponse{}, ErrInvalidStatus
	}

	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "result_not_found")
			return dto.EvaluateResponse{}, ErrResultNotFound
		}
		span.RecordError(err)
		return dto.EvaluateResponse{}, err
	}

	canEvaluate, err := s.policy.CanEvaluate(ctx, teacherID)
	if err != nil {
		span.RecordError(err)
		return dto.EvaluateResponse{}, err
	}
	if !canEvaluate {
		span.SetStatus(codes.Error, "unauthorized")
		return dto.EvaluateResponse{}, ErrUnauthorized
	}

	assignment := result.Submission.Assignment
	authorized := teacherID == assignment.CreatorID
	if !authorized {
		member, err := s.policy.IsGroupMember(ctx, teacherID, assignment.GroupID)
		if err != nil {
			span.RecordError(err)
			return dto.EvaluateResponse{}, err
		}
		authorized = member
	}
	if !authorized {
		span.SetStatus(codes.Error, "unauthorized")
		return dto.EvaluateResponse{}, ErrUnauthorized
	}

	submission := result.Submission
	evaluatedAt := s.now()

	result.Feedback = s.sanitizer.Sanitize(strings.TrimSpace(payload.Feedback))
	result.Grade = strings.TrimSpace(payload.Grade)
	result.Status = payload.Status
	result.EvaluatedAt = &evaluatedAt

	switch result.Status {
	case models.ResultStatusCompleted:
		submission.Status = models.SubmissionStatusGraded
	case models.ResultStatusRequiresRevision:
		submission.Status = models.SubmissionStatusReturned
	}

	err = s.results.Transaction(ctx, func(tx *gorm.DB) error {
		update := map[string]interface{}{
			"feedback":     result.Feedback,
			"grade":        result.Grade,
			"status":       result.Status,
			"evaluated_at": result.EvaluatedAt,
		}
		if err := tx.Model(&models.SubmissionResult{}).Where("id = ?", result.ID).Updates(update).Error; err != nil {
			return err
		}

		return tx.Model(&models.Submission{}).Where("id = ?", submission.ID).
			Update("status", submission.Status).Error
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation_update_failed")
		return dto.EvaluateResponse{}, err
	}

	publishSubmissionEvent(s.events, s.subject, s.logger, SubmissionEvent{
		SubmissionID: submission.ID,
		AssignmentID: submission.AssignmentID,
		UserID:       submission.UserID,
		Status:       submission.Status,
		OccurredAt:   evaluatedAt,
	})

	span.SetAttributes(
		attribute.String("evaluation.status", result.Status),
		attribute.String("evaluation.submission_status", submission.Status),
	)
	s.logger.Info().Uint("result_id", result.ID).Str("status", result.Status).Msg("submission evaluated")

	return dto.NewEvaluateResponse(result, submission), nil
}

// GetCurrent returns the single non-superseded result for the submission.
func (s *evaluationService) GetCurrent(ctx context.Context, submissionID uint) (dto.SubmissionResultResponse, error) {
	result, err := s.results.GetCurrent(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResultResponse{}, ErrResultNotFound
		}
		return dto.SubmissionResultResponse{}, err
	}

	return dto.NewSubmissionResultResponse(result), nil
}

// History returns every result ever created for the submission, newest first,
// superseded ones included.
func (s *evaluationService) History(ctx context.Context, submissionID uint) ([]dto.SubmissionResultResponse, error) {
	results, err := s.results.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubmissionResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, dto.NewSubmissionResultResponse(result))
	}

	return responses, nil
}
