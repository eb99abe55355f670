package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/dto"
	"github.com/noah-isme/scribe-go-api/internal/models"
	"github.com/noah-isme/scribe-go-api/internal/repository"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrAssignmentNotFound indicates an assignment could not be found.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrInvalidStatus indicates a transition to a state the machine does not model.
var ErrInvalidStatus = errors.New("invalid submission status")

// ErrAssignmentPastDue indicates the assignment deadline has passed.
var ErrAssignmentPastDue = errors.New("assignment is past due")

// SubmissionService is the state machine for a submission's lifecycle:
// DRAFT -> SUBMITTED -> GRADED | RETURNED, with RETURNED looping back through
// resubmission.
type SubmissionService interface {
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	GetByID(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	Submit(ctx context.Context, payload dto.SubmissionCreateRequest, actorID uint) (dto.SubmissionResponse, error)
	Transition(ctx context.Context, id uint, payload dto.SubmissionTransitionRequest, actorID uint) (dto.SubmissionResponse, error)
	FinalSubmit(ctx context.Context, id uint, payload dto.FinalSubmitRequest, actorID uint) (dto.FinalSubmitResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	documents   repository.DocumentRepository
	policy      AccessPolicy
	validator   *validator.Validate
	events      EventPublisher
	subject     string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, docRepo repository.DocumentRepository, policy AccessPolicy, validate *validator.Validate, events EventPublisher, subject string, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		documents:   docRepo,
		policy:      policy,
		validator:   validate,
		events:      events,
		subject:     subject,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		UserID:       filter.UserID,
		Status:       filter.Status,
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) GetByID(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

// Submit upserts the actor's submission for an assignment. A resubmission
// re-points the document and always resets the status to DRAFT.
func (s *submissionService) Submit(ctx context.Context, payload dto.SubmissionCreateRequest, actorID uint) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if assignment.IsPastDue(s.now()) {
		return dto.SubmissionResponse{}, ErrAssignmentPastDue
	}

	isOwner, err := s.policy.IsOwner(ctx, actorID, payload.DocumentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !isOwner {
		return dto.SubmissionResponse{}, ErrUnauthorized
	}

	submittedAt := s.now()

	existing, err := s.submissions.GetByAssignmentAndUser(ctx, payload.AssignmentID, actorID)
	switch {
	case err == nil:
		existing.DocumentID = payload.DocumentID
		existing.Status = models.SubmissionStatusDraft
		existing.SubmittedAt = &submittedAt
		if err := s.submissions.Update(ctx, &existing); err != nil {
			return dto.SubmissionResponse{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		existing = models.Submission{
			AssignmentID: payload.AssignmentID,
			UserID:       actorID,
			DocumentID:   payload.DocumentID,
			Status:       models.SubmissionStatusDraft,
			SubmittedAt:  &submittedAt,
		}
		if err := s.submissions.Create(ctx, &existing); err != nil {
			// A concurrent first submission won the unique (assignment, user)
			// index; fold into the update path.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return s.Submit(ctx, payload, actorID)
			}
			return dto.SubmissionResponse{}, err
		}
	default:
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, existing.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", created.ID).Uint("assignment_id", payload.AssignmentID).Msg("submission drafted")

	return dto.NewSubmissionResponse(created), nil
}

// Transition moves the submission to newStatus if the actor holds the required
// capability: only the submitter reaches SUBMITTED, only an evaluator reaches
// GRADED or RETURNED. DRAFT is reachable only through resubmission.
func (s *submissionService) Transition(ctx context.Context, id uint, payload dto.SubmissionTransitionRequest, actorID uint) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !models.ValidSubmissionStatus(payload.Status) {
		return dto.SubmissionResponse{}, ErrInvalidStatus
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	switch payload.Status {
	case models.SubmissionStatusSubmitted:
		if actorID != submission.UserID {
			return dto.SubmissionResponse{}, ErrUnauthorized
		}
	case models.SubmissionStatusGraded, models.SubmissionStatusReturned:
		canEvaluate, err := s.policy.CanEvaluate(ctx, actorID)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		if !canEvaluate {
			return dto.SubmissionResponse{}, ErrUnauthorized
		}
	default:
		return dto.SubmissionResponse{}, ErrUnauthorized
	}

	submission.Status = payload.Status
	if payload.Status == models.SubmissionStatusSubmitted {
		submittedAt := s.now()
		submission.SubmittedAt = &submittedAt
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	publishSubmissionEvent(s.events, s.subject, s.logger, SubmissionEvent{
		SubmissionID: submission.ID,
		AssignmentID: submission.AssignmentID,
		UserID:       submission.UserID,
		Status:       submission.Status,
		OccurredAt:   s.now(),
	})

	return dto.NewSubmissionResponse(submission), nil
}

// FinalSubmit finalises the attempt: in one transaction it re-points the
// document at the submission, flips the status to SUBMITTED, supersedes any
// earlier evaluation result and opens a fresh PENDING one addressed to the
// assignment's creator.
func (s *submissionService) FinalSubmit(ctx context.Context, id uint, payload dto.FinalSubmitRequest, actorID uint) (dto.FinalSubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FinalSubmitResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FinalSubmitResponse{}, ErrSubmissionNotFound
		}
		return dto.FinalSubmitResponse{}, err
	}

	if actorID != submission.UserID {
		return dto.FinalSubmitResponse{}, ErrUnauthorized
	}

	isOwner, err := s.policy.IsOwner(ctx, actorID, payload.DocumentID)
	if err != nil {
		return dto.FinalSubmitResponse{}, err
	}
	if !isOwner {
		return dto.FinalSubmitResponse{}, ErrUnauthorized
	}

	assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FinalSubmitResponse{}, ErrAssignmentNotFound
		}
		return dto.FinalSubmitResponse{}, err
	}

	submittedAt := s.now()
	result := models.SubmissionResult{
		SubmissionID: submission.ID,
		DocumentID:   payload.DocumentID,
		TeacherID:    assignment.CreatorID,
		Status:       models.ResultStatusPending,
	}

	err = s.submissions.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.documents.LinkSubmission(ctx, tx, payload.DocumentID, submission.ID, submission.AssignmentID); err != nil {
			return err
		}

		submission.DocumentID = payload.DocumentID
		submission.Status = models.SubmissionStatusSubmitted
		submission.SubmittedAt = &submittedAt
		if err := tx.Save(&submission).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.SubmissionResult{}).
			Where("submission_id = ? AND superseded = ?", submission.ID, false).
			Update("superseded", true).Error; err != nil {
			return err
		}

		return tx.Create(&result).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FinalSubmitResponse{}, ErrDocumentNotFound
		}
		return dto.FinalSubmitResponse{}, fmt.Errorf("final submit: %w", err)
	}

	publishSubmissionEvent(s.events, s.subject, s.logger, SubmissionEvent{
		SubmissionID: submission.ID,
		AssignmentID: submission.AssignmentID,
		UserID:       submission.UserID,
		Status:       submission.Status,
		OccurredAt:   submittedAt,
	})

	s.logger.Info().Uint("submission_id", submission.ID).Uint("result_id", result.ID).Msg("submission finalised")

	return dto.FinalSubmitResponse{
		Submission: dto.NewSubmissionResponse(submission),
		Result:     dto.NewSubmissionResultResponse(result),
	}, nil
}
