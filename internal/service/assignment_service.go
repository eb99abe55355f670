package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/dto"
	"github.com/noah-isme/scribe-go-api/internal/models"
	"github.com/noah-isme/scribe-go-api/internal/repository"
)

// AssignmentService manages assignment definitions. Assignments are updated in
// place; only their submissions carry version history.
type AssignmentService interface {
	List(ctx context.Context, filter dto.AssignmentFilter) (dto.AssignmentListResponse, error)
	GetByID(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, payload dto.AssignmentCreateRequest, actorID uint) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, actorID uint) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint, actorID uint) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	policy      AccessPolicy
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignmentRepo repository.AssignmentRepository, policy AccessPolicy, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignmentRepo,
		policy:      policy,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) List(ctx context.Context, filter dto.AssignmentFilter) (dto.AssignmentListResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return dto.AssignmentListResponse{}, err
	}

	repoFilter := repository.AssignmentFilter{
		GroupID:  filter.GroupID,
		Search:   filter.Search,
		Sort:     filter.Sort,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}

	assignments, total, err := s.assignments.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return dto.AssignmentListResponse{}, err
	}

	return dto.AssignmentListResponse{
		Assignments: dto.NewAssignmentResponseSlice(assignments),
		Total:       total,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
	}, nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// Create is restricted to evaluators that belong to the target group.
func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest, actorID uint) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	canEvaluate, err := s.policy.CanEvaluate(ctx, actorID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if !canEvaluate {
		return dto.AssignmentResponse{}, ErrUnauthorized
	}

	member, err := s.policy.IsGroupMember(ctx, actorID, payload.GroupID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if !member {
		return dto.AssignmentResponse{}, ErrUnauthorized
	}

	dueDate, err := parseDueDate(payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	source := payload.ContentSource
	if source == "" {
		source = models.ContentSourceText
	}

	assignment := models.Assignment{
		Title:              payload.Title,
		Description:        payload.Description,
		DueDate:            dueDate,
		GroupID:            payload.GroupID,
		CreatorID:          actorID,
		ContentSource:      source,
		OriginalDocumentID: payload.OriginalDocumentID,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("group_id", assignment.GroupID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, actorID uint) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if err := s.authorizeManage(ctx, assignment, actorID); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.DueDate != nil {
		dueDate, err := parseDueDate(*payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = dueDate
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// Delete cascades to the assignment's submissions and their results.
func (s *assignmentService) Delete(ctx context.Context, id uint, actorID uint) error {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if err := s.authorizeManage(ctx, assignment, actorID); err != nil {
		return err
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")

	return nil
}

func (s *assignmentService) authorizeManage(ctx context.Context, assignment models.Assignment, actorID uint) error {
	if assignment.CreatorID == actorID {
		return nil
	}

	isAdmin, err := s.policy.HasRole(ctx, actorID, models.RoleAdmin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrUnauthorized
	}
	return nil
}

func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
