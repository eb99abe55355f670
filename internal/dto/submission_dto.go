package dto

import (
	"time"

	"github.com/noah-isme/scribe-go-api/internal/models"
)

// SubmissionCreateRequest upserts a draft submission for an assignment.
type SubmissionCreateRequest struct {
	AssignmentID uint `json:"assignment_id" validate:"required,gt=0"`
	DocumentID   uint `json:"document_id" validate:"required,gt=0"`
}

// SubmissionTransitionRequest moves a submission to a new status.
type SubmissionTransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// FinalSubmitRequest finalises an attempt with the given document version.
type FinalSubmitRequest struct {
	DocumentID uint `json:"document_id" validate:"required,gt=0"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	UserID       *uint   `query:"user_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=DRAFT SUBMITTED GRADED RETURNED"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint           `json:"id"`
	AssignmentID uint           `json:"assignment_id"`
	UserID       uint           `json:"user_id"`
	DocumentID   uint           `json:"document_id"`
	Status       string         `json:"status"`
	SubmittedAt  *time.Time     `json:"submitted_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Assignment   AssignmentLite `json:"assignment"`
	User         UserLite       `json:"user"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID      uint       `json:"id"`
	Title   string     `json:"title"`
	DueDate *time.Time `json:"due_date"`
}

// UserLite summarizes a user without exposing full profile data.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubmissionResultResponse serializes one evaluation record.
type SubmissionResultResponse struct {
	ID           uint       `json:"id"`
	SubmissionID uint       `json:"submission_id"`
	DocumentID   uint       `json:"document_id"`
	TeacherID    uint       `json:"teacher_id"`
	Feedback     string     `json:"feedback"`
	Grade        string     `json:"grade"`
	Status       string     `json:"status"`
	Superseded   bool       `json:"superseded"`
	EvaluatedAt  *time.Time `json:"evaluated_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FinalSubmitResponse returns both rows touched by a final submission.
type FinalSubmitResponse struct {
	Submission SubmissionResponse       `json:"submission"`
	Result     SubmissionResultResponse `json:"result"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		UserID:       model.UserID,
		DocumentID:   model.DocumentID,
		Status:       model.Status,
		SubmittedAt:  model.SubmittedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			DueDate: model.Assignment.DueDate,
		}
	}

	if model.User.ID != 0 {
		response.User = UserLite{
			ID:    model.User.ID,
			Name:  model.User.Name,
			Email: model.User.Email,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

// NewSubmissionResultResponse converts a SubmissionResult model into a DTO.
func NewSubmissionResultResponse(model models.SubmissionResult) SubmissionResultResponse {
	return SubmissionResultResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		DocumentID:   model.DocumentID,
		TeacherID:    model.TeacherID,
		Feedback:     model.Feedback,
		Grade:        model.Grade,
		Status:       model.Status,
		Superseded:   model.Superseded,
		EvaluatedAt:  model.EvaluatedAt,
		CreatedAt:    model.CreatedAt,
	}
}
