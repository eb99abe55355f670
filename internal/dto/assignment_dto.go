package dto

import (
	"time"

	"github.com/noah-isme/scribe-go-api/internal/models"
)

// AssignmentCreateRequest describes the payload for publishing an assignment.
type AssignmentCreateRequest struct {
	Title              string `json:"title" validate:"required,min=1,max=255"`
	Description        string `json:"description" validate:"omitempty"`
	DueDate            string `json:"due_date" validate:"omitempty"`
	GroupID            uint   `json:"group_id" validate:"required,gt=0"`
	ContentSource      string `json:"content_source" validate:"omitempty,oneof=text upload"`
	OriginalDocumentID *uint  `json:"original_document_id" validate:"omitempty,gt=0"`
}

// AssignmentUpdateRequest updates an assignment in place.
type AssignmentUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
}

// AssignmentFilter describes query string filters for listing assignments.
type AssignmentFilter struct {
	GroupID  *uint  `query:"group_id"`
	Search   string `query:"search"`
	Sort     string `query:"sort"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID                 uint       `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	DueDate            *time.Time `json:"due_date"`
	GroupID            uint       `json:"group_id"`
	CreatorID          uint       `json:"creator_id"`
	ContentSource      string     `json:"content_source"`
	OriginalDocumentID *uint      `json:"original_document_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// AssignmentListResponse wraps a page of assignments.
type AssignmentListResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                 model.ID,
		Title:              model.Title,
		Description:        model.Description,
		DueDate:            model.DueDate,
		GroupID:            model.GroupID,
		CreatorID:          model.CreatorID,
		ContentSource:      model.ContentSource,
		OriginalDocumentID: model.OriginalDocumentID,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
