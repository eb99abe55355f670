package dto

import (
	"time"

	"github.com/noah-isme/scribe-go-api/internal/models"
)

// DocumentCreateRequest starts a new lineage from pasted content.
type DocumentCreateRequest struct {
	Title         string `json:"title" validate:"required,min=1,max=255"`
	Content       string `json:"content" validate:"required"`
	ContentFormat string `json:"content_format" validate:"omitempty,oneof=text html"`
	GroupID       *uint  `json:"group_id" validate:"omitempty,gt=0"`
}

// DocumentIngestRequest starts a new lineage from an uploaded file.
type DocumentIngestRequest struct {
	Filename string
	Title    string
	GroupID  *uint
	Data     []byte
}

// DocumentUpdateRequest appends a new version; content is never edited in place.
type DocumentUpdateRequest struct {
	Title   string `json:"title" validate:"omitempty,min=1,max=255"`
	Content string `json:"content" validate:"required"`
}

// DocumentFilter describes query string filters for listing documents.
type DocumentFilter struct {
	OwnerID  *uint  `query:"owner_id"`
	GroupID  *uint  `query:"group_id"`
	Search   string `query:"search"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// DocumentResponse is returned to API clients when viewing documents.
type DocumentResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	ContentFormat  string    `json:"content_format"`
	OwnerID        uint      `json:"owner_id"`
	GroupID        *uint     `json:"group_id"`
	VersionNumber  int       `json:"version_number"`
	IsLatest       bool      `json:"is_latest"`
	RootDocumentID *uint     `json:"root_document_id"`
	AssignmentID   *uint     `json:"assignment_id"`
	SubmissionID   *uint     `json:"submission_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DocumentListResponse wraps a page of latest-version documents.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	PageSize  int                `json:"page_size"`
}

// DocumentVersionResponse summarizes one version in a lineage history view.
type DocumentVersionResponse struct {
	ID            uint      `json:"id"`
	VersionNumber int       `json:"version_number"`
	IsLatest      bool      `json:"is_latest"`
	Title         string    `json:"title"`
	AuthorID      uint      `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewDocumentResponse converts a Document model into a DTO.
func NewDocumentResponse(model models.Document) DocumentResponse {
	return DocumentResponse{
		ID:             model.ID,
		Title:          model.Title,
		Content:        model.Content,
		ContentFormat:  model.ContentFormat,
		OwnerID:        model.OwnerID,
		GroupID:        model.GroupID,
		VersionNumber:  model.VersionNumber,
		IsLatest:       model.IsLatest,
		RootDocumentID: model.RootDocumentID,
		AssignmentID:   model.AssignmentID,
		SubmissionID:   model.SubmissionID,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

// NewDocumentResponseSlice converts document models into DTOs.
func NewDocumentResponseSlice(documents []models.Document) []DocumentResponse {
	responses := make([]DocumentResponse, 0, len(documents))
	for _, document := range documents {
		responses = append(responses, NewDocumentResponse(document))
	}

	return responses
}

// NewDocumentVersionResponse converts one lineage member into a history entry.
func NewDocumentVersionResponse(model models.Document) DocumentVersionResponse {
	return DocumentVersionResponse{
		ID:            model.ID,
		VersionNumber: model.VersionNumber,
		IsLatest:      model.IsLatest,
		Title:         model.Title,
		AuthorID:      model.OwnerID,
		AuthorName:    model.Owner.Name,
		CreatedAt:     model.CreatedAt,
	}
}
