package models

import "time"

// Assignment is a task published to a group that students answer with documents.
type Assignment struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Title              string     `gorm:"size:255;not null" json:"title"`
	Description        string     `gorm:"type:text" json:"description"`
	DueDate            *time.Time `json:"due_date"`
	GroupID            uint       `gorm:"not null;index" json:"group_id"`
	CreatorID          uint       `gorm:"not null;index" json:"creator_id"`
	ContentSource      string     `gorm:"size:16;not null;default:'text'" json:"content_source"`
	OriginalDocumentID *uint      `json:"original_document_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Group              Group      `gorm:"foreignKey:GroupID" json:"-"`
	Creator            User       `gorm:"foreignKey:CreatorID" json:"-"`
}

const (
	// ContentSourceText marks assignments created from pasted text.
	ContentSourceText = "text"
	// ContentSourceUpload marks assignments created from an uploaded file.
	ContentSourceUpload = "upload"
)

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}
