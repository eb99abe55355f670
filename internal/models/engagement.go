package models

import "time"

// Comment, Feedback and WordSuggestion are owned by collaborating services; the
// rows are modeled here only so lineage deletion can cascade over them.

// Comment is an inline remark on a document version.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	AuthorID   uint      `gorm:"not null" json:"author_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Feedback is a free-form note attached to a document version.
type Feedback struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	AuthorID   uint      `gorm:"not null" json:"author_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// WordSuggestion is a single word-level rewrite proposal from the analysis oracle.
type WordSuggestion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DocumentID  uint      `gorm:"not null;index" json:"document_id"`
	Offset      int       `gorm:"not null" json:"offset"`
	Original    string    `gorm:"size:255" json:"original"`
	Replacement string    `gorm:"size:255" json:"replacement"`
	CreatedAt   time.Time `json:"created_at"`
}
