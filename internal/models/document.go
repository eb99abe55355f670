package models

import "time"

// Document is one immutable version in a lineage. Content never changes after
// creation; editing a document creates a new row and flips IsLatest on the old one.
type Document struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Content        string    `gorm:"type:text" json:"content"`
	ContentFormat  string    `gorm:"size:16;not null;default:'text'" json:"content_format"`
	OwnerID        uint      `gorm:"not null;index" json:"owner_id"`
	GroupID        *uint     `gorm:"index" json:"group_id"`
	VersionNumber  int       `gorm:"not null;default:1" json:"version_number"`
	IsLatest       bool      `gorm:"not null;default:true;index" json:"is_latest"`
	RootDocumentID *uint     `gorm:"index" json:"root_document_id"`
	AssignmentID   *uint     `gorm:"index" json:"assignment_id"`
	SubmissionID   *uint     `gorm:"index" json:"submission_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Owner          User      `gorm:"foreignKey:OwnerID" json:"-"`
}

const (
	// ContentFormatText marks plain text content.
	ContentFormatText = "text"
	// ContentFormatHTML marks sanitised HTML content.
	ContentFormatHTML = "html"
)

// Root returns the lineage root identifier, falling back to the document's own ID
// for first versions created before the root pointer is materialised.
func (d Document) Root() uint {
	if d.RootDocumentID != nil {
		return *d.RootDocumentID
	}
	return d.ID
}

// VersionEntry records a document's place in its lineage. One row exists per
// version, including the first. The composite unique index is what turns two
// concurrent appends of the same version number into a constraint violation
// instead of two latest rows.
type VersionEntry struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	RootDocumentID      uint      `gorm:"not null;uniqueIndex:idx_version_entries_root_version" json:"root_document_id"`
	VersionedDocumentID uint      `gorm:"not null;uniqueIndex" json:"versioned_document_id"`
	VersionNumber       int       `gorm:"not null;uniqueIndex:idx_version_entries_root_version" json:"version_number"`
	CreatedAt           time.Time `json:"created_at"`
}
