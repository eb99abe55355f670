package models

import "time"

// Submission is a student's attempt at an assignment. It always points at the
// document version currently representing the attempt.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_submissions_assignment_user" json:"assignment_id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_submissions_assignment_user" json:"user_id"`
	DocumentID   uint       `gorm:"not null;index" json:"document_id"`
	Status       string     `gorm:"size:32;not null;default:'DRAFT'" json:"status"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User         User       `gorm:"foreignKey:UserID" json:"-"`
}

const (
	// SubmissionStatusDraft indicates work in progress, visible only to the student.
	SubmissionStatusDraft = "DRAFT"
	// SubmissionStatusSubmitted indicates the student finalised the attempt.
	SubmissionStatusSubmitted = "SUBMITTED"
	// SubmissionStatusGraded is the terminal state after a completed evaluation.
	SubmissionStatusGraded = "GRADED"
	// SubmissionStatusReturned means the teacher sent the work back for revision.
	SubmissionStatusReturned = "RETURNED"
)

// ValidSubmissionStatus reports whether the value is one of the modeled states.
func ValidSubmissionStatus(status string) bool {
	switch status {
	case SubmissionStatusDraft, SubmissionStatusSubmitted, SubmissionStatusGraded, SubmissionStatusReturned:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the submission reached an evaluation exit state.
func (s Submission) IsTerminal() bool {
	return s.Status == SubmissionStatusGraded || s.Status == SubmissionStatusReturned
}

// SubmissionResult is the teacher-authored evaluation attached to a finally
// submitted attempt. A final submit supersedes older results so that at most one
// row per submission has Superseded=false.
type SubmissionResult struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SubmissionID uint       `gorm:"not null;index" json:"submission_id"`
	DocumentID   uint       `gorm:"not null" json:"document_id"`
	TeacherID    uint       `gorm:"not null" json:"teacher_id"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	Grade        string     `gorm:"size:32" json:"grade"`
	Status       string     `gorm:"size:32;not null;default:'PENDING'" json:"status"`
	Superseded   bool       `gorm:"not null;default:false;index" json:"superseded"`
	EvaluatedAt  *time.Time `json:"evaluated_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Submission   Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

const (
	// ResultStatusPending means the submission awaits evaluation.
	ResultStatusPending = "PENDING"
	// ResultStatusCompleted means the teacher finished grading.
	ResultStatusCompleted = "COMPLETED"
	// ResultStatusRequiresRevision sends the submission back to the student.
	ResultStatusRequiresRevision = "REQUIRES_REVISION"
)
