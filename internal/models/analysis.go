package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisResult stores what the external text-analysis oracle returned for one
// document version. The payload is persisted verbatim and never interpreted here.
type AnalysisResult struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	DocumentID   uint           `gorm:"not null;index" json:"document_id"`
	OverallScore float64        `json:"overall_score"`
	Verdict      string         `gorm:"size:64" json:"verdict"`
	Metrics      datatypes.JSON `json:"metrics"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AnalysisSection is a per-section score within an analysis result.
type AnalysisSection struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	AnalysisID uint           `gorm:"not null;index" json:"analysis_id"`
	DocumentID uint           `gorm:"not null;index" json:"document_id"`
	Heading    string         `gorm:"size:255" json:"heading"`
	Score      float64        `json:"score"`
	Suggestion string         `gorm:"type:text" json:"suggestion"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}
