package dto

import (
	"time"

	"github.com/noah-isme/scribe-go-api/internal/models"
)

// AnalysisSectionResponse serializes one per-section oracle score.
type AnalysisSectionResponse struct {
	Heading    string  `json:"heading"`
	Score      float64 `json:"score"`
	Suggestion string  `json:"suggestion"`
}

// AnalysisResponse serializes a stored text-analysis verdict.
type AnalysisResponse struct {
	ID           uint                      `json:"id"`
	DocumentID   uint                      `json:"document_id"`
	OverallScore float64                   `json:"overall_score"`
	Verdict      string                    `json:"verdict"`
	Sections     []AnalysisSectionResponse `json:"sections"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// NewAnalysisResponse converts analysis rows into a DTO.
func NewAnalysisResponse(result models.AnalysisResult, sections []models.AnalysisSection) AnalysisResponse {
	response := AnalysisResponse{
		ID:           result.ID,
		DocumentID:   result.DocumentID,
		OverallScore: result.OverallScore,
		Verdict:      result.Verdict,
		Sections:     make([]AnalysisSectionResponse, 0, len(sections)),
		CreatedAt:    result.CreatedAt,
	}

	for _, section := range sections {
		response.Sections = append(response.Sections, AnalysisSectionResponse{
			Heading:    section.Heading,
			Score:      section.Score,
			Suggestion: section.Suggestion,
		})
	}

	return response
}
