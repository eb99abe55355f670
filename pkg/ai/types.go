package ai

import "context"

// AnalysisInput contains the document artefacts handed to the analysis oracle.
type AnalysisInput struct {
	Title         string
	Content       string
	ContentFormat string
	Rubric        string
}

// SectionFinding is the oracle's verdict on one portion of the document.
type SectionFinding struct {
	Heading    string                 `json:"heading"`
	Score      float64                `json:"score"`
	Suggestion string                 `json:"suggestion"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// AnalysisOutcome is the structured report returned by the analysis oracle.
type AnalysisOutcome struct {
	OverallScore float64                `json:"overall_score"`
	Verdict      string                 `json:"verdict"`
	Sections     []SectionFinding       `json:"sections,omitempty"`
	Metrics      map[string]interface{} `json:"metrics,omitempty"`
	Raw          map[string]interface{} `json:"raw,omitempty"`
}

// Analyzer describes an AI model capable of reviewing written documents.
type Analyzer interface {
	Analyze(ctx context.Context, input AnalysisInput) (AnalysisOutcome, error)
}
