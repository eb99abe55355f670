package ai

import (
	"context"
	"fmt"
)

// AnthropicConfig placeholder for anthropic integration configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicAnalyzer is a stub implementation that can be expanded once the SDK is available.
type AnthropicAnalyzer struct{}

// NewAnthropicAnalyzer constructs a new stub analyzer.
func NewAnthropicAnalyzer(cfg AnthropicConfig) (*AnthropicAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicAnalyzer{}, nil
}

// Analyze is not yet implemented for Anthropic models.
func (a *AnthropicAnalyzer) Analyze(ctx context.Context, input AnalysisInput) (AnalysisOutcome, error) {
	return AnalysisOutcome{}, fmt.Errorf("anthropic analyzer not implemented")
}
