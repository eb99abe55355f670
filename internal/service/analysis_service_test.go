package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/models"
	"github.com/noah-isme/scribe-go-api/pkg/ai"
)

type stubAnalyzer struct {
	outcome ai.AnalysisOutcome
	err     error
	calls   int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ ai.AnalysisInput) (ai.AnalysisOutcome, error) {
	s.calls++
	if s.err != nil {
		return ai.AnalysisOutcome{}, s.err
	}
	return s.outcome, nil
}

type memoryAnalysisRepo struct {
	results  map[uint]models.AnalysisResult
	sections map[uint][]models.AnalysisSection
	nextID   uint
}

func newMemoryAnalysisRepo() *memoryAnalysisRepo {
	return &memoryAnalysisRepo{
		results:  make(map[uint]models.AnalysisResult),
		sections: make(map[uint][]models.AnalysisSection),
		nextID:   1,
	}
}

func (m *memoryAnalysisRepo) CreateResult(_ context.Context, result *models.AnalysisResult, sections []models.AnalysisSection) error {
	result.ID = m.nextID
	m.nextID++
	for i := range sections {
		sections[i].AnalysisID = result.ID
		sections[i].DocumentID = result.DocumentID
	}
	m.results[result.ID] = *result
	m.sections[result.ID] = sections
	return nil
}

func (m *memoryAnalysisRepo) GetLatestByDocument(_ context.Context, documentID uint) (models.AnalysisResult, []models.AnalysisSection, error) {
	var latest models.AnalysisResult
	found := false
	for _, result := range m.results {
		if result.DocumentID != documentID {
			continue
		}
		if !found || result.ID > latest.ID {
			latest = result
			found = true
		}
	}
	if !found {
		return models.AnalysisResult{}, nil, gorm.ErrRecordNotFound
	}
	return latest, m.sections[latest.ID], nil
}

func seedAnalysisDocument(t *testing.T, store *memoryDocumentStore, ownerID uint) models.Document {
	t.Helper()
	document := models.Document{Title: "Essay", Content: "body text", ContentFormat: models.ContentFormatText, OwnerID: ownerID}
	require.NoError(t, store.CreateLineage(context.Background(), &document))
	return document
}

func TestAnalysisServicePersistsOutcome(t *testing.T) {
	store := newMemoryDocumentStore()
	repo := newMemoryAnalysisRepo()
	analyzer := &stubAnalyzer{outcome: ai.AnalysisOutcome{
		OverallScore: 0.82,
		Verdict:      "likely_human",
		Metrics:      map[string]interface{}{"burstiness": 0.7},
		Sections: []ai.SectionFinding{
			{Heading: "Introduction", Score: 0.9, Suggestion: "Tighten the thesis."},
			{Heading: "Conclusion", Score: 0.6, Suggestion: "Restate the argument."},
		},
	}}
	svc := NewAnalysisService(repo, store, newStubPolicy(), analyzer, testLogger())

	document := seedAnalysisDocument(t, store, 7)

	response, err := svc.Analyze(context.Background(), document.ID, 7)
	require.NoError(t, err)
	require.Equal(t, 0.82, response.OverallScore)
	require.Equal(t, "likely_human", response.Verdict)
	require.Len(t, response.Sections, 2)
	require.Equal(t, 1, analyzer.calls)

	stored, sections, err := repo.GetLatestByDocument(context.Background(), document.ID)
	require.NoError(t, err)
	require.Equal(t, document.ID, stored.DocumentID)
	require.NotEmpty(t, stored.Metrics)
	require.Len(t, sections, 2)
	require.Equal(t, stored.ID, sections[0].AnalysisID)
}

func TestAnalysisServiceEvaluatorMayAnalyze(t *testing.T) {
	store := newMemoryDocumentStore()
	repo := newMemoryAnalysisRepo()
	policy := newStubPolicy()
	policy.evaluators[3] = true
	svc := NewAnalysisService(repo, store, policy, &stubAnalyzer{}, testLogger())

	document := seedAnalysisDocument(t, store, 7)

	_, err := svc.Analyze(context.Background(), document.ID, 3)
	require.NoError(t, err)
}

func TestAnalysisServiceOutsiderRejected(t *testing.T) {
	store := newMemoryDocumentStore()
	svc := NewAnalysisService(newMemoryAnalysisRepo(), store, newStubPolicy(), &stubAnalyzer{}, testLogger())

	document := seedAnalysisDocument(t, store, 7)

	_, err := svc.Analyze(context.Background(), document.ID, 9)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAnalysisServiceMissingDocument(t *testing.T) {
	svc := NewAnalysisService(newMemoryAnalysisRepo(), newMemoryDocumentStore(), newStubPolicy(), &stubAnalyzer{}, testLogger())

	_, err := svc.Analyze(context.Background(), 404, 7)
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestAnalysisServiceWithoutAnalyzer(t *testing.T) {
	store := newMemoryDocumentStore()
	svc := NewAnalysisService(newMemoryAnalysisRepo(), store, newStubPolicy(), nil, testLogger())

	document := seedAnalysisDocument(t, store, 7)

	_, err := svc.Analyze(context.Background(), document.ID, 7)
	require.ErrorIs(t, err, ErrAnalyzerUnavailable)
}

func TestAnalysisServiceOracleFailure(t *testing.T) {
	store := newMemoryDocumentStore()
	analyzer := &stubAnalyzer{err: errors.New("model overloaded")}
	svc := NewAnalysisService(newMemoryAnalysisRepo(), store, newStubPolicy(), analyzer, testLogger())

	document := seedAnalysisDocument(t, store, 7)

	_, err := svc.Analyze(context.Background(), document.ID, 7)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnauthorized)
}

func TestAnalysisServiceGetLatestMissing(t *testing.T) {
	svc := NewAnalysisService(newMemoryAnalysisRepo(), newMemoryDocumentStore(), newStubPolicy(), &stubAnalyzer{}, testLogger())

	_, err := svc.GetLatest(context.Background(), 404)
	require.ErrorIs(t, err, ErrAnalysisNotFound)
}
