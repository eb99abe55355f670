package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scribe-go-api/internal/dto"
	"github.com/noah-isme/scribe-go-api/internal/handler"
	"github.com/noah-isme/scribe-go-api/internal/models"
	"github.com/noah-isme/scribe-go-api/internal/service"
)

type mockSubmissionService struct {
	submission dto.SubmissionResponse
	final      dto.FinalSubmitResponse
	err        error
	lastActor  uint
}

func (m *mockSubmissionService) List(_ context.Context, _ dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []dto.SubmissionResponse{m.submission}, nil
}

func (m *mockSubmissionService) GetByID(_ context.Context, _ uint) (dto.SubmissionResponse, error) {
	if m.err != nil {
		return dto.SubmissionResponse{}, m.err
	}
	return m.submission, nil
}

func (m *mockSubmissionService) Submit(_ context.Context, _ dto.SubmissionCreateRequest, actorID uint) (dto.SubmissionResponse, error) {
	m.lastActor = actorID
	if m.err != nil {
		return dto.SubmissionResponse{}, m.err
	}
	return m.submission, nil
}

func (m *mockSubmissionService) Transition(_ context.Context, _ uint, _ dto.SubmissionTransitionRequest, actorID uint) (dto.SubmissionResponse, error) {
	m.lastActor = actorID
	if m.err != nil {
		return dto.SubmissionResponse{}, m.err
	}
	return m.submission, nil
}

func (m *mockSubmissionService) FinalSubmit(_ context.Context, _ uint, _ dto.FinalSubmitRequest, actorID uint) (dto.FinalSubmitResponse, error) {
	m.lastActor = actorID
	if m.err != nil {
		return dto.FinalSubmitResponse{}, m.err
	}
	return m.final, nil
}

type mockEvaluationService struct {
	result dto.SubmissionResultResponse
	err    error
}

func (m *mockEvaluationService) Evaluate(_ context.Context, _ uint, _ dto.EvaluateRequest, _ uint) (dto.EvaluateResponse, error) {
	if m.err != nil {
		return dto.EvaluateResponse{}, m.err
	}
	return dto.EvaluateResponse{Result: m.result}, nil
}

func (m *mockEvaluationService) GetCurrent(_ context.Context, _ uint) (dto.SubmissionResultResponse, error) {
	if m.err != nil {
		return dto.SubmissionResultResponse{}, m.err
	}
	return m.result, nil
}

func (m *mockEvaluationService) History(_ context.Context, _ uint) ([]dto.SubmissionResultResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []dto.SubmissionResultResponse{m.result}, nil
}

func newSubmissionApp(subs *mockSubmissionService, evals *mockEvaluationService, actorID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", actorID)
		return c.Next()
	})
	logger := zerolog.New(bytes.NewBuffer(nil))
	handler.NewSubmissionHandler(subs, evals, logger).Register(app.Group("/api/submissions"))
	return app
}

func decodeResponse(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestSubmissionHandler_SubmitSuccess(t *testing.T) {
	subs := &mockSubmissionService{submission: dto.SubmissionResponse{ID: 1, Status: models.SubmissionStatusDraft}}
	app := newSubmissionApp(subs, &mockEvaluationService{}, 7)

	body := bytes.NewBufferString(`{"assignment_id": 2, "document_id": 3}`)
	req := httptest.NewRequest(http.MethodPost, "/api/submissions", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(7), subs.lastActor)

	var payload struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, models.SubmissionStatusDraft, payload.Data.Status)
}

func TestSubmissionHandler_TransitionUnauthorized(t *testing.T) {
	subs := &mockSubmissionService{err: service.ErrUnauthorized}
	app := newSubmissionApp(subs, &mockEvaluationService{}, 7)

	body := bytes.NewBufferString(`{"status": "GRADED"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/submissions/1/status", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSubmissionHandler_TransitionInvalidStatus(t *testing.T) {
	subs := &mockSubmissionService{err: service.ErrInvalidStatus}
	app := newSubmissionApp(subs, &mockEvaluationService{}, 7)

	body := bytes.NewBufferString(`{"status": "ARCHIVED"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/submissions/1/status", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSubmissionHandler_GetMissing(t *testing.T) {
	subs := &mockSubmissionService{err: service.ErrSubmissionNotFound}
	app := newSubmissionApp(subs, &mockEvaluationService{}, 7)

	req := httptest.NewRequest(http.MethodGet, "/api/submissions/42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmissionHandler_CurrentResult(t *testing.T) {
	evals := &mockEvaluationService{result: dto.SubmissionResultResponse{ID: 5, Status: models.ResultStatusPending}}
	app := newSubmissionApp(&mockSubmissionService{}, evals, 7)

	req := httptest.NewRequest(http.MethodGet, "/api/submissions/1/result", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                         `json:"success"`
		Data    dto.SubmissionResultResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, models.ResultStatusPending, payload.Data.Status)
}
