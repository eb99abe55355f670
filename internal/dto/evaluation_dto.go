package dto

import "github.com/noah-isme/scribe-go-api/internal/models"

// EvaluateRequest records the teacher's verdict on a submission result. The
// target status is explicit so "send back for revision" is expressible.
type EvaluateRequest struct {
	Feedback string `json:"feedback" validate:"omitempty,max=10000"`
	Grade    string `json:"grade" validate:"omitempty,max=32"`
	Status   string `json:"status" validate:"required,oneof=COMPLETED REQUIRES_REVISION"`
}

// EvaluateResponse returns the evaluation together with the submission it moved.
type EvaluateResponse struct {
	Result     SubmissionResultResponse `json:"result"`
	Submission SubmissionResponse       `json:"submission"`
}

// NewEvaluateResponse bundles the two rows touched by an evaluation.
func NewEvaluateResponse(result models.SubmissionResult, submission models.Submission) EvaluateResponse {
	return EvaluateResponse{
		Result:     NewSubmissionResultResponse(result),
		Submission: NewSubmissionResponse(submission),
	}
}
