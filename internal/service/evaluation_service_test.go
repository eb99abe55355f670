package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scribe-go-api/internal/dto"
	"github.com/noah-isme/scribe-go-api/internal/models"
	"github.com/noah-isme/scribe-go-api/internal/repository"
)

type evaluationEnv struct {
	*submissionEnv
	eval EvaluationService
}

func newEvaluationEnv(t *testing.T) *evaluationEnv {
	t.Helper()

	env := newSubmissionEnv(t)
	eval := NewEvaluationService(
		repository.NewSubmissionResultRepository(env.db),
		env.policy,
		validator.New(validator.WithRequiredStructEnabled()),
		env.events,
		"scribe.submissions",
		testLogger(),
	)

	return &evaluationEnv{submissionEnv: env, eval: eval}
}

// finalise walks a fresh submission through draft and final submit, returning
// the pending result ready for evaluation.
func (e *evaluationEnv) finalise(t *testing.T, teacher, student models.User) (dto.SubmissionResponse, dto.SubmissionResultResponse) {
	t.Helper()

	assignment := e.seedAssignment(t, teacher.ID, nil)
	document := e.seedDocument(t, student.ID)

	created, err := e.svc.Submit(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: assignment.ID,
		DocumentID:   document.ID,
	}, student.ID)
	require.NoError(t, err)

	response, err := e.svc.FinalSubmit(context.Background(), created.ID, dto.FinalSubmitRequest{DocumentID: document.ID}, student.ID)
	require.NoError(t, err)

	return response.Submission, response.Result
}

func TestEvaluateCompletedGradesSubmission(t *testing.T) {
	env := newEvaluationEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	submission, result := env.finalise(t, teacher, student)

	evaluated, err := env.eval.Evaluate(context.Background(), result.ID, dto.EvaluateRequest{
		Feedback: "Strong argument throughout.",
		Grade:    "A",
		Status:   models.ResultStatusCompleted,
	}, teacher.ID)
	require.NoError(t, err)
	require.Equal(t, models.ResultStatusCompleted, evaluated.Result.Status)
	require.Equal(t, "A", evaluated.Result.Grade)
	require.NotNil(t, evaluated.Result.EvaluatedAt)
	require.Equal(t, models.SubmissionStatusGraded, evaluated.Submission.Status)

	var stored models.Submission
	require.NoError(t, env.db.First(&stored, submission.ID).Error)
	require.Equal(t, models.SubmissionStatusGraded, stored.Status)
}

func TestEvaluateRequiresRevisionReturnsSubmission(t *testing.T) {
	env := newEvaluationEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	submission, result := env.finalise(t, teacher, student)

	evaluated, err := env.eval.Evaluate(context.Background(), result.ID, dto.EvaluateRequest{
		Feedback: "Needs a clearer conclusion.",
		Status:   models.ResultStatusRequiresRevision,
	}, teacher.ID)
	require.NoError(t, err)
	require.Equal(t, models.ResultStatusRequiresRevision, evaluated.Result.Status)
	require.Equal(t, models.SubmissionStatusReturned, evaluated.Submission.Status)

	var stored models.Submission
	require.NoError(t, env.db.First(&stored, submission.ID).Error)
	require.Equal(t, models.SubmissionStatusReturned, stored.Status)
}

func TestEvaluateCoTeacherAllowed(t *testing.T) {
	env := newEvaluationEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	coTeacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	submission, result := env.finalise(t, teacher, student)

	var stored models.Submission
	require.NoError(t, env.db.First(&stored, submission.ID).Error)
	var assignment models.Assignment
	require.NoError(t, env.db.First(&assignment, stored.AssignmentID).Error)
	env.policy.members[assignment.GroupID] = []uint{coTeacher.ID}

	_, err := env.eval.Evaluate(context.Background(), result.ID, dto.EvaluateRequest{
		Feedback: "Well structured.",
		Status:   models.ResultStatusCompleted,
	}, coTeacher.ID)
	require.NoError(t, err)
}

func TestEvaluateStudentGroupMemberRejected(t *testing.T) {
	env := newEvaluationEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	submission, result := env.finalise(t, teacher, student)

	// Group membership alone is not enough: the submitter is enrolled in the
	// class, but only grading roles may evaluate.
	var stored models.Submission
	require.NoError(t, env.db.First(&stored, submission.ID).Error)
	var assignment models.Assignment
	require.NoError(t, env.db.First(&assignment, stored.AssignmentID).Error)
	env.policy.members[assignment.GroupID] = []uint{student.ID}

	_, err := env.eval.Evaluate(context.Background(), result.ID, dto.EvaluateRequest{
		Feedback: "Looks great to me.",
		Status:   models.ResultStatusCompleted,
	}, student.ID)
	require.ErrorIs(t, err, ErrUnauthorized)

	var unchanged models.Submission
	require.NoError(t, env.db.First(&unchanged, submission.ID).Error)
	require.Equal(t, models.SubmissionStatusSubmitted, unchanged.Status)
}

func TestEvaluateOutsiderRejected(t *testing.T) {
	env := newEvaluationEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	outsider := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	_, result := env.finalise(t, teacher, student)

	_, err := env.eval.Evaluate(context.Background(), result.ID, dto.EvaluateRequest{
		Feedback: "Should not land.",
		Status:   models.ResultStatusCompleted,
	}, outsider.ID)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestEvaluateRejectsPendingStatus(t *testing.T) {
	env := newEvaluationEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	_, result := env.finalise(t, teacher, student)

	_, err := env.eval.Evaluate(context.Background(), result.ID, dto.EvaluateRequest{
		Feedback: "Back to pending.",
		Status:   models.ResultStatusPending,
	}, teacher.ID)
	require.Error(t, err)
}

func TestEvaluateSanitizesFeedback(t *testing.T) {
	env := newEvaluationEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	_, result := env.finalise(t, teacher, student)

	evaluated, err := env.eval.Evaluate(context.Background(), result.ID, dto.EvaluateRequest{
		Feedback: `Good work<script>alert("x")</script>`,
		Status:   models.ResultStatusCompleted,
	}, teacher.ID)
	require.NoError(t, err)
	require.NotContains(t, evaluated.Result.Feedback, "script")
	require.Contains(t, evaluated.Result.Feedback, "Good work")
}

func TestEvaluationGetCurrentTracksResubmission(t *testing.T) {
	env := newEvaluationEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	submission, result := env.finalise(t, teacher, student)

	_, err := env.eval.Evaluate(context.Background(), result.ID, dto.EvaluateRequest{
		Feedback: "Revise the intro.",
		Status:   models.ResultStatusRequiresRevision,
	}, teacher.ID)
	require.NoError(t, err)

	revised := env.seedDocument(t, student.ID)
	_, err = env.svc.FinalSubmit(context.Background(), submission.ID, dto.FinalSubmitRequest{DocumentID: revised.ID}, student.ID)
	require.NoError(t, err)

	current, err := env.eval.GetCurrent(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.ResultStatusPending, current.Status)
	require.False(t, current.Superseded)
	require.NotEqual(t, result.ID, current.ID)

	history, err := env.eval.History(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestEvaluationGetCurrentMissing(t *testing.T) {
	env := newEvaluationEnv(t)

	_, err := env.eval.GetCurrent(context.Background(), 404)
	require.ErrorIs(t, err, ErrResultNotFound)
}
