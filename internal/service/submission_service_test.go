package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/dto"
	"github.com/noah-isme/scribe-go-api/internal/models"
	"github.com/noah-isme/scribe-go-api/internal/repository"
)

// The final-submit path commits several rows in one transaction, so these tests
// run against a real database instead of map-backed fakes.
func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.Document{},
		&models.VersionEntry{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionResult{},
		&models.AnalysisResult{},
		&models.AnalysisSection{},
		&models.Comment{},
		&models.Feedback{},
		&models.WordSuggestion{},
	))

	return db
}

type submissionEnv struct {
	db     *gorm.DB
	svc    SubmissionService
	policy *stubPolicy
	events *capturePublisher
	subs   repository.SubmissionRepository
}

func newSubmissionEnv(t *testing.T) *submissionEnv {
	t.Helper()

	db := setupServiceDB(t)
	policy := newStubPolicy()
	events := &capturePublisher{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	subs := repository.NewSubmissionRepository(db)
	svc := NewSubmissionService(
		subs,
		repository.NewAssignmentRepository(db),
		repository.NewDocumentRepository(db),
		policy,
		validate,
		events,
		"scribe.submissions",
		testLogger(),
	)

	return &submissionEnv{db: db, svc: svc, policy: policy, events: events, subs: subs}
}

func (e *submissionEnv) seedUser(t *testing.T, role string) models.User {
	t.Helper()
	user := models.User{Name: "user", Email: fmt.Sprintf("u%d@example.com", time.Now().UnixNano()), Role: role}
	require.NoError(t, e.db.Create(&user).Error)
	e.policy.roles[user.ID] = role
	e.policy.evaluators[user.ID] = user.CanEvaluate()
	return user
}

func (e *submissionEnv) seedAssignment(t *testing.T, creatorID uint, due *time.Time) models.Assignment {
	t.Helper()
	group := models.Group{Name: "class", OwnerID: creatorID}
	require.NoError(t, e.db.Create(&group).Error)
	assignment := models.Assignment{Title: "Essay", GroupID: group.ID, CreatorID: creatorID, DueDate: due, ContentSource: models.ContentSourceText}
	require.NoError(t, e.db.Create(&assignment).Error)
	return assignment
}

func (e *submissionEnv) seedDocument(t *testing.T, ownerID uint) models.Document {
	t.Helper()
	document := models.Document{Title: "Draft", Content: "text", ContentFormat: models.ContentFormatText, OwnerID: ownerID}
	chain := repository.NewVersionChainRepository(e.db)
	require.NoError(t, chain.CreateLineage(context.Background(), &document))
	e.policy.owners[document.ID] = ownerID
	return document
}

func TestSubmissionSubmitCreatesDraft(t *testing.T) {
	env := newSubmissionEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	assignment := env.seedAssignment(t, teacher.ID, nil)
	document := env.seedDocument(t, student.ID)

	created, err := env.svc.Submit(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: assignment.ID,
		DocumentID:   document.ID,
	}, student.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusDraft, created.Status)
	require.Equal(t, document.ID, created.DocumentID)
	require.NotNil(t, created.SubmittedAt)
}

func TestSubmissionSubmitPastDue(t *testing.T) {
	env := newSubmissionEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	due := time.Now().Add(-time.Hour)
	assignment := env.seedAssignment(t, teacher.ID, &due)
	document := env.seedDocument(t, student.ID)

	_, err := env.svc.Submit(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: assignment.ID,
		DocumentID:   document.ID,
	}, student.ID)
	require.ErrorIs(t, err, ErrAssignmentPastDue)
}

func TestSubmissionSubmitRequiresDocumentOwner(t *testing.T) {
	env := newSubmissionEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	other := env.seedUser(t, models.RoleStudent)
	assignment := env.seedAssignment(t, teacher.ID, nil)
	document := env.seedDocument(t, other.ID)

	_, err := env.svc.Submit(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: assignment.ID,
		DocumentID:   document.ID,
	}, student.ID)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestSubmissionResubmitKeepsOneRowPerStudent(t *testing.T) {
	env := newSubmissionEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	assignment := env.seedAssignment(t, teacher.ID, nil)
	first := env.seedDocument(t, student.ID)
	second := env.seedDocument(t, student.ID)

	created, err := env.svc.Submit(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: assignment.ID,
		DocumentID:   first.ID,
	}, student.ID)
	require.NoError(t, err)

	resubmitted, err := env.svc.Submit(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: assignment.ID,
		DocumentID:   second.ID,
	}, student.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, resubmitted.ID)
	require.Equal(t, second.ID, resubmitted.DocumentID)
	require.Equal(t, models.SubmissionStatusDraft, resubmitted.Status)

	var count int64
	require.NoError(t, env.db.Model(&models.Submission{}).
		Where("assignment_id = ? AND user_id = ?", assignment.ID, student.ID).
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSubmissionTransitionGuards(t *testing.T) {
	env := newSubmissionEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	assignment := env.seedAssignment(t, teacher.ID, nil)
	document := env.seedDocument(t, student.ID)

	created, err := env.svc.Submit(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: assignment.ID,
		DocumentID:   document.ID,
	}, student.ID)
	require.NoError(t, err)

	// A student cannot grade their own work.
	_, err = env.svc.Transition(context.Background(), created.ID, dto.SubmissionTransitionRequest{Status: models.SubmissionStatusGraded}, student.ID)
	require.ErrorIs(t, err, ErrUnauthorized)

	// A teacher cannot submit on the student's behalf.
	_, err = env.svc.Transition(context.Background(), created.ID, dto.SubmissionTransitionRequest{Status: models.SubmissionStatusSubmitted}, teacher.ID)
	require.ErrorIs(t, err, ErrUnauthorized)

	// DRAFT is only reachable through resubmission.
	_, err = env.svc.Transition(context.Background(), created.ID, dto.SubmissionTransitionRequest{Status: models.SubmissionStatusDraft}, student.ID)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.svc.Transition(context.Background(), created.ID, dto.SubmissionTransitionRequest{Status: "ARCHIVED"}, student.ID)
	require.Error(t, err)
}

func TestSubmissionTransitionSubmitted(t *testing.T) {
	env := newSubmissionEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	assignment := env.seedAssignment(t, teacher.ID, nil)
	document := env.seedDocument(t, student.ID)

	created, err := env.svc.Submit(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: assignment.ID,
		DocumentID:   document.ID,
	}, student.ID)
	require.NoError(t, err)

	submitted, err := env.svc.Transition(context.Background(), created.ID, dto.SubmissionTransitionRequest{Status: models.SubmissionStatusSubmitted}, student.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	require.Equal(t, 1, env.events.count())
}

func TestFinalSubmitCreatesPendingResult(t *testing.T) {
	env := newSubmissionEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	assignment := env.seedAssignment(t, teacher.ID, nil)
	document := env.seedDocument(t, student.ID)

	created, err := env.svc.Submit(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: assignment.ID,
		DocumentID:   document.ID,
	}, student.ID)
	require.NoError(t, err)

	response, err := env.svc.FinalSubmit(context.Background(), created.ID, dto.FinalSubmitRequest{DocumentID: document.ID}, student.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, response.Submission.Status)
	require.Equal(t, models.ResultStatusPending, response.Result.Status)
	require.Equal(t, teacher.ID, response.Result.TeacherID)

	var linked models.Document
	require.NoError(t, env.db.First(&linked, document.ID).Error)
	require.NotNil(t, linked.SubmissionID)
	require.Equal(t, created.ID, *linked.SubmissionID)
	require.NotNil(t, linked.AssignmentID)
	require.Equal(t, assignment.ID, *linked.AssignmentID)
}

func TestFinalSubmitSupersedesPreviousResult(t *testing.T) {
	env := newSubmissionEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	assignment := env.seedAssignment(t, teacher.ID, nil)
	first := env.seedDocument(t, student.ID)
	second := env.seedDocument(t, student.ID)

	created, err := env.svc.Submit(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: assignment.ID,
		DocumentID:   first.ID,
	}, student.ID)
	require.NoError(t, err)

	_, err = env.svc.FinalSubmit(context.Background(), created.ID, dto.FinalSubmitRequest{DocumentID: first.ID}, student.ID)
	require.NoError(t, err)

	_, err = env.svc.FinalSubmit(context.Background(), created.ID, dto.FinalSubmitRequest{DocumentID: second.ID}, student.ID)
	require.NoError(t, err)

	var current int64
	require.NoError(t, env.db.Model(&models.SubmissionResult{}).
		Where("submission_id = ? AND superseded = ?", created.ID, false).
		Count(&current).Error)
	require.Equal(t, int64(1), current)

	var total int64
	require.NoError(t, env.db.Model(&models.SubmissionResult{}).
		Where("submission_id = ?", created.ID).
		Count(&total).Error)
	require.Equal(t, int64(2), total)
}

func TestFinalSubmitRequiresSubmitter(t *testing.T) {
	env := newSubmissionEnv(t)
	teacher := env.seedUser(t, models.RoleTeacher)
	student := env.seedUser(t, models.RoleStudent)
	assignment := env.seedAssignment(t, teacher.ID, nil)
	document := env.seedDocument(t, student.ID)

	created, err := env.svc.Submit(context.Background(), dto.SubmissionCreateRequest{
		AssignmentID: assignment.ID,
		DocumentID:   document.ID,
	}, student.ID)
	require.NoError(t, err)

	_, err = env.svc.FinalSubmit(context.Background(), created.ID, dto.FinalSubmitRequest{DocumentID: document.ID}, teacher.ID)
	require.ErrorIs(t, err, ErrUnauthorized)
}
