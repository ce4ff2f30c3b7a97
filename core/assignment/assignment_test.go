package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/assignment"
	"github.com/trezcool/classsync/core/user"
	emailsvc "github.com/trezcool/classsync/services/email"
	inmemdb "github.com/trezcool/classsync/storage/database/inmem"
	testutil "github.com/trezcool/classsync/tests"
)

type fixture struct {
	svc     *assignment.Service
	mailer  *emailsvc.MockService
	teacher user.User
	amy     user.User
	ben     user.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, testutil.Validator())
	mailer := emailsvc.NewMockService(testutil.Config(), testutil.NopLogger{})

	return fixture{
		svc:     assignment.NewService(inmemdb.NewAssignmentRepository(db), usrSvc, mailer, testutil.NopLogger{}, testutil.Validator()),
		mailer:  mailer,
		teacher: testutil.CreateTeacher(t, usrRepo, "Teacher", "teacher"),
		amy:     testutil.CreateUser(t, usrRepo, "Amy", "amy", "amy@test.com", "", user.StudentRoles, true),
		ben:     testutil.CreateStudent(t, usrRepo, "Ben", "ben"),
	}
}

func TestService_CreateMaster(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	deadline := time.Now().Add(time.Hour)

	_, err := f.svc.CreateMaster(ctx, f.amy, assignment.NewMaster{Title: "Essay", Deadline: deadline})
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.svc.CreateMaster(ctx, f.teacher, assignment.NewMaster{Title: "  ", Deadline: deadline})
	assert.Error(t, err)
	assert.Empty(t, f.mailer.Sent())

	m, err := f.svc.CreateMaster(ctx, f.teacher, assignment.NewMaster{Title: " Essay ", Deadline: deadline})
	require.NoError(t, err)
	assert.Equal(t, "Essay", m.Title)
	assert.True(t, m.IsActive)
	assert.Equal(t, time.UTC, m.Deadline.Location())

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "New assignment: Essay", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "Essay")

	masters, err := f.svc.Masters(ctx)
	require.NoError(t, err)
	require.Len(t, masters, 1)
	assert.Equal(t, m.ID, masters[0].ID)
}

func TestService_Submit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	open, err := f.svc.CreateMaster(ctx, f.teacher, assignment.NewMaster{Title: "Essay", Deadline: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	late, err := f.svc.CreateMaster(ctx, f.teacher, assignment.NewMaster{Title: "Old", Deadline: time.Now().Add(-time.Hour)})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, f.teacher, open.ID, assignment.NewSubmission{Content: "x"})
	assert.ErrorIs(t, err, core.ErrForbidden)
	_, err = f.svc.Submit(ctx, f.amy, late.ID, assignment.NewSubmission{Content: "x"})
	assert.ErrorIs(t, err, assignment.ErrDeadlinePassed)
	_, err = f.svc.Submit(ctx, f.amy, "nope", assignment.NewSubmission{Content: "x"})
	assert.True(t, core.IsNotFound(err))

	first, err := f.svc.Submit(ctx, f.amy, open.ID, assignment.NewSubmission{Content: "draft"})
	require.NoError(t, err)
	assert.Equal(t, "Essay", first.Title)
	assert.Equal(t, assignment.StatusSubmitted, first.Status)

	second, err := f.svc.Submit(ctx, f.amy, open.ID, assignment.NewSubmission{Content: "final"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "final", second.Content)

	_, err = f.svc.Submit(ctx, f.ben, open.ID, assignment.NewSubmission{Content: "mine"})
	require.NoError(t, err)

	all, err := f.svc.Submissions(ctx, f.teacher, assignment.SubmissionFilter{MasterID: open.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.svc.Submissions(ctx, f.amy, assignment.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, f.amy.ID, own[0].StudentID)

	_, err = f.svc.Submissions(ctx, f.amy, assignment.SubmissionFilter{StudentID: f.ben.ID})
	assert.ErrorIs(t, err, core.ErrForbidden)

	inactive := false
	_, err = f.svc.UpdateMaster(ctx, f.teacher, open.ID, assignment.UpdateMaster{IsActive: &inactive})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.ben, open.ID, assignment.NewSubmission{Content: "again"})
	assert.ErrorIs(t, err, assignment.ErrMasterInactive)
}

func TestService_GradeAndReply(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	m, err := f.svc.CreateMaster(ctx, f.teacher, assignment.NewMaster{Title: "Essay", Deadline: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	a, err := f.svc.Submit(ctx, f.amy, m.ID, assignment.NewSubmission{Content: "answer"})
	require.NoError(t, err)

	score := 85
	_, err = f.svc.Grade(ctx, f.amy, a.ID, assignment.Grade{Score: &score})
	assert.ErrorIs(t, err, core.ErrForbidden)
	_, err = f.svc.Grade(ctx, f.teacher, a.ID, assignment.Grade{})
	assert.Error(t, err)
	_, err = f.svc.Grade(ctx, f.teacher, "nope", assignment.Grade{Score: &score})
	assert.True(t, core.IsNotFound(err))

	graded, err := f.svc.Grade(ctx, f.teacher, a.ID, assignment.Grade{Score: &score})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusGraded, graded.Status)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 85, *graded.Score)
	require.NotNil(t, graded.GradedAt)

	// announcement, then the grade with the submission attached
	sent := f.mailer.Sent()
	require.Len(t, sent, 2)
	gradeMail := sent[1]
	assert.Equal(t, "amy@test.com", gradeMail.To[0].Address)
	assert.Equal(t, "Graded: Essay", gradeMail.Subject)
	assert.Contains(t, gradeMail.TextContent, "85/100")
	require.Len(t, gradeMail.Attachments, 1)
	assert.Equal(t, "submission.txt", gradeMail.Attachments[0].Filename)
	assert.Equal(t, "YW5zd2Vy", gradeMail.Attachments[0].Content.String()) // base64("answer")

	// students without an email are not notified
	benSub, err := f.svc.Submit(ctx, f.ben, m.ID, assignment.NewSubmission{Content: "mine"})
	require.NoError(t, err)
	_, err = f.svc.Grade(ctx, f.teacher, benSub.ID, assignment.Grade{Score: &score})
	require.NoError(t, err)
	assert.Len(t, f.mailer.Sent(), 2)

	replied, err := f.svc.Reply(ctx, f.teacher, a.ID, assignment.Reply{Reply: " nice work "})
	require.NoError(t, err)
	assert.Equal(t, "nice work", replied.TeacherReply)
	assert.Equal(t, assignment.StatusGraded, replied.Status)

	_, err = f.svc.Submit(ctx, f.amy, m.ID, assignment.NewSubmission{Content: "better"})
	assert.ErrorIs(t, err, assignment.ErrAlreadyGraded)
}
