package assignment

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/user"
)

var (
	ErrMasterNotFound     = core.NewNotFoundError("assignment")
	ErrSubmissionNotFound = core.NewNotFoundError("submission")
	ErrMasterInactive     = errors.New("this assignment is closed")
	ErrDeadlinePassed     = errors.New("the deadline for this assignment has passed")
	ErrAlreadyGraded      = errors.New("this submission was already graded")
)

type (
	Repository interface {
		CreateMaster(ctx context.Context, m Master) (Master, error)
		// QueryMasters returns all masters, newest first.
		QueryMasters(ctx context.Context) ([]Master, error)
		GetMaster(ctx context.Context, id string) (Master, error)
		UpdateMaster(ctx context.Context, m Master) (Master, error)
		// SaveSubmission inserts or replaces the submission of a student to a master.
		SaveSubmission(ctx context.Context, a Assignment) (Assignment, error)
		GetSubmission(ctx context.Context, id string) (Assignment, error)
		FindSubmission(ctx context.Context, masterID, studentID string) (a Assignment, found bool, err error)
		// QuerySubmissions returns the matching submissions, latest first.
		QuerySubmissions(ctx context.Context, filter SubmissionFilter) ([]Assignment, error)
		UpdateSubmission(ctx context.Context, a Assignment) (Assignment, error)
	}

	StudentLister interface {
		Students(ctx context.Context) ([]user.User, error)
	}

	Service struct {
		repo     Repository
		students StudentLister
		mailer   core.EmailService
		logger   core.Logger
		validate *validator.Validate
		now      func() time.Time
	}
)

func NewService(repo Repository, students StudentLister, mailer core.EmailService, logger core.Logger, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		students: students,
		mailer:   mailer,
		logger:   logger,
		validate: validate,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (svc *Service) CreateMaster(ctx context.Context, actor user.User, nm NewMaster) (Master, error) {
	if !actor.Can(user.ActionManageAssignments) {
		return Master{}, core.ErrForbidden
	}
	nm.Title = core.CleanString(nm.Title)
	if err := svc.validate.Struct(nm); err != nil {
		return Master{}, err
	}

	m, err := svc.repo.CreateMaster(ctx, Master{
		ID:        uuid.New().String(),
		Title:     nm.Title,
		Deadline:  nm.Deadline.UTC(),
		CreatedAt: svc.now(),
		IsActive:  true,
	})
	if err != nil {
		return Master{}, err
	}
	svc.announce(ctx, m)
	return m, nil
}

func (svc *Service) announce(ctx context.Context, m Master) {
	if svc.mailer == nil {
		return
	}
	students, err := svc.students.Students(ctx)
	if err != nil {
		svc.logger.Warn("assignment: listing students for announcement", err)
		return
	}
	var msgs []*core.EmailMessage
	for _, s := range students {
		if s.Email == "" {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: s.Name, Address: s.Email}},
			Subject:      "New assignment: " + m.Title,
			TemplateName: "assignment_created",
			TemplateData: map[string]interface{}{"Name": s.Name, "Title": m.Title, "Deadline": m.Deadline},
		})
	}
	if len(msgs) > 0 {
		svc.mailer.SendMessages(msgs...)
	}
}

func (svc *Service) Masters(ctx context.Context) ([]Master, error) {
	return svc.repo.QueryMasters(ctx)
}

func (svc *Service) GetMaster(ctx context.Context, id string) (Master, error) {
	return svc.repo.GetMaster(ctx, id)
}

func (svc *Service) UpdateMaster(ctx context.Context, actor user.User, id string, um UpdateMaster) (Master, error) {
	if !actor.Can(user.ActionManageAssignments) {
		return Master{}, core.ErrForbidden
	}
	if um.Title != nil {
		title := core.CleanString(*um.Title)
		um.Title = &title
	}
	if err := svc.validate.Struct(um); err != nil {
		return Master{}, err
	}

	m, err := svc.repo.GetMaster(ctx, id)
	if err != nil {
		return Master{}, err
	}
	if um.Title != nil {
		m.Title = *um.Title
	}
	if um.Deadline != nil {
		m.Deadline = um.Deadline.UTC()
	}
	if um.IsActive != nil {
		m.IsActive = *um.IsActive
	}
	return svc.repo.UpdateMaster(ctx, m)
}

// Submit stores the actor's answer to a master. Resubmitting replaces the content until the submission is graded.
func (svc *Service) Submit(ctx context.Context, actor user.User, masterID string, ns NewSubmission) (Assignment, error) {
	if !actor.Can(user.ActionSubmitAssignment) {
		return Assignment{}, core.ErrForbidden
	}
	ns.Content = core.CleanString(ns.Content)
	if err := svc.validate.Struct(ns); err != nil {
		return Assignment{}, err
	}

	m, err := svc.repo.GetMaster(ctx, masterID)
	if err != nil {
		return Assignment{}, err
	}
	now := svc.now()
	if !m.IsActive {
		return Assignment{}, ErrMasterInactive
	}
	if now.After(m.Deadline) {
		return Assignment{}, ErrDeadlinePassed
	}

	a, found, err := svc.repo.FindSubmission(ctx, masterID, actor.ID)
	if err != nil {
		return Assignment{}, err
	}
	if found && a.Status == StatusGraded {
		return Assignment{}, ErrAlreadyGraded
	}
	if !found {
		a = Assignment{ID: uuid.New().String(), MasterID: m.ID, StudentID: actor.ID}
	}
	a.Title = m.Title
	a.Content = ns.Content
	a.Status = StatusSubmitted
	a.SubmittedAt = now
	return svc.repo.SaveSubmission(ctx, a)
}

// Submissions lists submissions; non teachers only see their own.
func (svc *Service) Submissions(ctx context.Context, viewer user.User, filter SubmissionFilter) ([]Assignment, error) {
	if !viewer.Can(user.ActionManageAssignments) {
		if filter.StudentID == "" {
			filter.StudentID = viewer.ID
		}
		if filter.StudentID != viewer.ID {
			return nil, core.ErrForbidden
		}
	}
	return svc.repo.QuerySubmissions(ctx, filter)
}

func (svc *Service) Grade(ctx context.Context, actor user.User, id string, g Grade) (Assignment, error) {
	if !actor.Can(user.ActionManageAssignments) {
		return Assignment{}, core.ErrForbidden
	}
	if err := svc.validate.Struct(g); err != nil {
		return Assignment{}, err
	}
	a, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	now := svc.now()
	score := *g.Score
	a.Score = &score
	a.Status = StatusGraded
	a.GradedAt = &now
	graded, err := svc.repo.UpdateSubmission(ctx, a)
	if err != nil {
		return Assignment{}, err
	}
	svc.notifyGraded(ctx, graded)
	return graded, nil
}

// notifyGraded mails the grade to the student, with the graded content attached.
func (svc *Service) notifyGraded(ctx context.Context, a Assignment) {
	if svc.mailer == nil {
		return
	}
	students, err := svc.students.Students(ctx)
	if err != nil {
		svc.logger.Warn("assignment: listing students for grade notification", err)
		return
	}
	for _, s := range students {
		if s.ID != a.StudentID || s.Email == "" {
			continue
		}
		msg := &core.EmailMessage{
			To:           []mail.Address{{Name: s.Name, Address: s.Email}},
			Subject:      "Graded: " + a.Title,
			TemplateName: "assignment_graded",
			TemplateData: map[string]interface{}{"Name": s.Name, "Title": a.Title, "Score": *a.Score},
		}
		if err := msg.Attach(strings.NewReader(a.Content), "submission.txt", "text/plain; charset=utf-8"); err != nil {
			svc.logger.Warn("assignment: attaching submission", err)
			return
		}
		svc.mailer.SendMessages(msg)
		return
	}
}

func (svc *Service) Reply(ctx context.Context, actor user.User, id string, r Reply) (Assignment, error) {
	if !actor.Can(user.ActionManageAssignments) {
		return Assignment{}, core.ErrForbidden
	}
	r.Reply = core.CleanString(r.Reply)
	if err := svc.validate.Struct(r); err != nil {
		return Assignment{}, err
	}
	a, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	a.TeacherReply = r.Reply
	return svc.repo.UpdateSubmission(ctx, a)
}
