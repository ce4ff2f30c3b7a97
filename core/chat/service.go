package chat

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/user"
)

var (
	ErrSessionNotFound = core.NewNotFoundError("chat session")
	ErrSessionInactive = errors.New("this chat room is closed")
)

type (
	Repository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		// QuerySessions returns all sessions, newest first.
		QuerySessions(ctx context.Context) ([]Session, error)
		GetSession(ctx context.Context, id string) (Session, error)
		UpdateSession(ctx context.Context, sess Session) (Session, error)
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		// QueryMessages returns the messages of a session, oldest first.
		QueryMessages(ctx context.Context, sessionID string) ([]Message, error)
		SetNickname(ctx context.Context, sessionID, studentID, nickname string) error
		GetNickname(ctx context.Context, sessionID, studentID string) (nickname string, found bool, err error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) CreateSession(ctx context.Context, actor user.User, ns NewSession) (Session, error) {
	if !actor.Can(user.ActionManageChat) {
		return Session{}, core.ErrForbidden
	}
	ns.Topic = core.CleanString(ns.Topic)
	if err := svc.validate.Struct(ns); err != nil {
		return Session{}, err
	}
	return svc.repo.CreateSession(ctx, Session{
		ID:        uuid.New().String(),
		Topic:     ns.Topic,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) Sessions(ctx context.Context) ([]Session, error) {
	return svc.repo.QuerySessions(ctx)
}

func (svc *Service) GetSession(ctx context.Context, id string) (Session, error) {
	return svc.repo.GetSession(ctx, id)
}

func (svc *Service) UpdateSession(ctx context.Context, actor user.User, id string, us UpdateSession) (Session, error) {
	if !actor.Can(user.ActionManageChat) {
		return Session{}, core.ErrForbidden
	}
	if us.Topic != nil {
		topic := core.CleanString(*us.Topic)
		us.Topic = &topic
	}
	if err := svc.validate.Struct(us); err != nil {
		return Session{}, err
	}

	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if us.Topic != nil {
		sess.Topic = *us.Topic
	}
	if us.IsActive != nil {
		sess.IsActive = *us.IsActive
	}
	return svc.repo.UpdateSession(ctx, sess)
}

// Join registers the nickname a student posts under in an active session.
func (svc *Service) Join(ctx context.Context, actor user.User, sessionID string, js JoinSession) (Membership, error) {
	if !actor.Can(user.ActionJoinChat) {
		return Membership{}, core.ErrForbidden
	}
	js.Nickname = core.CleanString(js.Nickname)
	if err := svc.validate.Struct(js); err != nil {
		return Membership{}, err
	}
	sess, err := svc.repo.GetSession(ctx, sessionID)
	if err != nil {
		return Membership{}, err
	}
	if !sess.IsActive {
		return Membership{}, ErrSessionInactive
	}
	if err := svc.repo.SetNickname(ctx, sessionID, actor.ID, js.Nickname); err != nil {
		return Membership{}, err
	}
	return Membership{SessionID: sessionID, Joined: true, Nickname: js.Nickname}, nil
}

func (svc *Service) Membership(ctx context.Context, actor user.User, sessionID string) (Membership, error) {
	if _, err := svc.repo.GetSession(ctx, sessionID); err != nil {
		return Membership{}, err
	}
	nickname, found, err := svc.repo.GetNickname(ctx, sessionID, actor.ID)
	if err != nil {
		return Membership{}, err
	}
	return Membership{SessionID: sessionID, Joined: found, Nickname: nickname}, nil
}

// PostMessage adds a message to an active session. Students post anonymously under their nickname.
func (svc *Service) PostMessage(ctx context.Context, actor user.User, sessionID string, nm NewMessage) (Message, error) {
	nm.Content = core.CleanString(nm.Content)
	if err := svc.validate.Struct(nm); err != nil {
		return Message{}, err
	}
	sess, err := svc.repo.GetSession(ctx, sessionID)
	if err != nil {
		return Message{}, err
	}
	if !sess.IsActive {
		return Message{}, ErrSessionInactive
	}

	msg := Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    actor.ID,
		UserName:  actor.Name,
		Content:   nm.Content,
		Timestamp: time.Now().UTC(),
	}
	if actor.IsStudent() && !actor.IsTeacher() {
		msg.IsAnonymous = true
		nickname, found, err := svc.repo.GetNickname(ctx, sessionID, actor.ID)
		if err != nil {
			return Message{}, err
		}
		if !found || nickname == "" {
			nickname = DefaultNickname
		}
		msg.UserName = nickname
	}
	return svc.repo.CreateMessage(ctx, msg)
}

// Messages lists a session's messages. Authors of anonymous messages are only visible to teachers.
func (svc *Service) Messages(ctx context.Context, viewer user.User, sessionID string) ([]Message, error) {
	if _, err := svc.repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	msgs, err := svc.repo.QueryMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if viewer.Can(user.ActionManageChat) {
		return msgs, nil
	}
	for i := range msgs {
		if msgs[i].IsAnonymous && msgs[i].UserID != viewer.ID {
			msgs[i].UserID = ""
		}
	}
	return msgs, nil
}
