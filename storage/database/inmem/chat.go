package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/classsync/core/chat"
)

type chatRepository struct {
	db *chatTable
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *DB) *chatRepository {
	return &chatRepository{db: db.chat}
}

func (repo *chatRepository) CreateSession(_ context.Context, sess chat.Session) (chat.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *chatRepository) QuerySessions(context.Context) ([]chat.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]chat.Session, 0, len(repo.db.sessions))
	for _, s := range repo.db.sessions {
		sessions = append(sessions, *s)
	}
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	return sessions, nil
}

func (repo *chatRepository) GetSession(_ context.Context, id string) (chat.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.sessions[id]; ok {
		return *s, nil
	}
	return chat.Session{}, chat.ErrSessionNotFound
}

func (repo *chatRepository) UpdateSession(_ context.Context, sess chat.Session) (chat.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sessions[sess.ID]; !ok {
		return chat.Session{}, chat.ErrSessionNotFound
	}
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *chatRepository) CreateMessage(_ context.Context, msg chat.Message) (chat.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sessions[msg.SessionID]; !ok {
		return chat.Message{}, chat.ErrSessionNotFound
	}
	repo.db.messages = append(repo.db.messages, msg)
	return msg, nil
}

func (repo *chatRepository) QueryMessages(_ context.Context, sessionID string) ([]chat.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	msgs := make([]chat.Message, 0)
	for _, m := range repo.db.messages {
		if m.SessionID == sessionID {
			msgs = append(msgs, m)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs, nil
}

func (repo *chatRepository) SetNickname(_ context.Context, sessionID, studentID, nickname string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.nicknames[[2]string{sessionID, studentID}] = nickname
	return nil
}

func (repo *chatRepository) GetNickname(_ context.Context, sessionID, studentID string) (string, bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	nickname, ok := repo.db.nicknames[[2]string{sessionID, studentID}]
	return nickname, ok, nil
}
