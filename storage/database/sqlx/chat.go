package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core/chat"
)

type chatSessionRow struct {
	ID        string    `db:"id"`
	Topic     string    `db:"topic"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

func (r chatSessionRow) toSession() chat.Session {
	return chat.Session{ID: r.ID, Topic: r.Topic, IsActive: r.IsActive, CreatedAt: r.CreatedAt.UTC()}
}

type chatMessageRow struct {
	ID          string    `db:"id"`
	SessionID   string    `db:"session_id"`
	UserID      string    `db:"user_id"`
	UserName    string    `db:"user_name"`
	Content     string    `db:"content"`
	IsAnonymous bool      `db:"is_anonymous"`
	Timestamp   time.Time `db:"timestamp"`
}

func (r chatMessageRow) toMessage() chat.Message {
	return chat.Message{
		ID:          r.ID,
		SessionID:   r.SessionID,
		UserID:      r.UserID,
		UserName:    r.UserName,
		Content:     r.Content,
		IsAnonymous: r.IsAnonymous,
		Timestamp:   r.Timestamp.UTC(),
	}
}

type chatRepository struct {
	db *sqlx.DB
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *sqlx.DB) *chatRepository {
	return &chatRepository{db: db}
}

func (repo *chatRepository) CreateSession(ctx context.Context, sess chat.Session) (chat.Session, error) {
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO chat_sessions (id, topic, is_active, created_at) VALUES ($1, $2, $3, $4)",
		sess.ID, sess.Topic, sess.IsActive, sess.CreatedAt.UTC())
	if err != nil {
		return chat.Session{}, errors.Wrap(err, "inserting chat session")
	}
	return sess, nil
}

func (repo *chatRepository) QuerySessions(ctx context.Context) ([]chat.Session, error) {
	var rows []chatSessionRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM chat_sessions ORDER BY created_at DESC"); err != nil {
		return nil, errors.Wrap(err, "querying chat sessions")
	}
	sessions := make([]chat.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.toSession())
	}
	return sessions, nil
}

func (repo *chatRepository) GetSession(ctx context.Context, id string) (chat.Session, error) {
	if !validUUID(id) {
		return chat.Session{}, chat.ErrSessionNotFound
	}
	var row chatSessionRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM chat_sessions WHERE id = $1", id); err != nil {
		return chat.Session{}, trapNoRowsErr(err, chat.ErrSessionNotFound, "getting chat session")
	}
	return row.toSession(), nil
}

func (repo *chatRepository) UpdateSession(ctx context.Context, sess chat.Session) (chat.Session, error) {
	var row chatSessionRow
	err := repo.db.QueryRowxContext(ctx,
		"UPDATE chat_sessions SET topic = $2, is_active = $3 WHERE id = $1 RETURNING *",
		sess.ID, sess.Topic, sess.IsActive).StructScan(&row)
	if err != nil {
		return chat.Session{}, trapNoRowsErr(err, chat.ErrSessionNotFound, "updating chat session")
	}
	return row.toSession(), nil
}

func (repo *chatRepository) CreateMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	if _, err := repo.GetSession(ctx, msg.SessionID); err != nil {
		return chat.Message{}, err
	}
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, user_id, user_name, content, is_anonymous, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.ID, msg.SessionID, msg.UserID, msg.UserName, msg.Content, msg.IsAnonymous, msg.Timestamp.UTC())
	if err != nil {
		return chat.Message{}, errors.Wrap(err, "inserting chat message")
	}
	return msg, nil
}

func (repo *chatRepository) QueryMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	if !validUUID(sessionID) {
		return []chat.Message{}, nil
	}
	var rows []chatMessageRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM chat_messages WHERE session_id = $1 ORDER BY timestamp ASC", sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying chat messages")
	}
	msgs := make([]chat.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.toMessage())
	}
	return msgs, nil
}

func (repo *chatRepository) SetNickname(ctx context.Context, sessionID, studentID, nickname string) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO chat_nicknames (session_id, student_id, nickname) VALUES ($1, $2, $3)
		ON CONFLICT (session_id, student_id) DO UPDATE SET nickname = EXCLUDED.nickname`,
		sessionID, studentID, nickname)
	return errors.Wrap(err, "setting chat nickname")
}

func (repo *chatRepository) GetNickname(ctx context.Context, sessionID, studentID string) (string, bool, error) {
	if !validUUID(sessionID) {
		return "", false, nil
	}
	var nick string
	err := repo.db.GetContext(ctx, &nick,
		"SELECT nickname FROM chat_nicknames WHERE session_id = $1 AND student_id = $2", sessionID, studentID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrap(err, "getting chat nickname")
	}
	return nick, true, nil
}
