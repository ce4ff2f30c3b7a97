package chat

import "time"

// DefaultNickname is shown for students posting before they picked a nickname.
const DefaultNickname = "匿名同學"

type Session struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Message struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id,omitempty"`
	UserName    string    `json:"user_name"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"is_anonymous"`
	Timestamp   time.Time `json:"timestamp"` // UTC
}

type NewSession struct {
	Topic string `json:"topic" validate:"required,notblank,max=255"`
}

type UpdateSession struct {
	Topic    *string `json:"topic" validate:"omitempty,notblank,max=255"`
	IsActive *bool   `json:"is_active"`
}

type NewMessage struct {
	Content string `json:"content" validate:"required,notblank,max=2000"`
}

type JoinSession struct {
	Nickname string `json:"nickname" validate:"required,notblank,max=100"`
}

// Membership tells a student whether they joined a session and under which nickname.
type Membership struct {
	SessionID string `json:"session_id"`
	Joined    bool   `json:"joined"`
	Nickname  string `json:"nickname"`
}
