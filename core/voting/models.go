package voting

import (
	"time"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/user"
)

// MaxVotesPerRound is the number of votes a student may cast in one round.
const MaxVotesPerRound = 3

// DefaultSessionID is reported before any round was ever opened.
const DefaultSessionID = "1"

// Session is the singleton voting round state. SessionID changes only when a closed session is opened.
type Session struct {
	IsActive      bool      `json:"is_active"`
	SessionID     string    `json:"session_id"`
	LastStartedAt time.Time `json:"last_started_at"` // UTC
}

// Vote is immutable once stored.
type Vote struct {
	ID        string    `json:"id"`
	VoterID   string    `json:"voter_id"`
	TargetID  string    `json:"target_id"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"` // UTC
}

type Scope string

const (
	ScopeCurrent    Scope = "current"
	ScopeCumulative Scope = "cumulative"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(core.CleanString(s, true /* lower */)) {
	case "", ScopeCurrent:
		return ScopeCurrent, nil
	case ScopeCumulative:
		return ScopeCumulative, nil
	}
	return "", core.NewValidationError(ErrInvalidScope, core.FieldError{Field: "scope", Error: ErrInvalidScope.Error()})
}

type TallyEntry struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
}

type Results struct {
	Session Session      `json:"session"`
	Scope   Scope        `json:"scope"`
	Entries []TallyEntry `json:"entries"`
}

// VoterStatus is what a student sees of the voting state.
type VoterStatus struct {
	Session       Session  `json:"session"`
	Remaining     int      `json:"remaining"`
	VotedFor      []string `json:"voted_for"`
	ReceivedTotal int      `json:"received_total"`
}

// Snapshot is one poll of the voting state.
type Snapshot struct {
	Session   Session
	Votes     []Vote
	Students  []user.User
	FetchedAt time.Time
}

// VoteFilter applies AND operation on its non-empty fields.
type VoteFilter struct {
	VoterID   string `query:"voter_id"`
	TargetID  string `query:"target_id"`
	SessionID string `query:"session_id"`
}

type CastVoteRequest struct {
	TargetID string `json:"target_id" validate:"required,notblank"`
}

type ToggleSessionRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
