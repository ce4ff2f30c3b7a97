package voting

import (
	"context"
	"net/mail"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/user"
)

type (
	Repository interface {
		// GetSession returns the persisted session; found is false when none was ever saved.
		GetSession(ctx context.Context) (sess Session, found bool, err error)
		SaveSession(ctx context.Context, sess Session) error
		// QueryVotes returns the votes matching filter, oldest first.
		QueryVotes(ctx context.Context, filter VoteFilter) ([]Vote, error)
		// InsertVote stores vote unless the round it belongs to is no longer the active one
		// (ErrSessionClosed), the voter already has maxPerRound votes in the round (ErrQuotaExceeded)
		// or already voted for the target in the round (ErrDuplicateTarget).
		// The checks and the insert happen atomically.
		InsertVote(ctx context.Context, vote Vote, maxPerRound int) error
	}

	// StudentLister provides the student roster, in display order.
	StudentLister interface {
		Students(ctx context.Context) ([]user.User, error)
	}

	Service struct {
		repo     Repository
		students StudentLister
		mailer   core.EmailService
		logger   core.Logger
		conf     *core.Config
		now      func() time.Time
	}
)

func NewService(repo Repository, students StudentLister, mailer core.EmailService, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		students: students,
		mailer:   mailer,
		logger:   logger,
		conf:     conf,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (svc *Service) retry(ctx context.Context, fn func() error) error {
	return core.Retry(ctx, svc.conf.Retry, isRetryable, fn)
}

// GetSession returns the current session, or a closed session with DefaultSessionID when none is stored.
func (svc *Service) GetSession(ctx context.Context) (Session, error) {
	var sess Session
	err := svc.retry(ctx, func() error {
		s, found, err := svc.repo.GetSession(ctx)
		if err != nil {
			return storeErr("getting voting session", err)
		}
		if !found {
			s = Session{IsActive: false, SessionID: DefaultSessionID, LastStartedAt: svc.now()}
		}
		sess = s
		return nil
	})
	return sess, err
}

// ToggleSession opens or closes the voting session. Opening a closed session starts a new round.
func (svc *Service) ToggleSession(ctx context.Context, actor user.User, active bool) (Session, error) {
	if !actor.Can(user.ActionToggleVotingSession) {
		return Session{}, core.ErrForbidden
	}

	sess, err := svc.GetSession(ctx)
	if err != nil {
		return Session{}, err
	}
	if active && sess.IsActive {
		return sess, nil
	}

	opening := active && !sess.IsActive
	if opening {
		now := svc.now()
		sess.SessionID = mintSessionID(sess.SessionID, now)
		sess.LastStartedAt = now
	}
	sess.IsActive = active

	err = svc.retry(ctx, func() error {
		return storeErr("saving voting session", svc.repo.SaveSession(ctx, sess))
	})
	if err != nil {
		return Session{}, err
	}

	extras := map[string]interface{}{"session_id": sess.SessionID, "is_active": sess.IsActive}
	if opening {
		svc.logger.Info("voting round opened", extras, actor)
		svc.notifyRoundOpened(ctx)
	} else {
		svc.logger.Info("voting round closed", extras, actor)
	}
	return sess, nil
}

// mintSessionID returns a time based round id strictly greater than prev when prev is numeric.
func mintSessionID(prev string, now time.Time) string {
	id := now.UnixMilli()
	if p, err := strconv.ParseInt(prev, 10, 64); err == nil && id <= p {
		id = p + 1
	}
	return strconv.FormatInt(id, 10)
}

func (svc *Service) notifyRoundOpened(ctx context.Context) {
	if svc.mailer == nil {
		return
	}
	students, err := svc.students.Students(ctx)
	if err != nil {
		svc.logger.Warn("voting: listing students for notification", err)
		return
	}
	msgs := make([]*core.EmailMessage, 0, len(students))
	for _, s := range students {
		if s.Email == "" {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: s.Name, Address: s.Email}},
			Subject:      "A new voting round is open",
			TemplateName: "voting_round_opened",
			TemplateData: map[string]interface{}{"Name": s.Name, "MaxVotes": MaxVotesPerRound},
		})
	}
	if len(msgs) > 0 {
		svc.mailer.SendMessages(msgs...)
	}
}

// CastVote records a vote of voterID for targetID in the current round.
// Rule violations are reported, in order, as ErrSessionClosed, ErrSelfVote, ErrQuotaExceeded and ErrDuplicateTarget.
func (svc *Service) CastVote(ctx context.Context, voterID, targetID string) (Vote, error) {
	voterID, targetID = core.CleanString(voterID), core.CleanString(targetID)

	sess, err := svc.GetSession(ctx)
	if err != nil {
		return Vote{}, err
	}
	if !sess.IsActive {
		return Vote{}, ErrSessionClosed
	}

	var flds []core.FieldError
	if voterID == "" {
		flds = append(flds, core.FieldError{Field: "voter_id", Error: "this field is required"})
	}
	if targetID == "" {
		flds = append(flds, core.FieldError{Field: "target_id", Error: "this field is required"})
	}
	if len(flds) > 0 {
		return Vote{}, core.NewValidationError(nil, flds...)
	}
	if targetID == voterID {
		return Vote{}, ErrSelfVote
	}

	students, err := svc.listStudents(ctx)
	if err != nil {
		return Vote{}, err
	}
	if !containsStudent(students, targetID) {
		return Vote{}, core.NewValidationError(ErrUnknownTarget, core.FieldError{Field: "target_id", Error: ErrUnknownTarget.Error()})
	}

	cast, err := svc.Votes(ctx, VoteFilter{VoterID: voterID, SessionID: sess.SessionID})
	if err != nil {
		return Vote{}, err
	}
	if len(cast) >= MaxVotesPerRound {
		return Vote{}, ErrQuotaExceeded
	}
	for _, v := range cast {
		if v.TargetID == targetID {
			return Vote{}, ErrDuplicateTarget
		}
	}

	vote := Vote{
		ID:        uuid.New().String(),
		VoterID:   voterID,
		TargetID:  targetID,
		SessionID: sess.SessionID,
		Timestamp: svc.now(),
	}
	// not retried
	if err := svc.repo.InsertVote(ctx, vote, MaxVotesPerRound); err != nil {
		return Vote{}, storeErr("inserting vote", err)
	}
	return vote, nil
}

func containsStudent(students []user.User, id string) bool {
	for _, s := range students {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (svc *Service) listStudents(ctx context.Context) ([]user.User, error) {
	var students []user.User
	err := svc.retry(ctx, func() error {
		var err error
		students, err = svc.students.Students(ctx)
		return storeErr("listing students", err)
	})
	return students, err
}

// Votes returns the stored votes matching filter, oldest first.
func (svc *Service) Votes(ctx context.Context, filter VoteFilter) ([]Vote, error) {
	var votes []Vote
	err := svc.retry(ctx, func() error {
		var err error
		votes, err = svc.repo.QueryVotes(ctx, filter)
		return storeErr("querying votes", err)
	})
	return votes, err
}

// Results tallies the votes of the current round or of all rounds.
func (svc *Service) Results(ctx context.Context, scope Scope) (Results, error) {
	sess, err := svc.GetSession(ctx)
	if err != nil {
		return Results{}, err
	}

	var (
		students []user.User
		votes    []Vote
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = svc.listStudents(gctx)
		return err
	})
	g.Go(func() (err error) {
		filter := VoteFilter{}
		if scope == ScopeCurrent {
			filter.SessionID = sess.SessionID
		}
		votes, err = svc.Votes(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return Results{}, err
	}

	return Results{Session: sess, Scope: scope, Entries: Tally(students, votes, scope, sess.SessionID)}, nil
}

// MyStatus reports the votes left to voterID this round, the targets already chosen and the votes received overall.
func (svc *Service) MyStatus(ctx context.Context, voterID string) (VoterStatus, error) {
	sess, err := svc.GetSession(ctx)
	if err != nil {
		return VoterStatus{}, err
	}

	var cast, received []Vote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cast, err = svc.Votes(gctx, VoteFilter{VoterID: voterID, SessionID: sess.SessionID})
		return err
	})
	g.Go(func() (err error) {
		received, err = svc.Votes(gctx, VoteFilter{TargetID: voterID})
		return err
	})
	if err := g.Wait(); err != nil {
		return VoterStatus{}, err
	}

	status := VoterStatus{Session: sess, VotedFor: make([]string, 0, len(cast)), ReceivedTotal: len(received)}
	for _, v := range cast {
		status.VotedFor = append(status.VotedFor, v.TargetID)
	}
	if sess.IsActive {
		if status.Remaining = MaxVotesPerRound - len(cast); status.Remaining < 0 {
			status.Remaining = 0
		}
	}
	return status, nil
}
