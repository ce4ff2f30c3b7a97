package voting

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/user"
)

var errDown = errors.New("connection refused")

type memRepo struct {
	mu         sync.Mutex
	sess       *Session
	votes      []Vote
	failReads  int // number of upcoming reads that fail
	failInsert bool
	inserts    int
	// beforeQuery runs ahead of each QueryVotes, outside the lock
	beforeQuery func(r *memRepo)
}

func (r *memRepo) readFailure() error {
	if r.failReads > 0 {
		r.failReads--
		return errDown
	}
	return nil
}

func (r *memRepo) GetSession(context.Context) (Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.readFailure(); err != nil {
		return Session{}, false, err
	}
	if r.sess == nil {
		return Session{}, false, nil
	}
	return *r.sess, true, nil
}

func (r *memRepo) SaveSession(_ context.Context, sess Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sess = &sess
	return nil
}

func (r *memRepo) QueryVotes(_ context.Context, f VoteFilter) ([]Vote, error) {
	if r.beforeQuery != nil {
		r.beforeQuery(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.readFailure(); err != nil {
		return nil, err
	}
	var res []Vote
	for _, v := range r.votes {
		if (f.VoterID == "" || v.VoterID == f.VoterID) &&
			(f.TargetID == "" || v.TargetID == f.TargetID) &&
			(f.SessionID == "" || v.SessionID == f.SessionID) {
			res = append(res, v)
		}
	}
	return res, nil
}

func (r *memRepo) InsertVote(_ context.Context, vote Vote, max int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.failInsert {
		return errDown
	}
	if r.sess == nil || !r.sess.IsActive || r.sess.SessionID != vote.SessionID {
		return ErrSessionClosed
	}
	var targets []string
	for _, v := range r.votes {
		if v.VoterID == vote.VoterID && v.SessionID == vote.SessionID {
			targets = append(targets, v.TargetID)
		}
	}
	if len(targets) >= max {
		return ErrQuotaExceeded
	}
	for _, target := range targets {
		if target == vote.TargetID {
			return ErrDuplicateTarget
		}
	}
	r.votes = append(r.votes, vote)
	return nil
}

type roster []user.User

func (ro roster) Students(context.Context) ([]user.User, error) { return ro, nil }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type recordingMailer struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *recordingMailer) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

var (
	teacher = user.User{ID: "t1", Name: "Teacher", Roles: user.TeacherRoles, IsActive: true}
	// students A..F, A is the voter in the scenario
	students = roster{
		{ID: "A", Name: "Amy", Email: "amy@example.com", Roles: user.StudentRoles, IsActive: true},
		{ID: "B", Name: "Ben", Roles: user.StudentRoles, IsActive: true},
		{ID: "C", Name: "Cid", Email: "cid@example.com", Roles: user.StudentRoles, IsActive: true},
		{ID: "D", Name: "Dee", Roles: user.StudentRoles, IsActive: true},
		{ID: "E", Name: "Eve", Roles: user.StudentRoles, IsActive: true},
		{ID: "F", Name: "Fay", Roles: user.StudentRoles, IsActive: true},
	}
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestService(t *testing.T) (*Service, *memRepo, *testClock, *recordingMailer) {
	t.Helper()
	repo := &memRepo{}
	mailer := &recordingMailer{}
	conf := &core.Config{
		Retry:  core.RetryConfig{Attempts: 3, BaseDelay: time.Millisecond},
		Voting: core.VotingConfig{PollInterval: 5 * time.Millisecond},
	}
	clock := &testClock{t: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	svc := NewService(repo, students, mailer, nopLogger{}, conf)
	svc.now = clock.now
	return svc, repo, clock, mailer
}

func openRound(t *testing.T, svc *Service) Session {
	t.Helper()
	sess, err := svc.ToggleSession(context.Background(), teacher, true)
	require.NoError(t, err)
	require.True(t, sess.IsActive)
	return sess
}

func TestGetSession_Default(t *testing.T) {
	svc, repo, clock, _ := newTestService(t)

	sess, err := svc.GetSession(context.Background())
	require.NoError(t, err)
	assert.False(t, sess.IsActive)
	assert.Equal(t, DefaultSessionID, sess.SessionID)
	assert.Equal(t, clock.now(), sess.LastStartedAt)
	assert.Nil(t, repo.sess, "default session must not be persisted")
}

func TestGetSession_RetriesTransientFailures(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.failReads = 2

	_, err := svc.GetSession(context.Background())
	assert.NoError(t, err)

	repo.failReads = 3
	_, err = svc.GetSession(context.Background())
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	var serr *StoreError
	assert.True(t, errors.As(err, &serr))
}

func TestToggleSession(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a teacher", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)
		_, err := svc.ToggleSession(ctx, students[0], true)
		assert.Equal(t, core.ErrForbidden, err)
		assert.Nil(t, repo.sess)
	})

	t.Run("open mints a new round id", func(t *testing.T) {
		svc, _, clock, _ := newTestService(t)
		sess := openRound(t, svc)
		assert.Equal(t, strconv.FormatInt(clock.now().UnixMilli(), 10), sess.SessionID)
		assert.Equal(t, clock.now(), sess.LastStartedAt)
	})

	t.Run("opening an open session is a no-op", func(t *testing.T) {
		svc, _, clock, _ := newTestService(t)
		first := openRound(t, svc)
		clock.advance(time.Minute)
		second := openRound(t, svc)
		assert.Equal(t, first, second)
	})

	t.Run("close keeps id and start time", func(t *testing.T) {
		svc, _, clock, _ := newTestService(t)
		opened := openRound(t, svc)
		clock.advance(time.Minute)
		closed, err := svc.ToggleSession(ctx, teacher, false)
		require.NoError(t, err)
		assert.False(t, closed.IsActive)
		assert.Equal(t, opened.SessionID, closed.SessionID)
		assert.Equal(t, opened.LastStartedAt, closed.LastStartedAt)
	})

	t.Run("reopen yields a fresh increasing id even if the clock did not move", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		ids := make([]int64, 0, 3)
		for i := 0; i < 3; i++ {
			sess := openRound(t, svc)
			id, err := strconv.ParseInt(sess.SessionID, 10, 64)
			require.NoError(t, err)
			ids = append(ids, id)
			_, err = svc.ToggleSession(ctx, teacher, false)
			require.NoError(t, err)
		}
		assert.Less(t, ids[0], ids[1])
		assert.Less(t, ids[1], ids[2])
	})

	t.Run("opening notifies students with an email", func(t *testing.T) {
		svc, _, _, mailer := newTestService(t)
		openRound(t, svc)
		require.Len(t, mailer.sent, 2)
		assert.Equal(t, "amy@example.com", mailer.sent[0].To[0].Address)
		assert.Equal(t, "voting_round_opened", mailer.sent[0].TemplateName)

		_, err := svc.ToggleSession(ctx, teacher, false)
		require.NoError(t, err)
		assert.Len(t, mailer.sent, 2)
	})
}

func TestMintSessionID(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	assert.Equal(t, "1700000000000", mintSessionID(DefaultSessionID, now))
	assert.Equal(t, "1700000000001", mintSessionID("1700000000000", now))
	assert.Equal(t, "1700000000006", mintSessionID("1700000000005", now))
	assert.Equal(t, "1700000000000", mintSessionID("not-a-number", now))
}

func TestCastVote_Scenario(t *testing.T) {
	ctx := context.Background()
	svc, _, clock, _ := newTestService(t)

	r1 := openRound(t, svc)
	for _, target := range []string{"B", "C", "D"} {
		vote, err := svc.CastVote(ctx, "A", target)
		require.NoError(t, err)
		assert.Equal(t, r1.SessionID, vote.SessionID)
		assert.NotEmpty(t, vote.ID)
	}
	_, err := svc.CastVote(ctx, "A", "E")
	assert.Equal(t, ErrQuotaExceeded, err)

	// the quota is checked before the duplicate target
	_, err = svc.CastVote(ctx, "A", "B")
	assert.Equal(t, ErrQuotaExceeded, err)

	_, err = svc.ToggleSession(ctx, teacher, false)
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, "A", "F")
	assert.Equal(t, ErrSessionClosed, err)

	clock.advance(time.Hour)
	r2 := openRound(t, svc)
	assert.NotEqual(t, r1.SessionID, r2.SessionID)

	_, err = svc.CastVote(ctx, "A", "B")
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, "A", "B")
	assert.Equal(t, ErrDuplicateTarget, err)

	cumulative, err := svc.Results(ctx, ScopeCumulative)
	require.NoError(t, err)
	assert.Equal(t, TallyEntry{StudentID: "B", Name: "Ben", Count: 2}, cumulative.Entries[0])

	current, err := svc.Results(ctx, ScopeCurrent)
	require.NoError(t, err)
	assert.Equal(t, TallyEntry{StudentID: "B", Name: "Ben", Count: 1}, current.Entries[0])
	assert.Equal(t, r2, current.Session)
}

func TestCastVote_DuplicateTarget(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)
	openRound(t, svc)

	_, err := svc.CastVote(ctx, "A", "B")
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, "A", "B")
	assert.Equal(t, ErrDuplicateTarget, err)
}

func TestCastVote_CheckOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	_, err := svc.CastVote(ctx, "A", "A")
	assert.Equal(t, ErrSessionClosed, err, "closed session wins over self vote")

	openRound(t, svc)
	for _, target := range []string{"B", "C", "D"} {
		_, err = svc.CastVote(ctx, "A", target)
		require.NoError(t, err)
	}
	_, err = svc.CastVote(ctx, "A", "A")
	assert.Equal(t, ErrSelfVote, err, "self vote wins over quota")
	_, err = svc.CastVote(ctx, "A", "C")
	assert.Equal(t, ErrQuotaExceeded, err, "quota wins over duplicate target")
}

func TestCastVote_Validation(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService(t)
	openRound(t, svc)

	tests := []struct {
		name          string
		voter, target string
	}{
		{"blank voter", "", "B"},
		{"blank target", "A", "  "},
		{"unknown target", "A", "Z"},
		{"teacher target", "A", teacher.ID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CastVote(ctx, tc.voter, tc.target)
			var verr *core.ValidationError
			assert.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
	assert.Empty(t, repo.votes)
}

func TestCastVote_StoreFailureIsNotRetried(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService(t)
	openRound(t, svc)
	repo.failInsert = true

	_, err := svc.CastVote(ctx, "A", "B")
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.Equal(t, 1, repo.inserts)
	assert.Empty(t, repo.votes)
}

func TestCastVote_StoreEnforcesRules(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService(t)
	sess := openRound(t, svc)

	// votes the service has not seen yet, e.g. from a concurrent request
	repo.votes = append(repo.votes, Vote{ID: "x", VoterID: "A", TargetID: "B", SessionID: sess.SessionID})
	err := repo.InsertVote(ctx, Vote{ID: "y", VoterID: "A", TargetID: "B", SessionID: sess.SessionID}, MaxVotesPerRound)
	assert.Equal(t, ErrDuplicateTarget, err)
	assert.Equal(t, ErrDuplicateTarget, storeErr("inserting vote", err))

	err = repo.InsertVote(ctx, Vote{ID: "z", VoterID: "A", TargetID: "C", SessionID: "stale"}, MaxVotesPerRound)
	assert.Equal(t, ErrSessionClosed, err)
}

func TestCastVote_SessionClosedMidCast(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService(t)
	openRound(t, svc)

	// the teacher closes the round after the service read it as open
	repo.beforeQuery = func(r *memRepo) {
		r.mu.Lock()
		defer r.mu.Unlock()
		closed := *r.sess
		closed.IsActive = false
		r.sess = &closed
	}
	_, err := svc.CastVote(ctx, "A", "B")
	assert.Equal(t, ErrSessionClosed, err)
	assert.Equal(t, 1, repo.inserts)
	assert.Empty(t, repo.votes)
}

func TestCastVote_Invariants(t *testing.T) {
	ctx := context.Background()
	svc, repo, clock, _ := newTestService(t)

	ids := []string{"A", "B", "C", "D", "E", "F"}
	for round := 0; round < 3; round++ {
		openRound(t, svc)
		for _, voter := range ids {
			for _, target := range ids {
				_, _ = svc.CastVote(ctx, voter, target)
				_, _ = svc.CastVote(ctx, voter, target)
			}
		}
		_, err := svc.ToggleSession(ctx, teacher, false)
		require.NoError(t, err)
		clock.advance(time.Minute)
	}

	perVoter := make(map[string]int)
	perTarget := make(map[string]int)
	perRound := make(map[string]map[string]int)
	for _, v := range repo.votes {
		assert.NotEqual(t, v.VoterID, v.TargetID)
		perVoter[v.SessionID+"|"+v.VoterID]++
		perTarget[v.SessionID+"|"+v.VoterID+"|"+v.TargetID]++
		if perRound[v.SessionID] == nil {
			perRound[v.SessionID] = make(map[string]int)
		}
		perRound[v.SessionID][v.TargetID]++
	}
	for k, n := range perVoter {
		assert.Equal(t, MaxVotesPerRound, n, k)
	}
	for k, n := range perTarget {
		assert.Equal(t, 1, n, k)
	}
	assert.Len(t, perRound, 3)

	cumulative := Count(repo.votes, ScopeCumulative, "")
	for target, total := range cumulative {
		var sum int
		for sid := range perRound {
			sum += Count(repo.votes, ScopeCurrent, sid)[target]
		}
		assert.Equal(t, total, sum, target)
	}
}

func TestMyStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t)

	status, err := svc.MyStatus(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 0, status.Remaining)

	openRound(t, svc)
	_, err = svc.CastVote(ctx, "A", "B")
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, "C", "A")
	require.NoError(t, err)

	status, err = svc.MyStatus(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, status.Remaining)
	assert.Equal(t, []string{"B"}, status.VotedFor)
	assert.Equal(t, 1, status.ReceivedTotal)
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeCurrent, s)

	s, err = ParseScope(" Cumulative ")
	require.NoError(t, err)
	assert.Equal(t, ScopeCumulative, s)

	_, err = ParseScope("weekly")
	var verr *core.ValidationError
	assert.True(t, errors.As(err, &verr))
}
