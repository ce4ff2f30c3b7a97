package inmemdb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classsync/core/ledger"
	"github.com/trezcool/classsync/core/user"
	"github.com/trezcool/classsync/core/voting"
)

func TestVotingRepository_InsertVote_concurrent(t *testing.T) {
	repo := NewVotingRepository(Open())
	ctx := context.Background()
	require.NoError(t, repo.SaveSession(ctx, voting.Session{IsActive: true, SessionID: "s1"}))

	var (
		wg                    sync.WaitGroup
		mu                    sync.Mutex
		ok, quota, duplicates int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.InsertVote(ctx, voting.Vote{
				ID:        fmt.Sprint(i),
				VoterID:   "amy",
				TargetID:  fmt.Sprintf("target-%d", i%5),
				SessionID: "s1",
				Timestamp: time.Now(),
			}, voting.MaxVotesPerRound)

			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				ok++
			case voting.ErrQuotaExceeded:
				quota++
			case voting.ErrDuplicateTarget:
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, voting.MaxVotesPerRound, ok)
	assert.Equal(t, 20, ok+quota+duplicates)

	votes, err := repo.QueryVotes(ctx, voting.VoteFilter{VoterID: "amy", SessionID: "s1"})
	require.NoError(t, err)
	assert.Len(t, votes, voting.MaxVotesPerRound)

	// a new round starts a fresh quota
	require.NoError(t, repo.SaveSession(ctx, voting.Session{IsActive: true, SessionID: "s2"}))
	require.NoError(t, repo.InsertVote(ctx, voting.Vote{ID: "x", VoterID: "amy", TargetID: "target-0", SessionID: "s2"}, voting.MaxVotesPerRound))
}

func TestVotingRepository_InsertVote_rules(t *testing.T) {
	repo := NewVotingRepository(Open())
	ctx := context.Background()
	vote := func(id, target, session string) voting.Vote {
		return voting.Vote{ID: id, VoterID: "amy", TargetID: target, SessionID: session}
	}

	assert.Equal(t, voting.ErrSessionClosed, repo.InsertVote(ctx, vote("1", "ben", "s1"), voting.MaxVotesPerRound), "no session yet")

	require.NoError(t, repo.SaveSession(ctx, voting.Session{IsActive: true, SessionID: "s1"}))
	for i, target := range []string{"ben", "cid", "dee"} {
		require.NoError(t, repo.InsertVote(ctx, vote(fmt.Sprint(i), target, "s1"), voting.MaxVotesPerRound))
	}
	assert.Equal(t, voting.ErrQuotaExceeded, repo.InsertVote(ctx, vote("4", "ben", "s1"), voting.MaxVotesPerRound), "quota before duplicate")
	assert.Equal(t, voting.ErrDuplicateTarget, repo.InsertVote(ctx, vote("5", "ben", "s1"), voting.MaxVotesPerRound+1))
	assert.Equal(t, voting.ErrSessionClosed, repo.InsertVote(ctx, vote("6", "eve", "s0"), voting.MaxVotesPerRound), "stale round")

	require.NoError(t, repo.SaveSession(ctx, voting.Session{IsActive: false, SessionID: "s1"}))
	assert.Equal(t, voting.ErrSessionClosed, repo.InsertVote(ctx, vote("7", "eve", "s1"), voting.MaxVotesPerRound+1))

	votes, err := repo.QueryVotes(ctx, voting.VoteFilter{VoterID: "amy"})
	require.NoError(t, err)
	assert.Len(t, votes, 3)
}

func TestVotingRepository_session(t *testing.T) {
	repo := NewVotingRepository(Open())
	ctx := context.Background()

	_, found, err := repo.GetSession(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	want := voting.Session{IsActive: true, SessionID: "abc", LastStartedAt: time.Now().UTC()}
	require.NoError(t, repo.SaveSession(ctx, want))
	got, found, err := repo.GetSession(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestLedgerRepository_ApplyTransaction(t *testing.T) {
	db := Open()
	users := NewUserRepository(db)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	amy, err := users.CreateUser(ctx, user.User{Name: "Amy", Username: "amy", Roles: user.StudentRoles, IsActive: true})
	require.NoError(t, err)

	_, err = repo.ApplyTransaction(ctx, ledger.Transaction{ID: "1", StudentID: "nope", Amount: 5, Type: ledger.TxIncome})
	assert.Equal(t, user.ErrNotFound, err)

	balance, err := repo.ApplyTransaction(ctx, ledger.Transaction{ID: "2", StudentID: amy.ID, Amount: 50, Type: ledger.TxIncome})
	require.NoError(t, err)
	assert.EqualValues(t, 50, balance)
	balance, err = repo.ApplyTransaction(ctx, ledger.Transaction{ID: "3", StudentID: amy.ID, Amount: 80, Type: ledger.TxExpense})
	require.NoError(t, err)
	assert.EqualValues(t, -30, balance)

	stored, err := users.GetUser(ctx, user.GetFilter{ID: amy.ID})
	require.NoError(t, err)
	assert.EqualValues(t, -30, stored.Balance)

	txs, err := repo.QueryTransactions(ctx, amy.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}
