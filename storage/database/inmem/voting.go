package inmemdb

import (
	"context"

	"github.com/trezcool/classsync/core/voting"
)

type votingRepository struct {
	db *votingTable
}

var _ voting.Repository = (*votingRepository)(nil) // interface compliance check

func NewVotingRepository(db *DB) *votingRepository {
	return &votingRepository{db: db.voting}
}

func (repo *votingRepository) GetSession(context.Context) (voting.Session, bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.db.session == nil {
		return voting.Session{}, false, nil
	}
	return *repo.db.session, true, nil
}

func (repo *votingRepository) SaveSession(_ context.Context, sess voting.Session) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.session = &sess
	return nil
}

func matchVote(v voting.Vote, f voting.VoteFilter) bool {
	return (f.VoterID == "" || v.VoterID == f.VoterID) &&
		(f.TargetID == "" || v.TargetID == f.TargetID) &&
		(f.SessionID == "" || v.SessionID == f.SessionID)
}

func (repo *votingRepository) QueryVotes(_ context.Context, filter voting.VoteFilter) ([]voting.Vote, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	votes := make([]voting.Vote, 0)
	for _, v := range repo.db.votes {
		if matchVote(v, filter) {
			votes = append(votes, v)
		}
	}
	return votes, nil
}

func (repo *votingRepository) InsertVote(_ context.Context, vote voting.Vote, maxPerRound int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if sess := repo.db.session; sess == nil || !sess.IsActive || sess.SessionID != vote.SessionID {
		return voting.ErrSessionClosed
	}

	var cast []string
	for _, v := range repo.db.votes {
		if v.VoterID == vote.VoterID && v.SessionID == vote.SessionID {
			cast = append(cast, v.TargetID)
		}
	}
	if len(cast) >= maxPerRound {
		return voting.ErrQuotaExceeded
	}
	for _, target := range cast {
		if target == vote.TargetID {
			return voting.ErrDuplicateTarget
		}
	}
	repo.db.votes = append(repo.db.votes, vote)
	return nil
}
