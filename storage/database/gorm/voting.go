// Package gormrepos implements the voting repository on PostgreSQL with gorm over pgx.
package gormrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trezcool/classsync/core/voting"
	"github.com/trezcool/classsync/storage/database"
)

const sessionRowID = 1

type sessionModel struct {
	ID            int16 `gorm:"primaryKey;autoIncrement:false"`
	IsActive      bool
	SessionID     string
	LastStartedAt time.Time
}

func (sessionModel) TableName() string { return "voting_session" }

type voteModel struct {
	ID        string `gorm:"primaryKey"`
	VoterID   string
	TargetID  string
	SessionID string
	Timestamp time.Time
}

func (voteModel) TableName() string { return "votes" }

func (m voteModel) toVote() voting.Vote {
	return voting.Vote{
		ID:        m.ID,
		VoterID:   m.VoterID,
		TargetID:  m.TargetID,
		SessionID: m.SessionID,
		Timestamp: m.Timestamp.UTC(),
	}
}

type votingRepository struct {
	db *gorm.DB
}

var _ voting.Repository = (*votingRepository)(nil) // interface compliance check

func NewVotingRepository(db *gorm.DB) *votingRepository {
	return &votingRepository{db: db}
}

func (repo *votingRepository) GetSession(ctx context.Context) (voting.Session, bool, error) {
	var m sessionModel
	err := repo.db.WithContext(ctx).Take(&m, sessionRowID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return voting.Session{}, false, nil
	case err != nil:
		return voting.Session{}, false, errors.Wrap(err, "getting voting session")
	}
	return voting.Session{
		IsActive:      m.IsActive,
		SessionID:     m.SessionID,
		LastStartedAt: m.LastStartedAt.UTC(),
	}, true, nil
}

// SaveSession upserts the session row. ON CONFLICT DO UPDATE holds the row lock until commit,
// so it waits for InsertVote transactions holding FOR SHARE on the same row.
func (repo *votingRepository) SaveSession(ctx context.Context, sess voting.Session) error {
	m := sessionModel{
		ID:            sessionRowID,
		IsActive:      sess.IsActive,
		SessionID:     sess.SessionID,
		LastStartedAt: sess.LastStartedAt.UTC(),
	}
	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&m).Error
	return errors.Wrap(err, "saving voting session")
}

func (repo *votingRepository) QueryVotes(ctx context.Context, filter voting.VoteFilter) ([]voting.Vote, error) {
	var models []voteModel
	// struct conditions skip zero-valued fields
	err := repo.db.WithContext(ctx).
		Where(&voteModel{VoterID: filter.VoterID, TargetID: filter.TargetID, SessionID: filter.SessionID}).
		Order("timestamp ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "querying votes")
	}
	votes := make([]voting.Vote, 0, len(models))
	for _, m := range models {
		votes = append(votes, m.toVote())
	}
	return votes, nil
}

func (repo *votingRepository) InsertVote(ctx context.Context, vote voting.Vote, maxPerRound int) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// serializes the votes of one voter in one round until commit
		err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?), hashtext(?))", vote.VoterID, vote.SessionID).Error
		if err != nil {
			return errors.Wrap(err, "locking voter")
		}

		// the round cannot be closed or replaced before commit
		var sess sessionModel
		err = tx.Clauses(clause.Locking{Strength: "SHARE"}).Take(&sess, sessionRowID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return voting.ErrSessionClosed
		case err != nil:
			return errors.Wrap(err, "locking voting session")
		case !sess.IsActive || sess.SessionID != vote.SessionID:
			return voting.ErrSessionClosed
		}

		var targets []string
		err = tx.Model(&voteModel{}).
			Where("voter_id = ? AND session_id = ?", vote.VoterID, vote.SessionID).
			Pluck("target_id", &targets).Error
		if err != nil {
			return errors.Wrap(err, "counting votes")
		}
		if len(targets) >= maxPerRound {
			return voting.ErrQuotaExceeded
		}
		for _, t := range targets {
			if t == vote.TargetID {
				return voting.ErrDuplicateTarget
			}
		}

		m := voteModel{
			ID:        vote.ID,
			VoterID:   vote.VoterID,
			TargetID:  vote.TargetID,
			SessionID: vote.SessionID,
			Timestamp: vote.Timestamp.UTC(),
		}
		return tx.Create(&m).Error
	})
	if database.IsUniqueViolation(err) {
		return voting.ErrDuplicateTarget
	}
	return err
}
