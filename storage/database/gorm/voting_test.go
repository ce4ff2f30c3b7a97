package gormrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trezcool/classsync/core/voting"
)

const (
	lockVoterSQL   = `SELECT pg_advisory_xact_lock\(hashtext\(\$1\), hashtext\(\$2\)\)`
	lockSessionSQL = `SELECT \* FROM "voting_session" WHERE "voting_session"\."id" = \$1 .*FOR SHARE`
	roundVotesSQL  = `SELECT "target_id" FROM "votes" WHERE voter_id = \$1 AND session_id = \$2`
	insertVoteSQL  = `INSERT INTO "votes"`
)

func newMockRepo(t *testing.T) (*votingRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return NewVotingRepository(db), mock
}

func sessionRow(active bool, sessionID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "is_active", "session_id", "last_started_at"}).
		AddRow(sessionRowID, active, sessionID, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
}

func targetRows(targets ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"target_id"})
	for _, target := range targets {
		rows.AddRow(target)
	}
	return rows
}

func TestVotingRepository_InsertVote(t *testing.T) {
	vote := voting.Vote{ID: "v1", VoterID: "amy", TargetID: "ben", SessionID: "s1", Timestamp: time.Now()}

	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "inserted",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockSessionSQL).WillReturnRows(sessionRow(true, "s1"))
				mock.ExpectQuery(roundVotesSQL).WithArgs("amy", "s1").WillReturnRows(targetRows("cid"))
				mock.ExpectExec(insertVoteSQL).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "round closed",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockSessionSQL).WillReturnRows(sessionRow(false, "s1"))
				mock.ExpectRollback()
			},
			wantErr: voting.ErrSessionClosed,
		},
		{
			name: "round replaced",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockSessionSQL).WillReturnRows(sessionRow(true, "s2"))
				mock.ExpectRollback()
			},
			wantErr: voting.ErrSessionClosed,
		},
		{
			name: "no session",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockSessionSQL).WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "session_id", "last_started_at"}))
				mock.ExpectRollback()
			},
			wantErr: voting.ErrSessionClosed,
		},
		{
			name: "quota before duplicate",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockSessionSQL).WillReturnRows(sessionRow(true, "s1"))
				mock.ExpectQuery(roundVotesSQL).WithArgs("amy", "s1").WillReturnRows(targetRows("ben", "cid", "dee"))
				mock.ExpectRollback()
			},
			wantErr: voting.ErrQuotaExceeded,
		},
		{
			name: "duplicate target",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockSessionSQL).WillReturnRows(sessionRow(true, "s1"))
				mock.ExpectQuery(roundVotesSQL).WithArgs("amy", "s1").WillReturnRows(targetRows("ben"))
				mock.ExpectRollback()
			},
			wantErr: voting.ErrDuplicateTarget,
		},
		{
			name: "unique index violation",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(lockSessionSQL).WillReturnRows(sessionRow(true, "s1"))
				mock.ExpectQuery(roundVotesSQL).WithArgs("amy", "s1").WillReturnRows(targetRows())
				mock.ExpectExec(insertVoteSQL).WillReturnError(&pgconn.PgError{Code: "23505"})
				mock.ExpectRollback()
			},
			wantErr: voting.ErrDuplicateTarget,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectBegin()
			mock.ExpectExec(lockVoterSQL).WithArgs("amy", "s1").WillReturnResult(sqlmock.NewResult(0, 0))
			tc.expect(mock)

			err := repo.InsertVote(context.Background(), vote, voting.MaxVotesPerRound)
			if tc.wantErr != nil {
				assert.Equal(t, tc.wantErr, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVotingRepository_SaveSession(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "voting_session" .* ON CONFLICT \("id"\) DO UPDATE SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveSession(context.Background(), voting.Session{IsActive: true, SessionID: "s1", LastStartedAt: time.Now()})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
