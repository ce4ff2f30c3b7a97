package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core/quiz"
)

type quizResultRow struct {
	StudentID      string         `db:"student_id"`
	CategoryScores types.JSONText `db:"category_scores"`
	CompletedAt    time.Time      `db:"completed_at"`
}

type quizRepository struct {
	db *sqlx.DB
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *sqlx.DB) *quizRepository {
	return &quizRepository{db: db}
}

func (repo *quizRepository) SaveResult(ctx context.Context, res quiz.Result) (quiz.Result, error) {
	scores, err := json.Marshal(res.CategoryScores)
	if err != nil {
		return quiz.Result{}, errors.Wrap(err, "encoding category scores")
	}
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO quiz_results (student_id, category_scores, completed_at) VALUES ($1, $2, $3)
		ON CONFLICT (student_id) DO UPDATE SET category_scores = EXCLUDED.category_scores, completed_at = EXCLUDED.completed_at`,
		res.StudentID, types.JSONText(scores), res.CompletedAt.UTC())
	if err != nil {
		return quiz.Result{}, errors.Wrap(err, "saving quiz result")
	}
	return res, nil
}

func (repo *quizRepository) GetResult(ctx context.Context, studentID string) (quiz.Result, error) {
	var row quizResultRow
	err := repo.db.GetContext(ctx, &row,
		"SELECT student_id, category_scores, completed_at FROM quiz_results WHERE student_id = $1", studentID)
	if err != nil {
		return quiz.Result{}, trapNoRowsErr(err, quiz.ErrResultNotFound, "getting quiz result")
	}
	res := quiz.Result{StudentID: row.StudentID, CompletedAt: row.CompletedAt.UTC()}
	if err := row.CategoryScores.Unmarshal(&res.CategoryScores); err != nil {
		return quiz.Result{}, errors.Wrap(err, "decoding category scores")
	}
	return res, nil
}
