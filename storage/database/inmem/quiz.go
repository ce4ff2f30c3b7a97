package inmemdb

import (
	"context"

	"github.com/trezcool/classsync/core/quiz"
)

type quizRepository struct {
	db *quizTable
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(db *DB) *quizRepository {
	return &quizRepository{db: db.quiz}
}

func (repo *quizRepository) SaveResult(_ context.Context, res quiz.Result) (quiz.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	scores := make(map[quiz.Category]int, len(res.CategoryScores))
	for c, s := range res.CategoryScores {
		scores[c] = s
	}
	res.CategoryScores = scores
	repo.db.results[res.StudentID] = res
	return res, nil
}

func (repo *quizRepository) GetResult(_ context.Context, studentID string) (quiz.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if res, ok := repo.db.results[studentID]; ok {
		return res, nil
	}
	return quiz.Result{}, quiz.ErrResultNotFound
}
