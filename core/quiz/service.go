package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/user"
)

var (
	ErrResultNotFound = core.NewNotFoundError("quiz result")
	ErrIncomplete     = errors.New("all questions must be answered")
	ErrInvalidAnswer  = errors.New("invalid answer")
)

var sideLabels = map[Category][2]string{ // {positive, negative}
	CategoryPolitics: {"左派", "右派"},
	CategoryGender:   {"女性主義者", "平等主義者"},
	CategoryOpenness: {"開放型", "傳統型"},
}

type (
	Repository interface {
		// SaveResult inserts or replaces the result of a student.
		SaveResult(ctx context.Context, res Result) (Result, error)
		GetResult(ctx context.Context, studentID string) (Result, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func validOption(score int) bool {
	for _, o := range Options {
		if o.Score == score {
			return true
		}
	}
	return false
}

// Score sums the answers per category, negating reverse questions.
// Every question must be answered with one of the Options scores.
func Score(answers Answers) (map[Category]int, error) {
	var flds []core.FieldError
	for id := range answers {
		if !isQuestion(id) {
			flds = append(flds, core.FieldError{Field: "answers." + id, Error: "unknown question"})
		}
	}

	scores := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		scores[c] = 0
	}
	var missing int
	for _, q := range Questions {
		answer, ok := answers[q.ID]
		if !ok {
			missing++
			continue
		}
		if !validOption(answer) {
			flds = append(flds, core.FieldError{Field: "answers." + q.ID, Error: fmt.Sprintf("%d is not a valid option", answer)})
			continue
		}
		if q.IsReverse {
			answer = -answer
		}
		scores[q.Category] += answer
	}

	if missing > 0 {
		flds = append(flds, core.FieldError{Field: "answers", Error: fmt.Sprintf("%d of %d questions unanswered", missing, len(Questions))})
		return nil, core.NewValidationError(ErrIncomplete, flds...)
	}
	if len(flds) > 0 {
		return nil, core.NewValidationError(ErrInvalidAnswer, flds...)
	}
	return scores, nil
}

func isQuestion(id string) bool {
	for _, q := range Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

// Describe labels a category score: level 1 up to 20 points, 2 up to 45, 3 beyond.
func Describe(category Category, score int) Leaning {
	abs := score
	if abs < 0 {
		abs = -abs
	}
	level := 3
	switch {
	case abs <= 20:
		level = 1
	case abs <= 45:
		level = 2
	}

	l := Leaning{Category: category, Score: score, Level: level, Positive: score >= 0}
	labels := sideLabels[category]
	if l.Positive {
		l.Label = fmt.Sprintf("%s %d", labels[0], level)
	} else {
		l.Label = fmt.Sprintf("%s %d", labels[1], level)
	}
	return l
}

func Summarize(res Result) ResultSummary {
	sum := ResultSummary{Result: res, Leanings: make([]Leaning, 0, len(Categories))}
	for _, c := range Categories {
		sum.Leanings = append(sum.Leanings, Describe(c, res.CategoryScores[c]))
	}
	return sum
}

// Submit scores the actor's answers and stores the result, replacing any previous one.
func (svc *Service) Submit(ctx context.Context, actor user.User, sa SubmitAnswers) (ResultSummary, error) {
	if !actor.Can(user.ActionTakeQuiz) {
		return ResultSummary{}, core.ErrForbidden
	}
	if err := svc.validate.Struct(sa); err != nil {
		return ResultSummary{}, err
	}
	scores, err := Score(sa.Answers)
	if err != nil {
		return ResultSummary{}, err
	}
	res, err := svc.repo.SaveResult(ctx, Result{StudentID: actor.ID, CategoryScores: scores, CompletedAt: time.Now().UTC()})
	if err != nil {
		return ResultSummary{}, err
	}
	return Summarize(res), nil
}

func (svc *Service) GetResult(ctx context.Context, viewer user.User, studentID string) (ResultSummary, error) {
	if !viewer.CanView(studentID) {
		return ResultSummary{}, core.ErrForbidden
	}
	res, err := svc.repo.GetResult(ctx, studentID)
	if err != nil {
		return ResultSummary{}, err
	}
	return Summarize(res), nil
}
