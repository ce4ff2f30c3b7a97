package quiz

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classsync/core"
)

func answerAll(agree, reverse int) Answers {
	answers := make(Answers, len(Questions))
	for _, q := range Questions {
		if q.IsReverse {
			answers[q.ID] = reverse
		} else {
			answers[q.ID] = agree
		}
	}
	return answers
}

func TestQuestionBank(t *testing.T) {
	require.Len(t, Questions, 48)
	perCategory := make(map[Category]int)
	ids := make(map[string]bool)
	for _, q := range Questions {
		perCategory[q.Category]++
		assert.False(t, ids[q.ID], "duplicate id %s", q.ID)
		ids[q.ID] = true
	}
	for _, c := range Categories {
		assert.Equal(t, 16, perCategory[c], c)
	}
	assert.Len(t, Options, 6)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name           string
		agree, reverse int
		want           int
	}{
		{"fully positive", 5, -5, 80},
		{"fully negative", -5, 5, -80},
		{"agrees with everything", 5, 5, 0},
		{"mild", 1, -1, 16},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scores, err := Score(answerAll(tc.agree, tc.reverse))
			require.NoError(t, err)
			for _, c := range Categories {
				assert.Equal(t, tc.want, scores[c], c)
			}
		})
	}
}

func TestScore_Invalid(t *testing.T) {
	incomplete := answerAll(1, 1)
	delete(incomplete, "o_o8")

	badOption := answerAll(1, 1)
	badOption["p_l1"] = 2

	unknown := answerAll(1, 1)
	unknown["x_1"] = 1

	tests := []struct {
		name    string
		answers Answers
		wantErr error
	}{
		{"missing answer", incomplete, ErrIncomplete},
		{"invalid option", badOption, ErrInvalidAnswer},
		{"unknown question", unknown, ErrInvalidAnswer},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Score(tc.answers)
			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.wantErr, verr.Err)
			assert.NotEmpty(t, verr.Fields)
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		category Category
		score    int
		want     string
		level    int
	}{
		{CategoryPolitics, 0, "左派 1", 1},
		{CategoryPolitics, 20, "左派 1", 1},
		{CategoryPolitics, -21, "右派 2", 2},
		{CategoryGender, 45, "女性主義者 2", 2},
		{CategoryGender, -46, "平等主義者 3", 3},
		{CategoryOpenness, 80, "開放型 3", 3},
		{CategoryOpenness, -1, "傳統型 1", 1},
	}
	for _, tc := range tests {
		l := Describe(tc.category, tc.score)
		assert.Equal(t, tc.want, l.Label)
		assert.Equal(t, tc.level, l.Level)
		assert.Equal(t, tc.score >= 0, l.Positive)
	}
}
