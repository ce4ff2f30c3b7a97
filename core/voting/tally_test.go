package voting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally(t *testing.T) {
	votes := []Vote{
		{VoterID: "A", TargetID: "C", SessionID: "r1"},
		{VoterID: "B", TargetID: "C", SessionID: "r1"},
		{VoterID: "A", TargetID: "D", SessionID: "r1"},
		{VoterID: "A", TargetID: "D", SessionID: "r2"},
		{VoterID: "B", TargetID: "E", SessionID: "r2"},
		{VoterID: "C", TargetID: "gone", SessionID: "r2"},
	}

	tests := []struct {
		name      string
		scope     Scope
		sessionID string
		want      []TallyEntry
	}{
		{
			name:      "current round",
			scope:     ScopeCurrent,
			sessionID: "r2",
			want: []TallyEntry{
				{StudentID: "D", Name: "Dee", Count: 1},
				{StudentID: "E", Name: "Eve", Count: 1},
				{StudentID: "A", Name: "Amy", Count: 0},
				{StudentID: "B", Name: "Ben", Count: 0},
				{StudentID: "C", Name: "Cid", Count: 0},
				{StudentID: "F", Name: "Fay", Count: 0},
			},
		},
		{
			name:      "cumulative",
			scope:     ScopeCumulative,
			sessionID: "r2",
			want: []TallyEntry{
				{StudentID: "C", Name: "Cid", Count: 2},
				{StudentID: "D", Name: "Dee", Count: 2},
				{StudentID: "E", Name: "Eve", Count: 1},
				{StudentID: "A", Name: "Amy", Count: 0},
				{StudentID: "B", Name: "Ben", Count: 0},
				{StudentID: "F", Name: "Fay", Count: 0},
			},
		},
		{
			name:      "round without votes",
			scope:     ScopeCurrent,
			sessionID: "r3",
			want: []TallyEntry{
				{StudentID: "A", Name: "Amy"},
				{StudentID: "B", Name: "Ben"},
				{StudentID: "C", Name: "Cid"},
				{StudentID: "D", Name: "Dee"},
				{StudentID: "E", Name: "Eve"},
				{StudentID: "F", Name: "Fay"},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Tally(students, votes, tc.scope, tc.sessionID))
		})
	}
}

func TestTally_NoStudents(t *testing.T) {
	entries := Tally(nil, []Vote{{TargetID: "A", SessionID: "1"}}, ScopeCumulative, "1")
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestCount_CumulativeIsSumOfRounds(t *testing.T) {
	votes := []Vote{
		{TargetID: "A", SessionID: "1"}, {TargetID: "A", SessionID: "2"},
		{TargetID: "B", SessionID: "2"}, {TargetID: "A", SessionID: "3"},
	}
	cumulative := Count(votes, ScopeCumulative, "")
	for target, total := range cumulative {
		var sum int
		for _, sid := range []string{"1", "2", "3"} {
			sum += Count(votes, ScopeCurrent, sid)[target]
		}
		assert.Equal(t, total, sum)
	}
	assert.Equal(t, 3, cumulative["A"])
}
