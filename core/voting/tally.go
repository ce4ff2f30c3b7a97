package voting

import (
	"sort"

	"github.com/trezcool/classsync/core/user"
)

// Count returns the number of votes received per target within scope.
func Count(votes []Vote, scope Scope, sessionID string) map[string]int {
	counts := make(map[string]int)
	for _, v := range votes {
		if scope == ScopeCurrent && v.SessionID != sessionID {
			continue
		}
		counts[v.TargetID]++
	}
	return counts
}

// Tally ranks students by votes received, most first. Ties keep the order of students.
// Votes whose target is not in students are ignored.
func Tally(students []user.User, votes []Vote, scope Scope, sessionID string) []TallyEntry {
	counts := Count(votes, scope, sessionID)
	entries := make([]TallyEntry, 0, len(students))
	for _, s := range students {
		entries = append(entries, TallyEntry{StudentID: s.ID, Name: s.Name, Count: counts[s.ID]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	return entries
}
