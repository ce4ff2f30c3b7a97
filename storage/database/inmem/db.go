package inmemdb

import (
	"sync"

	"github.com/trezcool/classsync/core/assignment"
	"github.com/trezcool/classsync/core/chat"
	"github.com/trezcool/classsync/core/ledger"
	"github.com/trezcool/classsync/core/quiz"
	"github.com/trezcool/classsync/core/user"
	"github.com/trezcool/classsync/core/voting"
)

type (
	// DB keeps every table in memory. Each table has its own lock.
	DB struct {
		user       *userTable
		voting     *votingTable
		chat       *chatTable
		assignment *assignmentTable
		ledger     *ledgerTable
		quiz       *quizTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	votingTable struct {
		sync.RWMutex
		session *voting.Session
		votes   []voting.Vote
	}

	chatTable struct {
		sync.RWMutex
		sessions  map[string]*chat.Session
		messages  []chat.Message
		nicknames map[[2]string]string // {sessionID, studentID}: nickname
	}

	assignmentTable struct {
		sync.RWMutex
		masters     map[string]*assignment.Master
		submissions map[string]*assignment.Assignment
	}

	ledgerTable struct {
		sync.RWMutex
		txs []ledger.Transaction
	}

	quizTable struct {
		sync.RWMutex
		results map[string]quiz.Result
	}
)

func Open() *DB {
	return &DB{
		user:   &userTable{table: make(map[string]*user.User)},
		voting: &votingTable{},
		chat: &chatTable{
			sessions:  make(map[string]*chat.Session),
			nicknames: make(map[[2]string]string),
		},
		assignment: &assignmentTable{
			masters:     make(map[string]*assignment.Master),
			submissions: make(map[string]*assignment.Assignment),
		},
		ledger: &ledgerTable{},
		quiz:   &quizTable{results: make(map[string]quiz.Result)},
	}
}
