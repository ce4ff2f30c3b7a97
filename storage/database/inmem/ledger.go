package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/classsync/core/ledger"
	"github.com/trezcool/classsync/core/user"
)

type ledgerRepository struct {
	db    *ledgerTable
	users *userTable
}

var _ ledger.Repository = (*ledgerRepository)(nil) // interface compliance check

func NewLedgerRepository(db *DB) *ledgerRepository {
	return &ledgerRepository{db: db.ledger, users: db.user}
}

func (repo *ledgerRepository) ApplyTransaction(_ context.Context, tx ledger.Transaction) (int64, error) {
	repo.users.Lock()
	defer repo.users.Unlock()
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.users.table[tx.StudentID]
	if !ok {
		return 0, user.ErrNotFound
	}
	usr.Balance += tx.Type.Signed(tx.Amount)
	repo.db.txs = append(repo.db.txs, tx)
	return usr.Balance, nil
}

func (repo *ledgerRepository) QueryTransactions(_ context.Context, studentID string) ([]ledger.Transaction, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	txs := make([]ledger.Transaction, 0)
	for _, tx := range repo.db.txs {
		if tx.StudentID == studentID {
			txs = append(txs, tx)
		}
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs, nil
}
