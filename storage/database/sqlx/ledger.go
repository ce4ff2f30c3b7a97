package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core/ledger"
	"github.com/trezcool/classsync/core/user"
)

type transactionRow struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	Date        time.Time `db:"date"`
	Description string    `db:"description"`
	Amount      int64     `db:"amount"`
	Type        string    `db:"type"`
}

type ledgerRepository struct {
	db *sqlx.DB
}

var _ ledger.Repository = (*ledgerRepository)(nil) // interface compliance check

func NewLedgerRepository(db *sqlx.DB) *ledgerRepository {
	return &ledgerRepository{db: db}
}

func (repo *ledgerRepository) ApplyTransaction(ctx context.Context, t ledger.Transaction) (int64, error) {
	if !validUUID(t.StudentID) {
		return 0, user.ErrNotFound
	}
	var balance int64
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &balance,
			"UPDATE users SET balance = balance + $2 WHERE id = $1 RETURNING balance",
			t.StudentID, t.Type.Signed(t.Amount))
		if err != nil {
			return trapNoRowsErr(err, user.ErrNotFound, "updating balance")
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transactions (id, student_id, date, description, amount, type) VALUES ($1, $2, $3, $4, $5, $6)",
			t.ID, t.StudentID, t.Date.UTC(), t.Description, t.Amount, string(t.Type))
		return errors.Wrap(err, "inserting transaction")
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (repo *ledgerRepository) QueryTransactions(ctx context.Context, studentID string) ([]ledger.Transaction, error) {
	var rows []transactionRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM transactions WHERE student_id = $1 ORDER BY date ASC", studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying transactions")
	}
	txs := make([]ledger.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, ledger.Transaction{
			ID:          r.ID,
			StudentID:   r.StudentID,
			Date:        r.Date.UTC(),
			Description: r.Description,
			Amount:      r.Amount,
			Type:        ledger.TxType(r.Type),
		})
	}
	return txs, nil
}
