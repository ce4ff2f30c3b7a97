package ledger

import "time"

type TxType string

const (
	TxIncome  TxType = "income"
	TxExpense TxType = "expense"
)

// Signed returns amount as a balance delta.
func (t TxType) Signed(amount int64) int64 {
	if t == TxExpense {
		return -amount
	}
	return amount
}

type Transaction struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	Date        time.Time `json:"date"` // UTC
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Type        TxType    `json:"type"`
}

// NewTransactions applies the same transaction to every listed student.
type NewTransactions struct {
	StudentIDs  []string `json:"student_ids" validate:"required,min=1,dive,required"`
	Description string   `json:"description" validate:"required,notblank,max=255"`
	Amount      int64    `json:"amount" validate:"required,gt=0"`
	Type        TxType   `json:"type" validate:"required,txtype"`
}

type BalancePoint struct {
	Date    time.Time `json:"date"`
	Balance int64     `json:"balance"`
}

type Statement struct {
	StudentID    string         `json:"student_id"`
	Name         string         `json:"name"`
	Balance      int64          `json:"balance"`
	Transactions []Transaction  `json:"transactions"`
	History      []BalancePoint `json:"history"`
}

// BulkResult reports the stored transaction and resulting balance for one student.
type BulkResult struct {
	Transaction Transaction `json:"transaction"`
	Balance     int64       `json:"balance"`
}
