package ledger

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/user"
)

var ErrNotStudent = errors.New("user is not a student")

type (
	Repository interface {
		// ApplyTransaction stores tx and adjusts the student's balance in one atomic step.
		// It returns the new balance.
		ApplyTransaction(ctx context.Context, tx Transaction) (int64, error)
		// QueryTransactions returns a student's transactions by date, oldest first.
		QueryTransactions(ctx context.Context, studentID string) ([]Transaction, error)
	}

	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo     Repository
		users    UserGetter
		logger   core.Logger
		validate *validator.Validate
	}
)

func NewService(repo Repository, users UserGetter, logger core.Logger, validate *validator.Validate) *Service {
	return &Service{repo: repo, users: users, logger: logger, validate: validate}
}

// Apply records the transaction for every student listed, one student at a time.
// It stops at the first failure; transactions already applied are kept.
func (svc *Service) Apply(ctx context.Context, actor user.User, nt NewTransactions) ([]BulkResult, error) {
	if !actor.Can(user.ActionManageLedger) {
		return nil, core.ErrForbidden
	}
	nt.Description = core.CleanString(nt.Description)
	if err := svc.validate.Struct(nt); err != nil {
		return nil, err
	}

	// all students are checked before anything is applied
	seen := make(map[string]bool, len(nt.StudentIDs))
	ids := make([]string, 0, len(nt.StudentIDs))
	for _, id := range nt.StudentIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		usr, err := svc.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !usr.IsStudent() {
			return nil, core.NewValidationError(ErrNotStudent, core.FieldError{Field: "student_ids", Error: id + ": " + ErrNotStudent.Error()})
		}
		ids = append(ids, id)
	}

	now := time.Now().UTC()
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		tx := Transaction{
			ID:          uuid.New().String(),
			StudentID:   id,
			Date:        now,
			Description: nt.Description,
			Amount:      nt.Amount,
			Type:        nt.Type,
		}
		balance, err := svc.repo.ApplyTransaction(ctx, tx)
		if err != nil {
			svc.logger.Error("ledger: applying transaction", err, map[string]interface{}{"student_id": id, "applied": len(results)}, actor)
			return results, errors.Wrapf(err, "applying transaction to %s", id)
		}
		results = append(results, BulkResult{Transaction: tx, Balance: balance})
	}
	return results, nil
}

// Statement returns a student's balance, transactions and running balance history.
func (svc *Service) Statement(ctx context.Context, viewer user.User, studentID string) (Statement, error) {
	if !viewer.CanView(studentID) {
		return Statement{}, core.ErrForbidden
	}
	usr, err := svc.users.GetByID(ctx, studentID)
	if err != nil {
		return Statement{}, err
	}
	txs, err := svc.repo.QueryTransactions(ctx, studentID)
	if err != nil {
		return Statement{}, err
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return Statement{
		StudentID:    usr.ID,
		Name:         usr.Name,
		Balance:      usr.Balance,
		Transactions: txs,
		History:      RunningBalance(txs),
	}, nil
}

// RunningBalance returns the balance after each transaction, starting from zero.
func RunningBalance(txs []Transaction) []BalancePoint {
	points := make([]BalancePoint, 0, len(txs))
	var balance int64
	for _, tx := range txs {
		balance += tx.Type.Signed(tx.Amount)
		points = append(points, BalancePoint{Date: tx.Date, Balance: balance})
	}
	return points
}
