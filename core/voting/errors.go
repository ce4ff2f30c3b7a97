package voting

import (
	"github.com/pkg/errors"
)

var (
	ErrSessionClosed    = errors.New("voting session is closed")
	ErrSelfVote         = errors.New("you cannot vote for yourself")
	ErrQuotaExceeded    = errors.New("you have already used all your votes for this round")
	ErrDuplicateTarget  = errors.New("you have already voted for this student in this round")
	ErrStoreUnavailable = errors.New("voting store unavailable")

	ErrUnknownTarget = errors.New("target is not a student")
	ErrInvalidScope  = errors.New("scope must be one of: current, cumulative")
)

// StoreError wraps a store failure; errors.Is(err, ErrStoreUnavailable) holds for it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + ErrStoreUnavailable.Error() + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// IsRejection reports whether err is one of the vote rule violations.
func IsRejection(err error) bool {
	return errors.Is(err, ErrSessionClosed) || errors.Is(err, ErrSelfVote) ||
		errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrDuplicateTarget)
}

func storeErr(op string, err error) error {
	if err == nil || IsRejection(err) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func isRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
