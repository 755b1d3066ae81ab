package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind classifies why an engine operation did not take effect.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindPolicy
	KindNotFound
	KindIntegrity
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPolicy:
		return "policy"
	case KindNotFound:
		return "not_found"
	case KindIntegrity:
		return "integrity"
	case KindStoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// Failure is returned by every Repo operation that made no change.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	return f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(kind Kind, msg string) *Failure { return &Failure{Kind: kind, Message: msg} }

func failf(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the failure kind of err, or 0 for nil.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindStoreUnavailable
}

const (
	MsgRequiredFields   = "required fields missing"
	MsgInvalidKey       = "invalid catalog key"
	MsgAlreadyOut       = "already checked out"
	MsgLoanCap          = "maximum active loans reached"
	MsgInvalidReference = "invalid item or borrower identifier"
	MsgInvalidLoan      = "invalid loan id or already checked in"
	MsgDuplicateGovID   = "duplicate identifier"
	MsgDuplicateKey     = "duplicate catalog key"
	MsgOverdueOut       = "cannot pay while an overdue item is still checked out"
	MsgNoUnpaidFines    = "no unpaid fines"
	MsgUnknownBorrower  = "unknown borrower"
	MsgUnknownItem      = "unknown item"
	MsgUnknownLoan      = "unknown loan"
)

// translate maps a store error onto the failure taxonomy. Failures pass through.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var f *Failure
	switch {
	case errors.As(err, &f):
		return f
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Failure{Kind: KindIntegrity, Message: op + ": constraint violated", Err: err}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Failure{Kind: KindNotFound, Message: op + ": not found", Err: err}
	default:
		return &Failure{Kind: KindStoreUnavailable, Message: op + ": store unavailable", Err: err}
	}
}
