package shared

import (
	"errors"
	"fmt"
)

// Kind classifies ledger errors so the application layer can map them to a
// transport without inspecting individual codes.
type Kind int

const (
	KindAuthorization Kind = iota + 1 // caller lacks the required role or relationship
	KindState                         // operation invalid for the entity's current state
	KindValidation                    // malformed input
	KindConflict                      // uniqueness violation
	KindInsufficiency                 // value-conservation guard tripped
	KindNotFound                      // unknown id, wallet or asset
)

// Error is a ledger error: a stable machine code plus its kind. Named values
// below are sentinels; compare with errors.Is.
type Error struct {
	Kind Kind
	Code string
}

func (e *Error) Error() string { return e.Code }

func newErr(kind Kind, code string) *Error { return &Error{Kind: kind, Code: code} }

var (
	// authorization
	ErrNotBorrower  = newErr(KindAuthorization, "not borrower")
	ErrNotBuyer     = newErr(KindAuthorization, "not buyer")
	ErrNotSeller    = newErr(KindAuthorization, "not seller")
	ErrNotAuthority = newErr(KindAuthorization, "authority required")

	ErrBorrowerNotVerified = newErr(KindAuthorization, "borrower not verified")

	// state
	ErrLoanInactive    = newErr(KindState, "loan inactive")
	ErrInvalidState    = newErr(KindState, "invalid state")
	ErrAlreadyTerminal = newErr(KindState, "escrow already settled")
	ErrPoolInactive    = newErr(KindState, "pool inactive")

	// validation
	ErrZeroAmount       = newErr(KindValidation, "zero amount")
	ErrNegativeAmount   = newErr(KindValidation, "negative amount")
	ErrInvalidRate      = newErr(KindValidation, "invalid rate")
	ErrInvalidDuration  = newErr(KindValidation, "invalid duration")
	ErrInvalidAsset     = newErr(KindValidation, "invalid asset")
	ErrInvalidScore     = newErr(KindValidation, "invalid score")
	ErrInvalidRecipient = newErr(KindValidation, "invalid recipient")

	// conflict
	ErrDuplicateDid    = newErr(KindConflict, "did already registered")
	ErrDuplicateWallet = newErr(KindConflict, "wallet already registered")
	ErrPoolExists      = newErr(KindConflict, "pool exists")

	// insufficiency
	ErrInsufficientLiquidity     = newErr(KindInsufficiency, "insufficient liquidity")
	ErrInsufficientUserLiquidity = newErr(KindInsufficiency, "insufficient user liquidity")
	ErrInsufficientPoolLiquidity = newErr(KindInsufficiency, "insufficient pool liquidity")
	ErrOverRepayment             = newErr(KindInsufficiency, "over repayment")
	ErrInsufficientBalance       = newErr(KindInsufficiency, "insufficient balance")
	ErrInsufficientAllowance     = newErr(KindInsufficiency, "insufficient allowance")

	// not found
	ErrNotFound = newErr(KindNotFound, "not found")
)

// KindOf returns the kind of err if it is a ledger error, 0 otherwise.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}

// Wrap annotates err with operation context while keeping errors.Is working
// against the sentinel.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
