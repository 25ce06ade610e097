package shared

import "math/big"

// Amounts are non-negative integers in base units (18 decimals) and must stay
// exact for principals up to at least 10^27, so everything is *big.Int.

// NewAmount returns v as an amount.
func NewAmount(v int64) *big.Int { return big.NewInt(v) }

// ParseAmount parses a base-10 amount string. Returns false for anything that
// is not a plain non-negative integer.
func ParseAmount(s string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}

// CloneAmount returns a copy so callers can never alias stored balances.
func CloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// IsZeroAmount reports whether v is nil or zero.
func IsZeroAmount(v *big.Int) bool { return v == nil || v.Sign() == 0 }

// CheckAmount validates v as a ledger amount. Amounts are strictly positive;
// zero and negative values get distinct errors so callers can tell a missing
// value from a sign bug.
func CheckAmount(v *big.Int) error {
	if IsZeroAmount(v) {
		return ErrZeroAmount
	}
	if v.Sign() < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// AmountString renders v for JSON and logs; nil renders as "0".
func AmountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
