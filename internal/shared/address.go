// Package shared holds the primitives every ledger component depends on:
// participant addresses, big-integer amounts and the error taxonomy.
package shared

// Address identifies a participant wallet or a contract custody account.
// The empty string is the zero address and is never a valid recipient.
type Address string

// ZeroAddress is the null address; transfers to it are rejected.
const ZeroAddress Address = ""

// IsZero reports whether a is the null address.
func (a Address) IsZero() bool { return a == ZeroAddress }

func (a Address) String() string { return string(a) }
