// Package identity is the participant registry: one verifiable record per
// wallet and per DID, carrying the reputation score the loan book gates on.
package identity

import (
	"time"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// InitialReputation is assigned to every newly registered identity.
const InitialReputation uint32 = 500

// MaxReputation is the upper bound of the score range.
const MaxReputation uint32 = 1000

type Identity struct {
	DID        string         `json:"did"`
	Wallet     shared.Address `json:"wallet"`
	Reputation uint32         `json:"reputation_score"`
	Verified   bool           `json:"verified"`
	CreatedAt  time.Time      `json:"created_at"`
}
