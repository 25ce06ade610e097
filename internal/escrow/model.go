// Package escrow is the buyer/seller settlement state machine used for
// marketplace trades. Funds held between funding and settlement belong to the
// escrow custody account, never to buyer or seller.
package escrow

import (
	"math/big"
	"time"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

type Status string

const (
	StatusCreated   Status = "created"
	StatusFunded    Status = "funded"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Escrow struct {
	ID            uint64         `json:"id"`
	Buyer         shared.Address `json:"buyer"`
	Seller        shared.Address `json:"seller"`
	Amount        *big.Int       `json:"amount"`
	Asset         shared.Address `json:"asset"`
	Status        Status         `json:"status"`
	DeliveryProof string         `json:"delivery_proof,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	DeliveredAt   *time.Time     `json:"delivered_at,omitempty"`
}

func (e *Escrow) clone() *Escrow {
	cp := *e
	cp.Amount = shared.CloneAmount(e.Amount)
	if e.DeliveredAt != nil {
		at := *e.DeliveredAt
		cp.DeliveredAt = &at
	}
	return &cp
}
