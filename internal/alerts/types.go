package alerts

import "time"

// Task type constants
const (
	TaskLoanCreated     = "notify:loan_created"
	TaskEscrowFunded    = "notify:escrow_funded"
	TaskEscrowDelivered = "notify:escrow_delivered"
	TaskEscrowSettled   = "notify:escrow_settled"
)

// Loan creation payload
type LoanCreatedPayload struct {
	LoanID    uint64    `json:"loan_id"`
	Borrower  string    `json:"borrower"`
	Principal string    `json:"principal"`
	SentAt    time.Time `json:"sent_at"`
}

// Escrow funding payload
type EscrowFundedPayload struct {
	EscrowID uint64    `json:"escrow_id"`
	Buyer    string    `json:"buyer"`
	Seller   string    `json:"seller"`
	Amount   string    `json:"amount"`
	SentAt   time.Time `json:"sent_at"`
}

// Escrow delivery payload
type EscrowDeliveredPayload struct {
	EscrowID uint64    `json:"escrow_id"`
	Buyer    string    `json:"buyer"`
	Seller   string    `json:"seller"`
	SentAt   time.Time `json:"sent_at"`
}

// Escrow settlement payload (completed or cancelled)
type EscrowSettledPayload struct {
	EscrowID uint64    `json:"escrow_id"`
	Outcome  string    `json:"outcome"`
	Buyer    string    `json:"buyer"`
	Seller   string    `json:"seller"`
	Amount   string    `json:"amount"`
	SentAt   time.Time `json:"sent_at"`
}
