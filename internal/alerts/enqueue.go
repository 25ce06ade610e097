// Package alerts pushes best-effort notifications about ledger milestones
// through an asynq queue. Enqueue failures are logged and never surface to
// the operation that triggered them.
package alerts

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// Notifier enqueues notification tasks. A nil Notifier is a no-op everywhere,
// so deployments without Redis simply pass nil.
type Notifier struct {
	client *asynq.Client
}

func NewNotifier(client *asynq.Client) *Notifier {
	return &Notifier{client: client}
}

// LoanCreated notifies about a new loan payout.
func (n *Notifier) LoanCreated(loanID uint64, borrower, principal string) {
	n.enqueue(TaskLoanCreated, LoanCreatedPayload{
		LoanID: loanID, Borrower: borrower, Principal: principal, SentAt: time.Now(),
	})
}

// EscrowFunded notifies the seller that the buyer's funds are in custody.
func (n *Notifier) EscrowFunded(escrowID uint64, buyer, seller, amount string) {
	n.enqueue(TaskEscrowFunded, EscrowFundedPayload{
		EscrowID: escrowID, Buyer: buyer, Seller: seller, Amount: amount, SentAt: time.Now(),
	})
}

// EscrowDelivered notifies the buyer that delivery was attested.
func (n *Notifier) EscrowDelivered(escrowID uint64, buyer, seller string) {
	n.enqueue(TaskEscrowDelivered, EscrowDeliveredPayload{
		EscrowID: escrowID, Buyer: buyer, Seller: seller, SentAt: time.Now(),
	})
}

// EscrowSettled notifies both parties about completion or cancellation.
func (n *Notifier) EscrowSettled(escrowID uint64, outcome, buyer, seller, amount string) {
	n.enqueue(TaskEscrowSettled, EscrowSettledPayload{
		EscrowID: escrowID, Outcome: outcome, Buyer: buyer, Seller: seller, Amount: amount, SentAt: time.Now(),
	})
}

func (n *Notifier) enqueue(taskType string, payload any) {
	if n == nil || n.client == nil {
		return
	}
	b, _ := json.Marshal(payload)
	if _, err := n.client.Enqueue(asynq.NewTask(taskType, b), asynq.Queue("notifications")); err != nil {
		log.Printf("alerts: enqueue %s failed: %v", taskType, err)
	}
}
