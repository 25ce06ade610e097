package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Processor consumes notification tasks and writes one notifications row per
// recipient. With no database attached it just logs.
type Processor struct {
	db *pgxpool.Pool
}

// Start initializes the asynq client and worker against redisAddr and returns
// the notifier handlers enqueue with. db may be nil.
func Start(redisAddr string, db *pgxpool.Pool) *Notifier {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client := asynq.NewClient(opts)

	p := &Processor{db: db}
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskLoanCreated, p.handleLoanCreated)
	mux.HandleFunc(TaskEscrowFunded, p.handleEscrowFunded)
	mux.HandleFunc(TaskEscrowDelivered, p.handleEscrowDelivered)
	mux.HandleFunc(TaskEscrowSettled, p.handleEscrowSettled)

	server := asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"notifications": 10,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			log.Printf("Asynq server stopped: %v", err)
		}
	}()

	log.Printf("Asynq initialized (addr=%s)", redisAddr)
	return NewNotifier(client)
}

func (p *Processor) handleLoanCreated(ctx context.Context, t *asynq.Task) error {
	var payload LoanCreatedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	return p.store(ctx, payload.Borrower, "loan_created", "Loan paid out",
		fmt.Sprintf("Loan %d for %s units has been paid out.", payload.LoanID, payload.Principal),
		fmt.Sprintf("loan:%d", payload.LoanID))
}

func (p *Processor) handleEscrowFunded(ctx context.Context, t *asynq.Task) error {
	var payload EscrowFundedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	return p.store(ctx, payload.Seller, "escrow_funded", "Escrow funded",
		fmt.Sprintf("Escrow %d is funded with %s units.", payload.EscrowID, payload.Amount),
		fmt.Sprintf("escrow:%d", payload.EscrowID))
}

func (p *Processor) handleEscrowDelivered(ctx context.Context, t *asynq.Task) error {
	var payload EscrowDeliveredPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	return p.store(ctx, payload.Buyer, "escrow_delivered", "Delivery confirmed",
		fmt.Sprintf("Delivery for escrow %d has been attested.", payload.EscrowID),
		fmt.Sprintf("escrow:%d", payload.EscrowID))
}

func (p *Processor) handleEscrowSettled(ctx context.Context, t *asynq.Task) error {
	var payload EscrowSettledPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	body := fmt.Sprintf("Escrow %d settled as %s (%s units).", payload.EscrowID, payload.Outcome, payload.Amount)
	ref := fmt.Sprintf("escrow:%d", payload.EscrowID)
	if err := p.store(ctx, payload.Buyer, "escrow_settled", "Escrow settled", body, ref); err != nil {
		return err
	}
	return p.store(ctx, payload.Seller, "escrow_settled", "Escrow settled", body, ref)
}

func (p *Processor) store(ctx context.Context, wallet, ntype, title, body, reference string) error {
	if p.db == nil {
		log.Printf("notify %s [%s]: %s", wallet, ntype, body)
		return nil
	}
	_, err := p.db.Exec(ctx,
		`INSERT INTO notifications (wallet, type, title, body, reference)
		 VALUES ($1, $2, $3, $4, $5)`,
		wallet, ntype, title, body, reference,
	)
	return err
}
