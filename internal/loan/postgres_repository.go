package loan

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// PostgresRepository persists loans in the loans table (BIGSERIAL id,
// NUMERIC(78,0) amounts, duration stored in seconds).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *Loan) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO loans (borrower, principal, rate_bps, duration_secs, created_at, repaid_amount, is_repaid, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		rec.Borrower.String(), shared.AmountString(rec.Principal), rec.RateBps,
		int64(rec.Duration/time.Second), rec.CreatedAt,
		shared.AmountString(rec.RepaidAmount), rec.Repaid, rec.Active,
	).Scan(&rec.ID)
}

func (r *PostgresRepository) Get(ctx context.Context, id uint64) (*Loan, error) {
	rec := &Loan{}
	var borrower, principal, repaid string
	var durationSecs int64
	err := r.pool.QueryRow(ctx,
		`SELECT id, borrower, principal, rate_bps, duration_secs, created_at, repaid_amount, is_repaid, is_active
		 FROM loans WHERE id = $1`, id,
	).Scan(&rec.ID, &borrower, &principal, &rec.RateBps, &durationSecs,
		&rec.CreatedAt, &repaid, &rec.Repaid, &rec.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	rec.Borrower = shared.Address(borrower)
	rec.Duration = time.Duration(durationSecs) * time.Second
	var ok bool
	if rec.Principal, ok = shared.ParseAmount(principal); !ok {
		return nil, shared.ErrInvalidAsset
	}
	if rec.RepaidAmount, ok = shared.ParseAmount(repaid); !ok {
		return nil, shared.ErrInvalidAsset
	}
	return rec, nil
}

func (r *PostgresRepository) Update(ctx context.Context, rec *Loan) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE loans SET repaid_amount = $1, is_repaid = $2, is_active = $3 WHERE id = $4`,
		shared.AmountString(rec.RepaidAmount), rec.Repaid, rec.Active, rec.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
