package escrow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// PostgresRepository persists escrows in the escrows table (BIGSERIAL id,
// NUMERIC(78,0) amount).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *Escrow) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO escrows (buyer, seller, amount, asset, status, delivery_proof, created_at, delivered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		rec.Buyer.String(), rec.Seller.String(), shared.AmountString(rec.Amount),
		rec.Asset.String(), string(rec.Status), nullable(rec.DeliveryProof),
		rec.CreatedAt, rec.DeliveredAt,
	).Scan(&rec.ID)
}

func (r *PostgresRepository) Get(ctx context.Context, id uint64) (*Escrow, error) {
	rec := &Escrow{}
	var buyer, seller, amount, assetRef, status string
	var proof *string
	err := r.pool.QueryRow(ctx,
		`SELECT id, buyer, seller, amount, asset, status, delivery_proof, created_at, delivered_at
		 FROM escrows WHERE id = $1`, id,
	).Scan(&rec.ID, &buyer, &seller, &amount, &assetRef, &status, &proof,
		&rec.CreatedAt, &rec.DeliveredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	rec.Buyer = shared.Address(buyer)
	rec.Seller = shared.Address(seller)
	rec.Asset = shared.Address(assetRef)
	rec.Status = Status(status)
	if proof != nil {
		rec.DeliveryProof = *proof
	}
	var ok bool
	if rec.Amount, ok = shared.ParseAmount(amount); !ok {
		return nil, shared.ErrInvalidAsset
	}
	return rec, nil
}

func (r *PostgresRepository) Update(ctx context.Context, rec *Escrow) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE escrows SET status = $1, delivery_proof = $2, delivered_at = $3 WHERE id = $4`,
		string(rec.Status), nullable(rec.DeliveryProof), rec.DeliveredAt, rec.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
