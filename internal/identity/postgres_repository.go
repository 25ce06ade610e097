package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// PostgresRepository persists identities in the identities table (wallet
// primary key, unique DID index).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *Identity) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO identities (wallet, did, reputation, verified, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.Wallet.String(), rec.DID, rec.Reputation, rec.Verified, rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "identities_did_key" {
				return shared.ErrDuplicateDid
			}
			return shared.ErrDuplicateWallet
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) GetByWallet(ctx context.Context, wallet shared.Address) (*Identity, error) {
	rec := &Identity{}
	var w string
	err := r.pool.QueryRow(ctx,
		`SELECT wallet, did, reputation, verified, created_at
		 FROM identities WHERE wallet = $1`, wallet.String(),
	).Scan(&w, &rec.DID, &rec.Reputation, &rec.Verified, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	rec.Wallet = shared.Address(w)
	return rec, nil
}

func (r *PostgresRepository) UpdateReputation(ctx context.Context, wallet shared.Address, score uint32) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE identities SET reputation = $1 WHERE wallet = $2`,
		score, wallet.String(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
