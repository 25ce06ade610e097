package pool

import (
	"context"
	"errors"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// PostgresRepository persists pools and user shares in the pools and
// pool_liquidity tables.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreatePool(ctx context.Context, rec *Pool) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO pools (asset, rate_bps, active, total_liquidity, total_borrowed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.Asset.String(), rec.RateBps, rec.Active,
		shared.AmountString(rec.TotalLiquidity), shared.AmountString(rec.TotalBorrowed), rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrPoolExists
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) GetPool(ctx context.Context, asset shared.Address) (*Pool, error) {
	rec := &Pool{}
	var a, total, borrowed string
	err := r.pool.QueryRow(ctx,
		`SELECT asset, rate_bps, active, total_liquidity, total_borrowed, created_at
		 FROM pools WHERE asset = $1`, asset.String(),
	).Scan(&a, &rec.RateBps, &rec.Active, &total, &borrowed, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	rec.Asset = shared.Address(a)
	var ok bool
	if rec.TotalLiquidity, ok = shared.ParseAmount(total); !ok {
		return nil, shared.ErrInvalidAsset
	}
	if rec.TotalBorrowed, ok = shared.ParseAmount(borrowed); !ok {
		return nil, shared.ErrInvalidAsset
	}
	return rec, nil
}

func (r *PostgresRepository) UpdatePool(ctx context.Context, rec *Pool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pools SET active = $1, total_liquidity = $2, total_borrowed = $3 WHERE asset = $4`,
		rec.Active, shared.AmountString(rec.TotalLiquidity), shared.AmountString(rec.TotalBorrowed), rec.Asset.String(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UserLiquidity(ctx context.Context, depositor, asset shared.Address) (*big.Int, error) {
	var amount string
	err := r.pool.QueryRow(ctx,
		`SELECT amount FROM pool_liquidity WHERE depositor = $1 AND asset = $2`,
		depositor.String(), asset.String(),
	).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return new(big.Int), nil
		}
		return nil, err
	}
	v, ok := shared.ParseAmount(amount)
	if !ok {
		return nil, shared.ErrInvalidAsset
	}
	return v, nil
}

func (r *PostgresRepository) SetUserLiquidity(ctx context.Context, depositor, asset shared.Address, amount *big.Int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO pool_liquidity (depositor, asset, amount)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (depositor, asset) DO UPDATE SET amount = EXCLUDED.amount`,
		depositor.String(), asset.String(), shared.AmountString(amount),
	)
	return err
}

func (r *PostgresRepository) Assets(ctx context.Context) ([]shared.Address, error) {
	rows, err := r.pool.Query(ctx, `SELECT asset FROM pools ORDER BY created_at, asset`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shared.Address
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, shared.Address(a))
	}
	return out, rows.Err()
}
