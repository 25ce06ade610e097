package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool against dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Println("Connected to Postgres successfully")
	return pool, nil
}

// EnsureSchema creates the ledger tables if they are missing. Entity keys
// follow the storage layout the components expect: identities by wallet with
// a unique DID, loans and escrows by serial id, pools by asset, user
// liquidity by (depositor, asset).
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS identities (
            wallet TEXT PRIMARY KEY,
            did TEXT NOT NULL UNIQUE,
            reputation INTEGER NOT NULL DEFAULT 500,
            verified BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );

        CREATE TABLE IF NOT EXISTS loans (
            id BIGSERIAL PRIMARY KEY,
            borrower TEXT NOT NULL,
            principal NUMERIC(78,0) NOT NULL,
            rate_bps INTEGER NOT NULL,
            duration_secs BIGINT NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            repaid_amount NUMERIC(78,0) NOT NULL DEFAULT 0,
            is_repaid BOOLEAN NOT NULL DEFAULT FALSE,
            is_active BOOLEAN NOT NULL DEFAULT TRUE
        );
        CREATE INDEX IF NOT EXISTS idx_loans_borrower ON loans(borrower);

        CREATE TABLE IF NOT EXISTS pools (
            asset TEXT PRIMARY KEY,
            rate_bps INTEGER NOT NULL,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            total_liquidity NUMERIC(78,0) NOT NULL DEFAULT 0,
            total_borrowed NUMERIC(78,0) NOT NULL DEFAULT 0,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );

        CREATE TABLE IF NOT EXISTS pool_liquidity (
            depositor TEXT NOT NULL,
            asset TEXT NOT NULL REFERENCES pools(asset) ON DELETE CASCADE,
            amount NUMERIC(78,0) NOT NULL DEFAULT 0,
            PRIMARY KEY (depositor, asset)
        );

        CREATE TABLE IF NOT EXISTS escrows (
            id BIGSERIAL PRIMARY KEY,
            buyer TEXT NOT NULL,
            seller TEXT NOT NULL,
            amount NUMERIC(78,0) NOT NULL,
            asset TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'created' CHECK (status IN (
                'created', 'funded', 'delivered', 'completed', 'cancelled'
            )),
            delivery_proof TEXT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            delivered_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_escrows_buyer ON escrows(buyer);
        CREATE INDEX IF NOT EXISTS idx_escrows_seller ON escrows(seller);

        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            wallet TEXT NOT NULL,
            type TEXT NOT NULL,
            title TEXT NOT NULL,
            body TEXT,
            reference TEXT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_wallet_created ON notifications(wallet, created_at);
    `)
	return err
}
