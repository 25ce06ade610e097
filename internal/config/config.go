// Package config loads runtime settings for the ledger server from the
// environment, with an optional .env overlay for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// Config holds runtime settings for the agroledger server.
//
// Fields:
//   - Port: HTTP listen port.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means in-memory repositories.
//   - RedisAddr: Redis address for the alerts queue. Empty disables alerts.
//   - JWTSecret: HMAC secret for verifying caller tokens (HS256).
//   - Authority: wallet holding the privileged role (pool creation, loan
//     issuance, delivery confirmation, reputation writes, minting).
//   - LoanAsset: asset ref the loan manager lends in.
//   - LoanCustody / PoolCustody / EscrowCustody: component custody accounts.
type Config struct {
	Port          string
	DatabaseDSN   string
	RedisAddr     string
	JWTSecret     string
	Authority     shared.Address
	LoanAsset     shared.Address
	LoanCustody   shared.Address
	PoolCustody   shared.Address
	EscrowCustody shared.Address
}

// Load reads the .env file if present, then the environment, applying
// development defaults for anything unset.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getenv("PORT", "8080"),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		JWTSecret:     getenv("JWT_SECRET", "supersecret"),
		Authority:     shared.Address(getenv("AUTHORITY_WALLET", "authority")),
		LoanAsset:     shared.Address(getenv("LOAN_ASSET", "HRVST")),
		LoanCustody:   shared.Address(getenv("LOAN_CUSTODY", "loan-manager")),
		PoolCustody:   shared.Address(getenv("POOL_CUSTODY", "liquidity-pool")),
		EscrowCustody: shared.Address(getenv("ESCROW_CUSTODY", "escrow")),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
