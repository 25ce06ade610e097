package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sudo-init-do/agroledger/internal/alerts"
	"github.com/sudo-init-do/agroledger/internal/asset"
	"github.com/sudo-init-do/agroledger/internal/audit"
	"github.com/sudo-init-do/agroledger/internal/config"
	"github.com/sudo-init-do/agroledger/internal/db"
	"github.com/sudo-init-do/agroledger/internal/escrow"
	"github.com/sudo-init-do/agroledger/internal/feed"
	"github.com/sudo-init-do/agroledger/internal/httpapi"
	"github.com/sudo-init-do/agroledger/internal/identity"
	"github.com/sudo-init-do/agroledger/internal/loan"
	mware "github.com/sudo-init-do/agroledger/internal/middleware"
	"github.com/sudo-init-do/agroledger/internal/pool"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	// Repositories: Postgres when a DSN is configured, in-memory otherwise.
	var (
		identityRepo identity.Repository = identity.NewMemoryRepository()
		loanRepo     loan.Repository     = loan.NewMemoryRepository()
		poolRepo     pool.Repository     = pool.NewMemoryRepository()
		escrowRepo   escrow.Repository   = escrow.NewMemoryRepository()
	)
	var notifier *alerts.Notifier
	if cfg.DatabaseDSN != "" {
		dbpool, err := db.Connect(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		if err := db.EnsureSchema(ctx, dbpool); err != nil {
			log.Fatalf("schema bootstrap failed: %v", err)
		}
		identityRepo = identity.NewPostgresRepository(dbpool)
		loanRepo = loan.NewPostgresRepository(dbpool)
		poolRepo = pool.NewPostgresRepository(dbpool)
		escrowRepo = escrow.NewPostgresRepository(dbpool)
		if cfg.RedisAddr != "" {
			notifier = alerts.Start(cfg.RedisAddr, dbpool)
		}
	} else if cfg.RedisAddr != "" {
		notifier = alerts.Start(cfg.RedisAddr, nil)
	}

	// In-process asset ledger; the authority holds the mint privilege and the
	// loan manager's asset is registered up front.
	assets := asset.NewRegistry()
	loanToken := assets.Register(cfg.LoanAsset, cfg.Authority)

	auditLog := audit.NewLog()
	hub := feed.NewHub()
	auditLog.Attach(hub)

	identities := identity.NewService(identityRepo, cfg.Authority, auditLog, logger)
	loans := loan.NewService(loanRepo, identities, loanToken, cfg.LoanCustody, auditLog, logger)
	pools := pool.NewService(poolRepo, assets, cfg.PoolCustody, cfg.Authority, auditLog, logger)
	escrows := escrow.NewService(escrowRepo, assets, cfg.EscrowCustody, cfg.Authority, auditLog, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	h := &httpapi.Handler{
		Identity: identities,
		Loans:    loans,
		Pools:    pools,
		Escrows:  escrows,
		Assets:   assets,
		Audit:    auditLog,
	}
	if notifier != nil {
		h.Notify = notifier
	}
	auth := mware.Auth(cfg.JWTSecret)
	h.Register(e, auth)
	e.GET("/events/ws", hub.EventsWS, auth)

	log.Printf("agroledger listening on :%s", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
