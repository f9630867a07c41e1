package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/custodia-labs/treasury-ledger/internal/config"
	"github.com/custodia-labs/treasury-ledger/internal/events/kafka"
	"github.com/custodia-labs/treasury-ledger/internal/interfaces"
	"github.com/custodia-labs/treasury-ledger/internal/models"
	"github.com/custodia-labs/treasury-ledger/internal/scheduler"
	"github.com/custodia-labs/treasury-ledger/internal/server"
	"github.com/custodia-labs/treasury-ledger/internal/storage/memory"
	"github.com/custodia-labs/treasury-ledger/internal/storage/postgres"
	"github.com/custodia-labs/treasury-ledger/internal/swap"
	"github.com/custodia-labs/treasury-ledger/internal/tokens"
	"github.com/custodia-labs/treasury-ledger/internal/treasury"
	"github.com/custodia-labs/treasury-ledger/pkg/logger"
)

const routerAccount = "swap-router"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting treasury ledger")

	store, closeStore, err := buildStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize allocation store")
	}
	defer closeStore()

	var events interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers)
		defer publisher.Close()
		events = publisher
		log.Info().Strs("brokers", cfg.KafkaBrokers).Msg("Kafka publisher enabled")
	}

	base := models.Asset{Address: cfg.BaseAsset.Address, Symbol: cfg.BaseAsset.Symbol, Decimals: cfg.BaseAsset.Decimals}
	quote := models.Asset{Address: cfg.QuoteAsset.Address, Symbol: cfg.QuoteAsset.Symbol, Decimals: cfg.QuoteAsset.Decimals}

	baseToken := tokens.NewToken(base.Address, base.Symbol, base.Decimals)
	quoteToken := tokens.NewToken(quote.Address, quote.Symbol, quote.Decimals)
	router := swap.NewFixedRateRouter(routerAccount, cfg.TreasuryAddress, base, quote, baseToken, quoteToken)

	t := treasury.New(treasury.Config{
		Admin:   cfg.AdminAddress,
		Account: cfg.TreasuryAddress,
		Assets:  []models.Asset{base, quote},
		Ports: map[string]interfaces.AssetTransferPort{
			base.Address:  tokens.NewPort(baseToken, cfg.TreasuryAddress),
			quote.Address: tokens.NewPort(quoteToken, cfg.TreasuryAddress),
		},
		Swap:   router,
		Store:  store,
		Events: events,
		Log:    log,
	})

	if cfg.DevMode {
		seedDevFunds(cfg, base, quote, baseToken, quoteToken, router, log)
	}

	sched := scheduler.New(log)
	if cfg.CompoundSchedule != "" {
		job := scheduler.NewCompoundJob(t, cfg.AdminAddress, cfg.CompoundFrom, log)
		if err := sched.AddJob(cfg.CompoundSchedule, job); err != nil {
			log.Fatal().Err(err).Msg("Failed to register compound job")
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		Treasury: t,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// seedDevFunds makes a dev instance exercisable end to end: the admin
// gets minted funds in both assets with the treasury pre-approved, and
// the router gets reserves to pay out compounds. Without this the
// in-process token banks start empty and every deposit or swap fails.
func seedDevFunds(cfg *config.Config, base, quote models.Asset, baseToken, quoteToken *tokens.Token, router *swap.FixedRateRouter, log zerolog.Logger) {
	const seedUnits = 1_000_000

	baseSeed := decimal.New(seedUnits, base.Decimals)
	quoteSeed := decimal.New(seedUnits, quote.Decimals)

	baseToken.Mint(cfg.AdminAddress, baseSeed)
	quoteToken.Mint(cfg.AdminAddress, quoteSeed)
	baseToken.Approve(cfg.AdminAddress, cfg.TreasuryAddress, baseSeed)
	quoteToken.Approve(cfg.AdminAddress, cfg.TreasuryAddress, quoteSeed)

	if err := router.AddLiquidity(base.Address, baseSeed); err != nil {
		log.Error().Err(err).Msg("Failed to seed router liquidity")
	}
	if err := router.AddLiquidity(quote.Address, quoteSeed); err != nil {
		log.Error().Err(err).Msg("Failed to seed router liquidity")
	}

	log.Info().
		Str("admin", cfg.AdminAddress).
		Int64("units", seedUnits).
		Msg("Dev funds seeded")
}

// buildStore picks Postgres when DATABASE_URL is set, the in-memory store
// otherwise.
func buildStore(cfg *config.Config, log zerolog.Logger) (interfaces.AllocationStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info().Msg("Using in-memory allocation store")
		return memory.NewMemoryAllocationStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	store := postgres.NewPostgresAllocationStore(db)
	if err := store.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}

	log.Info().Msg("Using Postgres allocation store")
	return store, func() { db.Close() }, nil
}
