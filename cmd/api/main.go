package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/robfig/cron/v3"

	"github.com/steeltrade/stockledger-api/internal/application/ledger"
	"github.com/steeltrade/stockledger-api/internal/application/ports"
	"github.com/steeltrade/stockledger-api/internal/application/reporting"
	"github.com/steeltrade/stockledger-api/internal/application/reservation"
	"github.com/steeltrade/stockledger-api/internal/application/transfer"
	"github.com/steeltrade/stockledger-api/internal/application/usecase"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
	"github.com/steeltrade/stockledger-api/internal/infrastructure/memory"
	"github.com/steeltrade/stockledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/steeltrade/stockledger-api/internal/interfaces/http"
	"github.com/steeltrade/stockledger-api/pkg/config"
	"github.com/steeltrade/stockledger-api/pkg/logger"
)

type repos struct {
	movements    repository.StockMovementRepository
	balances     repository.StockBalanceRepository
	transfers    repository.TransferRepository
	reservations repository.ReservationRepository
	products     repository.ProductRepository
	warehouses   repository.WarehouseRepository
	tx           ports.TxRunner
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting service")

	ctx := context.Background()

	var r repos
	if cfg.DB.Configured() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("PostgreSQL connection")
		}
		defer pool.Close()
		r = repos{
			movements:    postgres.NewStockMovementRepository(pool),
			balances:     postgres.NewStockBalanceRepository(pool),
			transfers:    postgres.NewTransferRepository(pool),
			reservations: postgres.NewReservationRepository(pool),
			products:     postgres.NewProductRepository(pool),
			warehouses:   postgres.NewWarehouseRepository(pool),
			tx:           postgres.NewTxRunner(pool),
		}
		log.Info().Msg("storage backend: postgres")
	} else {
		store := memory.NewStore()
		r = repos{
			movements:    store.Movements(),
			balances:     store.Balances(),
			transfers:    store.Transfers(),
			reservations: store.Reservations(),
			products:     store.Products(),
			warehouses:   store.Warehouses(),
			tx:           store.TxRunner(),
		}
		log.Warn().Msg("no database configured, using in-memory storage")
	}

	ledgerUC := ledger.NewUseCase(r.tx, r.movements, r.balances, r.products, r.warehouses)
	transferUC := transfer.NewUseCase(r.tx, r.transfers, r.products, r.warehouses, ledgerUC)
	reservationUC := reservation.NewUseCase(r.tx, r.reservations, r.products, r.warehouses, ledgerUC)
	reportingUC := reporting.NewUseCase(r.movements, r.balances, r.transfers, r.reservations)
	productUC := usecase.NewProductUseCase(r.products)
	warehouseUC := usecase.NewWarehouseUseCase(r.warehouses)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:      ledgerUC,
		TransferUC:    transferUC,
		ReservationUC: reservationUC,
		ReportingUC:   reportingUC,
		ProductUC:     productUC,
		WarehouseUC:   warehouseUC,
		Log:           log,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
		JWTExpiration: cfg.JWT.Expiration,
		DevAuth:       cfg.App.Env != "production",
	})

	// Reservation expiry sweep. The use case is idempotent, so overlapping or
	// manual runs are harmless.
	var sweeper *cron.Cron
	if cfg.Sweep.Enabled {
		sweeper = cron.New()
		_, err := sweeper.AddFunc(cfg.Sweep.Cron, func() {
			count, err := reservationUC.Expire(context.Background(), time.Now())
			if err != nil {
				log.Error().Err(err).Msg("reservation expiry sweep")
				return
			}
			if count > 0 {
				log.Info().Int("expired", count).Msg("reservation expiry sweep")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Str("cron", cfg.Sweep.Cron).Msg("invalid sweep schedule")
		}
		sweeper.Start()
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("service stopped")
}
