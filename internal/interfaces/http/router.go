package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/steeltrade/stockledger-api/internal/application/ledger"
	"github.com/steeltrade/stockledger-api/internal/application/reporting"
	"github.com/steeltrade/stockledger-api/internal/application/reservation"
	"github.com/steeltrade/stockledger-api/internal/application/transfer"
	"github.com/steeltrade/stockledger-api/internal/application/usecase"
	"github.com/steeltrade/stockledger-api/pkg/logger"
)

// RouterDeps are the dependencies the router wires into handlers.
type RouterDeps struct {
	LedgerUC      *ledger.UseCase
	TransferUC    *transfer.UseCase
	ReservationUC *reservation.UseCase
	ReportingUC   *reporting.UseCase
	ProductUC     *usecase.ProductUseCase
	WarehouseUC   *usecase.WarehouseUseCase
	Log           *logger.Logger

	JWTSecret     string
	JWTIssuer     string
	JWTExpiration int
	DevAuth       bool // expose /api/auth/token outside production
}

// Router registers the API routes. Static subpaths (balance, transfers, ...)
// are registered before /:id so fiber does not swallow them as parameters.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	if deps.DevAuth {
		authHandler := NewAuthHandler(deps.JWTSecret, deps.JWTIssuer, deps.JWTExpiration)
		api.Post("/auth/token", authHandler.Token)
	}

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	movements := protected.Group("/stock-movements")
	movementHandler := NewMovementHandler(deps.LedgerUC, deps.Log)
	reportingHandler := NewReportingHandler(deps.ReportingUC, deps.Log)

	movements.Get("/balance", movementHandler.Balance)
	movements.Get("/by-reference", movementHandler.ByReference)
	movements.Get("/overview", reportingHandler.Overview)
	movements.Get("/recent-activity", reportingHandler.RecentActivity)
	movements.Get("/reconciliation/:warehouseId", reportingHandler.Reconciliation)

	transfers := movements.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC, deps.Log)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/:id/ship", transferHandler.Ship)
	transfers.Post("/:id/receive", transferHandler.Receive)
	transfers.Post("/:id/cancel", transferHandler.Cancel)

	reservations := movements.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.ReservationUC, deps.Log)
	reservations.Post("/expire", reservationHandler.Expire)
	reservations.Post("/", reservationHandler.Create)
	reservations.Get("/", reservationHandler.List)
	reservations.Get("/:id", reservationHandler.Get)
	reservations.Post("/:id/fulfill", reservationHandler.Fulfill)
	reservations.Post("/:id/cancel", reservationHandler.Cancel)

	movements.Post("/", movementHandler.Record)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.Get)
	movements.Put("/:id", movementHandler.UpdateNotes)
	movements.Delete("/:id", movementHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.Get)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, deps.Log)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.Get)
}
