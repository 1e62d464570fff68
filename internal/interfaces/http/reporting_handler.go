package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/steeltrade/stockledger-api/internal/application/dto"
	"github.com/steeltrade/stockledger-api/internal/application/reporting"
	"github.com/steeltrade/stockledger-api/pkg/logger"
)

// ReportingHandler serves the overview and reconciliation queries (protected).
type ReportingHandler struct {
	uc  *reporting.UseCase
	log *logger.Logger
}

// NewReportingHandler builds the handler.
func NewReportingHandler(uc *reporting.UseCase, log *logger.Logger) *ReportingHandler {
	return &ReportingHandler{uc: uc, log: log}
}

// Overview godoc
// @Summary      Dashboard KPI block (today's windows in server-local time)
// @Tags         reporting
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.OverviewResponse
// @Router       /api/stock-movements/overview [get]
func (h *ReportingHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.uc.Overview(c.Context(), time.Now())
	if err != nil {
		if !degraded(c, h.log, err) {
			return fail(c, err)
		}
		overview = &dto.OverviewResponse{}
	}
	return c.JSON(overview)
}

// RecentActivity godoc
// @Summary      Merged recent-activity feed (movements, transfers, reservations)
// @Tags         reporting
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Max rows, default 20"
// @Success      200  {array}  dto.ActivityItem
// @Router       /api/stock-movements/recent-activity [get]
func (h *ReportingHandler) RecentActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := h.uc.RecentActivity(c.Context(), limit)
	if err != nil {
		if !degraded(c, h.log, err) {
			return fail(c, err)
		}
		items = nil
	}
	if items == nil {
		items = []dto.ActivityItem{}
	}
	return c.JSON(items)
}

// Reconciliation godoc
// @Summary      Audit one warehouse's balances against the ledger
// @Description  Recomputes the signed quantity sum per product from the ledger
//
//	and compares it with the materialized balance and the newest
//	balance_after snapshot. On disagreement the ledger wins.
//
// @Tags         reporting
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  path  string  true  "Warehouse ID"
// @Success      200  {object}  dto.LedgerAuditResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/reconciliation/{warehouseId} [get]
func (h *ReportingHandler) Reconciliation(c *fiber.Ctx) error {
	report, err := h.uc.LedgerAudit(c.Context(), c.Params("warehouseId"))
	if err != nil {
		if !degraded(c, h.log, err) {
			return fail(c, err)
		}
		report = &dto.LedgerAuditResponse{
			WarehouseID: c.Params("warehouseId"),
			AsOf:        time.Now(),
			Items:       []dto.LedgerAuditItem{},
		}
	}
	return c.JSON(report)
}
