package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/steeltrade/stockledger-api/internal/application/dto"
	"github.com/steeltrade/stockledger-api/internal/application/ledger"
	"github.com/steeltrade/stockledger-api/internal/domain"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
	"github.com/steeltrade/stockledger-api/pkg/logger"
)

// MovementHandler serves the stock-movement ledger endpoints (protected).
type MovementHandler struct {
	uc  *ledger.UseCase
	log *logger.Logger
}

// NewMovementHandler builds the handler.
func NewMovementHandler(uc *ledger.UseCase, log *logger.Logger) *MovementHandler {
	return &MovementHandler{uc: uc, log: log}
}

// Record godoc
// @Summary      Append a stock movement to the ledger
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, warehouse_id, movement_type, quantity, reference_type"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-movements [post]
func (h *MovementHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	movement, err := h.uc.RecordMovement(c.Context(), ledger.RecordMovementInput{
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		MovementType:    in.MovementType,
		Quantity:        in.Quantity,
		Unit:            in.Unit,
		ReferenceType:   in.ReferenceType,
		ReferenceNumber: in.ReferenceNumber,
		ReferenceID:     in.ReferenceID,
		Notes:           in.Notes,
		UnitCost:        in.UnitCost,
		BatchNumber:     in.BatchNumber,
		CoilNumber:      in.CoilNumber,
		HeatNumber:      in.HeatNumber,
		MovementDate:    in.MovementDate,
		CreatedBy:       GetUserID(c),
		CreatedByName:   GetUserName(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResponseFrom(movement))
}

// List godoc
// @Summary      List ledger entries (filtered, paginated)
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        product_id      query  string  false  "Filter by product"
// @Param        warehouse_id    query  string  false  "Filter by warehouse"
// @Param        movement_type   query  string  false  "Filter by movement type"
// @Param        reference_type  query  string  false  "Filter by reference type"
// @Param        date_from       query  string  false  "RFC3339 or YYYY-MM-DD"
// @Param        date_to         query  string  false  "RFC3339 or YYYY-MM-DD"
// @Param        search          query  string  false  "Matches reference_number and notes"
// @Param        page            query  int     false  "Page (1-based)"
// @Param        limit           query  int     false  "Page size (max 100)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()

	filter := repository.MovementFilter{
		ProductID:     c.Query("product_id"),
		WarehouseID:   c.Query("warehouse_id"),
		MovementType:  c.Query("movement_type"),
		ReferenceType: c.Query("reference_type"),
		Search:        c.Query("search"),
		Limit:         page.Limit,
		Offset:        page.Offset(),
	}
	var err error
	if filter.DateFrom, err = parseDate(c.Query("date_from")); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}
	if filter.DateTo, err = parseDate(c.Query("date_to")); err != nil {
		return fail(c, domain.ErrInvalidInput)
	}

	movements, total, err := h.uc.ListMovements(c.Context(), filter)
	if err != nil {
		if !degraded(c, h.log, err) {
			return fail(c, err)
		}
		movements, total = nil, 0
	}
	return c.JSON(dto.MovementListFrom(movements, page, total))
}

// Get godoc
// @Summary      Get one ledger entry
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Movement ID"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/{id} [get]
func (h *MovementHandler) Get(c *fiber.Ctx) error {
	movement, err := h.uc.GetMovement(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.MovementResponseFrom(movement))
}

// UpdateNotes godoc
// @Summary      Edit the notes of a ledger entry (only mutable field)
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "Movement ID"
// @Param        body  body  dto.UpdateMovementRequest  true  "notes"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock-movements/{id} [put]
func (h *MovementHandler) UpdateNotes(c *fiber.Ctx) error {
	var in dto.UpdateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	movement, err := h.uc.UpdateNotes(c.Context(), c.Params("id"), in.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.MovementResponseFrom(movement))
}

// Delete godoc
// @Summary      Delete the newest ledger entry of its balance key
// @Description  Entries linked to a transfer or reservation, or with later
//
//	entries on the same (product, warehouse) key, cannot be deleted.
//
// @Tags         stock-movements
// @Security     Bearer
// @Param        id  path  string  true  "Movement ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteMovement(c.Context(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Balance godoc
// @Summary      Current on-hand quantity for a (product, warehouse) pair
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true  "Product ID"
// @Param        warehouse_id  query  string  true  "Warehouse ID"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/balance [get]
func (h *MovementHandler) Balance(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	warehouseID := c.Query("warehouse_id")
	if productID == "" || warehouseID == "" {
		return fail(c, domain.ErrInvalidInput)
	}
	quantity, err := h.uc.GetBalance(c.Context(), productID, warehouseID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.BalanceResponse{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
	})
}

// ByReference godoc
// @Summary      List all ledger entries linked to a source document
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        reference_type    query  string  true  "e.g. INVOICE"
// @Param        reference_number  query  string  true  "Document number"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/stock-movements/by-reference [get]
func (h *MovementHandler) ByReference(c *fiber.Ctx) error {
	referenceType := c.Query("reference_type")
	referenceNumber := c.Query("reference_number")
	if referenceType == "" || referenceNumber == "" {
		return fail(c, domain.ErrInvalidInput)
	}
	movements, err := h.uc.ListByReference(c.Context(), referenceType, referenceNumber)
	if err != nil {
		if !degraded(c, h.log, err) {
			return fail(c, err)
		}
		movements = nil
	}
	data := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		data = append(data, dto.MovementResponseFrom(m))
	}
	return c.JSON(data)
}

// parseDate accepts RFC3339 or a bare date.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
