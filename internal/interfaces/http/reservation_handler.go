package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/steeltrade/stockledger-api/internal/application/dto"
	"github.com/steeltrade/stockledger-api/internal/application/reservation"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
	"github.com/steeltrade/stockledger-api/pkg/logger"
)

// ReservationHandler serves the stock reservation workflow (protected).
type ReservationHandler struct {
	uc  *reservation.UseCase
	log *logger.Logger
}

// NewReservationHandler builds the handler.
func NewReservationHandler(uc *reservation.UseCase, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Open an ACTIVE reservation (no ledger effect)
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "product_id, warehouse_id, quantity"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock-movements/reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Create(c.Context(), reservation.CreateInput{
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		Quantity:        in.Quantity,
		Unit:            in.Unit,
		ReferenceType:   in.ReferenceType,
		ReferenceNumber: in.ReferenceNumber,
		ReferenceID:     in.ReferenceID,
		ExpiryDate:      in.ExpiryDate,
		Notes:           in.Notes,
		CreatedBy:       GetUserID(c),
		CreatedByName:   GetUserName(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReservationResponseFrom(res))
}

// List godoc
// @Summary      List reservations (filtered, paginated; EXPIRED hidden by default)
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        product_id       query  string  false  "Filter by product"
// @Param        warehouse_id     query  string  false  "Filter by warehouse"
// @Param        status           query  string  false  "Filter by status"
// @Param        include_expired  query  bool    false  "Include EXPIRED rows"
// @Param        page             query  int     false  "Page (1-based)"
// @Param        limit            query  int     false  "Page size (max 100)"
// @Success      200  {object}  dto.ReservationListResponse
// @Router       /api/stock-movements/reservations [get]
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()

	reservations, total, err := h.uc.List(c.Context(), repository.ReservationFilter{
		ProductID:      c.Query("product_id"),
		WarehouseID:    c.Query("warehouse_id"),
		Status:         c.Query("status"),
		IncludeExpired: c.QueryBool("include_expired"),
		Limit:          page.Limit,
		Offset:         page.Offset(),
	})
	if err != nil {
		if !degraded(c, h.log, err) {
			return fail(c, err)
		}
		reservations, total = nil, 0
	}
	return c.JSON(dto.ReservationListFrom(reservations, page, total))
}

// Get godoc
// @Summary      Get one reservation
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Reservation ID"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/reservations/{id} [get]
func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	res, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ReservationResponseFrom(res))
}

// Fulfill godoc
// @Summary      Fulfill part of a reservation
// @Description  With reference_type INVOICE the fulfillment also deducts
//
//	physical stock in the same transaction.
//
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "Reservation ID"
// @Param        body  body  dto.FulfillReservationRequest  true  "quantity"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-movements/reservations/{id}/fulfill [post]
func (h *ReservationHandler) Fulfill(c *fiber.Ctx) error {
	var in dto.FulfillReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Fulfill(c.Context(), c.Params("id"), reservation.FulfillInput{
		Quantity:        in.Quantity,
		ReferenceType:   in.ReferenceType,
		ReferenceNumber: in.ReferenceNumber,
		By:              GetUserID(c),
		ByName:          GetUserName(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ReservationResponseFrom(res))
}

// Cancel godoc
// @Summary      Cancel a reservation
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true   "Reservation ID"
// @Param        body  body  dto.CancelReservationRequest  false  "reason"
// @Success      200   {object}  dto.ReservationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-movements/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelReservationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	res, err := h.uc.Cancel(c.Context(), c.Params("id"), in.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ReservationResponseFrom(res))
}

// Expire godoc
// @Summary      Run the reservation expiry sweep now (idempotent)
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ExpireReservationsResponse
// @Router       /api/stock-movements/reservations/expire [post]
func (h *ReservationHandler) Expire(c *fiber.Ctx) error {
	count, err := h.uc.Expire(c.Context(), time.Now())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ExpireReservationsResponse{Expired: count})
}
