package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/steeltrade/stockledger-api/internal/application/dto"
	"github.com/steeltrade/stockledger-api/internal/application/transfer"
	"github.com/steeltrade/stockledger-api/internal/domain/repository"
	"github.com/steeltrade/stockledger-api/pkg/logger"
)

// TransferHandler serves the inter-warehouse transfer workflow (protected).
type TransferHandler struct {
	uc  *transfer.UseCase
	log *logger.Logger
}

// NewTransferHandler builds the handler.
func NewTransferHandler(uc *transfer.UseCase, log *logger.Logger) *TransferHandler {
	return &TransferHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Open a transfer in DRAFT (no stock moves yet)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "source, destination, items"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock-movements/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]transfer.ItemInput, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, transfer.ItemInput{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			BatchNumber: item.BatchNumber,
			Notes:       item.Notes,
		})
	}
	t, err := h.uc.Create(c.Context(), transfer.CreateInput{
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Items:                  items,
		Notes:                  in.Notes,
		ExpectedDate:           in.ExpectedDate,
		CreatedBy:              GetUserID(c),
		CreatedByName:          GetUserName(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponseFrom(t))
}

// List godoc
// @Summary      List transfers (filtered, paginated)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        source_warehouse_id       query  string  false  "Filter by source"
// @Param        destination_warehouse_id  query  string  false  "Filter by destination"
// @Param        status                    query  string  false  "Filter by status"
// @Param        page                      query  int     false  "Page (1-based)"
// @Param        limit                     query  int     false  "Page size (max 100)"
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/stock-movements/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()

	transfers, total, err := h.uc.List(c.Context(), repository.TransferFilter{
		SourceWarehouseID:      c.Query("source_warehouse_id"),
		DestinationWarehouseID: c.Query("destination_warehouse_id"),
		Status:                 c.Query("status"),
		Limit:                  page.Limit,
		Offset:                 page.Offset(),
	})
	if err != nil {
		if !degraded(c, h.log, err) {
			return fail(c, err)
		}
		transfers, total = nil, 0
	}
	return c.JSON(dto.TransferListFrom(transfers, page, total))
}

// Get godoc
// @Summary      Get one transfer with its items
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Transfer ID"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	t, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.TransferResponseFrom(t))
}

// Ship godoc
// @Summary      Ship a transfer (deducts every item at the source, atomically)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true   "Transfer ID"
// @Param        body  body  dto.ShipTransferRequest  false  "Logistics details"
// @Success      200   {object}  dto.TransferResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-movements/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	var in dto.ShipTransferRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	t, err := h.uc.Ship(c.Context(), c.Params("id"), transfer.ShipInput{
		TrackingNumber: in.TrackingNumber,
		Carrier:        in.Carrier,
		VehicleNumber:  in.VehicleNumber,
		DriverName:     in.DriverName,
		DriverPhone:    in.DriverPhone,
		By:             GetUserID(c),
		ByName:         GetUserName(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.TransferResponseFrom(t))
}

// Receive godoc
// @Summary      Receive a transfer (adds every item at the destination)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Transfer ID"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	t, err := h.uc.Receive(c.Context(), c.Params("id"), transfer.ActorInput{
		By:     GetUserID(c),
		ByName: GetUserName(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.TransferResponseFrom(t))
}

// Cancel godoc
// @Summary      Cancel a transfer (compensates the source if already shipped)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Transfer ID"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	t, err := h.uc.Cancel(c.Context(), c.Params("id"), transfer.ActorInput{
		By:     GetUserID(c),
		ByName: GetUserName(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.TransferResponseFrom(t))
}
