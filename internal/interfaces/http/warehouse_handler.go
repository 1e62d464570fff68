package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/steeltrade/stockledger-api/internal/application/dto"
	"github.com/steeltrade/stockledger-api/internal/application/usecase"
	"github.com/steeltrade/stockledger-api/pkg/logger"
)

// WarehouseHandler serves the warehouse endpoints (protected).
type WarehouseHandler struct {
	uc  *usecase.WarehouseUseCase
	log *logger.Logger
}

// NewWarehouseHandler builds the handler.
func NewWarehouseHandler(uc *usecase.WarehouseUseCase, log *logger.Logger) *WarehouseHandler {
	return &WarehouseHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Register a warehouse
// @Tags         warehouses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWarehouseRequest  true  "code, name"
// @Success      201   {object}  dto.WarehouseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/warehouses [post]
func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	warehouse, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(warehouse)
}

// List godoc
// @Summary      List active warehouses (paginated)
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        page   query  int  false  "Page (1-based)"
// @Param        limit  query  int  false  "Page size (max 100)"
// @Success      200  {object}  dto.WarehouseListResponse
// @Router       /api/warehouses [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	list, err := h.uc.List(c.Context(), page)
	if err != nil {
		if !degraded(c, h.log, err) {
			return fail(c, err)
		}
		list = &dto.WarehouseListResponse{
			Data:       []dto.WarehouseResponse{},
			Pagination: dto.NewPagination(page, 0),
		}
	}
	return c.JSON(list)
}

// Get godoc
// @Summary      Get one warehouse
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Warehouse ID"
// @Success      200  {object}  dto.WarehouseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/warehouses/{id} [get]
func (h *WarehouseHandler) Get(c *fiber.Ctx) error {
	warehouse, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(warehouse)
}
