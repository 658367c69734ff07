package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/application/logistics"
)

// PalletHandler consultas y comandos del registro de pallets.
type PalletHandler struct {
	uc *logistics.RegistryUseCase
}

// NewPalletHandler construye el handler.
func NewPalletHandler(uc *logistics.RegistryUseCase) *PalletHandler {
	return &PalletHandler{uc: uc}
}

// ListAvailable godoc
// @Summary      Pallets disponibles para asignar
// @Description  Filtros por subcadena sin distinguir mayúsculas; todos los filtros se combinan con AND.
// @Tags         pallets
// @Security     Bearer
// @Produce      json
// @Param        product_code  query  string  false  "Código de producto"
// @Param        description   query  string  false  "Descripción"
// @Param        lot           query  string  false  "Lote"
// @Param        order_ref     query  string  false  "Pedido o lote de cliente"
// @Param        unit          query  string  false  "Unidad"
// @Param        limit         query  int     false  "Máx. 100"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.PalletListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/pallets/available [get]
func (h *PalletHandler) ListAvailable(c *fiber.Ctx) error {
	var q dto.PalletFilterQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.ListAvailable(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener pallet
// @Tags         pallets
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pallet"
// @Success      200  {object}  dto.PalletResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pallets/{id} [get]
func (h *PalletHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateVirtual godoc
// @Summary      Crear pallet virtual (aún no producido)
// @Tags         pallets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateVirtualPalletRequest  true  "product_code y quantity > 0 obligatorios"
// @Success      201   {object}  dto.PalletResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/pallets/virtual [post]
func (h *PalletHandler) CreateVirtual(c *fiber.Ctx) error {
	var in dto.CreateVirtualPalletRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateVirtual(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// MarkShipped godoc
// @Summary      Marcar pallets como embarcados
// @Tags         pallets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PalletIDsRequest  true  "pallet_ids"
// @Success      200   {object}  dto.BulkStatusResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "pallet sin registro de salida"
// @Router       /api/pallets/mark-shipped [post]
func (h *PalletHandler) MarkShipped(c *fiber.Ctx) error {
	var in dto.PalletIDsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.MarkShipped(c.Context(), in.PalletIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Release godoc
// @Summary      Regresar pallets a disponibles
// @Tags         pallets
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PalletIDsRequest  true  "pallet_ids"
// @Success      200   {object}  dto.BulkStatusResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "pallet con carga"
// @Router       /api/pallets/release [post]
func (h *PalletHandler) Release(c *fiber.Ctx) error {
	var in dto.PalletIDsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Release(c.Context(), in.PalletIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
