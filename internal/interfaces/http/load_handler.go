package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/application/logistics"
)

// LoadHandler armado de cargas: alta, baja, pallets y membresías.
type LoadHandler struct {
	uc *logistics.AssemblyUseCase
}

// NewLoadHandler construye el handler.
func NewLoadHandler(uc *logistics.AssemblyUseCase) *LoadHandler {
	return &LoadHandler{uc: uc}
}

// Create godoc
// @Summary      Crear carga
// @Tags         loads
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLoadRequest  true  "load_number único, shipping_date YYYY-MM-DD"
// @Success      201   {object}  dto.LoadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/loads [post]
func (h *LoadHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLoadRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateLoad(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar cargas
// @Tags         loads
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado"
// @Param        limit   query  int     false  "Máx. 100"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.LoadListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/loads [get]
func (h *LoadHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.ListLoads(c.Context(), c.Query("status"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de carga con membresías y solicitud de liberación activa
// @Tags         loads
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la carga"
// @Success      200  {object}  dto.LoadDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/loads/{id} [get]
func (h *LoadHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetLoad(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar carga (libera sus pallets)
// @Tags         loads
// @Security     Bearer
// @Param        id   path  string  true  "ID de la carga"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/loads/{id} [delete]
func (h *LoadHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteLoad(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddPallets godoc
// @Summary      Agregar pallets a la carga
// @Description  Éxito parcial: cada pallet se agrega completo o se reporta con su código de error.
// @Tags         loads
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la carga"
// @Param        body  body  dto.PalletIDsRequest  true  "pallet_ids"
// @Success      200   {object}  dto.AddPalletsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/loads/{id}/pallets [post]
func (h *LoadHandler) AddPallets(c *fiber.Ctx) error {
	var in dto.PalletIDsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddPallets(c.Context(), c.Params("id"), in.PalletIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListMemberships godoc
// @Summary      Membresías de la carga con atributos del pallet
// @Tags         loads
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la carga"
// @Success      200  {array}   dto.MembershipResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/loads/{id}/memberships [get]
func (h *LoadHandler) ListMemberships(c *fiber.Ctx) error {
	out, err := h.uc.ListMemberships(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RemoveMemberships godoc
// @Summary      Quitar pallets de la carga
// @Tags         loads
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la carga"
// @Param        body  body  dto.RemoveMembershipsRequest  true  "membership_ids"
// @Success      200   {object}  dto.RemoveMembershipsResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/loads/{id}/memberships [delete]
func (h *LoadHandler) RemoveMemberships(c *fiber.Ctx) error {
	var in dto.RemoveMembershipsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RemoveMemberships(c.Context(), c.Params("id"), in.MembershipIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
