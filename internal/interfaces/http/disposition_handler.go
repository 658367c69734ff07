package http

import (
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/application/logistics"
	"github.com/jhoicas/Despachos-api/internal/domain"
)

// DispositionHandler disposición por pallet: destino, retención, número y documento de liberación.
type DispositionHandler struct {
	uc *logistics.DispositionUseCase
}

// NewDispositionHandler construye el handler.
func NewDispositionHandler(uc *logistics.DispositionUseCase) *DispositionHandler {
	return &DispositionHandler{uc: uc}
}

// SetDisposition godoc
// @Summary      Embarcar a destino o retener un pallet
// @Tags         disposition
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id            path  string                  true  "ID de la carga"
// @Param        membershipId  path  string                  true  "ID de la membresía"
// @Param        body          body  dto.DispositionRequest  true  "action=ship (destination) | hold (release_date opcional)"
// @Success      200  {object}  dto.MembershipResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/loads/{id}/memberships/{membershipId}/disposition [put]
func (h *DispositionHandler) SetDisposition(c *fiber.Ctx) error {
	var req dto.DispositionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	in := dto.DispositionInput{Action: req.Action, Destination: req.Destination}
	if s := strings.TrimSpace(req.ReleaseDate); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return writeError(c, domain.NewValidationError("release_date", "debe tener formato YYYY-MM-DD"))
		}
		in.ReleaseDate = &t
	}
	out, err := h.uc.SetDisposition(c.Context(), actorFrom(c), c.Params("id"), c.Params("membershipId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetReleaseNumber godoc
// @Summary      Asignar número de liberación a un pallet
// @Tags         disposition
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id            path  string                    true  "ID de la carga"
// @Param        membershipId  path  string                    true  "ID de la membresía"
// @Param        body          body  dto.ReleaseNumberRequest  true  "release_number"
// @Success      200  {object}  dto.MembershipResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/loads/{id}/memberships/{membershipId}/release-number [put]
func (h *DispositionHandler) SetReleaseNumber(c *fiber.Ctx) error {
	var req dto.ReleaseNumberRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetReleaseNumber(c.Context(), actorFrom(c), c.Params("id"), c.Params("membershipId"), req.ReleaseNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AttachDocument godoc
// @Summary      Adjuntar un documento de liberación a varias membresías
// @Description  Todo o nada: si alguna membresía no es editable no se referencia en ninguna.
// @Tags         disposition
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id              path      string  true  "ID de la carga"
// @Param        membership_ids  formData  string  true  "IDs separados por coma"
// @Param        document        formData  file    true  "Documento"
// @Success      200  {object}  dto.AttachDocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/loads/{id}/documents [post]
func (h *DispositionHandler) AttachDocument(c *fiber.Ctx) error {
	doc, closeDoc, err := formDocument(c)
	if err != nil {
		return badBody(c)
	}
	defer closeDoc()
	if doc == nil {
		return writeError(c, domain.NewValidationError("document", "archivo requerido"))
	}
	var ids []string
	for _, id := range strings.Split(c.FormValue("membership_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	out, err := h.uc.AttachDocument(c.Context(), actorFrom(c), c.Params("id"), ids, doc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DownloadDocument godoc
// @Summary      Descargar documento de liberación
// @Tags         disposition
// @Security     Bearer
// @Produce      octet-stream
// @Param        key   path  string  true  "Primera parte del handle"
// @Param        name  path  string  true  "Nombre del archivo"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{key}/{name} [get]
func (h *DispositionHandler) DownloadDocument(c *fiber.Ctx) error {
	handle := c.Params("key") + "/" + c.Params("name")
	rc, err := h.uc.OpenDocument(c.Context(), handle)
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(path.Base(handle))
	// fasthttp cierra el stream al terminar de enviarlo.
	return c.SendStream(rc)
}

// ListHeldDue godoc
// @Summary      Pallets retenidos con fecha de reconsideración vencida
// @Tags         disposition
// @Security     Bearer
// @Produce      json
// @Param        as_of  query  string  false  "YYYY-MM-DD (por defecto hoy)"
// @Success      200  {array}   dto.HeldMembershipResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/memberships/held-due [get]
func (h *DispositionHandler) ListHeldDue(c *fiber.Ctx) error {
	asOf := time.Now()
	if s := c.Query("as_of"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return writeError(c, domain.NewValidationError("as_of", "debe tener formato YYYY-MM-DD"))
		}
		asOf = t
	}
	out, err := h.uc.ListHeldDue(c.Context(), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
