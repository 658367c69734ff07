package http

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/application/logistics"
)

// ReleaseHandler flujo de liberación: transiciones, respuesta del cliente y vista previa del guardián.
type ReleaseHandler struct {
	uc *logistics.WorkflowUseCase
}

// NewReleaseHandler construye el handler.
func NewReleaseHandler(uc *logistics.WorkflowUseCase) *ReleaseHandler {
	return &ReleaseHandler{uc: uc}
}

// Transition godoc
// @Summary      Cambiar estado de la carga
// @Description  to=pending_release|approved|on_hold|in_transit|delivered. delivered exige delivery_dates
//
//	por cada destino. Una transición rechazada lista todas las precondiciones no cumplidas.
//
// @Tags         release
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la carga"
// @Param        body  body  dto.TransitionRequest   true  "estado destino"
// @Success      200   {object}  dto.TransitionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/loads/{id}/transitions [post]
func (h *ReleaseHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Transition(c.Context(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Readiness godoc
// @Summary      Vista previa del guardián de salida
// @Tags         release
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la carga"
// @Success      200  {object}  dto.ReadinessResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/loads/{id}/readiness [get]
func (h *ReleaseHandler) Readiness(c *fiber.Ctx) error {
	out, err := h.uc.Readiness(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReleaseRequest godoc
// @Summary      Solicitud de liberación activa
// @Tags         release
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la carga"
// @Success      200  {object}  dto.ReleaseRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/loads/{id}/release-request [get]
func (h *ReleaseHandler) GetReleaseRequest(c *fiber.Ctx) error {
	out, err := h.uc.GetReleaseRequest(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Respond godoc
// @Summary      Responder la solicitud de liberación
// @Description  decision=approve|hold. Acepta JSON o multipart/form-data con el documento de
//
//	autorización en el campo "document".
//
// @Tags         release
// @Security     Bearer
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        id        path      string  true   "ID de la carga"
// @Param        decision  formData  string  true   "approve | hold"
// @Param        release_number  formData  string  false  "Número de liberación"
// @Param        notes     formData  string  false  "Notas del cliente"
// @Param        document  formData  file    false  "Documento de autorización"
// @Success      200  {object}  dto.TransitionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/loads/{id}/release-request/respond [post]
func (h *ReleaseHandler) Respond(c *fiber.Ctx) error {
	var req dto.RespondReleaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	doc, closeDoc, err := formDocument(c)
	if err != nil {
		return badBody(c)
	}
	defer closeDoc()

	out, err := h.uc.Respond(c.Context(), actorFrom(c), c.Params("id"), dto.RespondReleaseInput{
		Decision:      req.Decision,
		ReleaseNumber: req.ReleaseNumber,
		Notes:         req.Notes,
		Document:      doc,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// formDocument abre el archivo "document" de un multipart. Sin multipart o sin archivo devuelve nil.
func formDocument(c *fiber.Ctx) (*dto.DocumentUpload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, noop, nil
	}
	fh, err := c.FormFile("document")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return uploadFrom(fh, f), func() { _ = f.Close() }, nil
}

func uploadFrom(fh *multipart.FileHeader, f multipart.File) *dto.DocumentUpload {
	return &dto.DocumentUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Content:     f,
	}
}
