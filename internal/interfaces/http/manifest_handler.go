package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/application/logistics"
	"github.com/jhoicas/Despachos-api/internal/domain"
)

// Cabeceras de la descarga del manifiesto.
const (
	HeaderManifestDigest     = "X-Manifest-Digest"
	HeaderManifestIncomplete = "X-Manifest-Incomplete"
)

// ManifestHandler manifiesto de carga en JSON o descargable.
type ManifestHandler struct {
	uc *logistics.ManifestUseCase
}

// NewManifestHandler construye el handler.
func NewManifestHandler(uc *logistics.ManifestUseCase) *ManifestHandler {
	return &ManifestHandler{uc: uc}
}

// Get godoc
// @Summary      Manifiesto de la carga
// @Description  format=json (por defecto), csv, xml o pdf. Si faltan pedidos el documento se genera
//
//	igual: en JSON van en warnings, en descargas se marca X-Manifest-Incomplete.
//
// @Tags         manifest
// @Security     Bearer
// @Produce      json
// @Produce      text/csv
// @Produce      application/xml
// @Produce      application/pdf
// @Param        id      path   string  true   "ID de la carga"
// @Param        format  query  string  false  "json | csv | xml | pdf"
// @Success      200  {object}  dto.Manifest
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/loads/{id}/manifest [get]
func (h *ManifestHandler) Get(c *fiber.Ctx) error {
	format := c.Query("format", dto.ManifestFormatJSON)
	if format == dto.ManifestFormatJSON {
		m, err := h.uc.Generate(c.Context(), c.Params("id"))
		if err != nil && !errors.Is(err, domain.ErrIncompleteData) {
			return writeError(c, err)
		}
		return c.JSON(m)
	}

	out, err := h.uc.Export(c.Context(), c.Params("id"), format)
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(out.Filename)
	c.Set(fiber.HeaderContentType, out.ContentType)
	if out.Digest != "" {
		c.Set(HeaderManifestDigest, "sha-256="+out.Digest)
	}
	if out.Incomplete {
		c.Set(HeaderManifestIncomplete, "true")
	}
	return c.Send(out.Body)
}
