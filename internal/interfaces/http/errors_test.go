package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/domain"
)

func TestWriteError_Mapeo(t *testing.T) {
	violations := []domain.Violation{
		{Code: domain.ViolationMissingDest, Message: "1 pallet sin destino", PalletIDs: []string{"P-1"}},
		{Code: domain.ViolationPalletOnHold, Message: "1 pallet en retención", PalletIDs: []string{"P-2"}},
	}
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NewValidationError("load_number", "requerido"), http.StatusBadRequest, "VALIDATION"},
		{fmt.Errorf("%w: solo un admin puede despachar", domain.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{domain.NewNotFoundError("carga", "c1"), http.StatusNotFound, "NOT_FOUND"},
		{domain.NewAlreadyAssignedError("P-1"), http.StatusConflict, "ALREADY_ASSIGNED"},
		{domain.NewConflictError("carga", "L-1"), http.StatusConflict, "CONFLICT"},
		{domain.NewInvalidStateError("carga", "c1", "in_transit", "editar"), http.StatusConflict, "INVALID_STATE"},
		{domain.NewPreconditionFailedError("salida a tránsito", violations), http.StatusUnprocessableEntity, "PRECONDITION_FAILED"},
		{errors.New("conexión rechazada 10.0.0.5"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		app := fiber.New()
		err := tc.err
		app.Get("/", func(c *fiber.Ctx) error { return writeError(c, err) })

		resp, reqErr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, reqErr)
		var body dto.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()

		assert.Equal(t, tc.status, resp.StatusCode, tc.code)
		assert.Equal(t, tc.code, body.Code)
		if tc.code == "PRECONDITION_FAILED" {
			assert.Equal(t, violations, body.Violations, "se informan todas las violaciones")
		}
		if tc.code == "INTERNAL" {
			assert.NotContains(t, body.Message, "10.0.0.5")
		}
	}
}
