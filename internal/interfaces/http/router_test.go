package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	_ "github.com/jhoicas/Despachos-api/docs"
	"github.com/jhoicas/Despachos-api/internal/application/dto"
	apphttp "github.com/jhoicas/Despachos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Despachos-api/pkg/jwt"
)

// Las rutas se prueban hasta donde responden sin tocar los casos de uso (autenticación, rol y
// validación de entrada); los casos de uso tienen sus propias pruebas.
func buildRouterApp() *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{JWTSecret: testJWTSecret})
	return app
}

func send(t *testing.T, app *fiber.App, method, path, auth string, body []byte, contentType string) (*http.Response, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var e dto.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&e)
	resp.Body.Close()
	return resp, e
}

func TestRouter_SinTokenRetorna401(t *testing.T) {
	app := buildRouterApp()
	for _, path := range []string{"/api/loads", "/api/pallets/available", "/api/loads/c1/manifest"} {
		resp, e := send(t, app, http.MethodGet, path, "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "MISSING_TOKEN", e.Code, path)
	}
}

func TestRouter_ClienteNoAccedeRutasDePlanta(t *testing.T) {
	app := buildRouterApp()
	customer := tokenForRole(t, pkgjwt.RoleCustomer)
	cases := []struct{ method, path string }{
		{http.MethodGet, "/api/pallets/available"},
		{http.MethodPost, "/api/pallets/virtual"},
		{http.MethodPost, "/api/loads"},
		{http.MethodDelete, "/api/loads/c1"},
		{http.MethodPost, "/api/loads/c1/pallets"},
		{http.MethodDelete, "/api/loads/c1/memberships"},
		{http.MethodGet, "/api/memberships/held-due"},
	}
	for _, tc := range cases {
		resp, e := send(t, app, tc.method, tc.path, customer, []byte(`{}`), fiber.MIMEApplicationJSON)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, tc.method+" "+tc.path)
		assert.Equal(t, "FORBIDDEN", e.Code)
	}
}

func TestRouter_ValidacionAntesDelCasoDeUso(t *testing.T) {
	app := buildRouterApp()
	admin := tokenForRole(t, pkgjwt.RoleAdmin)

	resp, e := send(t, app, http.MethodPut, "/api/loads/c1/memberships/m1/disposition", admin,
		[]byte(`{"action":"hold","release_date":"01/02/2025"}`), fiber.MIMEApplicationJSON)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", e.Code)

	resp, e = send(t, app, http.MethodGet, "/api/memberships/held-due?as_of=ayer", admin, nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", e.Code)

	resp, e = send(t, app, http.MethodPost, "/api/loads", admin, []byte(`{"load_number":`), fiber.MIMEApplicationJSON)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", e.Code)
}

func TestRouter_AdjuntarSinArchivo(t *testing.T) {
	app := buildRouterApp()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("membership_ids", "m1,m2"))
	require.NoError(t, w.Close())

	resp, e := send(t, app, http.MethodPost, "/api/loads/c1/documents",
		tokenForRole(t, pkgjwt.RoleCustomer), buf.Bytes(), w.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Message, "document")
}

var pathParam = regexp.MustCompile(`:(\w+)`)

func TestRouter_RutasDocumentadas(t *testing.T) {
	doc, err := swag.ReadDoc()
	require.NoError(t, err)
	var spec struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &spec))

	for _, r := range buildRouterApp().GetRoutes(true) {
		if !strings.HasPrefix(r.Path, "/api/") || r.Method == http.MethodHead {
			continue
		}
		p := pathParam.ReplaceAllString(strings.TrimSuffix(r.Path, "/"), "{$1}")
		ops, ok := spec.Paths[p]
		if assert.True(t, ok, "sin documentar: %s", p) {
			assert.Contains(t, ops, strings.ToLower(r.Method), p)
		}
	}
}

func ExampleRouter() {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{JWTSecret: "secreto"})
	req := httptest.NewRequest(http.MethodGet, "/api/loads", nil)
	resp, _ := app.Test(req, -1)
	fmt.Println(resp.StatusCode)
	// Output: 401
}
