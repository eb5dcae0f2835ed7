package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/lotes-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/lotes-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "lotes-api-test"
	testExpMin    = 60
)

// gatedApp expone GET /lots detrás de JWT + RBAC con los roles indicados.
func gatedApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/lots",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"user_id":    apphttp.GetUserID(c),
				"company_id": apphttp.GetCompanyID(c),
				"role":       apphttp.GetRole(c),
			})
		},
	)
	return app
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func get(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/lots", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRequireRole_MatrizDeRoles(t *testing.T) {
	warehouse := []string{apphttp.RoleAdmin, apphttp.RoleBodeguero}
	cases := []struct {
		name    string
		allowed []string
		role    string
		status  int
	}{
		{"admin en ruta de admin", []string{apphttp.RoleAdmin}, apphttp.RoleAdmin, http.StatusOK},
		{"bodeguero en ruta de bodega", warehouse, apphttp.RoleBodeguero, http.StatusOK},
		{"vendedor en ruta de bodega", warehouse, apphttp.RoleVendedor, http.StatusForbidden},
		{"bodeguero en ruta de admin", []string{apphttp.RoleAdmin}, apphttp.RoleBodeguero, http.StatusForbidden},
		{"rol desconocido", warehouse, "auditor", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, gatedApp(tc.allowed...), bearer(t, tc.role))
			assert.Equal(t, tc.status, status)
			if tc.status == http.StatusForbidden {
				assert.Contains(t, body, "FORBIDDEN")
			}
		})
	}
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	status, body := get(t, gatedApp(apphttp.RoleAdmin), bearer(t, ""))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "MISSING_ROLE")
}

func TestAuthMiddleware_RechazaCabecerasInvalidas(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, apphttp.RoleAdmin, testIssuer, -5)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secret-completamente-distinto", testUserID, testCompanyID, apphttp.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		code   string
	}{
		"sin cabecera":          {"", "MISSING_TOKEN"},
		"esquema basic":         {"Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		"token malformado":      {"Bearer token.invalido.aqui", "INVALID_TOKEN"},
		"token expirado":        {"Bearer " + expired, "INVALID_TOKEN"},
		"firma de otro secreto": {"Bearer " + foreign, "INVALID_TOKEN"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := get(t, gatedApp(apphttp.RoleAdmin), tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, tc.code)
		})
	}
}

func TestAuthMiddleware_CargaTenantYActor(t *testing.T) {
	status, body := get(t, gatedApp(apphttp.RoleVendedor), bearer(t, apphttp.RoleVendedor))
	require.Equal(t, http.StatusOK, status)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, testUserID, got["user_id"])
	assert.Equal(t, testCompanyID, got["company_id"])
	assert.Equal(t, apphttp.RoleVendedor, got["role"])
}
