package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tarifarios-api/internal/application/dto"
	apphttp "github.com/jhoicas/tarifarios-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/tarifarios-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "tarifarios-api-test"
)

// buildAuthApp aplicación Fiber mínima: AuthMiddleware y un handler que devuelve el id decodificado.
func buildAuthApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Get("/protected", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id_usuario": apphttp.GetUserID(c)})
	})
	return app
}

// tokenFor genera un JWT para userID con la vigencia indicada.
func tokenFor(t *testing.T, userID int64, ttl time.Duration) string {
	t.Helper()
	tok, _, err := pkgjwt.GenerateWithTTL(testJWTSecret, testIssuer, pkgjwt.Session{UserID: userID, Role: "editor"}, ttl)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doGet lanza un GET con el header Authorization indicado.
func doGet(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out), "cuerpo: %s", body)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokenValido_DejaUserIDEnLocals(t *testing.T) {
	resp := doGet(t, buildAuthApp(), "/protected", tokenFor(t, 42, time.Hour))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(42), body["id_usuario"])
}

func TestAuthMiddleware_SinHeader_MissingToken(t *testing.T) {
	resp := doGet(t, buildAuthApp(), "/protected", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decodeError(t, resp).Code)
}

func TestAuthMiddleware_FormatoIncorrecto_InvalidToken(t *testing.T) {
	resp := doGet(t, buildAuthApp(), "/protected", "Basic dXNlcjpwYXNz")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, resp).Code)
}

func TestAuthMiddleware_TokenExpirado_TokenExpired(t *testing.T) {
	resp := doGet(t, buildAuthApp(), "/protected", tokenFor(t, 42, -time.Minute))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TOKEN_EXPIRED", decodeError(t, resp).Code)
}

func TestAuthMiddleware_TokenMalformado_InvalidToken(t *testing.T) {
	resp := doGet(t, buildAuthApp(), "/protected", "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, resp).Code)
}

func TestAuthMiddleware_FirmaConOtroSecreto_InvalidToken(t *testing.T) {
	tok, _, err := pkgjwt.Generate("otro-secret-completamente-distinto", testIssuer, pkgjwt.Session{UserID: 42})
	require.NoError(t, err)

	resp := doGet(t, buildAuthApp(), "/protected", "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, resp).Code)
}

func TestAuthMiddleware_BearerSinDistinguirMayusculas(t *testing.T) {
	tok := tokenFor(t, 7, time.Hour)
	resp := doGet(t, buildAuthApp(), "/protected", "bearer "+tok[len("Bearer "):])
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
