package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tarifarios-api/internal/application/access"
	"github.com/jhoicas/tarifarios-api/internal/application/auth"
	"github.com/jhoicas/tarifarios-api/internal/application/dto"
	"github.com/jhoicas/tarifarios-api/internal/application/pricing"
	"github.com/jhoicas/tarifarios-api/internal/application/usecase"
	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/internal/infrastructure/ratelimit"
	apphttp "github.com/jhoicas/tarifarios-api/internal/interfaces/http"
	"github.com/jhoicas/tarifarios-api/internal/testutil"
	"github.com/jhoicas/tarifarios-api/pkg/logger"
	"github.com/jhoicas/tarifarios-api/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
//
// Roles: 1 Administrador, 2 editor, 3 admin.
// Permisos: 10 crear, 11 editar, 12 eliminar, 13 gestionar_permisos.
// Usuarios: 1 Administrador (10, 11, 13), 2 editor (11), 3 admin (12).
// Tarifarios: 7 (empresa 1) y 8 (empresa 2). Vínculos: (11,7), (12,7).
// Producto 42 con precio en 7 y 8.
// ──────────────────────────────────────────────────────────────────────────────

const (
	adminUserID  int64 = 1
	editorUserID int64 = 2
	deleterID    int64 = 3
)

type testEnv struct {
	app     *fiber.App
	store   *testutil.MemStore
	metrics *metrics.Metrics
}

func ptr[T any](v T) *T { return &v }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := testutil.NewMemStore()
	st.AddRole(1, entity.RoleAdministrador)
	st.AddRole(2, entity.RoleEditor)
	st.AddRole(3, entity.RoleAdmin)
	st.AddPermission(10, entity.PermCrearTarifario)
	st.AddPermission(11, entity.PermEditarTarifario)
	st.AddPermission(12, entity.PermEliminarTarifario)
	st.AddPermission(13, entity.PermGestionarPermisos)
	st.Grant(1, 10)
	st.Grant(1, 11)
	st.Grant(1, 13)
	st.Grant(2, 11)
	st.Grant(3, 12)

	hash, err := bcrypt.GenerateFromPassword([]byte("clave-admin"), bcrypt.MinCost)
	require.NoError(t, err)
	st.AddUser(entity.User{ID: adminUserID, Email: "admin@example.com", PasswordHash: string(hash), RoleID: 1, Active: true})
	st.AddUser(entity.User{ID: editorUserID, Email: "editor@example.com", RoleID: 2, Active: true})
	st.AddUser(entity.User{ID: deleterID, Email: "borrador@example.com", RoleID: 3, Active: true})

	st.AddCompany(entity.Company{ID: 1, Name: "Droguería Uno"})
	st.AddCompany(entity.Company{ID: 2, Name: "Droguería Dos"})
	st.AddTarifario(entity.Tarifario{ID: 7, Name: "T7", CompanyID: ptr(int64(1))})
	st.AddTarifario(entity.Tarifario{ID: 8, Name: "T8", CompanyID: ptr(int64(2))})
	st.Link(11, 7, "edición 7")
	st.Link(12, 7, "eliminación 7")
	st.AddProduct(entity.Product{ID: 42, CUM: "19901234-01", Name: "Acetaminofén"})
	st.Assign(entity.TarifarioProduct{TarifarioID: 7, ProductID: 42, BasePrice: decimal.NewFromInt(1000), UnitPrice: decimal.NewFromInt(100), PackagePrice: decimal.NewFromInt(2000)})
	st.Assign(entity.TarifarioProduct{TarifarioID: 8, ProductID: 42, BasePrice: decimal.NewFromInt(900), UnitPrice: decimal.NewFromInt(90), PackagePrice: decimal.NewFromInt(1800)})

	m := metrics.New()
	gate := access.NewGate(st.Users(), st)
	issuer, err := auth.NewCredentialIssuer(st.Users(), gate, ratelimit.NewMemoryLimiter(3, time.Minute),
		auth.JWTConfig{Secret: testJWTSecret, Issuer: testIssuer})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(apphttp.RequestLogger(logger.Nop(), m))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      issuer,
		Gate:        gate,
		TarifarioUC: usecase.NewTarifarioUseCase(st.Tarifarios(), st),
		LinkUC:      usecase.NewTarifarioPermissionUseCase(st.Links(), st.Permissions(), st.Tarifarios()),
		CompareUC:   pricing.NewCompareUseCase(st.Products(), st, m.CompareDuration),
		Metrics:     m,
		ServiceName: "tarifarios-test",
		JWTSecret:   testJWTSecret,
	})
	return &testEnv{app: app, store: st, metrics: m}
}

func (e *testEnv) do(t *testing.T, method, path string, userID int64, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		req.Header.Set("Authorization", tokenFor(t, userID, time.Hour))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Públicas
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", 0, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_BaseDeDatosCaida_503(t *testing.T) {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{DB: failingPinger{}, JWTSecret: testJWTSecret})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetrics_ExponeDecisionesDelGate(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/tarifario/8", editorUserID, nil).Body.Close()

	resp := env.do(t, http.MethodGet, "/metrics", 0, nil)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `tarifarios_gate_decisions_total{outcome="scope_denied"} 1`)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_DevuelveTokenUtilizable(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/login", 0, dto.LoginRequest{Email: "admin@example.com", Password: "clave-admin"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, entity.RoleAdministrador, out.Session.Role)
	assert.Equal(t, []int64{7}, out.Session.Tarifarios)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	me, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer me.Body.Close()
	assert.Equal(t, http.StatusOK, me.StatusCode)
}

func TestLogin_CredencialesInvalidas_401(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/auth/login", 0, dto.LoginRequest{Email: "admin@example.com", Password: "mala"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, auth.CodeInvalidCredentials, decodeError(t, resp).Code)
}

func TestLogin_DemasiadosIntentos_429ConRetryAfter(t *testing.T) {
	env := newTestEnv(t)
	bad := dto.LoginRequest{Email: "admin@example.com", Password: "mala"}
	for i := 0; i < 3; i++ {
		env.do(t, http.MethodPost, "/api/auth/login", 0, bad).Body.Close()
	}

	resp := env.do(t, http.MethodPost, "/api/auth/login", 0, bad)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestLogin_CuerpoInvalido_400(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMe_SesionViva(t *testing.T) {
	env := newTestEnv(t)
	env.store.Revoke(2, 11)

	resp := env.do(t, http.MethodGet, "/api/auth/me", editorUserID, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Empty(t, out.Permissions)
	assert.Empty(t, out.Tarifarios)
}

func TestMe_UsuarioEliminado_404(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetUserActive(editorUserID, false)

	resp := env.do(t, http.MethodGet, "/api/auth/me", editorUserID, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tarifarios (gate: rol + permiso + alcance)
// ──────────────────────────────────────────────────────────────────────────────

func TestTarifario_GetConVinculo_200(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/tarifario/7", editorUserID, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTarifario_GetSinVinculo_403NoTarifarioAccess(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/tarifario/8", editorUserID, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	out := decodeError(t, resp)
	assert.Equal(t, access.CodeNoTarifarioAccess, out.Code)
	assert.Equal(t, "sin acceso a este tarifario", out.Message)
}

func TestTarifario_IDNoNumerico_400(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/tarifario/abc", editorUserID, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, access.CodeMissingTarifarioID, decodeError(t, resp).Code)
}

func TestTarifario_IDFueraDeRango_400(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPut, "/api/tarifario/99999999999999999999", editorUserID, dto.UpdateTarifarioRequest{Name: ptr("x")})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, access.CodeMissingTarifarioID, decodeError(t, resp).Code)
}

func TestTarifario_SinToken_401(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/tarifario/7", 0, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTarifario_CreateAdministrador_201(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/tarifario", adminUserID, dto.CreateTarifarioRequest{Name: "Nuevo", EPSID: ptr(int64(3))})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.TarifarioResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Nuevo", out.Name)
}

func TestTarifario_CreateEditor_403RolConDetalles(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/tarifario", editorUserID, dto.CreateTarifarioRequest{Name: "Nuevo", EPSID: ptr(int64(3))})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	out := decodeError(t, resp)
	assert.Equal(t, access.CodeRoleNotAllowed, out.Code)
	assert.Equal(t, []any{entity.RoleAdministrador}, out.Details["roles_permitidos"])
}

func TestTarifario_UpdateEditorConVinculo_200(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPut, "/api/tarifario/7", editorUserID, dto.UpdateTarifarioRequest{Name: ptr("T7 renombrado")})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTarifario_UpdateTrasRevocarPermiso_403(t *testing.T) {
	env := newTestEnv(t)
	env.store.Revoke(2, 11)

	resp := env.do(t, http.MethodPut, "/api/tarifario/7", editorUserID, dto.UpdateTarifarioRequest{Name: ptr("x")})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	out := decodeError(t, resp)
	assert.Equal(t, access.CodePermissionDenied, out.Code)
	assert.Equal(t, []any{entity.PermEditarTarifario}, out.Details["permisos_requeridos"])
}

func TestTarifario_DeleteRolAdmin_204(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodDelete, "/api/tarifario/7", deleterID, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, env.store.AssignmentCount())
	assert.Equal(t, 0, env.store.LinkCount())
}

func TestTarifario_DeleteAdministrador_403PorNombreDeRol(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodDelete, "/api/tarifario/7", adminUserID, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, access.CodeRoleNotAllowed, decodeError(t, resp).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Vínculos permiso-tarifario
// ──────────────────────────────────────────────────────────────────────────────

func TestTarifarioPermisos_FlujoCompleto(t *testing.T) {
	env := newTestEnv(t)
	in := dto.LinkTarifarioPermissionRequest{PermissionID: 11, TarifarioID: 8, Description: "edición 8"}

	resp := env.do(t, http.MethodPost, "/api/tarifario-permisos", adminUserID, in)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// el editor alcanza ahora el tarifario 8
	resp = env.do(t, http.MethodGet, "/api/tarifario/8", editorUserID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/tarifario-permisos", adminUserID, in)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPut, "/api/tarifario-permisos/11/8", adminUserID, dto.UpdateTarifarioPermissionRequest{Description: "nueva"})
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/tarifario-permisos?id_tarifario=8", adminUserID, nil)
	var list dto.TarifarioPermissionListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list.Items, 1)
	assert.Equal(t, "nueva", list.Items[0].Description)

	resp = env.do(t, http.MethodDelete, "/api/tarifario-permisos/11/8", adminUserID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/tarifario-permisos/11/8", adminUserID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/tarifario/8", editorUserID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTarifarioPermisos_EditorSinGestionarPermisos_403(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/tarifario-permisos", editorUserID, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTarifarioPermisos_FiltroInvalido_400(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/tarifario-permisos?id_permiso=x", adminUserID, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Comparador
// ──────────────────────────────────────────────────────────────────────────────

func TestCompare_FiltrosPorQuery(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/compare/producto/42?tarifarioIds=7,8&empresaIds=1", editorUserID, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.PriceComparisonResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(42), out.ProductoID)
	require.Len(t, out.Resultados, 1)
	assert.Equal(t, int64(7), out.Resultados[0].TarifarioID)
	assert.Equal(t, "1000", out.Resultados[0].PrecioBase.String())
	assert.Equal(t, 1, promtestutil.CollectAndCount(env.metrics.CompareDuration))
}

func TestCompare_ProductoSinPrecios_ResultadosVacios(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/compare/producto/43?tarifarioIds=7,8", editorUserID, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"productoId":43,"resultados":[]}`, string(body))
}

func TestCompare_CUMDesconocido_404(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/compare/producto/xyz?cum=00000000-00", editorUserID, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCompare_ListaMalformada_400(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/compare/producto/42?epsIds=3,abc", editorUserID, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID_LIST", decodeError(t, resp).Code)
}

func TestCompare_StoreCaido_500Generico(t *testing.T) {
	env := newTestEnv(t)
	tok := tokenFor(t, editorUserID, time.Hour)
	env.store.Fail = errors.New("pq: password authentication failed for user tarifarios")

	req := httptest.NewRequest(http.MethodGet, "/api/compare/producto/42", nil)
	req.Header.Set("Authorization", tok)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	out := decodeError(t, resp)
	assert.Equal(t, "INTERNAL", out.Code)
	assert.Equal(t, "error interno", out.Message)
}
