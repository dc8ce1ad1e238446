package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tarifarios-api/internal/application/access"
	"github.com/jhoicas/tarifarios-api/internal/domain"
	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: un administrador (rol 1) con crear/editar, un editor (rol 2) con editar,
// y permiso 11 (editar_tarifario) vinculado al tarifario 7.
// ──────────────────────────────────────────────────────────────────────────────

const (
	adminID  int64 = 1
	editorID int64 = 2
)

func newFixture(t *testing.T) (*testutil.MemStore, *access.Gate) {
	t.Helper()
	st := testutil.NewMemStore()
	st.AddRole(1, entity.RoleAdministrador)
	st.AddRole(2, entity.RoleEditor)
	st.AddPermission(10, entity.PermCrearTarifario)
	st.AddPermission(11, entity.PermEditarTarifario)
	st.Grant(1, 10)
	st.Grant(1, 11)
	st.Grant(2, 11)
	st.AddUser(entity.User{ID: adminID, Email: "admin@example.com", RoleID: 1, Active: true})
	st.AddUser(entity.User{ID: editorID, Email: "editor@example.com", RoleID: 2, Active: true})
	st.AddTarifario(entity.Tarifario{ID: 7, Name: "Tarifario EPS Sur"})
	st.AddTarifario(entity.Tarifario{ID: 8, Name: "Tarifario Empresa Norte"})
	st.Link(11, 7, "edición del tarifario 7")
	return st, access.NewGate(st.Users(), st)
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var de *domain.Error
	require.True(t, errors.As(err, &de), "se esperaba *domain.Error, llegó %T", err)
	return de.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolve
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_CargaRolYPermisosVivos(t *testing.T) {
	_, gate := newFixture(t)

	s, err := gate.Resolve(context.Background(), adminID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdministrador, s.RoleName)
	assert.ElementsMatch(t, []string{entity.PermCrearTarifario, entity.PermEditarTarifario}, s.PermissionNames())
	assert.ElementsMatch(t, []int64{10, 11}, s.PermissionIDs())
}

func TestResolve_UsuarioInexistente_NotFound(t *testing.T) {
	_, gate := newFixture(t)

	_, err := gate.Resolve(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.Equal(t, access.CodeUserNotFound, codeOf(t, err))
}

func TestResolve_UsuarioInactivo_NotFound(t *testing.T) {
	st, gate := newFixture(t)
	st.SetUserActive(editorID, false)

	_, err := gate.Resolve(context.Background(), editorID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestResolve_StoreCaido_Internal(t *testing.T) {
	st, gate := newFixture(t)
	st.Fail = errors.New("conexión rechazada")

	_, err := gate.Resolve(context.Background(), adminID)
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Decide (rol + permisos)
// ──────────────────────────────────────────────────────────────────────────────

func TestDecide_PoliticaVaciaAdmiteCualquierUsuario(t *testing.T) {
	assert.NoError(t, access.Decide(&access.Subject{RoleName: "cualquiera"}, access.Policy{}))
	assert.NoError(t, access.Decide(&access.Subject{}, access.Policy{}))
}

func TestDecide_RolFueraDelConjunto(t *testing.T) {
	s := &access.Subject{RoleName: entity.RoleEditor}
	err := access.Decide(s, access.Policy{AllowedRoles: []string{entity.RoleAdministrador}})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))
	assert.Equal(t, access.CodeRoleNotAllowed, codeOf(t, err))
}

func TestDecide_RolSinNombreNoPasaConjuntoNoVacio(t *testing.T) {
	err := access.Decide(&access.Subject{}, access.Policy{AllowedRoles: []string{""}})
	assert.Error(t, err)
}

func TestDecide_RolNormalizaUnicode(t *testing.T) {
	// "Administración" con tilde descompuesta (NFD) vs compuesta (NFC).
	s := &access.Subject{RoleName: "Administracio\u0301n"}
	assert.NoError(t, access.Decide(s, access.Policy{AllowedRoles: []string{"Administraci\u00f3n"}}))
}

func TestDecide_PermisosBastaConUno(t *testing.T) {
	s := &access.Subject{Permissions: []entity.Permission{{ID: 11, Name: entity.PermEditarTarifario}}}
	p := access.Policy{RequiredPermissions: []string{entity.PermEliminarTarifario, entity.PermEditarTarifario}}
	assert.NoError(t, access.Decide(s, p))
}

func TestDecide_PermisoFaltanteIncluyeDetalle(t *testing.T) {
	s := &access.Subject{Permissions: []entity.Permission{{ID: 11, Name: entity.PermEditarTarifario}}}
	err := access.Decide(s, access.Policy{RequiredPermissions: []string{entity.PermEliminarTarifario}})
	require.Error(t, err)

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, access.CodePermissionDenied, de.Code)
	assert.Equal(t, []string{entity.PermEliminarTarifario}, de.Details["permisos_requeridos"])
	assert.Equal(t, []string{entity.PermEditarTarifario}, de.Details["permisos_usuario"])
}

func TestDecide_RolSeEvaluaAntesQuePermisos(t *testing.T) {
	s := &access.Subject{RoleName: entity.RoleEditor}
	err := access.Decide(s, access.Policy{
		AllowedRoles:        []string{entity.RoleAdministrador},
		RequiredPermissions: []string{entity.PermCrearTarifario},
	})
	assert.Equal(t, access.CodeRoleNotAllowed, codeOf(t, err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Authorize (flujo completo, alcance de tarifario)
// ──────────────────────────────────────────────────────────────────────────────

var editPolicy = access.Policy{
	AllowedRoles:        []string{entity.RoleAdministrador, entity.RoleEditor},
	RequiredPermissions: []string{entity.PermEditarTarifario},
	ScopeToTarifario:    true,
}

func TestAuthorize_EditorConVinculoAlTarifario(t *testing.T) {
	_, gate := newFixture(t)

	s, err := gate.Authorize(context.Background(), editorID, editPolicy, 7)
	require.NoError(t, err)
	assert.Equal(t, editorID, s.UserID)
}

func TestAuthorize_SinVinculoAlTarifario_AunqueRolYPermisoPasen(t *testing.T) {
	_, gate := newFixture(t)

	_, err := gate.Authorize(context.Background(), editorID, editPolicy, 8)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))
	assert.Equal(t, access.CodeNoTarifarioAccess, codeOf(t, err))
	assert.Equal(t, "scope_denied", access.Outcome(err))
}

func TestAuthorize_AlcanceSinIDEnRuta_Validation(t *testing.T) {
	_, gate := newFixture(t)

	_, err := gate.Authorize(context.Background(), editorID, editPolicy, 0)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestAuthorize_SinAlcanceNoConsultaVinculos(t *testing.T) {
	_, gate := newFixture(t)
	p := editPolicy
	p.ScopeToTarifario = false

	_, err := gate.Authorize(context.Background(), editorID, p, 8)
	assert.NoError(t, err)
}

func TestAuthorize_RevocacionSeVeEnLaSiguienteEvaluacion(t *testing.T) {
	st, gate := newFixture(t)
	ctx := context.Background()

	_, err := gate.Authorize(ctx, editorID, editPolicy, 7)
	require.NoError(t, err)

	st.Revoke(2, 11)

	_, err = gate.Authorize(ctx, editorID, editPolicy, 7)
	require.Error(t, err)
	assert.Equal(t, access.CodePermissionDenied, codeOf(t, err))
}

func TestAuthorize_DesvincularTarifarioSeVeEnLaSiguienteEvaluacion(t *testing.T) {
	st, gate := newFixture(t)
	ctx := context.Background()

	_, err := st.Links().Delete(ctx, 11, 7)
	require.NoError(t, err)

	_, err = gate.Authorize(ctx, editorID, editPolicy, 7)
	assert.Equal(t, access.CodeNoTarifarioAccess, codeOf(t, err))
}

// ──────────────────────────────────────────────────────────────────────────────
// ReachableTarifarios / Outcome
// ──────────────────────────────────────────────────────────────────────────────

func TestReachableTarifarios_SinDuplicadosYOrdenados(t *testing.T) {
	st, gate := newFixture(t)
	st.Link(10, 8, "creación en 8")
	st.Link(10, 7, "creación en 7")
	ctx := context.Background()

	s, err := gate.Resolve(ctx, adminID)
	require.NoError(t, err)
	ids, err := gate.ReachableTarifarios(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, ids)
}

func TestReachableTarifarios_SinPermisosDevuelveVacio(t *testing.T) {
	_, gate := newFixture(t)
	ids, err := gate.ReachableTarifarios(context.Background(), &access.Subject{})
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "allowed", access.Outcome(nil))
	assert.Equal(t, "role_denied", access.Outcome(domain.Authorization(access.CodeRoleNotAllowed, "x")))
	assert.Equal(t, "permission_denied", access.Outcome(domain.Authorization(access.CodePermissionDenied, "x")))
	assert.Equal(t, "user_not_found", access.Outcome(domain.NotFound(access.CodeUserNotFound, "x")))
	assert.Equal(t, "unauthenticated", access.Outcome(domain.Authentication("TOKEN_EXPIRED", "x")))
	assert.Equal(t, "error", access.Outcome(errors.New("boom")))
}
