// Package access resuelve y aplica el control de acceso por petición:
// rol → permisos → alcance sobre tarifarios.
//
// La identidad llega decodificada del token (solo el id de usuario); la decisión
// se toma siempre sobre el estado vivo del store, de modo que revocar un permiso
// a un rol surte efecto en la siguiente petición sin esperar a que el token expire.
package access

import (
	"context"
	"errors"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/tarifarios-api/internal/domain"
	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

// Códigos de error del gate.
const (
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeRoleNotAllowed     = "ROLE_NOT_ALLOWED"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeNoTarifarioAccess  = "NO_TARIFARIO_ACCESS"
	CodeMissingTarifarioID = "MISSING_TARIFARIO_ID"
)

// Policy restricciones de una ruta protegida. Los tres campos son independientes y opcionales;
// la política vacía admite a cualquier usuario autenticado y activo.
type Policy struct {
	AllowedRoles        []string
	RequiredPermissions []string
	ScopeToTarifario    bool
}

// Subject estado de autorización vivo de un usuario.
type Subject struct {
	UserID      int64
	RoleID      int64
	RoleName    string
	Permissions []entity.Permission
}

// PermissionNames nombres de permisos en el orden del store.
func (s *Subject) PermissionNames() []string {
	out := make([]string, 0, len(s.Permissions))
	for _, p := range s.Permissions {
		out = append(out, p.Name)
	}
	return out
}

// PermissionIDs ids de permisos en el orden del store.
func (s *Subject) PermissionIDs() []int64 {
	out := make([]int64, 0, len(s.Permissions))
	for _, p := range s.Permissions {
		out = append(out, p.ID)
	}
	return out
}

// Gate resuelve sujetos contra el store y evalúa políticas. No guarda estado entre peticiones.
type Gate struct {
	users  repository.UserRepository
	access repository.AccessRepository
}

// NewGate construye el gate con los puertos de persistencia.
func NewGate(users repository.UserRepository, access repository.AccessRepository) *Gate {
	return &Gate{users: users, access: access}
}

// Resolve recarga usuario, rol y permisos actuales. Usuario ausente o inactivo → NotFound.
func (g *Gate) Resolve(ctx context.Context, userID int64) (*Subject, error) {
	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.Internal("cargar usuario", err)
	}
	if user == nil || !user.Active {
		return nil, domain.NotFound(CodeUserNotFound, "usuario no encontrado o inactivo")
	}
	subject := &Subject{UserID: user.ID, RoleID: user.RoleID}

	role, err := g.access.GetRole(ctx, user.RoleID)
	if err != nil {
		return nil, domain.Internal("cargar rol", err)
	}
	if role != nil {
		subject.RoleName = role.Name
	}

	perms, err := g.access.ListRolePermissions(ctx, user.RoleID)
	if err != nil {
		return nil, domain.Internal("cargar permisos del rol", err)
	}
	subject.Permissions = perms
	return subject, nil
}

// ReachableTarifarios ids de tarifario alcanzables por los permisos del sujeto, sin duplicados y ordenados.
func (g *Gate) ReachableTarifarios(ctx context.Context, s *Subject) ([]int64, error) {
	ids := s.PermissionIDs()
	if len(ids) == 0 {
		return []int64{}, nil
	}
	out, err := g.access.ListTarifarioIDs(ctx, ids)
	if err != nil {
		return nil, domain.Internal("cargar tarifarios alcanzables", err)
	}
	out = dedupe(out)
	slices.Sort(out)
	return out, nil
}

// Authorize evalúa la política completa para userID: resolución, rol, permisos y,
// si la política lo pide, alcance sobre tarifarioID. El primer fallo corta la evaluación.
func (g *Gate) Authorize(ctx context.Context, userID int64, p Policy, tarifarioID int64) (*Subject, error) {
	subject, err := g.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := Decide(subject, p); err != nil {
		return subject, err
	}
	if p.ScopeToTarifario {
		if err := g.CheckScope(ctx, subject, tarifarioID); err != nil {
			return subject, err
		}
	}
	return subject, nil
}

// CheckScope pasa si alguno de los permisos del sujeto tiene un vínculo hacia tarifarioID.
func (g *Gate) CheckScope(ctx context.Context, s *Subject, tarifarioID int64) error {
	if tarifarioID <= 0 {
		return domain.Validation(CodeMissingTarifarioID, "id de tarifario requerido en la ruta")
	}
	ids := s.PermissionIDs()
	ok := false
	if len(ids) > 0 {
		var err error
		ok, err = g.access.HasTarifarioAccess(ctx, ids, tarifarioID)
		if err != nil {
			return domain.Internal("verificar alcance de tarifario", err)
		}
	}
	if !ok {
		return domain.Authorization(CodeNoTarifarioAccess, "sin acceso a este tarifario").
			WithDetails(map[string]any{"id_tarifario": tarifarioID})
	}
	return nil
}

// Decide aplica las reglas de rol y permiso sobre un sujeto ya resuelto. Función pura.
//
// La regla de permisos es ANY: basta con tener uno de los requeridos.
func Decide(s *Subject, p Policy) error {
	if len(p.AllowedRoles) > 0 && !containsName(p.AllowedRoles, s.RoleName) {
		return domain.Authorization(CodeRoleNotAllowed, "rol no autorizado para esta operación").
			WithDetails(map[string]any{
				"rol":              s.RoleName,
				"roles_permitidos": p.AllowedRoles,
			})
	}
	if len(p.RequiredPermissions) > 0 && !hasAny(s.PermissionNames(), p.RequiredPermissions) {
		return domain.Authorization(CodePermissionDenied, "permisos insuficientes").
			WithDetails(map[string]any{
				"permisos_requeridos": p.RequiredPermissions,
				"permisos_usuario":    s.PermissionNames(),
			})
	}
	return nil
}

// Outcome etiqueta corta de una decisión, para métricas y logs.
func Outcome(err error) string {
	if err == nil {
		return "allowed"
	}
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Code {
		case CodeRoleNotAllowed:
			return "role_denied"
		case CodePermissionDenied:
			return "permission_denied"
		case CodeNoTarifarioAccess:
			return "scope_denied"
		case CodeUserNotFound:
			return "user_not_found"
		}
	}
	switch domain.KindOf(err) {
	case domain.KindAuthentication:
		return "unauthenticated"
	case domain.KindValidation:
		return "invalid_request"
	default:
		return "error"
	}
}

func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func containsName(set []string, name string) bool {
	n := normalizeName(name)
	if n == "" {
		return false
	}
	for _, v := range set {
		if normalizeName(v) == n {
			return true
		}
	}
	return false
}

func hasAny(have, needles []string) bool {
	if len(have) == 0 || len(needles) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, v := range have {
		set[normalizeName(v)] = struct{}{}
	}
	for _, n := range needles {
		if _, ok := set[normalizeName(n)]; ok {
			return true
		}
	}
	return false
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
