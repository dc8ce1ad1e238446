package repository

import (
	"context"

	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
)

// AccessRepository lecturas de control de acceso: rol, permisos del rol y alcance
// de permisos sobre tarifarios. Es la fuente de verdad de cada decisión de autorización.
type AccessRepository interface {
	// GetRole devuelve (nil, nil) si el rol no existe.
	GetRole(ctx context.Context, roleID int64) (*entity.Role, error)
	// ListRolePermissions permisos concedidos al rol vía rol_permisos.
	ListRolePermissions(ctx context.Context, roleID int64) ([]entity.Permission, error)
	// ListTarifarioIDs ids de tarifario alcanzables por los permisos, sin duplicados.
	ListTarifarioIDs(ctx context.Context, permissionIDs []int64) ([]int64, error)
	// HasTarifarioAccess informa si algún permiso tiene un TarifarioPermission hacia tarifarioID.
	HasTarifarioAccess(ctx context.Context, permissionIDs []int64, tarifarioID int64) (bool, error)
}
