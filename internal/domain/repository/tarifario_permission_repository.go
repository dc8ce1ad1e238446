package repository

import (
	"context"

	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
)

// TarifarioPermissionFilter filtros opcionales del listado de vínculos.
type TarifarioPermissionFilter struct {
	PermissionID *int64
	TarifarioID  *int64
}

// TarifarioPermissionRepository puerto de persistencia de la tabla tarifario_permisos.
type TarifarioPermissionRepository interface {
	// Get devuelve (nil, nil) si el par no existe.
	Get(ctx context.Context, permissionID, tarifarioID int64) (*entity.TarifarioPermission, error)
	// Create devuelve domain.ErrDuplicate si el par ya existe (violación de unicidad).
	Create(ctx context.Context, tp *entity.TarifarioPermission) error
	// UpdateDescription devuelve false si el par no existe.
	UpdateDescription(ctx context.Context, permissionID, tarifarioID int64, description string) (bool, error)
	// Delete devuelve false si el par no existe.
	Delete(ctx context.Context, permissionID, tarifarioID int64) (bool, error)
	// DeleteByTarifario elimina todos los vínculos de un tarifario (al borrarlo).
	DeleteByTarifario(ctx context.Context, tarifarioID int64) (int64, error)
	List(ctx context.Context, filter TarifarioPermissionFilter, limit, offset int) ([]*entity.TarifarioPermission, int, error)
}
