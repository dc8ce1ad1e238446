package repository

import (
	"context"

	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
)

// PermissionRepository lectura de permisos.
type PermissionRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Permission, error)
}
