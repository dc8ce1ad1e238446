package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

var _ repository.PermissionRepository = (*PermissionRepo)(nil)

// PermissionRepo lectura de permisos.
type PermissionRepo struct {
	db Querier
}

// NewPermissionRepository construye el adaptador.
func NewPermissionRepository(db Querier) *PermissionRepo {
	return &PermissionRepo{db: db}
}

// GetByID obtiene un permiso; (nil, nil) si no existe.
func (r *PermissionRepo) GetByID(ctx context.Context, id int64) (*entity.Permission, error) {
	var p entity.Permission
	err := r.db.QueryRow(ctx, `SELECT id_permiso, nombre FROM permisos WHERE id_permiso = $1`, id).
		Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return &p, nil
}
