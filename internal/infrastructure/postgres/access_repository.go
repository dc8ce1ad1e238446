package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

var _ repository.AccessRepository = (*AccessRepo)(nil)

// AccessRepo lecturas de control de acceso sobre roles, rol_permisos y tarifario_permisos.
type AccessRepo struct {
	db Querier
}

// NewAccessRepository construye el adaptador.
func NewAccessRepository(db Querier) *AccessRepo {
	return &AccessRepo{db: db}
}

// GetRole obtiene un rol por ID; (nil, nil) si no existe.
func (r *AccessRepo) GetRole(ctx context.Context, roleID int64) (*entity.Role, error) {
	var role entity.Role
	err := r.db.QueryRow(ctx, `SELECT id_rol, nombre FROM roles WHERE id_rol = $1`, roleID).
		Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}

// ListRolePermissions permisos concedidos al rol, ordenados por nombre.
func (r *AccessRepo) ListRolePermissions(ctx context.Context, roleID int64) ([]entity.Permission, error) {
	query := `
		SELECT p.id_permiso, p.nombre
		FROM rol_permisos rp
		JOIN permisos p ON p.id_permiso = rp.id_permiso
		WHERE rp.id_rol = $1
		ORDER BY p.nombre`
	rows, err := r.db.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Permission, 0)
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListTarifarioIDs ids de tarifario alcanzables por los permisos, sin duplicados.
func (r *AccessRepo) ListTarifarioIDs(ctx context.Context, permissionIDs []int64) ([]int64, error) {
	if len(permissionIDs) == 0 {
		return []int64{}, nil
	}
	query := `
		SELECT DISTINCT id_tarifario
		FROM tarifario_permisos
		WHERE id_permiso = ANY($1)
		ORDER BY id_tarifario`
	rows, err := r.db.Query(ctx, query, permissionIDs)
	if err != nil {
		return nil, fmt.Errorf("list tarifario ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan tarifario ids: %w", err)
	}
	return ids, nil
}

// HasTarifarioAccess informa si algún permiso tiene vínculo hacia tarifarioID.
func (r *AccessRepo) HasTarifarioAccess(ctx context.Context, permissionIDs []int64, tarifarioID int64) (bool, error) {
	if len(permissionIDs) == 0 {
		return false, nil
	}
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tarifario_permisos
			WHERE id_tarifario = $1 AND id_permiso = ANY($2)
		)`
	var ok bool
	if err := r.db.QueryRow(ctx, query, tarifarioID, permissionIDs).Scan(&ok); err != nil {
		return false, fmt.Errorf("check tarifario access: %w", err)
	}
	return ok, nil
}
