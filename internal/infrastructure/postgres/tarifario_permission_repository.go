package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tarifarios-api/internal/domain"
	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

var _ repository.TarifarioPermissionRepository = (*TarifarioPermissionRepo)(nil)

const tarifarioPermissionSelect = `
	SELECT tp.id_permiso, tp.id_tarifario, tp.descripcion, p.nombre, t.nombre
	FROM tarifario_permisos tp
	JOIN permisos p ON p.id_permiso = tp.id_permiso
	JOIN tarifarios t ON t.id_tarifario = tp.id_tarifario`

// TarifarioPermissionRepo persistencia de tarifario_permisos.
type TarifarioPermissionRepo struct {
	db Querier
}

// NewTarifarioPermissionRepository construye el adaptador.
func NewTarifarioPermissionRepository(db Querier) *TarifarioPermissionRepo {
	return &TarifarioPermissionRepo{db: db}
}

// Get obtiene el vínculo con los nombres de permiso y tarifario; (nil, nil) si no existe.
func (r *TarifarioPermissionRepo) Get(ctx context.Context, permissionID, tarifarioID int64) (*entity.TarifarioPermission, error) {
	query := tarifarioPermissionSelect + ` WHERE tp.id_permiso = $1 AND tp.id_tarifario = $2`
	tp, err := scanTarifarioPermission(r.db.QueryRow(ctx, query, permissionID, tarifarioID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tarifario permission: %w", err)
	}
	return tp, nil
}

// Create inserta el vínculo. Par duplicado → domain.ErrDuplicate; permiso o tarifario borrado → domain.ErrNotFound.
func (r *TarifarioPermissionRepo) Create(ctx context.Context, tp *entity.TarifarioPermission) error {
	query := `
		INSERT INTO tarifario_permisos (id_permiso, id_tarifario, descripcion)
		VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, tp.PermissionID, tp.TarifarioID, tp.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert tarifario permission: %w", err)
	}
	return nil
}

// UpdateDescription actualiza la descripción. Devuelve false si el par no existe.
func (r *TarifarioPermissionRepo) UpdateDescription(ctx context.Context, permissionID, tarifarioID int64, description string) (bool, error) {
	query := `
		UPDATE tarifario_permisos SET descripcion = $3
		WHERE id_permiso = $1 AND id_tarifario = $2`
	tag, err := r.db.Exec(ctx, query, permissionID, tarifarioID, description)
	if err != nil {
		return false, fmt.Errorf("update tarifario permission: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete elimina el vínculo. Devuelve false si el par no existe.
func (r *TarifarioPermissionRepo) Delete(ctx context.Context, permissionID, tarifarioID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM tarifario_permisos WHERE id_permiso = $1 AND id_tarifario = $2`,
		permissionID, tarifarioID)
	if err != nil {
		return false, fmt.Errorf("delete tarifario permission: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByTarifario elimina todos los vínculos de un tarifario.
func (r *TarifarioPermissionRepo) DeleteByTarifario(ctx context.Context, tarifarioID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM tarifario_permisos WHERE id_tarifario = $1`, tarifarioID)
	if err != nil {
		return 0, fmt.Errorf("delete tarifario permissions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List vínculos filtrados, ordenados por (permiso, tarifario), con el total sin paginar.
func (r *TarifarioPermissionRepo) List(ctx context.Context, f repository.TarifarioPermissionFilter, limit, offset int) ([]*entity.TarifarioPermission, int, error) {
	where, args := tarifarioPermissionWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM tarifario_permisos tp` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tarifario permissions: %w", err)
	}

	query := fmt.Sprintf(`%s%s ORDER BY tp.id_permiso, tp.id_tarifario LIMIT $%d OFFSET $%d`,
		tarifarioPermissionSelect, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tarifario permissions: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.TarifarioPermission, 0)
	for rows.Next() {
		tp, err := scanTarifarioPermission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan tarifario permission: %w", err)
		}
		out = append(out, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func tarifarioPermissionWhere(f repository.TarifarioPermissionFilter) (string, []any) {
	var conds []string
	var args []any
	if f.PermissionID != nil {
		args = append(args, *f.PermissionID)
		conds = append(conds, fmt.Sprintf("tp.id_permiso = $%d", len(args)))
	}
	if f.TarifarioID != nil {
		args = append(args, *f.TarifarioID)
		conds = append(conds, fmt.Sprintf("tp.id_tarifario = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTarifarioPermission(row pgx.Row) (*entity.TarifarioPermission, error) {
	var tp entity.TarifarioPermission
	if err := row.Scan(&tp.PermissionID, &tp.TarifarioID, &tp.Description, &tp.PermissionName, &tp.TarifarioName); err != nil {
		return nil, err
	}
	return &tp, nil
}
