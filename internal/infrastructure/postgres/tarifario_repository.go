package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tarifarios-api/internal/domain"
	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

var (
	_ repository.TarifarioRepository        = (*TarifarioRepo)(nil)
	_ repository.TarifarioProductRepository = (*TarifarioProductRepo)(nil)
)

// TarifarioRepo persistencia de tarifarios.
type TarifarioRepo struct {
	db Querier
}

// NewTarifarioRepository construye el adaptador.
func NewTarifarioRepository(db Querier) *TarifarioRepo {
	return &TarifarioRepo{db: db}
}

// Create inserta el tarifario y asigna t.ID.
func (r *TarifarioRepo) Create(ctx context.Context, t *entity.Tarifario) error {
	query := `
		INSERT INTO tarifarios (nombre, id_empresa, id_eps, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_tarifario`
	err := r.db.QueryRow(ctx, query, t.Name, t.CompanyID, t.EPSID, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert tarifario: empresa o EPS inexistente: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert tarifario: %w", err)
	}
	return nil
}

// GetByID obtiene un tarifario; (nil, nil) si no existe.
func (r *TarifarioRepo) GetByID(ctx context.Context, id int64) (*entity.Tarifario, error) {
	query := `
		SELECT id_tarifario, nombre, id_empresa, id_eps, created_at, updated_at
		FROM tarifarios WHERE id_tarifario = $1`
	var t entity.Tarifario
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.CompanyID, &t.EPSID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tarifario: %w", err)
	}
	return &t, nil
}

// Update actualiza nombre, dueño y updated_at.
func (r *TarifarioRepo) Update(ctx context.Context, t *entity.Tarifario) error {
	query := `
		UPDATE tarifarios
		SET nombre = $2, id_empresa = $3, id_eps = $4, updated_at = $5
		WHERE id_tarifario = $1`
	tag, err := r.db.Exec(ctx, query, t.ID, t.Name, t.CompanyID, t.EPSID, t.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("update tarifario: empresa o EPS inexistente: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("update tarifario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el tarifario. Devuelve false si no existía.
func (r *TarifarioRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM tarifarios WHERE id_tarifario = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete tarifario: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// TarifarioProductRepo asignaciones de precio (tarifario_productos).
type TarifarioProductRepo struct {
	db Querier
}

// NewTarifarioProductRepository construye el adaptador.
func NewTarifarioProductRepository(db Querier) *TarifarioProductRepo {
	return &TarifarioProductRepo{db: db}
}

// DeleteByTarifario elimina todos los precios de un tarifario.
func (r *TarifarioProductRepo) DeleteByTarifario(ctx context.Context, tarifarioID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM tarifario_productos WHERE id_tarifario = $1`, tarifarioID)
	if err != nil {
		return 0, fmt.Errorf("delete tarifario products: %w", err)
	}
	return tag.RowsAffected(), nil
}
