package repository

import (
	"context"

	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
)

// TarifarioRepository define el puerto de persistencia para Tarifario (DIP).
type TarifarioRepository interface {
	Create(ctx context.Context, t *entity.Tarifario) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Tarifario, error)
	Update(ctx context.Context, t *entity.Tarifario) error
	// Delete devuelve false si no existía.
	Delete(ctx context.Context, id int64) (bool, error)
}

// TarifarioProductRepository asignaciones de precio (tarifario_productos).
type TarifarioProductRepository interface {
	DeleteByTarifario(ctx context.Context, tarifarioID int64) (int64, error)
}
