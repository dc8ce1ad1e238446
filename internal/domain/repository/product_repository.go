package repository

import (
	"context"

	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP). Un id numérico
// se consulta directamente en el comparador; solo el CUM se resuelve contra el catálogo.
type ProductRepository interface {
	// GetByCUM busca por el código alterno; (nil, nil) si no existe.
	GetByCUM(ctx context.Context, cum string) (*entity.Product, error)
}
