package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo de medicamentos.
type ProductRepo struct {
	db Querier
}

// NewProductRepository construye el adaptador.
func NewProductRepository(db Querier) *ProductRepo {
	return &ProductRepo{db: db}
}

// GetByCUM obtiene un producto por su Código Único de Medicamento.
func (r *ProductRepo) GetByCUM(ctx context.Context, cum string) (*entity.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx,
		`SELECT id_producto, cum, nombre, id_laboratorio FROM productos WHERE cum = $1`, cum))
	if err != nil {
		return nil, fmt.Errorf("get product by cum: %w", err)
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.CUM, &p.Name, &p.LaboratoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
