package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

var _ repository.PriceComparisonRepository = (*PriceComparisonRepo)(nil)

// PriceComparisonRepo consulta de solo lectura del comparador.
type PriceComparisonRepo struct {
	db Querier
}

// NewPriceComparisonRepository construye el adaptador.
func NewPriceComparisonRepository(db Querier) *PriceComparisonRepo {
	return &PriceComparisonRepo{db: db}
}

// Compare precios del producto en cada tarifario que cumpla los filtros.
func (r *PriceComparisonRepo) Compare(ctx context.Context, f repository.PriceComparisonFilter) ([]repository.PriceComparisonRow, error) {
	query, args := buildPriceComparisonQuery(f)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("compare prices: %w", err)
	}
	defer rows.Close()

	out := make([]repository.PriceComparisonRow, 0)
	for rows.Next() {
		var row repository.PriceComparisonRow
		if err := rows.Scan(
			&row.TarifarioID, &row.TarifarioName,
			&row.CompanyID, &row.CompanyName,
			&row.EPSID, &row.EPSName,
			&row.BasePrice, &row.UnitPrice, &row.PackagePrice,
		); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildPriceComparisonQuery arma el SELECT con un placeholder por filtro presente.
func buildPriceComparisonQuery(f repository.PriceComparisonFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT t.id_tarifario, t.nombre, e.id_empresa, e.nombre, s.id_eps, s.nombre,
	tp.precio_base, tp.precio_unidad, tp.precio_empaque
FROM tarifario_productos tp
JOIN tarifarios t ON t.id_tarifario = tp.id_tarifario
LEFT JOIN empresas e ON e.id_empresa = t.id_empresa
LEFT JOIN eps s ON s.id_eps = t.id_eps
WHERE tp.id_producto = $1`)
	args := []any{f.ProductID}

	add := func(column string, ids []int64) {
		if len(ids) == 0 {
			return
		}
		args = append(args, ids)
		fmt.Fprintf(&b, " AND %s = ANY($%d)", column, len(args))
	}
	add("tp.id_tarifario", f.TarifarioIDs)
	add("t.id_empresa", f.CompanyIDs)
	add("t.id_eps", f.EPSIDs)
	return b.String(), args
}
