package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceComparisonFilter predicado del comparador: producto obligatorio y conjuntos
// opcionales (vacío = sin restricción). Los conjuntos presentes se combinan con AND.
type PriceComparisonFilter struct {
	ProductID    int64
	TarifarioIDs []int64
	CompanyIDs   []int64
	EPSIDs       []int64
}

// PriceComparisonRow una asignación de precio unida con su tarifario, empresa y EPS.
type PriceComparisonRow struct {
	TarifarioID   int64
	TarifarioName string
	CompanyID     *int64
	CompanyName   *string
	EPSID         *int64
	EPSName       *string
	BasePrice     decimal.Decimal
	UnitPrice     decimal.Decimal
	PackagePrice  decimal.Decimal
}

// PriceComparisonRepository consulta de solo lectura sobre tarifario_productos.
type PriceComparisonRepository interface {
	Compare(ctx context.Context, filter PriceComparisonFilter) ([]PriceComparisonRow, error)
}
