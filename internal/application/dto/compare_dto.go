package dto

import "github.com/shopspring/decimal"

// PriceComparisonRow precio de un producto en un tarifario, con dueño (empresa y/o EPS).
type PriceComparisonRow struct {
	TarifarioID     int64           `json:"tarifarioId"`
	TarifarioNombre string          `json:"tarifarioNombre"`
	EmpresaID       *int64          `json:"empresaId"`
	EmpresaNombre   *string         `json:"empresaNombre"`
	EPSID           *int64          `json:"epsId"`
	EPSNombre       *string         `json:"epsNombre"`
	PrecioBase      decimal.Decimal `json:"precioBase"`
	PrecioUnidad    decimal.Decimal `json:"precioUnidad"`
	PrecioEmpaque   decimal.Decimal `json:"precioEmpaque"`
}

// PriceComparisonResponse resultado del comparador. Resultados nunca es null.
type PriceComparisonResponse struct {
	ProductoID int64                `json:"productoId"`
	Resultados []PriceComparisonRow `json:"resultados"`
}
