package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tarifario es una lista de precios, opcionalmente de una empresa y/o una EPS.
type Tarifario struct {
	ID        int64
	Name      string
	CompanyID *int64
	EPSID     *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TarifarioProduct es la asignación de precio de un producto en un tarifario.
// La clave (TarifarioID, ProductID) es única en el store.
type TarifarioProduct struct {
	TarifarioID  int64
	ProductID    int64
	BasePrice    decimal.Decimal
	UnitPrice    decimal.Decimal
	PackagePrice decimal.Decimal
}
