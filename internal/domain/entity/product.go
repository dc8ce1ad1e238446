package entity

// Product es un medicamento del catálogo. CUM es el Código Único de Medicamento,
// identificador alterno único.
type Product struct {
	ID           int64
	CUM          string
	Name         string
	LaboratoryID *int64
}
