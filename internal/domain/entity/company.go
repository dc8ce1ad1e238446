package entity

// Company es una empresa que puede ser dueña de tarifarios.
type Company struct {
	ID   int64
	Name string
	NIT  string
}

// HealthInsurer es una EPS (entidad promotora de salud), posible dueña de un tarifario.
type HealthInsurer struct {
	ID   int64
	Name string
	NIT  string
}

// Laboratory fabricante de productos.
type Laboratory struct {
	ID   int64
	Name string
}
