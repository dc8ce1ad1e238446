package dto

import "time"

// CreateTarifarioRequest entrada para crear un tarifario.
type CreateTarifarioRequest struct {
	Name      string `json:"nombre" validate:"required,min=1,max=200"`
	CompanyID *int64 `json:"id_empresa"`
	EPSID     *int64 `json:"id_eps"`
}

// UpdateTarifarioRequest campos opcionales a actualizar.
type UpdateTarifarioRequest struct {
	Name      *string `json:"nombre" validate:"omitempty,min=1,max=200"`
	CompanyID *int64  `json:"id_empresa"`
	EPSID     *int64  `json:"id_eps"`
}

// TarifarioResponse salida de un tarifario.
type TarifarioResponse struct {
	ID        int64     `json:"id_tarifario"`
	Name      string    `json:"nombre"`
	CompanyID *int64    `json:"id_empresa"`
	EPSID     *int64    `json:"id_eps"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
