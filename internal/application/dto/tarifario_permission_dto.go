package dto

// LinkTarifarioPermissionRequest entrada para vincular un permiso a un tarifario.
type LinkTarifarioPermissionRequest struct {
	PermissionID int64  `json:"id_permiso" validate:"required"`
	TarifarioID  int64  `json:"id_tarifario" validate:"required"`
	Description  string `json:"descripcion" validate:"required"`
}

// UpdateTarifarioPermissionRequest solo la descripción es editable.
type UpdateTarifarioPermissionRequest struct {
	Description string `json:"descripcion" validate:"required"`
}

// TarifarioPermissionResponse salida de un vínculo.
type TarifarioPermissionResponse struct {
	PermissionID   int64  `json:"id_permiso"`
	TarifarioID    int64  `json:"id_tarifario"`
	Description    string `json:"descripcion"`
	PermissionName string `json:"permiso,omitempty"`
	TarifarioName  string `json:"tarifario,omitempty"`
}

// TarifarioPermissionListResponse lista paginada de vínculos.
type TarifarioPermissionListResponse struct {
	Items []TarifarioPermissionResponse `json:"items"`
	Page  PageResponse                  `json:"page"`
}
