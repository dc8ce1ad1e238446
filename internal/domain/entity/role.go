package entity

// Nombres de rol usados por las rutas protegidas.
const (
	RoleAdministrador = "Administrador"
	RoleEditor        = "editor"
	RoleAdmin         = "admin"
)

// Permisos con significado en las rutas.
const (
	PermCrearTarifario    = "crear_tarifario"
	PermEditarTarifario   = "editar_tarifario"
	PermEliminarTarifario = "eliminar_tarifario"
	PermGestionarPermisos = "gestionar_permisos"
)

// Role agrupa permisos (vía RoleGrant).
type Role struct {
	ID   int64
	Name string
}

// Permission es un permiso nombrado; puede alcanzar tarifarios vía TarifarioPermission.
type Permission struct {
	ID   int64
	Name string
}

// RoleGrant asocia un permiso a un rol (tabla rol_permisos).
type RoleGrant struct {
	RoleID       int64
	PermissionID int64
}

// TarifarioPermission concede a un permiso acceso a un tarifario concreto.
// El par (PermissionID, TarifarioID) es único en el store.
type TarifarioPermission struct {
	PermissionID   int64
	TarifarioID    int64
	Description    string
	PermissionName string
	TarifarioName  string
}
