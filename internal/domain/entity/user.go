package entity

import "time"

// User representa un usuario de la plataforma. Su autorización se resuelve siempre
// a través de su Role; nunca se guarda una copia de permisos en el usuario.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string // bcrypt
	RoleID       int64
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
