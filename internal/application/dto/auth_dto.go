package dto

import "time"

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse sesión resuelta: rol, permisos y tarifarios alcanzables.
type SessionResponse struct {
	UserID      int64    `json:"id_usuario"`
	Role        string   `json:"rol"`
	Permissions []string `json:"permisos"`
	Tarifarios  []int64  `json:"tarifarios"`
}

// LoginResponse token firmado más la sesión embebida en él.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   SessionResponse `json:"session"`
}
