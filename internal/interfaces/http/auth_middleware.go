package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tarifarios-api/internal/domain"
	"github.com/jhoicas/tarifarios-api/pkg/jwt"
)

// Locals keys en Fiber.
const (
	LocalUserID    = "user_id"
	LocalSubject   = "subject"
	LocalRequestID = "request_id"
	LocalLogger    = "logger"
)

// AuthMiddleware valida el Bearer Token JWT y deja el id de usuario en c.Locals.
// Solo decodifica la identidad: rol y permisos se resuelven contra el store en RequireAccess.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return writeError(c, domain.Authentication("MISSING_TOKEN", "token requerido"))
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return writeError(c, domain.Authentication("INVALID_TOKEN", "formato: Bearer <token>"))
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return writeError(c, domain.Authentication("MISSING_TOKEN", "token requerido"))
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return writeError(c, domain.Authentication("TOKEN_EXPIRED", "token expirado"))
			}
			return writeError(c, domain.Authentication("INVALID_TOKEN", "token inválido"))
		}
		c.Locals(LocalUserID, claims.UserID)
		return c.Next()
	}
}

// GetUserID devuelve el id de usuario del contexto (después del middleware de auth); 0 si no hay.
func GetUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(LocalUserID).(int64)
	return id
}
