package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/tarifarios-api/internal/application/access"
	"github.com/jhoicas/tarifarios-api/internal/domain"
)

// RequireAccess devuelve un middleware Fiber que evalúa policy contra el estado vivo del
// usuario. Debe usarse DESPUÉS de AuthMiddleware (necesita LocalUserID).
//
// Comportamiento:
//   - 404 → usuario eliminado o inactivo desde que se emitió el token.
//   - 403 → rol, permiso o alcance de tarifario insuficiente (con detalles).
//   - 400 → política con alcance sin :id numérico en la ruta.
//   - 500 → fallo del store; no se concede acceso.
//
// decisions puede ser nil.
func RequireAccess(gate *access.Gate, policy access.Policy, decisions *prometheus.CounterVec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID <= 0 {
			return writeError(c, domain.Authentication("MISSING_TOKEN", "token requerido"))
		}

		var tarifarioID int64
		if policy.ScopeToTarifario {
			// id inválido o fuera de rango queda en 0 y el gate responde MISSING_TARIFARIO_ID
			if id, err := strconv.ParseInt(c.Params("id"), 10, 64); err == nil {
				tarifarioID = id
			}
		}

		subject, err := gate.Authorize(c.UserContext(), userID, policy, tarifarioID)
		outcome := access.Outcome(err)
		if decisions != nil {
			decisions.WithLabelValues(outcome).Inc()
		}
		if err != nil {
			if domain.KindOf(err) != domain.KindInternal {
				requestLogger(c).Debug().
					Int64("id_usuario", userID).
					Str("outcome", outcome).
					Str("path", c.Path()).
					Msg("acceso denegado")
			}
			return writeError(c, err)
		}
		c.Locals(LocalSubject, subject)
		return c.Next()
	}
}

// GetSubject sujeto resuelto por RequireAccess; nil si la ruta no pasó por el gate.
func GetSubject(c *fiber.Ctx) *access.Subject {
	s, _ := c.Locals(LocalSubject).(*access.Subject)
	return s
}
