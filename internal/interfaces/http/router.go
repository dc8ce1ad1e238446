package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/tarifarios-api/internal/application/access"
	"github.com/jhoicas/tarifarios-api/internal/application/auth"
	"github.com/jhoicas/tarifarios-api/internal/application/pricing"
	"github.com/jhoicas/tarifarios-api/internal/application/usecase"
	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/pkg/metrics"
)

// Pinger verificación de dependencias para /health (lo cumple *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.CredentialIssuer
	Gate        *access.Gate
	TarifarioUC *usecase.TarifarioUseCase
	LinkUC      *usecase.TarifarioPermissionUseCase
	CompareUC   *pricing.CompareUseCase
	Metrics     *metrics.Metrics
	DB          Pinger
	ServiceName string
	JWTSecret   string
}

// Políticas de las rutas protegidas.
var (
	policyAuthenticated   = access.Policy{}
	policyReadTarifario   = access.Policy{ScopeToTarifario: true}
	policyCreateTarifario = access.Policy{
		AllowedRoles:        []string{entity.RoleAdministrador},
		RequiredPermissions: []string{entity.PermCrearTarifario},
	}
	policyEditTarifario = access.Policy{
		AllowedRoles:        []string{entity.RoleAdministrador, entity.RoleEditor},
		RequiredPermissions: []string{entity.PermEditarTarifario},
		ScopeToTarifario:    true,
	}
	policyDeleteTarifario = access.Policy{
		AllowedRoles:        []string{entity.RoleAdmin},
		RequiredPermissions: []string{entity.PermEliminarTarifario},
		ScopeToTarifario:    true,
	}
	policyManageLinks = access.Policy{
		AllowedRoles:        []string{entity.RoleAdministrador},
		RequiredPermissions: []string{entity.PermGestionarPermisos},
	}
)

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps))
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	decisions := deps.gateCounter()
	guard := func(p access.Policy) fiber.Handler {
		return RequireAccess(deps.Gate, p, decisions)
	}

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", guard(policyAuthenticated), authHandler.Me)

	// Tarifarios
	tarifarioHandler := NewTarifarioHandler(deps.TarifarioUC)
	protected.Post("/tarifario", guard(policyCreateTarifario), tarifarioHandler.Create)
	protected.Get("/tarifario/:id", guard(policyReadTarifario), tarifarioHandler.GetByID)
	protected.Put("/tarifario/:id", guard(policyEditTarifario), tarifarioHandler.Update)
	protected.Delete("/tarifario/:id", guard(policyDeleteTarifario), tarifarioHandler.Delete)

	// Vínculos permiso-tarifario
	linkHandler := NewTarifarioPermissionHandler(deps.LinkUC)
	links := protected.Group("/tarifario-permisos", guard(policyManageLinks))
	links.Get("/", linkHandler.List)
	links.Post("/", linkHandler.Create)
	links.Put("/:permisoId/:tarifarioId", linkHandler.Update)
	links.Delete("/:permisoId/:tarifarioId", linkHandler.Delete)

	// Comparador
	compareHandler := NewCompareHandler(deps.CompareUC)
	protected.Get("/compare/producto/:productoId", guard(policyAuthenticated), compareHandler.Compare)
}

func (d RouterDeps) gateCounter() *prometheus.CounterVec {
	if d.Metrics == nil {
		return nil
	}
	return d.Metrics.GateDecisions
}

func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.DB.Ping(ctx); err != nil {
				requestLogger(c).Warn().Err(err).Msg("health: base de datos no disponible")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.ServiceName})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	}
}
