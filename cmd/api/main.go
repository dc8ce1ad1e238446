package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	_ "github.com/jhoicas/tarifarios-api/docs"
	"github.com/jhoicas/tarifarios-api/internal/application/access"
	"github.com/jhoicas/tarifarios-api/internal/application/auth"
	"github.com/jhoicas/tarifarios-api/internal/application/pricing"
	"github.com/jhoicas/tarifarios-api/internal/application/usecase"
	"github.com/jhoicas/tarifarios-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tarifarios-api/internal/infrastructure/ratelimit"
	httpRouter "github.com/jhoicas/tarifarios-api/internal/interfaces/http"
	"github.com/jhoicas/tarifarios-api/pkg/config"
	"github.com/jhoicas/tarifarios-api/pkg/logger"
	"github.com/jhoicas/tarifarios-api/pkg/metrics"
)

// @title                       Tarifarios API
// @version                     1.0
// @description                 Tarifarios farmacéuticos: control de acceso por rol, permiso y tarifario, y comparador de precios.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	accessRepo := postgres.NewAccessRepository(pool)
	permissionRepo := postgres.NewPermissionRepository(pool)
	tarifarioRepo := postgres.NewTarifarioRepository(pool)
	linkRepo := postgres.NewTarifarioPermissionRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	priceRepo := postgres.NewPriceComparisonRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Limitador de login: Redis si está configurado (compartido entre réplicas), si no en memoria.
	var limiter auth.LoginLimiter
	if cfg.Redis.Addr != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, "", cfg.Login.MaxAttempts, cfg.Login.Window)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("limitador de login en Redis")
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.Login.MaxAttempts, cfg.Login.Window)
		log.Warn().Msg("REDIS_ADDR vacío: limitador de login en memoria (no compartido entre réplicas)")
	}

	m := metrics.New()
	gate := access.NewGate(userRepo, accessRepo)
	authUC, err := auth.NewCredentialIssuer(userRepo, gate, limiter, auth.JWTConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("emisor de credenciales")
	}
	tarifarioUC := usecase.NewTarifarioUseCase(tarifarioRepo, txRunner)
	linkUC := usecase.NewTarifarioPermissionUseCase(linkRepo, permissionRepo, tarifarioRepo)
	compareUC := pricing.NewCompareUseCase(productRepo, priceRepo, m.CompareDuration)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httpRouter.ErrorHandler,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log, m))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tarifarios API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		Gate:        gate,
		TarifarioUC: tarifarioUC,
		LinkUC:      linkUC,
		CompareUC:   compareUC,
		Metrics:     m,
		DB:          pool,
		ServiceName: cfg.App.Name,
		JWTSecret:   cfg.JWT.Secret,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("servidor HTTP finalizado")
		os.Exit(1)
	}
	log.Info().Msg("aplicación detenida")
}
