// Command tarifarioctl herramientas de operación: hash de passwords, emisión de tokens
// contra el estado vivo de la base y lectura de tokens.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/tarifarios-api/pkg/config"
	"github.com/jhoicas/tarifarios-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg, postgresIssuer).ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("tarifarioctl")
		stop()
		os.Exit(1)
	}
}
