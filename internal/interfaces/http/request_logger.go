package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/tarifarios-api/pkg/logger"
	"github.com/jhoicas/tarifarios-api/pkg/metrics"
)

// RequestLogger asigna un request id (X-Request-ID entrante o uuid nuevo), deja un sublogger
// en c.Locals y registra cada request con su latencia. m puede ser nil.
func RequestLogger(l *logger.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(fiber.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, reqID)
		c.Locals(LocalRequestID, reqID)

		zl := l.With().Str("request_id", reqID).Logger()
		c.Locals(LocalLogger, &zl)

		err := c.Next()
		if err != nil {
			// responder aquí para registrar el status real
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		latency := time.Since(start)
		route := c.Route().Path

		evt := zl.Info()
		if status >= fiber.StatusInternalServerError {
			evt = zl.Error()
		} else if status >= fiber.StatusBadRequest {
			evt = zl.Warn()
		}
		evt.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", latency).
			Int64("id_usuario", GetUserID(c)).
			Msg("request")

		if m != nil {
			m.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
			m.HTTPDuration.WithLabelValues(c.Method(), route).Observe(latency.Seconds())
		}
		return nil
	}
}

// requestLogger sublogger del request; el logger global si RequestLogger no corrió.
func requestLogger(c *fiber.Ctx) *zerolog.Logger {
	if zl, ok := c.Locals(LocalLogger).(*zerolog.Logger); ok {
		return zl
	}
	return &log.Logger
}
