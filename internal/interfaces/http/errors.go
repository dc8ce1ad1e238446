package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/tarifarios-api/internal/application/dto"
	"github.com/jhoicas/tarifarios-api/internal/domain"
)

func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindAuthentication:
		return fiber.StatusUnauthorized
	case domain.KindAuthorization:
		return fiber.StatusForbidden
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// defaultCode código para errores sin etiqueta (sentinels del dominio).
func defaultCode(k domain.Kind) string {
	switch k {
	case domain.KindAuthentication:
		return "UNAUTHORIZED"
	case domain.KindAuthorization:
		return "FORBIDDEN"
	case domain.KindNotFound:
		return "NOT_FOUND"
	case domain.KindValidation:
		return "VALIDATION"
	case domain.KindConflict:
		return "CONFLICT"
	case domain.KindRateLimited:
		return "TOO_MANY_REQUESTS"
	default:
		return "INTERNAL"
	}
}

// writeError responde err según su tipo. Los errores internos se registran con el
// request id y se responden con un mensaje genérico.
func writeError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		requestLogger(c).Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}

	resp := dto.ErrorResponse{Code: defaultCode(kind), Message: err.Error()}
	var de *domain.Error
	if errors.As(err, &de) {
		resp.Code = de.Code
		resp.Message = de.Message
		resp.Details = de.Details
		if kind == domain.KindRateLimited {
			if secs, ok := de.Details["retry_after_seconds"].(int); ok {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			}
		}
	}
	return c.Status(statusFor(kind)).JSON(resp)
}

// ErrorHandler manejador de errores de fiber: rutas inexistentes, body inválido y
// cualquier error que un handler devuelva sin responder.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(fe.Code), " ", "_"))
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return writeError(c, err)
}

func invalidBody() error {
	return domain.Validation("INVALID_BODY", "cuerpo inválido")
}
