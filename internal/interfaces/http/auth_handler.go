package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tarifarios-api/internal/application/auth"
	"github.com/jhoicas/tarifarios-api/internal/application/dto"
	"github.com/jhoicas/tarifarios-api/internal/domain"
)

// AuthHandler maneja login y sesión actual.
type AuthHandler struct {
	uc *auth.CredentialIssuer
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.CredentialIssuer) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Verifica email/password y emite un token de 8 horas con rol, permisos y tarifarios alcanzables.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, invalidBody())
	}
	if in.Email == "" || in.Password == "" {
		return writeError(c, domain.Validation("VALIDATION", "email y password son requeridos"))
	}
	out, err := h.uc.Login(c.UserContext(), in, c.IP())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Sesión actual
// @Description  Rol, permisos y tarifarios alcanzables resueltos contra el estado vivo (no el token).
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.Session(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
