package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tarifarios-api/internal/application/dto"
	"github.com/jhoicas/tarifarios-api/internal/application/usecase"
	"github.com/jhoicas/tarifarios-api/internal/domain"
)

// TarifarioHandler maneja las peticiones HTTP para Tarifario (protegido por el gate).
type TarifarioHandler struct {
	uc *usecase.TarifarioUseCase
}

// NewTarifarioHandler construye el handler.
func NewTarifarioHandler(uc *usecase.TarifarioUseCase) *TarifarioHandler {
	return &TarifarioHandler{uc: uc}
}

// Create godoc
// @Summary      Crear tarifario
// @Tags         tarifarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTarifarioRequest  true  "Datos del tarifario"
// @Success      201   {object}  dto.TarifarioResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/tarifario [post]
func (h *TarifarioHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTarifarioRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, invalidBody())
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener tarifario
// @Tags         tarifarios
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del tarifario"
// @Success      200  {object}  dto.TarifarioResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tarifario/{id} [get]
func (h *TarifarioHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar tarifario
// @Tags         tarifarios
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                         true  "ID del tarifario"
// @Param        body  body  dto.UpdateTarifarioRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.TarifarioResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/tarifario/{id} [put]
func (h *TarifarioHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateTarifarioRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, invalidBody())
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar tarifario
// @Description  Elimina el tarifario con sus precios y vínculos de permiso.
// @Tags         tarifarios
// @Security     Bearer
// @Param        id   path  int  true  "ID del tarifario"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tarifario/{id} [delete]
func (h *TarifarioHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// pathID entero positivo del parámetro de ruta name.
func pathID(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation("INVALID_ID", name+" debe ser un entero positivo").
			WithDetails(map[string]any{name: raw})
	}
	return id, nil
}

// queryID entero positivo del query param name.
func queryID(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Query(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation("INVALID_ID", name+" debe ser un entero positivo").
			WithDetails(map[string]any{name: raw})
	}
	return id, nil
}
