package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tarifarios-api/internal/application/dto"
	"github.com/jhoicas/tarifarios-api/internal/application/usecase"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

// TarifarioPermissionHandler administra los vínculos permiso → tarifario.
type TarifarioPermissionHandler struct {
	uc *usecase.TarifarioPermissionUseCase
}

// NewTarifarioPermissionHandler construye el handler.
func NewTarifarioPermissionHandler(uc *usecase.TarifarioPermissionUseCase) *TarifarioPermissionHandler {
	return &TarifarioPermissionHandler{uc: uc}
}

// List godoc
// @Summary      Listar vínculos permiso-tarifario
// @Tags         tarifario-permisos
// @Security     Bearer
// @Produce      json
// @Param        id_permiso    query  int  false  "Filtrar por permiso"
// @Param        id_tarifario  query  int  false  "Filtrar por tarifario"
// @Param        limit         query  int  false  "Límite"  default(20)
// @Param        offset        query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.TarifarioPermissionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/tarifario-permisos [get]
func (h *TarifarioPermissionHandler) List(c *fiber.Ctx) error {
	var filter repository.TarifarioPermissionFilter
	if c.Query("id_permiso") != "" {
		id, err := queryID(c, "id_permiso")
		if err != nil {
			return writeError(c, err)
		}
		filter.PermissionID = &id
	}
	if c.Query("id_tarifario") != "" {
		id, err := queryID(c, "id_tarifario")
		if err != nil {
			return writeError(c, err)
		}
		filter.TarifarioID = &id
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), filter, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Vincular permiso a tarifario
// @Tags         tarifario-permisos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LinkTarifarioPermissionRequest  true  "id_permiso, id_tarifario, descripcion"
// @Success      201   {object}  dto.TarifarioPermissionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tarifario-permisos [post]
func (h *TarifarioPermissionHandler) Create(c *fiber.Ctx) error {
	var in dto.LinkTarifarioPermissionRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, invalidBody())
	}
	out, err := h.uc.Link(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar descripción del vínculo
// @Tags         tarifario-permisos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        permisoId    path  int  true  "ID del permiso"
// @Param        tarifarioId  path  int  true  "ID del tarifario"
// @Param        body         body  dto.UpdateTarifarioPermissionRequest  true  "descripcion"
// @Success      200  {object}  dto.TarifarioPermissionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tarifario-permisos/{permisoId}/{tarifarioId} [put]
func (h *TarifarioPermissionHandler) Update(c *fiber.Ctx) error {
	permissionID, tarifarioID, err := linkParams(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateTarifarioPermissionRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, invalidBody())
	}
	out, err := h.uc.UpdateDescription(c.UserContext(), permissionID, tarifarioID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Desvincular permiso de tarifario
// @Tags         tarifario-permisos
// @Security     Bearer
// @Param        permisoId    path  int  true  "ID del permiso"
// @Param        tarifarioId  path  int  true  "ID del tarifario"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tarifario-permisos/{permisoId}/{tarifarioId} [delete]
func (h *TarifarioPermissionHandler) Delete(c *fiber.Ctx) error {
	permissionID, tarifarioID, err := linkParams(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Unlink(c.UserContext(), permissionID, tarifarioID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func linkParams(c *fiber.Ctx) (int64, int64, error) {
	permissionID, err := pathID(c, "permisoId")
	if err != nil {
		return 0, 0, err
	}
	tarifarioID, err := pathID(c, "tarifarioId")
	if err != nil {
		return 0, 0, err
	}
	return permissionID, tarifarioID, nil
}
