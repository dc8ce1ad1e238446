package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/tarifarios-api/internal/application/dto"
	"github.com/jhoicas/tarifarios-api/internal/domain"
	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

// Códigos de error del vinculador permiso-tarifario.
const (
	CodeLinkNotFound       = "LINK_NOT_FOUND"
	CodeLinkExists         = "LINK_ALREADY_EXISTS"
	CodePermissionNotFound = "PERMISSION_NOT_FOUND"
	CodeTarifarioNotFound  = "TARIFARIO_NOT_FOUND"
	CodeDescriptionEmpty   = "DESCRIPTION_REQUIRED"
	CodeInvalidID          = "INVALID_ID"
)

// TarifarioPermissionUseCase administra los vínculos permiso → tarifario. Es el único
// escritor de tarifario_permisos; el gate los lee en cada petición con alcance.
type TarifarioPermissionUseCase struct {
	links       repository.TarifarioPermissionRepository
	permissions repository.PermissionRepository
	tarifarios  repository.TarifarioRepository
}

// NewTarifarioPermissionUseCase construye el caso de uso.
func NewTarifarioPermissionUseCase(
	links repository.TarifarioPermissionRepository,
	permissions repository.PermissionRepository,
	tarifarios repository.TarifarioRepository,
) *TarifarioPermissionUseCase {
	return &TarifarioPermissionUseCase{links: links, permissions: permissions, tarifarios: tarifarios}
}

// Link crea el vínculo. Par existente (o perdido en carrera de inserción) → Conflict.
func (uc *TarifarioPermissionUseCase) Link(ctx context.Context, in dto.LinkTarifarioPermissionRequest) (*dto.TarifarioPermissionResponse, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, domain.Validation(CodeDescriptionEmpty, "la descripción es requerida")
	}
	if in.PermissionID <= 0 || in.TarifarioID <= 0 {
		return nil, domain.Validation(CodeInvalidID, "id_permiso e id_tarifario deben ser positivos")
	}

	perm, err := uc.permissions.GetByID(ctx, in.PermissionID)
	if err != nil {
		return nil, domain.Internal("cargar permiso", err)
	}
	if perm == nil {
		return nil, domain.NotFound(CodePermissionNotFound, "permiso no encontrado")
	}
	tarifario, err := uc.tarifarios.GetByID(ctx, in.TarifarioID)
	if err != nil {
		return nil, domain.Internal("cargar tarifario", err)
	}
	if tarifario == nil {
		return nil, domain.NotFound(CodeTarifarioNotFound, "tarifario no encontrado")
	}

	existing, err := uc.links.Get(ctx, in.PermissionID, in.TarifarioID)
	if err != nil {
		return nil, domain.Internal("cargar vínculo", err)
	}
	if existing != nil {
		return nil, linkExists(in.PermissionID, in.TarifarioID)
	}

	tp := &entity.TarifarioPermission{
		PermissionID:   in.PermissionID,
		TarifarioID:    in.TarifarioID,
		Description:    desc,
		PermissionName: perm.Name,
		TarifarioName:  tarifario.Name,
	}
	if err := uc.links.Create(ctx, tp); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, linkExists(in.PermissionID, in.TarifarioID)
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(CodeTarifarioNotFound, "permiso o tarifario eliminado durante la operación")
		}
		return nil, domain.Internal("crear vínculo", err)
	}
	return toTarifarioPermissionResponse(tp), nil
}

// Unlink elimina el vínculo. Par inexistente → NotFound.
func (uc *TarifarioPermissionUseCase) Unlink(ctx context.Context, permissionID, tarifarioID int64) error {
	ok, err := uc.links.Delete(ctx, permissionID, tarifarioID)
	if err != nil {
		return domain.Internal("eliminar vínculo", err)
	}
	if !ok {
		return linkNotFound(permissionID, tarifarioID)
	}
	return nil
}

// UpdateDescription cambia solo la descripción del vínculo.
func (uc *TarifarioPermissionUseCase) UpdateDescription(ctx context.Context, permissionID, tarifarioID int64, in dto.UpdateTarifarioPermissionRequest) (*dto.TarifarioPermissionResponse, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, domain.Validation(CodeDescriptionEmpty, "la descripción es requerida")
	}
	ok, err := uc.links.UpdateDescription(ctx, permissionID, tarifarioID, desc)
	if err != nil {
		return nil, domain.Internal("actualizar vínculo", err)
	}
	if !ok {
		return nil, linkNotFound(permissionID, tarifarioID)
	}
	tp, err := uc.links.Get(ctx, permissionID, tarifarioID)
	if err != nil {
		return nil, domain.Internal("cargar vínculo", err)
	}
	if tp == nil {
		// borrado entre el UPDATE y la lectura
		return nil, linkNotFound(permissionID, tarifarioID)
	}
	return toTarifarioPermissionResponse(tp), nil
}

// List lista vínculos con filtros opcionales y paginación (limit por defecto 20, máximo 100).
func (uc *TarifarioPermissionUseCase) List(ctx context.Context, filter repository.TarifarioPermissionFilter, page dto.PageRequest) (*dto.TarifarioPermissionListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.links.List(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.Internal("listar vínculos", err)
	}
	items := make([]dto.TarifarioPermissionResponse, 0, len(list))
	for _, tp := range list {
		items = append(items, *toTarifarioPermissionResponse(tp))
	}
	return &dto.TarifarioPermissionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

func linkExists(permissionID, tarifarioID int64) error {
	return domain.Conflict(CodeLinkExists, "el permiso ya está vinculado a este tarifario").
		WithDetails(map[string]any{"id_permiso": permissionID, "id_tarifario": tarifarioID})
}

func linkNotFound(permissionID, tarifarioID int64) error {
	return domain.NotFound(CodeLinkNotFound, "vínculo permiso-tarifario no encontrado").
		WithDetails(map[string]any{"id_permiso": permissionID, "id_tarifario": tarifarioID})
}

func toTarifarioPermissionResponse(tp *entity.TarifarioPermission) *dto.TarifarioPermissionResponse {
	return &dto.TarifarioPermissionResponse{
		PermissionID:   tp.PermissionID,
		TarifarioID:    tp.TarifarioID,
		Description:    tp.Description,
		PermissionName: tp.PermissionName,
		TarifarioName:  tp.TarifarioName,
	}
}
