package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/tarifarios-api/internal/application/dto"
	"github.com/jhoicas/tarifarios-api/internal/domain"
	"github.com/jhoicas/tarifarios-api/internal/domain/entity"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

// TarifarioUseCase casos de uso CRUD de tarifarios. El control de acceso lo hace el gate
// antes de llegar aquí.
type TarifarioUseCase struct {
	repo     repository.TarifarioRepository
	txRunner TarifarioTxRunner
}

// NewTarifarioUseCase construye el caso de uso.
func NewTarifarioUseCase(repo repository.TarifarioRepository, txRunner TarifarioTxRunner) *TarifarioUseCase {
	return &TarifarioUseCase{repo: repo, txRunner: txRunner}
}

// Create crea un tarifario. Debe tener dueño: empresa, EPS o ambos.
func (uc *TarifarioUseCase) Create(ctx context.Context, in dto.CreateTarifarioRequest) (*dto.TarifarioResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validation("NAME_REQUIRED", "el nombre es requerido")
	}
	if in.CompanyID == nil && in.EPSID == nil {
		return nil, domain.Validation("OWNER_REQUIRED", "el tarifario debe pertenecer a una empresa o a una EPS")
	}
	now := time.Now()
	t := &entity.Tarifario{
		Name:      name,
		CompanyID: in.CompanyID,
		EPSID:     in.EPSID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, storeError("crear tarifario", t.ID, err)
	}
	return toTarifarioResponse(t), nil
}

// GetByID obtiene un tarifario. Inexistente → NotFound.
func (uc *TarifarioUseCase) GetByID(ctx context.Context, id int64) (*dto.TarifarioResponse, error) {
	t, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTarifarioResponse(t), nil
}

// Update actualiza los campos presentes.
func (uc *TarifarioUseCase) Update(ctx context.Context, id int64, in dto.UpdateTarifarioRequest) (*dto.TarifarioResponse, error) {
	t, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Validation("NAME_REQUIRED", "el nombre no puede quedar vacío")
		}
		t.Name = name
	}
	if in.CompanyID != nil {
		t.CompanyID = in.CompanyID
	}
	if in.EPSID != nil {
		t.EPSID = in.EPSID
	}
	t.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, t); err != nil {
		return nil, storeError("actualizar tarifario", t.ID, err)
	}
	return toTarifarioResponse(t), nil
}

// Delete elimina el tarifario junto con sus precios y vínculos de permiso, en una sola transacción.
func (uc *TarifarioUseCase) Delete(ctx context.Context, id int64) error {
	err := uc.txRunner.Run(ctx, func(
		tarifarioRepo repository.TarifarioRepository,
		linkRepo repository.TarifarioPermissionRepository,
		assignmentRepo repository.TarifarioProductRepository,
	) error {
		if _, err := assignmentRepo.DeleteByTarifario(ctx, id); err != nil {
			return domain.Internal("eliminar precios del tarifario", err)
		}
		if _, err := linkRepo.DeleteByTarifario(ctx, id); err != nil {
			return domain.Internal("eliminar vínculos del tarifario", err)
		}
		ok, err := tarifarioRepo.Delete(ctx, id)
		if err != nil {
			return domain.Internal("eliminar tarifario", err)
		}
		if !ok {
			return tarifarioNotFound(id)
		}
		return nil
	})
	var de *domain.Error
	if err != nil && !errors.As(err, &de) {
		// begin/commit fallidos
		return domain.Internal("transacción de borrado", err)
	}
	return err
}

func (uc *TarifarioUseCase) load(ctx context.Context, id int64) (*entity.Tarifario, error) {
	if id <= 0 {
		return nil, domain.Validation(CodeInvalidID, "id de tarifario inválido")
	}
	t, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("cargar tarifario", err)
	}
	if t == nil {
		return nil, tarifarioNotFound(id)
	}
	return t, nil
}

// storeError traduce los sentinels del repositorio; el resto es Internal.
func storeError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return domain.Validation("OWNER_NOT_FOUND", "la empresa o EPS indicada no existe")
	case errors.Is(err, domain.ErrNotFound):
		return tarifarioNotFound(id)
	default:
		return domain.Internal(op, err)
	}
}

func tarifarioNotFound(id int64) error {
	return domain.NotFound(CodeTarifarioNotFound, "tarifario no encontrado").
		WithDetails(map[string]any{"id_tarifario": id})
}

func toTarifarioResponse(t *entity.Tarifario) *dto.TarifarioResponse {
	return &dto.TarifarioResponse{
		ID:        t.ID,
		Name:      t.Name,
		CompanyID: t.CompanyID,
		EPSID:     t.EPSID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
