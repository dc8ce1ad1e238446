package usecase

import (
	"context"

	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

// TarifarioTxRunner ejecuta fn dentro de una transacción, con repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback.
type TarifarioTxRunner interface {
	Run(ctx context.Context, fn func(
		tarifarioRepo repository.TarifarioRepository,
		linkRepo repository.TarifarioPermissionRepository,
		assignmentRepo repository.TarifarioProductRepository,
	) error) error
}
