// Package pricing agrega los precios de un producto en los tarifarios, con filtros opcionales
// por tarifario, empresa y EPS.
package pricing

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/tarifarios-api/internal/application/dto"
	"github.com/jhoicas/tarifarios-api/internal/domain"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
)

// Códigos de error del comparador.
const (
	CodeInvalidProductID = "INVALID_PRODUCT_ID"
	CodeProductNotFound  = "PRODUCT_NOT_FOUND"
)

// Query entrada del comparador. Si CUM no está vacío tiene prioridad sobre ProductID.
// Los conjuntos vacíos no restringen; los presentes se combinan con AND.
type Query struct {
	ProductID    string
	CUM          string
	TarifarioIDs []int64
	CompanyIDs   []int64
	EPSIDs       []int64
}

// CompareUseCase comparador de precios. Solo lectura.
type CompareUseCase struct {
	products repository.ProductRepository
	prices   repository.PriceComparisonRepository
	duration prometheus.ObserverVec
}

// NewCompareUseCase construye el comparador. duration puede ser nil.
func NewCompareUseCase(products repository.ProductRepository, prices repository.PriceComparisonRepository, duration prometheus.ObserverVec) *CompareUseCase {
	return &CompareUseCase{products: products, prices: prices, duration: duration}
}

// Compare resuelve el producto (por CUM o id) y devuelve sus precios. Sin asignaciones → resultados vacíos.
func (uc *CompareUseCase) Compare(ctx context.Context, q Query) (*dto.PriceComparisonResponse, error) {
	productID, err := uc.resolveProduct(ctx, q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := uc.prices.Compare(ctx, repository.PriceComparisonFilter{
		ProductID:    productID,
		TarifarioIDs: q.TarifarioIDs,
		CompanyIDs:   q.CompanyIDs,
		EPSIDs:       q.EPSIDs,
	})
	uc.observe(start, err)
	if err != nil {
		return nil, domain.Internal("consultar precios", err)
	}

	out := &dto.PriceComparisonResponse{
		ProductoID: productID,
		Resultados: make([]dto.PriceComparisonRow, 0, len(rows)),
	}
	for _, r := range rows {
		out.Resultados = append(out.Resultados, dto.PriceComparisonRow{
			TarifarioID:     r.TarifarioID,
			TarifarioNombre: r.TarifarioName,
			EmpresaID:       r.CompanyID,
			EmpresaNombre:   r.CompanyName,
			EPSID:           r.EPSID,
			EPSNombre:       r.EPSName,
			PrecioBase:      r.BasePrice,
			PrecioUnidad:    r.UnitPrice,
			PrecioEmpaque:   r.PackagePrice,
		})
	}
	return out, nil
}

// resolveProduct: el CUM se resuelve antes de validar el id numérico. Un id numérico
// no se verifica contra el catálogo.
func (uc *CompareUseCase) resolveProduct(ctx context.Context, q Query) (int64, error) {
	if cum := strings.TrimSpace(q.CUM); cum != "" {
		p, err := uc.products.GetByCUM(ctx, cum)
		if err != nil {
			return 0, domain.Internal("buscar producto por CUM", err)
		}
		if p == nil {
			return 0, domain.NotFound(CodeProductNotFound, "producto no encontrado para el CUM").
				WithDetails(map[string]any{"cum": cum})
		}
		return p.ID, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(q.ProductID), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation(CodeInvalidProductID, "id de producto inválido").
			WithDetails(map[string]any{"productoId": q.ProductID})
	}
	return id, nil
}

func (uc *CompareUseCase) observe(start time.Time, err error) {
	if uc.duration == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	uc.duration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
