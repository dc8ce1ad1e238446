package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tarifarios-api/internal/application/pricing"
	"github.com/jhoicas/tarifarios-api/internal/domain"
)

// CompareHandler comparador de precios por producto.
type CompareHandler struct {
	uc *pricing.CompareUseCase
}

// NewCompareHandler construye el handler.
func NewCompareHandler(uc *pricing.CompareUseCase) *CompareHandler {
	return &CompareHandler{uc: uc}
}

// Compare godoc
// @Summary      Comparar precios de un producto
// @Description  Precio base, unitario y de empaque del producto en cada tarifario. Con cum, el producto se resuelve por CUM.
// @Tags         compare
// @Security     Bearer
// @Produce      json
// @Param        productoId    path   string  true   "ID del producto"
// @Param        cum           query  string  false  "Código Único de Medicamento"
// @Param        tarifarioIds  query  string  false  "IDs de tarifario separados por coma"
// @Param        empresaIds    query  string  false  "IDs de empresa separados por coma"
// @Param        epsIds        query  string  false  "IDs de EPS separados por coma"
// @Success      200  {object}  dto.PriceComparisonResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/compare/producto/{productoId} [get]
func (h *CompareHandler) Compare(c *fiber.Ctx) error {
	q := pricing.Query{
		ProductID: c.Params("productoId"),
		CUM:       c.Query("cum"),
	}
	var err error
	if q.TarifarioIDs, err = parseIDList("tarifarioIds", c.Query("tarifarioIds")); err != nil {
		return writeError(c, err)
	}
	if q.CompanyIDs, err = parseIDList("empresaIds", c.Query("empresaIds")); err != nil {
		return writeError(c, err)
	}
	if q.EPSIDs, err = parseIDList("epsIds", c.Query("epsIds")); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Compare(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// parseIDList enteros positivos separados por coma. Elementos vacíos se ignoran.
func parseIDList(name, raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, domain.Validation("INVALID_ID_LIST", name+" debe ser una lista de enteros positivos separados por coma").
				WithDetails(map[string]any{name: raw})
		}
		out = append(out, id)
	}
	return out, nil
}
