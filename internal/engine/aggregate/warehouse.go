// Package aggregate rolls per-item results up to warehouse level.
package aggregate

import (
	"strings"

	"github.com/samber/lo"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// WarehouseIndex resolves an item id to its warehouse. The first record wins
// when an id repeats.
type WarehouseIndex map[string]string

// NewWarehouseIndex builds the id join used for grouping.
func NewWarehouseIndex(items []domain.InputItem) WarehouseIndex {
	first := lo.UniqBy(items, func(item domain.InputItem) string { return item.ID })
	return lo.Associate(first, func(item domain.InputItem) (string, string) {
		return item.ID, item.Warehouse
	})
}

// Warehouse returns the warehouse for id, or the Unknown bucket.
func (idx WarehouseIndex) Warehouse(id string) string {
	if w := strings.TrimSpace(idx[id]); w != "" {
		return w
	}
	return domain.UnknownWarehouse
}

// ByWarehouse groups results by the warehouse of their input record. Groups
// appear in the order their first result appears.
func ByWarehouse(items []domain.InputItem, results []domain.CalculationResult) []domain.WarehouseSummary {
	idx := NewWarehouseIndex(items)

	var order []string
	groups := make(map[string][]domain.CalculationResult)
	for _, r := range results {
		w := idx.Warehouse(r.ID)
		if _, seen := groups[w]; !seen {
			order = append(order, w)
		}
		groups[w] = append(groups[w], r)
	}

	return lo.Map(order, func(w string, _ int) domain.WarehouseSummary {
		return summarize(w, groups[w])
	})
}

// ExcelByWarehouse groups workbook-engine results the same way.
func ExcelByWarehouse(items []domain.InputItem, results []domain.ExcelMatchingResult) []domain.WarehouseSummary {
	base := lo.Map(results, func(r domain.ExcelMatchingResult, _ int) domain.CalculationResult {
		return r.CalculationResult
	})
	return ByWarehouse(items, base)
}

func summarize(warehouse string, results []domain.CalculationResult) domain.WarehouseSummary {
	s := domain.WarehouseSummary{
		Warehouse:              warehouse,
		TotalItems:             len(results),
		TotalActualStock:       lo.SumBy(results, func(r domain.CalculationResult) float64 { return r.TotalActualStock }),
		TotalTargetStock:       lo.SumBy(results, func(r domain.CalculationResult) float64 { return r.TotalTargetStock }),
		TotalSavingsPotential:  lo.SumBy(results, func(r domain.CalculationResult) float64 { return r.SavingsPotential }),
		TotalSafetyStock:       lo.SumBy(results, func(r domain.CalculationResult) float64 { return r.SafetyStock }),
		TotalTargetSafetyStock: lo.SumBy(results, func(r domain.CalculationResult) float64 { return r.TargetSafetyStock }),
	}
	if len(results) > 0 {
		s.AverageServiceLevel = lo.SumBy(results, func(r domain.CalculationResult) float64 { return r.ServiceLevel }) / float64(len(results))
	}
	return s
}
