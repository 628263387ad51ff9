package excelmatch

import (
	"math"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// Summary builds the workbook summary block. Every pair is rounded half-up
// to whole units and whole currency.
func (c *Calculator) Summary(results []domain.ExcelMatchingResult) domain.ExcelSummary {
	return Summarize(results, c.config.Currency)
}

// Summarize is Summary with an explicit currency label.
func Summarize(results []domain.ExcelMatchingResult, currency string) domain.ExcelSummary {
	yearlyUnits := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 { return r.FutureYearlyDemand })
	yearlyValue := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 {
		return r.FutureYearlyDemand * impliedUnitCost(r)
	})

	actualUnits := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 { return r.TotalActualStockUnits })
	actualValue := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 { return r.TotalActualStockValue })

	targetUnits := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 { return r.TotalTargetStockUnits })
	targetValue := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 { return r.TotalTargetStockValue })

	potentialUnits := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 { return r.TotalPotentialUnits })
	potentialValue := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 { return r.TotalPotentialValue })

	actualSafetyUnits := lo.SumBy(results, ImpliedActualSafetyStock)
	actualSafetyValue := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 {
		return ImpliedActualSafetyStock(r) * impliedUnitCost(r)
	})

	targetSafetyUnits := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 { return r.SafetyStockUnits })
	targetSafetyValue := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 { return r.TargetSafetyStockValue })

	cycleUnits := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 { return r.CycleStockUnits })
	cycleValue := lo.SumBy(results, func(r domain.ExcelMatchingResult) float64 { return r.TargetCycleStockValue })

	percentage := 0.0
	if actualValue > 0 {
		percentage = potentialValue / actualValue * 100
	}

	return domain.ExcelSummary{
		TotalItems:           len(results),
		FailedItems:          lo.CountBy(results, func(r domain.ExcelMatchingResult) bool { return r.Defaulted() }),
		Currency:             currency,
		YearlyDemand:         pair(yearlyUnits, yearlyValue),
		ActualTotalInventory: pair(actualUnits, actualValue),
		TargetTotalInventory: pair(targetUnits, targetValue),
		TotalPotential: domain.PotentialTotals{
			UnitsAndValue: pair(potentialUnits, potentialValue),
			Percentage:    RoundHalfUp(percentage),
		},
		ActualSafetyStock: pair(actualSafetyUnits, actualSafetyValue),
		TargetSafetyStock: pair(targetSafetyUnits, targetSafetyValue),
		TargetCycleStock:  pair(cycleUnits, cycleValue),
	}
}

// ImpliedActualSafetyStock is the stock left after removing cycle and
// transit stock from the actual total, floored at zero.
func ImpliedActualSafetyStock(r domain.ExcelMatchingResult) float64 {
	return math.Max(0, r.TotalActualStockUnits-r.CycleStockUnits-r.TransitStockUnits)
}

// impliedUnitCost recovers the unit cost from the actual stock pair.
func impliedUnitCost(r domain.ExcelMatchingResult) float64 {
	if r.TotalActualStockUnits == 0 {
		return 0
	}
	cost := r.TotalActualStockValue / r.TotalActualStockUnits
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return 0
	}
	return cost
}

var half = decimal.NewFromFloat(0.5)

// RoundHalfUp rounds to the nearest integer with halves going toward positive
// infinity, so -2.5 becomes -2.
func RoundHalfUp(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Add(half).Floor().IntPart()
}

func pair(units, value float64) domain.UnitsAndValue {
	return domain.UnitsAndValue{
		Units: RoundHalfUp(units),
		Value: RoundHalfUp(value),
	}
}
