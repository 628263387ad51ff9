// Package excelmatch reproduces the arithmetic of the legacy planning
// workbook. Its safety factor comes from a fitted step function of q/σ,
// not from the loss-function table, and its band edges must stay as they are.
package excelmatch

import (
	"fmt"
	"math"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/engine/demand"
	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

// DaysPerMonth converts lead times from days into demand months.
const DaysPerMonth = 30.44

const monthsPerYear = 12

type band struct {
	upTo   float64
	factor float64
}

// Empirically fitted against workbook output.
var bands = []band{
	{0.20, 1.56},
	{0.35, 1.50},
	{0.70, 1.35},
	{1.15, 1.17},
	{1.80, 0.94},
}

const tailFactor = 0.75

const (
	lowServiceLevel  = 0.90
	highServiceLevel = 0.99
	lowCorrection    = 0.85
	highCorrection   = 1.15
)

// SafetyFactor maps a q/σ ratio and service level to the workbook's safety
// factor.
func SafetyFactor(qOverSigma, serviceLevel float64) float64 {
	factor := tailFactor
	for _, b := range bands {
		if qOverSigma <= b.upTo {
			factor = b.factor
			break
		}
	}

	switch {
	case serviceLevel < lowServiceLevel:
		factor *= lowCorrection
	case serviceLevel >= highServiceLevel:
		factor *= highCorrection
	}
	return factor
}

// EOQ is sqrt(2·D·S / (c·h)), 0 when any input is non-positive.
func EOQ(annualDemand, orderCost, carryingRate, unitCost float64) float64 {
	if annualDemand <= 0 || orderCost <= 0 || carryingRate <= 0 || unitCost <= 0 {
		return 0
	}
	return math.Sqrt((2 * annualDemand * orderCost) / (unitCost * carryingRate))
}

// Calculator runs the workbook arithmetic for one configuration.
type Calculator struct {
	config domain.CalculationConfig
}

func NewCalculator(cfg domain.CalculationConfig) *Calculator {
	return &Calculator{config: cfg}
}

// Calculate computes one item. Faults yield a defaulted placeholder.
func (c *Calculator) Calculate(item domain.InputItem) (result domain.ExcelMatchingResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			logger.Log.Warn().Str("item", item.ID).Err(err).Msg("excelmatch: item calculation faulted")
			result = domain.DefaultedExcelMatchingResult(item.ID, err)
		}
	}()

	res, err := c.calculate(item)
	if err != nil {
		logger.Log.Warn().Str("item", item.ID).Err(err).Msg("excelmatch: item calculation faulted")
		return domain.DefaultedExcelMatchingResult(item.ID, err)
	}
	return res
}

// CalculateAll computes every item in input order.
func (c *Calculator) CalculateAll(items []domain.InputItem) []domain.ExcelMatchingResult {
	results := make([]domain.ExcelMatchingResult, 0, len(items))
	for _, item := range items {
		results = append(results, c.Calculate(item))
	}
	return results
}

func (c *Calculator) calculate(item domain.InputItem) (domain.ExcelMatchingResult, error) {
	params := item.Parameters()
	stats := demand.Compute(item.DemandData)

	avgMonthly := stats.Average
	historicYearly := avgMonthly * monthsPerYear
	futureYearly := historicYearly

	eoq := EOQ(futureYearly, params.OrderCost, params.HoldingCostRate, params.UnitCost)
	reorderQty := eoq
	cycleStock := reorderQty / 2

	leadTimeMonths := params.LeadTimeDays / DaysPerMonth
	leadTimeDemand := avgMonthly * leadTimeMonths
	sigmaL := stats.StdDev * math.Sqrt(leadTimeMonths)

	divisor := sigmaL
	if divisor == 0 {
		divisor = 1
	}
	qOverSigma := reorderQty / divisor

	factor := SafetyFactor(qOverSigma, params.ServiceLevel)
	safetyStock := factor * sigmaL

	transit := 0.0
	if item.TransitIncluded {
		transit = leadTimeDemand
	}

	totalTarget := cycleStock + safetyStock + transit
	totalActual := params.CurrentStock
	if totalActual == 0 {
		totalActual = totalTarget
	}
	potential := math.Max(0, totalActual-totalTarget)

	cost := params.UnitCost
	res := domain.ExcelMatchingResult{
		CalculationResult: domain.CalculationResult{
			ID:                    item.ID,
			CycleStock:            cycleStock,
			SafetyStock:           safetyStock,
			TargetSafetyStock:     safetyStock,
			InTransitStock:        transit,
			TotalTargetStock:      totalTarget,
			TotalActualStock:      totalActual,
			SavingsPotential:      potential * cost,
			ServiceLevel:          params.ServiceLevel,
			ReorderPoint:          leadTimeDemand + safetyStock,
			EconomicOrderQuantity: eoq,
			SafetyFactorK:         factor,
			Status:                domain.StatusComputed,
		},
		HistoricYearlyDemand:   historicYearly,
		FutureYearlyDemand:     futureYearly,
		AvgMonthlyDemand:       avgMonthly,
		EOQ:                    eoq,
		FinalReorderQuantity:   reorderQty,
		QOverSigma:             qOverSigma,
		SafetyFactor:           factor,
		CycleStockUnits:        cycleStock,
		SafetyStockUnits:       safetyStock,
		TransitStockUnits:      transit,
		TotalActualStockUnits:  totalActual,
		TotalTargetStockUnits:  totalTarget,
		TotalPotentialUnits:    potential,
		TotalActualStockValue:  totalActual * cost,
		TotalTargetStockValue:  totalTarget * cost,
		TotalPotentialValue:    potential * cost,
		ActualSafetyStockValue: safetyStock * cost,
		TargetSafetyStockValue: safetyStock * cost,
		TargetCycleStockValue:  cycleStock * cost,
	}

	if err := checkFinite(res); err != nil {
		return domain.ExcelMatchingResult{}, err
	}
	return res, nil
}

func checkFinite(r domain.ExcelMatchingResult) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"yearly demand", r.FutureYearlyDemand},
		{"eoq", r.EOQ},
		{"safety stock", r.SafetyStockUnits},
		{"transit stock", r.TransitStockUnits},
		{"total actual stock", r.TotalActualStockUnits},
		{"total target stock", r.TotalTargetStockUnits},
		{"potential value", r.TotalPotentialValue},
		{"actual stock value", r.TotalActualStockValue},
		{"reorder point", r.ReorderPoint},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s is not finite (%v)", f.name, f.value)
		}
	}
	return nil
}
