// Package policy is the general inventory policy engine: EOQ, cycle stock,
// safety stock from the loss-function table, reorder point and savings.
package policy

import (
	"fmt"
	"math"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/engine/demand"
	"github.com/andresuchdata/inventory-optimizer/internal/engine/safetyfactor"
	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

// TargetServiceLevel is the service level the target safety stock is sized
// for, independent of the item's own level.
const TargetServiceLevel = 0.95

// Calculator computes policy parameters for input items under one configuration.
type Calculator struct {
	config domain.CalculationConfig
	table  *safetyfactor.Table
}

// NewCalculator creates a calculator. A nil table selects the shared
// process-wide safety factor table.
func NewCalculator(cfg domain.CalculationConfig, table *safetyfactor.Table) *Calculator {
	if table == nil {
		table = safetyfactor.Default()
	}
	return &Calculator{
		config: cfg,
		table:  table,
	}
}

// SafetyStock is the outcome of a safety stock computation.
type SafetyStock struct {
	Units float64
	K     float64
}

// EOQ is the economic order quantity sqrt(2·D·S / (c·h)). Any non-positive
// input yields 0.
func (c *Calculator) EOQ(annualDemand, orderCost, holdingCostRate, unitCost float64) float64 {
	if annualDemand <= 0 || orderCost <= 0 || holdingCostRate <= 0 || unitCost <= 0 {
		return 0
	}

	holdingCost := unitCost * holdingCostRate
	return math.Sqrt((2 * annualDemand * orderCost) / holdingCost)
}

// SafetyStock sizes the safety stock for a service level.
//
// The lead time is applied in the period unit of the demand series (days
// against a monthly series when the sheet is monthly). That coupling is
// inherited from the workbook this engine was validated against and is kept
// on purpose; see DESIGN.md.
func (c *Calculator) SafetyStock(stats demand.Statistics, leadTime, serviceLevel, orderQuantity float64) SafetyStock {
	if stats.StdDev == 0 || leadTime <= 0 {
		return SafetyStock{}
	}

	leadTimeStdDev := stats.StdDev * math.Sqrt(leadTime)
	k := safetyfactor.OptimalK(serviceLevel)
	qOverSigma := orderQuantity / leadTimeStdDev

	factor := c.table.Lookup(k, qOverSigma)

	return SafetyStock{
		Units: factor * leadTimeStdDev,
		K:     k,
	}
}

// Calculate computes one item. A faulting item never propagates: it comes
// back as a defaulted, all-zero result carrying its id.
func (c *Calculator) Calculate(item domain.InputItem) (result domain.CalculationResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			logger.Log.Warn().Str("item", item.ID).Err(err).Msg("policy: item calculation faulted")
			result = domain.DefaultedResult(item.ID, err)
		}
	}()

	res, err := c.calculate(item)
	if err != nil {
		logger.Log.Warn().Str("item", item.ID).Err(err).Msg("policy: item calculation faulted")
		return domain.DefaultedResult(item.ID, err)
	}
	return res
}

// CalculateAll computes every item in input order.
func (c *Calculator) CalculateAll(items []domain.InputItem) []domain.CalculationResult {
	results := make([]domain.CalculationResult, 0, len(items))
	for _, item := range items {
		results = append(results, c.Calculate(item))
	}
	return results
}

func (c *Calculator) calculate(item domain.InputItem) (domain.CalculationResult, error) {
	stats := demand.Compute(item.DemandData)
	params := item.Parameters()

	annualDemand := stats.Average * c.config.ForecastingPeriod.PeriodsPerYear()
	orderQuantity := c.orderQuantity(annualDemand, params)

	cycleStock := orderQuantity / 2

	actual := c.SafetyStock(stats, params.LeadTimeDays, params.ServiceLevel, orderQuantity)
	target := c.SafetyStock(stats, params.LeadTimeDays, TargetServiceLevel, orderQuantity)

	inTransit := 0.0
	if item.TransitIncluded && params.LeadTimeDays > 0 {
		inTransit = stats.Average * params.LeadTimeDays
	}

	reorderPoint := stats.Average*params.LeadTimeDays + actual.Units

	totalTarget := cycleStock + target.Units + inTransit
	totalActual := cycleStock + actual.Units + inTransit

	currentStock := params.CurrentStock
	if currentStock == 0 {
		currentStock = totalActual
	}
	savings := math.Max(0, (currentStock-totalTarget)*params.UnitCost)

	result := domain.CalculationResult{
		ID:                    item.ID,
		CycleStock:            cycleStock,
		SafetyStock:           actual.Units,
		TargetSafetyStock:     target.Units,
		InTransitStock:        inTransit,
		TotalTargetStock:      totalTarget,
		TotalActualStock:      totalActual,
		SavingsPotential:      savings,
		ServiceLevel:          params.ServiceLevel,
		ReorderPoint:          reorderPoint,
		EconomicOrderQuantity: orderQuantity,
		SafetyFactorK:         actual.K,
		Status:                domain.StatusComputed,
	}

	if err := checkFinite(result); err != nil {
		return domain.CalculationResult{}, err
	}
	return result, nil
}

// orderQuantity resolves Q from EOQ or, for the direct input approach, from
// the item, falling back to EOQ when the item supplies none.
func (c *Calculator) orderQuantity(annualDemand float64, params domain.ItemParameters) float64 {
	if c.config.ReorderQuantityApproach == domain.ApproachDirectInput && params.OrderQuantity != 0 {
		return params.OrderQuantity
	}
	return c.EOQ(annualDemand, params.OrderCost, params.HoldingCostRate, params.UnitCost)
}

func checkFinite(r domain.CalculationResult) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"cycle stock", r.CycleStock},
		{"safety stock", r.SafetyStock},
		{"target safety stock", r.TargetSafetyStock},
		{"in-transit stock", r.InTransitStock},
		{"total target stock", r.TotalTargetStock},
		{"total actual stock", r.TotalActualStock},
		{"savings potential", r.SavingsPotential},
		{"service level", r.ServiceLevel},
		{"reorder point", r.ReorderPoint},
		{"order quantity", r.EconomicOrderQuantity},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s is not finite (%v)", f.name, f.value)
		}
	}
	return nil
}
