package policy

import "github.com/andresuchdata/inventory-optimizer/internal/domain"

// turnoverPeriodsPerYear annualizes order quantities for the turnover ratio.
const turnoverPeriodsPerYear = 12

// Summary aggregates a batch of results. Ratios with a zero denominator
// resolve to 0.
func (c *Calculator) Summary(results []domain.CalculationResult) domain.PortfolioSummary {
	return Summarize(results)
}

// Summarize is Summary without a calculator.
func Summarize(results []domain.CalculationResult) domain.PortfolioSummary {
	summary := domain.PortfolioSummary{TotalItems: len(results)}

	var serviceLevelSum, orderVolume float64
	for _, r := range results {
		summary.TotalSavingsPotential += r.SavingsPotential
		summary.TotalTargetStock += r.TotalTargetStock
		summary.TotalActualStock += r.TotalActualStock
		serviceLevelSum += r.ServiceLevel
		orderVolume += r.EconomicOrderQuantity * turnoverPeriodsPerYear
		if r.Defaulted() {
			summary.FailedItems++
		}
	}

	if len(results) > 0 {
		summary.AverageServiceLevel = serviceLevelSum / float64(len(results))
	}
	if summary.TotalActualStock > 0 {
		summary.InventoryTurnover = orderVolume / summary.TotalActualStock
	}

	return summary
}
