package domain

// ResultStatus tells a computed result apart from a placeholder produced after
// the item's calculation faulted.
type ResultStatus string

const (
	StatusComputed  ResultStatus = "computed"
	StatusDefaulted ResultStatus = "defaulted"
)

// CalculationResult is the per-item output of a policy calculation.
type CalculationResult struct {
	ID                    string       `json:"id" db:"item_id"`
	CycleStock            float64      `json:"cycleStock" db:"cycle_stock"`
	SafetyStock           float64      `json:"safetyStock" db:"safety_stock"`
	TargetSafetyStock     float64      `json:"targetSafetyStock" db:"target_safety_stock"`
	InTransitStock        float64      `json:"inTransitStock" db:"in_transit_stock"`
	TotalTargetStock      float64      `json:"totalTargetStock" db:"total_target_stock"`
	TotalActualStock      float64      `json:"totalActualStock" db:"total_actual_stock"`
	SavingsPotential      float64      `json:"savingsPotential" db:"savings_potential"`
	ServiceLevel          float64      `json:"serviceLevel" db:"service_level"`
	ReorderPoint          float64      `json:"reorderPoint" db:"reorder_point"`
	EconomicOrderQuantity float64      `json:"economicOrderQuantity" db:"economic_order_quantity"`
	SafetyFactorK         float64      `json:"safetyFactorK" db:"safety_factor_k"`
	Status                ResultStatus `json:"status" db:"status"`
	Failure               string       `json:"failure,omitempty" db:"failure"`
}

// Defaulted reports whether the result is a placeholder for a faulted item.
func (r CalculationResult) Defaulted() bool {
	return r.Status == StatusDefaulted
}

// DefaultedResult is the all-zero placeholder emitted for an item whose
// calculation failed.
func DefaultedResult(id string, cause error) CalculationResult {
	r := CalculationResult{ID: id, Status: StatusDefaulted}
	if cause != nil {
		r.Failure = cause.Error()
	}
	return r
}

// ExcelMatchingResult extends CalculationResult with the unit and currency
// breakdown reported by the legacy planning workbook.
type ExcelMatchingResult struct {
	CalculationResult

	HistoricYearlyDemand   float64 `json:"historicYearlyDemand"`
	FutureYearlyDemand     float64 `json:"futureYearlyDemand"`
	AvgMonthlyDemand       float64 `json:"avgMonthlyDemand"`
	EOQ                    float64 `json:"eoq"`
	FinalReorderQuantity   float64 `json:"finalReorderQuantity"`
	QOverSigma             float64 `json:"qOverSigma"`
	SafetyFactor           float64 `json:"safetyFactor"`
	CycleStockUnits        float64 `json:"cycleStockUnits"`
	SafetyStockUnits       float64 `json:"safetyStockUnits"`
	TransitStockUnits      float64 `json:"transitStockUnits"`
	TotalActualStockUnits  float64 `json:"totalActualStockUnits"`
	TotalTargetStockUnits  float64 `json:"totalTargetStockUnits"`
	TotalPotentialUnits    float64 `json:"totalPotentialUnits"`
	TotalActualStockValue  float64 `json:"totalActualStockEUR"`
	TotalTargetStockValue  float64 `json:"totalTargetStockEUR"`
	TotalPotentialValue    float64 `json:"totalPotentialEUR"`
	ActualSafetyStockValue float64 `json:"actualSafetyStockEUR"`
	TargetSafetyStockValue float64 `json:"targetSafetyStockEUR"`
	TargetCycleStockValue  float64 `json:"targetCycleStockEUR"`
}

// DefaultedExcelMatchingResult is the placeholder for a faulted item.
func DefaultedExcelMatchingResult(id string, cause error) ExcelMatchingResult {
	return ExcelMatchingResult{CalculationResult: DefaultedResult(id, cause)}
}

// PortfolioSummary aggregates a batch of general-engine results.
type PortfolioSummary struct {
	TotalItems            int     `json:"totalItems"`
	FailedItems           int     `json:"failedItems"`
	TotalSavingsPotential float64 `json:"totalSavingsPotential"`
	AverageServiceLevel   float64 `json:"averageServiceLevel"`
	TotalTargetStock      float64 `json:"totalTargetStock"`
	TotalActualStock      float64 `json:"totalActualStock"`
	InventoryTurnover     float64 `json:"inventoryTurnover"`
}

// UnitsAndValue is a rounded quantity expressed in units and in currency.
type UnitsAndValue struct {
	Units int64 `json:"units"`
	Value int64 `json:"eur"`
}

// PotentialTotals adds the share of the actual inventory value that could be released.
type PotentialTotals struct {
	UnitsAndValue
	Percentage int64 `json:"percentage"`
}

// ExcelSummary mirrors the summary block of the legacy planning workbook.
type ExcelSummary struct {
	TotalItems           int             `json:"totalItems"`
	FailedItems          int             `json:"failedItems"`
	Currency             string          `json:"currency"`
	YearlyDemand         UnitsAndValue   `json:"yearlyDemand"`
	ActualTotalInventory UnitsAndValue   `json:"actualTotalInventory"`
	TargetTotalInventory UnitsAndValue   `json:"targetTotalInventory"`
	TotalPotential       PotentialTotals `json:"totalPotential"`
	ActualSafetyStock    UnitsAndValue   `json:"actualSafetyStock"`
	TargetSafetyStock    UnitsAndValue   `json:"targetSafetyStock"`
	TargetCycleStock     UnitsAndValue   `json:"targetCycleStock"`
}

// UnknownWarehouse is the group used for items without a warehouse tag.
const UnknownWarehouse = "Unknown"

// WarehouseSummary aggregates the results of one warehouse.
type WarehouseSummary struct {
	Warehouse              string  `json:"warehouse"`
	TotalItems             int     `json:"totalItems"`
	TotalActualStock       float64 `json:"totalActualStock"`
	TotalTargetStock       float64 `json:"totalTargetStock"`
	TotalSavingsPotential  float64 `json:"totalSavingsPotential"`
	AverageServiceLevel    float64 `json:"averageServiceLevel"`
	TotalSafetyStock       float64 `json:"actualSafetyStock"`
	TotalTargetSafetyStock float64 `json:"targetSafetyStock"`
}
