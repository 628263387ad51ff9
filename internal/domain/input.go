package domain

// Defaults applied when an item leaves an optional parameter empty.
const (
	DefaultUnitCost        = 10.0
	DefaultLeadTimeDays    = 30.0
	DefaultServiceLevel    = 0.95
	DefaultOrderCost       = 100.0
	DefaultHoldingCostRate = 0.25
)

// InputItem is one SKU/location row of an uploaded dataset.
type InputItem struct {
	ID                    string    `json:"id" msgpack:"id"`
	Description           string    `json:"description" msgpack:"description"`
	Product               string    `json:"product" msgpack:"product"`
	Warehouse             string    `json:"warehouse" msgpack:"warehouse"`
	Category1             string    `json:"category1,omitempty" msgpack:"category1"`
	Category2             string    `json:"category2,omitempty" msgpack:"category2"`
	Category3             string    `json:"category3,omitempty" msgpack:"category3"`
	ReplenishmentStrategy string    `json:"replenishmentStrategy" msgpack:"replenishment_strategy"`
	TransitIncluded       bool      `json:"transitIncluded" msgpack:"transit_included"`
	DemandData            []float64 `json:"demandData" msgpack:"demand_data"`
	HistoricInventory     []float64 `json:"historicInventory,omitempty" msgpack:"historic_inventory"`

	UnitCost        *float64 `json:"unitCost,omitempty" msgpack:"unit_cost"`
	LeadTime        *float64 `json:"leadTime,omitempty" msgpack:"lead_time"` // days
	ServiceLevel    *float64 `json:"serviceLevel,omitempty" msgpack:"service_level"`
	OrderCost       *float64 `json:"orderCost,omitempty" msgpack:"order_cost"`
	HoldingCostRate *float64 `json:"holdingCostRate,omitempty" msgpack:"holding_cost_rate"`
	OrderQuantity   *float64 `json:"orderQuantity,omitempty" msgpack:"order_quantity"`
	CurrentStock    *float64 `json:"currentStock,omitempty" msgpack:"current_stock"`
}

// ItemParameters are the cost and operations parameters of an item after
// defaults have been applied.
type ItemParameters struct {
	UnitCost        float64
	LeadTimeDays    float64
	ServiceLevel    float64
	OrderCost       float64
	HoldingCostRate float64
	// OrderQuantity and CurrentStock are zero when the item does not supply
	// them; callers substitute EOQ and the computed actual stock.
	OrderQuantity float64
	CurrentStock  float64
}

// Parameters resolves the item's optional parameters. An explicit zero is
// treated the same as a missing value.
func (i InputItem) Parameters() ItemParameters {
	return ItemParameters{
		UnitCost:        valueOr(i.UnitCost, DefaultUnitCost),
		LeadTimeDays:    valueOr(i.LeadTime, DefaultLeadTimeDays),
		ServiceLevel:    valueOr(i.ServiceLevel, DefaultServiceLevel),
		OrderCost:       valueOr(i.OrderCost, DefaultOrderCost),
		HoldingCostRate: valueOr(i.HoldingCostRate, DefaultHoldingCostRate),
		OrderQuantity:   valueOr(i.OrderQuantity, 0),
		CurrentStock:    valueOr(i.CurrentStock, 0),
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil || *v == 0 {
		return def
	}
	return *v
}

// Float returns a pointer to v, for filling optional item parameters.
func Float(v float64) *float64 {
	return &v
}
