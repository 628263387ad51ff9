package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputItem_ParametersDefaults(t *testing.T) {
	got := InputItem{ID: "A"}.Parameters()

	assert.Equal(t, ItemParameters{
		UnitCost:        DefaultUnitCost,
		LeadTimeDays:    DefaultLeadTimeDays,
		ServiceLevel:    DefaultServiceLevel,
		OrderCost:       100,
		HoldingCostRate: DefaultHoldingCostRate,
	}, got)
	assert.Zero(t, got.CurrentStock)
}

func TestInputItem_ParametersZeroIsMissing(t *testing.T) {
	got := InputItem{OrderCost: Float(0), CurrentStock: Float(0), UnitCost: Float(4)}.Parameters()

	assert.Equal(t, DefaultOrderCost, got.OrderCost)
	assert.Zero(t, got.CurrentStock)
	assert.Equal(t, 4.0, got.UnitCost)
}
