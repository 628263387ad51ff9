package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ForecastingPeriod is the period length of one demand observation.
type ForecastingPeriod string

const (
	PeriodDaily   ForecastingPeriod = "daily"
	PeriodWeekly  ForecastingPeriod = "weekly"
	PeriodMonthly ForecastingPeriod = "monthly"
)

// PeriodsPerYear returns the annualization multiplier. Matching is exact, so
// unrecognised periods (including differently cased ones) are treated as daily.
func (p ForecastingPeriod) PeriodsPerYear() float64 {
	switch p {
	case PeriodMonthly:
		return 12
	case PeriodWeekly:
		return 52
	default:
		return 365
	}
}

// ReorderQuantityApproach selects how the order quantity of an item is resolved.
type ReorderQuantityApproach string

const (
	ApproachEOQ         ReorderQuantityApproach = "EOQ"
	ApproachDirectInput ReorderQuantityApproach = "Direct input"
)

// CalculationConfig is the user-facing configuration of a calculation. Only
// ForecastingPeriod and ReorderQuantityApproach affect the numbers, the rest is
// carried through for display.
type CalculationConfig struct {
	VolumeUnits             string                  `json:"volumeUnits" msgpack:"volume_units"`
	Currency                string                  `json:"currency" msgpack:"currency"`
	OtherMeasure            string                  `json:"otherMeasure" msgpack:"other_measure"`
	InputTimeUnit           string                  `json:"inputTimeUnit" msgpack:"input_time_unit"`
	ForecastingPeriod       ForecastingPeriod       `json:"forecastingPeriod" msgpack:"forecasting_period"`
	ReorderQuantityApproach ReorderQuantityApproach `json:"reorderQuantityApproach" msgpack:"reorder_quantity_approach"`
}

// DefaultCalculationConfig returns the configuration used before a user sets one.
func DefaultCalculationConfig() CalculationConfig {
	return CalculationConfig{
		VolumeUnits:             "unit",
		Currency:                "EUR",
		OtherMeasure:            "kg",
		InputTimeUnit:           "day",
		ForecastingPeriod:       PeriodMonthly,
		ReorderQuantityApproach: ApproachEOQ,
	}
}

var ErrInvalidConfig = errors.New("invalid calculation configuration")

// Validate checks the fields a posted configuration must carry.
func (c CalculationConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.VolumeUnits) == "" {
		missing = append(missing, "volumeUnits")
	}
	if strings.TrimSpace(c.Currency) == "" {
		missing = append(missing, "currency")
	}
	if strings.TrimSpace(c.InputTimeUnit) == "" {
		missing = append(missing, "inputTimeUnit")
	}
	if strings.TrimSpace(string(c.ForecastingPeriod)) == "" {
		missing = append(missing, "forecastingPeriod")
	}
	if strings.TrimSpace(string(c.ReorderQuantityApproach)) == "" {
		missing = append(missing, "reorderQuantityApproach")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}

	switch c.ReorderQuantityApproach {
	case ApproachEOQ, ApproachDirectInput:
	default:
		return fmt.Errorf("%w: invalid reorder quantity approach %q", ErrInvalidConfig, c.ReorderQuantityApproach)
	}
	return nil
}
