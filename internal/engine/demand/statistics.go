// Package demand reduces historical demand series to the statistics the
// policy calculators consume.
package demand

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistics summarises one demand series.
type Statistics struct {
	Average                float64 `json:"averageDemand"`
	StdDev                 float64 `json:"standardDeviation"`
	Total                  float64 `json:"totalDemand"`
	CoefficientOfVariation float64 `json:"demandVariability"`
	Observations           int     `json:"observations"`
}

// Compute filters out negative and non-finite observations and reduces the
// rest. The standard deviation is the population one (divide by N). An empty
// sample yields the zero value.
func Compute(series []float64) Statistics {
	valid := Valid(series)
	if len(valid) == 0 {
		return Statistics{}
	}

	mean, variance := stat.PopMeanVariance(valid, nil)
	stdDev := math.Sqrt(math.Max(0, variance))

	cv := 0.0
	if mean > 0 {
		cv = stdDev / mean
	}

	return Statistics{
		Average:                mean,
		StdDev:                 stdDev,
		Total:                  floats.Sum(valid),
		CoefficientOfVariation: cv,
		Observations:           len(valid),
	}
}

// Valid returns the usable observations of a series: finite and non-negative.
func Valid(series []float64) []float64 {
	valid := make([]float64, 0, len(series))
	for _, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		valid = append(valid, v)
	}
	return valid
}
