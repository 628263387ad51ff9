package demand

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		series   []float64
		expected Statistics
	}{
		{
			name:     "empty series",
			series:   nil,
			expected: Statistics{},
		},
		{
			name:   "constant demand",
			series: []float64{100, 100, 100, 100},
			expected: Statistics{
				Average:      100,
				StdDev:       0,
				Total:        400,
				Observations: 4,
			},
		},
		{
			name:   "population standard deviation",
			series: []float64{2, 4, 4, 4, 5, 5, 7, 9},
			expected: Statistics{
				Average:                5,
				StdDev:                 2,
				Total:                  40,
				CoefficientOfVariation: 0.4,
				Observations:           8,
			},
		},
		{
			name:     "all zero",
			series:   []float64{0, 0, 0},
			expected: Statistics{Observations: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.series)
			assert.InDelta(t, tt.expected.Average, got.Average, 1e-9)
			assert.InDelta(t, tt.expected.StdDev, got.StdDev, 1e-9)
			assert.InDelta(t, tt.expected.Total, got.Total, 1e-9)
			assert.InDelta(t, tt.expected.CoefficientOfVariation, got.CoefficientOfVariation, 1e-9)
			assert.Equal(t, tt.expected.Observations, got.Observations)
		})
	}
}

func TestCompute_ExcludesInvalidObservations(t *testing.T) {
	got := Compute([]float64{10, math.NaN(), -5, 20, math.Inf(1)})

	// Invalid entries are dropped from the sample, not counted as zero.
	assert.Equal(t, 2, got.Observations)
	assert.InDelta(t, 15, got.Average, 1e-9)
	assert.InDelta(t, 30, got.Total, 1e-9)
	assert.InDelta(t, 5, got.StdDev, 1e-9)
}

func TestCompute_OnlyInvalidObservations(t *testing.T) {
	assert.Equal(t, Statistics{}, Compute([]float64{-1, math.NaN()}))
}

func TestCompute_MeanMatchesArithmeticMean(t *testing.T) {
	series := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8}
	sum := 0.0
	for _, v := range series {
		sum += v
	}

	got := Compute(series)
	assert.InDelta(t, sum/float64(len(series)), got.Average, 1e-12)
	assert.GreaterOrEqual(t, got.StdDev, 0.0)
}

func TestValid_DoesNotMutateInput(t *testing.T) {
	series := []float64{1, -1, 2}
	_ = Valid(series)
	assert.Equal(t, []float64{1, -1, 2}, series)
}
