package safetyfactor

import "math"

// Abramowitz and Stegun 7.1.26 coefficients.
const (
	asA1 = 0.254829592
	asA2 = -0.284496736
	asA3 = 1.421413741
	asA4 = -1.453152027
	asA5 = 1.061405429
	asP  = 0.3275911
)

// NormalPDF is the standard normal density.
func NormalPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// NormalCDF approximates the standard normal distribution function with the
// Abramowitz and Stegun polynomial (max abs error about 1.5e-7).
func NormalCDF(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x) / math.Sqrt2

	t := 1.0 / (1.0 + asP*x)
	y := 1.0 - (((((asA5*t+asA4)*t)+asA3)*t+asA2)*t+asA1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}

// ExpectedShortfall is the standard normal loss function E(x) = φ(x) - x(1-Φ(x)).
func ExpectedShortfall(x float64) float64 {
	return NormalPDF(x) - x*(1-NormalCDF(x))
}

// OptimalK returns the safety factor k for a target service level by
// bisection on [0, 4]. Service levels at or below 50% get no safety factor.
func OptimalK(serviceLevel float64) float64 {
	if serviceLevel >= 0.9999 {
		return 4.0
	}
	if serviceLevel <= 0.5 {
		return 0.0
	}

	low, high := 0.0, 4.0
	const tolerance = 0.001

	for high-low > tolerance {
		mid := (low + high) / 2
		if NormalCDF(mid) < serviceLevel {
			low = mid
		} else {
			high = mid
		}
	}

	return (low + high) / 2
}
