package safetyfactor

import (
	"math"
	"sync"
)

// Grid bounds, in hundredths.
const (
	maxKCents     = 500 // k = 5.00
	maxRatioCents = 300 // q/σ = 3.00

	// kMatchTolerance is how far a rounded k may sit from a grid row and
	// still count as that row.
	kMatchTolerance = 0.005
)

// Table holds E(k) - E(k+q/σ) for k in [0, 5] and q/σ in [0, 3], both at
// 0.01 steps. A Table is never modified after Build returns.
type Table struct {
	ks    []float64   // ascending
	cells [][]float64 // cells[kIdx][ratioIdx]
}

// Build computes a fresh table. Grid points are generated from integer
// hundredths so every key is an exact two-decimal value.
func Build() *Table {
	rows := maxKCents + 1
	cols := maxRatioCents + 1

	t := &Table{
		ks:    make([]float64, rows),
		cells: make([][]float64, rows),
	}

	for i := 0; i < rows; i++ {
		k := float64(i) / 100
		ek := ExpectedShortfall(k)

		values := make([]float64, cols)
		for j := 0; j < cols; j++ {
			ratio := float64(j) / 100
			values[j] = math.Max(0, ek-ExpectedShortfall(k+ratio))
		}

		t.ks[i] = k
		t.cells[i] = values
	}

	return t
}

var defaultTable = sync.OnceValue(Build)

// Default returns the process-wide table, building it on first use.
func Default() *Table {
	return defaultTable()
}

// Rows returns the number of k rows.
func (t *Table) Rows() int { return len(t.ks) }

// Columns returns the number of q/σ columns.
func (t *Table) Columns() int {
	if len(t.cells) == 0 {
		return 0
	}
	return len(t.cells[0])
}

// Lookup returns the tabulated factor for (k, q/σ). k snaps to the matching
// row, or to the nearest row when it lies outside the grid. q/σ is rounded to
// two decimals and a ratio without a column yields 0; there is no
// interpolation.
func (t *Table) Lookup(k, qOverSigma float64) float64 {
	row := t.rowFor(roundCents(k))
	if row < 0 {
		return 0
	}

	col, ok := columnFor(qOverSigma)
	if !ok {
		return 0
	}
	return t.cells[row][col]
}

// rowFor finds the row within kMatchTolerance of k, falling back to the
// nearest row by absolute distance. Equidistant rows resolve to the smaller k.
func (t *Table) rowFor(k float64) int {
	if len(t.ks) == 0 {
		return -1
	}

	idx := int(math.Round(k * 100))
	if idx >= 0 && idx < len(t.ks) && math.Abs(t.ks[idx]-k) < kMatchTolerance {
		return idx
	}

	best := 0
	for i := 1; i < len(t.ks); i++ {
		if math.Abs(t.ks[i]-k) < math.Abs(t.ks[best]-k) {
			best = i
		}
	}
	return best
}

func columnFor(qOverSigma float64) (int, bool) {
	cents := math.Round(qOverSigma * 100)
	if math.IsNaN(cents) || cents < 0 || cents > maxRatioCents {
		return 0, false
	}
	return int(cents), true
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Lookup reads the process-wide table.
func Lookup(k, qOverSigma float64) float64 {
	return Default().Lookup(k, qOverSigma)
}
