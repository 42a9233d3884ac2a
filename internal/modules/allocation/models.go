// Package allocation maps risk assessments to target asset-class weights.
// Two genuinely different policies exist in this domain and are kept as
// distinct named strategies; the orchestration layer selects one explicitly.
package allocation

import "math"

// Asset class names. Order is canonical and shared with the holdings catalog
// and the projection engine's draw order.
const (
	AssetEquity = "equity"
	AssetBonds  = "bonds"
	AssetCash   = "cash"
)

// AssetClasses lists the asset classes in canonical order.
var AssetClasses = []string{AssetEquity, AssetBonds, AssetCash}

// Allocation maps asset-class name to target weight.
// A valid allocation has non-negative weights summing to 1.0.
type Allocation map[string]float64

// Sum returns the total weight.
func (a Allocation) Sum() float64 {
	total := 0.0
	for _, w := range a {
		total += w
	}
	return total
}

// Normalized returns a copy scaled so weights sum to 1.0.
// A degenerate all-zero allocation is returned unchanged.
func (a Allocation) Normalized() Allocation {
	total := a.Sum()
	if total <= 0 {
		return a.Clone()
	}

	out := make(Allocation, len(a))
	for k, w := range a {
		out[k] = w / total
	}
	return out
}

// Clone returns a copy of the allocation.
func (a Allocation) Clone() Allocation {
	out := make(Allocation, len(a))
	for k, w := range a {
		out[k] = w
	}
	return out
}

// Valid reports whether weights are non-negative and sum to 1.0 within tol.
func (a Allocation) Valid(tol float64) bool {
	for _, w := range a {
		if w < 0 {
			return false
		}
	}
	return math.Abs(a.Sum()-1.0) <= tol
}
