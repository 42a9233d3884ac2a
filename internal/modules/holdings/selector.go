package holdings

import (
	"sort"

	"github.com/aristath/microinvest/internal/modules/allocation"
)

// PlatformFee is the fixed annual platform fee fraction (5 basis points),
// charged on top of the blended instrument fees.
const PlatformFee = 0.0005

// DefaultMaxPerBucket caps how many instruments are chosen per asset class.
const DefaultMaxPerBucket = 2

// Selector picks concrete instruments per asset bucket and computes the
// blended annual fee of the selection.
type Selector struct {
	maxPerBucket int

	// alwaysSort is the canonical behavior: candidates are ordered by
	// (expense ratio asc, name asc) regardless of the user's cost
	// sensitivity. The gated variant only sorts at sensitivity >= 1 and is
	// kept for the quick flow.
	alwaysSort bool
}

// NewSelector creates the canonical selector (sorting always applied).
func NewSelector() *Selector {
	return &Selector{maxPerBucket: DefaultMaxPerBucket, alwaysSort: true}
}

// NewGatedSelector creates the alternate selector that only sorts when cost
// sensitivity is at least 1.
func NewGatedSelector() *Selector {
	return &Selector{maxPerBucket: DefaultMaxPerBucket, alwaysSort: false}
}

// Select chooses up to maxPerBucket instruments per asset class and returns
// the per-bucket picks plus the blended annual fee fraction.
//
// With sustainable set, candidates are filtered to ESG-flagged instruments
// within each bucket; a bucket with zero ESG candidates simply gets no
// holdings, there is no fallback to the full universe.
func (s *Selector) Select(alloc allocation.Allocation, sustainable bool, costSensitivity int) (map[string][]Holding, float64) {
	picks := make(map[string][]Holding, len(allocation.AssetClasses))
	blendedFee := 0.0

	for _, bucket := range allocation.AssetClasses {
		candidates := Bucket(bucket)

		if sustainable {
			esgOnly := candidates[:0]
			for _, h := range candidates {
				if h.ESG {
					esgOnly = append(esgOnly, h)
				}
			}
			candidates = esgOnly
		}

		if s.alwaysSort || costSensitivity >= 1 {
			sort.Slice(candidates, func(i, j int) bool {
				if candidates[i].ExpenseRatio != candidates[j].ExpenseRatio {
					return candidates[i].ExpenseRatio < candidates[j].ExpenseRatio
				}
				return candidates[i].Name < candidates[j].Name
			})
		}

		if len(candidates) > s.maxPerBucket {
			candidates = candidates[:s.maxPerBucket]
		}
		picks[bucket] = candidates

		if len(candidates) > 0 {
			sumER := 0.0
			for _, h := range candidates {
				sumER += h.ExpenseRatio
			}
			avgER := sumER / float64(len(candidates))
			// Expense ratio is in percent; fee contributions are fractions
			blendedFee += alloc[bucket] * (avgER / 100.0)
		}
	}

	return picks, blendedFee + PlatformFee
}
