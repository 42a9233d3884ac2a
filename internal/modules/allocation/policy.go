package allocation

import (
	"github.com/aristath/microinvest/internal/modules/risk"
)

// MinEquityWeight is the floor applied to equity during defensive shifts.
// No variant is allowed to reach zero equity.
const MinEquityWeight = 0.10

// Input carries everything either policy may consult. Policies are pure
// functions of this input.
type Input struct {
	Probability   float64 // Calibrated risk-of-harm probability in [0,1]
	RiskAttitude  int     // Self-reported ordinal 0..2
	HorizonMonths int
	BufferMonths  int
}

// Policy is a named allocation strategy.
type Policy interface {
	Name() string
	Allocate(in Input) Allocation
}

// ProbabilityPolicy is the default strategy: the modeled probability is a
// risk-of-harm estimate, so a higher probability yields a *more defensive*
// allocation.
type ProbabilityPolicy struct{}

func (ProbabilityPolicy) Name() string { return "probability" }

func (ProbabilityPolicy) Allocate(in Input) Allocation {
	switch {
	case in.Probability < risk.ThresholdMedium:
		return Allocation{AssetEquity: 0.70, AssetBonds: 0.25, AssetCash: 0.05}
	case in.Probability < risk.ThresholdHigh:
		return Allocation{AssetEquity: 0.55, AssetBonds: 0.35, AssetCash: 0.10}
	default:
		return Allocation{AssetEquity: 0.30, AssetBonds: 0.55, AssetCash: 0.15}
	}
}

// OrdinalPolicy is the legacy/alternate strategy based on self-reported risk
// attitude. Direction is the opposite of ProbabilityPolicy: a higher
// attitude/horizon/buffer score earns *more* equity. The two are never
// merged; callers pick one explicitly.
type OrdinalPolicy struct{}

func (OrdinalPolicy) Name() string { return "ordinal" }

// Score bonuses and thresholds for the ordinal strategy.
const (
	longHorizonMonths  = 84 // >= 7 years earns a bonus point
	largeBufferMonths  = 6
	shortHorizonMonths = 36 // < 3 years triggers a defensive shift
	smallBufferMonths  = 3
)

func (OrdinalPolicy) Allocate(in Input) Allocation {
	score := in.RiskAttitude
	if in.HorizonMonths >= longHorizonMonths {
		score++
	}
	if in.BufferMonths >= largeBufferMonths {
		score++
	}
	if score < 0 {
		score = 0
	}
	if score > 3 {
		score = 3
	}

	var alloc Allocation
	switch {
	case score <= 1:
		alloc = Allocation{AssetEquity: 0.30, AssetBonds: 0.55, AssetCash: 0.15}
	case score == 2:
		alloc = Allocation{AssetEquity: 0.55, AssetBonds: 0.35, AssetCash: 0.10}
	default:
		alloc = Allocation{AssetEquity: 0.70, AssetBonds: 0.25, AssetCash: 0.05}
	}

	if in.HorizonMonths < shortHorizonMonths {
		alloc = shiftFromEquity(alloc, 0.10, 0.70, 0.30)
	}
	if in.BufferMonths < smallBufferMonths {
		alloc = shiftFromEquity(alloc, 0.05, 0.60, 0.40)
	}

	return alloc.Normalized()
}

// shiftFromEquity moves weight from equity into bonds/cash at the given
// split, without letting equity fall below MinEquityWeight.
func shiftFromEquity(alloc Allocation, shift, bondsShare, cashShare float64) Allocation {
	out := alloc.Clone()

	available := out[AssetEquity] - MinEquityWeight
	if available <= 0 {
		return out
	}
	if shift > available {
		shift = available
	}

	out[AssetEquity] -= shift
	out[AssetBonds] += shift * bondsShare
	out[AssetCash] += shift * cashShare
	return out
}
