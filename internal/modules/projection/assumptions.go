// Package projection simulates portfolio value evolution under monthly
// contributions and stochastic monthly returns.
package projection

import "github.com/aristath/microinvest/internal/modules/allocation"

// Assumptions holds annual return/volatility per asset class plus the total
// annual fee fraction applied as a monthly decay.
type Assumptions struct {
	EquityMean float64 `json:"equity_mean"`
	EquityVol  float64 `json:"equity_vol"`
	BondsMean  float64 `json:"bonds_mean"`
	BondsVol   float64 `json:"bonds_vol"`
	CashMean   float64 `json:"cash_mean"`
	CashVol    float64 `json:"cash_vol"`
	FeeAnnual  float64 `json:"fee_annual"`
}

// Mean returns the annual mean return for an asset class.
func (a Assumptions) Mean(class string) float64 {
	switch class {
	case allocation.AssetEquity:
		return a.EquityMean
	case allocation.AssetBonds:
		return a.BondsMean
	default:
		return a.CashMean
	}
}

// Vol returns the annual volatility for an asset class.
func (a Assumptions) Vol(class string) float64 {
	switch class {
	case allocation.AssetEquity:
		return a.EquityVol
	case allocation.AssetBonds:
		return a.BondsVol
	default:
		return a.CashVol
	}
}

// DefaultAssumptions are the conservative good-flow capital market
// assumptions, parameterized by the blended annual fee of the selection.
func DefaultAssumptions(feeAnnual float64) Assumptions {
	return Assumptions{
		EquityMean: 0.05, EquityVol: 0.15,
		BondsMean: 0.02, BondsVol: 0.05,
		CashMean: 0.01, CashVol: 0.01,
		FeeAnnual: feeAnnual,
	}
}

// RosyAssumptions are the quick-flow assumptions: inflated means, understated
// volatility, and no fee. Part of the dark-pattern demonstration.
func RosyAssumptions() Assumptions {
	return Assumptions{
		EquityMean: 0.09, EquityVol: 0.12,
		BondsMean: 0.03, BondsVol: 0.04,
		CashMean: 0.01, CashVol: 0.005,
		FeeAnnual: 0,
	}
}
