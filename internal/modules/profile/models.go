// Package profile builds user financial profiles from raw form submissions.
// Coercion is schema-driven: every known field has a declared kind, and
// malformed values degrade to safe defaults instead of failing the request.
package profile

// ExperienceUnset is the sentinel for "experience not chosen yet".
// A profile carrying this value cannot be used to build a full plan.
const ExperienceUnset = -1

// UserProfile holds the coerced financial inputs for one plan request.
// Profiles are rebuilt from form fields on every request and never persisted
// beyond the session's sticky echo of the raw values.
type UserProfile struct {
	Age              int
	Income           float64 // Monthly net income
	SavingsGoal      float64
	HorizonMonths    int     // Always >= 1 (defaults to 12)
	ExperienceLevel  int     // 0..3, or ExperienceUnset
	RiskAttitude     int     // 0..2, used by the ordinal allocation policy
	BufferMonths     int     // Months of fixed costs covered by liquid savings
	FixedCosts       float64 // Monthly
	PensionContrib   float64 // Monthly
	TaxEstimate      float64 // Effective rate, percent
	DebtAmount       float64
	DebtInterest     float64 // Percent per year
	MortgageInterest float64 // Percent per year
	CostSensitivity  int     // 0..2
	Sustainable      bool
	DataShareOptIn   bool
}

// Features exports the model-safe feature set as a flat map keyed by the
// trained column names. Sensitive quick-mode fields never appear here.
func (p UserProfile) Features() map[string]float64 {
	experience := float64(p.ExperienceLevel)
	if p.ExperienceLevel == ExperienceUnset {
		experience = 0
	}

	sustainable := 0.0
	if p.Sustainable {
		sustainable = 1.0
	}

	return map[string]float64{
		"age":               float64(p.Age),
		"income":            p.Income,
		"savings_goal":      p.SavingsGoal,
		"horizon_months":    float64(p.HorizonMonths),
		"experience_level":  experience,
		"risk_attitude":     float64(p.RiskAttitude),
		"buffer_months":     float64(p.BufferMonths),
		"fixed_costs":       p.FixedCosts,
		"pension_contrib":   p.PensionContrib,
		"tax_estimate":      p.TaxEstimate,
		"debt_amount":       p.DebtAmount,
		"debt_interest":     p.DebtInterest,
		"mortgage_interest": p.MortgageInterest,
		"cost_sensitivity":  float64(p.CostSensitivity),
		"sustainable":       sustainable,
	}
}
