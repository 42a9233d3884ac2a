package profile

import (
	"math"
	"strconv"
	"strings"
)

// FieldKind tags how a raw form value is coerced.
type FieldKind string

const (
	KindNumber  FieldKind = "number"
	KindBool    FieldKind = "bool"
	KindOrdinal FieldKind = "ordinal"
	// KindText fields are echoed into the session sticky state only and
	// never reach the model feature set.
	KindText FieldKind = "text"
)

// FieldSpec declares one form field: its coercion kind plus presentation
// metadata the API exposes to clients rendering the form.
type FieldSpec struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Min     float64   `json:"min,omitempty"`
	Max     float64   `json:"max,omitempty"`
	Checked bool      `json:"checked,omitempty"` // Pre-checked default (quick mode dark pattern)
}

// Coerce converts a raw string to the field's typed value. Malformed input
// never fails: it degrades to the zero default and reports usedDefault.
func (f FieldSpec) Coerce(raw string) (value float64, usedDefault bool) {
	switch f.Kind {
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "on", "true", "1", "yes":
			return 1, false
		}
		return 0, raw != "" && raw != "0"

	case KindOrdinal:
		v, used := coerceNumber(raw)
		if used {
			return 0, true
		}
		// Ordinals are clamped to their declared range
		return math.Min(math.Max(v, f.Min), f.Max), false

	case KindNumber:
		return coerceNumber(raw)

	default:
		// Text fields carry no numeric value
		return 0, false
	}
}

func coerceNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true
	}
	return v, false
}

// experienceLevels maps the experience dropdown options to their ordinal.
var experienceLevels = map[string]int{
	"none":         0,
	"basic":        1,
	"intermediate": 2,
	"experienced":  3,
}

// FormFields returns the field schema for a UX mode. The good mode collects
// the minimum needed for risk scoring; the quick mode deliberately
// over-collects (part of the dark-pattern demonstration) but those extra
// fields stay text-kind and never enter the profile.
func FormFields(mode string) []FieldSpec {
	base := []FieldSpec{
		{Name: "age", Label: "Age", Kind: KindNumber, Min: 18, Max: 80},
		{Name: "income", Label: "Monthly net income", Kind: KindNumber, Min: 0},
		{Name: "savings_goal", Label: "Savings goal (short/mid term)", Kind: KindNumber, Min: 0},
		{Name: "horizon_months", Label: "Investment horizon (months)", Kind: KindNumber, Min: 1, Max: 120},
		{Name: "experience_select", Label: "Investing experience", Kind: KindText},
		{Name: "buffer_months", Label: "Financial buffer (months of fixed costs)", Kind: KindNumber, Min: 0, Max: 24},
	}

	if mode == ModeQuick {
		return append(base,
			FieldSpec{Name: "phone", Label: "Phone (for 2FA & updates)", Kind: KindText},
			FieldSpec{Name: "address", Label: "Address (street + nr)", Kind: KindText},
			FieldSpec{Name: "employer", Label: "Employer", Kind: KindText},
			FieldSpec{Name: "iban", Label: "IBAN (for fast payout)", Kind: KindText},
			FieldSpec{Name: "national_id", Label: "National ID (identity check)", Kind: KindText},
			FieldSpec{Name: "social_handle", Label: "Social handle", Kind: KindText},
			FieldSpec{Name: "birth_date", Label: "Birth date", Kind: KindText},
			FieldSpec{Name: "location", Label: "Location (city, country)", Kind: KindText},
			FieldSpec{Name: "contact_sync", Label: "Sync contacts", Kind: KindBool, Checked: true},
			FieldSpec{Name: "payslip_url", Label: "Link to payslip (optional)", Kind: KindText},
			FieldSpec{Name: "marketing_consent", Label: "Receive product updates and tips", Kind: KindBool, Checked: true},
		)
	}

	return append(base,
		FieldSpec{Name: "risk_attitude", Label: "Risk attitude (0=low, 1=mid, 2=high)", Kind: KindOrdinal, Min: 0, Max: 2},
		FieldSpec{Name: "fixed_costs", Label: "Fixed costs per month", Kind: KindNumber, Min: 0},
		FieldSpec{Name: "pension_contrib", Label: "Pension contribution per month", Kind: KindNumber, Min: 0},
		FieldSpec{Name: "tax_estimate", Label: "Tax estimate (% effective rate)", Kind: KindNumber, Min: 0, Max: 60},
		FieldSpec{Name: "debt_amount", Label: "Consumer debt (total)", Kind: KindNumber, Min: 0},
		FieldSpec{Name: "debt_interest", Label: "Debt interest (% per year)", Kind: KindNumber, Min: 0, Max: 40},
		FieldSpec{Name: "mortgage_interest", Label: "Mortgage interest (% per year)", Kind: KindNumber, Min: 0, Max: 20},
		FieldSpec{Name: "cost_sensitivity", Label: "Cost priority (0=none, 1=moderate, 2=high)", Kind: KindOrdinal, Min: 0, Max: 2},
		FieldSpec{Name: "sustainable", Label: "Sustainable investing matters", Kind: KindBool},
		FieldSpec{Name: "data_share_optin", Label: "Share anonymized data for model improvement", Kind: KindBool},
	)
}

// UX modes
const (
	ModeGood  = "good"
	ModeQuick = "quick"
)

// ValidMode reports whether the given mode name is known.
func ValidMode(mode string) bool {
	return mode == ModeGood || mode == ModeQuick
}

// Collect coerces a flat form submission into a UserProfile using the good
// mode schema. Unknown keys are ignored, missing keys default to zero, and
// the horizon is floored at 12 months when non-positive.
func Collect(form map[string]string) UserProfile {
	values := make(map[string]float64)
	for _, spec := range FormFields(ModeGood) {
		v, _ := spec.Coerce(form[spec.Name])
		values[spec.Name] = v
	}

	experience := ExperienceUnset
	if level, ok := experienceLevels[strings.ToLower(strings.TrimSpace(form["experience_select"]))]; ok {
		experience = level
	}

	p := UserProfile{
		Age:              int(values["age"]),
		Income:           values["income"],
		SavingsGoal:      values["savings_goal"],
		HorizonMonths:    int(values["horizon_months"]),
		ExperienceLevel:  experience,
		RiskAttitude:     int(values["risk_attitude"]),
		BufferMonths:     int(values["buffer_months"]),
		FixedCosts:       values["fixed_costs"],
		PensionContrib:   values["pension_contrib"],
		TaxEstimate:      values["tax_estimate"],
		DebtAmount:       values["debt_amount"],
		DebtInterest:     values["debt_interest"],
		MortgageInterest: values["mortgage_interest"],
		CostSensitivity:  int(values["cost_sensitivity"]),
		Sustainable:      values["sustainable"] == 1,
		DataShareOptIn:   values["data_share_optin"] == 1,
	}

	if p.HorizonMonths <= 0 {
		p.HorizonMonths = 12
	}

	return p
}

// StickyFields filters a sticky session echo down to the keys valid for the
// given mode, plus the contribution override which is mode-independent.
func StickyFields(sticky map[string]string, mode string) map[string]string {
	known := make(map[string]bool)
	for _, spec := range FormFields(mode) {
		known[spec.Name] = true
	}

	filtered := make(map[string]string)
	for k, v := range sticky {
		if known[k] || k == "contribution" {
			filtered[k] = v
		}
	}
	return filtered
}
