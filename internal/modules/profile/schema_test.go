package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce_Number(t *testing.T) {
	spec := FieldSpec{Name: "income", Kind: KindNumber}

	v, usedDefault := spec.Coerce("2500.50")
	assert.Equal(t, 2500.50, v)
	assert.False(t, usedDefault)

	v, usedDefault = spec.Coerce("not a number")
	assert.Equal(t, 0.0, v)
	assert.True(t, usedDefault)

	v, usedDefault = spec.Coerce("")
	assert.Equal(t, 0.0, v)
	assert.True(t, usedDefault)

	// NaN and Inf are rejected, not propagated
	_, usedDefault = spec.Coerce("NaN")
	assert.True(t, usedDefault)
	_, usedDefault = spec.Coerce("+Inf")
	assert.True(t, usedDefault)
}

func TestCoerce_Ordinal_Clamped(t *testing.T) {
	spec := FieldSpec{Name: "risk_attitude", Kind: KindOrdinal, Min: 0, Max: 2}

	v, _ := spec.Coerce("99")
	assert.Equal(t, 2.0, v)

	v, _ = spec.Coerce("-5")
	assert.Equal(t, 0.0, v)

	v, _ = spec.Coerce("1")
	assert.Equal(t, 1.0, v)
}

func TestCoerce_Bool(t *testing.T) {
	spec := FieldSpec{Name: "sustainable", Kind: KindBool}

	for _, raw := range []string{"on", "true", "1", "yes", "ON", "Yes"} {
		v, usedDefault := spec.Coerce(raw)
		assert.Equal(t, 1.0, v, "raw=%q", raw)
		assert.False(t, usedDefault, "raw=%q", raw)
	}

	v, _ := spec.Coerce("")
	assert.Equal(t, 0.0, v)
	v, _ = spec.Coerce("off")
	assert.Equal(t, 0.0, v)
}

func TestCollect_Defaults(t *testing.T) {
	p := Collect(map[string]string{})

	assert.Equal(t, 0, p.Age)
	assert.Equal(t, 0.0, p.Income)
	// Missing horizon is floored at a year
	assert.Equal(t, 12, p.HorizonMonths)
	// Missing experience stays unset so the precondition can catch it
	assert.Equal(t, ExperienceUnset, p.ExperienceLevel)
	assert.False(t, p.Sustainable)
}

func TestCollect_FullForm(t *testing.T) {
	p := Collect(map[string]string{
		"age":               "34",
		"income":            "3000",
		"savings_goal":      "15000",
		"horizon_months":    "36",
		"experience_select": "intermediate",
		"risk_attitude":     "1",
		"buffer_months":     "4",
		"fixed_costs":       "1200",
		"pension_contrib":   "100",
		"debt_amount":       "0",
		"sustainable":       "on",
		"data_share_optin":  "1",
	})

	assert.Equal(t, 34, p.Age)
	assert.Equal(t, 3000.0, p.Income)
	assert.Equal(t, 36, p.HorizonMonths)
	assert.Equal(t, 2, p.ExperienceLevel)
	assert.Equal(t, 1, p.RiskAttitude)
	assert.Equal(t, 4, p.BufferMonths)
	assert.True(t, p.Sustainable)
	assert.True(t, p.DataShareOptIn)
}

func TestCollect_UnknownExperienceStaysUnset(t *testing.T) {
	p := Collect(map[string]string{"experience_select": "guru"})
	assert.Equal(t, ExperienceUnset, p.ExperienceLevel)
}

func TestFeatures_MatchesModelSchema(t *testing.T) {
	p := Collect(map[string]string{
		"income":            "3000",
		"experience_select": "basic",
	})
	f := p.Features()

	expected := []string{
		"age", "income", "savings_goal", "horizon_months", "experience_level",
		"risk_attitude", "buffer_months", "fixed_costs", "pension_contrib",
		"tax_estimate", "debt_amount", "debt_interest", "mortgage_interest",
		"cost_sensitivity", "sustainable",
	}
	require.Len(t, f, len(expected))
	for _, key := range expected {
		_, ok := f[key]
		assert.True(t, ok, "missing feature %q", key)
	}

	assert.Equal(t, 3000.0, f["income"])
	assert.Equal(t, 1.0, f["experience_level"])
}

func TestFeatures_UnsetExperienceIsNeutral(t *testing.T) {
	p := UserProfile{ExperienceLevel: ExperienceUnset}
	assert.Equal(t, 0.0, p.Features()["experience_level"])
}

func TestFormFields_QuickModeOvercollects(t *testing.T) {
	good := FormFields(ModeGood)
	quick := FormFields(ModeQuick)

	assert.Greater(t, len(quick), len(good), "quick mode over-collects")

	// The quick mode's extra personal fields never become model features:
	// they are text-kind (or pre-checked consent toggles) only.
	goodNames := make(map[string]bool)
	for _, f := range good {
		goodNames[f.Name] = true
	}
	for _, f := range quick {
		if goodNames[f.Name] {
			continue
		}
		assert.Contains(t, []FieldKind{KindText, KindBool}, f.Kind, "field %s", f.Name)
	}

	// Consent toggles arrive pre-checked in the quick flow only
	var preChecked int
	for _, f := range quick {
		if f.Checked {
			preChecked++
		}
	}
	assert.Equal(t, 2, preChecked)
	for _, f := range good {
		assert.False(t, f.Checked, "field %s", f.Name)
	}
}

func TestStickyFields_FiltersByMode(t *testing.T) {
	sticky := map[string]string{
		"age":          "30",
		"phone":        "0612345678",
		"contribution": "150",
		"garbage":      "x",
	}

	good := StickyFields(sticky, ModeGood)
	assert.Equal(t, "30", good["age"])
	assert.Equal(t, "150", good["contribution"])
	assert.NotContains(t, good, "phone")
	assert.NotContains(t, good, "garbage")

	quick := StickyFields(sticky, ModeQuick)
	assert.Equal(t, "0612345678", quick["phone"])
}

func TestValidMode(t *testing.T) {
	assert.True(t, ValidMode(ModeGood))
	assert.True(t, ValidMode(ModeQuick))
	assert.False(t, ValidMode("evil"))
	assert.False(t, ValidMode(""))
}
