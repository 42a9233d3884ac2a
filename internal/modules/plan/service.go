package plan

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/microinvest/internal/modules/allocation"
	"github.com/aristath/microinvest/internal/modules/holdings"
	"github.com/aristath/microinvest/internal/modules/profile"
	"github.com/aristath/microinvest/internal/modules/projection"
	"github.com/aristath/microinvest/internal/modules/risk"
	"github.com/aristath/microinvest/internal/modules/sessions"
)

// Contribution suggestion parameters.
const (
	MinContribution   = 25   // Currency units, the absolute floor
	RateWithBuffer    = 0.07 // Buffer of >= 3 months
	RateWithoutBuffer = 0.05
	RateWithDebt      = 0.03 // Debt outstanding at a high interest rate
	HighDebtInterest  = 5.0  // Percent per year
)

// Service builds advisory plans. The risk model is process-wide and
// read-only, so one Service is safe for concurrent requests.
type Service struct {
	model         *risk.Model
	policy        allocation.Policy
	selector      *holdings.Selector
	quickSelector *holdings.Selector
	engine        *projection.Engine
	store         sessions.Store
	seed          uint64
	log           zerolog.Logger
}

// NewService creates a plan service. The model may be nil (no artifact
// installed); profile-based planning then fails its precondition check.
// The store may be nil in tests; the opt-in side effect is skipped.
func NewService(
	model *risk.Model,
	policy allocation.Policy,
	engine *projection.Engine,
	store sessions.Store,
	log zerolog.Logger,
) *Service {
	return &Service{
		model:         model,
		policy:        policy,
		selector:      holdings.NewSelector(),
		quickSelector: holdings.NewGatedSelector(),
		engine:        engine,
		store:         store,
		seed:          projection.DefaultSeed,
		log:           log.With().Str("component", "plan_builder").Logger(),
	}
}

// ModelAvailable reports whether a risk model artifact is loaded.
func (s *Service) ModelAvailable() bool {
	return s.model != nil
}

// ModelColumns returns the loaded model's feature schema, or nil.
func (s *Service) ModelColumns() []string {
	if s.model == nil {
		return nil
	}
	return s.model.Columns()
}

// PolicyName returns the active allocation strategy name.
func (s *Service) PolicyName() string {
	return s.policy.Name()
}

// SuggestContribution derives the default monthly contribution from free
// cash flow. Free cash is floored at 0 before any rate is applied, so a
// zero-income profile still yields the minimum contribution.
func SuggestContribution(income, fixedCosts, pension float64, bufferMonths int, debtAmount, debtInterest float64) (suggested, freeCash int, cautions []string) {
	free := math.Max(0, income-fixedCosts-pension)

	rate := RateWithoutBuffer
	if bufferMonths >= 3 {
		rate = RateWithBuffer
	}
	suggested = int(math.Max(MinContribution, math.Round(free*rate)))

	if debtAmount > 0 && debtInterest >= HighDebtInterest {
		suggested = int(math.Max(MinContribution, math.Round(free*RateWithDebt)))
		cautions = append(cautions, "High debt interest: consider paying down (part of) the debt before investing.")
	}

	return suggested, int(math.Round(free)), cautions
}

// BuildPlan produces a full profile-based plan. contributionOverride is used
// when positive; otherwise the suggested contribution applies.
func (s *Service) BuildPlan(sessionID string, p profile.UserProfile, contributionOverride int) (*Result, error) {
	if s.model == nil {
		return nil, ErrModelMissing
	}
	if p.ExperienceLevel < 0 {
		return nil, ErrExperienceUnset
	}

	suggested, freeCash, cautions := SuggestContribution(
		p.Income, p.FixedCosts, p.PensionContrib, p.BufferMonths, p.DebtAmount, p.DebtInterest)

	contribution := suggested
	if contributionOverride > 0 {
		contribution = contributionOverride
	}

	pRisk := s.model.PredictRisk(p.Features())
	level := risk.LevelFromProbability(pRisk)

	alloc := s.policy.Allocate(allocation.Input{
		Probability:   pRisk,
		RiskAttitude:  p.RiskAttitude,
		HorizonMonths: p.HorizonMonths,
		BufferMonths:  p.BufferMonths,
	})

	picks, feeAnnual := s.selector.Select(alloc, p.Sustainable, p.CostSensitivity)
	assumptions := projection.DefaultAssumptions(feeAnnual)

	years := horizonYears(p.HorizonMonths)
	proj := s.engine.Project(float64(contribution), years, alloc, assumptions, s.seed)

	perBucket := make(map[string]int, len(alloc))
	for class, weight := range alloc {
		perBucket[class] = int(math.Round(float64(contribution) * weight))
	}

	result := &Result{
		Score:                 roundScore(pRisk),
		Contribution:          contribution,
		SuggestedContribution: suggested,
		FreeCash:              freeCash,
		Allocation:            alloc,
		MonthlyPerBucket:      perBucket,
		Assumptions:           assumptions,
		Projection:            proj,
		Holdings:              picks,
		Risk: risk.Assessment{
			Probability: roundScore(pRisk),
			Level:       level,
			Badge:       level.Badge(),
			Reasons:     s.explain(p, pRisk),
		},
		Advice: adviceFor(level),
		Flags: Flags{
			Sustainable:     p.Sustainable,
			CostSensitivity: p.CostSensitivity,
			DataShareOptIn:  p.DataShareOptIn,
		},
		Cautions: cautions,
	}

	// Side effect: remember the opt-in choice. Informational only, never
	// transmitted externally, and not worth failing the plan over.
	if s.store != nil && sessionID != "" {
		if err := s.store.SetDataShareOptIn(sessionID, p.DataShareOptIn); err != nil {
			s.log.Warn().Err(err).Str("session", sessionID).Msg("Failed to persist data-share opt-in")
		}
	}

	s.log.Info().
		Float64("risk", result.Score).
		Str("level", string(level)).
		Int("contribution", contribution).
		Str("policy", s.policy.Name()).
		Msg("Plan built")

	return result, nil
}

// BuildQuickPlan is the manipulative quick-flow stub: an aggressive fixed
// allocation, rosy assumptions, no fee, and a fabricated low risk badge.
// Kept as part of the good/bad UX demonstration.
func (s *Service) BuildQuickPlan(income float64, horizonMonths, contributionOverride int) *Result {
	suggested := int(math.Max(MinContribution, math.Round(income*0.10)))
	contribution := suggested
	if contributionOverride > 0 {
		contribution = contributionOverride
	}

	alloc := allocation.Allocation{
		allocation.AssetEquity: 0.80,
		allocation.AssetBonds:  0.15,
		allocation.AssetCash:   0.05,
	}

	// The gated selector with cost sensitivity 0 skips sorting entirely:
	// the user gets the catalog order, not the cheapest instruments.
	picks, _ := s.quickSelector.Select(alloc, false, 0)
	assumptions := projection.RosyAssumptions()

	proj := s.engine.Project(float64(contribution), horizonYears(horizonMonths), alloc, assumptions, s.seed)

	perBucket := make(map[string]int, len(alloc))
	for class, weight := range alloc {
		perBucket[class] = int(math.Round(float64(contribution) * weight))
	}

	return &Result{
		Score:                 0.08,
		Contribution:          contribution,
		SuggestedContribution: suggested,
		Allocation:            alloc,
		MonthlyPerBucket:      perBucket,
		Assumptions:           assumptions,
		Projection:            proj,
		Holdings:              picks,
		Risk: risk.Assessment{
			Probability: 0.08,
			Level:       risk.LevelLow,
			Badge:       risk.LevelLow.Badge(),
		},
	}
}

// explain assembles the human-readable reasons behind the classification
// and allocation.
func (s *Service) explain(p profile.UserProfile, pRisk float64) []string {
	var reasons []string

	if p.DebtAmount > 0 {
		reasons = append(reasons, fmt.Sprintf("Outstanding debt of about %d.", int(p.DebtAmount)))
	}
	if p.DebtAmount > 0 && p.DebtInterest >= HighDebtInterest {
		reasons = append(reasons, "High debt interest: paying it down first lowers your risk.")
	}

	switch risk.LevelFromProbability(pRisk) {
	case risk.LevelHigh:
		reasons = append(reasons, "High risk probability based on your profile, so a more defensive mix.")
	case risk.LevelMedium:
		reasons = append(reasons, "Medium risk probability, so a balanced mix.")
	default:
		reasons = append(reasons, "Low risk probability, so a growth-oriented mix.")
	}

	if p.Sustainable {
		reasons = append(reasons, "Sustainable preference active, so ESG instruments only.")
	}
	if p.CostSensitivity >= 2 {
		reasons = append(reasons, "High cost priority, so the lowest expense ratios are preferred.")
	}

	return reasons
}

// adviceFor selects the single advice line per risk tier.
func adviceFor(level risk.Level) string {
	switch level {
	case risk.LevelHigh:
		return "Limit equity, favor bonds and cash, build up your buffer and pay down debt first."
	case risk.LevelMedium:
		return "Balanced mix: rebalance periodically and keep a buffer of at least 3 to 6 months."
	default:
		return "Growth-oriented mix: stay diversified, watch costs and keep contributing with discipline."
	}
}

// horizonYears converts a month horizon to whole years, rounded and floored
// at one year.
func horizonYears(months int) int {
	years := int(math.Round(float64(months) / 12.0))
	if years < 1 {
		years = 1
	}
	return years
}

func roundScore(p float64) float64 {
	return math.Round(p*1000) / 1000
}
