// Package plan orchestrates the advisory pipeline end-to-end: risk scoring,
// allocation, instrument selection and the Monte Carlo projection, assembled
// into a single plan result per request.
package plan

import (
	"errors"

	"github.com/aristath/microinvest/internal/modules/allocation"
	"github.com/aristath/microinvest/internal/modules/holdings"
	"github.com/aristath/microinvest/internal/modules/projection"
	"github.com/aristath/microinvest/internal/modules/risk"
)

// PreconditionError is fatal to the current plan-build call. It is surfaced
// verbatim to the user and never retried: resolving it takes operator or
// user action, not another attempt.
type PreconditionError struct {
	msg string
}

func (e *PreconditionError) Error() string { return e.msg }

// The two hard preconditions for profile-based planning.
var (
	ErrModelMissing    = &PreconditionError{msg: "risk model is not available; train and install a model artifact first"}
	ErrExperienceUnset = &PreconditionError{msg: "choose your investing experience before requesting a plan"}
)

// IsPrecondition reports whether err is a precondition failure.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// Flags echoes the preference toggles that shaped the plan.
type Flags struct {
	Sustainable     bool `json:"sustainable"`
	CostSensitivity int  `json:"cost_sensitivity"`
	DataShareOptIn  bool `json:"data_share_optin"`
}

// Result is the complete advisory plan for one request. Computed
// synchronously and discarded after rendering; only the contribution amount
// survives in the session for a later enroll step.
type Result struct {
	Score                 float64                       `json:"score"`
	Contribution          int                           `json:"contribution"`
	SuggestedContribution int                           `json:"suggested_contribution"`
	FreeCash              int                           `json:"free_cash"`
	Allocation            allocation.Allocation         `json:"allocation"`
	MonthlyPerBucket      map[string]int                `json:"monthly_per_bucket"`
	Assumptions           projection.Assumptions        `json:"assumptions"`
	Projection            projection.Result             `json:"projection"`
	Holdings              map[string][]holdings.Holding `json:"holdings"`
	Risk                  risk.Assessment               `json:"risk"`
	Advice                string                        `json:"advice"`
	Flags                 Flags                         `json:"flags"`
	Cautions              []string                      `json:"cautions"`
}
