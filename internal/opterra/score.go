package opterra

import (
	"encoding/json"
	"math"
)

// StatusTier buckets a health score.
type StatusTier string

const (
	TierNormal   StatusTier = "NORMAL"
	TierElevated StatusTier = "ELEVATED"
	TierHigh     StatusTier = "HIGH"
	TierCritical StatusTier = "CRITICAL"
)

// Failure causes for the definite (non-probabilistic) path.
const (
	CauseTankBodyLeak = "TANK_BODY_LEAK"
)

// FailureProbability is a tagged value: either a definite end-of-life
// condition (an active tank-body leak bypasses the curve entirely) or a
// probabilistic percentage in [0, 100). It marshals as the string "FAIL" or
// a number, keeping the documented wire shape.
type FailureProbability struct {
	Definite bool    `json:"-"`
	Cause    string  `json:"-"`
	Percent  float64 `json:"-"`
}

// failSentinel is the wire encoding of a definite failure.
const failSentinel = "FAIL"

func (p FailureProbability) MarshalJSON() ([]byte, error) {
	if p.Definite {
		return json.Marshal(failSentinel)
	}
	return json.Marshal(round1(p.Percent))
}

func (p *FailureProbability) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == failSentinel {
			*p = FailureProbability{Definite: true}
		}
		return nil
	}
	var pct float64
	if err := json.Unmarshal(b, &pct); err != nil {
		return err
	}
	*p = FailureProbability{Percent: pct}
	return nil
}

// Metrics is the engine output for one scoring call. Health score and failure
// probability are two views of the same curve: the score is derived from the
// probability and from nothing else.
type Metrics struct {
	Unit             FuelCategory       `json:"unit"`
	CalendarAgeYears float64            `json:"calendar_age_years"`
	BiologicalAge    float64            `json:"biological_age_years"`
	AgingRate        float64            `json:"aging_rate"`
	Factors          StressFactors      `json:"factors"`
	FailureProb      FailureProbability `json:"failure_probability"`
	HealthScore      int                `json:"health_score"`
	Status           StatusTier         `json:"status"`

	// Maintenance-due indicators, nil when the underlying history is unknown
	// or the indicator does not apply to the unit category.
	FlushDueMonths       *int `json:"flush_due_months,omitempty"`
	AnodeDepletionMonths *int `json:"anode_depletion_months,omitempty"`
}

// Score runs the full pipeline: validate, compute stress factors, project
// biological age, map to failure probability, derive score and tier. It is
// deterministic and side-effect free; concurrent calls share nothing.
func Score(cfg Config, in InspectionInput) (Metrics, error) {
	if err := in.Validate(); err != nil {
		return Metrics{}, err
	}

	factors := ComputeStressFactors(cfg, in)
	aging := factors.Composite()
	if aging < 1.0 {
		aging = 1.0
	}

	// Biological age never falls below calendar age.
	bioAge := in.AgeYears * aging
	if bioAge < in.AgeYears {
		bioAge = in.AgeYears
	}

	prob := failureProbability(cfg, in, bioAge)

	m := Metrics{
		Unit:             in.Unit,
		CalendarAgeYears: in.AgeYears,
		BiologicalAge:    bioAge,
		AgingRate:        aging,
		Factors:          factors,
		FailureProb:      prob,
		HealthScore:      healthScore(prob),
		FlushDueMonths:   flushDueMonths(cfg, in),
	}
	m.Status = statusTier(cfg, m)
	m.AnodeDepletionMonths = anodeDepletionMonths(cfg, in, aging)
	return m, nil
}

// failureProbability maps biological age onto a monotone saturating logistic
// curve centered on the unit category's design life. Deterministic safety
// conditions bypass the curve with the FAIL sentinel.
func failureProbability(cfg Config, in InspectionInput, bioAge float64) FailureProbability {
	if in.IsLeaking && in.LeakSource == LeakTankBody {
		return FailureProbability{Definite: true, Cause: CauseTankBodyLeak}
	}
	return FailureProbability{Percent: failureCurve(cfg, in.Unit, bioAge)}
}

// failureCurve is the pure biological-age-to-probability mapping. The
// logistic form is monotone and has no poles, but in float64 the exponential
// underflows for extreme biological ages, so the output is capped at the
// configured maximum to keep the probabilistic branch strictly below 100.
func failureCurve(cfg Config, fc FuelCategory, bioAge float64) float64 {
	mid := cfg.designLife(fc)
	p := 100.0 / (1.0 + math.Exp(-cfg.CurveSteepness*(bioAge-mid)))
	if p > cfg.MaxFailurePct {
		p = cfg.MaxFailurePct
	}
	return clampPct(p)
}

// healthScore derives the 0..100 score from failure probability alone. A
// definite failure pins the score to zero.
func healthScore(p FailureProbability) int {
	if p.Definite {
		return 0
	}
	s := int(math.Round(100 - p.Percent))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// statusTier buckets the health score. The FAIL sentinel is always CRITICAL
// regardless of score arithmetic.
func statusTier(cfg Config, m Metrics) StatusTier {
	if m.FailureProb.Definite {
		return TierCritical
	}
	switch {
	case m.HealthScore >= cfg.TierNormalMin:
		return TierNormal
	case m.HealthScore >= cfg.TierElevatedMin:
		return TierElevated
	default:
		return TierHigh
	}
}

// flushDueMonths reports months until the next flush (tank) or descale
// (tankless), nil when service history was not collected.
func flushDueMonths(cfg Config, in InspectionInput) *int {
	var since *float64
	interval := cfg.FlushIntervalMonths
	if in.IsTank() {
		since = in.YearsSinceFlush
	} else {
		since = in.YearsSinceDescale
		interval = cfg.DescaleIntervalMonths
	}
	if since == nil {
		return nil
	}
	due := interval - int(math.Round(*since*12))
	return clampMonths(due, cfg.MaintenanceHorizonMonths)
}

// anodeDepletionMonths estimates months until the sacrificial anode is spent.
// Tankless units carry no anode. When the anode has never been replaced, the
// unit's calendar age stands in for the service gap. Stress accelerates
// depletion, so remaining life is divided by the aging rate.
func anodeDepletionMonths(cfg Config, in InspectionInput, aging float64) *int {
	if !in.IsTank() {
		return nil
	}
	since := in.AgeYears
	if in.YearsSinceAnode != nil {
		since = *in.YearsSinceAnode
	}
	remaining := (cfg.AnodeLifeYears - since) * 12 / aging
	return clampMonths(int(math.Round(remaining)), cfg.MaintenanceHorizonMonths)
}

func clampMonths(v, horizon int) *int {
	if v < 0 {
		v = 0
	}
	if v > horizon {
		v = horizon
	}
	return &v
}

func clampPct(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
