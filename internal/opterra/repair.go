package opterra

import "math"

// RepairOption is a candidate intervention. Impact values are expressed
// relative to the pre-repair baseline, never compounded on each other.
type RepairOption struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CostLowUSD   int     `json:"cost_low_usd"`
	CostHighUSD  int     `json:"cost_high_usd"`
	HealthBoost  int     `json:"health_boost"`
	AgingCutPct  float64 `json:"aging_cut_pct"`
	FailCutPct   float64 `json:"fail_cut_pct"`
	TankOnly     bool    `json:"tank_only,omitempty"`
	TanklessOnly bool    `json:"tankless_only,omitempty"`
}

// Repair option identifiers.
const (
	RepairTankFlush      = "TANK_FLUSH"
	RepairDescale        = "DESCALE"
	RepairAnodeReplace   = "ANODE_REPLACE"
	RepairExpansionTank  = "EXPANSION_TANK"
	RepairPRVInstall     = "PRV_INSTALL"
	RepairDielectricNips = "DIELECTRIC_NIPPLES"
	RepairRecircTimer    = "RECIRC_TIMER"
	RepairDrainPan       = "DRAIN_PAN"
)

// Catalog is the fixed set of repair options the planner offers.
func Catalog() []RepairOption {
	return []RepairOption{
		{ID: RepairTankFlush, Name: "Tank flush", CostLowUSD: 150, CostHighUSD: 250, HealthBoost: 10, AgingCutPct: 15, FailCutPct: 10, TankOnly: true},
		{ID: RepairDescale, Name: "Descale service", CostLowUSD: 200, CostHighUSD: 350, HealthBoost: 12, AgingCutPct: 18, FailCutPct: 12, TanklessOnly: true},
		{ID: RepairAnodeReplace, Name: "Anode rod replacement", CostLowUSD: 250, CostHighUSD: 400, HealthBoost: 15, AgingCutPct: 20, FailCutPct: 15, TankOnly: true},
		{ID: RepairExpansionTank, Name: "Expansion tank install", CostLowUSD: 300, CostHighUSD: 500, HealthBoost: 10, AgingCutPct: 12, FailCutPct: 10},
		{ID: RepairPRVInstall, Name: "Pressure-reducing valve install", CostLowUSD: 350, CostHighUSD: 600, HealthBoost: 8, AgingCutPct: 10, FailCutPct: 8},
		{ID: RepairDielectricNips, Name: "Dielectric nipple replacement", CostLowUSD: 200, CostHighUSD: 350, HealthBoost: 12, AgingCutPct: 25, FailCutPct: 12, TankOnly: true},
		{ID: RepairRecircTimer, Name: "Recirculation timer install", CostLowUSD: 150, CostHighUSD: 300, HealthBoost: 5, AgingCutPct: 8, FailCutPct: 5},
		{ID: RepairDrainPan, Name: "Drain pan install", CostLowUSD: 100, CostHighUSD: 200, HealthBoost: 2, AgingCutPct: 0, FailCutPct: 0},
	}
}

// FindRepair looks up a catalog option by id.
func FindRepair(id string) (RepairOption, bool) {
	for _, opt := range Catalog() {
		if opt.ID == id {
			return opt, true
		}
	}
	return RepairOption{}, false
}

// ApplicableRepairs filters the catalog to options that address a stress the
// inspection actually shows. Used by the recommendation policy to estimate
// the best achievable repair benefit.
func ApplicableRepairs(in InspectionInput, m Metrics) []RepairOption {
	var out []RepairOption
	for _, opt := range Catalog() {
		if opt.TankOnly && !in.IsTank() {
			continue
		}
		if opt.TanklessOnly && in.IsTank() {
			continue
		}
		if applies(opt, in, m) {
			out = append(out, opt)
		}
	}
	return out
}

func applies(opt RepairOption, in InspectionInput, m Metrics) bool {
	switch opt.ID {
	case RepairTankFlush, RepairDescale:
		return m.Factors.Sediment > noStress
	case RepairAnodeReplace:
		return m.AnodeDepletionMonths != nil && *m.AnodeDepletionMonths == 0
	case RepairExpansionTank:
		return m.Factors.ClosedLoop > noStress
	case RepairPRVInstall:
		return m.Factors.Pressure > noStress
	case RepairDielectricNips:
		return m.Factors.Connection > noStress
	case RepairRecircTimer:
		return m.Factors.Circulation > noStress
	case RepairDrainPan:
		return !in.HasDrainPan
	}
	return false
}

// Simulate folds the selected repairs onto the metrics and returns a
// hypothetical "after" snapshot; the original is never mutated. All impacts
// are percentages of the pre-repair baseline, summed and clamped once at the
// end, so the result is independent of selection order. A definite failure
// cannot be repaired away and passes through unchanged.
func Simulate(cfg Config, m Metrics, repairs []RepairOption) Metrics {
	if m.FailureProb.Definite {
		return m
	}

	var boost int
	var agingCut, failCut float64
	for _, opt := range repairs {
		boost += opt.HealthBoost
		agingCut += opt.AgingCutPct
		failCut += opt.FailCutPct
	}
	if agingCut > 100 {
		agingCut = 100
	}
	if failCut > 100 {
		failCut = 100
	}

	after := m
	after.HealthScore = clampScore(m.HealthScore + boost)
	after.AgingRate = math.Max(1.0, m.AgingRate*(1-agingCut/100))
	after.FailureProb = FailureProbability{Percent: clampPct(m.FailureProb.Percent * (1 - failCut/100))}
	after.BiologicalAge = math.Max(m.CalendarAgeYears, m.CalendarAgeYears*after.AgingRate)
	after.Status = statusTier(cfg, after)
	return after
}

// Projection is the no-intervention forecast at a point in the future.
type Projection struct {
	Months        int                `json:"months"`
	BiologicalAge float64            `json:"biological_age_years"`
	FailureProb   FailureProbability `json:"failure_probability"`
	HealthScore   int                `json:"health_score"`
	Status        StatusTier         `json:"status"`
}

// Project re-runs the failure curve at the biological age the unit will have
// reached after the given number of months with no intervention. If anode
// depletion falls inside the window, aging accelerates by the configured step
// for the remainder.
func Project(cfg Config, m Metrics, months int) Projection {
	if m.FailureProb.Definite {
		return Projection{
			Months:        months,
			BiologicalAge: m.BiologicalAge,
			FailureProb:   m.FailureProb,
			HealthScore:   0,
			Status:        TierCritical,
		}
	}

	preMonths := float64(months)
	postMonths := 0.0
	if m.AnodeDepletionMonths != nil && *m.AnodeDepletionMonths < months {
		preMonths = float64(*m.AnodeDepletionMonths)
		postMonths = float64(months) - preMonths
	}

	bio := m.BiologicalAge +
		preMonths/12*m.AgingRate +
		postMonths/12*m.AgingRate*cfg.AnodeDepletedAgingStep

	prob := FailureProbability{Percent: failureCurve(cfg, m.Unit, bio)}
	p := Projection{
		Months:        months,
		BiologicalAge: bio,
		FailureProb:   prob,
		HealthScore:   healthScore(prob),
	}
	p.Status = statusTier(cfg, Metrics{FailureProb: prob, HealthScore: p.HealthScore})
	return p
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
