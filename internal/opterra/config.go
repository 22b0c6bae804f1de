package opterra

// Config carries every tunable threshold and curve coefficient used by the
// scoring engine. Values are pinned here rather than scattered as literals so
// they can be versioned, overridden from configuration, and covered by
// golden-value tests independently of the formulas.
type Config struct {
	Version string

	// Pressure factor. The penalty applies only above the normal band and is
	// suppressed entirely by a present pressure-reducing valve.
	NormalPressurePSI    float64
	PressureFactorPerPSI float64
	MaxPressureFactor    float64

	// Temperature dial factors, stepped by setting.
	TempFactorLow    float64
	TempFactorNormal float64
	TempFactorHot    float64

	// Sediment (tank) / scale (tankless) accumulation per year since last
	// flush or descale. A softener halves the effective service gap.
	TankSedimentPerYear  float64
	TanklessScalePerYear float64
	MaxSedimentFactor    float64

	// Continuous recirculation without a timer or demand control.
	RecircNoTimerFactor float64

	// Thermal-expansion cycling on closed-loop plumbing.
	ClosedLoopNoExpansionFactor float64
	WaterloggedExpansionFactor  float64

	// Usage intensity from household size.
	BaselineHouseholdSize int
	UsagePerExtraPerson   float64
	MaxUsageFactor        float64

	// Direct copper-to-steel nipple connection without dielectric protection.
	GalvanicFactor float64

	// Water hardness. Measured GPG wins; otherwise a location estimate.
	SoftWaterGPG           float64
	HardnessPerGPGTank     float64
	HardnessPerGPGTankless float64
	MaxHardnessFactor      float64
	LocationHardnessGPG    map[Location]float64
	DefaultHardnessGPG     float64

	// Failure curve: logistic in biological age, centered on the unit
	// category's design life. MaxFailurePct caps the probabilistic branch; a
	// certainty is only ever expressed by the FAIL sentinel, never the curve.
	CurveSteepness  float64
	MaxFailurePct   float64
	DesignLifeYears map[FuelCategory]float64

	// Health-score tier boundaries.
	TierNormalMin   int
	TierElevatedMin int

	// Recommendation policy.
	ReplaceFailurePct float64
	RepairFailurePct  float64

	// Maintenance horizons.
	FlushIntervalMonths      int
	DescaleIntervalMonths    int
	AnodeLifeYears           float64
	MaintenanceHorizonMonths int

	// Aging-rate step applied in forward projections once the anode is
	// depleted partway through the window.
	AnodeDepletedAgingStep float64
}

// DefaultConfig returns the canonical threshold set. Divergent historical
// variants were consolidated into this single table; changing any value here
// requires updating the golden tests alongside it.
func DefaultConfig() Config {
	return Config{
		Version: "2026.1",

		NormalPressurePSI:    80,
		PressureFactorPerPSI: 0.01,
		MaxPressureFactor:    1.6,

		TempFactorLow:    1.0,
		TempFactorNormal: 1.05,
		TempFactorHot:    1.25,

		TankSedimentPerYear:  0.08,
		TanklessScalePerYear: 0.12,
		MaxSedimentFactor:    1.8,

		RecircNoTimerFactor: 1.3,

		ClosedLoopNoExpansionFactor: 1.5,
		WaterloggedExpansionFactor:  1.4,

		BaselineHouseholdSize: 3,
		UsagePerExtraPerson:   0.05,
		MaxUsageFactor:        1.3,

		GalvanicFactor: 3.0,

		SoftWaterGPG:           7,
		HardnessPerGPGTank:     0.03,
		HardnessPerGPGTankless: 0.05,
		MaxHardnessFactor:      1.6,
		LocationHardnessGPG: map[Location]float64{
			LocationGarage:        10,
			LocationBasement:      9,
			LocationAttic:         10,
			LocationUtilityCloset: 9,
			LocationCrawlspace:    10,
			LocationExterior:      11,
		},
		DefaultHardnessGPG: 9,

		CurveSteepness: 0.30,
		MaxFailurePct:  99.9,
		DesignLifeYears: map[FuelCategory]float64{
			FuelGasTank:          12,
			FuelElectricTank:     13,
			FuelGasTankless:      20,
			FuelElectricTankless: 20,
			FuelHybrid:           14,
		},

		TierNormalMin:   70,
		TierElevatedMin: 40,

		ReplaceFailurePct: 60,
		RepairFailurePct:  30,

		FlushIntervalMonths:      12,
		DescaleIntervalMonths:    18,
		AnodeLifeYears:           5,
		MaintenanceHorizonMonths: 60,

		AnodeDepletedAgingStep: 1.15,
	}
}

// designLife resolves the midlife of a unit category, falling back to the gas
// tank curve for unrecognized categories so scoring stays total.
func (c Config) designLife(fc FuelCategory) float64 {
	if v, ok := c.DesignLifeYears[fc]; ok {
		return v
	}
	return c.DesignLifeYears[FuelGasTank]
}
