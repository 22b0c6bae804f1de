package opterra

// StressFactors is the fixed set of multiplicative penalties derived from one
// inspection. Every factor is >= 1.0; 1.0 means no added stress. Each factor
// reads only raw input fields, never another factor's output.
type StressFactors struct {
	Pressure    float64 `json:"pressure"`
	Temperature float64 `json:"temperature"`
	Sediment    float64 `json:"sediment"`
	Circulation float64 `json:"circulation"`
	ClosedLoop  float64 `json:"closed_loop"`
	Usage       float64 `json:"usage"`
	Connection  float64 `json:"connection"`
	Hardness    float64 `json:"hardness"`
}

// noStress is the identity multiplier used for missing optional inputs.
const noStress = 1.0

// Composite multiplies all factors together. Stresses compound, so the
// combination is a product, not a sum.
func (f StressFactors) Composite() float64 {
	return f.Pressure * f.Temperature * f.Sediment * f.Circulation *
		f.ClosedLoop * f.Usage * f.Connection * f.Hardness
}

// ComputeStressFactors derives the full factor set from a validated input.
// Missing optional measurements default to no added stress so the engine
// stays total over partially specified field inspections.
func ComputeStressFactors(cfg Config, in InspectionInput) StressFactors {
	return StressFactors{
		Pressure:    pressureFactor(cfg, in),
		Temperature: temperatureFactor(cfg, in),
		Sediment:    sedimentFactor(cfg, in),
		Circulation: circulationFactor(cfg, in),
		ClosedLoop:  closedLoopFactor(cfg, in),
		Usage:       usageFactor(cfg, in),
		Connection:  connectionFactor(cfg, in),
		Hardness:    hardnessFactor(cfg, in),
	}
}

// pressureFactor penalizes supply pressure above the normal band. A present
// pressure-reducing valve suppresses the penalty entirely rather than scaling
// the factor.
func pressureFactor(cfg Config, in InspectionInput) float64 {
	if in.HasPRV || in.PressurePSI == nil {
		return noStress
	}
	psi := *in.PressurePSI
	if psi <= cfg.NormalPressurePSI {
		return noStress
	}
	return clampFactor(noStress+(psi-cfg.NormalPressurePSI)*cfg.PressureFactorPerPSI, cfg.MaxPressureFactor)
}

func temperatureFactor(cfg Config, in InspectionInput) float64 {
	switch in.TempSetting {
	case TempLow:
		return cfg.TempFactorLow
	case TempNormal:
		return cfg.TempFactorNormal
	case TempHot:
		return cfg.TempFactorHot
	}
	return noStress
}

// sedimentFactor branches by unit category: tanks accumulate sediment since
// the last flush, tankless units accumulate scale since the last descale. A
// softener halves the effective service gap.
func sedimentFactor(cfg Config, in InspectionInput) float64 {
	var years, perYear float64
	if in.IsTank() {
		if in.YearsSinceFlush == nil {
			return noStress
		}
		years, perYear = *in.YearsSinceFlush, cfg.TankSedimentPerYear
	} else {
		if in.YearsSinceDescale == nil {
			return noStress
		}
		years, perYear = *in.YearsSinceDescale, cfg.TanklessScalePerYear
	}
	if in.HasSoftener {
		years /= 2
	}
	return clampFactor(noStress+years*perYear, cfg.MaxSedimentFactor)
}

func circulationFactor(cfg Config, in InspectionInput) float64 {
	if in.HasRecircPump && !in.RecircTimer {
		return cfg.RecircNoTimerFactor
	}
	return noStress
}

// closedLoopFactor reflects thermal-expansion cycling: a closed loop with no
// expansion tank (or a waterlogged one) is a discrete, high-penalty condition.
func closedLoopFactor(cfg Config, in InspectionInput) float64 {
	if !in.ClosedLoop {
		return noStress
	}
	if !in.HasExpansionTank {
		return cfg.ClosedLoopNoExpansionFactor
	}
	if in.ExpansionTankWaterlogged {
		return cfg.WaterloggedExpansionFactor
	}
	return noStress
}

func usageFactor(cfg Config, in InspectionInput) float64 {
	if in.HouseholdSize <= cfg.BaselineHouseholdSize {
		return noStress
	}
	extra := float64(in.HouseholdSize - cfg.BaselineHouseholdSize)
	return clampFactor(noStress+extra*cfg.UsagePerExtraPerson, cfg.MaxUsageFactor)
}

// connectionFactor applies the galvanic penalty only for a confirmed direct
// copper-to-steel nipple connection. Dielectric or brass connections, and an
// unverified nipple material, carry no penalty.
func connectionFactor(cfg Config, in InspectionInput) float64 {
	if in.Connection == ConnDirectCopper && in.NippleMaterial == NippleSteel {
		return cfg.GalvanicFactor
	}
	return noStress
}

// hardnessFactor scales with effective water hardness: a measured reading
// wins, otherwise a location-based estimate. Tank and tankless units carry
// different slopes. A softener caps effective hardness at the soft-water
// threshold.
func hardnessFactor(cfg Config, in InspectionInput) float64 {
	gpg := effectiveHardnessGPG(cfg, in)
	if in.HasSoftener && gpg > cfg.SoftWaterGPG {
		gpg = cfg.SoftWaterGPG
	}
	if gpg <= cfg.SoftWaterGPG {
		return noStress
	}
	perGPG := cfg.HardnessPerGPGTank
	if !in.IsTank() {
		perGPG = cfg.HardnessPerGPGTankless
	}
	return clampFactor(noStress+(gpg-cfg.SoftWaterGPG)*perGPG, cfg.MaxHardnessFactor)
}

func effectiveHardnessGPG(cfg Config, in InspectionInput) float64 {
	if in.HardnessGPG != nil {
		return *in.HardnessGPG
	}
	if est, ok := cfg.LocationHardnessGPG[in.Location]; ok {
		return est
	}
	return cfg.DefaultHardnessGPG
}

// clampFactor keeps a factor inside [1.0, max].
func clampFactor(v, max float64) float64 {
	if v < noStress {
		return noStress
	}
	if v > max {
		return max
	}
	return v
}
