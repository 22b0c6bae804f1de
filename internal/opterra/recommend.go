package opterra

import "fmt"

// Action is the recommended course of action.
type Action string

const (
	ActionMonitor Action = "MONITOR"
	ActionRepair  Action = "REPAIR"
	ActionReplace Action = "REPLACE"
)

// Severity tags the recommendation for display.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Recommendation is a pure function of metrics plus policy thresholds; it
// holds no state of its own.
type Recommendation struct {
	Action   Action   `json:"action"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// Recommend derives the action from a decision table over the status tier and
// specific safety flags. Safety-critical conditions force replacement
// regardless of score; otherwise the projected benefit of every applicable
// repair is compared against the replace threshold.
func Recommend(cfg Config, m Metrics, in InspectionInput) Recommendation {
	// Safety overrides first.
	if m.FailureProb.Definite {
		return Recommendation{
			Action:   ActionReplace,
			Reason:   "active tank-body leak; the tank has failed and cannot be repaired",
			Severity: SeverityCritical,
		}
	}
	if in.Connection == ConnDirectCopper && in.NippleMaterial == NippleSteel && in.VisibleRust {
		return Recommendation{
			Action:   ActionReplace,
			Reason:   "galvanic corrosion confirmed at a direct copper-to-steel connection with visible rust",
			Severity: SeverityCritical,
		}
	}

	switch m.Status {
	case TierNormal:
		if missingRequiredDrainPan(in) {
			return Recommendation{
				Action:   ActionRepair,
				Reason:   fmt.Sprintf("unit is healthy but a drain pan is required for a %s installation", in.Location),
				Severity: SeverityWarning,
			}
		}
		return Recommendation{
			Action:   ActionMonitor,
			Reason:   "unit is within its normal operating envelope",
			Severity: SeverityInfo,
		}
	default:
		// Elevated or high risk: repair only if the best achievable repair
		// outcome brings failure probability back under the replace line.
		after := Simulate(cfg, m, ApplicableRepairs(in, m))
		if m.FailureProb.Percent < cfg.ReplaceFailurePct ||
			after.FailureProb.Percent < cfg.ReplaceFailurePct {
			return Recommendation{
				Action:   ActionRepair,
				Reason:   fmt.Sprintf("elevated failure probability (%.0f%%) is recoverable through targeted repairs", m.FailureProb.Percent),
				Severity: SeverityWarning,
			}
		}
		return Recommendation{
			Action:   ActionReplace,
			Reason:   fmt.Sprintf("failure probability %.0f%% remains above the replacement threshold even after all applicable repairs", m.FailureProb.Percent),
			Severity: SeverityCritical,
		}
	}
}

// missingRequiredDrainPan flags locations where a leak would cause interior
// damage and a pan is therefore required.
func missingRequiredDrainPan(in InspectionInput) bool {
	if in.HasDrainPan {
		return false
	}
	switch in.Location {
	case LocationAttic, LocationUtilityCloset:
		return true
	}
	return false
}
