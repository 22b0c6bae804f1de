package opterra

import (
	"errors"
	"fmt"
	"strings"
)

// FuelCategory identifies the unit type being assessed.
type FuelCategory string

const (
	FuelGasTank          FuelCategory = "GAS_TANK"
	FuelElectricTank     FuelCategory = "ELECTRIC_TANK"
	FuelGasTankless      FuelCategory = "GAS_TANKLESS"
	FuelElectricTankless FuelCategory = "ELECTRIC_TANKLESS"
	FuelHybrid           FuelCategory = "HYBRID"
)

// Location is where the unit is installed.
type Location string

const (
	LocationGarage        Location = "GARAGE"
	LocationBasement      Location = "BASEMENT"
	LocationAttic         Location = "ATTIC"
	LocationUtilityCloset Location = "UTILITY_CLOSET"
	LocationCrawlspace    Location = "CRAWLSPACE"
	LocationExterior      Location = "EXTERIOR"
)

// TempSetting is the thermostat dial position.
type TempSetting string

const (
	TempLow    TempSetting = "LOW"
	TempNormal TempSetting = "NORMAL"
	TempHot    TempSetting = "HOT"
)

// ConnectionType describes the water-line connection at the unit.
type ConnectionType string

const (
	ConnDielectric   ConnectionType = "DIELECTRIC"
	ConnBrass        ConnectionType = "BRASS"
	ConnDirectCopper ConnectionType = "DIRECT_COPPER"
)

// NippleMaterial sub-classifies a direct-copper connection.
type NippleMaterial string

const (
	NippleSteel   NippleMaterial = "STEEL"
	NippleBrass   NippleMaterial = "BRASS"
	NippleUnknown NippleMaterial = "UNKNOWN"
)

// LeakSource narrows an observed active leak.
type LeakSource string

const (
	LeakTankBody   LeakSource = "TANK_BODY"
	LeakFitting    LeakSource = "FITTING"
	LeakTPRValve   LeakSource = "TPR_VALVE"
	LeakDrainValve LeakSource = "DRAIN_VALVE"
	LeakUnknown    LeakSource = "UNKNOWN"
)

// InspectionInput is the canonical record of one field inspection. It is
// immutable for the duration of a scoring call; the engine never mutates or
// stores it. Optional measurements are pointers: nil means "not collected"
// and contributes no stress.
type InspectionInput struct {
	Unit     FuelCategory `json:"unit"`
	AgeYears float64      `json:"age_years"`
	Location Location     `json:"location"`

	PressurePSI *float64    `json:"pressure_psi,omitempty"`
	HardnessGPG *float64    `json:"hardness_gpg,omitempty"`
	TempSetting TempSetting `json:"temp_setting,omitempty"`

	HasExpansionTank         bool `json:"has_expansion_tank"`
	ExpansionTankWaterlogged bool `json:"expansion_tank_waterlogged"`
	HasPRV                   bool `json:"has_prv"`
	ClosedLoop               bool `json:"closed_loop"`
	HasRecircPump            bool `json:"has_recirc_pump"`
	RecircTimer              bool `json:"recirc_timer"`
	HasDrainPan              bool `json:"has_drain_pan"`
	HasSoftener              bool `json:"has_softener"`

	Connection     ConnectionType `json:"connection,omitempty"`
	NippleMaterial NippleMaterial `json:"nipple_material,omitempty"`

	YearsSinceFlush   *float64 `json:"years_since_flush,omitempty"`
	YearsSinceDescale *float64 `json:"years_since_descale,omitempty"`
	YearsSinceAnode   *float64 `json:"years_since_anode,omitempty"`

	HouseholdSize int `json:"household_size,omitempty"`

	VisibleRust bool       `json:"visible_rust"`
	IsLeaking   bool       `json:"is_leaking"`
	LeakSource  LeakSource `json:"leak_source,omitempty"`
}

// ErrInvalidInput is wrapped by every validation failure so callers can map
// the whole class to a single response path.
var ErrInvalidInput = errors.New("invalid inspection input")

const (
	maxPlausibleAgeYears    = 60
	maxPlausiblePressurePSI = 200
	maxPlausibleHardnessGPG = 100
	maxPlausibleHousehold   = 20
)

// Aged returns a copy with the calendar age advanced by the given number of
// years, clamped to the plausible validation maximum so a stored unit can
// keep being re-scored indefinitely. The failure curve is fully saturated
// well before the clamp, so the clamp never changes a score materially.
func (in InspectionInput) Aged(years float64) InspectionInput {
	if years > 0 {
		in.AgeYears += years
	}
	if in.AgeYears > maxPlausibleAgeYears {
		in.AgeYears = maxPlausibleAgeYears
	}
	return in
}

// IsTank reports whether the unit keeps a storage tank (tankless categories
// accumulate scale instead of sediment and carry no anode).
func (in InspectionInput) IsTank() bool {
	switch in.Unit {
	case FuelGasTankless, FuelElectricTankless:
		return false
	}
	return true
}

// Validate rejects malformed or out-of-domain values before they reach the
// engine. The engine itself is total over inputs that pass here.
func (in InspectionInput) Validate() error {
	var problems []string

	switch in.Unit {
	case FuelGasTank, FuelElectricTank, FuelGasTankless, FuelElectricTankless, FuelHybrid:
	default:
		problems = append(problems, fmt.Sprintf("unit category %q is not recognized", in.Unit))
	}

	if in.AgeYears < 0 {
		problems = append(problems, "age_years must be non-negative")
	} else if in.AgeYears > maxPlausibleAgeYears {
		problems = append(problems, fmt.Sprintf("age_years %.1f exceeds plausible maximum %d", in.AgeYears, maxPlausibleAgeYears))
	}

	switch in.Location {
	case LocationGarage, LocationBasement, LocationAttic, LocationUtilityCloset, LocationCrawlspace, LocationExterior, "":
	default:
		problems = append(problems, fmt.Sprintf("location %q is not recognized", in.Location))
	}

	if in.PressurePSI != nil && (*in.PressurePSI <= 0 || *in.PressurePSI > maxPlausiblePressurePSI) {
		problems = append(problems, fmt.Sprintf("pressure_psi %.1f outside plausible range (0, %d]", *in.PressurePSI, maxPlausiblePressurePSI))
	}
	if in.HardnessGPG != nil && (*in.HardnessGPG < 0 || *in.HardnessGPG > maxPlausibleHardnessGPG) {
		problems = append(problems, fmt.Sprintf("hardness_gpg %.1f outside plausible range [0, %d]", *in.HardnessGPG, maxPlausibleHardnessGPG))
	}

	switch in.TempSetting {
	case TempLow, TempNormal, TempHot, "":
	default:
		problems = append(problems, fmt.Sprintf("temp_setting %q is not recognized", in.TempSetting))
	}

	switch in.Connection {
	case ConnDielectric, ConnBrass, ConnDirectCopper, "":
	default:
		problems = append(problems, fmt.Sprintf("connection %q is not recognized", in.Connection))
	}
	switch in.NippleMaterial {
	case NippleSteel, NippleBrass, NippleUnknown, "":
	default:
		problems = append(problems, fmt.Sprintf("nipple_material %q is not recognized", in.NippleMaterial))
	}

	for name, v := range map[string]*float64{
		"years_since_flush":   in.YearsSinceFlush,
		"years_since_descale": in.YearsSinceDescale,
		"years_since_anode":   in.YearsSinceAnode,
	} {
		if v != nil && *v < 0 {
			problems = append(problems, name+" must be non-negative")
		}
	}

	if in.HouseholdSize < 0 || in.HouseholdSize > maxPlausibleHousehold {
		problems = append(problems, fmt.Sprintf("household_size %d outside plausible range [0, %d]", in.HouseholdSize, maxPlausibleHousehold))
	}

	switch in.LeakSource {
	case LeakTankBody, LeakFitting, LeakTPRValve, LeakDrainValve, LeakUnknown, "":
	default:
		problems = append(problems, fmt.Sprintf("leak_source %q is not recognized", in.LeakSource))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}
