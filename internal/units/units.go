// Package units provides shared physical constants, unit labels and
// validation for report units.
package units

// Physical constants in cgs.
const (
	// SolarRadiusCM is the IAU nominal solar radius.
	SolarRadiusCM = 6.957e10
	// StefanBoltzmannCGS is sigma in erg cm^-2 s^-1 K^-4.
	StefanBoltzmannCGS = 5.670374419e-5
	// Radius13 is the 10^13 cm length unit envelope radii are expressed in.
	Radius13 = 1e13
)

// Parameter unit labels used when reporting fitted values.
const (
	LabelSolarRadius = "R_sun"
	LabelSolarMass   = "M_sun"
	LabelVelocity9   = "1e9 cm/s"
	LabelDays        = "days"
)

// Radius report units
const (
	CM   = "cm"
	RSun = "rsun"
	CM13 = "1e13cm"
)

// ValidUnits contains all valid radius report units
var ValidUnits = []string{CM, RSun, CM13}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "cm, rsun, 1e13cm"
}

// ConvertRadius converts a radius from centimetres to the target units.
// The model reports photospheric radii in cm.
func ConvertRadius(radiusCM float64, targetUnits string) float64 {
	switch targetUnits {
	case CM:
		return radiusCM
	case RSun:
		return radiusCM / SolarRadiusCM
	case CM13:
		return radiusCM / Radius13
	default:
		return radiusCM
	}
}

// ConvertRadii converts every element of radiiCM into a new slice.
func ConvertRadii(radiiCM []float64, targetUnits string) []float64 {
	out := make([]float64, len(radiiCM))
	for i, r := range radiiCM {
		out[i] = ConvertRadius(r, targetUnits)
	}
	return out
}
