package model

import "github.com/banshee-data/shockcooling/internal/units"

// NumParams is the number of free parameters exposed to a fitting harness.
const NumParams = 4

// ParamNames lists the parameter order shared by Params.Vector and the
// bound vectors handed to a fitting harness.
var ParamNames = [NumParams]string{"re", "me", "ve", "off"}

// Params is one candidate point in parameter space, in the model's
// internal units: Re in 1e13 cm, Me in solar masses, Ve in 1e9 cm/s and
// Off (time offset) in days. Off is carried for the harness and never
// consumed by the luminosity formula.
type Params struct {
	Re  float64 `json:"re"`
	Me  float64 `json:"me"`
	Ve  float64 `json:"ve"`
	Off float64 `json:"off"`
}

// Vector returns the parameters in [re, me, ve, off] order.
func (p Params) Vector() [NumParams]float64 {
	return [NumParams]float64{p.Re, p.Me, p.Ve, p.Off}
}

// ParamsFromVector builds Params from a slice in [re, me, ve, off] order.
func ParamsFromVector(v []float64) (Params, error) {
	if len(v) != NumParams {
		return Params{}, shapeError("parameter vector has %d entries, want %d", len(v), NumParams)
	}
	return Params{Re: v[0], Me: v[1], Ve: v[2], Off: v[3]}, nil
}

// Units holds the display unit label of every parameter.
type Units struct {
	Re  string `json:"re"`
	Me  string `json:"me"`
	Ve  string `json:"ve"`
	Off string `json:"off"`
}

// Scale holds the factor converting each internal value to the unit named
// in Units.
type Scale struct {
	Re  float64 `json:"re"`
	Me  float64 `json:"me"`
	Ve  float64 `json:"ve"`
	Off float64 `json:"off"`
}

// ToPhysical converts internal parameter values to reporting units.
func (s Scale) ToPhysical(p Params) Params {
	return Params{Re: p.Re * s.Re, Me: p.Me * s.Me, Ve: p.Ve * s.Ve, Off: p.Off * s.Off}
}

// FromPhysical is the inverse of ToPhysical.
func (s Scale) FromPhysical(p Params) Params {
	return Params{Re: p.Re / s.Re, Me: p.Me / s.Me, Ve: p.Ve / s.Ve, Off: p.Off / s.Off}
}

// Sapir & Waxman convention: re in 1e13 cm reported in R_sun.
var (
	swUnits = Units{
		Re:  units.LabelSolarRadius,
		Me:  units.LabelSolarMass,
		Ve:  units.LabelVelocity9,
		Off: units.LabelDays,
	}
	swScale = Scale{
		Re:  units.Radius13 / units.SolarRadiusCM,
		Me:  1,
		Ve:  1,
		Off: 1,
	}
)
