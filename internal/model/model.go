// Package model implements analytic shock-cooling emission models for
// early-time supernova light curves. Each model turns a set of progenitor
// and shock parameters plus observation times into photospheric radius and
// temperature curves, and carries the metadata (units, scaling, bounds,
// display name) a fitting harness needs to treat models interchangeably.
//
// Models are immutable after construction and safe for concurrent use.
package model

// DefaultKappa is the Thomson-scattering opacity (cm^2/g) of ionised
// solar-composition material. Opacities are normalised against it.
const DefaultKappa = 0.34

// ShockCoolingModel is the capability a fitting harness selects and calls.
type ShockCoolingModel interface {
	// Name is the registry key, e.g. "sw_rsg".
	Name() string
	DisplayName() string
	Units() Units
	Scale() Scale
	Bounds() Bounds
	// Mcore and Kappa are the constants fixed at construction.
	Mcore() float64
	Kappa() float64
	// Evaluate computes R(t) in cm and T(t) in K for times t in days.
	Evaluate(t []float64, p Params) (Curve, error)
}

// Curve is the photospheric radius and temperature at each observation time.
type Curve struct {
	Time        []float64 `json:"t"`
	Radius      []float64 `json:"radius_cm"`
	Temperature []float64 `json:"temperature_k"`
}

// Len returns the number of samples in the curve.
func (c Curve) Len() int { return len(c.Time) }

// Options holds construction-time settings shared by all models.
type Options struct {
	Kappa float64
}

// Option configures a model at construction.
type Option func(*Options)

// WithKappa fixes the opacity used by Evaluate.
func WithKappa(kappa float64) Option {
	return func(o *Options) { o.Kappa = kappa }
}

func buildOptions(opts []Option) Options {
	o := Options{Kappa: DefaultKappa}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
