package model

import (
	"math"

	"github.com/banshee-data/shockcooling/internal/units"
)

// SWRSGName is the registry key of the Sapir & Waxman red-supergiant model.
const SWRSGName = "sw_rsg"

// Coefficients of the Sapir & Waxman (2017) fit for n = 3/2 envelopes.
const (
	swLumNorm    = 1.88e42
	swLumExp     = -0.086
	swTempNorm   = 2.05e4
	swTempExp    = 0.027
	swTransA     = 1.67
	swTransTime  = 19.5
	swTransAlpha = 0.8
	// shock velocity unit of the fit, 10^8.5 cm/s
	swVelocityUnit = 3.1622776601683794e8
)

// SapirWaxmanRSG is the Sapir & Waxman (2017) shock-cooling model for red
// supergiant progenitors (envelope density slope n = 3/2).
type SapirWaxmanRSG struct {
	mcore float64
	kappa float64
}

var _ ShockCoolingModel = (*SapirWaxmanRSG)(nil)

// NewSapirWaxmanRSG creates the model for a progenitor core mass mcore in
// solar masses. The opacity used by Evaluate defaults to DefaultKappa.
func NewSapirWaxmanRSG(mcore float64, opts ...Option) (*SapirWaxmanRSG, error) {
	o := buildOptions(opts)
	if err := requirePositive("mcore", mcore); err != nil {
		return nil, err
	}
	if err := requirePositive("kappa", o.Kappa); err != nil {
		return nil, err
	}
	return &SapirWaxmanRSG{mcore: mcore, kappa: o.Kappa}, nil
}

func (m *SapirWaxmanRSG) Name() string        { return SWRSGName }
func (m *SapirWaxmanRSG) DisplayName() string { return "Sapir & Waxman (2017) [n = 1.5]" }
func (m *SapirWaxmanRSG) Units() Units        { return swUnits }
func (m *SapirWaxmanRSG) Scale() Scale        { return swScale }
func (m *SapirWaxmanRSG) Bounds() Bounds      { return swBounds }

// Mcore returns the core mass fixed at construction.
func (m *SapirWaxmanRSG) Mcore() float64 { return m.mcore }

// Kappa returns the opacity Evaluate uses.
func (m *SapirWaxmanRSG) Kappa() float64 { return m.kappa }

// Evaluate computes the curve at the model's fixed opacity. t is the time
// since explosion; p.Off is not applied here, callers shift observed times
// themselves.
func (m *SapirWaxmanRSG) Evaluate(t []float64, p Params) (Curve, error) {
	c := Curve{
		Time:        append([]float64(nil), t...),
		Radius:      make([]float64, len(t)),
		Temperature: make([]float64, len(t)),
	}
	if err := m.LuminosityInto(c.Radius, c.Temperature, t, p.Re, p.Me, p.Ve, m.kappa); err != nil {
		return Curve{}, err
	}
	return c, nil
}

// Luminosity returns R(t) in cm and T(t) in K at the reference opacity.
func (m *SapirWaxmanRSG) Luminosity(t []float64, re, me, ve float64) (r, temp []float64, err error) {
	return m.LuminosityKappa(t, re, me, ve, DefaultKappa)
}

// LuminosityKappa is Luminosity at opacity kappa (cm^2/g).
func (m *SapirWaxmanRSG) LuminosityKappa(t []float64, re, me, ve, kappa float64) (r, temp []float64, err error) {
	r = make([]float64, len(t))
	temp = make([]float64, len(t))
	if err := m.LuminosityInto(r, temp, t, re, me, ve, kappa); err != nil {
		return nil, nil, err
	}
	return r, temp, nil
}

// LuminosityInto writes R(t) and T(t) into caller-owned buffers, which must
// have the same length as t. Nothing is written when an error is returned.
//
// t = 0 is outside the validity of the analytic form: T diverges and R
// becomes NaN. Those values are returned as-is.
func (m *SapirWaxmanRSG) LuminosityInto(r, temp, t []float64, re, me, ve, kappa float64) error {
	if len(r) != len(t) || len(temp) != len(t) {
		return shapeError("output buffers have lengths %d and %d, want %d", len(r), len(temp), len(t))
	}
	s, err := m.prepare(t, re, me, ve, kappa)
	if err != nil {
		return err
	}
	for i, ti := range t {
		l := s.luminosity(ti)
		T := s.temperature(ti)
		r[i] = math.Sqrt(l / (4 * math.Pi * math.Pow(T, 4) * units.StefanBoltzmannCGS))
		temp[i] = T
	}
	return nil
}

// Bolometric returns L(t) in erg/s.
func (m *SapirWaxmanRSG) Bolometric(t []float64, re, me, ve, kappa float64) ([]float64, error) {
	s, err := m.prepare(t, re, me, ve, kappa)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t))
	for i, ti := range t {
		out[i] = s.luminosity(ti)
	}
	return out, nil
}

// swTerms holds the time-independent parts of the formula for one call.
type swTerms struct {
	re    float64
	k     float64
	vs    float64
	fpMk  float64 // fp * M * k
	tTr   float64 // transparency time scale
	rTerm float64 // (re/k)^0.25
}

func (m *SapirWaxmanRSG) prepare(t []float64, re, me, ve, kappa float64) (swTerms, error) {
	for _, p := range []struct {
		name string
		v    float64
	}{{"re", re}, {"me", me}, {"ve", ve}, {"kappa", kappa}} {
		if err := requirePositive(p.name, p.v); err != nil {
			return swTerms{}, err
		}
	}
	if err := checkTimes(t); err != nil {
		return swTerms{}, err
	}

	M := m.mcore + me
	k := kappa / DefaultKappa
	fp := math.Sqrt(me / m.mcore)
	vs := ve * 1e9 / swVelocityUnit

	return swTerms{
		re:    re,
		k:     k,
		vs:    vs,
		fpMk:  fp * M * k,
		tTr:   swTransTime * math.Sqrt(k*me/vs),
		rTerm: math.Pow(re/k, 0.25),
	}, nil
}

func (s swTerms) luminosity(t float64) float64 {
	correction := math.Pow(s.vs*t*t/s.fpMk, swLumExp)
	magnitude := s.vs * s.vs * s.re / s.k
	suppression := math.Exp(-math.Pow(swTransA*t/s.tTr, swTransAlpha))
	return swLumNorm * correction * magnitude * suppression
}

func (s swTerms) temperature(t float64) float64 {
	vt := s.vs * t
	correction := math.Pow(vt*vt/s.fpMk, swTempExp)
	return swTempNorm * correction * s.rTerm * math.Pow(t, -0.5)
}
