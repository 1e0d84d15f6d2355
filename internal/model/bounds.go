package model

import "fmt"

// Bounds is the starting point and box constraints for a parameter search.
type Bounds struct {
	Initial Params `json:"initial"`
	Lower   Params `json:"lower_bounds"`
	Upper   Params `json:"upper_bounds"`
}

// Validate checks lower <= initial <= upper for every parameter.
func (b Bounds) Validate() error {
	lo, x0, hi := b.Lower.Vector(), b.Initial.Vector(), b.Upper.Vector()
	for i := range lo {
		if !(lo[i] <= x0[i] && x0[i] <= hi[i]) {
			return fmt.Errorf("bounds for %s: want %g <= %g <= %g", ParamNames[i], lo[i], x0[i], hi[i])
		}
	}
	return nil
}

// Contains reports whether p lies inside the box [Lower, Upper].
func (b Bounds) Contains(p Params) bool {
	lo, v, hi := b.Lower.Vector(), p.Vector(), b.Upper.Vector()
	for i := range v {
		if v[i] < lo[i] || v[i] > hi[i] {
			return false
		}
	}
	return true
}

var swBounds = Bounds{
	Initial: Params{Re: 2, Me: 0.5, Ve: 2, Off: 0.01},
	Lower:   Params{Re: 0.01, Me: 0.01, Ve: 0.01, Off: 0.001},
	Upper:   Params{Re: 10, Me: 10, Ve: 10, Off: 0.5},
}
