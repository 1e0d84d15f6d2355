// Package sweep evaluates a shock-cooling model over a grid of parameter
// candidates. It includes range parsing, grid expansion, a concurrent runner
// and CSV output.
package sweep

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/shockcooling/internal/model"
)

// RangeSpec defines a floating-point parameter range for sweeping.
type RangeSpec struct {
	Min  float64
	Max  float64
	Step float64
}

// ParseRangeSpec parses a "min:max:step" string into a RangeSpec.
// Returns an error if the format is invalid or values cannot be parsed.
func ParseRangeSpec(s string) (RangeSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return RangeSpec{}, fmt.Errorf("invalid range format %q: expected min:max:step", s)
	}

	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid min value %q: %w", parts[0], err)
	}

	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid max value %q: %w", parts[1], err)
	}

	step, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return RangeSpec{}, fmt.Errorf("invalid step value %q: %w", parts[2], err)
	}

	if step <= 0 {
		return RangeSpec{}, fmt.Errorf("step must be positive, got %f", step)
	}

	return RangeSpec{Min: min, Max: max, Step: step}, nil
}

// GenerateRange generates a slice of float64 values from min to max (inclusive)
// stepping by step. Returns nil if min > max or the range is too large.
func GenerateRange(min, max, step float64) []float64 {
	if step <= 0 || min > max {
		return nil
	}

	const maxValues = 10000
	expectedCount := int((max-min)/step) + 1
	if expectedCount > maxValues || expectedCount < 0 {
		return nil
	}

	var result []float64
	for i := 0; i <= expectedCount; i++ {
		// Multiply rather than accumulate, then round off representation noise
		v := min + float64(i)*step
		rounded := math.Round(v*1e9) / 1e9
		if rounded > max+step*1e-9 {
			break
		}
		result = append(result, rounded)
	}
	return result
}

// ParseCSVFloat64s parses a comma-separated list of float64 values.
// Returns nil, nil for empty input strings.
func ParseCSVFloat64s(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseParamList parses a comma-separated list of floats or a range specification.
// If the string contains a colon, it is treated as "min:max:step" range spec.
func ParseParamList(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}

	if strings.Contains(s, ":") {
		spec, err := ParseRangeSpec(s)
		if err != nil {
			return nil, err
		}
		return GenerateRange(spec.Min, spec.Max, spec.Step), nil
	}

	return ParseCSVFloat64s(s)
}

// ExpandRanges generates the full cartesian product of multiple range specifications.
// Each spec string can be either "min:max:step" or comma-separated values.
// Empty specs take the matching entry of defaults.
func ExpandRanges(defaults []float64, specs ...string) ([][]float64, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	if len(defaults) != len(specs) {
		return nil, fmt.Errorf("got %d defaults for %d specs", len(defaults), len(specs))
	}

	values := make([][]float64, len(specs))
	for i, spec := range specs {
		v, err := ParseParamList(spec)
		if err != nil {
			return nil, fmt.Errorf("parsing spec %d (%q): %w", i, spec, err)
		}
		if len(v) == 0 {
			v = []float64{defaults[i]}
		}
		values[i] = v
	}

	// Validate before allocation
	const maxCombos = 100000
	total := int64(1)
	for _, v := range values {
		total *= int64(len(v))
		if total > maxCombos || total < 0 {
			return nil, fmt.Errorf("parameter combinations would exceed safe limit of %d", maxCombos)
		}
	}

	result := make([][]float64, total)
	for i := range result {
		result[i] = make([]float64, len(specs))
	}

	repeat := int64(1)
	for dim := len(specs) - 1; dim >= 0; dim-- {
		dimValues := values[dim]
		cycle := int64(len(dimValues))
		for i := int64(0); i < total; i++ {
			result[i][dim] = dimValues[(i/repeat)%cycle]
		}
		repeat *= cycle
	}

	return result, nil
}

// GridSpec holds one spec string per model parameter.
type GridSpec struct {
	Re  string
	Me  string
	Ve  string
	Off string
}

// Expand returns every candidate in the grid, in [re, me, ve, off] order
// with off varying fastest. Parameters with an empty spec take the value
// from base.
func (g GridSpec) Expand(base model.Params) ([]model.Params, error) {
	defaults := base.Vector()
	rows, err := ExpandRanges(defaults[:], g.Re, g.Me, g.Ve, g.Off)
	if err != nil {
		return nil, err
	}
	out := make([]model.Params, len(rows))
	for i, row := range rows {
		p, err := model.ParamsFromVector(row)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
