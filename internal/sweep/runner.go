package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/shockcooling/internal/model"
	"github.com/banshee-data/shockcooling/internal/monitoring"
)

// Summary condenses one evaluated curve.
type Summary struct {
	PeakTemperature float64 `json:"peak_temperature_k"`
	MinTemperature  float64 `json:"min_temperature_k"`
	MeanRadius      float64 `json:"mean_radius_cm"`
	RadiusStdDev    float64 `json:"radius_stddev_cm"`
}

// Result is the outcome of evaluating one candidate. Rejected is set when
// the model refused the candidate with a domain error; Err holds the reason.
type Result struct {
	Index    int
	Params   model.Params
	Curve    model.Curve
	Summary  Summary
	Rejected bool
	Err      error
}

// Runner evaluates candidates against a shared, read-only time series.
type Runner struct {
	Model   model.ShockCoolingModel
	Times   []float64
	Workers int
}

// NewRunner creates a Runner. workers < 1 selects runtime.NumCPU().
func NewRunner(m model.ShockCoolingModel, times []float64, workers int) *Runner {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Runner{Model: m, Times: times, Workers: workers}
}

// Run evaluates every candidate concurrently and returns results in
// candidate order. Each candidate's Off shifts the observed times. Domain
// errors reject the candidate and the sweep continues; any other error, or
// cancellation of ctx, stops the sweep.
func (r *Runner) Run(ctx context.Context, candidates []model.Params) ([]Result, error) {
	if r.Model == nil {
		return nil, fmt.Errorf("sweep runner has no model")
	}

	results := make([]Result, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)

	for i, p := range candidates {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.evaluate(i, p)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// evaluate runs the model at the time since explosion, t - p.Off, and
// reports the curve against the observed times. Observations that fall
// before the explosion reject the candidate.
func (r *Runner) evaluate(i int, p model.Params) (Result, error) {
	res := Result{Index: i, Params: p}
	c, err := r.Model.Evaluate(ShiftTimes(r.Times, p.Off), p)
	if err != nil {
		if errors.Is(err, model.ErrDomain) {
			monitoring.Debugf("candidate %d %+v rejected: %v", i, p, err)
			res.Rejected = true
			res.Err = err
			return res, nil
		}
		return Result{}, fmt.Errorf("candidate %d: %w", i, err)
	}
	c.Time = append([]float64(nil), r.Times...)
	res.Curve = c
	res.Summary = Summarize(c)
	return res, nil
}

// ShiftTimes returns observed times t converted to time since explosion for
// a time offset off. t itself is never modified.
func ShiftTimes(t []float64, off float64) []float64 {
	if off == 0 {
		return t
	}
	shifted := make([]float64, len(t))
	copy(shifted, t)
	floats.AddConst(-off, shifted)
	return shifted
}

// Summarize computes summary statistics of a curve. Empty curves yield NaN.
func Summarize(c model.Curve) Summary {
	if c.Len() == 0 {
		nan := math.NaN()
		return Summary{PeakTemperature: nan, MinTemperature: nan, MeanRadius: nan, RadiusStdDev: nan}
	}
	mean, std := stat.MeanStdDev(c.Radius, nil)
	if c.Len() == 1 {
		std = 0
	}
	return Summary{
		PeakTemperature: floats.Max(c.Temperature),
		MinTemperature:  floats.Min(c.Temperature),
		MeanRadius:      mean,
		RadiusStdDev:    std,
	}
}

// Counts returns the number of accepted and rejected results.
func Counts(results []Result) (accepted, rejected int) {
	for _, r := range results {
		if r.Rejected {
			rejected++
		} else {
			accepted++
		}
	}
	return accepted, rejected
}
