package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/shockcooling/internal/model"
)

func newSWModel(t *testing.T) *model.SapirWaxmanRSG {
	t.Helper()
	m, err := model.NewSapirWaxmanRSG(1.0)
	require.NoError(t, err)
	return m
}

// brokenModel fails every evaluation with a non-domain error.
type brokenModel struct {
	*model.SapirWaxmanRSG
}

func (brokenModel) Evaluate(t []float64, p model.Params) (model.Curve, error) {
	return model.Curve{}, fmt.Errorf("backend unavailable")
}

func TestRunnerRunMatchesSerialEvaluation(t *testing.T) {
	m := newSWModel(t)
	times := []float64{0.5, 1, 2, 4}
	candidates, err := GridSpec{Re: "1:5:1", Me: "0.5,1", Ve: "1,2,3"}.Expand(m.Bounds().Initial)
	require.NoError(t, err)
	require.Len(t, candidates, 30)

	results, err := NewRunner(m, times, 8).Run(context.Background(), candidates)
	require.NoError(t, err)
	require.Len(t, results, len(candidates))

	for i, res := range results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, candidates[i], res.Params)
		assert.False(t, res.Rejected)

		want, err := m.Evaluate(ShiftTimes(times, candidates[i].Off), candidates[i])
		require.NoError(t, err)
		want.Time = times
		assert.Equal(t, want, res.Curve)
	}

	accepted, rejected := Counts(results)
	assert.Equal(t, 30, accepted)
	assert.Equal(t, 0, rejected)
}

func TestRunnerRejectsDomainErrorsAndContinues(t *testing.T) {
	m := newSWModel(t)
	candidates := []model.Params{
		{Re: 2, Me: 0.5, Ve: 2},
		{Re: 2, Me: 0, Ve: 2},
		{Re: 2, Me: 0.5, Ve: -1},
		{Re: 3, Me: 1, Ve: 2},
	}

	results, err := NewRunner(m, []float64{1}, 2).Run(context.Background(), candidates)
	require.NoError(t, err)

	assert.False(t, results[0].Rejected)
	assert.True(t, results[1].Rejected)
	assert.True(t, results[2].Rejected)
	assert.False(t, results[3].Rejected)

	var de *model.DomainError
	require.ErrorAs(t, results[1].Err, &de)
	assert.Equal(t, "me", de.Param)
	require.ErrorAs(t, results[2].Err, &de)
	assert.Equal(t, "ve", de.Param)

	accepted, rejected := Counts(results)
	assert.Equal(t, 2, accepted)
	assert.Equal(t, 2, rejected)
}

func TestRunnerAppliesTimeOffset(t *testing.T) {
	m := newSWModel(t)
	times := []float64{1, 2}
	candidates, err := GridSpec{Off: "0.001,0.5"}.Expand(m.Bounds().Initial)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	results, err := NewRunner(m, times, 2).Run(context.Background(), candidates)
	require.NoError(t, err)

	early, late := results[0].Curve, results[1].Curve
	assert.Equal(t, times, early.Time)
	assert.Equal(t, times, late.Time)
	assert.NotEqual(t, early.Temperature, late.Temperature)
	assert.NotEqual(t, early.Radius, late.Radius)
	// a later explosion leaves less time to cool
	for i := range times {
		assert.Greater(t, late.Temperature[i], early.Temperature[i])
	}

	r, temp, err := m.Luminosity([]float64{0.5, 1.5}, 2, 0.5, 2)
	require.NoError(t, err)
	assert.Equal(t, r, late.Radius)
	assert.Equal(t, temp, late.Temperature)
}

func TestRunnerRejectsObservationsBeforeExplosion(t *testing.T) {
	m := newSWModel(t)
	times := []float64{0.25, 1}
	candidates := []model.Params{
		{Re: 2, Me: 0.5, Ve: 2, Off: 0.1},
		{Re: 2, Me: 0.5, Ve: 2, Off: 0.5},
	}

	results, err := NewRunner(m, times, 2).Run(context.Background(), candidates)
	require.NoError(t, err)

	assert.False(t, results[0].Rejected)
	require.True(t, results[1].Rejected)
	var de *model.DomainError
	require.ErrorAs(t, results[1].Err, &de)
	assert.Equal(t, "t[0]", de.Param)
	assert.InDelta(t, -0.25, de.Value, 1e-12)
}

func TestShiftTimes(t *testing.T) {
	times := []float64{1, 2, 4}

	assert.Equal(t, []float64{0.75, 1.75, 3.75}, ShiftTimes(times, 0.25))
	assert.Equal(t, []float64{1, 2, 4}, times, "input must not change")
	assert.Equal(t, times, ShiftTimes(times, 0))
	assert.Empty(t, ShiftTimes(nil, 0.5))
}

func TestRunnerStopsOnOtherErrors(t *testing.T) {
	m := brokenModel{newSWModel(t)}

	_, err := NewRunner(m, []float64{1}, 2).Run(context.Background(), []model.Params{{Re: 1, Me: 1, Ve: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unavailable")
	assert.False(t, errors.Is(err, model.ErrDomain))
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(newSWModel(t), []float64{1}, 1).Run(ctx, []model.Params{{Re: 1, Me: 1, Ve: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerNoModel(t *testing.T) {
	_, err := (&Runner{Workers: 1}).Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewRunnerDefaultsWorkers(t *testing.T) {
	r := NewRunner(newSWModel(t), nil, 0)
	assert.GreaterOrEqual(t, r.Workers, 1)
}

func TestSummarize(t *testing.T) {
	c := model.Curve{
		Time:        []float64{1, 2, 3},
		Radius:      []float64{1, 2, 3},
		Temperature: []float64{30, 20, 10},
	}
	s := Summarize(c)
	assert.Equal(t, 30.0, s.PeakTemperature)
	assert.Equal(t, 10.0, s.MinTemperature)
	assert.InDelta(t, 2.0, s.MeanRadius, 1e-12)
	assert.InDelta(t, 1.0, s.RadiusStdDev, 1e-12)

	one := Summarize(model.Curve{Time: []float64{1}, Radius: []float64{5}, Temperature: []float64{7}})
	assert.Equal(t, 0.0, one.RadiusStdDev)
	assert.Equal(t, 5.0, one.MeanRadius)

	empty := Summarize(model.Curve{})
	assert.True(t, math.IsNaN(empty.PeakTemperature))
	assert.True(t, math.IsNaN(empty.MeanRadius))
}
