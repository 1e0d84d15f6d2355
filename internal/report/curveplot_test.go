package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/shockcooling/internal/model"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestCurvePlotterWritesPNGs(t *testing.T) {
	m, err := model.NewSapirWaxmanRSG(1.0)
	require.NoError(t, err)
	times := []float64{0, 0.5, 1, 2, 4}

	var series []Series
	for _, re := range []float64{1, 2, 4} {
		c, err := m.Evaluate(times, model.Params{Re: re, Me: 0.5, Ve: 2})
		require.NoError(t, err)
		series = append(series, Series{Label: "re=" + strconv.FormatFloat(re, 'g', -1, 64), Curve: c})
	}

	for _, logTime := range []bool{false, true} {
		dir := filepath.Join(t.TempDir(), "plots")
		cp := NewCurvePlotter(dir, "SW RSG", "rsun")
		cp.LogTime = logTime

		paths, err := cp.WritePlots(series)
		require.NoError(t, err)
		require.Len(t, paths, 2)
		assert.Equal(t, filepath.Join(dir, "radius.png"), paths[0])
		assert.Equal(t, filepath.Join(dir, "temperature.png"), paths[1])

		for _, p := range paths {
			data, err := os.ReadFile(p)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, pngMagic), "%s is not a PNG", p)
		}
	}
}

func TestCurvePlotterNoSeries(t *testing.T) {
	_, err := NewCurvePlotter(t.TempDir(), "", "cm").WritePlots(nil)
	assert.Error(t, err)
}

func TestFinitePoints(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{math.NaN(), 10, math.Inf(1), 30}

	pts := finitePoints(xs, ys, false)
	require.Len(t, pts, 2)
	assert.Equal(t, 1.0, pts[0].X)
	assert.Equal(t, 30.0, pts[1].Y)

	pts = finitePoints([]float64{0, 1}, []float64{5, 6}, true)
	require.Len(t, pts, 1)
	assert.Equal(t, 1.0, pts[0].X)

	assert.Empty(t, finitePoints([]float64{1, 2}, nil, false))
}

func TestGenerateColors(t *testing.T) {
	assert.Nil(t, generateColors(0))
	colors := generateColors(4)
	require.Len(t, colors, 4)
	assert.NotEqual(t, colors[0], colors[1])
	assert.NotEqual(t, colors[1], colors[2])
}
