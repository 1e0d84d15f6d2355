// Package report renders evaluated shock-cooling curves as PNG plots.
package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/shockcooling/internal/model"
	"github.com/banshee-data/shockcooling/internal/units"
)

// Series is one labelled curve on a plot.
type Series struct {
	Label string
	Curve model.Curve
}

// maxSeries caps the legend; sweeps plot their first candidates only.
const maxSeries = 12

// CurvePlotter writes radius and temperature plots for a set of curves.
type CurvePlotter struct {
	OutputDir   string
	Title       string
	RadiusUnits string
	// LogTime plots the time axis logarithmically.
	LogTime bool
}

// NewCurvePlotter creates a plotter writing into outputDir.
func NewCurvePlotter(outputDir, title, radiusUnits string) *CurvePlotter {
	return &CurvePlotter{OutputDir: outputDir, Title: title, RadiusUnits: radiusUnits}
}

// WritePlots writes radius.png and temperature.png and returns their paths.
// Non-finite samples (for example at t = 0) are left out of the lines.
func (cp *CurvePlotter) WritePlots(series []Series) ([]string, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no curves to plot")
	}
	if len(series) > maxSeries {
		series = series[:maxSeries]
	}
	if err := os.MkdirAll(cp.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	pR := cp.newPlot("Photospheric Radius", fmt.Sprintf("Radius (%s)", cp.RadiusUnits))
	pT := cp.newPlot("Photospheric Temperature", "Temperature (K)")

	colors := generateColors(len(series))
	for i, s := range series {
		radius := units.ConvertRadii(s.Curve.Radius, cp.RadiusUnits)
		if err := addLine(pR, s.Label, colors[i], s.Curve.Time, radius, cp.LogTime); err != nil {
			return nil, fmt.Errorf("series %q radius: %w", s.Label, err)
		}
		if err := addLine(pT, s.Label, colors[i], s.Curve.Time, s.Curve.Temperature, cp.LogTime); err != nil {
			return nil, fmt.Errorf("series %q temperature: %w", s.Label, err)
		}
	}

	radiusFile := filepath.Join(cp.OutputDir, "radius.png")
	if err := pR.Save(10*vg.Inch, 6*vg.Inch, radiusFile); err != nil {
		return nil, fmt.Errorf("save radius plot: %w", err)
	}
	tempFile := filepath.Join(cp.OutputDir, "temperature.png")
	if err := pT.Save(10*vg.Inch, 6*vg.Inch, tempFile); err != nil {
		return nil, fmt.Errorf("save temperature plot: %w", err)
	}
	return []string{radiusFile, tempFile}, nil
}

func (cp *CurvePlotter) newPlot(what, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = what
	if cp.Title != "" {
		p.Title.Text = cp.Title + " - " + what
	}
	p.X.Label.Text = "Time since explosion (days)"
	p.Y.Label.Text = yLabel
	if cp.LogTime {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p
}

func addLine(p *plot.Plot, label string, c color.Color, xs, ys []float64, logX bool) error {
	pts := finitePoints(xs, ys, logX)
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

// finitePoints pairs xs and ys, dropping non-finite values and, on a log
// axis, non-positive times.
func finitePoints(xs, ys []float64, logX bool) plotter.XYs {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		x, y := xs[i], ys[i]
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		if logX && x <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts
}

// generateColors creates a palette of distinct colors for curve lines
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.45)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
