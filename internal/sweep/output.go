package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/shockcooling/internal/units"
)

// CSVWriter wraps csv.Writer with methods for sweep output. Summary gets
// one row per candidate, Curves one row per candidate and time.
type CSVWriter struct {
	Summary     *csv.Writer
	Curves      *csv.Writer
	RadiusUnits string
}

// NewCSVWriter creates a CSVWriter. Either writer may be nil to skip that output.
func NewCSVWriter(summary, curves io.Writer, radiusUnits string) *CSVWriter {
	c := &CSVWriter{RadiusUnits: radiusUnits}
	if summary != nil {
		c.Summary = csv.NewWriter(summary)
	}
	if curves != nil {
		c.Curves = csv.NewWriter(curves)
	}
	return c
}

// FormatSummaryHeaders returns the summary header column names.
func FormatSummaryHeaders(radiusUnits string) []string {
	return []string{
		"re", "me", "ve", "off", "status",
		"peak_temperature_k", "min_temperature_k",
		"mean_radius_" + radiusUnits, "radius_stddev_" + radiusUnits,
		"reason",
	}
}

// FormatCurveHeaders returns the curve header column names.
func FormatCurveHeaders(radiusUnits string) []string {
	return []string{"re", "me", "ve", "off", "t_days", "radius_" + radiusUnits, "temperature_k"}
}

// WriteHeaders writes the headers of both outputs.
func (c *CSVWriter) WriteHeaders() error {
	if c.Summary != nil {
		if err := c.Summary.Write(FormatSummaryHeaders(c.RadiusUnits)); err != nil {
			return err
		}
	}
	if c.Curves != nil {
		if err := c.Curves.Write(FormatCurveHeaders(c.RadiusUnits)); err != nil {
			return err
		}
	}
	return nil
}

// WriteResult writes one candidate to both outputs.
func (c *CSVWriter) WriteResult(r Result) error {
	params := []string{ff(r.Params.Re), ff(r.Params.Me), ff(r.Params.Ve), ff(r.Params.Off)}

	if c.Summary != nil {
		row := append([]string{}, params...)
		if r.Rejected {
			reason := ""
			if r.Err != nil {
				reason = r.Err.Error()
			}
			row = append(row, "rejected", "", "", "", "", reason)
		} else {
			row = append(row, "ok",
				ff(r.Summary.PeakTemperature),
				ff(r.Summary.MinTemperature),
				ff(units.ConvertRadius(r.Summary.MeanRadius, c.RadiusUnits)),
				ff(units.ConvertRadius(r.Summary.RadiusStdDev, c.RadiusUnits)),
				"")
		}
		if err := c.Summary.Write(row); err != nil {
			return err
		}
	}

	if c.Curves != nil && !r.Rejected {
		for i := range r.Curve.Time {
			row := append(append([]string{}, params...),
				ff(r.Curve.Time[i]),
				ff(units.ConvertRadius(r.Curve.Radius[i], c.RadiusUnits)),
				ff(r.Curve.Temperature[i]),
			)
			if err := c.Curves.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteResults writes every result and flushes.
func (c *CSVWriter) WriteResults(results []Result) error {
	for _, r := range results {
		if err := c.WriteResult(r); err != nil {
			return fmt.Errorf("writing candidate %d: %w", r.Index, err)
		}
	}
	return c.Flush()
}

// Flush flushes both writers and returns the first write error.
func (c *CSVWriter) Flush() error {
	for _, w := range []*csv.Writer{c.Summary, c.Curves} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	return nil
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
