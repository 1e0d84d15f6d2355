// Command shockcool evaluates analytic shock-cooling models of early
// supernova emission. It prints the photospheric radius and temperature
// for one parameter point, or sweeps a parameter grid and writes the
// results to CSV, PNG plots and SQLite.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/shockcooling/internal/config"
	"github.com/banshee-data/shockcooling/internal/db"
	"github.com/banshee-data/shockcooling/internal/model"
	"github.com/banshee-data/shockcooling/internal/monitoring"
	"github.com/banshee-data/shockcooling/internal/report"
	"github.com/banshee-data/shockcooling/internal/sweep"
	"github.com/banshee-data/shockcooling/internal/units"
	"github.com/banshee-data/shockcooling/internal/version"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("shockcool: %v", err)
	}
}

// options holds the parsed command line.
type options struct {
	configPath string
	csvPath    string
	plotDir    string
	dbPath     string
	logTime    bool
	listModels bool
	version    bool
	verbose    bool
	grid       sweep.GridSpec
}

func (o options) sweeping() bool {
	return o.grid != sweep.GridSpec{}
}

// parseFlags parses args into options and a config whose fields are set
// only for flags given explicitly, so they override the config file.
func parseFlags(args []string) (options, *config.ModelConfig, error) {
	fs := flag.NewFlagSet("shockcool", flag.ContinueOnError)
	var o options

	fs.StringVar(&o.configPath, "config", "", "JSON model config (see "+config.DefaultConfigPath+")")
	modelName := fs.String("model", config.DefaultModel, "Model name (see -list-models)")
	mcore := fs.Float64("mcore", config.DefaultMcore, "Progenitor core mass (M_sun)")
	kappa := fs.Float64("kappa", config.DefaultKappa, "Opacity (cm^2/g)")
	re := fs.Float64("re", 0, "Envelope radius (1e13 cm); defaults to the model's initial guess")
	me := fs.Float64("me", 0, "Envelope mass (M_sun); defaults to the model's initial guess")
	ve := fs.Float64("ve", 0, "Shock velocity (1e9 cm/s); defaults to the model's initial guess")
	off := fs.Float64("off", 0, "Time offset (days); defaults to the model's initial guess")
	times := fs.String("times", config.DefaultTimes, "Observation times in days: comma-separated or min:max:step")
	radiusUnits := fs.String("radius-units", config.DefaultRadiusUnits, "Radius output units: "+units.GetValidUnitsString())
	workers := fs.Int("workers", config.DefaultWorkers, "Concurrent sweep workers")

	fs.StringVar(&o.grid.Re, "sweep-re", "", "Sweep envelope radius: comma-separated or min:max:step")
	fs.StringVar(&o.grid.Me, "sweep-me", "", "Sweep envelope mass: comma-separated or min:max:step")
	fs.StringVar(&o.grid.Ve, "sweep-ve", "", "Sweep shock velocity: comma-separated or min:max:step")
	fs.StringVar(&o.grid.Off, "sweep-off", "", "Sweep time offset: comma-separated or min:max:step")

	fs.StringVar(&o.csvPath, "csv", "", "Write summary CSV here; curves go to <name>-curves.csv")
	fs.StringVar(&o.plotDir, "plot", "", "Write radius.png and temperature.png into this directory")
	fs.BoolVar(&o.logTime, "log-time", false, "Plot time on a logarithmic axis")
	fs.StringVar(&o.dbPath, "db", "", "Record the evaluation in this SQLite database")
	fs.BoolVar(&o.listModels, "list-models", false, "List available models and exit")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")
	fs.BoolVar(&o.verbose, "v", false, "Verbose logging (logs rejected sweep candidates)")

	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	if fs.NArg() > 0 {
		return o, nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	flags := config.EmptyModelConfig()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			flags.Model = modelName
		case "mcore":
			flags.Mcore = mcore
		case "kappa":
			flags.Kappa = kappa
		case "re":
			flags.Re = re
		case "me":
			flags.Me = me
		case "ve":
			flags.Ve = ve
		case "off":
			flags.Off = off
		case "times":
			flags.Times = times
		case "radius-units":
			flags.RadiusUnits = radiusUnits
		case "workers":
			flags.Workers = workers
		}
	})
	return o, flags, nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(path string, flags *config.ModelConfig) (*config.ModelConfig, error) {
	cfg := config.DefaultModelConfig()
	if path != "" {
		loaded, err := config.LoadModelConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	mergeConfig(cfg, flags)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func mergeConfig(dst, src *config.ModelConfig) {
	if src.Model != nil {
		dst.Model = src.Model
	}
	if src.Mcore != nil {
		dst.Mcore = src.Mcore
	}
	if src.Kappa != nil {
		dst.Kappa = src.Kappa
	}
	if src.Re != nil {
		dst.Re = src.Re
	}
	if src.Me != nil {
		dst.Me = src.Me
	}
	if src.Ve != nil {
		dst.Ve = src.Ve
	}
	if src.Off != nil {
		dst.Off = src.Off
	}
	if src.Times != nil {
		dst.Times = src.Times
	}
	if src.RadiusUnits != nil {
		dst.RadiusUnits = src.RadiusUnits
	}
	if src.Workers != nil {
		dst.Workers = src.Workers
	}
}

// baseParams starts from the model's initial guess and applies configured values.
func baseParams(m model.ShockCoolingModel, cfg *config.ModelConfig) model.Params {
	v := m.Bounds().Initial.Vector()
	for i, o := range cfg.ParamOverrides() {
		if o != nil {
			v[i] = *o
		}
	}
	p, _ := model.ParamsFromVector(v[:])
	return p
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, flags, err := parseFlags(args)
	if err != nil {
		return err
	}
	monitoring.SetVerbose(o.verbose)

	reg := model.DefaultRegistry()
	if o.version {
		fmt.Fprintln(stdout, version.String())
		return nil
	}
	if o.listModels {
		for _, info := range reg.List() {
			fmt.Fprintf(stdout, "%-10s %s\n           %s\n", info.Name, info.DisplayName, info.Description)
		}
		return nil
	}

	cfg, err := loadConfig(o.configPath, flags)
	if err != nil {
		return err
	}

	m, err := reg.New(cfg.GetModel(), cfg.GetMcore(), model.WithKappa(cfg.GetKappa()))
	if err != nil {
		return err
	}
	base := baseParams(m, cfg)
	times := cfg.GetTimes()

	var candidates []model.Params
	if o.sweeping() {
		candidates, err = o.grid.Expand(base)
		if err != nil {
			return fmt.Errorf("sweep grid: %w", err)
		}
		monitoring.Logf("Sweeping %d candidates over %d times with %d workers", len(candidates), len(times), cfg.GetWorkers())
	} else {
		candidates = []model.Params{base}
	}

	start := time.Now()
	results, err := sweep.NewRunner(m, times, cfg.GetWorkers()).Run(ctx, candidates)
	if err != nil {
		return err
	}
	accepted, rejected := sweep.Counts(results)
	monitoring.Debugf("Evaluated %d candidates in %v", len(results), time.Since(start))

	if o.sweeping() {
		monitoring.Logf("Sweep complete: %d accepted, %d rejected", accepted, rejected)
		if o.csvPath == "" {
			w := sweep.NewCSVWriter(stdout, nil, cfg.GetRadiusUnits())
			if err := w.WriteHeaders(); err != nil {
				return err
			}
			if err := w.WriteResults(results); err != nil {
				return err
			}
		}
	} else {
		if results[0].Rejected {
			return results[0].Err
		}
		if err := printCurve(stdout, m, results[0], cfg.GetRadiusUnits()); err != nil {
			return err
		}
	}

	if o.csvPath != "" {
		if err := writeCSV(o.csvPath, results, cfg.GetRadiusUnits()); err != nil {
			return err
		}
	}
	if o.plotDir != "" {
		if err := writePlots(o, m, results, cfg.GetRadiusUnits()); err != nil {
			return err
		}
	}
	if o.dbPath != "" {
		if err := record(o.dbPath, m, times, results); err != nil {
			return err
		}
	}
	return nil
}

// printCurve writes the parameter point in reporting units and the curve table.
func printCurve(w io.Writer, m model.ShockCoolingModel, res sweep.Result, radiusUnits string) error {
	phys := m.Scale().ToPhysical(res.Params)
	u := m.Units()

	fmt.Fprintf(w, "# %s\n", m.DisplayName())
	fmt.Fprintf(w, "# re = %.4g %s, me = %.4g %s, ve = %.4g %s, off = %.4g %s\n",
		phys.Re, u.Re, phys.Me, u.Me, phys.Ve, u.Ve, phys.Off, u.Off)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "t_days\tradius_%s\ttemperature_k\n", radiusUnits)
	c := res.Curve
	for i := range c.Time {
		fmt.Fprintf(tw, "%.4g\t%.6g\t%.6g\n", c.Time[i], units.ConvertRadius(c.Radius[i], radiusUnits), c.Temperature[i])
	}
	return tw.Flush()
}

func writeCSV(path string, results []sweep.Result, radiusUnits string) error {
	summary, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create output file %s: %w", path, err)
	}
	defer summary.Close()

	curvesPath := strings.TrimSuffix(path, ".csv") + "-curves.csv"
	curves, err := os.Create(curvesPath)
	if err != nil {
		return fmt.Errorf("could not create curves file %s: %w", curvesPath, err)
	}
	defer curves.Close()

	w := sweep.NewCSVWriter(summary, curves, radiusUnits)
	if err := w.WriteHeaders(); err != nil {
		return err
	}
	if err := w.WriteResults(results); err != nil {
		return err
	}
	monitoring.Logf("Wrote %s and %s", path, curvesPath)
	return nil
}

func writePlots(o options, m model.ShockCoolingModel, results []sweep.Result, radiusUnits string) error {
	var series []report.Series
	for _, r := range results {
		if r.Rejected {
			continue
		}
		p := r.Params
		label := fmt.Sprintf("re=%.3g me=%.3g ve=%.3g", p.Re, p.Me, p.Ve)
		series = append(series, report.Series{Label: label, Curve: r.Curve})
	}
	if len(series) == 0 {
		return fmt.Errorf("no accepted candidates to plot")
	}

	cp := report.NewCurvePlotter(o.plotDir, m.DisplayName(), radiusUnits)
	cp.LogTime = o.logTime
	paths, err := cp.WritePlots(series)
	if err != nil {
		return err
	}
	monitoring.Logf("Wrote plots: %s", strings.Join(paths, ", "))
	return nil
}

func record(path string, m model.ShockCoolingModel, times []float64, results []sweep.Result) error {
	store, err := db.NewDB(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	runID, err := store.RecordRun(m, times, results)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	monitoring.Logf("Recorded run %s in %s", runID, path)
	return nil
}
