// Package config loads the JSON configuration that fixes a model's
// construction constants and the parameter point to evaluate.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/shockcooling/internal/model"
	"github.com/banshee-data/shockcooling/internal/sweep"
	"github.com/banshee-data/shockcooling/internal/units"
)

// DefaultConfigPath is the path to the canonical model defaults file.
const DefaultConfigPath = "config/model.defaults.json"

// Built-in defaults used when a field is omitted.
const (
	DefaultModel       = model.SWRSGName
	DefaultMcore       = 1.0
	DefaultKappa       = model.DefaultKappa
	DefaultTimes       = "0.25:5:0.25"
	DefaultRadiusUnits = units.RSun
	DefaultWorkers     = 4
)

// ModelConfig is the root configuration. Parameter values are in the
// model's internal units (re in 1e13 cm, me in M_sun, ve in 1e9 cm/s,
// off in days).
type ModelConfig struct {
	Model *string  `json:"model,omitempty"`
	Mcore *float64 `json:"mcore,omitempty"`
	Kappa *float64 `json:"kappa,omitempty"`

	// Parameter point; omitted values fall back to the model's initial guess.
	Re  *float64 `json:"re,omitempty"`
	Me  *float64 `json:"me,omitempty"`
	Ve  *float64 `json:"ve,omitempty"`
	Off *float64 `json:"off,omitempty"`

	// Observation times in days: comma-separated list or "min:max:step".
	Times       *string `json:"times,omitempty"`
	RadiusUnits *string `json:"radius_units,omitempty"`
	Workers     *int    `json:"workers,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyModelConfig returns a ModelConfig with all fields set to nil.
func EmptyModelConfig() *ModelConfig {
	return &ModelConfig{}
}

// DefaultModelConfig returns a ModelConfig with every construction and
// output field populated from the built-in defaults.
func DefaultModelConfig() *ModelConfig {
	return &ModelConfig{
		Model:       ptrString(DefaultModel),
		Mcore:       ptrFloat64(DefaultMcore),
		Kappa:       ptrFloat64(DefaultKappa),
		Times:       ptrString(DefaultTimes),
		RadiusUnits: ptrString(DefaultRadiusUnits),
		Workers:     ptrInt(DefaultWorkers),
	}
}

// LoadModelConfig loads a ModelConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
// Fields omitted from the JSON file fall back to defaults via the Get* methods.
func LoadModelConfig(path string) (*ModelConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyModelConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ModelConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/<tool>/ or deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadModelConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid. Physical
// parameters are only checked for sign; the model reports the full
// domain error when it is constructed or evaluated.
func (c *ModelConfig) Validate() error {
	if c.Model != nil && strings.TrimSpace(*c.Model) == "" {
		return fmt.Errorf("model must not be empty")
	}

	positives := []struct {
		name string
		v    *float64
	}{
		{"mcore", c.Mcore},
		{"kappa", c.Kappa},
		{"re", c.Re},
		{"me", c.Me},
		{"ve", c.Ve},
	}
	for _, p := range positives {
		if p.v != nil && !(*p.v > 0) {
			return fmt.Errorf("%s must be positive, got %g", p.name, *p.v)
		}
	}

	if c.Off != nil && *c.Off < 0 {
		return fmt.Errorf("off must be non-negative, got %g", *c.Off)
	}

	if c.Times != nil && *c.Times != "" {
		if _, err := ParseTimes(*c.Times); err != nil {
			return fmt.Errorf("invalid times '%s': %w", *c.Times, err)
		}
	}

	if c.RadiusUnits != nil && !units.IsValid(*c.RadiusUnits) {
		return fmt.Errorf("radius_units must be one of %s, got %q", units.GetValidUnitsString(), *c.RadiusUnits)
	}

	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}

	return nil
}

// GetModel returns the model name or the default.
func (c *ModelConfig) GetModel() string {
	if c.Model == nil || *c.Model == "" {
		return DefaultModel
	}
	return *c.Model
}

// GetMcore returns the core mass in solar masses or the default.
func (c *ModelConfig) GetMcore() float64 {
	if c.Mcore == nil {
		return DefaultMcore
	}
	return *c.Mcore
}

// GetKappa returns the opacity or the default.
func (c *ModelConfig) GetKappa() float64 {
	if c.Kappa == nil {
		return DefaultKappa
	}
	return *c.Kappa
}

// GetTimes parses and returns the observation times.
func (c *ModelConfig) GetTimes() []float64 {
	spec := DefaultTimes
	if c.Times != nil && *c.Times != "" {
		spec = *c.Times
	}
	times, err := ParseTimes(spec)
	if err != nil {
		times, _ = ParseTimes(DefaultTimes) // default on parse error
	}
	return times
}

// GetRadiusUnits returns the radius report units or the default.
func (c *ModelConfig) GetRadiusUnits() string {
	if c.RadiusUnits == nil || *c.RadiusUnits == "" {
		return DefaultRadiusUnits
	}
	return *c.RadiusUnits
}

// GetWorkers returns the sweep worker count or the default.
func (c *ModelConfig) GetWorkers() int {
	if c.Workers == nil {
		return DefaultWorkers
	}
	return *c.Workers
}

// ParamOverrides returns the configured parameter values in [re, me, ve, off]
// order; nil entries were not set.
func (c *ModelConfig) ParamOverrides() [4]*float64 {
	return [4]*float64{c.Re, c.Me, c.Ve, c.Off}
}

// ParseTimes parses a comma-separated list of times or a "min:max:step"
// range. Times are returned in the order given.
func ParseTimes(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("no times given")
	}
	times, err := sweep.ParseParamList(s)
	if err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("%q yields no times (empty, reversed or too large range)", s)
	}
	return times, nil
}
