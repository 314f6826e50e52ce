// Package config defines the generator and server configuration and how it is
// layered from defaults, a YAML file and the environment.
package config

import (
	"errors"
	"strings"

	"github.com/gompdf/scorepdf/internal/failure"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// AttributeCapacity is the number of attributes per page.
	AttributeCapacity int `koanf:"attribute_capacity"`
	// GroupCapacity is the number of individuals per chart.
	GroupCapacity int `koanf:"group_capacity"`

	// ScoreMin and ScoreMax bound every accepted score.
	ScoreMin float64 `koanf:"score_min"`
	ScoreMax float64 `koanf:"score_max"`
	// AxisMin and AxisMax bound the drawn value axis.
	AxisMin float64 `koanf:"axis_min"`
	AxisMax float64 `koanf:"axis_max"`

	// ChartDPI is the chart raster resolution.
	ChartDPI float64 `koanf:"chart_dpi"`
	// Workers renders that many charts concurrently.
	Workers int `koanf:"workers"`

	Title     string `koanf:"title"`
	Subtitles bool   `koanf:"subtitles"`
	// FitMode is "width" or "fill".
	FitMode string `koanf:"fit_mode"`
	// Logo is a path or URL of an image drawn on every page.
	Logo string `koanf:"logo"`
	// StrictAverage rejects attributes without an explicit average_score.
	StrictAverage bool `koanf:"strict_average"`
	// Orientation is "auto", "attribute" or "individual".
	Orientation string `koanf:"orientation"`

	// Output is the report path written by the CLI.
	Output string `koanf:"output"`
	// ChartsDir, when set, keeps every rendered chart PNG.
	ChartsDir string `koanf:"charts_dir"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// StorageDir is where the server keeps generated reports.
	StorageDir string `koanf:"storage_dir"`
	// CORSOrigins is a comma-separated list of allowed origins.
	CORSOrigins string `koanf:"cors_origins"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		AttributeCapacity: 12,
		GroupCapacity:     3,
		ScoreMin:          0,
		ScoreMax:          10,
		AxisMin:           0,
		AxisMax:           10,
		ChartDPI:          150,
		Workers:           1,
		Title:             "Performance Report",
		Subtitles:         true,
		FitMode:           "width",
		Orientation:       "auto",
		Output:            "report.pdf",
		Addr:              ":8080",
		StorageDir:        "data",
		CORSOrigins:       "*",
	}
}

// Origins splits CORSOrigins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate reports every unusable setting at once.
func (c *Config) Validate() error {
	var problems failure.Problems
	if c.AttributeCapacity < 1 {
		problems.Add("attribute_capacity must be at least 1, got %d", c.AttributeCapacity)
	}
	if c.GroupCapacity < 1 {
		problems.Add("group_capacity must be at least 1, got %d", c.GroupCapacity)
	}
	if !(c.ScoreMin < c.ScoreMax) {
		problems.Add("score_min %g must be below score_max %g", c.ScoreMin, c.ScoreMax)
	}
	if !(c.AxisMin < c.AxisMax) {
		problems.Add("axis_min %g must be below axis_max %g", c.AxisMin, c.AxisMax)
	} else if c.ScoreMin < c.AxisMin || c.ScoreMax > c.AxisMax {
		problems.Add("score range [%g, %g] must lie within axis_min %g and axis_max %g", c.ScoreMin, c.ScoreMax, c.AxisMin, c.AxisMax)
	}
	if c.ChartDPI <= 0 {
		problems.Add("chart_dpi must be positive, got %g", c.ChartDPI)
	}
	if c.Workers < 1 {
		problems.Add("workers must be at least 1, got %d", c.Workers)
	}
	switch strings.ToLower(c.FitMode) {
	case "", "width", "fill":
	default:
		problems.Add("fit_mode must be width or fill, got %q", c.FitMode)
	}
	switch strings.ToLower(c.Orientation) {
	case "", "auto", "attribute", "individual":
	default:
		problems.Add("orientation must be auto, attribute or individual, got %q", c.Orientation)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		problems.Add("log_level %q is not a level", c.LogLevel)
	}
	if err := problems.Err(); err != nil {
		return failure.Validation("config", errors.Join(ErrInvalidConfig, err))
	}
	return nil
}
