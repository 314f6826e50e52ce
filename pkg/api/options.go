package api

import (
	"strings"

	"github.com/gompdf/scorepdf/internal/config"
	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/gompdf/scorepdf/internal/layout"
	"github.com/gompdf/scorepdf/internal/pagination"
	"github.com/gompdf/scorepdf/internal/storage"
	"github.com/gompdf/scorepdf/internal/table"
	"github.com/gompdf/scorepdf/pkg/logger"
	"github.com/gompdf/scorepdf/pkg/metrics"
)

// Fit modes for chart images.
const (
	FitWidth = "width"
	FitFill  = "fill"
)

// Input orientations.
const (
	OrientationAuto       = "auto"
	OrientationAttribute  = "attribute"
	OrientationIndividual = "individual"
)

// Options represents configuration options for report generation
type Options struct {
	// Attributes per page and individuals per chart.
	AttributeCapacity int
	GroupCapacity     int

	// ScoreMin and ScoreMax bound every accepted score and average.
	ScoreMin float64
	ScoreMax float64
	// AxisMin and AxisMax bound the drawn value axis; the score range must
	// lie within them.
	AxisMin float64
	AxisMax float64

	// Chart raster resolution.
	DPI float64
	// Workers renders that many charts concurrently; output order never
	// depends on it.
	Workers int

	// Document
	Title     string
	Subtitles bool
	FitMode   string
	// Logo is a path, URL or data URL drawn on every page.
	Logo     string
	Author   string
	Subject  string
	Keywords string

	// StrictAverage rejects attributes that carry no average_score.
	StrictAverage bool
	// Orientation says whether the input's top level names attributes or
	// individuals: auto, attribute or individual.
	Orientation string

	// ChartStore, when set, receives every rendered chart PNG.
	ChartStore  storage.BlobStore
	ChartPrefix string

	// ResourcePaths are searched for relative inputs and logos.
	ResourcePaths []string

	Logger  logger.Logger
	Metrics *metrics.Manager
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		AttributeCapacity: pagination.DefaultAttributeCapacity,
		GroupCapacity:     pagination.DefaultGroupCapacity,
		ScoreMin:          table.DefaultMin,
		ScoreMax:          table.DefaultMax,
		AxisMin:           layout.DefaultAxisMin,
		AxisMax:           layout.DefaultAxisMax,
		DPI:               150,
		Workers:           1,
		Title:             "Performance Report",
		Subtitles:         true,
		FitMode:           FitWidth,
		Orientation:       OrientationAuto,
		Subject:           "Performance comparison",
	}
}

// OptionsFromConfig maps loaded configuration onto generator options.
func OptionsFromConfig(cfg *config.Config) Options {
	o := DefaultOptions()
	o.AttributeCapacity = cfg.AttributeCapacity
	o.GroupCapacity = cfg.GroupCapacity
	o.ScoreMin = cfg.ScoreMin
	o.ScoreMax = cfg.ScoreMax
	o.AxisMin = cfg.AxisMin
	o.AxisMax = cfg.AxisMax
	o.DPI = cfg.ChartDPI
	o.Workers = cfg.Workers
	o.Title = cfg.Title
	o.Subtitles = cfg.Subtitles
	o.FitMode = cfg.FitMode
	o.Logo = cfg.Logo
	o.StrictAverage = cfg.StrictAverage
	o.Orientation = cfg.Orientation
	return o
}

// Validate reports every unusable option at once.
func (o Options) Validate() error {
	var problems failure.Problems
	if o.AttributeCapacity < 1 {
		problems.Add("attribute capacity must be at least 1, got %d", o.AttributeCapacity)
	}
	if o.GroupCapacity < 1 {
		problems.Add("group capacity must be at least 1, got %d", o.GroupCapacity)
	}
	if !(o.ScoreMin < o.ScoreMax) {
		problems.Add("score minimum %g must be below maximum %g", o.ScoreMin, o.ScoreMax)
	}
	if !(o.AxisMin < o.AxisMax) {
		problems.Add("axis minimum %g must be below maximum %g", o.AxisMin, o.AxisMax)
	} else if o.ScoreMin < o.AxisMin || o.ScoreMax > o.AxisMax {
		problems.Add("score range [%g, %g] must lie within the axis [%g, %g]", o.ScoreMin, o.ScoreMax, o.AxisMin, o.AxisMax)
	}
	if o.DPI <= 0 {
		problems.Add("dpi must be positive, got %g", o.DPI)
	}
	if o.Workers < 1 {
		problems.Add("workers must be at least 1, got %d", o.Workers)
	}
	switch strings.ToLower(o.FitMode) {
	case "", FitWidth, FitFill:
	default:
		problems.Add("fit mode must be %s or %s, got %q", FitWidth, FitFill, o.FitMode)
	}
	if _, err := table.ParseOrientation(o.Orientation); err != nil {
		problems.Add("orientation must be %s, %s or %s, got %q", OrientationAuto, OrientationAttribute, OrientationIndividual, o.Orientation)
	}
	if err := problems.Err(); err != nil {
		return failure.Validation("options", err)
	}
	return nil
}

// WithCapacities sets attributes per page and individuals per chart
func WithCapacities(attributes, individuals int) Option {
	return func(o *Options) {
		o.AttributeCapacity = attributes
		o.GroupCapacity = individuals
	}
}

// WithScoreBounds sets the accepted score range
func WithScoreBounds(min, max float64) Option {
	return func(o *Options) {
		o.ScoreMin = min
		o.ScoreMax = max
	}
}

// WithAxis sets the drawn value axis
func WithAxis(min, max float64) Option {
	return func(o *Options) {
		o.AxisMin = min
		o.AxisMax = max
	}
}

// WithDPI sets the chart resolution
func WithDPI(dpi float64) Option {
	return func(o *Options) {
		o.DPI = dpi
	}
}

// WithWorkers sets the number of concurrent chart renders
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithTitle sets the page title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithSubtitles toggles the per-page slice description
func WithSubtitles(on bool) Option {
	return func(o *Options) {
		o.Subtitles = on
	}
}

// WithFitMode sets how charts are sized on the page
func WithFitMode(mode string) Option {
	return func(o *Options) {
		o.FitMode = mode
	}
}

// WithLogo sets the header logo reference
func WithLogo(ref string) Option {
	return func(o *Options) {
		o.Logo = ref
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithStrictAverage requires an explicit average for every attribute
func WithStrictAverage(strict bool) Option {
	return func(o *Options) {
		o.StrictAverage = strict
	}
}

// WithOrientation forces how the input is read: auto, attribute or individual
func WithOrientation(orientation string) Option {
	return func(o *Options) {
		o.Orientation = orientation
	}
}

// WithChartStore keeps rendered charts under prefix in store
func WithChartStore(store storage.BlobStore, prefix string) Option {
	return func(o *Options) {
		o.ChartStore = store
		o.ChartPrefix = prefix
	}
}

// WithResourcePath adds a path to search for inputs and logos
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithMetrics sets the metrics manager
func WithMetrics(m *metrics.Manager) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}
