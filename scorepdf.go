package scorepdf

import (
	"github.com/gompdf/scorepdf/pkg/api"
)

type Generator = api.Generator
type Options = api.Options
type Option = api.Option
type Result = api.Result
type Table = api.Table
type Plan = api.Plan

func New() *Generator                           { return api.New() }
func NewWithOptions(options Options) *Generator { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }

var (
	WithCapacities    = api.WithCapacities
	WithScoreBounds   = api.WithScoreBounds
	WithAxis          = api.WithAxis
	WithDPI           = api.WithDPI
	WithWorkers       = api.WithWorkers
	WithTitle         = api.WithTitle
	WithSubtitles     = api.WithSubtitles
	WithFitMode       = api.WithFitMode
	WithLogo          = api.WithLogo
	WithAuthor        = api.WithAuthor
	WithSubject       = api.WithSubject
	WithKeywords      = api.WithKeywords
	WithStrictAverage = api.WithStrictAverage
	WithOrientation   = api.WithOrientation
	WithChartStore    = api.WithChartStore
	WithResourcePath  = api.WithResourcePath
	WithLogger        = api.WithLogger
	WithMetrics       = api.WithMetrics
)

const (
	FitWidth = api.FitWidth
	FitFill  = api.FitFill
)

const (
	OrientationAuto       = api.OrientationAuto
	OrientationAttribute  = api.OrientationAttribute
	OrientationIndividual = api.OrientationIndividual
)
