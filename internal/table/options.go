package table

import (
	"math"
	"strings"

	"github.com/gompdf/scorepdf/internal/failure"
)

// Orientation tells the parser which level of the input names attributes.
type Orientation int

const (
	// OrientationAuto picks IndividualMajor when the top level carries the
	// reserved average key and AttributeMajor otherwise.
	OrientationAuto Orientation = iota
	// OrientationAttributeMajor reads {attribute: {individual: score, average_score: avg}}.
	OrientationAttributeMajor
	// OrientationIndividualMajor reads {individual: {attribute: score}, average_score: {attribute: avg}}.
	OrientationIndividualMajor
)

// String returns the configuration name of o.
func (o Orientation) String() string {
	switch o {
	case OrientationAttributeMajor:
		return "attribute"
	case OrientationIndividualMajor:
		return "individual"
	default:
		return "auto"
	}
}

// ParseOrientation reads "auto", "attribute" or "individual". The empty
// string means auto.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return OrientationAuto, nil
	case "attribute", "attribute-major":
		return OrientationAttributeMajor, nil
	case "individual", "individual-major":
		return OrientationIndividualMajor, nil
	}
	return OrientationAuto, failure.Validationf("orientation", "unknown orientation %q, want auto, attribute or individual", s)
}

type options struct {
	min, max      float64
	strictAverage bool
	orientation   Orientation
}

func defaultOptions() options {
	return options{min: DefaultMin, max: DefaultMax}
}

func (o options) inBounds(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= o.min && v <= o.max
}

// Option configures table construction and parsing.
type Option func(*options)

// WithBounds sets the accepted score range.
func WithBounds(min, max float64) Option {
	return func(o *options) {
		if min < max {
			o.min, o.max = min, max
		}
	}
}

// WithStrictAverage rejects rows without an explicit average instead of
// computing one.
func WithStrictAverage(strict bool) Option {
	return func(o *options) {
		o.strictAverage = strict
	}
}

// WithOrientation forces the input orientation.
func WithOrientation(orientation Orientation) Option {
	return func(o *options) {
		o.orientation = orientation
	}
}
