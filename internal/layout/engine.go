// Package layout computes chart geometry: where each bar, average mark and
// label of a page plan sits, in data units, before any rasterization.
package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/gompdf/scorepdf/internal/pagination"
)

// Default geometry constants.
const (
	DefaultAxisMin     = 0.0
	DefaultAxisMax     = 10.0
	DefaultClusterSpan = 0.8
	DefaultToneLow     = 0.15
	DefaultToneHigh    = 0.85
	// DefaultAnnotationGap is the distance past the axis maximum where row
	// annotations start.
	DefaultAnnotationGap = 0.15
)

// Options represents options for the layout engine
type Options struct {
	AxisMin float64
	AxisMax float64
	// ClusterSpan is the share of a row taken by its bars; the rest is the
	// gap before the next row.
	ClusterSpan float64
	// GroupCapacity fixes the colormap sampling so a slot keeps its color
	// on every page, whatever the size of the group.
	GroupCapacity int
	// ToneLow and ToneHigh bound the colormap sub-range used for bars.
	ToneLow  float64
	ToneHigh float64
	// AnnotationGap and AnnotationWidth place row annotations past AxisMax.
	AnnotationGap   float64
	AnnotationWidth float64
}

// DefaultOptions returns the default geometry.
func DefaultOptions() Options {
	return Options{
		AxisMin:         DefaultAxisMin,
		AxisMax:         DefaultAxisMax,
		ClusterSpan:     DefaultClusterSpan,
		GroupCapacity:   pagination.DefaultGroupCapacity,
		ToneLow:         DefaultToneLow,
		ToneHigh:        DefaultToneHigh,
		AnnotationGap:   DefaultAnnotationGap,
		AnnotationWidth: 3,
	}
}

// Validate reports unusable geometry.
func (o Options) Validate() error {
	var problems failure.Problems
	if !(o.AxisMin < o.AxisMax) {
		problems.Add("axis minimum %g must be below maximum %g", o.AxisMin, o.AxisMax)
	}
	if o.ClusterSpan <= 0 || o.ClusterSpan > 1 {
		problems.Add("cluster span %g must be in (0, 1]", o.ClusterSpan)
	}
	if o.GroupCapacity < 1 {
		problems.Add("group capacity must be at least 1, got %d", o.GroupCapacity)
	}
	if o.ToneLow < 0 || o.ToneHigh > 1 || o.ToneLow > o.ToneHigh {
		problems.Add("tone range [%g, %g] must lie within [0, 1]", o.ToneLow, o.ToneHigh)
	}
	if err := problems.Err(); err != nil {
		return failure.Validation("layout", err)
	}
	return nil
}

// Source supplies the scores a frame is laid out from.
type Source interface {
	Score(attribute, individual string) (float64, bool)
	Average(attribute string) (float64, bool)
}

// Engine lays out page plans.
type Engine struct {
	options Options
}

// NewEngine creates a layout engine with default options.
func NewEngine() *Engine {
	return &Engine{options: DefaultOptions()}
}

// SetOptions sets the options for the layout engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Options returns the current options.
func (e *Engine) Options() Options {
	return e.options
}

// Tone returns the colormap position of a group slot. Slots are spread
// evenly over [ToneLow, ToneHigh] according to the group capacity.
func (e *Engine) Tone(slot int) float64 {
	lo, hi := e.options.ToneLow, e.options.ToneHigh
	if e.options.GroupCapacity <= 1 {
		return (lo + hi) / 2
	}
	return lo + (hi-lo)*float64(slot)/float64(e.options.GroupCapacity-1)
}

// Layout computes the frame of one plan. A plan naming an attribute or
// individual the source does not know is a precondition violation.
func (e *Engine) Layout(plan pagination.Plan, src Source) (*Frame, error) {
	if err := e.options.Validate(); err != nil {
		return nil, err
	}
	g := len(plan.Individuals)
	if len(plan.Attributes) == 0 || g == 0 {
		return nil, failure.Preconditionf("layout", "%s is empty", plan)
	}
	if g > e.options.GroupCapacity {
		return nil, failure.Preconditionf("layout", "%s has %d individuals, capacity is %d", plan, g, e.options.GroupCapacity)
	}

	span := e.options.ClusterSpan
	barWidth := span / float64(g)
	axis := Axis{
		Min:   e.options.AxisMin,
		Max:   e.options.AxisMax,
		Limit: e.options.AxisMax + e.options.AnnotationGap + e.options.AnnotationWidth,
	}

	f := &Frame{
		Plan:      plan,
		Axis:      axis,
		YMin:      -(1 - span) / 2,
		YMax:      float64(len(plan.Attributes)) - (1-span)/2,
		BarWidth:  barWidth,
		GroupSize: g,
		Bars:      make([]Bar, 0, len(plan.Attributes)*g),
	}

	members := strings.Join(plan.Individuals, ", ")
	for i, attr := range plan.Attributes {
		avg, ok := src.Average(attr)
		if !ok {
			return nil, failure.Preconditionf("layout", "%s references unknown attribute %q", plan, attr)
		}
		row := float64(i)
		for j, name := range plan.Individuals {
			score, ok := src.Score(attr, name)
			if !ok {
				return nil, failure.Preconditionf("layout", "%s references unknown individual %q for %q", plan, name, attr)
			}
			y0 := row + float64(j)*barWidth
			f.Bars = append(f.Bars, Bar{
				Row:        i,
				Slot:       j,
				Attribute:  attr,
				Individual: name,
				Y0:         y0,
				Y1:         y0 + barWidth,
				Length:     score,
				Tone:       e.Tone(j),
			})
		}

		center := row + barWidth*float64(g)/2
		f.Averages = append(f.Averages, Mark{Row: i, X: avg, Y: center})
		f.Ticks = append(f.Ticks, Label{Row: i, X: axis.Min, Y: center, Text: attr})
		f.Annotations = append(f.Annotations, Label{
			Row:  i,
			X:    axis.Max + e.options.AnnotationGap,
			Y:    center,
			Text: Annotation(members, avg),
		})
	}

	for j, name := range plan.Individuals {
		f.Legend = append(f.Legend, LegendEntry{Name: name, Slot: j, Tone: e.Tone(j)})
	}
	return f, nil
}

// Annotation formats the text printed past the axis for one row.
func Annotation(members string, average float64) string {
	return fmt.Sprintf("%s  avg %s", members, strconv.FormatFloat(average, 'f', 1, 64))
}
