package layout

import (
	"github.com/gompdf/scorepdf/internal/pagination"
)

// Frame is the geometry of one chart in data units. The value axis runs
// from Axis.Min to Axis.Max; the category axis runs from YMin to YMax with
// row i occupying [i, i+ClusterSpan].
type Frame struct {
	Plan pagination.Plan

	Axis      Axis
	YMin      float64
	YMax      float64
	BarWidth  float64
	GroupSize int

	Bars        []Bar
	Averages    []Mark
	Ticks       []Label
	Annotations []Label
	Legend      []LegendEntry
}

// Axis is the fixed value domain of a chart.
type Axis struct {
	Min float64
	Max float64
	// Limit is the right edge of the drawing area, past Max, that leaves room
	// for row annotations.
	Limit float64
}

// Span returns Max - Min.
func (a Axis) Span() float64 { return a.Max - a.Min }

// Bar is one individual's bar within an attribute row.
type Bar struct {
	Row        int
	Slot       int
	Attribute  string
	Individual string
	// Y0 and Y1 bound the bar along the category axis, Y0 < Y1.
	Y0 float64
	Y1 float64
	// Length is the raw score.
	Length float64
	// Tone is the bar's position on the colormap, in [0, 1].
	Tone float64
}

// Center returns the bar's midpoint on the category axis.
func (b Bar) Center() float64 { return (b.Y0 + b.Y1) / 2 }

// Mark is a point of the average line.
type Mark struct {
	Row int
	X   float64
	Y   float64
}

// Label is text anchored in data units.
type Label struct {
	Row  int
	X    float64
	Y    float64
	Text string
}

// LegendEntry maps a legend line to its colormap tone.
type LegendEntry struct {
	Name string
	Slot int
	Tone float64
}
