// Package chart rasterizes laid-out frames into PNG bar charts.
package chart

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/gompdf/scorepdf/internal/layout"
	"github.com/gompdf/scorepdf/internal/pagination"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart is one rendered image together with where it goes in the document.
type Chart struct {
	Page   int
	Group  int
	Plan   pagination.Plan
	Width  int
	Height int
	PNG    []byte
}

// Name returns a stable file name for the chart.
func (c *Chart) Name() string {
	return fmt.Sprintf("chart_p%02d_g%02d.png", c.Page+1, c.Group+1)
}

// Options controls canvas size and labels.
type Options struct {
	// DPI converts inch sizes to pixels and scales text.
	DPI float64
	// WidthInches is the canvas width.
	WidthInches float64
	// BaseHeightInches plus RowHeightInches per attribute row is the canvas height.
	BaseHeightInches float64
	RowHeightInches  float64

	Title  string
	XLabel string

	// BarAlpha is the bar opacity, 0-255.
	BarAlpha uint8
}

// DefaultOptions returns the default canvas.
func DefaultOptions() Options {
	return Options{
		DPI:              150,
		WidthInches:      12,
		BaseHeightInches: 2,
		RowHeightInches:  0.6,
		Title:            "Performance Comparison",
		XLabel:           "Scores",
		BarAlpha:         204,
	}
}

// Size returns the pixel size of a canvas for the given number of rows.
func (o Options) Size(rows int) (int, int) {
	w := int(math.Round(o.WidthInches * o.DPI))
	h := int(math.Round((o.BaseHeightInches + o.RowHeightInches*float64(rows)) * o.DPI))
	return w, h
}

// Renderer draws frames.
type Renderer struct {
	options Options
}

// NewRenderer creates a renderer with default options.
func NewRenderer() *Renderer {
	return &Renderer{options: DefaultOptions()}
}

// SetOptions replaces the renderer options.
func (r *Renderer) SetOptions(options Options) {
	r.options = options
}

// Options returns the current options.
func (r *Renderer) Options() Options {
	return r.options
}

var (
	colorAxis    = drawing.Color{R: 51, G: 51, B: 51, A: 255}
	colorGrid    = drawing.Color{R: 224, G: 224, B: 224, A: 255}
	colorText    = drawing.Color{R: 34, G: 34, B: 34, A: 255}
	colorMuted   = drawing.Color{R: 90, G: 90, B: 90, A: 255}
	colorAverage = drawing.Color{R: 214, G: 39, B: 40, A: 255}
)

// BarColor returns the fill of a bar at the given colormap tone.
func BarColor(tone float64, alpha uint8) drawing.Color {
	c := gochart.Viridis(tone, 0, 1)
	c.A = alpha
	return c
}

// Render rasterizes a frame.
func (r *Renderer) Render(ctx context.Context, frame *layout.Frame) (*Chart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame == nil || len(frame.Bars) == 0 {
		return nil, failure.Preconditionf("render chart", "empty frame")
	}
	if r.options.DPI <= 0 || r.options.WidthInches <= 0 {
		return nil, failure.Validationf("render chart", "canvas must have a positive size")
	}

	rows := len(frame.Plan.Attributes)
	width, height := r.options.Size(rows)
	rr, err := gochart.PNG(width, height)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("render chart: load font: %w", err)
	}
	rr.SetDPI(r.options.DPI)
	rr.SetFont(font)

	c := newCanvas(rr, r.options, width, height)
	c.background()
	c.frameArea(frame)
	c.title(r.options.Title)
	c.legend(frame)
	c.grid(frame)
	c.bars(frame)
	c.averageLine(frame)
	c.rowLabels(frame)
	c.axisLabel(r.options.XLabel)

	var buf bytes.Buffer
	if err := rr.Save(&buf); err != nil {
		return nil, fmt.Errorf("render chart: encode png: %w", err)
	}
	return &Chart{
		Page:   frame.Plan.Page,
		Group:  frame.Plan.Group,
		Plan:   frame.Plan,
		Width:  width,
		Height: height,
		PNG:    buf.Bytes(),
	}, nil
}
