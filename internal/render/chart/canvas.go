package chart

import (
	"math"
	"strconv"

	"github.com/gompdf/scorepdf/internal/layout"
	"github.com/gompdf/scorepdf/internal/text"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Font sizes in points.
const (
	titleSize      = 14.0
	labelSize      = 10.0
	annotationSize = 9.0
	legendSize     = 9.0
)

// maxLabelShare caps the row label gutter as a fraction of the raster width.
const maxLabelShare = 0.3

// canvas maps frame data units onto pixels of one go-chart raster renderer.
type canvas struct {
	r    gochart.Renderer
	o    Options
	w, h int
	pad  int

	// plot spans the value axis from Axis.Min to Axis.Max; edge is the pixel
	// column of Axis.Limit, where annotations end.
	plot  gochart.Box
	edge  int
	frame *layout.Frame
	// ticks and notes hold the fitted row and annotation labels.
	ticks, notes []string
}

func newCanvas(r gochart.Renderer, o Options, w, h int) *canvas {
	return &canvas{r: r, o: o, w: w, h: h, pad: int(math.Round(0.15 * o.DPI))}
}

// px converts a length in points to pixels.
func (c *canvas) px(points float64) float64 {
	return points * c.o.DPI / 72
}

func (c *canvas) measure(s string, size float64) (int, int) {
	c.r.SetFontSize(size)
	b := c.r.MeasureText(s)
	return b.Width(), b.Height()
}

// fit cleans s and shortens it to at most maxWidth pixels at size.
func (c *canvas) fit(s string, size float64, maxWidth int) string {
	return text.Fit(text.Clean(s), float64(maxWidth), func(s string) float64 {
		w, _ := c.measure(s, size)
		return float64(w)
	})
}

func (c *canvas) text(s string, x, baseline int, size float64, col drawing.Color) {
	c.r.SetFontSize(size)
	c.r.SetFontColor(col)
	c.r.Text(s, x, baseline)
}

func (c *canvas) rect(x0, y0, x1, y1 int, fill drawing.Color) {
	c.r.SetFillColor(fill)
	c.r.SetStrokeColor(drawing.ColorTransparent)
	c.r.SetStrokeWidth(0)
	c.r.MoveTo(x0, y0)
	c.r.LineTo(x1, y0)
	c.r.LineTo(x1, y1)
	c.r.LineTo(x0, y1)
	c.r.LineTo(x0, y0)
	c.r.Close()
	c.r.Fill()
}

func (c *canvas) line(x0, y0, x1, y1 int, col drawing.Color, width float64) {
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(width)
	c.r.SetStrokeDashArray(nil)
	c.r.MoveTo(x0, y0)
	c.r.LineTo(x1, y1)
	c.r.Stroke()
}

// limit is the right end of the data domain: Axis.Limit, or Axis.Max when
// no annotation room was laid out.
func (c *canvas) limit() float64 {
	a := c.frame.Axis
	return math.Max(a.Max, a.Limit)
}

// xData maps any data position in [Axis.Min, limit] to a pixel column.
func (c *canvas) xData(v float64) int {
	a := c.frame.Axis
	return c.plot.Left + int(math.Round((v-a.Min)/(c.limit()-a.Min)*float64(c.edge-c.plot.Left)))
}

// x maps a value-axis position to a pixel column, clamped to the axis.
func (c *canvas) x(v float64) int {
	a := c.frame.Axis
	return c.xData(math.Max(a.Min, math.Min(a.Max, v)))
}

// span places the value domain between the left and edge pixel columns.
func (c *canvas) span(left, edge int) {
	c.plot.Left = left
	c.edge = edge
	c.plot.Right = c.xData(c.frame.Axis.Max)
}

// y maps a category-axis position to a pixel row; row 0 is at the top.
func (c *canvas) y(v float64) int {
	f := c.frame
	return c.plot.Top + int(math.Round((v-f.YMin)/(f.YMax-f.YMin)*float64(c.plot.Height())))
}

func (c *canvas) background() {
	c.rect(0, 0, c.w, c.h, drawing.ColorWhite)
}

// frameArea sizes the plot box around the gutters the labels need.
func (c *canvas) frameArea(f *layout.Frame) {
	c.frame = f

	_, titleH := c.measure(c.o.Title, titleSize)
	_, legendH := c.measure("Average", legendSize)
	_, tickH := c.measure("10", labelSize)
	_, xLabelH := c.measure(c.o.XLabel, labelSize)

	c.ticks = make([]string, len(f.Ticks))
	labelW := 0
	for i, t := range f.Ticks {
		c.ticks[i] = c.fit(t.Text, labelSize, int(maxLabelShare*float64(c.w)))
		if w, _ := c.measure(c.ticks[i], labelSize); w > labelW {
			labelW = w
		}
	}

	top := c.pad + titleH + c.pad/2 + legendH + c.pad
	bottom := c.h - c.pad - xLabelH - c.pad/2 - tickH - c.pad/2
	if bottom <= top {
		bottom = top + 1
	}
	c.plot = gochart.Box{Top: top, Bottom: bottom}
	c.span(c.pad+labelW+c.pad/2, c.w-c.pad)

	// Annotations get whatever room is left between their anchor and the edge.
	c.notes = make([]string, len(f.Annotations))
	for i, a := range f.Annotations {
		if room := c.edge - c.xData(a.X); room > 0 {
			c.notes[i] = c.fit(a.Text, annotationSize, room)
		}
	}
}

func (c *canvas) title(title string) {
	if title == "" {
		return
	}
	w, h := c.measure(title, titleSize)
	c.text(title, (c.w-w)/2, c.pad+h, titleSize, colorText)
}

func (c *canvas) legend(f *layout.Frame) {
	_, titleH := c.measure(c.o.Title, titleSize)
	_, h := c.measure("Average", legendSize)
	baseline := c.pad + titleH + c.pad/2 + h
	x := c.plot.Left
	gap := c.pad / 2

	for _, e := range f.Legend {
		c.rect(x, baseline-h, x+h, baseline, BarColor(e.Tone, c.o.BarAlpha))
		x += h + gap/2
		name := c.fit(e.Name, legendSize, c.w/5)
		c.text(name, x, baseline, legendSize, colorText)
		w, _ := c.measure(name, legendSize)
		x += w + gap
	}

	c.line(x, baseline-h/2, x+2*h, baseline-h/2, colorAverage, c.px(2))
	x += 2*h + gap/2
	c.text("Average", x, baseline, legendSize, colorText)
}

func (c *canvas) grid(f *layout.Frame) {
	a := f.Axis
	step := tickStep(a.Span())
	_, tickH := c.measure("0", labelSize)
	for v := a.Min; v <= a.Max+step/1e6; v += step {
		x := c.x(v)
		c.line(x, c.plot.Top, x, c.plot.Bottom, colorGrid, c.px(0.5))
		label := strconv.FormatFloat(v, 'f', -1, 64)
		w, _ := c.measure(label, labelSize)
		c.text(label, x-w/2, c.plot.Bottom+c.pad/2+tickH, labelSize, colorMuted)
	}
	c.line(c.plot.Left, c.plot.Top, c.plot.Left, c.plot.Bottom, colorAxis, c.px(0.8))
	c.line(c.plot.Left, c.plot.Bottom, c.plot.Right, c.plot.Bottom, colorAxis, c.px(0.8))
}

func (c *canvas) bars(f *layout.Frame) {
	for _, b := range f.Bars {
		x0 := c.x(f.Axis.Min)
		x1 := c.x(b.Length)
		if x1 <= x0 {
			continue
		}
		c.rect(x0, c.y(b.Y0), x1, c.y(b.Y1), BarColor(b.Tone, c.o.BarAlpha))
	}
}

func (c *canvas) averageLine(f *layout.Frame) {
	if len(f.Averages) == 0 {
		return
	}
	c.r.SetStrokeColor(colorAverage)
	c.r.SetStrokeWidth(c.px(2))
	c.r.SetStrokeDashArray(nil)
	for i, m := range f.Averages {
		if i == 0 {
			c.r.MoveTo(c.x(m.X), c.y(m.Y))
			continue
		}
		c.r.LineTo(c.x(m.X), c.y(m.Y))
	}
	c.r.Stroke()

	radius := c.px(2.5)
	for _, m := range f.Averages {
		c.r.SetFillColor(colorAverage)
		c.r.SetStrokeColor(colorAverage)
		c.r.Circle(radius, c.x(m.X), c.y(m.Y))
		c.r.Fill()
	}
}

func (c *canvas) rowLabels(f *layout.Frame) {
	for i, t := range f.Ticks {
		w, h := c.measure(c.ticks[i], labelSize)
		c.text(c.ticks[i], c.plot.Left-c.pad/3-w, c.y(t.Y)+h/2, labelSize, colorText)
	}
	for i, a := range f.Annotations {
		if c.notes[i] == "" {
			continue
		}
		_, h := c.measure(c.notes[i], annotationSize)
		c.text(c.notes[i], c.xData(a.X), c.y(a.Y)+h/2, annotationSize, colorMuted)
	}
}

func (c *canvas) axisLabel(label string) {
	if label == "" {
		return
	}
	w, _ := c.measure(label, labelSize)
	c.text(label, c.plot.Left+(c.plot.Width()-w)/2, c.h-c.pad, labelSize, colorText)
}

// tickStep picks a 1, 2 or 5 multiple giving at most ten intervals.
func tickStep(span float64) float64 {
	if span <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(span/10)))
	for _, m := range []float64{1, 2, 5, 10} {
		if span/(m*mag) <= 10 {
			return m * mag
		}
	}
	return 10 * mag
}
