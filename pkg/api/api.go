// Package api turns score tables into paginated PDF performance reports.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/gompdf/scorepdf/internal/layout"
	"github.com/gompdf/scorepdf/internal/pagination"
	"github.com/gompdf/scorepdf/internal/render/chart"
	"github.com/gompdf/scorepdf/internal/render/pdf"
	"github.com/gompdf/scorepdf/internal/res"
	"github.com/gompdf/scorepdf/internal/table"
	"github.com/gompdf/scorepdf/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// logoWidth is the raster width, in pixels, of SVG logos.
const logoWidth = 600

// Table is a validated score table.
type Table = table.ScoreTable

// Plan is one chart page: an attribute slice for an individual group.
type Plan = pagination.Plan

// Result describes a generated report.
type Result struct {
	// Pages is the number of pages in the document.
	Pages int
	// Plans lists the page plans in document order.
	Plans []Plan
	// Charts holds the keys of retained chart images, in document order.
	Charts []string
}

// Generator is the main API for producing reports
type Generator struct {
	options Options
	loader  *res.Loader
	log     logger.Logger
}

// New creates a generator with default options
func New() *Generator {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a generator with the specified options
func NewWithOptions(options Options) *Generator {
	loader := res.NewLoader("")
	for _, p := range options.ResourcePaths {
		loader.AddSearchPath(p)
	}
	log := options.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Generator{options: options, loader: loader, log: log.Named("generator")}
}

// WithOptions returns a new generator with the specified options
func (g *Generator) WithOptions(options Options) *Generator {
	return NewWithOptions(options)
}

// WithOption returns a new generator with the specified option set
func (g *Generator) WithOption(option Option) *Generator {
	o := g.options
	o.ResourcePaths = append([]string(nil), o.ResourcePaths...)
	option(&o)
	return NewWithOptions(o)
}

// Options returns the generator options.
func (g *Generator) Options() Options {
	return g.options
}

func (g *Generator) tableOptions() ([]table.Option, error) {
	orientation, err := table.ParseOrientation(g.options.Orientation)
	if err != nil {
		return nil, err
	}
	return []table.Option{
		table.WithBounds(g.options.ScoreMin, g.options.ScoreMax),
		table.WithStrictAverage(g.options.StrictAverage),
		table.WithOrientation(orientation),
	}, nil
}

// Parse reads a JSON or YAML score document using the generator's score
// bounds and orientation.
func (g *Generator) Parse(r io.Reader) (*Table, error) {
	opts, err := g.tableOptions()
	if err != nil {
		return nil, err
	}
	return table.Parse(r, opts...)
}

// Load reads a score document from a path, http(s) URL or data URL.
func (g *Generator) Load(ctx context.Context, ref string) (*Table, error) {
	opts, err := g.tableOptions()
	if err != nil {
		return nil, err
	}
	rsc, err := g.loader.LoadData(ctx, ref)
	if err != nil {
		return nil, err
	}
	return table.ParseBytes(rsc.Data, opts...)
}

// Plan returns the page plans for t without rendering anything. The same table
// and options always give the same plans.
func (g *Generator) Plan(t *Table) ([]Plan, error) {
	if err := g.options.Validate(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, failure.Validationf("plan", "no table")
	}
	e := pagination.NewEngine()
	e.SetOptions(pagination.Options{
		AttributeCapacity: g.options.AttributeCapacity,
		GroupCapacity:     g.options.GroupCapacity,
	})
	return e.Paginate(t.Attributes(), t.Individuals())
}

// Charts lays out and rasterizes every plan. Charts come back in plan order
// whatever the number of workers.
func (g *Generator) Charts(ctx context.Context, t *Table) ([]*chart.Chart, []Plan, error) {
	plans, err := g.Plan(t)
	if err != nil {
		return nil, nil, err
	}

	le := layout.NewEngine()
	lo := le.Options()
	lo.AxisMin, lo.AxisMax = g.options.AxisMin, g.options.AxisMax
	lo.GroupCapacity = g.options.GroupCapacity
	le.SetOptions(lo)

	cr := chart.NewRenderer()
	co := cr.Options()
	co.DPI = g.options.DPI
	cr.SetOptions(co)

	charts := make([]*chart.Chart, len(plans))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.options.Workers)
	for i, p := range plans {
		eg.Go(func() error {
			start := time.Now()
			frame, err := le.Layout(p, t)
			if err != nil {
				return err
			}
			c, err := cr.Render(ctx, frame)
			if err != nil {
				return err
			}
			charts[i] = c
			took := time.Since(start)
			g.options.Metrics.RecordPage(took)
			g.log.Debug(ctx, "chart rendered",
				logger.String("plan", p.String()),
				logger.Int("bytes", len(c.PNG)),
				logger.Duration("took", took))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return charts, plans, nil
}

// Generate renders t and writes the PDF to w.
func (g *Generator) Generate(ctx context.Context, t *Table, w io.Writer) (*Result, error) {
	start := time.Now()
	res, err := g.generate(ctx, t, w)
	if err != nil {
		g.fail(ctx, err)
		return nil, err
	}
	took := time.Since(start)
	g.options.Metrics.RecordReport(took)
	g.log.Info(ctx, "report generated",
		logger.Int("pages", res.Pages),
		logger.Int("attributes", t.Len()),
		logger.Int("individuals", len(t.Individuals())),
		logger.Duration("took", took))
	return res, nil
}

func (g *Generator) generate(ctx context.Context, t *Table, w io.Writer) (*Result, error) {
	if err := g.options.Validate(); err != nil {
		return nil, err
	}
	charts, plans, err := g.Charts(ctx, t)
	if err != nil {
		return nil, err
	}

	renderer, err := g.documentRenderer(ctx)
	if err != nil {
		return nil, err
	}

	kept, err := g.retain(charts)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages, err := renderer.Render(charts, w)
	if err != nil {
		return nil, err
	}
	return &Result{Pages: pages, Plans: plans, Charts: kept}, nil
}

// GenerateBytes renders t and returns the PDF bytes.
func (g *Generator) GenerateBytes(ctx context.Context, t *Table) ([]byte, *Result, error) {
	var buf bytes.Buffer
	res, err := g.Generate(ctx, t, &buf)
	if err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), res, nil
}

// GenerateFile loads the score document at input and writes the report to
// outputPath. The previous file at outputPath survives any failure.
func (g *Generator) GenerateFile(ctx context.Context, input, outputPath string) (*Result, error) {
	t, err := g.Load(ctx, input)
	if err != nil {
		g.fail(ctx, err)
		return nil, err
	}
	data, res, err := g.GenerateBytes(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := pdf.WriteFileAtomic(outputPath, data); err != nil {
		g.fail(ctx, err)
		return nil, err
	}
	g.log.Info(ctx, "report written", logger.String("path", outputPath), logger.Int("bytes", len(data)))
	return res, nil
}

func (g *Generator) documentRenderer(ctx context.Context) (*pdf.Renderer, error) {
	fit, err := pdf.ParseFitMode(g.options.FitMode)
	if err != nil {
		return nil, err
	}
	ro := pdf.DefaultRenderOptions()
	ro.Title = g.options.Title
	ro.Subtitles = g.options.Subtitles
	ro.Fit = fit
	ro.Author = g.options.Author
	ro.Subject = g.options.Subject
	ro.Keywords = g.options.Keywords

	if g.options.Logo != "" {
		rsc, err := g.loader.LoadImage(ctx, g.options.Logo)
		if err != nil {
			return nil, err
		}
		img, err := rsc.Image(logoWidth)
		if err != nil {
			return nil, err
		}
		ro.Logo = img
	}

	r := pdf.NewRenderer()
	r.SetOptions(ro)
	return r, nil
}

func (g *Generator) retain(charts []*chart.Chart) ([]string, error) {
	if g.options.ChartStore == nil {
		return nil, nil
	}
	keys := make([]string, 0, len(charts))
	for _, c := range charts {
		key, err := g.options.ChartStore.Put(g.options.ChartPrefix+c.Name(), bytes.NewReader(c.PNG))
		if err != nil {
			return nil, fmt.Errorf("retain %s: %w", c.Name(), err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (g *Generator) fail(ctx context.Context, err error) {
	kind := failure.KindOf(err)
	g.options.Metrics.RecordFailure(kind.String())
	g.log.Error(ctx, "report failed", logger.String("kind", kind.String()), logger.Error(err))
}
