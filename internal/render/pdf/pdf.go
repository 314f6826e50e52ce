// Package pdf assembles rendered charts into a paginated PDF report.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/gompdf/scorepdf/internal/render/chart"
	"github.com/gompdf/scorepdf/internal/res"
	"github.com/gompdf/scorepdf/internal/text"
)

// FitMode decides how a chart image is sized on its page.
type FitMode int

const (
	// FitWidth spans the content width and keeps the aspect ratio, shrinking
	// only when the image would run past the page body.
	FitWidth FitMode = iota
	// FitFill stretches the image over the remaining page body.
	FitFill
)

func (m FitMode) String() string {
	if m == FitFill {
		return "fill"
	}
	return "width"
}

// ParseFitMode parses "width" or "fill".
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "width":
		return FitWidth, nil
	case "fill":
		return FitFill, nil
	}
	return FitWidth, failure.Validationf("fit mode", "unknown fit mode %q", s)
}

// Page geometry in millimetres.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	margin       = 10.0
	imageTop     = 30.0
	footerHeight = 15.0
	logoHeight   = 12.0
)

// RenderOptions contains options for rendering
type RenderOptions struct {
	// Title is printed centered in bold on every page.
	Title string
	// Subtitles prints which slice of the data a page shows under the title.
	Subtitles bool
	Fit       FitMode
	// Logo is drawn in the top-left corner of every page.
	Logo *res.Image

	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
}

// DefaultRenderOptions returns the default page setup.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Title:     "Performance Report",
		Subtitles: true,
		Fit:       FitWidth,
		Subject:   "Performance comparison",
		Creator:   "scorepdf",
		Producer:  "scorepdf",
	}
}

// Renderer handles rendering to PDF
type Renderer struct {
	options RenderOptions
}

// NewRenderer creates a new PDF renderer
func NewRenderer() *Renderer {
	return &Renderer{options: DefaultRenderOptions()}
}

// SetOptions replaces the render options.
func (r *Renderer) SetOptions(options RenderOptions) {
	r.options = options
}

// Options returns the current render options.
func (r *Renderer) Options() RenderOptions {
	return r.options
}

// Render writes one page per chart, in slice order, and returns the page count.
func (r *Renderer) Render(charts []*chart.Chart, w io.Writer) (int, error) {
	if len(charts) == 0 {
		return 0, failure.Preconditionf("assemble pdf", "no charts to assemble")
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle(r.options.Title, true)
	doc.SetAuthor(r.options.Author, true)
	doc.SetSubject(r.options.Subject, true)
	doc.SetKeywords(r.options.Keywords, true)
	doc.SetCreator(r.options.Creator, true)
	doc.SetProducer(r.options.Producer, true)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-footerHeight)
		doc.SetFont("Helvetica", "", 8)
		doc.SetTextColor(120, 120, 120)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	logo := r.registerLogo(doc)
	title := r.title(doc, logo)
	for i, c := range charts {
		if c == nil || len(c.PNG) == 0 {
			return 0, failure.Preconditionf("assemble pdf", "chart %d is empty", i)
		}
		r.page(doc, c, logo, title)
		if err := doc.Error(); err != nil {
			return 0, fmt.Errorf("assemble pdf: %s: %w", c.Name(), err)
		}
	}

	if err := doc.Output(w); err != nil {
		return 0, failure.IO("write pdf", err)
	}
	return len(charts), nil
}

// RenderFile writes the document to path through a temporary file in the same
// directory, so a failed run never leaves a partial report behind.
func (r *Renderer) RenderFile(charts []*chart.Chart, path string) (int, error) {
	var buf bytes.Buffer
	pages, err := r.Render(charts, &buf)
	if err != nil {
		return 0, err
	}
	if err := WriteFileAtomic(path, buf.Bytes()); err != nil {
		return 0, err
	}
	return pages, nil
}

// WriteFileAtomic writes data to path via a temporary file and rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failure.IO("create output directory", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return failure.IO("create temp file", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return failure.IO("write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return failure.IO("close temp file", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return failure.IO("rename output", err)
	}
	return nil
}

func (r *Renderer) registerLogo(doc *fpdf.Fpdf) string {
	if r.options.Logo == nil || len(r.options.Logo.Data) == 0 {
		return ""
	}
	const name = "logo"
	doc.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: r.options.Logo.Type}, bytes.NewReader(r.options.Logo.Data))
	return name
}

// title returns the page title in the core font encoding, shortened to the
// width left beside the logo.
func (r *Renderer) title(doc *fpdf.Fpdf, logo string) string {
	tr := doc.UnicodeTranslatorFromDescriptor("")
	room := pageWidth - 2*margin
	if logo != "" {
		w := logoHeight
		if a := r.options.Logo.Aspect(); a > 0 {
			w = logoHeight / a
		}
		room -= 2 * w
	}
	doc.SetFont("Helvetica", "B", 16)
	return tr(text.Fit(text.Clean(r.options.Title), room, func(s string) float64 {
		return doc.GetStringWidth(tr(s))
	}))
}

func (r *Renderer) page(doc *fpdf.Fpdf, c *chart.Chart, logo, title string) {
	doc.AddPage()

	if logo != "" {
		w := logoHeight
		if a := r.options.Logo.Aspect(); a > 0 {
			w = logoHeight / a
		}
		doc.ImageOptions(logo, margin, margin, w, logoHeight, false, fpdf.ImageOptions{}, 0, "")
	}

	doc.SetXY(margin, margin)
	doc.SetFont("Helvetica", "B", 16)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	if r.options.Subtitles {
		doc.SetFont("Helvetica", "", 10)
		doc.SetTextColor(90, 90, 90)
		doc.CellFormat(0, 6, Subtitle(c), "", 1, "C", false, 0, "")
	}

	name := c.Name()
	doc.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(c.PNG))
	x, y, w, h := Place(r.options.Fit, c.Width, c.Height)
	doc.ImageOptions(name, x, y, w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

// Place returns the image rectangle, in millimetres, for a chart of the given
// pixel size.
func Place(mode FitMode, px, py int) (x, y, w, h float64) {
	x, y = margin, imageTop
	w = pageWidth - 2*margin
	body := pageHeight - imageTop - footerHeight
	if mode == FitFill || px <= 0 || py <= 0 {
		return x, y, w, body
	}
	h = w * float64(py) / float64(px)
	if h > body {
		w = body * float64(px) / float64(py)
		h = body
		x = (pageWidth - w) / 2
	}
	return x, y, w, h
}

// Subtitle describes the slice of the data a chart shows.
func Subtitle(c *chart.Chart) string {
	p := c.Plan
	first := p.FirstAttribute + 1
	last := p.FirstAttribute + len(p.Attributes)
	s := fmt.Sprintf("Attributes %d-%d", first, last)
	if p.TotalAttributes > 0 {
		s += fmt.Sprintf(" of %d", p.TotalAttributes)
	}
	if p.Groups > 1 {
		s += fmt.Sprintf(" - Group %d of %d", p.Group+1, p.Groups)
	}
	return s
}
