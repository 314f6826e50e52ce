package pdf_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/gompdf/scorepdf/internal/pagination"
	"github.com/gompdf/scorepdf/internal/render/chart"
	"github.com/gompdf/scorepdf/internal/render/pdf"
	"github.com/gompdf/scorepdf/internal/res"
	"github.com/smartystreets/goconvey/convey"
)

var pageObject = regexp.MustCompile(`/Type /Page[^s]`)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{B: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func charts(t *testing.T, n int) []*chart.Chart {
	t.Helper()
	out := make([]*chart.Chart, n)
	for i := range out {
		out[i] = &chart.Chart{
			Page:   0,
			Group:  i,
			Width:  120,
			Height: 40,
			PNG:    pngBytes(t, 120, 40),
			Plan: pagination.Plan{
				Group:           i,
				Pages:           1,
				Groups:          n,
				Attributes:      []string{"speed"},
				TotalAttributes: 1,
			},
		}
	}
	return out
}

func TestRender(t *testing.T) {
	convey.Convey("Given three charts", t, func() {
		cs := charts(t, 3)
		r := pdf.NewRenderer()

		convey.Convey("Then each chart becomes one page", func() {
			var buf bytes.Buffer
			pages, err := r.Render(cs, &buf)
			convey.So(err, convey.ShouldBeNil)
			convey.So(pages, convey.ShouldEqual, 3)
			convey.So(bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), convey.ShouldBeTrue)
			convey.So(len(pageObject.FindAll(buf.Bytes(), -1)), convey.ShouldEqual, 3)
		})

		convey.Convey("Then a logo does not change the page count", func() {
			opts := r.Options()
			opts.Logo = &res.Image{Data: pngBytes(t, 20, 10), Type: "PNG", Width: 20, Height: 10}
			r.SetOptions(opts)
			var buf bytes.Buffer
			pages, err := r.Render(cs, &buf)
			convey.So(err, convey.ShouldBeNil)
			convey.So(pages, convey.ShouldEqual, 3)
		})

		convey.Convey("Then an empty chart list is a precondition error", func() {
			_, err := r.Render(nil, &bytes.Buffer{})
			convey.So(errors.Is(err, failure.ErrPrecondition), convey.ShouldBeTrue)
		})
	})
}

func TestRenderFileLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "report.pdf")

	pages, err := pdf.NewRenderer().RenderFile(charts(t, 2), out)
	if err != nil {
		t.Fatal(err)
	}
	if pages != 2 {
		t.Fatalf("pages = %d", pages)
	}
	entries, err := os.ReadDir(filepath.Dir(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "report.pdf" {
		t.Fatalf("directory holds %v", entries)
	}
}

func TestRenderFileKeepsPreviousOnFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(out, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := pdf.NewRenderer().RenderFile([]*chart.Chart{{}}, out); err == nil {
		t.Fatal("expected error for an empty chart")
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "old" {
		t.Fatalf("previous report changed: %q %v", data, err)
	}
}

func TestPlace(t *testing.T) {
	tests := []struct {
		name       string
		mode       pdf.FitMode
		px, py     int
		x, y, w, h float64
	}{
		{"wide chart keeps aspect", pdf.FitWidth, 1900, 500, 10, 30, 190, 50},
		{"tall chart is clamped to the body", pdf.FitWidth, 100, 300, (210 - 252.0/3) / 2, 30, 252.0 / 3, 252},
		{"fill stretches", pdf.FitFill, 1900, 500, 10, 30, 190, 252},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h := pdf.Place(tt.mode, tt.px, tt.py)
			for _, p := range [][2]float64{{x, tt.x}, {y, tt.y}, {w, tt.w}, {h, tt.h}} {
				if d := p[0] - p[1]; d > 1e-9 || d < -1e-9 {
					t.Fatalf("got (%g, %g, %g, %g), want (%g, %g, %g, %g)", x, y, w, h, tt.x, tt.y, tt.w, tt.h)
				}
			}
		})
	}
}

func TestParseFitMode(t *testing.T) {
	for in, want := range map[string]pdf.FitMode{"": pdf.FitWidth, "width": pdf.FitWidth, "FILL": pdf.FitFill} {
		got, err := pdf.ParseFitMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseFitMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := pdf.ParseFitMode("stretch"); failure.KindOf(err) != failure.KindValidation {
		t.Fatalf("got %v", err)
	}
}

func TestSubtitle(t *testing.T) {
	c := &chart.Chart{Plan: pagination.Plan{
		Page: 1, Group: 1, Pages: 2, Groups: 3,
		FirstAttribute: 12, TotalAttributes: 15,
		Attributes: []string{"a", "b", "c"},
	}}
	if got, want := pdf.Subtitle(c), "Attributes 13-15 of 15 - Group 2 of 3"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderLongUnicodeTitle(t *testing.T) {
	r := pdf.NewRenderer()
	opts := pdf.DefaultRenderOptions()
	opts.Title = "Évaluation annuelle des compétences de l'équipe opérationnelle et du service clientèle"
	r.SetOptions(opts)

	var buf bytes.Buffer
	pages, err := r.Render(charts(t, 1), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if pages != 1 || len(pageObject.FindAll(buf.Bytes(), -1)) != 1 {
		t.Fatalf("pages = %d", pages)
	}
}
