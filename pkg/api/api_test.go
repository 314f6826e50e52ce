package api_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/gompdf/scorepdf/internal/storage"
	"github.com/gompdf/scorepdf/internal/table"
	"github.com/gompdf/scorepdf/pkg/api"
	"github.com/gompdf/scorepdf/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

const twoByTwo = `{
	"speed":    {"alice": 8, "bob": 5, "average_score": 6.5},
	"accuracy": {"alice": 6, "bob": 9, "average_score": 7.5}
}`

// fast keeps rasters small in tests.
func fast(opts ...api.Option) *api.Generator {
	o := api.DefaultOptions()
	o.DPI = 20
	for _, opt := range opts {
		opt(&o)
	}
	return api.NewWithOptions(o)
}

func wide(t *testing.T, attributes, individuals int) *api.Table {
	t.Helper()
	people := make([]string, individuals)
	for i := range people {
		people[i] = fmt.Sprintf("p%d", i+1)
	}
	inputs := make([]table.Input, attributes)
	for i := range inputs {
		scores := make(map[string]float64, individuals)
		for j, p := range people {
			scores[p] = float64((i + j) % 11)
		}
		inputs[i] = table.Input{Attribute: fmt.Sprintf("a%02d", i+1), Scores: scores}
	}
	tbl, err := table.New(people, inputs)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestGenerateScenarios(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given the default capacities", t, func() {
		g := fast()

		convey.Convey("Two attributes and two individuals fit one page", func() {
			tbl, err := g.Parse(strings.NewReader(twoByTwo))
			convey.So(err, convey.ShouldBeNil)

			data, res, err := g.GenerateBytes(ctx, tbl)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Pages, convey.ShouldEqual, 1)
			convey.So(res.Plans[0].Attributes, convey.ShouldResemble, []string{"speed", "accuracy"})
			convey.So(res.Plans[0].Individuals, convey.ShouldResemble, []string{"alice", "bob"})
			convey.So(bytes.HasPrefix(data, []byte("%PDF-")), convey.ShouldBeTrue)
		})

		convey.Convey("Fifteen attributes split 12 + 3", func() {
			var buf bytes.Buffer
			res, err := g.Generate(ctx, wide(t, 15, 1), &buf)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Pages, convey.ShouldEqual, 2)
			convey.So(len(res.Plans[0].Attributes), convey.ShouldEqual, 12)
			convey.So(res.Plans[1].Attributes, convey.ShouldResemble, []string{"a13", "a14", "a15"})
		})

		convey.Convey("Seven individuals split 3 + 3 + 1", func() {
			var buf bytes.Buffer
			res, err := g.Generate(ctx, wide(t, 1, 7), &buf)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Pages, convey.ShouldEqual, 3)
			convey.So(res.Plans[2].Individuals, convey.ShouldResemble, []string{"p7"})
		})
	})
}

func TestWorkersKeepOrder(t *testing.T) {
	ctx := context.Background()
	tbl := wide(t, 25, 7)

	serial, res1, err := fast().GenerateBytes(ctx, tbl)
	if err != nil {
		t.Fatal(err)
	}
	parallel, res4, err := fast(api.WithWorkers(4)).GenerateBytes(ctx, tbl)
	if err != nil {
		t.Fatal(err)
	}
	if res1.Pages != 9 || res4.Pages != 9 {
		t.Fatalf("pages = %d and %d, want 9", res1.Pages, res4.Pages)
	}
	if !reflect.DeepEqual(res1.Plans, res4.Plans) {
		t.Fatal("plans differ between serial and parallel runs")
	}
	if len(serial) == 0 || len(parallel) == 0 {
		t.Fatal("empty document")
	}
}

func TestPlanIsIdempotent(t *testing.T) {
	g := fast(api.WithCapacities(4, 2))
	tbl := wide(t, 9, 5)
	first, err := g.Plan(tbl)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Plan(tbl)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("plans differ between runs")
	}
	if len(first) != 9 {
		t.Fatalf("plans = %d, want 3 pages x 3 groups", len(first))
	}
}

func TestGenerateFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	in := filepath.Join(dir, "scores.yaml")
	if err := os.WriteFile(in, []byte("speed:\n  alice: 8\n  bob: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given a YAML input and a chart store", t, func() {
		store, err := storage.NewFSStore(filepath.Join(dir, "charts"))
		convey.So(err, convey.ShouldBeNil)
		reg := metrics.NewManager()
		g := fast(api.WithChartStore(store, "run/"), api.WithMetrics(reg))
		out := filepath.Join(dir, "out", "report.pdf")

		convey.Convey("When the report is generated", func() {
			res, err := g.GenerateFile(ctx, in, out)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the PDF exists", func() {
				data, err := os.ReadFile(out)
				convey.So(err, convey.ShouldBeNil)
				convey.So(bytes.HasPrefix(data, []byte("%PDF-")), convey.ShouldBeTrue)
			})

			convey.Convey("Then each chart is kept", func() {
				convey.So(res.Charts, convey.ShouldResemble, []string{"run/chart_p01_g01.png"})
				_, err := os.Stat(filepath.Join(dir, "charts", "run", "chart_p01_g01.png"))
				convey.So(err, convey.ShouldBeNil)
			})

			convey.Convey("Then metrics are recorded", func() {
				n, err := testutil.GatherAndCount(reg.Registry(), "scorepdf_reports_generated_total")
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the input does not exist", func() {
			_, err := g.GenerateFile(ctx, filepath.Join(dir, "missing.json"), out)
			convey.So(failure.KindOf(err), convey.ShouldEqual, failure.KindIO)
		})
	})
}

func TestGenerateRejects(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given bad input or options", t, func() {
		convey.Convey("An empty document is a validation error", func() {
			_, err := fast().Parse(strings.NewReader("{}"))
			convey.So(errors.Is(err, failure.ErrValidation), convey.ShouldBeTrue)
		})

		convey.Convey("Scores outside the score range are rejected", func() {
			_, err := fast(api.WithScoreBounds(0, 5), api.WithAxis(0, 5)).Parse(strings.NewReader(twoByTwo))
			convey.So(errors.Is(err, failure.ErrValidation), convey.ShouldBeTrue)
		})

		convey.Convey("Strict mode requires every average", func() {
			_, err := fast(api.WithStrictAverage(true)).Parse(strings.NewReader(`{"speed": {"alice": 1}}`))
			convey.So(errors.Is(err, failure.ErrValidation), convey.ShouldBeTrue)
		})

		convey.Convey("Unknown fit modes fail before rendering", func() {
			tbl, err := fast().Parse(strings.NewReader(twoByTwo))
			convey.So(err, convey.ShouldBeNil)
			_, err = fast(api.WithFitMode("stretch")).Generate(ctx, tbl, &bytes.Buffer{})
			convey.So(failure.KindOf(err), convey.ShouldEqual, failure.KindValidation)
		})

		convey.Convey("A cancelled context stops the run", func() {
			tbl, err := fast().Parse(strings.NewReader(twoByTwo))
			convey.So(err, convey.ShouldBeNil)
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err = fast().Generate(cctx, tbl, &bytes.Buffer{})
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})
}

func TestWithOptionCopies(t *testing.T) {
	base := api.New()
	titled := base.WithOption(api.WithTitle("Quarterly"))
	if base.Options().Title != "Performance Report" || titled.Options().Title != "Quarterly" {
		t.Fatalf("titles = %q, %q", base.Options().Title, titled.Options().Title)
	}
}

func TestIndividualKeyedInput(t *testing.T) {
	const byIndividual = `{"alice": {"speed": 8, "accuracy": 6}, "bob": {"speed": 5, "accuracy": 9}}`
	ctx := context.Background()

	convey.Convey("Given individual-keyed scores without averages", t, func() {
		g := fast(api.WithOrientation(api.OrientationIndividual))

		convey.Convey("Then attributes come from the inner keys", func() {
			tbl, err := g.Parse(strings.NewReader(byIndividual))
			convey.So(err, convey.ShouldBeNil)
			convey.So(tbl.Attributes(), convey.ShouldResemble, []string{"speed", "accuracy"})
			convey.So(tbl.Individuals(), convey.ShouldResemble, []string{"alice", "bob"})
			avg, _ := tbl.Average("accuracy")
			convey.So(avg, convey.ShouldEqual, 7.5)
		})

		convey.Convey("Then a file in that shape generates the same report", func() {
			in := filepath.Join(t.TempDir(), "scores.json")
			convey.So(os.WriteFile(in, []byte(byIndividual), 0o644), convey.ShouldBeNil)
			out := filepath.Join(t.TempDir(), "report.pdf")
			res, err := g.GenerateFile(ctx, in, out)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Pages, convey.ShouldEqual, 1)
			convey.So(res.Plans[0].Attributes, convey.ShouldResemble, []string{"speed", "accuracy"})
		})

		convey.Convey("Then an unknown orientation is a validation error", func() {
			_, err := fast(api.WithOrientation("diagonal")).Parse(strings.NewReader(byIndividual))
			convey.So(failure.KindOf(err), convey.ShouldEqual, failure.KindValidation)
		})
	})
}

func TestScoreRangeIsNotTheAxis(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an axis widened to 11 for annotation room", t, func() {
		g := fast(api.WithAxis(0, 11))

		convey.Convey("Scores above 10 are still rejected", func() {
			_, err := g.Parse(strings.NewReader(`{"speed": {"alice": 10.5}}`))
			convey.So(errors.Is(err, failure.ErrValidation), convey.ShouldBeTrue)
		})

		convey.Convey("Scores within 10 render", func() {
			tbl, err := g.Parse(strings.NewReader(twoByTwo))
			convey.So(err, convey.ShouldBeNil)
			_, res, err := g.GenerateBytes(ctx, tbl)
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Pages, convey.ShouldEqual, 1)
		})
	})

	convey.Convey("A score range wider than the axis fails before rendering", t, func() {
		tbl, err := fast().Parse(strings.NewReader(twoByTwo))
		convey.So(err, convey.ShouldBeNil)
		_, err = fast(api.WithScoreBounds(0, 12)).Generate(ctx, tbl, &bytes.Buffer{})
		convey.So(failure.KindOf(err), convey.ShouldEqual, failure.KindValidation)
	})
}
