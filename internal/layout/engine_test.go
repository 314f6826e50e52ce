package layout_test

import (
	"errors"
	"math"
	"testing"

	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/gompdf/scorepdf/internal/layout"
	"github.com/gompdf/scorepdf/internal/pagination"
	"github.com/gompdf/scorepdf/internal/table"
	"github.com/smartystreets/goconvey/convey"
)

const epsilon = 1e-9

func scenario(t *testing.T) *table.ScoreTable {
	t.Helper()
	tbl, err := table.ParseBytes([]byte(`{
		"speed":    {"alice": 8, "bob": 5, "average_score": 6.5},
		"accuracy": {"alice": 6, "bob": 9, "average_score": 7.5}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestLayout(t *testing.T) {
	tbl := scenario(t)
	plans, err := pagination.NewEngine().Paginate(tbl.Attributes(), tbl.Individuals())
	if err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given the two-attribute, two-individual plan", t, func() {
		frame, err := layout.NewEngine().Layout(plans[0], tbl)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then bars split the 0.8 cluster evenly", func() {
			convey.So(frame.BarWidth, convey.ShouldAlmostEqual, 0.4, epsilon)
			convey.So(len(frame.Bars), convey.ShouldEqual, 4)

			aliceSpeed := frame.Bars[0]
			convey.So(aliceSpeed.Individual, convey.ShouldEqual, "alice")
			convey.So(aliceSpeed.Attribute, convey.ShouldEqual, "speed")
			convey.So(aliceSpeed.Length, convey.ShouldEqual, 8)
			convey.So(aliceSpeed.Y0, convey.ShouldAlmostEqual, 0, epsilon)

			bobAccuracy := frame.Bars[3]
			convey.So(bobAccuracy.Individual, convey.ShouldEqual, "bob")
			convey.So(bobAccuracy.Length, convey.ShouldEqual, 9)
			convey.So(bobAccuracy.Y0, convey.ShouldAlmostEqual, 1.4, epsilon)
			convey.So(bobAccuracy.Y1, convey.ShouldAlmostEqual, 1.8, epsilon)
		})

		convey.Convey("Then average marks bisect each cluster", func() {
			convey.So(frame.Averages[0].X, convey.ShouldEqual, 6.5)
			convey.So(frame.Averages[0].Y, convey.ShouldAlmostEqual, 0.4, epsilon)
			convey.So(frame.Averages[1].X, convey.ShouldEqual, 7.5)
			convey.So(frame.Averages[1].Y, convey.ShouldAlmostEqual, 1.4, epsilon)
		})

		convey.Convey("Then annotations sit past the axis maximum", func() {
			convey.So(frame.Annotations[0].Text, convey.ShouldEqual, "alice, bob  avg 6.5")
			convey.So(frame.Annotations[1].X, convey.ShouldBeGreaterThan, frame.Axis.Max)
			convey.So(frame.Axis.Min, convey.ShouldEqual, 0)
			convey.So(frame.Axis.Max, convey.ShouldEqual, 10)
		})

		convey.Convey("Then the category extent pads half a gap on both ends", func() {
			convey.So(frame.YMin, convey.ShouldAlmostEqual, -0.1, epsilon)
			convey.So(frame.YMax, convey.ShouldAlmostEqual, 1.9, epsilon)
		})
	})
}

func TestBarsNeverOverlapRows(t *testing.T) {
	attrs := []string{"a", "b", "c", "d"}
	people := []string{"p1", "p2", "p3"}
	avg := 5.0
	var inputs []table.Input
	for _, a := range attrs {
		inputs = append(inputs, table.Input{Attribute: a, Scores: map[string]float64{"p1": 1, "p2": 2, "p3": 3}, Average: &avg})
	}
	tbl, err := table.New(people, inputs)
	if err != nil {
		t.Fatal(err)
	}
	for g := 1; g <= 3; g++ {
		plan := pagination.Plan{Attributes: attrs, Individuals: people[:g], Pages: 1, Groups: 1}
		frame, err := layout.NewEngine().Layout(plan, tbl)
		if err != nil {
			t.Fatal(err)
		}
		for _, b := range frame.Bars {
			row := float64(b.Row)
			if b.Y0 < row-epsilon || b.Y1 > row+layout.DefaultClusterSpan+epsilon {
				t.Fatalf("g=%d bar %+v leaves row %d", g, b, b.Row)
			}
		}
		for _, m := range frame.Averages {
			if math.Abs(m.Y-(float64(m.Row)+0.4)) > epsilon {
				t.Fatalf("g=%d average mark %+v off center", g, m)
			}
		}
	}
}

func TestTonesAreStablePerSlot(t *testing.T) {
	convey.Convey("Given the default capacity of three", t, func() {
		e := layout.NewEngine()

		convey.Convey("Then slots spread over the sub-range", func() {
			convey.So(e.Tone(0), convey.ShouldAlmostEqual, layout.DefaultToneLow, epsilon)
			convey.So(e.Tone(1), convey.ShouldAlmostEqual, 0.5, epsilon)
			convey.So(e.Tone(2), convey.ShouldAlmostEqual, layout.DefaultToneHigh, epsilon)
		})

		convey.Convey("Then a short last group reuses the same slot colors", func() {
			tbl := scenario(t)
			frame, err := e.Layout(pagination.Plan{Attributes: []string{"speed"}, Individuals: []string{"bob"}}, tbl)
			convey.So(err, convey.ShouldBeNil)
			convey.So(frame.Bars[0].Tone, convey.ShouldAlmostEqual, e.Tone(0), epsilon)
			convey.So(frame.BarWidth, convey.ShouldAlmostEqual, 0.8, epsilon)
		})
	})
}

func TestLayoutPreconditions(t *testing.T) {
	tbl := scenario(t)
	e := layout.NewEngine()

	_, err := e.Layout(pagination.Plan{Attributes: []string{"stamina"}, Individuals: []string{"alice"}}, tbl)
	if !errors.Is(err, failure.ErrPrecondition) {
		t.Fatalf("unknown attribute: got %v", err)
	}
	_, err = e.Layout(pagination.Plan{Attributes: []string{"speed"}, Individuals: []string{"carol"}}, tbl)
	if !errors.Is(err, failure.ErrPrecondition) {
		t.Fatalf("unknown individual: got %v", err)
	}

	e.SetOptions(layout.Options{AxisMin: 10, AxisMax: 0, ClusterSpan: 0.8, GroupCapacity: 3, ToneHigh: 1})
	_, err = e.Layout(pagination.Plan{Attributes: []string{"speed"}, Individuals: []string{"alice"}}, tbl)
	if failure.KindOf(err) != failure.KindValidation {
		t.Fatalf("inverted axis: got %v", err)
	}
}
