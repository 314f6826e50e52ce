package pagination_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/gompdf/scorepdf/internal/pagination"
	"github.com/smartystreets/goconvey/convey"
)

func names(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i)
	}
	return out
}

func TestChunkPartition(t *testing.T) {
	for n := 0; n <= 30; n++ {
		for size := 1; size <= 13; size++ {
			items := names("a", n)
			chunks := pagination.Chunk(items, size)

			want := (n + size - 1) / size
			if len(chunks) != want || pagination.PageCount(n, size) != want {
				t.Fatalf("n=%d size=%d: %d chunks, want %d", n, size, len(chunks), want)
			}

			var joined []string
			for i, c := range chunks {
				last := i == len(chunks)-1
				if !last && len(c) != size {
					t.Fatalf("n=%d size=%d: chunk %d has %d items", n, size, i, len(c))
				}
				if last && n%size != 0 && len(c) != n%size {
					t.Fatalf("n=%d size=%d: last chunk has %d items", n, size, len(c))
				}
				joined = append(joined, c...)
			}
			if fmt.Sprint(joined) != fmt.Sprint(items[:len(joined)]) || len(joined) != n {
				t.Fatalf("n=%d size=%d: concatenation %v != %v", n, size, joined, items)
			}
		}
	}
}

func TestPaginate(t *testing.T) {
	convey.Convey("Given the default engine", t, func() {
		e := pagination.NewEngine()

		convey.Convey("When everything fits on one page", func() {
			plans, err := e.Paginate([]string{"speed", "accuracy"}, []string{"alice", "bob"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(plans), convey.ShouldEqual, 1)
			convey.So(plans[0].Attributes, convey.ShouldResemble, []string{"speed", "accuracy"})
			convey.So(plans[0].Individuals, convey.ShouldResemble, []string{"alice", "bob"})
		})

		convey.Convey("When 15 attributes are charted for one individual", func() {
			attrs := names("attr", 15)
			plans, err := e.Paginate(attrs, []string{"solo"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(plans), convey.ShouldEqual, 2)
			convey.So(len(plans[0].Attributes), convey.ShouldEqual, 12)
			convey.So(len(plans[1].Attributes), convey.ShouldEqual, 3)
			convey.So(append(plans[0].Attributes, plans[1].Attributes...), convey.ShouldResemble, attrs)
			convey.So(plans[1].FirstAttribute, convey.ShouldEqual, 12)
		})

		convey.Convey("When 7 individuals are charted for one attribute", func() {
			plans, err := e.Paginate([]string{"speed"}, names("p", 7))
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(plans), convey.ShouldEqual, 3)
			convey.So(len(plans[0].Individuals), convey.ShouldEqual, 3)
			convey.So(len(plans[1].Individuals), convey.ShouldEqual, 3)
			convey.So(len(plans[2].Individuals), convey.ShouldEqual, 1)
			convey.So(plans[2].Individuals, convey.ShouldResemble, []string{"p06"})
		})

		convey.Convey("When both dimensions split", func() {
			e.SetOptions(pagination.Options{AttributeCapacity: 2, GroupCapacity: 2})
			plans, err := e.Paginate(names("a", 3), names("p", 3))
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(plans), convey.ShouldEqual, 4)

			convey.Convey("Then plans are emitted row-major", func() {
				var order []string
				for i, p := range plans {
					convey.So(p.Index(), convey.ShouldEqual, i)
					order = append(order, fmt.Sprintf("%d.%d", p.Page, p.Group))
				}
				convey.So(order, convey.ShouldResemble, []string{"0.0", "0.1", "1.0", "1.1"})
				convey.So(plans[3].String(), convey.ShouldEqual, "page 2/2 group 2/2")
			})
		})
	})
}

func TestPaginateRejects(t *testing.T) {
	convey.Convey("Given degenerate inputs", t, func() {
		e := pagination.NewEngine()

		convey.Convey("Then no attributes is a defined error", func() {
			_, err := e.Paginate(nil, []string{"alice"})
			convey.So(errors.Is(err, pagination.ErrNoAttributes), convey.ShouldBeTrue)
			convey.So(errors.Is(err, failure.ErrValidation), convey.ShouldBeTrue)
		})

		convey.Convey("Then no individuals is a defined error", func() {
			_, err := e.Paginate([]string{"speed"}, nil)
			convey.So(errors.Is(err, pagination.ErrNoIndividuals), convey.ShouldBeTrue)
		})

		convey.Convey("Then a zero capacity is rejected", func() {
			e.SetOptions(pagination.Options{AttributeCapacity: 0, GroupCapacity: 3})
			_, err := e.Paginate([]string{"speed"}, []string{"alice"})
			convey.So(failure.KindOf(err), convey.ShouldEqual, failure.KindValidation)

			_, err = pagination.NewPaginator(1, 0).Paginate([]string{"speed"}, []string{"alice"})
			convey.So(errors.Is(err, pagination.ErrInvalidCapacity), convey.ShouldBeTrue)
		})
	})
}
