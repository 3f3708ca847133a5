package progress

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestState(t *testing.T) {
	Convey("Given a known total", t, func() {
		s := NewState(50<<20, 100<<20)

		Convey("The percentage is computed", func() {
			So(s.Percentage().MustGet(), ShouldEqual, 50)
			So(s.Ratio(), ShouldEqual, 0.5)
		})

		Convey("It renders counters and percentage", func() {
			So(s.String(), ShouldEqual, "50.00MB/100.00MB = 50.00%")
		})

		Convey("Overshoot is capped", func() {
			So(NewState(120, 100).Percentage().MustGet(), ShouldEqual, 100)
		})
	})

	Convey("Given an unknown total", t, func() {
		s := NewState(12<<20, 0)

		Convey("There is no percentage and nothing divides by zero", func() {
			So(s.Total.IsPresent(), ShouldBeFalse)
			So(s.Percentage().IsPresent(), ShouldBeFalse)
			So(math.IsNaN(s.Ratio()), ShouldBeFalse)
			So(s.Ratio(), ShouldEqual, 0)
		})

		Convey("It renders the unknown state", func() {
			So(s.String(), ShouldEqual, "12.00MB/unknown")
			So(s.String(), ShouldNotContainSubstring, "NaN")
		})

		Convey("A zero-valued state is unknown too", func() {
			var zero State
			So(zero.String(), ShouldEqual, "0.00B/unknown")
		})

		Convey("An explicit zero total is unknown", func() {
			s := State{Transferred: 5, Total: mo.Some[int64](0)}
			So(s.Percentage().IsPresent(), ShouldBeFalse)
		})
	})
}

func TestLine(t *testing.T) {
	Convey("Given a non-interactive line", t, func() {
		var out bytes.Buffer
		line := NewLine(&out, "Episode 2: Downloading... ")

		Convey("Updates are dropped and Finish appends the final state", func() {
			line.Update(NewState(1, 10))
			line.Finish(NewState(100<<20, 100<<20))
			So(out.String(), ShouldEqual, "100.00MB/100.00MB = 100.00%")
		})
	})

	Convey("Given an interactive line without throttling", t, func() {
		var out bytes.Buffer
		line := NewLine(&out, "Episode 3: ", WithInteractive(true), WithRefresh(0))

		Convey("Every update redraws the line in place", func() {
			line.Update(NewState(1<<20, 0))
			line.Update(NewState(2<<20, 0))
			line.Finish(NewState(2<<20, 2<<20))

			draws := strings.Split(out.String(), "\r")[1:]
			So(draws, ShouldHaveLength, 3)
			So(draws[0], ShouldEqual, "Episode 3: 1.00MB/unknown")
			So(draws[2], ShouldEqual, "Episode 3: 2.00MB/2.00MB = 100.00%")
		})

		Convey("A shorter redraw blanks the rest of the previous one", func() {
			line.Update(NewState(1<<20, 0))
			line.Update(NewState(1, 0))
			draws := strings.Split(out.String(), "\r")[1:]
			So(len(draws[1]), ShouldEqual, len(draws[0]))
			So(strings.TrimRight(draws[1], " "), ShouldEqual, "Episode 3: 1.00B/unknown")
		})
	})

	Convey("Given an interactive throttled line", t, func() {
		var out bytes.Buffer
		line := NewLine(&out, "", WithInteractive(true), WithRefresh(time.Hour))

		Convey("Only the first update and the final state are drawn", func() {
			for i := int64(1); i <= 10; i++ {
				line.Update(NewState(i, 10))
			}
			line.Finish(NewState(10, 10))
			So(strings.Count(out.String(), "\r"), ShouldEqual, 2)
		})
	})

	Convey("Given a narrow interactive line", t, func() {
		var out bytes.Buffer
		line := NewLine(&out, "Episode 1000: Downloading... ", WithInteractive(true), WithRefresh(0), WithWidth(20))

		Convey("Redraws are truncated", func() {
			line.Finish(NewState(1, 2))
			So(len(strings.TrimPrefix(out.String(), "\r")), ShouldBeLessThanOrEqualTo, 20)
		})
	})

	Convey("Given a line with a bar", t, func() {
		var out bytes.Buffer
		line := NewLine(&out, "", WithInteractive(true), WithRefresh(0), WithBar(10))

		Convey("The counters still follow the bar", func() {
			line.Finish(NewState(5, 10))
			So(out.String(), ShouldEndWith, "5.00B/10.00B = 50.00%")
		})
	})
}

func TestTee(t *testing.T) {
	Convey("Tee forwards to every sink", t, func() {
		var a, b bytes.Buffer
		sink := Tee(NewLine(&a, ""), NewLine(&b, ""), Nop{})
		sink.Finish(NewState(1, 0))
		So(a.String(), ShouldEqual, "1.00B/unknown")
		So(b.String(), ShouldEqual, "1.00B/unknown")
	})
}
