package util

import (
	"testing"

	"github.com/epget-cli/epget/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "file", "files"), ShouldEqual, "1 file")
		So(Quantify(2, "file", "files"), ShouldEqual, "2 files")
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Min[int](), ShouldEqual, 0)
	})
}

func TestHumanBytes(t *testing.T) {
	Convey("HumanBytes", t, func() {
		So(HumanBytes(0), ShouldEqual, "0.00B")
		So(HumanBytes(512), ShouldEqual, "512.00B")
		So(HumanBytes(1536), ShouldEqual, "1.50KB")
		So(HumanBytes(100<<20), ShouldEqual, "100.00MB")
		So(HumanBytes(50<<20), ShouldEqual, "50.00MB")
		So(HumanBytes(3<<30), ShouldEqual, "3.00GB")
	})
}

func TestDelete(t *testing.T) {
	Convey("Given an in-memory tree", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		lo.Must0(fs.MkdirAll("/tree/sub", 0755))
		lo.Must0(fs.WriteFile("/tree/sub/a.tmp", []byte("x"), 0644))
		lo.Must0(fs.WriteFile("/tree/b.mp4", []byte("x"), 0644))

		Convey("Deleting a file leaves its siblings", func() {
			So(Delete("/tree/b.mp4"), ShouldBeNil)
			So(lo.Must(fs.Exists("/tree/b.mp4")), ShouldBeFalse)
			So(lo.Must(fs.Exists("/tree/sub/a.tmp")), ShouldBeTrue)
		})

		Convey("Deleting a directory removes it recursively", func() {
			So(Delete("/tree"), ShouldBeNil)
			So(lo.Must(fs.Exists("/tree/sub/a.tmp")), ShouldBeFalse)
		})

		Convey("Deleting something missing fails", func() {
			So(Delete("/nope"), ShouldNotBeNil)
		})
	})
}
