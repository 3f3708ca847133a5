//go:build !windows

package transfer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/epget-cli/epget/episode"
	"github.com/epget-cli/epget/filesystem"
	"github.com/epget-cli/epget/progress"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/sys/unix"
)

func TestExclusive(t *testing.T) {
	Convey("Given a file held under an exclusive lock", t, func() {
		filesystem.SetOsFs()
		dir := t.TempDir()
		path := filepath.Join(dir, "held.mkv")
		lo.Must0(os.WriteFile(path, []byte("x"), 0644))

		holder := lo.Must(os.Open(path))
		lo.Must0(unix.Flock(int(holder.Fd()), unix.LOCK_EX))

		Convey("It is not released", func() {
			So(lo.Must(Released(path)), ShouldBeFalse)
			_ = holder.Close()
		})

		Convey("Push completion waits for the lock", func() {
			go func() {
				time.Sleep(50 * time.Millisecond)
				_ = holder.Close()
			}()

			d := lo.Must(episode.NewPush(dir, "held.mkv"))
			started := time.Now()
			err := (&Push{Interval: 10 * time.Millisecond}).Execute(context.Background(), d, dir, progress.Nop{})
			So(err, ShouldBeNil)
			So(time.Since(started), ShouldBeGreaterThanOrEqualTo, 40*time.Millisecond)
		})
	})

	Convey("A missing file is not released", t, func() {
		filesystem.SetOsFs()
		So(lo.Must(Released(filepath.Join(t.TempDir(), "nope"))), ShouldBeFalse)
	})
}
