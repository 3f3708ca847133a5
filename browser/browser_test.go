package browser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/epget-cli/epget/browser"
	"github.com/epget-cli/epget/browser/browsertest"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOpenInNewContext(t *testing.T) {
	Convey("Given a link that opens a redirect page when clicked", t, func() {
		session := browsertest.NewSession()
		link := browsertest.NewElement("Server")
		link.OnClick = func() { session.Open("https://redirect.example/abc") }

		Convey("The link is forced into a new context and that context is returned", func() {
			page, err := browser.OpenInNewContext(context.Background(), session.Primary(), link, time.Second)
			So(err, ShouldBeNil)
			So(page.URL(), ShouldEqual, "https://redirect.example/abc")
			So(link.Scripts(), ShouldResemble, []string{browser.ScriptTargetBlank, browser.ScriptClick})
			So(session.OpenPages(), ShouldEqual, 2)
		})
	})

	Convey("Given a link that opens nothing", t, func() {
		session := browsertest.NewSession()
		link := browsertest.NewElement("Dead")

		Convey("The wait gives up once the timeout passes", func() {
			start := time.Now()
			_, err := browser.OpenInNewContext(context.Background(), session.Primary(), link, 50*time.Millisecond)
			So(errors.Is(err, browser.ErrNotOpened), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, time.Second)
			So(session.OpenPages(), ShouldEqual, 1)
		})

		Convey("A cancelled run is reported as such", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := browser.OpenInNewContext(ctx, session.Primary(), link, time.Second)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestCloseSecondary(t *testing.T) {
	Convey("Given two leaked secondary contexts", t, func() {
		session := browsertest.NewSession()
		session.Open("a")
		session.Open("b")

		Convey("Both are closed and the primary stays open", func() {
			closed := lo.Must(browser.CloseSecondary(session))
			So(closed, ShouldEqual, 2)
			So(session.OpenPages(), ShouldEqual, 1)
			So(session.PrimaryPage().Closed(), ShouldBeFalse)
		})
	})
}

func TestSamePage(t *testing.T) {
	Convey("SamePage compares identities", t, func() {
		session := browsertest.NewSession()
		other := session.Open("x")
		So(browser.SamePage(session.Primary(), session.Primary()), ShouldBeTrue)
		So(browser.SamePage(session.Primary(), other), ShouldBeFalse)
	})
}
