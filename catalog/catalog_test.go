package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/epget-cli/epget/apperrors"
	"github.com/epget-cli/epget/browser/browsertest"
	. "github.com/smartystreets/goconvey/convey"
)

var selectors = Selectors{
	Episode: "article.episodiov5",
	Number:  "a > header > h1 > strong",
	Quality: "nav > ul > li:nth-child(n+2) a",
}

func entry(number string) string {
	return fmt.Sprintf(`
<article class="episodiov5">
  <a href="#"><header><h1><strong>%s</strong></h1></header></a>
  <nav><ul>
    <li><a>Assistir</a></li>
    <li><a>HD</a><div><a class="opex-server" href="/r">go</a></div></li>
  </ul></nav>
</article>`, number)
}

func season(page *browsertest.Page, numbers ...string) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, n := range numbers {
		b.WriteString(entry(n))
		page.Entries = append(page.Entries, browsertest.NewElement(n))
	}
	b.WriteString("</body></html>")
	page.Content = b.String()
}

func TestEnumerate(t *testing.T) {
	Convey("Given a season page", t, func() {
		session := browsertest.NewSession()
		page := session.PrimaryPage()
		c := New(selectors)

		Convey("With well-formed entries", func() {
			season(page, "01", "02", "0120")
			handles, err := c.Enumerate(context.Background(), page, "https://site.example/season/1")

			Convey("It navigates to the season", func() {
				So(err, ShouldBeNil)
				So(session.Navigations(), ShouldResemble, []string{"https://site.example/season/1"})
			})

			Convey("Handles come back in page order with normalized numbers", func() {
				So(handles, ShouldHaveLength, 3)
				So(handles[0].Number, ShouldEqual, "1")
				So(handles[0].Raw, ShouldEqual, "01")
				So(handles[2].Number, ShouldEqual, "120")
				So(handles[2].Ordinal, ShouldEqual, 2)
			})

			Convey("The first selectable quality is recorded", func() {
				So(handles[1].Quality, ShouldEqual, "HD")
			})

			Convey("Each handle references its live entry", func() {
				So(handles[1].Ref, ShouldEqual, page.Entries[1])
			})
		})

		Convey("With an entry lacking its number", func() {
			season(page, "1", "")
			_, err := c.Enumerate(context.Background(), page, "https://site.example/season/1")

			Convey("It is a structural error", func() {
				So(errors.Is(err, &apperrors.StructuralError{}), ShouldBeTrue)
			})
		})

		Convey("When the live entries disagree with the document", func() {
			season(page, "1", "2")
			page.Entries = page.Entries[:1]
			_, err := c.Enumerate(context.Background(), page, "https://site.example/season/1")

			Convey("It is a structural error", func() {
				So(errors.Is(err, &apperrors.StructuralError{}), ShouldBeTrue)
			})
		})

		Convey("With no entries at all", func() {
			season(page)
			handles, err := c.Enumerate(context.Background(), page, "https://site.example/season/1")

			Convey("There is nothing to do", func() {
				So(err, ShouldBeNil)
				So(handles, ShouldBeEmpty)
			})
		})

		Convey("When navigation fails", func() {
			page.OnNavigate = func(*browsertest.Page, string) error { return errors.New("net::ERR_NAME_NOT_RESOLVED") }
			_, err := c.Enumerate(context.Background(), page, "https://site.example/season/1")

			Convey("The error is returned", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "ERR_NAME_NOT_RESOLVED")
			})
		})
	})
}
