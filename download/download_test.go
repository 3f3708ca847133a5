package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/epget-cli/epget/apperrors"
	"github.com/epget-cli/epget/browser/browsertest"
	"github.com/epget-cli/epget/catalog"
	"github.com/epget-cli/epget/episode"
	"github.com/epget-cli/epget/filesystem"
	"github.com/epget-cli/epget/inventory"
	"github.com/epget-cli/epget/progress"
	"github.com/epget-cli/epget/resolver"
	"github.com/epget-cli/epget/transfer"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	seasonURL     = "https://site.example/season/1"
	qualityXPath  = "nav/ul/li[position() > 1]"
	redirectXPath = `div/a[@class = "opex-server"]`
)

// site is a fake catalog whose direct links are served by a local HTTP server.
type site struct {
	session *browsertest.Session
	server  *httptest.Server

	mu sync.Mutex
	// expire lists how many redirects of an episode show nothing before one works.
	expire map[string]int
	opened map[string]int
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func newSite(sizes map[string]int64) *site {
	s := &site{
		session: browsertest.NewSession(),
		expire:  map[string]int{},
		opened:  map[string]int{},
	}

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		size, ok := sizes[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		_, _ = io.CopyN(w, zeros{}, size)
	}))

	return s
}

func fileName(number string) string {
	return "Show_0" + number + "_.mp4"
}

func (s *site) list(numbers ...string) {
	page := s.session.PrimaryPage()

	var b strings.Builder
	b.WriteString("<html><body>")
	for _, n := range numbers {
		fmt.Fprintf(&b, `<article class="episodiov5"><a><header><h1><strong>%s</strong></h1></header></a></article>`, n)
		page.Entries = append(page.Entries, s.entry(n))
	}
	b.WriteString("</body></html>")
	page.Content = b.String()
}

func (s *site) entry(number string) *browsertest.Element {
	redirect := browsertest.NewElement("go")
	redirect.OnClick = func() {
		s.mu.Lock()
		s.opened[number]++
		dead := s.opened[number] <= s.expire[number]
		s.mu.Unlock()

		page := s.session.Open("https://redirect.example/r/" + number)
		if dead {
			return
		}

		link := browsertest.NewElement("Baixar").Attr("href", s.server.URL+"/"+fileName(number))
		page.Lookup = func(xpath string) (*browsertest.Element, bool) {
			return link, xpath == resolver.DownloadXPath("Baixar")
		}
	}

	return browsertest.NewElement(number).
		With(qualityXPath, browsertest.NewElement("HD").With(redirectXPath, redirect))
}

func (s *site) orchestrator(out io.Writer) *Orchestrator {
	return New(Options{
		Session: s.session,
		Catalog: catalog.New(catalog.Selectors{
			Episode: "article.episodiov5",
			Number:  "a > header > h1 > strong",
			Quality: "nav > ul > li:nth-child(n+2) a",
		}),
		Inventory: inventory.New("/library"),
		Resolver: resolver.New(resolver.Options{
			QualityXPath:  qualityXPath,
			RedirectXPath: redirectXPath,
			DownloadLabel: "Baixar",
			Timeout:       60 * time.Millisecond,
			PollInterval:  5 * time.Millisecond,
			TargetDir:     "/downloads",
		}),
		Transfer:  transfer.Strategies{Pull: &transfer.Pull{Client: s.server.Client(), ChunkSize: 1 << 20}},
		SeasonURL: seasonURL,
		TargetDir: "/downloads",
		Out:       out,
		NewSink: func(h episode.Handle) progress.Sink {
			return progress.NewLine(out, fmt.Sprintf("%s: Downloading... ", h))
		},
	})
}

func setupFs() {
	filesystem.SetMemMapFs()
	lo.Must0(filesystem.API().MkdirAll("/library", 0755))
	lo.Must0(filesystem.API().MkdirAll("/downloads", 0755))
}

func TestRun(t *testing.T) {
	Convey("Given a season of three episodes with the first one already present", t, func() {
		setupFs()
		lo.Must0(filesystem.API().WriteFile("/library/Show - 01 - Pilot.mkv", []byte("x"), 0644))

		s := newSite(map[string]int64{fileName("2"): 100 << 20, fileName("3"): 50 << 20})
		defer s.server.Close()
		s.list("01", "02", "03")

		var out bytes.Buffer
		o := s.orchestrator(&out)

		Convey("When every link resolves", func() {
			err := o.Run(context.Background())

			Convey("The trace shows the skip and both downloads", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldEqual, strings.Join([]string{
					"Episode 1: Skipped.",
					"Episode 2: Downloading... 100.00MB/100.00MB = 100.00%",
					"Episode 3: Downloading... 50.00MB/50.00MB = 100.00%",
					"",
				}, "\n"))
			})

			Convey("Every entry is processed", func() {
				So(o.Cursor(), ShouldEqual, 3)
				So(o.Restarts(), ShouldEqual, 0)
			})

			Convey("The files are committed under their final names", func() {
				info := lo.Must(filesystem.API().Stat("/downloads/" + fileName("2")))
				So(info.Size(), ShouldEqual, 100<<20)
				So(lo.Must(filesystem.API().Exists("/downloads/"+fileName("2")+".tmp")), ShouldBeFalse)
			})

			Convey("No browsing context is left open", func() {
				So(s.session.OpenPages(), ShouldEqual, 1)
			})
		})

		Convey("When the link of episode 2 expires twice", func() {
			s.expire["2"] = 2
			err := o.Run(context.Background())

			Convey("The catalog is reloaded and nothing is processed twice", func() {
				So(err, ShouldBeNil)
				So(o.Cursor(), ShouldEqual, 3)
				So(o.Restarts(), ShouldEqual, 2)
				So(s.session.Navigations(), ShouldResemble, []string{seasonURL, seasonURL, seasonURL})
				So(out.String(), ShouldEqual, strings.Join([]string{
					"Episode 1: Skipped.",
					"Episode 2: Downloading... Link has expired. Reloading...",
					"Episode 2: Downloading... Link has expired. Reloading...",
					"Episode 2: Downloading... 100.00MB/100.00MB = 100.00%",
					"Episode 3: Downloading... 50.00MB/50.00MB = 100.00%",
					"",
				}, "\n"))
			})

			Convey("Expired contexts are closed", func() {
				So(s.session.OpenPages(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a season that is already complete", t, func() {
		setupFs()
		for _, name := range []string{"Show_01_.mp4", "Show 2 final.mp4", "extras/Show-003-.mkv"} {
			lo.Must0(filesystem.API().MkdirAll("/library/extras", 0755))
			lo.Must0(filesystem.API().WriteFile("/library/"+name, []byte("x"), 0644))
		}

		s := newSite(nil)
		defer s.server.Close()
		s.list("1", "2", "3")

		var out bytes.Buffer
		o := s.orchestrator(&out)

		Convey("Running twice transfers nothing", func() {
			So(o.Run(context.Background()), ShouldBeNil)
			So(s.orchestrator(&out).Run(context.Background()), ShouldBeNil)
			So(strings.Count(out.String(), "Skipped."), ShouldEqual, 6)
			So(out.String(), ShouldNotContainSubstring, "Downloading")
			So(s.opened, ShouldBeEmpty)
		})
	})

	Convey("Given an episode with only a partial download on disk", t, func() {
		setupFs()
		lo.Must0(filesystem.API().WriteFile("/library/Show_01_.mp4.tmp", []byte("x"), 0644))

		s := newSite(map[string]int64{fileName("1"): 1024})
		defer s.server.Close()
		s.list("1")

		var out bytes.Buffer
		o := s.orchestrator(&out)

		Convey("The episode is downloaded again", func() {
			So(o.Run(context.Background()), ShouldBeNil)
			So(out.String(), ShouldEqual, "Episode 1: Downloading... 1.00KB/1.00KB = 100.00%\n")
		})
	})

	Convey("Given a catalog entry whose layout changed", t, func() {
		setupFs()
		s := newSite(map[string]int64{fileName("1"): 1024})
		defer s.server.Close()
		s.list("1", "2")
		s.session.PrimaryPage().Entries[1] = browsertest.NewElement("2")

		var out bytes.Buffer
		o := s.orchestrator(&out)

		Convey("The run stops with a structural error after the first episode", func() {
			err := o.Run(context.Background())
			So(errors.Is(err, &apperrors.StructuralError{}), ShouldBeTrue)
			So(o.Cursor(), ShouldEqual, 1)
			So(o.Restarts(), ShouldEqual, 0)
			So(s.session.OpenPages(), ShouldEqual, 1)
		})
	})

	Convey("Given a direct link the server refuses", t, func() {
		setupFs()
		s := newSite(nil)
		defer s.server.Close()
		s.list("1")

		var out bytes.Buffer
		o := s.orchestrator(&out)

		Convey("The run stops with a transport error and the context is closed", func() {
			err := o.Run(context.Background())
			So(errors.Is(err, &apperrors.TransportError{}), ShouldBeTrue)
			So(o.Cursor(), ShouldEqual, 0)
			So(s.session.OpenPages(), ShouldEqual, 1)
		})
	})

	Convey("Given a page left open by the site", t, func() {
		setupFs()
		s := newSite(nil)
		defer s.server.Close()
		s.list()
		s.session.Open("https://ads.example/")

		Convey("It is closed before the catalog is read", func() {
			So(s.orchestrator(io.Discard).Run(context.Background()), ShouldBeNil)
			So(s.session.OpenPages(), ShouldEqual, 1)
		})
	})

	Convey("Given a cancelled run", t, func() {
		setupFs()
		s := newSite(nil)
		defer s.server.Close()
		s.list("1")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Nothing happens", func() {
			err := s.orchestrator(io.Discard).Run(ctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(s.session.Navigations(), ShouldBeEmpty)
		})
	})
}
