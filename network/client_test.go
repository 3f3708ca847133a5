package network

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/epget-cli/epget/constant"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClient(t *testing.T) {
	Convey("Given a server echoing the User-Agent", t, func() {
		var seen string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.Header.Get("User-Agent")
		}))
		defer server.Close()

		Convey("The default agent is filled in", func() {
			resp := lo.Must(Client.Get(server.URL))
			_ = resp.Body.Close()
			So(seen, ShouldEqual, constant.UserAgent)
		})

		Convey("An explicit agent is kept", func() {
			req := lo.Must(http.NewRequest(http.MethodGet, server.URL, nil))
			req.Header.Set("User-Agent", "custom")
			resp := lo.Must(Client.Do(req))
			_ = resp.Body.Close()
			So(seen, ShouldEqual, "custom")
		})
	})
}
