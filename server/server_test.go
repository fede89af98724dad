package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autonomy/simulation"

	. "github.com/smartystreets/goconvey/convey"
)

func TestServer(t *testing.T) {
	Convey("Given a server over a running simulation", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := simulation.DefaultConfig()
		cfg.ObstacleProbability = 0
		sim, err := simulation.NewSim(cfg, nil)
		So(err, ShouldBeNil)

		snapshots := make(chan simulation.Snapshot)
		server, err := NewServer(ctx, ":0", sim.Snapshot(), snapshots, nil)
		So(err, ShouldBeNil)
		router := server.Router()

		get := func(path string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			return rec
		}

		Convey("Snapshots are tracked without a page connected", func() {
			for i := 0; i < 3; i++ {
				snap, err := sim.Tick()
				So(err, ShouldBeNil)
				select {
				case snapshots <- snap:
				case <-time.After(time.Second):
					So("snapshot send blocked", ShouldBeEmpty)
				}
			}

			deadline := time.Now().Add(time.Second)
			for server.Latest().Tick != 3 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(server.Latest().Tick, ShouldEqual, 3)

			Convey("The state endpoint returns the latest snapshot", func() {
				rec := get("/api/state")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldEqual, "application/json")

				var state struct {
					Tick int      `json:"tick"`
					Rows []string `json:"rows"`
					Mode string   `json:"mode"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &state), ShouldBeNil)
				So(state.Tick, ShouldEqual, 3)
				So(len(state.Rows), ShouldEqual, len(cfg.Grid))
				So(state.Mode, ShouldEqual, "EXPLORE")
			})
		})

		Convey("The index page renders the views", func() {
			rec := get("/")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `id="occupancygrid"`)
			So(rec.Body.String(), ShouldContainSubstring, `id="cell-9-9"`)
			So(rec.Body.String(), ShouldContainSubstring, `id="status-tick"`)
		})

		Convey("Unknown routes and methods are refused", func() {
			So(get("/nope").Code, ShouldEqual, http.StatusNotFound)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/state", nil))
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}
