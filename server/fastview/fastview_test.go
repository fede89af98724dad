package fastview

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	. "github.com/smartystreets/goconvey/convey"
)

// echoView publishes one update per view-model, naming itself as the element.
type echoView struct {
	id      string
	updates <-chan []EleUpdate
}

func newEchoView(id string) ViewBuilderFunc[string] {
	return func(done <-chan struct{}, vms <-chan string) ViewComponent {
		return &echoView{
			id: id,
			updates: channerics.Convert(done, vms, func(vm string) []EleUpdate {
				return []EleUpdate{{EleId: id, Ops: []Op{{Key: "textContent", Value: vm}}}}
			}),
		}
	}
}

func (ev *echoView) Updates() <-chan []EleUpdate { return ev.updates }

func (ev *echoView) Parse(t *template.Template) (string, error) {
	_, err := t.Parse(`{{ define "` + ev.id + `" }}<p id="` + ev.id + `"></p>{{ end }}`)
	return ev.id, err
}

func TestViewBuilder(t *testing.T) {
	Convey("Given a view builder", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		input := make(chan int)

		Convey("Build fails without views", func() {
			_, err := NewViewBuilder[int, string]().
				WithModel(input, func(i int) string { return fmt.Sprint(i) }).
				Build()
			So(err, ShouldEqual, ErrNoViews)
		})

		Convey("Build fails without a model", func() {
			_, err := NewViewBuilder[int, string]().
				WithView(newEchoView("a")).
				Build()
			So(err, ShouldEqual, ErrNoModel)
		})

		Convey("Build fails without a context", func() {
			_, err := NewViewBuilder[int, string]().
				WithModel(input, func(i int) string { return fmt.Sprint(i) }).
				WithView(newEchoView("a")).
				Build()
			So(err, ShouldEqual, ErrNoContext)
		})

		Convey("Cancelling the context closes every view", func() {
			views, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithModel(input, func(i int) string { return fmt.Sprint(i) }).
				WithView(newEchoView("a")).
				WithView(newEchoView("b")).
				Build()
			So(err, ShouldBeNil)

			cancel()
			for _, view := range views {
				select {
				case _, ok := <-view.Updates():
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					So("view still open after cancel", ShouldBeEmpty)
				}
			}
		})

		Convey("Every view receives every converted item", func() {
			views, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithModel(input, func(i int) string { return fmt.Sprint(i * 2) }).
				WithView(newEchoView("a")).
				WithView(newEchoView("b")).
				Build()
			So(err, ShouldBeNil)
			So(len(views), ShouldEqual, 2)

			go func() { input <- 21 }()
			for i, id := range []string{"a", "b"} {
				select {
				case updates := <-views[i].Updates():
					So(updates, ShouldResemble, []EleUpdate{{EleId: id, Ops: []Op{{Key: "textContent", Value: "42"}}}})
				case <-time.After(time.Second):
					So("timed out waiting for view "+id, ShouldBeEmpty)
				}
			}
		})
	})
}

func textUpdate(id, value string) EleUpdate {
	return EleUpdate{EleId: id, Ops: []Op{{Key: "textContent", Value: value}}}
}

func TestClient(t *testing.T) {
	Convey("Given a websocket client fed by an update channel", t, func() {
		updates := make(chan []EleUpdate, 4)
		syncErr := make(chan error, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cli, err := NewClient(updates, w, r, nil)
			if err != nil {
				syncErr <- err
				return
			}
			cli.publishPeriod = 50 * time.Millisecond
			syncErr <- cli.Sync()
		}))
		defer srv.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		Convey("Updates are published as json and closing the channel ends the sync", func() {
			updates <- []EleUpdate{textUpdate("tick", "1")}

			var got []EleUpdate
			So(conn.SetReadDeadline(time.Now().Add(2*time.Second)), ShouldBeNil)
			So(conn.ReadJSON(&got), ShouldBeNil)
			So(got, ShouldResemble, []EleUpdate{textUpdate("tick", "1")})

			close(updates)
			select {
			case err := <-syncErr:
				So(err, ShouldBeNil)
			case <-time.After(3 * time.Second):
				So("timed out waiting for sync to end", ShouldBeEmpty)
			}
		})

		Convey("Updates arriving in quick succession are coalesced, not dropped", func() {
			updates <- []EleUpdate{textUpdate("mode", "EXPLORE")}
			updates <- []EleUpdate{textUpdate("tick", "1")}
			updates <- []EleUpdate{textUpdate("tick", "2"), textUpdate("battery", "98%")}

			latest := map[string]string{}
			deadline := time.Now().Add(2 * time.Second)
			for latest["tick"] != "2" || len(latest) < 3 {
				var got []EleUpdate
				So(conn.SetReadDeadline(deadline), ShouldBeNil)
				So(conn.ReadJSON(&got), ShouldBeNil)
				for _, update := range got {
					latest[update.EleId] = update.Ops[0].Value
				}
			}
			So(latest, ShouldResemble, map[string]string{"mode": "EXPLORE", "tick": "2", "battery": "98%"})
		})
	})
}
