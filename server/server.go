package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"autonomy/server/cell_views"
	"autonomy/server/fastview"
	"autonomy/server/root_view"
	"autonomy/simulation"

	"github.com/gorilla/mux"
	channerics "github.com/niceyeti/channerics/channels"
)

const shutdownGracePeriod = 5 * time.Second

// Server serves the live view of a simulation: the page, its websocket, and the latest
// snapshot as json. The element-update stream is shared, so only one page is kept current
// at a time.
type Server struct {
	addr     string
	rootView *root_view.RootView
	logger   *slog.Logger

	mu   sync.RWMutex
	last simulation.Snapshot
}

// NewServer builds the views and starts tracking snapshots. Snapshots are always drained
// from the channel; the views receive them only when they are ready, so a slow or absent
// page never stalls the simulation.
func NewServer(
	ctx context.Context,
	addr string,
	initial simulation.Snapshot,
	snapshots <-chan simulation.Snapshot,
	logger *slog.Logger,
) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	viewInput := make(chan simulation.Snapshot)
	rootView, err := root_view.NewRootView(ctx, viewInput)
	if err != nil {
		return nil, err
	}

	server := &Server{
		addr:     addr,
		rootView: rootView,
		logger:   logger,
		last:     initial,
	}
	go server.track(ctx.Done(), snapshots, viewInput)
	return server, nil
}

func (server *Server) track(
	done <-chan struct{},
	snapshots <-chan simulation.Snapshot,
	viewInput chan<- simulation.Snapshot,
) {
	defer close(viewInput)
	for snap := range channerics.OrDone(done, snapshots) {
		server.mu.Lock()
		server.last = snap
		server.mu.Unlock()

		select {
		case viewInput <- snap:
		default:
		}
	}
}

// Latest returns the most recent snapshot.
func (server *Server) Latest() simulation.Snapshot {
	server.mu.RLock()
	defer server.mu.RUnlock()
	return server.last
}

// Router returns the server's routes.
func (server *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket).Methods(http.MethodGet)
	router.HandleFunc("/api/state", server.serveState).Methods(http.MethodGet)
	return router
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (server *Server) Serve(ctx context.Context) (err error) {
	srv := &http.Server{
		Addr:              server.addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	server.logger.Info("serving", "addr", server.addr)
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// serveWebsocket publishes view updates to the page until it disconnects.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(server.rootView.Updates(), w, r, server.logger)
	if err != nil {
		server.logger.Warn("websocket", "error", err)
		return
	}
	if err = cli.Sync(); err != nil {
		server.logger.Warn("websocket sync", "error", err)
	}
}

// serveState writes the latest snapshot as json.
func (server *Server) serveState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(server.Latest()); err != nil {
		server.logger.Warn("encode state", "error", err)
	}
}

// serveIndex renders the page with the latest snapshot as its initial state.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	var page bytes.Buffer
	if err := renderTemplate(&page, server.rootView, cell_views.Convert(server.Latest())); err != nil {
		server.logger.Warn("render index", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	_, _ = page.WriteTo(w)
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}
	return t.Execute(w, data)
}
