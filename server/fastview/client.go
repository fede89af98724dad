package fastview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second

	// Pending updates are flushed to the page at most once per publishPeriod.
	publishPeriod  = time.Millisecond * 100
	pingResolution = time.Millisecond * 200
	// The number of lost pings tolerated before the peer is considered gone.
	pongWait = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

// Client publishes element updates one way to a web page over a websocket.
type Client struct {
	updates       <-chan []EleUpdate
	ws            *websock
	rootCtx       context.Context
	logger        *slog.Logger
	publishPeriod time.Duration
}

// NewClient upgrades the request to a websocket. Updates to the same element within one
// publish period are coalesced, so only the latest reaches the page.
func NewClient(
	updates <-chan []EleUpdate,
	w http.ResponseWriter,
	r *http.Request,
	logger *slog.Logger,
) (*Client, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		return nil, fmt.Errorf("upgrade: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		updates:       updates,
		ws:            newWebSocket(ws),
		rootCtx:       r.Context(),
		logger:        logger.With("remote", r.RemoteAddr),
		publishPeriod: publishPeriod,
	}, nil
}

// Sync publishes updates until the client disconnects, the request context ends or the
// updates channel closes. It returns nil on a normal disconnect.
func (cli *Client) Sync() error {
	defer cli.ws.Close()
	cli.logger.Info("client connected")

	group, groupCtx := errgroup.WithContext(cli.rootCtx)
	// Unblock the reader once any routine finishes.
	go func() {
		<-groupCtx.Done()
		_ = cli.ws.Conn().SetReadDeadline(time.Now())
	}()

	group.Go(func() error {
		return cli.readMessages(groupCtx)
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx)
	})
	group.Go(func() error {
		return cli.publish(groupCtx)
	})

	err := group.Wait()
	if isClosure(err) || errors.Is(err, errUpdatesClosed) {
		err = nil
	}
	cli.logger.Info("client disconnected", "error", err)
	return err
}

var ErrPongDeadlineExceeded error = errors.New("client disconnect, pong deadline exceeded")

// errUpdatesClosed ends a sync when there is nothing left to publish.
var errUpdatesClosed = errors.New("updates closed")

// pingPong checks client liveness. Pongs are only delivered while readMessages is running.
func (cli *Client) pingPong(ctx context.Context) error {
	pong := make(chan struct{}, 1)
	cli.ws.Conn().SetPongHandler(func(_ string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (cli *Client) ping(ctx context.Context) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) (err error) {
			if err = ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				if isError(err) {
					err = fmt.Errorf("ping failed: %T %w", err, err)
				}
			}
			return
		})
}

// readMessages drains client messages. Websocket read errors are permanent, so any error
// tears the client down.
func (cli *Client) readMessages(ctx context.Context) error {
	for {
		err := cli.ws.Read(
			ctx,
			func(ws *websocket.Conn) (readErr error) {
				_, _, readErr = ws.ReadMessage()
				return
			})
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// publish collects updates by element id and writes whatever is pending once per period.
// Whatever is pending when the updates channel closes is written before returning.
func (cli *Client) publish(ctx context.Context) error {
	pending := map[string]EleUpdate{}
	flusher := channerics.NewTicker(ctx.Done(), cli.publishPeriod)

	for {
		select {
		case <-ctx.Done():
			return nil
		case updates, ok := <-cli.updates:
			if !ok {
				if err := cli.flush(ctx, pending); err != nil {
					return err
				}
				return errUpdatesClosed
			}
			for _, update := range updates {
				pending[update.EleId] = update
			}
		case <-flusher:
			if err := cli.flush(ctx, pending); err != nil {
				return err
			}
			clear(pending)
		}
	}
}

// flush writes the pending updates, ordered by element id, as one json message.
func (cli *Client) flush(ctx context.Context, pending map[string]EleUpdate) error {
	if len(pending) == 0 {
		return nil
	}

	batch := make([]EleUpdate, 0, len(pending))
	for _, update := range pending {
		batch = append(batch, update)
	}
	slices.SortFunc(batch, func(a, b EleUpdate) int {
		return strings.Compare(a.EleId, b.EleId)
	})

	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) (writeErr error) {
			if writeErr = ws.SetWriteDeadline(time.Now().Add(writeWait)); writeErr != nil {
				return fmt.Errorf("failed to set deadline: %w", writeErr)
			}
			if writeErr = ws.WriteJSON(batch); writeErr != nil && isError(writeErr) {
				writeErr = fmt.Errorf("publish failed: %T %w", writeErr, writeErr)
			}
			return
		})
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

// ErrSockCongestion indicates there are too many waiters on the socket for a given op.
var ErrSockCongestion = errors.New("sock op failed due to congestion")

const (
	readDeadline  = time.Second
	writeDeadline = time.Second
)

// websock serializes reads and writes to the websocket, which allows one concurrent
// reader and one concurrent writer.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newWebSocket(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// Conn returns the underlying websocket, for setup only.
func (sock *websock) Conn() *websocket.Conn {
	return sock.ws
}

// Close sends a close frame and closes the connection. Call once no readers or writers remain.
func (sock *websock) Close() {
	sock.writeSem <- struct{}{}
	_ = sock.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sock.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	<-sock.writeSem
	_ = sock.ws.Close()
}

// Read serializes read operations on the websocket.
func (sock *websock) Read(
	ctx context.Context,
	readFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	case <-time.After(readDeadline):
		return ErrSockCongestion
	}
}

// Write serializes write operations on the websocket.
func (sock *websock) Write(
	ctx context.Context,
	writeFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}
