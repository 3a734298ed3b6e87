package remote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"screen-region/src/capture"
	"screen-region/src/overlay"
)

const (
	writeTimeout = 5 * time.Second
	// captureTimeout bounds a do_capture request whose overlay never
	// presents a frame.
	captureTimeout = 10 * time.Second
)

// Target is the overlay command surface exposed over the socket.
// *overlay.Controller implements it.
type Target interface {
	Cursor(x, y float64)
	MouseDown()
	MouseUp()
	KeyEnter() bool
	KeyEscape()
	SetWindowSize(w, h uint32)
	Ready()
	State() overlay.StateResponse
	DoCapture(ctx context.Context) (capture.Handle, error)
}

// Server exposes a Target to WebSocket clients and pushes an update frame to
// every client after each state change.
type Server struct {
	target   Target
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*conn]struct{}
}

type conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	// updates holds at most one pending update frame. Notifications that
	// arrive while one is pending are merged into it.
	updates chan struct{}
	done    chan struct{}
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{ws: ws, updates: make(chan struct{}, 1), done: make(chan struct{})}
}

// pushUpdates writes queued update frames until the connection closes.
func (c *conn) pushUpdates() {
	for {
		select {
		case <-c.done:
			return
		case <-c.updates:
			if err := c.send(Message{Type: TypeUpdate}); err != nil {
				log.Printf("Remote: update push failed: %v", err)
			}
		}
	}
}

func (c *conn) send(m Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(m)
}

func NewServer(t Target) *Server {
	return &Server{target: t, conns: make(map[*conn]struct{})}
}

// Handler returns the HTTP handler serving Path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.serveWS)
	return mux
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeAll()
	}()
	log.Printf("Remote: listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("remote serve: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("remote listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Notify queues an update frame for every connected client. It never blocks
// on the network.
func (s *Server) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		select {
		case c.updates <- struct{}{}:
		default:
		}
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Remote: upgrade failed: %v", err)
		return
	}
	c := newConn(ws)
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	go c.pushUpdates()
	log.Printf("Remote: client connected from %s", r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		close(c.done)
		ws.Close()
		log.Printf("Remote: client %s disconnected", r.RemoteAddr)
	}()

	for {
		var req Message
		if err := ws.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Remote: read failed: %v", err)
			}
			return
		}
		if err := c.send(s.handle(r.Context(), req)); err != nil {
			log.Printf("Remote: reply failed: %v", err)
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, req Message) Message {
	switch req.Type {
	case TypeCursor:
		s.target.Cursor(req.X, req.Y)
	case TypeMouseDown:
		s.target.MouseDown()
	case TypeMouseUp:
		s.target.MouseUp()
	case TypeKeyEnter:
		s.target.KeyEnter()
	case TypeKeyEscape:
		s.target.KeyEscape()
	case TypeSetWindowSize:
		s.target.SetWindowSize(req.Width, req.Height)
	case TypeReady:
		s.target.Ready()
	case TypeGetState:
	case TypeDoCapture:
		ctx, cancel := context.WithTimeout(ctx, captureTimeout)
		defer cancel()
		h, err := s.target.DoCapture(ctx)
		if err != nil {
			return Message{Type: TypeError, Error: err.Error()}
		}
		b := h.Bounds
		return Message{Type: TypeCaptured, Path: h.Path, Bounds: &b}
	default:
		return Message{Type: TypeError, Error: fmt.Sprintf("unknown message type %q", req.Type)}
	}
	return stateMessage(s.target.State())
}

func stateMessage(st overlay.StateResponse) Message {
	return Message{Type: TypeState, Phase: st.Phase, Bounds: st.Bounds}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.ws.Close()
	}
}
