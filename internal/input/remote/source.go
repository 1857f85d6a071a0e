// Package remote lets a phone act as the tilt sensor. The phone opens the
// bundled controller page, which streams its gravity readings back over a
// websocket. The most recently connected phone drives the game.
package remote

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chosenoffset.com/labyrinth/internal/core/motion"
)

const (
	readLimit       = 1 << 20 // 1MB
	readTimeout     = 60 * time.Second
	pingInterval    = 25 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// ErrNotListening is returned by Serve before Listen succeeded.
var ErrNotListening = errors.New("remote: source is not listening")

//go:embed web
var webFiles embed.FS

var upgrader = websocket.Upgrader{
	// Phones load the page from this same server, but may reach it through
	// any LAN address, so origins are not restricted.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Source is a motion.Source fed by websocket clients.
type Source struct {
	addr string
	log  *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[*websocket.Conn]string
	current  string // id of the client whose readings count
	latest   motion.Sample
	haveData bool
	rateHz   int

	stop chan struct{}
	done chan struct{}
}

// New creates a source that will listen on addr.
func New(addr string, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	return &Source{
		addr:   addr,
		log:    log.Named("remote"),
		conns:  make(map[*websocket.Conn]string),
		rateHz: 60,
	}
}

// Listen binds the listening socket. The source is available from then on.
func (s *Source) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("remote: listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.log.Info("controller page ready", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Source) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Handler serves the controller page at / and the websocket at /ws.
func (s *Source) Handler() http.Handler {
	mux := http.NewServeMux()
	page, _ := fs.Sub(webFiles, "web")
	mux.Handle("/", http.FileServer(http.FS(page)))
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Serve accepts connections until ctx is done, then shuts the server down
// and disconnects every client.
func (s *Source) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return ErrNotListening
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: writeTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("remote: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.closeAll()
		return err
	})

	err := g.Wait()
	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
	return err
}

// Available reports whether the source is listening for clients.
func (s *Source) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}

// Start delivers the latest reading to handler once per interval, from a
// goroutine of its own. Nothing is delivered while no client is reporting.
func (s *Source) Start(interval time.Duration, handler func(motion.Sample)) error {
	if handler == nil {
		return errors.New("remote: nil sample handler")
	}
	if interval <= 0 {
		return errors.New("remote: sampling interval must be positive")
	}

	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return errors.New("remote: already started")
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done
	s.rateHz = int(math.Round(float64(time.Second) / float64(interval)))
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if sample, ok := s.Latest(); ok {
					handler(sample)
				}
			case <-stop:
				return
			}
		}
	}()
	return nil
}

// Stop ends delivery. No sample is delivered after Stop returns.
func (s *Source) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Latest returns the newest reading from the current client.
func (s *Source) Latest() (motion.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.haveData
}

// Clients returns the number of connected clients.
func (s *Source) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Source) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	s.attach(conn, id)
	defer s.detach(conn, id)

	log := s.log.With(zap.String("client", id), zap.String("remote", r.RemoteAddr))
	log.Info("controller connected")

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, done)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("controller read failed", zap.Error(err))
			}
			log.Info("controller disconnected")
			return
		}
		if err := s.dispatch(conn, id, msg); err != nil {
			log.Debug("dropping message", zap.Error(err))
			continue
		}
	}
}

func (s *Source) dispatch(conn *websocket.Conn, id string, msg []byte) error {
	env, err := DecodeEnvelope(msg)
	if err != nil {
		return err
	}

	switch env.T {
	case MsgHello:
		if _, err := DecodePayload[Hello](env); err != nil {
			return err
		}
		s.mu.Lock()
		rate := s.rateHz
		s.mu.Unlock()
		b, err := Encode(MsgWelcome, Welcome{ClientID: id, RateHz: rate})
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteMessage(websocket.TextMessage, b)

	case MsgGravity:
		g, err := DecodePayload[Gravity](env)
		if err != nil {
			return err
		}
		s.record(id, g)
		return nil

	default:
		return fmt.Errorf("unknown message type %q", env.T)
	}
}

func (s *Source) record(id string, g Gravity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.current {
		return
	}
	s.latest = motion.Sample{GravityX: g.GX, GravityY: g.GY}
	s.haveData = true
}

func (s *Source) attach(conn *websocket.Conn, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = id
	s.current = id
	s.haveData = false
}

func (s *Source) detach(conn *websocket.Conn, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
	if s.current == id {
		s.current = ""
		s.haveData = false
	}
}

func (s *Source) closeAll() {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		_ = c.Close()
	}
}

// keepAlive pings conn until done is closed or a ping fails.
func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
