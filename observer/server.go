// Package observer streams reduce rounds to websocket clients and serves the
// latest run state over HTTP. Only loopback clients are accepted.
package observer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"spherecull/sim"
)

// State is the run summary served by /v1/state and sent as HELLO.
type State struct {
	Variant string `json:"variant"`
	Seed    uint64 `json:"seed"`
	Tick    uint64 `json:"tick"`
	Round   uint64 `json:"round"`
	Phase   string `json:"phase"`
	Live    int    `json:"live"`
	Paused  bool   `json:"paused"`
}

type helloMsg struct {
	Type  string `json:"type"`
	State State  `json:"state"`
}

type roundMsg struct {
	Type string `json:"type"`
	sim.Report
}

type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	dropped  atomic.Uint64

	mu      sync.Mutex
	state   State
	clients map[uint64]chan []byte
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]chan []byte),
	}
}

// SetState replaces the summary returned by /v1/state.
func (s *Server) SetState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Clients returns the number of connected observers.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped counts messages discarded because a client fell behind.
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

// ObserveRound implements sim.Observer by broadcasting a ROUND message.
func (s *Server) ObserveRound(r sim.Report) {
	b, err := json.Marshal(roundMsg{Type: "ROUND", Report: r})
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.clients {
		select {
		case ch <- b:
		default:
			s.dropped.Add(1)
		}
	}
}

// Handler routes /v1/state and /v1/observe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/state", s.StateHandler())
	mux.HandleFunc("/v1/observe", s.WSHandler())
	return mux
}

func (s *Server) StateHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.State())
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id := s.nextID.Add(1)
		out := make(chan []byte, 256)

		hello, _ := json.Marshal(helloMsg{Type: "HELLO", State: s.State()})
		out <- hello

		s.mu.Lock()
		s.clients[id] = out
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.clients, id)
			s.mu.Unlock()
		}()
		if s.log != nil {
			s.log.Printf("observer %d connected from %s", id, r.RemoteAddr)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: clients send nothing meaningful, this only detects close.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		if s.log != nil {
			s.log.Printf("observer %d disconnected", id)
		}
	}
}

// Serve listens on addr and serves until ctx is canceled. The returned
// address is the bound listener address.
func (s *Server) Serve(ctx context.Context, addr string) (net.Addr, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	done := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return ln.Addr(), done, nil
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
