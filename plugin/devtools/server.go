// Package devtools exposes the entities of a registry to an inspector over
// HTTP and a websocket feed.
//
// Entity values are owned by the runtime goroutine, so the server never
// reads them directly. The devtools plugin records a JSON snapshot of each
// tapped entity on every init and set, and the HTTP handlers serve those
// snapshots. Entities that opt out with "devtools": false are listed by id
// and name only.
package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/tailored-agentic-units/entity/plugin"
	"github.com/tailored-agentic-units/entity/registry"
)

// Name is the catalog name of the plugin.
const Name = "devtools"

// Message types sent on the websocket feed.
const (
	MessageSnapshot = "snapshot"
	MessageInit     = "init"
	MessageSet      = "set"
)

// State is the last recorded view of one entity.
type State struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Ready   bool            `json:"ready"`
	Value   json.RawMessage `json:"value,omitempty"`
	Updated time.Time       `json:"updated,omitzero"`
}

// Message is one websocket frame. Snapshot frames carry Entities; init and
// set frames carry the single entity that changed.
type Message struct {
	Type     string          `json:"type"`
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Time     time.Time       `json:"time"`
	Entities []State         `json:"entities,omitempty"`
}

type client struct {
	conn *websocket.Conn
}

// Server serves registry state and broadcasts tap events.
type Server struct {
	registry *registry.Registry
	config   Config
	logger   *slog.Logger
	router   *mux.Router
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	states map[string]State

	broadcast  chan Message
	register   chan *client
	unregister chan *client
	quit       chan struct{}
	stopOnce   sync.Once
	loopDone   chan struct{}

	serverMu sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer builds a server over reg and starts its broadcast loop.
// Shutdown stops the loop even when Start was never called.
func NewServer(reg *registry.Registry, cfg Config, logger *slog.Logger) *Server {
	c := DefaultConfig()
	c.Merge(&cfg)
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		registry:   reg,
		config:     c,
		logger:     logger.With("component", "devtools"),
		router:     mux.NewRouter(),
		states:     make(map[string]State),
		broadcast:  make(chan Message, c.Buffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		quit:       make(chan struct{}),
		loopDone:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	s.router.HandleFunc("/entities", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/entities/{id}", s.handleGet).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleWebSocket)

	go s.loop()
	return s
}

// Plugin returns the tap plugin that feeds this server.
func (s *Server) Plugin() plugin.Plugin {
	ignore := plugin.OptOut(Name)
	return plugin.Plugin{
		Name:             Name,
		OnInit:           s.tap(MessageInit),
		OnSet:            s.tap(MessageSet),
		ShouldIgnoreInit: ignore,
		ShouldIgnoreSet:  ignore,
	}
}

// Handler returns the HTTP handler, for mounting or httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.serverMu.Lock()
	defer s.serverMu.Unlock()

	select {
	case <-s.quit:
		return ErrStopped
	default:
	}
	if s.server != nil {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go func(srv *http.Server) {
		s.logger.Info("devtools server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("devtools server error", "error", err)
		}
	}(s.server)
	return nil
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	s.serverMu.Lock()
	defer s.serverMu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// Shutdown stops the broadcast loop, disconnects websocket clients and
// shuts the HTTP server down if it was started.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.quit) })
	<-s.loopDone

	s.serverMu.Lock()
	srv := s.server
	s.server = nil
	s.serverMu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown devtools server: %w", err)
	}
	s.logger.Info("devtools server stopped")
	return nil
}

// States returns the recorded view of every registered entity, in
// registration order.
func (s *Server) States() []State {
	entries := s.registry.Entries()
	out := make([]State, 0, len(entries))

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range entries {
		if st, ok := s.states[e.ID()]; ok {
			out = append(out, st)
			continue
		}
		out = append(out, State{ID: e.ID(), Name: e.Name()})
	}
	return out
}

func (s *Server) state(id string) (State, bool) {
	e, ok := s.registry.Get(id)
	if !ok {
		return State{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[id]; ok {
		return st, true
	}
	return State{ID: e.ID(), Name: e.Name()}, true
}

func (s *Server) tap(typ string) plugin.Tap {
	return func(t plugin.Target, _ plugin.Metadata) error {
		now := time.Now()
		value := encodeValue(t.Snapshot())
		st := State{ID: t.ID(), Name: t.Name(), Ready: t.Ready(), Value: value, Updated: now}

		s.mu.Lock()
		s.states[st.ID] = st
		s.mu.Unlock()

		msg := Message{Type: typ, ID: st.ID, Name: st.Name, Value: value, Time: now}
		select {
		case s.broadcast <- msg:
		default:
			s.logger.Warn("devtools broadcast buffer full, dropping message", "type", typ, "id", st.ID)
		}
		return nil
	}
}

func encodeValue(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(fmt.Sprintf("%v", v))
	}
	return data
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.States())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	st, ok := s.state(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entity not found: " + id})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade connection", "error", err)
		return
	}
	c := &client{conn: conn}

	select {
	case s.register <- c:
	case <-s.quit:
		conn.Close()
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case s.unregister <- c:
	case <-s.quit:
	}
	conn.Close()
}

func (s *Server) loop() {
	defer close(s.loopDone)
	clients := make(map[*client]struct{})

	for {
		select {
		case c := <-s.register:
			snapshot := Message{Type: MessageSnapshot, Time: time.Now(), Entities: s.States()}
			if err := s.send(c, snapshot); err != nil {
				continue
			}
			clients[c] = struct{}{}
			s.logger.Debug("devtools client connected", "remote", c.conn.RemoteAddr().String())
		case c := <-s.unregister:
			delete(clients, c)
		case msg := <-s.broadcast:
			for c := range clients {
				if err := s.send(c, msg); err != nil {
					delete(clients, c)
				}
			}
		case <-s.quit:
			for c := range clients {
				c.conn.Close()
			}
			return
		}
	}
}

func (s *Server) send(c *client, msg Message) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		s.logger.Warn("failed to send devtools message", "error", err)
		c.conn.Close()
		return err
	}
	return nil
}
