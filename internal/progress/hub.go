package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"droneplan/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	// node_explored can fire thousands of times per second on a dense
	// search; cap the fanout so slow clients see a sampled stream.
	exploreEventRate  = 50
	exploreEventBurst = 100
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type session struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans progress events out to connected WebSocket clients.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*session
	limiter  *rate.Limiter
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*session),
		limiter:  rate.NewLimiter(rate.Limit(exploreEventRate), exploreEventBurst),
	}
}

// Active reports whether at least one listener is connected.
func (h *Hub) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions) > 0
}

// Listeners returns the current connection count.
func (h *Hub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Broadcast sends evt to every connected listener. Sends never block; a
// listener whose buffer is full misses the event.
func (h *Hub) Broadcast(evt Event) {
	h.mu.Lock()
	n := len(h.sessions)
	h.mu.Unlock()
	if n == 0 {
		return
	}
	if evt.Type == TypeNodeExplored && !h.limiter.Allow() {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	metrics.ProgressEvents.WithLabelValues(evt.Type).Inc()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.sessions {
		select {
		case s.send <- data:
		default:
		}
	}
}

// ServeHTTP lets the hub be mounted directly as a handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.ServeWS(w, r)
}

// ServeWS upgrades the request and attaches the client as a listener
// until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s := &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.add(s)

	if greeting, err := json.Marshal(ConnectionEstablished()); err == nil {
		s.send <- greeting
	}

	go h.writePump(s)
	h.readPump(s)
}

func (h *Hub) add(s *session) {
	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	metrics.WSConnections.Inc()
	log.Printf("progress listener connected id=%s", s.id)
}

func (h *Hub) remove(s *session) {
	h.mu.Lock()
	_, ok := h.sessions[s.id]
	if ok {
		delete(h.sessions, s.id)
	}
	h.mu.Unlock()
	if ok {
		metrics.WSConnections.Dec()
		log.Printf("progress listener disconnected id=%s", s.id)
	}
	s.conn.Close()
}

func (h *Hub) readPump(s *session) {
	defer h.remove(s)
	s.conn.SetReadLimit(1 << 16)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(s *session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(s)
	}()
	for {
		select {
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
